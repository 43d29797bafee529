package main

import (
	"encoding/json"
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/solbras/fatura-cli/internal/scorer"
)

var validateShowRecord bool

var validateCmd = &cobra.Command{
	Use:   "validate <invoice.pdf> <gold.json|gold.yaml>",
	Short: "Extract one invoice and score it against a gold record",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		rec, err := extractFile(args[0])
		if err != nil {
			return err
		}

		gold, err := scorer.LoadGold(args[1])
		if err != nil {
			return err
		}

		report, err := scorer.Score(rec, gold)
		if err != nil {
			return err
		}

		payload := any(report)
		if validateShowRecord {
			payload = map[string]any{"record": rec, "report": report}
		}

		out, err := json.MarshalIndent(payload, "", "  ")
		if err != nil {
			return eris.Wrap(err, "validate: marshal report")
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(out))
		return nil
	},
}

func init() {
	validateCmd.Flags().BoolVar(&validateShowRecord, "record", false, "include the extracted record in the output")
	rootCmd.AddCommand(validateCmd)
}
