package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/solbras/fatura-cli/internal/extract"
	"github.com/solbras/fatura-cli/internal/model"
	"github.com/solbras/fatura-cli/internal/pdftext"
)

var extractOut string

var extractCmd = &cobra.Command{
	Use:   "extract <invoice.pdf>",
	Short: "Extract structured fields from one invoice PDF",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rec, err := extractFile(args[0])
		if err != nil {
			return err
		}

		out, err := json.MarshalIndent(rec, "", "  ")
		if err != nil {
			return eris.Wrap(err, "extract: marshal record")
		}

		if extractOut != "" {
			if err := os.WriteFile(extractOut, append(out, '\n'), 0o644); err != nil {
				return eris.Wrap(err, "extract: write output")
			}
			zap.L().Info("record written", zap.String("path", extractOut))
			return nil
		}

		fmt.Fprintln(cmd.OutOrStdout(), string(out))
		return nil
	},
}

func init() {
	extractCmd.Flags().StringVarP(&extractOut, "out", "o", "", "write the record to a file instead of stdout")
	rootCmd.AddCommand(extractCmd)
}

// newExtractor builds the configured extraction pipeline.
func newExtractor() *extract.Extractor {
	return extract.New(extract.Config{
		LineTolerance: cfg.Extract.LineTolerance,
		MaxRightGap:   cfg.Extract.MaxRightGap,
	})
}

// extractFile decodes one PDF from disk and assembles its record.
func extractFile(path string) (*model.InvoiceRecord, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "extract: read %s", path)
	}
	frags, err := pdftext.Extract(buf)
	if err != nil {
		return nil, err
	}
	rec := newExtractor().Extract(frags)
	return &rec, nil
}
