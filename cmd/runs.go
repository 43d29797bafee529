package main

import (
	"encoding/json"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/solbras/fatura-cli/internal/model"
	"github.com/solbras/fatura-cli/internal/store"
)

var (
	runsStatus string
	runsSource string
	runsLimit  int
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List persisted extraction runs",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		st, err := store.Open(ctx, cfg.Store.Driver, cfg.Store.DatabaseURL)
		if err != nil {
			return err
		}
		defer st.Close()

		runs, err := st.ListRuns(ctx, store.RunFilter{
			Status: model.RunStatus(runsStatus),
			Source: runsSource,
			Limit:  runsLimit,
		})
		if err != nil {
			return err
		}

		for _, run := range runs {
			line, err := json.Marshal(run)
			if err != nil {
				return eris.Wrap(err, "runs: marshal run")
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(line))
		}
		return nil
	},
}

func init() {
	runsCmd.Flags().StringVar(&runsStatus, "status", "", "filter by status (ok, failed)")
	runsCmd.Flags().StringVar(&runsSource, "source", "", "filter by source file name")
	runsCmd.Flags().IntVar(&runsLimit, "limit", 50, "max runs to list")
	rootCmd.AddCommand(runsCmd)
}
