package main

import (
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync/atomic"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"github.com/tealeg/xlsx/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/solbras/fatura-cli/internal/model"
	"github.com/solbras/fatura-cli/internal/scorer"
	"github.com/solbras/fatura-cli/internal/store"
)

var (
	batchConcurrency int
	batchReportPath  string
	batchNoStore     bool
)

var batchCmd = &cobra.Command{
	Use:   "batch <dir>",
	Short: "Extract every invoice PDF in a directory, scoring those with gold records",
	Long:  "Processes every .pdf in the directory. A sibling <name>.gold.json or <name>.gold.yaml file is scored against the extraction. Runs persist to the configured store.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		pdfs, err := listPDFs(args[0])
		if err != nil {
			return err
		}
		if len(pdfs) == 0 {
			zap.L().Info("no PDF files found", zap.String("dir", args[0]))
			return nil
		}

		var st store.Store
		if !batchNoStore {
			st, err = store.Open(ctx, cfg.Store.Driver, cfg.Store.DatabaseURL)
			if err != nil {
				return err
			}
			defer st.Close()
		}

		concurrency := batchConcurrency
		if concurrency <= 0 {
			concurrency = cfg.Batch.MaxConcurrentFiles
		}

		zap.L().Info("processing batch",
			zap.Int("files", len(pdfs)),
			zap.Int("concurrency", concurrency),
		)

		runs := make([]model.Run, len(pdfs))
		var succeeded, failed atomic.Int64

		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(concurrency)
		for i, path := range pdfs {
			i, path := i, path
			g.Go(func() error {
				run := processInvoice(path)
				runs[i] = run

				if run.Status == model.RunStatusOK {
					succeeded.Add(1)
				} else {
					failed.Add(1)
				}
				if st != nil {
					if err := st.SaveRun(gctx, &runs[i]); err != nil {
						zap.L().Warn("failed to persist run", zap.String("source", run.Source), zap.Error(err))
					}
				}
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return eris.Wrap(err, "batch processing")
		}

		zap.L().Info("batch complete",
			zap.Int64("succeeded", succeeded.Load()),
			zap.Int64("failed", failed.Load()),
		)

		if batchReportPath != "" {
			if err := writeBatchReport(batchReportPath, runs); err != nil {
				return err
			}
			zap.L().Info("report written", zap.String("path", batchReportPath))
		}
		return nil
	},
}

func init() {
	batchCmd.Flags().IntVar(&batchConcurrency, "concurrency", 0, "max files processed in parallel (default from config)")
	batchCmd.Flags().StringVar(&batchReportPath, "report", "", "write an XLSX summary to this path")
	batchCmd.Flags().BoolVar(&batchNoStore, "no-store", false, "skip persisting runs")
	rootCmd.AddCommand(batchCmd)
}

func listPDFs(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, eris.Wrapf(err, "batch: read dir %s", dir)
	}
	var pdfs []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if strings.EqualFold(filepath.Ext(e.Name()), ".pdf") {
			pdfs = append(pdfs, filepath.Join(dir, e.Name()))
		}
	}
	return pdfs, nil
}

// processInvoice extracts one file and scores it when a gold sibling exists.
// Failures land in the run record instead of aborting the batch.
func processInvoice(path string) model.Run {
	run := model.Run{Source: filepath.Base(path), Status: model.RunStatusOK}
	log := zap.L().With(zap.String("source", run.Source))

	rec, err := extractFile(path)
	if err != nil {
		run.Status = model.RunStatusFailed
		run.Error = err.Error()
		log.Error("extraction failed", zap.Error(err))
		return run
	}
	run.Record = rec

	goldPath := findGold(path)
	if goldPath == "" {
		log.Info("extraction complete", zap.String("gold", "none"))
		return run
	}

	gold, err := scorer.LoadGold(goldPath)
	if err != nil {
		run.Status = model.RunStatusFailed
		run.Error = err.Error()
		log.Error("gold record unreadable", zap.Error(err))
		return run
	}

	report, err := scorer.Score(rec, gold)
	if err != nil {
		run.Status = model.RunStatusFailed
		run.Error = err.Error()
		return run
	}
	run.Report = report
	run.Accuracy = model.Float(report.Accuracy)
	log.Info("extraction scored",
		zap.Float64("accuracy", report.Accuracy),
		zap.Int("mismatches", len(report.Mismatches)),
	)
	return run
}

// findGold returns the first existing gold sibling for a PDF path.
func findGold(pdfPath string) string {
	base := strings.TrimSuffix(pdfPath, filepath.Ext(pdfPath))
	for _, ext := range []string{".gold.json", ".gold.yaml", ".gold.yml"} {
		if _, err := os.Stat(base + ext); err == nil {
			return base + ext
		}
	}
	return ""
}

func writeBatchReport(path string, runs []model.Run) error {
	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Runs")
	if err != nil {
		return eris.Wrap(err, "batch: add report sheet")
	}

	header := sheet.AddRow()
	for _, h := range []string{"source", "status", "accuracy", "mismatches", "error"} {
		header.AddCell().Value = h
	}

	for _, run := range runs {
		row := sheet.AddRow()
		row.AddCell().Value = run.Source
		row.AddCell().Value = string(run.Status)
		if run.Accuracy != nil {
			row.AddCell().SetFloat(*run.Accuracy)
		} else {
			row.AddCell().Value = ""
		}
		if run.Report != nil {
			row.AddCell().SetInt(len(run.Report.Mismatches))
		} else {
			row.AddCell().Value = ""
		}
		row.AddCell().Value = run.Error
	}

	return eris.Wrapf(file.Save(path), "batch: save report %s", path)
}
