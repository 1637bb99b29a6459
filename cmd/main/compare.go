package main

import (
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"price-recon/internal/catalog"
	"price-recon/internal/fileio"
	"price-recon/internal/reconcile/model"
	recSvc "price-recon/internal/reconcile/service"
	"price-recon/internal/store"
)

var (
	compareA         string
	compareB         string
	compareFormatA   string
	compareFormatB   string
	compareOut       string
	compareXLSX      string
	compareThreshold float64
	compareWorkers   int
	compareSave      bool
)

var compareCmd = &cobra.Command{
	Use:   "compare",
	Short: "Compare catalog B against catalog A",
	Long: `Loads both catalogs, matches every B product to its best A product and
writes the comparison report.

Examples:
  price-recon compare --a a.json --b b.json --out results.json
  price-recon compare --a storea.json --format-a store-a --b storeb.json --format-b store-b --xlsx report.xlsx
  price-recon compare --a a.csv --b b.xlsx --threshold 85 --workers 4 --save`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		start := time.Now()

		opt := cfg.Options()
		if cmd.Flags().Changed("threshold") {
			if math.IsNaN(compareThreshold) || compareThreshold < 0 || compareThreshold > 100 {
				return fmt.Errorf("--threshold must be within 0..100, got %v", compareThreshold)
			}
			opt.Threshold = compareThreshold
		}
		if cmd.Flags().Changed("workers") {
			if compareWorkers < 1 {
				return fmt.Errorf("--workers must be >= 1, got %d", compareWorkers)
			}
			opt.Workers = compareWorkers
		}

		a, err := loadCatalog(compareA, compareFormatA)
		if err != nil {
			return err
		}
		b, err := loadCatalog(compareB, compareFormatB)
		if err != nil {
			return err
		}

		res, err := recSvc.Run(cmd.Context(), a, b, opt)
		if err != nil {
			return eris.Wrap(err, "compare")
		}
		for _, rj := range res.Rejected {
			logger.Debug().
				Str("name", rj.Name).
				Str("price", rj.Price).
				Str("reason", rj.Reason).
				Str("best", rj.Best).
				Float64("score", rj.Score).
				Msg("rejected")
		}

		if err := writeReport(cmd.OutOrStdout(), compareOut, res.Records); err != nil {
			return err
		}
		if compareXLSX != "" {
			if err := writeFile(compareXLSX, func(w io.Writer) error {
				return fileio.WriteReportXLSX(w, res.Records)
			}); err != nil {
				return err
			}
		}

		runID := ""
		if compareSave {
			if runID, err = saveRun(cmd, res); err != nil {
				return err
			}
		}

		logger.Info().
			Str("run_id", runID).
			Int("catalogA", res.Stats.CatalogA).
			Int("catalogB", res.Stats.CatalogB).
			Int("uniqueA", res.Stats.UniqueA).
			Int("matched", res.Stats.Matched).
			Int("below_threshold", res.Stats.BelowThreshold).
			Int("invalid_prices", res.Stats.InvalidPrices).
			Dur("elapsed", time.Since(start)).
			Msg("compare done")
		return nil
	},
}

func init() {
	compareCmd.Flags().StringVar(&compareA, "a", "", "catalog A file (required)")
	compareCmd.Flags().StringVar(&compareB, "b", "", "catalog B file (required)")
	compareCmd.Flags().StringVar(&compareFormatA, "format-a", "", "catalog A format: json, store-a, store-b, html, table (default: by extension)")
	compareCmd.Flags().StringVar(&compareFormatB, "format-b", "", "catalog B format (default: by extension)")
	compareCmd.Flags().StringVar(&compareOut, "out", "", "write JSON report to file (default: stdout)")
	compareCmd.Flags().StringVar(&compareXLSX, "xlsx", "", "also write the report as an Excel workbook")
	compareCmd.Flags().Float64Var(&compareThreshold, "threshold", model.DefaultThreshold, "minimum similarity score 0..100 (overrides THRESHOLD)")
	compareCmd.Flags().IntVar(&compareWorkers, "workers", 1, "parallel matching workers (overrides WORKERS)")
	compareCmd.Flags().BoolVar(&compareSave, "save", false, "store the run in the run history (DB_PATH)")
	_ = compareCmd.MarkFlagRequired("a")
	_ = compareCmd.MarkFlagRequired("b")
	rootCmd.AddCommand(compareCmd)
}

func loadCatalog(path, format string) ([]model.Product, error) {
	f, err := catalog.ParseFormat(format)
	if err != nil {
		return nil, err
	}
	products, err := catalog.Load(path, f)
	if err != nil {
		return nil, err
	}
	logger.Debug().Str("path", path).Int("products", len(products)).Msg("catalog loaded")
	return products, nil
}

// writeReport пишет JSON-отчёт в файл или, если путь пуст, в stdout.
func writeReport(stdout io.Writer, path string, records []model.Record) error {
	if path == "" {
		return fileio.WriteReportJSON(stdout, records)
	}
	return writeFile(path, func(w io.Writer) error {
		return fileio.WriteReportJSON(w, records)
	})
}

func writeFile(path string, write func(io.Writer) error) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return eris.Wrapf(err, "create dir %s", dir)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrapf(err, "create %s", path)
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return eris.Wrapf(f.Close(), "close %s", path)
}

func saveRun(cmd *cobra.Command, res model.Result) (string, error) {
	st, err := openStore()
	if err != nil {
		return "", err
	}
	defer st.Close() //nolint:errcheck

	run := store.NewRun(filepath.Base(compareA), filepath.Base(compareB), res)
	if err := st.SaveRun(cmd.Context(), run); err != nil {
		return "", err
	}
	return run.ID, nil
}

func openStore() (*store.SQLite, error) {
	if cfg.DBPath == "" {
		return nil, eris.New("run history is disabled: DB_PATH is empty")
	}
	return store.Open(cfg.DBPath)
}
