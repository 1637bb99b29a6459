package main

import (
	"fmt"
	"io"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"price-recon/internal/catalog"
	"price-recon/internal/reconcile/model"
)

var (
	parseStore string
	parseIn    string
	parseOut   string
)

var parseCmd = &cobra.Command{
	Use:   "parse",
	Short: "Convert a raw store export into a flat products file",
	Long: `Parses a raw store A JSON (product pages) or store B JSON (HTML pages)
into [{"name","price"}] with normalized names and prices.

Examples:
  price-recon parse --store a --in storea_raw.json --out storea_parsed.json
  price-recon parse --store b --in storeb_raw.json --out storeb_parsed.json`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		var parse func(io.Reader) ([]model.Product, error)
		switch parseStore {
		case "a":
			parse = catalog.ParseStoreA
		case "b":
			parse = catalog.ParseStoreB
		case "html":
			parse = catalog.ParseStoreBHTML
		default:
			return fmt.Errorf("--store must be a, b or html, got %q", parseStore)
		}

		in, err := os.Open(parseIn)
		if err != nil {
			return eris.Wrapf(err, "open %s", parseIn)
		}
		defer in.Close()

		products, err := parse(in)
		if err != nil {
			return eris.Wrapf(err, "parse %s", parseIn)
		}
		logger.Info().Str("store", parseStore).Int("products", len(products)).Msg("parsed")

		if parseOut == "" {
			return catalog.WriteProducts(cmd.OutOrStdout(), products)
		}
		return writeFile(parseOut, func(w io.Writer) error {
			return catalog.WriteProducts(w, products)
		})
	},
}

func init() {
	parseCmd.Flags().StringVar(&parseStore, "store", "", "raw export kind: a, b or html (required)")
	parseCmd.Flags().StringVar(&parseIn, "in", "", "raw export file (required)")
	parseCmd.Flags().StringVar(&parseOut, "out", "", "write products JSON to file (default: stdout)")
	_ = parseCmd.MarkFlagRequired("store")
	_ = parseCmd.MarkFlagRequired("in")
	rootCmd.AddCommand(parseCmd)
}
