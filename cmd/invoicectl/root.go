package main

import (
	"io"
	"log/slog"

	"github.com/spf13/cobra"
)

type rootOptions struct {
	logFormat string
	verbose   bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:   "invoicectl",
		Short: "Validate and finalize invoice drafts",
		Long: `invoicectl reads an invoice draft from a YAML file, recomputes every line,
applies the same validation as the invoice API and writes the finalized
record as JSON, HTML or PDF.

Example Usage:
  invoicectl validate draft.yaml
  invoicectl finalize draft.yaml --format html --out invoice.html
  invoicectl finalize draft.yaml --format pdf --gotenberg http://127.0.0.1:3000`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	cmd.PersistentFlags().StringVar(&opts.logFormat, "log-format", "text", "log format: text or json")
	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "log submission details to stderr")

	cmd.AddCommand(
		newValidateCmd(opts),
		newFinalizeCmd(opts),
		newCatalogCmd(),
	)
	return cmd
}

func (o *rootOptions) logger(w io.Writer) *slog.Logger {
	if !o.verbose {
		return slog.New(slog.DiscardHandler)
	}
	if o.logFormat == "json" {
		return slog.New(slog.NewJSONHandler(w, nil))
	}
	return slog.New(slog.NewTextHandler(w, nil))
}
