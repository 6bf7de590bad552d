package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/odyssey-erp/odyssey-invoice/internal/invoice"
	"github.com/odyssey-erp/odyssey-invoice/internal/invoice/export"
	"github.com/odyssey-erp/odyssey-invoice/report"
)

func newSession(opts *rootOptions, cmd *cobra.Command, draft invoice.InvoiceDraft) *invoice.Session {
	session := invoice.NewSession(invoice.SessionOptions{
		Logger: opts.logger(cmd.ErrOrStderr()),
	})
	session.Reset(draft)
	return session
}

// ValidateSummary is the JSON output of validate --json.
type ValidateSummary struct {
	OK     bool              `json:"ok"`
	Total  float64           `json:"total"`
	Errors []ValidationIssue `json:"errors"`
}

// ValidationIssue is one failing field.
type ValidationIssue struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

func newValidateCmd(opts *rootOptions) *cobra.Command {
	var jsonOutput bool
	cmd := &cobra.Command{
		Use:   "validate <draft.yaml>",
		Short: "Check a draft and list every validation error",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			draft, err := loadDraft(args[0])
			if err != nil {
				return err
			}
			session := newSession(opts, cmd, draft)
			report := session.Report()
			summary := ValidateSummary{OK: report.IsEmpty(), Total: session.Total(), Errors: []ValidationIssue{}}
			for _, path := range report.Paths() {
				summary.Errors = append(summary.Errors, ValidationIssue{Path: path, Message: report[path]})
			}

			out := cmd.OutOrStdout()
			if jsonOutput {
				if err := json.NewEncoder(out).Encode(summary); err != nil {
					return fmt.Errorf("encode json: %w", err)
				}
			} else {
				renderValidateHuman(out, summary, len(session.Draft().Products))
			}
			if !summary.OK {
				return &exitError{
					code: exitCodeBlocked,
					err:  fmt.Errorf("%w: %d error(s)", invoice.ErrValidationFailed, len(summary.Errors)),
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "print a JSON summary")
	return cmd
}

func renderValidateHuman(w io.Writer, summary ValidateSummary, lines int) {
	if summary.OK {
		_, _ = fmt.Fprintf(w, "valid: %d line(s), total %.2f\n", lines, summary.Total)
		return
	}
	for _, issue := range summary.Errors {
		_, _ = fmt.Fprintf(w, "%s: %s\n", issue.Path, issue.Message)
	}
}

type finalizeOptions struct {
	format    string
	out       string
	gotenberg string
	timeout   time.Duration
	currency  string
	locale    string
}

func newFinalizeCmd(opts *rootOptions) *cobra.Command {
	fo := &finalizeOptions{}
	cmd := &cobra.Command{
		Use:   "finalize <draft.yaml>",
		Short: "Finalize a draft and write the invoice record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			draft, err := loadDraft(args[0])
			if err != nil {
				return err
			}
			record, err := newSession(opts, cmd, draft).Submit()
			if err != nil {
				return err
			}
			body, err := fo.render(cmd.Context(), record)
			if err != nil {
				return err
			}
			return fo.write(cmd.OutOrStdout(), body)
		},
	}
	flags := cmd.Flags()
	flags.StringVarP(&fo.format, "format", "f", "json", "output format: json, html or pdf")
	flags.StringVarP(&fo.out, "out", "o", "", "write to file instead of stdout")
	flags.StringVar(&fo.gotenberg, "gotenberg", os.Getenv("GOTENBERG_URL"), "Gotenberg base URL for pdf output")
	flags.DurationVar(&fo.timeout, "timeout", 30*time.Second, "pdf conversion timeout")
	flags.StringVar(&fo.currency, "currency", "₹", "currency symbol for documents")
	flags.StringVar(&fo.locale, "locale", "en-IN", "number formatting locale for documents")
	return cmd
}

func (fo *finalizeOptions) render(ctx context.Context, record invoice.InvoiceRecord) ([]byte, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	switch fo.format {
	case "json":
		return record.Payload()
	case "html", "pdf":
	default:
		return nil, fmt.Errorf("unknown format %q", fo.format)
	}

	renderer, err := export.NewRenderer(export.Options{CurrencySymbol: fo.currency, Locale: fo.locale})
	if err != nil {
		return nil, err
	}
	if fo.format == "html" {
		html, err := renderer.HTML(record)
		return []byte(html), err
	}
	if fo.gotenberg == "" {
		return nil, errors.New("pdf output needs --gotenberg or GOTENBERG_URL")
	}
	exporter := export.NewPDFExporter(renderer, report.NewClient(fo.gotenberg, fo.timeout))
	return exporter.RenderPDF(ctx, record)
}

func (fo *finalizeOptions) write(stdout io.Writer, body []byte) error {
	if fo.out == "" {
		_, err := stdout.Write(body)
		return err
	}
	return os.WriteFile(fo.out, body, 0o644)
}

func newCatalogCmd() *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Print the built-in product catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			items := invoice.DefaultCatalog.Items()
			out := cmd.OutOrStdout()
			switch format {
			case "yaml":
				enc := yaml.NewEncoder(out)
				enc.SetIndent(2)
				if err := enc.Encode(items); err != nil {
					return err
				}
				return enc.Close()
			case "json":
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(items)
			default:
				return fmt.Errorf("unknown format %q", format)
			}
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "yaml", "output format: yaml or json")
	return cmd
}
