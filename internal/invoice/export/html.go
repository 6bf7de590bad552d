package export

import (
	"bytes"
	"fmt"
	"html/template"
	"io"
	"strconv"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/odyssey-erp/odyssey-invoice/internal/invoice"
	"github.com/odyssey-erp/odyssey-invoice/web"
)

const documentTemplate = "document.html"

// Options tunes how amounts are printed.
type Options struct {
	CurrencySymbol string
	Locale         string
}

// Renderer turns a finalised record into a printable HTML document. It does
// no validation of its own; records are expected to come from a successful
// submission.
type Renderer struct {
	tpl     *template.Template
	printer *message.Printer
	symbol  string
}

type documentView struct {
	Record     invoice.InvoiceRecord
	Totals     invoice.Totals
	TaxPercent float64
}

// NewRenderer parses the embedded invoice template.
func NewRenderer(opts Options) (*Renderer, error) {
	if opts.CurrencySymbol == "" {
		opts.CurrencySymbol = "₹"
	}
	tag := language.English
	if opts.Locale != "" {
		parsed, err := language.Parse(opts.Locale)
		if err != nil {
			return nil, fmt.Errorf("parse locale %q: %w", opts.Locale, err)
		}
		tag = parsed
	}
	r := &Renderer{printer: message.NewPrinter(tag), symbol: opts.CurrencySymbol}

	funcMap := template.FuncMap{
		"money":           r.FormatMoney,
		"formatDate":      FormatDate,
		"formatTimestamp": FormatTimestamp,
		"percent": func(v float64) string {
			return strconv.FormatFloat(v, 'f', -1, 64) + "%"
		},
		"inc": func(i int) int { return i + 1 },
	}
	tpl, err := template.New(documentTemplate).Funcs(funcMap).ParseFS(web.Templates, "templates/invoice/"+documentTemplate)
	if err != nil {
		return nil, fmt.Errorf("parse invoice template: %w", err)
	}
	r.tpl = tpl
	return r, nil
}

// RenderHTML writes the document for record to w.
func (r *Renderer) RenderHTML(w io.Writer, record invoice.InvoiceRecord) error {
	if r == nil || r.tpl == nil {
		return fmt.Errorf("invoice renderer not initialized")
	}
	view := documentView{
		Record:     record,
		Totals:     record.Totals(),
		TaxPercent: invoice.TaxRate * 100,
	}
	return r.tpl.ExecuteTemplate(w, documentTemplate, view)
}

// HTML renders the document into a string.
func (r *Renderer) HTML(record invoice.InvoiceRecord) (string, error) {
	var buf bytes.Buffer
	if err := r.RenderHTML(&buf, record); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// FormatMoney prints an amount with two decimals and the currency symbol.
func (r *Renderer) FormatMoney(v float64) string {
	return r.symbol + r.printer.Sprintf("%.2f", v)
}

// FormatDate prints a calendar date in long form, e.g. "18 October 2026".
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2 January 2006")
}

// FormatTimestamp prints an instant in UTC with seconds.
func FormatTimestamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format("2 January 2006, 15:04:05 MST")
}
