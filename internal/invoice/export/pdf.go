package export

import (
	"context"
	"fmt"

	"github.com/odyssey-erp/odyssey-invoice/internal/invoice"
)

// Converter turns standalone HTML into PDF bytes.
type Converter interface {
	RenderHTML(ctx context.Context, html string) ([]byte, error)
}

// PDFExporter renders invoice documents and converts them through Gotenberg.
type PDFExporter struct {
	renderer  *Renderer
	converter Converter
}

// NewPDFExporter pairs a renderer with a converter (normally *report.Client).
func NewPDFExporter(renderer *Renderer, converter Converter) *PDFExporter {
	return &PDFExporter{renderer: renderer, converter: converter}
}

// RenderPDF returns the PDF for record.
func (p *PDFExporter) RenderPDF(ctx context.Context, record invoice.InvoiceRecord) ([]byte, error) {
	if p == nil || p.converter == nil {
		return nil, fmt.Errorf("pdf exporter not initialized")
	}
	html, err := p.renderer.HTML(record)
	if err != nil {
		return nil, fmt.Errorf("render template: %w", err)
	}
	pdf, err := p.converter.RenderHTML(ctx, html)
	if err != nil {
		return nil, fmt.Errorf("convert invoice %s: %w", record.InvoiceNo, err)
	}
	return pdf, nil
}
