package invoice

import (
	"encoding/json"
	"time"
)

// InvoiceRecord is a finalised draft. It is the payload handed to JSON
// consumers and to the document renderer.
type InvoiceRecord struct {
	InvoiceDraft        `yaml:",inline"`
	TotalInvoiceValue   float64   `json:"totalInvoiceValue" yaml:"totalInvoiceValue"`
	GenerationTimestamp time.Time `json:"generationTimestamp" yaml:"generationTimestamp"`
}

// Finalize freezes draft into a record stamped at generatedAt. The
// transaction id is only kept for online transfers.
func Finalize(draft InvoiceDraft, generatedAt time.Time) InvoiceRecord {
	frozen := draft.clone()
	if !frozen.PaymentMethod.AcceptsTransactionID() {
		frozen.TransactionID = ""
	}
	return InvoiceRecord{
		InvoiceDraft:        frozen,
		TotalInvoiceValue:   AggregateTotal(frozen.Products),
		GenerationTimestamp: generatedAt.UTC(),
	}
}

// Totals returns subtotal, tax and grand total of the record's lines.
func (r InvoiceRecord) Totals() Totals {
	return SumLines(r.Products)
}

// Payload encodes the record as indented JSON.
func (r InvoiceRecord) Payload() ([]byte, error) {
	return json.MarshalIndent(r, "", "  ")
}
