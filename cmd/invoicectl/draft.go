package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/odyssey-erp/odyssey-invoice/internal/invoice"
)

// draftFile is the YAML layout of a draft. Dates are kept as text so both
// quoted and plain scalars are accepted.
type draftFile struct {
	InvoiceNo     string                `yaml:"invoiceNo"`
	InvoiceDate   string                `yaml:"invoiceDate"`
	InvoiceTime   string                `yaml:"invoiceTime"`
	Customer      invoice.Customer      `yaml:"customer"`
	Products      []invoice.ProductLine `yaml:"products"`
	PaymentMethod string                `yaml:"paymentMethod"`
	TransactionID string                `yaml:"transactionId"`
	Narration     string                `yaml:"narration"`
}

func (f draftFile) draft() invoice.InvoiceDraft {
	return invoice.InvoiceDraft{
		InvoiceNo:     f.InvoiceNo,
		InvoiceDate:   invoice.ParseDate(f.InvoiceDate),
		InvoiceTime:   f.InvoiceTime,
		Customer:      f.Customer,
		Products:      f.Products,
		PaymentMethod: invoice.ParsePaymentMethod(f.PaymentMethod),
		TransactionID: f.TransactionID,
		Narration:     f.Narration,
	}
}

func loadDraft(path string) (invoice.InvoiceDraft, error) {
	file, err := os.Open(path)
	if err != nil {
		return invoice.InvoiceDraft{}, fmt.Errorf("open draft: %w", err)
	}
	defer file.Close()
	return decodeDraft(file)
}

func decodeDraft(r io.Reader) (invoice.InvoiceDraft, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	var f draftFile
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return invoice.InvoiceDraft{}, errors.New("decode draft: empty document")
		}
		return invoice.InvoiceDraft{}, fmt.Errorf("decode draft: %w", err)
	}
	return f.draft(), nil
}
