package invoice

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func derived(line ProductLine) ProductLine {
	recompute(&line)
	return line
}

func validDraft() InvoiceDraft {
	return InvoiceDraft{
		InvoiceNo:   "INV-2026-0042",
		InvoiceDate: time.Date(2026, time.October, 18, 0, 0, 0, 0, time.UTC),
		InvoiceTime: "10:30",
		Customer: Customer{
			Name:    "Asha Traders",
			Address: "12 MG Road, Pune",
			Phone:   "9876543210",
			Email:   "billing@ashatraders.com",
			GSTIN:   "27AAPFU0939F1ZV",
		},
		Products: []ProductLine{
			derived(ProductLine{ProductName: "Laptop Computer", HSNCode: "8471", Qty: 2, SalePrice: 100, Discount: 10}),
		},
		PaymentMethod: PaymentCash,
	}
}

func TestValidateAcceptsCompleteDraft(t *testing.T) {
	report := NewValidator().Validate(validDraft())
	assert.True(t, report.IsEmpty(), "unexpected errors: %v", report)
}

func TestValidateOptionalFieldsMayBeEmpty(t *testing.T) {
	draft := validDraft()
	draft.Customer.GSTIN = ""
	draft.TransactionID = ""
	draft.Narration = ""
	assert.Empty(t, NewValidator().Validate(draft))
}

func TestValidateFieldRules(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*InvoiceDraft)
		path   string
		want   string
	}{
		{"invoice number", func(d *InvoiceDraft) { d.InvoiceNo = "" }, "invoiceNo", "Invoice number is required"},
		{"invoice date", func(d *InvoiceDraft) { d.InvoiceDate = time.Time{} }, "invoiceDate", "Invoice date is required"},
		{"invoice time", func(d *InvoiceDraft) { d.InvoiceTime = "" }, "invoiceTime", "Invoice time is required"},
		{"customer name", func(d *InvoiceDraft) { d.Customer.Name = "" }, "customer.name", "Customer name is required"},
		{"customer address", func(d *InvoiceDraft) { d.Customer.Address = "" }, "customer.address", "Customer address is required"},
		{"phone missing", func(d *InvoiceDraft) { d.Customer.Phone = "" }, "customer.phone", "Phone number is required"},
		{"phone short", func(d *InvoiceDraft) { d.Customer.Phone = "12345" }, "customer.phone", "Phone number must be at least 10 digits"},
		{"phone letters", func(d *InvoiceDraft) { d.Customer.Phone = "12345abcde" }, "customer.phone", "Phone number must contain only digits"},
		{"phone short letters", func(d *InvoiceDraft) { d.Customer.Phone = "12ab" }, "customer.phone", "Phone number must contain only digits"},
		{"email missing", func(d *InvoiceDraft) { d.Customer.Email = "" }, "customer.email", "Email is required"},
		{"email malformed", func(d *InvoiceDraft) { d.Customer.Email = "billing@" }, "customer.email", "Please enter a valid email address"},
		{"payment method", func(d *InvoiceDraft) { d.PaymentMethod = "Barter" }, "paymentMethod", "Select a valid payment method"},
		{"product name", func(d *InvoiceDraft) { d.Products[0].ProductName = "" }, "products.0.productName", "Product is required"},
		{"hsn code", func(d *InvoiceDraft) { d.Products[0].HSNCode = "" }, "products.0.hsnCode", "HSN Code is required"},
		{"qty", func(d *InvoiceDraft) { d.Products[0].Qty = 0 }, "products.0.qty", "Quantity must be at least 1"},
		{"sale price zero", func(d *InvoiceDraft) { d.Products[0].SalePrice = 0 }, "products.0.salePrice", "Sale price must be greater than 0"},
		{"sale price below a cent", func(d *InvoiceDraft) { d.Products[0].SalePrice = 0.005 }, "products.0.salePrice", "Sale price must be greater than 0"},
		{"discount above range", func(d *InvoiceDraft) { d.Products[0].Discount = 101 }, "products.0.discount", "Discount must be between 0 and 100"},
		{"discount below range", func(d *InvoiceDraft) { d.Products[0].Discount = -1 }, "products.0.discount", "Discount must be between 0 and 100"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			draft := validDraft()
			tt.mutate(&draft)
			report := NewValidator().Validate(draft)
			require.Len(t, report, 1, "report: %v", report)
			assert.Equal(t, tt.want, report[tt.path])
		})
	}
}

func TestValidateEmptyProductNameOnOneLine(t *testing.T) {
	draft := validDraft()
	draft.Products = []ProductLine{derived(ProductLine{ProductName: "", HSNCode: "X", Qty: 1, SalePrice: 10})}

	report := NewValidator().Validate(draft)
	assert.Equal(t, ErrorReport{"products.0.productName": "Product is required"}, report)
}

func TestValidateEmptyProductList(t *testing.T) {
	for name, products := range map[string][]ProductLine{"nil": nil, "empty": {}} {
		t.Run(name, func(t *testing.T) {
			draft := validDraft()
			draft.Products = products
			report := NewValidator().Validate(draft)
			assert.Equal(t, ErrorReport{"products": "At least one product is required"}, report)
		})
	}
}

func TestValidateReportsEveryFailingLine(t *testing.T) {
	draft := validDraft()
	draft.Products = append(draft.Products,
		derived(ProductLine{HSNCode: "8517", Qty: 1, SalePrice: 5}),
		derived(ProductLine{ProductName: "Power Bank", HSNCode: "8507", Qty: 0, SalePrice: 0}),
	)
	report := NewValidator().Validate(draft)
	assert.Equal(t, ErrorReport{
		"products.1.productName": "Product is required",
		"products.2.qty":         "Quantity must be at least 1",
		"products.2.salePrice":   "Sale price must be greater than 0",
	}, report)
	_, generic := report["products"]
	assert.False(t, generic)
}

func TestValidateTerminatesOnBlankDraft(t *testing.T) {
	report := NewValidator().Validate(InvoiceDraft{})
	assert.Equal(t, ErrorReport{
		"invoiceNo":        "Invoice number is required",
		"invoiceDate":      "Invoice date is required",
		"invoiceTime":      "Invoice time is required",
		"customer.name":    "Customer name is required",
		"customer.address": "Customer address is required",
		"customer.phone":   "Phone number is required",
		"customer.email":   "Email is required",
		"products":         "At least one product is required",
		"paymentMethod":    "Select a valid payment method",
	}, report)
}

func TestProductLineComplete(t *testing.T) {
	line := ProductLine{ProductName: "USB Cable", HSNCode: "8544", Qty: 1, SalePrice: 0.5}
	assert.True(t, line.complete())
	line.SalePrice = 0
	assert.False(t, line.complete())
}

func TestErrorReportMessagesFollowFormOrder(t *testing.T) {
	report := ErrorReport{
		"paymentMethod":          "Select a valid payment method",
		"products.10.qty":        "Quantity must be at least 1",
		"products.2.hsnCode":     "HSN Code is required",
		"products.2.productName": "Product is required",
		"customer.email":         "Email is required",
		"invoiceNo":              "Invoice number is required",
	}
	assert.Equal(t, []string{
		"Invoice number is required",
		"Email is required",
		"Product 3: Product is required",
		"Product 3: HSN Code is required",
		"Product 11: Quantity must be at least 1",
		"Select a valid payment method",
	}, report.Messages())
}

func TestFieldPath(t *testing.T) {
	assert.Equal(t, "products.2.qty", fieldPath("InvoiceDraft.products[2].qty"))
	assert.Equal(t, "customer.phone", fieldPath("InvoiceDraft.customer.phone"))
	assert.Equal(t, "invoiceNo", fieldPath("InvoiceDraft.invoiceNo"))
}

func TestParsePaymentMethod(t *testing.T) {
	assert.Equal(t, PaymentOnlineTransfer, ParsePaymentMethod("online_transfer"))
	assert.Equal(t, PaymentOnlineTransfer, ParsePaymentMethod("Online Transfer"))
	assert.Equal(t, PaymentOnCredit, ParsePaymentMethod("OnCredit"))
	assert.Equal(t, PaymentCash, ParsePaymentMethod(" cash "))
	assert.Equal(t, PaymentMethod("cheque"), ParsePaymentMethod("cheque"))
	assert.True(t, PaymentOnlineTransfer.AcceptsTransactionID())
	assert.False(t, PaymentCash.AcceptsTransactionID())
}
