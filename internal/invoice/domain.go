package invoice

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// PaymentMethod enumerates how the customer settles the invoice.
type PaymentMethod string

const (
	PaymentCash           PaymentMethod = "Cash"
	PaymentOnlineTransfer PaymentMethod = "Online Transfer"
	PaymentOnCredit       PaymentMethod = "On Credit"
)

// PaymentMethods lists the accepted methods in display order.
var PaymentMethods = []PaymentMethod{PaymentCash, PaymentOnlineTransfer, PaymentOnCredit}

func (m PaymentMethod) String() string {
	return string(m)
}

// Valid reports whether m is one of the enumerated methods.
func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentCash, PaymentOnlineTransfer, PaymentOnCredit:
		return true
	}
	return false
}

// AcceptsTransactionID reports whether a transaction reference belongs with the method.
func (m PaymentMethod) AcceptsTransactionID() bool {
	return m == PaymentOnlineTransfer
}

// ParsePaymentMethod normalises loose spellings ("online_transfer", "OnCredit").
// Unknown input is returned as-is so validation can flag it.
func ParsePaymentMethod(raw string) PaymentMethod {
	key := strings.NewReplacer(" ", "", "_", "", "-", "").Replace(strings.ToLower(strings.TrimSpace(raw)))
	switch key {
	case "cash":
		return PaymentCash
	case "onlinetransfer", "online":
		return PaymentOnlineTransfer
	case "oncredit", "credit":
		return PaymentOnCredit
	}
	return PaymentMethod(raw)
}

// Customer holds the billed party.
type Customer struct {
	Name    string `json:"name" yaml:"name" validate:"required"`
	Address string `json:"address" yaml:"address" validate:"required"`
	Phone   string `json:"phone" yaml:"phone" validate:"required,digits,min=10"`
	Email   string `json:"email" yaml:"email" validate:"required,email"`
	GSTIN   string `json:"gstin" yaml:"gstin"`
}

// ProductLine is one invoice row. TaxableValue, TaxAmount and TotalValue are
// derived from Qty, SalePrice and Discount and are never set by callers.
type ProductLine struct {
	ID           uuid.UUID `json:"-" yaml:"-"`
	ProductName  string    `json:"productName" yaml:"productName" validate:"required"`
	HSNCode      string    `json:"hsnCode" yaml:"hsnCode" validate:"required"`
	Qty          int       `json:"qty" yaml:"qty" validate:"gte=1"`
	SalePrice    float64   `json:"salePrice" yaml:"salePrice" validate:"gte=0.01"`
	Discount     float64   `json:"discount" yaml:"discount" validate:"gte=0,lte=100"`
	TaxableValue float64   `json:"taxableValue" yaml:"taxableValue"`
	TaxAmount    float64   `json:"taxAmount" yaml:"taxAmount"`
	TotalValue   float64   `json:"totalValue" yaml:"totalValue"`
}

// complete is the coarse per-line gate applied before submission.
func (l ProductLine) complete() bool {
	return l.ProductName != "" && l.HSNCode != "" && l.Qty > 0 && l.SalePrice > 0
}

// InvoiceDraft is the editable invoice.
type InvoiceDraft struct {
	InvoiceNo     string        `json:"invoiceNo" yaml:"invoiceNo" validate:"required"`
	InvoiceDate   time.Time     `json:"invoiceDate" yaml:"invoiceDate" validate:"required"`
	InvoiceTime   string        `json:"invoiceTime" yaml:"invoiceTime" validate:"required"`
	Customer      Customer      `json:"customer" yaml:"customer"`
	Products      []ProductLine `json:"products" yaml:"products" validate:"min=1,dive"`
	PaymentMethod PaymentMethod `json:"paymentMethod" yaml:"paymentMethod" validate:"payment_method"`
	TransactionID string        `json:"transactionId,omitempty" yaml:"transactionId,omitempty"`
	Narration     string        `json:"narration" yaml:"narration"`
}

// NewDraft returns the blank form: dated now, one empty line, paid in cash.
func NewDraft(now time.Time) InvoiceDraft {
	y, m, d := now.Date()
	return InvoiceDraft{
		InvoiceDate:   time.Date(y, m, d, 0, 0, 0, 0, now.Location()),
		InvoiceTime:   now.Format("15:04"),
		Products:      []ProductLine{{Qty: 1}},
		PaymentMethod: PaymentCash,
	}
}

// clone copies the draft so the products slice is not shared.
func (d InvoiceDraft) clone() InvoiceDraft {
	out := d
	if d.Products != nil {
		out.Products = make([]ProductLine, len(d.Products))
		copy(out.Products, d.Products)
	}
	return out
}
