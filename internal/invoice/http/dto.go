package invoicehttp

import (
	"github.com/google/uuid"

	"github.com/odyssey-erp/odyssey-invoice/internal/invoice"
)

type fieldRequest struct {
	Path  string `json:"path" validate:"required"`
	Value any    `json:"value"`
}

type lineRequest struct {
	ProductName string  `json:"productName"`
	HSNCode     string  `json:"hsnCode"`
	Qty         int     `json:"qty"`
	SalePrice   float64 `json:"salePrice"`
	Discount    float64 `json:"discount"`
}

func (r lineRequest) line() invoice.ProductLine {
	return invoice.ProductLine{
		ProductName: r.ProductName,
		HSNCode:     r.HSNCode,
		Qty:         r.Qty,
		SalePrice:   r.SalePrice,
		Discount:    r.Discount,
	}
}

type lineFieldRequest struct {
	Field string `json:"field" validate:"required,oneof=productName hsnCode qty salePrice discount"`
	Value any    `json:"value"`
}

type catalogRequest struct {
	Name string `json:"name" validate:"required"`
}

// sessionView is the JSON shape of an editing session.
type sessionView struct {
	ID      uuid.UUID            `json:"id"`
	State   invoice.State        `json:"state"`
	Draft   invoice.InvoiceDraft `json:"draft"`
	LineIDs []uuid.UUID          `json:"lineIds"`
	Errors  invoice.ErrorReport  `json:"errors"`
	Totals  invoice.Totals       `json:"totals"`
}

func newSessionView(id uuid.UUID, s *invoice.Session) sessionView {
	snap := s.View()
	draft := snap.Draft
	ids := make([]uuid.UUID, len(draft.Products))
	for i, line := range draft.Products {
		ids[i] = line.ID
	}
	return sessionView{
		ID:      id,
		State:   snap.State,
		Draft:   draft,
		LineIDs: ids,
		Errors:  snap.Report,
		Totals:  invoice.SumLines(draft.Products),
	}
}

type lineCreated struct {
	Index   int         `json:"index"`
	Session sessionView `json:"session"`
}
