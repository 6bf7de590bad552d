package invoice

import (
	"fmt"
	"math"

	"github.com/google/uuid"
	"github.com/spf13/cast"
)

// LineField names an editable product line field.
type LineField string

const (
	FieldProductName LineField = "productName"
	FieldHSNCode     LineField = "hsnCode"
	FieldQty         LineField = "qty"
	FieldSalePrice   LineField = "salePrice"
	FieldDiscount    LineField = "discount"
)

// LineStore is the ordered collection of product lines. Every mutation of
// qty, salePrice or discount re-derives that line before returning, so
// readers never observe stale derived fields.
type LineStore struct {
	lines   []ProductLine
	catalog Catalog
}

// NewLineStore builds an empty store backed by catalog (DefaultCatalog when nil).
func NewLineStore(catalog Catalog) *LineStore {
	if catalog == nil {
		catalog = DefaultCatalog
	}
	return &LineStore{catalog: catalog}
}

// Len returns the number of lines.
func (s *LineStore) Len() int {
	return len(s.lines)
}

// Insert appends a line and returns its index. A zero quantity defaults to 1.
func (s *LineStore) Insert(initial ProductLine) int {
	if initial.Qty == 0 {
		initial.Qty = 1
	}
	initial.ID = uuid.New()
	recompute(&initial)
	s.lines = append(s.lines, initial)
	return len(s.lines) - 1
}

// Remove deletes the line at index. Emptying the store is allowed.
func (s *LineStore) Remove(index int) error {
	if err := s.check(index); err != nil {
		return err
	}
	s.lines = append(s.lines[:index], s.lines[index+1:]...)
	return nil
}

// UpdateField sets one editable field. Numeric input is coerced; anything
// non-numeric becomes 0.
func (s *LineStore) UpdateField(index int, field LineField, value any) error {
	if err := s.check(index); err != nil {
		return err
	}
	line := &s.lines[index]
	switch field {
	case FieldProductName:
		line.ProductName = cast.ToString(value)
	case FieldHSNCode:
		line.HSNCode = cast.ToString(value)
	case FieldQty:
		line.Qty = coerceQty(value)
		recompute(line)
	case FieldSalePrice:
		line.SalePrice = finite(cast.ToFloat64(value))
		recompute(line)
	case FieldDiscount:
		line.Discount = cast.ToFloat64(value)
		recompute(line)
	default:
		return fmt.Errorf("line %d: %w: %q", index, ErrUnknownField, field)
	}
	return nil
}

// SelectCatalogItem copies name and HSN code from the catalog. Names not in
// the catalog leave the line untouched.
func (s *LineStore) SelectCatalogItem(index int, name string) error {
	if err := s.check(index); err != nil {
		return err
	}
	item, ok := s.catalog.Lookup(name)
	if !ok {
		return nil
	}
	s.lines[index].ProductName = item.Name
	s.lines[index].HSNCode = item.HSNCode
	return nil
}

// Snapshot returns a copy of the lines in order.
func (s *LineStore) Snapshot() []ProductLine {
	out := make([]ProductLine, len(s.lines))
	copy(out, s.lines)
	return out
}

// Replace swaps the whole collection and rescans every line once. Lines
// without an identity receive one.
func (s *LineStore) Replace(lines []ProductLine) {
	s.lines = make([]ProductLine, len(lines))
	copy(s.lines, lines)
	for i := range s.lines {
		if s.lines[i].ID == uuid.Nil {
			s.lines[i].ID = uuid.New()
		}
		recompute(&s.lines[i])
	}
}

func (s *LineStore) check(index int) error {
	if index < 0 || index >= len(s.lines) {
		return fmt.Errorf("line %d: %w", index, ErrOutOfRange)
	}
	return nil
}

func recompute(line *ProductLine) {
	amounts := DeriveLine(float64(line.Qty), line.SalePrice, line.Discount)
	line.Discount = amounts.Discount
	line.TaxableValue = amounts.TaxableValue
	line.TaxAmount = amounts.TaxAmount
	line.TotalValue = amounts.TotalValue
}

func coerceQty(value any) int {
	qty := finite(cast.ToFloat64(value))
	if qty > math.MaxInt32 || qty < math.MinInt32 {
		return 0
	}
	return int(qty)
}
