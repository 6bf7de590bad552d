package invoice

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ErrorReport maps a dotted field path (customer.phone, products.2.qty) to
// the message for that field. A missing path means the field is valid.
type ErrorReport map[string]string

// IsEmpty reports whether the draft passed validation.
func (r ErrorReport) IsEmpty() bool {
	return len(r) == 0
}

// Paths returns the failing paths in form order.
func (r ErrorReport) Paths() []string {
	paths := make([]string, 0, len(r))
	for path := range r {
		paths = append(paths, path)
	}
	sort.Slice(paths, func(i, j int) bool {
		a, b := pathOrder(paths[i]), pathOrder(paths[j])
		if a != b {
			return a.less(b)
		}
		return paths[i] < paths[j]
	})
	return paths
}

// Messages returns the messages in form order; line messages are prefixed
// with the 1-based product number.
func (r ErrorReport) Messages() []string {
	paths := r.Paths()
	out := make([]string, 0, len(paths))
	for _, path := range paths {
		if index, _, ok := splitLinePath(path); ok {
			out = append(out, fmt.Sprintf("Product %d: %s", index+1, r[path]))
			continue
		}
		out = append(out, r[path])
	}
	return out
}

func (r ErrorReport) hasLineErrors() bool {
	for path := range r {
		if strings.HasPrefix(path, "products.") {
			return true
		}
	}
	return false
}

const msgIncompleteProducts = "All products must have valid name, HSN code, quantity, and sale price"

// messages is keyed by "<path pattern>:<tag>"; line paths use "*" for the index.
var messages = map[string]string{
	"invoiceNo:required":              "Invoice number is required",
	"invoiceDate:required":            "Invoice date is required",
	"invoiceTime:required":            "Invoice time is required",
	"customer.name:required":          "Customer name is required",
	"customer.address:required":       "Customer address is required",
	"customer.phone:required":         "Phone number is required",
	"customer.phone:digits":           "Phone number must contain only digits",
	"customer.phone:min":              "Phone number must be at least 10 digits",
	"customer.email:required":         "Email is required",
	"customer.email:email":            "Please enter a valid email address",
	"products:min":                    "At least one product is required",
	"products.*.productName:required": "Product is required",
	"products.*.hsnCode:required":     "HSN Code is required",
	"products.*.qty:gte":              "Quantity must be at least 1",
	"products.*.salePrice:gte":        "Sale price must be greater than 0",
	"products.*.discount:gte":         "Discount must be between 0 and 100",
	"products.*.discount:lte":         "Discount must be between 0 and 100",
	"paymentMethod:payment_method":    "Select a valid payment method",
}

// Validator checks drafts against the struct-tag schema plus the
// collection rules that tags cannot express.
type Validator struct {
	validate *validator.Validate
}

// NewValidator registers the invoice tags and JSON field naming.
func NewValidator() *Validator {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("digits", func(fl validator.FieldLevel) bool {
		for _, r := range fl.Field().String() {
			if r < '0' || r > '9' {
				return false
			}
		}
		return true
	})
	_ = v.RegisterValidation("payment_method", func(fl validator.FieldLevel) bool {
		return PaymentMethod(fl.Field().String()).Valid()
	})
	return &Validator{validate: v}
}

// Validate returns the full report for draft. Each field reports at most one
// message: tags run in required, format, range order and the first failure wins.
func (v *Validator) Validate(draft InvoiceDraft) ErrorReport {
	report := ErrorReport{}
	err := v.validate.Struct(draft)
	var fieldErrs validator.ValidationErrors
	switch {
	case errors.As(err, &fieldErrs):
		for _, fe := range fieldErrs {
			path := fieldPath(fe.Namespace())
			if _, seen := report[path]; seen {
				continue
			}
			report[path] = messageFor(path, fe)
		}
	case err != nil:
		report["invoice"] = err.Error()
	}

	// Redundant with the line tags; kept as the final gate before submission
	// and only reported when no line-level detail exists.
	if len(draft.Products) > 0 && !report.hasLineErrors() {
		for _, line := range draft.Products {
			if !line.complete() {
				report["products"] = msgIncompleteProducts
				break
			}
		}
	}
	return report
}

// fieldPath turns "InvoiceDraft.products[2].qty" into "products.2.qty".
func fieldPath(namespace string) string {
	if i := strings.IndexByte(namespace, '.'); i >= 0 {
		namespace = namespace[i+1:]
	}
	return strings.NewReplacer("[", ".", "]", "").Replace(namespace)
}

func messageFor(path string, fe validator.FieldError) string {
	pattern := path
	if _, field, ok := splitLinePath(path); ok {
		pattern = "products.*." + field
	}
	if msg, ok := messages[pattern+":"+fe.Tag()]; ok {
		return msg
	}
	return fmt.Sprintf("%s failed %s validation", path, fe.Tag())
}

// splitLinePath parses "products.<i>.<field>".
func splitLinePath(path string) (int, string, bool) {
	parts := strings.SplitN(path, ".", 3)
	if len(parts) != 3 || parts[0] != "products" {
		return 0, "", false
	}
	index, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, "", false
	}
	return index, parts[2], true
}

// lineRank places product line paths between the collection path and payment.
const lineRank = 9

var fieldRank = map[string]int{
	"invoiceNo":        0,
	"invoiceDate":      1,
	"invoiceTime":      2,
	"customer.name":    3,
	"customer.address": 4,
	"customer.phone":   5,
	"customer.email":   6,
	"customer.gstin":   7,
	"products":         8,
	"paymentMethod":    10,
	"transactionId":    11,
	"narration":        12,
}

var lineFieldRank = map[string]int{
	string(FieldProductName): 0,
	string(FieldHSNCode):     1,
	string(FieldQty):         2,
	string(FieldSalePrice):   3,
	string(FieldDiscount):    4,
}

type order struct{ rank, line, field int }

func (o order) less(p order) bool {
	if o.rank != p.rank {
		return o.rank < p.rank
	}
	if o.line != p.line {
		return o.line < p.line
	}
	return o.field < p.field
}

func pathOrder(path string) order {
	if index, field, ok := splitLinePath(path); ok {
		rank, known := lineFieldRank[field]
		if !known {
			rank = len(lineFieldRank)
		}
		return order{rank: lineRank, line: index, field: rank}
	}
	if rank, ok := fieldRank[path]; ok {
		return order{rank: rank}
	}
	return order{rank: len(fieldRank) + 1}
}
