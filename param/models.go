// Package param defines the system parameter store: named text values
// holding operational configuration such as the tax rate and the two
// sequence counters that back invoice numbering.
package param

import (
	"errors"

	"github.com/xraph/facture/types"
)

// ErrNotFound reports a missing parameter. Store backends return it (or an
// error wrapping it) so callers below the root package can distinguish a
// missing parameter from a store failure.
var ErrNotFound = errors.New("param: parameter not found")

// Well-known parameter names. The counters hold the *last issued* number
// as decimal text and must only be written through sequence.Allocator.
const (
	KeyTaxRate     = "tax_rate"
	KeyInvoiceSeq  = "invoice_counter"
	KeyLineItemSeq = "line_counter"
)

// Parameter is a named text value.
type Parameter struct {
	types.Entity
	Name  string `json:"name"`
	Value string `json:"value"`
}
