// Package invoice defines the invoice aggregate and its pure totals
// calculator.
//
// An invoice header owns its line items by value, in insertion order.
// Business numbers (the document number and per-line numbers) are zero
// values while the invoice is a draft and are stamped exactly once at
// commit by the engine.
package invoice

import (
	"time"

	"github.com/xraph/facture/id"
	"github.com/xraph/facture/types"
)

// Status is the lifecycle state of an invoice.
type Status string

const (
	// StatusDraft marks an in-memory invoice still being built. Drafts are
	// never persisted.
	StatusDraft Status = "draft"
	// StatusFinalized marks a committed invoice. Finalized invoices are
	// immutable.
	StatusFinalized Status = "finalized"
)

// Invoice is the billing aggregate: one header plus its line items.
type Invoice struct {
	types.Entity
	ID     id.InvoiceID `json:"id"`
	Number string       `json:"number,omitempty"` // empty until commit
	Status Status       `json:"status"`

	IssueDate     time.Time `json:"issue_date"`
	CustomerTaxID string    `json:"customer_tax_id,omitempty"`
	Currency      string    `json:"currency"`

	ZeroRatedBase types.Money `json:"zero_rated_base"`
	Subtotal      types.Money `json:"subtotal"`
	TaxAmount     types.Money `json:"tax_amount"`
	Total         types.Money `json:"total"`

	LineItems []LineItem `json:"line_items"`
}

// Finalized reports whether the invoice has been committed.
func (i *Invoice) Finalized() bool {
	return i.Status == StatusFinalized
}

// LineItem is one priced position on an invoice. UnitPrice is a copy of
// the product's price at add-time and never changes afterwards.
type LineItem struct {
	ID          id.LineItemID `json:"id"`
	Number      int64         `json:"number,omitempty"` // 0 until commit
	ProductCode int           `json:"product_code"`
	Description string        `json:"description"`
	Quantity    int64         `json:"quantity"`
	UnitPrice   types.Money   `json:"unit_price"`
	Amount      types.Money   `json:"amount"`
}
