// Package product defines the product reference entity.
package product

import (
	"github.com/xraph/facture/types"
)

// Product is a sellable item. Code is the business key. UnitPrice is the
// *current* price; the aggregate builder copies it into line items at
// add-time, so later price changes never affect saved invoices.
type Product struct {
	types.Entity
	Code        int         `json:"code"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	UnitPrice   types.Money `json:"unit_price"`
	Stock       int         `json:"stock"`
	Taxable     bool        `json:"taxable"`
}
