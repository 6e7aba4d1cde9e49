// Package customer defines the customer reference entity.
//
// Customers are read but never mutated by the invoicing workflow; the
// aggregate builder only references them by their tax ID.
package customer

import (
	"github.com/xraph/facture/types"
)

// Customer is a billable party. TaxID is the business key (a national
// identification string, unique across the store).
type Customer struct {
	types.Entity
	TaxID      string `json:"tax_id"`
	FirstNames string `json:"first_names"`
	LastNames  string `json:"last_names"`
	Address    string `json:"address"`
}

// DisplayName returns "LastNames FirstNames" for listings.
func (c *Customer) DisplayName() string {
	if c.FirstNames == "" {
		return c.LastNames
	}
	return c.LastNames + " " + c.FirstNames
}
