package facture

import "github.com/xraph/facture/types"

// Re-export common types for convenience so users don't have to import types package.

// Money is re-exported from types package.
type Money = types.Money

// TaxRate is re-exported from types package.
type TaxRate = types.TaxRate

// Entity is re-exported from types package.
type Entity = types.Entity

// Re-export Money constructors
var (
	USD        = types.USD
	EUR        = types.EUR
	Zero       = types.Zero
	Sum        = types.Sum
	ParseMajor = types.ParseMajor
)

// Re-export TaxRate constructors
var (
	NewTaxRate   = types.NewTaxRate
	ParseTaxRate = types.ParseTaxRate
)

// Re-export Entity constructor
var NewEntity = types.NewEntity
