// Package facture provides an embeddable invoicing engine for Go applications.
//
// Facture is designed as a library, not a service. Import it directly into
// your Go application. It provides:
//
//   - Draft invoice building with live total recalculation
//   - Gapless sequential document and line numbering
//   - Exact integer tax and total arithmetic (no floating point)
//   - Customer and product catalogs keyed by their business identifiers
//   - Pluggable lifecycle hooks (audit trail, metrics, renderers)
//   - Swappable persistence: PostgreSQL, SQLite, MongoDB or in-memory
//
// # Quick Start
//
// Create a facture instance with your preferred store:
//
//	import (
//	    "github.com/xraph/facture"
//	    "github.com/xraph/facture/store/memory"
//	)
//
//	f := facture.New(memory.New())
//	if err := f.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	defer f.Stop()
//
// # Core Concepts
//
// Customers and products are reference data, keyed by tax ID and product
// code respectively:
//
//	f.CreateCustomer(ctx, &customer.Customer{TaxID: "0102030405", LastNames: "Acme"})
//	f.CreateProduct(ctx, &product.Product{Code: 7, Name: "Widget", UnitPrice: facture.USD(1000)})
//
// Invoices are built as in-memory drafts and persisted atomically on commit:
//
//	inv := f.NewInvoice()
//	f.AssignCustomer(ctx, inv, "0102030405")
//	f.AddLine(ctx, inv, 7, 3)
//	if err := f.Commit(ctx, inv); err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(inv.Number, inv.Total) // "101" $33.60
//
// Commit allocates the document number and a consecutive line number per
// line item from store-backed counters. The numbering is gapless: if
// persisting the invoice fails the counters are restored and the same
// numbers are reissued on the next commit.
//
// # Money
//
// All monetary calculations use integer arithmetic to avoid floating-point
// precision issues. The Money type represents amounts in the smallest
// currency unit (cents for USD, pence for GBP, etc). Tax rates are held in
// basis points and applied with half-up rounding.
//
// # TypeID
//
// Draft invoices and line items have no business number until commit, so
// they carry TypeID primary keys from the moment they are created:
//
//	inv_01h455vb4pex5vsknk084sn02q  // Invoice ID
//	li_01h2xcejqtf2nbrexx3vqjhp41  // Line item ID
//
// TypeIDs are K-sortable, making them ideal for database indexes and
// providing natural time-ordering of entities.
package facture
