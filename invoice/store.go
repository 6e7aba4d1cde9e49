package invoice

import (
	"context"
	"time"

	"github.com/xraph/facture/id"
)

// Store persists finalized invoice aggregates. The whole aggregate,
// header and lines, is written in a single call.
type Store interface {
	Create(ctx context.Context, inv *Invoice) error
	Get(ctx context.Context, invoiceID id.InvoiceID) (*Invoice, error)
	GetByNumber(ctx context.Context, number string) (*Invoice, error)
	List(ctx context.Context, opts ListOpts) ([]*Invoice, error)
}

// ListOpts filters and pages invoice listings. Results are ordered newest
// first: issue date descending, then document number descending.
type ListOpts struct {
	// Status restricts results to a lifecycle state when non-empty.
	Status Status
	// Start and End bound the issue date (inclusive) when non-zero.
	Start time.Time
	End   time.Time

	Limit  int
	Offset int
}
