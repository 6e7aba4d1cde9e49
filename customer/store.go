package customer

import "context"

// OrderBy selects the listing order for customers.
type OrderBy string

const (
	// OrderByLastNames orders listings by last names (the default).
	OrderByLastNames OrderBy = "last_names"
	// OrderByTaxID orders listings by tax ID.
	OrderByTaxID OrderBy = "tax_id"
)

type Store interface {
	Create(ctx context.Context, c *Customer) error
	Get(ctx context.Context, taxID string) (*Customer, error)
	List(ctx context.Context, opts ListOpts) ([]*Customer, error)
	Update(ctx context.Context, c *Customer) error
	Delete(ctx context.Context, taxID string) error
}

type ListOpts struct {
	OrderBy OrderBy
	Limit   int
	Offset  int
}
