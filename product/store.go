package product

import "context"

// OrderBy selects the listing order for products.
type OrderBy string

const (
	// OrderByName orders listings by display name (the default).
	OrderByName OrderBy = "name"
	// OrderByCode orders listings by product code.
	OrderByCode OrderBy = "code"
)

type Store interface {
	Create(ctx context.Context, p *Product) error
	Get(ctx context.Context, code int) (*Product, error)
	List(ctx context.Context, opts ListOpts) ([]*Product, error)
	Update(ctx context.Context, p *Product) error
	Delete(ctx context.Context, code int) error
}

type ListOpts struct {
	OrderBy OrderBy
	Limit   int
	Offset  int
}
