package store

import (
	"context"

	"github.com/xraph/facture/customer"
	"github.com/xraph/facture/id"
	"github.com/xraph/facture/invoice"
	"github.com/xraph/facture/param"
	"github.com/xraph/facture/product"
)

// Store is the unified storage interface for all Facture entities.
// Instead of embedding the sub-interfaces, we explicitly declare all methods
// to avoid naming conflicts.
type Store interface {
	// Customer methods
	CreateCustomer(ctx context.Context, c *customer.Customer) error
	GetCustomer(ctx context.Context, taxID string) (*customer.Customer, error)
	ListCustomers(ctx context.Context, opts customer.ListOpts) ([]*customer.Customer, error)
	UpdateCustomer(ctx context.Context, c *customer.Customer) error
	DeleteCustomer(ctx context.Context, taxID string) error

	// Product methods
	CreateProduct(ctx context.Context, p *product.Product) error
	GetProduct(ctx context.Context, code int) (*product.Product, error)
	ListProducts(ctx context.Context, opts product.ListOpts) ([]*product.Product, error)
	UpdateProduct(ctx context.Context, p *product.Product) error
	DeleteProduct(ctx context.Context, code int) error

	// Parameter methods
	GetParameter(ctx context.Context, name string) (*param.Parameter, error)
	PutParameter(ctx context.Context, p *param.Parameter) error
	ListParameters(ctx context.Context) ([]*param.Parameter, error)

	// Invoice methods
	CreateInvoice(ctx context.Context, inv *invoice.Invoice) error
	GetInvoice(ctx context.Context, invoiceID id.InvoiceID) (*invoice.Invoice, error)
	GetInvoiceByNumber(ctx context.Context, number string) (*invoice.Invoice, error)
	ListInvoices(ctx context.Context, opts invoice.ListOpts) ([]*invoice.Invoice, error)

	// Core methods
	Migrate(ctx context.Context) error
	Ping(ctx context.Context) error
	Close() error
}

// Params adapts a Store to the parameter-store interface consumed by the
// sequence allocator.
func Params(s Store) param.Store {
	return paramStore{s}
}

type paramStore struct {
	s Store
}

func (p paramStore) Get(ctx context.Context, name string) (*param.Parameter, error) {
	return p.s.GetParameter(ctx, name)
}

func (p paramStore) Put(ctx context.Context, pr *param.Parameter) error {
	return p.s.PutParameter(ctx, pr)
}

func (p paramStore) List(ctx context.Context) ([]*param.Parameter, error) {
	return p.s.ListParameters(ctx)
}
