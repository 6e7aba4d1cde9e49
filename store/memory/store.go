// Package memory provides an in-memory Store implementation, used as the
// default backend and in tests.
package memory

import (
	"context"
	"sort"
	"strconv"
	"sync"

	"github.com/xraph/facture"
	"github.com/xraph/facture/customer"
	"github.com/xraph/facture/id"
	"github.com/xraph/facture/invoice"
	"github.com/xraph/facture/param"
	"github.com/xraph/facture/product"
	facturestore "github.com/xraph/facture/store"
)

var _ facturestore.Store = (*Store)(nil)

type Store struct {
	mu sync.RWMutex

	// Reference data, keyed by business key
	customers map[string]*customer.Customer
	products  map[int]*product.Product
	params    map[string]*param.Parameter

	// Invoice storage, keyed by aggregate ID
	invoices map[string]*invoice.Invoice
}

func New() *Store {
	return &Store{
		customers: make(map[string]*customer.Customer),
		products:  make(map[int]*product.Product),
		params:    make(map[string]*param.Parameter),
		invoices:  make(map[string]*invoice.Invoice),
	}
}

// Customer Store implementation
func (s *Store) CreateCustomer(_ context.Context, c *customer.Customer) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.customers[c.TaxID]; exists {
		return facture.ErrCustomerExists
	}
	s.customers[c.TaxID] = c
	return nil
}

func (s *Store) GetCustomer(_ context.Context, taxID string) (*customer.Customer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if c, ok := s.customers[taxID]; ok {
		return c, nil
	}
	return nil, facture.ErrCustomerNotFound
}

func (s *Store) ListCustomers(_ context.Context, opts customer.ListOpts) ([]*customer.Customer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*customer.Customer, 0, len(s.customers))
	for _, c := range s.customers {
		result = append(result, c)
	}

	sort.Slice(result, func(i, j int) bool {
		if opts.OrderBy == customer.OrderByTaxID {
			return result[i].TaxID < result[j].TaxID
		}
		if result[i].LastNames != result[j].LastNames {
			return result[i].LastNames < result[j].LastNames
		}
		return result[i].TaxID < result[j].TaxID
	})

	return page(result, opts.Offset, opts.Limit), nil
}

func (s *Store) UpdateCustomer(_ context.Context, c *customer.Customer) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.customers[c.TaxID]; !exists {
		return facture.ErrCustomerNotFound
	}
	s.customers[c.TaxID] = c
	return nil
}

func (s *Store) DeleteCustomer(_ context.Context, taxID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.customers[taxID]; !exists {
		return facture.ErrCustomerNotFound
	}
	delete(s.customers, taxID)
	return nil
}

// Product Store implementation
func (s *Store) CreateProduct(_ context.Context, p *product.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.products[p.Code]; exists {
		return facture.ErrProductExists
	}
	s.products[p.Code] = p
	return nil
}

func (s *Store) GetProduct(_ context.Context, code int) (*product.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if p, ok := s.products[code]; ok {
		return p, nil
	}
	return nil, facture.ErrProductNotFound
}

func (s *Store) ListProducts(_ context.Context, opts product.ListOpts) ([]*product.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*product.Product, 0, len(s.products))
	for _, p := range s.products {
		result = append(result, p)
	}

	sort.Slice(result, func(i, j int) bool {
		if opts.OrderBy == product.OrderByCode {
			return result[i].Code < result[j].Code
		}
		if result[i].Name != result[j].Name {
			return result[i].Name < result[j].Name
		}
		return result[i].Code < result[j].Code
	})

	return page(result, opts.Offset, opts.Limit), nil
}

func (s *Store) UpdateProduct(_ context.Context, p *product.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.products[p.Code]; !exists {
		return facture.ErrProductNotFound
	}
	s.products[p.Code] = p
	return nil
}

func (s *Store) DeleteProduct(_ context.Context, code int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.products[code]; !exists {
		return facture.ErrProductNotFound
	}
	delete(s.products, code)
	return nil
}

// Parameter Store implementation
func (s *Store) GetParameter(_ context.Context, name string) (*param.Parameter, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if p, ok := s.params[name]; ok {
		return p, nil
	}
	return nil, facture.ErrParameterNotFound
}

func (s *Store) PutParameter(_ context.Context, p *param.Parameter) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.params[p.Name] = p
	return nil
}

func (s *Store) ListParameters(_ context.Context) ([]*param.Parameter, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*param.Parameter, 0, len(s.params))
	for _, p := range s.params {
		result = append(result, p)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Name < result[j].Name
	})
	return result, nil
}

// Invoice Store implementation
func (s *Store) CreateInvoice(_ context.Context, inv *invoice.Invoice) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.invoices[inv.ID.String()]; exists {
		return facture.ErrAlreadyExists
	}

	// Committed invoices are immutable; keep our own copy so later caller
	// mutations cannot reach the stored aggregate.
	s.invoices[inv.ID.String()] = copyInvoice(inv)
	return nil
}

func (s *Store) GetInvoice(_ context.Context, invoiceID id.InvoiceID) (*invoice.Invoice, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if inv, ok := s.invoices[invoiceID.String()]; ok {
		return copyInvoice(inv), nil
	}
	return nil, facture.ErrInvoiceNotFound
}

func (s *Store) GetInvoiceByNumber(_ context.Context, number string) (*invoice.Invoice, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, inv := range s.invoices {
		if inv.Number == number {
			return copyInvoice(inv), nil
		}
	}
	return nil, facture.ErrInvoiceNotFound
}

func (s *Store) ListInvoices(_ context.Context, opts invoice.ListOpts) ([]*invoice.Invoice, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*invoice.Invoice, 0)
	for _, inv := range s.invoices {
		if opts.Status != "" && inv.Status != opts.Status {
			continue
		}
		if !opts.Start.IsZero() && inv.IssueDate.Before(opts.Start) {
			continue
		}
		if !opts.End.IsZero() && inv.IssueDate.After(opts.End) {
			continue
		}
		result = append(result, copyInvoice(inv))
	}

	// Newest first: issue date desc, then document number desc.
	sort.Slice(result, func(i, j int) bool {
		if !result[i].IssueDate.Equal(result[j].IssueDate) {
			return result[i].IssueDate.After(result[j].IssueDate)
		}
		return docNumber(result[i].Number) > docNumber(result[j].Number)
	})

	return page(result, opts.Offset, opts.Limit), nil
}

// Core methods
func (s *Store) Migrate(_ context.Context) error {
	return nil
}

func (s *Store) Ping(_ context.Context) error {
	return nil
}

func (s *Store) Close() error {
	return nil
}

// copyInvoice clones an aggregate, lines included, so the stored copy and
// the caller's copy can never alias.
func copyInvoice(inv *invoice.Invoice) *invoice.Invoice {
	out := *inv
	out.LineItems = make([]invoice.LineItem, len(inv.LineItems))
	copy(out.LineItems, inv.LineItems)
	return &out
}

func docNumber(number string) int64 {
	n, _ := strconv.ParseInt(number, 10, 64)
	return n
}

func page[T any](items []T, offset, limit int) []T {
	start := offset
	if start > len(items) {
		start = len(items)
	}
	end := start + limit
	if limit == 0 || end > len(items) {
		end = len(items)
	}
	return items[start:end]
}
