// Package mongo implements the Facture store on MongoDB via the Grove
// ORM. Each invoice aggregate is one document.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/xraph/grove"
	"github.com/xraph/grove/drivers/mongodriver"

	facture "github.com/xraph/facture"
	"github.com/xraph/facture/customer"
	"github.com/xraph/facture/id"
	"github.com/xraph/facture/invoice"
	"github.com/xraph/facture/param"
	"github.com/xraph/facture/product"
	facturestore "github.com/xraph/facture/store"
)

// Collection name constants.
const (
	colCustomers  = "facture_customers"
	colProducts   = "facture_products"
	colParameters = "facture_parameters"
	colInvoices   = "facture_invoices"
)

// compile-time interface check
var _ facturestore.Store = (*Store)(nil)

// Store implements store.Store using MongoDB via Grove ORM.
type Store struct {
	db  *grove.DB
	mdb *mongodriver.MongoDB
}

// New creates a new MongoDB store backed by Grove ORM.
func New(db *grove.DB) *Store {
	return &Store{
		db:  db,
		mdb: mongodriver.Unwrap(db),
	}
}

// DB returns the underlying grove database for direct access.
func (s *Store) DB() *grove.DB { return s.db }

// Migrate creates indexes for all facture collections.
func (s *Store) Migrate(ctx context.Context) error {
	indexes := migrationIndexes()

	for col, models := range indexes {
		if len(models) == 0 {
			continue
		}
		_, err := s.mdb.Collection(col).Indexes().CreateMany(ctx, models)
		if err != nil {
			return fmt.Errorf("facture/mongo: migrate %s indexes: %w", col, err)
		}
	}
	return nil
}

// Ping checks database connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// ==================== Customer Store ====================

func (s *Store) CreateCustomer(ctx context.Context, c *customer.Customer) error {
	m := toCustomerModel(c)
	_, err := s.mdb.NewInsert(m).Exec(ctx)
	if err != nil {
		return fmt.Errorf("facture/mongo: create customer: %w", err)
	}
	return nil
}

func (s *Store) GetCustomer(ctx context.Context, taxID string) (*customer.Customer, error) {
	var m customerModel
	err := s.mdb.NewFind(&m).
		Filter(bson.M{"_id": taxID}).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return nil, facture.ErrCustomerNotFound
		}
		return nil, fmt.Errorf("facture/mongo: get customer: %w", err)
	}
	return fromCustomerModel(&m), nil
}

func (s *Store) ListCustomers(ctx context.Context, opts customer.ListOpts) ([]*customer.Customer, error) {
	sortKeys := bson.D{{Key: "last_names", Value: 1}, {Key: "_id", Value: 1}}
	if opts.OrderBy == customer.OrderByTaxID {
		sortKeys = bson.D{{Key: "_id", Value: 1}}
	}

	var models []customerModel
	q := s.mdb.NewFind(&models).
		Filter(bson.M{}).
		Sort(sortKeys)

	if opts.Limit > 0 {
		q = q.Limit(int64(opts.Limit))
	}
	if opts.Offset > 0 {
		q = q.Skip(int64(opts.Offset))
	}

	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("facture/mongo: list customers: %w", err)
	}

	result := make([]*customer.Customer, len(models))
	for i := range models {
		result[i] = fromCustomerModel(&models[i])
	}
	return result, nil
}

func (s *Store) UpdateCustomer(ctx context.Context, c *customer.Customer) error {
	m := toCustomerModel(c)
	m.UpdatedAt = now()

	res, err := s.mdb.NewUpdate(m).
		Filter(bson.M{"_id": m.TaxID}).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("facture/mongo: update customer: %w", err)
	}
	if res.MatchedCount() == 0 {
		return facture.ErrCustomerNotFound
	}
	return nil
}

func (s *Store) DeleteCustomer(ctx context.Context, taxID string) error {
	res, err := s.mdb.NewDelete((*customerModel)(nil)).
		Filter(bson.M{"_id": taxID}).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("facture/mongo: delete customer: %w", err)
	}
	if res.DeletedCount() == 0 {
		return facture.ErrCustomerNotFound
	}
	return nil
}

// ==================== Product Store ====================

func (s *Store) CreateProduct(ctx context.Context, p *product.Product) error {
	m := toProductModel(p)
	_, err := s.mdb.NewInsert(m).Exec(ctx)
	if err != nil {
		return fmt.Errorf("facture/mongo: create product: %w", err)
	}
	return nil
}

func (s *Store) GetProduct(ctx context.Context, code int) (*product.Product, error) {
	var m productModel
	err := s.mdb.NewFind(&m).
		Filter(bson.M{"_id": code}).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return nil, facture.ErrProductNotFound
		}
		return nil, fmt.Errorf("facture/mongo: get product: %w", err)
	}
	return fromProductModel(&m), nil
}

func (s *Store) ListProducts(ctx context.Context, opts product.ListOpts) ([]*product.Product, error) {
	sortKeys := bson.D{{Key: "name", Value: 1}, {Key: "_id", Value: 1}}
	if opts.OrderBy == product.OrderByCode {
		sortKeys = bson.D{{Key: "_id", Value: 1}}
	}

	var models []productModel
	q := s.mdb.NewFind(&models).
		Filter(bson.M{}).
		Sort(sortKeys)

	if opts.Limit > 0 {
		q = q.Limit(int64(opts.Limit))
	}
	if opts.Offset > 0 {
		q = q.Skip(int64(opts.Offset))
	}

	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("facture/mongo: list products: %w", err)
	}

	result := make([]*product.Product, len(models))
	for i := range models {
		result[i] = fromProductModel(&models[i])
	}
	return result, nil
}

func (s *Store) UpdateProduct(ctx context.Context, p *product.Product) error {
	m := toProductModel(p)
	m.UpdatedAt = now()

	res, err := s.mdb.NewUpdate(m).
		Filter(bson.M{"_id": m.Code}).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("facture/mongo: update product: %w", err)
	}
	if res.MatchedCount() == 0 {
		return facture.ErrProductNotFound
	}
	return nil
}

func (s *Store) DeleteProduct(ctx context.Context, code int) error {
	res, err := s.mdb.NewDelete((*productModel)(nil)).
		Filter(bson.M{"_id": code}).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("facture/mongo: delete product: %w", err)
	}
	if res.DeletedCount() == 0 {
		return facture.ErrProductNotFound
	}
	return nil
}

// ==================== Parameter Store ====================

func (s *Store) GetParameter(ctx context.Context, name string) (*param.Parameter, error) {
	var m parameterModel
	err := s.mdb.NewFind(&m).
		Filter(bson.M{"_id": name}).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return nil, facture.ErrParameterNotFound
		}
		return nil, fmt.Errorf("facture/mongo: get parameter: %w", err)
	}
	return fromParameterModel(&m), nil
}

func (s *Store) PutParameter(ctx context.Context, p *param.Parameter) error {
	m := toParameterModel(p)
	m.UpdatedAt = now()
	if m.CreatedAt.IsZero() {
		m.CreatedAt = m.UpdatedAt
	}

	_, err := s.mdb.NewUpdate(m).
		Filter(bson.M{"_id": m.Name}).
		SetUpdate(bson.M{"$set": bson.M{
			"_id":        m.Name,
			"value":      m.Value,
			"created_at": m.CreatedAt,
			"updated_at": m.UpdatedAt,
		}}).
		Upsert().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("facture/mongo: put parameter: %w", err)
	}
	return nil
}

func (s *Store) ListParameters(ctx context.Context) ([]*param.Parameter, error) {
	var models []parameterModel
	err := s.mdb.NewFind(&models).
		Filter(bson.M{}).
		Sort(bson.D{{Key: "_id", Value: 1}}).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("facture/mongo: list parameters: %w", err)
	}

	result := make([]*param.Parameter, len(models))
	for i := range models {
		result[i] = fromParameterModel(&models[i])
	}
	return result, nil
}

// ==================== Invoice Store ====================

func (s *Store) CreateInvoice(ctx context.Context, inv *invoice.Invoice) error {
	m := toInvoiceModel(inv)
	_, err := s.mdb.NewInsert(m).Exec(ctx)
	if err != nil {
		return fmt.Errorf("facture/mongo: create invoice: %w", err)
	}
	return nil
}

func (s *Store) GetInvoice(ctx context.Context, invoiceID id.InvoiceID) (*invoice.Invoice, error) {
	var m invoiceModel
	err := s.mdb.NewFind(&m).
		Filter(bson.M{"_id": invoiceID.String()}).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return nil, facture.ErrInvoiceNotFound
		}
		return nil, fmt.Errorf("facture/mongo: get invoice: %w", err)
	}
	return fromInvoiceModel(&m)
}

func (s *Store) GetInvoiceByNumber(ctx context.Context, number string) (*invoice.Invoice, error) {
	var m invoiceModel
	err := s.mdb.NewFind(&m).
		Filter(bson.M{"number": number}).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return nil, facture.ErrInvoiceNotFound
		}
		return nil, fmt.Errorf("facture/mongo: get invoice by number: %w", err)
	}
	return fromInvoiceModel(&m)
}

func (s *Store) ListInvoices(ctx context.Context, opts invoice.ListOpts) ([]*invoice.Invoice, error) {
	filter := bson.M{}
	if opts.Status != "" {
		filter["status"] = string(opts.Status)
	}
	dateRange := bson.M{}
	if !opts.Start.IsZero() {
		dateRange["$gte"] = opts.Start
	}
	if !opts.End.IsZero() {
		dateRange["$lte"] = opts.End
	}
	if len(dateRange) > 0 {
		filter["issue_date"] = dateRange
	}

	var models []invoiceModel
	q := s.mdb.NewFind(&models).
		Filter(filter).
		Sort(bson.D{{Key: "issue_date", Value: -1}, {Key: "number_value", Value: -1}})

	if opts.Limit > 0 {
		q = q.Limit(int64(opts.Limit))
	}
	if opts.Offset > 0 {
		q = q.Skip(int64(opts.Offset))
	}

	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("facture/mongo: list invoices: %w", err)
	}

	result := make([]*invoice.Invoice, len(models))
	for i := range models {
		inv, err := fromInvoiceModel(&models[i])
		if err != nil {
			return nil, err
		}
		result[i] = inv
	}
	return result, nil
}

// ==================== Helpers ====================

func migrationIndexes() map[string][]mongo.IndexModel {
	return map[string][]mongo.IndexModel{
		colCustomers: {
			{Keys: bson.D{{Key: "last_names", Value: 1}, {Key: "_id", Value: 1}}},
		},
		colProducts: {
			{Keys: bson.D{{Key: "name", Value: 1}, {Key: "_id", Value: 1}}},
		},
		colParameters: {},
		colInvoices: {
			{
				Keys:    bson.D{{Key: "number", Value: 1}},
				Options: options.Index().SetUnique(true).SetSparse(true),
			},
			{Keys: bson.D{{Key: "issue_date", Value: -1}, {Key: "number_value", Value: -1}}},
			{Keys: bson.D{{Key: "customer_tax_id", Value: 1}}},
			{Keys: bson.D{{Key: "status", Value: 1}}},
		},
	}
}

// now returns the current UTC time.
func now() time.Time {
	return time.Now().UTC()
}

// docNumber parses a document number's decimal text for range sorting.
func docNumber(number string) int64 {
	n, _ := strconv.ParseInt(number, 10, 64) //nolint:errcheck // empty draft numbers sort as zero
	return n
}

func isNoDocuments(err error) bool {
	return errors.Is(err, mongo.ErrNoDocuments)
}
