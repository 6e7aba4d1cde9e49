package facture

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/xraph/facture/customer"
	"github.com/xraph/facture/id"
	"github.com/xraph/facture/invoice"
	"github.com/xraph/facture/param"
	"github.com/xraph/facture/plugin"
	"github.com/xraph/facture/product"
	"github.com/xraph/facture/sequence"
	"github.com/xraph/facture/store"
	"github.com/xraph/facture/types"
)

// DefaultCurrency is used for new invoices unless overridden with
// WithCurrency.
const DefaultCurrency = "usd"

// DefaultCommitTimeout bounds how long Commit waits for the commit lock.
const DefaultCommitTimeout = 5 * time.Second

// Facture is the main invoicing engine.
type Facture struct {
	store   store.Store
	seq     *sequence.Allocator
	plugins *plugin.Registry
	logger  *slog.Logger

	// commitMu serializes Commit across the engine. Buffered with
	// capacity one so acquisition can race a timeout.
	commitMu      chan struct{}
	commitTimeout time.Duration

	currency string
}

// New creates a new Facture instance.
func New(s store.Store, opts ...Option) *Facture {
	f := &Facture{
		store:         s,
		seq:           sequence.NewAllocator(store.Params(s)),
		plugins:       plugin.NewRegistry(),
		logger:        slog.Default(),
		commitMu:      make(chan struct{}, 1),
		commitTimeout: DefaultCommitTimeout,
		currency:      DefaultCurrency,
	}

	for _, opt := range opts {
		opt(f)
	}

	return f
}

// Option configures a Facture instance.
type Option func(*Facture)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(f *Facture) {
		f.logger = logger
		f.plugins.WithLogger(logger)
	}
}

// WithPlugin registers a plugin.
func WithPlugin(p plugin.Plugin) Option {
	return func(f *Facture) {
		_ = f.plugins.Register(p) //nolint:errcheck // best-effort plugin registration during init
	}
}

// WithCurrency sets the currency stamped on new invoices.
func WithCurrency(currency string) Option {
	return func(f *Facture) {
		f.currency = currency
	}
}

// WithCommitTimeout bounds how long Commit waits for the commit lock.
func WithCommitTimeout(d time.Duration) Option {
	return func(f *Facture) {
		f.commitTimeout = d
	}
}

// Start migrates the store and initializes plugins.
func (f *Facture) Start(ctx context.Context) error {
	if err := f.store.Migrate(ctx); err != nil {
		return err
	}

	f.plugins.EmitInit(ctx, f)

	f.logger.Info("facture started",
		"currency", f.currency,
		"commit_timeout", f.commitTimeout,
		"plugins", f.plugins.Count(),
	)

	return nil
}

// Stop shuts down the Facture engine.
func (f *Facture) Stop() error {
	ctx := context.Background()
	f.plugins.EmitShutdown(ctx)

	return f.store.Close()
}

// ──────────────────────────────────────────────────
// Invoice Building
// ──────────────────────────────────────────────────

// NewInvoice opens a new draft invoice. Drafts live only in memory: no
// numbers are allocated and nothing is persisted until Commit.
func (f *Facture) NewInvoice() *invoice.Invoice {
	inv := &invoice.Invoice{
		Entity:        types.NewEntity(),
		ID:            id.NewInvoiceID(),
		Status:        invoice.StatusDraft,
		IssueDate:     time.Now().UTC(),
		Currency:      f.currency,
		ZeroRatedBase: types.Zero(f.currency),
		Subtotal:      types.Zero(f.currency),
		TaxAmount:     types.Zero(f.currency),
		Total:         types.Zero(f.currency),
		LineItems:     []invoice.LineItem{},
	}

	f.plugins.EmitInvoiceOpened(context.Background(), inv)
	return inv
}

// AssignCustomer attaches a customer to a draft by tax ID. Reassigning
// before commit is allowed and last write wins.
func (f *Facture) AssignCustomer(ctx context.Context, inv *invoice.Invoice, taxID string) error {
	if inv.Finalized() {
		return ErrAlreadyFinalized
	}
	if taxID == "" {
		return ValidationError{Field: "tax_id", Message: "must not be empty"}
	}

	if _, err := f.store.GetCustomer(ctx, taxID); err != nil {
		return err
	}

	inv.CustomerTaxID = taxID
	inv.Touch()

	f.plugins.EmitCustomerAssigned(ctx, inv, taxID)
	return nil
}

// AddLine appends a line item for the given product and quantity, copying
// the product's current unit price, and recalculates the draft's totals.
// On any validation or lookup failure the draft is left untouched.
func (f *Facture) AddLine(ctx context.Context, inv *invoice.Invoice, productCode int, quantity int64) error {
	if inv.Finalized() {
		return ErrAlreadyFinalized
	}
	if productCode < 0 {
		return ValidationError{Field: "product_code", Message: "must not be negative"}
	}
	if quantity <= 0 {
		return ValidationError{Field: "quantity", Message: "must be positive"}
	}

	p, err := f.store.GetProduct(ctx, productCode)
	if err != nil {
		return err
	}

	rate, err := f.TaxRate(ctx)
	if err != nil {
		return err
	}

	line := invoice.LineItem{
		ID:          id.NewLineItemID(),
		ProductCode: p.Code,
		Description: p.Name,
		Quantity:    quantity,
		UnitPrice:   p.UnitPrice,
	}
	line.Amount = invoice.LineAmount(line)

	inv.LineItems = append(inv.LineItems, line)
	f.applyTotals(inv, rate)
	inv.Touch()

	f.plugins.EmitLineAdded(ctx, inv, line)
	return nil
}

// Commit finalizes a draft: it stamps the issue date, allocates the
// document number and consecutive line numbers, recalculates totals, and
// persists the whole aggregate in one store call. On store failure the
// counters are restored so the numbers are reissued on the next commit,
// and the invoice stays a draft.
func (f *Facture) Commit(ctx context.Context, inv *invoice.Invoice) error {
	if inv.Finalized() {
		return ErrAlreadyFinalized
	}
	if len(inv.LineItems) == 0 {
		return ErrEmptyInvoice
	}
	if inv.CustomerTaxID == "" {
		return ErrMissingCustomer
	}

	if err := f.lockCommit(ctx); err != nil {
		return err
	}
	defer f.unlockCommit()

	// Everything up to the allocations must not touch the counters so a
	// failure here needs no rollback.
	rate, err := f.TaxRate(ctx)
	if err != nil {
		return err
	}

	invoicePrev, err := f.seq.Current(ctx, param.KeyInvoiceSeq)
	if err != nil {
		return err
	}
	linePrev, err := f.seq.Current(ctx, param.KeyLineItemSeq)
	if err != nil {
		return err
	}

	number, err := f.seq.Next(ctx, param.KeyInvoiceSeq)
	if err != nil {
		return err
	}
	firstLine, err := f.seq.NextN(ctx, param.KeyLineItemSeq, int64(len(inv.LineItems)))
	if err != nil {
		f.restoreCounter(ctx, param.KeyInvoiceSeq, invoicePrev)
		return err
	}

	prevIssueDate := inv.IssueDate
	inv.IssueDate = time.Now().UTC()
	inv.Number = strconv.FormatInt(number, 10)
	for i := range inv.LineItems {
		inv.LineItems[i].Number = firstLine + int64(i)
	}
	f.applyTotals(inv, rate)
	inv.Status = invoice.StatusFinalized
	inv.Touch()

	if err := f.store.CreateInvoice(ctx, inv); err != nil {
		// Undo the stamps and give the numbers back so the next commit
		// reissues them. The commit lock is still held, so nothing can
		// have observed the allocation.
		inv.Status = invoice.StatusDraft
		inv.Number = ""
		inv.IssueDate = prevIssueDate
		for i := range inv.LineItems {
			inv.LineItems[i].Number = 0
		}
		f.restoreCounter(ctx, param.KeyInvoiceSeq, invoicePrev)
		f.restoreCounter(ctx, param.KeyLineItemSeq, linePrev)

		f.plugins.EmitCommitFailed(ctx, inv, err)
		return err
	}

	f.plugins.EmitInvoiceCommitted(ctx, inv)

	f.logger.Info("invoice committed",
		"number", inv.Number,
		"customer", inv.CustomerTaxID,
		"lines", len(inv.LineItems),
		"total", inv.Total,
	)

	return nil
}

// applyTotals runs the calculator over the invoice's lines and writes the
// result onto the header.
func (f *Facture) applyTotals(inv *invoice.Invoice, rate types.TaxRate) {
	totals := invoice.Calculate(inv.LineItems, rate, inv.Currency)
	inv.ZeroRatedBase = totals.ZeroRatedBase
	inv.Subtotal = totals.Subtotal
	inv.TaxAmount = totals.TaxAmount
	inv.Total = totals.Total
}

func (f *Facture) lockCommit(ctx context.Context) error {
	timer := time.NewTimer(f.commitTimeout)
	defer timer.Stop()

	select {
	case f.commitMu <- struct{}{}:
		return nil
	case <-timer.C:
		return ErrCommitTimeout
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (f *Facture) unlockCommit() {
	<-f.commitMu
}

func (f *Facture) restoreCounter(ctx context.Context, name string, value int64) {
	if err := f.seq.Restore(ctx, name, value); err != nil {
		// The counter now holds allocated-but-unused numbers. Harmless
		// for uniqueness, but worth an operator's attention.
		f.logger.Error("failed to restore counter after commit failure",
			"counter", name,
			"value", value,
			"error", err,
		)
	}
}

// ──────────────────────────────────────────────────
// Customer Management
// ──────────────────────────────────────────────────

// CreateCustomer creates a new customer.
func (f *Facture) CreateCustomer(ctx context.Context, c *customer.Customer) error {
	if c.TaxID == "" {
		return ValidationError{Field: "tax_id", Message: "must not be empty"}
	}
	c.Entity = types.NewEntity()

	if err := f.store.CreateCustomer(ctx, c); err != nil {
		return err
	}

	f.plugins.EmitCustomerCreated(ctx, c)
	return nil
}

// GetCustomer retrieves a customer by tax ID.
func (f *Facture) GetCustomer(ctx context.Context, taxID string) (*customer.Customer, error) {
	return f.store.GetCustomer(ctx, taxID)
}

// ListCustomers lists customers.
func (f *Facture) ListCustomers(ctx context.Context, opts customer.ListOpts) ([]*customer.Customer, error) {
	return f.store.ListCustomers(ctx, opts)
}

// UpdateCustomer updates a customer's details. The tax ID is the business
// key and cannot change.
func (f *Facture) UpdateCustomer(ctx context.Context, c *customer.Customer) error {
	if c.TaxID == "" {
		return ValidationError{Field: "tax_id", Message: "must not be empty"}
	}
	c.Touch()

	if err := f.store.UpdateCustomer(ctx, c); err != nil {
		return err
	}

	f.plugins.EmitCustomerUpdated(ctx, c)
	return nil
}

// DeleteCustomer deletes a customer by tax ID.
func (f *Facture) DeleteCustomer(ctx context.Context, taxID string) error {
	if err := f.store.DeleteCustomer(ctx, taxID); err != nil {
		return err
	}

	f.plugins.EmitCustomerDeleted(ctx, taxID)
	return nil
}

// ──────────────────────────────────────────────────
// Product Management
// ──────────────────────────────────────────────────

// CreateProduct creates a new product.
func (f *Facture) CreateProduct(ctx context.Context, p *product.Product) error {
	if p.Code < 0 {
		return ValidationError{Field: "code", Message: "must not be negative"}
	}
	if p.Name == "" {
		return ValidationError{Field: "name", Message: "must not be empty"}
	}
	if p.UnitPrice.IsNegative() {
		return ValidationError{Field: "unit_price", Message: "must not be negative"}
	}
	p.Entity = types.NewEntity()

	if err := f.store.CreateProduct(ctx, p); err != nil {
		return err
	}

	f.plugins.EmitProductCreated(ctx, p)
	return nil
}

// GetProduct retrieves a product by code.
func (f *Facture) GetProduct(ctx context.Context, code int) (*product.Product, error) {
	return f.store.GetProduct(ctx, code)
}

// ListProducts lists products.
func (f *Facture) ListProducts(ctx context.Context, opts product.ListOpts) ([]*product.Product, error) {
	return f.store.ListProducts(ctx, opts)
}

// UpdateProduct updates a product. It reads the stored row first so a
// partial update never clobbers fields the caller did not set out of the
// stored entity's timestamps.
func (f *Facture) UpdateProduct(ctx context.Context, p *product.Product) error {
	if p.UnitPrice.IsNegative() {
		return ValidationError{Field: "unit_price", Message: "must not be negative"}
	}

	existing, err := f.store.GetProduct(ctx, p.Code)
	if err != nil {
		return err
	}

	existing.Name = p.Name
	existing.Description = p.Description
	existing.UnitPrice = p.UnitPrice
	existing.Stock = p.Stock
	existing.Taxable = p.Taxable
	existing.Touch()

	if err := f.store.UpdateProduct(ctx, existing); err != nil {
		return err
	}
	*p = *existing

	f.plugins.EmitProductUpdated(ctx, existing)
	return nil
}

// DeleteProduct deletes a product by code.
func (f *Facture) DeleteProduct(ctx context.Context, code int) error {
	if err := f.store.DeleteProduct(ctx, code); err != nil {
		return err
	}

	f.plugins.EmitProductDeleted(ctx, code)
	return nil
}

// ──────────────────────────────────────────────────
// Invoice Queries
// ──────────────────────────────────────────────────

// GetInvoice retrieves a committed invoice by ID.
func (f *Facture) GetInvoice(ctx context.Context, invoiceID id.InvoiceID) (*invoice.Invoice, error) {
	return f.store.GetInvoice(ctx, invoiceID)
}

// GetInvoiceByNumber retrieves a committed invoice by document number.
func (f *Facture) GetInvoiceByNumber(ctx context.Context, number string) (*invoice.Invoice, error) {
	return f.store.GetInvoiceByNumber(ctx, number)
}

// ListInvoices lists committed invoices, newest first.
func (f *Facture) ListInvoices(ctx context.Context, opts invoice.ListOpts) ([]*invoice.Invoice, error) {
	return f.store.ListInvoices(ctx, opts)
}

// ──────────────────────────────────────────────────
// Parameters
// ──────────────────────────────────────────────────

// ListParameters lists all system parameters.
func (f *Facture) ListParameters(ctx context.Context) ([]*param.Parameter, error) {
	return f.store.ListParameters(ctx)
}

// TaxRate reads the current tax rate parameter.
func (f *Facture) TaxRate(ctx context.Context) (types.TaxRate, error) {
	p, err := f.store.GetParameter(ctx, param.KeyTaxRate)
	if err != nil {
		return types.TaxRate{}, err
	}

	rate, err := types.ParseTaxRate(p.Value)
	if err != nil {
		return types.TaxRate{}, fmt.Errorf("%w: parameter %q holds %q", ErrCorruptState, param.KeyTaxRate, p.Value)
	}
	return rate, nil
}

// SetTaxRate writes the tax rate parameter. Drafts recalculate with the
// rate current at each mutation, so a change takes effect immediately.
func (f *Facture) SetTaxRate(ctx context.Context, rate types.TaxRate) error {
	return f.store.PutParameter(ctx, &param.Parameter{
		Entity: types.NewEntity(),
		Name:   param.KeyTaxRate,
		Value:  rate.String(),
	})
}

// Plugins exposes the plugin registry, e.g. to look up a formatter.
func (f *Facture) Plugins() *plugin.Registry {
	return f.plugins
}
