package facture_test

import (
	"context"
	"errors"
	"sort"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/xraph/facture"
	"github.com/xraph/facture/customer"
	"github.com/xraph/facture/invoice"
	"github.com/xraph/facture/param"
	"github.com/xraph/facture/product"
	"github.com/xraph/facture/store"
	"github.com/xraph/facture/store/memory"
	"github.com/xraph/facture/types"
)

// newEngine builds a started engine over a fresh memory store, seeded with
// a 12% tax rate, counters at 100/200, one customer and one product.
func newEngine(t *testing.T) (*facture.Facture, store.Store) {
	t.Helper()
	ctx := context.Background()

	s := memory.New()
	f := facture.New(s)
	if err := f.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}

	seed := map[string]string{
		param.KeyTaxRate:     "12",
		param.KeyInvoiceSeq:  "100",
		param.KeyLineItemSeq: "200",
	}
	for name, value := range seed {
		p := &param.Parameter{Entity: types.NewEntity(), Name: name, Value: value}
		if err := s.PutParameter(ctx, p); err != nil {
			t.Fatalf("PutParameter(%s): %v", name, err)
		}
	}

	c := &customer.Customer{TaxID: "0102030405", FirstNames: "Ada", LastNames: "Lovelace"}
	if err := f.CreateCustomer(ctx, c); err != nil {
		t.Fatalf("CreateCustomer: %v", err)
	}

	p := &product.Product{Code: 7, Name: "Widget", UnitPrice: types.USD(1000), Taxable: true}
	if err := f.CreateProduct(ctx, p); err != nil {
		t.Fatalf("CreateProduct: %v", err)
	}

	return f, s
}

func counterValue(t *testing.T, s store.Store, name string) string {
	t.Helper()
	p, err := s.GetParameter(context.Background(), name)
	if err != nil {
		t.Fatalf("GetParameter(%s): %v", name, err)
	}
	return p.Value
}

func TestCommitEndToEnd(t *testing.T) {
	ctx := context.Background()
	f, s := newEngine(t)
	defer f.Stop()

	inv := f.NewInvoice()
	if err := f.AssignCustomer(ctx, inv, "0102030405"); err != nil {
		t.Fatalf("AssignCustomer: %v", err)
	}
	if err := f.AddLine(ctx, inv, 7, 3); err != nil {
		t.Fatalf("AddLine: %v", err)
	}

	// Draft totals are already live.
	if !inv.Subtotal.Equal(types.USD(3000)) {
		t.Errorf("draft Subtotal: got %v, want $30.00", inv.Subtotal)
	}
	if inv.Number != "" {
		t.Errorf("draft Number: got %q, want empty", inv.Number)
	}

	if err := f.Commit(ctx, inv); err != nil {
		t.Fatalf("Commit: %v", err)
	}

	if inv.Status != invoice.StatusFinalized {
		t.Errorf("Status: got %q, want finalized", inv.Status)
	}
	if inv.Number != "101" {
		t.Errorf("Number: got %q, want 101", inv.Number)
	}
	if len(inv.LineItems) != 1 || inv.LineItems[0].Number != 201 {
		t.Errorf("line number: got %+v, want 201", inv.LineItems)
	}
	if !inv.Subtotal.Equal(types.USD(3000)) {
		t.Errorf("Subtotal: got %v, want $30.00", inv.Subtotal)
	}
	if !inv.TaxAmount.Equal(types.USD(360)) {
		t.Errorf("TaxAmount: got %v, want $3.60", inv.TaxAmount)
	}
	if !inv.Total.Equal(types.USD(3360)) {
		t.Errorf("Total: got %v, want $33.60", inv.Total)
	}
	if !inv.ZeroRatedBase.IsZero() {
		t.Errorf("ZeroRatedBase: got %v, want zero", inv.ZeroRatedBase)
	}

	if got := counterValue(t, s, param.KeyInvoiceSeq); got != "101" {
		t.Errorf("invoice counter: got %q, want 101", got)
	}
	if got := counterValue(t, s, param.KeyLineItemSeq); got != "201" {
		t.Errorf("line counter: got %q, want 201", got)
	}

	// The committed aggregate is queryable by number.
	saved, err := f.GetInvoiceByNumber(ctx, "101")
	if err != nil {
		t.Fatalf("GetInvoiceByNumber: %v", err)
	}
	if !saved.Total.Equal(types.USD(3360)) {
		t.Errorf("saved Total: got %v, want $33.60", saved.Total)
	}
	if len(saved.LineItems) != 1 {
		t.Fatalf("saved lines: got %d, want 1", len(saved.LineItems))
	}
	if saved.LineItems[0].Description != "Widget" {
		t.Errorf("saved line description: got %q", saved.LineItems[0].Description)
	}
}

func TestCommitSequentialNumbers(t *testing.T) {
	ctx := context.Background()
	f, _ := newEngine(t)
	defer f.Stop()

	for want := int64(101); want <= 103; want++ {
		inv := f.NewInvoice()
		if err := f.AssignCustomer(ctx, inv, "0102030405"); err != nil {
			t.Fatalf("AssignCustomer: %v", err)
		}
		if err := f.AddLine(ctx, inv, 7, 1); err != nil {
			t.Fatalf("AddLine: %v", err)
		}
		if err := f.Commit(ctx, inv); err != nil {
			t.Fatalf("Commit: %v", err)
		}

		if got := inv.Number; got != strconv.FormatInt(want, 10) {
			t.Errorf("Number: got %q, want %d", got, want)
		}
	}
}

func TestCommitPreconditions(t *testing.T) {
	ctx := context.Background()
	f, s := newEngine(t)
	defer f.Stop()

	t.Run("EmptyInvoice", func(t *testing.T) {
		inv := f.NewInvoice()
		if err := f.AssignCustomer(ctx, inv, "0102030405"); err != nil {
			t.Fatalf("AssignCustomer: %v", err)
		}
		if err := f.Commit(ctx, inv); !errors.Is(err, facture.ErrEmptyInvoice) {
			t.Errorf("Commit: got %v, want ErrEmptyInvoice", err)
		}
	})

	t.Run("MissingCustomer", func(t *testing.T) {
		inv := f.NewInvoice()
		if err := f.AddLine(ctx, inv, 7, 1); err != nil {
			t.Fatalf("AddLine: %v", err)
		}
		if err := f.Commit(ctx, inv); !errors.Is(err, facture.ErrMissingCustomer) {
			t.Errorf("Commit: got %v, want ErrMissingCustomer", err)
		}
	})

	t.Run("PreconditionsBurnNoNumbers", func(t *testing.T) {
		if got := counterValue(t, s, param.KeyInvoiceSeq); got != "100" {
			t.Errorf("invoice counter: got %q, want 100", got)
		}
		if got := counterValue(t, s, param.KeyLineItemSeq); got != "200" {
			t.Errorf("line counter: got %q, want 200", got)
		}
	})

	t.Run("AlreadyFinalized", func(t *testing.T) {
		inv := f.NewInvoice()
		if err := f.AssignCustomer(ctx, inv, "0102030405"); err != nil {
			t.Fatalf("AssignCustomer: %v", err)
		}
		if err := f.AddLine(ctx, inv, 7, 1); err != nil {
			t.Fatalf("AddLine: %v", err)
		}
		if err := f.Commit(ctx, inv); err != nil {
			t.Fatalf("Commit: %v", err)
		}

		if err := f.Commit(ctx, inv); !errors.Is(err, facture.ErrAlreadyFinalized) {
			t.Errorf("second Commit: got %v, want ErrAlreadyFinalized", err)
		}
		if err := f.AddLine(ctx, inv, 7, 1); !errors.Is(err, facture.ErrAlreadyFinalized) {
			t.Errorf("AddLine after commit: got %v, want ErrAlreadyFinalized", err)
		}
		if err := f.AssignCustomer(ctx, inv, "0102030405"); !errors.Is(err, facture.ErrAlreadyFinalized) {
			t.Errorf("AssignCustomer after commit: got %v, want ErrAlreadyFinalized", err)
		}
	})
}

// failingStore wraps a Store and fails invoice creation a set number of times.
type failingStore struct {
	store.Store
	failures int
}

var errDiskFull = errors.New("disk full")

func (f *failingStore) CreateInvoice(ctx context.Context, inv *invoice.Invoice) error {
	if f.failures > 0 {
		f.failures--
		return errDiskFull
	}
	return f.Store.CreateInvoice(ctx, inv)
}

func TestCommitFailureRestoresCounters(t *testing.T) {
	ctx := context.Background()

	mem := memory.New()
	flaky := &failingStore{Store: mem, failures: 1}
	f := facture.New(flaky)
	if err := f.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer f.Stop()

	seed := map[string]string{
		param.KeyTaxRate:     "12",
		param.KeyInvoiceSeq:  "100",
		param.KeyLineItemSeq: "200",
	}
	for name, value := range seed {
		p := &param.Parameter{Entity: types.NewEntity(), Name: name, Value: value}
		if err := mem.PutParameter(ctx, p); err != nil {
			t.Fatalf("PutParameter: %v", err)
		}
	}
	if err := f.CreateCustomer(ctx, &customer.Customer{TaxID: "0102030405", LastNames: "Lovelace"}); err != nil {
		t.Fatalf("CreateCustomer: %v", err)
	}
	if err := f.CreateProduct(ctx, &product.Product{Code: 7, Name: "Widget", UnitPrice: types.USD(1000)}); err != nil {
		t.Fatalf("CreateProduct: %v", err)
	}

	inv := f.NewInvoice()
	if err := f.AssignCustomer(ctx, inv, "0102030405"); err != nil {
		t.Fatalf("AssignCustomer: %v", err)
	}
	if err := f.AddLine(ctx, inv, 7, 3); err != nil {
		t.Fatalf("AddLine: %v", err)
	}

	issuedBefore := inv.IssueDate

	// First commit hits the store failure.
	if err := f.Commit(ctx, inv); !errors.Is(err, errDiskFull) {
		t.Fatalf("Commit: got %v, want errDiskFull", err)
	}

	// The draft is intact and the numbers were given back.
	if inv.Status != invoice.StatusDraft {
		t.Errorf("Status after failure: got %q, want draft", inv.Status)
	}
	if inv.Number != "" {
		t.Errorf("Number after failure: got %q, want empty", inv.Number)
	}
	if !inv.IssueDate.Equal(issuedBefore) {
		t.Errorf("IssueDate after failure: got %v, want %v", inv.IssueDate, issuedBefore)
	}
	for i, line := range inv.LineItems {
		if line.Number != 0 {
			t.Errorf("line %d number after failure: got %d, want 0", i, line.Number)
		}
	}
	if got := counterValue(t, mem, param.KeyInvoiceSeq); got != "100" {
		t.Errorf("invoice counter after failure: got %q, want 100", got)
	}
	if got := counterValue(t, mem, param.KeyLineItemSeq); got != "200" {
		t.Errorf("line counter after failure: got %q, want 200", got)
	}

	// Retrying reissues the same numbers.
	if err := f.Commit(ctx, inv); err != nil {
		t.Fatalf("retry Commit: %v", err)
	}
	if inv.Number != "101" {
		t.Errorf("Number after retry: got %q, want 101", inv.Number)
	}
	if inv.LineItems[0].Number != 201 {
		t.Errorf("line number after retry: got %d, want 201", inv.LineItems[0].Number)
	}
}

// blockingStore wraps a Store and parks invoice writes until released,
// keeping the writer inside the commit critical section.
type blockingStore struct {
	store.Store
	entered chan struct{}
	release chan struct{}
}

func (b *blockingStore) CreateInvoice(ctx context.Context, inv *invoice.Invoice) error {
	b.entered <- struct{}{}
	<-b.release
	return b.Store.CreateInvoice(ctx, inv)
}

func buildDraft(t *testing.T, f *facture.Facture) *invoice.Invoice {
	t.Helper()
	ctx := context.Background()

	inv := f.NewInvoice()
	if err := f.AssignCustomer(ctx, inv, "0102030405"); err != nil {
		t.Fatalf("AssignCustomer: %v", err)
	}
	if err := f.AddLine(ctx, inv, 7, 1); err != nil {
		t.Fatalf("AddLine: %v", err)
	}
	return inv
}

func TestCommitLockTimeout(t *testing.T) {
	ctx := context.Background()

	mem := memory.New()
	blocking := &blockingStore{
		Store:   mem,
		entered: make(chan struct{}, 4),
		release: make(chan struct{}),
	}
	f := facture.New(blocking, facture.WithCommitTimeout(50*time.Millisecond))
	if err := f.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer f.Stop()

	seed := map[string]string{
		param.KeyTaxRate:     "12",
		param.KeyInvoiceSeq:  "100",
		param.KeyLineItemSeq: "200",
	}
	for name, value := range seed {
		p := &param.Parameter{Entity: types.NewEntity(), Name: name, Value: value}
		if err := mem.PutParameter(ctx, p); err != nil {
			t.Fatalf("PutParameter: %v", err)
		}
	}
	if err := f.CreateCustomer(ctx, &customer.Customer{TaxID: "0102030405", LastNames: "Lovelace"}); err != nil {
		t.Fatalf("CreateCustomer: %v", err)
	}
	if err := f.CreateProduct(ctx, &product.Product{Code: 7, Name: "Widget", UnitPrice: types.USD(1000)}); err != nil {
		t.Fatalf("CreateProduct: %v", err)
	}

	first := buildDraft(t, f)
	second := buildDraft(t, f)

	done := make(chan error, 1)
	go func() {
		done <- f.Commit(ctx, first)
	}()

	// Wait until the first commit holds the lock inside the store write.
	<-blocking.entered

	// A second commit cannot acquire the lock and must fail fast, not hang.
	if err := f.Commit(ctx, second); !errors.Is(err, facture.ErrCommitTimeout) {
		t.Errorf("blocked Commit: got %v, want ErrCommitTimeout", err)
	}
	if second.Status != invoice.StatusDraft {
		t.Errorf("blocked draft Status: got %q, want draft", second.Status)
	}

	close(blocking.release)
	if err := <-done; err != nil {
		t.Fatalf("first Commit: %v", err)
	}
	if first.Number != "101" {
		t.Errorf("first Number: got %q, want 101", first.Number)
	}

	// Lock released; the previously blocked draft commits with the next number.
	if err := f.Commit(ctx, second); err != nil {
		t.Fatalf("retry Commit: %v", err)
	}
	if second.Number != "102" {
		t.Errorf("second Number: got %q, want 102", second.Number)
	}
}

func TestConcurrentCommitsIssueUniqueNumbers(t *testing.T) {
	ctx := context.Background()
	f, _ := newEngine(t)
	defer f.Stop()

	const n = 20
	numbers := make(chan string, n)

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			inv := f.NewInvoice()
			if err := f.AssignCustomer(ctx, inv, "0102030405"); err != nil {
				t.Errorf("AssignCustomer: %v", err)
				return
			}
			if err := f.AddLine(ctx, inv, 7, 1); err != nil {
				t.Errorf("AddLine: %v", err)
				return
			}
			if err := f.Commit(ctx, inv); err != nil {
				t.Errorf("Commit: %v", err)
				return
			}
			numbers <- inv.Number
		}()
	}
	wg.Wait()
	close(numbers)

	got := make([]int, 0, n)
	for s := range numbers {
		v, err := strconv.Atoi(s)
		if err != nil {
			t.Fatalf("non-numeric document number %q", s)
		}
		got = append(got, v)
	}
	if len(got) != n {
		t.Fatalf("committed %d invoices, want %d", len(got), n)
	}

	// Serialized commits issue unique, consecutive numbers with no gaps.
	sort.Ints(got)
	for i, v := range got {
		if v != 101+i {
			t.Fatalf("numbers not unique and consecutive: %v", got)
		}
	}
}

func TestAddLineValidation(t *testing.T) {
	ctx := context.Background()
	f, _ := newEngine(t)
	defer f.Stop()

	inv := f.NewInvoice()

	tests := []struct {
		name string
		code int
		qty  int64
	}{
		{"negative code", -1, 1},
		{"zero quantity", 7, 0},
		{"negative quantity", 7, -3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := f.AddLine(ctx, inv, tt.code, tt.qty)
			if !errors.Is(err, facture.ErrInvalidInput) {
				t.Errorf("AddLine: got %v, want ErrInvalidInput", err)
			}
		})
	}

	t.Run("unknown product", func(t *testing.T) {
		err := f.AddLine(ctx, inv, 999, 1)
		if !errors.Is(err, facture.ErrProductNotFound) {
			t.Errorf("AddLine: got %v, want ErrProductNotFound", err)
		}
	})

	// None of the failures touched the draft.
	if len(inv.LineItems) != 0 {
		t.Errorf("draft has %d lines, want 0", len(inv.LineItems))
	}
	if !inv.Total.IsZero() {
		t.Errorf("draft Total: got %v, want zero", inv.Total)
	}
}

func TestAssignCustomerValidation(t *testing.T) {
	ctx := context.Background()
	f, _ := newEngine(t)
	defer f.Stop()

	inv := f.NewInvoice()

	if err := f.AssignCustomer(ctx, inv, ""); !errors.Is(err, facture.ErrInvalidInput) {
		t.Errorf("empty tax ID: got %v, want ErrInvalidInput", err)
	}
	if err := f.AssignCustomer(ctx, inv, "9999999999"); !errors.Is(err, facture.ErrCustomerNotFound) {
		t.Errorf("unknown customer: got %v, want ErrCustomerNotFound", err)
	}
	if inv.CustomerTaxID != "" {
		t.Errorf("draft customer set despite failures: %q", inv.CustomerTaxID)
	}

	// Reassignment before commit is allowed.
	if err := f.AssignCustomer(ctx, inv, "0102030405"); err != nil {
		t.Fatalf("AssignCustomer: %v", err)
	}
	if inv.CustomerTaxID != "0102030405" {
		t.Errorf("CustomerTaxID: got %q", inv.CustomerTaxID)
	}
}

func TestAddLineCopiesCurrentPrice(t *testing.T) {
	ctx := context.Background()
	f, _ := newEngine(t)
	defer f.Stop()

	inv := f.NewInvoice()
	if err := f.AssignCustomer(ctx, inv, "0102030405"); err != nil {
		t.Fatalf("AssignCustomer: %v", err)
	}
	if err := f.AddLine(ctx, inv, 7, 1); err != nil {
		t.Fatalf("AddLine: %v", err)
	}

	// Raise the catalog price after the line was added.
	if err := f.UpdateProduct(ctx, &product.Product{Code: 7, Name: "Widget", UnitPrice: types.USD(9999)}); err != nil {
		t.Fatalf("UpdateProduct: %v", err)
	}

	if err := f.Commit(ctx, inv); err != nil {
		t.Fatalf("Commit: %v", err)
	}

	// The line keeps the price current at add-time.
	if !inv.LineItems[0].UnitPrice.Equal(types.USD(1000)) {
		t.Errorf("UnitPrice: got %v, want $10.00", inv.LineItems[0].UnitPrice)
	}
	if !inv.Total.Equal(types.USD(1120)) {
		t.Errorf("Total: got %v, want $11.20", inv.Total)
	}
}

func TestTaxRateCorrupt(t *testing.T) {
	ctx := context.Background()
	f, s := newEngine(t)
	defer f.Stop()

	p := &param.Parameter{Entity: types.NewEntity(), Name: param.KeyTaxRate, Value: "twelve"}
	if err := s.PutParameter(ctx, p); err != nil {
		t.Fatalf("PutParameter: %v", err)
	}

	if _, err := f.TaxRate(ctx); !errors.Is(err, facture.ErrCorruptState) {
		t.Errorf("TaxRate: got %v, want ErrCorruptState", err)
	}

	inv := f.NewInvoice()
	if err := f.AddLine(ctx, inv, 7, 1); !errors.Is(err, facture.ErrCorruptState) {
		t.Errorf("AddLine: got %v, want ErrCorruptState", err)
	}
}

func TestSetTaxRate(t *testing.T) {
	ctx := context.Background()
	f, _ := newEngine(t)
	defer f.Stop()

	if err := f.SetTaxRate(ctx, types.NewTaxRate(2100)); err != nil {
		t.Fatalf("SetTaxRate: %v", err)
	}

	rate, err := f.TaxRate(ctx)
	if err != nil {
		t.Fatalf("TaxRate: %v", err)
	}
	if rate.BasisPoints() != 2100 {
		t.Errorf("BasisPoints: got %d, want 2100", rate.BasisPoints())
	}

	// New drafts pick up the rate immediately.
	inv := f.NewInvoice()
	if err := f.AssignCustomer(ctx, inv, "0102030405"); err != nil {
		t.Fatalf("AssignCustomer: %v", err)
	}
	if err := f.AddLine(ctx, inv, 7, 1); err != nil {
		t.Fatalf("AddLine: %v", err)
	}
	if !inv.TaxAmount.Equal(types.USD(210)) {
		t.Errorf("TaxAmount: got %v, want $2.10", inv.TaxAmount)
	}
}

func TestProductCRUD(t *testing.T) {
	ctx := context.Background()
	f, _ := newEngine(t)
	defer f.Stop()

	p := &product.Product{Code: 8, Name: "Gadget", UnitPrice: types.USD(2500), Stock: 10}
	if err := f.CreateProduct(ctx, p); err != nil {
		t.Fatalf("CreateProduct: %v", err)
	}

	if err := f.CreateProduct(ctx, &product.Product{Code: 8, Name: "Dup", UnitPrice: types.USD(1)}); !errors.Is(err, facture.ErrProductExists) {
		t.Errorf("duplicate create: got %v, want ErrProductExists", err)
	}

	got, err := f.GetProduct(ctx, 8)
	if err != nil {
		t.Fatalf("GetProduct: %v", err)
	}
	if got.Name != "Gadget" {
		t.Errorf("Name: got %q", got.Name)
	}

	got.Stock = 4
	if err := f.UpdateProduct(ctx, got); err != nil {
		t.Fatalf("UpdateProduct: %v", err)
	}

	if err := f.DeleteProduct(ctx, 8); err != nil {
		t.Fatalf("DeleteProduct: %v", err)
	}
	if _, err := f.GetProduct(ctx, 8); !errors.Is(err, facture.ErrProductNotFound) {
		t.Errorf("after delete: got %v, want ErrProductNotFound", err)
	}
}

func TestCustomerCRUD(t *testing.T) {
	ctx := context.Background()
	f, _ := newEngine(t)
	defer f.Stop()

	c := &customer.Customer{TaxID: "0605040302", FirstNames: "Grace", LastNames: "Hopper"}
	if err := f.CreateCustomer(ctx, c); err != nil {
		t.Fatalf("CreateCustomer: %v", err)
	}

	if err := f.CreateCustomer(ctx, &customer.Customer{TaxID: "0605040302"}); !errors.Is(err, facture.ErrCustomerExists) {
		t.Errorf("duplicate create: got %v, want ErrCustomerExists", err)
	}

	c.Address = "New address"
	if err := f.UpdateCustomer(ctx, c); err != nil {
		t.Fatalf("UpdateCustomer: %v", err)
	}

	got, err := f.GetCustomer(ctx, "0605040302")
	if err != nil {
		t.Fatalf("GetCustomer: %v", err)
	}
	if got.Address != "New address" {
		t.Errorf("Address: got %q", got.Address)
	}

	if err := f.DeleteCustomer(ctx, "0605040302"); err != nil {
		t.Fatalf("DeleteCustomer: %v", err)
	}
	if _, err := f.GetCustomer(ctx, "0605040302"); !errors.Is(err, facture.ErrCustomerNotFound) {
		t.Errorf("after delete: got %v, want ErrCustomerNotFound", err)
	}
}
