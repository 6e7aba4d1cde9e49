package sequence

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/xraph/facture/param"
)

// fakeParams is a minimal in-memory param.Store for allocator tests.
type fakeParams struct {
	values  map[string]string
	failGet error
	failPut bool
}

func newFakeParams(values map[string]string) *fakeParams {
	if values == nil {
		values = make(map[string]string)
	}
	return &fakeParams{values: values}
}

func (f *fakeParams) Get(_ context.Context, name string) (*param.Parameter, error) {
	if f.failGet != nil {
		return nil, f.failGet
	}
	v, ok := f.values[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", param.ErrNotFound, name)
	}
	return &param.Parameter{Name: name, Value: v}, nil
}

func (f *fakeParams) Put(_ context.Context, p *param.Parameter) error {
	if f.failPut {
		return errors.New("write failed")
	}
	f.values[p.Name] = p.Value
	return nil
}

func (f *fakeParams) List(_ context.Context) ([]*param.Parameter, error) {
	out := make([]*param.Parameter, 0, len(f.values))
	for name, v := range f.values {
		out = append(out, &param.Parameter{Name: name, Value: v})
	}
	return out, nil
}

func TestNext(t *testing.T) {
	ctx := context.Background()
	params := newFakeParams(map[string]string{"invoice_counter": "100"})
	a := NewAllocator(params)

	n, err := a.Next(ctx, "invoice_counter")
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if n != 101 {
		t.Errorf("Next: got %d, want 101", n)
	}
	if params.values["invoice_counter"] != "101" {
		t.Errorf("persisted counter: got %q, want %q", params.values["invoice_counter"], "101")
	}

	// Numbers are strictly increasing across calls.
	n2, err := a.Next(ctx, "invoice_counter")
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if n2 != 102 {
		t.Errorf("second Next: got %d, want 102", n2)
	}
}

func TestNextN(t *testing.T) {
	ctx := context.Background()
	params := newFakeParams(map[string]string{"line_counter": "200"})
	a := NewAllocator(params)

	first, err := a.NextN(ctx, "line_counter", 3)
	if err != nil {
		t.Fatalf("NextN: %v", err)
	}
	if first != 201 {
		t.Errorf("NextN: got %d, want 201", first)
	}
	if params.values["line_counter"] != "203" {
		t.Errorf("persisted counter: got %q, want %q", params.values["line_counter"], "203")
	}

	// Next allocation continues after the reserved range.
	n, err := a.Next(ctx, "line_counter")
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if n != 204 {
		t.Errorf("Next after NextN: got %d, want 204", n)
	}
}

func TestNextNRejectsNonPositive(t *testing.T) {
	ctx := context.Background()
	a := NewAllocator(newFakeParams(map[string]string{"c": "0"}))

	for _, n := range []int64{0, -1} {
		if _, err := a.NextN(ctx, "c", n); err == nil {
			t.Errorf("NextN(%d): expected error", n)
		}
	}
}

func TestCurrent(t *testing.T) {
	ctx := context.Background()
	a := NewAllocator(newFakeParams(map[string]string{"c": "42"}))

	v, err := a.Current(ctx, "c")
	if err != nil {
		t.Fatalf("Current: %v", err)
	}
	if v != 42 {
		t.Errorf("Current: got %d, want 42", v)
	}
}

func TestCorruptCounter(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name   string
		params *fakeParams
	}{
		{"missing", newFakeParams(nil)},
		{"non-numeric", newFakeParams(map[string]string{"c": "abc"})},
		{"empty value", newFakeParams(map[string]string{"c": ""})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := NewAllocator(tt.params)

			_, err := a.Current(ctx, "c")
			if !errors.Is(err, ErrCorruptCounter) {
				t.Errorf("Current: got %v, want ErrCorruptCounter", err)
			}

			_, err = a.Next(ctx, "c")
			if !errors.Is(err, ErrCorruptCounter) {
				t.Errorf("Next: got %v, want ErrCorruptCounter", err)
			}
		})
	}
}

func TestCurrentPassesThroughStoreFailure(t *testing.T) {
	ctx := context.Background()
	params := newFakeParams(map[string]string{"c": "10"})
	transient := errors.New("connection reset")
	params.failGet = transient
	a := NewAllocator(params)

	// A transient store failure is not a corrupt counter.
	_, err := a.Current(ctx, "c")
	if !errors.Is(err, transient) {
		t.Errorf("Current: got %v, want the store error", err)
	}
	if errors.Is(err, ErrCorruptCounter) {
		t.Errorf("Current: %v should not be ErrCorruptCounter", err)
	}

	_, err = a.Next(ctx, "c")
	if errors.Is(err, ErrCorruptCounter) {
		t.Errorf("Next: %v should not be ErrCorruptCounter", err)
	}
}

func TestNextPropagatesWriteFailure(t *testing.T) {
	ctx := context.Background()
	params := newFakeParams(map[string]string{"c": "10"})
	params.failPut = true
	a := NewAllocator(params)

	if _, err := a.Next(ctx, "c"); err == nil {
		t.Fatal("Next: expected error on write failure")
	}
	if params.values["c"] != "10" {
		t.Errorf("counter changed despite write failure: %q", params.values["c"])
	}
}

func TestRestore(t *testing.T) {
	ctx := context.Background()
	params := newFakeParams(map[string]string{"c": "100"})
	a := NewAllocator(params)

	if _, err := a.Next(ctx, "c"); err != nil {
		t.Fatalf("Next: %v", err)
	}
	if err := a.Restore(ctx, "c", 100); err != nil {
		t.Fatalf("Restore: %v", err)
	}

	// The restored number is reissued.
	n, err := a.Next(ctx, "c")
	if err != nil {
		t.Fatalf("Next after Restore: %v", err)
	}
	if n != 101 {
		t.Errorf("Next after Restore: got %d, want 101", n)
	}
}
