package plugin

import (
	"context"
	"errors"
	"testing"
)

// recordingPlugin implements a subset of hooks and records calls.
type recordingPlugin struct {
	name      string
	committed int
	opened    int
	failErr   error
}

func (p *recordingPlugin) Name() string { return p.name }

func (p *recordingPlugin) OnInvoiceOpened(_ context.Context, _ interface{}) error {
	p.opened++
	return nil
}

func (p *recordingPlugin) OnInvoiceCommitted(_ context.Context, _ interface{}) error {
	p.committed++
	return p.failErr
}

func TestRegister(t *testing.T) {
	r := NewRegistry()
	p := &recordingPlugin{name: "recorder"}

	if err := r.Register(p); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if err := r.Register(&recordingPlugin{name: "recorder"}); err == nil {
		t.Error("duplicate Register: expected error")
	}

	if got := r.Count(); got != 1 {
		t.Errorf("Count: got %d, want 1", got)
	}
	if r.Get("recorder") != p {
		t.Error("Get returned wrong plugin")
	}
	if r.Get("missing") != nil {
		t.Error("Get for unknown name should return nil")
	}
}

func TestEmitDispatchesOnlyImplementedHooks(t *testing.T) {
	ctx := context.Background()
	r := NewRegistry()
	p := &recordingPlugin{name: "recorder"}
	if err := r.Register(p); err != nil {
		t.Fatalf("Register: %v", err)
	}

	r.EmitInvoiceOpened(ctx, nil)
	r.EmitInvoiceCommitted(ctx, nil)
	// Not implemented by the plugin; must be a no-op.
	r.EmitCustomerCreated(ctx, nil)

	if p.opened != 1 {
		t.Errorf("opened: got %d, want 1", p.opened)
	}
	if p.committed != 1 {
		t.Errorf("committed: got %d, want 1", p.committed)
	}
}

func TestEmitSwallowsPluginErrors(t *testing.T) {
	ctx := context.Background()
	r := NewRegistry()
	p := &recordingPlugin{name: "flaky", failErr: errors.New("boom")}
	if err := r.Register(p); err != nil {
		t.Fatalf("Register: %v", err)
	}

	// Must not panic or propagate the error.
	r.EmitInvoiceCommitted(ctx, nil)

	if p.committed != 1 {
		t.Errorf("committed: got %d, want 1", p.committed)
	}
}

type csvFormatter struct{}

func (csvFormatter) Name() string   { return "csv-formatter" }
func (csvFormatter) Format() string { return "csv" }
func (csvFormatter) Render(_ context.Context, _ interface{}, _ interface{}) error {
	return nil
}

func TestGetFormatter(t *testing.T) {
	r := NewRegistry()
	if err := r.Register(csvFormatter{}); err != nil {
		t.Fatalf("Register: %v", err)
	}

	if f := r.GetFormatter("csv"); f == nil || f.Format() != "csv" {
		t.Errorf("GetFormatter(csv): got %v", f)
	}
	if f := r.GetFormatter("pdf"); f != nil {
		t.Errorf("GetFormatter(pdf): got %v, want nil", f)
	}
}
