// Package audithook bridges Facture lifecycle events to an audit trail
// backend.
//
// It defines a local Recorder interface so the package does not import
// Chronicle directly. Callers inject a RecorderFunc adapter that bridges
// to Chronicle at wiring time.
package audithook

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/xraph/facture/invoice"
	"github.com/xraph/facture/plugin"
)

// Compile-time interface checks.
var (
	_ plugin.Plugin             = (*Extension)(nil)
	_ plugin.OnCustomerCreated  = (*Extension)(nil)
	_ plugin.OnCustomerUpdated  = (*Extension)(nil)
	_ plugin.OnCustomerDeleted  = (*Extension)(nil)
	_ plugin.OnProductCreated   = (*Extension)(nil)
	_ plugin.OnProductUpdated   = (*Extension)(nil)
	_ plugin.OnProductDeleted   = (*Extension)(nil)
	_ plugin.OnInvoiceOpened    = (*Extension)(nil)
	_ plugin.OnCustomerAssigned = (*Extension)(nil)
	_ plugin.OnLineAdded        = (*Extension)(nil)
	_ plugin.OnInvoiceCommitted = (*Extension)(nil)
	_ plugin.OnCommitFailed     = (*Extension)(nil)
)

// Recorder is the interface that audit backends must implement.
// This matches chronicle.Emitter but is defined locally so that the
// audit_hook package does not import Chronicle directly — callers inject
// the concrete *chronicle.Chronicle at wiring time.
type Recorder interface {
	Record(ctx context.Context, event *AuditEvent) error
}

// AuditEvent is a local representation of an audit event.
// It mirrors chronicle/audit.Event but avoids a module dependency.
type AuditEvent struct {
	Action     string         `json:"action"`
	Resource   string         `json:"resource"`
	Category   string         `json:"category"`
	ResourceID string         `json:"resource_id,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty"`
	Outcome    string         `json:"outcome"`
	Severity   string         `json:"severity"`
	Reason     string         `json:"reason,omitempty"`
}

// RecorderFunc is an adapter to use a plain function as a Recorder.
type RecorderFunc func(ctx context.Context, event *AuditEvent) error

// Record implements Recorder.
func (f RecorderFunc) Record(ctx context.Context, event *AuditEvent) error {
	return f(ctx, event)
}

// Extension bridges Facture lifecycle events to an audit trail backend.
type Extension struct {
	recorder Recorder
	enabled  map[string]bool // nil = all enabled
	logger   *slog.Logger
}

// New creates an Extension that emits audit events through the provided Recorder.
func New(r Recorder, opts ...Option) *Extension {
	e := &Extension{
		recorder: r,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Name implements plugin.Plugin.
func (e *Extension) Name() string { return "audit-hook" }

// ──────────────────────────────────────────────────
// Customer lifecycle hooks
// ──────────────────────────────────────────────────

// OnCustomerCreated implements plugin.OnCustomerCreated.
func (e *Extension) OnCustomerCreated(ctx context.Context, _ interface{}) error {
	return e.record(ctx, ActionCustomerCreated, SeverityInfo, OutcomeSuccess,
		ResourceCustomer, "", CategoryReference, nil,
		"event", "customer_created",
	)
}

// OnCustomerUpdated implements plugin.OnCustomerUpdated.
func (e *Extension) OnCustomerUpdated(ctx context.Context, _ interface{}) error {
	return e.record(ctx, ActionCustomerUpdated, SeverityInfo, OutcomeSuccess,
		ResourceCustomer, "", CategoryReference, nil,
		"event", "customer_updated",
	)
}

// OnCustomerDeleted implements plugin.OnCustomerDeleted.
func (e *Extension) OnCustomerDeleted(ctx context.Context, taxID string) error {
	return e.record(ctx, ActionCustomerDeleted, SeverityWarning, OutcomeSuccess,
		ResourceCustomer, taxID, CategoryReference, nil,
		"tax_id", taxID,
	)
}

// ──────────────────────────────────────────────────
// Product lifecycle hooks
// ──────────────────────────────────────────────────

// OnProductCreated implements plugin.OnProductCreated.
func (e *Extension) OnProductCreated(ctx context.Context, _ interface{}) error {
	return e.record(ctx, ActionProductCreated, SeverityInfo, OutcomeSuccess,
		ResourceProduct, "", CategoryReference, nil,
		"event", "product_created",
	)
}

// OnProductUpdated implements plugin.OnProductUpdated.
func (e *Extension) OnProductUpdated(ctx context.Context, _ interface{}) error {
	return e.record(ctx, ActionProductUpdated, SeverityInfo, OutcomeSuccess,
		ResourceProduct, "", CategoryReference, nil,
		"event", "product_updated",
	)
}

// OnProductDeleted implements plugin.OnProductDeleted.
func (e *Extension) OnProductDeleted(ctx context.Context, code int) error {
	return e.record(ctx, ActionProductDeleted, SeverityWarning, OutcomeSuccess,
		ResourceProduct, fmt.Sprintf("%d", code), CategoryReference, nil,
		"code", code,
	)
}

// ──────────────────────────────────────────────────
// Invoice lifecycle hooks
// ──────────────────────────────────────────────────

// OnInvoiceOpened implements plugin.OnInvoiceOpened.
func (e *Extension) OnInvoiceOpened(ctx context.Context, _ interface{}) error {
	return e.record(ctx, ActionInvoiceOpened, SeverityInfo, OutcomeSuccess,
		ResourceInvoice, "", CategoryBilling, nil,
		"event", "invoice_opened",
	)
}

// OnCustomerAssigned implements plugin.OnCustomerAssigned.
func (e *Extension) OnCustomerAssigned(ctx context.Context, _ interface{}, taxID string) error {
	return e.record(ctx, ActionInvoiceCustomerAssigned, SeverityInfo, OutcomeSuccess,
		ResourceInvoice, "", CategoryBilling, nil,
		"tax_id", taxID,
	)
}

// OnLineAdded implements plugin.OnLineAdded.
func (e *Extension) OnLineAdded(ctx context.Context, _ interface{}, _ interface{}) error {
	return e.record(ctx, ActionInvoiceLineAdded, SeverityInfo, OutcomeSuccess,
		ResourceInvoice, "", CategoryBilling, nil,
		"event", "line_added",
	)
}

// OnInvoiceCommitted implements plugin.OnInvoiceCommitted.
func (e *Extension) OnInvoiceCommitted(ctx context.Context, inv interface{}) error {
	var resourceID string
	if v, ok := inv.(*invoice.Invoice); ok {
		resourceID = v.Number
	}
	return e.record(ctx, ActionInvoiceCommitted, SeverityInfo, OutcomeSuccess,
		ResourceInvoice, resourceID, CategoryBilling, nil,
		"event", "invoice_committed",
	)
}

// OnCommitFailed implements plugin.OnCommitFailed.
func (e *Extension) OnCommitFailed(ctx context.Context, _ interface{}, err error) error {
	return e.record(ctx, ActionInvoiceCommitFailed, SeverityCritical, OutcomeFailure,
		ResourceInvoice, "", CategoryBilling, err,
		"event", "invoice_commit_failed",
	)
}

// ──────────────────────────────────────────────────
// Internal helpers
// ──────────────────────────────────────────────────

// record builds and sends an audit event if the action is enabled.
func (e *Extension) record(
	ctx context.Context,
	action, severity, outcome string,
	resource, resourceID, category string,
	err error,
	kvPairs ...any,
) error {
	if e.enabled != nil && !e.enabled[action] {
		return nil
	}

	meta := make(map[string]any, len(kvPairs)/2+1)
	for i := 0; i+1 < len(kvPairs); i += 2 {
		key, ok := kvPairs[i].(string)
		if !ok {
			key = fmt.Sprintf("%v", kvPairs[i])
		}
		meta[key] = kvPairs[i+1]
	}

	var reason string
	if err != nil {
		reason = err.Error()
		meta["error"] = err.Error()
	}

	evt := &AuditEvent{
		Action:     action,
		Resource:   resource,
		Category:   category,
		ResourceID: resourceID,
		Metadata:   meta,
		Outcome:    outcome,
		Severity:   severity,
		Reason:     reason,
	}

	if recErr := e.recorder.Record(ctx, evt); recErr != nil {
		e.logger.Warn("audit_hook: failed to record audit event",
			"action", action,
			"resource_id", resourceID,
			"error", recErr,
		)
	}
	return nil
}
