// Package observability provides a metrics extension for Facture that
// records lifecycle event counts via go-utils MetricFactory.
package observability

import (
	"context"

	"github.com/xraph/facture/invoice"
	"github.com/xraph/facture/plugin"
)

// Ensure MetricsExtension implements required interfaces.
var (
	_ plugin.Plugin             = (*MetricsExtension)(nil)
	_ plugin.OnInit             = (*MetricsExtension)(nil)
	_ plugin.OnCustomerCreated  = (*MetricsExtension)(nil)
	_ plugin.OnCustomerUpdated  = (*MetricsExtension)(nil)
	_ plugin.OnCustomerDeleted  = (*MetricsExtension)(nil)
	_ plugin.OnProductCreated   = (*MetricsExtension)(nil)
	_ plugin.OnProductUpdated   = (*MetricsExtension)(nil)
	_ plugin.OnProductDeleted   = (*MetricsExtension)(nil)
	_ plugin.OnInvoiceOpened    = (*MetricsExtension)(nil)
	_ plugin.OnLineAdded        = (*MetricsExtension)(nil)
	_ plugin.OnInvoiceCommitted = (*MetricsExtension)(nil)
	_ plugin.OnCommitFailed     = (*MetricsExtension)(nil)
)

// Counter interface for metric counters.
type Counter interface {
	Inc()
	Add(float64)
}

// Histogram interface for metric histograms.
type Histogram interface {
	Observe(float64)
}

// MetricFactory creates metrics.
type MetricFactory interface {
	Counter(name string) Counter
	Histogram(name string) Histogram
}

// MetricsExtension records system-wide lifecycle metrics.
// Register it as a Facture plugin to automatically track invoicing metrics.
type MetricsExtension struct {
	factory MetricFactory

	// Customer metrics
	CustomerCreated Counter
	CustomerUpdated Counter
	CustomerDeleted Counter

	// Product metrics
	ProductCreated Counter
	ProductUpdated Counter
	ProductDeleted Counter

	// Invoice metrics
	InvoiceOpened    Counter
	LinesAdded       Counter
	InvoiceCommitted Counter
	CommitFailed     Counter
	InvoiceLineCount Histogram
	InvoiceTotal     Histogram

	// Error metrics
	StoreErrors  Counter
	PluginErrors Counter
}

// NewMetricsExtension creates a MetricsExtension with the provided MetricFactory.
// Use app.Metrics() in forge extensions.
func NewMetricsExtension(factory MetricFactory) *MetricsExtension {
	return &MetricsExtension{
		factory: factory,

		// Customer metrics
		CustomerCreated: factory.Counter("facture.customer.created"),
		CustomerUpdated: factory.Counter("facture.customer.updated"),
		CustomerDeleted: factory.Counter("facture.customer.deleted"),

		// Product metrics
		ProductCreated: factory.Counter("facture.product.created"),
		ProductUpdated: factory.Counter("facture.product.updated"),
		ProductDeleted: factory.Counter("facture.product.deleted"),

		// Invoice metrics
		InvoiceOpened:    factory.Counter("facture.invoice.opened"),
		LinesAdded:       factory.Counter("facture.invoice.lines.added"),
		InvoiceCommitted: factory.Counter("facture.invoice.committed"),
		CommitFailed:     factory.Counter("facture.invoice.commit.failed"),
		InvoiceLineCount: factory.Histogram("facture.invoice.line_count"),
		InvoiceTotal:     factory.Histogram("facture.invoice.total_amount"),

		// Error metrics
		StoreErrors:  factory.Counter("facture.store.errors"),
		PluginErrors: factory.Counter("facture.plugin.errors"),
	}
}

// Name implements plugin.Plugin.
func (m *MetricsExtension) Name() string { return "observability-metrics" }

// OnInit implements plugin.OnInit.
func (m *MetricsExtension) OnInit(_ context.Context, _ interface{}) error {
	// No initialization needed
	return nil
}

// ──────────────────────────────────────────────────
// Customer lifecycle hooks
// ──────────────────────────────────────────────────

// OnCustomerCreated implements plugin.OnCustomerCreated.
func (m *MetricsExtension) OnCustomerCreated(_ context.Context, _ interface{}) error {
	m.CustomerCreated.Inc()
	return nil
}

// OnCustomerUpdated implements plugin.OnCustomerUpdated.
func (m *MetricsExtension) OnCustomerUpdated(_ context.Context, _ interface{}) error {
	m.CustomerUpdated.Inc()
	return nil
}

// OnCustomerDeleted implements plugin.OnCustomerDeleted.
func (m *MetricsExtension) OnCustomerDeleted(_ context.Context, _ string) error {
	m.CustomerDeleted.Inc()
	return nil
}

// ──────────────────────────────────────────────────
// Product lifecycle hooks
// ──────────────────────────────────────────────────

// OnProductCreated implements plugin.OnProductCreated.
func (m *MetricsExtension) OnProductCreated(_ context.Context, _ interface{}) error {
	m.ProductCreated.Inc()
	return nil
}

// OnProductUpdated implements plugin.OnProductUpdated.
func (m *MetricsExtension) OnProductUpdated(_ context.Context, _ interface{}) error {
	m.ProductUpdated.Inc()
	return nil
}

// OnProductDeleted implements plugin.OnProductDeleted.
func (m *MetricsExtension) OnProductDeleted(_ context.Context, _ int) error {
	m.ProductDeleted.Inc()
	return nil
}

// ──────────────────────────────────────────────────
// Invoice lifecycle hooks
// ──────────────────────────────────────────────────

// OnInvoiceOpened implements plugin.OnInvoiceOpened.
func (m *MetricsExtension) OnInvoiceOpened(_ context.Context, _ interface{}) error {
	m.InvoiceOpened.Inc()
	return nil
}

// OnLineAdded implements plugin.OnLineAdded.
func (m *MetricsExtension) OnLineAdded(_ context.Context, _ interface{}, _ interface{}) error {
	m.LinesAdded.Inc()
	return nil
}

// OnInvoiceCommitted implements plugin.OnInvoiceCommitted.
func (m *MetricsExtension) OnInvoiceCommitted(_ context.Context, inv interface{}) error {
	m.InvoiceCommitted.Inc()
	if v, ok := inv.(*invoice.Invoice); ok {
		m.InvoiceLineCount.Observe(float64(len(v.LineItems)))
		m.InvoiceTotal.Observe(float64(v.Total.Amount))
	}
	return nil
}

// OnCommitFailed implements plugin.OnCommitFailed.
func (m *MetricsExtension) OnCommitFailed(_ context.Context, _ interface{}, _ error) error {
	m.CommitFailed.Inc()
	m.StoreErrors.Inc()
	return nil
}
