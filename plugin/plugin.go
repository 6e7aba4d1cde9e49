// Package plugin provides an extensible plugin system for Facture.
// Plugins can hook into various lifecycle events to extend functionality.
package plugin

import (
	"context"
)

// Plugin is the base interface that all plugins must implement.
type Plugin interface {
	Name() string
}

// ──────────────────────────────────────────────────
// Lifecycle hooks
// ──────────────────────────────────────────────────

// OnInit is called when the plugin is initialized.
type OnInit interface {
	Plugin
	OnInit(ctx context.Context, engine interface{}) error
}

// OnShutdown is called when the plugin is shutting down.
type OnShutdown interface {
	Plugin
	OnShutdown(ctx context.Context) error
}

// ──────────────────────────────────────────────────
// Customer lifecycle hooks
// ──────────────────────────────────────────────────

// OnCustomerCreated is called when a new customer is created.
type OnCustomerCreated interface {
	Plugin
	OnCustomerCreated(ctx context.Context, c interface{}) error
}

// OnCustomerUpdated is called when a customer is updated.
type OnCustomerUpdated interface {
	Plugin
	OnCustomerUpdated(ctx context.Context, c interface{}) error
}

// OnCustomerDeleted is called when a customer is deleted.
type OnCustomerDeleted interface {
	Plugin
	OnCustomerDeleted(ctx context.Context, taxID string) error
}

// ──────────────────────────────────────────────────
// Product lifecycle hooks
// ──────────────────────────────────────────────────

// OnProductCreated is called when a new product is created.
type OnProductCreated interface {
	Plugin
	OnProductCreated(ctx context.Context, p interface{}) error
}

// OnProductUpdated is called when a product is updated.
type OnProductUpdated interface {
	Plugin
	OnProductUpdated(ctx context.Context, p interface{}) error
}

// OnProductDeleted is called when a product is deleted.
type OnProductDeleted interface {
	Plugin
	OnProductDeleted(ctx context.Context, code int) error
}

// ──────────────────────────────────────────────────
// Invoice lifecycle hooks
// ──────────────────────────────────────────────────

// OnInvoiceOpened is called when a new draft invoice is opened.
type OnInvoiceOpened interface {
	Plugin
	OnInvoiceOpened(ctx context.Context, inv interface{}) error
}

// OnCustomerAssigned is called when a customer is assigned to a draft.
type OnCustomerAssigned interface {
	Plugin
	OnCustomerAssigned(ctx context.Context, inv interface{}, taxID string) error
}

// OnLineAdded is called when a line item is added to a draft.
type OnLineAdded interface {
	Plugin
	OnLineAdded(ctx context.Context, inv interface{}, line interface{}) error
}

// OnInvoiceCommitted is called when an invoice is committed and numbered.
type OnInvoiceCommitted interface {
	Plugin
	OnInvoiceCommitted(ctx context.Context, inv interface{}) error
}

// OnCommitFailed is called when a commit fails after its preconditions
// passed, e.g. on a store write failure.
type OnCommitFailed interface {
	Plugin
	OnCommitFailed(ctx context.Context, inv interface{}, err error) error
}

// ──────────────────────────────────────────────────
// Invoice formatters
// ──────────────────────────────────────────────────

// InvoiceFormatter formats committed invoices for export.
type InvoiceFormatter interface {
	Plugin
	Format() string                                                   // "pdf", "html", "csv", etc.
	Render(ctx context.Context, inv interface{}, w interface{}) error // w is io.Writer
}
