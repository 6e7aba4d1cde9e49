package plugin

import (
	"context"
	"fmt"
	"log/slog"
	"reflect"
	"sync"
	"time"
)

// Registry manages all registered plugins and provides efficient dispatch.
// It uses type-cached discovery for O(1) dispatch performance.
type Registry struct {
	mu      sync.RWMutex
	plugins []Plugin
	logger  *slog.Logger

	// Type-cached plugin lists for efficient dispatch
	onInit             []OnInit
	onShutdown         []OnShutdown
	onCustomerCreated  []OnCustomerCreated
	onCustomerUpdated  []OnCustomerUpdated
	onCustomerDeleted  []OnCustomerDeleted
	onProductCreated   []OnProductCreated
	onProductUpdated   []OnProductUpdated
	onProductDeleted   []OnProductDeleted
	onInvoiceOpened    []OnInvoiceOpened
	onCustomerAssigned []OnCustomerAssigned
	onLineAdded        []OnLineAdded
	onInvoiceCommitted []OnInvoiceCommitted
	onCommitFailed     []OnCommitFailed
	invoiceFormatters  map[string]InvoiceFormatter
}

// NewRegistry creates a new plugin registry.
func NewRegistry() *Registry {
	return &Registry{
		logger:            slog.Default(),
		invoiceFormatters: make(map[string]InvoiceFormatter),
	}
}

// WithLogger sets the logger for the registry.
func (r *Registry) WithLogger(logger *slog.Logger) *Registry {
	r.logger = logger
	return r
}

// Register adds a plugin to the registry and caches its interfaces.
func (r *Registry) Register(p Plugin) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	// Check for duplicate
	for _, existing := range r.plugins {
		if existing.Name() == p.Name() {
			return fmt.Errorf("plugin: duplicate registration: %s", p.Name())
		}
	}

	r.plugins = append(r.plugins, p)

	// Type-switch to cache interfaces
	if v, ok := p.(OnInit); ok {
		r.onInit = append(r.onInit, v)
	}
	if v, ok := p.(OnShutdown); ok {
		r.onShutdown = append(r.onShutdown, v)
	}
	if v, ok := p.(OnCustomerCreated); ok {
		r.onCustomerCreated = append(r.onCustomerCreated, v)
	}
	if v, ok := p.(OnCustomerUpdated); ok {
		r.onCustomerUpdated = append(r.onCustomerUpdated, v)
	}
	if v, ok := p.(OnCustomerDeleted); ok {
		r.onCustomerDeleted = append(r.onCustomerDeleted, v)
	}
	if v, ok := p.(OnProductCreated); ok {
		r.onProductCreated = append(r.onProductCreated, v)
	}
	if v, ok := p.(OnProductUpdated); ok {
		r.onProductUpdated = append(r.onProductUpdated, v)
	}
	if v, ok := p.(OnProductDeleted); ok {
		r.onProductDeleted = append(r.onProductDeleted, v)
	}
	if v, ok := p.(OnInvoiceOpened); ok {
		r.onInvoiceOpened = append(r.onInvoiceOpened, v)
	}
	if v, ok := p.(OnCustomerAssigned); ok {
		r.onCustomerAssigned = append(r.onCustomerAssigned, v)
	}
	if v, ok := p.(OnLineAdded); ok {
		r.onLineAdded = append(r.onLineAdded, v)
	}
	if v, ok := p.(OnInvoiceCommitted); ok {
		r.onInvoiceCommitted = append(r.onInvoiceCommitted, v)
	}
	if v, ok := p.(OnCommitFailed); ok {
		r.onCommitFailed = append(r.onCommitFailed, v)
	}
	if v, ok := p.(InvoiceFormatter); ok {
		r.invoiceFormatters[v.Format()] = v
	}

	r.logger.Info("plugin registered",
		"name", p.Name(),
		"interfaces", r.getImplementedInterfaces(p),
	)

	return nil
}

// getImplementedInterfaces returns a list of interfaces implemented by the plugin.
func (r *Registry) getImplementedInterfaces(p Plugin) []string {
	var interfaces []string
	v := reflect.TypeOf(p)

	// Check each interface
	checkInterface := func(iface reflect.Type, name string) {
		if v.Implements(iface) {
			interfaces = append(interfaces, name)
		}
	}

	// List all interfaces to check
	checkInterface(reflect.TypeOf((*OnInit)(nil)).Elem(), "OnInit")
	checkInterface(reflect.TypeOf((*OnShutdown)(nil)).Elem(), "OnShutdown")
	checkInterface(reflect.TypeOf((*OnCustomerCreated)(nil)).Elem(), "OnCustomerCreated")
	checkInterface(reflect.TypeOf((*OnProductCreated)(nil)).Elem(), "OnProductCreated")
	checkInterface(reflect.TypeOf((*OnInvoiceOpened)(nil)).Elem(), "OnInvoiceOpened")
	checkInterface(reflect.TypeOf((*OnCustomerAssigned)(nil)).Elem(), "OnCustomerAssigned")
	checkInterface(reflect.TypeOf((*OnLineAdded)(nil)).Elem(), "OnLineAdded")
	checkInterface(reflect.TypeOf((*OnInvoiceCommitted)(nil)).Elem(), "OnInvoiceCommitted")
	checkInterface(reflect.TypeOf((*OnCommitFailed)(nil)).Elem(), "OnCommitFailed")
	checkInterface(reflect.TypeOf((*InvoiceFormatter)(nil)).Elem(), "InvoiceFormatter")

	return interfaces
}

// Get returns a plugin by name.
func (r *Registry) Get(name string) Plugin {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, p := range r.plugins {
		if p.Name() == name {
			return p
		}
	}
	return nil
}

// List returns all registered plugins.
func (r *Registry) List() []Plugin {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]Plugin, len(r.plugins))
	copy(result, r.plugins)
	return result
}

// Count returns the number of registered plugins.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.plugins)
}

// GetFormatter returns an invoice formatter by format name.
func (r *Registry) GetFormatter(format string) InvoiceFormatter {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.invoiceFormatters[format]
}

// ──────────────────────────────────────────────────
// Event emission methods
// ──────────────────────────────────────────────────

// EmitInit calls OnInit for all plugins that implement it.
func (r *Registry) EmitInit(ctx context.Context, engine interface{}) {
	r.mu.RLock()
	plugins := r.onInit
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnInit(ctx, engine)
		}); err != nil {
			r.logger.Warn("plugin OnInit failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitShutdown calls OnShutdown for all plugins that implement it.
func (r *Registry) EmitShutdown(ctx context.Context) {
	r.mu.RLock()
	plugins := r.onShutdown
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnShutdown(ctx)
		}); err != nil {
			r.logger.Warn("plugin OnShutdown failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitCustomerCreated emits a customer created event.
func (r *Registry) EmitCustomerCreated(ctx context.Context, c interface{}) {
	r.mu.RLock()
	plugins := r.onCustomerCreated
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnCustomerCreated(ctx, c)
		}); err != nil {
			r.logger.Warn("plugin OnCustomerCreated failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitCustomerUpdated emits a customer updated event.
func (r *Registry) EmitCustomerUpdated(ctx context.Context, c interface{}) {
	r.mu.RLock()
	plugins := r.onCustomerUpdated
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnCustomerUpdated(ctx, c)
		}); err != nil {
			r.logger.Warn("plugin OnCustomerUpdated failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitCustomerDeleted emits a customer deleted event.
func (r *Registry) EmitCustomerDeleted(ctx context.Context, taxID string) {
	r.mu.RLock()
	plugins := r.onCustomerDeleted
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnCustomerDeleted(ctx, taxID)
		}); err != nil {
			r.logger.Warn("plugin OnCustomerDeleted failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitProductCreated emits a product created event.
func (r *Registry) EmitProductCreated(ctx context.Context, prod interface{}) {
	r.mu.RLock()
	plugins := r.onProductCreated
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnProductCreated(ctx, prod)
		}); err != nil {
			r.logger.Warn("plugin OnProductCreated failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitProductUpdated emits a product updated event.
func (r *Registry) EmitProductUpdated(ctx context.Context, prod interface{}) {
	r.mu.RLock()
	plugins := r.onProductUpdated
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnProductUpdated(ctx, prod)
		}); err != nil {
			r.logger.Warn("plugin OnProductUpdated failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitProductDeleted emits a product deleted event.
func (r *Registry) EmitProductDeleted(ctx context.Context, code int) {
	r.mu.RLock()
	plugins := r.onProductDeleted
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnProductDeleted(ctx, code)
		}); err != nil {
			r.logger.Warn("plugin OnProductDeleted failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitInvoiceOpened emits an invoice opened event.
func (r *Registry) EmitInvoiceOpened(ctx context.Context, inv interface{}) {
	r.mu.RLock()
	plugins := r.onInvoiceOpened
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnInvoiceOpened(ctx, inv)
		}); err != nil {
			r.logger.Warn("plugin OnInvoiceOpened failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitCustomerAssigned emits a customer assigned event.
func (r *Registry) EmitCustomerAssigned(ctx context.Context, inv interface{}, taxID string) {
	r.mu.RLock()
	plugins := r.onCustomerAssigned
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnCustomerAssigned(ctx, inv, taxID)
		}); err != nil {
			r.logger.Warn("plugin OnCustomerAssigned failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitLineAdded emits a line added event.
func (r *Registry) EmitLineAdded(ctx context.Context, inv interface{}, line interface{}) {
	r.mu.RLock()
	plugins := r.onLineAdded
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnLineAdded(ctx, inv, line)
		}); err != nil {
			r.logger.Warn("plugin OnLineAdded failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitInvoiceCommitted emits an invoice committed event.
func (r *Registry) EmitInvoiceCommitted(ctx context.Context, inv interface{}) {
	r.mu.RLock()
	plugins := r.onInvoiceCommitted
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnInvoiceCommitted(ctx, inv)
		}); err != nil {
			r.logger.Warn("plugin OnInvoiceCommitted failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitCommitFailed emits a commit failed event.
func (r *Registry) EmitCommitFailed(ctx context.Context, inv interface{}, cause error) {
	r.mu.RLock()
	plugins := r.onCommitFailed
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnCommitFailed(ctx, inv, cause)
		}); err != nil {
			r.logger.Warn("plugin OnCommitFailed failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// callWithTimeout calls a plugin function with a timeout.
// Plugins should never block the billing pipeline.
func (r *Registry) callWithTimeout(ctx context.Context, pluginName string, fn func() error) error {
	done := make(chan error, 1)

	go func() {
		done <- fn()
	}()

	select {
	case err := <-done:
		return err
	case <-time.After(5 * time.Second):
		return fmt.Errorf("plugin timeout: %s", pluginName)
	case <-ctx.Done():
		return ctx.Err()
	}
}
