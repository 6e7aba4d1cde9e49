package extension

import (
	"time"

	"github.com/xraph/grove"

	facture "github.com/xraph/facture"
	"github.com/xraph/facture/plugin"
	"github.com/xraph/facture/store"
)

// Option configures the Facture Forge extension.
type Option func(*Extension)

// WithStore sets the store for the billing engine.
func WithStore(s store.Store) Option {
	return func(e *Extension) {
		e.store = s
	}
}

// WithFactureOption passes a facture.Option through to the underlying engine.
func WithFactureOption(opt facture.Option) Option {
	return func(e *Extension) {
		e.factureOpts = append(e.factureOpts, opt)
	}
}

// WithPlugin registers a facture plugin.
func WithPlugin(p plugin.Plugin) Option {
	return func(e *Extension) {
		e.factureOpts = append(e.factureOpts, facture.WithPlugin(p))
	}
}

// WithConfig sets the Forge extension configuration.
func WithConfig(cfg Config) Option {
	return func(e *Extension) { e.config = cfg }
}

// WithDisableMigrate prevents auto-migration on start.
func WithDisableMigrate() Option {
	return func(e *Extension) { e.config.DisableMigrate = true }
}

// WithCurrency sets the ISO currency code used for new invoices.
func WithCurrency(currency string) Option {
	return func(e *Extension) { e.config.Currency = currency }
}

// WithCommitTimeout bounds how long a commit waits for the commit lock.
func WithCommitTimeout(d time.Duration) Option {
	return func(e *Extension) { e.config.CommitTimeout = d }
}

// WithRequireConfig requires config to be present in YAML files.
// If true and no config is found, Register returns an error.
func WithRequireConfig(require bool) Option {
	return func(e *Extension) { e.config.RequireConfig = require }
}

// WithGroveDB hands the extension a grove database to build the store from.
// The backend is selected by the "driver" config key (or WithDriver):
// "postgres", "sqlite" or "mongo".
func WithGroveDB(db *grove.DB) Option {
	return func(e *Extension) {
		e.groveDB = db
	}
}

// WithDriver selects the store backend used with WithGroveDB.
func WithDriver(driver string) Option {
	return func(e *Extension) { e.config.Driver = driver }
}
