package extension

import "time"

// Config holds the Facture extension configuration.
// Fields can be set programmatically via Option functions or loaded from
// YAML configuration files (under "extensions.facture" or "facture" keys).
type Config struct {
	// DisableMigrate prevents auto-migration on start.
	DisableMigrate bool `json:"disable_migrate" mapstructure:"disable_migrate" yaml:"disable_migrate"`

	// Currency is the ISO currency code used for new invoices (default: "usd").
	Currency string `json:"currency" mapstructure:"currency" yaml:"currency"`

	// CommitTimeout bounds how long a commit waits for the commit lock
	// before giving up (default: 5s).
	CommitTimeout time.Duration `json:"commit_timeout" mapstructure:"commit_timeout" yaml:"commit_timeout"`

	// Driver selects the store backend when a grove.DB was provided via
	// WithGroveDB: "postgres", "sqlite" or "mongo". Ignored when a store
	// was provided directly. When no store and no grove.DB were provided,
	// the in-memory store is used.
	Driver string `json:"driver" mapstructure:"driver" yaml:"driver"`

	// RequireConfig requires config to be present in YAML files.
	// If true and no config is found, Register returns an error.
	RequireConfig bool `json:"-" yaml:"-"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Currency:      "usd",
		CommitTimeout: 5 * time.Second,
	}
}
