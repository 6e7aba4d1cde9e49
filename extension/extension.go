// Package extension provides the Forge extension adapter for Facture.
//
// It implements the forge.Extension interface to integrate Facture
// into a Forge application with automatic dependency discovery,
// DI registration, and lifecycle management.
//
// Configuration can be provided programmatically via Option functions
// or via YAML configuration files under "extensions.facture" or "facture" keys.
package extension

import (
	"context"
	"errors"
	"fmt"

	"github.com/xraph/forge"
	"github.com/xraph/grove"
	"github.com/xraph/vessel"

	facture "github.com/xraph/facture"
	"github.com/xraph/facture/store"
	"github.com/xraph/facture/store/memory"
	mongostore "github.com/xraph/facture/store/mongo"
	pgstore "github.com/xraph/facture/store/postgres"
	sqlitestore "github.com/xraph/facture/store/sqlite"
)

// ExtensionName is the name registered with Forge.
const ExtensionName = "facture"

// ExtensionDescription is the human-readable description.
const ExtensionDescription = "Invoicing engine with gapless document numbering"

// ExtensionVersion is the semantic version.
const ExtensionVersion = "0.1.0"

// Ensure Extension implements forge.Extension at compile time.
var _ forge.Extension = (*Extension)(nil)

// Extension adapts Facture as a Forge extension.
type Extension struct {
	*forge.BaseExtension

	config      Config
	engine      *facture.Facture
	store       store.Store
	groveDB     *grove.DB
	factureOpts []facture.Option
}

// New creates a new Facture Forge extension with the given options.
func New(opts ...Option) *Extension {
	e := &Extension{
		BaseExtension: forge.NewBaseExtension(ExtensionName, ExtensionVersion, ExtensionDescription),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Engine returns the underlying Facture instance.
// This is nil until Register is called.
func (e *Extension) Engine() *facture.Facture { return e.engine }

// Register implements [forge.Extension]. It loads configuration,
// initializes the billing engine, and registers it in the DI container.
func (e *Extension) Register(fapp forge.App) error {
	if err := e.BaseExtension.Register(fapp); err != nil {
		return err
	}

	if err := e.loadConfiguration(); err != nil {
		return err
	}

	if e.store == nil {
		s, err := e.buildStore()
		if err != nil {
			return err
		}
		e.store = s
	}

	// Build facture options from resolved config.
	opts := e.buildFactureOpts()

	eng := facture.New(e.store, opts...)
	e.engine = eng

	return vessel.Provide(fapp.Container(), func() (*facture.Facture, error) {
		return e.engine, nil
	})
}

// Start implements [forge.Extension].
func (e *Extension) Start(ctx context.Context) error {
	if e.engine == nil {
		return errors.New("facture: extension not initialized")
	}

	if !e.config.DisableMigrate {
		if err := e.engine.Start(ctx); err != nil {
			return err
		}
	}

	e.MarkStarted()
	return nil
}

// Stop implements [forge.Extension].
func (e *Extension) Stop(_ context.Context) error {
	if e.engine != nil {
		if err := e.engine.Stop(); err != nil {
			e.MarkStopped()
			return err
		}
	}
	e.MarkStopped()
	return nil
}

// Health implements [forge.Extension].
func (e *Extension) Health(ctx context.Context) error {
	if e.store == nil {
		return errors.New("facture: store not initialized")
	}
	return e.store.Ping(ctx)
}

// buildStore constructs a store from the grove database when one was
// provided, falling back to the in-memory store otherwise.
func (e *Extension) buildStore() (store.Store, error) {
	if e.groveDB == nil {
		return memory.New(), nil
	}

	switch e.config.Driver {
	case "postgres", "pg":
		return pgstore.New(e.groveDB), nil
	case "sqlite":
		return sqlitestore.New(e.groveDB), nil
	case "mongo", "mongodb":
		return mongostore.New(e.groveDB), nil
	case "":
		return nil, errors.New("facture: grove database provided but no driver configured; " +
			"set the 'driver' config key or use WithDriver")
	default:
		return nil, fmt.Errorf("facture: unsupported store driver %q", e.config.Driver)
	}
}

// buildFactureOpts constructs facture.Option values from the resolved config.
func (e *Extension) buildFactureOpts() []facture.Option {
	opts := make([]facture.Option, 0, len(e.factureOpts)+2)

	if e.config.Currency != "" {
		opts = append(opts, facture.WithCurrency(e.config.Currency))
	}
	if e.config.CommitTimeout > 0 {
		opts = append(opts, facture.WithCommitTimeout(e.config.CommitTimeout))
	}

	// Append any pass-through facture options.
	opts = append(opts, e.factureOpts...)

	return opts
}

// --- Config Loading (mirrors grove/shield extension pattern) ---

// loadConfiguration loads config from YAML files or programmatic sources.
func (e *Extension) loadConfiguration() error {
	programmaticConfig := e.config

	// Try loading from config file.
	fileConfig, configLoaded := e.tryLoadFromConfigFile()

	if !configLoaded {
		if programmaticConfig.RequireConfig {
			return errors.New("facture: configuration is required but not found in config files; " +
				"ensure 'extensions.facture' or 'facture' key exists in your config")
		}

		// Use programmatic config merged with defaults.
		e.config = e.mergeWithDefaults(programmaticConfig)
	} else {
		// Config loaded from YAML -- merge with programmatic options.
		e.config = e.mergeConfigurations(fileConfig, programmaticConfig)
	}

	e.Logger().Debug("facture: configuration loaded",
		forge.F("disable_migrate", e.config.DisableMigrate),
		forge.F("currency", e.config.Currency),
		forge.F("commit_timeout", e.config.CommitTimeout),
		forge.F("driver", e.config.Driver),
	)

	return nil
}

// tryLoadFromConfigFile attempts to load config from YAML files.
func (e *Extension) tryLoadFromConfigFile() (Config, bool) {
	cm := e.App().Config()
	var cfg Config

	// Try "extensions.facture" first (namespaced pattern).
	if cm.IsSet("extensions.facture") {
		if err := cm.Bind("extensions.facture", &cfg); err == nil {
			e.Logger().Debug("facture: loaded config from file",
				forge.F("key", "extensions.facture"),
			)
			return cfg, true
		}
		e.Logger().Warn("facture: failed to bind extensions.facture config",
			forge.F("error", "bind failed"),
		)
	}

	// Try legacy "facture" key.
	if cm.IsSet("facture") {
		if err := cm.Bind("facture", &cfg); err == nil {
			e.Logger().Debug("facture: loaded config from file",
				forge.F("key", "facture"),
			)
			return cfg, true
		}
		e.Logger().Warn("facture: failed to bind facture config",
			forge.F("error", "bind failed"),
		)
	}

	return Config{}, false
}

// mergeWithDefaults fills zero-valued fields with defaults.
func (e *Extension) mergeWithDefaults(cfg Config) Config {
	defaults := DefaultConfig()
	if cfg.Currency == "" {
		cfg.Currency = defaults.Currency
	}
	if cfg.CommitTimeout == 0 {
		cfg.CommitTimeout = defaults.CommitTimeout
	}
	return cfg
}

// mergeConfigurations merges YAML config with programmatic options.
// YAML config takes precedence for most fields; programmatic flags fill gaps.
func (e *Extension) mergeConfigurations(yamlConfig, programmaticConfig Config) Config {
	// Programmatic bool flags override when true.
	if programmaticConfig.DisableMigrate {
		yamlConfig.DisableMigrate = true
	}

	// String fields: YAML takes precedence.
	if yamlConfig.Currency == "" && programmaticConfig.Currency != "" {
		yamlConfig.Currency = programmaticConfig.Currency
	}
	if yamlConfig.Driver == "" && programmaticConfig.Driver != "" {
		yamlConfig.Driver = programmaticConfig.Driver
	}

	// Duration fields: YAML takes precedence, programmatic fills gaps.
	if yamlConfig.CommitTimeout == 0 && programmaticConfig.CommitTimeout != 0 {
		yamlConfig.CommitTimeout = programmaticConfig.CommitTimeout
	}

	// Fill remaining zeros with defaults.
	return e.mergeWithDefaults(yamlConfig)
}
