package sqlite

import (
	"context"

	"github.com/xraph/grove/migrate"
)

// Migrations is the grove migration group for the Facture store (SQLite).
var Migrations = migrate.NewGroup("facture")

func init() {
	Migrations.MustRegister(
		&migrate.Migration{
			Name:    "create_facture_customers",
			Version: "20250101000001",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS facture_customers (
    tax_id      TEXT PRIMARY KEY,
    first_names TEXT NOT NULL DEFAULT '',
    last_names  TEXT NOT NULL DEFAULT '',
    address     TEXT NOT NULL DEFAULT '',
    created_at  TEXT NOT NULL DEFAULT (datetime('now')),
    updated_at  TEXT NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_facture_customers_last_names ON facture_customers (last_names, tax_id);
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS facture_customers`)
				return err
			},
		},
		&migrate.Migration{
			Name:    "create_facture_products",
			Version: "20250101000002",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS facture_products (
    code                INTEGER PRIMARY KEY,
    name                TEXT NOT NULL DEFAULT '',
    description         TEXT NOT NULL DEFAULT '',
    unit_price_cents    INTEGER NOT NULL DEFAULT 0,
    unit_price_currency TEXT NOT NULL DEFAULT '',
    stock               INTEGER NOT NULL DEFAULT 0,
    taxable             INTEGER NOT NULL DEFAULT 1,
    created_at          TEXT NOT NULL DEFAULT (datetime('now')),
    updated_at          TEXT NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_facture_products_name ON facture_products (name, code);
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS facture_products`)
				return err
			},
		},
		&migrate.Migration{
			Name:    "create_facture_parameters",
			Version: "20250101000003",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS facture_parameters (
    name       TEXT PRIMARY KEY,
    value      TEXT NOT NULL DEFAULT '',
    created_at TEXT NOT NULL DEFAULT (datetime('now')),
    updated_at TEXT NOT NULL DEFAULT (datetime('now'))
);
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS facture_parameters`)
				return err
			},
		},
		&migrate.Migration{
			Name:    "create_facture_invoices",
			Version: "20250101000004",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS facture_invoices (
    id                       TEXT PRIMARY KEY,
    number                   TEXT NOT NULL DEFAULT '',
    status                   TEXT NOT NULL DEFAULT 'finalized',
    issue_date               TEXT NOT NULL DEFAULT (datetime('now')),
    customer_tax_id          TEXT NOT NULL DEFAULT '',
    currency                 TEXT NOT NULL DEFAULT '',
    zero_rated_base_cents    INTEGER NOT NULL DEFAULT 0,
    zero_rated_base_currency TEXT NOT NULL DEFAULT '',
    subtotal_amount_cents    INTEGER NOT NULL DEFAULT 0,
    subtotal_currency        TEXT NOT NULL DEFAULT '',
    tax_amount_cents         INTEGER NOT NULL DEFAULT 0,
    tax_currency             TEXT NOT NULL DEFAULT '',
    total_amount_cents       INTEGER NOT NULL DEFAULT 0,
    total_currency           TEXT NOT NULL DEFAULT '',
    line_items               TEXT NOT NULL DEFAULT '[]',
    created_at               TEXT NOT NULL DEFAULT (datetime('now')),
    updated_at               TEXT NOT NULL DEFAULT (datetime('now'))
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_facture_invoices_number ON facture_invoices (number) WHERE number != '';
CREATE INDEX IF NOT EXISTS idx_facture_invoices_issue_date ON facture_invoices (issue_date);
CREATE INDEX IF NOT EXISTS idx_facture_invoices_customer ON facture_invoices (customer_tax_id);
CREATE INDEX IF NOT EXISTS idx_facture_invoices_status ON facture_invoices (status);
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS facture_invoices`)
				return err
			},
		},
	)
}
