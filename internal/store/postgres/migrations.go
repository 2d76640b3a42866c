package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log"
)

type migration struct {
	version int
	name    string
	stmts   []string
}

// Schema changes are append-only: add a new migration, never edit a
// shipped one. Applied versions are recorded in schema_migrations.
var migrations = []migration{
	{
		version: 1,
		name:    "base schema",
		stmts: []string{
			`CREATE TABLE IF NOT EXISTS inventory_items (
				id TEXT PRIMARY KEY,
				name TEXT NOT NULL,
				sku TEXT NOT NULL UNIQUE,
				category TEXT NOT NULL DEFAULT '',
				buy_price_cents BIGINT NOT NULL DEFAULT 0,
				sell_price_cents BIGINT NOT NULL DEFAULT 0,
				quantity BIGINT NOT NULL DEFAULT 0 CHECK (quantity >= 0),
				supplier TEXT,
				description TEXT,
				created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
				updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
			)`,
			`CREATE TABLE IF NOT EXISTS sales (
				id TEXT PRIMARY KEY,
				invoice_number TEXT NOT NULL UNIQUE,
				customer_name TEXT,
				customer_phone TEXT,
				subtotal_cents BIGINT NOT NULL,
				tax_rate DOUBLE PRECISION NOT NULL DEFAULT 0,
				tax_cents BIGINT NOT NULL DEFAULT 0,
				discount_cents BIGINT NOT NULL DEFAULT 0,
				total_cents BIGINT NOT NULL,
				paid_cents BIGINT NOT NULL DEFAULT 0,
				payment_status TEXT NOT NULL,
				payment_method TEXT,
				notes TEXT,
				created_at TIMESTAMPTZ NOT NULL DEFAULT now()
			)`,
			`CREATE TABLE IF NOT EXISTS sale_items (
				id TEXT PRIMARY KEY,
				sale_id TEXT NOT NULL REFERENCES sales(id) ON DELETE CASCADE,
				item_id TEXT NOT NULL,
				item_name TEXT NOT NULL,
				sku TEXT NOT NULL,
				quantity BIGINT NOT NULL,
				unit_price_cents BIGINT NOT NULL,
				line_total_cents BIGINT NOT NULL
			)`,
			`CREATE INDEX IF NOT EXISTS idx_sale_items_sale ON sale_items (sale_id)`,
			`CREATE INDEX IF NOT EXISTS idx_sales_created_at ON sales (created_at DESC)`,
			`CREATE TABLE IF NOT EXISTS app_users (
				username TEXT PRIMARY KEY,
				password TEXT NOT NULL,
				role TEXT NOT NULL,
				active BOOLEAN NOT NULL DEFAULT true,
				created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
				updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
			)`,
		},
	},
	{
		version: 2,
		name:    "partners and investments",
		stmts: []string{
			`CREATE TABLE IF NOT EXISTS partners (
				id TEXT PRIMARY KEY,
				name TEXT NOT NULL,
				type TEXT NOT NULL CHECK (type IN ('investor','supplier')),
				phone TEXT,
				email TEXT,
				address TEXT,
				notes TEXT,
				created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
				updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
			)`,
			`CREATE TABLE IF NOT EXISTS investments (
				id TEXT PRIMARY KEY,
				partner_id TEXT NOT NULL REFERENCES partners(id),
				partner_name TEXT NOT NULL,
				type TEXT NOT NULL CHECK (type IN ('invest','withdraw')),
				amount_cents BIGINT NOT NULL,
				invested_on TIMESTAMPTZ NOT NULL,
				notes TEXT,
				created_at TIMESTAMPTZ NOT NULL DEFAULT now()
			)`,
			`CREATE INDEX IF NOT EXISTS idx_investments_partner ON investments (partner_id)`,
		},
	},
	{
		version: 3,
		name:    "returns and settings",
		stmts: []string{
			`CREATE TABLE IF NOT EXISTS sale_returns (
				id TEXT PRIMARY KEY,
				sale_id TEXT NOT NULL,
				invoice_number TEXT NOT NULL,
				reason TEXT,
				refund_cents BIGINT NOT NULL DEFAULT 0,
				items_data JSONB NOT NULL DEFAULT '[]',
				created_at TIMESTAMPTZ NOT NULL DEFAULT now()
			)`,
			`CREATE INDEX IF NOT EXISTS idx_sale_returns_sale ON sale_returns (sale_id)`,
			`CREATE TABLE IF NOT EXISTS settings (
				id SMALLINT PRIMARY KEY DEFAULT 1 CHECK (id = 1),
				store_name TEXT NOT NULL DEFAULT 'My Store',
				tax_rate DOUBLE PRECISION NOT NULL DEFAULT 0,
				currency TEXT NOT NULL DEFAULT 'LKR',
				phone TEXT,
				address TEXT,
				receipt_footer TEXT,
				low_stock_threshold BIGINT NOT NULL DEFAULT 5,
				updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
			)`,
		},
	},
}

// Migrate applies pending migrations in order. Each version runs in its
// own transaction together with the schema_migrations bookkeeping row,
// so a failed migration leaves the version unrecorded.
func (s *Store) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INT PRIMARY KEY,
			name TEXT NOT NULL,
			applied_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)
	`)
	if err != nil {
		return fmt.Errorf("init schema_migrations: %w", err)
	}

	applied := map[int]bool{}
	rows, err := s.db.QueryContext(ctx, `SELECT version FROM schema_migrations`)
	if err != nil {
		return err
	}
	for rows.Next() {
		var version int
		if err := rows.Scan(&version); err != nil {
			_ = rows.Close()
			return err
		}
		applied[version] = true
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return err
	}
	_ = rows.Close()

	for _, m := range migrations {
		if applied[m.version] {
			continue
		}
		tx, err := s.db.BeginTx(ctx, &sql.TxOptions{})
		if err != nil {
			return err
		}
		if err := applyMigration(ctx, tx, m); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("migration %d (%s): %w", m.version, m.name, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("migration %d (%s): %w", m.version, m.name, err)
		}
		log.Printf("[postgres] applied migration %d: %s", m.version, m.name)
	}
	return nil
}

func applyMigration(ctx context.Context, tx *sql.Tx, m migration) error {
	for _, stmt := range m.stmts {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	_, err := tx.ExecContext(ctx, `
		INSERT INTO schema_migrations (version, name) VALUES ($1,$2)
	`, m.version, m.name)
	return err
}
