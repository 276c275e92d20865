package registry

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/privatechef/concierge/internal/wallet"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS collectible_holders (
	wallet_address TEXT PRIMARY KEY,
	is_holder      INTEGER NOT NULL DEFAULT 1,
	note           TEXT NOT NULL DEFAULT '',
	updated_at     TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
)`

// SQLiteRepository implements Repository on a local SQLite file.
type SQLiteRepository struct {
	db *sqlx.DB
}

// OpenSQLite opens (creating if needed) the SQLite database at dsn and
// verifies the connection.
func OpenSQLite(ctx context.Context, dsn string) (*SQLiteRepository, error) {
	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite registry: %w", err)
	}
	// SQLite serializes writers; a single connection avoids SQLITE_BUSY from
	// our own pool.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging sqlite registry: %w", err)
	}
	return &SQLiteRepository{db: db}, nil
}

// Migrate creates the holders table if it does not exist.
func (r *SQLiteRepository) Migrate(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, sqliteSchema); err != nil {
		return fmt.Errorf("creating collectible_holders table: %w", err)
	}
	return nil
}

// IsHolder looks up a single wallet.
func (r *SQLiteRepository) IsHolder(ctx context.Context, addr string) (bool, error) {
	var isHolder bool
	err := r.db.GetContext(ctx, &isHolder,
		`SELECT is_holder FROM collectible_holders WHERE wallet_address = ?`, addr)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("querying holder: %w", err)
	}
	return isHolder, nil
}

// Upsert inserts or replaces the row for h.WalletAddress, lowercasing it
// in place.
func (r *SQLiteRepository) Upsert(ctx context.Context, h *Holder) error {
	addr, ok := wallet.Normalize(h.WalletAddress)
	if !ok {
		return fmt.Errorf("%w: %q", ErrInvalidWallet, h.WalletAddress)
	}
	h.WalletAddress = addr

	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO collectible_holders (wallet_address, is_holder, note)
		VALUES (:wallet_address, :is_holder, :note)
		ON CONFLICT (wallet_address) DO UPDATE
		SET is_holder = excluded.is_holder,
		    note = excluded.note,
		    updated_at = CURRENT_TIMESTAMP`, h)
	if err != nil {
		return fmt.Errorf("upserting holder: %w", err)
	}
	return nil
}

// List returns every row ordered by wallet address.
func (r *SQLiteRepository) List(ctx context.Context) ([]Holder, error) {
	holders := []Holder{}
	err := r.db.SelectContext(ctx, &holders,
		`SELECT wallet_address, is_holder, note FROM collectible_holders ORDER BY wallet_address`)
	if err != nil {
		return nil, fmt.Errorf("listing holders: %w", err)
	}
	return holders, nil
}

// Ping verifies the database is reachable.
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// Close closes the database.
func (r *SQLiteRepository) Close() error {
	return r.db.Close()
}
