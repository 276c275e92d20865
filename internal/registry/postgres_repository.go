package registry

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/privatechef/concierge/internal/wallet"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS collectible_holders (
	wallet_address TEXT PRIMARY KEY,
	is_holder      BOOLEAN NOT NULL DEFAULT TRUE,
	note           TEXT NOT NULL DEFAULT '',
	updated_at     TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`

// PostgresRepository implements Repository using pgxpool, for deployments
// that keep the registry in a shared database instead of a local file.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// OpenPostgres parses the database URL, creates a pool and pings it.
func OpenPostgres(ctx context.Context, databaseURL string) (*PostgresRepository, error) {
	poolCfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing database URL: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	return &PostgresRepository{pool: pool}, nil
}

// NewPostgresRepository wraps an existing pool.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// Pool returns the underlying pgxpool.Pool.
func (r *PostgresRepository) Pool() *pgxpool.Pool {
	return r.pool
}

// Migrate creates the holders table if it does not exist.
func (r *PostgresRepository) Migrate(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, postgresSchema); err != nil {
		return fmt.Errorf("creating collectible_holders table: %w", err)
	}
	return nil
}

// IsHolder looks up a single wallet.
func (r *PostgresRepository) IsHolder(ctx context.Context, addr string) (bool, error) {
	var isHolder bool
	err := r.pool.QueryRow(ctx,
		`SELECT is_holder FROM collectible_holders WHERE wallet_address = $1`, addr,
	).Scan(&isHolder)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("querying holder: %w", err)
	}
	return isHolder, nil
}

// Upsert inserts or replaces the row for h.WalletAddress, lowercasing it
// in place.
func (r *PostgresRepository) Upsert(ctx context.Context, h *Holder) error {
	addr, ok := wallet.Normalize(h.WalletAddress)
	if !ok {
		return fmt.Errorf("%w: %q", ErrInvalidWallet, h.WalletAddress)
	}
	h.WalletAddress = addr

	err := r.pool.QueryRow(ctx, `
		INSERT INTO collectible_holders (wallet_address, is_holder, note)
		VALUES ($1, $2, $3)
		ON CONFLICT (wallet_address) DO UPDATE
		SET is_holder = EXCLUDED.is_holder,
		    note = EXCLUDED.note,
		    updated_at = NOW()
		RETURNING updated_at`,
		h.WalletAddress, h.IsHolder, h.Note,
	).Scan(&h.UpdatedAt)
	if err != nil {
		return fmt.Errorf("upserting holder: %w", err)
	}
	return nil
}

// List returns every row ordered by wallet address.
func (r *PostgresRepository) List(ctx context.Context) ([]Holder, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT wallet_address, is_holder, note, updated_at
		FROM collectible_holders
		ORDER BY wallet_address`)
	if err != nil {
		return nil, fmt.Errorf("listing holders: %w", err)
	}
	defer rows.Close()

	holders := []Holder{}
	for rows.Next() {
		var h Holder
		if err := rows.Scan(&h.WalletAddress, &h.IsHolder, &h.Note, &h.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning holder row: %w", err)
		}
		holders = append(holders, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating holder rows: %w", err)
	}
	return holders, nil
}

// Ping verifies the connection pool is alive.
func (r *PostgresRepository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

// Close closes the connection pool.
func (r *PostgresRepository) Close() error {
	r.pool.Close()
	return nil
}
