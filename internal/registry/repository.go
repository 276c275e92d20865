// Package registry is the local fallback record of wallets known to hold the
// gating collectible. The service only reads it; rows are written at deploy
// time by registryctl.
package registry

import (
	"context"
	"errors"
	"fmt"
)

// Supported drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// ErrUnknownDriver is returned by Open for an unsupported driver name.
var ErrUnknownDriver = errors.New("unknown registry driver")

// ErrInvalidWallet is returned when writing a row whose wallet is not a
// normalized address.
var ErrInvalidWallet = errors.New("invalid wallet address")

// Repository provides access to the collectible_holders table. Wallet
// addresses are stored and queried lowercased.
type Repository interface {
	// IsHolder reports whether wallet has a row flagged as a holder. A missing
	// row is not an error.
	IsHolder(ctx context.Context, wallet string) (bool, error)
	Upsert(ctx context.Context, h *Holder) error
	List(ctx context.Context) ([]Holder, error)
	Migrate(ctx context.Context) error
	Ping(ctx context.Context) error
	Close() error
}

// Open connects to the registry backend named by driver.
func Open(ctx context.Context, driver, dsn string) (Repository, error) {
	switch driver {
	case DriverSQLite, "":
		repo, err := OpenSQLite(ctx, dsn)
		if err != nil {
			return nil, err
		}
		return repo, nil
	case DriverPostgres:
		repo, err := OpenPostgres(ctx, dsn)
		if err != nil {
			return nil, err
		}
		return repo, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, driver)
	}
}
