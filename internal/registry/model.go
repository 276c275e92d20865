package registry

import "time"

// Holder is a row in the collectible_holders table.
type Holder struct {
	WalletAddress string    `db:"wallet_address" json:"wallet"`
	IsHolder      bool      `db:"is_holder" json:"holder"`
	Note          string    `db:"note" json:"note,omitempty"`
	UpdatedAt     time.Time `db:"-" json:"-"`
}
