package registry

import (
	"context"
	"fmt"
	"os"

	"sigs.k8s.io/yaml"

	"github.com/privatechef/concierge/internal/wallet"
)

type seedDocument struct {
	Holders []seedEntry `json:"holders"`
}

type seedEntry struct {
	Wallet string `json:"wallet"`
	Holder *bool  `json:"holder,omitempty"`
	Note   string `json:"note,omitempty"`
}

// ParseSeed parses a YAML seed document of the form
//
//	holders:
//	  - wallet: "0x..."
//	    holder: true
//	    note: minted at launch
//
// holder defaults to true. Wallets are validated and lowercased.
func ParseSeed(data []byte) ([]Holder, error) {
	var doc seedDocument
	if err := yaml.UnmarshalStrict(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing seed: %w", err)
	}

	holders := make([]Holder, 0, len(doc.Holders))
	for i, e := range doc.Holders {
		addr, ok := wallet.Normalize(e.Wallet)
		if !ok {
			return nil, fmt.Errorf("seed entry %d: %w: %q", i, ErrInvalidWallet, e.Wallet)
		}
		isHolder := true
		if e.Holder != nil {
			isHolder = *e.Holder
		}
		holders = append(holders, Holder{WalletAddress: addr, IsHolder: isHolder, Note: e.Note})
	}
	return holders, nil
}

// LoadSeedFile reads and parses a seed document from disk.
func LoadSeedFile(path string) ([]Holder, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading seed file: %w", err)
	}
	return ParseSeed(data)
}

// Seed upserts every holder, stopping at the first failure.
func Seed(ctx context.Context, repo Repository, holders []Holder) (int, error) {
	for i := range holders {
		if err := repo.Upsert(ctx, &holders[i]); err != nil {
			return i, err
		}
	}
	return len(holders), nil
}
