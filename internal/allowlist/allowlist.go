// Package allowlist holds the deploy-time list of wallets and emails that are
// granted collectible access regardless of on-chain state.
package allowlist

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"sigs.k8s.io/yaml"

	"github.com/privatechef/concierge/internal/wallet"
)

//go:embed allowlist.yaml
var defaultAllowlist []byte

// Tier labels a record may carry.
const (
	TierVIP       = "VIP"
	TierAllowlist = "Allowlist"
	TierWaitlist  = "Waitlist"
)

var validTiers = map[string]bool{"": true, TierVIP: true, TierAllowlist: true, TierWaitlist: true}

// ErrInvalidRecord is returned when an allowlist record is malformed.
var ErrInvalidRecord = errors.New("invalid allowlist record")

// Record grants access to exactly one wallet or one email.
type Record struct {
	Wallet string `json:"wallet,omitempty"`
	Email  string `json:"email,omitempty"`
	Tier   string `json:"tier,omitempty"`
	Note   string `json:"note,omitempty"`
}

// List is an immutable allowlist indexed by normalized wallet and email.
type List struct {
	byWallet map[string]Record
	byEmail  map[string]Record
}

type document struct {
	Records []Record `json:"records"`
}

// Load parses and validates a YAML (or JSON) allowlist document.
func Load(data []byte) (*List, error) {
	var doc document
	if err := yaml.UnmarshalStrict(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing allowlist: %w", err)
	}

	l := &List{
		byWallet: make(map[string]Record),
		byEmail:  make(map[string]Record),
	}
	for i, rec := range doc.Records {
		if err := l.add(rec); err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
	}
	return l, nil
}

// LoadFile reads an allowlist document from disk.
func LoadFile(path string) (*List, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading allowlist file: %w", err)
	}
	return Load(data)
}

// Default returns the allowlist embedded in the binary.
func Default() *List {
	l, err := Load(defaultAllowlist)
	if err != nil {
		panic(fmt.Sprintf("embedded allowlist is invalid: %v", err))
	}
	return l
}

func (l *List) add(rec Record) error {
	if (rec.Wallet == "") == (rec.Email == "") {
		return fmt.Errorf("%w: exactly one of wallet or email is required", ErrInvalidRecord)
	}
	if !validTiers[rec.Tier] {
		return fmt.Errorf("%w: tier %q must be one of %s, %s, %s", ErrInvalidRecord, rec.Tier, TierVIP, TierAllowlist, TierWaitlist)
	}

	if rec.Wallet != "" {
		addr, ok := wallet.Normalize(rec.Wallet)
		if !ok {
			return fmt.Errorf("%w: wallet %q is not a valid address", ErrInvalidRecord, rec.Wallet)
		}
		if _, dup := l.byWallet[addr]; dup {
			return fmt.Errorf("%w: duplicate wallet %s", ErrInvalidRecord, addr)
		}
		rec.Wallet = addr
		l.byWallet[addr] = rec
		return nil
	}

	email, ok := wallet.NormalizeEmail(rec.Email)
	if !ok {
		return fmt.Errorf("%w: email must not be blank", ErrInvalidRecord)
	}
	if _, dup := l.byEmail[email]; dup {
		return fmt.Errorf("%w: duplicate email %s", ErrInvalidRecord, email)
	}
	rec.Email = email
	l.byEmail[email] = rec
	return nil
}

// Match looks up the wallet first, then the email. Both arguments must
// already be normalized; empty values are skipped.
func (l *List) Match(walletAddr, email string) (Record, bool) {
	if walletAddr != "" {
		if rec, ok := l.byWallet[walletAddr]; ok {
			return rec, true
		}
	}
	if email != "" {
		if rec, ok := l.byEmail[email]; ok {
			return rec, true
		}
	}
	return Record{}, false
}

// Len returns the number of records.
func (l *List) Len() int {
	return len(l.byWallet) + len(l.byEmail)
}
