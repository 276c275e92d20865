// Package access decides whether a wallet or email qualifies for
// collectible-gated content. Evidence is gathered from the static allowlist,
// the local holder registry and, when configured, a live ERC-721 balance
// query, in that order. The first source with positive evidence wins.
//
// Resolution never fails: dependency errors are logged and treated as no
// evidence, so callers always get a definite answer.
package access

import (
	"context"
	"log/slog"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/privatechef/concierge/internal/allowlist"
	"github.com/privatechef/concierge/internal/metrics"
	"github.com/privatechef/concierge/internal/onchain"
	"github.com/privatechef/concierge/internal/wallet"
)

// DefaultOnchainTimeout bounds the balance query when no timeout is configured.
const DefaultOnchainTimeout = 4 * time.Second

// Source names the evidence that decided a resolution.
type Source string

const (
	SourceAllowlist Source = "allowlist"
	SourceRegistry  Source = "registry"
	SourceOnchain   Source = "onchain"
	SourceNone      Source = "none"
)

// Resolution is the outcome of one eligibility check.
type Resolution struct {
	Eligible bool   `json:"eligible"`
	Tier     string `json:"tier,omitempty"`
	Source   Source `json:"source"`
	Reason   string `json:"reason"`
}

// HolderLookup is the read side of the holder registry.
type HolderLookup interface {
	IsHolder(ctx context.Context, wallet string) (bool, error)
}

// Subject is a normalized wallet and/or email. Empty fields are absent.
type Subject struct {
	Wallet string
	Email  string
}

// NewSubject normalizes raw inputs. Malformed wallets are dropped rather
// than rejected.
func NewSubject(rawWallet, rawEmail string) Subject {
	var s Subject
	if addr, ok := wallet.Normalize(rawWallet); ok {
		s.Wallet = addr
	}
	if email, ok := wallet.NormalizeEmail(rawEmail); ok {
		s.Email = email
	}
	return s
}

// Empty reports whether neither a usable wallet nor an email is present.
func (s Subject) Empty() bool {
	return s.Wallet == "" && s.Email == ""
}

// Config wires the resolver's evidence sources. Allowlist is required; a nil
// Registry or Chain, or a zero Contract, disables that source.
type Config struct {
	Allowlist *allowlist.List
	Registry  HolderLookup
	Chain     onchain.BalanceReader
	Contract  common.Address
	Timeout   time.Duration
	Metrics   *metrics.Recorder
}

// Resolver is stateless apart from its read-only configuration and is safe
// for concurrent use.
type Resolver struct {
	allowlist *allowlist.List
	registry  HolderLookup
	chain     onchain.BalanceReader
	contract  common.Address
	timeout   time.Duration
	metrics   *metrics.Recorder
}

// NewResolver creates a Resolver.
func NewResolver(cfg Config) *Resolver {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultOnchainTimeout
	}
	return &Resolver{
		allowlist: cfg.Allowlist,
		registry:  cfg.Registry,
		chain:     cfg.Chain,
		contract:  cfg.Contract,
		timeout:   timeout,
		metrics:   cfg.Metrics,
	}
}

// OnchainEnabled reports whether the live balance query is configured.
func (r *Resolver) OnchainEnabled() bool {
	return r.chain != nil && r.contract != (common.Address{})
}

type evidenceFunc func(ctx context.Context, s Subject) (Resolution, bool)

// Resolve checks walletAddress and email against each evidence source in
// order and returns the first positive result, or an ineligible result with
// SourceNone.
func (r *Resolver) Resolve(ctx context.Context, walletAddress, email string) Resolution {
	return r.ResolveSubject(ctx, NewSubject(walletAddress, email))
}

// ResolveSubject is Resolve for already normalized input.
func (r *Resolver) ResolveSubject(ctx context.Context, s Subject) Resolution {
	sources := []evidenceFunc{r.fromAllowlist, r.fromRegistry, r.fromChain}
	for _, check := range sources {
		if res, ok := check(ctx, s); ok {
			r.metrics.Resolution(string(res.Source), res.Eligible)
			return res
		}
	}

	res := Resolution{Eligible: false, Source: SourceNone, Reason: "no qualifying collectible or allowlist entry found"}
	r.metrics.Resolution(string(res.Source), res.Eligible)
	return res
}

func (r *Resolver) fromAllowlist(_ context.Context, s Subject) (Resolution, bool) {
	if r.allowlist == nil {
		return Resolution{}, false
	}
	rec, ok := r.allowlist.Match(s.Wallet, s.Email)
	if !ok {
		return Resolution{}, false
	}

	reason := "email is on the allowlist"
	if rec.Wallet != "" {
		reason = "wallet is on the allowlist"
	}
	return Resolution{Eligible: true, Tier: rec.Tier, Source: SourceAllowlist, Reason: reason}, true
}

// fromRegistry is wallet-only.
func (r *Resolver) fromRegistry(ctx context.Context, s Subject) (Resolution, bool) {
	if r.registry == nil || s.Wallet == "" {
		return Resolution{}, false
	}

	isHolder, err := r.registry.IsHolder(ctx, s.Wallet)
	if err != nil {
		slog.Warn("holder registry lookup failed; continuing without it", "error", err, "wallet", s.Wallet)
		r.metrics.EvidenceFailure(string(SourceRegistry))
		return Resolution{}, false
	}
	if !isHolder {
		return Resolution{}, false
	}
	return Resolution{Eligible: true, Source: SourceRegistry, Reason: "wallet is a known holder"}, true
}

// fromChain makes a single bounded attempt; any failure is no evidence.
func (r *Resolver) fromChain(ctx context.Context, s Subject) (Resolution, bool) {
	if s.Wallet == "" || !r.OnchainEnabled() {
		return Resolution{}, false
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	start := time.Now()
	balance, err := r.balanceOf(ctx, common.HexToAddress(s.Wallet))
	r.metrics.OnchainQuery(time.Since(start))
	if err != nil {
		slog.Warn("on-chain balance query failed; treating as not held", "error", err, "wallet", s.Wallet)
		r.metrics.EvidenceFailure(string(SourceOnchain))
		return Resolution{}, false
	}
	if balance == nil || balance.Sign() <= 0 {
		return Resolution{}, false
	}
	return Resolution{Eligible: true, Source: SourceOnchain, Reason: "wallet holds the collectible on-chain"}, true
}

type balanceResult struct {
	balance *big.Int
	err     error
}

// balanceOf returns when ctx expires even if the reader ignores ctx. The
// buffered channel lets a late reader finish without blocking.
func (r *Resolver) balanceOf(ctx context.Context, owner common.Address) (*big.Int, error) {
	done := make(chan balanceResult, 1)
	go func() {
		b, err := r.chain.BalanceOf(ctx, r.contract, owner)
		done <- balanceResult{balance: b, err: err}
	}()

	select {
	case res := <-done:
		return res.balance, res.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
