// Package pricing computes price estimates for the booking widget. Estimates
// are pure functions of a tier, a guest count and a set of add-ons; inputs
// are clamped rather than rejected.
package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/privatechef/concierge/internal/catalog"
)

// MaxGuests caps the requested guest count before any arithmetic.
const MaxGuests = 10000

// defaultDepositRate applies when a tier has no fixed deposit.
var defaultDepositRate = decimal.RequireFromString("0.3")

// Estimate is the derived price breakdown for one set of widget inputs.
// Amounts are whole currency units.
type Estimate struct {
	TierID            string   `json:"tierId"`
	GuestCount        int      `json:"guestCount"`
	AdditionalGuests  int      `json:"additionalGuests"`
	BaseTotal         int64    `json:"baseTotal"`
	EnhancementsTotal int64    `json:"enhancementsTotal"`
	Total             int64    `json:"total"`
	Deposit           int64    `json:"deposit"`
	Enhancements      []string `json:"enhancements"`
}

// Calculate estimates the price of tier t for requestedGuests with the
// selected add-on ids. Guests are never billed below the tier's included
// count, and tiers without included guests bill at least one. Add-on ids that
// are unknown to t, or repeated, are ignored. Requests above MaxGuests are
// priced at MaxGuests.
func Calculate(t catalog.Tier, requestedGuests int, selectedAddonIDs []string) Estimate {
	requestedGuests = min(requestedGuests, MaxGuests)
	minimumGuests := max(requestedGuests, t.IncludedGuests)

	var guestCount, additionalGuests int
	if t.IncludedGuests > 0 {
		guestCount = max(t.IncludedGuests, minimumGuests)
		additionalGuests = max(0, guestCount-t.IncludedGuests)
	} else {
		guestCount = max(1, minimumGuests)
		additionalGuests = guestCount
	}

	baseTotal := t.Base + int64(additionalGuests)*t.PerGuest

	selected := make(map[string]bool, len(selectedAddonIDs))
	for _, id := range selectedAddonIDs {
		selected[id] = true
	}

	// Iterate the tier's own list so matching stays scoped to this tier and
	// each enhancement is counted once.
	var enhancementsTotal int64
	applied := make([]string, 0, len(t.Enhancements))
	for _, e := range t.Enhancements {
		if selected[e.ID] {
			enhancementsTotal += e.Amount
			applied = append(applied, e.ID)
		}
	}

	total := baseTotal + enhancementsTotal

	return Estimate{
		TierID:            t.ID,
		GuestCount:        guestCount,
		AdditionalGuests:  additionalGuests,
		BaseTotal:         baseTotal,
		EnhancementsTotal: enhancementsTotal,
		Total:             total,
		Deposit:           Deposit(t, total),
		Enhancements:      applied,
	}
}

// Deposit returns the tier's fixed deposit, or 30% of total rounded half up
// to the nearest whole unit.
func Deposit(t catalog.Tier, total int64) int64 {
	if t.Deposit != nil {
		return *t.Deposit
	}
	return decimal.NewFromInt(total).Mul(defaultDepositRate).Round(0).IntPart()
}
