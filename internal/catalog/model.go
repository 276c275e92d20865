package catalog

// Call-to-action kinds.
const (
	ActionCheckout = "checkout"
	ActionLink     = "link"
)

// Enhancement is an optional flat-priced add-on attached to a single tier.
type Enhancement struct {
	ID          string `json:"id"`
	Label       string `json:"label"`
	Description string `json:"description,omitempty"`
	Amount      int64  `json:"amount"`
}

// CallToAction describes what the tier's booking button does: start a
// checkout for a price reference, or navigate to a link.
type CallToAction struct {
	Kind     string `json:"kind"`
	Label    string `json:"label,omitempty"`
	PriceRef string `json:"priceRef,omitempty"`
	Href     string `json:"href,omitempty"`
}

// Tier is a named service package. Amounts are whole currency units.
type Tier struct {
	ID             string        `json:"id"`
	Name           string        `json:"name"`
	Description    string        `json:"description"`
	Base           int64         `json:"base"`
	IncludedGuests int           `json:"includedGuests"`
	PerGuest       int64         `json:"perGuest"`
	Enhancements   []Enhancement `json:"enhancements,omitempty"`
	// Deposit overrides the default percentage deposit when set.
	Deposit *int64       `json:"deposit,omitempty"`
	CTA     CallToAction `json:"cta"`
}

// Enhancement returns the tier's own enhancement with the given id.
func (t Tier) Enhancement(id string) (Enhancement, bool) {
	for _, e := range t.Enhancements {
		if e.ID == id {
			return e, true
		}
	}
	return Enhancement{}, false
}

// clone returns a deep copy so callers cannot mutate catalog state.
func (t Tier) clone() Tier {
	out := t
	if t.Enhancements != nil {
		out.Enhancements = append([]Enhancement(nil), t.Enhancements...)
	}
	if t.Deposit != nil {
		d := *t.Deposit
		out.Deposit = &d
	}
	return out
}
