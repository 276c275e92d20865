// Package catalog holds the static service tier catalog used for price
// estimates. The catalog is loaded once at start and never mutated.
package catalog

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"sigs.k8s.io/yaml"
)

//go:embed catalog.yaml
var defaultCatalog []byte

// ErrEmptyCatalog is returned when a catalog document declares no tiers.
var ErrEmptyCatalog = errors.New("catalog has no tiers")

// ErrInvalidTier is returned when a tier violates a catalog invariant.
var ErrInvalidTier = errors.New("invalid tier")

// Catalog is an immutable, ordered set of tiers.
type Catalog struct {
	currency string
	tiers    []Tier
	index    map[string]int
}

type document struct {
	Currency string `json:"currency"`
	Tiers    []Tier `json:"tiers"`
}

// Load parses and validates a YAML (or JSON) catalog document.
func Load(data []byte) (*Catalog, error) {
	var doc document
	if err := yaml.UnmarshalStrict(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing catalog: %w", err)
	}
	if len(doc.Tiers) == 0 {
		return nil, ErrEmptyCatalog
	}
	if doc.Currency == "" {
		doc.Currency = "USD"
	}

	c := &Catalog{
		currency: doc.Currency,
		tiers:    make([]Tier, 0, len(doc.Tiers)),
		index:    make(map[string]int, len(doc.Tiers)),
	}
	for _, t := range doc.Tiers {
		if err := validateTier(t); err != nil {
			return nil, err
		}
		if _, dup := c.index[t.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate tier id %q", ErrInvalidTier, t.ID)
		}
		c.index[t.ID] = len(c.tiers)
		c.tiers = append(c.tiers, t.clone())
	}
	return c, nil
}

// LoadFile reads a catalog document from disk.
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading catalog file: %w", err)
	}
	return Load(data)
}

// Default returns the catalog embedded in the binary.
func Default() *Catalog {
	c, err := Load(defaultCatalog)
	if err != nil {
		panic(fmt.Sprintf("embedded catalog is invalid: %v", err))
	}
	return c
}

// Currency returns the ISO currency code the catalog amounts are denominated in.
func (c *Catalog) Currency() string {
	return c.currency
}

// Lookup returns the tier with the given id.
func (c *Catalog) Lookup(id string) (Tier, bool) {
	i, ok := c.index[id]
	if !ok {
		return Tier{}, false
	}
	return c.tiers[i].clone(), true
}

// Tier returns the tier with the given id, or the first tier in the catalog
// when the id is unknown. It never fails: the pricing widget may send a stale
// id while the visitor switches tiers.
func (c *Catalog) Tier(id string) Tier {
	if t, ok := c.Lookup(id); ok {
		return t
	}
	return c.tiers[0].clone()
}

// Tiers returns all tiers in catalog order.
func (c *Catalog) Tiers() []Tier {
	out := make([]Tier, len(c.tiers))
	for i, t := range c.tiers {
		out[i] = t.clone()
	}
	return out
}

func validateTier(t Tier) error {
	switch {
	case t.ID == "":
		return fmt.Errorf("%w: id is required", ErrInvalidTier)
	case t.Name == "":
		return fmt.Errorf("%w %q: name is required", ErrInvalidTier, t.ID)
	case t.Base < 0:
		return fmt.Errorf("%w %q: base must not be negative", ErrInvalidTier, t.ID)
	case t.IncludedGuests < 0:
		return fmt.Errorf("%w %q: includedGuests must not be negative", ErrInvalidTier, t.ID)
	case t.PerGuest < 0:
		return fmt.Errorf("%w %q: perGuest must not be negative", ErrInvalidTier, t.ID)
	case t.Deposit != nil && *t.Deposit < 0:
		return fmt.Errorf("%w %q: deposit must not be negative", ErrInvalidTier, t.ID)
	}

	seen := make(map[string]bool, len(t.Enhancements))
	for _, e := range t.Enhancements {
		if e.ID == "" {
			return fmt.Errorf("%w %q: enhancement id is required", ErrInvalidTier, t.ID)
		}
		if seen[e.ID] {
			return fmt.Errorf("%w %q: duplicate enhancement id %q", ErrInvalidTier, t.ID, e.ID)
		}
		if e.Amount < 0 {
			return fmt.Errorf("%w %q: enhancement %q amount must not be negative", ErrInvalidTier, t.ID, e.ID)
		}
		seen[e.ID] = true
	}

	switch t.CTA.Kind {
	case ActionCheckout:
		if t.CTA.PriceRef == "" {
			return fmt.Errorf("%w %q: checkout cta requires priceRef", ErrInvalidTier, t.ID)
		}
	case ActionLink:
		if t.CTA.Href == "" {
			return fmt.Errorf("%w %q: link cta requires href", ErrInvalidTier, t.ID)
		}
	default:
		return fmt.Errorf("%w %q: cta kind must be %q or %q", ErrInvalidTier, t.ID, ActionCheckout, ActionLink)
	}
	return nil
}
