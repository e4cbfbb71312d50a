package catalog

import (
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/auditcase/internal/rng"
)

const (
	minProfileSize = 3
	maxProfileSize = 7
)

// taxRates is the table per-vendor rates are drawn from. All rates are positive.
var taxRates = []decimal.Decimal{
	decimal.RequireFromString("0.05"),
	decimal.RequireFromString("0.06"),
	decimal.RequireFromString("0.0625"),
	decimal.RequireFromString("0.07"),
	decimal.RequireFromString("0.0725"),
	decimal.RequireFromString("0.08"),
	decimal.RequireFromString("0.0825"),
}

// Session memoizes per-vendor draws for one generation run. Each run owns its
// Session, so concurrent runs never share state.
type Session struct {
	catalog  *Catalog
	seed     string
	profiles map[string][]Entry
	rates    map[string]decimal.Decimal
}

// Session starts a run-scoped view of the catalog for seed.
func (c *Catalog) Session(seed string) *Session {
	return &Session{
		catalog:  c,
		seed:     seed,
		profiles: make(map[string][]Entry),
		rates:    make(map[string]decimal.Decimal),
	}
}

// Catalog returns the underlying read-only catalog.
func (s *Session) Catalog() *Catalog {
	return s.catalog
}

// Profile returns the vendor's stable product mix for this run: a shuffled subset
// of 3–7 catalog entries (all entries when the vendor has fewer).
func (s *Session) Profile(vendor string) []Entry {
	key := Normalize(vendor)
	if p, ok := s.profiles[key]; ok {
		return p
	}

	entries := s.catalog.Entries(vendor)
	stream := rng.Derive(s.seed, "profile", key)
	shuffled := rng.Shuffled(stream, entries)

	size := len(shuffled)
	if size > minProfileSize {
		size = stream.Int(minProfileSize, min(maxProfileSize, size))
	}

	p := shuffled[:size]
	s.profiles[key] = p

	return p
}

// TaxRate returns the vendor's fixed tax rate for this run.
func (s *Session) TaxRate(vendor string) decimal.Decimal {
	key := Normalize(vendor)
	if r, ok := s.rates[key]; ok {
		return r
	}

	r := rng.Pick(rng.Derive(s.seed, "tax", key), taxRates)
	s.rates[key] = r

	return r
}

// Seed returns the run seed the session derives its draws from.
func (s *Session) Seed() string {
	return s.seed
}
