// Package catalog is the static vendor reference data the invoice synthesizer draws from.
package catalog

import (
	"regexp"
	"slices"
	"strings"
)

// Kind distinguishes physical goods from services on an invoice line.
type Kind string

const (
	KindGood    Kind = "good"
	KindService Kind = "service"
)

// Category groups vendors by the kind of spend they represent.
type Category string

const (
	CategorySupplies     Category = "supplies"
	CategoryTechnology   Category = "technology"
	CategoryFacilities   Category = "facilities"
	CategoryProfessional Category = "professional"
	CategoryUtilities    Category = "utilities"
	CategoryLogistics    Category = "logistics"
	CategoryMarketing    Category = "marketing"
	CategoryPayroll      Category = "payroll"
	CategoryGeneral      Category = "general"
)

// Entry is one candidate line item for a vendor. Prices are in cents.
type Entry struct {
	Description  string
	MinQty       int
	MaxQty       int
	MinUnitPrice int64
	MaxUnitPrice int64
	// Flexible entries take whatever line amount is left after the fixed-price lines.
	Flexible bool
	Kind     Kind
}

// Vendor is a payee with its candidate line items.
type Vendor struct {
	Name     string
	Category Category
	Entries  []Entry
}

// GenericEntry is used for payees that are not in the catalog.
var GenericEntry = Entry{
	Description:  "Professional services rendered",
	MinQty:       1,
	MaxQty:       1,
	MinUnitPrice: 10000,
	MaxUnitPrice: 25000000,
	Flexible:     true,
	Kind:         KindService,
}

// Catalog maps normalized vendor names to vendors. It is read-only once built;
// per-run derived state lives in Session.
type Catalog struct {
	vendors map[string]Vendor
	order   []string
}

// New builds a catalog from vendors. Later duplicates replace earlier ones.
func New(vendors ...Vendor) *Catalog {
	c := &Catalog{vendors: make(map[string]Vendor, len(vendors))}
	c.Merge(vendors)

	return c
}

// Merge adds or replaces vendors. It must not be called once generation runs share the catalog.
func (c *Catalog) Merge(vendors []Vendor) {
	for _, v := range vendors {
		key := Normalize(v.Name)
		if key == "" {
			continue
		}

		if _, ok := c.vendors[key]; !ok {
			c.order = append(c.order, key)
		}

		c.vendors[key] = v
	}
}

var suffixPattern = regexp.MustCompile(`\s+#\d+$`)

// Normalize lower-cases the name, collapses whitespace and drops a trailing "#n"
// disambiguation suffix so repaired payees still resolve to their vendor.
func Normalize(name string) string {
	n := strings.ToLower(strings.Join(strings.Fields(name), " "))
	return suffixPattern.ReplaceAllString(n, "")
}

// Vendor looks up a vendor by name.
func (c *Catalog) Vendor(name string) (Vendor, bool) {
	v, ok := c.vendors[Normalize(name)]
	return v, ok
}

// Entries returns the candidate line items for name, falling back to GenericEntry.
func (c *Catalog) Entries(name string) []Entry {
	v, ok := c.Vendor(name)
	if !ok || len(v.Entries) == 0 {
		return []Entry{GenericEntry}
	}

	return v.Entries
}

// Vendors returns all vendors in insertion order.
func (c *Catalog) Vendors() []Vendor {
	out := make([]Vendor, 0, len(c.order))
	for _, key := range c.order {
		out = append(out, c.vendors[key])
	}

	return out
}

// ByCategory returns vendors in the given category, in insertion order.
func (c *Catalog) ByCategory(cat Category) []Vendor {
	var out []Vendor

	for _, v := range c.Vendors() {
		if v.Category == cat {
			out = append(out, v)
		}
	}

	return out
}

// Payees returns the names of every vendor outside the excluded categories.
func (c *Catalog) Payees(exclude ...Category) []string {
	var out []string

	for _, v := range c.Vendors() {
		if slices.Contains(exclude, v.Category) {
			continue
		}

		out = append(out, v.Name)
	}

	return out
}
