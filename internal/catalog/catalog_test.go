package catalog_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/auditcase/internal/catalog"
)

func TestNormalize(t *testing.T) {
	type testCase struct {
		name string
		in   string
		want string
	}

	tests := []testCase{
		{name: "lower cases", in: "Summit Office Supply", want: "summit office supply"},
		{name: "collapses whitespace", in: "  Summit   Office\tSupply ", want: "summit office supply"},
		{name: "drops disambiguation suffix", in: "Summit Office Supply #2", want: "summit office supply"},
		{name: "keeps inner hash", in: "Suite #4 Rentals", want: "suite #4 rentals"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, catalog.Normalize(tc.in))
		})
	}
}

func TestDefault(t *testing.T) {
	c := catalog.Default()

	vendors := c.Vendors()
	require.GreaterOrEqual(t, len(vendors), 15)
	assert.NotEmpty(t, c.ByCategory(catalog.CategoryPayroll))
	assert.NotEmpty(t, c.Payees(catalog.CategoryPayroll))

	for _, v := range vendors {
		require.NotEmpty(t, v.Entries, v.Name)

		for _, e := range v.Entries {
			assert.GreaterOrEqual(t, e.MinQty, 1, "%s: %s", v.Name, e.Description)
			assert.GreaterOrEqual(t, e.MaxQty, e.MinQty, "%s: %s", v.Name, e.Description)
			assert.Positive(t, e.MinUnitPrice, "%s: %s", v.Name, e.Description)
			assert.GreaterOrEqual(t, e.MaxUnitPrice, e.MinUnitPrice, "%s: %s", v.Name, e.Description)
		}
	}

	for _, p := range c.Payees(catalog.CategoryPayroll) {
		v, ok := c.Vendor(p)
		require.True(t, ok)
		assert.NotEqual(t, catalog.CategoryPayroll, v.Category)
	}
}

func TestCatalog_EntriesFallback(t *testing.T) {
	c := catalog.Default()

	entries := c.Entries("Unknown Payee LLC")
	require.Len(t, entries, 1)
	assert.Equal(t, catalog.GenericEntry, entries[0])

	known := c.Entries("SUMMIT OFFICE SUPPLY #3")
	assert.Greater(t, len(known), 1)
}

func TestCatalog_Merge(t *testing.T) {
	c := catalog.New(catalog.Vendor{Name: "Acme", Category: catalog.CategorySupplies, Entries: []catalog.Entry{catalog.GenericEntry}})
	c.Merge([]catalog.Vendor{
		{Name: "acme", Category: catalog.CategoryTechnology},
		{Name: "Beta Corp", Category: catalog.CategoryGeneral},
		{Name: "   "},
	})

	vendors := c.Vendors()
	require.Len(t, vendors, 2)
	assert.Equal(t, catalog.CategoryTechnology, vendors[0].Category)
	assert.Equal(t, "Beta Corp", vendors[1].Name)
}

func TestSession_Profile(t *testing.T) {
	c := catalog.Default()

	for _, v := range c.Vendors() {
		s := c.Session("profile-seed")
		p := s.Profile(v.Name)

		if len(v.Entries) <= 3 {
			assert.Len(t, p, len(v.Entries), v.Name)
		} else {
			assert.GreaterOrEqual(t, len(p), 3, v.Name)
			assert.LessOrEqual(t, len(p), 7, v.Name)
		}

		assert.Equal(t, p, s.Profile(v.Name), "memoized")
		assert.Equal(t, p, c.Session("profile-seed").Profile(v.Name), "stable across sessions")
	}
}

func TestSession_Locality(t *testing.T) {
	c := catalog.Default()

	a := c.Session("locality")
	b := c.Session("locality")

	// Consulting other vendors first must not change a vendor's draw.
	for _, v := range c.Vendors()[:5] {
		b.Profile(v.Name)
		b.TaxRate(v.Name)
	}

	target := c.Vendors()[10].Name
	assert.Equal(t, a.Profile(target), b.Profile(target))
	assert.True(t, a.TaxRate(target).Equal(b.TaxRate(target)))
}

func TestSession_TaxRate(t *testing.T) {
	s := catalog.Default().Session("tax-seed")

	for _, v := range catalog.Default().Vendors() {
		r := s.TaxRate(v.Name)
		assert.True(t, r.IsPositive(), v.Name)
		assert.True(t, r.LessThan(decimal.NewFromFloat(0.1)), v.Name)
		assert.True(t, r.Equal(s.TaxRate(v.Name)))
	}
}

func TestParseCSV(t *testing.T) {
	input := strings.Join([]string{
		"vendor;category;description;min_qty;max_qty;min_price;max_price;flexible;kind",
		"Acme Tools;supplies;Hammer;1;10;12.50;18,75;false;good",
		"Acme Tools;supplies;Repair labor;1;1;$100.00;$2,500.00;true;service",
		"Zenith Advisors;;Consulting hour;1;40;150;250;;service",
		";;ignored;1;1;1;1;;",
	}, "\n")

	vendors, err := catalog.ParseCSV(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, vendors, 2)

	acme := vendors[0]
	assert.Equal(t, "Acme Tools", acme.Name)
	assert.Equal(t, catalog.CategorySupplies, acme.Category)
	require.Len(t, acme.Entries, 2)
	assert.Equal(t, catalog.Entry{
		Description: "Hammer", MinQty: 1, MaxQty: 10, MinUnitPrice: 1250, MaxUnitPrice: 1875, Kind: catalog.KindGood,
	}, acme.Entries[0])
	assert.True(t, acme.Entries[1].Flexible)
	assert.Equal(t, int64(250000), acme.Entries[1].MaxUnitPrice)

	zenith := vendors[1]
	assert.Equal(t, catalog.CategoryGeneral, zenith.Category)
	assert.Equal(t, catalog.KindService, zenith.Entries[0].Kind)
}

func TestParseCSV_Errors(t *testing.T) {
	type testCase struct {
		name  string
		input string
	}

	tests := []testCase{
		{name: "empty", input: ""},
		{name: "missing column", input: "vendor,description\nAcme,Hammer\n"},
		{name: "bad quantity", input: "vendor,description,min_qty,max_qty,min_price,max_price\nAcme,Hammer,x,2,1,2\n"},
		{name: "inverted price", input: "vendor,description,min_qty,max_qty,min_price,max_price\nAcme,Hammer,1,2,5,1\n"},
		{name: "unknown kind", input: "vendor,description,min_qty,max_qty,min_price,max_price,kind\nAcme,Hammer,1,2,1,2,widget\n"},
		{name: "flexible above one unit", input: "vendor,description,min_qty,max_qty,min_price,max_price,flexible\nAcme,Labor,3,5,1,2,true\n"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := catalog.ParseCSV(strings.NewReader(tc.input))
			require.ErrorIs(t, err, catalog.ErrMalformedCSV)
		})
	}
}

func TestLoad(t *testing.T) {
	c, err := catalog.Load("")
	require.NoError(t, err)
	assert.Len(t, c.Vendors(), len(catalog.Default().Vendors()))

	path := filepath.Join(t.TempDir(), "vendors.csv")
	content := "vendor,category,description,min_qty,max_qty,min_price,max_price,flexible\n" +
		"Orchard Pest Control,general,Monthly treatment,1,3,180,420,false\n" +
		"Orchard Pest Control,general,Service adjustment,1,1,50,900,true\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	c, err = catalog.Load(path)
	require.NoError(t, err)

	v, ok := c.Vendor("orchard pest control")
	require.True(t, ok)
	assert.Len(t, v.Entries, 2)

	_, err = catalog.Load(filepath.Join(t.TempDir(), "missing.csv"))
	assert.Error(t, err)
}
