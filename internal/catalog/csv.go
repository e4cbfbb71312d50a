package catalog

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/MrJamesThe3rd/auditcase/internal/encoding"
	"github.com/MrJamesThe3rd/auditcase/internal/money"
)

// ErrMalformedCSV is returned when a catalog upload cannot be parsed.
var ErrMalformedCSV = errors.New("malformed catalog csv")

const (
	colVendor      = "vendor"
	colCategory    = "category"
	colDescription = "description"
	colMinQty      = "min_qty"
	colMaxQty      = "max_qty"
	colMinPrice    = "min_price"
	colMaxPrice    = "max_price"
	colFlexible    = "flexible"
	colKind        = "kind"
)

// Load returns the built-in catalog, extended with the vendors in the CSV file at
// path when path is not empty.
func Load(path string) (*Catalog, error) {
	c := Default()
	if path == "" {
		return c, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening catalog: %w", err)
	}
	defer f.Close()

	vendors, err := ParseCSV(f)
	if err != nil {
		return nil, err
	}

	c.Merge(vendors)

	return c, nil
}

var requiredColumns = []string{colVendor, colDescription, colMinQty, colMaxQty, colMinPrice, colMaxPrice}

// ParseCSV reads vendors from a delimited file with one entry per row. Rows for
// the same vendor are grouped in first-seen order. Prices are dollar amounts.
func ParseCSV(r io.Reader) ([]Vendor, error) {
	dec, err := encoding.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("decoding catalog: %w", err)
	}

	reader := csv.NewReader(dec)
	reader.Comma = encoding.SniffDelimiter(dec.Sample)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("%w: reading header: %v", ErrMalformedCSV, err)
	}

	idx := make(map[string]int, len(header))
	for i, col := range header {
		idx[strings.ToLower(strings.TrimSpace(col))] = i
	}

	for _, col := range requiredColumns {
		if _, ok := idx[col]; !ok {
			return nil, fmt.Errorf("%w: missing column %q", ErrMalformedCSV, col)
		}
	}

	var (
		vendors []Vendor
		byName  = make(map[string]int)
		line    = 1
	)

	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}

		line++

		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", ErrMalformedCSV, line, err)
		}

		get := func(col string) string {
			i, ok := idx[col]
			if !ok || i >= len(row) {
				return ""
			}

			return strings.TrimSpace(row[i])
		}

		name := get(colVendor)
		if name == "" {
			continue
		}

		entry, err := parseEntry(get)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", ErrMalformedCSV, line, err)
		}

		key := Normalize(name)

		i, ok := byName[key]
		if !ok {
			cat := Category(strings.ToLower(get(colCategory)))
			if cat == "" {
				cat = CategoryGeneral
			}

			vendors = append(vendors, Vendor{Name: name, Category: cat})
			i = len(vendors) - 1
			byName[key] = i
		}

		vendors[i].Entries = append(vendors[i].Entries, entry)
	}

	return vendors, nil
}

func parseEntry(get func(string) string) (Entry, error) {
	e := Entry{Description: get(colDescription), Kind: KindGood}
	if e.Description == "" {
		return Entry{}, errors.New("empty description")
	}

	var err error

	if e.MinQty, err = strconv.Atoi(get(colMinQty)); err != nil {
		return Entry{}, fmt.Errorf("min_qty: %w", err)
	}

	if e.MaxQty, err = strconv.Atoi(get(colMaxQty)); err != nil {
		return Entry{}, fmt.Errorf("max_qty: %w", err)
	}

	if e.MinUnitPrice, err = money.Parse(get(colMinPrice)); err != nil {
		return Entry{}, fmt.Errorf("min_price: %w", err)
	}

	if e.MaxUnitPrice, err = money.Parse(get(colMaxPrice)); err != nil {
		return Entry{}, fmt.Errorf("max_price: %w", err)
	}

	if e.MinQty < 1 || e.MaxQty < e.MinQty {
		return Entry{}, fmt.Errorf("quantity range [%d,%d]", e.MinQty, e.MaxQty)
	}

	if e.MinUnitPrice < 1 || e.MaxUnitPrice < e.MinUnitPrice {
		return Entry{}, fmt.Errorf("price range [%d,%d]", e.MinUnitPrice, e.MaxUnitPrice)
	}

	if v := get(colFlexible); v != "" {
		if e.Flexible, err = strconv.ParseBool(v); err != nil {
			return Entry{}, fmt.Errorf("flexible: %w", err)
		}
	}

	// A flexible line falls back to a single unit when no quantity divides its amount.
	if e.Flexible && e.MinQty != 1 {
		return Entry{}, fmt.Errorf("flexible entry needs min_qty 1, got %d", e.MinQty)
	}

	switch Kind(strings.ToLower(get(colKind))) {
	case KindService:
		e.Kind = KindService
	case KindGood, "":
	default:
		return Entry{}, fmt.Errorf("unknown kind %q", get(colKind))
	}

	return e, nil
}
