package population

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/MrJamesThe3rd/auditcase/internal/calendar"
	"github.com/MrJamesThe3rd/auditcase/internal/catalog"
	"github.com/MrJamesThe3rd/auditcase/internal/invoice"
	"github.com/MrJamesThe3rd/auditcase/internal/money"
	"github.com/MrJamesThe3rd/auditcase/internal/rng"
)

// ErrInvalidOptions is returned for overrides outside the supported ranges.
var ErrInvalidOptions = errors.New("invalid population options")

const (
	firstPaymentNumber = 1001

	DefaultInvoicesPerVendor = 3
	MaxInvoicesPerVendor     = 5

	minYearEndYear = 2021
	maxYearEndYear = 2025

	// FallbackPayrollVendor is used when the catalog has no payroll vendor.
	FallbackPayrollVendor = "Regional Payroll Services"

	largeTierShare   = 0.4
	minInvoiceAmount = 50000

	fallbackPayee = "General Vendor"

	// Shares weighs parts within these bounds.
	minShareWeight = 60
	maxShareWeight = 140
)

var (
	smallTier = [2]int64{MinAmount, money.FromDollars(15000)}
	largeTier = [2]int64{money.FromDollars(15000), money.FromDollars(60000)}
)

// Options overrides generation defaults. Zero values mean "derive from the seed".
type Options struct {
	YearEnd           *time.Time
	DisbursementCount int
	VendorCount       int
	InvoicesPerVendor int
}

// Validate checks that overrides are within the ranges a valid case can satisfy.
func (o Options) Validate() error {
	if o.DisbursementCount != 0 && (o.DisbursementCount < MinDisbursements || o.DisbursementCount > MaxDisbursements) {
		return fmt.Errorf("%w: disbursement count %d not in [%d, %d]", ErrInvalidOptions, o.DisbursementCount, MinDisbursements, MaxDisbursements)
	}

	if o.VendorCount < 0 {
		return fmt.Errorf("%w: vendor count %d", ErrInvalidOptions, o.VendorCount)
	}

	if o.InvoicesPerVendor < 0 || o.InvoicesPerVendor > MaxInvoicesPerVendor {
		return fmt.Errorf("%w: invoices per vendor %d not in [1, %d]", ErrInvalidOptions, o.InvoicesPerVendor, MaxInvoicesPerVendor)
	}

	return nil
}

// DefaultYearEnd is 31 December of a year derived from the seed.
func DefaultYearEnd(seed string) time.Time {
	year := rng.Derive(seed, "year-end", "").Int(minYearEndYear, maxYearEndYear)
	return calendar.Date(year, time.December, 31)
}

// Generator draws disbursement populations from a vendor catalog.
type Generator struct {
	catalog *catalog.Catalog
}

func NewGenerator(c *catalog.Catalog) *Generator {
	return &Generator{catalog: c}
}

// Generate builds a fresh draft. Every disbursement starts dirty with a
// provisional amount; invoices are attached later.
func (g *Generator) Generate(seed string, opts Options) (*Draft, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	ye := DefaultYearEnd(seed)
	if opts.YearEnd != nil {
		ye = calendar.Day(*opts.YearEnd)
	}

	stream := rng.Derive(seed, "population", "")

	count := opts.DisbursementCount
	if count == 0 {
		count = stream.Int(MinDisbursements, MaxDisbursements)
	}

	perVendor := opts.InvoicesPerVendor
	if perVendor == 0 {
		perVendor = DefaultInvoicesPerVendor
	}

	offsets := paymentOffsets(stream, count)
	payees := g.payees(stream, count, opts.VendorCount)
	amounts := amounts(stream, count)
	session := g.catalog.Session(seed)

	draft := &Draft{Seed: seed, YearEnd: ye, Disbursements: make([]Disbursement, count), InvoicesPerVendor: perVendor}

	for i := range count {
		amount, n := Fit(amounts[i], invoiceCount(stream, amounts[i], perVendor), perVendor, invoice.Capacity(session, payees[i]))

		draft.Disbursements[i] = Disbursement{
			PaymentID:    PaymentID(firstPaymentNumber + i),
			Payee:        payees[i],
			PaymentDate:  calendar.AddDays(ye, offsets[i]),
			Amount:       amount,
			InvoiceCount: n,
			Timing:       invoice.TimingPost,
			Trap:         TrapNone,
			Dirty:        true,
		}
	}

	pre := rng.Shuffled(stream, indices(count))[:count/2+stream.Int(0, count%2)]
	for _, i := range pre {
		draft.Disbursements[i].Timing = invoice.TimingPre
	}

	slices.Sort(pre)

	timing := rng.Pick(stream, pre)
	draft.Disbursements[timing].Trap = TrapTiming

	candidates := slices.DeleteFunc(slices.Clone(pre), func(i int) bool { return i == timing })
	alloc := rng.Pick(stream, candidates)

	d := &draft.Disbursements[alloc]
	d.Trap = TrapAllocation
	d.Payee = PayrollVendor(g.catalog, seed)
	d.Amount, d.InvoiceCount = Fit(d.Amount, 1, 1, invoice.Capacity(session, d.Payee))

	distinctAmounts(draft.Disbursements)

	return draft, nil
}

// PayrollVendor picks the seed's payroll-type vendor for the allocation trap.
func PayrollVendor(c *catalog.Catalog, seed string) string {
	vendors := c.ByCategory(catalog.CategoryPayroll)
	if len(vendors) == 0 {
		return FallbackPayrollVendor
	}

	return rng.Pick(rng.Derive(seed, "payroll-vendor", ""), vendors).Name
}

// paymentOffsets draws count distinct day offsets from the window, ascending so
// that payment identifiers follow the check register order.
func paymentOffsets(stream *rng.Stream, count int) []int {
	window := make([]int, 0, MaxPaymentOffset-MinPaymentOffset+1)
	for d := MinPaymentOffset; d <= MaxPaymentOffset; d++ {
		window = append(window, d)
	}

	rng.Shuffle(stream, window)

	out := window[:count]
	slices.Sort(out)

	return out
}

// payees assigns vendorCount distinct payees, reusing them for the remaining
// disbursements. Payroll vendors are reserved for the allocation trap.
func (g *Generator) payees(stream *rng.Stream, count, vendorCount int) []string {
	pool := rng.Shuffled(stream, g.catalog.Payees(catalog.CategoryPayroll))

	if vendorCount == 0 {
		vendorCount = stream.Int(ceilHalf(count), count)
	}

	vendorCount = min(max(vendorCount, ceilHalf(count)), count, len(pool))
	if vendorCount == 0 {
		pool = []string{fallbackPayee}
		vendorCount = 1
	}

	out := make([]string, count)
	copy(out, pool[:vendorCount])

	for i := vendorCount; i < count; i++ {
		out[i] = rng.Pick(stream, pool[:vendorCount])
	}

	rng.Shuffle(stream, out)

	return out
}

// amounts draws tiered provisional amounts.
func amounts(stream *rng.Stream, count int) []int64 {
	out := make([]int64, count)

	for i := range out {
		tier := smallTier
		if stream.Bool(largeTierShare) {
			tier = largeTier
		}

		out[i] = stream.Int64(tier[0], tier[1])
	}

	return out
}

// distinctAmounts separates colliding amounts by AmountStep. Amounts step down,
// so a fitted amount stays within its payee's capacity, unless that would
// cross MinAmount.
func distinctAmounts(ds []Disbursement) {
	seen := make(map[int64]bool, len(ds))

	for i := range ds {
		a := ds[i].Amount

		step := int64(-AmountStep)
		if a-AmountStep*int64(len(ds)) < MinAmount {
			step = AmountStep
		}

		for seen[a] {
			a += step
		}

		seen[a] = true
		ds[i].Amount = a
	}
}

// Fit raises count toward maxCount, then lowers amount, until the largest
// share Shares can draw stays within limit per invoice. A non-positive limit
// means unbounded. Amounts never drop below MinAmount.
func Fit(amount int64, count, maxCount int, limit int64) (int64, int) {
	count = InvoicesFor(amount, count, maxCount, limit)

	if limit <= 0 || largestShare(amount, count) <= limit {
		return amount, count
	}

	fitted := (limit - int64(count)) * shareSpread(count) / maxShareWeight

	return max(MinAmount, fitted), count
}

// InvoicesFor returns the fewest invoices, at least count and at most maxCount,
// whose largest share stays within limit.
func InvoicesFor(amount int64, count, maxCount int, limit int64) int {
	count = max(1, count)
	if limit <= 0 {
		return count
	}

	for count < maxCount && largestShare(amount, count) > limit {
		count++
	}

	return count
}

// largestShare bounds the biggest part Shares returns for n parts, including
// the rounding cents the last part absorbs.
func largestShare(amount int64, n int) int64 {
	if n <= 1 {
		return amount
	}

	return amount*maxShareWeight/shareSpread(n) + int64(n)
}

func shareSpread(n int) int64 {
	return maxShareWeight + minShareWeight*int64(n-1)
}

func invoiceCount(stream *rng.Stream, amount int64, perVendor int) int {
	n := stream.Int(1, perVendor)
	return max(1, min(n, int(amount/minInvoiceAmount)))
}

// Shares splits amount into n positive parts with drawn weights. The parts sum
// to amount exactly.
func Shares(stream *rng.Stream, amount int64, n int) []int64 {
	if n <= 1 {
		return []int64{amount}
	}

	weights := make([]int64, n)

	var sum int64

	for i := range weights {
		weights[i] = stream.Int64(minShareWeight, maxShareWeight)
		sum += weights[i]
	}

	out := make([]int64, n)

	var acc int64

	for i := range n - 1 {
		out[i] = max(1, money.Proportion(amount, weights[i], sum))
		acc += out[i]
	}

	out[n-1] = amount - acc

	return out
}

func indices(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}

	return out
}

func ceilHalf(n int) int {
	return (n + 1) / 2
}
