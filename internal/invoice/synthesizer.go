package invoice

import (
	"cmp"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"
	"unicode"

	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/auditcase/internal/allocator"
	"github.com/MrJamesThe3rd/auditcase/internal/calendar"
	"github.com/MrJamesThe3rd/auditcase/internal/catalog"
	"github.com/MrJamesThe3rd/auditcase/internal/money"
	"github.com/MrJamesThe3rd/auditcase/internal/rng"
)

// ErrInvalidRequest is returned for requests that cannot describe an invoice.
var ErrInvalidRequest = errors.New("invalid invoice request")

const (
	// DefaultSubsetAttempts is how many entry subsets are tried before nearest fit.
	DefaultSubsetAttempts = 6

	minShipping = 2500
	maxShipping = 30000

	// MinTarget is the smallest invoice total that still leaves a subtotal after
	// the shipping floor.
	MinTarget = 2 * minShipping

	minLines = 2
	maxLines = 5
)

var (
	// shipping is drawn in basis points of the subtotal
	shippingBps = [2]int{200, 600}
	// capacityShare keeps generated targets clear of a vendor's outer reach
	capacityShare = decimal.RequireFromString("0.80")
	one           = decimal.NewFromInt(1)
)

// Options configures a Synthesizer.
type Options struct {
	SubsetAttempts int
	Allocator      allocator.Options
	Logger         *slog.Logger
}

// DateContext anchors an invoice in time.
type DateContext struct {
	YearEnd     time.Time
	PaymentDate time.Time
	Timing      Timing
	// Period requests a service period straddling the year-end.
	Period bool
}

// Request describes the invoice to build.
type Request struct {
	PaymentID string
	Vendor    string
	Target    int64
	// Sequence is the invoice's index within its disbursement.
	Sequence int
	// Version changes whenever the owning disbursement is resynthesized.
	Version  int
	Dates    DateContext
	Recorded bool
}

// Synthesizer builds invoices for one generation run. It is not safe for
// concurrent use.
type Synthesizer struct {
	session  *catalog.Session
	opts     Options
	logger   *slog.Logger
	counters map[string]int
}

func New(session *catalog.Session, opts Options) *Synthesizer {
	if opts.SubsetAttempts <= 0 {
		opts.SubsetAttempts = DefaultSubsetAttempts
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Synthesizer{
		session:  session,
		opts:     opts,
		logger:   logger,
		counters: make(map[string]int),
	}
}

// Synthesize builds an invoice whose total equals req.Target when the vendor's
// entries allow it, and the closest reachable total otherwise.
func (s *Synthesizer) Synthesize(req Request) (Invoice, error) {
	if req.Target < MinTarget || strings.TrimSpace(req.Vendor) == "" || req.PaymentID == "" {
		return Invoice{}, fmt.Errorf("%w: payment %q vendor %q target %d", ErrInvalidRequest, req.PaymentID, req.Vendor, req.Target)
	}

	if req.Dates.PaymentDate.Before(req.Dates.YearEnd) {
		return Invoice{}, fmt.Errorf("%w: payment date before year-end", ErrInvalidRequest)
	}

	stream := rng.Derive(s.session.Seed(), "invoice", fmt.Sprintf("%s/%d/%d", req.PaymentID, req.Sequence, req.Version))
	rate := s.session.TaxRate(req.Vendor)

	inv := Invoice{
		PaymentID: req.PaymentID,
		Vendor:    req.Vendor,
		TaxRate:   rate,
		Recorded:  req.Recorded,
	}

	s.assignDates(&inv, req.Dates, stream)

	var (
		best      []LineItem
		bestShip  int64
		bestDelta int64 = -1
	)

	for attempt := range s.opts.SubsetAttempts {
		subtotal, ship := charges(req.Target, rate, stream)
		entries := s.subset(req.Vendor, subtotal, stream)
		items, prices := s.items(entries, stream)

		opts := s.opts.Allocator
		opts.Stream = stream

		sol, err := allocator.Solve(items, subtotal, opts)
		if err == nil {
			inv.LineItems = fill(prices, entries, sol.Quantities, stream)
			inv.Shipping = ship

			return s.finish(inv, req.Target), nil
		}

		if !errors.Is(err, allocator.ErrInfeasible) {
			return Invoice{}, fmt.Errorf("allocating %s: %w", req.Vendor, err)
		}

		sol, err = allocator.NearestFit(items, subtotal)
		if err != nil {
			return Invoice{}, fmt.Errorf("allocating %s: %w", req.Vendor, err)
		}

		if d := abs(sol.Residual); bestDelta < 0 || d < bestDelta {
			best = fill(prices, entries, sol.Quantities, stream)
			bestShip, bestDelta = ship, d
		}

		s.logger.Debug("allocation attempt infeasible", "vendor", req.Vendor, "attempt", attempt+1, "error", err)
	}

	inv.LineItems = best
	inv.Shipping = bestShip
	inv = s.finish(inv, req.Target)

	s.logger.Warn("allocation fell back to nearest fit",
		"vendor", req.Vendor, "payment_id", req.PaymentID, "target", req.Target, "residual", inv.Residual)

	return inv, nil
}

func (s *Synthesizer) finish(inv Invoice, target int64) Invoice {
	for _, li := range inv.LineItems {
		inv.Subtotal += li.Amount
	}

	inv.Tax = money.ApplyRate(inv.Subtotal, inv.TaxRate)
	inv.Total = inv.Subtotal + inv.Tax + inv.Shipping
	inv.Residual = target - inv.Total
	inv.Number = s.number(inv.Vendor)

	return inv
}

// subset picks 2–5 entries from the vendor's profile with a flexible entry last
// whenever the vendor has one. The drawn lines are then steered toward subtotal:
// wider entries are swapped in while their combined maximum falls short, and
// lighter ones while their combined minimum overshoots.
func (s *Synthesizer) subset(vendor string, subtotal int64, stream *rng.Stream) []catalog.Entry {
	fixed, flex := pools(s.session, vendor)
	fixed = rng.Shuffled(stream, fixed)

	want, slots := stream.Int(minLines, maxLines), maxLines

	var tail []catalog.Entry

	if len(flex) > 0 {
		want--
		slots--
		tail = []catalog.Entry{rng.Pick(stream, flex)}
	}

	n := min(want, len(fixed))
	out := slices.Clone(fixed[:n])
	rest := slices.Clone(fixed[n:])

	if _, hi := reach(out, tail); hi < subtotal && len(flex) > 1 {
		tail[0] = flex[widest(flex)]
	}

	for {
		if _, hi := reach(out, tail); hi >= subtotal || len(rest) == 0 {
			break
		}

		w := widest(rest)

		if len(out) < slots {
			out = append(out, rest[w])
			rest = slices.Delete(rest, w, w+1)

			continue
		}

		k := narrowest(out)
		if upper(rest[w]) <= upper(out[k]) {
			break
		}

		out[k], rest[w] = rest[w], out[k]
	}

	for {
		if lo, _ := reach(out, tail); lo <= subtotal || len(out) == 0 {
			break
		}

		h := heaviest(out)

		if l := lightest(rest); l >= 0 && lower(rest[l]) < lower(out[h]) {
			out[h], rest[l] = rest[l], out[h]
			continue
		}

		if len(out)+len(tail) <= minLines {
			break
		}

		out = slices.Delete(out, h, h+1)
	}

	return append(out, tail...)
}

// pools splits the vendor's profile into fixed and flexible entries. A profile
// without a flexible entry borrows the vendor's catalog ones.
func pools(session *catalog.Session, vendor string) (fixed, flex []catalog.Entry) {
	for _, e := range session.Profile(vendor) {
		if e.Flexible {
			flex = append(flex, e)
		} else {
			fixed = append(fixed, e)
		}
	}

	if len(flex) == 0 {
		for _, e := range session.Catalog().Entries(vendor) {
			if e.Flexible {
				flex = append(flex, e)
			}
		}
	}

	return fixed, flex
}

// Capacity returns the largest invoice total the vendor's profile reaches
// exactly with room to spare in this run.
func Capacity(session *catalog.Session, vendor string) int64 {
	fixed, flex := pools(session, vendor)

	slots := maxLines

	var hi int64

	if len(flex) > 0 {
		slots--
		hi = upper(flex[narrowest(flex)])
	}

	slices.SortFunc(fixed, func(a, b catalog.Entry) int { return cmp.Compare(upper(b), upper(a)) })

	for _, e := range fixed[:min(slots, len(fixed))] {
		hi += upper(e)
	}

	sub := money.ApplyRate(hi, capacityShare)

	return sub + money.ApplyRate(sub, session.TaxRate(vendor)) + minShipping
}

// Capacity is the package-level Capacity for this synthesizer's run.
func (s *Synthesizer) Capacity(vendor string) int64 {
	return Capacity(s.session, vendor)
}

// lower and upper bound a line's amount whatever unit price items draws for it.
// Flexible lines span their whole range.
func lower(e catalog.Entry) int64 {
	if e.Flexible {
		return int64(e.MinQty) * e.MinUnitPrice
	}

	return int64(e.MinQty) * e.MaxUnitPrice
}

func upper(e catalog.Entry) int64 {
	if e.Flexible {
		return int64(e.MaxQty) * e.MaxUnitPrice
	}

	return int64(e.MaxQty) * e.MinUnitPrice
}

func reach(groups ...[]catalog.Entry) (lo, hi int64) {
	for _, g := range groups {
		for _, e := range g {
			lo += lower(e)
			hi += upper(e)
		}
	}

	return lo, hi
}

func widest(entries []catalog.Entry) int {
	return pick(entries, upper, func(a, b int64) bool { return a > b })
}

func narrowest(entries []catalog.Entry) int {
	return pick(entries, upper, func(a, b int64) bool { return a < b })
}

func heaviest(entries []catalog.Entry) int {
	return pick(entries, lower, func(a, b int64) bool { return a > b })
}

func lightest(entries []catalog.Entry) int {
	return pick(entries, lower, func(a, b int64) bool { return a < b })
}

// pick returns the index whose key beats every other, or -1 for no entries.
func pick(entries []catalog.Entry, key func(catalog.Entry) int64, better func(a, b int64) bool) int {
	best := -1

	for i, e := range entries {
		if best < 0 || better(key(e), key(entries[best])) {
			best = i
		}
	}

	return best
}

// items turns entries into allocator slots. Fixed entries get a drawn unit price;
// a flexible entry becomes a one-cent slot spanning its whole amount range so the
// allocator can land on any cent.
func (s *Synthesizer) items(entries []catalog.Entry, stream *rng.Stream) ([]allocator.Item, []int64) {
	items := make([]allocator.Item, len(entries))
	prices := make([]int64, len(entries))

	for i, e := range entries {
		if e.Flexible {
			items[i] = allocator.Item{
				MinQty:    int(int64(e.MinQty) * e.MinUnitPrice),
				MaxQty:    int(int64(e.MaxQty) * e.MaxUnitPrice),
				UnitPrice: 1,
			}

			continue
		}

		prices[i] = stream.Int64(e.MinUnitPrice, e.MaxUnitPrice)
		items[i] = allocator.Item{MinQty: e.MinQty, MaxQty: e.MaxQty, UnitPrice: prices[i]}
	}

	return items, prices
}

// fill converts allocated quantities into line items.
func fill(prices []int64, entries []catalog.Entry, qty []int, stream *rng.Stream) []LineItem {
	lines := make([]LineItem, 0, len(entries))

	for i, e := range entries {
		li := LineItem{Description: e.Description, Kind: e.Kind}

		if e.Flexible {
			li.Qty, li.UnitPrice = flexibleQty(e, int64(qty[i]), stream)
		} else {
			li.Qty, li.UnitPrice = qty[i], prices[i]
		}

		li.Amount = int64(li.Qty) * li.UnitPrice
		lines = append(lines, li)
	}

	return lines
}

// flexibleQty expresses amount as qty x unit price within the entry's ranges,
// falling back to a single unit when no quantity divides it.
func flexibleQty(e catalog.Entry, amount int64, stream *rng.Stream) (int, int64) {
	var fits []int

	for q := e.MinQty; q <= e.MaxQty && len(fits) < 64; q++ {
		if amount%int64(q) != 0 {
			continue
		}

		if p := amount / int64(q); p >= e.MinUnitPrice && p <= e.MaxUnitPrice {
			fits = append(fits, q)
		}
	}

	if len(fits) == 0 {
		return 1, amount
	}

	q := rng.Pick(stream, fits)

	return q, amount / int64(q)
}

// charges draws a 2–6% shipping charge on the implied subtotal, clamped to
// [25, 300] currency units, and returns the subtotal that taxes to the rest.
// Shipping takes up the rounding cents without leaving its bounds.
func charges(target int64, rate decimal.Decimal, stream *rng.Stream) (subtotal, ship int64) {
	pct := decimal.New(int64(stream.Int(shippingBps[0], shippingBps[1])), -4)
	ship = money.Clamp(money.ApplyRate(money.Divide(target, one.Add(rate)), pct), minShipping, maxShipping)

	subtotal = subtotalFor(target-ship, rate)
	ship = target - subtotal - money.ApplyRate(subtotal, rate)

	for ship > maxShipping {
		subtotal++
		ship = target - subtotal - money.ApplyRate(subtotal, rate)
	}

	return subtotal, ship
}

// subtotalFor returns the largest subtotal whose taxed amount does not exceed
// amount, preferring one that hits it exactly.
func subtotalFor(amount int64, rate decimal.Decimal) int64 {
	if amount <= 0 {
		return 0
	}

	guess := money.Divide(amount, one.Add(rate))
	best := int64(0)

	for s := guess + 2; s >= max(0, guess-3); s-- {
		taxed := s + money.ApplyRate(s, rate)
		if taxed == amount {
			return s
		}

		if taxed < amount && best == 0 {
			best = s
		}
	}

	return best
}

func (s *Synthesizer) assignDates(inv *Invoice, dc DateContext, stream *rng.Stream) {
	ye := calendar.Day(dc.YearEnd)
	pay := calendar.Day(dc.PaymentDate)
	window := max(1, calendar.DaysBetween(ye, pay))

	switch {
	case dc.Period:
		start := calendar.AddDays(ye, -stream.Int(10, 45))
		end := calendar.AddDays(ye, stream.Int(min(10, window-1), max(1, min(40, window-1))))
		inv.ServicePeriod = &Period{Start: start, End: end}
		inv.Date = calendar.Earlier(calendar.AddDays(end, stream.Int(0, 3)), calendar.AddDays(pay, -1))
	case dc.Timing == TimingPost:
		d := calendar.AddDays(ye, stream.Int(1, max(1, window-5)))
		inv.ServiceDate = &d
		inv.Date = calendar.Earlier(calendar.AddDays(d, stream.Int(0, 15)), calendar.AddDays(pay, -1))
	default:
		d := calendar.AddDays(ye, -stream.Int(0, 60))
		inv.ServiceDate = &d
		inv.Date = calendar.Earlier(calendar.AddDays(d, stream.Int(0, 20)), calendar.AddDays(pay, -1))
	}

	if inv.ServiceDate != nil && inv.Date.Before(*inv.ServiceDate) {
		inv.Date = *inv.ServiceDate
	}
}

// number issues the next invoice number for the vendor's prefix.
func (s *Synthesizer) number(vendor string) string {
	prefix := initials(vendor)

	n, ok := s.counters[prefix]
	if !ok {
		n = rng.Derive(s.session.Seed(), "invoice-number", prefix).Int(10000, 89999)
	}

	s.counters[prefix] = n + 1

	return fmt.Sprintf("%s-%06d", prefix, n)
}

func initials(vendor string) string {
	var b strings.Builder

	for _, w := range strings.Fields(vendor) {
		r := []rune(w)[0]
		if unicode.IsLetter(r) {
			b.WriteRune(unicode.ToUpper(r))
		}

		if b.Len() == 3 {
			break
		}
	}

	if b.Len() == 0 {
		return "INV"
	}

	return b.String()
}
