// Package invoice builds vendor invoices whose totals hit a requested amount.
package invoice

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/auditcase/internal/calendar"
	"github.com/MrJamesThe3rd/auditcase/internal/catalog"
	"github.com/MrJamesThe3rd/auditcase/internal/money"
)

// Timing says on which side of the fiscal year-end a service was performed.
type Timing string

const (
	TimingPre  Timing = "pre"
	TimingPost Timing = "post"
)

// Period is an inclusive service window.
type Period struct {
	Start time.Time
	End   time.Time
}

// Days is the inclusive length of the period.
func (p Period) Days() int {
	return calendar.InclusiveDays(p.Start, p.End)
}

// LineItem is one billed line. Amount is Qty * UnitPrice.
type LineItem struct {
	Description string
	Kind        catalog.Kind
	Qty         int
	UnitPrice   int64
	Amount      int64
}

// Invoice is a synthesized vendor invoice. Amounts are in cents.
type Invoice struct {
	PaymentID string
	Number    string
	Vendor    string
	Date      time.Time
	// Exactly one of ServiceDate and ServicePeriod is set.
	ServiceDate   *time.Time
	ServicePeriod *Period
	LineItems     []LineItem
	Subtotal      int64
	TaxRate       decimal.Decimal
	Tax           int64
	Shipping      int64
	Total         int64
	// Recorded invoices appear in the year-end accounts payable listing.
	Recorded bool
	// Residual is requested total minus Total. Non-zero only after a nearest-fit fallback.
	Residual int64
}

// Exact reports whether the invoice hit its requested total.
func (inv Invoice) Exact() bool {
	return inv.Residual == 0
}

// Reconciles reports whether Total matches round2(subtotal + subtotal*taxRate + shipping)
// and the line items add up to the subtotal.
func (inv Invoice) Reconciles() bool {
	var lines int64
	for _, li := range inv.LineItems {
		lines += li.Amount
	}

	want := money.Total(inv.Subtotal, inv.TaxRate, inv.Shipping)

	return lines == inv.Subtotal && abs(inv.Total-want) < money.Epsilon
}

// Split divides the total at the year-end by day proportion:
// pre = round2(total * preDays / totalDays), post = total - pre.
// ok is false for invoices without a service period.
func (inv Invoice) Split(yearEnd time.Time) (pre, post int64, ok bool) {
	if inv.ServicePeriod == nil {
		return 0, 0, false
	}

	p := *inv.ServicePeriod

	total := p.Days()
	if total == 0 {
		return 0, 0, false
	}

	preDays := calendar.InclusiveDays(p.Start, calendar.Earlier(p.End, yearEnd))
	pre = money.Proportion(inv.Total, int64(preDays), int64(total))

	return pre, inv.Total - pre, true
}

// ServiceTiming classifies the invoice relative to yearEnd. A period counts as
// pre-year-end when it starts on or before it.
func (inv Invoice) ServiceTiming(yearEnd time.Time) Timing {
	var d time.Time

	switch {
	case inv.ServicePeriod != nil:
		d = inv.ServicePeriod.Start
	case inv.ServiceDate != nil:
		d = *inv.ServiceDate
	default:
		d = inv.Date
	}

	if d.After(yearEnd) {
		return TimingPost
	}

	return TimingPre
}

func abs(v int64) int64 {
	if v < 0 {
		return -v
	}

	return v
}
