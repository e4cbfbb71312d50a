// Package repair mutates a draft population so that it satisfies the rules the
// validator reports as broken. Every policy is deterministic.
package repair

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/MrJamesThe3rd/auditcase/internal/calendar"
	"github.com/MrJamesThe3rd/auditcase/internal/catalog"
	"github.com/MrJamesThe3rd/auditcase/internal/invoice"
	"github.com/MrJamesThe3rd/auditcase/internal/population"
	"github.com/MrJamesThe3rd/auditcase/internal/validation"
)

// ErrUnhandledCode is returned for an issue code without a repair policy.
var ErrUnhandledCode = errors.New("no repair policy for issue code")

// Repairer applies repair policies against one catalog.
type Repairer struct {
	catalog *catalog.Catalog
	logger  *slog.Logger
}

func New(c *catalog.Catalog, logger *slog.Logger) *Repairer {
	if logger == nil {
		logger = slog.Default()
	}

	return &Repairer{catalog: c, logger: logger}
}

// Repair applies the policy for every code in issues, then re-asserts the
// allocation trap. Disbursements whose invoices no longer fit are marked dirty.
// It returns the codes it acted on.
func (r *Repairer) Repair(d *population.Draft, issues []validation.Issue) ([]validation.Code, error) {
	codes := validation.Codes(issues)

	for _, code := range codes {
		switch code {
		case validation.CodeCountTooLow:
			r.grow(d)
		case validation.CodeCountTooHigh:
			r.shrink(d)
		case validation.CodePayeeVariation:
			r.diversifyPayees(d)
		case validation.CodeAmountVariation:
			separateAmounts(d)
		case validation.CodePaymentDateWindow, validation.CodeDuplicatePaymentDate:
			respaceDates(d)
		case validation.CodeMissingPayee:
			r.fillPayees(d, validation.ForCode(issues, code))
		case validation.CodeMissingInvoices,
			validation.CodeAmountMismatch,
			validation.CodeInvoiceMissingLines,
			validation.CodeInvoiceTaxRate,
			validation.CodeInvoiceShipping,
			validation.CodeInvoiceTotal,
			validation.CodeInvoiceDate,
			validation.CodeMissingInvoiceNumber,
			validation.CodeDuplicateInvoiceNumber:
			resynthesize(d, validation.ForCode(issues, code))
		case validation.CodeMissingTimingTrap:
			forceTimingTrap(d)
		case validation.CodeDuplicateTimingTrap:
			dedupeTimingTraps(d)
		case validation.CodeAllocationTrap:
			// handled by reassertAllocationTrap below
		default:
			return nil, fmt.Errorf("%w: %s", ErrUnhandledCode, code)
		}
	}

	r.reassertAllocationTrap(d)

	r.logger.Debug("repaired draft", "seed", d.Seed, "codes", codes, "dirty", len(d.Dirty()))

	return codes, nil
}

// grow appends near-duplicates of the last disbursement until the minimum count
// is reached, stepping id, date and amount.
func (r *Repairer) grow(d *population.Draft) {
	if len(d.Disbursements) == 0 {
		d.Disbursements = append(d.Disbursements, population.Disbursement{
			PaymentID:    d.NextPaymentID(),
			Payee:        r.payeeAt(0),
			PaymentDate:  calendar.AddDays(d.YearEnd, population.MinPaymentOffset),
			Amount:       population.MinAmount,
			InvoiceCount: 1,
			Timing:       invoice.TimingPost,
			Trap:         population.TrapNone,
			Dirty:        true,
		})
	}

	for len(d.Disbursements) < population.MinDisbursements {
		last := d.Disbursements[len(d.Disbursements)-1]

		next := population.Disbursement{
			PaymentID:    d.NextPaymentID(),
			Payee:        last.Payee,
			PaymentDate:  calendar.AddDays(last.PaymentDate, 1),
			Amount:       last.Amount + population.AmountStep,
			InvoiceCount: max(1, last.InvoiceCount),
			Timing:       last.Timing,
			Trap:         population.TrapNone,
		}
		next.MarkDirty()

		d.Disbursements = append(d.Disbursements, next)
	}
}

// shrink drops trailing disbursements down to the cap, keeping planted traps.
func (r *Repairer) shrink(d *population.Draft) {
	for i := len(d.Disbursements) - 1; i >= 0 && len(d.Disbursements) > population.MaxDisbursements; i-- {
		if d.Disbursements[i].Trap != population.TrapNone {
			continue
		}

		d.Disbursements = slices.Delete(d.Disbursements, i, i+1)
	}
}

// diversifyPayees appends " #n" to repeated payees until enough are distinct.
// Catalog lookups ignore the suffix, so the vendor's line items still apply.
func (r *Repairer) diversifyPayees(d *population.Draft) {
	want := validation.MinDistinctPayees(len(d.Disbursements))

	distinct := make(map[string]bool)
	for _, db := range d.Disbursements {
		distinct[payeeKey(db.Payee)] = true
	}

	seen := make(map[string]int)

	for i := range d.Disbursements {
		if len(distinct) >= want {
			return
		}

		db := &d.Disbursements[i]
		key := payeeKey(db.Payee)
		seen[key]++

		if seen[key] == 1 || db.Trap == population.TrapAllocation {
			continue
		}

		for n := seen[key]; ; n++ {
			name := fmt.Sprintf("%s #%d", strings.TrimSpace(db.Payee), n)
			if !distinct[payeeKey(name)] {
				db.Payee = name
				distinct[payeeKey(name)] = true

				break
			}
		}

		db.MarkDirty()
	}
}

// separateAmounts steps repeated amounts up until every amount is unique.
func separateAmounts(d *population.Draft) {
	pending := make(map[int64]int)
	for _, db := range d.Disbursements {
		pending[db.Amount]++
	}

	claimed := make(map[int64]bool)

	for i := range d.Disbursements {
		db := &d.Disbursements[i]
		pending[db.Amount]--

		if !claimed[db.Amount] {
			claimed[db.Amount] = true
			continue
		}

		for claimed[db.Amount] || pending[db.Amount] > 0 {
			db.Amount += population.AmountStep
		}

		claimed[db.Amount] = true
		db.MarkDirty()
	}
}

// respaceDates re-derives every payment date as a fixed offset sequence inside
// the window.
func respaceDates(d *population.Draft) {
	n := len(d.Disbursements)
	span := population.MaxPaymentOffset - population.MinPaymentOffset

	step := 2
	if n > 1 && step*(n-1) > span {
		step = 1
	}

	for i := range d.Disbursements {
		db := &d.Disbursements[i]

		date := calendar.AddDays(d.YearEnd, population.MinPaymentOffset+step*i)
		if !db.PaymentDate.Equal(date) {
			db.PaymentDate = date
			db.MarkDirty()
		}
	}
}

func (r *Repairer) fillPayees(d *population.Draft, issues []validation.Issue) {
	for _, is := range issues {
		i := d.Index(is.PaymentID)
		if i < 0 {
			continue
		}

		db := &d.Disbursements[i]
		if strings.TrimSpace(db.Payee) == "" {
			db.Payee = r.payeeAt(i)
		}

		db.MarkDirty()
	}
}

func (r *Repairer) payeeAt(i int) string {
	payees := r.catalog.Payees(catalog.CategoryPayroll)
	if len(payees) == 0 {
		return "General Vendor"
	}

	return payees[i%len(payees)]
}

// resynthesize marks the disbursements named by issues for new invoices.
func resynthesize(d *population.Draft, issues []validation.Issue) {
	for _, is := range issues {
		i := d.Index(is.PaymentID)
		if i < 0 {
			continue
		}

		db := &d.Disbursements[i]
		if db.Amount <= 0 {
			db.Amount = population.MinAmount
		}

		db.MarkDirty()
	}
}

// forceTimingTrap re-materializes the designated timing trap or, when there is
// none, turns the first eligible disbursement into one.
func forceTimingTrap(d *population.Draft) {
	for i := range d.Disbursements {
		db := &d.Disbursements[i]
		if db.Trap == population.TrapTiming {
			db.Timing = invoice.TimingPre
			db.MarkDirty()

			return
		}
	}

	for i := range d.Disbursements {
		db := &d.Disbursements[i]
		if db.Trap == population.TrapAllocation {
			continue
		}

		db.Trap = population.TrapTiming
		db.Timing = invoice.TimingPre
		db.MarkDirty()

		return
	}
}

func dedupeTimingTraps(d *population.Draft) {
	found := false

	for i := range d.Disbursements {
		db := &d.Disbursements[i]
		if db.Trap != population.TrapTiming {
			continue
		}

		if found {
			db.Trap = population.TrapNone
			db.MarkDirty()
		}

		found = true
	}
}

// reassertAllocationTrap keeps exactly one allocation trap on a payroll vendor
// with a single invoice, choosing a prior-period disbursement when one is needed.
func (r *Repairer) reassertAllocationTrap(d *population.Draft) {
	trap := -1

	for i := range d.Disbursements {
		db := &d.Disbursements[i]
		if db.Trap != population.TrapAllocation {
			continue
		}

		if trap < 0 {
			trap = i
			continue
		}

		db.Trap = population.TrapNone
		db.MarkDirty()
	}

	if trap < 0 {
		trap = r.allocationCandidate(d)
		if trap < 0 {
			return
		}

		d.Disbursements[trap].Trap = population.TrapAllocation
		d.Disbursements[trap].MarkDirty()
	}

	db := &d.Disbursements[trap]
	payee := population.PayrollVendor(r.catalog, d.Seed)

	if db.Payee != payee || db.InvoiceCount != 1 || db.Timing != invoice.TimingPre {
		db.Payee = payee
		db.InvoiceCount = 1
		db.Timing = invoice.TimingPre
		db.MarkDirty()
	}

	for i := range d.Disbursements {
		other := &d.Disbursements[i]

		for _, inv := range other.Invoices {
			if (i == trap) != (inv.ServicePeriod != nil) {
				other.MarkDirty()
				break
			}
		}
	}
}

func (r *Repairer) allocationCandidate(d *population.Draft) int {
	first := -1

	for i, db := range d.Disbursements {
		if db.Trap != population.TrapNone {
			continue
		}

		if db.Timing == invoice.TimingPre {
			return i
		}

		if first < 0 {
			first = i
		}
	}

	return first
}

func payeeKey(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), " "))
}
