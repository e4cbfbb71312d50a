package validation

import (
	"fmt"
	"strings"
	"time"

	"github.com/MrJamesThe3rd/auditcase/internal/calendar"
	"github.com/MrJamesThe3rd/auditcase/internal/invoice"
	"github.com/MrJamesThe3rd/auditcase/internal/money"
	"github.com/MrJamesThe3rd/auditcase/internal/population"
)

// MinDistinctPayees is the payee-variation lower bound for n disbursements.
func MinDistinctPayees(n int) int {
	return (n + 1) / 2
}

// Validate scans the draft and returns every violation found, in a stable order.
// It does not modify the draft.
func Validate(d *population.Draft) []Issue {
	v := &validator{draft: d}

	v.count()
	v.payees()
	v.amounts()
	v.dates()
	v.invoices()
	v.timingTrap()
	v.allocationTrap()

	return v.issues
}

type validator struct {
	draft  *population.Draft
	issues []Issue
}

func (v *validator) add(code Code, paymentID, format string, args ...any) {
	v.issues = append(v.issues, Issue{Code: code, PaymentID: paymentID, Message: fmt.Sprintf(format, args...)})
}

func (v *validator) count() {
	n := len(v.draft.Disbursements)

	switch {
	case n < population.MinDisbursements:
		v.add(CodeCountTooLow, "", "%d disbursements, need at least %d", n, population.MinDisbursements)
	case n > population.MaxDisbursements:
		v.add(CodeCountTooHigh, "", "%d disbursements, at most %d allowed", n, population.MaxDisbursements)
	}
}

func payeeKey(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), " "))
}

func (v *validator) payees() {
	distinct := make(map[string]bool)

	for _, d := range v.draft.Disbursements {
		key := payeeKey(d.Payee)
		if key == "" {
			v.add(CodeMissingPayee, d.PaymentID, "disbursement has no payee")
			continue
		}

		distinct[key] = true
	}

	n := len(v.draft.Disbursements)
	if want := MinDistinctPayees(n); n > 0 && len(distinct) < want {
		v.add(CodePayeeVariation, "", "%d distinct payees, need at least %d", len(distinct), want)
	}
}

func (v *validator) amounts() {
	seen := make(map[int64]string)

	for _, d := range v.draft.Disbursements {
		if first, ok := seen[d.Amount]; ok {
			v.add(CodeAmountVariation, d.PaymentID, "amount %s repeats %s", money.Format(d.Amount), first)
			continue
		}

		seen[d.Amount] = d.PaymentID
	}
}

func (v *validator) dates() {
	seen := make(map[time.Time]string)

	for _, d := range v.draft.Disbursements {
		offset := calendar.DaysBetween(v.draft.YearEnd, d.PaymentDate)
		if offset < population.MinPaymentOffset || offset > population.MaxPaymentOffset {
			v.add(CodePaymentDateWindow, d.PaymentID, "paid %d days after year-end, window is %d-%d",
				offset, population.MinPaymentOffset, population.MaxPaymentOffset)
		}

		day := calendar.Day(d.PaymentDate)
		if first, ok := seen[day]; ok {
			v.add(CodeDuplicatePaymentDate, d.PaymentID, "payment date %s repeats %s", day.Format(calendar.Layout), first)
			continue
		}

		seen[day] = d.PaymentID
	}
}

func (v *validator) invoices() {
	numbers := make(map[string]string)

	for _, d := range v.draft.Disbursements {
		if len(d.Invoices) == 0 || len(d.Invoices) != d.InvoiceCount {
			v.add(CodeMissingInvoices, d.PaymentID, "%d invoices attached, %d expected", len(d.Invoices), d.InvoiceCount)
		}

		if diff := d.Amount - d.InvoiceTotal(); diff <= -money.Epsilon || diff >= money.Epsilon {
			v.add(CodeAmountMismatch, d.PaymentID, "amount %s differs from invoice totals %s",
				money.Format(d.Amount), money.Format(d.InvoiceTotal()))
		}

		for _, inv := range d.Invoices {
			v.invoice(d, inv, numbers)
		}
	}
}

func (v *validator) invoice(d population.Disbursement, inv invoice.Invoice, numbers map[string]string) {
	id := d.PaymentID

	if len(inv.LineItems) == 0 {
		v.add(CodeInvoiceMissingLines, id, "invoice %q has no line items", inv.Number)
	}

	if !inv.TaxRate.IsPositive() {
		v.add(CodeInvoiceTaxRate, id, "invoice %q tax rate %s is not positive", inv.Number, inv.TaxRate)
	}

	if inv.Shipping < 0 {
		v.add(CodeInvoiceShipping, id, "invoice %q shipping %s is negative", inv.Number, money.Format(inv.Shipping))
	}

	if !inv.Reconciles() {
		v.add(CodeInvoiceTotal, id, "invoice %q total %s does not reconcile", inv.Number, money.Format(inv.Total))
	}

	if inv.Date.After(d.PaymentDate) {
		v.add(CodeInvoiceDate, id, "invoice %q dated after payment", inv.Number)
	}

	if strings.TrimSpace(inv.Vendor) == "" {
		v.add(CodeMissingPayee, id, "invoice %q has no vendor", inv.Number)
	}

	if strings.TrimSpace(inv.Number) == "" {
		v.add(CodeMissingInvoiceNumber, id, "invoice without a number")
		return
	}

	if first, ok := numbers[inv.Number]; ok {
		v.add(CodeDuplicateInvoiceNumber, id, "invoice number %q already used by %s", inv.Number, first)
		return
	}

	numbers[inv.Number] = id
}

func (v *validator) timingTrap() {
	var traps []population.Disbursement

	for _, d := range v.draft.Disbursements {
		if d.Trap == population.TrapTiming {
			traps = append(traps, d)
		}
	}

	switch len(traps) {
	case 0:
		v.add(CodeMissingTimingTrap, "", "no timing trap designated")
		return
	case 1:
	default:
		for _, d := range traps[1:] {
			v.add(CodeDuplicateTimingTrap, d.PaymentID, "additional timing trap")
		}
	}

	d := traps[0]
	if d.Timing != invoice.TimingPre || len(d.Invoices) == 0 {
		v.add(CodeMissingTimingTrap, d.PaymentID, "timing trap has no prior-period invoice")
		return
	}

	for _, inv := range d.Invoices {
		if inv.Recorded || inv.ServiceTiming(v.draft.YearEnd) != invoice.TimingPre {
			v.add(CodeMissingTimingTrap, d.PaymentID, "timing trap invoice %q is not an unrecorded prior-period service", inv.Number)
			return
		}
	}
}

func (v *validator) allocationTrap() {
	ye := v.draft.YearEnd
	count := 0

	for _, d := range v.draft.Disbursements {
		if d.Trap != population.TrapAllocation {
			for _, inv := range d.Invoices {
				if inv.ServicePeriod != nil {
					v.add(CodeAllocationTrap, d.PaymentID, "invoice %q has a service period outside the allocation trap", inv.Number)
				}
			}

			continue
		}

		count++

		if len(d.Invoices) != 1 {
			v.add(CodeAllocationTrap, d.PaymentID, "allocation trap carries %d invoices, expected 1", len(d.Invoices))
			continue
		}

		inv := d.Invoices[0]

		p := inv.ServicePeriod
		if p == nil || p.Start.After(ye) || !p.End.After(ye) {
			v.add(CodeAllocationTrap, d.PaymentID, "allocation trap invoice does not span year-end")
			continue
		}

		if inv.Recorded {
			v.add(CodeAllocationTrap, d.PaymentID, "allocation trap invoice is recorded")
		}
	}

	if count != 1 {
		v.add(CodeAllocationTrap, "", "%d allocation traps designated, expected 1", count)
	}
}
