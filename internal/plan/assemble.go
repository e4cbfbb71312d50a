package plan

import (
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/auditcase/internal/calendar"
	"github.com/MrJamesThe3rd/auditcase/internal/invoice"
	"github.com/MrJamesThe3rd/auditcase/internal/money"
	"github.com/MrJamesThe3rd/auditcase/internal/population"
	"github.com/MrJamesThe3rd/auditcase/internal/rng"
)

var (
	ErrTooFewDisbursements = errors.New("too few disbursements to scope")
	ErrDuplicateAmounts    = errors.New("disbursement amounts are not distinct")
	ErrInconsistentDraft   = errors.New("draft is inconsistent")
)

const (
	MinInScope = 3
	MaxInScope = 7

	thresholdStep  = 100000 // one thousand currency units
	thresholdNudge = 100

	minScopeBps = 1000
	maxScopeBps = 1500
)

// Assemble converts a frozen draft into a plan. It is a pure function of the
// draft and returns no plan at all when any part cannot be built.
func Assemble(d *population.Draft) (*Plan, error) {
	if len(d.Disbursements) < MinInScope {
		return nil, fmt.Errorf("%w: %d", ErrTooFewDisbursements, len(d.Disbursements))
	}

	p := &Plan{
		Seed:    d.Seed,
		YearEnd: NewDate(d.YearEnd),
	}

	splits := 0

	for _, db := range d.Disbursements {
		out, err := disbursement(db, d.YearEnd)
		if err != nil {
			return nil, err
		}

		if out.AnswerKey.IsSplit() {
			splits++
		}

		p.Disbursements = append(p.Disbursements, out)
	}

	if splits != 1 {
		return nil, fmt.Errorf("%w: %d split answer keys", ErrInconsistentDraft, splits)
	}

	scoping, err := scope(d)
	if err != nil {
		return nil, err
	}

	p.Scoping = scoping

	docs, err := documents(d)
	if err != nil {
		return nil, err
	}

	p.ReferenceDocumentSpecs = docs

	return p, nil
}

func disbursement(db population.Disbursement, yearEnd time.Time) (Disbursement, error) {
	if len(db.Invoices) == 0 {
		return Disbursement{}, fmt.Errorf("%w: %s has no invoices", ErrInconsistentDraft, db.PaymentID)
	}

	key, err := answerKey(db, yearEnd)
	if err != nil {
		return Disbursement{}, err
	}

	numbers := make([]string, len(db.Invoices))
	for i, inv := range db.Invoices {
		numbers[i] = inv.Number
	}

	return Disbursement{
		PaymentID:      db.PaymentID,
		Payee:          db.Payee,
		PaymentDate:    NewDate(db.PaymentDate),
		Amount:         Money(db.Amount),
		InvoiceCount:   len(db.Invoices),
		ServiceTiming:  db.Invoices[0].ServiceTiming(yearEnd),
		TrapKind:       db.Trap,
		InvoiceNumbers: numbers,
		AnswerKey:      key,
	}, nil
}

func answerKey(db population.Disbursement, yearEnd time.Time) (AnswerKey, error) {
	ye := yearEnd.Format(calendar.Layout)

	if db.Trap == population.TrapAllocation {
		inv := db.Invoices[0]

		pre, post, ok := inv.Split(yearEnd)
		if !ok || len(db.Invoices) != 1 {
			return AnswerKey{}, fmt.Errorf("%w: allocation trap %s has no service period", ErrInconsistentDraft, db.PaymentID)
		}

		p := *inv.ServicePeriod
		preDays := calendar.InclusiveDays(p.Start, calendar.Earlier(p.End, yearEnd))

		return AnswerKey{
			Splits: []Split{
				{Classification: ImproperlyExcluded, Amount: Money(pre), Days: preDays},
				{Classification: ProperlyExcluded, Amount: Money(post), Days: p.Days() - preDays},
			},
			Explanation: fmt.Sprintf(
				"Invoice %s from %s bills services from %s to %s. %d of %d days fall on or before year-end %s, "+
					"so %s should have been accrued as a liability and %s belongs to the following period.",
				inv.Number, inv.Vendor, p.Start.Format(calendar.Layout), p.End.Format(calendar.Layout),
				preDays, p.Days(), ye, money.Format(pre), money.Format(post)),
		}, nil
	}

	// Every invoice of one disbursement shares its timing and recorded flag.
	first := db.Invoices[0]
	class := Classify(first.ServiceTiming(yearEnd), first.Recorded)

	for _, inv := range db.Invoices[1:] {
		if Classify(inv.ServiceTiming(yearEnd), inv.Recorded) != class {
			return AnswerKey{}, fmt.Errorf("%w: %s mixes classifications", ErrInconsistentDraft, db.PaymentID)
		}
	}

	return AnswerKey{Classification: class, Explanation: explain(class, db, ye, yearEnd)}, nil
}

func explain(class Classification, db population.Disbursement, ye string, yearEnd time.Time) string {
	service := serviceDate(db.Invoices[0]).Format(calendar.Layout)
	amount := money.Format(db.Amount)

	switch class {
	case ProperlyIncluded:
		return fmt.Sprintf("Services from %s were performed on %s, before year-end %s, and the %s liability "+
			"was recorded in accounts payable.", db.Payee, service, ye, amount)
	case ImproperlyExcluded:
		return fmt.Sprintf("Services from %s were performed on %s, before year-end %s, but the invoice was "+
			"not recorded. The %s payment settles an unrecorded liability.", db.Payee, service, ye, amount)
	case ImproperlyIncluded:
		return fmt.Sprintf("Services from %s were performed on %s, after year-end %s, yet the %s invoice "+
			"was recorded in year-end accounts payable.", db.Payee, service, ye, amount)
	default:
		days := calendar.DaysBetween(yearEnd, serviceDate(db.Invoices[0]))
		return fmt.Sprintf("Services from %s were performed on %s, %d days after year-end %s. The %s liability "+
			"arose in the following period and was correctly excluded.", db.Payee, service, days, ye, amount)
	}
}

func serviceDate(inv invoice.Invoice) time.Time {
	switch {
	case inv.ServiceDate != nil:
		return *inv.ServiceDate
	case inv.ServicePeriod != nil:
		return inv.ServicePeriod.Start
	default:
		return inv.Date
	}
}

func scope(d *population.Draft) (Scoping, error) {
	amounts := make([]int64, len(d.Disbursements))
	for i, db := range d.Disbursements {
		amounts[i] = db.Amount
	}

	stream := rng.Derive(d.Seed, "scoping", "")

	t, err := Threshold(amounts, stream)
	if err != nil {
		return Scoping{}, err
	}

	pct := decimal.New(int64(stream.Int(minScopeBps, maxScopeBps)), -4)

	return Scoping{
		PerformanceMateriality: Money(money.Divide(t, pct)),
		ThresholdAmount:        Money(t),
		ScopePercent:           Ratio{Decimal: pct},
	}, nil
}

// Threshold picks a cut point with between MinInScope and MaxInScope amounts at or
// above it. The cut is a whole thousand where possible and never equals an amount.
func Threshold(amounts []int64, stream *rng.Stream) (int64, error) {
	sorted := slices.Clone(amounts)
	slices.Sort(sorted)
	slices.Reverse(sorted)

	if len(sorted) < MinInScope {
		return 0, fmt.Errorf("%w: %d", ErrTooFewDisbursements, len(sorted))
	}

	if len(slices.Compact(slices.Clone(sorted))) != len(sorted) {
		return 0, ErrDuplicateAmounts
	}

	ks := make([]int, 0, MaxInScope-MinInScope+1)
	for k := MinInScope; k <= min(MaxInScope, len(sorted)); k++ {
		ks = append(ks, k)
	}

	rng.Shuffle(stream, ks)

	for _, k := range ks {
		t := money.FloorTo(sorted[k-1], thresholdStep)
		for t > 0 && slices.Contains(sorted, t) {
			t -= thresholdNudge
		}

		if c := atOrAbove(sorted, t); t > 0 && c >= MinInScope && c <= MaxInScope {
			return t, nil
		}
	}

	// No round cut works; sit one cent above the next amount down.
	k := ks[0]
	if k < len(sorted) {
		return sorted[k] + 1, nil
	}

	return max(1, sorted[k-1]-1), nil
}

func atOrAbove(sorted []int64, t int64) int {
	n := 0

	for _, a := range sorted {
		if a >= t {
			n++
		}
	}

	return n
}

func documents(d *population.Draft) ([]DocumentSpec, error) {
	var docs []DocumentSpec

	add := func(id, fileName, templateID string, data any) error {
		if _, err := LookupTemplate(templateID); err != nil {
			return err
		}

		raw, err := json.Marshal(data)
		if err != nil {
			return fmt.Errorf("encoding %s: %w", id, err)
		}

		docs = append(docs, DocumentSpec{
			ID:             id,
			FileName:       fileName,
			GenerationSpec: GenerationSpec{TemplateID: templateID, Data: raw},
		})

		return nil
	}

	var (
		aging    = APAgingData{AsOf: NewDate(d.YearEnd)}
		listing  = DisbursementListingData{PeriodStart: NewDate(calendar.AddDays(d.YearEnd, 1))}
		lastPaid = d.YearEnd
	)

	for _, db := range d.Disbursements {
		for _, inv := range db.Invoices {
			template := TemplateInvoiceStandard
			if inv.ServicePeriod != nil {
				template = TemplateInvoiceServicePeriod
			}

			if err := add("invoice-"+inv.Number, "invoice_"+inv.Number+".pdf", template, invoiceData(inv)); err != nil {
				return nil, err
			}

			if inv.Recorded {
				aging.Rows = append(aging.Rows, APAgingRow{
					Vendor:          inv.Vendor,
					InvoiceNumber:   inv.Number,
					InvoiceDate:     NewDate(inv.Date),
					DaysOutstanding: max(0, calendar.DaysBetween(inv.Date, d.YearEnd)),
					Amount:          Money(inv.Total),
				})
				aging.Total += Money(inv.Total)
			}
		}

		listing.Rows = append(listing.Rows, DisbursementRow{
			PaymentID:   db.PaymentID,
			Payee:       db.Payee,
			PaymentDate: NewDate(db.PaymentDate),
			Amount:      Money(db.Amount),
		})
		listing.Total += Money(db.Amount)

		if db.PaymentDate.After(lastPaid) {
			lastPaid = db.PaymentDate
		}
	}

	listing.PeriodEnd = NewDate(lastPaid)

	slices.SortStableFunc(listing.Rows, func(a, b DisbursementRow) int {
		return a.PaymentDate.Compare(b.PaymentDate.Time)
	})

	ye := d.YearEnd.Format(calendar.Layout)

	if err := add("ap-aging-listing", "ap_listing_"+ye+".pdf", TemplateAPAgingListing, aging); err != nil {
		return nil, err
	}

	if err := add("disbursement-listing", "disbursements_after_"+ye+".pdf", TemplateDisbursementListing, listing); err != nil {
		return nil, err
	}

	return docs, nil
}

func invoiceData(inv invoice.Invoice) InvoiceData {
	data := InvoiceData{
		InvoiceNumber:      inv.Number,
		Vendor:             inv.Vendor,
		PaymentID:          inv.PaymentID,
		InvoiceDate:        NewDate(inv.Date),
		Subtotal:           Money(inv.Subtotal),
		TaxRate:            Ratio{Decimal: inv.TaxRate},
		Tax:                Money(inv.Tax),
		Shipping:           Money(inv.Shipping),
		Total:              Money(inv.Total),
		AllocationResidual: Money(inv.Residual),
	}

	if inv.ServiceDate != nil {
		sd := NewDate(*inv.ServiceDate)
		data.ServiceDate = &sd
	}

	if inv.ServicePeriod != nil {
		data.ServicePeriod = &PeriodData{Start: NewDate(inv.ServicePeriod.Start), End: NewDate(inv.ServicePeriod.End)}
	}

	for _, li := range inv.LineItems {
		data.LineItems = append(data.LineItems, LineItemData{
			Description: li.Description,
			Kind:        string(li.Kind),
			Qty:         li.Qty,
			UnitPrice:   Money(li.UnitPrice),
			Amount:      Money(li.Amount),
		})
	}

	return data
}
