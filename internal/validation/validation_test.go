package validation_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/auditcase/internal/calendar"
	"github.com/MrJamesThe3rd/auditcase/internal/catalog"
	"github.com/MrJamesThe3rd/auditcase/internal/engine"
	"github.com/MrJamesThe3rd/auditcase/internal/invoice"
	"github.com/MrJamesThe3rd/auditcase/internal/population"
	"github.com/MrJamesThe3rd/auditcase/internal/validation"
)

func validDraft(t *testing.T) *population.Draft {
	t.Helper()

	c := catalog.Default()

	draft, err := population.NewGenerator(c).Generate("validation", population.Options{DisbursementCount: 12})
	require.NoError(t, err)

	frozen, err := engine.New(c, engine.Config{}).Stabilize(draft)
	require.NoError(t, err)

	return frozen
}

func indexOf(d *population.Draft, trap population.TrapKind) int {
	for i, db := range d.Disbursements {
		if db.Trap == trap {
			return i
		}
	}

	return -1
}

func TestValidate(t *testing.T) {
	type testCase struct {
		name   string
		mutate func(d *population.Draft)
		want   validation.Code
	}

	tests := []testCase{
		{
			name:   "too few",
			mutate: func(d *population.Draft) { d.Disbursements = d.Disbursements[:9] },
			want:   validation.CodeCountTooLow,
		},
		{
			name: "too many",
			mutate: func(d *population.Draft) {
				for len(d.Disbursements) <= population.MaxDisbursements {
					d.Disbursements = append(d.Disbursements, d.Disbursements[0])
				}
			},
			want: validation.CodeCountTooHigh,
		},
		{
			name: "payee variation",
			mutate: func(d *population.Draft) {
				for i := range d.Disbursements {
					d.Disbursements[i].Payee = "Same Vendor"
				}
			},
			want: validation.CodePayeeVariation,
		},
		{
			name:   "repeated amount",
			mutate: func(d *population.Draft) { d.Disbursements[1].Amount = d.Disbursements[0].Amount },
			want:   validation.CodeAmountVariation,
		},
		{
			name:   "date outside window",
			mutate: func(d *population.Draft) { d.Disbursements[0].PaymentDate = calendar.AddDays(d.YearEnd, 61) },
			want:   validation.CodePaymentDateWindow,
		},
		{
			name:   "duplicate date",
			mutate: func(d *population.Draft) { d.Disbursements[1].PaymentDate = d.Disbursements[0].PaymentDate },
			want:   validation.CodeDuplicatePaymentDate,
		},
		{
			name:   "blank payee",
			mutate: func(d *population.Draft) { d.Disbursements[0].Payee = " " },
			want:   validation.CodeMissingPayee,
		},
		{
			name:   "no invoices",
			mutate: func(d *population.Draft) { d.Disbursements[0].Invoices = nil },
			want:   validation.CodeMissingInvoices,
		},
		{
			name:   "amount does not follow invoices",
			mutate: func(d *population.Draft) { d.Disbursements[0].Amount++ },
			want:   validation.CodeAmountMismatch,
		},
		{
			name:   "invoice without lines",
			mutate: func(d *population.Draft) { d.Disbursements[0].Invoices[0].LineItems = nil },
			want:   validation.CodeInvoiceMissingLines,
		},
		{
			name:   "zero tax rate",
			mutate: func(d *population.Draft) { d.Disbursements[0].Invoices[0].TaxRate = decimal.Zero },
			want:   validation.CodeInvoiceTaxRate,
		},
		{
			name:   "negative shipping",
			mutate: func(d *population.Draft) { d.Disbursements[0].Invoices[0].Shipping = -1 },
			want:   validation.CodeInvoiceShipping,
		},
		{
			name:   "total does not reconcile",
			mutate: func(d *population.Draft) { d.Disbursements[0].Invoices[0].Total += 5 },
			want:   validation.CodeInvoiceTotal,
		},
		{
			name: "invoice after payment",
			mutate: func(d *population.Draft) {
				d.Disbursements[0].Invoices[0].Date = calendar.AddDays(d.Disbursements[0].PaymentDate, 1)
			},
			want: validation.CodeInvoiceDate,
		},
		{
			name:   "missing invoice number",
			mutate: func(d *population.Draft) { d.Disbursements[0].Invoices[0].Number = "" },
			want:   validation.CodeMissingInvoiceNumber,
		},
		{
			name: "duplicate invoice number",
			mutate: func(d *population.Draft) {
				d.Disbursements[1].Invoices[0].Number = d.Disbursements[0].Invoices[0].Number
			},
			want: validation.CodeDuplicateInvoiceNumber,
		},
		{
			name:   "no timing trap",
			mutate: func(d *population.Draft) { d.Disbursements[indexOf(d, population.TrapTiming)].Trap = population.TrapNone },
			want:   validation.CodeMissingTimingTrap,
		},
		{
			name: "timing trap recorded",
			mutate: func(d *population.Draft) {
				i := indexOf(d, population.TrapTiming)
				d.Disbursements[i].Invoices[0].Recorded = true
			},
			want: validation.CodeMissingTimingTrap,
		},
		{
			name: "second timing trap",
			mutate: func(d *population.Draft) {
				for i := range d.Disbursements {
					if d.Disbursements[i].Trap == population.TrapNone {
						d.Disbursements[i].Trap = population.TrapTiming
						return
					}
				}
			},
			want: validation.CodeDuplicateTimingTrap,
		},
		{
			name: "allocation trap without period",
			mutate: func(d *population.Draft) {
				i := indexOf(d, population.TrapAllocation)
				sd := d.YearEnd
				d.Disbursements[i].Invoices[0].ServicePeriod = nil
				d.Disbursements[i].Invoices[0].ServiceDate = &sd
			},
			want: validation.CodeAllocationTrap,
		},
		{
			name: "service period elsewhere",
			mutate: func(d *population.Draft) {
				i := indexOf(d, population.TrapNone)
				d.Disbursements[i].Invoices[0].ServicePeriod = &invoice.Period{Start: d.YearEnd, End: calendar.AddDays(d.YearEnd, 5)}
			},
			want: validation.CodeAllocationTrap,
		},
		{
			name:   "no allocation trap",
			mutate: func(d *population.Draft) { d.Disbursements[indexOf(d, population.TrapAllocation)].Trap = population.TrapNone },
			want:   validation.CodeAllocationTrap,
		},
	}

	base := validDraft(t)
	require.Empty(t, validation.Validate(base))

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			d := base.Clone()
			tc.mutate(d)

			issues := validation.Validate(d)
			assert.Contains(t, validation.Codes(issues), tc.want)
		})
	}
}

func TestCodes(t *testing.T) {
	issues := []validation.Issue{
		{Code: validation.CodeAllocationTrap},
		{Code: validation.CodeCountTooLow},
		{Code: validation.CodeAllocationTrap},
		{Code: "NEW_KIND"},
	}

	assert.Equal(t, []validation.Code{validation.CodeCountTooLow, validation.CodeAllocationTrap, "NEW_KIND"}, validation.Codes(issues))
	assert.Len(t, validation.ForCode(issues, validation.CodeAllocationTrap), 2)
	assert.True(t, validation.CodeInvoiceDate.IsValid())
	assert.False(t, validation.Code("NEW_KIND").IsValid())
	assert.Len(t, validation.AllCodes(), 19)
}

func TestMinDistinctPayees(t *testing.T) {
	assert.Equal(t, 5, validation.MinDistinctPayees(10))
	assert.Equal(t, 6, validation.MinDistinctPayees(11))
	assert.Equal(t, 8, validation.MinDistinctPayees(15))
}
