package repair_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/auditcase/internal/calendar"
	"github.com/MrJamesThe3rd/auditcase/internal/catalog"
	"github.com/MrJamesThe3rd/auditcase/internal/invoice"
	"github.com/MrJamesThe3rd/auditcase/internal/population"
	"github.com/MrJamesThe3rd/auditcase/internal/repair"
	"github.com/MrJamesThe3rd/auditcase/internal/validation"
)

var yearEnd = calendar.Date(2024, time.December, 31)

func draft(n int) *population.Draft {
	d := &population.Draft{Seed: "repair", YearEnd: yearEnd}

	for i := range n {
		d.Disbursements = append(d.Disbursements, population.Disbursement{
			PaymentID:    population.PaymentID(1001 + i),
			Payee:        fmt.Sprintf("Vendor %d", i),
			PaymentDate:  calendar.AddDays(yearEnd, 30+i),
			Amount:       int64(200000 + i*1000),
			InvoiceCount: 1,
			Timing:       invoice.TimingPost,
			Trap:         population.TrapNone,
		})
	}

	return d
}

func newRepairer() *repair.Repairer {
	return repair.New(catalog.Default(), nil)
}

func TestRepair_EveryCodeHasAPolicy(t *testing.T) {
	for _, code := range validation.AllCodes() {
		t.Run(code.String(), func(t *testing.T) {
			codes, err := newRepairer().Repair(draft(12), []validation.Issue{{Code: code, PaymentID: "P-1001"}})
			require.NoError(t, err)
			assert.Equal(t, []validation.Code{code}, codes)
		})
	}
}

func TestRepair_UnknownCode(t *testing.T) {
	_, err := newRepairer().Repair(draft(12), []validation.Issue{{Code: "SOMETHING_NEW"}})
	require.ErrorIs(t, err, repair.ErrUnhandledCode)
}

func TestRepair_Grow(t *testing.T) {
	d := draft(4)

	_, err := newRepairer().Repair(d, []validation.Issue{{Code: validation.CodeCountTooLow}})
	require.NoError(t, err)

	require.Len(t, d.Disbursements, population.MinDisbursements)

	last := d.Disbursements[3]
	next := d.Disbursements[4]
	assert.Equal(t, "P-1005", next.PaymentID)
	assert.Equal(t, last.Payee, next.Payee)
	assert.Equal(t, calendar.AddDays(last.PaymentDate, 1), next.PaymentDate)
	assert.Equal(t, last.Amount+population.AmountStep, next.Amount)
	assert.True(t, next.Dirty)
}

func TestRepair_ShrinkKeepsTraps(t *testing.T) {
	d := draft(18)
	d.Disbursements[16].Trap = population.TrapTiming
	d.Disbursements[17].Trap = population.TrapAllocation
	d.Disbursements[17].Timing = invoice.TimingPre
	d.Disbursements[17].Payee = population.PayrollVendor(catalog.Default(), d.Seed)

	_, err := newRepairer().Repair(d, []validation.Issue{{Code: validation.CodeCountTooHigh}})
	require.NoError(t, err)

	require.Len(t, d.Disbursements, population.MaxDisbursements)
	assert.Equal(t, population.TrapTiming, d.Disbursements[13].Trap)
	assert.Equal(t, population.TrapAllocation, d.Disbursements[14].Trap)
}

func TestRepair_RespaceDates(t *testing.T) {
	d := draft(12)
	for i := range d.Disbursements {
		d.Disbursements[i].PaymentDate = calendar.AddDays(yearEnd, 75)
	}

	_, err := newRepairer().Repair(d, []validation.Issue{{Code: validation.CodePaymentDateWindow}, {Code: validation.CodeDuplicatePaymentDate}})
	require.NoError(t, err)

	for i, db := range d.Disbursements {
		assert.Equal(t, calendar.AddDays(yearEnd, 30+2*i), db.PaymentDate)
		assert.True(t, db.Dirty)
	}

	assert.Empty(t, validation.ForCode(validation.Validate(d), validation.CodeDuplicatePaymentDate))
	assert.Empty(t, validation.ForCode(validation.Validate(d), validation.CodePaymentDateWindow))
}

func TestRepair_PayeeVariation(t *testing.T) {
	d := draft(10)
	for i := range d.Disbursements {
		d.Disbursements[i].Payee = "Summit Office Supply"
	}

	_, err := newRepairer().Repair(d, []validation.Issue{{Code: validation.CodePayeeVariation}})
	require.NoError(t, err)

	assert.Empty(t, validation.ForCode(validation.Validate(d), validation.CodePayeeVariation))
	assert.Equal(t, "Summit Office Supply #2", d.Disbursements[1].Payee)

	_, ok := catalog.Default().Vendor(d.Disbursements[1].Payee)
	assert.True(t, ok, "suffixed payee still resolves to its vendor")
}

func TestRepair_AmountVariation(t *testing.T) {
	d := draft(10)
	d.Disbursements[3].Amount = d.Disbursements[0].Amount
	d.Disbursements[4].Amount = d.Disbursements[0].Amount + population.AmountStep

	_, err := newRepairer().Repair(d, []validation.Issue{{Code: validation.CodeAmountVariation}})
	require.NoError(t, err)

	assert.Empty(t, validation.ForCode(validation.Validate(d), validation.CodeAmountVariation))
	assert.Equal(t, d.Disbursements[0].Amount+2*population.AmountStep, d.Disbursements[3].Amount)
	assert.True(t, d.Disbursements[3].Dirty)
	assert.False(t, d.Disbursements[4].Dirty)
}

func TestRepair_TimingTrap(t *testing.T) {
	d := draft(10)

	_, err := newRepairer().Repair(d, []validation.Issue{{Code: validation.CodeMissingTimingTrap}})
	require.NoError(t, err)

	assert.Equal(t, population.TrapTiming, d.Disbursements[0].Trap)
	assert.Equal(t, invoice.TimingPre, d.Disbursements[0].Timing)

	d.Disbursements[5].Trap = population.TrapTiming

	_, err = newRepairer().Repair(d, []validation.Issue{{Code: validation.CodeDuplicateTimingTrap}})
	require.NoError(t, err)

	assert.Equal(t, population.TrapTiming, d.Disbursements[0].Trap)
	assert.Equal(t, population.TrapNone, d.Disbursements[5].Trap)
}

func TestRepair_ReassertsAllocationTrap(t *testing.T) {
	d := draft(10)
	d.Disbursements[4].Timing = invoice.TimingPre
	d.Disbursements[6].Trap = population.TrapAllocation
	d.Disbursements[8].Trap = population.TrapAllocation

	_, err := newRepairer().Repair(d, []validation.Issue{{Code: validation.CodeAllocationTrap}})
	require.NoError(t, err)

	assert.Equal(t, population.TrapAllocation, d.Disbursements[6].Trap)
	assert.Equal(t, population.TrapNone, d.Disbursements[8].Trap)

	trap := d.Disbursements[6]
	assert.Equal(t, population.PayrollVendor(catalog.Default(), d.Seed), trap.Payee)
	assert.Equal(t, 1, trap.InvoiceCount)
	assert.Equal(t, invoice.TimingPre, trap.Timing)
	assert.True(t, trap.Dirty)

	d = draft(10)
	d.Disbursements[4].Timing = invoice.TimingPre

	_, err = newRepairer().Repair(d, nil)
	require.NoError(t, err)
	assert.Equal(t, population.TrapAllocation, d.Disbursements[4].Trap, "prefers a prior-period disbursement")
}

func TestRepair_ResynthesizeMarksDirty(t *testing.T) {
	d := draft(10)
	d.Disbursements[2].Amount = 0

	_, err := newRepairer().Repair(d, []validation.Issue{{Code: validation.CodeMissingInvoices, PaymentID: "P-1003"}})
	require.NoError(t, err)

	assert.True(t, d.Disbursements[2].Dirty)
	assert.Equal(t, 1, d.Disbursements[2].Version)
	assert.Equal(t, int64(population.MinAmount), d.Disbursements[2].Amount)
}

func TestRepair_MissingPayee(t *testing.T) {
	d := draft(10)
	d.Disbursements[1].Payee = "  "

	_, err := newRepairer().Repair(d, []validation.Issue{{Code: validation.CodeMissingPayee, PaymentID: "P-1002"}})
	require.NoError(t, err)

	assert.NotEmpty(t, d.Disbursements[1].Payee)
	assert.True(t, d.Disbursements[1].Dirty)
}
