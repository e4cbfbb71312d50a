package population_test

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
	"github.com/MrJamesThe3rd/auditcase/internal/rng"
)

func TestGenerate(t *testing.T) {
	gen := population.NewGenerator(catalog.Default())

	for i := range 25 {
		seed := fmt.Sprintf("population-%d", i)

		draft, err := gen.Generate(seed, population.Options{})
		require.NoError(t, err)

		n := len(draft.Disbursements)
		require.GreaterOrEqual(t, n, population.MinDisbursements, seed)
		require.LessOrEqual(t, n, population.MaxDisbursements, seed)
		assert.Equal(t, time.December, draft.YearEnd.Month())
		assert.Equal(t, 31, draft.YearEnd.Day())

		dates := map[time.Time]bool{}
		amounts := map[int64]bool{}
		payees := map[string]bool{}
		traps := map[population.TrapKind]int{}

		for _, d := range draft.Disbursements {
			offset := calendar.DaysBetween(draft.YearEnd, d.PaymentDate)
			assert.GreaterOrEqual(t, offset, population.MinPaymentOffset, seed)
			assert.LessOrEqual(t, offset, population.MaxPaymentOffset, seed)
			assert.False(t, dates[d.PaymentDate], "duplicate date in %s", seed)
			assert.False(t, amounts[d.Amount], "duplicate amount in %s", seed)
			assert.Regexp(t, `^P-\d+$`, d.PaymentID)
			assert.True(t, d.Dirty)
			assert.GreaterOrEqual(t, d.InvoiceCount, 1)
			assert.LessOrEqual(t, d.InvoiceCount, population.DefaultInvoicesPerVendor)

			dates[d.PaymentDate] = true
			amounts[d.Amount] = true
			payees[d.Payee] = true
			traps[d.Trap]++
		}

		assert.GreaterOrEqual(t, len(payees), (n+1)/2, seed)
		assert.Equal(t, 1, traps[population.TrapTiming], seed)
		assert.Equal(t, 1, traps[population.TrapAllocation], seed)

		for _, d := range draft.Disbursements {
			switch d.Trap {
			case population.TrapTiming:
				assert.Equal(t, invoice.TimingPre, d.Timing)
				assert.False(t, d.Recorded())
			case population.TrapAllocation:
				assert.Equal(t, invoice.TimingPre, d.Timing)
				assert.Equal(t, 1, d.InvoiceCount)

				v, ok := catalog.Default().Vendor(d.Payee)
				require.True(t, ok)
				assert.Equal(t, catalog.CategoryPayroll, v.Category)
			}
		}
	}
}

func TestGenerate_Overrides(t *testing.T) {
	gen := population.NewGenerator(catalog.Default())
	ye := calendar.Date(2023, time.June, 30)

	draft, err := gen.Generate("override", population.Options{
		YearEnd:           &ye,
		DisbursementCount: 12,
		VendorCount:       12,
		InvoicesPerVendor: 1,
	})
	require.NoError(t, err)

	assert.Equal(t, ye, draft.YearEnd)
	require.Len(t, draft.Disbursements, 12)

	payees := map[string]bool{}
	for _, d := range draft.Disbursements {
		payees[d.Payee] = true
		assert.Equal(t, 1, d.InvoiceCount)
	}

	assert.Len(t, payees, 12)
}

func TestGenerate_Deterministic(t *testing.T) {
	gen := population.NewGenerator(catalog.Default())

	a, err := gen.Generate("repeatable", population.Options{})
	require.NoError(t, err)

	b, err := gen.Generate("repeatable", population.Options{})
	require.NoError(t, err)

	assert.Equal(t, a, b)
}

func TestOptions_Validate(t *testing.T) {
	type testCase struct {
		name    string
		opts    population.Options
		wantErr bool
	}

	tests := []testCase{
		{name: "zero value", opts: population.Options{}},
		{name: "count in range", opts: population.Options{DisbursementCount: 15}},
		{name: "count too low", opts: population.Options{DisbursementCount: 9}, wantErr: true},
		{name: "count too high", opts: population.Options{DisbursementCount: 16}, wantErr: true},
		{name: "negative vendors", opts: population.Options{VendorCount: -1}, wantErr: true},
		{name: "too many invoices", opts: population.Options{InvoicesPerVendor: 6}, wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.opts.Validate()
			if tc.wantErr {
				require.ErrorIs(t, err, population.ErrInvalidOptions)
				return
			}

			require.NoError(t, err)
		})
	}
}

func TestPayrollVendor_Fallback(t *testing.T) {
	assert.Equal(t, population.FallbackPayrollVendor, population.PayrollVendor(catalog.New(), "seed"))
}

func TestShares(t *testing.T) {
	stream := rng.New("shares")

	for _, n := range []int{1, 2, 3, 5} {
		parts := population.Shares(stream, 1234567, n)
		require.Len(t, parts, n)

		var sum int64
		for _, p := range parts {
			assert.Positive(t, p)
			sum += p
		}

		assert.Equal(t, int64(1234567), sum)
	}
}

func TestDraft_Helpers(t *testing.T) {
	draft := &population.Draft{
		Disbursements: []population.Disbursement{
			{PaymentID: "P-1001", Invoices: []invoice.Invoice{{Total: 100, LineItems: []invoice.LineItem{{Amount: 90}}}}},
			{PaymentID: "P-1007", Dirty: true},
		},
	}

	assert.Equal(t, "P-1008", draft.NextPaymentID())
	assert.Equal(t, 1, draft.Index("P-1007"))
	assert.Equal(t, -1, draft.Index("P-9"))
	assert.Equal(t, []int{1}, draft.Dirty())

	clone := draft.Clone()
	clone.Disbursements[0].Invoices[0].LineItems[0].Amount = 1
	assert.Equal(t, int64(90), draft.Disbursements[0].Invoices[0].LineItems[0].Amount)

	d := &draft.Disbursements[0]
	d.MarkDirty()
	d.MarkDirty()
	assert.Equal(t, 1, d.Version)
	assert.Equal(t, int64(100), d.InvoiceTotal())

	_, err := population.PaymentNumber("X-12")
	assert.Error(t, err)
}

func TestFit(t *testing.T) {
	type testCase struct {
		name      string
		amount    int64
		count     int
		maxCount  int
		limit     int64
		wantAmt   int64
		wantCount int
	}

	tests := []testCase{
		{name: "within reach", amount: 200000, count: 1, maxCount: 3, limit: 500000, wantAmt: 200000, wantCount: 1},
		{name: "spread over more invoices", amount: 1000000, count: 1, maxCount: 3, limit: 600000, wantAmt: 1000000, wantCount: 3},
		{name: "clamped at invoice cap", amount: 1000000, count: 1, maxCount: 1, limit: 400000, wantAmt: 399999, wantCount: 1},
		{name: "floored at minimum amount", amount: 1000000, count: 1, maxCount: 1, limit: 1000, wantAmt: population.MinAmount, wantCount: 1},
		{name: "unbounded limit", amount: 9000000, count: 2, maxCount: 3, limit: 0, wantAmt: 9000000, wantCount: 2},
		{name: "zero count", amount: 200000, count: 0, maxCount: 3, limit: 500000, wantAmt: 200000, wantCount: 1},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			amount, count := population.Fit(tc.amount, tc.count, tc.maxCount, tc.limit)
			assert.Equal(t, tc.wantAmt, amount)
			assert.Equal(t, tc.wantCount, count)
		})
	}
}

func TestFit_SharesWithinLimit(t *testing.T) {
	stream := rng.New("fit")

	for i := range 500 {
		amount := stream.Int64(population.MinAmount, 6000000)
		limit := stream.Int64(400000, 5000000)
		maxCount := stream.Int(1, population.MaxInvoicesPerVendor)

		fitted, n := population.Fit(amount, 1, maxCount, limit)
		require.LessOrEqual(t, n, maxCount, "case %d", i)
		require.LessOrEqual(t, fitted, amount, "case %d", i)

		for _, share := range population.Shares(stream, fitted, n) {
			assert.LessOrEqual(t, share, limit, "case %d: amount %d over %d invoices", i, fitted, n)
		}
	}
}

func TestDraft_InvoiceLimit(t *testing.T) {
	assert.Equal(t, population.DefaultInvoicesPerVendor, (&population.Draft{}).InvoiceLimit())
	assert.Equal(t, 5, (&population.Draft{InvoicesPerVendor: 5}).InvoiceLimit())
}
