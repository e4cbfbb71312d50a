// Package population models the disbursement draft a case is generated from.
package population

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/MrJamesThe3rd/auditcase/internal/invoice"
)

const (
	MinDisbursements = 10
	MaxDisbursements = 15

	// Payment dates fall in the subsequent-disbursements window, in days after year-end.
	MinPaymentOffset = 30
	MaxPaymentOffset = 60

	// AmountStep separates colliding amounts, in cents.
	AmountStep = 100
	// MinAmount is the smallest provisional disbursement amount, in cents.
	MinAmount = 150000

	paymentIDPrefix = "P-"
)

// TrapKind marks a disbursement planted as an exception for the trainee to find.
type TrapKind string

const (
	TrapNone       TrapKind = "none"
	TrapTiming     TrapKind = "timingTrap"
	TrapAllocation TrapKind = "allocationTrap"
)

// Disbursement is one payment made after year-end. Amount is provisional until
// invoices are attached and afterwards always equals their summed totals.
type Disbursement struct {
	PaymentID    string
	Payee        string
	PaymentDate  time.Time
	Amount       int64
	InvoiceCount int
	Timing       invoice.Timing
	Trap         TrapKind
	Invoices     []invoice.Invoice
	// Version increases every time the disbursement is marked for resynthesis.
	Version int
	Dirty   bool
}

// Recorded reports whether the disbursement's invoices belong in the year-end
// payables listing. Only ordinary prior-period services were booked.
func (d Disbursement) Recorded() bool {
	return d.Timing == invoice.TimingPre && d.Trap == TrapNone
}

// InvoiceTotal sums the attached invoices.
func (d Disbursement) InvoiceTotal() int64 {
	var sum int64
	for _, inv := range d.Invoices {
		sum += inv.Total
	}

	return sum
}

// MarkDirty schedules the disbursement for invoice resynthesis.
func (d *Disbursement) MarkDirty() {
	if !d.Dirty {
		d.Version++
	}

	d.Dirty = true
}

// Draft is the mutable population for one case.
type Draft struct {
	Seed          string
	YearEnd       time.Time
	Disbursements []Disbursement
	// InvoicesPerVendor caps invoices per disbursement; zero means the default.
	InvoicesPerVendor int
}

// Clone returns a deep copy, so that a frozen result never aliases draft state.
func (d *Draft) Clone() *Draft {
	out := &Draft{
		Seed:              d.Seed,
		YearEnd:           d.YearEnd,
		Disbursements:     make([]Disbursement, len(d.Disbursements)),
		InvoicesPerVendor: d.InvoicesPerVendor,
	}

	for i, db := range d.Disbursements {
		db.Invoices = slices.Clone(db.Invoices)
		for j := range db.Invoices {
			db.Invoices[j].LineItems = slices.Clone(db.Invoices[j].LineItems)
		}

		out.Disbursements[i] = db
	}

	return out
}

// InvoiceLimit returns the most invoices one disbursement may carry.
func (d *Draft) InvoiceLimit() int {
	if d.InvoicesPerVendor <= 0 {
		return DefaultInvoicesPerVendor
	}

	return d.InvoicesPerVendor
}

// Index returns the position of the disbursement with paymentID, or -1.
func (d *Draft) Index(paymentID string) int {
	return slices.IndexFunc(d.Disbursements, func(db Disbursement) bool {
		return db.PaymentID == paymentID
	})
}

// Dirty returns the indices of disbursements awaiting resynthesis.
func (d *Draft) Dirty() []int {
	var out []int

	for i, db := range d.Disbursements {
		if db.Dirty {
			out = append(out, i)
		}
	}

	return out
}

// PaymentID formats the n-th payment identifier.
func PaymentID(n int) string {
	return paymentIDPrefix + strconv.Itoa(n)
}

// PaymentNumber parses the numeric part of a payment identifier.
func PaymentNumber(id string) (int, error) {
	n, err := strconv.Atoi(strings.TrimPrefix(id, paymentIDPrefix))
	if err != nil || !strings.HasPrefix(id, paymentIDPrefix) {
		return 0, fmt.Errorf("invalid payment id %q", id)
	}

	return n, nil
}

// NextPaymentID returns an identifier greater than any in the draft.
func (d *Draft) NextPaymentID() string {
	highest := firstPaymentNumber - 1

	for _, db := range d.Disbursements {
		if n, err := PaymentNumber(db.PaymentID); err == nil {
			highest = max(highest, n)
		}
	}

	return PaymentID(highest + 1)
}
