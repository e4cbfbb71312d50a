// Package engine runs case generation: populate, synthesize invoices, validate,
// repair, and finally assemble the plan.
package engine

import (
	"fmt"
	"log/slog"

	"github.com/MrJamesThe3rd/auditcase/internal/allocator"
	"github.com/MrJamesThe3rd/auditcase/internal/catalog"
	"github.com/MrJamesThe3rd/auditcase/internal/invoice"
	"github.com/MrJamesThe3rd/auditcase/internal/plan"
	"github.com/MrJamesThe3rd/auditcase/internal/population"
	"github.com/MrJamesThe3rd/auditcase/internal/repair"
	"github.com/MrJamesThe3rd/auditcase/internal/rng"
	"github.com/MrJamesThe3rd/auditcase/internal/validation"
)

// DefaultMaxAttempts bounds the validate and repair loop.
const DefaultMaxAttempts = 50

// Overrides are the caller-supplied generation parameters.
type Overrides = population.Options

// Config tunes the engine. Zero fields take their defaults.
type Config struct {
	MaxAttempts      int
	SubsetAttempts   int
	OperationCap     int
	ShuffleThreshold int
}

// Observer receives generation events. Implementations must be safe for
// concurrent use when one Engine serves parallel generations.
type Observer interface {
	Generated(attempts int)
	Exhausted(attempts int)
	Repaired(code validation.Code)
	AllocationFallback(vendor string)
}

type nopObserver struct{}

func (nopObserver) Generated(int) {}
func (nopObserver) Exhausted(int) {}
func (nopObserver) Repaired(validation.Code) {}
func (nopObserver) AllocationFallback(string) {}

// Option configures an Engine.
type Option func(*Engine)

func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

func WithObserver(o Observer) Option {
	return func(e *Engine) { e.observer = o }
}

// Engine generates cases from a shared read-only catalog. All per-case state is
// created per call, so Generate may run concurrently.
type Engine struct {
	catalog  *catalog.Catalog
	cfg      Config
	logger   *slog.Logger
	observer Observer
}

func New(c *catalog.Catalog, cfg Config, opts ...Option) *Engine {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = DefaultMaxAttempts
	}

	e := &Engine{
		catalog:  c,
		cfg:      cfg,
		logger:   slog.Default(),
		observer: nopObserver{},
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Generate produces the plan for seed. The same seed and overrides always yield
// the same plan. A plan is returned only when every rule holds.
func (e *Engine) Generate(seed string, o Overrides) (*plan.Plan, error) {
	draft, err := population.NewGenerator(e.catalog).Generate(seed, o)
	if err != nil {
		return nil, fmt.Errorf("generating population: %w", err)
	}

	frozen, err := e.Stabilize(draft)
	if err != nil {
		return nil, err
	}

	p, err := plan.Assemble(frozen)
	if err != nil {
		return nil, fmt.Errorf("assembling plan: %w", err)
	}

	return p, nil
}

// Stabilize runs the synthesize, validate and repair loop on a copy of draft
// until it is valid, returning the frozen copy. Exhausting the attempt bound
// returns an *ExhaustedError.
func (e *Engine) Stabilize(draft *population.Draft) (*population.Draft, error) {
	draft = draft.Clone()

	synth := invoice.New(e.catalog.Session(draft.Seed), invoice.Options{
		SubsetAttempts: e.cfg.SubsetAttempts,
		Allocator: allocator.Options{
			OperationCap:     e.cfg.OperationCap,
			ShuffleThreshold: e.cfg.ShuffleThreshold,
		},
		Logger: e.logger,
	})
	repairer := repair.New(e.catalog, e.logger)
	m := newMachine()

	var issues []validation.Issue

	for attempt := 1; attempt <= e.cfg.MaxAttempts; attempt++ {
		e.synthesize(draft, synth)

		if _, err := m.Fire(TriggerValidate); err != nil {
			return nil, err
		}

		issues = validation.Validate(draft)

		if len(issues) == 0 {
			if _, err := m.Fire(TriggerPass); err != nil {
				return nil, err
			}

			if _, err := m.Fire(TriggerFreeze); err != nil {
				return nil, err
			}

			e.observer.Generated(attempt)
			e.logger.Info("generated case", "seed", draft.Seed, "attempts", attempt, "disbursements", len(draft.Disbursements))

			return draft, nil
		}

		if _, err := m.Fire(TriggerFail); err != nil {
			return nil, err
		}

		codes, err := repairer.Repair(draft, issues)
		if err != nil {
			return nil, fmt.Errorf("repairing draft: %w", err)
		}

		for _, c := range codes {
			e.observer.Repaired(c)
		}

		e.logger.Debug("draft needs repair", "seed", draft.Seed, "attempt", attempt, "codes", codes)

		if _, err := m.Fire(TriggerRepair); err != nil {
			return nil, err
		}
	}

	e.observer.Exhausted(e.cfg.MaxAttempts)

	return nil, &ExhaustedError{Attempts: e.cfg.MaxAttempts, Issues: issues}
}

// synthesize rebuilds invoices for every dirty disbursement, spreading amounts
// a payee cannot reach on one invoice over more of them. The disbursement
// amount then follows the invoices, never the reverse.
func (e *Engine) synthesize(d *population.Draft, synth *invoice.Synthesizer) {
	for _, i := range d.Dirty() {
		db := &d.Disbursements[i]
		db.Dirty = false
		db.Invoices = nil

		if db.Trap != population.TrapAllocation {
			db.InvoiceCount = population.InvoicesFor(db.Amount, db.InvoiceCount, d.InvoiceLimit(), synth.Capacity(db.Payee))
		}

		n := max(1, db.InvoiceCount)
		stream := rng.Derive(d.Seed, "shares", fmt.Sprintf("%s/%d", db.PaymentID, db.Version))

		invoices := make([]invoice.Invoice, 0, n)

		for seq, target := range population.Shares(stream, db.Amount, n) {
			inv, err := synth.Synthesize(invoice.Request{
				PaymentID: db.PaymentID,
				Vendor:    db.Payee,
				Target:    target,
				Sequence:  seq,
				Version:   db.Version,
				Dates: invoice.DateContext{
					YearEnd:     d.YearEnd,
					PaymentDate: db.PaymentDate,
					Timing:      db.Timing,
					Period:      db.Trap == population.TrapAllocation,
				},
				Recorded: db.Recorded(),
			})
			if err != nil {
				e.logger.Debug("invoice not synthesized", "payment_id", db.PaymentID, "error", err)
				invoices = nil

				break
			}

			if !inv.Exact() {
				e.observer.AllocationFallback(db.Payee)
			}

			invoices = append(invoices, inv)
		}

		if len(invoices) == 0 {
			continue
		}

		db.Invoices = invoices
		db.Amount = db.InvoiceTotal()
	}
}
