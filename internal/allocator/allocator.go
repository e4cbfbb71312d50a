// Package allocator finds integer quantities whose priced sum hits a target amount.
/*
Target-sum allocation

Description:
  Given items with quantity bounds [MinQty, MaxQty] and a unit price, choose a quantity
  for every item so that Σ qty·price equals the target exactly (in cents).

Steps:
  1. Validate input (non-empty, sane bounds, positive prices).
  2. Precompute suffix bounds minTotal[i] = Σ_{j>=i} MinQty_j·price_j, maxTotal[i] likewise.
     Reject immediately when the target lies outside [minTotal[0], maxTotal[0]].
  3. Depth-first search over item index on an explicit stack. At index i with remaining
     budget R only quantities keeping R - q·price inside [minTotal[i+1], maxTotal[i+1]]
     are generated, so every pushed frame is still satisfiable by bounds.
     Narrow ranges are scanned ascending or descending; ranges wider than the shuffle
     threshold are walked in a lazily shuffled order to diversify output.
  4. Every candidate expansion counts as one operation; reaching the cap reports
     ErrInfeasible, so latency is bounded independent of host speed.

Callers that need a best-effort answer after ErrInfeasible use NearestFit.
*/
package allocator

import (
	"errors"
	"fmt"

	"github.com/MrJamesThe3rd/auditcase/internal/rng"
)

const (
	// DefaultOperationCap bounds the number of candidate expansions per Solve call.
	DefaultOperationCap = 2000
	// DefaultShuffleThreshold is the widest candidate range still scanned in order.
	DefaultShuffleThreshold = 12
)

var (
	ErrNoItems     = errors.New("allocator: no items")
	ErrInvalidItem = errors.New("allocator: invalid item")
	ErrInfeasible  = errors.New("allocator: infeasible target")
)

// Item is one priced quantity slot. Order of items is evaluation order.
type Item struct {
	MinQty    int
	MaxQty    int
	UnitPrice int64 // cents
}

// Options tunes the search. The zero value uses the defaults and ordered scans.
type Options struct {
	OperationCap     int
	ShuffleThreshold int
	// Stream randomizes enumeration order; nil means deterministic ascending scans.
	Stream *rng.Stream
}

func (o Options) withDefaults() Options {
	if o.OperationCap <= 0 {
		o.OperationCap = DefaultOperationCap
	}

	if o.ShuffleThreshold <= 0 {
		o.ShuffleThreshold = DefaultShuffleThreshold
	}

	return o
}

// Solution is the outcome of an allocation.
type Solution struct {
	Quantities []int
	Total      int64
	// Residual is target - Total; zero for exact solutions.
	Residual   int64
	Exact      bool
	Operations int
}

// Solve returns quantities whose weighted sum equals target exactly, or ErrInfeasible.
func Solve(items []Item, target int64, opts Options) (Solution, error) {
	if err := validate(items); err != nil {
		return Solution{}, err
	}

	opts = opts.withDefaults()
	minTotal, maxTotal := suffixBounds(items)

	if target < minTotal[0] || target > maxTotal[0] {
		return Solution{}, fmt.Errorf("%w: target %d outside [%d, %d]", ErrInfeasible, target, minTotal[0], maxTotal[0])
	}

	s := &search{
		items:    items,
		minTotal: minTotal,
		maxTotal: maxTotal,
		opts:     opts,
		qty:      make([]int, len(items)),
	}

	if !s.run(target) {
		if s.ops >= opts.OperationCap {
			return Solution{Operations: s.ops}, fmt.Errorf("%w: operation cap %d reached", ErrInfeasible, opts.OperationCap)
		}

		return Solution{Operations: s.ops}, fmt.Errorf("%w: search space exhausted", ErrInfeasible)
	}

	return Solution{
		Quantities: s.qty,
		Total:      target,
		Exact:      true,
		Operations: s.ops,
	}, nil
}

// NearestFit returns a best-effort assignment that approaches target from below and
// then takes the single extra unit that most reduces the residual. It never fails
// for valid input.
func NearestFit(items []Item, target int64) (Solution, error) {
	if err := validate(items); err != nil {
		return Solution{}, err
	}

	qty := make([]int, len(items))

	var total int64

	for i, it := range items {
		qty[i] = it.MinQty
		total += int64(it.MinQty) * it.UnitPrice
	}

	for i, it := range items {
		gap := target - total
		if gap <= 0 {
			break
		}

		add := min(int64(it.MaxQty-it.MinQty), gap/it.UnitPrice)
		qty[i] += int(add)
		total += add * it.UnitPrice
	}

	if gap := target - total; gap > 0 {
		best := -1
		bestGap := gap

		for i, it := range items {
			if qty[i] >= it.MaxQty {
				continue
			}

			if d := abs(gap - it.UnitPrice); d < bestGap {
				best, bestGap = i, d
			}
		}

		if best >= 0 {
			qty[best]++
			total += items[best].UnitPrice
		}
	}

	return Solution{
		Quantities: qty,
		Total:      total,
		Residual:   target - total,
		Exact:      total == target,
	}, nil
}

func validate(items []Item) error {
	if len(items) == 0 {
		return ErrNoItems
	}

	for i, it := range items {
		if it.MinQty < 0 || it.MaxQty < it.MinQty || it.UnitPrice <= 0 {
			return fmt.Errorf("%w: item %d {min=%d max=%d price=%d}", ErrInvalidItem, i, it.MinQty, it.MaxQty, it.UnitPrice)
		}
	}

	return nil
}

// suffixBounds returns slices of length len(items)+1 with a zero sentinel at the end.
func suffixBounds(items []Item) ([]int64, []int64) {
	n := len(items)
	minTotal := make([]int64, n+1)
	maxTotal := make([]int64, n+1)

	for i := n - 1; i >= 0; i-- {
		minTotal[i] = minTotal[i+1] + int64(items[i].MinQty)*items[i].UnitPrice
		maxTotal[i] = maxTotal[i+1] + int64(items[i].MaxQty)*items[i].UnitPrice
	}

	return minTotal, maxTotal
}

func abs(n int64) int64 {
	if n < 0 {
		return -n
	}

	return n
}
