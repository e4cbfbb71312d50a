package allocator

import "github.com/MrJamesThe3rd/auditcase/internal/rng"

// frame is one level of the explicit DFS stack.
type frame struct {
	index     int
	remaining int64
	cands     candidates
}

// search holds the state of a single Solve call.
type search struct {
	items    []Item
	minTotal []int64
	maxTotal []int64
	opts     Options
	qty      []int
	ops      int
}

func (s *search) run(target int64) bool {
	last := len(s.items) - 1
	stack := []frame{s.frame(0, target)}

	for len(stack) > 0 {
		top := &stack[len(stack)-1]

		q, ok := top.cands.next()
		if !ok {
			stack = stack[:len(stack)-1]
			continue
		}

		if s.ops >= s.opts.OperationCap {
			return false
		}

		s.ops++
		s.qty[top.index] = q
		rem := top.remaining - int64(q)*s.items[top.index].UnitPrice

		if top.index == last {
			// Pruning leaves only the exact quantity at the last index.
			if rem == 0 {
				return true
			}

			continue
		}

		stack = append(stack, s.frame(top.index+1, rem))
	}

	return false
}

// frame builds the candidate set for index i that keeps the remainder within suffix bounds.
func (s *search) frame(i int, remaining int64) frame {
	it := s.items[i]
	price := it.UnitPrice

	lo := max(int64(it.MinQty), ceilDiv(remaining-s.maxTotal[i+1], price))
	hi := min(int64(it.MaxQty), floorDiv(remaining-s.minTotal[i+1], price))

	c := candidates{lo: int(lo), n: int(hi - lo + 1)}
	if hi < lo {
		c.n = 0
	}

	if s.opts.Stream != nil && c.n > 1 {
		if c.n > s.opts.ShuffleThreshold {
			c.stream = s.opts.Stream
			c.swaps = make(map[int]int)
		} else {
			c.desc = s.opts.Stream.Bool(0.5)
		}
	}

	return frame{index: i, remaining: remaining, cands: c}
}

// candidates enumerates lo..lo+n-1 ascending, descending, or as a lazy
// Fisher–Yates permutation that only materializes the positions it touches.
type candidates struct {
	lo     int
	n      int
	i      int
	desc   bool
	swaps  map[int]int
	stream *rng.Stream
}

func (c *candidates) next() (int, bool) {
	if c.i >= c.n {
		return 0, false
	}

	var off int

	switch {
	case c.swaps != nil:
		j := c.stream.Int(c.i, c.n-1)
		off = c.at(j)
		c.swaps[j] = c.at(c.i)
	case c.desc:
		off = c.n - 1 - c.i
	default:
		off = c.i
	}

	c.i++

	return c.lo + off, true
}

func (c *candidates) at(k int) int {
	if v, ok := c.swaps[k]; ok {
		return v
	}

	return k
}

func floorDiv(a, b int64) int64 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}

	return q
}

func ceilDiv(a, b int64) int64 {
	return -floorDiv(-a, b)
}
