package dca

import (
	"slices"
)

// Rotation is the infinite cyclic order over a portfolio instruments, ascending by
// target weight, ties broken by portfolio order.
type Rotation struct {
	order []int // instrument indexes sorted by ascending weight
	pos   int   // position in order of the next instrument
}

// NewRotation computes the rotation order of a portfolio.
func NewRotation(p Portfolio) *Rotation {
	order := make([]int, len(p))
	for i := range order {
		order[i] = i
	}
	slices.SortStableFunc(order, func(a, b int) int {
		switch {
		case p[a].Weight < p[b].Weight:
			return -1
		case p[a].Weight > p[b].Weight:
			return 1
		default:
			return 0
		}
	})
	return &Rotation{order: order}
}

// Next returns the index of the next instrument, starting with the lowest weight one
// and wrapping around after the highest weight one.
func (r *Rotation) Next() int {
	i := r.order[r.pos]
	r.pos = (r.pos + 1) % len(r.order)
	return i
}

// LowestWeightIndex returns the index of the instrument that starts every rotation round.
func (r *Rotation) LowestWeightIndex() int { return r.order[0] }
