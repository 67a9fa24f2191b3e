package dca

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRotation(t *testing.T) {
	p := Portfolio{
		{Name: "A", Weight: 0.3},
		{Name: "B", Weight: 0.2},
		{Name: "C", Weight: 0.3},
		{Name: "D", Weight: 0.2},
	}
	r := NewRotation(p)

	assert.Equal(t, 1, r.LowestWeightIndex())

	var got []int
	for range 6 {
		got = append(got, r.Next())
	}
	assert.Equal(t, []int{1, 3, 0, 2, 1, 3}, got)
	// LowestWeightIndex does not move with the rotation.
	assert.Equal(t, 1, r.LowestWeightIndex())
}

func TestRotation_Single(t *testing.T) {
	r := NewRotation(Portfolio{{Name: "A", Weight: 1}})
	for range 3 {
		assert.Equal(t, 0, r.Next())
	}
}
