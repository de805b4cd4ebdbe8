package core

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSpatialIndexWithin(t *testing.T) {
	locs := []*Location{
		{ID: "origin", Position: Vec3{X: 7000}},
		{ID: "near", Position: Vec3{X: 7000, Y: 500}},
		{ID: "edge", Position: Vec3{X: 7000, Y: 999, Z: 999}},
		{ID: "far", Position: Vec3{X: -7000}},
	}
	idx := NewSpatialIndex(locs)

	assert.Equal(t, 4, idx.Size())

	got := idx.Within(Vec3{X: 7000}, 1000)
	sort.Ints(got)
	assert.Equal(t, []int{0, 1, 2}, got)

	assert.Empty(t, idx.Within(Vec3{X: 7000}, 0))
	assert.Equal(t, []int{3}, idx.Within(Vec3{X: -7000}, 10))
}

func TestSpatialIndexSkipsNil(t *testing.T) {
	idx := NewSpatialIndex([]*Location{nil, {ID: "only", Position: Vec3{Z: 8000}}})

	assert.Equal(t, 1, idx.Size())
	assert.Equal(t, []int{1}, idx.Within(Vec3{Z: 8000}, 1))
}
