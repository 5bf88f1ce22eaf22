package racer

import (
	"testing"

	"github.com/golang/geo/r2"
	"github.com/stretchr/testify/assert"
)

func TestSegmentIntersectsRect(t *testing.T) {
	r := Region{Left: 0, Top: 0, Width: 10, Height: 10}

	tests := []struct {
		name string
		seg  Segment
		want bool
	}{
		{"passes through", Segment{A: r2.Point{X: -5, Y: 5}, B: r2.Point{X: 15, Y: 5}}, true},
		{"diagonal through", Segment{A: r2.Point{X: -5, Y: -5}, B: r2.Point{X: 15, Y: 15}}, true},
		{"fully inside", Segment{A: r2.Point{X: 2, Y: 2}, B: r2.Point{X: 8, Y: 3}}, true},
		{"one end inside", Segment{A: r2.Point{X: 5, Y: 5}, B: r2.Point{X: 50, Y: 50}}, true},
		{"clips corner", Segment{A: r2.Point{X: 8, Y: -1}, B: r2.Point{X: 11, Y: 2}}, true},
		{"along edge", Segment{A: r2.Point{X: -5, Y: 10}, B: r2.Point{X: 15, Y: 10}}, true},
		{"touches corner", Segment{A: r2.Point{X: 10, Y: 10}, B: r2.Point{X: 20, Y: 20}}, true},
		{"bounding boxes overlap, no contact", Segment{A: r2.Point{X: 5, Y: -10}, B: r2.Point{X: 20, Y: 5}}, false},
		{"diagonal misses corner", Segment{A: r2.Point{X: 9, Y: -3}, B: r2.Point{X: 13, Y: 1}}, false},
		{"diagonal clips corner reversed", Segment{A: r2.Point{X: 11, Y: 2}, B: r2.Point{X: 8, Y: -1}}, true},
		{"disjoint", Segment{A: r2.Point{X: 20, Y: 20}, B: r2.Point{X: 30, Y: 25}}, false},
		{"point inside", Segment{A: r2.Point{X: 3, Y: 3}, B: r2.Point{X: 3, Y: 3}}, true},
		{"point outside", Segment{A: r2.Point{X: 13, Y: 3}, B: r2.Point{X: 13, Y: 3}}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SegmentIntersectsRect(tt.seg, r))
		})
	}
}

func TestRegion(t *testing.T) {
	r := Region{Left: 10, Top: 20, Width: 30, Height: 40}

	assert.Equal(t, 40.0, r.Right())
	assert.Equal(t, 60.0, r.Bottom())
	assert.Equal(t, r2.Point{X: 25, Y: 40}, r.Center())
	assert.True(t, r.Contains(r2.Point{X: 10, Y: 60}))
	assert.False(t, r.Contains(r2.Point{X: 9.9, Y: 30}))
}

func TestArenaBorders(t *testing.T) {
	level := &Level{
		Start:     Pose{X: 100, Y: 100},
		Goals:     []Region{{Left: 500, Top: 500, Width: 10, Height: 10}},
		Obstacles: []Region{{Left: 300, Top: 300, Width: 10, Height: 10}},
	}
	a := NewArena(level, 1400, 800, 50)

	assert.Len(t, a.Borders, 4)
	assert.Equal(t, level.Start, a.Start)

	hazards := a.Hazards()
	assert.Len(t, hazards, 5)
	assert.Equal(t, level.Obstacles[0], hazards[0])

	for _, p := range []r2.Point{{X: 25, Y: 400}, {X: 1375, Y: 400}, {X: 700, Y: 25}, {X: 700, Y: 775}} {
		inBorder := false
		for _, b := range a.Borders {
			inBorder = inBorder || b.Contains(p)
		}
		assert.True(t, inBorder, "point %v", p)
	}
	for _, b := range a.Borders {
		assert.False(t, b.Contains(r2.Point{X: 700, Y: 400}))
	}

	assert.InDelta(t, 1612.45, a.MaxDistance(), 0.01)
}
