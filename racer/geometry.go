package racer

import (
	"math"

	"github.com/golang/geo/r1"
	"github.com/golang/geo/r2"
	"github.com/peterstace/simplefeatures/geom"
)

// Region is an axis-aligned rectangle in arena coordinates.
// Left/Top is the minimum corner; y grows downward as on screen.
type Region struct {
	Left   float64 `json:"left" yaml:"left"`
	Top    float64 `json:"top" yaml:"top"`
	Width  float64 `json:"width" yaml:"width"`
	Height float64 `json:"height" yaml:"height"`
}

// Right returns the x-coordinate of the right edge.
func (r Region) Right() float64 {
	return r.Left + r.Width
}

// Bottom returns the y-coordinate of the bottom edge.
func (r Region) Bottom() float64 {
	return r.Top + r.Height
}

// Rect returns the region as a closed r2.Rect.
func (r Region) Rect() r2.Rect {
	return r2.Rect{
		X: r1.Interval{Lo: r.Left, Hi: r.Right()},
		Y: r1.Interval{Lo: r.Top, Hi: r.Bottom()},
	}
}

// Contains reports whether p lies inside the region or on its boundary.
func (r Region) Contains(p r2.Point) bool {
	return r.Rect().ContainsPoint(p)
}

// Center returns the center point of the region.
func (r Region) Center() r2.Point {
	return r.Rect().Center()
}

// Segment is a straight line segment between two points.
type Segment struct {
	A, B r2.Point
}

// Bound returns the smallest rectangle containing the segment.
func (s Segment) Bound() r2.Rect {
	return r2.RectFromPoints(s.A, s.B)
}

// Length returns the euclidean length of the segment.
func (s Segment) Length() float64 {
	return s.B.Sub(s.A).Norm()
}

// SegmentIntersectsRect reports whether any point of the segment lies inside or on
// the boundary of the region. This is an exact test: a segment that only clips a
// corner of the region counts, as does a segment lying entirely inside it.
func SegmentIntersectsRect(s Segment, r Region) bool {
	rect := r.Rect()
	if !rect.Intersects(s.Bound()) {
		return false
	}
	if rect.ContainsPoint(s.A) || rect.ContainsPoint(s.B) {
		return true
	}
	if s.A == s.B {
		return false
	}

	line, err := geom.NewLineString(geom.NewSequence([]float64{s.A.X, s.A.Y, s.B.X, s.B.Y}, geom.DimXY))
	if err != nil {
		return false
	}
	env, err := geom.NewEnvelope([]geom.XY{{X: rect.X.Lo, Y: rect.Y.Lo}, {X: rect.X.Hi, Y: rect.Y.Hi}})
	if err != nil {
		return false
	}
	return geom.Intersects(line.AsGeometry(), env.AsGeometry())
}

// headingVector returns the unit vector for a heading in degrees.
// Heading 0 points along +y; positive headings rotate toward +x.
func headingVector(degrees float64) r2.Point {
	rad := degrees * math.Pi / 180
	return r2.Point{X: math.Sin(rad), Y: math.Cos(rad)}
}
