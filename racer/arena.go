package racer

import (
	"math"

	"github.com/golang/geo/r2"
)

// Pose is a position plus heading in degrees.
type Pose struct {
	X     float64 `json:"x" yaml:"x"`
	Y     float64 `json:"y" yaml:"y"`
	Angle float64 `json:"angle" yaml:"angle"`
}

// Point returns the position part of the pose.
func (p Pose) Point() r2.Point {
	return r2.Point{X: p.X, Y: p.Y}
}

// Level is the per-run descriptor supplied by the host: a start pose plus goal and
// obstacle regions. Borders are not part of the level.
type Level struct {
	Start     Pose     `json:"start" yaml:"start"`
	Goals     []Region `json:"goals" yaml:"goals"`
	Obstacles []Region `json:"obstacles" yaml:"obstacles"`
}

// Arena is the immutable geometry a run is played on.
type Arena struct {
	Start     Pose
	Goals     []Region
	Obstacles []Region
	Borders   []Region
	Width     float64
	Height    float64
}

// NewArena builds an arena from a level and the host viewport. Four border regions
// of the given thickness are placed along the viewport edges.
func NewArena(level *Level, width, height, borderWidth float64) *Arena {
	a := &Arena{
		Width:  width,
		Height: height,
		Borders: []Region{
			{Left: 0, Top: 0, Width: width, Height: borderWidth},
			{Left: 0, Top: height - borderWidth, Width: width, Height: borderWidth},
			{Left: 0, Top: 0, Width: borderWidth, Height: height},
			{Left: width - borderWidth, Top: 0, Width: borderWidth, Height: height},
		},
	}
	if level != nil {
		a.Start = level.Start
		a.Goals = append([]Region(nil), level.Goals...)
		a.Obstacles = append([]Region(nil), level.Obstacles...)
	}
	return a
}

// Hazards returns every region that ends an episode on contact and that the ray
// sensors track: obstacles first, then borders.
func (a *Arena) Hazards() []Region {
	hazards := make([]Region, 0, len(a.Obstacles)+len(a.Borders))
	hazards = append(hazards, a.Obstacles...)
	return append(hazards, a.Borders...)
}

// MaxDistance is the largest distance a vehicle can be from any point in the arena.
func (a *Arena) MaxDistance() float64 {
	return math.Hypot(a.Width, a.Height)
}
