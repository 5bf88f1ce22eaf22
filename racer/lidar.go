package racer

import (
	"github.com/golang/geo/r2"
)

// BeamsPerCluster is the number of beams (near, mid, far) sharing one relative angle.
const BeamsPerCluster = 3

// Beam is one ray of a sensor array: an angle relative to the vehicle heading
// (degrees) and a fixed length.
type Beam struct {
	Angle  float64
	Length float64
}

// SensorArray is the capability exposed by vehicles that carry ray sensors.
// Drivers check for it with a type assertion on the Vehicle they hold.
type SensorArray interface {
	// Beams returns the fixed ray configuration in order.
	Beams() []Beam
	// BeamEndpoints returns the world-space end of every ray for the current pose.
	BeamEndpoints() []r2.Point
	// BeamHits returns one flag per ray, true if the ray touched anything this tick.
	BeamHits() []bool
	// RegisterBeamCollisions ORs hits against one region into the per-tick flags.
	RegisterBeamCollisions(r Region)
}

// LidarCar is a Car with a fixed array of proximity rays cast from its center.
//
// Hit flags follow a collect-then-consume protocol: PositionFrameUpdate clears them,
// RegisterBeamCollisions is called once per tracked region and only ever sets flags,
// and drivers read them on the following tick.
type LidarCar struct {
	*Car
	beams     []Beam
	endpoints []r2.Point
	hits      []bool
}

// NewLidarCar creates a stationary sensing car at the start pose.
func NewLidarCar(start Pose, config CarConfig, beams []Beam) *LidarCar {
	l := &LidarCar{
		Car:       NewCar(start, config),
		beams:     append([]Beam(nil), beams...),
		endpoints: make([]r2.Point, len(beams)),
		hits:      make([]bool, len(beams)),
	}
	l.castBeams()
	return l
}

// BeamsFromConfig expands clustered angles and per-cluster lengths into a beam list,
// ordered cluster by cluster and near to far within a cluster.
func BeamsFromConfig(cfg LidarConfig) []Beam {
	beams := make([]Beam, 0, len(cfg.ClusterAngles)*len(cfg.BeamLengths))
	for _, angle := range cfg.ClusterAngles {
		for _, length := range cfg.BeamLengths {
			beams = append(beams, Beam{Angle: angle, Length: length})
		}
	}
	return beams
}

// PositionFrameUpdate moves the car, re-casts every beam from the new pose and
// clears all hit flags for the new tick.
func (l *LidarCar) PositionFrameUpdate() {
	l.Car.PositionFrameUpdate()
	l.castBeams()
	clear(l.hits)
}

// ForcePosition teleports the car, re-casts the beams at the new pose and clears
// every hit flag registered at the old one.
func (l *LidarCar) ForcePosition(pose Pose, speed float64) {
	l.Car.ForcePosition(pose, speed)
	l.castBeams()
	clear(l.hits)
}

func (l *LidarCar) castBeams() {
	origin := l.Position()
	for i, b := range l.beams {
		l.endpoints[i] = origin.Add(headingVector(l.Heading() + b.Angle).Mul(b.Length))
	}
}

// BeamSegment returns ray i as a segment from the car center.
func (l *LidarCar) BeamSegment(i int) Segment {
	return Segment{A: l.Position(), B: l.endpoints[i]}
}

// RegisterBeamCollisions marks every ray that touches the region. Flags are never
// cleared here.
func (l *LidarCar) RegisterBeamCollisions(r Region) {
	for i := range l.beams {
		if !l.hits[i] && SegmentIntersectsRect(l.BeamSegment(i), r) {
			l.hits[i] = true
		}
	}
}

// Beams returns a copy of the beam layout.
func (l *LidarCar) Beams() []Beam {
	return append([]Beam(nil), l.beams...)
}

// BeamEndpoints returns a copy of the world-space ray ends cast at the last update.
func (l *LidarCar) BeamEndpoints() []r2.Point {
	return append([]r2.Point(nil), l.endpoints...)
}

// BeamHits returns a copy of the hit flags collected since the last update.
func (l *LidarCar) BeamHits() []bool {
	return append([]bool(nil), l.hits...)
}
