package racer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLidarCar(pose Pose) *LidarCar {
	cfg := DefaultConfig()
	return NewLidarCar(pose, cfg.Car, BeamsFromConfig(cfg.Lidar))
}

func TestBeamsFromConfigOrder(t *testing.T) {
	beams := BeamsFromConfig(DefaultConfig().Lidar)

	require.Len(t, beams, 9)
	assert.Equal(t, Beam{Angle: -60, Length: 40}, beams[0])
	assert.Equal(t, Beam{Angle: -60, Length: 120}, beams[2])
	assert.Equal(t, Beam{Angle: 0, Length: 80}, beams[4])
	assert.Equal(t, Beam{Angle: 60, Length: 120}, beams[8])
}

func TestBeamEndpoints(t *testing.T) {
	l := testLidarCar(Pose{X: 100, Y: 100, Angle: 0})
	ends := l.BeamEndpoints()

	assert.InDelta(t, 100, ends[3].X, 1e-9)
	assert.InDelta(t, 140, ends[3].Y, 1e-9)
	assert.InDelta(t, 220, ends[5].Y, 1e-9)
	assert.Less(t, ends[0].X, 100.0)
	assert.Greater(t, ends[6].X, 100.0)
}

func TestBeamHitsAccumulateUntilFrameUpdate(t *testing.T) {
	l := testLidarCar(Pose{X: 100, Y: 100, Angle: 0})
	ahead := Region{Left: 90, Top: 150, Width: 20, Height: 10}

	l.RegisterBeamCollisions(ahead)
	hits := l.BeamHits()
	assert.False(t, hits[3], "near beam falls short")
	assert.True(t, hits[4])
	assert.True(t, hits[5])

	// A region nothing touches must not clear earlier hits.
	l.RegisterBeamCollisions(Region{Left: 1000, Top: 1000, Width: 5, Height: 5})
	assert.Equal(t, hits, l.BeamHits())

	l.PositionFrameUpdate()
	for i, h := range l.BeamHits() {
		assert.False(t, h, "beam %d", i)
	}
}

func TestForcePositionRecastsBeams(t *testing.T) {
	l := testLidarCar(Pose{X: 100, Y: 100, Angle: 0})
	l.ForcePosition(Pose{X: 500, Y: 300, Angle: 90}, 0)

	ends := l.BeamEndpoints()
	assert.InDelta(t, 540, ends[3].X, 1e-9)
	assert.InDelta(t, 300, ends[3].Y, 1e-9)
}

func TestForcePositionClearsHits(t *testing.T) {
	l := testLidarCar(Pose{X: 100, Y: 100, Angle: 0})
	l.RegisterBeamCollisions(Region{Left: 90, Top: 150, Width: 20, Height: 10})
	require.True(t, l.BeamHits()[4])

	l.ForcePosition(Pose{X: 500, Y: 300, Angle: 0}, 0)
	for i, h := range l.BeamHits() {
		assert.False(t, h, "beam %d", i)
	}
}

func TestBeamGettersReturnCopies(t *testing.T) {
	l := testLidarCar(Pose{X: 100, Y: 100})
	hits := l.BeamHits()
	hits[0] = true
	assert.False(t, l.BeamHits()[0])

	beams := l.Beams()
	beams[0].Length = 999
	assert.Equal(t, 40.0, l.Beams()[0].Length)
}

func TestLidarCarIsSensorArray(t *testing.T) {
	var v Vehicle = testLidarCar(Pose{})
	_, ok := v.(SensorArray)
	assert.True(t, ok)

	v = NewCar(Pose{}, DefaultConfig().Car)
	_, ok = v.(SensorArray)
	assert.False(t, ok)
}
