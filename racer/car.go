package racer

import (
	"math"

	"github.com/golang/geo/r2"
)

// commandThreshold is the magnitude a command axis must exceed to take effect.
const commandThreshold = 0.5

// Vehicle is the kinematic contract the engine and drivers rely on.
type Vehicle interface {
	// ApplyCommand accelerates and steers according to a driver command.
	ApplyCommand(cmd Command)
	// SimulateFriction decays speed toward zero by one tick of friction.
	SimulateFriction()
	// PositionFrameUpdate integrates position and refreshes derived geometry.
	PositionFrameUpdate()
	// ForcePosition teleports the vehicle and refreshes derived geometry.
	ForcePosition(pose Pose, speed float64)
	// CollideRect reports whether any body edge touches the region.
	CollideRect(r Region) bool

	Position() r2.Point
	Heading() float64
	Speed() float64
	MaxSpeed() float64
	Corners() [4]r2.Point
}

// Car is a simple wheeled vehicle with scalar speed and a heading in degrees.
// Heading 0 moves along +y.
type Car struct {
	config  CarConfig
	pos     r2.Point
	angle   float64
	speed   float64
	corners [4]r2.Point // front-left, front-right, back-right, back-left
}

// NewCar creates a stationary car at the start pose.
func NewCar(start Pose, config CarConfig) *Car {
	c := &Car{config: config}
	c.ForcePosition(start, 0)
	return c
}

// Config returns the physical parameters of the car.
func (c *Car) Config() CarConfig { return c.config }

// Position returns the center of the car.
func (c *Car) Position() r2.Point { return c.pos }

// Heading returns the heading in degrees.
func (c *Car) Heading() float64 { return c.angle }

// Speed returns the signed scalar speed.
func (c *Car) Speed() float64 { return c.speed }

// MaxSpeed returns the configured speed limit.
func (c *Car) MaxSpeed() float64 { return c.config.MaxSpeed }

// Corners returns the body corners as of the last update.
func (c *Car) Corners() [4]r2.Point { return c.corners }

// Pose returns the current position and heading.
func (c *Car) Pose() Pose {
	return Pose{X: c.pos.X, Y: c.pos.Y, Angle: c.angle}
}

// ApplyCommand maps a generic command onto the car. Values beyond ±0.5 on the
// forward axis accelerate or reverse; beyond ±0.5 on the turn axis steer left or right.
// Anything else, including NaN, leaves that axis untouched.
func (c *Car) ApplyCommand(cmd Command) {
	switch {
	case cmd.Forward > commandThreshold:
		c.accelerate(c.config.Acceleration)
	case cmd.Forward < -commandThreshold:
		c.accelerate(-c.config.Acceleration)
	}

	switch {
	case cmd.TurnLeft > commandThreshold:
		c.turn(1)
	case cmd.TurnLeft < -commandThreshold:
		c.turn(-1)
	}
}

func (c *Car) accelerate(delta float64) {
	c.speed = clamp(c.speed+delta, -c.config.MaxSpeed, c.config.MaxSpeed)
}

// turn rotates by a delta that grows with log speed and flips sign when reversing.
func (c *Car) turn(direction float64) {
	delta := c.config.RotationCoefficient * math.Log(math.Abs(c.speed)+1) * sign(c.speed)
	c.angle += direction * delta
	if c.angle > 360 {
		c.angle -= 360
	} else if c.angle < -360 {
		c.angle += 360
	}
}

// SimulateFriction decays |speed| by the friction amount and snaps to exactly zero
// once less than one step remains, so speed never changes sign.
func (c *Car) SimulateFriction() {
	f := c.config.FrictionDeceleration
	switch {
	case math.Abs(c.speed) < f:
		c.speed = 0
	case c.speed > 0:
		c.speed -= f
	case c.speed < 0:
		c.speed += f
	}
}

// PositionFrameUpdate moves the car one tick along its heading and recomputes corners.
func (c *Car) PositionFrameUpdate() {
	c.pos = c.pos.Add(headingVector(c.angle).Mul(c.speed))
	c.updateCorners()
}

// ForcePosition teleports the car. Corners are recomputed immediately.
func (c *Car) ForcePosition(pose Pose, speed float64) {
	c.pos = pose.Point()
	c.angle = pose.Angle
	c.speed = speed
	c.updateCorners()
}

func (c *Car) updateCorners() {
	h := headingVector(c.angle)
	fwd := h.Mul(c.config.Length / 2)
	left := r2.Point{X: h.Y, Y: -h.X}.Mul(c.config.Width / 2)

	c.corners = [4]r2.Point{
		c.pos.Add(fwd).Add(left),
		c.pos.Add(fwd).Sub(left),
		c.pos.Sub(fwd).Sub(left),
		c.pos.Sub(fwd).Add(left),
	}
}

// Edges returns the front, right, back and left edges of the body.
func (c *Car) Edges() [4]Segment {
	k := c.corners
	return [4]Segment{
		{A: k[0], B: k[1]},
		{A: k[1], B: k[2]},
		{A: k[2], B: k[3]},
		{A: k[3], B: k[0]},
	}
}

// CollideRect reports whether any of the four oriented edges crosses or lies in the
// region. A car whose center is outside the region still collides if an edge reaches it.
func (c *Car) CollideRect(r Region) bool {
	for _, e := range c.Edges() {
		if SegmentIntersectsRect(e, r) {
			return true
		}
	}
	return false
}
