package racer

import (
	"fmt"
	"math/rand/v2"
)

// Command is the universal control signal from a driver to a vehicle. Both axes are
// nominally in [-1, 1]; only magnitudes above 0.5 take effect.
type Command struct {
	Forward  float64
	TurnLeft float64
}

// Neutral is the command that neither accelerates nor steers.
var Neutral = Command{}

// Driver produces one command per tick for the single vehicle it is bound to.
type Driver interface {
	DriveCommand() Command
	Vehicle() Vehicle
}

// Evolvable drivers can be recombined. Mate is a pure function of the receiver and
// other; it returns a fresh child bound to v. Both parents must be the same variant.
type Evolvable interface {
	Driver
	Mate(other Driver, v Vehicle) (Driver, error)
}

// DriverFactory creates a fresh driver bound to a vehicle.
type DriverFactory func(v Vehicle, rng *rand.Rand) (Driver, error)

// NewDriverFactory returns the factory for the configured driver kind.
func NewDriverFactory(cfg *Config) (DriverFactory, error) {
	switch cfg.Population.Driver {
	case DriverNoHidden:
		return func(v Vehicle, rng *rand.Rand) (Driver, error) {
			return NewNoHiddenDriver(v, cfg.Lidar, cfg.Network, rng)
		}, nil
	case DriverOneHidden:
		return func(v Vehicle, rng *rand.Rand) (Driver, error) {
			return NewOneHiddenDriver(v, cfg.Lidar, cfg.Network, rng)
		}, nil
	case DriverMomentum:
		return func(v Vehicle, rng *rand.Rand) (Driver, error) {
			return NewMomentumDriver(v, cfg.Momentum, rng), nil
		}, nil
	case DriverRandom:
		return func(v Vehicle, rng *rand.Rand) (Driver, error) {
			return NewRandomDriver(v, rng), nil
		}, nil
	}
	return nil, fmt.Errorf("%w: invalid driver '%s'", ErrConfiguration, cfg.Population.Driver)
}

// Keys is the state of the four directional inputs a host translates from its devices.
type Keys struct {
	Up, Down, Left, Right bool
}

// ManualDriver maps directional inputs to ±1 on each axis. Opposite keys cancel.
type ManualDriver struct {
	vehicle Vehicle
	keys    Keys
}

// NewManualDriver creates a manual driver with no keys held.
func NewManualDriver(v Vehicle) *ManualDriver {
	return &ManualDriver{vehicle: v}
}

// SetKeys replaces the held-key state used by the next DriveCommand.
func (d *ManualDriver) SetKeys(k Keys) {
	d.keys = k
}

// DriveCommand returns the command for the held keys.
func (d *ManualDriver) DriveCommand() Command {
	var cmd Command
	if d.keys.Up {
		cmd.Forward++
	}
	if d.keys.Down {
		cmd.Forward--
	}
	if d.keys.Left {
		cmd.TurnLeft++
	}
	if d.keys.Right {
		cmd.TurnLeft--
	}
	return cmd
}

// Vehicle returns the bound vehicle.
func (d *ManualDriver) Vehicle() Vehicle { return d.vehicle }

// RandomDriver draws both axes uniformly from [-1, 1] every tick.
type RandomDriver struct {
	vehicle Vehicle
	rng     *rand.Rand
}

// NewRandomDriver creates a random driver drawing from rng.
func NewRandomDriver(v Vehicle, rng *rand.Rand) *RandomDriver {
	return &RandomDriver{vehicle: v, rng: rng}
}

// DriveCommand returns a fresh uniform command.
func (d *RandomDriver) DriveCommand() Command {
	return Command{
		Forward:  uniform(-1, 1, d.rng),
		TurnLeft: uniform(-1, 1, d.rng),
	}
}

// Vehicle returns the bound vehicle.
func (d *RandomDriver) Vehicle() Vehicle { return d.vehicle }

// MomentumDriver leans toward its previous actions and biases forward, producing
// smoothed random motion.
type MomentumDriver struct {
	vehicle Vehicle
	rng     *rand.Rand
	config  MomentumConfig

	forwardMomentum float64
	leftMomentum    float64
}

// NewMomentumDriver creates a momentum driver with zeroed accumulators.
func NewMomentumDriver(v Vehicle, config MomentumConfig, rng *rand.Rand) *MomentumDriver {
	return &MomentumDriver{vehicle: v, rng: rng, config: config}
}

// DriveCommand blends a forward-biased draw with the momentum and updates it.
func (d *MomentumDriver) DriveCommand() Command {
	forward := clamp(uniform(d.config.ForwardBiasMin, 1, d.rng)+d.forwardMomentum, -1, 1)
	turnLeft := clamp(uniform(-1, 1, d.rng)+d.leftMomentum, -1, 1)

	d.forwardMomentum = clamp(d.forwardMomentum+forward*d.config.ForwardCoefficient, -1, 1)
	d.leftMomentum = clamp(d.leftMomentum+turnLeft*d.config.LeftCoefficient, -d.config.LeftLimit, d.config.LeftLimit)

	return Command{Forward: forward, TurnLeft: turnLeft}
}

// Momentum returns the current forward and left accumulators.
func (d *MomentumDriver) Momentum() (forward, left float64) {
	return d.forwardMomentum, d.leftMomentum
}

// Vehicle returns the bound vehicle.
func (d *MomentumDriver) Vehicle() Vehicle { return d.vehicle }

// ConstantDriver issues the same command every tick.
type ConstantDriver struct {
	vehicle Vehicle
	command Command
}

// NewConstantDriver creates a driver that always returns cmd.
func NewConstantDriver(v Vehicle, cmd Command) *ConstantDriver {
	return &ConstantDriver{vehicle: v, command: cmd}
}

// DriveCommand returns the fixed command.
func (d *ConstantDriver) DriveCommand() Command { return d.command }

// Vehicle returns the bound vehicle.
func (d *ConstantDriver) Vehicle() Vehicle { return d.vehicle }

func uniform(min, max float64, rng *rand.Rand) float64 {
	return min + rng.Float64()*(max-min)
}
