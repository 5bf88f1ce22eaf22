package racer

import (
	"fmt"
	"math/rand/v2"

	"github.com/baldhumanity/lidar-racer/racer/nn"
)

// SensorFeatures reduces every beam cluster to one scalar: the cluster value of the
// nearest beam that registered a hit, or 0 when no beam in the cluster did. Beams are
// expected cluster by cluster, near to far, as BeamsFromConfig lays them out.
func SensorFeatures(s SensorArray, clusterValues []float64) ([]float64, error) {
	hits := s.BeamHits()
	if len(clusterValues) != BeamsPerCluster {
		return nil, fmt.Errorf("%w: %d cluster values for %d beams per cluster", nn.ErrDimension, len(clusterValues), BeamsPerCluster)
	}
	if len(hits) == 0 || len(hits)%BeamsPerCluster != 0 {
		return nil, fmt.Errorf("%w: %d beams do not form clusters of %d", nn.ErrDimension, len(hits), BeamsPerCluster)
	}

	features := make([]float64, len(hits)/BeamsPerCluster)
	for c := range features {
		for b := 0; b < BeamsPerCluster; b++ {
			if hits[c*BeamsPerCluster+b] {
				features[c] = clusterValues[b]
				break
			}
		}
	}
	return features, nil
}

type mutationRange struct {
	min, max float64
}

// neuralDriver is the shared core of the network-backed drivers. Inputs are one
// feature per beam cluster followed by speed / max speed; outputs are the command.
type neuralDriver struct {
	vehicle       Vehicle
	rng           *rand.Rand
	network       *nn.FeedForwardNetwork
	clusterValues []float64
	mutation      []mutationRange // one per layer
}

func newNeuralDriver(v Vehicle, lidar LidarConfig, netCfg NetworkConfig, specs []nn.LayerSpec, mutation []mutationRange, rng *rand.Rand) (*neuralDriver, error) {
	activation, err := nn.GetActivation(netCfg.Activation)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfiguration, err)
	}
	network, err := nn.NewFeedForwardNetwork(len(lidar.ClusterAngles)+1, specs, activation, rng)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfiguration, err)
	}
	return &neuralDriver{
		vehicle:       v,
		rng:           rng,
		network:       network,
		clusterValues: append([]float64(nil), lidar.ClusterValues...),
		mutation:      mutation,
	}, nil
}

// command runs the network on the current sensor state. Vehicles without a sensor
// array, or with a beam layout the network was not built for, get the neutral command.
func (d *neuralDriver) command() Command {
	sensors, ok := d.vehicle.(SensorArray)
	if !ok {
		return Neutral
	}
	features, err := SensorFeatures(sensors, d.clusterValues)
	if err != nil || len(features)+1 != d.network.NumInputs() {
		return Neutral
	}

	speed := 0.0
	if maxSpeed := d.vehicle.MaxSpeed(); maxSpeed > 0 {
		speed = d.vehicle.Speed() / maxSpeed
	}
	out, err := d.network.Activate(append(features, speed))
	if err != nil || len(out) < 2 {
		return Neutral
	}
	return Command{Forward: out[0], TurnLeft: out[1]}
}

// mate builds the child core: equal-weight crossover of every layer, then one
// mutation per layer using that layer's range.
func (d *neuralDriver) mate(other *neuralDriver, v Vehicle) (*neuralDriver, error) {
	network, err := d.network.Crossover(other.network, 0.5, d.rng)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfiguration, err)
	}
	for i, l := range network.Layers {
		r := d.mutation[i]
		l.Mutate(r.min, r.max, d.rng)
	}
	return &neuralDriver{
		vehicle:       v,
		rng:           d.rng,
		network:       network,
		clusterValues: d.clusterValues,
		mutation:      d.mutation,
	}, nil
}

// NoHiddenDriver maps sensor features straight to the command with a single layer.
type NoHiddenDriver struct {
	neuralDriver
}

// NewNoHiddenDriver creates a single-layer driver with random parameters.
func NewNoHiddenDriver(v Vehicle, lidar LidarConfig, netCfg NetworkConfig, rng *rand.Rand) (*NoHiddenDriver, error) {
	core, err := newNeuralDriver(v, lidar, netCfg,
		[]nn.LayerSpec{{Outputs: 2, InitMin: netCfg.NoHiddenInitMin, InitMax: netCfg.NoHiddenInitMax}},
		[]mutationRange{{netCfg.NoHiddenMutateMin, netCfg.NoHiddenMutateMax}},
		rng)
	if err != nil {
		return nil, err
	}
	return &NoHiddenDriver{neuralDriver: *core}, nil
}

// DriveCommand runs the network on the current sensor state.
func (d *NoHiddenDriver) DriveCommand() Command { return d.command() }

// Vehicle returns the bound vehicle.
func (d *NoHiddenDriver) Vehicle() Vehicle { return d.vehicle }

// Network exposes the driver's parameters.
func (d *NoHiddenDriver) Network() *nn.FeedForwardNetwork { return d.network }

// Mate returns a child of d and other bound to v. other must also be a NoHiddenDriver.
func (d *NoHiddenDriver) Mate(other Driver, v Vehicle) (Driver, error) {
	o, ok := other.(*NoHiddenDriver)
	if !ok {
		return nil, fmt.Errorf("%w: cannot mate %T with %T", ErrConfiguration, d, other)
	}
	core, err := d.mate(&o.neuralDriver, v)
	if err != nil {
		return nil, err
	}
	return &NoHiddenDriver{neuralDriver: *core}, nil
}

// OneHiddenDriver feeds sensor features through a hidden layer before the output layer.
type OneHiddenDriver struct {
	neuralDriver
}

// NewOneHiddenDriver creates a two-layer driver with random parameters.
func NewOneHiddenDriver(v Vehicle, lidar LidarConfig, netCfg NetworkConfig, rng *rand.Rand) (*OneHiddenDriver, error) {
	core, err := newNeuralDriver(v, lidar, netCfg,
		[]nn.LayerSpec{
			{Outputs: netCfg.HiddenUnits, InitMin: netCfg.HiddenInitMin, InitMax: netCfg.HiddenInitMax},
			{Outputs: 2, InitMin: netCfg.OutputInitMin, InitMax: netCfg.OutputInitMax},
		},
		[]mutationRange{
			{netCfg.HiddenMutateMin, netCfg.HiddenMutateMax},
			{netCfg.OutputMutateMin, netCfg.OutputMutateMax},
		},
		rng)
	if err != nil {
		return nil, err
	}
	return &OneHiddenDriver{neuralDriver: *core}, nil
}

// DriveCommand runs the network on the current sensor state.
func (d *OneHiddenDriver) DriveCommand() Command { return d.command() }

// Vehicle returns the bound vehicle.
func (d *OneHiddenDriver) Vehicle() Vehicle { return d.vehicle }

// Network exposes the driver's parameters.
func (d *OneHiddenDriver) Network() *nn.FeedForwardNetwork { return d.network }

// Mate returns a child of d and other bound to v. other must also be a OneHiddenDriver.
func (d *OneHiddenDriver) Mate(other Driver, v Vehicle) (Driver, error) {
	o, ok := other.(*OneHiddenDriver)
	if !ok {
		return nil, fmt.Errorf("%w: cannot mate %T with %T", ErrConfiguration, d, other)
	}
	core, err := d.mate(&o.neuralDriver, v)
	if err != nil {
		return nil, err
	}
	return &OneHiddenDriver{neuralDriver: *core}, nil
}
