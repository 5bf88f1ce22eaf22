package nn

import (
	"fmt"
	"math/rand/v2"
)

// FeedForwardNetwork is a chain of dense layers. The output of each layer is fed
// directly into the next one with no rescaling in between.
type FeedForwardNetwork struct {
	Layers []*Layer
}

// LayerSpec describes one layer of a network to be built at random.
type LayerSpec struct {
	Outputs int
	InitMin float64
	InitMax float64
}

// NewFeedForwardNetwork builds a randomly initialized network with the given input
// count and one layer per spec.
func NewFeedForwardNetwork(inputs int, specs []LayerSpec, activation ActivationType, rng *rand.Rand) (*FeedForwardNetwork, error) {
	if len(specs) == 0 {
		return nil, fmt.Errorf("network needs at least one layer")
	}

	net := &FeedForwardNetwork{Layers: make([]*Layer, 0, len(specs))}
	in := inputs
	for i, spec := range specs {
		l, err := NewRandomLayer(in, spec.Outputs, spec.InitMin, spec.InitMax, rng)
		if err != nil {
			return nil, fmt.Errorf("failed to create layer %d: %w", i, err)
		}
		if activation != nil {
			l.Activation = activation
		}
		net.Layers = append(net.Layers, l)
		in = spec.Outputs
	}
	return net, nil
}

// NumInputs returns the input width of the first layer.
func (net *FeedForwardNetwork) NumInputs() int {
	return net.Layers[0].InputDim
}

// NumOutputs returns the output width of the last layer.
func (net *FeedForwardNetwork) NumOutputs() int {
	return net.Layers[len(net.Layers)-1].OutputDim
}

// Activate computes the network's output for a given slice of input values.
// The input slice must match the number of network inputs.
func (net *FeedForwardNetwork) Activate(inputs []float64) ([]float64, error) {
	if len(inputs) != net.NumInputs() {
		return nil, fmt.Errorf("%w: input count (%d) does not match network inputs (%d)", ErrDimension, len(inputs), net.NumInputs())
	}

	values := inputs
	for i, l := range net.Layers {
		out, err := l.Forward(values)
		if err != nil {
			return nil, fmt.Errorf("layer %d: %w", i, err)
		}
		values = out
	}
	return values, nil
}

// Crossover mixes two networks layer by layer with the given weighting toward net.
func (net *FeedForwardNetwork) Crossover(other *FeedForwardNetwork, weighting float64, rng *rand.Rand) (*FeedForwardNetwork, error) {
	if len(net.Layers) != len(other.Layers) {
		return nil, fmt.Errorf("%w: networks have %d and %d layers", ErrDimension, len(net.Layers), len(other.Layers))
	}

	child := &FeedForwardNetwork{Layers: make([]*Layer, len(net.Layers))}
	for i := range net.Layers {
		l, err := Mix(net.Layers[i], other.Layers[i], weighting, rng)
		if err != nil {
			return nil, fmt.Errorf("layer %d: %w", i, err)
		}
		child.Layers[i] = l
	}
	return child, nil
}
