package nn

import (
	"errors"
	"fmt"
	"math/rand/v2"

	"gonum.org/v1/gonum/mat"
)

// ErrDimension is returned when an input vector or a pair of parent layers does not
// match the expected shape.
var ErrDimension = errors.New("dimension mismatch")

// Layer is a single fully connected layer: out = activation(W·in + b).
// Weights is OutputDim x InputDim; every row is stored independently.
type Layer struct {
	InputDim   int
	OutputDim  int
	Weights    *mat.Dense
	Biases     *mat.VecDense
	Activation ActivationType
}

// NewLayer creates a zeroed layer using the bounded sigmoid activation.
func NewLayer(inputDim, outputDim int) (*Layer, error) {
	if inputDim <= 0 || outputDim <= 0 {
		return nil, fmt.Errorf("layer dimensions must be positive, got %dx%d", outputDim, inputDim)
	}
	return &Layer{
		InputDim:   inputDim,
		OutputDim:  outputDim,
		Weights:    mat.NewDense(outputDim, inputDim, nil),
		Biases:     mat.NewVecDense(outputDim, nil),
		Activation: BoundedSigmoid,
	}, nil
}

// NewRandomLayer creates a layer with every parameter drawn uniformly from [min, max].
func NewRandomLayer(inputDim, outputDim int, min, max float64, rng *rand.Rand) (*Layer, error) {
	l, err := NewLayer(inputDim, outputDim)
	if err != nil {
		return nil, err
	}
	l.Randomize(min, max, rng)
	return l, nil
}

// Randomize draws every weight and bias independently and uniformly from [min, max].
func (l *Layer) Randomize(min, max float64, rng *rand.Rand) {
	for o := 0; o < l.OutputDim; o++ {
		for i := 0; i < l.InputDim; i++ {
			l.Weights.Set(o, i, uniform(min, max, rng))
		}
		l.Biases.SetVec(o, uniform(min, max, rng))
	}
}

// Forward computes the activation of each output unit for the given input.
func (l *Layer) Forward(input []float64) ([]float64, error) {
	if len(input) != l.InputDim {
		return nil, fmt.Errorf("%w: layer expects %d inputs, got %d", ErrDimension, l.InputDim, len(input))
	}

	z := mat.NewVecDense(l.OutputDim, nil)
	z.MulVec(l.Weights, mat.NewVecDense(l.InputDim, append([]float64(nil), input...)))
	z.AddVec(z, l.Biases)

	output := make([]float64, l.OutputDim)
	for o := range output {
		output[o] = l.Activation(z.AtVec(o))
	}
	return output, nil
}

// SameShape reports whether two layers have identical input and output dimensions.
func (l *Layer) SameShape(other *Layer) bool {
	return l.InputDim == other.InputDim && l.OutputDim == other.OutputDim
}

// Clone returns a deep copy of the layer.
func (l *Layer) Clone() *Layer {
	c := &Layer{
		InputDim:   l.InputDim,
		OutputDim:  l.OutputDim,
		Weights:    mat.DenseCopyOf(l.Weights),
		Biases:     mat.VecDenseCopyOf(l.Biases),
		Activation: l.Activation,
	}
	return c
}

// Mix creates a child layer by uniform crossover: each weight and each bias is taken
// from parent1 with probability weighting1, otherwise from parent2. Values are copied,
// never averaged. The child uses parent1's activation.
func Mix(parent1, parent2 *Layer, weighting1 float64, rng *rand.Rand) (*Layer, error) {
	if !parent1.SameShape(parent2) {
		return nil, fmt.Errorf("%w: cannot mix %dx%d layer with %dx%d layer", ErrDimension,
			parent1.OutputDim, parent1.InputDim, parent2.OutputDim, parent2.InputDim)
	}

	child := parent1.Clone()
	for o := 0; o < child.OutputDim; o++ {
		for i := 0; i < child.InputDim; i++ {
			if rng.Float64() >= weighting1 {
				child.Weights.Set(o, i, parent2.Weights.At(o, i))
			}
		}
		if rng.Float64() >= weighting1 {
			child.Biases.SetVec(o, parent2.Biases.AtVec(o))
		}
	}
	return child, nil
}

// Mutate perturbs exactly one randomly chosen weight by a uniform delta in [min, max].
// Biases are never mutated.
func (l *Layer) Mutate(min, max float64, rng *rand.Rand) {
	o := rng.IntN(l.OutputDim)
	i := rng.IntN(l.InputDim)
	l.Weights.Set(o, i, l.Weights.At(o, i)+uniform(min, max, rng))
}

func uniform(min, max float64, rng *rand.Rand) float64 {
	return min + rng.Float64()*(max-min)
}
