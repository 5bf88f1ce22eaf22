package nn

import (
	"fmt"
	"math"
)

// ActivationType defines the type for activation functions.
type ActivationType func(x float64) float64

// activationBound keeps bounded outputs strictly inside (-1, 1) even where the
// float64 sigmoid would round to ±1.
const activationBound = 1 - 1e-9

// ActivationFunctions maps function names to the actual activation functions.
// This allows configuration to specify activations by name.
var ActivationFunctions = map[string]ActivationType{
	"bounded_sigmoid": BoundedSigmoid,
	"tanh":            Tanh,
	"clamped":         Clamped,
}

// GetActivation retrieves an activation function by name.
func GetActivation(name string) (ActivationType, error) {
	if fn, ok := ActivationFunctions[name]; ok {
		return fn, nil
	}
	return nil, fmt.Errorf("unknown activation function: %s", name)
}

// BoundedSigmoid is the logistic sigmoid rescaled to (-1, 1): 2/(1+e^-x) - 1.
// Outputs use the same range as driver commands.
func BoundedSigmoid(x float64) float64 {
	v := 2/(1+math.Exp(-x)) - 1
	return clamp(v, -activationBound, activationBound)
}

// Tanh activation function.
func Tanh(x float64) float64 {
	return math.Tanh(x)
}

// Clamped activation function (clamps output between -1 and 1).
func Clamped(x float64) float64 {
	return clamp(x, -1.0, 1.0)
}

func clamp(value, minVal, maxVal float64) float64 {
	return math.Max(minVal, math.Min(value, maxVal))
}
