package nn

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRand() *rand.Rand {
	return rand.New(rand.NewPCG(1, 2))
}

func TestForwardOutputsStrictlyBounded(t *testing.T) {
	rng := testRand()
	l, err := NewRandomLayer(4, 3, -50, 50, rng)
	require.NoError(t, err)

	inputs := [][]float64{
		{0, 0, 0, 0},
		{1, -1, 1, -1},
		{1e6, 1e6, 1e6, 1e6},
		{-1e6, -1e6, -1e6, -1e6},
		{math.MaxFloat64 / 1e10, 0, 0, 0},
	}
	for _, in := range inputs {
		out, err := l.Forward(in)
		require.NoError(t, err)
		require.Len(t, out, 3)
		for _, v := range out {
			assert.Greater(t, v, -1.0)
			assert.Less(t, v, 1.0)
		}
	}
}

func TestForwardComputesWeightedSum(t *testing.T) {
	l, err := NewLayer(2, 1)
	require.NoError(t, err)
	l.Weights.Set(0, 0, 0.5)
	l.Weights.Set(0, 1, -1)
	l.Biases.SetVec(0, 0.25)

	out, err := l.Forward([]float64{2, 1})
	require.NoError(t, err)
	assert.InDelta(t, BoundedSigmoid(0.25), out[0], 1e-12)
}

func TestForwardDimensionMismatch(t *testing.T) {
	l, err := NewLayer(4, 2)
	require.NoError(t, err)

	_, err = l.Forward([]float64{1, 2, 3})
	assert.ErrorIs(t, err, ErrDimension)
}

func TestNewLayerRejectsEmptyShape(t *testing.T) {
	_, err := NewLayer(0, 2)
	assert.Error(t, err)
}

func TestRandomizeWithinRange(t *testing.T) {
	l, err := NewRandomLayer(5, 4, -0.3, 0.7, testRand())
	require.NoError(t, err)

	for o := 0; o < 4; o++ {
		for i := 0; i < 5; i++ {
			w := l.Weights.At(o, i)
			assert.GreaterOrEqual(t, w, -0.3)
			assert.LessOrEqual(t, w, 0.7)
		}
		b := l.Biases.AtVec(o)
		assert.GreaterOrEqual(t, b, -0.3)
		assert.LessOrEqual(t, b, 0.7)
	}
}

func TestRowsAreIndependent(t *testing.T) {
	l, err := NewLayer(3, 3)
	require.NoError(t, err)

	l.Weights.Set(0, 1, 42)
	assert.Equal(t, 0.0, l.Weights.At(1, 1))
	assert.Equal(t, 0.0, l.Weights.At(2, 1))
}

func TestMixWeightingExtremes(t *testing.T) {
	rng := testRand()
	a, err := NewRandomLayer(4, 3, -1, 1, rng)
	require.NoError(t, err)
	b, err := NewRandomLayer(4, 3, -1, 1, rng)
	require.NoError(t, err)

	fromA, err := Mix(a, b, 1.0, rng)
	require.NoError(t, err)
	assert.Equal(t, a.Weights.RawMatrix().Data, fromA.Weights.RawMatrix().Data)
	assert.Equal(t, a.Biases.RawVector().Data, fromA.Biases.RawVector().Data)

	fromB, err := Mix(a, b, 0.0, rng)
	require.NoError(t, err)
	assert.Equal(t, b.Weights.RawMatrix().Data, fromB.Weights.RawMatrix().Data)
	assert.Equal(t, b.Biases.RawVector().Data, fromB.Biases.RawVector().Data)
}

func TestMixTakesEachParameterFromAParent(t *testing.T) {
	rng := testRand()
	a, err := NewRandomLayer(6, 5, -1, 1, rng)
	require.NoError(t, err)
	b, err := NewRandomLayer(6, 5, -1, 1, rng)
	require.NoError(t, err)

	child, err := Mix(a, b, 0.5, rng)
	require.NoError(t, err)

	fromA, fromB := 0, 0
	for o := 0; o < 5; o++ {
		for i := 0; i < 6; i++ {
			w := child.Weights.At(o, i)
			switch w {
			case a.Weights.At(o, i):
				fromA++
			case b.Weights.At(o, i):
				fromB++
			default:
				t.Fatalf("weight (%d,%d) = %g is not inherited", o, i, w)
			}
		}
	}
	assert.Positive(t, fromA)
	assert.Positive(t, fromB)

	// the child owns its parameters
	child.Weights.Set(0, 0, 99)
	assert.NotEqual(t, 99.0, a.Weights.At(0, 0))
	assert.NotEqual(t, 99.0, b.Weights.At(0, 0))
}

func TestMixShapeMismatch(t *testing.T) {
	rng := testRand()
	a, err := NewRandomLayer(4, 3, -1, 1, rng)
	require.NoError(t, err)
	b, err := NewRandomLayer(4, 2, -1, 1, rng)
	require.NoError(t, err)

	child, err := Mix(a, b, 0.5, rng)
	assert.ErrorIs(t, err, ErrDimension)
	assert.Nil(t, child)
}

func TestMutateChangesExactlyOneWeight(t *testing.T) {
	rng := testRand()
	l, err := NewRandomLayer(4, 3, -1, 1, rng)
	require.NoError(t, err)
	before := l.Clone()

	l.Mutate(1, 2, rng)

	changed := 0
	for o := 0; o < 3; o++ {
		for i := 0; i < 4; i++ {
			if l.Weights.At(o, i) != before.Weights.At(o, i) {
				changed++
				delta := l.Weights.At(o, i) - before.Weights.At(o, i)
				assert.InDelta(t, 1.5, delta, 0.5+1e-12)
			}
		}
		assert.Equal(t, before.Biases.AtVec(o), l.Biases.AtVec(o))
	}
	assert.Equal(t, 1, changed)
}
