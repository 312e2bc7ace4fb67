package optim

import (
	"math"

	"github.com/weft-ml/weft/internal/engine"
	"github.com/weft-ml/weft/internal/tensor"
)

// Adam implements the Adam (Adaptive Moment Estimation) optimizer.
//
// Update rule on step t with hyper-parameters (β₁, β₂, ε):
//
//	m ← β₁m + (1−β₁)g
//	v ← β₂v + (1−β₂)g²
//	m̂ = m / (1−β₁ᵗ)
//	v̂ = v / (1−β₂ᵗ)
//	θ ← θ − lr · m̂ / (√v̂ + ε)
//
// The step counter is tied to this instance, i.e. to the variable it trains,
// so variables can be trained with distinct learning rates and counters.
//
// Reference: "Adam: A Method for Stochastic Optimization" (Kingma & Ba, 2014)
type Adam struct {
	learningRate float32
	beta1        float32
	beta2        float32
	epsilon      float32

	step int
	m    []float32 // First moment estimates
	v    []float32 // Second moment estimates

	source engine.InputSource
}

// NewAdam creates an Adam optimizer with the default hyper-parameters, bound
// to the graph's main input source for the batch-size divisor.
func NewAdam(source engine.InputSource) (*Adam, error) {
	return NewAdamParams(DefaultLearningRate, DefaultBeta1, DefaultBeta2, DefaultEpsilon, source)
}

// NewAdamParams creates an Adam optimizer with explicit hyper-parameters.
func NewAdamParams(learningRate, beta1, beta2, epsilon float32, source engine.InputSource) (*Adam, error) {
	if source == nil {
		return nil, &engine.ConfigurationError{Reason: "adam requires an input source for the batch-size divisor"}
	}

	return &Adam{
		learningRate: learningRate,
		beta1:        beta1,
		beta2:        beta2,
		epsilon:      epsilon,
		source:       source,
	}, nil
}

// Optimize applies one Adam update to the variable storage in place.
func (a *Adam) Optimize(_ *engine.ExecutionContext, data []float32, _ tensor.Shape, gradient engine.TensorPointer) {
	if a.m == nil {
		a.m = make([]float32, len(data))
		a.v = make([]float32, len(data))
	}

	a.step++
	biasCorrection1 := float32(1 - math.Pow(float64(a.beta1), float64(a.step)))
	biasCorrection2 := float32(1 - math.Pow(float64(a.beta2), float64(a.step)))

	buffer := gradient.Buffer()
	offset := gradient.Offset()
	divisor := batchDivisor(a.source)

	for i := range data {
		g := buffer[offset+i] / divisor

		a.m[i] = a.beta1*a.m[i] + (1-a.beta1)*g
		a.v[i] = a.beta2*a.v[i] + (1-a.beta2)*g*g

		mHat := a.m[i] / biasCorrection1
		vHat := a.v[i] / biasCorrection2

		data[i] -= a.learningRate * mHat / (float32(math.Sqrt(float64(vHat))) + a.epsilon)
	}
}

// StepCount returns the number of updates applied so far.
func (a *Adam) StepCount() int {
	return a.step
}
