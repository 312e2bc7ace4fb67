package optim

import (
	"math"

	"github.com/weft-ml/weft/internal/engine"
	"github.com/weft-ml/weft/internal/tensor"
)

// AMSGrad implements the AMSGrad variant of Adam.
//
// It maintains the same m and v moments, additionally keeps
// v_max ← max(v_max, v) elementwise, and applies
//
//	θ ← θ − lr · m / (√v_max + ε)
//
// without bias correction. The non-decreasing v_max makes the effective step
// size monotonically non-increasing per coordinate.
//
// Reference: "On the Convergence of Adam and Beyond" (Reddi et al., 2018)
type AMSGrad struct {
	learningRate float32
	beta1        float32
	beta2        float32
	epsilon      float32

	step int
	m    []float32
	v    []float32
	vMax []float32

	source engine.InputSource
}

// NewAMSGrad creates an AMSGrad optimizer with the default hyper-parameters,
// bound to the graph's main input source for the batch-size divisor.
func NewAMSGrad(source engine.InputSource) (*AMSGrad, error) {
	return NewAMSGradParams(DefaultLearningRate, DefaultBeta1, DefaultBeta2, DefaultEpsilon, source)
}

// NewAMSGradParams creates an AMSGrad optimizer with explicit hyper-parameters.
func NewAMSGradParams(learningRate, beta1, beta2, epsilon float32, source engine.InputSource) (*AMSGrad, error) {
	if source == nil {
		return nil, &engine.ConfigurationError{Reason: "amsgrad requires an input source for the batch-size divisor"}
	}

	return &AMSGrad{
		learningRate: learningRate,
		beta1:        beta1,
		beta2:        beta2,
		epsilon:      epsilon,
		source:       source,
	}, nil
}

// Optimize applies one AMSGrad update to the variable storage in place.
func (a *AMSGrad) Optimize(_ *engine.ExecutionContext, data []float32, _ tensor.Shape, gradient engine.TensorPointer) {
	if a.m == nil {
		a.m = make([]float32, len(data))
		a.v = make([]float32, len(data))
		a.vMax = make([]float32, len(data))
	}

	a.step++

	buffer := gradient.Buffer()
	offset := gradient.Offset()
	divisor := batchDivisor(a.source)

	for i := range data {
		g := buffer[offset+i] / divisor

		a.m[i] = a.beta1*a.m[i] + (1-a.beta1)*g
		a.v[i] = a.beta2*a.v[i] + (1-a.beta2)*g*g

		if a.v[i] > a.vMax[i] {
			a.vMax[i] = a.v[i]
		}

		data[i] -= a.learningRate * a.m[i] / (float32(math.Sqrt(float64(a.vMax[i]))) + a.epsilon)
	}
}

// StepCount returns the number of updates applied so far.
func (a *AMSGrad) StepCount() int {
	return a.step
}

// MaxSecondMoment exposes the running v_max estimate.
func (a *AMSGrad) MaxSecondMoment() []float32 {
	return a.vMax
}
