package optim

import (
	"github.com/weft-ml/weft/internal/engine"
	"github.com/weft-ml/weft/internal/tensor"
)

// SimpleGradientDescent is plain stochastic gradient descent:
//
//	θ ← θ − lr · g
//
// where g is the delivered gradient divided by the batch size.
type SimpleGradientDescent struct {
	learningRate float32
	source       engine.InputSource
}

// NewSimpleGradientDescent creates an SGD optimizer bound to the graph's main
// input source, which provides the batch-size divisor.
func NewSimpleGradientDescent(learningRate float32, source engine.InputSource) (*SimpleGradientDescent, error) {
	if source == nil {
		return nil, &engine.ConfigurationError{Reason: "gradient descent requires an input source for the batch-size divisor"}
	}

	return &SimpleGradientDescent{
		learningRate: learningRate,
		source:       source,
	}, nil
}

// Optimize applies one descent update to the variable storage in place.
func (o *SimpleGradientDescent) Optimize(_ *engine.ExecutionContext, data []float32, _ tensor.Shape, gradient engine.TensorPointer) {
	buffer := gradient.Buffer()
	offset := gradient.Offset()
	divisor := batchDivisor(o.source)

	for i := range data {
		data[i] -= o.learningRate * buffer[offset+i] / divisor
	}
}

// LearningRate returns the configured learning rate.
func (o *SimpleGradientDescent) LearningRate() float32 {
	return o.learningRate
}
