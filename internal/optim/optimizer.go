// Package optim implements the per-variable gradient optimizers consumed by
// the execution engine.
//
// Each optimizer instance serves exactly one Variable: it owns its internal
// state (moment estimates, step counter) and is fired by the variable when
// the backward pass delivers the accumulated gradient. The incoming gradient
// is divided by the batch size reported by the graph's main input source,
// conforming to the mean-gradient convention of the cost functions.
//
// Provided algorithms:
//   - SimpleGradientDescent: θ ← θ − lr·g
//   - Adam: first/second moment estimates with bias correction
//   - AMSGrad: Adam moments with an elementwise-max second moment and no
//     bias correction
package optim

import (
	"github.com/weft-ml/weft/internal/engine"
)

// Default Adam hyper-parameters.
const (
	DefaultLearningRate = 0.001
	DefaultBeta1        = 0.9
	DefaultBeta2        = 0.999
	DefaultEpsilon      = 1e-8
)

// batchDivisor returns the mean-gradient divisor of the bound input source.
func batchDivisor(source engine.InputSource) float32 {
	return float32(source.SampleCount())
}
