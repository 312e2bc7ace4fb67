package nn

import (
	"github.com/weft-ml/weft/internal/engine"
)

// Dense is one fully connected layer of a Network: a weight matrix of shape
// (inputs, outputs) and a (1, outputs) bias row, both registered as trainable
// variables on the network's execution context.
type Dense struct {
	weights *engine.Variable
	bias    *engine.Variable
	inputs  int
	outputs int
}

// Weights returns the layer's weight variable.
func (d *Dense) Weights() *engine.Variable {
	return d.weights
}

// Bias returns the layer's bias variable.
func (d *Dense) Bias() *engine.Variable {
	return d.bias
}

// Inputs returns the layer's input width.
func (d *Dense) Inputs() int {
	return d.inputs
}

// Outputs returns the layer's output width.
func (d *Dense) Outputs() int {
	return d.outputs
}
