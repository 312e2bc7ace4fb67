package engine

import (
	"fmt"

	"github.com/weft-ml/weft/internal/tensor"
)

// Constant is a leaf holding fixed data. Like Variable it snapshots its data
// into a forward slot each step, but it has no optimizer and never receives
// gradients.
type Constant struct {
	baseOperation

	data  []float32
	shape tensor.Shape
}

// NewConstant creates a constant leaf. The data slice is owned by the
// constant afterwards.
func NewConstant(ctx *ExecutionContext, shape tensor.Shape, data []float32) (*Constant, error) {
	if err := shape.Validate(); err != nil {
		return nil, err
	}
	if len(data) != shape.NumElements() {
		return nil, fmt.Errorf("constant data has %d elements, shape %v requires %d",
			len(data), shape, shape.NumElements())
	}

	return &Constant{
		baseOperation: newBaseOperation(ctx, nil, nil),
		data:          data,
		shape:         shape.Clone(),
	}, nil
}

func (c *Constant) ForwardPass() TensorPointer {
	result := c.ctx.AllocateForwardMemory(c.shape)
	copy(result.Buffer()[result.Offset():result.Offset()+result.Length()], c.data)
	return result
}

func (c *Constant) LeftBackwardDerivative() TensorPointer {
	return NullPointer
}

func (c *Constant) RightBackwardDerivative() TensorPointer {
	return NullPointer
}

func (c *Constant) MaxResultShape() tensor.Shape {
	return c.shape
}

func (c *Constant) ForwardMemoryAllocations() []tensor.Shape {
	return []tensor.Shape{c.shape}
}

func (c *Constant) BackwardMemoryAllocations() []tensor.Shape {
	return nil
}

func (c *Constant) RequiresGradient() bool {
	return false
}
