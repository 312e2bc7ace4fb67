package engine

import (
	"fmt"

	"github.com/weft-ml/weft/internal/tensor"
)

// Variable is a registered graph root holding persistent float storage and
// the optimizer that trains it. Storage lives outside the arenas and is
// mutated only by the optimizer; on forward the data is copied into a fresh
// forward slot so the forward arena holds a self-contained snapshot of the
// step.
type Variable struct {
	baseOperation

	data      []float32
	shape     tensor.Shape
	optimizer GradientOptimizer
}

// NewVariable creates a variable with the given initial data, registers it on
// the context and binds it to the optimizer. The data slice is owned by the
// variable afterwards.
func NewVariable(ctx *ExecutionContext, shape tensor.Shape, data []float32, optimizer GradientOptimizer) (*Variable, error) {
	if err := shape.Validate(); err != nil {
		return nil, err
	}
	if len(data) != shape.NumElements() {
		return nil, fmt.Errorf("variable data has %d elements, shape %v requires %d",
			len(data), shape, shape.NumElements())
	}
	if optimizer == nil {
		return nil, &ConfigurationError{Reason: "variable requires an optimizer"}
	}

	v := &Variable{
		baseOperation: newBaseOperation(ctx, nil, nil),
		data:          data,
		shape:         shape.Clone(),
		optimizer:     optimizer,
	}
	if err := ctx.RegisterOperation(v); err != nil {
		return nil, err
	}
	return v, nil
}

// ForwardPass copies the variable storage into a forward slot.
func (v *Variable) ForwardPass() TensorPointer {
	result := v.ctx.AllocateForwardMemory(v.shape)
	copy(result.Buffer()[result.Offset():result.Offset()+result.Length()], v.data)
	return result
}

// LeftBackwardDerivative returns the null handle; a variable has no inputs.
func (v *Variable) LeftBackwardDerivative() TensorPointer {
	return NullPointer
}

// RightBackwardDerivative returns the null handle; a variable has no inputs.
func (v *Variable) RightBackwardDerivative() TensorPointer {
	return NullPointer
}

// UpdateDerivativeChain receives the accumulated gradient for this step and
// fires the optimizer against the persistent storage.
func (v *Variable) UpdateDerivativeChain(gradient TensorPointer) {
	v.derivativeChain = gradient
	v.optimizer.Optimize(v.ctx, v.data, v.shape, gradient)
}

func (v *Variable) MaxResultShape() tensor.Shape {
	return v.shape
}

func (v *Variable) ForwardMemoryAllocations() []tensor.Shape {
	return []tensor.Shape{v.shape}
}

func (v *Variable) BackwardMemoryAllocations() []tensor.Shape {
	return nil
}

// RequiresGradient is always true: a variable is trainable by construction.
func (v *Variable) RequiresGradient() bool {
	return true
}

// Data exposes the persistent storage, row-major in the declared shape.
func (v *Variable) Data() []float32 {
	return v.data
}

// Shape returns the variable's shape.
func (v *Variable) Shape() tensor.Shape {
	return v.shape
}
