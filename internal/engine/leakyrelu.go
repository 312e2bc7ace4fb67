package engine

import (
	"github.com/weft-ml/weft/internal/backend/cpu"
	"github.com/weft-ml/weft/internal/tensor"
)

// LeakyReLU applies y = x for x > 0 and y = slope·x otherwise, element-wise.
// Only the left side carries a gradient.
type LeakyReLU struct {
	baseOperation

	slope            float32
	maxShape         tensor.Shape
	requiresGradient bool

	leftOperandResult TensorPointer
}

// NewLeakyReLU creates a leaky rectifier over the given operation.
func NewLeakyReLU(ctx *ExecutionContext, slope float32, left Operation) *LeakyReLU {
	op := &LeakyReLU{
		baseOperation:    newBaseOperation(ctx, left, nil),
		slope:            slope,
		maxShape:         left.MaxResultShape().Clone(),
		requiresGradient: left.RequiresGradient(),
	}
	op.linkOperands(op)
	return op
}

func (l *LeakyReLU) ForwardPass() TensorPointer {
	l.leftOperandResult = l.left.ForwardPass()

	result := l.ctx.AllocateForwardMemory(l.leftOperandResult.Shape())
	cpu.LeakyReLU(
		l.leftOperandResult.Buffer(), l.leftOperandResult.Offset(), l.slope,
		result.Buffer(), result.Offset(), result.Length())
	return result
}

// LeftBackwardDerivative computes dL/dX = dL/dY · (x > 0 ? 1 : slope).
func (l *LeakyReLU) LeftBackwardDerivative() TensorPointer {
	result := l.ctx.AllocateBackwardMemory(l.leftOperandResult.Shape())
	cpu.LeakyReLUDerivative(
		l.leftOperandResult.Buffer(), l.leftOperandResult.Offset(),
		l.derivativeChain.Buffer(), l.derivativeChain.Offset(), l.slope,
		result.Buffer(), result.Offset(), result.Length())
	return result
}

func (l *LeakyReLU) RightBackwardDerivative() TensorPointer {
	return NullPointer
}

func (l *LeakyReLU) MaxResultShape() tensor.Shape {
	return l.maxShape
}

func (l *LeakyReLU) ForwardMemoryAllocations() []tensor.Shape {
	return []tensor.Shape{l.maxShape}
}

func (l *LeakyReLU) BackwardMemoryAllocations() []tensor.Shape {
	return []tensor.Shape{l.maxShape}
}

func (l *LeakyReLU) RequiresGradient() bool {
	return l.requiresGradient
}
