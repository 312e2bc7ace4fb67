package engine

import (
	"fmt"

	"github.com/weft-ml/weft/internal/backend/cpu"
	"github.com/weft-ml/weft/internal/tensor"
)

// Add computes the element-wise sum of its operands. The right operand may be
// a single-row bias of shape (1, N) added to every row of a (M, N) left
// operand; the incoming gradient is then summed along the batch dimension
// before flowing to the right side.
type Add struct {
	baseOperation

	maxShape         tensor.Shape
	broadcast        bool
	requiresGradient bool

	leftOperandResult  TensorPointer
	rightOperandResult TensorPointer
}

// NewAdd creates an addition node. Operands must share a shape, or the right
// operand must be a (1, N) row added to a (M, N) left operand.
func NewAdd(ctx *ExecutionContext, left, right Operation) (*Add, error) {
	leftShape := left.MaxResultShape()
	rightShape := right.MaxResultShape()

	broadcast := false
	switch {
	case leftShape.Equal(rightShape):
	case len(leftShape) == 2 && len(rightShape) == 2 &&
		rightShape[0] == 1 && leftShape[1] == rightShape[1]:
		broadcast = true
	default:
		return nil, &ShapeError{Op: "add", Left: leftShape, Right: rightShape}
	}

	op := &Add{
		baseOperation:    newBaseOperation(ctx, left, right),
		maxShape:         leftShape.Clone(),
		broadcast:        broadcast,
		requiresGradient: operandsRequireGradient(left, right),
	}
	op.linkOperands(op)
	return op, nil
}

func (a *Add) ForwardPass() TensorPointer {
	a.leftOperandResult = a.left.ForwardPass()
	a.rightOperandResult = a.right.ForwardPass()

	leftShape := a.leftOperandResult.Shape()
	result := a.ctx.AllocateForwardMemory(leftShape)

	leftBuffer := a.leftOperandResult.Buffer()
	rightBuffer := a.rightOperandResult.Buffer()
	resultBuffer := result.Buffer()

	if a.broadcast {
		rows, cols := leftShape[0], leftShape[1]
		for i := 0; i < rows; i++ {
			cpu.AddVectorToVector(
				leftBuffer, a.leftOperandResult.Offset()+i*cols,
				rightBuffer, a.rightOperandResult.Offset(),
				resultBuffer, result.Offset()+i*cols, cols)
		}
		return result
	}

	if a.leftOperandResult.Length() != a.rightOperandResult.Length() {
		panic(fmt.Sprintf("add: operand lengths diverged: %d vs %d",
			a.leftOperandResult.Length(), a.rightOperandResult.Length()))
	}
	cpu.AddVectorToVector(
		leftBuffer, a.leftOperandResult.Offset(),
		rightBuffer, a.rightOperandResult.Offset(),
		resultBuffer, result.Offset(), a.leftOperandResult.Length())
	return result
}

// LeftBackwardDerivative passes the incoming gradient through unchanged.
func (a *Add) LeftBackwardDerivative() TensorPointer {
	return a.derivativeChain
}

// RightBackwardDerivative passes the gradient through, summing it along the
// batch dimension when the right operand is broadcast.
func (a *Add) RightBackwardDerivative() TensorPointer {
	if !a.broadcast {
		return a.derivativeChain
	}

	chainShape := a.derivativeChain.Shape()
	rows, cols := chainShape[0], chainShape[1]

	result := a.ctx.AllocateBackwardMemory(tensor.Shape{1, cols})
	cpu.SumRows(
		a.derivativeChain.Buffer(), a.derivativeChain.Offset(),
		result.Buffer(), result.Offset(), rows, cols)
	return result
}

func (a *Add) MaxResultShape() tensor.Shape {
	return a.maxShape
}

func (a *Add) ForwardMemoryAllocations() []tensor.Shape {
	return []tensor.Shape{a.maxShape}
}

func (a *Add) BackwardMemoryAllocations() []tensor.Shape {
	if a.broadcast {
		return []tensor.Shape{a.right.MaxResultShape()}
	}
	return nil
}

func (a *Add) RequiresGradient() bool {
	return a.requiresGradient
}
