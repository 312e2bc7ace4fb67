package engine

import (
	"fmt"

	"github.com/weft-ml/weft/internal/backend/cpu"
	"github.com/weft-ml/weft/internal/tensor"
)

// Multiplication is matrix multiplication of a (M, K) left operand by a
// (K, N) right operand.
//
// Backward:
//   - left  = dL/dY @ Bᵀ
//   - right = Aᵀ @ dL/dY
//
// Both sides materialize the transposed operand in a backward slot before the
// product, so the declared backward footprint covers two slots per side.
type Multiplication struct {
	baseOperation

	maxShape         tensor.Shape
	requiresGradient bool

	leftOperandResult  TensorPointer
	rightOperandResult TensorPointer
}

// NewMultiplication creates a matrix-multiplication node. Operands must be
// 2-D with matching inner dimensions.
func NewMultiplication(ctx *ExecutionContext, left, right Operation) (*Multiplication, error) {
	leftShape := left.MaxResultShape()
	rightShape := right.MaxResultShape()

	if len(leftShape) != 2 || len(rightShape) != 2 || leftShape[1] != rightShape[0] {
		return nil, &ShapeError{Op: "multiplication", Left: leftShape, Right: rightShape}
	}

	op := &Multiplication{
		baseOperation:    newBaseOperation(ctx, left, right),
		maxShape:         tensor.Shape{leftShape[0], rightShape[1]},
		requiresGradient: operandsRequireGradient(left, right),
	}
	op.linkOperands(op)
	return op, nil
}

func (m *Multiplication) ForwardPass() TensorPointer {
	m.leftOperandResult = m.left.ForwardPass()
	m.rightOperandResult = m.right.ForwardPass()

	leftShape := m.leftOperandResult.Shape()
	rightShape := m.rightOperandResult.Shape()
	if leftShape[1] != rightShape[0] {
		panic(fmt.Sprintf("multiplication: inner dimensions diverged: %v @ %v", leftShape, rightShape))
	}

	rows, inner, cols := leftShape[0], leftShape[1], rightShape[1]
	result := m.ctx.AllocateForwardMemory(tensor.Shape{rows, cols})

	cpu.MatMul(
		m.leftOperandResult.Buffer(), m.leftOperandResult.Offset(),
		m.rightOperandResult.Buffer(), m.rightOperandResult.Offset(),
		result.Buffer(), result.Offset(), rows, inner, cols)
	return result
}

// LeftBackwardDerivative computes dL/dA = dL/dY @ Bᵀ.
func (m *Multiplication) LeftBackwardDerivative() TensorPointer {
	rightShape := m.rightOperandResult.Shape()
	inner, cols := rightShape[0], rightShape[1]
	rows := m.derivativeChain.Shape()[0]

	transposed := m.ctx.AllocateBackwardMemory(tensor.Shape{cols, inner})
	cpu.Transpose(
		m.rightOperandResult.Buffer(), m.rightOperandResult.Offset(),
		transposed.Buffer(), transposed.Offset(), inner, cols)

	result := m.ctx.AllocateBackwardMemory(tensor.Shape{rows, inner})
	cpu.MatMul(
		m.derivativeChain.Buffer(), m.derivativeChain.Offset(),
		transposed.Buffer(), transposed.Offset(),
		result.Buffer(), result.Offset(), rows, cols, inner)
	return result
}

// RightBackwardDerivative computes dL/dB = Aᵀ @ dL/dY.
func (m *Multiplication) RightBackwardDerivative() TensorPointer {
	leftShape := m.leftOperandResult.Shape()
	rows, inner := leftShape[0], leftShape[1]
	cols := m.derivativeChain.Shape()[1]

	transposed := m.ctx.AllocateBackwardMemory(tensor.Shape{inner, rows})
	cpu.Transpose(
		m.leftOperandResult.Buffer(), m.leftOperandResult.Offset(),
		transposed.Buffer(), transposed.Offset(), rows, inner)

	result := m.ctx.AllocateBackwardMemory(tensor.Shape{inner, cols})
	cpu.MatMul(
		transposed.Buffer(), transposed.Offset(),
		m.derivativeChain.Buffer(), m.derivativeChain.Offset(),
		result.Buffer(), result.Offset(), inner, rows, cols)
	return result
}

func (m *Multiplication) MaxResultShape() tensor.Shape {
	return m.maxShape
}

func (m *Multiplication) ForwardMemoryAllocations() []tensor.Shape {
	return []tensor.Shape{m.maxShape}
}

func (m *Multiplication) BackwardMemoryAllocations() []tensor.Shape {
	leftShape := m.left.MaxResultShape()
	rightShape := m.right.MaxResultShape()
	rows, inner, cols := leftShape[0], leftShape[1], rightShape[1]

	return []tensor.Shape{
		{cols, inner}, // Bᵀ
		{rows, inner}, // dL/dA
		{inner, rows}, // Aᵀ
		{inner, cols}, // dL/dB
	}
}

func (m *Multiplication) RequiresGradient() bool {
	return m.requiresGradient
}
