package engine

import (
	"github.com/weft-ml/weft/internal/backend/cpu"
	"github.com/weft-ml/weft/internal/tensor"
)

// HadamardProduct is the element-wise product of two equally shaped operands.
//
// Backward:
//   - left  = dL/dY ⊙ B
//   - right = dL/dY ⊙ A
type HadamardProduct struct {
	baseOperation

	maxShape         tensor.Shape
	requiresGradient bool

	leftOperandResult  TensorPointer
	rightOperandResult TensorPointer
}

// NewHadamardProduct creates an element-wise multiplication node.
func NewHadamardProduct(ctx *ExecutionContext, left, right Operation) (*HadamardProduct, error) {
	leftShape := left.MaxResultShape()
	rightShape := right.MaxResultShape()

	if !leftShape.Equal(rightShape) {
		return nil, &ShapeError{Op: "hadamard product", Left: leftShape, Right: rightShape}
	}

	op := &HadamardProduct{
		baseOperation:    newBaseOperation(ctx, left, right),
		maxShape:         leftShape.Clone(),
		requiresGradient: operandsRequireGradient(left, right),
	}
	op.linkOperands(op)
	return op, nil
}

func (h *HadamardProduct) ForwardPass() TensorPointer {
	h.leftOperandResult = h.left.ForwardPass()
	h.rightOperandResult = h.right.ForwardPass()

	result := h.ctx.AllocateForwardMemory(h.leftOperandResult.Shape())
	cpu.HadamardProduct(
		h.leftOperandResult.Buffer(), h.leftOperandResult.Offset(),
		h.rightOperandResult.Buffer(), h.rightOperandResult.Offset(),
		result.Buffer(), result.Offset(), result.Length())
	return result
}

func (h *HadamardProduct) LeftBackwardDerivative() TensorPointer {
	result := h.ctx.AllocateBackwardMemory(h.derivativeChain.Shape())
	cpu.HadamardProduct(
		h.derivativeChain.Buffer(), h.derivativeChain.Offset(),
		h.rightOperandResult.Buffer(), h.rightOperandResult.Offset(),
		result.Buffer(), result.Offset(), result.Length())
	return result
}

func (h *HadamardProduct) RightBackwardDerivative() TensorPointer {
	result := h.ctx.AllocateBackwardMemory(h.derivativeChain.Shape())
	cpu.HadamardProduct(
		h.derivativeChain.Buffer(), h.derivativeChain.Offset(),
		h.leftOperandResult.Buffer(), h.leftOperandResult.Offset(),
		result.Buffer(), result.Offset(), result.Length())
	return result
}

func (h *HadamardProduct) MaxResultShape() tensor.Shape {
	return h.maxShape
}

func (h *HadamardProduct) ForwardMemoryAllocations() []tensor.Shape {
	return []tensor.Shape{h.maxShape}
}

func (h *HadamardProduct) BackwardMemoryAllocations() []tensor.Shape {
	return []tensor.Shape{h.maxShape, h.maxShape}
}

func (h *HadamardProduct) RequiresGradient() bool {
	return h.requiresGradient
}
