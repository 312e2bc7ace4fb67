package engine

import (
	"github.com/weft-ml/weft/internal/backend/cpu"
	"github.com/weft-ml/weft/internal/tensor"
)

// BroadcastBias replicates a (1, N) bias row across a batch of rows, so the
// result can participate in equally shaped element-wise operations. The
// incoming gradient is summed along the batch dimension before flowing back
// to the bias.
type BroadcastBias struct {
	baseOperation

	rows             int
	maxShape         tensor.Shape
	requiresGradient bool
}

// NewBroadcastBias creates a broadcast node replicating the (1, N) operand
// across rows rows.
func NewBroadcastBias(ctx *ExecutionContext, bias Operation, rows int) (*BroadcastBias, error) {
	biasShape := bias.MaxResultShape()
	if len(biasShape) != 2 || biasShape[0] != 1 {
		return nil, &ShapeError{Op: "broadcast bias", Left: biasShape, Right: tensor.Shape{rows, biasShape.NumElements()}}
	}

	op := &BroadcastBias{
		baseOperation:    newBaseOperation(ctx, bias, nil),
		rows:             rows,
		maxShape:         tensor.Shape{rows, biasShape[1]},
		requiresGradient: bias.RequiresGradient(),
	}
	op.linkOperands(op)
	return op, nil
}

func (b *BroadcastBias) ForwardPass() TensorPointer {
	bias := b.left.ForwardPass()
	cols := bias.Shape()[1]

	result := b.ctx.AllocateForwardMemory(tensor.Shape{b.rows, cols})
	cpu.BroadcastRows(
		bias.Buffer(), bias.Offset(),
		result.Buffer(), result.Offset(), b.rows, cols)
	return result
}

// LeftBackwardDerivative sums the incoming gradient along the batch dimension.
func (b *BroadcastBias) LeftBackwardDerivative() TensorPointer {
	chainShape := b.derivativeChain.Shape()
	rows, cols := chainShape[0], chainShape[1]

	result := b.ctx.AllocateBackwardMemory(tensor.Shape{1, cols})
	cpu.SumRows(
		b.derivativeChain.Buffer(), b.derivativeChain.Offset(),
		result.Buffer(), result.Offset(), rows, cols)
	return result
}

func (b *BroadcastBias) RightBackwardDerivative() TensorPointer {
	return NullPointer
}

func (b *BroadcastBias) MaxResultShape() tensor.Shape {
	return b.maxShape
}

func (b *BroadcastBias) ForwardMemoryAllocations() []tensor.Shape {
	return []tensor.Shape{b.maxShape}
}

func (b *BroadcastBias) BackwardMemoryAllocations() []tensor.Shape {
	return []tensor.Shape{b.left.MaxResultShape()}
}

func (b *BroadcastBias) RequiresGradient() bool {
	return b.requiresGradient
}
