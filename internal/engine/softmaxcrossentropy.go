package engine

import (
	"github.com/weft-ml/weft/internal/backend/cpu"
	"github.com/weft-ml/weft/internal/tensor"
)

// SoftmaxCrossEntropy is the fused softmax + cross-entropy cost function over
// 2-D predicted logits and expected probability rows.
//
// Forward always caches the row softmax of the predicted operand. In training
// mode the scalar loss is not materialized and the null handle is returned;
// in full-pass mode a 1x1 loss −Σ log(softmax(P)) ⊙ E is allocated on every
// forward.
//
// Backward (left only): softmax(P) − E. The right side carries no gradient —
// labels are not trainable.
type SoftmaxCrossEntropy struct {
	baseOperation

	maxShape         tensor.Shape
	requiresGradient bool
	trainingMode     bool

	softMaxResult             TensorPointer
	expectedProbabilityResult TensorPointer
}

// NewSoftmaxCrossEntropy creates the cost node over predicted logits and
// expected probabilities. Both operands must be 2-D with equal shapes.
func NewSoftmaxCrossEntropy(ctx *ExecutionContext, predicted, expected Operation) (*SoftmaxCrossEntropy, error) {
	predictedShape := predicted.MaxResultShape()
	expectedShape := expected.MaxResultShape()

	if len(predictedShape) != 2 || !predictedShape.Equal(expectedShape) {
		return nil, &ShapeError{Op: "softmax cross entropy", Left: predictedShape, Right: expectedShape}
	}

	op := &SoftmaxCrossEntropy{
		baseOperation:    newBaseOperation(ctx, predicted, expected),
		maxShape:         predictedShape.Clone(),
		requiresGradient: predicted.RequiresGradient(),
	}
	op.linkOperands(op)
	return op, nil
}

func (s *SoftmaxCrossEntropy) ForwardPass() TensorPointer {
	predicted := s.left.ForwardPass()

	s.softMaxResult = s.ctx.AllocateForwardMemory(predicted.Shape())
	s.expectedProbabilityResult = s.right.ForwardPass()

	shape := predicted.Shape()
	rows, cols := shape[0], shape[1]

	cpu.SoftMaxByRows(
		predicted.Buffer(), predicted.Offset(), rows, cols,
		s.softMaxResult.Buffer(), s.softMaxResult.Offset())

	if s.trainingMode {
		return NullPointer
	}

	loss := cpu.CrossEntropyByRows(
		s.softMaxResult.Buffer(), s.softMaxResult.Offset(),
		s.expectedProbabilityResult.Buffer(), s.expectedProbabilityResult.Offset(),
		s.softMaxResult.Length())

	result := s.ctx.AllocateForwardMemory(tensor.Shape{1, 1})
	result.Buffer()[result.Offset()] = loss
	return result
}

// LeftBackwardDerivative computes softmax(P) − E.
func (s *SoftmaxCrossEntropy) LeftBackwardDerivative() TensorPointer {
	result := s.ctx.AllocateBackwardMemory(s.softMaxResult.Shape())
	cpu.SubtractVectorFromVector(
		s.softMaxResult.Buffer(), s.softMaxResult.Offset(),
		s.expectedProbabilityResult.Buffer(), s.expectedProbabilityResult.Offset(),
		result.Buffer(), result.Offset(), result.Length())
	return result
}

func (s *SoftmaxCrossEntropy) RightBackwardDerivative() TensorPointer {
	return NullPointer
}

func (s *SoftmaxCrossEntropy) MaxResultShape() tensor.Shape {
	return s.maxShape
}

func (s *SoftmaxCrossEntropy) ForwardMemoryAllocations() []tensor.Shape {
	return []tensor.Shape{s.maxShape, {1, 1}}
}

func (s *SoftmaxCrossEntropy) BackwardMemoryAllocations() []tensor.Shape {
	return []tensor.Shape{s.maxShape}
}

func (s *SoftmaxCrossEntropy) RequiresGradient() bool {
	return s.requiresGradient
}

// TrainingMode suppresses loss materialization on forward.
func (s *SoftmaxCrossEntropy) TrainingMode() {
	s.trainingMode = true
}

// FullPassCalculationMode materializes the scalar loss on forward.
func (s *SoftmaxCrossEntropy) FullPassCalculationMode() {
	s.trainingMode = false
}

// Predictions returns the cached row softmax of the last forward pass.
func (s *SoftmaxCrossEntropy) Predictions() TensorPointer {
	return s.softMaxResult
}
