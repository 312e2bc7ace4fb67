package engine

import (
	"github.com/weft-ml/weft/internal/tensor"
)

// MSECostFunction is the summed squared-error cost over equally shaped
// predicted and expected operands: loss = Σ (p − e)².
//
// Backward (left only): 2 · (p − e). The batch mean is applied by the
// optimizer, not here.
type MSECostFunction struct {
	baseOperation

	maxShape         tensor.Shape
	requiresGradient bool
	trainingMode     bool

	predictedResult TensorPointer
	expectedResult  TensorPointer
}

// NewMSECostFunction creates the cost node over predicted and expected
// operands of equal shapes.
func NewMSECostFunction(ctx *ExecutionContext, predicted, expected Operation) (*MSECostFunction, error) {
	predictedShape := predicted.MaxResultShape()
	expectedShape := expected.MaxResultShape()

	if !predictedShape.Equal(expectedShape) {
		return nil, &ShapeError{Op: "mse cost", Left: predictedShape, Right: expectedShape}
	}

	op := &MSECostFunction{
		baseOperation:    newBaseOperation(ctx, predicted, expected),
		maxShape:         predictedShape.Clone(),
		requiresGradient: predicted.RequiresGradient(),
	}
	op.linkOperands(op)
	return op, nil
}

func (m *MSECostFunction) ForwardPass() TensorPointer {
	m.predictedResult = m.left.ForwardPass()
	m.expectedResult = m.right.ForwardPass()

	if m.trainingMode {
		return NullPointer
	}

	predictedBuffer := m.predictedResult.Buffer()
	predictedOffset := m.predictedResult.Offset()
	expectedBuffer := m.expectedResult.Buffer()
	expectedOffset := m.expectedResult.Offset()

	loss := float32(0)
	for i := 0; i < m.predictedResult.Length(); i++ {
		diff := predictedBuffer[predictedOffset+i] - expectedBuffer[expectedOffset+i]
		loss += diff * diff
	}

	result := m.ctx.AllocateForwardMemory(tensor.Shape{1, 1})
	result.Buffer()[result.Offset()] = loss
	return result
}

// LeftBackwardDerivative computes 2 · (p − e).
func (m *MSECostFunction) LeftBackwardDerivative() TensorPointer {
	result := m.ctx.AllocateBackwardMemory(m.predictedResult.Shape())

	predictedBuffer := m.predictedResult.Buffer()
	predictedOffset := m.predictedResult.Offset()
	expectedBuffer := m.expectedResult.Buffer()
	expectedOffset := m.expectedResult.Offset()
	resultBuffer := result.Buffer()
	resultOffset := result.Offset()

	for i := 0; i < result.Length(); i++ {
		resultBuffer[resultOffset+i] = 2 * (predictedBuffer[predictedOffset+i] - expectedBuffer[expectedOffset+i])
	}
	return result
}

func (m *MSECostFunction) RightBackwardDerivative() TensorPointer {
	return NullPointer
}

func (m *MSECostFunction) MaxResultShape() tensor.Shape {
	return m.maxShape
}

func (m *MSECostFunction) ForwardMemoryAllocations() []tensor.Shape {
	return []tensor.Shape{{1, 1}}
}

func (m *MSECostFunction) BackwardMemoryAllocations() []tensor.Shape {
	return []tensor.Shape{m.maxShape}
}

func (m *MSECostFunction) RequiresGradient() bool {
	return m.requiresGradient
}

// TrainingMode suppresses loss materialization on forward.
func (m *MSECostFunction) TrainingMode() {
	m.trainingMode = true
}

// FullPassCalculationMode materializes the scalar loss on forward.
func (m *MSECostFunction) FullPassCalculationMode() {
	m.trainingMode = false
}

// Predictions returns the forward handle of the predicted operand.
func (m *MSECostFunction) Predictions() TensorPointer {
	return m.predictedResult
}
