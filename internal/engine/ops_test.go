package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weft-ml/weft/internal/tensor"
)

func TestMultiplicationForward(t *testing.T) {
	ctx := NewExecutionContext()

	a, err := NewVariable(ctx, tensor.Shape{2, 3}, []float32{1, 2, 3, 4, 5, 6}, &capturingOptimizer{})
	require.NoError(t, err)
	b, err := NewConstant(ctx, tensor.Shape{3, 2}, []float32{1, 0, 0, 1, 1, 0})
	require.NoError(t, err)
	_, err = NewMultiplication(ctx, a, b)
	require.NoError(t, err)
	require.NoError(t, ctx.InitializeExecution())

	result := snapshot(ctx.ExecuteForwardPropagation()[0])

	expected := []float32{4, 2, 10, 5}
	require.Len(t, result, len(expected))
	for i := range expected {
		assert.InDelta(t, expected[i], result[i], 1e-4)
	}
}

func TestMultiplicationShapeMismatch(t *testing.T) {
	ctx := NewExecutionContext()

	a, err := NewVariable(ctx, tensor.Shape{2, 3}, make([]float32, 6), &capturingOptimizer{})
	require.NoError(t, err)
	b, err := NewConstant(ctx, tensor.Shape{2, 2}, make([]float32, 4))
	require.NoError(t, err)

	_, err = NewMultiplication(ctx, a, b)

	var shapeErr *ShapeError
	require.ErrorAs(t, err, &shapeErr)
	assert.Equal(t, tensor.Shape{2, 3}, shapeErr.Left)
	assert.Equal(t, tensor.Shape{2, 2}, shapeErr.Right)
}

func TestLeakyReLUBackward(t *testing.T) {
	ctx := NewExecutionContext()

	x, err := NewVariable(ctx, tensor.Shape{1, 3}, []float32{-1, 2, -3}, &capturingOptimizer{})
	require.NoError(t, err)
	activation := NewLeakyReLU(ctx, 0.01, x)

	// The cost sizes the backward arena for the hand-fed upstream gradient.
	target, err := NewConstant(ctx, tensor.Shape{1, 3}, make([]float32, 3))
	require.NoError(t, err)
	_, err = NewMSECostFunction(ctx, activation, target)
	require.NoError(t, err)

	require.NoError(t, ctx.InitializeExecution())

	ctx.ExecuteForwardPropagation()

	upstream := ctx.AllocateBackwardMemory(tensor.Shape{1, 3})
	buffer := upstream.Buffer()
	for i := 0; i < upstream.Length(); i++ {
		buffer[upstream.Offset()+i] = 1
	}

	activation.UpdateDerivativeChain(upstream)
	gradient := snapshot(activation.LeftBackwardDerivative())

	expected := []float32{0.01, 1, 0.01}
	require.Len(t, gradient, len(expected))
	for i := range expected {
		assert.InDelta(t, expected[i], gradient[i], 1e-6)
	}

	assert.True(t, activation.RightBackwardDerivative().IsNull())
}

func TestSoftmaxCrossEntropyTrainingMode(t *testing.T) {
	ctx := NewExecutionContext()

	predicted, err := NewVariable(ctx, tensor.Shape{1, 3}, []float32{2, 1, 0}, &capturingOptimizer{})
	require.NoError(t, err)
	expected, err := NewConstant(ctx, tensor.Shape{1, 3}, []float32{1, 0, 0})
	require.NoError(t, err)
	cost, err := NewSoftmaxCrossEntropy(ctx, predicted, expected)
	require.NoError(t, err)
	cost.TrainingMode()
	require.NoError(t, ctx.InitializeExecution())

	results := ctx.ExecuteForwardPropagation()
	require.Len(t, results, 1)
	assert.True(t, results[0].IsNull())

	gradient := snapshot(cost.LeftBackwardDerivative())

	// softmax([2,1,0]) − [1,0,0]
	wanted := []float32{-0.3348, 0.2447, 0.0900}
	require.Len(t, gradient, len(wanted))
	for i := range wanted {
		assert.InDelta(t, wanted[i], gradient[i], 1e-3)
	}

	assert.True(t, cost.RightBackwardDerivative().IsNull())
}

func TestSoftmaxCrossEntropyFullPass(t *testing.T) {
	ctx := NewExecutionContext()

	predicted, err := NewVariable(ctx, tensor.Shape{1, 3}, []float32{2, 1, 0}, &capturingOptimizer{})
	require.NoError(t, err)
	expected, err := NewConstant(ctx, tensor.Shape{1, 3}, []float32{1, 0, 0})
	require.NoError(t, err)
	cost, err := NewSoftmaxCrossEntropy(ctx, predicted, expected)
	require.NoError(t, err)
	cost.FullPassCalculationMode()
	require.NoError(t, ctx.InitializeExecution())

	results := ctx.ExecuteForwardPropagation()
	require.Len(t, results, 1)
	require.False(t, results[0].IsNull())

	loss := results[0].Buffer()[results[0].Offset()]
	assert.InDelta(t, 0.4076, loss, 1e-3) // −log softmax([2,1,0])[0]

	assert.Equal(t, tensor.Shape{1, 1}, results[0].Shape())
}

func TestSoftmaxCrossEntropyRejectsNon2D(t *testing.T) {
	ctx := NewExecutionContext()

	predicted, err := NewVariable(ctx, tensor.Shape{3}, []float32{2, 1, 0}, &capturingOptimizer{})
	require.NoError(t, err)
	expected, err := NewConstant(ctx, tensor.Shape{3}, []float32{1, 0, 0})
	require.NoError(t, err)

	_, err = NewSoftmaxCrossEntropy(ctx, predicted, expected)

	var shapeErr *ShapeError
	require.ErrorAs(t, err, &shapeErr)
}

func TestBroadcastBias(t *testing.T) {
	ctx := NewExecutionContext()

	bias, err := NewVariable(ctx, tensor.Shape{1, 2}, []float32{1, 2}, &capturingOptimizer{})
	require.NoError(t, err)
	broadcast, err := NewBroadcastBias(ctx, bias, 3)
	require.NoError(t, err)

	target, err := NewConstant(ctx, tensor.Shape{3, 2}, make([]float32, 6))
	require.NoError(t, err)
	cost, err := NewMSECostFunction(ctx, broadcast, target)
	require.NoError(t, err)
	cost.TrainingMode()

	require.NoError(t, ctx.InitializeExecution())

	ctx.ExecuteForwardPropagation()
	assert.Equal(t, []float32{1, 2, 1, 2, 1, 2}, snapshot(cost.Predictions()))

	upstream := ctx.AllocateBackwardMemory(tensor.Shape{3, 2})
	buffer := upstream.Buffer()
	for i := 0; i < upstream.Length(); i++ {
		buffer[upstream.Offset()+i] = float32(i + 1)
	}

	broadcast.UpdateDerivativeChain(upstream)
	gradient := snapshot(broadcast.LeftBackwardDerivative())

	// Column sums of [[1,2],[3,4],[5,6]].
	assert.Equal(t, []float32{9, 12}, gradient)
}

func TestAddBroadcastBackward(t *testing.T) {
	ctx := NewExecutionContext()

	left, err := NewVariable(ctx, tensor.Shape{2, 2}, []float32{1, 2, 3, 4}, &capturingOptimizer{})
	require.NoError(t, err)
	bias, err := NewVariable(ctx, tensor.Shape{1, 2}, []float32{10, 20}, &capturingOptimizer{})
	require.NoError(t, err)
	sum, err := NewAdd(ctx, left, bias)
	require.NoError(t, err)

	target, err := NewConstant(ctx, tensor.Shape{2, 2}, make([]float32, 4))
	require.NoError(t, err)
	cost, err := NewMSECostFunction(ctx, sum, target)
	require.NoError(t, err)
	cost.TrainingMode()

	require.NoError(t, ctx.InitializeExecution())

	ctx.ExecuteForwardPropagation()
	assert.Equal(t, []float32{11, 22, 13, 24}, snapshot(cost.Predictions()))

	upstream := ctx.AllocateBackwardMemory(tensor.Shape{2, 2})
	buffer := upstream.Buffer()
	copy(buffer[upstream.Offset():upstream.Offset()+4], []float32{1, 2, 3, 4})

	sum.UpdateDerivativeChain(upstream)

	// Left side passes the incoming gradient through unchanged.
	assert.Equal(t, upstream.Address(), sum.LeftBackwardDerivative().Address())

	// Right side sums over the broadcast dimension.
	gradient := snapshot(sum.RightBackwardDerivative())
	assert.Equal(t, []float32{4, 6}, gradient)
}

func TestHadamardBackward(t *testing.T) {
	ctx := NewExecutionContext()

	a, err := NewVariable(ctx, tensor.Shape{1, 3}, []float32{1, 2, 3}, &capturingOptimizer{})
	require.NoError(t, err)
	b, err := NewVariable(ctx, tensor.Shape{1, 3}, []float32{4, 5, 6}, &capturingOptimizer{})
	require.NoError(t, err)
	product, err := NewHadamardProduct(ctx, a, b)
	require.NoError(t, err)

	target, err := NewConstant(ctx, tensor.Shape{1, 3}, make([]float32, 3))
	require.NoError(t, err)
	cost, err := NewMSECostFunction(ctx, product, target)
	require.NoError(t, err)
	cost.TrainingMode()

	require.NoError(t, ctx.InitializeExecution())

	ctx.ExecuteForwardPropagation()

	upstream := ctx.AllocateBackwardMemory(tensor.Shape{1, 3})
	buffer := upstream.Buffer()
	copy(buffer[upstream.Offset():upstream.Offset()+3], []float32{1, 1, 1})
	product.UpdateDerivativeChain(upstream)

	assert.Equal(t, []float32{4, 5, 6}, snapshot(product.LeftBackwardDerivative()))
	assert.Equal(t, []float32{1, 2, 3}, snapshot(product.RightBackwardDerivative()))
}

func TestMSECostFunction(t *testing.T) {
	ctx := NewExecutionContext()

	predicted, err := NewVariable(ctx, tensor.Shape{1, 2}, []float32{3, 5}, &capturingOptimizer{})
	require.NoError(t, err)
	expected, err := NewConstant(ctx, tensor.Shape{1, 2}, []float32{1, 1})
	require.NoError(t, err)
	cost, err := NewMSECostFunction(ctx, predicted, expected)
	require.NoError(t, err)
	require.NoError(t, ctx.InitializeExecution())

	results := ctx.ExecuteForwardPropagation()
	loss := results[0].Buffer()[results[0].Offset()]
	assert.InDelta(t, 20.0, loss, 1e-5) // (3−1)² + (5−1)²

	gradient := snapshot(cost.LeftBackwardDerivative())
	assert.Equal(t, []float32{4, 8}, gradient) // 2·(p − e)

	cost.TrainingMode()
	results = ctx.ExecuteForwardPropagation()
	assert.True(t, results[0].IsNull())
}

func TestVariableSnapshotIsolation(t *testing.T) {
	ctx := NewExecutionContext()

	v, err := NewVariable(ctx, tensor.Shape{1, 2}, []float32{1, 2}, &capturingOptimizer{})
	require.NoError(t, err)
	require.NoError(t, ctx.InitializeExecution())

	result := ctx.ExecuteForwardPropagation()[0]

	// Mutating the forward snapshot must not touch the persistent storage.
	result.Buffer()[result.Offset()] = 99
	assert.Equal(t, []float32{1, 2}, v.Data())
}
