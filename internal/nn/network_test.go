package nn

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weft-ml/weft/internal/engine"
	"github.com/weft-ml/weft/internal/optim"
	"github.com/weft-ml/weft/internal/tensor"
)

// TestOneLayerClosedFormStep verifies a full engine step against hand-derived
// values: W = ones(2,2), b = 0, X = ones(2,2), targets = 0, MSE cost, leaky
// rectifier slope 0.01, SGD with lr 0.01.
//
// Every pre-activation is 2 (positive, so the rectifier is the identity
// here), dL/dy = 2·2 = 4 everywhere, dL/dW = Xᵀ·G = 8, dL/db = Σ G = 8.
// After the mean-gradient division by the batch of 2:
// W ← 1 − 0.01·4 = 0.96, b ← −0.01·4 = −0.04.
func TestOneLayerClosedFormStep(t *testing.T) {
	ctx := engine.NewExecutionContext()

	source, err := engine.NewMiniBatchInputSource(ctx, []float32{1, 1, 1, 1}, 2, 2, 2)
	require.NoError(t, err)
	targets, err := engine.NewMiniBatchInputSource(ctx, make([]float32, 4), 2, 2, 2)
	require.NoError(t, err)

	weightsOptimizer, err := optim.NewSimpleGradientDescent(0.01, source)
	require.NoError(t, err)
	weights, err := engine.NewVariable(ctx, tensor.Shape{2, 2}, []float32{1, 1, 1, 1}, weightsOptimizer)
	require.NoError(t, err)

	biasOptimizer, err := optim.NewSimpleGradientDescent(0.01, source)
	require.NoError(t, err)
	bias, err := engine.NewVariable(ctx, tensor.Shape{1, 2}, []float32{0, 0}, biasOptimizer)
	require.NoError(t, err)

	product, err := engine.NewMultiplication(ctx, source, weights)
	require.NoError(t, err)
	sum, err := engine.NewAdd(ctx, product, bias)
	require.NoError(t, err)
	activation := engine.NewLeakyReLU(ctx, 0.01, sum)
	cost, err := engine.NewMSECostFunction(ctx, activation, targets)
	require.NoError(t, err)
	cost.TrainingMode()

	require.NoError(t, ctx.InitializeExecution())

	ctx.ExecutePropagation()

	for _, w := range weights.Data() {
		assert.InDelta(t, 0.96, w, 1e-6)
	}
	for _, b := range bias.Data() {
		assert.InDelta(t, -0.04, b, 1e-6)
	}
}

// TestZeroLearningRateLeavesVariablesUntouched pins the N-step invariant:
// with SGD at learning rate 0, variable storage is bitwise unchanged.
func TestZeroLearningRateLeavesVariablesUntouched(t *testing.T) {
	ctx := engine.NewExecutionContext()

	source, err := engine.NewMiniBatchInputSource(ctx, []float32{0.5, -1, 2, 0.25}, 2, 2, 2)
	require.NoError(t, err)
	targets, err := engine.NewMiniBatchInputSource(ctx, []float32{1, 0, 0, 1}, 2, 2, 2)
	require.NoError(t, err)

	weightsOptimizer, err := optim.NewSimpleGradientDescent(0, source)
	require.NoError(t, err)
	initialWeights := []float32{0.3, -0.7, 1.5, 0.9}
	weights, err := engine.NewVariable(ctx, tensor.Shape{2, 2},
		append([]float32(nil), initialWeights...), weightsOptimizer)
	require.NoError(t, err)

	biasOptimizer, err := optim.NewSimpleGradientDescent(0, source)
	require.NoError(t, err)
	initialBias := []float32{0.1, -0.2}
	bias, err := engine.NewVariable(ctx, tensor.Shape{1, 2},
		append([]float32(nil), initialBias...), biasOptimizer)
	require.NoError(t, err)

	product, err := engine.NewMultiplication(ctx, source, weights)
	require.NoError(t, err)
	sum, err := engine.NewAdd(ctx, product, bias)
	require.NoError(t, err)
	activation := engine.NewLeakyReLU(ctx, 0.01, sum)
	cost, err := engine.NewMSECostFunction(ctx, activation, targets)
	require.NoError(t, err)
	cost.TrainingMode()

	require.NoError(t, ctx.InitializeExecution())

	for step := 0; step < 5; step++ {
		ctx.ExecutePropagation()
	}

	for i := range initialWeights {
		assert.Equal(t, math.Float32bits(initialWeights[i]), math.Float32bits(weights.Data()[i]))
	}
	for i := range initialBias {
		assert.Equal(t, math.Float32bits(initialBias[i]), math.Float32bits(bias.Data()[i]))
	}
}

var xorFeatures = []float32{
	0, 0,
	0, 1,
	1, 0,
	1, 1,
}

var xorLabels = []float32{0, 1, 1, 0}

func TestNetworkTrainsXOR(t *testing.T) {
	net, err := NewNetwork(xorFeatures, xorLabels, 4, 2, 1, []int{8}, Config{
		LearningRate: 0.01,
		Seed:         1,
		Optimizer:    Adam,
		Cost:         MeanSquaredError,
	})
	require.NoError(t, err)

	initial := net.Loss()
	net.Train(800)
	final := net.Loss()

	assert.False(t, math.IsNaN(float64(final)))
	assert.Less(t, final, initial)
}

func TestNetworkDeterministicWithSeed(t *testing.T) {
	build := func() *Network {
		net, err := NewNetwork(xorFeatures, xorLabels, 4, 2, 1, []int{4}, Config{
			LearningRate: 0.05,
			Seed:         3,
			Optimizer:    GradientDescent,
			Cost:         MeanSquaredError,
		})
		require.NoError(t, err)
		net.Train(50)
		return net
	}

	first := build()
	second := build()

	require.Len(t, second.Layers(), len(first.Layers()))
	for i := range first.Layers() {
		firstWeights := first.Layers()[i].Weights().Data()
		secondWeights := second.Layers()[i].Weights().Data()
		require.Len(t, secondWeights, len(firstWeights))
		for j := range firstWeights {
			assert.Equal(t, math.Float32bits(firstWeights[j]), math.Float32bits(secondWeights[j]))
		}
	}
}

func TestNetworkSoftmaxClassification(t *testing.T) {
	features := []float32{
		0, 0,
		0.1, 0,
		0, 0.1,
		1, 1,
		0.9, 1,
		1, 0.9,
	}
	labels := []float32{
		1, 0,
		1, 0,
		1, 0,
		0, 1,
		0, 1,
		0, 1,
	}

	net, err := NewNetwork(features, labels, 6, 2, 2, []int{4}, Config{
		LearningRate: 0.05,
		Seed:         2,
		Optimizer:    Adam,
		Cost:         SoftmaxCrossEntropy,
	})
	require.NoError(t, err)

	initial := net.Loss()
	net.Train(300)
	final := net.Loss()

	assert.False(t, math.IsNaN(float64(final)))
	assert.Less(t, final, initial)

	// Predicted rows are softmax distributions.
	predictions := net.Predict()
	require.Len(t, predictions, 6)
	for _, row := range predictions {
		require.Len(t, row, 2)
		assert.InDelta(t, 1.0, float64(row[0]+row[1]), 1e-5)
	}
}

func TestNetworkPredictShape(t *testing.T) {
	net, err := NewNetwork(xorFeatures, xorLabels, 4, 2, 1, []int{3}, Config{
		Seed: 9,
	})
	require.NoError(t, err)

	predictions := net.Predict()
	require.Len(t, predictions, 4)
	for _, row := range predictions {
		assert.Len(t, row, 1)
	}
}

func TestNetworkAMSGradTrains(t *testing.T) {
	net, err := NewNetwork(xorFeatures, xorLabels, 4, 2, 1, []int{6}, Config{
		LearningRate: 0.02,
		Seed:         5,
		Optimizer:    AMSGrad,
		Cost:         MeanSquaredError,
	})
	require.NoError(t, err)

	initial := net.Loss()
	net.Train(500)
	final := net.Loss()

	assert.False(t, math.IsNaN(float64(final)))
	assert.Less(t, final, initial)
}
