// Package nn provides a dense feed-forward network facade over the execution
// engine: it wires input sources, weight and bias variables, matrix
// multiplications, activations and a cost function into one ExecutionContext
// and drives training epochs against it.
package nn

import (
	"math/rand"

	"github.com/weft-ml/weft/internal/engine"
	"github.com/weft-ml/weft/internal/optim"
	"github.com/weft-ml/weft/internal/tensor"
)

// CostKind selects the network's cost function.
type CostKind int

// Supported cost functions.
const (
	MeanSquaredError CostKind = iota
	SoftmaxCrossEntropy
)

// OptimizerKind selects the per-variable optimizer.
type OptimizerKind int

// Supported optimizers.
const (
	GradientDescent OptimizerKind = iota
	Adam
	AMSGrad
)

// Config holds network construction settings. Zero values fall back to
// defaults: full-batch training, learning rate 0.01, activation slope 0.01.
type Config struct {
	BatchSize       int
	LearningRate    float32
	ActivationSlope float32
	Seed            int64
	Cost            CostKind
	Optimizer       OptimizerKind
}

// Network is a dense feed-forward network bound to one ExecutionContext.
// Hidden layers apply a leaky rectifier; the output layer is linear and feeds
// the cost function.
type Network struct {
	ctx      *engine.ExecutionContext
	features *engine.MiniBatchInputSource
	labels   *engine.MiniBatchInputSource
	layers   []*Dense
	cost     engine.CostFunction
}

// NewNetwork builds and initializes a network over row-major feature and
// label matrices with rows rows each. hidden lists the hidden layer widths;
// the output width equals labelCols.
func NewNetwork(features, labels []float32, rows, featureCols, labelCols int, hidden []int, cfg Config) (*Network, error) {
	if cfg.BatchSize == 0 {
		cfg.BatchSize = rows
	}
	if cfg.LearningRate == 0 {
		cfg.LearningRate = 0.01
	}
	if cfg.ActivationSlope == 0 {
		cfg.ActivationSlope = 0.01
	}

	ctx := engine.NewExecutionContext()

	featureSource, err := engine.NewMiniBatchInputSource(ctx, features, rows, featureCols, cfg.BatchSize)
	if err != nil {
		return nil, err
	}
	labelSource, err := engine.NewMiniBatchInputSource(ctx, labels, rows, labelCols, cfg.BatchSize)
	if err != nil {
		return nil, err
	}

	sizes := make([]int, 0, len(hidden)+2)
	sizes = append(sizes, featureCols)
	sizes = append(sizes, hidden...)
	sizes = append(sizes, labelCols)

	rng := rand.New(rand.NewSource(cfg.Seed))

	net := &Network{
		ctx:      ctx,
		features: featureSource,
		labels:   labelSource,
	}

	var x engine.Operation = featureSource
	for i := 0; i < len(sizes)-1; i++ {
		inputs, outputs := sizes[i], sizes[i+1]

		dense, out, err := net.addDense(x, inputs, outputs, rng, cfg)
		if err != nil {
			return nil, err
		}
		net.layers = append(net.layers, dense)

		if i < len(sizes)-2 {
			x = engine.NewLeakyReLU(ctx, cfg.ActivationSlope, out)
		} else {
			x = out
		}
	}

	switch cfg.Cost {
	case SoftmaxCrossEntropy:
		net.cost, err = engine.NewSoftmaxCrossEntropy(ctx, x, labelSource)
	default:
		net.cost, err = engine.NewMSECostFunction(ctx, x, labelSource)
	}
	if err != nil {
		return nil, err
	}

	if err := ctx.InitializeExecution(); err != nil {
		return nil, err
	}
	return net, nil
}

// addDense creates one dense layer's variables and wires x @ W + b.
func (n *Network) addDense(x engine.Operation, inputs, outputs int, rng *rand.Rand, cfg Config) (*Dense, engine.Operation, error) {
	weightsOptimizer, err := newOptimizer(cfg, n.features)
	if err != nil {
		return nil, nil, err
	}
	weights, err := engine.NewVariable(n.ctx, tensor.Shape{inputs, outputs},
		heInit(rng, inputs, outputs), weightsOptimizer)
	if err != nil {
		return nil, nil, err
	}

	biasOptimizer, err := newOptimizer(cfg, n.features)
	if err != nil {
		return nil, nil, err
	}
	bias, err := engine.NewVariable(n.ctx, tensor.Shape{1, outputs},
		make([]float32, outputs), biasOptimizer)
	if err != nil {
		return nil, nil, err
	}

	product, err := engine.NewMultiplication(n.ctx, x, weights)
	if err != nil {
		return nil, nil, err
	}
	sum, err := engine.NewAdd(n.ctx, product, bias)
	if err != nil {
		return nil, nil, err
	}

	dense := &Dense{weights: weights, bias: bias, inputs: inputs, outputs: outputs}
	return dense, sum, nil
}

// newOptimizer builds one per-variable optimizer instance. Every variable
// gets its own instance so moment estimates and step counters stay private.
func newOptimizer(cfg Config, source engine.InputSource) (engine.GradientOptimizer, error) {
	switch cfg.Optimizer {
	case Adam:
		return optim.NewAdamParams(cfg.LearningRate, optim.DefaultBeta1, optim.DefaultBeta2, optim.DefaultEpsilon, source)
	case AMSGrad:
		return optim.NewAMSGradParams(cfg.LearningRate, optim.DefaultBeta1, optim.DefaultBeta2, optim.DefaultEpsilon, source)
	default:
		return optim.NewSimpleGradientDescent(cfg.LearningRate, source)
	}
}

// Train runs the given number of full training steps with the cost in
// training mode.
func (n *Network) Train(epochs int) {
	n.cost.TrainingMode()
	for i := 0; i < epochs; i++ {
		n.ctx.ExecutePropagation()
	}
}

// Loss runs one full-pass forward over the next batch and returns the scalar
// cost. The mini-batch window advances like any other forward pass.
func (n *Network) Loss() float32 {
	n.cost.FullPassCalculationMode()
	results := n.ctx.ExecuteForwardPropagation()

	loss := results[len(results)-1]
	return loss.Buffer()[loss.Offset()]
}

// Predict runs one full-pass forward and returns the predicted rows for the
// next batch.
func (n *Network) Predict() [][]float32 {
	n.cost.FullPassCalculationMode()
	n.ctx.ExecuteForwardPropagation()

	predictions := n.cost.Predictions()
	shape := predictions.Shape()
	rows, cols := shape[0], shape[1]

	buffer := predictions.Buffer()
	offset := predictions.Offset()

	out := make([][]float32, rows)
	for i := range out {
		row := make([]float32, cols)
		copy(row, buffer[offset+i*cols:offset+(i+1)*cols])
		out[i] = row
	}
	return out
}

// Layers returns the network's dense layers in forward order.
func (n *Network) Layers() []*Dense {
	return n.layers
}

// Context exposes the underlying execution context.
func (n *Network) Context() *engine.ExecutionContext {
	return n.ctx
}
