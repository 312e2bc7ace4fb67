// Copyright 2025 Weft ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package engine

import (
	"github.com/weft-ml/weft/internal/engine"
	"github.com/weft-ml/weft/internal/tensor"
)

// ExecutionContext owns the graph registry, the arenas and the step driver.
type ExecutionContext = engine.ExecutionContext

// NewExecutionContext creates an empty execution context.
//
// Example:
//
//	ctx := engine.NewExecutionContext()
//	weights, _ := engine.NewVariable(ctx, tensor.Of(2, 2), data, optimizer)
//	...build the graph...
//	_ = ctx.InitializeExecution()
//	ctx.ExecutePropagation()
func NewExecutionContext() *ExecutionContext {
	return engine.NewExecutionContext()
}

// TensorPointer couples a packed 64-bit arena address with its shape.
type TensorPointer = engine.TensorPointer

// Address is the packed 64-bit arena handle.
type Address = engine.Address

// NullAddress is the null handle; dereferencing it panics.
const NullAddress = engine.NullAddress

// NullPointer is the null tensor pointer.
var NullPointer = engine.NullPointer

// AddressOffset extracts the float offset of an address. Panics on null.
func AddressOffset(a Address) int {
	return engine.AddressOffset(a)
}

// AddressLength extracts the slot length in floats of an address. Panics on null.
func AddressLength(a Address) int {
	return engine.AddressLength(a)
}

// Operation is a node of the dataflow graph.
type Operation = engine.Operation

// CostFunction is the graph sink with training / full-pass modes.
type CostFunction = engine.CostFunction

// GradientOptimizer consumes a variable's gradient and mutates its storage.
type GradientOptimizer = engine.GradientOptimizer

// InputSource is a leaf operation feeding matrices at step boundaries.
type InputSource = engine.InputSource

// Graph leaves

// Variable is a registered trainable root with persistent storage.
type Variable = engine.Variable

// NewVariable creates a variable, registers it on the context and binds it to
// the optimizer.
func NewVariable(ctx *ExecutionContext, shape tensor.Shape, data []float32, optimizer GradientOptimizer) (*Variable, error) {
	return engine.NewVariable(ctx, shape, data, optimizer)
}

// Constant is a fixed, non-trainable leaf.
type Constant = engine.Constant

// NewConstant creates a constant leaf.
func NewConstant(ctx *ExecutionContext, shape tensor.Shape, data []float32) (*Constant, error) {
	return engine.NewConstant(ctx, shape, data)
}

// MiniBatchInputSource feeds successive row windows of a backing matrix.
type MiniBatchInputSource = engine.MiniBatchInputSource

// NewMiniBatchInputSource creates a source over a (rows, cols) matrix that
// emits (batchSize, cols) windows.
func NewMiniBatchInputSource(ctx *ExecutionContext, data []float32, rows, cols, batchSize int) (*MiniBatchInputSource, error) {
	return engine.NewMiniBatchInputSource(ctx, data, rows, cols, batchSize)
}

// RandomGradientSource is a test-support source emitting seeded
// pseudo-random matrices each forward pass.
type RandomGradientSource = engine.RandomGradientSource

// NewRandomGradientSource creates a source emitting (rows, cols) matrices
// drawn from the given seed.
func NewRandomGradientSource(ctx *ExecutionContext, rows, cols int, seed int64) (*RandomGradientSource, error) {
	return engine.NewRandomGradientSource(ctx, rows, cols, seed)
}

// Elementary operations

// Add computes the element-wise sum, with optional bias-row broadcast.
type Add = engine.Add

// NewAdd creates an addition node.
func NewAdd(ctx *ExecutionContext, left, right Operation) (*Add, error) {
	return engine.NewAdd(ctx, left, right)
}

// Multiplication is matrix multiplication.
type Multiplication = engine.Multiplication

// NewMultiplication creates a matrix-multiplication node.
func NewMultiplication(ctx *ExecutionContext, left, right Operation) (*Multiplication, error) {
	return engine.NewMultiplication(ctx, left, right)
}

// HadamardProduct is the element-wise product.
type HadamardProduct = engine.HadamardProduct

// NewHadamardProduct creates an element-wise multiplication node.
func NewHadamardProduct(ctx *ExecutionContext, left, right Operation) (*HadamardProduct, error) {
	return engine.NewHadamardProduct(ctx, left, right)
}

// LeakyReLU is the leaky rectifier activation.
type LeakyReLU = engine.LeakyReLU

// NewLeakyReLU creates a leaky rectifier over the given operation.
func NewLeakyReLU(ctx *ExecutionContext, slope float32, left Operation) *LeakyReLU {
	return engine.NewLeakyReLU(ctx, slope, left)
}

// BroadcastBias replicates a bias row across a batch.
type BroadcastBias = engine.BroadcastBias

// NewBroadcastBias creates a broadcast node replicating the (1, N) operand
// across rows rows.
func NewBroadcastBias(ctx *ExecutionContext, bias Operation, rows int) (*BroadcastBias, error) {
	return engine.NewBroadcastBias(ctx, bias, rows)
}

// Cost functions

// SoftmaxCrossEntropy is the fused softmax + cross-entropy cost.
type SoftmaxCrossEntropy = engine.SoftmaxCrossEntropy

// NewSoftmaxCrossEntropy creates the cost node over predicted logits and
// expected probabilities.
func NewSoftmaxCrossEntropy(ctx *ExecutionContext, predicted, expected Operation) (*SoftmaxCrossEntropy, error) {
	return engine.NewSoftmaxCrossEntropy(ctx, predicted, expected)
}

// MSECostFunction is the summed squared-error cost.
type MSECostFunction = engine.MSECostFunction

// NewMSECostFunction creates the cost node over predicted and expected
// operands.
func NewMSECostFunction(ctx *ExecutionContext, predicted, expected Operation) (*MSECostFunction, error) {
	return engine.NewMSECostFunction(ctx, predicted, expected)
}

// Errors

// GraphError reports invalid graph construction or lifecycle calls.
type GraphError = engine.GraphError

// ShapeError reports incompatible operand shapes; it carries both.
type ShapeError = engine.ShapeError

// ConfigurationError reports missing or invalid settings.
type ConfigurationError = engine.ConfigurationError
