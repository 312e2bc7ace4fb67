package engine

import "github.com/weft-ml/weft/internal/tensor"

// Operation is a node of the dataflow graph. An operation has up to two
// upstream inputs (left and right), a single downstream consumer (next, set
// by the consumer's constructor), and a layer index assigned during
// initialization.
//
// ForwardPass evaluates inputs recursively, writes the result into a freshly
// bump-allocated forward slot and returns its handle. The two backward calls
// use the cached upstream gradient (delivered through UpdateDerivativeChain)
// and the cached forward operands to write ∂L/∂input for one side into a
// backward slot; a null return means that side produces no gradient.
//
// MaxResultShape and the two allocation lists are declarative upper bounds
// consumed by the context's sizing pass before any step runs.
type Operation interface {
	ForwardPass() TensorPointer
	LeftBackwardDerivative() TensorPointer
	RightBackwardDerivative() TensorPointer

	MaxResultShape() tensor.Shape
	ForwardMemoryAllocations() []tensor.Shape
	BackwardMemoryAllocations() []tensor.Shape

	// RequiresGradient reports whether any input, transitively, is a
	// trainable Variable. Consumers skip the backward computation of a side
	// whose operation does not require it.
	RequiresGradient() bool

	// UpdateDerivativeChain delivers the upstream gradient dL/dY from the
	// downstream consumer.
	UpdateDerivativeChain(TensorPointer)

	Left() Operation
	Right() Operation
	Next() Operation
	LayerIndex() int

	setNext(Operation)
	setLayerIndex(int)
}

// CostFunction is the graph sink. In training mode its forward pass skips
// materializing the scalar loss and returns the null handle; in full-pass
// mode it allocates and returns a 1x1 loss on every forward.
type CostFunction interface {
	Operation

	TrainingMode()
	FullPassCalculationMode()

	// Predictions returns the forward handle of the predicted values the cost
	// was computed against (for softmax cross entropy, the row softmax).
	// Valid after a forward pass, for the duration of the step.
	Predictions() TensorPointer
}

// GradientOptimizer consumes a variable's accumulated gradient and mutates
// the variable's persistent storage in place. Implementations own their
// internal state and step counter; one instance serves exactly one variable.
type GradientOptimizer interface {
	Optimize(ctx *ExecutionContext, data []float32, shape tensor.Shape, gradient TensorPointer)
}

// InputSource is a leaf operation that feeds a matrix into the graph at each
// step boundary. SampleCount reports the number of rows in the current
// mini-batch; optimizers use it as the mean-gradient divisor.
type InputSource interface {
	Operation

	SampleCount() int
}

// baseOperation carries the graph plumbing shared by all operations.
type baseOperation struct {
	ctx   *ExecutionContext
	left  Operation
	right Operation
	next  Operation

	layerIndex int

	derivativeChain TensorPointer
}

func newBaseOperation(ctx *ExecutionContext, left, right Operation) baseOperation {
	return baseOperation{ctx: ctx, left: left, right: right, layerIndex: -1}
}

// linkOperands records self as the downstream consumer of both inputs.
// Called by every concrete constructor after the outer struct exists.
func (b *baseOperation) linkOperands(self Operation) {
	if b.left != nil {
		b.left.setNext(self)
	}
	if b.right != nil {
		b.right.setNext(self)
	}
}

func (b *baseOperation) Left() Operation  { return b.left }
func (b *baseOperation) Right() Operation { return b.right }
func (b *baseOperation) Next() Operation  { return b.next }

func (b *baseOperation) LayerIndex() int { return b.layerIndex }

func (b *baseOperation) setNext(op Operation)  { b.next = op }
func (b *baseOperation) setLayerIndex(idx int) { b.layerIndex = idx }

func (b *baseOperation) UpdateDerivativeChain(p TensorPointer) {
	b.derivativeChain = p
}

// operandsRequireGradient computes the RequiresGradient propagation rule for
// a freshly constructed operation.
func operandsRequireGradient(left, right Operation) bool {
	if left != nil && left.RequiresGradient() {
		return true
	}
	if right != nil && right.RequiresGradient() {
		return true
	}
	return false
}
