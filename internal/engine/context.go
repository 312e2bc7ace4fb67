package engine

import (
	"fmt"

	"github.com/weft-ml/weft/internal/tensor"
)

// ExecutionContext owns the graph registry, the three float arenas and the
// step driver. Multiple contexts can coexist; a context is not safe for
// concurrent use.
//
// Lifecycle: register Variables (graph roots), build the operation graph,
// call InitializeExecution once, then call ExecutePropagation per training
// step.
type ExecutionContext struct {
	forwardMemoryBuffer []float32
	forwardMemoryIndex  int

	previousBackwardMemoryBuffer []float32
	currentBackwardMemoryBuffer  []float32

	previousBackwardFlag int
	currentBackwardFlag  int

	backwardMemoryIndex int

	// layers holds the registered roots; index in this slice is the layer index.
	layers []*Variable

	// lastOperationsInLayers holds each layer's tail, highest layer index
	// first; this is the backward traversal order.
	lastOperationsInLayers []Operation

	// terminalOperations holds the operations with no downstream consumer,
	// in registration order of their originating roots.
	terminalOperations []Operation

	initialized bool
}

// NewExecutionContext creates an empty execution context.
func NewExecutionContext() *ExecutionContext {
	return &ExecutionContext{
		previousBackwardFlag: 3,
		currentBackwardFlag:  2,
	}
}

// RegisterOperation registers a graph root and assigns it the next layer
// index. Returns a GraphError on double registration or after initialization.
func (c *ExecutionContext) RegisterOperation(operation *Variable) error {
	if c.initialized {
		return &GraphError{Reason: "cannot register an operation after initialization"}
	}
	if operation.LayerIndex() > -1 {
		return &GraphError{Reason: "operation already registered"}
	}

	operation.setLayerIndex(len(c.layers))
	c.layers = append(c.layers, operation)
	return nil
}

// InitializeExecution partitions the graph into layers and sizes the arenas.
// One-shot: a second call returns a GraphError.
func (c *ExecutionContext) InitializeExecution() error {
	if c.initialized {
		return &GraphError{Reason: "execution context already initialized"}
	}
	if len(c.layers) == 0 {
		return &GraphError{Reason: "no operations registered"}
	}

	c.splitExecutionGraphByLayers()
	c.initializeBuffers()

	c.initialized = true
	return nil
}

// splitExecutionGraphByLayers walks the downstream chain of each root from
// the last registered to the first, claiming unassigned operations for the
// root's layer and stopping at operations already claimed by a different
// layer. The chain's last claimed operation becomes the layer tail; a tail
// with no consumer is a terminal operation.
//
// Leaves that are not registered roots (constants, input sources) are then
// assigned to the layer of their consumer, so every operation belongs to
// exactly one layer and the sizing pass counts every allocation once.
func (c *ExecutionContext) splitExecutionGraphByLayers() {
	for i := len(c.layers) - 1; i >= 0; i-- {
		var current Operation = c.layers[i]

		for current.Next() != nil {
			next := current.Next()
			if layerIndex := next.LayerIndex(); layerIndex > -1 && layerIndex != i {
				break
			}

			current = next
			current.setLayerIndex(i)
		}

		c.lastOperationsInLayers = append(c.lastOperationsInLayers, current)
	}

	// Terminals in registration order of their roots.
	for i := len(c.lastOperationsInLayers) - 1; i >= 0; i-- {
		if tail := c.lastOperationsInLayers[i]; tail.Next() == nil {
			c.terminalOperations = append(c.terminalOperations, tail)
		}
	}

	visited := make(map[Operation]bool)
	for _, tail := range c.lastOperationsInLayers {
		assignUpstreamLayer(tail, tail.LayerIndex(), visited)
	}
}

// assignUpstreamLayer claims still-unassigned upstream operations for the
// given layer, without crossing into operations owned by other layers.
func assignUpstreamLayer(op Operation, layerIndex int, visited map[Operation]bool) {
	if op == nil || visited[op] {
		return
	}
	visited[op] = true

	for _, input := range [2]Operation{op.Left(), op.Right()} {
		if input == nil {
			continue
		}
		switch input.LayerIndex() {
		case -1:
			input.setLayerIndex(layerIndex)
			assignUpstreamLayer(input, layerIndex, visited)
		case layerIndex:
			assignUpstreamLayer(input, layerIndex, visited)
		}
	}
}

// initializeBuffers sizes and allocates the arenas: the forward arena holds
// the sum over layers of forward footprints, the two backward arenas each
// hold the maximum over layers of backward footprints.
func (c *ExecutionContext) initializeBuffers() {
	forwardLength := 0
	backwardLength := 0

	for _, root := range c.layers {
		layerIndex := root.LayerIndex()

		forwardLength += layerMemoryRequirements(root, layerIndex,
			make(map[Operation]bool), forwardFootprint)

		layerBackward := layerMemoryRequirements(root, layerIndex,
			make(map[Operation]bool), backwardFootprint)
		if layerBackward > backwardLength {
			backwardLength = layerBackward
		}
	}

	c.forwardMemoryBuffer = make([]float32, forwardLength)
	c.forwardMemoryIndex = 0

	c.previousBackwardMemoryBuffer = make([]float32, backwardLength)
	c.currentBackwardMemoryBuffer = make([]float32, backwardLength)
	c.backwardMemoryIndex = 0
}

// layerMemoryRequirements sums a footprint over the in-layer subgraph
// reachable from op, visiting each operation once.
func layerMemoryRequirements(op Operation, layerIndex int, visited map[Operation]bool, footprint func(Operation) int) int {
	if op == nil || visited[op] || op.LayerIndex() != layerIndex {
		return 0
	}
	visited[op] = true

	total := footprint(op)
	total += layerMemoryRequirements(op.Next(), layerIndex, visited, footprint)
	total += layerMemoryRequirements(op.Left(), layerIndex, visited, footprint)
	total += layerMemoryRequirements(op.Right(), layerIndex, visited, footprint)
	return total
}

func forwardFootprint(op Operation) int {
	total := 0
	for _, shape := range op.ForwardMemoryAllocations() {
		total += shape.NumElements()
	}
	return total
}

func backwardFootprint(op Operation) int {
	total := 0
	for _, shape := range op.BackwardMemoryAllocations() {
		total += shape.NumElements()
	}
	return total
}

// AllocateForwardMemory bump-allocates a forward slot for the given shape.
// Exceeding the sized capacity is an invariant violation and panics.
func (c *ExecutionContext) AllocateForwardMemory(shape tensor.Shape) TensorPointer {
	length := shape.NumElements()
	if length > maxSlotLength {
		panic(fmt.Sprintf("allocation of %d floats exceeds maximum slot length", length))
	}
	if c.forwardMemoryIndex+length > len(c.forwardMemoryBuffer) {
		panic(fmt.Sprintf("forward arena overflow: index %d + length %d exceeds capacity %d",
			c.forwardMemoryIndex, length, len(c.forwardMemoryBuffer)))
	}

	address := packAddress(forwardMemoryType, c.forwardMemoryIndex, length)
	c.forwardMemoryIndex += length

	return TensorPointer{address: address, shape: shape.Clone(), ctx: c}
}

// AllocateBackwardMemory bump-allocates a backward slot for the given shape
// in the current backward arena.
func (c *ExecutionContext) AllocateBackwardMemory(shape tensor.Shape) TensorPointer {
	length := shape.NumElements()
	if length > maxSlotLength {
		panic(fmt.Sprintf("allocation of %d floats exceeds maximum slot length", length))
	}
	if c.backwardMemoryIndex+length > len(c.currentBackwardMemoryBuffer) {
		panic(fmt.Sprintf("backward arena overflow: index %d + length %d exceeds capacity %d",
			c.backwardMemoryIndex, length, len(c.currentBackwardMemoryBuffer)))
	}

	address := packAddress(c.currentBackwardFlag, c.backwardMemoryIndex, length)
	c.backwardMemoryIndex += length

	return TensorPointer{address: address, shape: shape.Clone(), ctx: c}
}

// MemoryBuffer resolves a packed address to its backing float array. Panics
// on a null address; resolving is the only way external code reads results.
func (c *ExecutionContext) MemoryBuffer(address Address) []float32 {
	if address.IsNull() {
		panic("address is null")
	}

	switch memoryType := address.memoryType(); {
	case memoryType == forwardMemoryType:
		return c.forwardMemoryBuffer
	case memoryType == c.currentBackwardFlag:
		return c.currentBackwardMemoryBuffer
	default:
		return c.previousBackwardMemoryBuffer
	}
}

// ExecuteForwardPropagation resets the forward arena and evaluates every
// terminal operation, returning their result handles in registration order.
func (c *ExecutionContext) ExecuteForwardPropagation() []TensorPointer {
	c.mustBeInitialized()

	c.forwardMemoryIndex = 0

	result := make([]TensorPointer, len(c.terminalOperations))
	for i, operation := range c.terminalOperations {
		result[i] = operation.ForwardPass()
	}
	return result
}

// ExecuteBackwardPropagation walks the layers from the highest index to the
// lowest, running each layer's in-layer backward traversal and swapping the
// backward arenas at every layer boundary.
func (c *ExecutionContext) ExecuteBackwardPropagation() {
	c.mustBeInitialized()

	for _, tail := range c.lastOperationsInLayers {
		c.backStep(tail)
		c.swapBackwardMemoryBuffers()
	}
}

// ExecutePropagation runs one full training step: forward then backward.
// Variables receive their gradients, and thus fire their optimizers, during
// the backward walk.
func (c *ExecutionContext) ExecutePropagation() []TensorPointer {
	result := c.ExecuteForwardPropagation()
	c.ExecuteBackwardPropagation()
	return result
}

// backStep computes and delivers the gradients of op's inputs, recursing only
// into inputs of the same layer. Inter-layer gradient handoff happens through
// the derivative chain value under the arena swap.
func (c *ExecutionContext) backStep(operation Operation) {
	layerIndex := operation.LayerIndex()

	if left := operation.Left(); left != nil && left.RequiresGradient() {
		result := operation.LeftBackwardDerivative()
		left.UpdateDerivativeChain(result)

		if left.LayerIndex() == layerIndex {
			c.backStep(left)
		}
	}

	if right := operation.Right(); right != nil && right.RequiresGradient() {
		result := operation.RightBackwardDerivative()
		right.UpdateDerivativeChain(result)

		if right.LayerIndex() == layerIndex {
			c.backStep(right)
		}
	}
}

// swapBackwardMemoryBuffers carries the just-written gradients over to the
// previous buffer and swaps the region tags, so handles allocated during the
// finished layer remain readable for exactly one more layer.
func (c *ExecutionContext) swapBackwardMemoryBuffers() {
	copy(c.previousBackwardMemoryBuffer[:c.backwardMemoryIndex],
		c.currentBackwardMemoryBuffer[:c.backwardMemoryIndex])

	c.previousBackwardFlag, c.currentBackwardFlag = c.currentBackwardFlag, c.previousBackwardFlag

	c.backwardMemoryIndex = 0
}

func (c *ExecutionContext) mustBeInitialized() {
	if !c.initialized {
		panic("execution context is not initialized")
	}
}
