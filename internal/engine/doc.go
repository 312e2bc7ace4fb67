// Package engine implements the arena-backed training execution core.
//
// A graph of Operations is built once, registered on an ExecutionContext and
// reused for every training step. The context partitions the graph into
// layers (one per registered Variable plus its downstream activation chain),
// sizes three flat float32 arenas from the operations' declared footprints,
// and then drives each step: a recursive forward pass that bump-allocates
// results in the forward arena, followed by a reverse walk over layers that
// writes gradients into two alternating backward arenas.
//
// Memory is addressed through packed 64-bit handles (see TensorPointer): two
// tag bits select the arena, thirty bits carry the slot length in floats and
// the low thirty-two bits carry the offset. Forward handles stay valid for
// the whole step; backward handles survive exactly one arena swap, which is
// what lets the gradient of a layer boundary cross into the next layer's
// backward pass.
//
// The engine is single-threaded within a step. Kernels (internal/backend/cpu)
// may parallelize internally but always join before returning.
package engine
