// Package cpu implements the numeric kernels the execution engine runs on.
//
// All kernels are pure functions over float32 slices with explicit offsets,
// matching the arena memory model: a kernel reads and writes flat buffer
// regions identified by (slice, offset, length) and never allocates.
//
// MatMul splits large products by output row across the available CPUs but
// joins before returning, so callers observe strictly sequential execution;
// every other kernel is a plain loop.
package cpu
