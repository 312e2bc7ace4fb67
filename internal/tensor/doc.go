// Package tensor provides the shape descriptor shared by the execution
// engine, the CPU kernels and the layer facade.
//
// A Shape is an immutable ordered sequence of positive dimensions. Its
// NumElements is the length in floats of the arena slot that holds a tensor
// of that shape; the engine carries shapes out-of-band next to its packed
// arena handles.
package tensor
