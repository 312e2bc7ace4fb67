// Copyright 2025 Weft ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package engine is the public surface of the Weft training core: a tensor
// operation graph over arena-backed memory with a forward/backward step
// driver and per-variable optimizers.
//
// # Overview
//
// A graph is built once and reused for every step:
//
//	ctx := engine.NewExecutionContext()
//
//	source, _ := engine.NewMiniBatchInputSource(ctx, features, rows, cols, batch)
//	targets, _ := engine.NewMiniBatchInputSource(ctx, labels, rows, classes, batch)
//
//	sgd, _ := optim.NewSimpleGradientDescent(0.01, source)
//	weights, _ := engine.NewVariable(ctx, tensor.Of(cols, classes), init, sgd)
//
//	product, _ := engine.NewMultiplication(ctx, source, weights)
//	cost, _ := engine.NewSoftmaxCrossEntropy(ctx, product, targets)
//
//	_ = ctx.InitializeExecution()
//
//	cost.TrainingMode()
//	for i := 0; i < epochs; i++ {
//		ctx.ExecutePropagation()
//	}
//
// Results are read back through TensorPointer handles: Buffer(), Offset() and
// Length() locate the slot inside its arena.
package engine
