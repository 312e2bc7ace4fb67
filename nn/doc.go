// Copyright 2025 Weft ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package nn provides a dense feed-forward network facade over the Weft
// execution engine.
//
// A Network wires mini-batch input sources, weight and bias variables,
// matrix multiplications, leaky-rectifier activations and a cost function
// into a single execution context, then drives training steps against it.
// Hidden layers apply the activation; the output layer is linear and feeds
// the configured cost.
package nn
