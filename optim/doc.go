// Copyright 2025 Weft ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package optim provides the per-variable optimizers for Weft training.
//
// # Overview
//
// This package contains:
//   - SimpleGradientDescent: θ ← θ − lr·g
//   - Adam: adaptive moments with bias correction
//   - AMSGrad: Adam moments with an elementwise-max second moment
//
// Every optimizer instance serves exactly one engine.Variable; moment
// estimates and step counters are private to the instance, so different
// variables can train with different learning rates and counters. The
// delivered gradient is divided by the batch size of the bound input source.
package optim
