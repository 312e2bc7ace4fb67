// Copyright 2025 Weft ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package optim

import (
	"github.com/weft-ml/weft/internal/engine"
	"github.com/weft-ml/weft/internal/optim"
)

// Default Adam hyper-parameters.
const (
	DefaultLearningRate = optim.DefaultLearningRate
	DefaultBeta1        = optim.DefaultBeta1
	DefaultBeta2        = optim.DefaultBeta2
	DefaultEpsilon      = optim.DefaultEpsilon
)

// SimpleGradientDescent is plain stochastic gradient descent.
type SimpleGradientDescent = optim.SimpleGradientDescent

// NewSimpleGradientDescent creates an SGD optimizer bound to the graph's main
// input source, which provides the batch-size divisor.
//
// Example:
//
//	source, _ := engine.NewMiniBatchInputSource(ctx, features, rows, cols, batch)
//	sgd, _ := optim.NewSimpleGradientDescent(0.01, source)
//	weights, _ := engine.NewVariable(ctx, shape, init, sgd)
func NewSimpleGradientDescent(learningRate float32, source engine.InputSource) (*SimpleGradientDescent, error) {
	return optim.NewSimpleGradientDescent(learningRate, source)
}

// Adam is the Adam optimizer with bias correction.
type Adam = optim.Adam

// NewAdam creates an Adam optimizer with the default hyper-parameters.
func NewAdam(source engine.InputSource) (*Adam, error) {
	return optim.NewAdam(source)
}

// NewAdamParams creates an Adam optimizer with explicit hyper-parameters.
func NewAdamParams(learningRate, beta1, beta2, epsilon float32, source engine.InputSource) (*Adam, error) {
	return optim.NewAdamParams(learningRate, beta1, beta2, epsilon, source)
}

// AMSGrad is the AMSGrad variant of Adam.
type AMSGrad = optim.AMSGrad

// NewAMSGrad creates an AMSGrad optimizer with the default hyper-parameters.
func NewAMSGrad(source engine.InputSource) (*AMSGrad, error) {
	return optim.NewAMSGrad(source)
}

// NewAMSGradParams creates an AMSGrad optimizer with explicit hyper-parameters.
func NewAMSGradParams(learningRate, beta1, beta2, epsilon float32, source engine.InputSource) (*AMSGrad, error) {
	return optim.NewAMSGradParams(learningRate, beta1, beta2, epsilon, source)
}
