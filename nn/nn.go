// Copyright 2025 Weft ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package nn

import (
	"github.com/weft-ml/weft/internal/nn"
)

// Network is a dense feed-forward network bound to one execution context.
type Network = nn.Network

// Dense is one fully connected layer of a Network.
type Dense = nn.Dense

// Config holds network construction settings.
type Config = nn.Config

// CostKind selects the network's cost function.
type CostKind = nn.CostKind

// Supported cost functions.
const (
	MeanSquaredError    = nn.MeanSquaredError
	SoftmaxCrossEntropy = nn.SoftmaxCrossEntropy
)

// OptimizerKind selects the per-variable optimizer.
type OptimizerKind = nn.OptimizerKind

// Supported optimizers.
const (
	GradientDescent = nn.GradientDescent
	Adam            = nn.Adam
	AMSGrad         = nn.AMSGrad
)

// NewNetwork builds and initializes a network over row-major feature and
// label matrices.
//
// Example:
//
//	net, err := nn.NewNetwork(features, labels, rows, 2, 1, []int{8}, nn.Config{
//	    LearningRate: 0.01,
//	    Optimizer:    nn.Adam,
//	    Cost:         nn.MeanSquaredError,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	net.Train(800)
//	fmt.Println("loss:", net.Loss())
func NewNetwork(features, labels []float32, rows, featureCols, labelCols int, hidden []int, cfg Config) (*Network, error) {
	return nn.NewNetwork(features, labels, rows, featureCols, labelCols, hidden, cfg)
}
