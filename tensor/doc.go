// Copyright 2025 Weft ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package tensor exposes the shape descriptor used throughout Weft.
//
// Shapes travel out-of-band next to the engine's packed arena handles: a
// handle carries region, offset and length, while the shape gives the
// row-major interpretation of the slot.
package tensor
