// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package base

import "math"

// Position is an unsigned byte offset into a stream. All arithmetic helpers
// below either saturate at math.MaxUint64 or report overflow explicitly;
// nothing wraps silently.
type Position uint64

// MaxPosition is the largest representable Position.
const MaxPosition = Position(math.MaxUint64)

// AddPos adds b to a, saturating at MaxPosition instead of wrapping.
func AddPos(a, b Position) Position {
	sum := a + b
	if sum < a {
		// Overflow: wrapped around past MaxPosition.
		return MaxPosition
	}
	return sum
}

// SubPos subtracts b from a. ok is false if b > a (the caller asked for a
// negative offset); in that case the returned Position is 0.
func SubPos(a, b Position) (result Position, ok bool) {
	if b > a {
		return 0, false
	}
	return a - b, true
}

// AddPosChecked adds b to a, returning ok=false if the result would
// overflow MaxPosition rather than saturating. Used where overflow must be
// a distinct failure (§3: "overflow is a distinct failure").
func AddPosChecked(a, b Position) (result Position, ok bool) {
	sum := a + b
	if sum < a {
		return 0, false
	}
	return sum, true
}

// MinPos returns the smaller of two Positions.
func MinPos(a, b Position) Position {
	if a < b {
		return a
	}
	return b
}
