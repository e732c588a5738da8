// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package base

// Object is the lifecycle mixin every stream object (reader or writer)
// embeds. It tracks exactly one of four states: open-healthy, open-failed,
// closed-healthy, closed-failed. The first failure it observes latches,
// rather than letting callers continue to operate on a broken stream.
//
// Transitions are one-way except open -> open (a layer may fail and later
// be Reset() back to a fresh open object by its owner, but Object itself
// never un-fails or un-closes on its own).
type Object struct {
	closed bool
	status *Status
}

// Healthy reports whether the object is open and has not failed.
func (o *Object) Healthy() bool { return !o.closed && o.status == nil }

// Closed reports whether Close has already run once.
func (o *Object) Closed() bool { return o.closed }

// Status returns the latched failure, or nil if the object is healthy.
func (o *Object) Status() *Status { return o.status }

// Fail latches st as the object's failure, unless it has already failed
// (the first failure wins). Returns false always, so call sites can write
// `return o.Fail(st)` as their failing return statement.
func (o *Object) Fail(st *Status) bool {
	if o.status == nil {
		o.status = st
	}
	return false
}

// MarkClosed records that Close has run. It is idempotent: calling it a
// second time is a no-op.
func (o *Object) MarkClosed() { o.closed = true }

// ClearStatus un-latches a failure without touching the closed flag, used
// by ChunkDecoder.Recover() to resume after a recoverable per-record parse
// failure without otherwise disturbing the object's lifecycle state.
func (o *Object) ClearStatus() { o.status = nil }

// Reset returns the object to the open-healthy state, for Reset-style
// constructors that re-initialize an object over a new stream.
func (o *Object) Reset() {
	o.closed = false
	o.status = nil
}
