// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package bytes

import (
	"github.com/mingzhao-db/riegeli/base"
	"github.com/mingzhao-db/riegeli/riegelimetrics"
)

// LimitingWriter wraps an inner Writer and caps its absolute position at
// maxPos.
//
// In Exact mode, Close fails with InvalidArgument unless the final position
// equals maxPos exactly; otherwise Close only requires pos() <= maxPos
// (which every accepted write already guarantees).
//
// Status annotation is fully delegated to the inner writer: failures
// propagate the inner status unannotated, so a composed stack produces one
// coherent message chain instead of "limiting writer: inner writer: ...".
type LimitingWriter struct {
	WriterBase

	dest   base.Dependency[Writer]
	maxPos base.Position
	exact  bool
}

var _ Writer = (*LimitingWriter)(nil)

// LimitingWriterOptions configures a LimitingWriter.
type LimitingWriterOptions struct {
	// MaxPos is the absolute position the inner writer must not exceed.
	MaxPos base.Position
	// Exact requires the final position to equal MaxPos on Close.
	Exact bool
}

// NewLimitingWriter wraps dest without taking ownership of it: Close will
// not cascade to dest.
func NewLimitingWriter(dest Writer, opts LimitingWriterOptions) *LimitingWriter {
	return newLimitingWriter(base.Borrow(dest), opts)
}

// NewOwningLimitingWriter wraps dest, taking ownership: Close cascades.
func NewOwningLimitingWriter(dest Writer, opts LimitingWriterOptions) *LimitingWriter {
	return newLimitingWriter(base.Owned(dest, func() error {
		if !dest.Close() {
			return dest.Status()
		}
		return nil
	}), opts)
}

func newLimitingWriter(dest base.Dependency[Writer], opts LimitingWriterOptions) *LimitingWriter {
	lw := &LimitingWriter{dest: dest, maxPos: opts.MaxPos, exact: opts.Exact}
	lw.Init(lw)
	lw.makeBuffer()
	return lw
}

// syncBuffer publishes this writer's filled window bytes into dest by
// Advance-ing dest by the same amount (the window is literally dest's own
// window, narrowed to respect maxPos, so no copy is needed: the producer
// already wrote directly into dest's memory).
func (lw *LimitingWriter) syncBuffer() bool {
	dest := lw.dest.Get()
	dest.Advance(lw.Cursor())
	return dest.Healthy()
}

// makeBuffer re-acquires a window from dest, narrowed so that writing all
// of it could never push the absolute position past maxPos.
func (lw *LimitingWriter) makeBuffer() {
	dest := lw.dest.Get()
	window := dest.Window()
	remaining, ok := base.SubPos(lw.maxPos, dest.Pos())
	if !ok {
		remaining = 0
	}
	if base.Position(len(window)) > remaining {
		window = window[:remaining]
	}
	lw.SetWindow(window, dest.Pos())
}

// pushSlow forwards to dest after syncing, then re-narrows the window to
// respect maxPos. It does not itself reject an overlong minLength; that is
// WriteBytes/WriteZeros' job. Push only narrows the exposed window, Write
// is what rejects an outright overrun.
func (lw *LimitingWriter) pushSlow(minLength, recommended int) bool {
	dest := lw.dest.Get()
	if !lw.syncBuffer() {
		return lw.Fail(dest.Status())
	}
	ok := dest.Push(minLength, recommended)
	lw.makeBuffer()
	if !ok {
		return lw.Fail(dest.Status())
	}
	return true
}

func (lw *LimitingWriter) flushImpl(scope FlushScope) bool {
	dest := lw.dest.Get()
	if !lw.syncBuffer() {
		return lw.Fail(dest.Status())
	}
	ok := dest.Flush(scope)
	lw.makeBuffer()
	return ok
}

func (lw *LimitingWriter) seekSlow(newPos base.Position) bool {
	dest := lw.dest.Get()
	if !lw.syncBuffer() {
		return lw.Fail(dest.Status())
	}
	target := base.MinPos(newPos, lw.maxPos)
	ok := dest.Seek(target)
	lw.makeBuffer()
	if !ok {
		return lw.Fail(dest.Status())
	}
	return target == newPos
}

func (lw *LimitingWriter) sizeImpl() (base.Position, bool) {
	dest := lw.dest.Get()
	if !lw.syncBuffer() {
		lw.Fail(dest.Status())
		return 0, false
	}
	size, ok := dest.Size()
	lw.makeBuffer()
	if !ok {
		return 0, false
	}
	return base.MinPos(size, lw.maxPos), true
}

func (lw *LimitingWriter) truncateImpl(newSize base.Position) bool {
	dest := lw.dest.Get()
	if !lw.syncBuffer() {
		return lw.Fail(dest.Status())
	}
	ok := dest.Truncate(newSize)
	lw.makeBuffer()
	if !ok {
		return lw.Fail(dest.Status())
	}
	return true
}

func (lw *LimitingWriter) readModeImpl(initialPos base.Position) (Reader, bool) {
	dest := lw.dest.Get()
	if !lw.syncBuffer() {
		lw.Fail(dest.Status())
		return nil, false
	}
	r, ok := dest.ReadMode(initialPos)
	lw.makeBuffer()
	return r, ok
}

func (lw *LimitingWriter) capabilities() Capabilities {
	return lw.dest.Get().Capabilities()
}

func (lw *LimitingWriter) done() bool {
	ok := lw.Healthy()
	if ok {
		ok = lw.syncBuffer()
		if ok && lw.exact && lw.Pos() < lw.maxPos {
			ok = lw.Fail(base.Newf(base.InvalidArgument, "Not enough data: expected %d", lw.maxPos))
		}
	}
	if lw.dest.IsOwning() {
		if err := lw.dest.Close(); err != nil && ok {
			ok = lw.Fail(base.FromError(err))
		}
	}
	return ok
}

// WriteBytes overrides WriterBase's generic loop so that an attempt to
// write past maxPos fails precisely at the limit: the prefix that fits is
// delivered, the inner writer ends up at exactly maxPos, and the overrun
// latches resource-exhausted.
func (lw *LimitingWriter) WriteBytes(p []byte) bool {
	if !lw.Healthy() {
		return false
	}
	remaining, ok := base.SubPos(lw.maxPos, lw.Pos())
	if !ok || base.Position(len(p)) > remaining {
		if ok && remaining > 0 && !lw.WriterBase.WriteBytes(p[:remaining]) {
			return false
		}
		return lw.rejectOverrun()
	}
	return lw.WriterBase.WriteBytes(p)
}

// WriteZeros mirrors WriteBytes' limit check.
func (lw *LimitingWriter) WriteZeros(n base.Position) bool {
	if !lw.Healthy() {
		return false
	}
	remaining, ok := base.SubPos(lw.maxPos, lw.Pos())
	if !ok || n > remaining {
		if ok && remaining > 0 && !lw.WriterBase.WriteZeros(remaining) {
			return false
		}
		return lw.rejectOverrun()
	}
	return lw.WriterBase.WriteZeros(n)
}

// rejectOverrun syncs the inner writer (now at exactly maxPos, since the
// accepted prefix was delivered first) and fails with resource-exhausted,
// never letting the inner move past maxPos.
func (lw *LimitingWriter) rejectOverrun() bool {
	dest := lw.dest.Get()
	if !lw.syncBuffer() {
		return lw.Fail(dest.Status())
	}
	lw.makeBuffer()
	riegelimetrics.ObserveLimitRejection()
	return lw.Fail(base.New(base.ResourceExhausted, "Position limit exceeded"))
}
