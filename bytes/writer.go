// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

// Package bytes implements the Writer contract: a push-oriented byte sink
// that exposes a movable cursor window so producers can write directly into
// a destination's memory, and composes arbitrarily (a writer's sink is
// itself a Writer). See WriterBase for the shared fast path every concrete
// writer in this package builds on.
package bytes

import (
	"github.com/mingzhao-db/riegeli/base"
	"github.com/mingzhao-db/riegeli/riegelimetrics"
)

// FlushScope selects how hard Flush should try to surface buffered bytes.
type FlushScope int

const (
	// FromObject asks only this layer to surface its own buffered bytes to
	// its immediate destination.
	FromObject FlushScope = iota
	// FromProcess additionally asks the destination writer to surface bytes
	// to the OS.
	FromProcess
	// FromMachine additionally asks the OS to persist bytes to stable
	// storage (e.g. fsync).
	FromMachine
)

// String returns the scope's metrics label ("object", "process", "machine").
func (s FlushScope) String() string {
	switch s {
	case FromProcess:
		return "process"
	case FromMachine:
		return "machine"
	default:
		return "object"
	}
}

// Capabilities is the set of optional operations a writer advertises.
// Composed writers compute their own flags by conjunction with the inner
// writer's flags, masked by what the layer itself can preserve.
type Capabilities struct {
	RandomAccess   bool
	Size           bool
	Truncate       bool
	ReadMode       bool
	PrefersCopying bool
}

// And returns the flag-by-flag conjunction of c and other. (The limiting
// writer does not need it: it reports its inner writer's flags unchanged.)
func (c Capabilities) And(other Capabilities) Capabilities {
	return Capabilities{
		RandomAccess:   c.RandomAccess && other.RandomAccess,
		Size:           c.Size && other.Size,
		Truncate:       c.Truncate && other.Truncate,
		ReadMode:       c.ReadMode && other.ReadMode,
		PrefersCopying: c.PrefersCopying && other.PrefersCopying,
	}
}

// Reader is the minimal symmetric counterpart to Writer returned by
// ReadMode: a positioned, failable byte source. Concrete writers that
// cannot provide read-back (compressors, limiting writers whose inner does
// not support it) simply never construct one; ReadMode reports
// unimplemented instead.
type Reader interface {
	Read(p []byte) (int, error)
	Pos() base.Position
	Healthy() bool
	Status() *base.Status
	Close() bool
}

// Writer is the central abstraction of this library: a cursor window over
// some resource, plus push/write/flush/seek/size/truncate/read-mode
// operations and capability queries. Every entry point returns false (or,
// for Size/ReadMode, a false ok) on failure and latches a retrievable
// Status; no exceptions cross this contract.
type Writer interface {
	// Push ensures the window has at least minLength writable bytes
	// starting at the cursor, growing or refreshing it as needed.
	// recommended is a hint for how much to over-allocate when a refresh is
	// needed anyway; it never reduces the guarantee of minLength. Returns
	// false iff the writer has failed.
	Push(minLength, recommended int) bool

	// Window returns the writable region the producer may fill, valid
	// until the next call that crosses a boundary (Push, Write*, Flush,
	// Seek, Close, ...). Writing to Window()[:n] and then calling
	// Advance(n) is the fast path this whole library exists to expose.
	Window() []byte

	// Advance records that the producer filled the first n bytes of
	// Window(). Precondition: 0 <= n <= len(Window()).
	Advance(n int)

	// WriteBytes appends p. Equivalent to, but usually faster than,
	// repeated Push/copy/Advance.
	WriteBytes(p []byte) bool
	// WriteZeros appends n zero bytes.
	WriteZeros(n base.Position) bool

	// Flush surfaces buffered bytes per scope. A transient flush failure
	// does not latch unless the writer's own semantics elevate it.
	Flush(scope FlushScope) bool

	// Pos is the writer's logical position: non-decreasing across every
	// non-seeking operation.
	Pos() base.Position
	// Status returns the latched failure, or nil if healthy.
	Status() *base.Status
	// Healthy reports whether the writer is open and has not failed: it is
	// false after Close even when nothing failed.
	Healthy() bool
	// Closed reports whether Close has already run.
	Closed() bool

	// Capabilities reports which of the operations below are meaningfully
	// supported by this writer.
	Capabilities() Capabilities
	// Seek repositions the writer. Fails with Unimplemented if
	// Capabilities().RandomAccess is false.
	Seek(newPos base.Position) bool
	// Size reports the current size of the underlying resource.
	Size() (base.Position, bool)
	// Truncate resizes the underlying resource.
	Truncate(newSize base.Position) bool
	// ReadMode returns a Reader positioned at initialPos over the same
	// resource, or ok=false if unsupported or on failure.
	ReadMode(initialPos base.Position) (Reader, bool)

	// Close finalizes the writer. Idempotent: a second call observes the
	// same result as the first without redoing the work.
	Close() bool
}

// slowOps is implemented by every concrete writer and supplies the
// operations WriterBase cannot satisfy from the window alone. WriterBase
// calls back into the concrete type through this interface, which the
// concrete type sets as its own `delegate` at construction time (a
// self-reference, the common Go substitute for a template-method base
// class).
type slowOps interface {
	pushSlow(minLength, recommended int) bool
	flushImpl(scope FlushScope) bool
	seekSlow(newPos base.Position) bool
	sizeImpl() (base.Position, bool)
	truncateImpl(newSize base.Position) bool
	readModeImpl(initialPos base.Position) (Reader, bool)
	capabilities() Capabilities
	done() bool
}

// WriterBase is the reusable scaffold embedded by every concrete Writer in
// this library. It owns the cursor window (buf[cursor:] is the writable
// region) and the lifecycle mixin, and implements the fast path of every
// Writer method; anything the fast path cannot satisfy is forwarded to
// slowOps.
//
// The window is represented relative to index 0 of buf: the window's start
// is always buf[0] (a concrete writer that needs to expose a sub-window of
// some larger buffer simply slices buf accordingly before installing it),
// so only `cursor` and `startPos` need tracking in addition to buf itself.
type WriterBase struct {
	base.Object

	delegate slowOps

	buf      []byte
	cursor   int
	startPos base.Position
}

// Init wires the scaffold to the concrete writer that embeds it. Every
// concrete writer's constructor must call this before returning.
func (w *WriterBase) Init(delegate slowOps) {
	w.delegate = delegate
}

// SetWindow installs buf as the writer's window, with logical position pos
// corresponding to buf[0]. Concrete writers call this from makeBuffer-style
// steps after acquiring new backing memory (their own buffer, or borrowed
// memory from an inner writer).
func (w *WriterBase) SetWindow(buf []byte, pos base.Position) {
	w.buf = buf
	w.cursor = 0
	w.startPos = pos
}

// StartPos returns the logical position corresponding to buf[0] of the
// current window.
func (w *WriterBase) StartPos() base.Position { return w.startPos }

// Cursor returns the number of bytes of the current window already filled
// but not yet published to the underlying resource.
func (w *WriterBase) Cursor() int { return w.cursor }

// available reports 0 once the writer has failed, even if buf still has
// spare capacity: otherwise a fast path below could silently succeed on
// stale capacity after Fail, instead of falling through to the Healthy()
// check every slow path performs.
func (w *WriterBase) available() int {
	if !w.Object.Healthy() {
		return 0
	}
	return len(w.buf) - w.cursor
}

// Window implements Writer.
func (w *WriterBase) Window() []byte { return w.buf[w.cursor:] }

// Filled returns the portion of the current window already written by the
// producer (buf[:cursor]): what a buffered scaffold must flush to its
// sink before the window can be refreshed.
func (w *WriterBase) Filled() []byte { return w.buf[:w.cursor] }

// Advance implements Writer.
func (w *WriterBase) Advance(n int) {
	if n < 0 || n > w.available() {
		panic("riegeli: Advance out of range")
	}
	w.cursor += n
}

// Push implements Writer.
func (w *WriterBase) Push(minLength, recommended int) bool {
	if w.available() >= minLength {
		return true
	}
	if !w.Healthy() {
		return false
	}
	return w.delegate.pushSlow(minLength, recommended)
}

// WriteBytes implements Writer. The fast path copies directly into the
// window; the generic slow path loops on Push, which lets every concrete
// writer's pushSlow hook be the single place that knows how to grow,
// flush, or refresh the window. A write that would carry the position past
// the representable maximum is a distinct failure, not a silent saturation.
func (w *WriterBase) WriteBytes(p []byte) bool {
	if _, ok := base.AddPosChecked(w.Pos(), base.Position(len(p))); !ok {
		return w.Fail(base.New(base.ResourceExhausted, "position overflow"))
	}
	if len(p) <= w.available() {
		copy(w.buf[w.cursor:], p)
		w.cursor += len(p)
		return true
	}
	if !w.Healthy() {
		return false
	}
	for len(p) > 0 {
		if !w.Push(1, len(p)) {
			return false
		}
		n := copy(w.Window(), p)
		w.Advance(n)
		p = p[n:]
	}
	return true
}

// WriteZeros implements Writer.
func (w *WriterBase) WriteZeros(n base.Position) bool {
	if _, ok := base.AddPosChecked(w.Pos(), n); !ok {
		return w.Fail(base.New(base.ResourceExhausted, "position overflow"))
	}
	for n > 0 {
		if base.Position(w.available()) >= n {
			window := w.Window()
			for i := base.Position(0); i < n; i++ {
				window[i] = 0
			}
			w.Advance(int(n))
			return true
		}
		if !w.Healthy() {
			return false
		}
		if !w.Push(1, 0) {
			return false
		}
		window := w.Window()
		clear := len(window)
		if base.Position(clear) > n {
			clear = int(n)
		}
		for i := range window[:clear] {
			window[i] = 0
		}
		w.Advance(clear)
		n -= base.Position(clear)
	}
	return true
}

// Flush implements Writer.
func (w *WriterBase) Flush(scope FlushScope) bool {
	if !w.Healthy() {
		return false
	}
	riegelimetrics.ObserveFlush(scope.String())
	return w.delegate.flushImpl(scope)
}

// Fail shadows base.Object.Fail to additionally count the failure by
// status code at the point it is latched.
func (w *WriterBase) Fail(st *base.Status) bool {
	riegelimetrics.ObserveError(st.Code().String())
	return w.Object.Fail(st)
}

// Pos implements Writer.
func (w *WriterBase) Pos() base.Position {
	return base.AddPos(w.startPos, base.Position(w.cursor))
}

// Status implements Writer.
func (w *WriterBase) Status() *base.Status { return w.Object.Status() }

// Healthy implements Writer.
func (w *WriterBase) Healthy() bool { return w.Object.Healthy() }

// Closed implements Writer.
func (w *WriterBase) Closed() bool { return w.Object.Closed() }

// Capabilities implements Writer.
func (w *WriterBase) Capabilities() Capabilities { return w.delegate.capabilities() }

// Seek implements Writer.
func (w *WriterBase) Seek(newPos base.Position) bool {
	if !w.Healthy() {
		return false
	}
	if newPos == w.Pos() {
		return true
	}
	if !w.delegate.capabilities().RandomAccess {
		return w.Fail(base.New(base.Unimplemented, "Seek: writer does not support random access"))
	}
	return w.delegate.seekSlow(newPos)
}

// Size implements Writer.
func (w *WriterBase) Size() (base.Position, bool) {
	if !w.Healthy() {
		return 0, false
	}
	if !w.delegate.capabilities().Size {
		w.Fail(base.New(base.Unimplemented, "Size: writer does not support size queries"))
		return 0, false
	}
	return w.delegate.sizeImpl()
}

// Truncate implements Writer.
func (w *WriterBase) Truncate(newSize base.Position) bool {
	if !w.Healthy() {
		return false
	}
	if !w.delegate.capabilities().Truncate {
		return w.Fail(base.New(base.Unimplemented, "Truncate: writer does not support truncation"))
	}
	return w.delegate.truncateImpl(newSize)
}

// ReadMode implements Writer.
func (w *WriterBase) ReadMode(initialPos base.Position) (Reader, bool) {
	if !w.Healthy() {
		return nil, false
	}
	if !w.delegate.capabilities().ReadMode {
		w.Fail(base.New(base.Unimplemented, "ReadMode: writer does not support read mode"))
		return nil, false
	}
	return w.delegate.readModeImpl(initialPos)
}

// Close implements Writer. Idempotent: the first call runs the concrete
// writer's done() hook (which synchronizes layers and cascades to an owned
// inner writer); later calls just report the latched result. done() runs
// even on an already-failed writer; its data-moving steps short-circuit on
// the latched failure, but an owned inner writer must still be closed.
func (w *WriterBase) Close() bool {
	if w.Object.Closed() {
		return w.Object.Status() == nil
	}
	w.delegate.done()
	w.Object.MarkClosed()
	return w.Object.Status() == nil
}
