// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package bytes

import (
	"github.com/mingzhao-db/riegeli/base"
)

// scratchDelegate is implemented by a concrete writer whose native window
// holds a bounded block (a compressor's accumulation buffer).
type scratchDelegate interface {
	// PushBehindScratch attempts to satisfy minLength using the concrete
	// writer's native window, flushing/rotating its bounded block if
	// necessary. Returns false (while remaining Healthy) if minLength
	// exceeds what the native window can ever hold contiguously, signaling
	// PushableWriter to fall back to scratch; returns false with !Healthy()
	// on a genuine failure.
	PushBehindScratch(minLength, recommended int) bool
	FlushBehindScratch(scope FlushScope) bool
	ReadModeBehindScratch(initialPos base.Position) (Reader, bool)
	SeekBehindScratch(newPos base.Position) bool
	SizeBehindScratch() (base.Position, bool)
	TruncateBehindScratch(newSize base.Position) bool
	ScratchCapabilities() Capabilities
	DoneBehindScratch() bool
}

// PushableWriter provides a synthetic contiguous window when a concrete
// writer's native window holds only a bounded block: a tagged state of
// "Native(window)" vs "Scratch(buffer, saved-native)", tracked with an
// explicit boolean and saved fields.
//
// A concrete writer embeds PushableWriter instead of WriterBase directly,
// implements scratchDelegate, and calls InitScratch with itself as the
// delegate.
// From the producer's perspective the window is seamless; from the
// concrete writer's perspective, scratch bytes only ever arrive through
// PushBehindScratch, exactly as if the producer had written them natively.
type PushableWriter struct {
	WriterBase

	delegate scratchDelegate

	usingScratch  bool
	scratch       base.Buffer
	savedBuf      []byte
	savedCursor   int
	savedStartPos base.Position
}

// InitScratch wires the scratch state machine. Concrete writers call this
// in place of WriterBase.Init.
func (p *PushableWriter) InitScratch(delegate scratchDelegate) {
	p.delegate = delegate
	p.WriterBase.Init(p)
}

func (p *PushableWriter) pushSlow(minLength, recommended int) bool {
	if p.usingScratch {
		p.scratch.EnsureCapacity(p.Cursor() + minLength)
		buf := p.scratch.Bytes()
		p.scratch.Resize(cap(buf))
		p.WriterBase.buf = p.scratch.Bytes()
		return true
	}
	if p.delegate.PushBehindScratch(minLength, recommended) {
		return true
	}
	if !p.Healthy() {
		return false
	}
	// Native window cannot hold minLength contiguously: enter scratch.
	p.savedBuf, p.savedCursor, p.savedStartPos = p.WriterBase.buf, p.WriterBase.cursor, p.WriterBase.startPos
	size := minLength
	if recommended > size {
		size = recommended
	}
	p.scratch.Resize(size)
	// pos() must stay continuous across the transition into scratch.
	p.SetWindow(p.scratch.Bytes(), base.AddPos(p.savedStartPos, base.Position(p.savedCursor)))
	p.usingScratch = true
	return true
}

// syncScratch replays any bytes accumulated in scratch back through the
// concrete writer's native path (PushBehindScratch), then restores the
// native window. Every flush/seek/close/read-mode crossing calls this
// first.
func (p *PushableWriter) syncScratch() bool {
	if !p.usingScratch {
		return p.Healthy()
	}
	data := append([]byte(nil), p.Filled()...)
	p.WriterBase.buf, p.WriterBase.cursor, p.WriterBase.startPos = p.savedBuf, p.savedCursor, p.savedStartPos
	p.usingScratch = false
	if !p.Healthy() {
		return false
	}
	for len(data) > 0 {
		if !p.delegate.PushBehindScratch(1, len(data)) {
			return false
		}
		n := copy(p.Window(), data)
		if n == 0 {
			return p.Fail(base.New(base.FailedPrecondition, "PushBehindScratch returned an empty window"))
		}
		p.Advance(n)
		data = data[n:]
	}
	return true
}

func (p *PushableWriter) flushImpl(scope FlushScope) bool {
	if !p.syncScratch() {
		return false
	}
	return p.delegate.FlushBehindScratch(scope)
}

func (p *PushableWriter) seekSlow(newPos base.Position) bool {
	if !p.syncScratch() {
		return false
	}
	return p.delegate.SeekBehindScratch(newPos)
}

func (p *PushableWriter) sizeImpl() (base.Position, bool) {
	if !p.syncScratch() {
		return 0, false
	}
	return p.delegate.SizeBehindScratch()
}

func (p *PushableWriter) truncateImpl(newSize base.Position) bool {
	if !p.syncScratch() {
		return false
	}
	return p.delegate.TruncateBehindScratch(newSize)
}

func (p *PushableWriter) readModeImpl(initialPos base.Position) (Reader, bool) {
	if !p.syncScratch() {
		return nil, false
	}
	return p.delegate.ReadModeBehindScratch(initialPos)
}

func (p *PushableWriter) capabilities() Capabilities {
	return p.delegate.ScratchCapabilities()
}

// done runs DoneBehindScratch even when syncing scratch fails (or the
// writer had already failed): the concrete hook is what cascades Close to
// an owned destination, which must happen regardless.
func (p *PushableWriter) done() bool {
	ok := p.syncScratch()
	if !p.delegate.DoneBehindScratch() {
		ok = false
	}
	return ok
}
