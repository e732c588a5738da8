// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package bytes

import (
	"github.com/mingzhao-db/riegeli/base"
)

// DefaultBufferSize is the copy buffer size BufferedWriterBase uses when
// its embedder does not request a specific size.
const DefaultBufferSize = 64 * 1024

// writeCloser is the minimal sink contract BufferedWriterBase copies into:
// a `write(fd, buf, n)`-style call that may do a short write, plus Close.
// FDWriter implements this over *os.File; other write(2)-style sinks can
// reuse the scaffold by implementing the same two methods.
type writeCloser interface {
	// writeChunk writes as much of p as it can in one underlying syscall,
	// returning the number of bytes actually written. An error does not
	// necessarily mean n == 0; short writes are distinguished from retryable
	// errors by the embedder's writeChunk implementation.
	writeChunk(p []byte) (n int, err error)
	closeSink() error
}

// BufferedWriterBase is the reusable scaffold for writers whose sink only
// offers a write(2)-style API (a file descriptor, an output stream): it
// owns a private copy buffer, fills it until full or until a flush
// boundary, then hands whole chunks to the sink. This is the scaffold
// FDWriter builds on; any other write(2)-style sink would build on it the
// same way.
type BufferedWriterBase struct {
	WriterBase

	sink       writeCloser
	rawBuf     []byte
	bufferSize int
	owned      bool
}

// initBuffered wires the scaffold. Called by concrete constructors (e.g.
// NewFDWriter) after they have opened/adopted their sink.
func (w *BufferedWriterBase) initBuffered(delegate slowOps, sink writeCloser, bufferSize int, owned bool) {
	if bufferSize <= 0 {
		bufferSize = DefaultBufferSize
	}
	w.sink = sink
	w.bufferSize = bufferSize
	w.owned = owned
	w.rawBuf = make([]byte, bufferSize)
	w.Init(delegate)
	w.SetWindow(w.rawBuf, 0)
}

// flushToSink writes out everything currently buffered in the window,
// looping on short writes.
func (w *BufferedWriterBase) flushToSink() bool {
	if !w.Healthy() {
		return false
	}
	data := w.Filled()
	if len(data) == 0 {
		return true
	}
	written := 0
	for written < len(data) {
		n, err := w.sink.writeChunk(data[written:])
		written += n
		if err != nil {
			w.startPosAdvance(written)
			return w.Fail(base.FromError(err).Annotatef("writing %d bytes", len(data)-written))
		}
	}
	w.startPosAdvance(written)
	return true
}

func (w *BufferedWriterBase) startPosAdvance(n int) {
	w.SetWindow(w.rawBuf, base.AddPos(w.StartPos(), base.Position(n)))
}

func (w *BufferedWriterBase) pushSlow(minLength, recommended int) bool {
	if !w.flushToSink() {
		return false
	}
	if minLength > w.bufferSize {
		// The caller wants more than our buffer can ever hold contiguously;
		// hand back a right-sized one-shot buffer instead of growing rawBuf
		// permanently for a single oversized write.
		size := minLength
		if recommended > size {
			size = recommended
		}
		w.SetWindow(make([]byte, size), w.StartPos())
	}
	return true
}

func (w *BufferedWriterBase) flushImpl(scope FlushScope) bool {
	return w.flushToSink()
}

func (w *BufferedWriterBase) seekSlow(newPos base.Position) bool {
	return w.Fail(base.New(base.Unimplemented, "Seek: buffered writer does not support random access"))
}

func (w *BufferedWriterBase) sizeImpl() (base.Position, bool) {
	return 0, false
}

func (w *BufferedWriterBase) truncateImpl(newSize base.Position) bool {
	return w.Fail(base.New(base.Unimplemented, "Truncate: buffered writer does not support truncation"))
}

func (w *BufferedWriterBase) readModeImpl(initialPos base.Position) (Reader, bool) {
	return nil, false
}

func (w *BufferedWriterBase) capabilities() Capabilities {
	return Capabilities{}
}

func (w *BufferedWriterBase) done() bool {
	ok := w.flushToSink()
	if w.owned {
		if err := w.sink.closeSink(); err != nil && ok {
			ok = w.Fail(base.FromError(err).Annotate("closing sink"))
		}
	}
	return ok
}
