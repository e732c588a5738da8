// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package bytes

import (
	"bytes"

	"github.com/mingzhao-db/riegeli/base"
)

// BytesWriter is a minimal in-memory sink backed by a growable []byte. It
// is deliberately tiny and exists chiefly so the Writer contract has a
// random-access, resizable sink to exercise.
//
// Invariant: the window always equals data[len(data):cap(data)], and
// Cursor() counts how many of those spare bytes are filled but not yet
// reflected in len(data). "Syncing" means folding Cursor() into len(data)
// and re-slicing the window over whatever spare capacity remains.
type BytesWriter struct {
	WriterBase

	data []byte
}

var _ Writer = (*BytesWriter)(nil)

// NewBytesWriter creates a BytesWriter appending to (a copy of) initial.
func NewBytesWriter(initial []byte) *BytesWriter {
	w := &BytesWriter{data: append([]byte(nil), initial...)}
	w.Init(w)
	w.SetWindow(w.data[len(w.data):cap(w.data)], base.Position(len(w.data)))
	return w
}

// Bytes returns all bytes written so far, folding in anything still
// sitting in the window.
func (w *BytesWriter) Bytes() []byte {
	w.syncData()
	return w.data
}

// syncData folds the window's filled prefix back into data's logical
// length and re-slices the window over whatever spare capacity remains.
func (w *BytesWriter) syncData() {
	w.data = w.data[:len(w.data)+w.Cursor()]
	w.SetWindow(w.data[len(w.data):cap(w.data)], base.Position(len(w.data)))
}

func (w *BytesWriter) pushSlow(minLength, recommended int) bool {
	w.syncData()
	need := len(w.data) + minLength
	if grow := len(w.data) + recommended; grow > need {
		need = grow
	}
	if cap(w.data) < need {
		grown := make([]byte, len(w.data), need*2)
		copy(grown, w.data)
		w.data = grown
		w.SetWindow(w.data[len(w.data):cap(w.data)], base.Position(len(w.data)))
	}
	return true
}

func (w *BytesWriter) flushImpl(scope FlushScope) bool {
	w.syncData()
	return true
}

func (w *BytesWriter) seekSlow(newPos base.Position) bool {
	w.syncData()
	n := int(newPos)
	if n > len(w.data) {
		for len(w.data) < n {
			w.data = append(w.data, 0)
		}
	} else {
		w.data = w.data[:n]
	}
	w.SetWindow(w.data[len(w.data):cap(w.data)], base.Position(len(w.data)))
	return true
}

func (w *BytesWriter) sizeImpl() (base.Position, bool) {
	return base.Position(len(w.data) + w.Cursor()), true
}

func (w *BytesWriter) truncateImpl(newSize base.Position) bool {
	w.syncData()
	n := int(newSize)
	if n > len(w.data) {
		return w.Fail(base.New(base.InvalidArgument, "Truncate: new size exceeds current size"))
	}
	w.data = w.data[:n]
	w.SetWindow(w.data[len(w.data):cap(w.data)], base.Position(len(w.data)))
	return true
}

func (w *BytesWriter) readModeImpl(initialPos base.Position) (Reader, bool) {
	w.syncData()
	if int(initialPos) > len(w.data) {
		initialPos = base.Position(len(w.data))
	}
	r := bytes.NewReader(w.data[initialPos:])
	return &bytesReader{r: r, pos: initialPos}, true
}

func (w *BytesWriter) capabilities() Capabilities {
	return Capabilities{RandomAccess: true, Size: true, Truncate: true, ReadMode: true}
}

func (w *BytesWriter) done() bool {
	w.syncData()
	return true
}

// bytesReader is the Reader returned by BytesWriter.ReadMode: a read-only
// snapshot of the data written so far, from initialPos onward.
type bytesReader struct {
	r      *bytes.Reader
	pos    base.Position
	status *base.Status
}

func (r *bytesReader) Read(p []byte) (int, error) {
	n, err := r.r.Read(p)
	r.pos += base.Position(n)
	return n, err
}

func (r *bytesReader) Pos() base.Position   { return r.pos }
func (r *bytesReader) Healthy() bool        { return r.status == nil }
func (r *bytesReader) Status() *base.Status { return r.status }
func (r *bytesReader) Close() bool          { return true }
