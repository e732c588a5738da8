// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

// Package framed compresses data with the framed Snappy format
// (https://github.com/google/snappy/blob/master/framing_format.txt) before
// passing it to an inner bytes.Writer. See Writer and NewWriter.
package framed

import (
	"github.com/golang/snappy"

	"github.com/mingzhao-db/riegeli/base"
	"github.com/mingzhao-db/riegeli/bytes"
)

// maxBlockSize is the framing format's maximum uncompressed chunk size.
const maxBlockSize = 65536

// streamIdentifier is the 10-byte chunk emitted once before the first data
// chunk: type 0xff, len 0x000006, body "sNaPpY".
var streamIdentifier = []byte{0xff, 0x06, 0x00, 0x00, 's', 'N', 'a', 'P', 'p', 'Y'}

type snappyCodec struct{}

func (snappyCodec) StreamIdentifier() []byte { return streamIdentifier }
func (snappyCodec) MaxBlockSize() int        { return maxBlockSize }

func (snappyCodec) Compress(data []byte) (byte, []byte) {
	compressed := snappy.Encode(nil, data)
	if len(compressed) < len(data) {
		return bytes.ChunkTypeCompressed, compressed
	}
	return bytes.ChunkTypeUncompressed, data
}

// Options configures a Writer.
type Options struct {
	// SizeHint is the expected uncompressed size, used only to right-size
	// the initial accumulation buffer; a wrong hint never breaks anything.
	SizeHint base.Position
}

// Writer compresses data pushed to it with the framed Snappy format and
// appends the result to dest. The accumulation window is an owned
// uncompressed block of at most 65536 bytes, flushed as one typed,
// checksummed chunk per block boundary, explicit Flush, or Close.
type Writer struct {
	bytes.BlockWriterBase
}

var _ bytes.Writer = (*Writer)(nil)

// NewWriter wraps dest without taking ownership of it.
func NewWriter(dest bytes.Writer, opts Options) *Writer {
	return newWriter(base.Borrow(dest), opts)
}

// NewOwningWriter wraps dest, taking ownership: Close cascades.
func NewOwningWriter(dest bytes.Writer, opts Options) *Writer {
	return newWriter(base.Owned(dest, func() error {
		if !dest.Close() {
			return dest.Status()
		}
		return nil
	}), opts)
}

func newWriter(dest base.Dependency[bytes.Writer], opts Options) *Writer {
	w := &Writer{}
	w.InitBlockWriter(w, dest, snappyCodec{}, opts.SizeHint)
	return w
}

func (w *Writer) PushBehindScratch(minLength, recommended int) bool {
	if minLength > maxBlockSize {
		// The block can never hold this contiguously; PushableWriter falls
		// back to scratch and replays it through this hook in small pieces.
		return false
	}
	if !w.FlushBlock() {
		return false
	}
	w.RefreshBlockWindow(minLength)
	return true
}

// FlushBehindScratch always emits the accumulated block; the inner writer
// is flushed too once the caller's scope exceeds from-object or dest is
// owned (an owned dest must see its bytes surface even on a from-object
// flush, since nothing else will ever ask it to).
func (w *Writer) FlushBehindScratch(scope bytes.FlushScope) bool {
	if !w.FlushBlock() {
		return false
	}
	w.RefreshBlockWindow(0)
	if scope == bytes.FromObject && !w.IsDestOwning() {
		return true
	}
	return w.Dest().Flush(scope)
}

func (w *Writer) SeekBehindScratch(newPos base.Position) bool {
	return w.Fail(base.New(base.Unimplemented, "Seek: framed snappy writer does not support random access"))
}

func (w *Writer) SizeBehindScratch() (base.Position, bool) { return 0, false }

func (w *Writer) TruncateBehindScratch(newSize base.Position) bool {
	return w.Fail(base.New(base.Unimplemented, "Truncate: framed snappy writer does not support truncation"))
}

func (w *Writer) ReadModeBehindScratch(initialPos base.Position) (bytes.Reader, bool) {
	return nil, false
}

func (w *Writer) ScratchCapabilities() bytes.Capabilities { return bytes.Capabilities{} }

func (w *Writer) DoneBehindScratch() bool {
	ok := w.FlushBlock()
	if !w.CloseDestIfOwned() {
		ok = false
	}
	return ok
}
