// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

// Package framed compresses data with an LZ4-block framing scheme that
// mirrors snappy/framed's on-disk shape (stream identifier, typed
// checksummed chunks), backed by github.com/pierrec/lz4/v4 instead of
// Snappy. The two transforms share the same block-accumulation scaffold;
// nothing in that scaffold is specific to one compression backend.
package framed

import (
	"github.com/pierrec/lz4/v4"

	"github.com/mingzhao-db/riegeli/base"
	"github.com/mingzhao-db/riegeli/bytes"
)

// maxBlockSize bounds the uncompressed data accumulated per chunk, matching
// the framed-Snappy sibling so both transforms share block-boundary test
// vectors.
const maxBlockSize = 65536

// streamIdentifier distinguishes this framing from framed Snappy's; it is
// not part of any public LZ4 specification, only this module's own
// consistent block-framing scheme.
var streamIdentifier = []byte{0xff, 0x06, 0x00, 0x00, 'L', 'Z', '4', 'b', 'l', 'k'}

type lz4Codec struct {
	compressor lz4.Compressor
}

func (lz4Codec) StreamIdentifier() []byte { return streamIdentifier }
func (lz4Codec) MaxBlockSize() int        { return maxBlockSize }

func (c *lz4Codec) Compress(data []byte) (byte, []byte) {
	dst := make([]byte, lz4.CompressBlockBound(len(data)))
	n, err := c.compressor.CompressBlock(data, dst)
	if err == nil && n > 0 && n < len(data) {
		return bytes.ChunkTypeCompressed, dst[:n]
	}
	return bytes.ChunkTypeUncompressed, data
}

// Options configures a Writer.
type Options struct {
	// SizeHint is the expected uncompressed size; used only to right-size the
	// initial accumulation buffer.
	SizeHint base.Position
}

// Writer compresses data pushed to it with this module's LZ4 block framing
// and appends the result to dest. Same shape as snappy/framed.Writer.
type Writer struct {
	bytes.BlockWriterBase

	codec lz4Codec
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
	w.InitBlockWriter(w, dest, &w.codec, opts.SizeHint)
	return w
}

func (w *Writer) PushBehindScratch(minLength, recommended int) bool {
	if minLength > maxBlockSize {
		return false
	}
	if !w.FlushBlock() {
		return false
	}
	w.RefreshBlockWindow(minLength)
	return true
}

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
	return w.Fail(base.New(base.Unimplemented, "Seek: framed lz4 writer does not support random access"))
}

func (w *Writer) SizeBehindScratch() (base.Position, bool) { return 0, false }

func (w *Writer) TruncateBehindScratch(newSize base.Position) bool {
	return w.Fail(base.New(base.Unimplemented, "Truncate: framed lz4 writer does not support truncation"))
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
