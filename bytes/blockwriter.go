// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package bytes

import (
	"encoding/binary"
	"hash/crc32"

	"github.com/mingzhao-db/riegeli/base"
	"github.com/mingzhao-db/riegeli/riegelimetrics"
)

// Chunk type tags shared by every framed block codec built on
// BlockWriterBase, matching the public Snappy framing specification
// (https://github.com/google/snappy/blob/master/framing_format.txt) and
// reused as-is by the LZ4 sibling for a consistent on-disk shape.
const (
	ChunkTypeCompressed   = 0x00
	ChunkTypeUncompressed = 0x01
	ChunkTypePadding      = 0xfe
	ChunkTypeStreamID     = 0xff
)

var blockCRCTable = crc32.MakeTable(crc32.Castagnoli)

// MaskedChecksum computes the masked CRC-32C every framed block codec in
// this module checksums its uncompressed block with, per framing_format.txt
// §3: rotate right 15, add 0xa282ead8, mod 2^32.
func MaskedChecksum(data []byte) uint32 {
	c := crc32.Checksum(data, blockCRCTable)
	return uint32(c>>15|c<<17) + 0xa282ead8
}

// PutUint24LE writes the 3-byte little-endian chunk length used by every
// chunk header.
func PutUint24LE(b []byte, v uint32) {
	b[0], b[1], b[2] = byte(v), byte(v>>8), byte(v>>16)
}

// GetUint24LE reads a 3-byte little-endian chunk length.
func GetUint24LE(b []byte) uint32 {
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16
}

// BlockCodec is implemented by a compression backend (snappy, lz4): it
// turns one accumulated, non-empty block of uncompressed bytes into a chunk
// payload, choosing between the compressed and uncompressed chunk type
// depending on which is smaller.
type BlockCodec interface {
	// StreamIdentifier is written once, before the first chunk.
	StreamIdentifier() []byte
	// MaxBlockSize bounds how much uncompressed data one chunk may hold.
	MaxBlockSize() int
	// Compress returns the chunk type tag and payload bytes for data.
	Compress(data []byte) (chunkType byte, payload []byte)
}

// BlockWriterBase is the shared scaffold for framed, block-oriented
// compressors (the framed-Snappy writer and its LZ4 sibling): it
// accumulates uncompressed bytes up to codec.MaxBlockSize() via
// PushableWriter's scratch contract, and emits one typed, checksummed chunk
// to dest per block boundary or explicit Flush/Close.
//
// The accumulation buffer *is* the PushableWriter window, so a producer's
// WriteBytes call is a plain copy into it with no intermediate buffering.
type BlockWriterBase struct {
	PushableWriter

	dest         base.Dependency[Writer]
	codec        BlockCodec
	uncompressed base.Buffer
	sizeHint     base.Position
	initialPos   base.Position
}

// InitBlockWriter wires the scaffold. Concrete codec writers call this from
// their constructor instead of PushableWriter.InitScratch directly.
//
// If dest is at position 0, the codec's stream identifier is emitted here,
// so that even a stream closed without any data carries the identifier; a
// dest already mid-stream gets no identifier (this writer is appending to a
// stream that already has one, and identifiers are never re-emitted).
func (w *BlockWriterBase) InitBlockWriter(delegate scratchDelegate, dest base.Dependency[Writer], codec BlockCodec, sizeHint base.Position) {
	w.dest = dest
	w.codec = codec
	w.sizeHint = sizeHint
	w.initialPos = dest.Get().Pos()
	w.InitScratch(delegate)
	if w.initialPos == 0 {
		if !dest.Get().WriteBytes(codec.StreamIdentifier()) {
			w.Fail(dest.Get().Status().Annotate("writing stream identifier"))
		}
	}
}

// Dest returns the destination writer. Unchanged by Close.
func (w *BlockWriterBase) Dest() Writer { return w.dest.Get() }

// IsDestOwning reports whether this writer owns dest (and so will cascade
// Close to it).
func (w *BlockWriterBase) IsDestOwning() bool { return w.dest.IsOwning() }

// CloseDestIfOwned closes dest iff this writer owns it.
func (w *BlockWriterBase) CloseDestIfOwned() bool {
	if !w.dest.IsOwning() {
		return true
	}
	if err := w.dest.Close(); err != nil {
		return w.Fail(base.FromError(err).Annotatef("at compressed position %d", w.Dest().Pos()-w.initialPos))
	}
	return true
}

// FlushBlock compresses and emits whatever is currently accumulated (a
// no-op if nothing is buffered). Precondition: Healthy(). It does not
// reset the window: the caller installs a fresh, empty one with
// RefreshBlockWindow before any further bytes are written.
func (w *BlockWriterBase) FlushBlock() bool {
	if !w.Healthy() {
		return false
	}
	data := w.Filled()
	if len(data) == 0 {
		return true
	}
	dest := w.dest.Get()
	chunkType, payload := w.codec.Compress(data)
	var header [4]byte
	header[0] = chunkType
	PutUint24LE(header[1:], uint32(len(payload))+4)
	var crcBuf [4]byte
	binary.LittleEndian.PutUint32(crcBuf[:], MaskedChecksum(data))
	if !dest.WriteBytes(header[:]) || !dest.WriteBytes(crcBuf[:]) || !dest.WriteBytes(payload) {
		return w.Fail(dest.Status().Annotatef("at compressed position %d", dest.Pos()-w.initialPos))
	}
	riegelimetrics.ObserveBytesPushed(len(data))
	riegelimetrics.ObserveBytesCompressed(len(payload))
	return true
}

// RefreshBlockWindow allocates (or reuses) the accumulation buffer and
// installs it as the native window, guaranteeing at least minLength writable
// bytes (minLength must not exceed the codec's block size). A concrete codec
// calls this from PushBehindScratch after FlushBlock succeeds. The very
// first allocation is right-sized down to the caller's size hint when one
// was given and still satisfies minLength; every later refresh uses the
// full block size.
func (w *BlockWriterBase) RefreshBlockWindow(minLength int) {
	size := w.codec.MaxBlockSize()
	if w.uncompressed.Cap() == 0 && w.sizeHint > 0 && w.sizeHint < base.Position(size) {
		if hint := int(w.sizeHint); hint >= minLength {
			size = hint
		}
	}
	w.uncompressed.Resize(size)
	w.SetWindow(w.uncompressed.Bytes(), w.Pos())
}
