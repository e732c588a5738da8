// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package chunkencoding

import (
	"github.com/golang/protobuf/proto"
	"google.golang.org/protobuf/encoding/protowire"

	"github.com/mingzhao-db/riegeli/base"
)

// ChunkDecoder consumes a decoded chunk (one call to Reset) and yields its
// records in order. Invariants held across every transition: limits is
// sorted; limits[len-1] == len(values) when non-empty; values-cursor ==
// (index == 0 ? 0 : limits[index-1]); recoverable implies !Healthy().
type ChunkDecoder struct {
	base.Object

	filter FieldFilter

	limits    []uint64
	values    []byte
	valuesPos uint64
	index     uint64

	recoverable bool
}

// NewChunkDecoder creates an empty decoder with the given field filter.
func NewChunkDecoder(filter FieldFilter) *ChunkDecoder {
	return &ChunkDecoder{filter: filter}
}

// NumRecords returns the number of records in the current chunk.
func (d *ChunkDecoder) NumRecords() uint64 { return uint64(len(d.limits)) }

// Index returns the index of the next record ReadRecord* will return.
func (d *ChunkDecoder) Index() uint64 { return d.index }

// Reset parses chunk and positions the decoder at its first record.
// chunk.Type must not be TypeFileSignature or TypePadding.
func (d *ChunkDecoder) Reset(chunk Chunk) bool {
	d.Object.Reset()
	d.limits = nil
	d.values = nil
	d.valuesPos = 0
	d.index = 0
	d.recoverable = false

	if chunk.Type != TypeData {
		return d.Fail(base.Newf(base.InvalidArgument, "ChunkDecoder.Reset: chunk type %v cannot hold records", chunk.Type))
	}

	data := chunk.Payload
	numRecords, n := protowire.ConsumeVarint(data)
	if n < 0 {
		return d.Fail(base.New(base.DataLoss, "decoding record count"))
	}
	data = data[n:]

	limits := make([]uint64, 0, numRecords)
	var total uint64
	for i := uint64(0); i < numRecords; i++ {
		length, n := protowire.ConsumeVarint(data)
		if n < 0 {
			return d.Fail(base.Newf(base.DataLoss, "decoding record length %d", i))
		}
		data = data[n:]
		total += length
		limits = append(limits, total)
	}
	if uint64(len(data)) != total {
		return d.Fail(base.Newf(base.DataLoss, "values size mismatch: offsets table says %d, got %d", total, len(data)))
	}

	d.limits = limits
	d.values = data
	return true
}

// next returns the raw bytes of the record at the current index, advancing
// past it, or ok=false at EOF or on a prior failure. It never itself fails:
// raw reads cannot be unparsable.
func (d *ChunkDecoder) next() (record []byte, ok bool) {
	if d.index == uint64(len(d.limits)) || !d.Healthy() {
		return nil, false
	}
	start := d.valuesPos
	limit := d.limits[d.index]
	d.index++
	d.valuesPos = limit
	return d.values[start:limit], true
}

// ReadBytes reads the next record as raw bytes. The returned slice aliases
// the chunk's values buffer and is valid until the next Reset.
func (d *ChunkDecoder) ReadBytes() ([]byte, bool) {
	return d.next()
}

// ReadString reads the next record as a copied string.
func (d *ChunkDecoder) ReadString() (string, bool) {
	b, ok := d.next()
	if !ok {
		return "", false
	}
	return string(b), true
}

// ReadMessage parses the next record as a proto message under the
// configured field filter. On a malformed record, it latches a data-loss
// status carrying the record index and sets recoverable so Recover can skip
// past it; positioning has already advanced past the record either way.
func (d *ChunkDecoder) ReadMessage(msg proto.Message) bool {
	record, ok := d.next()
	if !ok {
		return false
	}
	recordIndex := d.index - 1
	filtered, ok := d.filter.apply(record)
	if !ok {
		d.recoverable = true
		return d.Fail(base.Newf(base.DataLoss, "record %d: malformed field tag", recordIndex))
	}
	if err := proto.Unmarshal(filtered, msg); err != nil {
		d.recoverable = true
		return d.Fail(base.Newf(base.DataLoss, "record %d: %v", recordIndex, err))
	}
	return true
}

// Recover clears a recoverable failure (an unparsable message record),
// leaving index already advanced past it, and returns true. If the current
// failure (if any) is not recoverable, Recover does nothing and returns
// false.
func (d *ChunkDecoder) Recover() bool {
	if !d.recoverable {
		return false
	}
	d.recoverable = false
	d.ClearStatus()
	return true
}

// SetIndex clamps index to [0, NumRecords] and repositions the values
// cursor accordingly. Precondition: Healthy().
func (d *ChunkDecoder) SetIndex(index uint64) {
	if !d.Healthy() {
		return
	}
	if index > uint64(len(d.limits)) {
		index = uint64(len(d.limits))
	}
	d.index = index
	if index == 0 {
		d.valuesPos = 0
	} else {
		d.valuesPos = d.limits[index-1]
	}
}
