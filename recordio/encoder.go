// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

// Package recordio is a minimal, test/demo-only helper that encodes
// records into the wire shape chunkencoding.ChunkDecoder consumes. It
// carries no independent guarantees beyond "produces input the decoder
// accepts".
package recordio

import (
	"github.com/golang/protobuf/proto"
	"google.golang.org/protobuf/encoding/protowire"

	"github.com/mingzhao-db/riegeli/chunkencoding"
)

// Encoder accumulates records and produces a chunkencoding.Chunk holding
// them all: a varint record count, that many varint record lengths, then
// the concatenated record bytes.
type Encoder struct {
	lengths []uint64
	values  []byte
}

// AddBytes appends a raw record.
func (e *Encoder) AddBytes(record []byte) {
	e.lengths = append(e.lengths, uint64(len(record)))
	e.values = append(e.values, record...)
}

// AddMessage marshals msg and appends it as a record.
func (e *Encoder) AddMessage(msg proto.Message) error {
	data, err := proto.Marshal(msg)
	if err != nil {
		return err
	}
	e.AddBytes(data)
	return nil
}

// NumRecords returns the number of records added so far.
func (e *Encoder) NumRecords() int { return len(e.lengths) }

// Chunk returns a chunkencoding.Chunk carrying every record added so far.
func (e *Encoder) Chunk() chunkencoding.Chunk {
	payload := protowire.AppendVarint(nil, uint64(len(e.lengths)))
	for _, n := range e.lengths {
		payload = protowire.AppendVarint(payload, n)
	}
	payload = append(payload, e.values...)
	return chunkencoding.Chunk{Type: chunkencoding.TypeData, Payload: payload}
}

// Reset clears the encoder for reuse.
func (e *Encoder) Reset() {
	e.lengths = e.lengths[:0]
	e.values = e.values[:0]
}
