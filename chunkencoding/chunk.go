// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package chunkencoding

// Type identifies what a Chunk carries. ChunkDecoder.Reset accepts only
// TypeData; TypeFileSignature and TypePadding are recognized so Reset can
// reject them with a clear message instead of attempting to parse them as
// records.
type Type byte

const (
	TypeData          Type = 'd'
	TypeFileSignature Type = 's'
	TypePadding       Type = 'p'
)

func (t Type) String() string {
	switch t {
	case TypeData:
		return "data"
	case TypeFileSignature:
		return "file-signature"
	case TypePadding:
		return "padding"
	default:
		return "unknown"
	}
}

// Chunk is a decoded chunk ready for ChunkDecoder.Reset. Payload holds the
// record-sizes sub-stream (a varint record count, then that many varint
// record lengths) immediately followed by the concatenated values buffer,
// the wire shape recordio's encoder produces.
type Chunk struct {
	Type    Type
	Payload []byte
}
