// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package framed

import (
	"encoding/binary"

	"github.com/golang/snappy"

	"github.com/mingzhao-db/riegeli/base"
	"github.com/mingzhao-db/riegeli/bytes"
)

// Decode decodes an entire framed Snappy stream and returns the original
// uncompressed bytes, so the round trip decode(encode(data)) == data can be
// checked for any output of Writer.
//
// Unknown skippable chunk types (0x80..0xfd) are tolerated and ignored;
// unknown unskippable types (0x02..0x7f) are rejected, per the framing
// format.
func Decode(src []byte) ([]byte, error) {
	if len(src) < len(streamIdentifier) || string(src[:len(streamIdentifier)]) != string(streamIdentifier) {
		return nil, base.New(base.DataLoss, "missing framed Snappy stream identifier")
	}
	src = src[len(streamIdentifier):]
	var out []byte
	for len(src) > 0 {
		if len(src) < 4 {
			return nil, base.New(base.DataLoss, "truncated chunk header")
		}
		chunkType := src[0]
		length := int(bytes.GetUint24LE(src[1:]))
		src = src[4:]
		if len(src) < length {
			return nil, base.New(base.DataLoss, "truncated chunk body")
		}
		body := src[:length]
		src = src[length:]
		switch {
		case chunkType == bytes.ChunkTypeCompressed || chunkType == bytes.ChunkTypeUncompressed:
			if len(body) < 4 {
				return nil, base.New(base.DataLoss, "chunk body shorter than checksum")
			}
			wantCRC := binary.LittleEndian.Uint32(body[:4])
			payload := body[4:]
			var data []byte
			if chunkType == bytes.ChunkTypeCompressed {
				decoded, err := snappy.Decode(nil, payload)
				if err != nil {
					return nil, base.Newf(base.DataLoss, "decompressing chunk: %v", err)
				}
				data = decoded
			} else {
				data = payload
			}
			if bytes.MaskedChecksum(data) != wantCRC {
				return nil, base.New(base.DataLoss, "checksum mismatch")
			}
			out = append(out, data...)
		case chunkType == bytes.ChunkTypePadding || chunkType >= 0x80 && chunkType <= 0xfd:
			// Skippable: padding and reserved-but-skippable ranges are ignored.
		case chunkType == bytes.ChunkTypeStreamID:
			// A second stream identifier mid-stream is tolerated as a no-op;
			// Writer never re-emits one, but readers still accept it if present.
		default:
			return nil, base.Newf(base.DataLoss, "unsupported chunk type 0x%02x", chunkType)
		}
	}
	return out, nil
}
