// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package framed

import (
	"encoding/binary"

	"github.com/pierrec/lz4/v4"

	"github.com/mingzhao-db/riegeli/base"
	"github.com/mingzhao-db/riegeli/bytes"
)

// Decode decodes an entire stream produced by Writer and returns the
// original uncompressed bytes.
func Decode(src []byte) ([]byte, error) {
	if len(src) < len(streamIdentifier) || string(src[:len(streamIdentifier)]) != string(streamIdentifier) {
		return nil, base.New(base.DataLoss, "missing framed LZ4 stream identifier")
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
				dst := make([]byte, maxBlockSize)
				n, err := lz4.UncompressBlock(payload, dst)
				if err != nil {
					return nil, base.Newf(base.DataLoss, "decompressing chunk: %v", err)
				}
				data = dst[:n]
			} else {
				data = payload
			}
			if bytes.MaskedChecksum(data) != wantCRC {
				return nil, base.New(base.DataLoss, "checksum mismatch")
			}
			out = append(out, data...)
		case chunkType == bytes.ChunkTypePadding || chunkType >= 0x80 && chunkType <= 0xfd:
		case chunkType == bytes.ChunkTypeStreamID:
		default:
			return nil, base.Newf(base.DataLoss, "unsupported chunk type 0x%02x", chunkType)
		}
	}
	return out, nil
}
