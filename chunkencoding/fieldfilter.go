// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

// Package chunkencoding implements the read side of the chunked record
// format: ChunkDecoder consumes a decoded chunk containing N concatenated
// records with a sorted end-offset table and yields them in order, with a
// field-projection filter and recoverable per-record parse failures.
package chunkencoding

import (
	"google.golang.org/protobuf/encoding/protowire"
)

// FieldFilter restricts which top-level proto field numbers are retained
// when a record is parsed into a message. Raw-bytes reads (ReadBytes,
// ReadString) ignore the filter entirely.
type FieldFilter struct {
	all    bool
	fields map[int32]struct{}
}

// AllFields returns a filter retaining every field: the default.
func AllFields() FieldFilter { return FieldFilter{all: true} }

// Fields returns a filter retaining only the given top-level field numbers.
func Fields(numbers ...int32) FieldFilter {
	set := make(map[int32]struct{}, len(numbers))
	for _, n := range numbers {
		set[n] = struct{}{}
	}
	return FieldFilter{fields: set}
}

func (f FieldFilter) includes(number int32) bool {
	if f.all {
		return true
	}
	_, ok := f.fields[number]
	return ok
}

// apply strips every top-level field excluded by f from data's wire
// encoding, leaving the remaining fields' bytes untouched and in order so a
// normal proto unmarshal can parse the result.
func (f FieldFilter) apply(data []byte) ([]byte, bool) {
	if f.all {
		return data, true
	}
	out := make([]byte, 0, len(data))
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return nil, false
		}
		m := protowire.ConsumeFieldValue(num, typ, data[n:])
		if m < 0 {
			return nil, false
		}
		total := n + m
		if f.includes(int32(num)) {
			out = append(out, data[:total]...)
		}
		data = data[total:]
	}
	return out, true
}
