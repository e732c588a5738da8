// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package base

// Buffer is a growable, owned byte buffer, used wherever a layer needs a
// private scratch region (the compressor's accumulation block, the
// pushable-writer scratch window). It grows the backing array only when the requested size exceeds
// capacity, otherwise it reuses and reslices.
type Buffer struct {
	data []byte
}

// Resize ensures the buffer has exactly n bytes, preserving existing
// capacity where possible instead of reallocating.
func (b *Buffer) Resize(n int) {
	if cap(b.data) < n {
		b.data = make([]byte, n)
		return
	}
	b.data = b.data[:n]
}

// EnsureCapacity grows the buffer's capacity to at least n bytes without
// changing its current length, copying existing contents forward.
func (b *Buffer) EnsureCapacity(n int) {
	if cap(b.data) >= n {
		return
	}
	grown := make([]byte, len(b.data), n)
	copy(grown, b.data)
	b.data = grown
}

// Bytes returns the buffer's current contents.
func (b *Buffer) Bytes() []byte { return b.data }

// Cap returns the buffer's current capacity.
func (b *Buffer) Cap() int { return cap(b.data) }

// Reset truncates the buffer to zero length without releasing capacity.
func (b *Buffer) Reset() { b.data = b.data[:0] }
