// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package framed_test

import (
	"encoding/binary"

	rbytes "github.com/mingzhao-db/riegeli/bytes"
	. "github.com/mingzhao-db/riegeli/snappy/framed"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var identifier = []byte{0xff, 0x06, 0x00, 0x00, 's', 'N', 'a', 'P', 'p', 'Y'}

// uncompressedChunk builds a type-0x01 chunk carrying data literally.
func uncompressedChunk(data []byte) []byte {
	chunk := []byte{0x01}
	var length [3]byte
	rbytes.PutUint24LE(length[:], uint32(len(data))+4)
	chunk = append(chunk, length[:]...)
	var crc [4]byte
	binary.LittleEndian.PutUint32(crc[:], rbytes.MaskedChecksum(data))
	chunk = append(chunk, crc[:]...)
	return append(chunk, data...)
}

var _ = Describe("Writer wire format", func() {
	It("an empty stream is exactly the 10-byte identifier", func() {
		dest := rbytes.NewBytesWriter(nil)
		w := NewOwningWriter(dest, Options{})
		Expect(w.Close()).To(BeTrue())
		Expect(dest.Bytes()).To(Equal(identifier))
	})

	It("a one-byte block emits exactly the documented chunk bytes", func() {
		dest := rbytes.NewBytesWriter(nil)
		w := NewOwningWriter(dest, Options{})
		Expect(w.WriteBytes([]byte{0x41})).To(BeTrue())
		Expect(w.Close()).To(BeTrue())

		want := append(append([]byte(nil), identifier...), uncompressedChunk([]byte{0x41})...)
		Expect(dest.Bytes()).To(Equal(want))
	})

	It("does not re-emit an identifier when appending to a non-empty destination", func() {
		dest := rbytes.NewBytesWriter([]byte("existing"))
		w := NewOwningWriter(dest, Options{})
		Expect(w.WriteBytes([]byte{0x41})).To(BeTrue())
		Expect(w.Close()).To(BeTrue())

		want := append([]byte("existing"), uncompressedChunk([]byte{0x41})...)
		Expect(dest.Bytes()).To(Equal(want))
	})

	It("a push larger than the block size round-trips through scratch", func() {
		dest := rbytes.NewBytesWriter(nil)
		w := NewOwningWriter(dest, Options{})

		n := 65536 + 100
		Expect(w.Push(n, 0)).To(BeTrue())
		window := w.Window()
		Expect(len(window)).To(BeNumerically(">=", n))
		for i := 0; i < n; i++ {
			window[i] = byte(i)
		}
		w.Advance(n)
		Expect(w.Close()).To(BeTrue())

		got, err := Decode(dest.Bytes())
		Expect(err).ToNot(HaveOccurred())
		Expect(got).To(HaveLen(n))
		for i := 0; i < n; i++ {
			Expect(got[i]).To(Equal(byte(i)))
		}
	})

	It("honors a size hint without changing the encoded output", func() {
		dest := rbytes.NewBytesWriter(nil)
		w := NewOwningWriter(dest, Options{SizeHint: 8})
		Expect(w.WriteBytes([]byte("tiny"))).To(BeTrue())
		Expect(w.Close()).To(BeTrue())

		got, err := Decode(dest.Bytes())
		Expect(err).ToNot(HaveOccurred())
		Expect(got).To(Equal([]byte("tiny")))
	})
})

var _ = Describe("Decode chunk handling", func() {
	It("skips padding and reserved skippable chunks", func() {
		stream := append([]byte(nil), identifier...)
		stream = append(stream, 0xfe, 0x03, 0x00, 0x00, 'p', 'a', 'd')
		stream = append(stream, uncompressedChunk([]byte("hi"))...)
		stream = append(stream, 0x80, 0x01, 0x00, 0x00, 0xaa)

		got, err := Decode(stream)
		Expect(err).ToNot(HaveOccurred())
		Expect(got).To(Equal([]byte("hi")))
	})

	It("tolerates a redundant mid-stream identifier chunk", func() {
		stream := append([]byte(nil), identifier...)
		stream = append(stream, uncompressedChunk([]byte("a"))...)
		stream = append(stream, 0xff, 0x06, 0x00, 0x00, 's', 'N', 'a', 'P', 'p', 'Y')
		stream = append(stream, uncompressedChunk([]byte("b"))...)

		got, err := Decode(stream)
		Expect(err).ToNot(HaveOccurred())
		Expect(got).To(Equal([]byte("ab")))
	})

	It("rejects reserved unskippable chunk types", func() {
		stream := append([]byte(nil), identifier...)
		stream = append(stream, 0x02, 0x01, 0x00, 0x00, 0x00)

		_, err := Decode(stream)
		Expect(err).To(HaveOccurred())
	})

	It("rejects a corrupted checksum", func() {
		chunk := uncompressedChunk([]byte("payload"))
		chunk[4]++
		stream := append(append([]byte(nil), identifier...), chunk...)

		_, err := Decode(stream)
		Expect(err).To(HaveOccurred())
	})

	It("rejects a truncated chunk body", func() {
		stream := append([]byte(nil), identifier...)
		stream = append(stream, 0x01, 0xff, 0x00, 0x00)

		_, err := Decode(stream)
		Expect(err).To(HaveOccurred())
	})
})
