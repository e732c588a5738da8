// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package bytes

import (
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var _ = Describe("MaskedChecksum", func() {
	It("matches the framing format's masking of the standard CRC-32C check value", func() {
		// CRC-32C("123456789") == 0xe3069283; rotated right 15 and offset by
		// 0xa282ead8 that is 0xc78ab0e5.
		Expect(MaskedChecksum([]byte("123456789"))).To(Equal(uint32(0xc78ab0e5)))
	})

	It("distinguishes distinct inputs", func() {
		Expect(MaskedChecksum([]byte("a"))).ToNot(Equal(MaskedChecksum([]byte("b"))))
	})
})

var _ = Describe("uint24 little-endian helpers", func() {
	It("round-trips values up to the 24-bit maximum", func() {
		var b [3]byte
		for _, v := range []uint32{0, 1, 0x000100, 0x010000, 0xffffff} {
			PutUint24LE(b[:], v)
			Expect(GetUint24LE(b[:])).To(Equal(v))
		}
	})

	It("stores the low byte first", func() {
		var b [3]byte
		PutUint24LE(b[:], 0x030201)
		Expect(b).To(Equal([3]byte{0x01, 0x02, 0x03}))
	})
})
