// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package base

import (
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var _ = Describe("Position arithmetic", func() {
	Context("AddPos", func() {
		It("adds normally when there is no overflow", func() {
			Expect(AddPos(3, 4)).To(Equal(Position(7)))
		})

		It("saturates at MaxPosition on overflow", func() {
			Expect(AddPos(MaxPosition, 1)).To(Equal(MaxPosition))
		})
	})

	Context("SubPos", func() {
		It("subtracts normally when b <= a", func() {
			v, ok := SubPos(10, 4)
			Expect(ok).To(BeTrue())
			Expect(v).To(Equal(Position(6)))
		})

		It("reports ok=false when b > a", func() {
			_, ok := SubPos(4, 10)
			Expect(ok).To(BeFalse())
		})
	})

	Context("AddPosChecked", func() {
		It("reports ok=true with the sum when there is no overflow", func() {
			v, ok := AddPosChecked(3, 4)
			Expect(ok).To(BeTrue())
			Expect(v).To(Equal(Position(7)))
		})

		It("reports ok=false on overflow instead of saturating", func() {
			_, ok := AddPosChecked(MaxPosition, 1)
			Expect(ok).To(BeFalse())
		})
	})

	Context("MinPos", func() {
		It("returns the smaller value", func() {
			Expect(MinPos(3, 7)).To(Equal(Position(3)))
			Expect(MinPos(7, 3)).To(Equal(Position(3)))
		})
	})
})

var _ = Describe("Buffer", func() {
	var b Buffer

	It("Resize grows and reuses capacity", func() {
		b.Resize(4)
		Expect(b.Bytes()).To(HaveLen(4))
		cap1 := b.Cap()

		b.Resize(2)
		Expect(b.Bytes()).To(HaveLen(2))
		Expect(b.Cap()).To(Equal(cap1))
	})

	It("EnsureCapacity preserves existing contents", func() {
		b.Resize(3)
		copy(b.Bytes(), []byte{1, 2, 3})
		b.EnsureCapacity(10)
		Expect(b.Bytes()).To(Equal([]byte{1, 2, 3}))
		Expect(b.Cap()).To(BeNumerically(">=", 10))
	})

	It("Reset truncates without releasing capacity", func() {
		b.Resize(5)
		cap1 := b.Cap()
		b.Reset()
		Expect(b.Bytes()).To(BeEmpty())
		Expect(b.Cap()).To(Equal(cap1))
	})
})
