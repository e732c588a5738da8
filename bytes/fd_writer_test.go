// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package bytes

import (
	"os"

	"github.com/mingzhao-db/riegeli/base"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var _ = Describe("FDWriter", func() {
	var path string

	newWriter := func(opts FDWriterOptions) *FDWriter {
		file, err := os.CreateTemp("", "fdwriter-*.bin")
		Expect(err).ToNot(HaveOccurred())
		path = file.Name()
		return NewFDWriter(file, opts)
	}

	AfterEach(func() {
		if path != "" {
			os.Remove(path)
			path = ""
		}
	})

	It("delivers writes larger than its buffer on Close", func() {
		w := newWriter(FDWriterOptions{BufferSize: 8})

		data := make([]byte, 100)
		for i := range data {
			data[i] = byte(i)
		}
		Expect(w.WriteBytes(data)).To(BeTrue())
		Expect(w.Pos()).To(Equal(base.Position(100)))
		Expect(w.Close()).To(BeTrue())

		got, err := os.ReadFile(path)
		Expect(err).ToNot(HaveOccurred())
		Expect(got).To(Equal(data))
	})

	It("Flush surfaces buffered bytes without closing", func() {
		w := newWriter(FDWriterOptions{})
		Expect(w.WriteBytes([]byte("abc"))).To(BeTrue())
		Expect(w.Flush(FromProcess)).To(BeTrue())

		got, err := os.ReadFile(path)
		Expect(err).ToNot(HaveOccurred())
		Expect(got).To(Equal([]byte("abc")))

		Expect(w.Close()).To(BeTrue())
	})

	It("a from-machine flush syncs to stable storage", func() {
		w := newWriter(FDWriterOptions{})
		Expect(w.WriteBytes([]byte("durable"))).To(BeTrue())
		Expect(w.Flush(FromMachine)).To(BeTrue())
		Expect(w.Close()).To(BeTrue())
	})

	It("Size accounts for bytes still sitting in the buffer", func() {
		w := newWriter(FDWriterOptions{})
		Expect(w.WriteBytes([]byte("12345"))).To(BeTrue())

		size, ok := w.Size()
		Expect(ok).To(BeTrue())
		Expect(size).To(Equal(base.Position(5)))
		Expect(w.Close()).To(BeTrue())
	})

	It("Seek repositions and overwrites in place", func() {
		w := newWriter(FDWriterOptions{})
		Expect(w.WriteBytes([]byte("abcdef"))).To(BeTrue())
		Expect(w.Seek(2)).To(BeTrue())
		Expect(w.Pos()).To(Equal(base.Position(2)))
		Expect(w.WriteBytes([]byte("XY"))).To(BeTrue())
		Expect(w.Close()).To(BeTrue())

		got, err := os.ReadFile(path)
		Expect(err).ToNot(HaveOccurred())
		Expect(got).To(Equal([]byte("abXYef")))
	})

	It("Truncate shortens the file", func() {
		w := newWriter(FDWriterOptions{})
		Expect(w.WriteBytes([]byte("abcdef"))).To(BeTrue())
		Expect(w.Truncate(4)).To(BeTrue())
		Expect(w.Close()).To(BeTrue())

		got, err := os.ReadFile(path)
		Expect(err).ToNot(HaveOccurred())
		Expect(got).To(Equal([]byte("abcd")))
	})

	It("starts at the end of a file opened for append", func() {
		first := newWriter(FDWriterOptions{})
		Expect(first.WriteBytes([]byte("head"))).To(BeTrue())
		Expect(first.Close()).To(BeTrue())

		file, err := os.OpenFile(path, os.O_WRONLY|os.O_APPEND, 0o644)
		Expect(err).ToNot(HaveOccurred())
		w := NewFDWriter(file, FDWriterOptions{})
		Expect(w.Pos()).To(Equal(base.Position(4)))
		Expect(w.WriteBytes([]byte("tail"))).To(BeTrue())
		Expect(w.Close()).To(BeTrue())

		got, err := os.ReadFile(path)
		Expect(err).ToNot(HaveOccurred())
		Expect(got).To(Equal([]byte("headtail")))
	})
})
