// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package bytes

import (
	"github.com/mingzhao-db/riegeli/base"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

// boundedWriter is a test-only concrete writer whose native window holds at
// most max bytes, forcing PushableWriter's scratch path on any larger push.
// Flushed blocks accumulate in out.
type boundedWriter struct {
	PushableWriter

	out    []byte
	native base.Buffer
	max    int
}

var _ Writer = (*boundedWriter)(nil)

func newBoundedWriter(max int) *boundedWriter {
	w := &boundedWriter{max: max}
	w.InitScratch(w)
	return w
}

func (w *boundedWriter) flushNative() bool {
	w.out = append(w.out, w.Filled()...)
	w.native.Resize(w.max)
	w.SetWindow(w.native.Bytes(), w.Pos())
	return true
}

func (w *boundedWriter) PushBehindScratch(minLength, recommended int) bool {
	if minLength > w.max {
		return false
	}
	return w.flushNative()
}

func (w *boundedWriter) FlushBehindScratch(scope FlushScope) bool { return w.flushNative() }

func (w *boundedWriter) SeekBehindScratch(newPos base.Position) bool {
	return w.Fail(base.New(base.Unimplemented, "Seek: bounded writer does not support random access"))
}

func (w *boundedWriter) SizeBehindScratch() (base.Position, bool) { return 0, false }

func (w *boundedWriter) TruncateBehindScratch(newSize base.Position) bool {
	return w.Fail(base.New(base.Unimplemented, "Truncate: bounded writer does not support truncation"))
}

func (w *boundedWriter) ReadModeBehindScratch(initialPos base.Position) (Reader, bool) {
	return nil, false
}

func (w *boundedWriter) ScratchCapabilities() Capabilities { return Capabilities{} }

func (w *boundedWriter) DoneBehindScratch() bool { return w.flushNative() }

var _ = Describe("PushableWriter", func() {
	var w *boundedWriter

	BeforeEach(func() {
		w = newBoundedWriter(4)
	})

	It("satisfies small pushes from the native window", func() {
		Expect(w.WriteBytes([]byte("ab"))).To(BeTrue())
		Expect(w.Pos()).To(Equal(base.Position(2)))
		Expect(w.Close()).To(BeTrue())
		Expect(w.out).To(Equal([]byte("ab")))
	})

	It("splits a long WriteBytes across native blocks without scratch", func() {
		data := []byte("abcdefghij")
		Expect(w.WriteBytes(data)).To(BeTrue())
		Expect(w.Pos()).To(Equal(base.Position(10)))
		Expect(w.Close()).To(BeTrue())
		Expect(w.out).To(Equal(data))
	})

	It("enters scratch when a push exceeds the native maximum", func() {
		Expect(w.Push(9, 0)).To(BeTrue())
		Expect(len(w.Window())).To(BeNumerically(">=", 9))

		copy(w.Window(), "012345678")
		w.Advance(9)
		Expect(w.Pos()).To(Equal(base.Position(9)))

		Expect(w.Flush(FromObject)).To(BeTrue())
		Expect(w.out).To(Equal([]byte("012345678")))
	})

	It("keeps the position continuous across the scratch transition", func() {
		Expect(w.WriteBytes([]byte("xyz"))).To(BeTrue())
		Expect(w.Push(20, 0)).To(BeTrue())
		Expect(w.Pos()).To(Equal(base.Position(3)))

		copy(w.Window(), "01234567890123456789")
		w.Advance(20)
		Expect(w.Close()).To(BeTrue())
		Expect(w.out).To(Equal([]byte("xyz01234567890123456789")))
	})

	It("replays scratch before Close delivers the final block", func() {
		Expect(w.Push(7, 0)).To(BeTrue())
		copy(w.Window(), "0123456")
		w.Advance(7)
		Expect(w.Close()).To(BeTrue())
		Expect(w.out).To(Equal([]byte("0123456")))
	})

	It("latches resource-exhausted when a write would overflow the position space", func() {
		w.SetWindow(make([]byte, 4), base.MaxPosition-1)
		Expect(w.WriteBytes([]byte("ab"))).To(BeFalse())
		Expect(w.Status().Code()).To(Equal(base.ResourceExhausted))
		Expect(w.Pos()).To(Equal(base.MaxPosition - 1))
	})

	It("latches resource-exhausted when zero-fill would overflow the position space", func() {
		w.SetWindow(make([]byte, 4), base.MaxPosition-1)
		Expect(w.WriteZeros(2)).To(BeFalse())
		Expect(w.Status().Code()).To(Equal(base.ResourceExhausted))
	})

	It("fails capability-gated operations with Unimplemented", func() {
		Expect(w.Seek(10)).To(BeFalse())
		Expect(w.Status().Code()).To(Equal(base.Unimplemented))
		Expect(w.WriteBytes([]byte("after"))).To(BeFalse())
	})
})
