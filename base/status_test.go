// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package base

import (
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var _ = Describe("Status", func() {
	Context("a nil *Status", func() {
		var s *Status

		It("reports ok", func() {
			Expect(s.Code()).To(Equal(Unknown))
			Expect(s.Error()).To(Equal("ok"))
		})

		It("Annotate is a no-op", func() {
			Expect(s.Annotate("context")).To(BeNil())
		})
	})

	Context("New", func() {
		It("carries its code and message", func() {
			s := New(DataLoss, "checksum mismatch")
			Expect(s.Code()).To(Equal(DataLoss))
			Expect(s.Error()).To(Equal("data loss: checksum mismatch"))
		})
	})

	Context("Annotate", func() {
		It("preserves the code and chains the message", func() {
			s := New(ResourceExhausted, "limit exceeded").Annotate("writing record 3")
			Expect(s.Code()).To(Equal(ResourceExhausted))
			Expect(s.Error()).To(ContainSubstring("writing record 3"))
			Expect(s.Error()).To(ContainSubstring("limit exceeded"))
		})
	})

	Context("FromError", func() {
		It("returns nil for a nil error", func() {
			Expect(FromError(nil)).To(BeNil())
		})

		It("passes through an existing *Status unchanged", func() {
			s := New(InvalidArgument, "bad")
			Expect(FromError(s)).To(BeIdenticalTo(s))
		})

		It("wraps a generic error as Unknown", func() {
			s := FromError(errWhoops{})
			Expect(s.Code()).To(Equal(Unknown))
		})
	})
})

type errWhoops struct{}

func (errWhoops) Error() string { return "whoops" }
