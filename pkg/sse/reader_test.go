package sse

import (
	"errors"
	"strings"
	"testing/iotest"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func readAll(src string) []*Event {
	r := NewReader(strings.NewReader(src))
	var events []*Event
	for {
		ev, err := r.Next()
		Expect(err).NotTo(HaveOccurred())
		if ev == nil {
			return events
		}
		events = append(events, ev)
	}
}

var _ = Describe("Reader", func() {
	Describe("Next", func() {
		It("parses a single event", func() {
			events := readAll("data: hello world\n\n")
			Expect(events).To(HaveLen(1))
			Expect(events[0].Data).To(Equal("hello world"))
			Expect(events[0].Type).To(BeEmpty())
			Expect(events[0].ID).To(BeEmpty())
		})

		It("parses multiple events in order", func() {
			events := readAll("data: first\n\ndata: second\n\n")
			Expect(events).To(HaveLen(2))
			Expect(events[0].Data).To(Equal("first"))
			Expect(events[1].Data).To(Equal("second"))
		})

		It("parses event type and id", func() {
			events := readAll("event: content_block_delta\nid: 42\ndata: {\"type\":\"delta\"}\n\n")
			Expect(events).To(HaveLen(1))
			Expect(events[0].Type).To(Equal("content_block_delta"))
			Expect(events[0].ID).To(Equal("42"))
			Expect(events[0].Data).To(Equal(`{"type":"delta"}`))
		})

		It("joins multiple data lines with newline", func() {
			events := readAll("data: line one\ndata: line two\ndata: line three\n\n")
			Expect(events[0].Data).To(Equal("line one\nline two\nline three"))
		})

		It("skips comments and keep-alive blank lines", func() {
			events := readAll("\n\n: ping\n\ndata: payload\n\n")
			Expect(events).To(HaveLen(1))
			Expect(events[0].Data).To(Equal("payload"))
		})

		It("accepts CRLF line endings", func() {
			events := readAll("data: windows\r\n\r\n")
			Expect(events).To(HaveLen(1))
			Expect(events[0].Data).To(Equal("windows"))
		})

		It("keeps the value when there is no space after the colon", func() {
			events := readAll("data:tight\n\n")
			Expect(events[0].Data).To(Equal("tight"))
		})

		It("ignores unknown fields", func() {
			events := readAll("retry: 1000\ndata: x\n\n")
			Expect(events).To(HaveLen(1))
			Expect(events[0].Data).To(Equal("x"))
		})

		It("returns a trailing event without a blank line", func() {
			events := readAll("data: unterminated")
			Expect(events).To(HaveLen(1))
			Expect(events[0].Data).To(Equal("unterminated"))
		})

		It("returns nil at the end of an empty stream", func() {
			Expect(readAll("")).To(BeEmpty())
		})

		It("surfaces read errors", func() {
			boom := errors.New("connection reset")
			r := NewReader(iotest.ErrReader(boom))
			_, err := r.Next()
			Expect(err).To(MatchError(boom))
		})
	})

	Describe("Done", func() {
		It("recognises the end-of-stream sentinel", func() {
			events := readAll("data: {\"x\":1}\n\ndata: [DONE]\n\n")
			Expect(events[0].Done()).To(BeFalse())
			Expect(events[1].Done()).To(BeTrue())
		})
	})
})
