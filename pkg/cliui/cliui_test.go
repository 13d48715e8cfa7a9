package cliui_test

import (
	"bytes"
	"errors"
	"strings"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/BillDuke13/mnemosyne/pkg/cliui"
)

var _ = Describe("Step", func() {
	It("returns the function's error and ends with a fail mark", func() {
		var buf bytes.Buffer
		boom := errors.New("boom")

		err := cliui.Step(&buf, "Resolving entry", func() error { return boom })
		Expect(err).To(MatchError(boom))

		lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\r")
		last := lines[len(lines)-1]
		Expect(last).To(ContainSubstring(cliui.FailMark))
		Expect(last).To(ContainSubstring("Resolving entry"))
	})

	It("ends with a success mark", func() {
		var buf bytes.Buffer

		Expect(cliui.Step(&buf, "Checking health", func() error {
			time.Sleep(10 * time.Millisecond)
			return nil
		})).To(Succeed())

		Expect(buf.String()).To(HaveSuffix("\n"))
		Expect(buf.String()).To(ContainSubstring(cliui.SuccessMark))
	})
})

var _ = Describe("FormatDuration", func() {
	It("formats sub-second durations in milliseconds", func() {
		Expect(cliui.FormatDuration(12 * time.Millisecond)).To(Equal("12ms"))
	})

	It("formats longer durations in seconds", func() {
		Expect(cliui.FormatDuration(3200 * time.Millisecond)).To(Equal("3.2s"))
	})
})

var _ = Describe("KeyValue", func() {
	It("marks empty values as not set", func() {
		Expect(cliui.KeyValue("chain.rpc", 10, "")).To(ContainSubstring("<not set>"))
	})

	It("renders the value", func() {
		Expect(cliui.KeyValue("chain.rpc", 10, "https://rpc")).To(ContainSubstring("https://rpc"))
	})
})

var _ = Describe("RenderMarkdown", func() {
	It("keeps the text content", func() {
		out, err := cliui.RenderMarkdown("Went fishing at the **lake**.")
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(ContainSubstring("lake"))
	})
})
