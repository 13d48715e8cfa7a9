package config_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/BillDuke13/mnemosyne/pkg/config"
	"github.com/BillDuke13/mnemosyne/pkg/memory"
)

var _ = Describe("ParseEntryHints", func() {
	It("preserves key order", func() {
		hints, err := config.ParseEntryHints(`{"Family1-Son":2,"Family1-Dad":0,"Family1-Mom":1}`)
		Expect(err).NotTo(HaveOccurred())
		Expect(hints).To(Equal([]memory.EntryHint{
			{Label: "Family1-Son", EntryID: 2},
			{Label: "Family1-Dad", EntryID: 0},
			{Label: "Family1-Mom", EntryID: 1},
		}))
	})

	It("accepts an empty object", func() {
		hints, err := config.ParseEntryHints(`{}`)
		Expect(err).NotTo(HaveOccurred())
		Expect(hints).To(BeEmpty())
	})

	DescribeTable("rejects malformed mappings",
		func(raw string) {
			_, err := config.ParseEntryHints(raw)
			Expect(err).To(MatchError(ContainSubstring("parsing entry hints")))
		},
		Entry("not an object", `[0, 1]`),
		Entry("string id", `{"Dad":"zero"}`),
		Entry("negative id", `{"Dad":-1}`),
		Entry("fractional id", `{"Dad":1.5}`),
		Entry("truncated", `{"Dad":0`),
		Entry("trailing data", `{"Dad":0} {}`),
		Entry("empty", ``),
	)

	It("round-trips with FormatEntryHints", func() {
		in := []memory.EntryHint{{Label: `Quote "Q"`, EntryID: 3}, {Label: "B", EntryID: 18446744073709551615}}
		out, err := config.ParseEntryHints(config.FormatEntryHints(in))
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(Equal(in))
	})
})

var _ = Describe("ParseBool", func() {
	DescribeTable("parses",
		func(in string, want bool) {
			got, err := config.ParseBool(in)
			Expect(err).NotTo(HaveOccurred())
			Expect(got).To(Equal(want))
		},
		Entry("1", "1", true),
		Entry("true", "true", true),
		Entry("yes", "yes", true),
		Entry("YES", "YES", true),
		Entry("0", "0", false),
		Entry("no", "no", false),
		Entry("empty", "", false),
	)

	It("rejects junk", func() {
		_, err := config.ParseBool("maybe")
		Expect(err).To(HaveOccurred())
	})
})
