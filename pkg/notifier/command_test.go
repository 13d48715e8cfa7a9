package notifier_test

import (
	"context"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/BillDuke13/mnemosyne/pkg/logger"
	"github.com/BillDuke13/mnemosyne/pkg/notifier"
)

var _ = Describe("CommandSpeaker", func() {
	It("passes the text as the final argument", func() {
		out := filepath.Join(GinkgoT().TempDir(), "spoken.txt")
		speaker := notifier.NewCommandSpeaker(
			[]string{"sh", "-c", `printf '%s' "$1" > "$0"`, out},
			logger.Nop(),
		)

		Expect(speaker.Speak(context.Background(), "hello there")).To(Succeed())

		data, err := os.ReadFile(out)
		Expect(err).NotTo(HaveOccurred())
		Expect(string(data)).To(Equal("hello there"))
	})

	It("treats a missing binary as unavailable speech", func() {
		speaker := notifier.NewCommandSpeaker([]string{"mnemosyne-no-such-speech-binary"}, logger.Nop())
		Expect(speaker.Speak(context.Background(), "hello")).To(Succeed())
	})

	It("reports a failing command", func() {
		speaker := notifier.NewCommandSpeaker([]string{"false"}, logger.Nop())
		Expect(speaker.Speak(context.Background(), "hello")).To(MatchError(ContainSubstring("running false")))
	})
})
