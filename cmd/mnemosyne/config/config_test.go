package configcmder_test

import (
	"bytes"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	configcmder "github.com/BillDuke13/mnemosyne/cmd/mnemosyne/config"
)

func execute(args ...string) (string, error) {
	cmd := configcmder.NewConfigCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

var _ = Describe("NewConfigCmd", func() {
	It("creates a command with the correct use string", func() {
		cmd := configcmder.NewConfigCmd()
		Expect(cmd.Use).To(Equal("config"))
	})

	It("has set, get, and list subcommands", func() {
		cmd := configcmder.NewConfigCmd()
		cmds := cmd.Commands()
		subcommands := make([]string, 0, len(cmds))
		for _, sub := range cmds {
			subcommands = append(subcommands, sub.Name())
		}
		Expect(subcommands).To(ContainElements("set", "get", "list"))
	})
})

var _ = Describe("Config command execution", func() {
	var (
		tmpDir  string
		origDir string
	)

	BeforeEach(func() {
		var err error
		tmpDir, err = os.MkdirTemp("", "mnemosyne-config-test-*")
		Expect(err).NotTo(HaveOccurred())
		GinkgoT().Setenv("HOME", tmpDir)

		origDir, err = os.Getwd()
		Expect(err).NotTo(HaveOccurred())

		// Create a local .mnemosyne dir so the manager picks it up
		err = os.MkdirAll(filepath.Join(tmpDir, ".mnemosyne"), 0o755)
		Expect(err).NotTo(HaveOccurred())

		err = os.Chdir(tmpDir)
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		err := os.Chdir(origDir)
		Expect(err).NotTo(HaveOccurred())
		os.RemoveAll(tmpDir)
	})

	Describe("set subcommand", func() {
		It("sets a config value successfully", func() {
			_, err := execute("set", "chain.rpc", "https://fullnode.testnet.sui.io")
			Expect(err).NotTo(HaveOccurred())

			data, err := os.ReadFile(filepath.Join(tmpDir, ".mnemosyne", "config.toml"))
			Expect(err).NotTo(HaveOccurred())
			Expect(string(data)).To(ContainSubstring("https://fullnode.testnet.sui.io"))
		})

		It("stores hints in order", func() {
			_, err := execute("set", "hints", `{"Son":2,"Dad":0}`)
			Expect(err).NotTo(HaveOccurred())

			out, err := execute("get", "hints")
			Expect(err).NotTo(HaveOccurred())
			Expect(out).To(ContainSubstring(`{"Son":2,"Dad":0}`))
		})

		It("rejects unknown keys", func() {
			_, err := execute("set", "invalid_key", "value")
			Expect(err).To(MatchError(ContainSubstring("unknown config key")))
		})

		It("requires exactly two arguments", func() {
			_, err := execute("set", "chain.rpc")
			Expect(err).To(HaveOccurred())
		})

		It("rejects zero arguments", func() {
			_, err := execute("set")
			Expect(err).To(HaveOccurred())
		})

		It("rejects invalid uint values", func() {
			_, err := execute("set", "resolver.concurrency", "not-a-number")
			Expect(err).To(HaveOccurred())
		})

		It("rejects unknown speech backends", func() {
			_, err := execute("set", "speech.backend", "espeak")
			Expect(err).To(HaveOccurred())
		})

		It("fails when no .mnemosyne directory exists", func() {
			Expect(os.RemoveAll(filepath.Join(tmpDir, ".mnemosyne"))).To(Succeed())

			_, err := execute("set", "chain.rpc", "https://example.invalid")
			Expect(err).To(MatchError(ContainSubstring("no .mnemosyne directory found")))
		})
	})

	Describe("get subcommand", func() {
		It("gets a previously set value", func() {
			_, err := execute("set", "speech.backend", "openai")
			Expect(err).NotTo(HaveOccurred())

			out, err := execute("get", "speech.backend")
			Expect(err).NotTo(HaveOccurred())
			Expect(out).To(ContainSubstring("openai"))
		})

		It("returns the default for an unset key", func() {
			out, err := execute("get", "api.listen")
			Expect(err).NotTo(HaveOccurred())
			Expect(out).To(ContainSubstring(":8000"))
		})

		It("rejects unknown keys", func() {
			_, err := execute("get", "invalid_key")
			Expect(err).To(HaveOccurred())
		})

		It("requires exactly one argument", func() {
			_, err := execute("get")
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("list subcommand", func() {
		It("lists every key when no config exists", func() {
			out, err := execute("list")
			Expect(err).NotTo(HaveOccurred())
			Expect(out).To(ContainSubstring("chain.table_id"))
			Expect(out).To(ContainSubstring("eventstream.kafka_topic"))
		})

		It("reflects set values", func() {
			_, err := execute("set", "walrus.aggregator", "https://aggregator.example")
			Expect(err).NotTo(HaveOccurred())

			out, err := execute("list")
			Expect(err).NotTo(HaveOccurred())
			Expect(out).To(ContainSubstring("https://aggregator.example"))
		})

		It("rejects any arguments", func() {
			_, err := execute("list", "extra")
			Expect(err).To(HaveOccurred())
		})
	})
})
