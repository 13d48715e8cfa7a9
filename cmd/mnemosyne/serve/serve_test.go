package servecmder

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/BillDuke13/mnemosyne/pkg/logger"
)

var _ = Describe("logOptions", func() {
	decode := func(buf *bytes.Buffer) map[string]any {
		var parsed map[string]any
		Expect(json.Unmarshal(buf.Bytes(), &parsed)).To(Succeed())
		return parsed
	}

	It("reports the caller and debug records with --debug", func() {
		c := &serveCommander{debug: true}
		var buf bytes.Buffer
		l := logger.New(c.logOptions(logger.FormatJSON, &buf)...)
		l.Debug("resolving")

		parsed := decode(&buf)
		Expect(parsed["msg"]).To(Equal("resolving"))
		Expect(parsed).To(HaveKey(slog.SourceKey))
	})

	It("omits the caller and debug records by default", func() {
		c := &serveCommander{}
		var buf bytes.Buffer
		l := logger.New(c.logOptions(logger.FormatJSON, &buf)...)
		l.Debug("hidden")
		Expect(buf.Len()).To(BeZero())

		l.Info("shown")
		Expect(decode(&buf)).NotTo(HaveKey(slog.SourceKey))
	})
})

var _ = Describe("setupLogger", func() {
	It("tees JSON records into the log file", func() {
		path := filepath.Join(GinkgoT().TempDir(), "serve.log")
		c := &serveCommander{debug: true, jsonLogs: true, logFile: path}

		f, err := c.setupLogger()
		Expect(err).NotTo(HaveOccurred())
		Expect(f).NotTo(BeNil())

		c.logger.Debug("teed", "component", "test")
		Expect(f.Close()).To(Succeed())

		data, err := os.ReadFile(path)
		Expect(err).NotTo(HaveOccurred())

		var parsed map[string]any
		Expect(json.Unmarshal(bytes.TrimSpace(data), &parsed)).To(Succeed())
		Expect(parsed["msg"]).To(Equal("teed"))
		Expect(parsed["component"]).To(Equal("test"))
		Expect(parsed).To(HaveKey(slog.SourceKey))
	})

	It("returns no file without --log-file", func() {
		c := &serveCommander{}
		f, err := c.setupLogger()
		Expect(err).NotTo(HaveOccurred())
		Expect(f).To(BeNil())
		Expect(c.logger).NotTo(BeNil())
	})
})
