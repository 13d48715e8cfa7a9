package metrics_test

import (
	"errors"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/BillDuke13/mnemosyne/pkg/metrics"
)

func gatheredNames() []string {
	families, err := prometheus.DefaultGatherer.Gather()
	Expect(err).NotTo(HaveOccurred())

	names := make([]string, 0, len(families))
	for _, f := range families {
		names = append(names, f.GetName())
	}
	return names
}

var _ = Describe("Metrics", func() {
	It("registers identify and upstream collectors on the default registry", func() {
		metrics.ObserveIdentify(metrics.OutcomeOK)
		metrics.ObserveUpstream("sui", "suix_getDynamicFields", time.Now(), nil)
		metrics.ObserveUpstream("walrus", "get_blob", time.Now(), errors.New("boom"))
		metrics.AnnouncementDropped()
		metrics.EventDropped()

		names := gatheredNames()
		Expect(names).To(ContainElement("mnemosyne_identify_requests_total"))
		Expect(names).To(ContainElement("mnemosyne_upstream_request_duration_seconds"))
		Expect(names).To(ContainElement("mnemosyne_announcements_dropped_total"))
		Expect(names).To(ContainElement("mnemosyne_events_dropped_total"))
	})
})
