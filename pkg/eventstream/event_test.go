package eventstream_test

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/BillDuke13/mnemosyne/pkg/eventstream"
)

var _ = Describe("Event", func() {
	It("marshals IdentifiedEvent with expected top-level keys", func() {
		now := time.Unix(1735689600, 0).UTC()
		event := eventstream.IdentifiedEvent{
			SchemaVersion: eventstream.SchemaVersionV1,
			EventType:     eventstream.EventTypeEntryIdentified,
			EventID:       "evt_123",
			EmittedAt:     now,
			Source: eventstream.EventSource{
				PackageID:    "0xpkg",
				MemoryBookID: "0xbook",
				TableID:      "0xtable",
			},
			Request: eventstream.RequestMeta{
				Hint:        "Family1-Dad",
				StartedAt:   now.Add(-2 * time.Second),
				CompletedAt: now,
				DurationMs:  2000,
				Announced:   true,
			},
			Entry: eventstream.IdentifiedRef{
				EntryID:      0,
				Label:        "Family1-Dad",
				Relationship: "father",
				BlobID:       "blob-0",
				NotesHashHex: "ab",
			},
		}

		payload, err := json.Marshal(event)
		Expect(err).NotTo(HaveOccurred())

		var got map[string]any
		Expect(json.Unmarshal(payload, &got)).To(Succeed())

		Expect(got).To(HaveKey("schema_version"))
		Expect(got).To(HaveKey("event_type"))
		Expect(got).To(HaveKey("event_id"))
		Expect(got).To(HaveKey("emitted_at"))
		Expect(got).To(HaveKey("source"))
		Expect(got).To(HaveKey("request"))
		Expect(got).To(HaveKey("entry"))
		Expect(got["entry"]).To(HaveKeyWithValue("walrus_blob_id", "blob-0"))
		Expect(got["entry"]).NotTo(HaveKey("summary"))
	})

	It("stamps new events", func() {
		before := time.Now().UTC()
		event := eventstream.NewIdentifiedEvent(
			eventstream.EventSource{TableID: "0xtable"},
			eventstream.RequestMeta{},
			eventstream.IdentifiedRef{EntryID: 2, Label: "Family1-Son"},
		)

		Expect(event.SchemaVersion).To(Equal(eventstream.SchemaVersionV1))
		Expect(event.EventType).To(Equal(eventstream.EventTypeEntryIdentified))
		Expect(uuid.Validate(event.EventID)).To(Succeed())
		Expect(event.EmittedAt).To(BeTemporally(">=", before))
		Expect(event.Entry.EntryID).To(Equal(uint64(2)))
	})

	It("gives every event a distinct id", func() {
		a := eventstream.NewIdentifiedEvent(eventstream.EventSource{}, eventstream.RequestMeta{}, eventstream.IdentifiedRef{})
		b := eventstream.NewIdentifiedEvent(eventstream.EventSource{}, eventstream.RequestMeta{}, eventstream.IdentifiedRef{})
		Expect(a.EventID).NotTo(Equal(b.EventID))
	})

	It("defines stable event constants", func() {
		Expect(eventstream.SchemaVersionV1).To(BeNumerically(">", 0))
		Expect(eventstream.EventTypeEntryIdentified).To(Equal("mnemosyne.entry.identified"))
	})

	It("provides ErrNilIdentifiedEvent for nil payload validation", func() {
		Expect(eventstream.ErrNilIdentifiedEvent).To(MatchError("nil identified event"))
	})
})
