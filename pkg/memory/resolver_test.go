package memory_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	mnemosynelogger "github.com/BillDuke13/mnemosyne/pkg/logger"
	"github.com/BillDuke13/mnemosyne/pkg/memory"
)

// fakeTable serves records from memory and counts calls.
type fakeTable struct {
	mu       sync.Mutex
	ids      []uint64
	records  map[uint64]memory.Record
	listErr  error
	fetchErr map[uint64]error

	listCalls  atomic.Int32
	fetchCalls atomic.Int32
}

func (t *fakeTable) ListEntryIDs(_ context.Context) ([]uint64, error) {
	t.listCalls.Add(1)
	if t.listErr != nil {
		return nil, t.listErr
	}
	return append([]uint64(nil), t.ids...), nil
}

func (t *fakeTable) FetchEntry(ctx context.Context, id uint64) (memory.Record, error) {
	t.fetchCalls.Add(1)
	if err := ctx.Err(); err != nil {
		return memory.Record{}, err
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if err, ok := t.fetchErr[id]; ok {
		return memory.Record{}, err
	}
	rec, ok := t.records[id]
	if !ok {
		return memory.Record{}, &memory.UpstreamError{Service: "sui", Op: "suix_getDynamicFieldObject", Err: fmt.Errorf("entry %d gone", id)}
	}
	return rec, nil
}

// fakeBlobs maps blob ids to summaries.
type fakeBlobs struct {
	summaries map[string]string
	err       error
	calls     atomic.Int32
}

func (b *fakeBlobs) FetchSummary(_ context.Context, blobID string) (string, error) {
	b.calls.Add(1)
	if b.err != nil {
		return "", b.err
	}
	return b.summaries[blobID], nil
}

func record(id uint64, label string) memory.Record {
	return memory.Record{
		EntryID:               id,
		Label:                 label,
		Relationship:          "family",
		BlobID:                fmt.Sprintf("blob-%d", id),
		LastInteractionUnixMs: 1717000000000 + int64(id),
		NotesHash:             make([]byte, 32),
	}
}

func newFamily(order ...uint64) (*fakeTable, *fakeBlobs) {
	labels := map[uint64]string{0: "Family1-Dad", 1: "Family1-Mom", 2: "Family1-Son"}
	table := &fakeTable{
		ids:     order,
		records: map[uint64]memory.Record{},
	}
	blobs := &fakeBlobs{summaries: map[string]string{}}
	for id, label := range labels {
		table.records[id] = record(id, label)
		blobs.summaries[fmt.Sprintf("blob-%d", id)] = "summary of " + label
	}
	return table, blobs
}

func newResolver(table memory.TableReader, blobs memory.SummaryFetcher, hints ...memory.EntryHint) *memory.Resolver {
	r, err := memory.NewResolver(memory.ResolverConfig{
		Table:  table,
		Blobs:  blobs,
		Hints:  hints,
		Logger: mnemosynelogger.Nop(),
	})
	Expect(err).NotTo(HaveOccurred())
	return r
}

var _ = Describe("Resolver", func() {
	var ctx context.Context

	BeforeEach(func() {
		ctx = context.Background()
	})

	Describe("NewResolver", func() {
		It("requires a table reader", func() {
			_, err := memory.NewResolver(memory.ResolverConfig{Blobs: &fakeBlobs{}, Logger: mnemosynelogger.Nop()})
			Expect(err).To(MatchError(ContainSubstring("table reader is required")))
		})

		It("requires a summary fetcher", func() {
			_, err := memory.NewResolver(memory.ResolverConfig{Table: &fakeTable{}, Logger: mnemosynelogger.Nop()})
			Expect(err).To(MatchError(ContainSubstring("summary fetcher is required")))
		})
	})

	Context("with a direct hint", func() {
		DescribeTable("returns the case-insensitive label match regardless of ordering",
			func(hint string, order []uint64) {
				table, blobs := newFamily(order...)
				r := newResolver(table, blobs, memory.EntryHint{Label: "Family1-Dad", EntryID: 0})

				entry, err := r.Resolve(ctx, hint)
				Expect(err).NotTo(HaveOccurred())
				Expect(entry.Label).To(Equal("Family1-Son"))
				Expect(entry.EntryID).To(Equal(uint64(2)))
				Expect(entry.Summary).To(Equal("summary of Family1-Son"))
			},
			Entry("lowercase, listing order", "family1-son", []uint64{0, 1, 2}),
			Entry("uppercase, reversed order", "FAMILY1-SON", []uint64{2, 1, 0}),
			Entry("exact, shuffled order", "Family1-Son", []uint64{1, 2, 0}),
		)

		It("falls back to the hint mapping when nothing matches the hint", func() {
			table, blobs := newFamily(0, 1, 2)
			r := newResolver(table, blobs, memory.EntryHint{Label: "Family1-Mom", EntryID: 1})

			entry, err := r.Resolve(ctx, "stranger")
			Expect(err).NotTo(HaveOccurred())
			Expect(entry.EntryID).To(Equal(uint64(1)))
		})
	})

	Context("without a hint", func() {
		It("selects the mapped entry", func() {
			table, blobs := newFamily(0, 1, 2)
			r := newResolver(table, blobs, memory.EntryHint{Label: "Family1-Dad", EntryID: 0})

			entry, err := r.Resolve(ctx, "")
			Expect(err).NotTo(HaveOccurred())
			Expect(entry.EntryID).To(Equal(uint64(0)))
			Expect(entry.Label).To(Equal("Family1-Dad"))
		})

		It("honours the configured mapping order", func() {
			table, blobs := newFamily(0, 1, 2)
			r := newResolver(table, blobs,
				memory.EntryHint{Label: "Family1-Son", EntryID: 2},
				memory.EntryHint{Label: "Family1-Dad", EntryID: 0},
			)

			entry, err := r.Resolve(ctx, "")
			Expect(err).NotTo(HaveOccurred())
			Expect(entry.EntryID).To(Equal(uint64(2)))
		})

		It("matches a mapping entry by label when the id is absent", func() {
			table, blobs := newFamily(0, 1, 2)
			r := newResolver(table, blobs, memory.EntryHint{Label: "Family1-Mom", EntryID: 99})

			entry, err := r.Resolve(ctx, "")
			Expect(err).NotTo(HaveOccurred())
			Expect(entry.EntryID).To(Equal(uint64(1)))
		})

		It("returns the first listed entry when there is no mapping", func() {
			table, blobs := newFamily(1, 2, 0)
			r := newResolver(table, blobs)

			entry, err := r.Resolve(ctx, "")
			Expect(err).NotTo(HaveOccurred())
			Expect(entry.EntryID).To(Equal(uint64(1)))
		})

		It("returns the first listed entry when no mapping entry matches", func() {
			table, blobs := newFamily(2, 0, 1)
			r := newResolver(table, blobs, memory.EntryHint{Label: "Nobody", EntryID: 42})

			entry, err := r.Resolve(ctx, "")
			Expect(err).NotTo(HaveOccurred())
			Expect(entry.EntryID).To(Equal(uint64(2)))
		})
	})

	It("assembles the entry from the record and its summary", func() {
		table, blobs := newFamily(0)
		r := newResolver(table, blobs)

		entry, err := r.Resolve(ctx, "")
		Expect(err).NotTo(HaveOccurred())
		Expect(entry.BlobID).To(Equal("blob-0"))
		Expect(entry.Relationship).To(Equal("family"))
		Expect(entry.LastInteractionUnixMs).To(Equal(int64(1717000000000)))
		Expect(entry.NotesHashHex).To(Equal("0000000000000000000000000000000000000000000000000000000000000000"))
	})

	It("loads every candidate before selecting", func() {
		table, blobs := newFamily(0, 1, 2)
		r := newResolver(table, blobs)

		_, err := r.Resolve(ctx, "family1-dad")
		Expect(err).NotTo(HaveOccurred())
		Expect(table.fetchCalls.Load()).To(Equal(int32(3)))
		Expect(blobs.calls.Load()).To(Equal(int32(3)))
	})

	Context("failures", func() {
		It("returns ErrNoCandidates for an empty table without further I/O", func() {
			table := &fakeTable{}
			blobs := &fakeBlobs{}
			r := newResolver(table, blobs, memory.EntryHint{Label: "Family1-Dad", EntryID: 0})

			_, err := r.Resolve(ctx, "anyone")
			Expect(err).To(MatchError(memory.ErrNoCandidates))
			Expect(table.listCalls.Load()).To(Equal(int32(1)))
			Expect(table.fetchCalls.Load()).To(BeZero())
			Expect(blobs.calls.Load()).To(BeZero())
		})

		It("propagates a listing failure unmodified", func() {
			listErr := &memory.UpstreamError{Service: "sui", Op: "suix_getDynamicFields", Err: context.DeadlineExceeded}
			table := &fakeTable{listErr: listErr}
			r := newResolver(table, &fakeBlobs{})

			entry, err := r.Resolve(ctx, "")
			Expect(entry).To(BeNil())
			Expect(err).To(BeIdenticalTo(listErr))
			Expect(errors.Is(err, context.DeadlineExceeded)).To(BeTrue())
		})

		It("aborts the whole resolution when one record fetch fails", func() {
			table, blobs := newFamily(0, 1, 2)
			table.fetchErr = map[uint64]error{1: &memory.MalformedRecordError{EntryID: 1, Field: "label", Reason: "is missing"}}
			r := newResolver(table, blobs)

			entry, err := r.Resolve(ctx, "family1-dad")
			Expect(entry).To(BeNil())
			var malformed *memory.MalformedRecordError
			Expect(errors.As(err, &malformed)).To(BeTrue())
			Expect(malformed.EntryID).To(Equal(uint64(1)))
		})

		It("fails with UpstreamError when a listed id is gone at fetch time", func() {
			table, blobs := newFamily(0, 1, 2, 3)
			r := newResolver(table, blobs)

			_, err := r.Resolve(ctx, "")
			var upstream *memory.UpstreamError
			Expect(errors.As(err, &upstream)).To(BeTrue())
		})

		It("aborts the whole resolution when a blob fetch fails", func() {
			table, blobs := newFamily(0, 1, 2)
			blobs.err = &memory.UpstreamError{Service: "walrus", Op: "get_blob", StatusCode: 500}
			r := newResolver(table, blobs)

			entry, err := r.Resolve(ctx, "")
			Expect(entry).To(BeNil())
			var upstream *memory.UpstreamError
			Expect(errors.As(err, &upstream)).To(BeTrue())
			Expect(upstream.Service).To(Equal("walrus"))
		})

		It("stops when the caller cancels", func() {
			table, blobs := newFamily(0, 1, 2)
			r := newResolver(table, blobs)

			cctx, cancel := context.WithCancel(ctx)
			cancel()

			_, err := r.Resolve(cctx, "")
			Expect(err).To(MatchError(context.Canceled))
		})
	})
})
