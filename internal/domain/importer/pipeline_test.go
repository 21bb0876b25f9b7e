package importer

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pustakalaya/internal/core/id"
	"pustakalaya/internal/domain/catalogs/title"
)

// passthroughTx satisfies tx.Manager without a database.
type passthroughTx struct{}

func (passthroughTx) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// fakeTitleStore is an in-memory title.Repository.
type fakeTitleStore struct {
	byID map[id.ID]*title.Title

	failBatch    bool
	failCreateOf string // name whose row-wise Create fails
}

func newFakeTitleStore() *fakeTitleStore {
	return &fakeTitleStore{byID: make(map[id.ID]*title.Title)}
}

func (s *fakeTitleStore) Create(ctx context.Context, t *title.Title) error {
	if s.failCreateOf != "" && t.Name == s.failCreateOf {
		return fmt.Errorf("simulated insert failure")
	}
	cp := *t
	s.byID[t.ID] = &cp
	return nil
}

func (s *fakeTitleStore) CreateBatch(ctx context.Context, titles []*title.Title) error {
	if s.failBatch {
		return fmt.Errorf("simulated batch failure")
	}
	for _, t := range titles {
		if err := s.Create(ctx, t); err != nil {
			return err
		}
	}
	return nil
}

func (s *fakeTitleStore) Update(ctx context.Context, t *title.Title) error {
	cp := *t
	s.byID[t.ID] = &cp
	return nil
}

func (s *fakeTitleStore) UpdateDescriptive(ctx context.Context, u title.Upsert) error {
	t, ok := s.byID[u.ID]
	if !ok {
		return fmt.Errorf("title %s not found", u.ID)
	}
	if u.Name != nil {
		t.Name = *u.Name
	}
	if u.Author != nil {
		t.Author = *u.Author
	}
	if u.AccessionNo != nil {
		t.AccessionNo = u.AccessionNo
	}
	if u.Category != nil {
		t.Category = u.Category
	}
	if u.Publisher != nil {
		t.Publisher = u.Publisher
	}
	if u.Year != nil {
		t.Year = u.Year
	}
	if u.Shelf != nil {
		t.Shelf = u.Shelf
	}
	if u.Description != nil {
		t.Description = u.Description
	}
	return nil
}

func (s *fakeTitleStore) GetByID(ctx context.Context, titleID id.ID) (*title.Title, error) {
	t, ok := s.byID[titleID]
	if !ok {
		return nil, fmt.Errorf("title %s not found", titleID)
	}
	return t, nil
}

func (s *fakeTitleStore) MarkDeleted(ctx context.Context, titleID id.ID) error {
	delete(s.byID, titleID)
	return nil
}

func (s *fakeTitleStore) FindByAccessionNos(ctx context.Context, nos []string) ([]*title.Title, error) {
	want := make(map[string]bool, len(nos))
	for _, no := range nos {
		want[no] = true
	}
	var out []*title.Title
	for _, t := range s.byID {
		if t.AccessionNo != nil && want[*t.AccessionNo] {
			out = append(out, t)
		}
	}
	return out, nil
}

func (s *fakeTitleStore) FindByNameAuthor(ctx context.Context, pairs []title.NameAuthor) ([]*title.Title, error) {
	want := make(map[title.NameAuthor]bool, len(pairs))
	for _, p := range pairs {
		want[p] = true
	}
	var out []*title.Title
	for _, t := range s.byID {
		if want[title.NameAuthor{Name: t.Name, Author: t.Author}] {
			out = append(out, t)
		}
	}
	return out, nil
}

func (s *fakeTitleStore) List(ctx context.Context, f title.ListFilter) ([]*title.Title, error) {
	var out []*title.Title
	for _, t := range s.byID {
		out = append(out, t)
	}
	return out, nil
}

func (s *fakeTitleStore) ReserveCopy(ctx context.Context, titleID id.ID) (bool, error) {
	t, ok := s.byID[titleID]
	if !ok || t.AvailableCopies == 0 {
		return false, nil
	}
	t.AvailableCopies--
	return true, nil
}

func (s *fakeTitleStore) ReleaseCopy(ctx context.Context, titleID id.ID) error {
	if t, ok := s.byID[titleID]; ok && t.AvailableCopies < t.TotalCopies {
		t.AvailableCopies++
	}
	return nil
}

func (s *fakeTitleStore) SetTotalCopies(ctx context.Context, titleID id.ID, newTotal int) error {
	t, ok := s.byID[titleID]
	if !ok {
		return fmt.Errorf("title %s not found", titleID)
	}
	t.AvailableCopies = title.RecomputeAvailable(t.TotalCopies, t.AvailableCopies, newTotal)
	t.TotalCopies = newTotal
	return nil
}

// fakeRecorder collects book_added events; optionally cancels a context to
// exercise between-chunk cancellation.
type fakeRecorder struct {
	added  map[id.ID]string
	cancel context.CancelFunc
}

func newFakeRecorder() *fakeRecorder {
	return &fakeRecorder{added: make(map[id.ID]string)}
}

func (r *fakeRecorder) BookAddedBatch(ctx context.Context, added map[id.ID]string) error {
	for k, v := range added {
		r.added[k] = v
	}
	if r.cancel != nil {
		r.cancel()
	}
	return nil
}

func newTestPipeline(store *fakeTitleStore, rec *fakeRecorder) *Pipeline {
	return NewPipeline(store, rec, passthroughTx{})
}

const sampleCSV = `Accession No,Book Title,Author,Category,Copies
A-001,Godan,Premchand,Fiction,3
A-002,Gaban,Premchand,Fiction,2
A-003,Nirmala,Premchand,Fiction,1
,Discovery of India,Nehru,History,2
,Wings of Fire,Kalam,Biography,1
`

func TestPipeline_InsertThenDedupUpdate(t *testing.T) {
	store := newFakeTitleStore()
	rec := newFakeRecorder()
	p := newTestPipeline(store, rec)

	report, err := p.Run(context.Background(), []byte(sampleCSV), ContentDelimited)
	require.NoError(t, err)

	assert.Equal(t, 5, report.Total)
	assert.Equal(t, 5, report.Inserted)
	assert.Equal(t, 0, report.Updated)
	assert.Equal(t, 0, report.Skipped)
	assert.Len(t, store.byID, 5)
	assert.Len(t, rec.added, 5)

	// Re-import: every row matches (by accession or title+author pair) and
	// becomes an update. Nothing is duplicated.
	report, err = p.Run(context.Background(), []byte(sampleCSV), ContentDelimited)
	require.NoError(t, err)

	assert.Equal(t, 5, report.Total)
	assert.Equal(t, 0, report.Inserted)
	assert.Equal(t, 5, report.Updated)
	assert.Len(t, store.byID, 5)
}

func TestPipeline_CopyCountsSurviveReimport(t *testing.T) {
	store := newFakeTitleStore()
	p := newTestPipeline(store, newFakeRecorder())

	_, err := p.Run(context.Background(), []byte(sampleCSV), ContentDelimited)
	require.NoError(t, err)

	// Issue a copy of A-001 between imports.
	var godan *title.Title
	for _, t2 := range store.byID {
		if t2.AccessionNo != nil && *t2.AccessionNo == "A-001" {
			godan = t2
		}
	}
	require.NotNil(t, godan)
	godan.AvailableCopies--

	_, err = p.Run(context.Background(), []byte(sampleCSV), ContentDelimited)
	require.NoError(t, err)

	// The matched update refreshes descriptive fields only.
	assert.Equal(t, 3, godan.TotalCopies)
	assert.Equal(t, 2, godan.AvailableCopies)
}

func TestPipeline_SkipsRowsMissingRequiredFields(t *testing.T) {
	csv := "title,author\nGodan,Premchand\n,Premchand\nGaban,\n"
	store := newFakeTitleStore()
	p := newTestPipeline(store, newFakeRecorder())

	report, err := p.Run(context.Background(), []byte(csv), ContentDelimited)
	require.NoError(t, err)

	assert.Equal(t, 3, report.Total)
	assert.Equal(t, 1, report.Inserted)
	assert.Equal(t, 2, report.Skipped)
	require.Len(t, report.Errors, 2)
	assert.Equal(t, 2, report.Errors[0].Row)
	assert.Equal(t, "missing title", report.Errors[0].Reason)
	assert.Equal(t, 3, report.Errors[1].Row)
	assert.Equal(t, "missing author", report.Errors[1].Reason)
}

func TestPipeline_RowwiseFallbackIsolatesBadRow(t *testing.T) {
	store := newFakeTitleStore()
	store.failBatch = true
	store.failCreateOf = "Gaban"
	p := newTestPipeline(store, newFakeRecorder())

	report, err := p.Run(context.Background(), []byte(sampleCSV), ContentDelimited)
	require.NoError(t, err)

	// The chunk transaction fails, the retry salvages every row but one.
	assert.Equal(t, 5, report.Total)
	assert.Equal(t, 4, report.Inserted)
	assert.Equal(t, 1, report.Skipped)
	require.Len(t, report.Errors, 1)
	assert.Equal(t, 2, report.Errors[0].Row)
}

func TestPipeline_CancellationKeepsCommittedChunks(t *testing.T) {
	var b strings.Builder
	b.WriteString("title,author\n")
	for i := 0; i < ChunkSize+10; i++ {
		fmt.Fprintf(&b, "Book %d,Author %d\n", i, i)
	}

	ctx, cancel := context.WithCancel(context.Background())
	store := newFakeTitleStore()
	rec := newFakeRecorder()
	rec.cancel = cancel // fires when the first chunk commits

	p := newTestPipeline(store, rec)
	report, err := p.Run(ctx, []byte(b.String()), ContentDelimited)

	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, ChunkSize, report.Total)
	assert.Equal(t, ChunkSize, report.Inserted)
	assert.Len(t, store.byID, ChunkSize)
}

func TestPipeline_LegacyTextRepairedOnIngest(t *testing.T) {
	csv := "title,author\nfdrkc ;g,Premchand\n"
	store := newFakeTitleStore()
	p := newTestPipeline(store, newFakeRecorder())

	report, err := p.Run(context.Background(), []byte(csv), ContentDelimited)
	require.NoError(t, err)
	require.Equal(t, 1, report.Inserted)

	for _, stored := range store.byID {
		assert.Equal(t, "किताब यह", stored.Name)
		assert.Equal(t, "Premchand", stored.Author)
	}
}

func TestPipeline_ErrorCapBounded(t *testing.T) {
	var b strings.Builder
	b.WriteString("title,author\n")
	for i := 0; i < MaxReportedErrors+20; i++ {
		b.WriteString(",NoTitle\n")
	}

	store := newFakeTitleStore()
	p := newTestPipeline(store, newFakeRecorder())

	report, err := p.Run(context.Background(), []byte(b.String()), ContentDelimited)
	require.NoError(t, err)

	assert.Equal(t, MaxReportedErrors+20, report.Skipped)
	assert.Len(t, report.Errors, MaxReportedErrors)
	assert.True(t, report.ErrorsTruncated)
}

func TestPipeline_UnsupportedContentType(t *testing.T) {
	p := newTestPipeline(newFakeTitleStore(), newFakeRecorder())
	_, err := p.Run(context.Background(), []byte("x"), ContentType("weird"))
	assert.Error(t, err)
}
