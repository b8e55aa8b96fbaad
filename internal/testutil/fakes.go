// Package testutil provides in-memory doubles for the pipeline's
// collaborators so tests run without Postgres, blob storage or a live
// model endpoint.
package testutil

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/carbonlens/emissions-tracker/constants"
	"github.com/carbonlens/emissions-tracker/internal/common"
	"github.com/carbonlens/emissions-tracker/internal/entity"
	"github.com/carbonlens/emissions-tracker/internal/llm"
)

// FakeFiles is an in-memory UploadedFileRepository.
type FakeFiles struct {
	mu    sync.Mutex
	Items map[uuid.UUID]*entity.UploadedFile
}

func NewFakeFiles() *FakeFiles {
	return &FakeFiles{Items: make(map[uuid.UUID]*entity.UploadedFile)}
}

func (f *FakeFiles) Create(_ context.Context, file *entity.UploadedFile) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *file
	f.Items[file.ID] = &cp
	return nil
}

func (f *FakeFiles) GetByID(_ context.Context, id uuid.UUID) (*entity.UploadedFile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	file, ok := f.Items[id]
	if !ok {
		return nil, common.NewAppError("FILE_NOT_FOUND", "uploaded file not found", common.ErrNotFound)
	}
	cp := *file
	return &cp, nil
}

func (f *FakeFiles) UpdateStatus(_ context.Context, id uuid.UUID, status constants.ProcessingStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	file, ok := f.Items[id]
	if !ok {
		return common.NewAppError("FILE_NOT_FOUND", "uploaded file not found", common.ErrNotFound)
	}
	file.Status = status
	return nil
}

func (f *FakeFiles) FinishWithCounts(_ context.Context, id uuid.UUID, status constants.ProcessingStatus, counts entity.ImportCounts) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	file, ok := f.Items[id]
	if !ok {
		return common.NewAppError("FILE_NOT_FOUND", "uploaded file not found", common.ErrNotFound)
	}
	file.Status = status
	file.RecordCount = counts.Records
	file.MatchedCount = counts.Matched
	file.AIProcessed = counts.AIProcessed
	file.NeedsReview = counts.NeedsReview
	return nil
}

// FakeMaterials serves a fixed library.
type FakeMaterials struct {
	Entries []entity.MaterialEntry
}

func (m *FakeMaterials) List(context.Context) ([]entity.MaterialEntry, error) {
	return m.Entries, nil
}

// FakeRecords collects created records.
type FakeRecords struct {
	mu      sync.Mutex
	Created []entity.EmissionRecord
	FailNow bool
}

func (r *FakeRecords) CreateBatch(_ context.Context, recs []entity.EmissionRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.FailNow {
		return common.NewAppError("DB_ERROR", "insert failed", common.ErrDatabase)
	}
	r.Created = append(r.Created, recs...)
	return nil
}

func (r *FakeRecords) ListByProject(_ context.Context, orgID, projectID uuid.UUID) ([]entity.EmissionRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []entity.EmissionRecord
	for _, rec := range r.Created {
		if rec.OrganizationID == orgID && rec.ProjectID == projectID {
			out = append(out, rec)
		}
	}
	return out, nil
}

// All returns a snapshot of everything created so far.
func (r *FakeRecords) All() []entity.EmissionRecord {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]entity.EmissionRecord, len(r.Created))
	copy(out, r.Created)
	return out
}

// FakeSessions is an in-memory ImportSessionRepository.
type FakeSessions struct {
	mu    sync.Mutex
	Items map[uuid.UUID]*entity.BulkImportSession
}

func NewFakeSessions() *FakeSessions {
	return &FakeSessions{Items: make(map[uuid.UUID]*entity.BulkImportSession)}
}

func (s *FakeSessions) Create(_ context.Context, session *entity.BulkImportSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *session
	s.Items[session.ID] = &cp
	return nil
}

func (s *FakeSessions) UpdateStatus(_ context.Context, id uuid.UUID, status constants.ProcessingStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.Items[id]
	if !ok {
		return common.NewAppError("SESSION_NOT_FOUND", "import session not found", common.ErrNotFound)
	}
	session.Status = status
	return nil
}

func (s *FakeSessions) Finish(_ context.Context, id uuid.UUID, status constants.ProcessingStatus, total, processed int, counts entity.ImportCounts) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.Items[id]
	if !ok {
		return common.NewAppError("SESSION_NOT_FOUND", "import session not found", common.ErrNotFound)
	}
	session.Status = status
	session.Total = total
	session.Processed = processed
	session.Counts = counts
	return nil
}

// FakeBlobs is an in-memory BlobStore.
type FakeBlobs struct {
	mu          sync.Mutex
	Items       map[string][]byte
	DownloadErr error
}

func NewFakeBlobs() *FakeBlobs {
	return &FakeBlobs{Items: make(map[string][]byte)}
}

func (b *FakeBlobs) Upload(_ context.Context, path string, data []byte, _ string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	cp := make([]byte, len(data))
	copy(cp, data)
	b.Items[path] = cp
	return nil
}

func (b *FakeBlobs) Download(_ context.Context, path string) ([]byte, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.DownloadErr != nil {
		return nil, b.DownloadErr
	}
	data, ok := b.Items[path]
	if !ok {
		return nil, fmt.Errorf("blob %q not found", path)
	}
	return data, nil
}

// StubExtractor returns canned records (or a canned error) and counts
// invocations.
type StubExtractor struct {
	mu      sync.Mutex
	Records []llm.ExtractedRecord
	Err     error
	Calls   int
}

func (e *StubExtractor) ExtractRecords(context.Context, llm.ExtractRequest) ([]llm.ExtractedRecord, []byte, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.Calls++
	if e.Err != nil {
		return nil, nil, e.Err
	}
	return e.Records, nil, nil
}

// CallCount reports how many times the extractor ran.
func (e *StubExtractor) CallCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.Calls
}

// Float is shorthand for pointer literals in test fixtures.
func Float(v float64) *float64 { return &v }
