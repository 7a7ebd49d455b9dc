package service

import (
	"bytes"
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"formassist/internal/catalog"
	"formassist/internal/config"
	"formassist/internal/llm"
	"formassist/internal/model"
	"formassist/internal/repository"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type fakeSessionRepo struct {
	mu       sync.Mutex
	sessions map[string]model.Session
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{sessions: make(map[string]model.Session)}
}

func (r *fakeSessionRepo) Create(_ context.Context, s *model.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s.CreatedAt = time.Now()
	s.UpdatedAt = s.CreatedAt
	r.sessions[s.ID] = *s
	return nil
}

func (r *fakeSessionRepo) GetByID(_ context.Context, id string) (*model.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	if !ok {
		return nil, nil
	}
	return &s, nil
}

func (r *fakeSessionRepo) Update(_ context.Context, s *model.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[s.ID] = *s
	return nil
}

func (r *fakeSessionRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, id)
	return nil
}

// fakeSessionCache always misses, so loads go to the repository
type fakeSessionCache struct{}

func (fakeSessionCache) Set(context.Context, *model.Session) error           { return nil }
func (fakeSessionCache) Get(context.Context, string) (*model.Session, error) { return nil, nil }
func (fakeSessionCache) Delete(context.Context, string) error                { return nil }

type fakeProgressCache struct {
	mu      sync.Mutex
	entries map[string][]model.ProgressEntry
	writes  int
}

func newFakeProgressCache() *fakeProgressCache {
	return &fakeProgressCache{entries: make(map[string][]model.ProgressEntry)}
}

func (c *fakeProgressCache) SetProgress(_ context.Context, sessionID, moduleID string, entries []model.ProgressEntry) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[sessionID+"/"+moduleID] = entries
	c.writes++
	return nil
}

func (c *fakeProgressCache) GetProgress(_ context.Context, sessionID, moduleID string) ([]model.ProgressEntry, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.entries[sessionID+"/"+moduleID], nil
}

func (c *fakeProgressCache) DeleteProgress(_ context.Context, sessionID, moduleID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, sessionID+"/"+moduleID)
	return nil
}

func (c *fakeProgressCache) get(sessionID, moduleID string) ([]model.ProgressEntry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[sessionID+"/"+moduleID]
	return e, ok
}

type storedFile struct {
	ref  model.EvidenceRef
	data []byte
}

type fakeEvidenceRepo struct {
	mu    sync.Mutex
	files map[string]storedFile
	next  int
}

func newFakeEvidenceRepo() *fakeEvidenceRepo {
	return &fakeEvidenceRepo{files: make(map[string]storedFile)}
}

func (r *fakeEvidenceRepo) Upload(_ context.Context, _, _, fileName, mimeType string, src io.Reader) (*model.EvidenceRef, error) {
	data, err := io.ReadAll(src)
	if err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.next++
	ref := model.EvidenceRef{FileID: string(rune('a'+r.next-1)) + "-file", FileName: fileName, MIMEType: mimeType, Size: int64(len(data))}
	r.files[ref.FileID] = storedFile{ref: ref, data: data}
	return &ref, nil
}

func (r *fakeEvidenceRepo) Read(_ context.Context, fileID string) (*model.EvidenceRef, []byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	f, ok := r.files[fileID]
	if !ok {
		return nil, nil, repository.ErrEvidenceNotFound
	}
	ref := f.ref
	return &ref, bytes.Clone(f.data), nil
}

func (r *fakeEvidenceRepo) Delete(_ context.Context, fileID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.files[fileID]; !ok {
		return repository.ErrEvidenceNotFound
	}
	delete(r.files, fileID)
	return nil
}

func (r *fakeEvidenceRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.files)
}

type fakeReviewRepo struct {
	mu      sync.Mutex
	reviews map[string]model.StoredReview
}

func newFakeReviewRepo() *fakeReviewRepo {
	return &fakeReviewRepo{reviews: make(map[string]model.StoredReview)}
}

func (r *fakeReviewRepo) Save(_ context.Context, review *model.StoredReview) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reviews[review.SessionID+"/"+review.Review.ModuleID] = *review
	return nil
}

func (r *fakeReviewRepo) GetLatest(_ context.Context, sessionID, moduleID string) (*model.StoredReview, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	review, ok := r.reviews[sessionID+"/"+moduleID]
	if !ok {
		return nil, nil
	}
	return &review, nil
}

type fakeGenerator struct {
	mu       sync.Mutex
	requests []llm.Request
	respond  func(req llm.Request) (string, error)
}

func (g *fakeGenerator) Generate(_ context.Context, req llm.Request) (string, error) {
	g.mu.Lock()
	g.requests = append(g.requests, req)
	respond := g.respond
	g.mu.Unlock()
	return respond(req)
}

func (g *fakeGenerator) calls() []llm.Request {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]llm.Request(nil), g.requests...)
}

type broadcast struct {
	sessionID string
	msgType   string
	payload   interface{}
}

type recordingBroadcaster struct {
	ch           chan broadcast
	disconnected chan string
}

func newRecordingBroadcaster() *recordingBroadcaster {
	return &recordingBroadcaster{ch: make(chan broadcast, 16), disconnected: make(chan string, 4)}
}

func (b *recordingBroadcaster) BroadcastToSession(sessionID, msgType string, payload interface{}) {
	b.ch <- broadcast{sessionID: sessionID, msgType: msgType, payload: payload}
}

func (b *recordingBroadcaster) DisconnectSession(sessionID string) {
	b.disconnected <- sessionID
}

func (b *recordingBroadcaster) next(t *testing.T) broadcast {
	t.Helper()
	select {
	case msg := <-b.ch:
		return msg
	case <-time.After(2 * time.Second):
		t.Fatal("no broadcast")
		return broadcast{}
	}
}

// harness wires services over in-memory fakes
type harness struct {
	sessionRepo *fakeSessionRepo
	progress    *fakeProgressCache
	evidence    *fakeEvidenceRepo
	reviewRepo  *fakeReviewRepo
	catalog     *CatalogService
	auth        *AuthService
	sessions    *SessionService
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	embedded, err := catalog.Embedded()
	require.NoError(t, err)

	log := zaptest.NewLogger(t)
	h := &harness{
		sessionRepo: newFakeSessionRepo(),
		progress:    newFakeProgressCache(),
		evidence:    newFakeEvidenceRepo(),
		reviewRepo:  newFakeReviewRepo(),
		catalog:     NewCatalogService(nil, embedded, log),
		auth:        NewAuthService("test-secret"),
	}
	h.sessions = h.newSessionService(t)
	return h
}

// newSessionService builds a second service over the same stores, as after a restart
func (h *harness) newSessionService(t *testing.T) *SessionService {
	return NewSessionService(h.sessionRepo, fakeSessionCache{}, h.progress, h.evidence, h.catalog, h.auth, zaptest.NewLogger(t))
}

func (h *harness) create(t *testing.T, moduleID, lang string) string {
	t.Helper()
	resp, err := h.sessions.Create(context.Background(), &model.CreateSessionRequest{ModuleID: moduleID, Lang: lang})
	require.NoError(t, err)
	return resp.SessionID
}

func enabledAI() *config.AIConfig {
	return &config.AIConfig{
		APIKey:    "test",
		TimeoutMS: 1000,
		Models:    config.GeminiModels{Guidance: "guidance-model", Review: "review-model"},
	}
}

func disabledAI() *config.AIConfig {
	return &config.AIConfig{TimeoutMS: 1000}
}
