package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"
	"time"

	"formassist/internal/cache"
	"formassist/internal/form"
	"formassist/internal/model"
	"formassist/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AnswerListener is told about every answer mutation, after the session lock
// is released
type AnswerListener func(sessionID string, q *model.Question, prop model.Property, rec model.AnswerRecord)

// liveSession owns the answer store of one session; mu serializes all
// mutations of store. Progress snapshots are numbered under mu and written
// under writeMu, which skips any snapshot older than the last one written.
type liveSession struct {
	mu       sync.Mutex
	session  model.Session
	module   *model.Module
	store    *form.Store
	lastUsed time.Time
	seq      uint64

	writeMu       sync.Mutex
	written       uint64
	writtenModule string
}

// progressSnapshot is the store's progress at one point in the mutation order
type progressSnapshot struct {
	seq       uint64
	sessionID string
	moduleID  string
	dropped   string // module whose progress is removed before writing
	entries   []model.ProgressEntry
}

// snapshot must be called with ls.mu held
func (ls *liveSession) snapshot() progressSnapshot {
	ls.seq++
	return progressSnapshot{
		seq:       ls.seq,
		sessionID: ls.session.ID,
		moduleID:  ls.module.ID,
		entries:   ls.store.Progress(),
	}
}

// SessionService owns the live answer state of every active session
type SessionService struct {
	repo     repository.SessionRepo
	cache    cache.SessionCache
	progress cache.ProgressCache
	evidence repository.EvidenceRepo
	catalog  *CatalogService
	auth     *AuthService
	log      *zap.Logger

	mu        sync.Mutex
	live      map[string]*liveSession
	listeners []AnswerListener

	broadcaster Broadcaster
}

// NewSessionService creates a new session service
func NewSessionService(repo repository.SessionRepo, sessionCache cache.SessionCache, progress cache.ProgressCache, evidence repository.EvidenceRepo, catalog *CatalogService, auth *AuthService, log *zap.Logger) *SessionService {
	return &SessionService{
		repo:     repo,
		cache:    sessionCache,
		progress: progress,
		evidence: evidence,
		catalog:  catalog,
		auth:     auth,
		log:      log,
		live:     make(map[string]*liveSession),

		broadcaster: nopBroadcaster{},
	}
}

// SetBroadcaster sets the WebSocket broadcaster
func (s *SessionService) SetBroadcaster(b Broadcaster) {
	s.broadcaster = b
}

// OnAnswer registers a listener for answer mutations
func (s *SessionService) OnAnswer(l AnswerListener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, l)
}

// Create starts a new session and returns its token
func (s *SessionService) Create(ctx context.Context, req *model.CreateSessionRequest) (*model.CreateSessionResponse, error) {
	m, err := s.resolveModule(req.ModuleID)
	if err != nil {
		return nil, err
	}
	locale := form.MatchLocale(req.Lang)

	sess := model.Session{
		ID:       uuid.New().String(),
		ModuleID: m.ID,
		Locale:   locale,
	}
	if err := s.repo.Create(ctx, &sess); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	if err := s.cache.Set(ctx, &sess); err != nil {
		s.log.Warn("cache session", zap.String("session", sess.ID), zap.Error(err))
	}

	token, err := s.auth.GenerateSessionToken(sess.ID)
	if err != nil {
		return nil, err
	}

	ls := &liveSession{session: sess, module: m, store: form.NewStore(m, locale), lastUsed: time.Now()}
	ls.mu.Lock()
	snap := ls.snapshot()
	ls.mu.Unlock()

	s.mu.Lock()
	s.live[sess.ID] = ls
	s.mu.Unlock()

	s.persist(ctx, ls, snap)

	return &model.CreateSessionResponse{
		SessionID: sess.ID,
		Token:     token,
		ModuleID:  m.ID,
		Locale:    locale,
	}, nil
}

func (s *SessionService) resolveModule(id string) (*model.Module, error) {
	if id == "" {
		return s.catalog.Default()
	}
	return s.catalog.Get(id)
}

// State returns the full view of a session
func (s *SessionService) State(ctx context.Context, sessionID string) (*model.SessionState, error) {
	ls, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	ls.mu.Lock()
	defer ls.mu.Unlock()
	return ls.state(), nil
}

func (ls *liveSession) state() *model.SessionState {
	return &model.SessionState{
		SessionID:  ls.session.ID,
		ModuleID:   ls.module.ID,
		Locale:     ls.store.Locale(),
		Records:    ls.store.Records(),
		VisibleIDs: form.VisibleIDs(ls.module, ls.store),
	}
}

// SelectModule switches the module or locale of a session. Either change
// discards every answer; the saved progress of the old module is removed.
func (s *SessionService) SelectModule(ctx context.Context, sessionID string, req *model.SelectModuleRequest) (*model.SessionState, error) {
	ls, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	moduleID := req.ModuleID
	if moduleID == "" {
		moduleID = ls.session.ModuleID
	}
	m, err := s.catalog.Get(moduleID)
	if err != nil {
		return nil, err
	}
	locale := ls.session.Locale
	if req.Lang != "" {
		locale = form.MatchLocale(req.Lang)
	}

	ls.mu.Lock()
	previous := ls.session.ModuleID
	ls.session.ModuleID = m.ID
	ls.session.Locale = locale
	ls.module = m
	ls.store.Reset(m, locale)
	sess := ls.session
	state := ls.state()
	snap := ls.snapshot()
	if previous != m.ID {
		snap.dropped = previous
	}
	ls.mu.Unlock()

	if err := s.repo.Update(ctx, &sess); err != nil {
		return nil, fmt.Errorf("update session: %w", err)
	}
	if err := s.cache.Set(ctx, &sess); err != nil {
		s.log.Warn("cache session", zap.String("session", sessionID), zap.Error(err))
	}
	s.persist(ctx, ls, snap)
	s.broadcaster.BroadcastToSession(sessionID, MsgSessionReset, state)

	return state, nil
}

// Delete removes a session with its progress and evidence files and closes
// its sockets
func (s *SessionService) Delete(ctx context.Context, sessionID string) error {
	ls, err := s.load(ctx, sessionID)
	if err != nil {
		return err
	}

	ls.mu.Lock()
	moduleID := ls.module.ID
	var files []string
	for _, rec := range ls.store.Records() {
		if rec.Evidence != nil {
			files = append(files, rec.Evidence.FileID)
		}
	}
	ls.mu.Unlock()

	s.mu.Lock()
	delete(s.live, sessionID)
	s.mu.Unlock()

	for _, id := range files {
		if err := s.evidence.Delete(ctx, id); err != nil {
			s.log.Warn("delete evidence", zap.String("file", id), zap.Error(err))
		}
	}
	if err := s.progress.DeleteProgress(ctx, sessionID, moduleID); err != nil {
		s.log.Warn("delete progress", zap.String("session", sessionID), zap.Error(err))
	}
	if err := s.cache.Delete(ctx, sessionID); err != nil {
		s.log.Warn("uncache session", zap.String("session", sessionID), zap.Error(err))
	}
	if err := s.repo.Delete(ctx, sessionID); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	s.broadcaster.DisconnectSession(sessionID)
	return nil
}

// SetAnswer applies one property change and writes the progress through
func (s *SessionService) SetAnswer(ctx context.Context, sessionID, questionID string, req *model.SetAnswerRequest) (*model.AnswerUpdate, error) {
	if len(req.Value) == 0 {
		req.Value = json.RawMessage("null")
	}
	return s.mutate(ctx, sessionID, questionID, req.Property, func(store *form.Store) (model.AnswerRecord, error) {
		return store.SetAnswer(questionID, req.Property, req.Value)
	})
}

// AttachEvidence stores an uploaded file and references it from the answer
func (s *SessionService) AttachEvidence(ctx context.Context, sessionID, questionID, fileName, mimeType string, src io.Reader) (*model.AnswerUpdate, error) {
	ls, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	ls.mu.Lock()
	q, ok := ls.module.Question(questionID)
	ls.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownQuestion, questionID)
	}
	if !q.AllowsEvidence {
		return nil, fmt.Errorf("%w: %s", ErrEvidenceNotAllowed, questionID)
	}

	ref, err := s.evidence.Upload(ctx, sessionID, questionID, fileName, mimeType, src)
	if err != nil {
		return nil, err
	}

	var replaced *model.EvidenceRef
	update, err := s.mutate(ctx, sessionID, questionID, model.PropertyEvidence, func(store *form.Store) (model.AnswerRecord, error) {
		if old, ok := store.Record(questionID); ok {
			replaced = old.Evidence
		}
		return store.SetEvidence(questionID, ref)
	})
	if err != nil {
		return nil, err
	}
	if replaced != nil && replaced.FileID != ref.FileID {
		if err := s.evidence.Delete(ctx, replaced.FileID); err != nil {
			s.log.Warn("delete replaced evidence", zap.String("file", replaced.FileID), zap.Error(err))
		}
	}
	return update, nil
}

// ReadEvidence returns an evidence file belonging to the session
func (s *SessionService) ReadEvidence(ctx context.Context, sessionID, questionID string) (*model.EvidenceRef, []byte, error) {
	var ref *model.EvidenceRef
	err := s.View(ctx, sessionID, func(_ model.Session, store *form.Store) error {
		rec, ok := store.Record(questionID)
		if !ok {
			return fmt.Errorf("%w: %s", ErrUnknownQuestion, questionID)
		}
		ref = rec.Evidence
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	if ref == nil {
		return nil, nil, repository.ErrEvidenceNotFound
	}
	return s.evidence.Read(ctx, ref.FileID)
}

func (s *SessionService) mutate(ctx context.Context, sessionID, questionID string, prop model.Property, apply func(*form.Store) (model.AnswerRecord, error)) (*model.AnswerUpdate, error) {
	ls, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	ls.mu.Lock()
	rec, err := apply(ls.store)
	if err != nil {
		ls.mu.Unlock()
		return nil, err
	}
	update := &model.AnswerUpdate{Record: rec, VisibleIDs: form.VisibleIDs(ls.module, ls.store)}
	q, _ := ls.module.Question(rec.QuestionID)
	snap := ls.snapshot()
	ls.mu.Unlock()

	s.persist(ctx, ls, snap)

	s.mu.Lock()
	listeners := append([]AnswerListener(nil), s.listeners...)
	s.mu.Unlock()
	for _, l := range listeners {
		l(sessionID, q, prop, rec)
	}
	return update, nil
}

// ApplyGuidance attaches guidance if the session still has the module and
// locale, and the answer the revision, it was generated for
func (s *SessionService) ApplyGuidance(ctx context.Context, sessionID, moduleID string, locale model.Locale, questionID string, revision int64, frag *model.ReviewFragment) (bool, error) {
	ls, err := s.load(ctx, sessionID)
	if err != nil {
		return false, err
	}
	ls.mu.Lock()
	defer ls.mu.Unlock()
	if ls.module.ID != moduleID || ls.store.Locale() != locale {
		return false, nil
	}
	return ls.store.SetGuidance(questionID, revision, frag)
}

// View runs fn with the session's store while holding the session lock. fn
// must not keep the store.
func (s *SessionService) View(ctx context.Context, sessionID string, fn func(sess model.Session, store *form.Store) error) error {
	ls, err := s.load(ctx, sessionID)
	if err != nil {
		return err
	}
	ls.mu.Lock()
	defer ls.mu.Unlock()
	return fn(ls.session, ls.store)
}

// persist writes a progress snapshot to Redis unless a newer one has already
// been written. Failures are logged; the in-memory state stays authoritative
// for the live session.
func (s *SessionService) persist(ctx context.Context, ls *liveSession, snap progressSnapshot) {
	ls.writeMu.Lock()
	defer ls.writeMu.Unlock()
	newest := snap.seq > ls.written
	if newest {
		ls.written = snap.seq
		ls.writtenModule = snap.moduleID
	}

	// a switch away from a module still clears it, unless the newest written
	// snapshot is back on that module
	if snap.dropped != "" && snap.dropped != ls.writtenModule {
		if err := s.progress.DeleteProgress(ctx, snap.sessionID, snap.dropped); err != nil {
			s.log.Warn("delete progress", zap.String("session", snap.sessionID), zap.String("module", snap.dropped), zap.Error(err))
		}
	}
	if !newest {
		return
	}
	if err := s.progress.SetProgress(ctx, snap.sessionID, snap.moduleID, snap.entries); err != nil {
		s.log.Warn("write progress", zap.String("session", snap.sessionID), zap.String("module", snap.moduleID), zap.Error(err))
	}
}

// load returns the live session, rebuilding it from Redis and Mongo when
// it is not in memory
func (s *SessionService) load(ctx context.Context, sessionID string) (*liveSession, error) {
	s.mu.Lock()
	if ls, ok := s.live[sessionID]; ok {
		ls.lastUsed = time.Now()
		s.mu.Unlock()
		return ls, nil
	}
	s.mu.Unlock()

	sess, err := s.cache.Get(ctx, sessionID)
	if err != nil {
		s.log.Warn("read session cache", zap.String("session", sessionID), zap.Error(err))
		sess = nil
	}
	if sess == nil {
		sess, err = s.repo.GetByID(ctx, sessionID)
		if err != nil {
			return nil, fmt.Errorf("load session: %w", err)
		}
		if sess == nil {
			return nil, ErrSessionNotFound
		}
		if err := s.cache.Set(ctx, sess); err != nil {
			s.log.Warn("cache session", zap.String("session", sessionID), zap.Error(err))
		}
	}

	m, err := s.catalog.Get(sess.ModuleID)
	if err != nil {
		return nil, err
	}
	store := form.NewStore(m, sess.Locale)
	entries, err := s.progress.GetProgress(ctx, sessionID, m.ID)
	if err != nil {
		s.log.Warn("read progress", zap.String("session", sessionID), zap.Error(err))
	}
	store.Restore(entries)

	ls := &liveSession{session: *sess, module: m, store: store, lastUsed: time.Now()}

	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.live[sessionID]; ok {
		return existing, nil
	}
	s.live[sessionID] = ls
	return ls, nil
}

// Sweep drops sessions idle for longer than maxIdle from memory. Their
// progress stays in Redis and is restored on the next request.
func (s *SessionService) Sweep(maxIdle time.Duration) int {
	cutoff := time.Now().Add(-maxIdle)
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for id, ls := range s.live {
		if ls.lastUsed.Before(cutoff) {
			delete(s.live, id)
			n++
		}
	}
	return n
}
