package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"formassist/internal/config"
	"formassist/internal/form"
	"formassist/internal/llm"
	"formassist/internal/model"
	"formassist/internal/repository"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// ReviewService produces whole-form reviews. Concurrent requests for the
// same session share one generation call.
type ReviewService struct {
	config   *config.AIConfig
	gen      llm.Generator
	sessions *SessionService
	repo     repository.ReviewRepo
	log      *zap.Logger
	group    singleflight.Group
	now      func() time.Time

	broadcaster Broadcaster
}

// NewReviewService creates a new review service
func NewReviewService(cfg *config.AIConfig, gen llm.Generator, sessions *SessionService, repo repository.ReviewRepo, log *zap.Logger) *ReviewService {
	return &ReviewService{
		config:      cfg,
		gen:         gen,
		sessions:    sessions,
		repo:        repo,
		log:         log,
		now:         time.Now,
		broadcaster: nopBroadcaster{},
	}
}

// SetBroadcaster sets the WebSocket broadcaster
func (s *ReviewService) SetBroadcaster(b Broadcaster) {
	s.broadcaster = b
}

type reviewJob struct {
	moduleID string
	locale   model.Locale
	prompt   string
	answered int
	visible  int
}

// Generate reviews the current answers and stores the result. External
// failures become warnings on a default review, never errors.
func (s *ReviewService) Generate(ctx context.Context, sessionID string) (*model.StoredReview, error) {
	v, err, _ := s.group.Do(sessionID, func() (interface{}, error) {
		return s.generate(ctx, sessionID)
	})
	if err != nil {
		return nil, err
	}
	return v.(*model.StoredReview), nil
}

func (s *ReviewService) generate(ctx context.Context, sessionID string) (*model.StoredReview, error) {
	var job reviewJob
	err := s.sessions.View(ctx, sessionID, func(_ model.Session, store *form.Store) error {
		m := store.Module()
		job = reviewJob{
			moduleID: m.ID,
			locale:   store.Locale(),
			prompt:   form.BuildReviewPrompt(m, store.Locale(), store),
		}
		for _, q := range form.VisibleQuestions(m, store) {
			job.visible++
			if rec, ok := store.Record(q.ID); ok && !rec.Value.IsEmpty() {
				job.answered++
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	stored := &model.StoredReview{
		SessionID:   sessionID,
		GeneratedAt: s.now().UTC(),
	}

	if !s.config.IsEnabled() {
		stored.Review = s.mockReview(&job)
		stored.Mock = true
	} else {
		text, err := s.gen.Generate(ctx, llm.Request{Model: s.config.Models.Review, Prompt: job.prompt})
		if err != nil {
			s.log.Warn("review request failed", zap.String("session", sessionID), zap.Error(err))
			stored.Review = form.DefaultReview(job.moduleID, job.locale)
			stored.Warnings = []string{fmt.Sprintf("review generation failed: %v", err)}
		} else {
			stored.Review, stored.Warnings = form.NormalizeReview(job.moduleID, job.locale, []byte(text))
			for _, w := range stored.Warnings {
				s.log.Info("review normalized with warning", zap.String("session", sessionID), zap.String("warning", w))
			}
		}
	}

	if err := s.repo.Save(ctx, stored); err != nil {
		s.log.Warn("save review", zap.String("session", sessionID), zap.Error(err))
	}
	s.broadcaster.BroadcastToSession(sessionID, MsgReviewReady, stored)
	return stored, nil
}

// Stored returns the last saved review for the session's current module and
// locale, or nil. A review written in another locale is not returned.
func (s *ReviewService) Stored(ctx context.Context, sessionID string) (*model.StoredReview, error) {
	var (
		moduleID string
		locale   model.Locale
	)
	err := s.sessions.View(ctx, sessionID, func(sess model.Session, store *form.Store) error {
		moduleID = sess.ModuleID
		locale = store.Locale()
		return nil
	})
	if err != nil {
		return nil, err
	}
	stored, err := s.repo.GetLatest(ctx, sessionID, moduleID)
	if err != nil || stored == nil {
		return nil, err
	}
	if stored.Review.Locale != locale {
		return nil, nil
	}
	return stored, nil
}

// Latest returns the last saved review, or the default review when none exists
func (s *ReviewService) Latest(ctx context.Context, sessionID string) (*model.StoredReview, error) {
	stored, err := s.Stored(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if stored != nil {
		return stored, nil
	}

	var review model.ReviewRecord
	err = s.sessions.View(ctx, sessionID, func(sess model.Session, store *form.Store) error {
		review, _ = form.NormalizeReview(sess.ModuleID, store.Locale(), nil)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &model.StoredReview{SessionID: sessionID, Review: review}, nil
}

// mockReview is used when no API key is configured
func (s *ReviewService) mockReview(job *reviewJob) model.ReviewRecord {
	review := form.DefaultReview(job.moduleID, job.locale)
	completeness := 0
	if job.visible > 0 {
		completeness = job.answered * 100 / job.visible
	}
	review.OverallRating = 1 + completeness*(model.RatingMax-1)/100
	review.ScoreBreakdown = map[string]int{"completeness": completeness}
	review.SummaryText = fmt.Sprintf("Mock review: %d of %d visible questions answered.", job.answered, job.visible)
	if job.answered < job.visible {
		review.Findings = []string{strings.TrimSpace(fmt.Sprintf("%d questions still need an answer.", job.visible-job.answered))}
	}
	return review
}
