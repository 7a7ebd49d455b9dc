package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"formassist/internal/cache"
	"formassist/internal/config"
	"formassist/internal/form"
	"formassist/internal/llm"
	"formassist/internal/model"
	"formassist/internal/repository"

	"go.uber.org/zap"
)

// maxInlineEvidence bounds evidence sent inline with a guidance prompt
const maxInlineEvidence = 4 << 20

// AssistService generates per-question guidance. Edits are debounced per
// session and question; results for superseded edits are discarded.
type AssistService struct {
	config    *config.AIConfig
	gen       llm.Generator
	sessions  *SessionService
	cache     cache.GuidanceCache
	evidence  repository.EvidenceRepo
	debouncer *form.Debouncer
	log       *zap.Logger

	broadcaster Broadcaster
}

// NewAssistService creates a guidance service and subscribes it to answer
// changes. cache and evidence may be nil.
func NewAssistService(cfg *config.AIConfig, gen llm.Generator, sessions *SessionService, guidanceCache cache.GuidanceCache, evidence repository.EvidenceRepo, debounce time.Duration, log *zap.Logger) *AssistService {
	s := &AssistService{
		config:      cfg,
		gen:         gen,
		sessions:    sessions,
		cache:       guidanceCache,
		evidence:    evidence,
		debouncer:   form.NewDebouncer(debounce),
		log:         log,
		broadcaster: nopBroadcaster{},
	}
	sessions.OnAnswer(s.onAnswer)
	return s
}

// SetBroadcaster sets the WebSocket broadcaster
func (s *AssistService) SetBroadcaster(b Broadcaster) {
	s.broadcaster = b
}

// Close stops pending guidance requests
func (s *AssistService) Close() {
	s.debouncer.Stop()
}

// wantsGuidance limits guidance to free-text answers
func wantsGuidance(q *model.Question, prop model.Property) bool {
	if q == nil {
		return false
	}
	if q.Type != model.QuestionTypeLongText && q.Type != model.QuestionTypeShortText {
		return false
	}
	switch prop {
	case model.PropertyValue, model.PropertyRating, model.PropertyLength, model.PropertyEvidence:
		return true
	}
	return false
}

func (s *AssistService) onAnswer(sessionID string, q *model.Question, prop model.Property, _ model.AnswerRecord) {
	if !wantsGuidance(q, prop) {
		return
	}
	s.Schedule(sessionID, q.ID)
}

// Schedule restarts the debounce timer for one question
func (s *AssistService) Schedule(sessionID, questionID string) {
	s.debouncer.Trigger(sessionID+"/"+questionID, func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.config.Timeout()+5*time.Second)
		defer cancel()
		if err := s.Generate(ctx, sessionID, questionID); err != nil {
			s.log.Warn("guidance", zap.String("session", sessionID), zap.String("question", questionID), zap.Error(err))
		}
	})
}

// guidanceJob is the answer identity captured when a request is built
type guidanceJob struct {
	moduleID string
	locale   model.Locale
	question model.Question
	record   model.AnswerRecord
	prompt   string
}

// Generate requests guidance for the current state of one answer and
// applies it if the answer has not changed in the meantime
func (s *AssistService) Generate(ctx context.Context, sessionID, questionID string) error {
	var job guidanceJob
	err := s.sessions.View(ctx, sessionID, func(_ model.Session, store *form.Store) error {
		m := store.Module()
		q, ok := m.Question(questionID)
		if !ok {
			return fmt.Errorf("%w: %s", ErrUnknownQuestion, questionID)
		}
		rec, _ := store.Record(questionID)
		job = guidanceJob{
			moduleID: m.ID,
			locale:   store.Locale(),
			question: *q,
			record:   rec,
			prompt:   form.BuildGuidancePrompt(m, store.Locale(), q, rec),
		}
		return nil
	})
	if err != nil {
		return err
	}
	if job.record.Value.IsEmpty() {
		return nil
	}

	frag := s.guidance(ctx, sessionID, &job)

	applied, err := s.sessions.ApplyGuidance(ctx, sessionID, job.moduleID, job.locale, questionID, job.record.Revision, frag)
	if err != nil {
		return err
	}
	if !applied {
		s.log.Debug("stale guidance discarded",
			zap.String("session", sessionID),
			zap.String("question", questionID),
			zap.Int64("revision", job.record.Revision))
		return nil
	}

	s.broadcaster.BroadcastToSession(sessionID, MsgGuidanceReady, GuidanceReady{
		QuestionID: questionID,
		Revision:   job.record.Revision,
		Guidance:   frag,
	})
	return nil
}

func (s *AssistService) guidance(ctx context.Context, sessionID string, job *guidanceJob) *model.ReviewFragment {
	if !s.config.IsEnabled() {
		return s.mockGuidance(job)
	}

	if s.cache != nil {
		if cached, err := s.cache.GetGuidance(ctx, job.prompt); err == nil && cached != nil {
			return cached
		}
	}

	req := llm.Request{Model: s.config.Models.Guidance, Prompt: job.prompt}
	if att, ok := s.attachment(ctx, job.record.Evidence); ok {
		req.Attachments = append(req.Attachments, att)
	}

	text, err := s.gen.Generate(ctx, req)
	if err != nil {
		s.log.Warn("guidance request failed",
			zap.String("session", sessionID),
			zap.String("question", job.question.ID),
			zap.Error(err))
		return form.ErrorFragment(job.locale)
	}

	frag := form.NormalizeFragment(text)
	if s.cache != nil && frag.Raw == "" {
		if err := s.cache.SetGuidance(ctx, job.prompt, &frag); err != nil {
			s.log.Warn("cache guidance", zap.Error(err))
		}
	}
	return &frag
}

func (s *AssistService) attachment(ctx context.Context, ref *model.EvidenceRef) (llm.Attachment, bool) {
	if s.evidence == nil || ref == nil || ref.Size > maxInlineEvidence {
		return llm.Attachment{}, false
	}
	stored, data, err := s.evidence.Read(ctx, ref.FileID)
	if err != nil {
		s.log.Warn("read evidence for guidance", zap.String("file", ref.FileID), zap.Error(err))
		return llm.Attachment{}, false
	}
	return llm.Attachment{MIMEType: stored.MIMEType, Data: data}, true
}

type mockText struct {
	rationale string
	tips      []string
	ratingTip string // %s is the rating descriptor
}

var mockTexts = map[model.Locale]mockText{
	model.LocaleEnglish: {
		rationale: "Mock guidance based on answer length.",
		tips:      []string{"Describe what happens on a bad day.", "Say how often you need help and who gives it."},
		ratingTip: "Explain why this has %s on you.",
	},
	model.LocaleWelsh: {
		rationale: "Canllawiau enghreifftiol yn seiliedig ar hyd yr ateb.",
		tips:      []string{"Disgrifiwch beth sy'n digwydd ar ddiwrnod gwael.", "Dywedwch pa mor aml mae angen help arnoch a phwy sy'n ei roi."},
		ratingTip: "Esboniwch pam mae hyn yn cael %s arnoch chi.",
	},
	model.LocalePolish: {
		rationale: "Przykładowe wskazówki oparte na długości odpowiedzi.",
		tips:      []string{"Opisz, co dzieje się w gorszy dzień.", "Napisz, jak często potrzebujesz pomocy i kto jej udziela."},
		ratingTip: "Wyjaśnij, dlaczego ma to na Ciebie %s.",
	},
}

// mockGuidance is used when no API key is configured
func (s *AssistService) mockGuidance(job *guidanceJob) *model.ReviewFragment {
	answer := strings.TrimSpace(job.record.Value.String())
	words := len(strings.Fields(answer))
	score := words * 2
	if score > 100 {
		score = 100
	}

	text, ok := mockTexts[job.locale]
	if !ok {
		text = mockTexts[model.DefaultLocale]
	}
	tips := append([]string{}, text.tips...)
	if job.question.RatingEnabled {
		tips = append(tips, fmt.Sprintf(text.ratingTip, form.RatingDescriptor(job.locale, job.record.Rating)))
	}
	return &model.ReviewFragment{
		ImprovedAnswer: answer,
		Rationale:      text.rationale,
		Tips:           tips,
		Score:          score,
	}
}
