package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"formassist/internal/llm"
	"formassist/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

const fragmentJSON = `{"improvedAnswer":"better","rationale":"clearer","tips":["add dates"],"score":70}`

type fakeGuidanceCache struct {
	mu      sync.Mutex
	entries map[string]model.ReviewFragment
}

func (c *fakeGuidanceCache) SetGuidance(_ context.Context, prompt string, frag *model.ReviewFragment) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[prompt] = *frag
	return nil
}

func (c *fakeGuidanceCache) GetGuidance(_ context.Context, prompt string) (*model.ReviewFragment, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	frag, ok := c.entries[prompt]
	if !ok {
		return nil, nil
	}
	return &frag, nil
}

func newAssist(t *testing.T, h *harness, ai bool, gen *fakeGenerator, debounce time.Duration) (*AssistService, *recordingBroadcaster) {
	t.Helper()
	aiConfig := disabledAI()
	if ai {
		aiConfig = enabledAI()
	}
	s := NewAssistService(aiConfig, gen, h.sessions, nil, h.evidence, debounce, zaptest.NewLogger(t))
	b := newRecordingBroadcaster()
	s.SetBroadcaster(b)
	t.Cleanup(s.Close)
	return s, b
}

func guidanceOf(t *testing.T, h *harness, sessionID, questionID string) *model.ReviewFragment {
	t.Helper()
	state, err := h.sessions.State(context.Background(), sessionID)
	require.NoError(t, err)
	for _, rec := range state.Records {
		if rec.QuestionID == questionID {
			return rec.Guidance
		}
	}
	t.Fatalf("no record for %s", questionID)
	return nil
}

func TestRapidEditsProduceOneGuidanceRequest(t *testing.T) {
	h := newHarness(t)
	gen := &fakeGenerator{respond: func(llm.Request) (string, error) { return fragmentJSON, nil }}
	_, b := newAssist(t, h, true, gen, 200*time.Millisecond)
	id := h.create(t, "pip", "en")

	setValue(t, h.sessions, id, "preparing_food", `"first draft"`)
	setValue(t, h.sessions, id, "preparing_food", `"second draft"`)
	update := setValue(t, h.sessions, id, "preparing_food", `"third draft"`)

	msg := b.next(t)
	assert.Equal(t, id, msg.sessionID)
	assert.Equal(t, MsgGuidanceReady, msg.msgType)
	ready, ok := msg.payload.(GuidanceReady)
	require.True(t, ok)
	assert.Equal(t, "preparing_food", ready.QuestionID)
	assert.Equal(t, update.Record.Revision, ready.Revision)
	assert.Equal(t, "better", ready.Guidance.ImprovedAnswer)

	time.Sleep(300 * time.Millisecond)
	calls := gen.calls()
	require.Len(t, calls, 1)
	assert.Contains(t, calls[0].Prompt, "third draft")
	assert.NotContains(t, calls[0].Prompt, "second draft")
	assert.Equal(t, "guidance-model", calls[0].Model)

	g := guidanceOf(t, h, id, "preparing_food")
	require.NotNil(t, g)
	assert.Equal(t, 70, g.Score)
}

func TestNonTextAnswersAreNotScheduled(t *testing.T) {
	h := newHarness(t)
	gen := &fakeGenerator{respond: func(llm.Request) (string, error) { return fragmentJSON, nil }}
	s, _ := newAssist(t, h, true, gen, time.Hour)
	id := h.create(t, "pip", "en")

	setValue(t, h.sessions, id, "has_evidence", `"yes"`)
	assert.Equal(t, 0, s.debouncer.Pending())

	setValue(t, h.sessions, id, "moving_around", `"20 metres"`)
	assert.Equal(t, 1, s.debouncer.Pending())
}

func TestStaleGuidanceIsDiscarded(t *testing.T) {
	h := newHarness(t)
	started := make(chan struct{})
	release := make(chan struct{})
	gen := &fakeGenerator{respond: func(llm.Request) (string, error) {
		close(started)
		<-release
		return fragmentJSON, nil
	}}
	s, b := newAssist(t, h, true, gen, time.Hour)
	id := h.create(t, "pip", "en")
	setValue(t, h.sessions, id, "preparing_food", `"old answer"`)

	done := make(chan error, 1)
	go func() { done <- s.Generate(context.Background(), id, "preparing_food") }()

	<-started
	setValue(t, h.sessions, id, "preparing_food", `"new answer"`)
	close(release)
	require.NoError(t, <-done)

	assert.Nil(t, guidanceOf(t, h, id, "preparing_food"))
	select {
	case msg := <-b.ch:
		t.Fatalf("unexpected broadcast %s", msg.msgType)
	default:
	}
}

func TestStaleGuidanceIsDiscardedAfterLocaleSwitch(t *testing.T) {
	h := newHarness(t)
	started := make(chan struct{})
	release := make(chan struct{})
	gen := &fakeGenerator{respond: func(llm.Request) (string, error) {
		close(started)
		<-release
		return fragmentJSON, nil
	}}
	s, b := newAssist(t, h, true, gen, time.Hour)
	id := h.create(t, "pip", "en")
	setValue(t, h.sessions, id, "preparing_food", `"old answer"`)

	done := make(chan error, 1)
	go func() { done <- s.Generate(context.Background(), id, "preparing_food") }()

	<-started
	_, err := h.sessions.SelectModule(context.Background(), id, &model.SelectModuleRequest{ModuleID: "pip", Lang: "cy"})
	require.NoError(t, err)
	setValue(t, h.sessions, id, "preparing_food", `"ateb newydd"`)
	close(release)
	require.NoError(t, <-done)

	assert.Nil(t, guidanceOf(t, h, id, "preparing_food"))
	select {
	case msg := <-b.ch:
		t.Fatalf("unexpected broadcast %s", msg.msgType)
	default:
	}
}

func TestGuidanceSkipsEmptyAnswers(t *testing.T) {
	h := newHarness(t)
	gen := &fakeGenerator{respond: func(llm.Request) (string, error) { return fragmentJSON, nil }}
	s, _ := newAssist(t, h, true, gen, time.Hour)
	id := h.create(t, "pip", "en")

	require.NoError(t, s.Generate(context.Background(), id, "preparing_food"))
	assert.Empty(t, gen.calls())

	err := s.Generate(context.Background(), id, "missing")
	assert.ErrorIs(t, err, ErrUnknownQuestion)
}

func TestMockGuidanceWithoutKey(t *testing.T) {
	h := newHarness(t)
	gen := &fakeGenerator{respond: func(llm.Request) (string, error) { return "", errors.New("must not be called") }}
	s, b := newAssist(t, h, false, gen, time.Hour)
	id := h.create(t, "pip", "en")
	setValue(t, h.sessions, id, "preparing_food", `"I need help to chop vegetables"`)

	require.NoError(t, s.Generate(context.Background(), id, "preparing_food"))
	assert.Empty(t, gen.calls())
	assert.Equal(t, MsgGuidanceReady, b.next(t).msgType)

	g := guidanceOf(t, h, id, "preparing_food")
	require.NotNil(t, g)
	assert.Equal(t, 12, g.Score)
	assert.Equal(t, "I need help to chop vegetables", g.ImprovedAnswer)
}

func TestMockGuidanceFollowsLocale(t *testing.T) {
	h := newHarness(t)
	gen := &fakeGenerator{respond: func(llm.Request) (string, error) { return "", errors.New("must not be called") }}
	s, _ := newAssist(t, h, false, gen, time.Hour)
	id := h.create(t, "pip", "cy")
	setValue(t, h.sessions, id, "preparing_food", `"Rwy'n defnyddio stôl"`)
	_, err := h.sessions.SetAnswer(context.Background(), id, "preparing_food", &model.SetAnswerRequest{Property: model.PropertyRating, Value: json.RawMessage(`4`)})
	require.NoError(t, err)

	require.NoError(t, s.Generate(context.Background(), id, "preparing_food"))
	g := guidanceOf(t, h, id, "preparing_food")
	require.NotNil(t, g)
	assert.Equal(t, "Canllawiau enghreifftiol yn seiliedig ar hyd yr ateb.", g.Rationale)
	require.Len(t, g.Tips, 3)
	assert.Equal(t, "Esboniwch pam mae hyn yn cael effaith sylweddol arnoch chi.", g.Tips[2])
}

func TestGuidanceFailureBecomesPlaceholder(t *testing.T) {
	h := newHarness(t)
	gen := &fakeGenerator{respond: func(llm.Request) (string, error) {
		return "", &llm.HTTPError{StatusCode: 503, Body: "unavailable"}
	}}
	s, _ := newAssist(t, h, true, gen, time.Hour)
	id := h.create(t, "pip", "pl")
	setValue(t, h.sessions, id, "preparing_food", `"odpowiedź"`)

	require.NoError(t, s.Generate(context.Background(), id, "preparing_food"))
	g := guidanceOf(t, h, id, "preparing_food")
	require.NotNil(t, g)
	assert.NotEmpty(t, g.Error)
	assert.Empty(t, g.Raw)
}

func TestGuidanceKeepsNonJSONText(t *testing.T) {
	h := newHarness(t)
	gen := &fakeGenerator{respond: func(llm.Request) (string, error) { return "  Mention how long it takes.  ", nil }}
	s, _ := newAssist(t, h, true, gen, time.Hour)
	id := h.create(t, "pip", "en")
	setValue(t, h.sessions, id, "preparing_food", `"answer"`)

	require.NoError(t, s.Generate(context.Background(), id, "preparing_food"))
	g := guidanceOf(t, h, id, "preparing_food")
	require.NotNil(t, g)
	assert.Equal(t, "Mention how long it takes.", g.Raw)
}

func TestGuidanceSendsEvidence(t *testing.T) {
	h := newHarness(t)
	gen := &fakeGenerator{respond: func(llm.Request) (string, error) { return fragmentJSON, nil }}
	s, _ := newAssist(t, h, true, gen, time.Hour)
	id := h.create(t, "pip", "en")
	setValue(t, h.sessions, id, "condition_summary", `"Asthma since 2010"`)
	_, err := h.sessions.AttachEvidence(context.Background(), id, "condition_summary", "letter.pdf", "application/pdf", strings.NewReader("%PDF"))
	require.NoError(t, err)

	require.NoError(t, s.Generate(context.Background(), id, "condition_summary"))
	calls := gen.calls()
	require.Len(t, calls, 1)
	require.Len(t, calls[0].Attachments, 1)
	assert.Equal(t, "application/pdf", calls[0].Attachments[0].MIMEType)
	assert.Equal(t, []byte("%PDF"), calls[0].Attachments[0].Data)
	assert.Contains(t, calls[0].Prompt, "letter.pdf")
}

func TestGuidanceCache(t *testing.T) {
	h := newHarness(t)
	gen := &fakeGenerator{respond: func(llm.Request) (string, error) { return fragmentJSON, nil }}
	guidanceCache := &fakeGuidanceCache{entries: make(map[string]model.ReviewFragment)}
	s := NewAssistService(enabledAI(), gen, h.sessions, guidanceCache, nil, time.Hour, zaptest.NewLogger(t))
	t.Cleanup(s.Close)
	id := h.create(t, "pip", "en")
	setValue(t, h.sessions, id, "preparing_food", `"same answer"`)

	ctx := context.Background()
	require.NoError(t, s.Generate(ctx, id, "preparing_food"))
	require.NoError(t, s.Generate(ctx, id, "preparing_food"))
	assert.Len(t, gen.calls(), 1)

	g := guidanceOf(t, h, id, "preparing_food")
	require.NotNil(t, g)
	assert.Equal(t, "better", g.ImprovedAnswer)
}

func TestRatingChangeReschedules(t *testing.T) {
	h := newHarness(t)
	gen := &fakeGenerator{respond: func(llm.Request) (string, error) { return fragmentJSON, nil }}
	s, _ := newAssist(t, h, true, gen, time.Hour)
	id := h.create(t, "pip", "en")

	_, err := h.sessions.SetAnswer(context.Background(), id, "washing_bathing", &model.SetAnswerRequest{
		Property: model.PropertyRating,
		Value:    json.RawMessage(`3`),
	})
	require.NoError(t, err)
	assert.Equal(t, 1, s.debouncer.Pending())
}
