package form

import (
	"encoding/json"
	"strings"
	"testing"

	"formassist/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDescriptors(t *testing.T) {
	assert.Equal(t, "very low impact", RatingDescriptor(model.LocaleEnglish, 1))
	assert.Equal(t, "maximum impact", RatingDescriptor(model.LocaleEnglish, 6))
	assert.Equal(t, "not rated", RatingDescriptor(model.LocaleEnglish, 0))
	assert.Equal(t, "1-2 sentences", LengthDescriptor(model.LocaleEnglish, 1))
	assert.Equal(t, "a long paragraph", LengthDescriptor(model.LocaleEnglish, 4))
	assert.Equal(t, "1-2 sentences", LengthDescriptor(model.LocaleEnglish, 9))
	assert.Equal(t, "effaith uchel", RatingDescriptor(model.LocaleWelsh, 5))
	assert.Equal(t, "długi akapit", LengthDescriptor(model.LocalePolish, 4))
}

func TestCategoryOf(t *testing.T) {
	assert.Equal(t, model.ModuleCategoryPIP, CategoryOf("pip"))
	assert.Equal(t, model.ModuleCategoryGeneric, CategoryOf("uc"))
	assert.Equal(t, model.ModuleCategoryGeneric, CategoryOf("spouse_visa"))
}

func snapshotFrom(t *testing.T, prompt string) []snapshotAnswer {
	t.Helper()
	start := strings.Index(prompt, "Answers:\n")
	end := strings.Index(prompt, "\n\nReturn ONLY valid JSON")
	require.True(t, start >= 0 && end > start, "prompt has no answer snapshot")

	var answers []snapshotAnswer
	require.NoError(t, json.Unmarshal([]byte(prompt[start+len("Answers:\n"):end]), &answers))
	return answers
}

func TestBuildReviewPromptSnapshotsVisibleAnswers(t *testing.T) {
	s := filledStore(t)
	prompt := BuildReviewPrompt(s.Module(), model.LocaleEnglish, s)

	answers := snapshotFrom(t, prompt)
	byID := make(map[string]snapshotAnswer)
	for _, a := range answers {
		byID[a.QuestionID] = a
	}
	assert.Equal(t, "Option B", byID["kind"].Answer)
	assert.Equal(t, "high impact", byID["when_b"].Rating)
	assert.Equal(t, "1-2 sentences", byID["when_b"].Length)
	assert.Equal(t, "gp-letter.pdf", byID["later"].Evidence)
	assert.Equal(t, "2", byID["people"].Children["Adults"])
	assert.NotContains(t, byID, "forward")

	assert.Contains(t, prompt, `"Test"`)
	assert.Contains(t, prompt, "Write all text in English.")
	assert.Contains(t, prompt, `"nextSteps": {"en": ["step"]}`)
}

func TestBuildReviewPromptDispatch(t *testing.T) {
	pip := loadModule(t, "pip")
	uc := loadModule(t, "uc")

	pipPrompt := BuildReviewPrompt(pip, model.LocaleEnglish, NewStore(pip, model.LocaleEnglish))
	ucPrompt := BuildReviewPrompt(uc, model.LocaleEnglish, NewStore(uc, model.LocaleEnglish))
	assert.Contains(t, pipPrompt, "PIP descriptors")
	assert.Contains(t, pipPrompt, `"dailyLiving"`)
	assert.NotContains(t, ucPrompt, "PIP descriptors")
	assert.Contains(t, ucPrompt, `"completeness"`)

	cyPrompt := BuildReviewPrompt(uc, model.LocaleWelsh, NewStore(uc, model.LocaleWelsh))
	assert.Contains(t, cyPrompt, "Ysgrifennwch bob testun yn Gymraeg.")
	assert.NotEqual(t, ucPrompt, cyPrompt)
}

func TestBuildGuidancePrompt(t *testing.T) {
	s := filledStore(t)
	q, ok := s.Module().Question("when_b")
	require.True(t, ok)
	rec, _ := s.Record("when_b")

	prompt := BuildGuidancePrompt(s.Module(), model.LocaleEnglish, q, rec)
	assert.Contains(t, prompt, "Question: Because B")
	assert.Contains(t, prompt, "Draft answer: I need help on most days.")
	assert.Contains(t, prompt, "Self-rated impact: high impact")
	assert.Contains(t, prompt, "Aim for 1-2 sentences.")
	assert.Contains(t, prompt, `"improvedAnswer"`)
}
