package catalog

import (
	"testing"
	"testing/fstest"

	"formassist/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbedded(t *testing.T) {
	c, err := Embedded()
	require.NoError(t, err)

	ids := make([]string, 0, c.Len())
	for _, m := range c.List() {
		ids = append(ids, m.ID)
	}
	assert.Equal(t, []string{"pip", "spouse_visa", "uc"}, ids)

	uc, ok := c.Get("uc")
	require.True(t, ok)
	q, ok := uc.Question("household_children")
	require.True(t, ok)
	assert.Equal(t, model.QuestionTypeNumber, q.Type)

	for _, m := range c.List() {
		for _, l := range model.Locales {
			assert.NotEmpty(t, m.Title[l], "module %s missing %s title", m.ID, l)
		}
	}
}

func TestEmbeddedIsValid(t *testing.T) {
	c, err := Embedded()
	require.NoError(t, err)
	assert.Empty(t, Validate(c))
}

func TestLoadDefaultsIDToFileName(t *testing.T) {
	fsys := fstest.MapFS{
		"benefit.yaml": {Data: []byte("title:\n  en: Benefit\nquestions:\n  - id: a\n    type: short-text\n    text: {en: A}\n")},
		"notes.txt":    {Data: []byte("ignored")},
	}
	c, err := Load(fsys)
	require.NoError(t, err)
	require.Equal(t, 1, c.Len())

	m, ok := c.Get("benefit")
	require.True(t, ok)
	assert.Equal(t, "Benefit", m.Title.Get(model.LocaleWelsh))
}

func TestNewRejectsDuplicates(t *testing.T) {
	_, err := New(&model.Module{ID: "x"}, &model.Module{ID: "x"})
	assert.Error(t, err)
}

func TestValidateReportsBrokenPredicates(t *testing.T) {
	text := model.LocalizedText{model.LocaleEnglish: "q"}
	m := &model.Module{
		ID:    "broken",
		Title: text,
		Questions: []model.Question{
			{ID: "a", Type: model.QuestionTypeShortText, Text: text,
				VisibleWhen: &model.Predicate{DependsOnQuestionID: "b", RequiredValue: "x"}},
			{ID: "b", Type: model.QuestionTypeShortText, Text: text},
			{ID: "c", Type: model.QuestionTypeShortText, Text: text,
				VisibleWhen: &model.Predicate{DependsOnQuestionID: "missing", RequiredValue: "x"}},
			{ID: "d", Type: model.QuestionTypeSingleSelect, Text: text},
			{ID: "e", Type: "slider", Text: text},
		},
	}
	c, err := New(m)
	require.NoError(t, err)

	got := map[string]string{}
	for _, p := range Validate(c) {
		got[p.QuestionID] = p.Message
	}
	assert.Equal(t, `predicate references later question "b"`, got["a"])
	assert.Equal(t, `predicate references unknown question "missing"`, got["c"])
	assert.Equal(t, "select question without options", got["d"])
	assert.Equal(t, `unknown question type "slider"`, got["e"])
	assert.NotContains(t, got, "b")
}
