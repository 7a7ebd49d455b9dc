package form

import (
	"testing"
	"time"

	"formassist/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func filledStore(t *testing.T) *Store {
	t.Helper()
	s := NewStore(testModule(), model.LocaleEnglish)
	_, err := s.SetValue("kind", model.ScalarValue("b"))
	require.NoError(t, err)
	_, err = s.SetValue("when_b", model.ScalarValue("I need help on most days."))
	require.NoError(t, err)
	_, err = s.SetRating("when_b", 5)
	require.NoError(t, err)
	_, err = s.SetValue("tags", model.ListValue("x", "y"))
	require.NoError(t, err)
	_, err = s.SetValue("adults", model.ScalarValue("2"))
	require.NoError(t, err)
	_, err = s.SetEvidence("later", &model.EvidenceRef{FileID: "abc", FileName: "gp-letter.pdf", MIMEType: "application/pdf", Size: 1024})
	require.NoError(t, err)
	return s
}

func TestStructuredExportRoundTrip(t *testing.T) {
	s := filledStore(t)
	m := s.Module()
	review := DefaultReview(m.ID, model.LocaleEnglish)

	data, err := MarshalDocument(BuildDocument(m, model.LocaleEnglish, s, &review))
	require.NoError(t, err)

	doc, err := ParseDocument(data)
	require.NoError(t, err)

	values := DocumentValues(doc)
	require.Len(t, values, len(m.Questions))
	for _, rec := range s.Records() {
		got, ok := values[rec.QuestionID]
		require.True(t, ok, "missing %s", rec.QuestionID)
		assert.True(t, rec.Value.Equal(got), "question %s: want %v got %v", rec.QuestionID, rec.Value, got)
	}

	require.NotNil(t, doc.Review)
	assert.Equal(t, review.SummaryText, doc.Review.SummaryText)
}

func TestStructuredExportReferencesEvidenceByName(t *testing.T) {
	s := filledStore(t)
	doc := BuildDocument(s.Module(), model.LocaleEnglish, s, nil)

	data, err := MarshalDocument(doc)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"evidenceFile": "gp-letter.pdf"`)
	assert.NotContains(t, string(data), "abc")
	assert.NotContains(t, string(data), `"review"`)
}

func TestStructuredExportMarksVisibility(t *testing.T) {
	s := NewStore(testModule(), model.LocaleEnglish)
	doc := BuildDocument(s.Module(), model.LocaleEnglish, s, nil)

	visible := make(map[string]bool)
	for _, a := range doc.Answers {
		visible[a.QuestionID] = a.Visible
	}
	assert.True(t, visible["kind"])
	assert.False(t, visible["when_b"])
}

func TestDocumentProgressRestores(t *testing.T) {
	s := filledStore(t)
	doc := BuildDocument(s.Module(), model.LocaleEnglish, s, nil)

	restored := NewStore(s.Module(), model.LocaleEnglish)
	restored.Restore(DocumentProgress(doc))

	rec, _ := restored.Record("when_b")
	assert.Equal(t, 5, rec.Rating)
	assert.Equal(t, "I need help on most days.", rec.Value.String())
}

func TestTranscript(t *testing.T) {
	s := filledStore(t)
	review := DefaultReview("test", model.LocaleEnglish)
	review.Findings = []string{"Good detail on daily needs."}

	out := Transcript(s.Module(), model.LocaleEnglish, s, &review)

	assert.Contains(t, out, "# Test")
	assert.Contains(t, out, "## 1. Kind")
	assert.Contains(t, out, "**Answer:** Option B")
	assert.Contains(t, out, "**Impact:** high impact")
	assert.Contains(t, out, "- Adults: 2")
	assert.Contains(t, out, "**Evidence:** gp-letter.pdf")
	assert.Contains(t, out, "Good detail on daily needs.")
	assert.Contains(t, out, review.Disclaimer[model.LocaleEnglish])
	assert.NotContains(t, out, "Forward")

	assert.Equal(t, out, Transcript(s.Module(), model.LocaleEnglish, s, &review))
}

func TestTranscriptWithoutReview(t *testing.T) {
	s := NewStore(testModule(), model.LocaleEnglish)
	out := Transcript(s.Module(), model.LocaleEnglish, s, nil)
	assert.Contains(t, out, "(no answer)")
	assert.NotContains(t, out, "## Review")
}

func TestFileName(t *testing.T) {
	ts := time.Date(2024, 3, 9, 14, 5, 7, 0, time.UTC)
	assert.Equal(t, "uc-20240309-140507.json", FileName("uc", model.ExportJSON, ts))
	assert.Equal(t, "uc-20240309-140507.md", FileName("uc", model.ExportTranscript, ts))
}
