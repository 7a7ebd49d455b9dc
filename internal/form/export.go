package form

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"formassist/internal/model"
)

// BuildDocument mirrors the full session state. Evidence is referenced by
// file name only.
func BuildDocument(m *model.Module, locale model.Locale, store *Store, review *model.ReviewRecord) model.ExportDocument {
	visible := make(map[string]bool)
	for _, id := range VisibleIDs(m, store) {
		visible[id] = true
	}

	doc := model.ExportDocument{
		ModuleID:    m.ID,
		ModuleTitle: m.Title.Get(locale),
		Locale:      locale,
		Answers:     make([]model.ExportAnswer, 0, len(m.Questions)),
		Review:      review,
	}
	for _, rec := range store.Records() {
		q, ok := m.Question(rec.QuestionID)
		if !ok {
			continue
		}
		ea := model.ExportAnswer{
			QuestionID: rec.QuestionID,
			Type:       string(q.Type),
			Question:   q.Text.Get(locale),
			Visible:    visible[rec.QuestionID],
			Value:      rec.Value,
			Rating:     rec.Rating,
			Length:     rec.Length,
		}
		if rec.Evidence != nil {
			ea.EvidenceFile = rec.Evidence.FileName
		}
		doc.Answers = append(doc.Answers, ea)
	}
	return doc
}

// MarshalDocument encodes a document as indented JSON
func MarshalDocument(doc model.ExportDocument) ([]byte, error) {
	return json.MarshalIndent(doc, "", "  ")
}

// ParseDocument decodes a structured export
func ParseDocument(data []byte) (model.ExportDocument, error) {
	var doc model.ExportDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return model.ExportDocument{}, fmt.Errorf("parse export: %w", err)
	}
	return doc, nil
}

// DocumentValues returns the question id to value mapping of a document
func DocumentValues(doc model.ExportDocument) map[string]model.AnswerValue {
	out := make(map[string]model.AnswerValue, len(doc.Answers))
	for _, a := range doc.Answers {
		out[a.QuestionID] = a.Value
	}
	return out
}

// DocumentProgress converts a document back into restorable progress entries
func DocumentProgress(doc model.ExportDocument) []model.ProgressEntry {
	out := make([]model.ProgressEntry, 0, len(doc.Answers))
	for _, a := range doc.Answers {
		out = append(out, model.ProgressEntry{
			QuestionID: a.QuestionID,
			Rating:     a.Rating,
			Length:     a.Length,
			Value:      a.Value,
		})
	}
	return out
}

type transcriptLabels struct {
	Answer, Rating, Length, Evidence, NoAnswer, Review, Overall, Findings, Missing, NextSteps string
}

var transcriptText = map[model.Locale]transcriptLabels{
	model.LocaleEnglish: {
		Answer: "Answer", Rating: "Impact", Length: "Length", Evidence: "Evidence",
		NoAnswer: "(no answer)", Review: "Review", Overall: "Overall rating",
		Findings: "Findings", Missing: "Missing evidence", NextSteps: "Next steps",
	},
	model.LocaleWelsh: {
		Answer: "Ateb", Rating: "Effaith", Length: "Hyd", Evidence: "Tystiolaeth",
		NoAnswer: "(dim ateb)", Review: "Adolygiad", Overall: "Sgôr gyffredinol",
		Findings: "Canfyddiadau", Missing: "Tystiolaeth ar goll", NextSteps: "Camau nesaf",
	},
	model.LocalePolish: {
		Answer: "Odpowiedź", Rating: "Wpływ", Length: "Długość", Evidence: "Dowód",
		NoAnswer: "(brak odpowiedzi)", Review: "Recenzja", Overall: "Ocena ogólna",
		Findings: "Ustalenia", Missing: "Brakujące dowody", NextSteps: "Kolejne kroki",
	},
}

// Transcript renders the visible questions and the review as a Markdown
// narrative in the given locale
func Transcript(m *model.Module, locale model.Locale, store *Store, review *model.ReviewRecord) string {
	l := localized(transcriptText, locale)
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", m.Title.Get(locale))
	if intro := m.Intro.Get(locale); intro != "" {
		fmt.Fprintf(&b, "%s\n\n", intro)
	}

	for i, q := range VisibleQuestions(m, store) {
		rec, _ := store.Record(q.ID)
		fmt.Fprintf(&b, "## %d. %s\n\n", i+1, q.Text.Get(locale))

		if q.Type == model.QuestionTypeGroup {
			for j := range q.Children {
				child := &q.Children[j]
				v, _ := store.Value(child.ID)
				fmt.Fprintf(&b, "- %s: %s\n", child.Text.Get(locale), orPlaceholder(FormatValue(child, v, locale), l.NoAnswer))
			}
			b.WriteString("\n")
		} else {
			fmt.Fprintf(&b, "**%s:** %s\n\n", l.Answer, orPlaceholder(FormatValue(&q, rec.Value, locale), l.NoAnswer))
		}
		if q.RatingEnabled {
			fmt.Fprintf(&b, "**%s:** %s\n\n", l.Rating, RatingDescriptor(locale, rec.Rating))
		}
		if q.LengthEnabled {
			fmt.Fprintf(&b, "**%s:** %s\n\n", l.Length, LengthDescriptor(locale, rec.Length))
		}
		if rec.Evidence != nil {
			fmt.Fprintf(&b, "**%s:** %s\n\n", l.Evidence, rec.Evidence.FileName)
		}
	}

	if review == nil {
		return b.String()
	}

	fmt.Fprintf(&b, "## %s\n\n", l.Review)
	fmt.Fprintf(&b, "**%s:** %d/%d\n\n", l.Overall, review.OverallRating, model.RatingMax)
	if review.SummaryText != "" {
		fmt.Fprintf(&b, "%s\n\n", review.SummaryText)
	}
	writeList(&b, l.Findings, review.Findings)
	writeList(&b, l.Missing, review.MissingEvidence)
	writeList(&b, l.NextSteps, review.NextSteps[locale])
	if d := review.Disclaimer[locale]; d != "" {
		fmt.Fprintf(&b, "_%s_\n", d)
	}
	return b.String()
}

func writeList(b *strings.Builder, heading string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(b, "### %s\n\n", heading)
	for _, item := range items {
		fmt.Fprintf(b, "- %s\n", item)
	}
	b.WriteString("\n")
}

func orPlaceholder(s, placeholder string) string {
	if s == "" {
		return placeholder
	}
	return s
}

// FileName returns the download name for an export taken at t
func FileName(moduleID string, format model.ExportFormat, t time.Time) string {
	return fmt.Sprintf("%s-%s.%s", moduleID, t.UTC().Format("20060102-150405"), format.Extension())
}
