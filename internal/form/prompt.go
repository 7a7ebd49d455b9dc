package form

import (
	"encoding/json"
	"fmt"
	"strings"

	"formassist/internal/model"
)

// categoryByModule routes modules to a review template; unlisted modules are generic
var categoryByModule = map[string]model.ModuleCategory{
	"pip": model.ModuleCategoryPIP,
}

// CategoryOf returns the prompt category for a module id
func CategoryOf(moduleID string) model.ModuleCategory {
	if c, ok := categoryByModule[moduleID]; ok {
		return c
	}
	return model.ModuleCategoryGeneric
}

var ratingDescriptors = map[model.Locale]map[int]string{
	model.LocaleEnglish: {
		1: "very low impact",
		2: "low impact",
		3: "moderate impact",
		4: "significant impact",
		5: "high impact",
		6: "maximum impact",
	},
	model.LocaleWelsh: {
		1: "effaith isel iawn",
		2: "effaith isel",
		3: "effaith gymedrol",
		4: "effaith sylweddol",
		5: "effaith uchel",
		6: "effaith fwyaf",
	},
	model.LocalePolish: {
		1: "bardzo mały wpływ",
		2: "mały wpływ",
		3: "umiarkowany wpływ",
		4: "znaczny wpływ",
		5: "duży wpływ",
		6: "maksymalny wpływ",
	},
}

var lengthDescriptors = map[model.Locale]map[int]string{
	model.LocaleEnglish: {
		1: "1-2 sentences",
		2: "a short paragraph",
		3: "a full paragraph",
		4: "a long paragraph",
	},
	model.LocaleWelsh: {
		1: "1-2 frawddeg",
		2: "paragraff byr",
		3: "paragraff llawn",
		4: "paragraff hir",
	},
	model.LocalePolish: {
		1: "1-2 zdania",
		2: "krótki akapit",
		3: "pełny akapit",
		4: "długi akapit",
	},
}

var unratedDescriptor = map[model.Locale]string{
	model.LocaleEnglish: "not rated",
	model.LocaleWelsh:   "heb ei raddio",
	model.LocalePolish:  "bez oceny",
}

// RatingDescriptor maps a rating code to its qualitative label
func RatingDescriptor(locale model.Locale, rating int) string {
	if d, ok := lookupDescriptor(ratingDescriptors, locale, rating); ok {
		return d
	}
	return localized(unratedDescriptor, locale)
}

// LengthDescriptor maps a length code to its qualitative label
func LengthDescriptor(locale model.Locale, length int) string {
	if d, ok := lookupDescriptor(lengthDescriptors, locale, length); ok {
		return d
	}
	d, _ := lookupDescriptor(lengthDescriptors, locale, model.LengthMin)
	return d
}

func lookupDescriptor(table map[model.Locale]map[int]string, locale model.Locale, n int) (string, bool) {
	byCode, ok := table[locale]
	if !ok {
		byCode = table[model.DefaultLocale]
	}
	d, ok := byCode[n]
	return d, ok
}

func localized[T any](table map[model.Locale]T, locale model.Locale) T {
	if v, ok := table[locale]; ok {
		return v
	}
	return table[model.DefaultLocale]
}

// snapshotAnswer is one visible question in the prompt's answer snapshot
type snapshotAnswer struct {
	QuestionID string            `json:"questionId"`
	Question   string            `json:"question"`
	Type       string            `json:"type"`
	Answer     string            `json:"answer"`
	Children   map[string]string `json:"children,omitempty"`
	Rating     string            `json:"rating,omitempty"`
	Length     string            `json:"length,omitempty"`
	Evidence   string            `json:"evidence,omitempty"`
}

func answerSnapshot(m *model.Module, locale model.Locale, store *Store) string {
	visible := VisibleQuestions(m, store)
	answers := make([]snapshotAnswer, 0, len(visible))
	for i := range visible {
		q := &visible[i]
		rec, _ := store.Record(q.ID)
		sa := snapshotAnswer{
			QuestionID: q.ID,
			Question:   q.Text.Get(locale),
			Type:       string(q.Type),
			Answer:     FormatValue(q, rec.Value, locale),
		}
		if q.Type == model.QuestionTypeGroup {
			sa.Children = make(map[string]string, len(q.Children))
			for j := range q.Children {
				child := &q.Children[j]
				v, _ := store.Value(child.ID)
				sa.Children[child.Text.Get(locale)] = FormatValue(child, v, locale)
			}
		}
		if q.RatingEnabled {
			sa.Rating = RatingDescriptor(locale, rec.Rating)
		}
		if q.LengthEnabled {
			sa.Length = LengthDescriptor(locale, rec.Length)
		}
		if rec.Evidence != nil {
			sa.Evidence = rec.Evidence.FileName
		}
		answers = append(answers, sa)
	}

	data, err := json.MarshalIndent(answers, "", "  ")
	if err != nil {
		return "[]"
	}
	return string(data)
}

var reviewTemplates = map[model.Locale]map[model.ModuleCategory]string{
	model.LocaleEnglish: {
		model.ModuleCategoryPIP: `You are an experienced welfare rights adviser reviewing a draft Personal Independence Payment (PIP) claim for "%s".
Assess each activity against the PIP descriptors. The rating next to an answer is how much the claimant says the condition affects that activity.
Score how well each answer explains difficulty, frequency, safety and need for help. Write all text in English.`,
		model.ModuleCategoryGeneric: `You are an experienced adviser reviewing a draft application for "%s".
Check each answer for completeness and consistency, list the supporting evidence that is missing, and give practical next steps.
Write all text in English.`,
	},
	model.LocaleWelsh: {
		model.ModuleCategoryPIP: `Rydych yn gynghorydd hawliau lles profiadol sy'n adolygu drafft o gais Taliad Annibyniaeth Personol (PIP) ar gyfer "%s".
Aseswch bob gweithgaredd yn erbyn disgrifyddion PIP. Mae'r sgôr wrth ymyl ateb yn dangos faint mae'r cyflwr yn effeithio ar y gweithgaredd.
Rhowch sgôr i ba mor dda mae pob ateb yn esbonio anhawster, amlder, diogelwch a'r angen am help. Ysgrifennwch bob testun yn Gymraeg.`,
		model.ModuleCategoryGeneric: `Rydych yn gynghorydd profiadol sy'n adolygu drafft o gais ar gyfer "%s".
Gwiriwch bob ateb am gyflawnder a chysondeb, rhestrwch y dystiolaeth ategol sydd ar goll, a rhowch gamau nesaf ymarferol.
Ysgrifennwch bob testun yn Gymraeg.`,
	},
	model.LocalePolish: {
		model.ModuleCategoryPIP: `Jesteś doświadczonym doradcą ds. świadczeń, który sprawdza wstępny wniosek o Personal Independence Payment (PIP) dla "%s".
Oceń każdą czynność według deskryptorów PIP. Ocena przy odpowiedzi pokazuje, jak bardzo schorzenie wpływa na daną czynność.
Oceń, jak dobrze każda odpowiedź opisuje trudności, częstotliwość, bezpieczeństwo i potrzebę pomocy. Cały tekst napisz po polsku.`,
		model.ModuleCategoryGeneric: `Jesteś doświadczonym doradcą, który sprawdza wstępny wniosek dla "%s".
Sprawdź kompletność i spójność każdej odpowiedzi, wypisz brakujące dowody i podaj praktyczne kolejne kroki.
Cały tekst napisz po polsku.`,
	},
}

const pipReviewSchema = `{
  "overallRating": 1 to 6,
  "scoreBreakdown": {"dailyLiving": 0-100, "mobility": 0-100, "clarity": 0-100, "evidence": 0-100},
  "summaryText": "short overall assessment",
  "findings": ["finding"],
  "missingEvidence": ["document or record that would support the claim"],
  "perQuestionImprovement": [{"questionId": "id", "before": "current answer", "after": "improved answer", "rationale": "why"}],
  "perQuestionScore": {"questionId": 0-100},
  "nextSteps": {"%[1]s": ["step"]},
  "disclaimer": {"%[1]s": "short disclaimer"}
}`

const genericReviewSchema = `{
  "overallRating": 1 to 6,
  "scoreBreakdown": {"completeness": 0-100, "consistency": 0-100, "evidence": 0-100},
  "summaryText": "short overall assessment",
  "findings": ["finding"],
  "missingEvidence": ["document that should be attached"],
  "perQuestionImprovement": [{"questionId": "id", "before": "current answer", "after": "improved answer", "rationale": "why"}],
  "perQuestionScore": {"questionId": 0-100},
  "nextSteps": {"%[1]s": ["step"]},
  "disclaimer": {"%[1]s": "short disclaimer"}
}`

// BuildReviewPrompt builds the whole-form review request for the visible
// answers in store
func BuildReviewPrompt(m *model.Module, locale model.Locale, store *Store) string {
	category := CategoryOf(m.ID)
	tpl := localized(reviewTemplates, locale)[category]
	schema := genericReviewSchema
	if category == model.ModuleCategoryPIP {
		schema = pipReviewSchema
	}

	var b strings.Builder
	fmt.Fprintf(&b, tpl, m.Title.Get(locale))
	b.WriteString("\n\nAnswers:\n")
	b.WriteString(answerSnapshot(m, locale, store))
	b.WriteString("\n\nReturn ONLY valid JSON matching this schema:\n")
	fmt.Fprintf(&b, schema, locale)
	return b.String()
}

var guidanceTemplates = map[model.Locale]string{
	model.LocaleEnglish: `You are helping someone answer one question on a "%s" form. Improve their draft answer without inventing facts.
Aim for %s. Write all text in English.`,
	model.LocaleWelsh: `Rydych yn helpu rhywun i ateb un cwestiwn ar ffurflen "%s". Gwellwch eu hateb drafft heb ddyfeisio ffeithiau.
Anelwch at %s. Ysgrifennwch bob testun yn Gymraeg.`,
	model.LocalePolish: `Pomagasz komuś odpowiedzieć na jedno pytanie w formularzu "%s". Popraw szkic odpowiedzi, nie wymyślając faktów.
Celuj w długość: %s. Cały tekst napisz po polsku.`,
}

const guidanceSchema = `{
  "improvedAnswer": "rewritten answer",
  "rationale": "what changed and why",
  "tips": ["tip"],
  "score": 0-100
}`

// BuildGuidancePrompt builds the per-question guidance request
func BuildGuidancePrompt(m *model.Module, locale model.Locale, q *model.Question, rec model.AnswerRecord) string {
	var b strings.Builder
	fmt.Fprintf(&b, localized(guidanceTemplates, locale),
		m.Title.Get(locale), LengthDescriptor(locale, rec.Length))

	fmt.Fprintf(&b, "\n\nQuestion: %s\n", q.Text.Get(locale))
	if desc := q.Description.Get(locale); desc != "" {
		fmt.Fprintf(&b, "Guidance notes: %s\n", desc)
	}
	if len(q.Options) > 0 {
		labels := make([]string, 0, len(q.Options))
		for _, o := range q.Options {
			labels = append(labels, o.Label.Get(locale))
		}
		fmt.Fprintf(&b, "Options: %s\n", strings.Join(labels, "; "))
	}
	fmt.Fprintf(&b, "Draft answer: %s\n", FormatValue(q, rec.Value, locale))
	if q.RatingEnabled {
		fmt.Fprintf(&b, "Self-rated impact: %s\n", RatingDescriptor(locale, rec.Rating))
	}
	if rec.Evidence != nil {
		fmt.Fprintf(&b, "Attached evidence: %s\n", rec.Evidence.FileName)
	}
	b.WriteString("\nReturn ONLY valid JSON matching this schema:\n")
	b.WriteString(guidanceSchema)
	return b.String()
}
