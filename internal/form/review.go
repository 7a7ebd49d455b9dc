package form

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"formassist/internal/model"
)

var defaultSummaries = map[model.Locale]string{
	model.LocaleEnglish: "No review is available yet. Complete the visible questions and request a review.",
	model.LocaleWelsh:   "Nid oes adolygiad ar gael eto. Cwblhewch y cwestiynau gweladwy a gofynnwch am adolygiad.",
	model.LocalePolish:  "Recenzja nie jest jeszcze dostępna. Wypełnij widoczne pytania i poproś o recenzję.",
}

var defaultNextSteps = map[model.Locale][]string{
	model.LocaleEnglish: {"Check every answer is complete.", "Gather supporting documents.", "Request a review again."},
	model.LocaleWelsh:   {"Gwiriwch fod pob ateb yn gyflawn.", "Casglwch ddogfennau ategol.", "Gofynnwch am adolygiad eto."},
	model.LocalePolish:  {"Sprawdź, czy każda odpowiedź jest kompletna.", "Zbierz dokumenty potwierdzające.", "Poproś ponownie o recenzję."},
}

var defaultDisclaimers = map[model.Locale]string{
	model.LocaleEnglish: "This review is generated automatically and is not legal or financial advice.",
	model.LocaleWelsh:   "Cynhyrchir yr adolygiad hwn yn awtomatig ac nid yw'n gyngor cyfreithiol nac ariannol.",
	model.LocalePolish:  "Ta recenzja jest generowana automatycznie i nie stanowi porady prawnej ani finansowej.",
}

var guidanceErrors = map[model.Locale]string{
	model.LocaleEnglish: "Guidance is unavailable right now. Please try again later.",
	model.LocaleWelsh:   "Nid yw'r canllawiau ar gael ar hyn o bryd. Rhowch gynnig arall arni yn nes ymlaen.",
	model.LocalePolish:  "Wskazówki są teraz niedostępne. Spróbuj ponownie później.",
}

// DefaultReview returns the complete placeholder review. Each call returns
// fresh maps and slices.
func DefaultReview(moduleID string, locale model.Locale) model.ReviewRecord {
	steps := localized(defaultNextSteps, locale)
	return model.ReviewRecord{
		Locale:                 locale,
		ModuleID:               moduleID,
		OverallRating:          model.RatingMin,
		ScoreBreakdown:         map[string]int{},
		SummaryText:            localized(defaultSummaries, locale),
		Findings:               []string{},
		MissingEvidence:        []string{},
		PerQuestionImprovement: []model.Improvement{},
		PerQuestionScore:       map[string]int{},
		NextSteps:              map[model.Locale][]string{locale: append([]string{}, steps...)},
		Disclaimer:             map[model.Locale]string{locale: localized(defaultDisclaimers, locale)},
	}
}

// reviewField decodes one top-level key over the default record
type reviewField func(r *model.ReviewRecord, raw json.RawMessage) error

var reviewFields = map[string]reviewField{
	"overallRating": func(r *model.ReviewRecord, raw json.RawMessage) error {
		n, err := decodeInt(raw)
		if err != nil {
			return err
		}
		if n < model.RatingMin || n > model.RatingMax {
			return fmt.Errorf("%d outside %d..%d", n, model.RatingMin, model.RatingMax)
		}
		r.OverallRating = n
		return nil
	},
	"scoreBreakdown": func(r *model.ReviewRecord, raw json.RawMessage) error {
		m, err := decodeIntMap(raw)
		if err != nil {
			return err
		}
		r.ScoreBreakdown = m
		return nil
	},
	"summaryText": func(r *model.ReviewRecord, raw json.RawMessage) error {
		return json.Unmarshal(raw, &r.SummaryText)
	},
	"findings": func(r *model.ReviewRecord, raw json.RawMessage) error {
		list, err := decodeStrings(raw)
		if err != nil {
			return err
		}
		r.Findings = list
		return nil
	},
	"missingEvidence": func(r *model.ReviewRecord, raw json.RawMessage) error {
		list, err := decodeStrings(raw)
		if err != nil {
			return err
		}
		r.MissingEvidence = list
		return nil
	},
	"perQuestionImprovement": func(r *model.ReviewRecord, raw json.RawMessage) error {
		var list []model.Improvement
		if err := json.Unmarshal(raw, &list); err != nil {
			return err
		}
		if list == nil {
			list = []model.Improvement{}
		}
		r.PerQuestionImprovement = list
		return nil
	},
	"perQuestionScore": func(r *model.ReviewRecord, raw json.RawMessage) error {
		m, err := decodeIntMap(raw)
		if err != nil {
			return err
		}
		r.PerQuestionScore = m
		return nil
	},
	"nextSteps": func(r *model.ReviewRecord, raw json.RawMessage) error {
		var byLocale map[model.Locale][]string
		if err := json.Unmarshal(raw, &byLocale); err == nil {
			if byLocale == nil {
				byLocale = map[model.Locale][]string{}
			}
			r.NextSteps = byLocale
			return nil
		}
		list, err := decodeStrings(raw)
		if err != nil {
			return err
		}
		r.NextSteps = map[model.Locale][]string{r.Locale: list}
		return nil
	},
	"disclaimer": func(r *model.ReviewRecord, raw json.RawMessage) error {
		var byLocale map[model.Locale]string
		if err := json.Unmarshal(raw, &byLocale); err == nil {
			if byLocale == nil {
				byLocale = map[model.Locale]string{}
			}
			r.Disclaimer = byLocale
			return nil
		}
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return err
		}
		r.Disclaimer = map[model.Locale]string{r.Locale: s}
		return nil
	},
}

// NormalizeReview reconciles an untrusted generation response with the
// default review, key by key. Keys that are present replace the default
// wholesale; nested objects are not merged. It never fails: problems are
// returned as warnings.
func NormalizeReview(moduleID string, locale model.Locale, raw []byte) (model.ReviewRecord, []string) {
	review := DefaultReview(moduleID, locale)
	if raw == nil {
		return review, nil
	}

	var top map[string]json.RawMessage
	if err := json.Unmarshal([]byte(StripFences(string(raw))), &top); err != nil {
		return review, []string{fmt.Sprintf("review response is not a JSON object: %v", err)}
	}

	var warnings []string
	for _, key := range reviewFieldOrder {
		value, ok := top[key]
		if !ok || isNull(value) {
			continue
		}
		if err := reviewFields[key](&review, value); err != nil {
			// a failed decode may have written partially; restore the default field
			review = restoreField(review, key, DefaultReview(moduleID, locale))
			warnings = append(warnings, fmt.Sprintf("review field %q ignored: %v", key, err))
		}
	}
	return review, warnings
}

// reviewFieldOrder keeps warnings deterministic
var reviewFieldOrder = []string{
	"overallRating",
	"scoreBreakdown",
	"summaryText",
	"findings",
	"missingEvidence",
	"perQuestionImprovement",
	"perQuestionScore",
	"nextSteps",
	"disclaimer",
}

func restoreField(r model.ReviewRecord, key string, def model.ReviewRecord) model.ReviewRecord {
	switch key {
	case "overallRating":
		r.OverallRating = def.OverallRating
	case "scoreBreakdown":
		r.ScoreBreakdown = def.ScoreBreakdown
	case "summaryText":
		r.SummaryText = def.SummaryText
	case "findings":
		r.Findings = def.Findings
	case "missingEvidence":
		r.MissingEvidence = def.MissingEvidence
	case "perQuestionImprovement":
		r.PerQuestionImprovement = def.PerQuestionImprovement
	case "perQuestionScore":
		r.PerQuestionScore = def.PerQuestionScore
	case "nextSteps":
		r.NextSteps = def.NextSteps
	case "disclaimer":
		r.Disclaimer = def.Disclaimer
	}
	return r
}

// NormalizeFragment parses per-question guidance. Text that is not a JSON
// object is kept verbatim in Raw.
func NormalizeFragment(raw string) model.ReviewFragment {
	text := StripFences(raw)
	var payload struct {
		ImprovedAnswer string          `json:"improvedAnswer"`
		Rationale      string          `json:"rationale"`
		Tips           json.RawMessage `json:"tips"`
		Score          json.RawMessage `json:"score"`
	}
	if err := json.Unmarshal([]byte(text), &payload); err != nil {
		return model.ReviewFragment{Tips: []string{}, Raw: strings.TrimSpace(raw)}
	}

	frag := model.ReviewFragment{
		ImprovedAnswer: payload.ImprovedAnswer,
		Rationale:      payload.Rationale,
		Tips:           []string{},
	}
	if len(payload.Tips) > 0 && !isNull(payload.Tips) {
		if tips, err := decodeStrings(payload.Tips); err == nil {
			frag.Tips = tips
		}
	}
	if len(payload.Score) > 0 && !isNull(payload.Score) {
		if n, err := decodeInt(payload.Score); err == nil {
			frag.Score = n
		}
	}
	return frag
}

// ErrorFragment is the placeholder guidance attached after a failed call
func ErrorFragment(locale model.Locale) *model.ReviewFragment {
	return &model.ReviewFragment{Tips: []string{}, Error: localized(guidanceErrors, locale)}
}

// StripFences removes a surrounding markdown code fence from model output
func StripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	} else {
		s = strings.TrimPrefix(s, "json")
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

// decodeInt accepts integers and floats, rounding the latter
func decodeInt(raw json.RawMessage) (int, error) {
	var f float64
	if err := json.Unmarshal(raw, &f); err != nil {
		return 0, err
	}
	return int(math.Round(f)), nil
}

func decodeIntMap(raw json.RawMessage) (map[string]int, error) {
	var floats map[string]float64
	if err := json.Unmarshal(raw, &floats); err != nil {
		return nil, err
	}
	out := make(map[string]int, len(floats))
	for k, f := range floats {
		out[k] = int(math.Round(f))
	}
	return out, nil
}

// decodeStrings accepts only a list of strings; a bare string is rejected
// like any other mistyped field
func decodeStrings(raw json.RawMessage) ([]string, error) {
	var list []string
	if err := json.Unmarshal(raw, &list); err != nil {
		return nil, err
	}
	if list == nil {
		list = []string{}
	}
	return list, nil
}
