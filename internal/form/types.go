package form

import (
	"strconv"
	"strings"

	"formassist/internal/model"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// typeHandler holds the per-variant behaviour of a question type
type typeHandler struct {
	defaultValue func() model.AnswerValue
	format       func(q *model.Question, v model.AnswerValue, locale model.Locale) string
}

var handlers map[model.QuestionType]typeHandler

// formatGroup formats children through FormatValue, so the table is filled
// in init rather than in its declaration
func init() {
	handlers = map[model.QuestionType]typeHandler{
		model.QuestionTypeLongText:     {defaultValue: emptyScalar, format: formatText},
		model.QuestionTypeShortText:    {defaultValue: emptyScalar, format: formatText},
		model.QuestionTypeDate:         {defaultValue: emptyScalar, format: formatText},
		model.QuestionTypeFile:         {defaultValue: emptyScalar, format: formatText},
		model.QuestionTypeNumber:       {defaultValue: emptyScalar, format: formatNumber},
		model.QuestionTypeCurrency:     {defaultValue: emptyScalar, format: formatCurrency},
		model.QuestionTypeSingleSelect: {defaultValue: emptyScalar, format: formatSingleSelect},
		model.QuestionTypeMultiSelect:  {defaultValue: emptyList, format: formatMultiSelect},
		model.QuestionTypeGroup:        {defaultValue: emptyMap, format: formatGroup},
	}
}

func handlerFor(t model.QuestionType) typeHandler {
	if h, ok := handlers[t]; ok {
		return h
	}
	return handlers[model.QuestionTypeShortText]
}

// DefaultValue returns the empty answer for a question's type
func DefaultValue(q *model.Question) model.AnswerValue {
	return handlerFor(q.Type).defaultValue()
}

// FormatValue renders an answer for people, in the given locale. Empty
// answers render as "".
func FormatValue(q *model.Question, v model.AnswerValue, locale model.Locale) string {
	if v.IsEmpty() {
		return ""
	}
	return handlerFor(q.Type).format(q, v, locale)
}

func emptyScalar() model.AnswerValue { return model.ScalarValue("") }
func emptyList() model.AnswerValue   { return model.ListValue() }
func emptyMap() model.AnswerValue    { return model.MapValue(nil) }

func formatText(_ *model.Question, v model.AnswerValue, _ model.Locale) string {
	return strings.TrimSpace(v.String())
}

func formatNumber(_ *model.Question, v model.AnswerValue, locale model.Locale) string {
	n, err := strconv.ParseFloat(strings.TrimSpace(v.String()), 64)
	if err != nil {
		return v.String()
	}
	p := printerFor(locale)
	if n == float64(int64(n)) {
		return p.Sprintf("%d", int64(n))
	}
	return p.Sprintf("%.2f", n)
}

func formatCurrency(_ *model.Question, v model.AnswerValue, locale model.Locale) string {
	raw := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(v.String()), "£"))
	n, err := strconv.ParseFloat(strings.ReplaceAll(raw, ",", ""), 64)
	if err != nil {
		return v.String()
	}
	return printerFor(locale).Sprintf("£%.2f", n)
}

func formatSingleSelect(q *model.Question, v model.AnswerValue, locale model.Locale) string {
	return q.OptionLabel(v.String(), locale)
}

func formatMultiSelect(q *model.Question, v model.AnswerValue, locale model.Locale) string {
	items := v.List
	if v.Kind != model.ValueList {
		items = strings.Split(v.String(), ",")
	}
	labels := make([]string, 0, len(items))
	for _, item := range items {
		labels = append(labels, q.OptionLabel(item, locale))
	}
	return strings.Join(labels, ", ")
}

func formatGroup(q *model.Question, v model.AnswerValue, locale model.Locale) string {
	if v.Kind != model.ValueMap {
		return v.String()
	}
	parts := make([]string, 0, len(q.Children))
	for i := range q.Children {
		child := &q.Children[i]
		raw, ok := v.Fields[child.ID]
		if !ok || raw == "" {
			continue
		}
		parts = append(parts, child.Text.Get(locale)+": "+FormatValue(child, model.ScalarValue(raw), locale))
	}
	return strings.Join(parts, "; ")
}

// x/text has no predefined Welsh tag
var welsh = language.MustParse("cy")

var localeTags = map[model.Locale]language.Tag{
	model.LocaleEnglish: language.BritishEnglish,
	model.LocaleWelsh:   welsh,
	model.LocalePolish:  language.Polish,
}

// Tag returns the language tag used for formatting in a locale
func Tag(locale model.Locale) language.Tag {
	if tag, ok := localeTags[locale]; ok {
		return tag
	}
	return language.BritishEnglish
}

func printerFor(locale model.Locale) *message.Printer {
	return message.NewPrinter(Tag(locale))
}
