package model

// QuestionType defines how a question is answered and rendered
type QuestionType string

const (
	QuestionTypeLongText     QuestionType = "long-text"
	QuestionTypeShortText    QuestionType = "short-text"
	QuestionTypeSingleSelect QuestionType = "single-select"
	QuestionTypeMultiSelect  QuestionType = "multi-select"
	QuestionTypeFile         QuestionType = "file"
	QuestionTypeCurrency     QuestionType = "currency"
	QuestionTypeNumber       QuestionType = "number"
	QuestionTypeDate         QuestionType = "date"
	QuestionTypeGroup        QuestionType = "group" // Renders Children, value is a map keyed by child id
)

// QuestionTypes lists every supported question type
var QuestionTypes = []QuestionType{
	QuestionTypeLongText,
	QuestionTypeShortText,
	QuestionTypeSingleSelect,
	QuestionTypeMultiSelect,
	QuestionTypeFile,
	QuestionTypeCurrency,
	QuestionTypeNumber,
	QuestionTypeDate,
	QuestionTypeGroup,
}

// Valid reports whether t is one of the supported question types
func (t QuestionType) Valid() bool {
	for _, known := range QuestionTypes {
		if t == known {
			return true
		}
	}
	return false
}

// Option is one choice of a select question
type Option struct {
	Value string        `json:"value" bson:"value" yaml:"value"`
	Label LocalizedText `json:"label" bson:"label" yaml:"label"`
	Tip   LocalizedText `json:"tip,omitempty" bson:"tip,omitempty" yaml:"tip,omitempty"`
}

// Predicate gates a question on the answer of one earlier question
type Predicate struct {
	DependsOnQuestionID string `json:"dependsOnQuestionId" bson:"dependsOnQuestionId" yaml:"dependsOnQuestionId"`
	RequiredValue       string `json:"requiredValue" bson:"requiredValue" yaml:"requiredValue"`
}

// Question is a single form question definition
type Question struct {
	ID             string        `json:"id" bson:"id" yaml:"id"`
	Type           QuestionType  `json:"type" bson:"type" yaml:"type"`
	Text           LocalizedText `json:"text" bson:"text" yaml:"text"`
	Description    LocalizedText `json:"description,omitempty" bson:"description,omitempty" yaml:"description,omitempty"`
	Options        []Option      `json:"options,omitempty" bson:"options,omitempty" yaml:"options,omitempty"`
	VisibleWhen    *Predicate    `json:"visibleWhen,omitempty" bson:"visibleWhen,omitempty" yaml:"visibleWhen,omitempty"`
	AllowsEvidence bool          `json:"allowsEvidence" bson:"allowsEvidence" yaml:"allowsEvidence"`
	RatingEnabled  bool          `json:"ratingEnabled" bson:"ratingEnabled" yaml:"ratingEnabled"`
	LengthEnabled  bool          `json:"lengthEnabled" bson:"lengthEnabled" yaml:"lengthEnabled"`
	Children       []Question    `json:"children,omitempty" bson:"children,omitempty" yaml:"children,omitempty"`
}

// OptionLabel returns the localized label for an option value, or the value itself
func (q *Question) OptionLabel(value string, locale Locale) string {
	for _, o := range q.Options {
		if o.Value == value {
			if label := o.Label.Get(locale); label != "" {
				return label
			}
			return value
		}
	}
	return value
}
