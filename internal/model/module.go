package model

import "time"

// ModuleCategory selects the review prompt template for a module
type ModuleCategory string

const (
	ModuleCategoryPIP     ModuleCategory = "pip"     // Single-schema descriptor review
	ModuleCategoryGeneric ModuleCategory = "generic" // Evidence + next-steps review
)

// Module is one complete form definition with its ordered questions
type Module struct {
	ID        string        `json:"id" bson:"_id" yaml:"id"`
	Title     LocalizedText `json:"title" bson:"title" yaml:"title"`
	Intro     LocalizedText `json:"intro" bson:"intro" yaml:"intro"`
	Questions []Question    `json:"questions" bson:"questions" yaml:"questions"`
	UpdatedAt time.Time     `json:"updatedAt,omitempty" bson:"updatedAt,omitempty" yaml:"-"`
}

// Question finds a top-level question or a group child by id
func (m *Module) Question(id string) (*Question, bool) {
	for i := range m.Questions {
		if m.Questions[i].ID == id {
			return &m.Questions[i], true
		}
		for j := range m.Questions[i].Children {
			if m.Questions[i].Children[j].ID == id {
				return &m.Questions[i].Children[j], true
			}
		}
	}
	return nil, false
}

// ModuleSummary is the catalog listing entry
type ModuleSummary struct {
	ID            string `json:"id"`
	Title         string `json:"title"`
	Intro         string `json:"intro"`
	QuestionCount int    `json:"questionCount"`
}

// OptionView is an option rendered in one locale
type OptionView struct {
	Value string `json:"value"`
	Label string `json:"label"`
	Tip   string `json:"tip,omitempty"`
}

// QuestionView is a question rendered in one locale
type QuestionView struct {
	ID             string         `json:"id"`
	Type           QuestionType   `json:"type"`
	Text           string         `json:"text"`
	Description    string         `json:"description,omitempty"`
	Options        []OptionView   `json:"options,omitempty"`
	VisibleWhen    *Predicate     `json:"visibleWhen,omitempty"`
	AllowsEvidence bool           `json:"allowsEvidence"`
	RatingEnabled  bool           `json:"ratingEnabled"`
	LengthEnabled  bool           `json:"lengthEnabled"`
	Children       []QuestionView `json:"children,omitempty"`
}

// ModuleView is a module rendered in one locale, as served to clients
type ModuleView struct {
	ID        string         `json:"id"`
	Locale    Locale         `json:"locale"`
	Title     string         `json:"title"`
	Intro     string         `json:"intro"`
	Questions []QuestionView `json:"questions"`
}
