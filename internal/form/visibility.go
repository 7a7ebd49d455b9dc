package form

import "formassist/internal/model"

// AnswerLookup gives predicate evaluation access to current answer values
type AnswerLookup interface {
	Value(questionID string) (model.AnswerValue, bool)
}

// AnswerMap is a plain AnswerLookup keyed by question id
type AnswerMap map[string]model.AnswerValue

// Value implements AnswerLookup
func (m AnswerMap) Value(questionID string) (model.AnswerValue, bool) {
	v, ok := m[questionID]
	return v, ok
}

// VisibleQuestions returns the top-level questions currently shown, in module
// order. A predicate is only evaluated against questions that come before it;
// unknown and forward dependencies never match.
func VisibleQuestions(m *model.Module, answers AnswerLookup) []model.Question {
	visible := make([]model.Question, 0, len(m.Questions))
	earlier := make(map[string]bool, len(m.Questions))
	for _, q := range m.Questions {
		if satisfied(q.VisibleWhen, earlier, answers) {
			visible = append(visible, q)
		}
		earlier[q.ID] = true
		for _, child := range q.Children {
			earlier[child.ID] = true
		}
	}
	return visible
}

// VisibleIDs returns the ids of VisibleQuestions
func VisibleIDs(m *model.Module, answers AnswerLookup) []string {
	qs := VisibleQuestions(m, answers)
	ids := make([]string, 0, len(qs))
	for _, q := range qs {
		ids = append(ids, q.ID)
	}
	return ids
}

// IsVisible reports whether a top-level question is currently shown
func IsVisible(m *model.Module, questionID string, answers AnswerLookup) bool {
	for _, id := range VisibleIDs(m, answers) {
		if id == questionID {
			return true
		}
	}
	return false
}

// VisibleChildren returns the children of a group; they are always shown
// together with their parent.
func VisibleChildren(q *model.Question) []model.Question {
	if q.Type != model.QuestionTypeGroup {
		return nil
	}
	return q.Children
}

func satisfied(p *model.Predicate, earlier map[string]bool, answers AnswerLookup) bool {
	if p == nil {
		return true
	}
	if !earlier[p.DependsOnQuestionID] {
		return false
	}
	v, ok := answers.Value(p.DependsOnQuestionID)
	if !ok || v.IsEmpty() {
		return false
	}
	return v.String() == p.RequiredValue
}
