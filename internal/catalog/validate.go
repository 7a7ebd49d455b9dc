package catalog

import (
	"fmt"

	"formassist/internal/model"
)

// Problem is a catalog definition error found by Validate
type Problem struct {
	ModuleID   string
	QuestionID string
	Message    string
}

func (p Problem) String() string {
	if p.QuestionID == "" {
		return fmt.Sprintf("%s: %s", p.ModuleID, p.Message)
	}
	return fmt.Sprintf("%s/%s: %s", p.ModuleID, p.QuestionID, p.Message)
}

// Validate checks every module. Predicates that reference unknown or later
// questions are reported here; at runtime they simply never match.
func Validate(c *Catalog) []Problem {
	var problems []Problem
	for _, m := range c.List() {
		problems = append(problems, validateModule(m)...)
	}
	return problems
}

func validateModule(m *model.Module) []Problem {
	var problems []Problem
	report := func(qid, format string, args ...any) {
		problems = append(problems, Problem{ModuleID: m.ID, QuestionID: qid, Message: fmt.Sprintf(format, args...)})
	}

	if m.Title.Get(model.DefaultLocale) == "" {
		report("", "missing %s title", model.DefaultLocale)
	}

	seen := make(map[string]int) // question id -> top-level position
	for i, q := range m.Questions {
		if q.ID == "" {
			report("", "question %d has no id", i)
			continue
		}
		if _, dup := seen[q.ID]; dup {
			report(q.ID, "duplicate question id")
		}
		seen[q.ID] = i
		problems = append(problems, validateQuestion(m.ID, &q)...)

		for _, child := range q.Children {
			if _, dup := seen[child.ID]; dup {
				report(child.ID, "duplicate question id")
			}
			seen[child.ID] = i
			if child.Type == model.QuestionTypeGroup {
				report(child.ID, "nested groups are not supported")
			}
			if child.VisibleWhen != nil {
				report(child.ID, "group children cannot carry a visibility predicate")
			}
			problems = append(problems, validateQuestion(m.ID, &child)...)
		}
	}

	for i, q := range m.Questions {
		if q.VisibleWhen == nil {
			continue
		}
		dep := q.VisibleWhen.DependsOnQuestionID
		pos, ok := seen[dep]
		switch {
		case !ok:
			report(q.ID, "predicate references unknown question %q", dep)
		case dep == q.ID:
			report(q.ID, "predicate references itself")
		case pos >= i:
			report(q.ID, "predicate references later question %q", dep)
		}
	}
	return problems
}

func validateQuestion(moduleID string, q *model.Question) []Problem {
	var problems []Problem
	report := func(format string, args ...any) {
		problems = append(problems, Problem{ModuleID: moduleID, QuestionID: q.ID, Message: fmt.Sprintf(format, args...)})
	}

	if !q.Type.Valid() {
		report("unknown question type %q", q.Type)
	}
	if q.Text.Get(model.DefaultLocale) == "" {
		report("missing %s text", model.DefaultLocale)
	}
	switch q.Type {
	case model.QuestionTypeSingleSelect, model.QuestionTypeMultiSelect:
		if len(q.Options) == 0 {
			report("select question without options")
		}
	case model.QuestionTypeGroup:
		if len(q.Children) == 0 {
			report("group without children")
		}
	}
	if q.Type != model.QuestionTypeGroup && len(q.Children) > 0 {
		report("only group questions may have children")
	}
	return problems
}
