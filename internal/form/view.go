package form

import "formassist/internal/model"

// LocalizeModule renders m in one locale; missing translations fall back to English
func LocalizeModule(m *model.Module, locale model.Locale) model.ModuleView {
	return model.ModuleView{
		ID:        m.ID,
		Locale:    locale,
		Title:     m.Title.Get(locale),
		Intro:     m.Intro.Get(locale),
		Questions: localizeQuestions(m.Questions, locale),
	}
}

func localizeQuestions(qs []model.Question, locale model.Locale) []model.QuestionView {
	if len(qs) == 0 {
		return nil
	}
	out := make([]model.QuestionView, 0, len(qs))
	for i := range qs {
		q := &qs[i]
		v := model.QuestionView{
			ID:             q.ID,
			Type:           q.Type,
			Text:           q.Text.Get(locale),
			Description:    q.Description.Get(locale),
			VisibleWhen:    q.VisibleWhen,
			AllowsEvidence: q.AllowsEvidence,
			RatingEnabled:  q.RatingEnabled,
			LengthEnabled:  q.LengthEnabled,
			Children:       localizeQuestions(q.Children, locale),
		}
		for _, o := range q.Options {
			v.Options = append(v.Options, model.OptionView{
				Value: o.Value,
				Label: q.OptionLabel(o.Value, locale),
				Tip:   o.Tip.Get(locale),
			})
		}
		out = append(out, v)
	}
	return out
}
