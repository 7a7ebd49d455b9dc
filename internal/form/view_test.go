package form

import (
	"testing"

	"formassist/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalizeModule(t *testing.T) {
	m := loadModule(t, "spouse_visa")

	view := LocalizeModule(m, model.LocaleWelsh)
	assert.Equal(t, "spouse_visa", view.ID)
	assert.Equal(t, "Fisa priod neu bartner", view.Title)
	require.Len(t, view.Questions, len(m.Questions))

	var income *model.QuestionView
	var accommodation *model.QuestionView
	for i := range view.Questions {
		switch view.Questions[i].ID {
		case "income_source":
			income = &view.Questions[i]
		case "accommodation":
			accommodation = &view.Questions[i]
		}
	}
	require.NotNil(t, income)
	require.Len(t, income.Options, 3)
	assert.Equal(t, "Hunangyflogaeth", income.Options[1].Label)
	assert.Empty(t, income.Options[0].Tip)
	assert.Equal(t, "Rhaid bod y cynilion wedi'u dal am o leiaf chwe mis.", income.Options[2].Tip)

	require.NotNil(t, accommodation)
	assert.Len(t, accommodation.Children, 3)
}
