package form

import (
	"testing"

	"formassist/internal/model"

	"github.com/stretchr/testify/assert"
)

func TestMatchLocale(t *testing.T) {
	tests := map[string]model.Locale{
		"":                        model.LocaleEnglish,
		"cy":                      model.LocaleWelsh,
		"pl":                      model.LocalePolish,
		"en-US":                   model.LocaleEnglish,
		"cy-GB":                   model.LocaleWelsh,
		"pl-PL,pl;q=0.9,en;q=0.8": model.LocalePolish,
		"de-DE,cy;q=0.7":          model.LocaleWelsh,
		"ja":                      model.LocaleEnglish,
		"!!not a tag!!":           model.LocaleEnglish,
	}
	for in, want := range tests {
		assert.Equal(t, want, MatchLocale(in), "MatchLocale(%q)", in)
	}
}
