package form

import (
	"formassist/internal/model"

	"golang.org/x/text/language"
)

var (
	supportedTags = []language.Tag{language.BritishEnglish, welsh, language.Polish}
	matcher       = language.NewMatcher(supportedTags)
)

// MatchLocale picks the supported locale closest to a language tag or an
// Accept-Language header value. Unparseable input yields the default locale.
func MatchLocale(s string) model.Locale {
	if l, ok := model.ParseLocale(s); ok {
		return l
	}
	tags, _, err := language.ParseAcceptLanguage(s)
	if err != nil || len(tags) == 0 {
		return model.DefaultLocale
	}
	_, idx, conf := matcher.Match(tags...)
	if conf == language.No {
		return model.DefaultLocale
	}
	return model.Locales[idx]
}
