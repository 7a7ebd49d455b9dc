package model

// Locale is one of the supported display and output languages
type Locale string

const (
	LocaleEnglish Locale = "en"
	LocaleWelsh   Locale = "cy"
	LocalePolish  Locale = "pl"
)

// DefaultLocale is used when no supported locale was requested
const DefaultLocale = LocaleEnglish

// Locales lists the supported locales in preference order
var Locales = []Locale{LocaleEnglish, LocaleWelsh, LocalePolish}

// ParseLocale returns the matching supported locale
func ParseLocale(s string) (Locale, bool) {
	for _, l := range Locales {
		if string(l) == s {
			return l, true
		}
	}
	return DefaultLocale, false
}

// LocalizedText holds one string per locale
type LocalizedText map[Locale]string

// Get returns the text for a locale, falling back to English
func (t LocalizedText) Get(locale Locale) string {
	if v, ok := t[locale]; ok && v != "" {
		return v
	}
	return t[DefaultLocale]
}
