package rtlify

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// RTLLanguages contains base language codes that use right-to-left text direction.
var RTLLanguages = map[string]bool{
	"ar": true, // Arabic
	"he": true, // Hebrew
	"fa": true, // Persian/Farsi
	"ur": true, // Urdu
	"ps": true, // Pashto
	"sd": true, // Sindhi
	"ug": true, // Uyghur
	"yi": true, // Yiddish
	"dv": true, // Dhivehi
	"ku": true, // Kurdish (Sorani script)
}

// GetLanguageName returns the English name for a language code.
// Falls back to the code itself if it cannot be parsed.
func GetLanguageName(langCode string) string {
	tag, err := language.Parse(ToHTMLLang(langCode))
	if err != nil {
		return langCode
	}
	if name := display.English.Tags().Name(tag); name != "" {
		return name
	}
	return langCode
}

// GetDirection returns "rtl" for right-to-left languages, "ltr" otherwise.
func GetDirection(langCode string) string {
	if RTLLanguages[baseLang(langCode)] {
		return "rtl"
	}
	return "ltr"
}

// IsRTL returns true if the language uses right-to-left text direction.
func IsRTL(langCode string) bool {
	return GetDirection(langCode) == "rtl"
}

// ToHTMLLang converts a locale code to a canonical BCP 47 tag for the HTML
// lang attribute (e.g., "es_ES" → "es-ES").
func ToHTMLLang(langCode string) string {
	dashed := strings.ReplaceAll(langCode, "_", "-")
	tag, err := language.Parse(dashed)
	if err != nil {
		return dashed
	}
	return tag.String()
}

// baseLang extracts the lower-case base language (e.g., "ar" from "ar_SA").
func baseLang(langCode string) string {
	if tag, err := language.Parse(ToHTMLLang(langCode)); err == nil {
		if base, conf := tag.Base(); conf != language.No {
			return base.String()
		}
	}
	base := strings.FieldsFunc(langCode, func(r rune) bool { return r == '_' || r == '-' })
	if len(base) == 0 {
		return ""
	}
	return strings.ToLower(base[0])
}
