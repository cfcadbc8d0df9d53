package i18n

import (
	"github.com/go-playground/locales/en"
	"github.com/go-playground/locales/es"
	"github.com/go-playground/locales/fr"
	ut "github.com/go-playground/universal-translator"
	"golang.org/x/text/language"
)

// UT holds a translator per supported site language. English is the fallback.
var UT = ut.New(en.New(), en.New(), fr.New(), es.New())

var matcher = language.NewMatcher([]language.Tag{
	language.English,
	language.French,
	language.Spanish,
})

// Match picks the supported language closest to an Accept-Language header value.
func Match(acceptLanguage string) string {
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return "en"
	}
	_, idx, _ := matcher.Match(tags...)
	switch idx {
	case 1:
		return "fr"
	case 2:
		return "es"
	default:
		return "en"
	}
}

func Translator(lang string) ut.Translator {
	trans, _ := UT.FindTranslator(lang)
	return trans
}
