package i18n

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMatch(t *testing.T) {
	tests := []struct {
		header string
		want   string
	}{
		{"fr-FR,fr;q=0.9,en;q=0.8", "fr"},
		{"es-MX", "es"},
		{"de-DE,de;q=0.9", "en"},
		{"", "en"},
		{"en-GB,en;q=0.9", "en"},
		{"de;q=0.9,es;q=0.8", "es"},
		{"!!invalid", "en"},
	}
	for _, tt := range tests {
		t.Run(tt.header, func(t *testing.T) {
			assert.Equal(t, tt.want, Match(tt.header))
		})
	}
}

func TestTranslatorFallsBackToEnglish(t *testing.T) {
	assert.Equal(t, "fr", Translator("fr").Locale())
	assert.Equal(t, "en", Translator("de").Locale())
}
