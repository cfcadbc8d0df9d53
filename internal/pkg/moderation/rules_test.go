package moderation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"properly.homes/backend/internal/constant"
	"properly.homes/backend/internal/model"
)

func listing() *model.Property {
	return &model.Property{
		Title:        "Sea view villa in Cap d'Antibes",
		Description:  "Five bedroom villa with infinity pool and private access to the beach.",
		ListingType:  constant.ListingTypeSale,
		PropertyType: "villa",
		PriceCents:   1250000000,
		Currency:     "eur",
		Bedrooms:     5,
		CountryID:    1,
	}
}

func TestCompile(t *testing.T) {
	_, err := Compile(`price < 1000 && listingType == "sale"`)
	assert.NoError(t, err)

	_, err = Compile(`price +`)
	assert.Error(t, err)

	_, err = Compile(`price`)
	assert.Error(t, err, "non boolean expressions are rejected")

	_, err = Compile(`unknownField > 1`)
	assert.Error(t, err)
}

func TestEvaluate(t *testing.T) {
	reject := &model.ModerationRule{RuleID: 1, Name: "suspicious price", Expression: `listingType == "sale" && price < 10000`, Action: constant.ModerationActionReject, Active: true}
	hold := &model.ModerationRule{RuleID: 2, Name: "big ticket", Expression: `price > 10000000`, Action: constant.ModerationActionHold, Active: true}
	words := &model.ModerationRule{RuleID: 3, Name: "off-platform contact", Expression: `Mentions("whatsapp", "telegram")`, Action: constant.ModerationActionHold, Active: true}
	broken := &model.ModerationRule{RuleID: 4, Name: "broken", Expression: `price +`, Action: constant.ModerationActionReject, Active: true}

	e := NewEvaluator()

	t.Run("no match", func(t *testing.T) {
		v := e.Evaluate([]*model.ModerationRule{reject, words, broken}, listing())
		assert.Empty(t, v.Action)
		assert.False(t, v.Rejected())
		assert.False(t, v.Held())
	})

	t.Run("hold", func(t *testing.T) {
		v := e.Evaluate([]*model.ModerationRule{hold, reject}, listing())
		require.True(t, v.Held())
		assert.Equal(t, "big ticket", v.Rule.Name)
	})

	t.Run("reject wins over hold", func(t *testing.T) {
		cheap := listing()
		cheap.PriceCents = 50000
		cheap.Description += " Contact me on WhatsApp."
		v := e.Evaluate([]*model.ModerationRule{words, reject}, cheap)
		require.True(t, v.Rejected())
		assert.Equal(t, "suspicious price", v.Rule.Name)
	})

	t.Run("inactive rules are ignored", func(t *testing.T) {
		off := *hold
		off.Active = false
		v := e.Evaluate([]*model.ModerationRule{&off}, listing())
		assert.Empty(t, v.Action)
	})
}

func TestEvaluatorCachesCompiledPrograms(t *testing.T) {
	e := NewEvaluator()
	rule := &model.ModerationRule{RuleID: 1, Name: "big ticket", Expression: `price > 10000000`, Action: constant.ModerationActionHold, Active: true}

	e.Evaluate([]*model.ModerationRule{rule, rule}, listing())
	assert.Equal(t, 1, e.programs.ItemCount())

	first, err := e.program(rule.Expression)
	require.NoError(t, err)
	second, err := e.program(rule.Expression)
	require.NoError(t, err)
	assert.Same(t, first, second)

	_, err = e.program(`price +`)
	assert.Error(t, err)
	assert.Equal(t, 1, e.programs.ItemCount())
}
