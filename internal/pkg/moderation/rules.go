// Package moderation evaluates admin-defined rules against listings before they go live.
package moderation

import (
	"strings"
	"time"

	"github.com/antonmedv/expr"
	"github.com/antonmedv/expr/vm"
	"github.com/patrickmn/go-cache"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"properly.homes/backend/internal/constant"
	"properly.homes/backend/internal/model"
)

// Env is what a rule expression can see of a listing.
type Env struct {
	Title        string   `expr:"title"`
	Description  string   `expr:"description"`
	ListingType  string   `expr:"listingType"`
	PropertyType string   `expr:"propertyType"`
	Price        float64  `expr:"price"`
	Currency     string   `expr:"currency"`
	Bedrooms     int      `expr:"bedrooms"`
	Bathrooms    int      `expr:"bathrooms"`
	AreaSqm      int      `expr:"areaSqm"`
	CountryID    int64    `expr:"countryId"`
	CityID       int64    `expr:"cityId"`
	Amenities    []string `expr:"amenities"`
	Featured     bool     `expr:"featured"`
	ImageCount   int      `expr:"imageCount"`
}

// Mentions reports whether the title or description contains any of words, case-insensitively.
func (e Env) Mentions(words ...string) bool {
	text := strings.ToLower(e.Title + "\n" + e.Description)
	for _, w := range words {
		if w != "" && strings.Contains(text, strings.ToLower(w)) {
			return true
		}
	}
	return false
}

func EnvOf(p *model.Property) Env {
	return Env{
		Title:        p.Title,
		Description:  p.Description,
		ListingType:  p.ListingType,
		PropertyType: p.PropertyType,
		Price:        float64(p.PriceCents) / 100,
		Currency:     p.Currency,
		Bedrooms:     p.Bedrooms,
		Bathrooms:    p.Bathrooms,
		AreaSqm:      p.AreaSqm,
		CountryID:    p.CountryID,
		CityID:       p.CityID,
		Amenities:    p.Amenities,
		Featured:     p.Featured,
		ImageCount:   len(p.Images),
	}
}

// Compile checks that an expression is a valid boolean rule.
func Compile(expression string) (*vm.Program, error) {
	program, err := expr.Compile(expression, expr.Env(Env{}), expr.AsBool())
	if err != nil {
		return nil, errors.Wrap(err, "compile moderation rule")
	}
	return program, nil
}

// Verdict is the outcome of evaluating every rule against a listing.
type Verdict struct {
	// Action is empty when no rule matched.
	Action string
	Rule   *model.ModerationRule
}

func (v Verdict) Rejected() bool {
	return v.Action == constant.ModerationActionReject
}

func (v Verdict) Held() bool {
	return v.Action == constant.ModerationActionHold
}

// programTTL evicts programs of rules that were edited or deleted.
const programTTL = time.Hour

// Evaluator caches compiled programs keyed by expression text.
type Evaluator struct {
	programs *cache.Cache
}

func NewEvaluator() *Evaluator {
	return &Evaluator{programs: cache.New(programTTL, 2*programTTL)}
}

func (e *Evaluator) program(expression string) (*vm.Program, error) {
	if p, ok := e.programs.Get(expression); ok {
		return p.(*vm.Program), nil
	}

	p, err := Compile(expression)
	if err != nil {
		return nil, err
	}
	e.programs.SetDefault(expression, p)
	return p, nil
}

// Evaluate runs the active rules in order. A reject match wins immediately, otherwise the first hold match is kept.
// Rules that fail to compile or run are skipped.
func (e *Evaluator) Evaluate(rules []*model.ModerationRule, listing *model.Property) Verdict {
	env := EnvOf(listing)
	var verdict Verdict
	for _, rule := range rules {
		if !rule.Active {
			continue
		}
		program, err := e.program(rule.Expression)
		if err != nil {
			log.Warn().Err(err).Int64("ruleId", rule.RuleID).Str("evt.name", "moderation.rule.invalid").Msg("skipping moderation rule")
			continue
		}
		out, err := expr.Run(program, env)
		if err != nil {
			log.Warn().Err(err).Int64("ruleId", rule.RuleID).Str("evt.name", "moderation.rule.failed").Msg("skipping moderation rule")
			continue
		}
		if matched, _ := out.(bool); !matched {
			continue
		}
		switch rule.Action {
		case constant.ModerationActionReject:
			return Verdict{Action: rule.Action, Rule: rule}
		case constant.ModerationActionHold:
			if verdict.Action == "" {
				verdict = Verdict{Action: rule.Action, Rule: rule}
			}
		}
	}
	return verdict
}
