package service

import (
	"context"

	"properly.homes/backend/internal/model"
	"properly.homes/backend/internal/model/types"
	"properly.homes/backend/internal/pkg/moderation"
	"properly.homes/backend/internal/pkg/prerr"
	"properly.homes/backend/internal/repo"
)

type ModerationRule struct {
	Rules ModerationRuleStore
}

func NewModerationRule(rules *repo.ModerationRule) *ModerationRule {
	return &ModerationRule{
		Rules: rules,
	}
}

func (s *ModerationRule) List(ctx context.Context) ([]*model.ModerationRule, error) {
	return s.Rules.ListAll(ctx)
}

func compileRule(expression string) error {
	if _, err := moderation.Compile(expression); err != nil {
		return prerr.ErrInvalidReq.
			Msg("expression does not compile").
			WithExtras(prerr.Extras{"detail": err.Error()})
	}
	return nil
}

func (s *ModerationRule) Create(ctx context.Context, req *types.ModerationRuleRequest) (*model.ModerationRule, error) {
	if err := compileRule(req.Expression); err != nil {
		return nil, err
	}
	rule := &model.ModerationRule{
		Name:       req.Name,
		Expression: req.Expression,
		Action:     req.Action,
		Active:     req.Active == nil || *req.Active,
	}
	if err := s.Rules.Create(ctx, rule); err != nil {
		return nil, err
	}
	return rule, nil
}

func (s *ModerationRule) Update(ctx context.Context, ruleID int64, req *types.ModerationRuleRequest) (*model.ModerationRule, error) {
	rule, err := s.Rules.Get(ctx, ruleID)
	if err != nil {
		return nil, err
	}
	if err := compileRule(req.Expression); err != nil {
		return nil, err
	}
	rule.Name = req.Name
	rule.Expression = req.Expression
	rule.Action = req.Action
	if req.Active != nil {
		rule.Active = *req.Active
	}
	if err := s.Rules.Update(ctx, rule); err != nil {
		return nil, err
	}
	return rule, nil
}

func (s *ModerationRule) Delete(ctx context.Context, ruleID int64) error {
	return s.Rules.Delete(ctx, ruleID)
}
