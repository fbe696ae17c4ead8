package template

import (
	"context"
	"database/sql"
	"errors"

	"gymsched/internal/api"
	"gymsched/internal/policy"
)

type Service interface {
	Create(ctx context.Context, actor policy.Actor, gymID int, req CreateTemplateRequest) (*Template, error)
	Get(ctx context.Context, actor policy.Actor, id int) (*Template, error)
	List(ctx context.Context, actor policy.Actor, gymID, page, limit int) ([]Template, int, error)
	Update(ctx context.Context, actor policy.Actor, id int, req UpdateTemplateRequest) (*Template, error)
	Delete(ctx context.Context, actor policy.Actor, id int) error
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) Create(ctx context.Context, actor policy.Actor, gymID int, req CreateTemplateRequest) (*Template, error) {
	if err := policy.Evaluate(actor, gymID, policy.ActionManageTemplates); err != nil {
		return nil, err
	}

	if len(req.CoachIDs) == 0 {
		return nil, api.Invalid("coaches_required", "coach_ids must not be empty")
	}
	if err := ValidateDays(req.Days); err != nil {
		return nil, err
	}

	return s.repo.Create(ctx, gymID, req.Name, req.Description, req.CoachIDs, req.Days)
}

func (s *service) Get(ctx context.Context, actor policy.Actor, id int) (*Template, error) {
	tmpl, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, api.NotFound("template_not_found", "template not found")
		}
		return nil, err
	}

	if err := policy.Evaluate(actor, tmpl.GymID, policy.ActionReadTemplates); err != nil {
		return nil, err
	}

	return tmpl, nil
}

func (s *service) List(ctx context.Context, actor policy.Actor, gymID, page, limit int) ([]Template, int, error) {
	if err := policy.Evaluate(actor, gymID, policy.ActionReadTemplates); err != nil {
		return nil, 0, err
	}

	total, err := s.repo.CountByGym(ctx, gymID)
	if err != nil {
		return nil, 0, err
	}

	templates, err := s.repo.List(ctx, gymID, limit, (page-1)*limit)
	if err != nil {
		return nil, 0, err
	}

	return templates, total, nil
}

func (s *service) Update(ctx context.Context, actor policy.Actor, id int, req UpdateTemplateRequest) (*Template, error) {
	existing, err := s.Get(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	if err := policy.Evaluate(actor, existing.GymID, policy.ActionManageTemplates); err != nil {
		return nil, err
	}

	if req.CoachIDs != nil && len(req.CoachIDs) == 0 {
		return nil, api.Invalid("coaches_required", "coach_ids must not be empty when provided")
	}
	if req.Days != nil {
		if len(req.Days) == 0 {
			return nil, api.Invalid("days_required", "days must not be empty when provided")
		}
		if err := ValidateDays(req.Days); err != nil {
			return nil, err
		}
	}

	tmpl, err := s.repo.Update(ctx, id, req.Name, req.Description, req.CoachIDs, req.Days)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, api.NotFound("template_not_found", "template not found")
		}
		return nil, err
	}

	return tmpl, nil
}

// Delete removes the template. Active schedules created from it are left
// alone; they hold a copy of its days, not a live reference.
func (s *service) Delete(ctx context.Context, actor policy.Actor, id int) error {
	existing, err := s.Get(ctx, actor, id)
	if err != nil {
		return err
	}

	if err := policy.Evaluate(actor, existing.GymID, policy.ActionManageTemplates); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, ErrTemplateNotFound) {
			return api.NotFound("template_not_found", "template not found")
		}
		return err
	}

	return nil
}
