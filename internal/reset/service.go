package reset

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"gymsched/internal/api"
	"gymsched/internal/logger"
	"gymsched/internal/metrics"
	"gymsched/internal/policy"
	"gymsched/internal/schedule"
	"gymsched/internal/template"
)

// Summary reports one reset run. Per-item failures are accumulated here so a
// batch always completes; a broken template never aborts the other gyms.
type Summary struct {
	ResetCount  int      `json:"reset_count"`
	FailedCount int      `json:"failed_count"`
	Errors      []string `json:"errors"`
}

type Service interface {
	ResetByID(ctx context.Context, actor policy.Actor, scheduleID int) (*Summary, error)
	ResetByGym(ctx context.Context, actor policy.Actor, gymID int) (*Summary, error)
	ResetAll(ctx context.Context) (*Summary, error)

	// RunScheduled is the weekly cron entrypoint. It takes a distributed lock
	// first so only one instance runs the global reset; a nil summary means
	// another instance holds the lock.
	RunScheduled(ctx context.Context) (*Summary, error)
}

type service struct {
	schedules   schedule.Repository
	templates   template.Repository
	lock        *CronLock
	itemTimeout time.Duration
}

func NewService(schedules schedule.Repository, templates template.Repository, lock *CronLock, itemTimeout time.Duration) Service {
	return &service{
		schedules:   schedules,
		templates:   templates,
		lock:        lock,
		itemTimeout: itemTimeout,
	}
}

func (s *service) ResetByID(ctx context.Context, actor policy.Actor, scheduleID int) (*Summary, error) {
	ref, err := s.schedules.GetRef(ctx, scheduleID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, api.NotFound("schedule_not_found", "active schedule not found")
		}
		return nil, err
	}

	if err := policy.Evaluate(actor, ref.GymID, policy.ActionManageSchedule); err != nil {
		return nil, err
	}

	summary := &Summary{Errors: []string{}}
	s.resetOne(ctx, *ref, summary)
	return summary, nil
}

func (s *service) ResetByGym(ctx context.Context, actor policy.Actor, gymID int) (*Summary, error) {
	if err := policy.Evaluate(actor, gymID, policy.ActionManageSchedule); err != nil {
		return nil, err
	}

	refs, err := s.schedules.ListRefsByGym(ctx, gymID)
	if err != nil {
		return nil, err
	}

	return s.resetBatch(ctx, refs), nil
}

func (s *service) ResetAll(ctx context.Context) (*Summary, error) {
	refs, err := s.schedules.ListRefs(ctx)
	if err != nil {
		return nil, err
	}

	logger.Info("running global schedule reset", "schedules", len(refs))
	return s.resetBatch(ctx, refs), nil
}

func (s *service) RunScheduled(ctx context.Context) (*Summary, error) {
	acquired, err := s.lock.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	if !acquired {
		logger.Info("global reset skipped, lock held by another instance")
		return nil, nil
	}
	defer s.lock.Release(ctx)

	return s.ResetAll(ctx)
}

func (s *service) resetBatch(ctx context.Context, refs []schedule.Ref) *Summary {
	summary := &Summary{Errors: []string{}}
	for _, ref := range refs {
		s.resetOne(ctx, ref, summary)
	}
	return summary
}

// resetOne re-materializes one schedule from its template under a per-item
// timeout, recording the outcome instead of propagating it.
func (s *service) resetOne(ctx context.Context, ref schedule.Ref, summary *Summary) {
	itemCtx, cancel := context.WithTimeout(ctx, s.itemTimeout)
	defer cancel()

	tmpl, err := s.templates.GetByID(itemCtx, ref.TemplateID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			s.recordFailure(summary, fmt.Sprintf("schedule %d (gym %d): template %d no longer exists", ref.ID, ref.GymID, ref.TemplateID))
		} else {
			s.recordFailure(summary, fmt.Sprintf("schedule %d (gym %d): loading template %d: %v", ref.ID, ref.GymID, ref.TemplateID, err))
		}
		return
	}

	if err := s.schedules.Reset(itemCtx, ref.ID, tmpl.Days); err != nil {
		s.recordFailure(summary, fmt.Sprintf("schedule %d (gym %d): %v", ref.ID, ref.GymID, err))
		return
	}

	summary.ResetCount++
	metrics.RecordReset("ok")
}

func (s *service) recordFailure(summary *Summary, msg string) {
	summary.FailedCount++
	summary.Errors = append(summary.Errors, msg)
	metrics.RecordReset("failed")
	logger.Error("schedule reset failed", "reason", msg)
}
