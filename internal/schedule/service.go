package schedule

import (
	"context"
	"database/sql"
	"errors"

	"gymsched/internal/api"
	"gymsched/internal/metrics"
	"gymsched/internal/policy"
	"gymsched/internal/template"
)

type Service interface {
	CreateFromTemplate(ctx context.Context, actor policy.Actor, templateID int) (*ActiveSchedule, error)
	Get(ctx context.Context, actor policy.Actor, id int) (*ActiveSchedule, error)
	List(ctx context.Context, actor policy.Actor, page, limit int) ([]ActiveSchedule, int, error)
	Delete(ctx context.Context, actor policy.Actor, id int) error

	Join(ctx context.Context, actor policy.Actor, scheduleID, dayOfWeek, slotID int) (alreadyJoined bool, err error)
	Leave(ctx context.Context, actor policy.Actor, scheduleID, dayOfWeek, slotID int) error
	AssignStaff(ctx context.Context, actor policy.Actor, scheduleID int, coachID int64) (*ActiveSchedule, error)
	UnassignStaff(ctx context.Context, actor policy.Actor, scheduleID int, coachID int64) (*ActiveSchedule, error)

	Available(ctx context.Context, actor policy.Actor) ([]ScheduleView, error)
	MySchedule(ctx context.Context, actor policy.Actor) ([]MySlot, error)
}

type service struct {
	repo         Repository
	templateRepo template.Repository
}

func NewService(repo Repository, templateRepo template.Repository) Service {
	return &service{repo: repo, templateRepo: templateRepo}
}

// CreateFromTemplate materializes the gym's live schedule by deep-copying the
// template's days. Occupancy starts empty even if the template somehow carried
// assignment data.
func (s *service) CreateFromTemplate(ctx context.Context, actor policy.Actor, templateID int) (*ActiveSchedule, error) {
	tmpl, err := s.templateRepo.GetByID(ctx, templateID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, api.NotFound("template_not_found", "template not found")
		}
		return nil, err
	}

	if err := policy.Evaluate(actor, tmpl.GymID, policy.ActionManageSchedule); err != nil {
		return nil, err
	}

	sched, err := s.repo.Create(ctx, tmpl.GymID, tmpl.ID, tmpl.CoachIDs, tmpl.Days)
	if err != nil {
		if errors.Is(err, ErrDuplicateSchedule) {
			return nil, api.Conflict("schedule_exists", "gym already has an active schedule")
		}
		return nil, err
	}

	metrics.RecordScheduleCreated()
	return sched, nil
}

func (s *service) Get(ctx context.Context, actor policy.Actor, id int) (*ActiveSchedule, error) {
	sched, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, api.NotFound("schedule_not_found", "active schedule not found")
		}
		return nil, err
	}

	if err := policy.Evaluate(actor, sched.GymID, policy.ActionReadSchedule); err != nil {
		return nil, err
	}

	return sched, nil
}

func (s *service) List(ctx context.Context, actor policy.Actor, page, limit int) ([]ActiveSchedule, int, error) {
	if actor.Role == policy.RoleAdmin {
		total, err := s.repo.Count(ctx)
		if err != nil {
			return nil, 0, err
		}
		schedules, err := s.repo.List(ctx, limit, (page-1)*limit)
		if err != nil {
			return nil, 0, err
		}
		return schedules, total, nil
	}

	if !actor.IsStaff() {
		return nil, 0, api.Forbidden("forbidden", "insufficient permissions")
	}

	sched, err := s.repo.GetByGym(ctx, actor.GymID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return []ActiveSchedule{}, 0, nil
		}
		return nil, 0, err
	}

	return []ActiveSchedule{*sched}, 1, nil
}

// Delete frees the gym to create a new active schedule from a template.
func (s *service) Delete(ctx context.Context, actor policy.Actor, id int) error {
	ref, err := s.getRef(ctx, id)
	if err != nil {
		return err
	}

	if err := policy.Evaluate(actor, ref.GymID, policy.ActionManageSchedule); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, ErrScheduleNotFound) {
			return api.NotFound("schedule_not_found", "active schedule not found")
		}
		return err
	}

	return nil
}

func (s *service) Join(ctx context.Context, actor policy.Actor, scheduleID, dayOfWeek, slotID int) (bool, error) {
	if dayOfWeek < 0 || dayOfWeek > 6 {
		return false, api.Invalid("invalid_day", "day_of_week must be between 0 (Sunday) and 6 (Saturday)")
	}

	ref, err := s.getRef(ctx, scheduleID)
	if err != nil {
		return false, err
	}

	if err := policy.Evaluate(actor, ref.GymID, policy.ActionJoinTimeslot); err != nil {
		return false, err
	}

	alreadyJoined, err := s.repo.JoinSlot(ctx, scheduleID, dayOfWeek, slotID, int64(actor.UserID))
	if err != nil {
		switch {
		case errors.Is(err, ErrSlotNotFound):
			metrics.RecordJoin("not_found")
			return false, api.NotFound("timeslot_not_found", "timeslot not found")
		case errors.Is(err, ErrTimeslotFull):
			metrics.RecordJoin("full")
			return false, api.Conflict("timeslot_full", "time slot is full")
		}
		return false, err
	}

	if alreadyJoined {
		metrics.RecordJoin("already_joined")
	} else {
		metrics.RecordJoin("joined")
	}
	return alreadyJoined, nil
}

func (s *service) Leave(ctx context.Context, actor policy.Actor, scheduleID, dayOfWeek, slotID int) error {
	if dayOfWeek < 0 || dayOfWeek > 6 {
		return api.Invalid("invalid_day", "day_of_week must be between 0 (Sunday) and 6 (Saturday)")
	}

	ref, err := s.getRef(ctx, scheduleID)
	if err != nil {
		return err
	}

	if err := policy.Evaluate(actor, ref.GymID, policy.ActionJoinTimeslot); err != nil {
		return err
	}

	if err := s.repo.LeaveSlot(ctx, scheduleID, dayOfWeek, slotID, int64(actor.UserID)); err != nil {
		if errors.Is(err, ErrSlotNotFound) {
			return api.NotFound("timeslot_not_found", "timeslot not found")
		}
		return err
	}

	metrics.RecordLeave()
	return nil
}

func (s *service) AssignStaff(ctx context.Context, actor policy.Actor, scheduleID int, coachID int64) (*ActiveSchedule, error) {
	ref, err := s.getRef(ctx, scheduleID)
	if err != nil {
		return nil, err
	}

	if err := policy.Evaluate(actor, ref.GymID, policy.ActionManageSchedule); err != nil {
		return nil, err
	}

	if err := s.repo.AssignCoach(ctx, scheduleID, coachID); err != nil {
		if errors.Is(err, ErrScheduleNotFound) {
			return nil, api.NotFound("schedule_not_found", "active schedule not found")
		}
		return nil, err
	}

	return s.repo.GetByID(ctx, scheduleID)
}

func (s *service) UnassignStaff(ctx context.Context, actor policy.Actor, scheduleID int, coachID int64) (*ActiveSchedule, error) {
	ref, err := s.getRef(ctx, scheduleID)
	if err != nil {
		return nil, err
	}

	if err := policy.Evaluate(actor, ref.GymID, policy.ActionManageSchedule); err != nil {
		return nil, err
	}

	if err := s.repo.UnassignCoach(ctx, scheduleID, coachID); err != nil {
		switch {
		case errors.Is(err, ErrScheduleNotFound):
			return nil, api.NotFound("schedule_not_found", "active schedule not found")
		case errors.Is(err, ErrLastCoach):
			return nil, api.Invalid("last_coach", "an active schedule must retain at least one coach")
		}
		return nil, err
	}

	return s.repo.GetByID(ctx, scheduleID)
}

// Available projects the caller's gym schedule with per-slot availability.
// A gym with no active schedule yields an empty list, not an error.
func (s *service) Available(ctx context.Context, actor policy.Actor) ([]ScheduleView, error) {
	sched, err := s.repo.GetByGym(ctx, actor.GymID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return []ScheduleView{}, nil
		}
		return nil, err
	}

	return []ScheduleView{buildView(sched, int64(actor.UserID))}, nil
}

func (s *service) MySchedule(ctx context.Context, actor policy.Actor) ([]MySlot, error) {
	return s.repo.ListClientSlots(ctx, int64(actor.UserID), actor.GymID)
}

func (s *service) getRef(ctx context.Context, scheduleID int) (*Ref, error) {
	ref, err := s.repo.GetRef(ctx, scheduleID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, api.NotFound("schedule_not_found", "active schedule not found")
		}
		return nil, err
	}
	return ref, nil
}

func buildView(sched *ActiveSchedule, userID int64) ScheduleView {
	view := ScheduleView{
		ID:          sched.ID,
		GymID:       sched.GymID,
		CoachIDs:    sched.CoachIDs,
		Days:        make([]DayAvailability, 0, len(sched.Days)),
		LastResetAt: sched.LastResetAt,
	}

	for _, day := range sched.Days {
		outDay := DayAvailability{DayOfWeek: day.DayOfWeek, TimeSlots: make([]SlotAvailability, 0, len(day.TimeSlots))}
		for _, slot := range day.TimeSlots {
			assigned := false
			for _, clientID := range slot.AssignedClients {
				if clientID == userID {
					assigned = true
					break
				}
			}
			outDay.TimeSlots = append(outDay.TimeSlots, SlotAvailability{
				TimeSlot:       slot,
				AvailableSpots: slot.Capacity - len(slot.AssignedClients),
				IsUserAssigned: assigned,
			})
		}
		view.Days = append(view.Days, outDay)
	}

	return view
}
