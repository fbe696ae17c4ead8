package schedule

import (
	"context"

	"gymsched/internal/template"
)

type Repository interface {
	Create(ctx context.Context, gymID, templateID int, coachIDs []int64, days []template.ScheduleDay) (*ActiveSchedule, error)
	GetByID(ctx context.Context, id int) (*ActiveSchedule, error)
	GetByGym(ctx context.Context, gymID int) (*ActiveSchedule, error)
	GetRef(ctx context.Context, id int) (*Ref, error)
	ListRefs(ctx context.Context) ([]Ref, error)
	ListRefsByGym(ctx context.Context, gymID int) ([]Ref, error)
	List(ctx context.Context, limit, offset int) ([]ActiveSchedule, error)
	Count(ctx context.Context) (int, error)
	Delete(ctx context.Context, id int) error

	// JoinSlot atomically adds clientID to the slot identified by the
	// schedule/day/slot path. alreadyJoined reports the idempotent no-op case.
	JoinSlot(ctx context.Context, scheduleID, dayOfWeek, slotID int, clientID int64) (alreadyJoined bool, err error)
	LeaveSlot(ctx context.Context, scheduleID, dayOfWeek, slotID int, clientID int64) error
	AssignCoach(ctx context.Context, scheduleID int, coachID int64) error
	UnassignCoach(ctx context.Context, scheduleID int, coachID int64) error

	// Reset replaces the schedule's days with a fresh copy of the template
	// days and bumps last_reset_at, all in one transaction.
	Reset(ctx context.Context, scheduleID int, days []template.ScheduleDay) error

	ListClientSlots(ctx context.Context, clientID int64, gymID int) ([]MySlot, error)
}
