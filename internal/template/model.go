package template

import (
	"time"

	"github.com/lib/pq"
)

// TimeSlot is one bookable class in the weekly blueprint. Times are HH:mm
// 24-hour clock values within a single day.
type TimeSlot struct {
	ID        int    `db:"id" json:"id"`
	StartTime string `db:"start_time" json:"start_time" example:"09:00"`
	EndTime   string `db:"end_time" json:"end_time" example:"10:00"`
	Capacity  int    `db:"capacity" json:"capacity"`
}

type ScheduleDay struct {
	DayOfWeek int        `json:"day_of_week"` // 0=Sunday .. 6=Saturday
	TimeSlots []TimeSlot `json:"time_slots"`
}

// Template is the reusable weekly blueprint. It never carries occupancy.
type Template struct {
	ID          int           `db:"id" json:"id"`
	GymID       int           `db:"gym_id" json:"gym_id"`
	Name        string        `db:"name" json:"name"`
	Description *string       `db:"description" json:"description,omitempty"`
	CoachIDs    pq.Int64Array `db:"coach_ids" json:"coach_ids" swaggertype:"array,integer"`
	Days        []ScheduleDay `json:"days"`
	CreatedAt   time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time     `db:"updated_at" json:"updated_at"`
}

type TimeSlotInput struct {
	StartTime string `json:"start_time" validate:"required"`
	EndTime   string `json:"end_time" validate:"required"`
	Capacity  int    `json:"capacity" validate:"required,min=1"`
}

type DayInput struct {
	DayOfWeek int             `json:"day_of_week" validate:"min=0,max=6"`
	TimeSlots []TimeSlotInput `json:"time_slots" validate:"dive"`
}

type CreateTemplateRequest struct {
	Name        string     `json:"name" validate:"required"`
	Description *string    `json:"description"`
	CoachIDs    []int64    `json:"coach_ids" validate:"required,min=1"`
	Days        []DayInput `json:"days" validate:"dive"`
}

// UpdateTemplateRequest is a partial update: nil fields are left untouched.
// Days, when supplied, must be non-empty and replaces all existing days.
type UpdateTemplateRequest struct {
	Name        *string    `json:"name,omitempty"`
	Description *string    `json:"description,omitempty"`
	CoachIDs    []int64    `json:"coach_ids,omitempty"`
	Days        []DayInput `json:"days,omitempty" validate:"omitempty,dive"`
}
