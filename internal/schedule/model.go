package schedule

import (
	"time"

	"github.com/lib/pq"
)

// TimeSlot is one bookable class on the live schedule, including the clients
// currently occupying it. len(AssignedClients) never exceeds Capacity.
type TimeSlot struct {
	ID              int     `db:"id" json:"id"`
	StartTime       string  `db:"start_time" json:"start_time" example:"09:00"`
	EndTime         string  `db:"end_time" json:"end_time" example:"10:00"`
	Capacity        int     `db:"capacity" json:"capacity"`
	AssignedClients []int64 `json:"assigned_clients"`
}

type ScheduleDay struct {
	DayOfWeek int        `json:"day_of_week"` // 0=Sunday .. 6=Saturday
	TimeSlots []TimeSlot `json:"time_slots"`
}

// ActiveSchedule is the single live schedule a gym runs. TemplateID records
// provenance only; the days are a copy, not a live reference, so the template
// may be edited or deleted independently.
type ActiveSchedule struct {
	ID          int           `db:"id" json:"id"`
	GymID       int           `db:"gym_id" json:"gym_id"`
	TemplateID  int           `db:"template_id" json:"template_id"`
	CoachIDs    pq.Int64Array `db:"coach_ids" json:"coach_ids" swaggertype:"array,integer"`
	Days        []ScheduleDay `json:"days"`
	LastResetAt time.Time     `db:"last_reset_at" json:"last_reset_at"`
	CreatedAt   time.Time     `db:"created_at" json:"created_at"`
}

// Ref is the lightweight row used for policy checks and batch resets.
type Ref struct {
	ID         int `db:"id"`
	GymID      int `db:"gym_id"`
	TemplateID int `db:"template_id"`
}

// SlotAvailability is the client-facing projection of a timeslot.
type SlotAvailability struct {
	TimeSlot
	AvailableSpots int  `json:"available_spots"`
	IsUserAssigned bool `json:"is_user_assigned"`
}

type DayAvailability struct {
	DayOfWeek int                `json:"day_of_week"`
	TimeSlots []SlotAvailability `json:"time_slots"`
}

type ScheduleView struct {
	ID          int               `json:"id"`
	GymID       int               `json:"gym_id"`
	CoachIDs    pq.Int64Array     `json:"coach_ids" swaggertype:"array,integer"`
	Days        []DayAvailability `json:"days"`
	LastResetAt time.Time         `json:"last_reset_at"`
}

// MySlot is one timeslot the requesting client is joined to.
type MySlot struct {
	ScheduleID int    `db:"schedule_id" json:"schedule_id"`
	GymID      int    `db:"gym_id" json:"gym_id"`
	DayOfWeek  int    `db:"day_of_week" json:"day_of_week"`
	TimeslotID int    `db:"timeslot_id" json:"timeslot_id"`
	StartTime  string `db:"start_time" json:"start_time"`
	EndTime    string `db:"end_time" json:"end_time"`
}

type CreateScheduleRequest struct {
	TemplateID int `json:"template_id" validate:"required,min=1"`
}

type AssignStaffRequest struct {
	CoachID int64 `json:"coach_id" validate:"required,min=1"`
}
