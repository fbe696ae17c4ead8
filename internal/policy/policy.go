package policy

import "gymsched/internal/api"

// Roles as carried in JWT claims and the users table.
const (
	RoleAdmin  = "admin"
	RoleOwner  = "owner"
	RoleCoach  = "coach"
	RoleClient = "client"
)

// Action is a schedule operation gated by the policy.
type Action string

const (
	ActionManageTemplates Action = "templates:manage"
	ActionReadTemplates   Action = "templates:read"
	ActionManageSchedule  Action = "schedule:manage"
	ActionReadSchedule    Action = "schedule:read"
	ActionJoinTimeslot    Action = "timeslot:join"
)

// Actor is the authenticated caller as seen by every handler.
type Actor struct {
	UserID int
	Role   string
	GymID  int
}

func (a Actor) IsStaff() bool {
	return a.Role == RoleAdmin || a.Role == RoleOwner || a.Role == RoleCoach
}

// Evaluate decides whether the actor may perform action against a resource
// belonging to resourceGymID. Admins pass everywhere; owners and coaches are
// confined to their own gym; clients may only read, join and leave within
// their own gym.
//
// Cross-gym access always reports not-found rather than forbidden so the
// existence of other gyms' schedules is never leaked. Forbidden is reserved
// for actions the caller's role cannot take on a resource it can see.
func Evaluate(actor Actor, resourceGymID int, action Action) error {
	if actor.Role == RoleAdmin {
		return nil
	}

	if actor.GymID != resourceGymID {
		return api.NotFound("not_found", "resource not found")
	}

	switch actor.Role {
	case RoleOwner, RoleCoach:
		return nil
	case RoleClient:
		switch action {
		case ActionReadSchedule, ActionJoinTimeslot:
			return nil
		}
		return api.Forbidden("forbidden", "insufficient permissions")
	}

	return api.Forbidden("forbidden", "insufficient permissions")
}
