package template

import (
	"time"

	"gymsched/internal/api"
)

// ClockLayout parses HH:mm 24-hour clock values.
const ClockLayout = "15:04"

// ValidateClockRange checks that both values are valid HH:mm strings and the
// end is strictly after the start. Overnight spans are not allowed.
func ValidateClockRange(start, end string) error {
	startAt, err := time.Parse(ClockLayout, start)
	if err != nil {
		return api.Invalid("invalid_time", "start_time must be HH:mm")
	}

	endAt, err := time.Parse(ClockLayout, end)
	if err != nil {
		return api.Invalid("invalid_time", "end_time must be HH:mm")
	}

	if !endAt.After(startAt) {
		return api.Invalid("invalid_time_range", "end_time must be after start_time")
	}

	return nil
}

// ValidateDays checks weekday values, duplicate weekdays and every slot's
// time range and capacity. Overlapping slot ranges within a day are legal;
// gyms run concurrent classes.
func ValidateDays(days []DayInput) error {
	seen := make(map[int]bool, len(days))
	for _, day := range days {
		if day.DayOfWeek < 0 || day.DayOfWeek > 6 {
			return api.Invalid("invalid_day", "day_of_week must be between 0 (Sunday) and 6 (Saturday)")
		}
		if seen[day.DayOfWeek] {
			return api.Invalid("duplicate_day", "each day_of_week may appear at most once")
		}
		seen[day.DayOfWeek] = true

		for _, slot := range day.TimeSlots {
			if err := ValidateClockRange(slot.StartTime, slot.EndTime); err != nil {
				return err
			}
			if slot.Capacity < 1 {
				return api.Invalid("invalid_capacity", "capacity must be a positive integer")
			}
		}
	}
	return nil
}
