package template

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateClockRange(t *testing.T) {
	tests := []struct {
		name    string
		start   string
		end     string
		wantErr bool
	}{
		{"Valid", "09:00", "10:30", false},
		{"MidnightStart", "00:00", "01:00", false},
		{"LateEvening", "22:00", "23:59", false},
		{"EndEqualsStart", "09:00", "09:00", true},
		{"EndBeforeStart", "10:00", "09:00", true},
		{"HourOutOfRange", "25:00", "26:00", true},
		{"MinuteOutOfRange", "09:60", "10:00", true},
		{"NotAClock", "morning", "noon", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateClockRange(tt.start, tt.end)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateDays_OverlapsAllowed(t *testing.T) {
	days := []DayInput{{
		DayOfWeek: 3,
		TimeSlots: []TimeSlotInput{
			{StartTime: "09:00", EndTime: "11:00", Capacity: 10},
			{StartTime: "10:00", EndTime: "12:00", Capacity: 5},
		},
	}}

	assert.NoError(t, ValidateDays(days))
}

func TestValidateDays_BadWeekday(t *testing.T) {
	days := []DayInput{{
		DayOfWeek: 7,
		TimeSlots: []TimeSlotInput{{StartTime: "09:00", EndTime: "10:00", Capacity: 10}},
	}}

	assert.Error(t, ValidateDays(days))
}
