package timeslots

import (
	"fmt"
	"strings"
	"time"

	"github.com/snapcharge/backend/config"
)

// LabelLayout is the wire format of a slot label: 12-hour clock, no leading
// zero ("9:00 AM", "1:00 PM"). Labels are a closed enumeration, not free text.
const LabelLayout = "3:04 PM"

// DefaultDurationMinutes is the booking duration used when a booking carries
// no explicit override.
const DefaultDurationMinutes = 60

// Schedule describes the daily booking window a station offers. It is
// configuration: the set of valid labels is derived from it, and anything
// outside that set is rejected before any state mutation.
type Schedule struct {
	StartHour       int // 0-23, first bookable slot of the day
	SlotCount       int
	IntervalMinutes int
}

// Default returns the schedule configured through the environment, falling
// back to 9:00 AM, 12 hourly slots.
func Default() Schedule {
	return Schedule{
		StartHour:       config.GetEnvInt("SLOT_START_HOUR", 9),
		SlotCount:       config.GetEnvInt("SLOT_COUNT", 12),
		IntervalMinutes: config.GetEnvInt("SLOT_INTERVAL_MINUTES", 60),
	}
}

// Labels returns the full ordered enumeration of slot labels for one day.
func (s Schedule) Labels() []string {
	labels := make([]string, 0, s.SlotCount)
	cur := time.Date(2000, time.January, 1, s.StartHour, 0, 0, 0, time.UTC)
	for i := 0; i < s.SlotCount; i++ {
		labels = append(labels, cur.Format(LabelLayout))
		cur = cur.Add(time.Duration(s.IntervalMinutes) * time.Minute)
	}
	return labels
}

// Contains reports whether label is part of the enumeration.
func (s Schedule) Contains(label string) bool {
	for _, l := range s.Labels() {
		if l == label {
			return true
		}
	}
	return false
}

// ParseLabel parses a slot label into its clock time. Leading zeroes are
// tolerated on input ("09:00 AM"); output formatting never produces them.
func ParseLabel(label string) (time.Time, error) {
	t, err := time.Parse(LabelLayout, strings.TrimSpace(label))
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid time slot label %q: %w", label, err)
	}
	return t, nil
}

// At combines a calendar date with a slot label into an absolute timestamp
// in UTC.
func At(date time.Time, label string) (time.Time, error) {
	clock, err := ParseLabel(label)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(date.Year(), date.Month(), date.Day(),
		clock.Hour(), clock.Minute(), 0, 0, time.UTC), nil
}
