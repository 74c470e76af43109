package timeslots

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLabels(t *testing.T) {
	s := Schedule{StartHour: 9, SlotCount: 12, IntervalMinutes: 60}
	labels := s.Labels()

	require.Len(t, labels, 12)
	assert.Equal(t, "9:00 AM", labels[0])
	assert.Equal(t, "12:00 PM", labels[3])
	assert.Equal(t, "1:00 PM", labels[4])
	assert.Equal(t, "8:00 PM", labels[11])
}

func TestLabelsNoLeadingZero(t *testing.T) {
	s := Schedule{StartHour: 1, SlotCount: 3, IntervalMinutes: 60}
	assert.Equal(t, []string{"1:00 AM", "2:00 AM", "3:00 AM"}, s.Labels())
}

func TestLabelsHalfHourInterval(t *testing.T) {
	s := Schedule{StartHour: 9, SlotCount: 3, IntervalMinutes: 30}
	assert.Equal(t, []string{"9:00 AM", "9:30 AM", "10:00 AM"}, s.Labels())
}

func TestContains(t *testing.T) {
	s := Schedule{StartHour: 9, SlotCount: 12, IntervalMinutes: 60}

	assert.True(t, s.Contains("9:00 AM"))
	assert.True(t, s.Contains("4:00 PM"))
	assert.False(t, s.Contains("8:00 AM"))
	assert.False(t, s.Contains("9:00 PM"))
	assert.False(t, s.Contains("9:15 AM"))
	assert.False(t, s.Contains("bogus"))
}

func TestParseLabel(t *testing.T) {
	parsed, err := ParseLabel("1:00 PM")
	require.NoError(t, err)
	assert.Equal(t, 13, parsed.Hour())
	assert.Equal(t, 0, parsed.Minute())

	parsed, err = ParseLabel(" 9:30 AM ")
	require.NoError(t, err)
	assert.Equal(t, 9, parsed.Hour())
	assert.Equal(t, 30, parsed.Minute())

	_, err = ParseLabel("25:00 PM")
	assert.Error(t, err)

	_, err = ParseLabel("")
	assert.Error(t, err)
}

func TestAt(t *testing.T) {
	date := time.Date(2026, time.March, 14, 0, 0, 0, 0, time.UTC)

	at, err := At(date, "1:00 PM")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, time.March, 14, 13, 0, 0, 0, time.UTC), at)

	at, err = At(date, "9:00 AM")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, time.March, 14, 9, 0, 0, 0, time.UTC), at)

	_, err = At(date, "not a slot")
	assert.Error(t, err)
}
