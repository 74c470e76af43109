package mail

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMailerDisabledWithoutSMTP(t *testing.T) {
	t.Setenv("SMTP_HOST", "")

	m := NewMailer()
	assert.False(t, m.Enabled())

	n := BookingNotification{
		DriverName:   "Ravi",
		DriverEmail:  "ravi@test.local",
		StationTitle: "Green Charge Hub",
		BookingDate:  "2026-09-01",
		StartTime:    "1:00 PM",
	}
	require.NoError(t, m.SendBookingConfirmation(n))
	require.NoError(t, m.SendBookingCancellation(n))

	assert.Equal(t, []string{"ravi@test.local", "ravi@test.local"}, m.SentTo())
}

func TestMailerSentToIsCopied(t *testing.T) {
	t.Setenv("SMTP_HOST", "")

	m := NewMailer()
	require.NoError(t, m.SendBookingConfirmation(BookingNotification{DriverEmail: "a@test.local"}))

	got := m.SentTo()
	got[0] = "mutated"
	assert.Equal(t, []string{"a@test.local"}, m.SentTo())
}
