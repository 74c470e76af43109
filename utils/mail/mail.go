package mail

import (
	"bytes"
	"crypto/tls"
	"fmt"
	"html/template"
	"strconv"
	"sync"

	gomail "gopkg.in/gomail.v2"

	"github.com/snapcharge/backend/config"
	"github.com/snapcharge/backend/logger"
)

const bookingConfirmationTemplate = `
<html><body>
<h2>Booking confirmed</h2>
<p>Hi {{.DriverName}},</p>
<p>Your charging slot at <strong>{{.StationTitle}}</strong> is booked for
{{.BookingDate}} at {{.StartTime}}.</p>
<p>Location: {{.StationLocation}}</p>
</body></html>`

const bookingCancellationTemplate = `
<html><body>
<h2>Booking cancelled</h2>
<p>Hi {{.DriverName}},</p>
<p>Your booking at <strong>{{.StationTitle}}</strong> for {{.BookingDate}}
at {{.StartTime}} was cancelled because the station went offline.</p>
</body></html>`

// BookingNotification is the data rendered into booking emails.
type BookingNotification struct {
	DriverName      string
	DriverEmail     string
	StationTitle    string
	StationLocation string
	BookingDate     string
	StartTime       string
}

// Mailer sends booking notifications over SMTP. Constructed once in main and
// handed to the controllers that need it; a nil dialer disables delivery so
// the booking paths work without an SMTP server configured.
type Mailer struct {
	dialer *gomail.Dialer
	from   string

	mu   sync.Mutex
	sent []string // recipient log, inspected by tests
}

// NewMailer builds a Mailer from SMTP_* environment configuration. Delivery
// is disabled when SMTP_HOST is unset.
func NewMailer() *Mailer {
	host := config.GetEnv("SMTP_HOST", "")
	if host == "" {
		logger.WarnLogger.Warn("SMTP_HOST not set, email delivery disabled")
		return &Mailer{from: config.GetEnv("FROM_EMAIL", "no-reply@snapcharge.local")}
	}

	port, err := strconv.Atoi(config.GetEnv("SMTP_PORT", "587"))
	if err != nil {
		logger.ErrorLogger.Errorf("Invalid SMTP_PORT, email delivery disabled: %v", err)
		return &Mailer{from: config.GetEnv("FROM_EMAIL", "no-reply@snapcharge.local")}
	}

	dialer := gomail.NewDialer(host, port,
		config.GetEnv("SMTP_USERNAME", ""), config.GetEnv("SMTP_PASSWORD", ""))
	dialer.TLSConfig = &tls.Config{ServerName: host}

	return &Mailer{
		dialer: dialer,
		from:   config.GetEnv("FROM_EMAIL", "no-reply@snapcharge.local"),
	}
}

// Enabled reports whether the mailer has a configured SMTP transport.
func (m *Mailer) Enabled() bool {
	return m.dialer != nil
}

// SentTo returns the recipients of every message handed to this mailer,
// including ones skipped because delivery is disabled.
func (m *Mailer) SentTo() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.sent...)
}

func (m *Mailer) send(to, subject, tmpl string, data BookingNotification) error {
	m.mu.Lock()
	m.sent = append(m.sent, to)
	m.mu.Unlock()

	if m.dialer == nil {
		logger.InfoLogger.Infof("Email delivery disabled, skipping %q to %s", subject, to)
		return nil
	}

	t, err := template.New("mail").Parse(tmpl)
	if err != nil {
		return fmt.Errorf("failed to parse email template: %w", err)
	}
	var body bytes.Buffer
	if err := t.Execute(&body, data); err != nil {
		return fmt.Errorf("failed to render email template: %w", err)
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", body.String())

	if err := m.dialer.DialAndSend(msg); err != nil {
		logger.ErrorLogger.Errorf("Failed to send email to %s: %v", to, err)
		return fmt.Errorf("failed to send email: %w", err)
	}
	logger.InfoLogger.Infof("Sent %q to %s", subject, to)
	return nil
}

// SendBookingConfirmation emails the driver after a successful booking.
func (m *Mailer) SendBookingConfirmation(n BookingNotification) error {
	return m.send(n.DriverEmail, "Your SnapCharge booking is confirmed", bookingConfirmationTemplate, n)
}

// SendBookingCancellation emails the driver when a host takes the station
// offline and the booking is bulk-cancelled.
func (m *Mailer) SendBookingCancellation(n BookingNotification) error {
	return m.send(n.DriverEmail, "Your SnapCharge booking was cancelled", bookingCancellationTemplate, n)
}
