// Package mailer delivers availability alerts as plain-text email over SMTP.
package mailer

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/smtp"
	"strconv"
	"strings"
	"time"

	"github.com/farewatch/farewatch/internal/catalog"
)

// Alert is one availability notification covering a single run.
type Alert struct {
	RunID        string
	Origin       string
	Date         time.Time
	Destinations []catalog.Destination
}

// Config holds the SMTP endpoint and sender identity.
type Config struct {
	Host string
	Port int
	From string
}

// Mailer sends alerts to a fixed recipient.
type Mailer struct {
	cfg       Config
	recipient string
	logger    *slog.Logger
}

// NewMailer wires an SMTP transport for the given recipient.
func NewMailer(cfg Config, recipient string, logger *slog.Logger) *Mailer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Mailer{cfg: cfg, recipient: recipient, logger: logger}
}

// Send renders and delivers the alert to the configured recipient.
func (m *Mailer) Send(ctx context.Context, alert Alert) error {
	date := alert.Date.Format("2006-01-02")
	if err := m.Deliver(ctx, m.recipient, Subject(alert.Origin, date), Body(alert)); err != nil {
		return err
	}
	m.logger.Info("alert email sent",
		slog.String("run_id", alert.RunID),
		slog.String("recipient", m.recipient),
		slog.Int("destinations", len(alert.Destinations)))
	return nil
}

// Deliver sends an already rendered message. The context deadline is not
// honoured by net/smtp itself, so SMTP endpoints should be local or fast.
func (m *Mailer) Deliver(ctx context.Context, to, subject, body string) error {
	if to == "" {
		return fmt.Errorf("mailer: no recipient configured")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	addr := net.JoinHostPort(m.cfg.Host, strconv.Itoa(m.cfg.Port))
	msg := buildMessage(m.cfg.From, to, subject, body)
	if err := smtp.SendMail(addr, nil, m.cfg.From, []string{to}, msg); err != nil {
		return fmt.Errorf("mailer: send to %s: %w", to, err)
	}
	return nil
}

// Subject builds the alert subject line.
func Subject(origin, date string) string {
	return fmt.Sprintf("Flight availability from %s on %s", origin, date)
}

// Body renders the plain-text alert body.
func Body(alert Alert) string {
	date := alert.Date.Format("2006-01-02")

	var b strings.Builder
	fmt.Fprintf(&b, "Flights from %s on %s with seats still available:\r\n\r\n", alert.Origin, date)
	for _, d := range alert.Destinations {
		fmt.Fprintf(&b, "  - %s, %s (%s), best visited %s\r\n", d.City, d.Country, d.AirportCode, d.BestMonths)
	}
	fmt.Fprintf(&b, "\r\nRun reference: %s\r\n", alert.RunID)
	return b.String()
}

func buildMessage(from, to, subject, body string) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", to)
	fmt.Fprintf(&b, "Subject: %s\r\n", subject)
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=utf-8\r\n")
	b.WriteString("\r\n")
	b.WriteString(body)
	return []byte(b.String())
}
