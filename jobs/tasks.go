package jobs

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/farewatch/farewatch/internal/mailer"
	"github.com/farewatch/farewatch/internal/monitor"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskTypeSendEmail is the task type for sending alert emails.
	TaskTypeSendEmail = "mail:send"
)

// SendEmailPayload describes the information required to send an email.
type SendEmailPayload struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// NewSendEmailTask constructs an asynq task for one rendered email.
func NewSendEmailTask(payload SendEmailPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeSendEmail, data), nil
}

// NewAvailabilityCheckTask constructs the daily availability-check task. The
// task carries no payload; the run parameters come from worker configuration.
func NewAvailabilityCheckTask() *asynq.Task {
	return asynq.NewTask(monitor.TaskAvailabilityCheck, nil)
}

// NewSendEmailHandler adapts the mailer to TaskTypeSendEmail tasks.
func NewSendEmailHandler(m *mailer.Mailer, logger *slog.Logger) asynq.HandlerFunc {
	if logger == nil {
		logger = slog.Default()
	}
	return func(ctx context.Context, t *asynq.Task) error {
		var payload SendEmailPayload
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			logger.Error("send email task has malformed payload", slog.Any("error", err))
			return asynq.SkipRetry
		}
		if err := m.Deliver(ctx, payload.To, payload.Subject, payload.Body); err != nil {
			logger.Error("send email task failed",
				slog.String("to", payload.To),
				slog.Any("error", err))
			return err
		}
		logger.Info("alert email delivered",
			slog.String("to", payload.To),
			slog.String("subject", payload.Subject))
		return nil
	}
}

// QueueNotifier turns alerts into queued send-email tasks so delivery retries
// happen off the monitor's run path.
type QueueNotifier struct {
	client    *Client
	recipient string
	logger    *slog.Logger
}

// NewQueueNotifier wires a queue-backed alert notifier.
func NewQueueNotifier(client *Client, recipient string, logger *slog.Logger) *QueueNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &QueueNotifier{client: client, recipient: recipient, logger: logger}
}

// Send renders the alert and enqueues it for delivery.
func (n *QueueNotifier) Send(ctx context.Context, alert mailer.Alert) error {
	date := alert.Date.Format("2006-01-02")
	info, err := n.client.EnqueueSendEmail(ctx, SendEmailPayload{
		To:      n.recipient,
		Subject: mailer.Subject(alert.Origin, date),
		Body:    mailer.Body(alert),
	})
	if err != nil {
		return err
	}
	n.logger.Info("alert email enqueued",
		slog.String("run_id", alert.RunID),
		slog.String("task_id", info.ID),
		slog.Int("destinations", len(alert.Destinations)))
	return nil
}
