package service

import (
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/lshigami/Kestrel/config"
	"github.com/lshigami/Kestrel/internal/model"
	"github.com/rs/zerolog/log"
)

// Notifier is the fire-and-forget sink for attempt lifecycle events. Failures
// are logged and never propagated: a notification problem must not fail the
// transition that triggered it.
type Notifier interface {
	AttemptEvent(event string, attempt *model.Attempt)
}

const (
	EventAttemptSubmitted = "attempt.submitted"
	EventAttemptEvaluated = "attempt.evaluated"
	EventAttemptCompleted = "attempt.completed"
)

type webhookNotifier struct {
	client *resty.Client
	url    string
}

func NewWebhookNotifier(cfg *config.Config) Notifier {
	if cfg.NotifyWebhookURL == "" {
		log.Warn().Msg("NOTIFY_WEBHOOK_URL is not set, attempt events will not be dispatched")
		return &noopNotifier{}
	}
	client := resty.New().
		SetTimeout(5 * time.Second).
		SetRetryCount(2)
	return &webhookNotifier{client: client, url: cfg.NotifyWebhookURL}
}

func (n *webhookNotifier) AttemptEvent(event string, attempt *model.Attempt) {
	payload := map[string]interface{}{
		"event":      event,
		"attempt_id": attempt.ID,
		"user_id":    attempt.UserID,
		"exam_id":    attempt.ExamID,
		"status":     attempt.Status,
		"sent_at":    time.Now().UTC(),
	}
	go func() {
		resp, err := n.client.R().SetBody(payload).Post(n.url)
		if err != nil {
			log.Warn().Err(err).Str("event", event).Uint("attemptID", attempt.ID).Msg("Failed to dispatch attempt event")
			return
		}
		if resp.IsError() {
			log.Warn().Int("status", resp.StatusCode()).Str("event", event).Uint("attemptID", attempt.ID).Msg("Attempt event webhook returned error status")
		}
	}()
}

type noopNotifier struct{}

// NewNoopNotifier returns a Notifier that discards all events.
func NewNoopNotifier() Notifier { return &noopNotifier{} }

func (noopNotifier) AttemptEvent(string, *model.Attempt) {}
