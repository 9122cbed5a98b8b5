package job

import (
	"context"
	"fmt"

	"github.com/deppfellow/apiplayground/internal/config"
	"github.com/deppfellow/apiplayground/internal/lib/email"
	"github.com/goccy/go-json"
	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"
)

// Notifier delivers notification messages.
type Notifier interface {
	SendNotification(ctx context.Context, to, message string) error
}

// InitHandlers builds the dependencies task handlers need.
func (j *JobService) InitHandlers(cfg *config.Config, logger *zerolog.Logger) {
	j.notifier = email.NewClient(cfg, logger)
}

func (j *JobService) handleNotificationTask(ctx context.Context, t *asynq.Task) error {
	var p NotificationPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return fmt.Errorf("failed to unmarshal notification payload: %w", err)
	}

	j.logger.Info().
		Str("type", "notification").
		Str("to", p.Email).
		Msg("processing notification task")

	if err := j.notifier.SendNotification(ctx, p.Email, p.Message); err != nil {
		j.logger.Error().
			Str("type", "notification").
			Str("to", p.Email).
			Err(err).
			Msg("failed to send notification")
		return err
	}

	j.logger.Info().
		Str("type", "notification").
		Str("to", p.Email).
		Msg("sent notification")

	return nil
}
