package job

import (
	"time"

	"github.com/goccy/go-json"
	"github.com/hibiken/asynq"
)

const (
	TaskNotification = "notification:send"
)

type NotificationPayload struct {
	Email   string `json:"email"`
	Message string `json:"message"`
}

// NewNotificationTask builds the task that delivers one notification email.
func NewNotificationTask(email, message string) (*asynq.Task, error) {
	payload, err := json.Marshal(NotificationPayload{
		Email:   email,
		Message: message,
	})
	if err != nil {
		return nil, err
	}

	return asynq.NewTask(
		TaskNotification,
		payload,
		asynq.MaxRetry(3),
		asynq.Queue("default"),
		asynq.Timeout(30*time.Second),
	), nil
}
