package handler

import (
	"context"
	"net/http"

	"github.com/deppfellow/apiplayground/internal/schema"
	"github.com/deppfellow/apiplayground/internal/server"
	"github.com/deppfellow/apiplayground/internal/service"
	"github.com/deppfellow/apiplayground/internal/validation"
	"github.com/labstack/echo/v4"
)

var sendNotificationPlan = validation.NewPlan("send_email",
	validation.Query(schema.Email("email")),
	validation.Query(schema.String("message", schema.MinLength(5), schema.MaxLength(10))),
)

type NotificationHandler struct {
	Handler
	notifications *service.NotificationService
}

func NewNotificationHandler(s *server.Server, notifications *service.NotificationService) *NotificationHandler {
	return &NotificationHandler{
		Handler:       NewHandler(s),
		notifications: notifications,
	}
}

func (h *NotificationHandler) Routes() []Route {
	return tagged("background_tasks",
		h.route(http.MethodPost, "/send_notification/", sendNotificationPlan, h.SendNotification, http.StatusOK),
	)
}

// SendNotification answers immediately; the notification is queued after the response is written.
func (h *NotificationHandler) SendNotification(c echo.Context, in *validation.Bound) (any, error) {
	email, message := in.String("email"), in.String("message")

	BackgroundTasks(c).Add("send_notification", func(ctx context.Context) error {
		return h.notifications.Send(ctx, email, message)
	})

	return map[string]string{"message": "Notification is being sent in the background"}, nil
}
