package service

import (
	"context"

	"github.com/deppfellow/apiplayground/internal/lib/job"
)

type NotificationService struct {
	jobs *job.JobService
}

func NewNotificationService(jobs *job.JobService) *NotificationService {
	return &NotificationService{jobs: jobs}
}

// Send queues the notification; delivery happens in the background.
func (s *NotificationService) Send(ctx context.Context, email, message string) error {
	return s.jobs.EnqueueNotification(ctx, email, message)
}
