package service

import (
	"context"

	"github.com/deppfellow/apiplayground/internal/lib/job"
	"github.com/deppfellow/apiplayground/internal/repository"
	"github.com/deppfellow/apiplayground/internal/server"
	"github.com/pkg/errors"
)

type Services struct {
	Auth         *AuthService
	Totems       *TotemService
	Sotems       *SotemService
	Items        *ItemService
	Notification *NotificationService
	Job          *job.JobService
}

func NewServices(s *server.Server, repos *repository.Repositories) (*Services, error) {
	services := &Services{
		Auth:         NewAuthService(repos.Users),
		Totems:       NewTotemService(repos.Totems),
		Sotems:       NewSotemService(repos.Sotems),
		Items:        NewItemService(repos.Items),
		Notification: NewNotificationService(s.Job),
		Job:          s.Job,
	}

	if err := services.Totems.Seed(context.Background()); err != nil {
		return nil, errors.Wrap(err, "failed to seed totems")
	}

	return services, nil
}
