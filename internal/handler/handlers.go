package handler

import (
	"github.com/deppfellow/apiplayground/internal/server"
	"github.com/deppfellow/apiplayground/internal/service"
)

// Handlers groups every HTTP handler so the router is wired from one value.
type Handlers struct {
	Health  *HealthHandler
	OpenAPI *OpenAPIHandler

	Calc          *CalcHandler
	Items         *ItemHandler
	Totems        *TotemHandler
	Sotems        *SotemHandler
	Users         *UserHandler
	Notifications *NotificationHandler
	Others        *OtherHandler
}

func NewHandlers(s *server.Server, services *service.Services) *Handlers {
	h := &Handlers{
		Health:        NewHealthHandler(s),
		Calc:          NewCalcHandler(s),
		Items:         NewItemHandler(s, services.Items),
		Totems:        NewTotemHandler(s, services.Totems),
		Sotems:        NewSotemHandler(s, services.Sotems),
		Users:         NewUserHandler(s, services.Auth),
		Notifications: NewNotificationHandler(s, services.Notification),
		Others:        NewOtherHandler(s),
	}
	h.OpenAPI = NewOpenAPIHandler(s, h.Routes())
	return h
}

// Routes lists the API endpoints in registration order. Static paths come before
// parameterized ones of the same prefix only for readability; echo resolves them by priority.
func (h *Handlers) Routes() []Route {
	var routes []Route
	for _, group := range [][]Route{
		h.Calc.Routes(),
		h.Items.Routes(),
		h.Totems.Routes(),
		h.Sotems.Routes(),
		h.Users.Routes(),
		h.Notifications.Routes(),
		h.Others.Routes(),
	} {
		routes = append(routes, group...)
	}
	return routes
}
