package handler

import (
	"net/http"

	"github.com/deppfellow/apiplayground/internal/model"
	"github.com/deppfellow/apiplayground/internal/schema"
	"github.com/deppfellow/apiplayground/internal/server"
	"github.com/deppfellow/apiplayground/internal/service"
	"github.com/deppfellow/apiplayground/internal/validation"
	"github.com/labstack/echo/v4"
)

var updateSotemPlan = validation.NewPlan("update_sotem",
	validation.Path(schema.String("id")),
	validation.Body(schema.Object("sotem", model.Sotem)),
)

type SotemHandler struct {
	Handler
	sotems *service.SotemService
}

func NewSotemHandler(s *server.Server, sotems *service.SotemService) *SotemHandler {
	return &SotemHandler{
		Handler: NewHandler(s),
		sotems:  sotems,
	}
}

func (h *SotemHandler) Routes() []Route {
	return tagged("sotems",
		h.route(http.MethodPut, "/sotems/:id", updateSotemPlan, h.UpdateSotem, http.StatusOK),
	)
}

func (h *SotemHandler) UpdateSotem(c echo.Context, in *validation.Bound) (any, error) {
	return h.sotems.Put(c.Request().Context(), in.String("id"), in.Object("sotem"))
}
