package handler

import (
	"net/http"

	"github.com/deppfellow/apiplayground/internal/errs"
	"github.com/deppfellow/apiplayground/internal/model"
	"github.com/deppfellow/apiplayground/internal/schema"
	"github.com/deppfellow/apiplayground/internal/server"
	"github.com/deppfellow/apiplayground/internal/service"
	"github.com/deppfellow/apiplayground/internal/validation"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

var (
	totemIDPlan = validation.NewPlan("read_totem",
		validation.Path(schema.String("totem_id")),
	)

	totemBodyPlan = validation.NewPlan("update_totem",
		validation.Path(schema.String("totem_id")),
		validation.Body(schema.Object("totem", model.Totem)),
	)

	createTotemPlan = validation.NewPlan("create_totem",
		validation.Body(schema.Object("totem", model.Totem)),
	)

	noParamsPlan = validation.NewPlan("no_params")
)

type TotemHandler struct {
	Handler
	totems *service.TotemService
}

func NewTotemHandler(s *server.Server, totems *service.TotemService) *TotemHandler {
	return &TotemHandler{
		Handler: NewHandler(s),
		totems:  totems,
	}
}

func (h *TotemHandler) Routes() []Route {
	return tagged("totems",
		h.route(http.MethodGet, "/totems/:totem_id", totemIDPlan, h.ReadTotem, http.StatusOK),
		h.route(http.MethodPut, "/totems3/:totem_id", totemBodyPlan, h.ReplaceTotem, http.StatusOK),
		h.route(http.MethodPatch, "/totems4/:totem_id", totemBodyPlan, h.PatchTotem, http.StatusOK),
		h.route(http.MethodGet, "/new-totems/", noParamsPlan, h.NewTotems, http.StatusOK),
		h.route(http.MethodGet, "/totems/", noParamsPlan, h.ListTotems, http.StatusOK),
		h.route(http.MethodGet, "/users/", noParamsPlan, h.ListUsers, http.StatusOK).
			Tag("users").
			Deprecate(),
		h.route(http.MethodPost, "/totems/", createTotemPlan, h.CreateTotem, http.StatusCreated).
			Describe("Create a totem, yeah"),
		h.route(http.MethodGet, "/totems2/:totem_id", totemIDPlan, h.ReadVehicleTotem, http.StatusOK),
	)
}

// ReadTotem answers only the name, price, description and tags the stored totem has set.
func (h *TotemHandler) ReadTotem(c echo.Context, in *validation.Bound) (any, error) {
	totem, err := h.totems.Get(c.Request().Context(), in.String("totem_id"))
	if err != nil {
		return nil, err
	}
	return totem.Dump(schema.Include("name", "price", "description", "tags"), schema.ExcludeUnset()), nil
}

func (h *TotemHandler) ReplaceTotem(c echo.Context, in *validation.Bound) (any, error) {
	return h.totems.Replace(c.Request().Context(), in.String("totem_id"), in.Object("totem"))
}

// PatchTotem merges only the fields present in the request body into the stored totem.
func (h *TotemHandler) PatchTotem(c echo.Context, in *validation.Bound) (any, error) {
	return h.totems.Patch(c.Request().Context(), in.String("totem_id"), in.Object("totem"))
}

func (h *TotemHandler) NewTotems(c echo.Context, in *validation.Bound) (any, error) {
	out := make([]map[string]any, 0, len(model.NewTotems))
	for _, raw := range model.NewTotems {
		totem, failures := model.Totem.Validate(raw)
		if len(failures) > 0 {
			return nil, errors.Wrap(failures, "invalid totem in catalogue")
		}
		out = append(out, totem.Dump(schema.ExcludeUnset()))
	}
	return out, nil
}

func (h *TotemHandler) ListTotems(c echo.Context, in *validation.Bound) (any, error) {
	return []string{"Portal gun", "Plumbus"}, nil
}

func (h *TotemHandler) ListUsers(c echo.Context, in *validation.Bound) (any, error) {
	return []string{"Rick", "Morty"}, nil
}

func (h *TotemHandler) CreateTotem(c echo.Context, in *validation.Bound) (any, error) {
	return h.totems.Create(c.Request().Context(), in.Object("totem"))
}

func (h *TotemHandler) ReadVehicleTotem(c echo.Context, in *validation.Bound) (any, error) {
	raw, ok := model.VehicleTotems[in.String("totem_id")]
	if !ok {
		return nil, errs.NewNotFoundError("Totem not found")
	}
	for _, s := range []*schema.Schema{model.PlaneTotem, model.CarTotem} {
		if totem, failures := s.Validate(raw); len(failures) == 0 {
			return totem, nil
		}
	}
	return nil, errors.Errorf("totem %s matches no vehicle schema", in.String("totem_id"))
}
