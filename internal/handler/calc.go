package handler

import (
	"math"
	"net/http"

	"github.com/deppfellow/apiplayground/internal/errs"
	"github.com/deppfellow/apiplayground/internal/model"
	"github.com/deppfellow/apiplayground/internal/schema"
	"github.com/deppfellow/apiplayground/internal/server"
	"github.com/deppfellow/apiplayground/internal/validation"
	"github.com/labstack/echo/v4"
)

var (
	addPlan = validation.NewPlan("add",
		validation.Body(schema.Object("items", model.CalcItems)),
	)

	// a is undocumented and falls back to 10.
	add2Plan = validation.NewPlan("add2",
		validation.Query(schema.Int("a", schema.Default(10)), validation.Hidden()),
		validation.Query(schema.Int("b")),
	)

	add3Plan = validation.NewPlan("add3",
		validation.Path(schema.Int("a", schema.Ge(0), schema.Le(1000))),
		validation.Path(schema.Int("b", schema.Ge(0), schema.Le(10))),
	)
)

type CalcHandler struct {
	Handler
}

func NewCalcHandler(s *server.Server) *CalcHandler {
	return &CalcHandler{Handler: NewHandler(s)}
}

func (h *CalcHandler) Routes() []Route {
	return tagged("calc",
		h.route(http.MethodPost, "/calc/add/", addPlan, h.Add, http.StatusOK),
		h.route(http.MethodPost, "/calc2/add/", add2Plan, h.Add2, http.StatusOK),
		h.route(http.MethodGet, "/calc3/add/:a/:b", add3Plan, h.Add3, http.StatusOK),
	)
}

func (h *CalcHandler) Add(c echo.Context, in *validation.Bound) (any, error) {
	items := in.Object("items")
	return sum(items.Int("var1"), items.Int("var2"))
}

func (h *CalcHandler) Add2(c echo.Context, in *validation.Bound) (any, error) {
	return sum(in.Int("a"), in.Int("b"))
}

func (h *CalcHandler) Add3(c echo.Context, in *validation.Bound) (any, error) {
	return sum(in.Int("a"), in.Int("b"))
}

func sum(a, b int64) (any, error) {
	if (b > 0 && a > math.MaxInt64-b) || (b < 0 && a < math.MinInt64-b) {
		return nil, errs.NewBadRequestError("Sum overflows a 64-bit integer")
	}
	return map[string]int64{"a": a, "b": b, "sum": a + b}, nil
}
