package handler

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/deppfellow/apiplayground/internal/middleware"
	"github.com/deppfellow/apiplayground/internal/server"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

// HealthHandler reports liveness plus the state of every configured dependency.
// Postgres and Redis are optional; an unconfigured one is reported as "disabled".
type HealthHandler struct {
	Handler
}

func NewHealthHandler(s *server.Server) *HealthHandler {
	return &HealthHandler{
		Handler: NewHandler(s),
	}
}

type pingFunc func(ctx context.Context) error

// CheckHealth answers 200 when every configured dependency answers, 503 otherwise.
func (h *HealthHandler) CheckHealth(c echo.Context) error {
	start := time.Now()

	logger := middleware.GetLogger(c).With().
		Str("operation", "health_check").
		Logger()

	checks := map[string]any{}
	isHealthy := true

	var dbPing, redisPing pingFunc
	if h.server.DB != nil {
		dbPing = h.server.DB.Pool.Ping
	}
	if h.server.Redis != nil {
		redisPing = func(ctx context.Context) error { return h.server.Redis.Ping(ctx).Err() }
	}

	for _, dep := range []struct {
		name string
		ping pingFunc
	}{
		{"database", dbPing},
		{"redis", redisPing},
	} {
		if dep.ping == nil {
			checks[dep.name] = map[string]any{"status": "disabled"}
			continue
		}
		result, ok := h.check(c.Request().Context(), &logger, dep.name, dep.ping)
		checks[dep.name] = result
		isHealthy = isHealthy && ok
	}

	response := map[string]any{
		"status":      "healthy",
		"timestamp":   time.Now().UTC(),
		"environment": h.server.Config.Primary.Env,
		"checks":      checks,
	}

	if !isHealthy {
		response["status"] = "unhealthy"

		logger.Warn().
			Dur("total_duration", time.Since(start)).
			Msg("health check failed")

		h.recordFailure(map[string]any{
			"check_type":        "overall",
			"operation":         "health_check",
			"error_type":        "overall_unhealthy",
			"total_duration_ms": time.Since(start).Milliseconds(),
		})

		return c.JSON(http.StatusServiceUnavailable, response)
	}

	logger.Info().
		Dur("total_duration", time.Since(start)).
		Msg("health check passed")

	if err := c.JSON(http.StatusOK, response); err != nil {
		logger.Error().Err(err).Msg("failed to write JSON response")
		return fmt.Errorf("failed to write JSON response: %w", err)
	}

	return nil
}

func (h *HealthHandler) check(ctx context.Context, logger *zerolog.Logger, name string, ping pingFunc) (map[string]any, bool) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	started := time.Now()
	err := ping(ctx)
	elapsed := time.Since(started)

	if err != nil {
		logger.Error().
			Err(err).
			Dur("response_time", elapsed).
			Msgf("%s health check failed", name)

		h.recordFailure(map[string]any{
			"check_type":       name,
			"operation":        "health_check",
			"error_type":       name + "_unhealthy",
			"response_time_ms": elapsed.Milliseconds(),
			"error_message":    err.Error(),
		})

		return map[string]any{
			"status":        "unhealthy",
			"response_time": elapsed.String(),
			"error":         err.Error(),
		}, false
	}

	logger.Info().
		Dur("response_time", elapsed).
		Msgf("%s health check passed", name)

	return map[string]any{
		"status":        "healthy",
		"response_time": elapsed.String(),
	}, true
}

func (h *HealthHandler) recordFailure(attrs map[string]any) {
	if app := h.server.LoggerService.GetApplication(); app != nil {
		app.RecordCustomEvent("HealthCheckError", attrs)
	}
}
