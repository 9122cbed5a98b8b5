package middleware

import (
	"github.com/deppfellow/apiplayground/internal/server"
	"github.com/deppfellow/apiplayground/internal/service"
	"github.com/newrelic/go-agent/v3/newrelic"
)

// Middlewares groups every middleware component so the router builds them once.
type Middlewares struct {
	// Global holds CORS, request logging, recovery, secure headers and the error funnel.
	Global *GlobalMiddlewares

	// Auth resolves bearer tokens against the user store.
	Auth *AuthMiddleware

	ContextEnhancer *ContextEnhancer

	// Tracing is a no-op unless New Relic is configured.
	Tracing *TracingMiddleware

	RateLimit *RateLimitMiddleware

	// Playground carries the request/response rewriting middleware of the demo endpoints
	// (process time header, greeting name format).
	Playground *PlaygroundMiddleware

	Metrics *MetricsMiddleware
}

func NewMiddlewares(s *server.Server, services *service.Services) *Middlewares {
	var nrApp *newrelic.Application
	if s.LoggerService != nil {
		nrApp = s.LoggerService.GetApplication()
	}

	return &Middlewares{
		Global:          NewGlobalMiddlewares(s),
		Auth:            NewAuthMiddleware(s, services.Auth),
		ContextEnhancer: NewContextEnhancer(s),
		Tracing:         NewTracingMiddleware(s, nrApp),
		RateLimit:       NewRateLimitMiddleware(s),
		Playground:      NewPlaygroundMiddleware(s),
		Metrics:         NewMetricsMiddleware(s.Mapper),
	}
}
