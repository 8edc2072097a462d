package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"jobtailor/internal/services/health"
	"jobtailor/internal/shared/config"
	"jobtailor/internal/shared/metrics"
	"jobtailor/internal/shared/server/middleware"
	"jobtailor/internal/shared/server/respond"
)

// RouteRegistrar attaches a feature's routes to the API group.
type RouteRegistrar interface {
	RegisterRoutes(rg *gin.RouterGroup)
}

// RouterDeps carries what NewRouter needs.
type RouterDeps struct {
	Config      config.Config
	Handlers    []RouteRegistrar
	RateLimiter *middleware.RateLimiter
	Health      *health.Service
}

// Groups that share a token bucket.
const (
	GroupDefault = "DEFAULT"
	GroupLLM     = "LLM"
)

var llmRoutes = map[string]struct{}{
	http.MethodPost + " /api/v1/wizard/analyze":     {},
	http.MethodPost + " /api/v1/wizard/payment":     {},
	http.MethodPost + " /api/v1/wizard/editor/save": {},
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	if gin.Mode() != gin.TestMode {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	perMin := deps.Config.LLMRatePerMin
	rules := map[string]middleware.RateLimitRule{
		GroupDefault: {Rate: 10, Burst: 30},
	}
	if perMin > 0 {
		rules[GroupLLM] = middleware.RateLimitRule{Rate: float64(perMin) / 60.0, Burst: perMin}
	}

	r.Use(
		middleware.RequestID(),
		middleware.Recovery(),
		middleware.CORS(deps.Config.CORSAllowOrigin),
		middleware.Session(),
		middleware.Logging("/api/v1/health"),
		middleware.RateLimit(middleware.RateLimitConfig{
			Rules:        rules,
			DefaultGroup: GroupDefault,
			GroupFor:     GroupFor,
			Limiter:      deps.RateLimiter,
		}),
	)

	api := r.Group("/api/v1")
	api.GET("/health", func(c *gin.Context) {
		st := deps.Health.Status(c.Request.Context())
		status := http.StatusOK
		if !st.OK {
			status = http.StatusServiceUnavailable
		}
		respond.JSON(c, status, st)
	})
	api.GET("/metrics", metrics.Handler())
	for _, h := range deps.Handlers {
		if h != nil {
			h.RegisterRoutes(api)
		}
	}

	return r
}

// GroupFor picks the rate limit bucket for a request.
func GroupFor(c *gin.Context) string {
	if _, ok := llmRoutes[c.Request.Method+" "+c.FullPath()]; ok {
		return GroupLLM
	}
	return GroupDefault
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":8080"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
