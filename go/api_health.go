package shroomserver

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Check tests one dependency. A nil error means healthy.
type Check func(ctx context.Context) error

// HealthAPI reports liveness and, when checks are registered, dependency health.
type HealthAPI struct {
	checks map[string]Check
}

func NewHealthAPI(checks map[string]Check) HealthAPI {
	return HealthAPI{checks: checks}
}

type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// Get /healthz
func (api *HealthAPI) Healthz(c *gin.Context) {
	resp := HealthResponse{Status: "ok"}
	status := http.StatusOK
	if len(api.checks) > 0 {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		resp.Checks = make(map[string]string, len(api.checks))
		for name, check := range api.checks {
			if err := check(ctx); err != nil {
				resp.Checks[name] = err.Error()
				resp.Status = "degraded"
				status = http.StatusServiceUnavailable
				continue
			}
			resp.Checks[name] = "ok"
		}
	}
	c.JSON(status, resp)
}
