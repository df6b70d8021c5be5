package handlers

import (
	"net/http"
	"time"

	"passport-admin-go/internal/pkg/circuitbreaker"

	"github.com/gin-gonic/gin"
)

// GuardedDependency is a dependency guarded by a circuit breaker.
type GuardedDependency interface {
	Name() string
	State() circuitbreaker.State
	IsHealthy() bool
}

type HealthHandler struct {
	breakers []GuardedDependency
	now      func() time.Time
}

func NewHealthHandler(breakers ...GuardedDependency) *HealthHandler {
	return &HealthHandler{breakers: breakers, now: time.Now}
}

// Health reports 503 while any guarded dependency is failing fast.
func (h *HealthHandler) Health(c *gin.Context) {
	healthy := true
	breakers := gin.H{}
	for _, p := range h.breakers {
		ok := p.IsHealthy()
		healthy = healthy && ok
		breakers[p.Name()] = gin.H{
			"status": ok,
			"state":  p.State().String(),
		}
	}

	status, code := "healthy", http.StatusOK
	if !healthy {
		status, code = "unhealthy", http.StatusServiceUnavailable
	}
	c.JSON(code, gin.H{
		"status":    status,
		"timestamp": h.now().Format(time.RFC3339),
		"details": gin.H{
			"circuit_breakers": breakers,
		},
	})
}
