package controllers

import (
	"time"

	"github.com/shashiranjanraj/bazaar/config"
	"github.com/shashiranjanraj/bazaar/pkg/ctx"
)

// HealthController reports service liveness.
type HealthController struct {
	started time.Time
}

func NewHealthController() *HealthController {
	return &HealthController{started: time.Now()}
}

// Status is the unauthenticated liveness probe.
func (h *HealthController) Status(c *ctx.Context) {
	c.Success(map[string]any{
		"status":      "ok",
		"environment": config.AppEnv(),
		"uptime":      time.Since(h.started).Round(time.Second).String(),
	})
}
