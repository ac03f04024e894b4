package controllers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/hellofresh/health-go/v5"

	"github.com/angelmondragon/storefront-commerce/api/responses"
	"github.com/angelmondragon/storefront-commerce/pkg/config"
)

// Pinger is a dependency that can report its own reachability.
type Pinger interface {
	Ping(ctx context.Context) error
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Storefront-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// NewReadiness builds the readiness checker. A nil redis pinger means redis is
// not configured and is left out of the report.
func NewReadiness(database Pinger, redis Pinger) (*health.Health, error) {
	checks := []health.Config{{
		Name:    "database",
		Timeout: 3 * time.Second,
		Check:   database.Ping,
	}}
	if redis != nil {
		checks = append(checks, health.Config{
			Name:    "redis",
			Timeout: 2 * time.Second,
			Check:   redis.Ping,
		})
	}

	h, err := health.New(
		health.WithComponent(health.Component{Name: "storefront-api", Version: "v1"}),
		health.WithChecks(checks...),
	)
	if err != nil {
		return nil, fmt.Errorf("create readiness checker: %w", err)
	}
	return h, nil
}

func HealthReady(cfg *config.Config, h *health.Health) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Storefront-Env", cfg.App.Env)
		h.HandlerFunc(w, r)
	}
}
