package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/agromart/agromart-backend/api/responses"
	"github.com/agromart/agromart-backend/pkg/config"
	"github.com/agromart/agromart-backend/pkg/db"
	pkgerrors "github.com/agromart/agromart-backend/pkg/errors"
	"github.com/agromart/agromart-backend/pkg/logger"
	"github.com/agromart/agromart-backend/pkg/redis"
)

const readyTimeout = 2 * time.Second

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-AgroMart-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady reports ready only when Postgres and Redis both answer a ping.
func HealthReady(cfg *config.Config, logg *logger.Logger, dbPinger db.Pinger, redisPinger redis.Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-AgroMart-Env", cfg.App.Env)

		ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
		defer cancel()

		checks := map[string]any{"database": "ok", "redis": "ok"}
		var failed *pkgerrors.Error
		if dbPinger == nil {
			checks["database"] = "unconfigured"
			failed = pkgerrors.New(pkgerrors.CodeDependency, "database not configured")
		} else if err := dbPinger.Ping(ctx); err != nil {
			checks["database"] = "unavailable"
			failed = pkgerrors.Wrap(pkgerrors.CodeDependency, err, "database not ready")
		}
		if redisPinger == nil {
			checks["redis"] = "unconfigured"
			failed = pkgerrors.New(pkgerrors.CodeDependency, "redis not configured")
		} else if err := redisPinger.Ping(ctx); err != nil {
			checks["redis"] = "unavailable"
			failed = pkgerrors.Wrap(pkgerrors.CodeDependency, err, "redis not ready")
		}

		if failed != nil {
			responses.WriteError(logg.WithFields(r.Context(), checks), logg, w, failed)
			return
		}
		responses.WriteSuccess(w, map[string]any{"status": "ready", "checks": checks})
	}
}
