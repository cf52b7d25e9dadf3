// internal/server/server.go
//
// Read-only inspection endpoint for a resolved GlobalConfig.
//
// Context
// -------
// Operators point a browser or curl at the running appconf serve process to
// see which environment won and what each environment resolved to:
//
//	GET /healthz        – 204 once the configuration is loaded
//	GET /config         – active environment's Config as JSON
//	GET /config/{env}   – one environment by any alias (dev, production, …)
//	GET /metrics        – Prometheus exposition
//
// Notes
// -----
// • The GlobalConfig is captured at construction and never reloaded.
// • Oxford commas, two spaces after periods.
package server

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/yanizio/appconf/internal/config"
)

// Router returns the inspection handler for g.
func Router(g config.GlobalConfig, log *zap.SugaredLogger) http.Handler {
	if log == nil {
		log = zap.S()
	}

	r := chi.NewRouter()
	r.Use(Security)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	r.Get("/config", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, g.Active(), log)
	})

	r.Get("/config/{env}", func(w http.ResponseWriter, req *http.Request) {
		env, err := config.ParseEnvironment(chi.URLParam(req, "env"))
		if err != nil {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		writeJSON(w, g.Get(env), log)
	})

	r.Method(http.MethodGet, "/metrics", promhttp.Handler())
	return r
}

func writeJSON(w http.ResponseWriter, v any, log *zap.SugaredLogger) {
	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		log.Warnw("inspection response failed", "err", err)
	}
}
