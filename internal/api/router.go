package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/nerrad567/boardswarmd/internal/registry"
)

// buildRouter assembles every route this server exposes: unary RPCs
// over plain HTTP, streaming RPCs over WebSocket, and /metrics.
func (s *Server) buildRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(s.requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoveryMiddleware)
	r.Use(s.bodySizeLimitMiddleware)

	r.Get("/health", s.handleHealth)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/devices", s.handleListDevices)
		r.Get("/devices/{name}", s.handleGetDevice)
		r.Post("/devices/{name}/mode", s.handleDeviceChangeMode)

		r.Get("/actuators", s.handleListActuators)
		r.Post("/actuators/{name}/mode", s.handleActuatorChangeMode)

		r.Get("/consoles", s.handleListConsoles)
		r.Post("/consoles/{id}/configure", s.handleConsoleConfigure)

		r.Get("/uploaders", s.handleListUploaders)
		r.Get("/uploaders/{id}", s.handleUploaderInfo)
		r.Post("/uploaders/{id}/commit", s.handleUploaderCommit)
	})

	r.Route("/ws", func(r chi.Router) {
		r.Get("/monitor", s.handleMonitorStream)
		r.Get("/devices/{name}", s.handleDeviceInfoStream)
		r.Get("/consoles/{id}", s.handleConsoleStream)
		r.Get("/uploaders/{id}/upload", s.handleUploadStream)
	})

	return r
}

// listEntry is the wire shape of one row of a "list" unary RPC
// response: the (id, name) pair spec §4.6 specifies for all four
// resource kinds.
type listEntry struct {
	ID   uint64 `json:"id"`
	Name string `json:"name"`
}

// listEntries projects a registry snapshot down to the (id, name)
// pairs the "list" RPC returns, shared by the per-kind list handlers.
func listEntries[T any](entries []registry.Entry[T]) []listEntry {
	out := make([]listEntry, 0, len(entries))
	for _, e := range entries {
		out = append(out, listEntry{ID: e.ID, Name: e.Properties.Name()})
	}
	return out
}

// handleHealth reports liveness.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"version": s.version,
		"uptime":  time.Since(s.startTime).String(),
	})
}
