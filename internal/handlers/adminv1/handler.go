// Package adminv1 exposes the HTTP admin surface: arena inspection, force
// start/stop, config reload and debug counts. All error responses are
// serialized through the errors package's code to HTTP status mapping.
package adminv1

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/bixgamer707/hordes/internal/errors"
	"github.com/bixgamer707/hordes/internal/registry"
)

// Config holds the dependencies for the admin handler.
type Config struct {
	Registry *registry.Registry

	// Reload re-reads configuration and swaps the arena set. Wired by the
	// server so the handler stays ignorant of the config layout.
	Reload func() error

	// EngineConnected reports whether the engine gateway has a live
	// connection, surfaced on the health endpoint.
	EngineConnected func() bool
}

// Validate ensures all required dependencies are provided.
func (c *Config) Validate() error {
	vb := errors.NewValidationBuilder()

	if c.Registry == nil {
		vb.RequiredField("Registry")
	}
	if c.Reload == nil {
		vb.RequiredField("Reload")
	}
	if c.EngineConnected == nil {
		vb.RequiredField("EngineConnected")
	}

	return vb.Build()
}

// Handler serves the admin API.
type Handler struct {
	registry        *registry.Registry
	reload          func() error
	engineConnected func() bool
}

// NewHandler creates the admin handler.
func NewHandler(cfg *Config) (*Handler, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}

	return &Handler{
		registry:        cfg.Registry,
		reload:          cfg.Reload,
		engineConnected: cfg.EngineConnected,
	}, nil
}

// Register installs the admin routes on the mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /v1/arenas", h.listArenas)
	mux.HandleFunc("GET /v1/arenas/{id}", h.getArena)
	mux.HandleFunc("POST /v1/arenas/{id}/start", h.startArena)
	mux.HandleFunc("POST /v1/arenas/{id}/stop", h.stopArena)
	mux.HandleFunc("POST /v1/arenas/{id}/next-wave", h.nextWave)
	mux.HandleFunc("POST /v1/arenas/{id}/teleport/{player}", h.teleport)
	mux.HandleFunc("GET /v1/debug/counts", h.debugCounts)
	mux.HandleFunc("POST /v1/reload", h.reloadConfig)
	mux.HandleFunc("GET /healthz", h.health)
}

func (h *Handler) listArenas(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"arenas": h.registry.List()})
}

func (h *Handler) getArena(w http.ResponseWriter, r *http.Request) {
	a, err := h.registry.Get(r.PathValue("id"))
	if err != nil {
		errors.WriteHTTP(w, err)
		return
	}
	writeJSON(w, http.StatusOK, a.Snapshot())
}

func (h *Handler) startArena(w http.ResponseWriter, r *http.Request) {
	a, err := h.registry.Get(r.PathValue("id"))
	if err != nil {
		errors.WriteHTTP(w, err)
		return
	}
	if err := a.ForceStart(); err != nil {
		errors.WriteHTTP(w, err)
		return
	}
	slog.Info("arena force-started", "arena_id", a.ID())
	writeJSON(w, http.StatusOK, a.Snapshot())
}

func (h *Handler) stopArena(w http.ResponseWriter, r *http.Request) {
	a, err := h.registry.Get(r.PathValue("id"))
	if err != nil {
		errors.WriteHTTP(w, err)
		return
	}
	if err := a.ForceStop(); err != nil {
		errors.WriteHTTP(w, err)
		return
	}
	slog.Info("arena force-stopped", "arena_id", a.ID())
	writeJSON(w, http.StatusOK, a.Snapshot())
}

func (h *Handler) nextWave(w http.ResponseWriter, r *http.Request) {
	a, err := h.registry.Get(r.PathValue("id"))
	if err != nil {
		errors.WriteHTTP(w, err)
		return
	}
	if !a.TriggerNextWave() {
		errors.WriteHTTP(w, errors.FailedPrecondition("arena is not awaiting a wave trigger"))
		return
	}
	slog.Info("wave advanced via admin api", "arena_id", a.ID())
	writeJSON(w, http.StatusOK, a.Snapshot())
}

func (h *Handler) teleport(w http.ResponseWriter, r *http.Request) {
	a, err := h.registry.Get(r.PathValue("id"))
	if err != nil {
		errors.WriteHTTP(w, err)
		return
	}
	playerID := r.PathValue("player")
	if err := a.TeleportTo(playerID); err != nil {
		errors.WriteHTTP(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"player": playerID, "arena": a.ID()})
}

func (h *Handler) debugCounts(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.registry.Counts())
}

func (h *Handler) reloadConfig(w http.ResponseWriter, r *http.Request) {
	if err := h.reload(); err != nil {
		errors.WriteHTTP(w, err)
		return
	}
	slog.Info("configuration reloaded via admin api")
	writeJSON(w, http.StatusOK, map[string]any{"arenas": h.registry.Counts().Arenas})
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":           "ok",
		"engine_connected": h.engineConnected(),
	})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Warn("failed to encode admin response", "error", err)
	}
}
