package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/nerrad567/boardswarmd/internal/device"
	"github.com/nerrad567/boardswarmd/internal/provider"
	"github.com/nerrad567/boardswarmd/internal/registry"
)

func (s *Server) lookupActuatorByName(w http.ResponseWriter, r *http.Request) (registry.Entry[provider.Actuator], bool) {
	name := chi.URLParam(r, "name")
	entry, ok := s.broker.Actuators().FindByName(name)
	if !ok {
		writeError(w, device.ErrNotFound)
		return registry.Entry[provider.Actuator]{}, false
	}
	return entry, true
}

// handleListActuators implements the "list" unary RPC for actuators:
// the (id, name) pair of every currently registered actuator.
func (s *Server) handleListActuators(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, listEntries(s.broker.Actuators().Contents()))
}

type actuatorChangeModeRequest struct {
	Params map[string]any `json:"params"`
}

// handleActuatorChangeMode implements "actuator_change_mode": a direct
// call to one actuator, addressed by name (spec §4.6), bypassing any
// device's mode sequencing. Useful for manual control and diagnostics.
func (s *Server) handleActuatorChangeMode(w http.ResponseWriter, r *http.Request) {
	entry, ok := s.lookupActuatorByName(w, r)
	if !ok {
		return
	}

	var req actuatorChangeModeRequest
	if err := decodeJSONBody(r, &req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}

	if err := entry.Item.SetMode(r.Context(), req.Params); err != nil {
		writeErrorCode(w, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
}

func parseIDParam(r *http.Request) (uint64, error) {
	return parseUint(chi.URLParam(r, "id"))
}
