package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/nerrad567/boardswarmd/internal/broker"
	"github.com/nerrad567/boardswarmd/internal/device"
	"github.com/nerrad567/boardswarmd/internal/registry"
)

// handleListDevices implements the "list" unary RPC for devices: the
// current view of every configured device.
func (s *Server) handleListDevices(w http.ResponseWriter, _ *http.Request) {
	entries := s.broker.Devices().Contents()
	views := make([]device.View, 0, len(entries))
	for _, e := range entries {
		views = append(views, e.Item.View())
	}
	writeJSON(w, http.StatusOK, views)
}

func (s *Server) lookupDevice(w http.ResponseWriter, r *http.Request) (*device.Device, bool) {
	name := chi.URLParam(r, "name")
	dev, ok := s.broker.Device(name)
	if !ok {
		writeError(w, broker.ErrDeviceNotFound)
		return nil, false
	}
	return dev, true
}

// handleGetDevice implements the "device_info" unary fetch: a single
// snapshot, not the streaming feed (see handleDeviceInfoStream for
// that).
func (s *Server) handleGetDevice(w http.ResponseWriter, r *http.Request) {
	dev, ok := s.lookupDevice(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, dev.View())
}

type deviceChangeModeRequest struct {
	Mode string `json:"mode"`
}

// handleDeviceChangeMode implements "device_change_mode".
func (s *Server) handleDeviceChangeMode(w http.ResponseWriter, r *http.Request) {
	dev, ok := s.lookupDevice(w, r)
	if !ok {
		return
	}

	var req deviceChangeModeRequest
	if err := decodeJSONBody(r, &req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}
	if req.Mode == "" {
		writeBadRequest(w, "mode is required")
		return
	}

	if err := dev.SetMode(r.Context(), req.Mode); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, dev.View())
}

// handleDeviceInfoStream implements the streaming "device_info" RPC:
// one WebSocket message per change to the device's view, starting with
// the current snapshot.
func (s *Server) handleDeviceInfoStream(w http.ResponseWriter, r *http.Request) {
	dev, ok := s.lookupDevice(w, r)
	if !ok {
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	ctx := r.Context()
	// Take the watch channel before reading each view, so a change that
	// lands between the view and the next wait is not missed.
	changed := dev.Watch()
	if err := writeWSJSON(conn, dev.View()); err != nil {
		return
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-changed:
			changed = dev.Watch()
			if err := writeWSJSON(conn, dev.View()); err != nil {
				return
			}
		}
	}
}

// handleMonitorStream implements the streaming "monitor" RPC: change
// events for one registry kind, selected by the "kind" query parameter
// (actuator, console, uploader or device).
func (s *Server) handleMonitorStream(w http.ResponseWriter, r *http.Request) {
	kind := r.URL.Query().Get("kind")

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	ctx := r.Context()

	switch kind {
	case "actuator":
		_ = streamMonitor(ctx, s.broker.Actuators(), conn, "actuator")
	case "console":
		_ = streamMonitor(ctx, s.broker.Consoles(), conn, "console")
	case "uploader":
		_ = streamMonitor(ctx, s.broker.Uploaders(), conn, "uploader")
	case "device":
		_ = streamMonitor(ctx, s.broker.Devices(), conn, "device")
	default:
		_ = writeWSJSON(conn, Error{Status: http.StatusBadRequest, Code: ErrCodeInvalidArgument, Message: "kind must be one of actuator, console, uploader, device"})
	}
}

// monitorEvent is the wire shape of one registry change event.
type monitorEvent struct {
	Kind    string      `json:"kind"`
	Event   string      `json:"event"`
	ID      uint64      `json:"id,omitempty"`
	Name    string      `json:"name,omitempty"`
	Entries []listEntry `json:"entries,omitempty"`
	Time    string      `json:"time"`
}

func nowRFC3339() string { return time.Now().UTC().Format(time.RFC3339) }

// streamMonitor opens reg's subscription, emits its current contents as
// a single combined "added" event, then forwards live Added/Removed/Lag
// events as they arrive, until ctx is cancelled or the write fails.
// Subscribing before taking Contents means no change between the
// snapshot and the first delivered event is missed.
func streamMonitor[T any](ctx context.Context, reg *registry.Registry[T], conn *websocket.Conn, kind string) error {
	sub := reg.Monitor()
	defer sub.Close()
	entries := reg.Contents()

	snapshot := monitorEvent{Kind: kind, Event: "added", Entries: listEntries(entries), Time: nowRFC3339()}
	if err := writeWSJSON(conn, snapshot); err != nil {
		return err
	}

	for {
		change, err := sub.Recv(ctx)
		if err != nil {
			return err
		}

		ev := monitorEvent{Kind: kind, ID: change.ID, Time: nowRFC3339()}
		switch change.Kind {
		case registry.Added:
			ev.Event = "added"
			ev.Name = change.Properties.Name()
		case registry.Removed:
			ev.Event = "removed"
		case registry.Lag:
			ev.Event = "lag"
		}
		if err := writeWSJSON(conn, ev); err != nil {
			return err
		}
	}
}
