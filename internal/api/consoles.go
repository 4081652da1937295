package api

import (
	"net/http"

	"golang.org/x/sync/errgroup"

	"github.com/nerrad567/boardswarmd/internal/device"
	"github.com/nerrad567/boardswarmd/internal/stream"
)

// handleListConsoles implements the "list" unary RPC for consoles.
func (s *Server) handleListConsoles(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, listEntries(s.broker.Consoles().Contents()))
}

func (s *Server) lookupConsoleID(w http.ResponseWriter, r *http.Request) (uint64, bool) {
	id, err := parseIDParam(r)
	if err != nil {
		writeBadRequest(w, "id must be a positive integer")
		return 0, false
	}
	if _, ok := s.broker.Consoles().Lookup(id); !ok {
		writeError(w, device.ErrNotFound)
		return 0, false
	}
	return id, true
}

type consoleConfigureRequest struct {
	Params map[string]any `json:"params"`
}

// handleConsoleConfigure implements "console_configure".
func (s *Server) handleConsoleConfigure(w http.ResponseWriter, r *http.Request) {
	id, ok := s.lookupConsoleID(w, r)
	if !ok {
		return
	}

	var req consoleConfigureRequest
	if err := decodeJSONBody(r, &req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}

	entry, ok := s.broker.Consoles().Lookup(id)
	if !ok {
		writeError(w, device.ErrNotFound)
		return
	}

	if err := entry.Item.Configure(r.Context(), req.Params); err != nil {
		writeErrorCode(w, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
}

// handleConsoleStream implements the streaming "console" RPC: a
// bidirectional WebSocket carrying the console's raw byte streams,
// binary frames in both directions. Output and input are pumped
// concurrently; either direction ending (including a transport error)
// tears down the whole connection.
func (s *Server) handleConsoleStream(w http.ResponseWriter, r *http.Request) {
	id, ok := s.lookupConsoleID(w, r)
	if !ok {
		return
	}
	entry, ok := s.broker.Consoles().Lookup(id)
	if !ok {
		writeError(w, device.ErrNotFound)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() error { return stream.PumpOutput(ctx, entry.Item, wsSendBinary(conn)) })
	g.Go(func() error { return stream.PumpInput(ctx, entry.Item, wsRecvBinary(conn)) })

	if err := g.Wait(); err != nil {
		s.log.Debug("console stream ended", "console_id", id, "error", err)
	}
}
