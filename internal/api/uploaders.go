package api

import (
	"io"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/nerrad567/boardswarmd/internal/device"
	"github.com/nerrad567/boardswarmd/internal/stream"
)

// handleListUploaders implements the "list" unary RPC for uploaders.
func (s *Server) handleListUploaders(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, listEntries(s.broker.Uploaders().Contents()))
}

func (s *Server) lookupUploaderID(w http.ResponseWriter, r *http.Request) (uint64, bool) {
	id, err := parseIDParam(r)
	if err != nil {
		writeBadRequest(w, "id must be a positive integer")
		return 0, false
	}
	if _, ok := s.broker.Uploaders().Lookup(id); !ok {
		writeError(w, device.ErrNotFound)
		return 0, false
	}
	return id, true
}

type uploaderInfoResponse struct {
	ID      uint64   `json:"id"`
	Targets []string `json:"targets"`
}

// handleUploaderInfo implements the "uploader_info" unary fetch: the
// set of named targets this uploader accepts.
func (s *Server) handleUploaderInfo(w http.ResponseWriter, r *http.Request) {
	id, ok := s.lookupUploaderID(w, r)
	if !ok {
		return
	}
	entry, ok := s.broker.Uploaders().Lookup(id)
	if !ok {
		writeError(w, device.ErrNotFound)
		return
	}
	writeJSON(w, http.StatusOK, uploaderInfoResponse{ID: id, Targets: entry.Item.Targets()})
}

// handleUploaderCommit implements "uploader_commit": finalising a
// (possibly multi-target) upload session already completed over the
// streaming endpoint.
func (s *Server) handleUploaderCommit(w http.ResponseWriter, r *http.Request) {
	id, ok := s.lookupUploaderID(w, r)
	if !ok {
		return
	}
	entry, ok := s.broker.Uploaders().Lookup(id)
	if !ok {
		writeError(w, device.ErrNotFound)
		return
	}
	if err := entry.Item.Commit(r.Context()); err != nil {
		writeErrorCode(w, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
}

type uploadProgressEvent struct {
	Written uint64 `json:"written"`
}

type uploadResultEvent struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// wsUploadReader adapts inbound binary WebSocket frames into an
// io.Reader: each binary frame is one chunk of firmware data, and an
// empty binary frame (or a read error, including a normal close) ends
// the stream.
type wsUploadReader struct {
	conn *websocket.Conn
	buf  []byte
}

func (r *wsUploadReader) Read(p []byte) (int, error) {
	for len(r.buf) == 0 {
		mt, data, err := r.conn.ReadMessage()
		if err != nil {
			return 0, io.EOF
		}
		if mt != websocket.BinaryMessage {
			continue
		}
		if len(data) == 0 {
			return 0, io.EOF
		}
		r.buf = data
	}
	n := copy(p, r.buf)
	r.buf = r.buf[n:]
	return n, nil
}

// handleUploadStream implements the streaming "upload" RPC: binary
// frames of firmware data in, JSON progress events out, on the same
// connection. The query parameters "target" and "length" select the
// upload target and advise the provider of the payload size.
func (s *Server) handleUploadStream(w http.ResponseWriter, r *http.Request) {
	id, ok := s.lookupUploaderID(w, r)
	if !ok {
		return
	}
	entry, ok := s.broker.Uploaders().Lookup(id)
	if !ok {
		writeError(w, device.ErrNotFound)
		return
	}

	target := r.URL.Query().Get("target")
	length, _ := parseUint(r.URL.Query().Get("length"))

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	progress := stream.NewUploadProgress()
	var writeMu sync.Mutex
	var wg sync.WaitGroup
	var lastWritten uint64
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-progress.Done():
				// Close and the final Update race on the same tick: drain
				// the one-slot buffer once more so the last reported value
				// is never silently dropped by select's random choice.
				select {
				case written := <-progress.Updates():
					lastWritten = written
					writeMu.Lock()
					_ = writeWSJSON(conn, uploadProgressEvent{Written: written})
					writeMu.Unlock()
				default:
				}
				return
			case written := <-progress.Updates():
				lastWritten = written
				writeMu.Lock()
				_ = writeWSJSON(conn, uploadProgressEvent{Written: written})
				writeMu.Unlock()
			}
		}
	}()

	reader := &wsUploadReader{conn: conn}
	uploadErr := entry.Item.Upload(r.Context(), target, reader, length, progress)
	progress.Close()
	wg.Wait()
	s.broker.Metrics().UploadBytesTotal.Add(float64(lastWritten))

	writeMu.Lock()
	defer writeMu.Unlock()
	if uploadErr != nil {
		_ = writeWSJSON(conn, uploadResultEvent{Status: "error", Message: uploadErr.Error()})
		return
	}
	_ = writeWSJSON(conn, uploadResultEvent{Status: "ok"})
}
