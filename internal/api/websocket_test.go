package api

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/nerrad567/boardswarmd/internal/config"
	"github.com/nerrad567/boardswarmd/internal/provider/fake"
)

func dialWS(t *testing.T, httpSrv *httptest.Server, path string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(httpSrv.URL, "http") + path
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dialing %s: %v", url, err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestHandleDeviceInfoStream_SendsSnapshotThenUpdate(t *testing.T) {
	s, b, cancel := newTestServer(t)
	defer cancel()

	b.LoadDevices(&config.Config{
		Devices: []config.DeviceConfig{
			{Name: "bench0", Consoles: []config.ConsoleConfig{
				{Name: "serial", Match: config.Match{"usb_id": "1234"}},
			}},
		},
	})

	httpSrv := httptest.NewServer(s.buildRouter())
	defer httpSrv.Close()

	conn := dialWS(t, httpSrv, "/ws/devices/bench0")

	var first struct {
		Consoles []struct {
			Bound bool `json:"bound"`
		} `json:"consoles"`
	}
	if err := conn.ReadJSON(&first); err != nil {
		t.Fatalf("reading snapshot: %v", err)
	}
	if first.Consoles[0].Bound {
		t.Fatal("expected console unbound in initial snapshot")
	}

	b.RegisterConsole("serial0", map[string]string{"usb_id": "1234"}, fake.NewConsole())

	_ = conn.SetReadDeadline(time.Now().Add(time.Second))
	var second struct {
		Consoles []struct {
			Bound bool `json:"bound"`
		} `json:"consoles"`
	}
	if err := conn.ReadJSON(&second); err != nil {
		t.Fatalf("reading update: %v", err)
	}
	if !second.Consoles[0].Bound {
		t.Fatal("expected console bound after binding update")
	}
}

func TestHandleMonitorStream_ActuatorEvents(t *testing.T) {
	s, b, cancel := newTestServer(t)
	defer cancel()

	httpSrv := httptest.NewServer(s.buildRouter())
	defer httpSrv.Close()

	conn := dialWS(t, httpSrv, "/ws/monitor?kind=actuator")
	time.Sleep(20 * time.Millisecond) // let the handler open its subscription before we publish

	_ = conn.SetReadDeadline(time.Now().Add(time.Second))
	var snapshot monitorEvent
	if err := conn.ReadJSON(&snapshot); err != nil {
		t.Fatalf("reading snapshot: %v", err)
	}
	if snapshot.Kind != "actuator" || snapshot.Event != "added" || len(snapshot.Entries) != 0 {
		t.Fatalf("snapshot = %+v, want kind=actuator event=added with no entries", snapshot)
	}

	b.RegisterActuator("pdu0", nil, &fake.Actuator{})

	var ev monitorEvent
	if err := conn.ReadJSON(&ev); err != nil {
		t.Fatalf("reading event: %v", err)
	}
	if ev.Kind != "actuator" || ev.Event != "added" || ev.Name != "pdu0" {
		t.Fatalf("event = %+v, want kind=actuator event=added name=pdu0", ev)
	}
}

func TestHandleMonitorStream_UnknownKind(t *testing.T) {
	s, _, cancel := newTestServer(t)
	defer cancel()

	httpSrv := httptest.NewServer(s.buildRouter())
	defer httpSrv.Close()

	conn := dialWS(t, httpSrv, "/ws/monitor?kind=bogus")

	_ = conn.SetReadDeadline(time.Now().Add(time.Second))
	var e Error
	if err := conn.ReadJSON(&e); err != nil {
		t.Fatalf("reading error: %v", err)
	}
	if e.Code != ErrCodeInvalidArgument {
		t.Fatalf("e.Code = %q, want %q", e.Code, ErrCodeInvalidArgument)
	}
}

func TestHandleConsoleStream_EchoesInput(t *testing.T) {
	s, b, cancel := newTestServer(t)
	defer cancel()

	c := fake.NewConsole()
	b.RegisterConsole("c0", nil, c)

	httpSrv := httptest.NewServer(s.buildRouter())
	defer httpSrv.Close()

	conn := dialWS(t, httpSrv, "/ws/consoles/1")

	if err := conn.WriteMessage(websocket.BinaryMessage, []byte("hello")); err != nil {
		t.Fatalf("writing input frame: %v", err)
	}

	_ = conn.SetReadDeadline(time.Now().Add(time.Second))
	mt, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("reading echoed frame: %v", err)
	}
	if mt != websocket.BinaryMessage || string(data) != "hello" {
		t.Fatalf("got (%d, %q), want binary \"hello\"", mt, data)
	}
}

func TestHandleUploadStream_ReportsProgressAndResult(t *testing.T) {
	s, b, cancel := newTestServer(t)
	defer cancel()

	u := fake.NewUploader("primary")
	b.RegisterUploader("u0", nil, u)

	httpSrv := httptest.NewServer(s.buildRouter())
	defer httpSrv.Close()

	conn := dialWS(t, httpSrv, "/ws/uploaders/1/upload?target=primary&length=5")

	payload := []byte("abcde")
	if err := conn.WriteMessage(websocket.BinaryMessage, payload); err != nil {
		t.Fatalf("writing payload frame: %v", err)
	}
	if err := conn.WriteMessage(websocket.BinaryMessage, nil); err != nil {
		t.Fatalf("writing EOF frame: %v", err)
	}

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))

	var lastProgress uploadProgressEvent
	var result uploadResultEvent
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			t.Fatalf("reading message: %v", err)
		}
		var probe map[string]json.RawMessage
		if err := json.Unmarshal(data, &probe); err != nil {
			t.Fatalf("unmarshalling message: %v", err)
		}
		if _, ok := probe["status"]; ok {
			if err := json.Unmarshal(data, &result); err != nil {
				t.Fatalf("unmarshalling result: %v", err)
			}
			break
		}
		if err := json.Unmarshal(data, &lastProgress); err != nil {
			t.Fatalf("unmarshalling progress: %v", err)
		}
	}

	if result.Status != "ok" {
		t.Fatalf("result = %+v, want status=ok", result)
	}
	if u.Written("primary") != uint64(len(payload)) {
		t.Fatalf("Written(primary) = %d, want %d", u.Written("primary"), len(payload))
	}
	if lastProgress.Written != uint64(len(payload)) {
		t.Fatalf("last observed progress event = %d, want %d", lastProgress.Written, len(payload))
	}
}
