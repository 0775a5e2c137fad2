package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"thermal_regulator/internal/models"
	"thermal_regulator/internal/service"
	"thermal_regulator/internal/telemetry"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

type envelope struct {
	Type  string          `json:"type"`
	Data  json.RawMessage `json:"data"`
	Error string          `json:"error"`
}

// --- parseInterval unit tests ---

func TestParseInterval(t *testing.T) {
	h := NewHandler(&service.Service{}, nil, nil)

	cases := []struct {
		name string
		u    string
		want time.Duration
	}{
		{"default_when_missing", "/ws", 0},
		{"interval_string_valid", "/ws?interval=200ms", 200 * time.Millisecond},
		{"interval_ms_valid", "/ws?interval_ms=150", 150 * time.Millisecond},
		{"interval_too_large", "/ws?interval=20s", 0},
		{"interval_ms_too_large", "/ws?interval_ms=20000", 0},
		{"interval_invalid_string", "/ws?interval=bogus", 0},
		{"interval_ms_invalid", "/ws?interval_ms=NaN", 0},
		{"both_present_interval_wins", "/ws?interval=2s&interval_ms=150", 2 * time.Second},
		{"both_present_invalid_interval_ms_used", "/ws?interval=bogus&interval_ms=250", 250 * time.Millisecond},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, tc.u, nil)
			c, _ := gin.CreateTestContext(w)
			c.Request = req
			got := h.parseInterval(c)
			if got != tc.want {
				t.Fatalf("got %v, want %v for %s", got, tc.want, tc.u)
			}
		})
	}
}

// --- websocket integration tests ---

func dialWS(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	u, _ := url.Parse(srv.URL)
	u.Scheme = "ws"
	u.Path = "/ws"
	dialer := websocket.Dialer{HandshakeTimeout: 2 * time.Second}
	conn, _, err := dialer.Dial(u.String(), nil)
	if err != nil {
		t.Fatalf("dial error: %v", err)
	}
	return conn
}

func readEnvelope(t *testing.T, conn *websocket.Conn) envelope {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(time.Second))
	var env envelope
	if err := conn.ReadJSON(&env); err != nil {
		t.Fatalf("read: %v", err)
	}
	return env
}

func TestWebSocket_InitialStateThenNotifications(t *testing.T) {
	mon := &mockMonitoring{state: models.ControllerSnapshot{
		ReadingC: 23.4,
		SensorOK: true,
		Mode:     models.ModeIdle,
	}}
	s := &service.Service{Monitoring: mon}
	hub := telemetry.NewHub(4)

	r := gin.New()
	h := NewHandler(s, hub, nil)
	r.GET("/ws", h.wsConnect)

	srv := httptest.NewServer(r)
	defer srv.Close()

	conn := dialWS(t, srv)
	defer conn.Close()

	env := readEnvelope(t, conn)
	if env.Type != "state" || len(env.Data) == 0 {
		t.Fatalf("bad envelope: %+v", env)
	}
	var st models.ControllerSnapshot
	if err := json.Unmarshal(env.Data, &st); err != nil {
		t.Fatalf("unmarshal state: %v", err)
	}
	if st.Mode != models.ModeIdle || st.ReadingC != 23.4 {
		t.Fatalf("unexpected state: %+v", st)
	}

	// The subscription is registered before the initial write, so the hub already counts us.
	if !hub.Connected() {
		t.Fatalf("expected hub to report a connected subscriber")
	}

	heating := models.ControllerSnapshot{
		ReadingC: 80.26,
		SensorOK: true,
		TargetC:  100,
		Outputs:  models.ActuatorOutputs{HeaterEnabled: true, Position: 100},
		Mode:     models.ModeHeating,
	}
	if err := hub.Notify(heating); err != nil {
		t.Fatalf("notify: %v", err)
	}

	env = readEnvelope(t, conn)
	if env.Type != "notification" {
		t.Fatalf("expected notification, got %+v", env)
	}
	var text string
	if err := json.Unmarshal(env.Data, &text); err != nil {
		t.Fatalf("unmarshal notification: %v", err)
	}
	if text != telemetry.Notification(heating) {
		t.Fatalf("notification text: got %q, want %q", text, telemetry.Notification(heating))
	}

	env = readEnvelope(t, conn)
	if env.Type != "state" {
		t.Fatalf("expected state after notification, got %+v", env)
	}
	if err := json.Unmarshal(env.Data, &st); err != nil {
		t.Fatalf("unmarshal state: %v", err)
	}
	if st.Mode != models.ModeHeating || st.TargetC != 100 {
		t.Fatalf("unexpected streamed state: %+v", st)
	}
}

func TestWebSocket_DisconnectDetachesFromHub(t *testing.T) {
	hub := telemetry.NewHub(1)
	r := gin.New()
	h := NewHandler(&service.Service{Monitoring: &mockMonitoring{}}, hub, nil)
	r.GET("/ws", h.wsConnect)

	srv := httptest.NewServer(r)
	defer srv.Close()

	conn := dialWS(t, srv)
	readEnvelope(t, conn)
	_ = conn.Close()

	deadline := time.Now().Add(2 * time.Second)
	for hub.Connected() {
		if time.Now().After(deadline) {
			t.Fatalf("hub still reports a subscriber after the client closed")
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestWebSocket_NoHubIsUnavailable(t *testing.T) {
	r := gin.New()
	h := NewHandler(&service.Service{Monitoring: &mockMonitoring{}}, nil, nil)
	r.GET("/ws", h.wsConnect)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ws", nil))
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", w.Code)
	}
}

func TestWebSocket_InitialGetStateError_Closes(t *testing.T) {
	mon := &mockMonitoring{err: errors.New("boom")}
	s := &service.Service{Monitoring: mon}

	r := gin.New()
	h := NewHandler(s, telemetry.NewHub(1), nil)
	r.GET("/ws", h.wsConnect)

	srv := httptest.NewServer(r)
	defer srv.Close()

	conn := dialWS(t, srv)
	defer conn.Close()

	// The server closes immediately after failing the initial GetState
	_ = conn.SetReadDeadline(time.Now().Add(500 * time.Millisecond))
	var raw json.RawMessage
	if err := conn.ReadJSON(&raw); err == nil {
		t.Fatalf("expected read error (closed), got message: %s", string(raw))
	}
}
