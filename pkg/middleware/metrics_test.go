package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
)

// The metrics singleton is process-wide, so one test owns initialization
// and the rest of the suite reuses it.
func TestPrometheusMiddleware(t *testing.T) {
	registry := prometheus.NewRegistry()
	mw := Prometheus(WithRegistry(registry), WithNamespace("fresco"))

	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Write([]byte("ok"))
	}))

	for _, path := range []string{"/", "/", "/missing"} {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	}

	RecordPatches(3)
	RecordSessionCreate()
	RecordSessionCreate()
	RecordSessionDestroy()
	RecordLiveOpen()
	RecordLiveClose()
	RecordRenderError("/")
	RecordEndpointCall("bump", "ok")

	families, err := registry.Gather()
	if err != nil {
		t.Fatalf("Gather: %v", err)
	}
	byName := map[string]bool{}
	for _, f := range families {
		byName[f.GetName()] = true
	}

	for _, want := range []string{
		"fresco_requests_total",
		"fresco_request_duration_seconds",
		"fresco_patches_sent_total",
		"fresco_active_sessions",
		"fresco_live_connections",
		"fresco_render_errors_total",
		"fresco_endpoint_calls_total",
	} {
		if !byName[want] {
			t.Errorf("metric %s not registered", want)
		}
	}
}

// Websocket upgrades hijack the connection; the recorder wrapper must pass
// that capability through or every upgrade behind the middleware 500s.
func TestPrometheusAllowsWebsocketUpgrade(t *testing.T) {
	mw := Prometheus(WithRegistry(prometheus.NewRegistry()))

	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ws, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("Upgrade: %v", err)
			return
		}
		defer ws.Close()
		ws.WriteMessage(websocket.TextMessage, []byte("hello"))
	})))
	defer srv.Close()

	ws, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	if err != nil {
		t.Fatalf("dial through middleware: %v", err)
	}
	defer ws.Close()

	_, msg, err := ws.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(msg) != "hello" {
		t.Errorf("message = %q", msg)
	}
}

func TestStatusRecorderHijackDelegates(t *testing.T) {
	var _ http.Hijacker = (*statusRecorder)(nil)
	var _ http.Flusher = (*statusRecorder)(nil)

	// A plain recorder cannot hijack; the wrapper reports that instead of
	// panicking.
	sr := &statusRecorder{ResponseWriter: httptest.NewRecorder(), status: http.StatusOK}
	if _, _, err := sr.Hijack(); err == nil {
		t.Error("Hijack over a non-hijackable writer did not fail")
	}
	if got := sr.Unwrap(); got == nil {
		t.Error("Unwrap returned nil")
	}
}

func TestStatusRecorderDefaultsToOK(t *testing.T) {
	rec := httptest.NewRecorder()
	sr := &statusRecorder{ResponseWriter: rec, status: http.StatusOK}
	sr.Write([]byte("x"))
	if sr.status != http.StatusOK {
		t.Errorf("status = %d, want 200", sr.status)
	}

	sr = &statusRecorder{ResponseWriter: httptest.NewRecorder(), status: http.StatusOK}
	sr.WriteHeader(http.StatusTeapot)
	if sr.status != http.StatusTeapot {
		t.Errorf("status = %d, want 418", sr.status)
	}
}
