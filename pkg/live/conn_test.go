package live

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/frescoui/fresco/pkg/canon"
)

func parseBody(t *testing.T, markup string) *canon.Document {
	t.Helper()
	doc, err := canon.ParseDocument(markup)
	if err != nil {
		t.Fatalf("ParseDocument: %v", err)
	}
	return doc
}

// dialConn upgrades one websocket pair and runs a Conn over the server side.
func dialConn(t *testing.T, baseline *canon.Document, render RenderFunc, onPatches func(int)) *websocket.Conn {
	t.Helper()

	upgrader := websocket.Upgrader{}
	done := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ws, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade: %v", err)
			return
		}
		conn := NewConn("/", ws, baseline, render, Config{
			Interval:  10 * time.Millisecond,
			OnPatches: onPatches,
		})
		conn.Run(context.Background())
		close(done)
	}))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	client, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() {
		client.Close()
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Error("server connection did not stop after client close")
		}
	})
	return client
}

func TestConnSendsPatchesOnChange(t *testing.T) {
	baseline := parseBody(t, `<div><span>A</span></div>`)

	var flip atomic.Bool
	render := func() (*canon.Document, error) {
		if flip.Load() {
			return parseBody(t, `<div><span>B</span></div>`), nil
		}
		return parseBody(t, `<div><span>A</span></div>`), nil
	}

	var patchCount atomic.Int64
	client := dialConn(t, baseline, render, func(n int) { patchCount.Add(int64(n)) })

	flip.Store(true)
	client.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, msg, err := client.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}

	patches, err := DecodeMessage(msg)
	if err != nil {
		t.Fatalf("DecodeMessage: %v", err)
	}
	if len(patches) != 1 {
		t.Fatalf("got %d patches, want 1: %v", len(patches), patches)
	}
	if patches[0].Content == nil || *patches[0].Content != "<span>B</span>" {
		t.Errorf("content = %v, want <span>B</span>", patches[0].Content)
	}
	if patchCount.Load() == 0 {
		t.Error("OnPatches hook not called")
	}
}

func TestConnQuietWhileUnchanged(t *testing.T) {
	baseline := parseBody(t, `<p>still</p>`)
	render := func() (*canon.Document, error) {
		return parseBody(t, `<p>still</p>`), nil
	}

	client := dialConn(t, baseline, render, nil)
	client.SetReadDeadline(time.Now().Add(150 * time.Millisecond))
	if _, _, err := client.ReadMessage(); err == nil {
		t.Error("received a message for an unchanged page")
	}
}

func TestConnBaselineAdvancesWithoutSend(t *testing.T) {
	// The first re-render differs from the baseline only in a value
	// attribute: no patch to send, but the baseline must advance so later
	// ticks do not re-diff against stale state.
	c := NewConn("/", nil, parseBody(t, `<input value="a">`), nil, Config{})

	c.render = func() (*canon.Document, error) {
		return parseBody(t, `<input value="b">`), nil
	}
	if err := c.tick(); err != nil {
		t.Fatalf("tick: %v", err)
	}
	if c.baselineHTML != `<body><input value="b"></body>` {
		t.Errorf("baseline = %q, did not advance", c.baselineHTML)
	}
}

func TestConnStopsOnContextCancel(t *testing.T) {
	upgrader := websocket.Upgrader{}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ws, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		conn := NewConn("/", ws, nil, func() (*canon.Document, error) {
			return parseBody(t, `<p>x</p>`), nil
		}, Config{Interval: 10 * time.Millisecond})
		done <- conn.Run(ctx)
	}))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	client, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer client.Close()

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run returned %v on cancellation, want nil", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not stop on context cancellation")
	}
}

func TestConnectionErrorWraps(t *testing.T) {
	inner := context.DeadlineExceeded
	err := &ConnectionError{Path: "/dash", Err: inner}
	if !strings.Contains(err.Error(), "/dash") {
		t.Errorf("error %q does not name the path", err.Error())
	}
	if err.Unwrap() != inner {
		t.Error("Unwrap lost the cause")
	}
}
