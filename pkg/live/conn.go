package live

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/frescoui/fresco/pkg/canon"
	"github.com/frescoui/fresco/pkg/diff"
)

// RenderFunc produces the current document for the connection's page.
type RenderFunc func() (*canon.Document, error)

// Config carries per-connection tuning.
type Config struct {
	// Interval between re-render polls.
	Interval time.Duration

	// WriteTimeout bounds a single websocket write.
	WriteTimeout time.Duration

	// Logger receives connection lifecycle events.
	Logger *slog.Logger

	// OnPatches, when set, is called with the patch count of every message
	// sent. Used to feed metrics.
	OnPatches func(n int)
}

// ConnectionError wraps a failure on a live connection.
type ConnectionError struct {
	Path string
	Err  error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("live connection for %s: %v", e.Path, e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// Conn is one live connection. The render baseline lives here, not on the
// page: two tabs on the same page each hold their own baseline, so a state
// change reaches both even though only one triggered it.
type Conn struct {
	path   string
	ws     *websocket.Conn
	render RenderFunc
	cfg    Config
	logger *slog.Logger

	baseline     *canon.Document
	baselineHTML string

	closeOnce sync.Once
}

// NewConn builds a connection over an upgraded websocket. baseline is the
// document the browser currently displays, normally the page's last served
// snapshot; a nil baseline forces a full diff against an empty body on the
// first tick.
func NewConn(path string, ws *websocket.Conn, baseline *canon.Document, render RenderFunc, cfg Config) *Conn {
	if cfg.Interval <= 0 {
		cfg.Interval = 250 * time.Millisecond
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = 5 * time.Second
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	c := &Conn{
		path:   path,
		ws:     ws,
		render: render,
		cfg:    cfg,
		logger: logger.With("component", "live", "path", path),
	}
	if baseline == nil {
		baseline = &canon.Document{Body: canon.NewElement("body")}
	}
	c.baseline = baseline
	c.baselineHTML = baseline.Body.OuterHTML()
	return c
}

// Run drives the connection until the context is cancelled, the peer
// disconnects, or a write fails. It blocks; the read side runs in its own
// goroutine and only watches for close.
func (c *Conn) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	defer c.Close()

	go c.readPump(cancel)

	ticker := time.NewTicker(c.cfg.Interval)
	defer ticker.Stop()

	c.logger.Debug("live connection open")
	for {
		select {
		case <-ctx.Done():
			c.logger.Debug("live connection closed")
			return nil
		case <-ticker.C:
			if err := c.tick(); err != nil {
				return &ConnectionError{Path: c.path, Err: err}
			}
		}
	}
}

// tick re-renders, diffs against the baseline, and pushes patches. The
// baseline advances to the new document whenever the rendering changed,
// even when the diff produced no patches to send.
func (c *Conn) tick() error {
	doc, err := c.render()
	if err != nil {
		return fmt.Errorf("render: %w", err)
	}

	html := doc.Body.OuterHTML()
	if html == c.baselineHTML {
		return nil
	}

	patches := diff.Diff(c.baseline.Body, doc.Body)
	c.baseline = doc
	c.baselineHTML = html
	if len(patches) == 0 {
		return nil
	}

	msg, err := EncodeMessage(patches)
	if err != nil {
		return err
	}
	c.ws.SetWriteDeadline(time.Now().Add(c.cfg.WriteTimeout))
	if err := c.ws.WriteMessage(websocket.TextMessage, msg); err != nil {
		return fmt.Errorf("write: %w", err)
	}

	if c.cfg.OnPatches != nil {
		c.cfg.OnPatches(len(patches))
	}
	c.logger.Debug("patches sent", "count", len(patches))
	return nil
}

// readPump drains inbound frames so the websocket close handshake works.
// Clients do not send application data on this socket.
func (c *Conn) readPump(cancel context.CancelFunc) {
	defer cancel()
	for {
		if _, _, err := c.ws.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseGoingAway,
				websocket.CloseNormalClosure,
				websocket.CloseAbnormalClosure) {
				c.logger.Warn("read error", "error", err)
			}
			return
		}
	}
}

// Close tears the websocket down once.
func (c *Conn) Close() {
	c.closeOnce.Do(func() {
		deadline := time.Now().Add(time.Second)
		c.ws.SetWriteDeadline(deadline)
		c.ws.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), deadline)
		c.ws.Close()
	})
}
