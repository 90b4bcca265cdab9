package fresco

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/frescoui/fresco/pkg/upload"
)

// Config is the application configuration. Zero values fall back to the
// defaults from DefaultConfig when passed to New.
type Config struct {
	// Addr is the listen address for Run. Default ":8080".
	Addr string

	// PollInterval is how often each live connection re-renders its page.
	// Default 250ms.
	PollInterval time.Duration

	// ReplaceGrace is how long a replaced page instance survives before
	// eviction, letting in-flight requests finish. Default 2s.
	ReplaceGrace time.Duration

	// CookieName is the session cookie name. Default "base".
	CookieName string

	// WriteTimeout bounds a single websocket write. Default 5s.
	WriteTimeout time.Duration

	// MaxBodyBytes caps endpoint request bodies. Default 10 MiB.
	MaxBodyBytes int64

	// ReadBufferBytes and WriteBufferBytes size the websocket buffers.
	// Default 4096 each.
	ReadBufferBytes  int
	WriteBufferBytes int

	// CheckOrigin validates websocket upgrade origins. Nil allows
	// same-origin only, unless DevMode is set.
	CheckOrigin func(r *http.Request) bool

	// DevMode relaxes origin checking and disables client script caching.
	// Never enable in production.
	DevMode bool

	// Logger is the structured logger. Default slog.Default().
	Logger *slog.Logger

	// Middleware wraps every request, outermost first. Applied once at
	// construction; see pkg/middleware for metrics and tracing.
	Middleware []func(http.Handler) http.Handler

	// Uploads receives files posted through the multipart endpoint
	// fallback. Nil disables file handling; multipart fields still decode.
	Uploads upload.Store
}

// DefaultConfig returns the configuration New starts from.
func DefaultConfig() Config {
	return Config{
		Addr:             ":8080",
		PollInterval:     250 * time.Millisecond,
		ReplaceGrace:     2 * time.Second,
		CookieName:       "base",
		WriteTimeout:     5 * time.Second,
		MaxBodyBytes:     10 << 20,
		ReadBufferBytes:  4096,
		WriteBufferBytes: 4096,
	}
}

func (c *Config) applyDefaults() {
	def := DefaultConfig()
	if c.Addr == "" {
		c.Addr = def.Addr
	}
	if c.PollInterval <= 0 {
		c.PollInterval = def.PollInterval
	}
	if c.ReplaceGrace <= 0 {
		c.ReplaceGrace = def.ReplaceGrace
	}
	if c.CookieName == "" {
		c.CookieName = def.CookieName
	}
	if c.WriteTimeout <= 0 {
		c.WriteTimeout = def.WriteTimeout
	}
	if c.MaxBodyBytes <= 0 {
		c.MaxBodyBytes = def.MaxBodyBytes
	}
	if c.ReadBufferBytes <= 0 {
		c.ReadBufferBytes = def.ReadBufferBytes
	}
	if c.WriteBufferBytes <= 0 {
		c.WriteBufferBytes = def.WriteBufferBytes
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}
