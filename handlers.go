package fresco

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"html"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	clientdist "github.com/frescoui/fresco/client/dist"
	"github.com/frescoui/fresco/pkg/bridge"
	"github.com/frescoui/fresco/pkg/canon"
	"github.com/frescoui/fresco/pkg/live"
	"github.com/frescoui/fresco/pkg/middleware"
	"github.com/frescoui/fresco/pkg/page"
	"github.com/frescoui/fresco/pkg/session"
)

// handlePage serves the full document: ensure a session, instantiate the
// page, render, and answer with the content-hash ETag or a 304 when the
// client already holds the current rendering.
func (a *App) handlePage(path string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		def := a.definition(path)
		sess := a.ensureSession(w, r)
		inst := sess.Instantiate(def)

		html, etag, err := a.renderFull(r.Context(), sess, def, inst)
		if err != nil {
			middleware.RecordRenderError(def.Path)
			a.logger.Error("render failed", "path", def.Path, "error", err)
		}

		w.Header().Set("ETag", etag)
		w.Header().Set("Cache-Control", "no-cache")
		if etagMatches(r.Header.Get("If-None-Match"), etag) {
			w.WriteHeader(http.StatusNotModified)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = io.WriteString(w, html)
	}
}

// handleEndpoint invokes a named page endpoint with the decoded request
// body and writes the JSON-encoded result.
func (a *App) handleEndpoint(path string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		def := a.definition(path)
		name := chi.URLParam(r, "endpoint")
		sess := a.ensureSession(w, r)
		inst := sess.Instantiate(def)

		fn, ok := inst.Endpoint(name)
		if !ok {
			middleware.RecordEndpointCall(name, "not_found")
			writeNotFound(w, &NotFoundError{Kind: "endpoint", Name: name})
			return
		}

		r.Body = http.MaxBytesReader(w, r.Body, a.config.MaxBodyBytes)
		body, err := a.decodeBody(r)
		if err != nil {
			middleware.RecordEndpointCall(name, "bad_request")
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}

		pctx := page.NewContext(r.Context(), def.Path, sess.Token, inst.Storage, a.config.Uploads, a.logger)
		result, err := fn(pctx, body)
		if err != nil {
			middleware.RecordEndpointCall(name, "error")
			a.logger.Error("endpoint failed", "path", def.Path, "endpoint", name, "error", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
			return
		}

		middleware.RecordEndpointCall(name, "ok")
		writeJSON(w, http.StatusOK, result)
	}
}

// handleSocket upgrades to the live patch stream for the page. The
// connection's baseline starts at the page's last served document; a page
// never served over HTTP is rendered once to seed it.
func (a *App) handleSocket(path string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		def := a.definition(path)
		sess := a.ensureSession(w, r)
		inst := sess.Instantiate(def)

		if doc, _, _ := inst.Served(); doc == nil {
			if _, _, err := a.renderFull(r.Context(), sess, def, inst); err != nil {
				middleware.RecordRenderError(def.Path)
			}
		}

		ws, err := a.upgrader.Upgrade(w, r, nil)
		if err != nil {
			a.logger.Warn("websocket upgrade failed", "path", def.Path, "error", err)
			return
		}

		baseline, _, _ := inst.Served()
		pctx := page.NewContext(r.Context(), def.Path, sess.Token, inst.Storage, a.config.Uploads, a.logger)
		conn := live.NewConn(def.Path, ws, baseline, func() (*canon.Document, error) {
			return a.renderDocument(pctx, def, inst)
		}, live.Config{
			Interval:     a.config.PollInterval,
			WriteTimeout: a.config.WriteTimeout,
			Logger:       a.logger,
			OnPatches:    middleware.RecordPatches,
		})

		middleware.RecordLiveOpen()
		defer middleware.RecordLiveClose()
		if err := conn.Run(r.Context()); err != nil {
			a.logger.Warn("live connection ended", "path", def.Path, "error", err)
		}
	}
}

// ensureSession resolves the session cookie, creating a session and setting
// the cookie when the token is absent or stale.
func (a *App) ensureSession(w http.ResponseWriter, r *http.Request) *session.Session {
	var token string
	if c, err := r.Cookie(a.config.CookieName); err == nil {
		token = c.Value
	}

	sess, created := a.sessions.Ensure(token)
	if created {
		middleware.RecordSessionCreate()
		http.SetCookie(w, &http.Cookie{
			Name:     a.config.CookieName,
			Value:    sess.Token,
			Path:     "/",
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
			Secure:   r.TLS != nil,
		})
	}
	return sess
}

// renderDocument re-renders the page into canonical form. A failing render
// degrades to the error document; the returned error is reserved for
// failures that leave no document at all.
func (a *App) renderDocument(pctx *page.Context, def *page.Definition, inst *session.PageInstance) (*canon.Document, error) {
	out, err := renderOutput(inst.Page, pctx)
	if err != nil {
		middleware.RecordRenderError(def.Path)
		return canon.ErrorDocument(err), nil
	}
	doc, _, err := canon.Normalize(out, inst.Resolves)
	if err != nil {
		middleware.RecordRenderError(def.Path)
	}
	return doc, nil
}

// renderFull renders the page to a complete HTML document, records it as
// the instance's served snapshot, and returns the document with its ETag.
// Render failures degrade to the error page; the error reports them to the
// caller for logging and metrics.
func (a *App) renderFull(ctx context.Context, sess *session.Session, def *page.Definition, inst *session.PageInstance) (string, string, error) {
	pctx := page.NewContext(ctx, def.Path, sess.Token, inst.Storage, a.config.Uploads, a.logger)

	out, renderErr := renderOutput(inst.Page, pctx)
	var (
		doc    *canon.Document
		inline map[string]bridge.Exposure
	)
	if renderErr == nil {
		doc, inline, renderErr = canon.Normalize(out, inst.Resolves)
	} else {
		doc = canon.ErrorDocument(renderErr)
	}

	exposures := make(map[string]bridge.Exposure, len(inst.Exposures())+len(inline))
	for name, exp := range inst.Exposures() {
		exposures[name] = exp
	}
	for name, exp := range inline {
		exposures[name] = exp
	}

	desc, dropped := bridge.Build(def.Path, exposures, inst.EndpointNames())
	for _, derr := range dropped {
		a.logger.Warn("exposure dropped", "path", def.Path, "error", derr)
	}

	html := composePage(def.Title, doc, desc)
	etag := contentETag(html)
	inst.SetServed(doc, html, etag)
	return html, etag, renderErr
}

// renderOutput calls Render with panic containment: a panicking page is a
// render failure, not a server crash.
func renderOutput(p page.Page, pctx *page.Context) (out any, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = &canon.RenderError{Reason: fmt.Sprintf("render panicked: %v", rec)}
		}
	}()
	return p.Render(pctx), nil
}

// composePage assembles the final document: fixed head (charset, viewport),
// the client runtime descriptor, the runtime script tag, and the canonical
// body. The runtime lives in the head so a body-level content patch can
// never unload it.
func composePage(title string, doc *canon.Document, desc *bridge.Descriptor) string {
	var b strings.Builder
	b.WriteString("<!doctype html>\n<html><head>")
	b.WriteString(`<meta charset="utf-8">`)
	b.WriteString(`<meta name="viewport" content="width=device-width, initial-scale=1">`)
	if title != "" {
		b.WriteString("<title>")
		b.WriteString(html.EscapeString(title))
		b.WriteString("</title>")
	}
	if desc != nil {
		if payload, err := desc.JSON(); err == nil {
			b.WriteString("<script>window.$fresco=")
			// keep the inline script inert against "</script>" in strings
			b.WriteString(strings.ReplaceAll(string(payload), "</", `<\/`))
			b.WriteString(";</script>")
		}
	}
	b.WriteString(`<script src="` + ClientScriptPath + `" defer></script>`)
	b.WriteString("</head>")
	b.WriteString(doc.Body.OuterHTML())
	b.WriteString("</html>")
	return b.String()
}

// decodeBody decodes an endpoint request body: a JSON object, or the
// multipart-field fallback with files routed through the upload store.
func (a *App) decodeBody(r *http.Request) (*page.Body, error) {
	ct := r.Header.Get("Content-Type")
	if strings.HasPrefix(ct, "multipart/form-data") {
		if err := r.ParseMultipartForm(a.config.MaxBodyBytes); err != nil {
			return nil, fmt.Errorf("parse multipart body: %w", err)
		}
		fields := make(map[string]any, len(r.MultipartForm.Value))
		for key, vals := range r.MultipartForm.Value {
			if len(vals) == 1 {
				fields[key] = vals[0]
			} else {
				fields[key] = vals
			}
		}
		var files []string
		if a.config.Uploads != nil {
			for _, headers := range r.MultipartForm.File {
				for _, fh := range headers {
					f, err := fh.Open()
					if err != nil {
						return nil, fmt.Errorf("open upload %s: %w", fh.Filename, err)
					}
					id, err := a.config.Uploads.Save(fh.Filename, fh.Header.Get("Content-Type"), fh.Size, f)
					f.Close()
					if err != nil {
						return nil, fmt.Errorf("store upload %s: %w", fh.Filename, err)
					}
					files = append(files, id)
				}
			}
		}
		return page.NewBody(fields, files), nil
	}

	data, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return page.NewBody(nil, nil), nil
	}
	var fields map[string]any
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, fmt.Errorf("decode body: %w", err)
	}
	return page.NewBody(fields, nil), nil
}

var clientScriptETag = func() string {
	sum := sha256.Sum256(clientdist.FrescoJS)
	return fmt.Sprintf("%q", fmt.Sprintf("%x", sum[:]))
}()

// serveClientScript serves the embedded browser runtime with ETag caching.
func (a *App) serveClientScript(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("ETag", clientScriptETag)
	w.Header().Set("Content-Type", "application/javascript; charset=utf-8")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	if a.config.DevMode {
		w.Header().Set("Cache-Control", "no-store")
	} else {
		w.Header().Set("Cache-Control", "public, max-age=0, must-revalidate")
	}

	if etagMatches(r.Header.Get("If-None-Match"), clientScriptETag) {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	_, _ = w.Write(clientdist.FrescoJS)
}

func contentETag(content string) string {
	sum := sha256.Sum256([]byte(content))
	return fmt.Sprintf("%q", fmt.Sprintf("%x", sum[:]))
}

func etagMatches(ifNoneMatch, etag string) bool {
	if ifNoneMatch == "" || etag == "" {
		return false
	}
	for _, part := range strings.Split(ifNoneMatch, ",") {
		candidate := strings.TrimSpace(part)
		if candidate == etag {
			return true
		}
		if strings.HasPrefix(candidate, "W/") && strings.TrimPrefix(candidate, "W/") == etag {
			return true
		}
	}
	return false
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
