package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/overchan/chanfront/internal/config"
	"github.com/overchan/chanfront/internal/fonts"
)

type contextKey string

const requestIDContextKey contextKey = "requestID"

// Handler exposes the frontend's configuration surface over HTTP.
type Handler struct {
	site  config.Site
	fonts *fonts.Store

	clock func() time.Time
}

// HandlerOption configures Handler behaviour.
type HandlerOption func(*Handler)

// WithClock overrides the time source, primarily for tests.
func WithClock(clock func() time.Time) HandlerOption {
	return func(h *Handler) {
		h.clock = clock
	}
}

// NewHandler constructs a Handler with the provided dependencies.
func NewHandler(site config.Site, fontStore *fonts.Store, opts ...HandlerOption) *Handler {
	h := &Handler{
		site:  site,
		fonts: fontStore,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	_ = r
	resp := healthResponse{
		Status:    "ok",
		Timestamp: h.clock(),
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleFrontend reports the site settings a board UI needs before it can
// render anything. No article data passes through here.
func (h *Handler) handleFrontend(w http.ResponseWriter, r *http.Request) {
	_ = r
	resp := frontendResponse{
		Name:         h.site.Name,
		Language:     h.site.Language,
		TimeZone:     h.site.TimeZone,
		Debug:        h.site.Debug,
		CaptchaFonts: h.fonts.Len(),
	}
	writeJSON(w, http.StatusOK, resp)
}

func requestIDFromContext(ctx context.Context) string {
	if v := ctx.Value(requestIDContextKey); v != nil {
		if id, ok := v.(string); ok {
			return id
		}
	}
	return ""
}

type healthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

type frontendResponse struct {
	Name         string `json:"name"`
	Language     string `json:"language"`
	TimeZone     string `json:"timeZone"`
	Debug        bool   `json:"debug"`
	CaptchaFonts int    `json:"captchaFonts"`
}

type errorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	if status != 0 {
		w.WriteHeader(status)
	}
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message, details string) {
	writeJSON(w, status, errorResponse{
		Error:   message,
		Details: details,
	})
}
