package api

import (
	"net/http"
	"strings"

	"golang.org/x/time/rate"

	"github.com/ayusman/mudra/internal/cursor"
)

// Cursor is the programmatic control surface of the running cursor.
type Cursor interface {
	CursorStatus() cursor.Status
	EnableCursor()
	DisableCursor()
	ToggleCursor() bool
}

// CursorHandler serves /api/cursor and its enable, disable and toggle
// actions. Actions share one token bucket so a stuck client cannot flap the
// cursor.
type CursorHandler struct {
	cursor  Cursor
	limiter *rate.Limiter
}

// NewCursorHandler creates a CursorHandler allowing limit actions per second
// with the given burst.
func NewCursorHandler(c Cursor, limit rate.Limit, burst int) *CursorHandler {
	return &CursorHandler{cursor: c, limiter: rate.NewLimiter(limit, burst)}
}

// ServeHTTP routes /api/cursor and /api/cursor/{action}.
func (h *CursorHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	action := strings.TrimPrefix(r.URL.Path, "/api/cursor")
	action = strings.Trim(action, "/")

	if action == "" {
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
			return
		}
		writeJSON(w, http.StatusOK, h.cursor.CursorStatus())
		return
	}

	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var run func()
	switch action {
	case "enable":
		run = h.cursor.EnableCursor
	case "disable":
		run = h.cursor.DisableCursor
	case "toggle":
		run = func() { h.cursor.ToggleCursor() }
	default:
		writeError(w, http.StatusNotFound, "Unknown cursor action")
		return
	}

	if !h.limiter.Allow() {
		w.Header().Set("Retry-After", "1")
		writeError(w, http.StatusTooManyRequests, "Too many requests")
		return
	}

	run()
	writeJSON(w, http.StatusOK, h.cursor.CursorStatus())
}
