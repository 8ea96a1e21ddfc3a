package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/slyyfoxx/foxxtalk/internal/metrics"
	"github.com/slyyfoxx/foxxtalk/internal/session"
)

const heartbeatInterval = 25 * time.Second

// EventsHandler keeps open pages in step with the session: the navigation
// bar is served as a fragment and re-fetched whenever the session stream
// reports a change.
type EventsHandler struct {
	*pages
	sessions *session.Manager
}

func newEventsHandler(p *pages, sessions *session.Manager) *EventsHandler {
	return &EventsHandler{pages: p, sessions: sessions}
}

// Nav serves GET /partials/nav.
func (h *EventsHandler) Nav(w http.ResponseWriter, r *http.Request) {
	renderFragment(w, "nav", h.layout(r, ""))
}

// Session serves GET /events/session, a server-sent event stream that emits
// a "session" event each time this browser's state changes (in any tab).
// Receivers re-read the state; the event data is only a hint.
func (h *EventsHandler) Session(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	rc := http.NewResponseController(w)

	scope := h.sessions.Scope(ctx)
	events := h.sessions.Broker().Subscribe(ctx, scope)
	metrics.SessionSubscribers.Inc()
	defer metrics.SessionSubscribers.Dec()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, "retry: 3000\n\n")
	if err := rc.Flush(); err != nil {
		h.logger.Warn("session stream cannot flush", "error", err)
		return
	}

	heartbeat := time.NewTicker(heartbeatInterval)
	defer heartbeat.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case e, ok := <-events:
			if !ok {
				return
			}
			fmt.Fprintf(w, "event: session\ndata: %s\n\n", e.Status)
		case <-heartbeat.C:
			fmt.Fprint(w, ": ping\n\n")
		}
		if err := rc.Flush(); err != nil {
			return
		}
	}
}
