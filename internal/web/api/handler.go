package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"github.com/marketbat/marketbat/internal/config"
	"github.com/marketbat/marketbat/internal/ledger"
	"github.com/marketbat/marketbat/internal/realtime"
	"github.com/marketbat/marketbat/internal/scheduler"
)

// API holds dependencies for all API handlers.
type API struct {
	Logger      zerolog.Logger
	StatusDir   string
	Posts       ledger.PostStore
	Events      *realtime.Broker
	GetConfig   func() *config.Config
	Slots       func() []scheduler.SlotInfo
	TriggerSlot func(slot string)
}

// RegisterRoutes registers all API routes on the given ServeMux.
func (a *API) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/v1/status/", a.routeStatus)
	mux.HandleFunc("/api/v1/status", a.handleListStatus)
	mux.HandleFunc("/api/v1/posts/", a.routePosts)
	mux.HandleFunc("/api/v1/posts", a.handleListPosts)
	mux.HandleFunc("/api/v1/slots/", a.routeSlots)
	mux.HandleFunc("/api/v1/slots", a.handleListSlots)
	mux.HandleFunc("/api/v1/events", a.handleEvents)
	mux.HandleFunc("/api/v1/config", a.handleConfig)
	mux.HandleFunc("/api/v1/health", a.handleHealth)
	mux.HandleFunc("/api/v1/stats", a.handleStats)
}

// routeStatus dispatches /api/v1/status/{bot} requests.
func (a *API) routeStatus(w http.ResponseWriter, r *http.Request) {
	bot := strings.TrimPrefix(r.URL.Path, "/api/v1/status/")
	if bot == "" {
		a.handleListStatus(w, r)
		return
	}
	if r.Method != http.MethodGet {
		a.writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}
	a.handleGetStatus(w, r, bot)
}

// routePosts dispatches /api/v1/posts/{id} requests.
func (a *API) routePosts(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/api/v1/posts/")
	if id == "" {
		a.handleListPosts(w, r)
		return
	}
	if r.Method != http.MethodGet {
		a.writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}
	a.handleGetPost(w, r, id)
}

// routeSlots dispatches /api/v1/slots/{name}[/action] requests.
func (a *API) routeSlots(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/v1/slots/")
	parts := strings.SplitN(path, "/", 2)
	name := parts[0]
	if name == "" {
		a.handleListSlots(w, r)
		return
	}

	action := ""
	if len(parts) > 1 {
		action = parts[1]
	}

	switch {
	case action == "run" && r.Method == http.MethodPost:
		a.handleTriggerSlot(w, r, name)
	case action == "" && r.Method == http.MethodGet:
		a.handleGetSlot(w, r, name)
	default:
		a.writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
	}
}

// writeJSON writes a JSON response with the given status code.
func (a *API) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		a.Logger.Error().Err(err).Msg("failed to write JSON response")
	}
}
