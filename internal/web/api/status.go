package api

import (
	"net/http"

	"github.com/marketbat/marketbat/internal/monitor"
)

func (a *API) handleListStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		a.writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}
	a.writeJSON(w, http.StatusOK, monitor.LoadAll(a.Logger, a.StatusDir))
}

func (a *API) handleGetStatus(w http.ResponseWriter, _ *http.Request, bot string) {
	for _, state := range monitor.LoadAll(a.Logger, a.StatusDir) {
		if state.BotName == bot {
			a.writeJSON(w, http.StatusOK, state)
			return
		}
	}
	a.writeJSON(w, http.StatusNotFound, map[string]string{"error": "unknown bot"})
}
