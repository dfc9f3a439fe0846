package api

import (
	"net/http"
)

func (a *API) handleListSlots(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		a.writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}
	a.writeJSON(w, http.StatusOK, a.Slots())
}

func (a *API) handleGetSlot(w http.ResponseWriter, _ *http.Request, name string) {
	for _, slot := range a.Slots() {
		if slot.Name == name {
			a.writeJSON(w, http.StatusOK, slot)
			return
		}
	}
	a.writeJSON(w, http.StatusNotFound, map[string]string{"error": "unknown slot"})
}

func (a *API) handleTriggerSlot(w http.ResponseWriter, _ *http.Request, name string) {
	known := false
	for _, slot := range a.Slots() {
		if slot.Name == name {
			known = true
			break
		}
	}
	if !known {
		a.writeJSON(w, http.StatusNotFound, map[string]string{"error": "unknown slot"})
		return
	}

	a.TriggerSlot(name)
	a.writeJSON(w, http.StatusAccepted, map[string]string{"status": "triggered", "slot": name})
}
