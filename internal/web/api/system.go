package api

import (
	"net/http"

	"github.com/marketbat/marketbat/internal/bot"
)

func (a *API) handleHealth(w http.ResponseWriter, _ *http.Request) {
	a.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (a *API) handleConfig(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		a.writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}
	if a.GetConfig == nil {
		a.writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "config provider unavailable"})
		return
	}

	cfg := a.GetConfig()
	if cfg == nil {
		a.writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "config unavailable"})
		return
	}

	a.writeJSON(w, http.StatusOK, cfg)
}

type statsResponse struct {
	TotalPosts     int `json:"total_posts"`
	Successes      int `json:"successes"`
	Failures       int `json:"failures"`
	TrackedSymbols int `json:"tracked_symbols"`
}

func (a *API) handleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		a.writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	var resp statsResponse
	for _, name := range []string{bot.BotMarket, bot.BotRevenue} {
		stats, err := a.Posts.GetBotStats(r.Context(), name)
		if err != nil {
			a.Logger.Error().Err(err).Str("bot", name).Msg("failed to get bot stats")
			continue
		}
		resp.TotalPosts += stats.TotalPosts
		resp.Successes += stats.Successes
		resp.Failures += stats.Failures
	}
	if a.GetConfig != nil {
		if cfg := a.GetConfig(); cfg != nil {
			resp.TrackedSymbols = len(cfg.Watchlist)
		}
	}

	a.writeJSON(w, http.StatusOK, resp)
}
