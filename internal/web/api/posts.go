package api

import (
	"net/http"
	"strconv"

	"github.com/marketbat/marketbat/internal/ledger"
)

func (a *API) handleListPosts(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		a.writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	opts := ledger.ListOpts{
		Bot:   r.URL.Query().Get("bot"),
		Slot:  r.URL.Query().Get("slot"),
		Limit: 50,
	}
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			opts.Limit = n
		}
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			opts.Offset = n
		}
	}

	posts, err := a.Posts.ListPosts(r.Context(), opts)
	if err != nil {
		a.Logger.Error().Err(err).Msg("failed to list posts")
		a.writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to list posts"})
		return
	}
	if posts == nil {
		posts = []*ledger.Post{}
	}
	a.writeJSON(w, http.StatusOK, posts)
}

func (a *API) handleGetPost(w http.ResponseWriter, r *http.Request, id string) {
	post, err := a.Posts.GetPost(r.Context(), id)
	if err != nil {
		a.Logger.Error().Err(err).Str("post_id", id).Msg("failed to get post")
		a.writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get post"})
		return
	}
	if post == nil {
		a.writeJSON(w, http.StatusNotFound, map[string]string{"error": "post not found"})
		return
	}
	a.writeJSON(w, http.StatusOK, post)
}
