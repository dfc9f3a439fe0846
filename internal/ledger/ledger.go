// Package ledger persists the history of published posts.
package ledger

import (
	"context"
	"time"
)

// Post records one publish attempt and its outcome.
type Post struct {
	ID        string    `json:"id"`
	Bot       string    `json:"bot"`  // "market", "revenue"
	Slot      string    `json:"slot"` // "morning", "evening", "revenue"
	Status    string    `json:"status"`
	Message   string    `json:"message,omitempty"` // the text that was (or would have been) posted
	Symbols   int       `json:"symbols"`           // number of symbols covered by the post
	ErrorMsg  string    `json:"error_msg,omitempty"`
	Quarter   string    `json:"quarter,omitempty"` // fiscal quarter ending date, revenue posts only
	Symbol    string    `json:"symbol,omitempty"`  // single symbol, revenue posts only
	PostedAt  time.Time `json:"posted_at"`
	CreatedAt time.Time `json:"created_at"`
}

// ListOpts controls filtering and pagination for post queries.
type ListOpts struct {
	Bot    string
	Slot   string
	Limit  int
	Offset int
}

// BotStats holds aggregate posting statistics for one bot.
type BotStats struct {
	TotalPosts int        `json:"total_posts"`
	Successes  int        `json:"successes"`
	Failures   int        `json:"failures"`
	LastPost   *time.Time `json:"last_post"`
}

// PostStore is the interface for persisting and querying posts.
type PostStore interface {
	RecordPost(ctx context.Context, post *Post) error
	GetPost(ctx context.Context, id string) (*Post, error)
	ListPosts(ctx context.Context, opts ListOpts) ([]*Post, error)
	GetBotStats(ctx context.Context, bot string) (*BotStats, error)
	HasRevenuePost(ctx context.Context, symbol, quarter string) (bool, error)
}
