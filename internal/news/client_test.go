package news

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(zerolog.Nop(), srv.URL, "test-key", 5, 5*time.Second)
}

func TestTopHeadlinePrefersFinanceKeywords(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query().Get("q")
		if !strings.Contains(q, "Apple") || !strings.Contains(q, "AAPL") {
			t.Errorf("query should mention company and symbol, got %q", q)
		}
		fmt.Fprint(w, `{"status": "ok", "articles": [
			{"title": "Apple CEO spotted at conference"},
			{"title": "Apple earnings beat expectations"},
			{"title": "New iPhone color announced"}
		]}`)
	})

	headline, err := c.TopHeadline(context.Background(), "AAPL", "Apple")
	if err != nil {
		t.Fatalf("TopHeadline: %v", err)
	}
	if headline != "Apple earnings beat expectations" {
		t.Fatalf("expected keyword headline preferred, got %q", headline)
	}
}

func TestTopHeadlineFallsBackToNewest(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"status": "ok", "articles": [
			{"title": "Apple CEO spotted at conference"},
			{"title": "New iPhone color announced"}
		]}`)
	})

	headline, err := c.TopHeadline(context.Background(), "AAPL", "Apple")
	if err != nil {
		t.Fatalf("TopHeadline: %v", err)
	}
	if headline != "Apple CEO spotted at conference" {
		t.Fatalf("expected first article as fallback, got %q", headline)
	}
}

func TestTopHeadlineCapsLength(t *testing.T) {
	t.Parallel()

	long := strings.Repeat("a", 150)
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{"status": "ok", "articles": [{"title": "%s"}]}`, long)
	})

	headline, err := c.TopHeadline(context.Background(), "AAPL", "Apple")
	if err != nil {
		t.Fatalf("TopHeadline: %v", err)
	}
	if len([]rune(headline)) != 103 || !strings.HasSuffix(headline, "...") {
		t.Fatalf("expected capped headline with ellipsis, got %d chars", len(headline))
	}
}

func TestTopHeadlineNoArticles(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"status": "ok", "articles": []}`)
	})

	if _, err := c.TopHeadline(context.Background(), "AAPL", "Apple"); err == nil {
		t.Fatal("expected error when no articles are returned")
	}
}

func TestSampleHeadline(t *testing.T) {
	t.Parallel()

	if got := SampleHeadline("AAPL"); got != "Apple reports strong iPhone sales growth" {
		t.Fatalf("unexpected sample for AAPL: %q", got)
	}
	if got := SampleHeadline("ZZZZ"); got != "ZZZZ shows positive momentum" {
		t.Fatalf("unexpected generic sample: %q", got)
	}
}
