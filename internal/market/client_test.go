package market

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c := NewClient(zerolog.Nop(), srv.URL, "test-key", 3, 5*time.Second)
	return c
}

func TestDailyQuote(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("function"); got != "TIME_SERIES_DAILY" {
			t.Errorf("unexpected function param: %q", got)
		}
		if got := r.URL.Query().Get("apikey"); got != "test-key" {
			t.Errorf("unexpected apikey param: %q", got)
		}
		fmt.Fprintf(w, `{"Time Series (Daily)": {
			"2024-03-14": {"4. close": "150.00"},
			"2024-03-15": {"4. close": "153.00"}
		}}`)
	})
	c.now = func() time.Time { return time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC) }

	q, err := c.DailyQuote(context.Background(), "AAPL")
	if err != nil {
		t.Fatalf("DailyQuote: %v", err)
	}
	if q.Price != 153.00 {
		t.Fatalf("expected price 153.00, got %v", q.Price)
	}
	if q.Change != 3.00 {
		t.Fatalf("expected change 3.00, got %v", q.Change)
	}
	if q.ChangePct != 2.0 {
		t.Fatalf("expected change pct 2.0, got %v", q.ChangePct)
	}
	if q.Date != "2024-03-15" {
		t.Fatalf("expected latest trading day, got %q", q.Date)
	}
}

func TestDailyQuoteStaleData(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{"Time Series (Daily)": {
			"2024-03-01": {"4. close": "150.00"},
			"2024-03-02": {"4. close": "153.00"}
		}}`)
	})
	c.now = func() time.Time { return time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC) }

	_, err := c.DailyQuote(context.Background(), "AAPL")
	if !errors.Is(err, ErrStaleData) {
		t.Fatalf("expected ErrStaleData, got %v", err)
	}
}

func TestDailyQuoteNoData(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"Note": "rate limited"}`)
	})

	if _, err := c.DailyQuote(context.Background(), "AAPL"); err == nil {
		t.Fatal("expected error for empty series")
	}
}

func TestLatestEarnings(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("function"); got != "EARNINGS" {
			t.Errorf("unexpected function param: %q", got)
		}
		fmt.Fprint(w, `{"quarterlyEarnings": [
			{"fiscalDateEnding": "2024-03-31", "reportedDate": "2024-04-25", "reportedEPS": "1.52"},
			{"fiscalDateEnding": "2023-12-31", "reportedDate": "2024-01-25", "reportedEPS": "2.18"}
		]}`)
	})

	e, err := c.LatestEarnings(context.Background(), "AAPL")
	if err != nil {
		t.Fatalf("LatestEarnings: %v", err)
	}
	if e.FiscalDateEnding != "2024-03-31" || e.ReportedDate != "2024-04-25" {
		t.Fatalf("expected most recent entry, got %+v", e)
	}
}

func TestQuarterlyRevenue(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"quarterlyReports": [
			{"fiscalDateEnding": "2024-03-31", "totalRevenue": "90000000000"},
			{"fiscalDateEnding": "2023-12-31", "totalRevenue": "85000000000"}
		]}`)
	})

	rev, err := c.QuarterlyRevenue(context.Background(), "AAPL")
	if err != nil {
		t.Fatalf("QuarterlyRevenue: %v", err)
	}
	if rev.Current != 90e9 || rev.Previous != 85e9 {
		t.Fatalf("unexpected revenues: %+v", rev)
	}
	if rev.FiscalDateEnding != "2024-03-31" {
		t.Fatalf("unexpected fiscal date: %q", rev.FiscalDateEnding)
	}
}

func TestHasKey(t *testing.T) {
	t.Parallel()

	with := NewClient(zerolog.Nop(), "http://example.invalid", "k", 3, time.Second)
	without := NewClient(zerolog.Nop(), "http://example.invalid", "", 3, time.Second)
	if !with.HasKey() || without.HasKey() {
		t.Fatal("HasKey mismatch")
	}
}
