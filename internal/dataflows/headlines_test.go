package dataflows

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

const headlinePage = `<html><body>
<article><a href="/article/1">Crypto markets rally to record highs</a></article>
<article><a href="/article/2">Regulators fear DeFi selloff</a></article>
</body></html>`

func TestFetchHeadlines(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(headlinePage))
	}))
	defer srv.Close()

	hc := NewHeadlineClient(srv.URL, "test-agent")
	heads, err := hc.FetchHeadlines(context.Background(), "crypto", 10)
	if err != nil {
		t.Fatalf("FetchHeadlines: %v", err)
	}
	if len(heads) != 2 {
		t.Fatalf("expected 2 headlines, got %d", len(heads))
	}
	if heads[0].Title != "Crypto markets rally to record highs" {
		t.Fatalf("unexpected title %q", heads[0].Title)
	}
}

func TestFetchHeadlinesEmptyQuery(t *testing.T) {
	hc := NewHeadlineClient("http://localhost", "test-agent")
	if _, err := hc.FetchHeadlines(context.Background(), "  ", 10); err == nil {
		t.Fatalf("empty query must be rejected")
	}
}

func TestFetchHeadlinesCancelledContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(headlinePage))
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	hc := NewHeadlineClient(srv.URL, "test-agent")
	if _, err := hc.FetchHeadlines(ctx, "crypto", 10); err == nil {
		t.Fatalf("cancelled context must abort the fetch")
	}
}
