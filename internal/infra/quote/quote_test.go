package quote

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/MRamiBalles/EscapeRoomGame/server/internal/platform/logger"
)

func newTestService(t *testing.T, url string) *Service {
	t.Helper()
	svc, err := NewService(NewQuotableProvider(url, time.Second), 5, logger.Discard())
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc
}

func TestQuoteFetchesAndCaches(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(&hits, 1)
		fmt.Fprintf(w, `{"content":"Quote %d","author":"Someone"}`, n)
	}))
	defer srv.Close()

	svc := newTestService(t, srv.URL)
	ctx := context.Background()

	q := svc.Quote(ctx, true)
	if q.Text != "Quote 1" || q.Author != "Someone" {
		t.Fatalf("Unexpected quote %+v", q)
	}

	// cache hit: no new request
	q = svc.Quote(ctx, true)
	if q.Text != "Quote 1" || atomic.LoadInt32(&hits) != 1 {
		t.Errorf("Expected cached quote without a request, got %+v after %d hits", q, hits)
	}

	q = svc.Quote(ctx, false)
	if q.Text != "Quote 2" {
		t.Errorf("Expected a fresh quote, got %+v", q)
	}
	if len(svc.Cached()) != 2 {
		t.Errorf("Expected 2 cached quotes, got %d", len(svc.Cached()))
	}
}

func TestQuoteCacheHoldsFive(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(&hits, 1)
		fmt.Fprintf(w, `{"content":"Quote %d","author":"A"}`, n)
	}))
	defer srv.Close()

	svc := newTestService(t, srv.URL)
	for i := 0; i < 7; i++ {
		svc.Quote(context.Background(), false)
	}

	cached := svc.Cached()
	if len(cached) != 5 {
		t.Fatalf("Expected 5 cached quotes, got %d", len(cached))
	}
	if cached[0].Text != "Quote 3" {
		t.Errorf("Expected oldest retained Quote 3, got %s", cached[0].Text)
	}
}

func TestQuoteFallback(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"server error", func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "boom", http.StatusInternalServerError)
		}},
		{"invalid json", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("<html>"))
		}},
		{"missing author", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"content":"hi"}`))
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			svc := newTestService(t, srv.URL)
			q := svc.Quote(context.Background(), true)
			if q.Text != "Keep going! You're doing great!" || q.Author != "Escape Room Game" {
				t.Errorf("Expected fallback, got %+v", q)
			}
			if len(svc.Cached()) != 0 {
				t.Errorf("Fallback must not be cached")
			}
		})
	}
}

func TestQuoteWithoutProvider(t *testing.T) {
	svc, err := NewService(nil, 0, logger.Discard())
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	if q := svc.Quote(context.Background(), false); q.Author != "Escape Room Game" {
		t.Errorf("Expected fallback, got %+v", q)
	}
}

func TestQuoteCancelledContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	q := newTestService(t, srv.URL).Quote(ctx, false)
	if q.Author != "Escape Room Game" {
		t.Errorf("Expected fallback on cancellation, got %+v", q)
	}
}

func TestFormatted(t *testing.T) {
	q := Quote{Text: "Go on", Author: "Me"}
	if got := q.Formatted(); got != `"Go on" - Me` {
		t.Errorf("Unexpected format %s", got)
	}
}
