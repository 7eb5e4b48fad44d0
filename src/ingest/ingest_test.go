package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/veritynews/verity/src/webclient"
)

const sampleRSS = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0"><channel>
<title>Wire</title>
<item><title>First</title><link>https://example.org/a</link><description>one</description></item>
<item><title>Second</title><link>https://example.org/b</link><description>two</description></item>
</channel></rss>`

func TestFetchBodyRetriesTransientFailures(t *testing.T) {
	t.Parallel()

	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&hits, 1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(sampleRSS))
	}))
	defer srv.Close()

	client := webclient.NewDefault(5 * time.Second)
	body, err := fetchBody(context.Background(), client, srv.URL, 3, time.Millisecond)
	if err != nil {
		t.Fatalf("fetchBody: %v", err)
	}
	if got := atomic.LoadInt32(&hits); got != 2 {
		t.Errorf("expected 2 requests, got %d", got)
	}

	parsed, err := gofeed.NewParser().ParseString(body)
	if err != nil {
		t.Fatalf("parse fetched body: %v", err)
	}
	if len(parsed.Items) != 2 {
		t.Errorf("expected 2 items, got %d", len(parsed.Items))
	}
}

func TestFetchBodyGivesUpAfterAttempts(t *testing.T) {
	t.Parallel()

	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := webclient.NewDefault(5 * time.Second)
	_, err := fetchBody(context.Background(), client, srv.URL, 3, time.Millisecond)
	if err == nil {
		t.Fatal("expected error after exhausting attempts")
	}
	if !strings.Contains(err.Error(), "500") {
		t.Errorf("expected status in error, got %v", err)
	}
	if got := atomic.LoadInt32(&hits); got != 3 {
		t.Errorf("expected 3 requests, got %d", got)
	}
}
