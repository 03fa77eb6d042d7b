package fetch

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestClientGetSetsHeaders(t *testing.T) {
	var gotUA, gotAccept string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		gotAccept = r.Header.Get("Accept")
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := NewClient(ClientOptions{Timeout: 5 * time.Second, UserAgent: "wisatakota-test"})
	resp, err := c.Get(context.Background(), srv.URL, map[string]string{"Accept": "application/json"})
	if err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	resp.Body.Close()

	if gotUA != "wisatakota-test" {
		t.Errorf("User-Agent = %q, want wisatakota-test", gotUA)
	}
	if gotAccept != "application/json" {
		t.Errorf("Accept = %q, want application/json", gotAccept)
	}
}

func TestClientNoRetryPassesStatusThrough(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := NewClient(ClientOptions{Timeout: 5 * time.Second})
	resp, err := c.Get(context.Background(), srv.URL, nil)
	if err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadGateway {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusBadGateway)
	}
	if n := atomic.LoadInt32(&hits); n != 1 {
		t.Errorf("server hit %d times, want 1", n)
	}
}

func TestClientHonoursContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := NewClient(ClientOptions{Timeout: 5 * time.Second})
	if _, err := c.Get(ctx, srv.URL, nil); err == nil {
		t.Fatal("Get() with cancelled context returned nil error")
	}
}

func TestClientLogsWithoutQueryString(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	target := srv.URL + "/search.json?api_key=topsecret&q=x"
	srv.Close()

	core, logs := observer.New(zap.DebugLevel)
	c := NewClient(ClientOptions{Timeout: time.Second, Logger: zap.New(core)})
	if _, err := c.Get(context.Background(), target, nil); err == nil {
		t.Fatal("Get() against a closed server returned nil error")
	}

	if logs.Len() == 0 {
		t.Fatal("expected retryablehttp to log the request")
	}
	for _, entry := range logs.All() {
		for k, v := range entry.ContextMap() {
			if k == "url" && strings.Contains(fmt.Sprint(v), "topsecret") {
				t.Errorf("%q log entry leaked query string: %v", entry.Message, v)
			}
		}
	}
}

func TestScrubURL(t *testing.T) {
	tests := []struct {
		name string
		in   []interface{}
		want interface{}
	}{
		{"string url", []interface{}{"url", "http://h/p?api_key=k"}, "http://h/p"},
		{"url value", []interface{}{"url", &url.URL{Scheme: "http", Host: "h", Path: "/p", RawQuery: "api_key=k"}}, "http://h/p"},
		{"other key untouched", []interface{}{"method", "GET"}, "GET"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := scrubURL(tt.in)
			if got[1] != tt.want {
				t.Errorf("scrubURL(%v)[1] = %v, want %v", tt.in, got[1], tt.want)
			}
		})
	}
}
