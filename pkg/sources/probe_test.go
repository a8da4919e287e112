package sources_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/securo-skn/crimefeed/pkg/sources"
	"github.com/securo-skn/crimefeed/pkg/whttp"
)

func TestProbeReportsPageTitle(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html><head><title>SKNIS | Government News</title></head><body></body></html>"))
	}))
	defer srv.Close()

	client, err := whttp.New(whttp.Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	res := sources.Probe(context.Background(), client, sources.Descriptor{ID: "sknis", URL: srv.URL})
	if res.Err != nil {
		t.Fatalf("unexpected error: %v", res.Err)
	}
	if res.ID != "sknis" || res.StatusCode != http.StatusOK {
		t.Fatalf("unexpected result %+v", res)
	}
	if res.Title != "SKNIS | Government News" {
		t.Fatalf("expected page title, got %q", res.Title)
	}
}

func TestProbeReportsHTTPFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer srv.Close()

	client, _ := whttp.New(whttp.Options{})
	res := sources.Probe(context.Background(), client, sources.Descriptor{ID: "observer", URL: srv.URL})
	if !errors.Is(res.Err, whttp.ErrStatus) {
		t.Fatalf("expected ErrStatus, got %v", res.Err)
	}
	if res.Title != "" {
		t.Fatalf("failed probes carry no title, got %q", res.Title)
	}
}
