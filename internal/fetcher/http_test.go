package fetcher

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestFetchPage_PaginationConvention(t *testing.T) {
	var gotPaths []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPaths = append(gotPaths, r.URL.String())
		if ua := r.Header.Get("User-Agent"); ua != "test-agent" {
			t.Errorf("expected identifying User-Agent, got %q", ua)
		}
		w.Write([]byte("<html></html>"))
	}))
	defer srv.Close()

	f := NewHTTPFetcher(srv.URL+"/Indices.aspx", "test-agent", "", 5*time.Second)

	if _, err := f.FetchPage(1); err != nil {
		t.Fatalf("page 1: %v", err)
	}
	if _, err := f.FetchPage(2); err != nil {
		t.Fatalf("page 2: %v", err)
	}

	if len(gotPaths) != 2 {
		t.Fatalf("expected 2 requests, got %d", len(gotPaths))
	}
	if gotPaths[0] != "/Indices.aspx" {
		t.Errorf("page 1 must hit the bare URL, got %q", gotPaths[0])
	}
	if gotPaths[1] != "/Indices.aspx?page=2" {
		t.Errorf("page 2 must carry the page parameter, got %q", gotPaths[1])
	}
}

func TestFetchPage_NonSuccessStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	f := NewHTTPFetcher(srv.URL, "test-agent", "", 5*time.Second)
	_, err := f.FetchPage(1)
	if err == nil {
		t.Fatal("expected error for 503 response")
	}
	var fe *FetchError
	if !errors.As(err, &fe) {
		t.Fatalf("expected *FetchError, got %T", err)
	}
	if fe.Status != http.StatusServiceUnavailable {
		t.Errorf("expected status 503, got %d", fe.Status)
	}
	if fe.PageIndex != 1 {
		t.Errorf("expected page index 1, got %d", fe.PageIndex)
	}
}

func TestFetchPage_NetworkError(t *testing.T) {
	f := NewHTTPFetcher("http://127.0.0.1:1", "test-agent", "", time.Second)
	_, err := f.FetchPage(1)
	var fe *FetchError
	if !errors.As(err, &fe) {
		t.Fatalf("expected *FetchError, got %v", err)
	}
	if fe.Unwrap() == nil {
		t.Error("expected wrapped transport error")
	}
}

func TestGet_ArbitraryURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("alternate source body"))
	}))
	defer srv.Close()

	f := NewHTTPFetcher("", "test-agent", "", 5*time.Second)
	body, err := f.Get(srv.URL+"/today-share-price", 1)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if string(body) != "alternate source body" {
		t.Errorf("unexpected body %q", body)
	}
}
