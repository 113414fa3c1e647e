package backend

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestFetchCategory_Success(t *testing.T) {
	var gotPath, gotAccept, gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAccept = r.Header.Get("Accept")
		gotUA = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"slug":"first-light","author":"alice","title":"ignored"},{"slug":"night-walk","author":"bob"}]`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL+"/", "test-agent", 2*time.Second)
	items, err := client.FetchCategory(context.Background(), "journals")
	if err != nil {
		t.Fatalf("FetchCategory failed: %v", err)
	}

	if gotPath != "/api/sitemap/journals" {
		t.Errorf("path = %q, want %q", gotPath, "/api/sitemap/journals")
	}
	if gotAccept != "application/json" {
		t.Errorf("Accept = %q, want %q", gotAccept, "application/json")
	}
	if gotUA != "test-agent" {
		t.Errorf("User-Agent = %q, want %q", gotUA, "test-agent")
	}
	if len(items) != 2 {
		t.Fatalf("len(items) = %d, want 2", len(items))
	}
	if items[0].Slug != "first-light" || items[0].Author != "alice" {
		t.Errorf("items[0] = %+v, want first-light/alice", items[0])
	}
}

func TestFetchCategory_EmptyArray(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	items, err := NewClient(srv.URL, "", time.Second).FetchCategory(context.Background(), "stories")
	if err != nil {
		t.Fatalf("FetchCategory failed: %v", err)
	}
	if len(items) != 0 {
		t.Errorf("len(items) = %d, want 0", len(items))
	}
}

func TestFetchCategory_NonSuccessStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, "", time.Second).FetchCategory(context.Background(), "journals")
	if !errors.Is(err, ErrUnexpectedStatus) {
		t.Fatalf("err = %v, want ErrUnexpectedStatus", err)
	}
}

func TestFetchCategory_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, "", 20*time.Millisecond).FetchCategory(context.Background(), "journals")
	if err == nil {
		t.Fatal("expected timeout error")
	}
}

func TestFetchCategory_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	if _, err := NewClient(url, "", time.Second).FetchCategory(context.Background(), "journals"); err == nil {
		t.Fatal("expected error for closed server")
	}
}

func TestDecodeItems_Malformed(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "not json", body: `<html>`},
		{name: "object instead of array", body: `{"slug":"a","author":"x"}`},
		{name: "missing slug", body: `[{"author":"x"}]`},
		{name: "missing author", body: `[{"slug":"a"}]`},
		{name: "wrong field type", body: `[{"slug":1,"author":"x"}]`},
		{name: "null item", body: `[null]`},
		{name: "null body", body: `null`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeItems([]byte(tt.body))
			if !errors.Is(err, ErrMalformedPayload) {
				t.Errorf("DecodeItems(%s) err = %v, want ErrMalformedPayload", tt.body, err)
			}
		})
	}
}
