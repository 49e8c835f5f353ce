package remote

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestHTTPClientGet(t *testing.T) {
	doc := Document{ID: "t1", Data: json.RawMessage(`{"wpm":42}`), CreatedAt: time.Unix(50, 0).UTC()}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/collections/tests/documents/t1" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer secret" {
			t.Errorf("unexpected auth header %q", got)
		}
		if err := json.NewEncoder(w).Encode(doc); err != nil {
			t.Errorf("encode: %v", err)
		}
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL, "secret")
	got, err := client.Get(context.Background(), "tests", "t1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.ID != "t1" || !got.CreatedAt.Equal(doc.CreatedAt) {
		t.Fatalf("unexpected document: %+v", got)
	}
}

func TestHTTPClientErrorMapping(t *testing.T) {
	cases := []struct {
		status int
		check  func(error) bool
		name   string
	}{
		{http.StatusNotFound, IsNotFound, "not found"},
		{http.StatusUnauthorized, IsUnavailable, "auth"},
		{http.StatusForbidden, IsUnavailable, "forbidden"},
		{http.StatusInternalServerError, IsUnavailable, "server error"},
	}
	for _, tc := range cases {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(tc.status)
		}))
		client := NewHTTPClient(server.URL, "")
		_, err := client.Get(context.Background(), "tests", "x")
		server.Close()
		if err == nil {
			t.Fatalf("%s: expected error", tc.name)
		}
		if !tc.check(err) {
			t.Fatalf("%s: wrong error class: %v", tc.name, err)
		}
	}
}

func TestHTTPClientUnreachable(t *testing.T) {
	client := NewHTTPClient("http://127.0.0.1:1", "")
	err := client.Create(context.Background(), "tests", "t1", map[string]int{"a": 1})
	if err == nil {
		t.Fatalf("expected network error")
	}
	if !IsUnavailable(err) {
		t.Fatalf("expected unavailable classification, got %v", err)
	}
	if IsNotFound(err) {
		t.Fatalf("network failure misclassified as not found")
	}
}

func TestHTTPClientList(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/collections/tests/query" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		var q Query
		if err := json.NewDecoder(r.Body).Decode(&q); err != nil {
			t.Errorf("decode query: %v", err)
		}
		if q.Limit != 5 || !q.Descending {
			t.Errorf("query not forwarded: %+v", q)
		}
		docs := []Document{{ID: "a"}, {ID: "b"}}
		if err := json.NewEncoder(w).Encode(docs); err != nil {
			t.Errorf("encode: %v", err)
		}
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL, "")
	docs, err := client.List(context.Background(), "tests", Query{
		OrderBy:    "createdAt",
		Descending: true,
		Limit:      5,
	})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(docs) != 2 {
		t.Fatalf("expected 2 documents, got %d", len(docs))
	}
}
