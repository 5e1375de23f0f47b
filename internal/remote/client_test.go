package remote

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/theirongolddev/subtrack/internal/model"
)

func TestNewClientRejectsBadURLs(t *testing.T) {
	for _, u := range []string{"", "   ", "localhost:8082", "ftp://x", "http://"} {
		if c := NewClient(u); c != nil {
			t.Fatalf("NewClient(%q) = %v, want nil", u, c)
		}
	}
	if c := NewClient("http://127.0.0.1:8082/"); c == nil || c.BaseURL() != "http://127.0.0.1:8082" {
		t.Fatalf("NewClient trailing slash = %v", c)
	}
}

func TestFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/sub" || r.URL.Query().Get("token") != "A B" {
			t.Errorf("request = %s %s", r.URL.Path, r.URL.RawQuery)
		}
		_, _ = io.WriteString(w, `{"subscriptions":[{"id":1,"name":"Netflix","price":15.49,"currency":"USD","period":"monthly","firstBillDate":"2023-03-01","icon":"https://simpleicons.org/icons/netflix.svg"}]}`)
	}))
	defer srv.Close()

	got, err := NewClient(srv.URL).Fetch(context.Background(), "A B")
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(got) != 1 || got[0].Name != "Netflix" || got[0].Price.StringFixed(2) != "15.49" {
		t.Fatalf("Fetch = %+v", got)
	}
}

func TestFetchStatusErrors(t *testing.T) {
	tests := []struct {
		status int
		want   error
	}{
		{http.StatusNotFound, model.ErrTokenNotFound},
		{http.StatusBadRequest, ErrBadRequest},
	}
	for _, tt := range tests {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, "nope", tt.status)
		}))
		_, err := NewClient(srv.URL).Fetch(context.Background(), "X")
		srv.Close()
		if !errors.Is(err, tt.want) {
			t.Fatalf("status %d err = %v, want %v", tt.status, err, tt.want)
		}
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()
	if _, err := NewClient(srv.URL).Fetch(context.Background(), "X"); err == nil || !strings.Contains(err.Error(), "500") {
		t.Fatalf("err = %v, want unexpected status 500", err)
	}
}

func TestPushSendsRecordsWithoutIDs(t *testing.T) {
	var body map[string][]map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/sub/sync" {
			t.Errorf("request = %s %s", r.Method, r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode: %v", err)
		}
		_, _ = io.WriteString(w, `{"subscriptions":[]}`)
	}))
	defer srv.Close()

	rec := model.Record{
		Name:          "Spotify",
		Price:         decimal.RequireFromString("9.99"),
		Currency:      model.USD,
		Period:        model.Monthly,
		FirstBillDate: time.Date(2023, 2, 15, 0, 0, 0, 0, time.UTC),
	}
	if err := NewClient(srv.URL).Push(context.Background(), "T", []model.Record{rec}); err != nil {
		t.Fatalf("Push: %v", err)
	}
	subs := body["subscriptions"]
	if len(subs) != 1 {
		t.Fatalf("pushed %d records, want 1", len(subs))
	}
	if _, ok := subs[0]["id"]; ok {
		t.Fatal("pushed record carries an id")
	}
	if subs[0]["price"] != 9.99 {
		t.Fatalf("price = %v, want 9.99", subs[0]["price"])
	}
}

func TestAllocateToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		_, _ = io.WriteString(w, `{"token":"abc123"}`)
	}))
	defer srv.Close()

	tok, err := NewClient(srv.URL).AllocateToken(context.Background())
	if err != nil || tok != "abc123" {
		t.Fatalf("AllocateToken = %q, %v", tok, err)
	}
}

func TestRequestFailureIsNotAStatusError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := NewClient(url).Fetch(context.Background(), "T")
	if err == nil || errors.Is(err, model.ErrTokenNotFound) {
		t.Fatalf("err = %v, want connection failure", err)
	}
}
