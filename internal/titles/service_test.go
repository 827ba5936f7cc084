package titles

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestServiceResolver_Resolve(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		if r.Header.Get("Authorization") != "Bearer secret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}

		var req struct {
			URL string `json:"url"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)

		w.Header().Set("Content-Type", "application/json")
		switch req.URL {
		case "https://known.example":
			_, _ = w.Write([]byte(`{"title":" Known Page "}`))
		case "https://null.example":
			_, _ = w.Write([]byte(`{"title":null}`))
		default:
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte(`{"error":"upstream exploded"}`))
		}
	}))
	defer srv.Close()

	r := NewServiceResolver(srv.URL, "secret", time.Second)
	ctx := context.Background()

	tests := []struct {
		name    string
		url     string
		want    string
		wantErr bool
	}{
		{"title", "https://known.example", "Known Page", false},
		{"null title", "https://null.example", "", false},
		{"server error", "https://other.example", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := r.Resolve(ctx, tt.url)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Resolve() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("Resolve() = %q, want %q", got, tt.want)
			}
		})
	}

	if calls != len(tests) {
		t.Errorf("service called %d times, want one call per lookup (%d)", calls, len(tests))
	}
}

func TestServiceResolver_Unauthorized(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	r := NewServiceResolver(srv.URL, "", time.Second)
	if _, err := r.Resolve(context.Background(), "https://a.example"); err == nil {
		t.Error("Resolve() expected error on 401")
	}
}
