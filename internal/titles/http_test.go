package titles

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestEnsureURL(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"https://example.com", "https://example.com", false},
		{"http://example.com", "http://example.com", false},
		{"example.com/path", "https://example.com/path", false},
		{"  example.com  ", "https://example.com", false},
		{"ftp://files.example", "ftp://files.example", false},
		{"", "", true},
		{"   ", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := EnsureURL(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("EnsureURL(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("EnsureURL(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestTitleFromHTML(t *testing.T) {
	tests := []struct {
		name string
		html string
		want string
	}{
		{
			name: "title tag",
			html: `<html><head><title>Hello World</title></head></html>`,
			want: "Hello World",
		},
		{
			name: "whitespace collapsed",
			html: "<title>\n  Hello\n   World  </title>",
			want: "Hello World",
		},
		{
			name: "entities decoded",
			html: `<title>Tom &amp; Jerry</title>`,
			want: "Tom & Jerry",
		},
		{
			name: "og:title when title missing",
			html: `<head><meta property="og:title" content="OG Title"><meta name="twitter:title" content="TW"></head>`,
			want: "OG Title",
		},
		{
			name: "empty title falls back to meta",
			html: `<head><title>  </title><meta name="twitter:title" content="Tweet Title"></head>`,
			want: "Tweet Title",
		},
		{
			name: "site name before description",
			html: `<head><meta property="og:description" content="About"><meta property="og:site_name" content="Site"></head>`,
			want: "Site",
		},
		{
			name: "description last",
			html: `<head><meta property="og:description" content="About us"></head>`,
			want: "About us",
		},
		{
			name: "svg title ignored",
			html: `<body><svg><title>icon</title></svg></body>`,
			want: "",
		},
		{
			name: "nothing",
			html: `<p>no title here</p>`,
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := TitleFromHTML(strings.NewReader(tt.html))
			if err != nil {
				t.Fatalf("TitleFromHTML() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("TitleFromHTML() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestHTTPResolver_Resolve(t *testing.T) {
	var gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		switch r.URL.Path {
		case "/page":
			_, _ = w.Write([]byte(`<html><head><title>Page Title</title></head></html>`))
		case "/bare":
			_, _ = w.Write([]byte(`<html><body>hi</body></html>`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	r := NewHTTPResolver(time.Second, nil, nil)
	ctx := context.Background()

	title, err := r.Resolve(ctx, srv.URL+"/page")
	if err != nil {
		t.Fatalf("Resolve(page) error = %v", err)
	}
	if title != "Page Title" {
		t.Errorf("Resolve(page) = %q, want %q", title, "Page Title")
	}
	if !strings.Contains(gotUA, "Mozilla/5.0") {
		t.Errorf("User-Agent = %q, want a browser agent", gotUA)
	}

	title, err = r.Resolve(ctx, srv.URL+"/bare")
	if err != nil || title != "" {
		t.Errorf("Resolve(bare) = %q, %v; want empty title, nil", title, err)
	}

	if _, err := r.Resolve(ctx, srv.URL+"/missing"); err == nil {
		t.Error("Resolve(missing) expected error on 404")
	}
}

func TestHTTPResolver_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(500 * time.Millisecond):
		case <-r.Context().Done():
		}
		_, _ = w.Write([]byte(`<title>late</title>`))
	}))
	defer srv.Close()

	r := NewHTTPResolver(50*time.Millisecond, nil, nil)
	if _, err := r.Resolve(context.Background(), srv.URL); err == nil {
		t.Error("Resolve() expected timeout error")
	}
}

func TestHTTPResolver_OEmbed(t *testing.T) {
	var oembedQuery string
	oembed := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		oembedQuery = r.URL.RawQuery
		if strings.Contains(r.URL.Query().Get("url"), "broken") {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"title":"Video Title","type":"video"}`))
	}))
	defer oembed.Close()

	page := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<title>Page Fallback</title>`))
	}))
	defer page.Close()

	providers, err := NewProviders([]Provider{
		{Name: "video", Pattern: `/watch`, Endpoint: oembed.URL + "/oembed"},
	})
	if err != nil {
		t.Fatalf("NewProviders() error = %v", err)
	}
	r := NewHTTPResolver(time.Second, providers, nil)
	ctx := context.Background()

	title, err := r.Resolve(ctx, page.URL+"/watch?v=1")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if title != "Video Title" {
		t.Errorf("Resolve() = %q, want %q", title, "Video Title")
	}
	if !strings.Contains(oembedQuery, "format=json") {
		t.Errorf("oembed query = %q, want format=json", oembedQuery)
	}

	title, err = r.Resolve(ctx, page.URL+"/watch/broken")
	if err != nil {
		t.Fatalf("Resolve() with failing provider error = %v", err)
	}
	if title != "Page Fallback" {
		t.Errorf("Resolve() with failing provider = %q, want page title", title)
	}

	title, _ = r.Resolve(ctx, page.URL+"/article")
	if title != "Page Fallback" {
		t.Errorf("Resolve() without provider = %q, want page title", title)
	}
}
