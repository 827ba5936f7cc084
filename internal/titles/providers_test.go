package titles

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "providers.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	return path
}

func TestLoadProviders(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    int
		wantErr bool
	}{
		{
			name: "valid",
			content: `providers:
  - name: youtube
    pattern: 'youtube\.com|youtu\.be'
    endpoint: https://www.youtube.com/oembed
  - name: vimeo
    pattern: 'vimeo\.com'
    endpoint: https://vimeo.com/api/oembed.json
`,
			want: 2,
		},
		{
			name:    "empty list",
			content: "providers: []\n",
			want:    0,
		},
		{
			name: "missing endpoint",
			content: `providers:
  - name: broken
    pattern: 'x'
`,
			wantErr: true,
		},
		{
			name:    "invalid yaml",
			content: "providers: [",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := LoadProviders(writeFile(t, tt.content))
			if (err != nil) != tt.wantErr {
				t.Fatalf("LoadProviders() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && len(got) != tt.want {
				t.Errorf("LoadProviders() returned %d providers, want %d", len(got), tt.want)
			}
		})
	}
}

func TestLoadProviders_MissingFile(t *testing.T) {
	if _, err := LoadProviders(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("LoadProviders() expected error for missing file")
	}
}

func TestProviders_Match(t *testing.T) {
	p, err := NewProviders(DefaultProviders())
	if err != nil {
		t.Fatalf("NewProviders() error = %v", err)
	}

	tests := []struct {
		url  string
		want bool
	}{
		{"https://www.youtube.com/watch?v=abc", true},
		{"https://youtu.be/abc", true},
		{"https://example.com", false},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			_, ok := p.Match(tt.url)
			if ok != tt.want {
				t.Errorf("Match(%q) = %v, want %v", tt.url, ok, tt.want)
			}
		})
	}

	var nilProviders *Providers
	if _, ok := nilProviders.Match("https://youtu.be/abc"); ok {
		t.Error("nil Providers should never match")
	}
}

func TestProviders_ReplaceKeepsTableOnError(t *testing.T) {
	p, _ := NewProviders(DefaultProviders())

	err := p.Replace([]Provider{{Name: "bad", Pattern: "(", Endpoint: "http://x"}})
	if err == nil {
		t.Fatal("Replace() expected error for invalid pattern")
	}
	if p.Len() != 1 {
		t.Errorf("Len() = %d after failed Replace, want 1", p.Len())
	}

	if err := p.Replace(nil); err != nil {
		t.Fatalf("Replace(nil) error = %v", err)
	}
	if p.Len() != 0 {
		t.Errorf("Len() = %d after Replace(nil), want 0", p.Len())
	}
}
