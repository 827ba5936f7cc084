package titles

import (
	"fmt"
	"os"
	"regexp"
	"sync"

	"gopkg.in/yaml.v3"
)

// Provider is an oEmbed endpoint serving titles for URLs matching Pattern.
type Provider struct {
	Name     string `yaml:"name"`
	Pattern  string `yaml:"pattern"`
	Endpoint string `yaml:"endpoint"`
}

// ProvidersConfig is the layout of the providers file:
//
//	providers:
//	  - name: youtube
//	    pattern: 'youtube\.com|youtu\.be'
//	    endpoint: https://www.youtube.com/oembed
type ProvidersConfig struct {
	Providers []Provider `yaml:"providers"`
}

// DefaultProviders is used when no providers file is configured.
func DefaultProviders() []Provider {
	return []Provider{
		{
			Name:     "youtube",
			Pattern:  `youtube\.com|youtu\.be`,
			Endpoint: "https://www.youtube.com/oembed",
		},
	}
}

// LoadProviders reads and parses a providers file
func LoadProviders(path string) ([]Provider, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read providers file: %w", err)
	}

	var cfg ProvidersConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse providers yaml: %w", err)
	}

	for i, p := range cfg.Providers {
		if p.Name == "" || p.Pattern == "" || p.Endpoint == "" {
			return nil, fmt.Errorf("provider %d: name, pattern and endpoint are required", i)
		}
	}

	return cfg.Providers, nil
}

type compiledProvider struct {
	Provider
	re *regexp.Regexp
}

// Providers is a swappable, concurrency-safe provider table.
type Providers struct {
	mu   sync.RWMutex
	list []compiledProvider
}

// NewProviders compiles list into a table.
func NewProviders(list []Provider) (*Providers, error) {
	p := &Providers{}
	if err := p.Replace(list); err != nil {
		return nil, err
	}
	return p, nil
}

// Replace swaps the whole table. On error the previous table is kept.
func (p *Providers) Replace(list []Provider) error {
	compiled := make([]compiledProvider, 0, len(list))
	for _, prov := range list {
		re, err := regexp.Compile(prov.Pattern)
		if err != nil {
			return fmt.Errorf("provider %s: invalid pattern: %w", prov.Name, err)
		}
		compiled = append(compiled, compiledProvider{Provider: prov, re: re})
	}

	p.mu.Lock()
	p.list = compiled
	p.mu.Unlock()
	return nil
}

// Match returns the first provider whose pattern matches rawURL.
func (p *Providers) Match(rawURL string) (Provider, bool) {
	if p == nil {
		return Provider{}, false
	}

	p.mu.RLock()
	defer p.mu.RUnlock()

	for _, prov := range p.list {
		if prov.re.MatchString(rawURL) {
			return prov.Provider, true
		}
	}
	return Provider{}, false
}

// Len returns the number of providers
func (p *Providers) Len() int {
	if p == nil {
		return 0
	}
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.list)
}
