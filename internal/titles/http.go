package titles

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/html"

	"github.com/MrSnakeDoc/archivist/internal/logger"
)

const (
	// DefaultTimeout bounds one page fetch
	DefaultTimeout = 2 * time.Second

	maxBodyBytes = 2 << 20

	userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/115.0 Safari/537.36"
	accept    = "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,image/apng,*/*;q=0.8"
)

// metaFallbacks are consulted in order when a page has no <title>.
var metaFallbacks = []string{"og:title", "twitter:title", "og:site_name", "og:description"}

// HTTPResolver fetches pages directly and reads their title.
type HTTPResolver struct {
	client    *http.Client
	providers *Providers
	log       logger.Logger
}

// NewHTTPResolver creates a resolver with the given per-request timeout.
// providers may be nil to disable oEmbed lookups.
func NewHTTPResolver(timeout time.Duration, providers *Providers, log logger.Logger) *HTTPResolver {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if log == nil {
		log = logger.Nop()
	}
	return &HTTPResolver{
		client:    &http.Client{Timeout: timeout},
		providers: providers,
		log:       log,
	}
}

// Resolve returns the page title of rawURL. URLs matched by an oEmbed
// provider are asked to the provider first. A page without any title or
// title-like meta tag resolves to "".
func (r *HTTPResolver) Resolve(ctx context.Context, rawURL string) (string, error) {
	target, err := EnsureURL(rawURL)
	if err != nil {
		return "", err
	}

	if prov, ok := r.providers.Match(target); ok {
		title, err := r.oembed(ctx, prov, target)
		if err == nil && title != "" {
			return title, nil
		}
		r.log.Debug("oembed lookup failed, falling back to page",
			logger.String("provider", prov.Name),
			logger.String("url", target),
			logger.Error(err),
		)
	}

	resp, err := r.get(ctx, target, accept)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	return TitleFromHTML(io.LimitReader(resp.Body, maxBodyBytes))
}

func (r *HTTPResolver) oembed(ctx context.Context, prov Provider, target string) (string, error) {
	endpoint, err := url.Parse(prov.Endpoint)
	if err != nil {
		return "", fmt.Errorf("invalid oembed endpoint: %w", err)
	}
	q := endpoint.Query()
	q.Set("url", target)
	q.Set("format", "json")
	endpoint.RawQuery = q.Encode()

	resp, err := r.get(ctx, endpoint.String(), "application/json")
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var payload struct {
		Title string `json:"title"`
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes)).Decode(&payload); err != nil {
		return "", fmt.Errorf("decode oembed: %w", err)
	}
	return strings.TrimSpace(payload.Title), nil
}

// get issues a GET and fails on any non-200 status.
func (r *HTTPResolver) get(ctx context.Context, target, acceptHeader string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", acceptHeader)

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("HTTP %d for %s", resp.StatusCode, target)
	}
	return resp, nil
}

// TitleFromHTML returns the first non-blank <title>, else the first
// non-blank og:title, twitter:title, og:site_name or og:description.
func TitleFromHTML(body io.Reader) (string, error) {
	doc, err := html.Parse(body)
	if err != nil {
		return "", fmt.Errorf("parse html: %w", err)
	}

	var (
		title string
		metas = map[string]string{}
		walk  func(*html.Node)
	)

	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "title":
				if title == "" {
					title = strings.TrimSpace(textContent(n))
				}
			case "meta":
				key := attr(n, "property")
				if key == "" {
					key = attr(n, "name")
				}
				key = strings.ToLower(key)
				if _, seen := metas[key]; !seen {
					if content := strings.TrimSpace(attr(n, "content")); content != "" {
						metas[key] = content
					}
				}
			case "svg":
				// An inline SVG <title> is not the page title
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	if title != "" {
		return collapseSpace(title), nil
	}
	for _, key := range metaFallbacks {
		if v := metas[key]; v != "" {
			return collapseSpace(v), nil
		}
	}
	return "", nil
}

func textContent(n *html.Node) string {
	var sb strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.TextNode {
			sb.WriteString(c.Data)
		}
	}
	return sb.String()
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if strings.EqualFold(a.Key, key) {
			return a.Val
		}
	}
	return ""
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
