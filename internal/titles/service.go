package titles

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// ServiceResolver delegates to a remote title service that accepts
// {"url": "..."} and answers {"title": "..." | null}.
type ServiceResolver struct {
	endpoint string
	apiKey   string
	client   *http.Client
}

// NewServiceResolver creates a client for the service at endpoint.
// apiKey, when set, is sent as a bearer token and apikey header.
func NewServiceResolver(endpoint, apiKey string, timeout time.Duration) *ServiceResolver {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &ServiceResolver{
		endpoint: endpoint,
		apiKey:   apiKey,
		client:   &http.Client{Timeout: timeout},
	}
}

type serviceRequest struct {
	URL string `json:"url"`
}

type serviceResponse struct {
	Title *string `json:"title"`
	Error string  `json:"error,omitempty"`
}

// Resolve makes exactly one call to the service.
func (s *ServiceResolver) Resolve(ctx context.Context, rawURL string) (string, error) {
	body, err := json.Marshal(serviceRequest{URL: rawURL})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if s.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.apiKey)
		req.Header.Set("apikey", s.apiKey)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("call title service: %w", err)
	}
	defer resp.Body.Close()

	var out serviceResponse
	decodeErr := json.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes)).Decode(&out)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		if out.Error != "" {
			return "", fmt.Errorf("title service HTTP %d: %s", resp.StatusCode, out.Error)
		}
		return "", fmt.Errorf("title service HTTP %d", resp.StatusCode)
	}
	if decodeErr != nil {
		return "", fmt.Errorf("decode title service response: %w", decodeErr)
	}
	if out.Title == nil {
		return "", nil
	}
	return strings.TrimSpace(*out.Title), nil
}
