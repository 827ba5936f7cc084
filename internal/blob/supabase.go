package blob

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"path"
	"sync"

	storage_go "github.com/supabase-community/storage-go"
	"github.com/supabase-community/supabase-go"
)

// Supabase uploads to a Supabase Storage bucket.
type Supabase struct {
	// storage-go keeps upload headers on the shared client, so uploads are serialised.
	mu      sync.Mutex
	storage *storage_go.Client
	bucket  string
}

// Ensure Supabase implements Store
var _ Store = (*Supabase)(nil)

// NewSupabase builds a storage client for projectURL authenticated with key.
func NewSupabase(projectURL, key, bucket string) (*Supabase, error) {
	if bucket == "" {
		return nil, errors.New("supabase bucket is required")
	}
	client, err := supabase.NewClient(projectURL, key, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create supabase client: %w", err)
	}
	return &Supabase{
		storage: client.Storage,
		bucket:  bucket,
	}, nil
}

// Upload writes data at key. Existing objects are not overwritten.
func (s *Supabase) Upload(ctx context.Context, key string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	contentType := contentTypeFor(key, data)
	upsert := false

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.storage.UploadFile(s.bucket, key, bytes.NewReader(data), storage_go.FileOptions{
		ContentType: &contentType,
		Upsert:      &upsert,
	})
	if err != nil {
		return fmt.Errorf("supabase upload %s/%s: %w", s.bucket, key, err)
	}
	return nil
}

func contentTypeFor(key string, data []byte) string {
	if ct := mime.TypeByExtension(path.Ext(key)); ct != "" {
		return ct
	}
	return http.DetectContentType(data)
}
