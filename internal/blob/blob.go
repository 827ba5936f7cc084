// Package blob stores raw uploaded export files.
package blob

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"
)

// Store uploads opaque bytes under a slash-separated key.
type Store interface {
	Upload(ctx context.Context, key string, data []byte) error
}

// ArchivePath builds the key an export is stored under:
// archives/{userID}/{unixMillis}_{filename}.
func ArchivePath(userID string, at time.Time, filename string) string {
	return fmt.Sprintf("archives/%s/%d_%s", userID, at.UnixMilli(), baseName(filename))
}

// baseName drops any directory part a client may have sent with the filename.
func baseName(filename string) string {
	name := path.Base(strings.ReplaceAll(filename, "\\", "/"))
	if name == "." || name == "/" {
		return "upload"
	}
	return name
}
