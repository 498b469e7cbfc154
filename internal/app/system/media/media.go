// internal/app/system/media/media.go
//
// Upload helper shared by features that accept files (organization logos,
// educator verification documents, lesson videos).
package media

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/dalemusser/waffle/pantry/storage"
	"github.com/google/uuid"
)

// MaxUploadBytes caps multipart uploads.
const MaxUploadBytes = 5 << 20 // 5 MB

// UploadInfo contains metadata about a stored file.
type UploadInfo struct {
	Key         string
	URL         string
	FileName    string
	Size        int64
	ContentType string
}

// Upload stores a file under a unique key and returns its info. The key is
// generated as: <prefix>/YYYY/MM/uuid-filename.
func Upload(ctx context.Context, store storage.Store, prefix, filename string, reader io.Reader, size int64, contentType string) (UploadInfo, error) {
	now := time.Now().UTC()
	dateDir := fmt.Sprintf("%s/%04d/%02d", prefix, now.Year(), now.Month())
	uniqueName := fmt.Sprintf("%s-%s", uuid.New().String()[:8], SanitizeFilename(filename))
	key := filepath.ToSlash(filepath.Join(dateDir, uniqueName))

	opts := &storage.PutOptions{
		ContentType: contentType,
	}
	if err := store.Put(ctx, key, reader, opts); err != nil {
		return UploadInfo{}, fmt.Errorf("failed to upload file: %w", err)
	}

	url, err := store.PresignedURL(ctx, key, nil)
	if err != nil {
		// Local stores may not presign; the key alone is still usable.
		url = ""
	}

	return UploadInfo{
		Key:         key,
		URL:         url,
		FileName:    filename,
		Size:        size,
		ContentType: contentType,
	}, nil
}

// SanitizeFilename removes or replaces characters that could be problematic in filenames.
func SanitizeFilename(filename string) string {
	// Get just the filename, not any path components
	filename = filepath.Base(filename)
	if filename == "." || filename == string(filepath.Separator) {
		return "file"
	}

	// Replace problematic characters
	result := make([]byte, 0, len(filename))
	for i := 0; i < len(filename); i++ {
		c := filename[i]
		if isAllowedFilenameChar(c) {
			result = append(result, c)
		} else {
			result = append(result, '_')
		}
	}

	// Ensure we have a reasonable filename
	if len(result) == 0 {
		return "file"
	}
	if len(result) > 100 {
		// Truncate but preserve extension if present
		ext := filepath.Ext(string(result))
		if len(ext) > 0 && len(ext) < 10 {
			result = append(result[:100-len(ext)], ext...)
		} else {
			result = result[:100]
		}
	}

	return string(result)
}

func isAllowedFilenameChar(c byte) bool {
	return (c >= 'a' && c <= 'z') ||
		(c >= 'A' && c <= 'Z') ||
		(c >= '0' && c <= '9') ||
		c == '-' || c == '_' || c == '.'
}
