package storage

import (
	"context"
	"io"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// PutInput describes one business listing image to store. BusinessID
// scopes the object key so a listing's images group together.
type PutInput struct {
	BusinessID  string
	Filename    string
	ContentType string
	Size        int64
}

type PutResult struct {
	Key string
	URL string
}

// Storage persists listing images. Keys returned by Put are the only
// valid input to Delete.
type Storage interface {
	Put(ctx context.Context, r io.Reader, in PutInput) (PutResult, error)
	Delete(ctx context.Context, key string) error
}

// imageKey builds the canonical object key for a listing image:
// businesses/<businessID>/<uuid><ext>. The extension is dropped unless
// it is a known image type.
func imageKey(businessID, filename string) string {
	return "businesses/" + businessID + "/" + uuid.NewString() + imageExt(filename)
}

func imageExt(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".png", ".jpg", ".jpeg", ".webp", ".gif":
		return ext
	default:
		return ""
	}
}
