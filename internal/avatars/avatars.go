// Package avatars stores user profile photos. Objects are named
// "<uuid><ext>" and referenced from models.User.Avatar.
package avatars

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned when an object does not exist
var ErrNotFound = errors.New("avatar not found")

// ErrUnsupportedType is returned for files that are not images we serve
var ErrUnsupportedType = errors.New("unsupported image type")

// Object describes a stored photo
type Object struct {
	Name         string
	Size         int64
	ContentType  string
	LastModified time.Time
}

// Store is an avatar object store
type Store interface {
	Save(ctx context.Context, name string, r io.Reader, size int64, contentType string) error
	Open(ctx context.Context, name string) (io.ReadCloser, Object, error)
	Delete(ctx context.Context, name string) error
	List(ctx context.Context) ([]Object, error)
}

var contentTypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".webp": "image/webp",
}

// NewObjectName returns a fresh object name keeping the upload's extension
func NewObjectName(filename string) (string, string, error) {
	ext := strings.ToLower(path.Ext(filename))
	contentType, ok := contentTypes[ext]
	if !ok {
		return "", "", fmt.Errorf("%w: %q", ErrUnsupportedType, ext)
	}
	return uuid.NewString() + ext, contentType, nil
}

// ContentType returns the content type served for an object name
func ContentType(name string) string {
	if ct, ok := contentTypes[strings.ToLower(path.Ext(name))]; ok {
		return ct
	}
	return "application/octet-stream"
}

// ValidName reports whether name could have been produced by NewObjectName.
// It keeps request paths from escaping the store.
func ValidName(name string) bool {
	ext := path.Ext(name)
	if _, ok := contentTypes[strings.ToLower(ext)]; !ok {
		return false
	}
	_, err := uuid.Parse(strings.TrimSuffix(name, ext))
	return err == nil
}
