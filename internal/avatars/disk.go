package avatars

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// DiskStore keeps avatars as files in a directory
type DiskStore struct {
	dir string
}

var _ Store = (*DiskStore)(nil)

// NewDiskStore creates the directory if needed
func NewDiskStore(dir string) (*DiskStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create avatar directory: %w", err)
	}
	return &DiskStore{dir: dir}, nil
}

func (d *DiskStore) path(name string) (string, error) {
	if !ValidName(name) {
		return "", ErrNotFound
	}
	return filepath.Join(d.dir, name), nil
}

// Save writes the object through a temp file so readers never see partial data
func (d *DiskStore) Save(_ context.Context, name string, r io.Reader, _ int64, _ string) error {
	target, err := d.path(name)
	if err != nil {
		return fmt.Errorf("invalid avatar name %q", name)
	}

	tmp, err := os.CreateTemp(d.dir, ".upload-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write avatar: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write avatar: %w", err)
	}

	if err := os.Rename(tmp.Name(), target); err != nil {
		return fmt.Errorf("failed to store avatar: %w", err)
	}
	return nil
}

// Open returns the object's content
func (d *DiskStore) Open(_ context.Context, name string) (io.ReadCloser, Object, error) {
	p, err := d.path(name)
	if err != nil {
		return nil, Object{}, err
	}

	f, err := os.Open(p)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, Object{}, ErrNotFound
		}
		return nil, Object{}, fmt.Errorf("failed to open avatar: %w", err)
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, Object{}, fmt.Errorf("failed to stat avatar: %w", err)
	}

	return f, Object{Name: name, Size: info.Size(), ContentType: ContentType(name), LastModified: info.ModTime()}, nil
}

// Delete removes the object. Missing objects are not an error.
func (d *DiskStore) Delete(_ context.Context, name string) error {
	p, err := d.path(name)
	if err != nil {
		return nil
	}
	if err := os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to delete avatar: %w", err)
	}
	return nil
}

// List returns every stored object
func (d *DiskStore) List(_ context.Context) ([]Object, error) {
	entries, err := os.ReadDir(d.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list avatars: %w", err)
	}

	objects := make([]Object, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !ValidName(e.Name()) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		objects = append(objects, Object{
			Name:         e.Name(),
			Size:         info.Size(),
			ContentType:  ContentType(e.Name()),
			LastModified: info.ModTime(),
		})
	}
	return objects, nil
}
