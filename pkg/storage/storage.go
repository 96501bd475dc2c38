package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	gerrors "github.com/go-faster/errors"
)

// Storage persists opaque photo bytes and returns a publicly addressable URL.
// Uploads happen outside any database transaction; a successful upload
// followed by a database failure leaves an orphaned object, which callers log
// and tolerate.
type Storage interface {
	Put(ctx context.Context, key string, data []byte) (string, error)
	Remove(ctx context.Context, key string) error
}

var allowedImageTypes = map[string]struct{}{
	"image/jpeg": {},
	"image/png":  {},
	"image/webp": {},
	"image/heic": {},
}

// DetectImage sniffs data and returns the mime type and a file extension.
// Non-image payloads are rejected.
func DetectImage(data []byte) (string, string, error) {
	mtype := mimetype.Detect(data)
	if _, ok := allowedImageTypes[mtype.String()]; !ok {
		return "", "", fmt.Errorf("unsupported content type: %s", mtype.String())
	}
	return mtype.String(), mtype.Extension(), nil
}

// Local writes objects under a directory and serves them from a base URL.
type Local struct {
	dir     string
	baseURL string
}

func NewLocal(dir, baseURL string) (*Local, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, gerrors.Wrap(err, "failed to create uploads directory")
	}
	return &Local{dir: dir, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

func (l *Local) Put(_ context.Context, key string, data []byte) (string, error) {
	key = filepath.Base(key)
	path := filepath.Join(l.dir, key)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", gerrors.Wrap(err, "failed to write object")
	}
	return l.baseURL + "/" + key, nil
}

func (l *Local) Remove(_ context.Context, key string) error {
	key = filepath.Base(key)
	if err := os.Remove(filepath.Join(l.dir, key)); err != nil && !os.IsNotExist(err) {
		return gerrors.Wrap(err, "failed to remove object")
	}
	return nil
}
