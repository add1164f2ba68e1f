package generator

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
)

// artifactWriter abstracts the output target so tests can capture writes
// without touching disk.
type artifactWriter interface {
	EnsureDir(ctx context.Context, path string) error
	WriteFile(ctx context.Context, path string, content []byte) error
	ReadFile(ctx context.Context, path string) ([]byte, error)
	RemoveAll(ctx context.Context, path string) error
}

type dirWriter struct {
	root string
}

func newDirWriter(root string) (*dirWriter, error) {
	if strings.TrimSpace(root) == "" {
		return nil, errors.New("generator: output directory required")
	}
	return &dirWriter{root: root}, nil
}

func (w *dirWriter) EnsureDir(_ context.Context, path string) error {
	return os.MkdirAll(filepath.Join(w.root, filepath.FromSlash(path)), 0o755)
}

func (w *dirWriter) WriteFile(_ context.Context, path string, content []byte) error {
	full := filepath.Join(w.root, filepath.FromSlash(path))
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return err
	}
	return os.WriteFile(full, content, 0o644)
}

func (w *dirWriter) ReadFile(_ context.Context, path string) ([]byte, error) {
	data, err := os.ReadFile(filepath.Join(w.root, filepath.FromSlash(path)))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	return data, nil
}

func (w *dirWriter) RemoveAll(_ context.Context, path string) error {
	if strings.TrimSpace(path) == "" || path == "." {
		return errors.New("generator: refusing to remove output root segment")
	}
	return os.RemoveAll(filepath.Join(w.root, filepath.FromSlash(path)))
}
