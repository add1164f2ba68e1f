package testsupport

import (
	"os"
	"path/filepath"
)

// WriteFixture writes a fixture file into dir and returns its full path.
func WriteFixture(dir, name string, contents []byte) (string, error) {
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, contents, 0o644); err != nil {
		return "", err
	}
	return path, nil
}
