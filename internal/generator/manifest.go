package generator

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"
)

const (
	manifestFileName    = ".sitekit-manifest.json"
	manifestFileVersion = 1
)

// buildManifest records the last successful build so repeat runs can skip
// unchanged artifacts.
type buildManifest struct {
	Version     int                      `json:"version"`
	GeneratedAt time.Time                `json:"generated_at"`
	Pages       map[string]manifestPage  `json:"pages"`
	Assets      map[string]manifestAsset `json:"assets"`
}

type manifestPage struct {
	Route      string    `json:"route"`
	Language   string    `json:"language"`
	Output     string    `json:"output"`
	Checksum   string    `json:"checksum"`
	RenderedAt time.Time `json:"rendered_at"`
}

type manifestAsset struct {
	Source   string    `json:"source"`
	Output   string    `json:"output"`
	Checksum string    `json:"checksum"`
	CopiedAt time.Time `json:"copied_at"`
}

func newBuildManifest() *buildManifest {
	return &buildManifest{
		Version: manifestFileVersion,
		Pages:   map[string]manifestPage{},
		Assets:  map[string]manifestAsset{},
	}
}

func parseManifest(data []byte) (*buildManifest, error) {
	if len(data) == 0 {
		return newBuildManifest(), nil
	}
	var manifest buildManifest
	if err := json.Unmarshal(data, &manifest); err != nil {
		return nil, fmt.Errorf("generator: parse manifest: %w", err)
	}
	if manifest.Pages == nil {
		manifest.Pages = map[string]manifestPage{}
	}
	if manifest.Assets == nil {
		manifest.Assets = map[string]manifestAsset{}
	}
	if manifest.Version == 0 {
		manifest.Version = manifestFileVersion
	}
	return &manifest, nil
}

func (m *buildManifest) encode() ([]byte, error) {
	return json.MarshalIndent(m, "", "  ")
}

// pageKey keeps manifest entries stable across runs.
func pageKey(route, lang string) string {
	return lang + " " + route
}

func checksum(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
