package batch

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// Manifest describes one batch run.
type Manifest struct {
	RunID     string          `json:"run_id"`
	Target    string          `json:"target"`
	Tolerance int             `json:"tolerance"`
	K         int             `json:"k"`
	Entries   []ManifestEntry `json:"entries"`
}

// ManifestEntry represents one image in the output manifest.
type ManifestEntry struct {
	Name    string         `json:"name"`
	Image   string         `json:"image,omitempty"`
	Success bool           `json:"success"`
	Error   string         `json:"error,omitempty"`
	Pixels  int            `json:"pixels,omitempty"`
	Blobs   []ManifestBlob `json:"blobs,omitempty"`
}

// ManifestBlob is one recolored blob.
type ManifestBlob struct {
	Rank  int    `json:"rank"`
	Size  int    `json:"size"`
	Color string `json:"color"`
}

// NewRunID returns a fresh identifier for a batch run.
func NewRunID() string {
	return uuid.NewString()
}

// BuildManifest collects results into a Manifest. Image paths are relative
// to outputDir when possible.
func BuildManifest(runID string, cfg Config, outputDir string, results []Result) Manifest {
	m := Manifest{
		RunID:     runID,
		Target:    cfg.Target.Hex(),
		Tolerance: cfg.Tolerance,
		K:         cfg.K,
		Entries:   make([]ManifestEntry, len(results)),
	}
	for i, r := range results {
		e := ManifestEntry{
			Name:    r.Name,
			Success: r.Success,
			Error:   r.Error,
		}
		if r.Success {
			e.Image = r.Output
			if rel, err := filepath.Rel(outputDir, r.Output); err == nil {
				e.Image = filepath.ToSlash(rel)
			}
			e.Pixels = r.Stats.Pixels
			for _, b := range r.Blobs {
				e.Blobs = append(e.Blobs, ManifestBlob{
					Rank:  b.Rank + 1,
					Size:  b.Size,
					Color: b.Color.Hex(),
				})
			}
		}
		m.Entries[i] = e
	}
	return m
}

// WriteManifest writes m as indented JSON to path.
func WriteManifest(path string, m Manifest) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
