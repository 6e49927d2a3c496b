package report

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/KaramelBytes/autoreport-cli/internal/charts"
	"github.com/KaramelBytes/autoreport-cli/internal/utils"
)

// Manifest records what one run produced. It is written next to the reports
// as run_<stamp>.json.
type Manifest struct {
	RunID     string    `json:"run_id"`
	Stamp     string    `json:"stamp"`
	Source    string    `json:"source"`
	Dataset   string    `json:"dataset"`
	Rows      int       `json:"rows"`
	Columns   int       `json:"columns"`
	CreatedAt time.Time `json:"created_at"`
	Duration  string    `json:"duration"`

	Provider          string `json:"provider"`
	Model             string `json:"model"`
	NarrativePresent  bool   `json:"narrative_present"`
	NarrativeAttempts int    `json:"narrative_attempts"`
	NarrativeError    string `json:"narrative_error,omitempty"`

	PDF      string            `json:"pdf"`
	Text     string            `json:"text"`
	Workbook string            `json:"workbook,omitempty"`
	Charts   []charts.Artifact `json:"charts"`
}

// Save writes the manifest atomically to path.
func (m *Manifest) Save(path string) error {
	b, err := utils.PrettyJSON(m)
	if err != nil {
		return err
	}
	if err := utils.SafeWriteFile(path, b); err != nil {
		return fmt.Errorf("save manifest: %w", err)
	}
	return nil
}

// LoadManifest reads a manifest written by Save.
func LoadManifest(path string) (*Manifest, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("manifest not found at %s: %w", path, err)
		}
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	var m Manifest
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}
	return &m, nil
}
