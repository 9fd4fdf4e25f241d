package predictor

import (
	"encoding/json"
	"fmt"
	"os"
)

// Manifest holds one model's trained parameters as shipped by the training
// pipeline. A predictor constructed without a manifest is not loaded.
type Manifest struct {
	Kind     string             `json:"kind"`
	Accuracy float64            `json:"accuracy"`
	Params   map[string]float64 `json:"params"`
}

// LoadManifest reads and decodes a manifest file
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}

	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse manifest %s: %w", path, err)
	}
	return &m, nil
}

// param returns a named parameter, falling back when absent
func (m *Manifest) param(name string, fallback float64) float64 {
	if m == nil {
		return fallback
	}
	if v, ok := m.Params[name]; ok {
		return v
	}
	return fallback
}
