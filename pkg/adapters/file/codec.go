package file

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/aretw0/aoflow/pkg/domain"
	"gopkg.in/yaml.v3"
)

// Format is the on-disk encoding of a snapshot.
type Format string

const (
	JSON Format = "json"
	YAML Format = "yaml"
)

// FormatOf infers the format from a file extension. Anything but .yaml/.yml is JSON.
func FormatOf(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return YAML
	default:
		return JSON
	}
}

// Decode parses a snapshot document.
func Decode(data []byte, format Format) (*domain.Snapshot, error) {
	var snap domain.Snapshot
	var err error
	if format == YAML {
		err = yaml.Unmarshal(data, &snap)
	} else {
		err = json.Unmarshal(data, &snap)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s snapshot: %w", format, err)
	}
	return &snap, nil
}

// Encode renders a snapshot document.
func Encode(snap *domain.Snapshot, format Format) ([]byte, error) {
	if format == YAML {
		return yaml.Marshal(snap)
	}
	return json.MarshalIndent(snap, "", "  ")
}
