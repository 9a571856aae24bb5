package platform

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// MetadataFileName is written next to the executable on every start.
const MetadataFileName = "ttnexus_config.json"

// Metadata identifies the running build for the editor integration.
type Metadata struct {
	Version string `json:"version"`
	Branch  string `json:"branch"`
}

// DefaultMetadataPath returns ttnexus_config.json in the executable's directory.
func DefaultMetadataPath() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("locating executable: %w", err)
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}
	return filepath.Join(filepath.Dir(exe), MetadataFileName), nil
}

// WriteMetadata (re)writes the metadata file at path with a 4-space indent.
func WriteMetadata(path string, m Metadata) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "    ")
	if err := enc.Encode(m); err != nil {
		return err
	}
	if err := os.WriteFile(path, bytes.TrimSuffix(buf.Bytes(), []byte("\n")), 0644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
