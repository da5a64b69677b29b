package snapshot

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// YAMLSink writes each table of a Library to its own YAML file.
type YAMLSink struct {
	outputDir string
}

// NewYAMLSink creates a new YAMLSink.
func NewYAMLSink(outputDir string) *YAMLSink {
	return &YAMLSink{outputDir: outputDir}
}

// Write writes notebooks.yml, tags.yml, notes.yml, note_tags.yml and resources.yml.
func (s *YAMLSink) Write(_ context.Context, library *Library) error {
	if err := os.MkdirAll(s.outputDir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	files := []struct {
		name string
		data interface{}
	}{
		{name: "notebooks.yml", data: library.Notebooks},
		{name: "tags.yml", data: library.Tags},
		{name: "notes.yml", data: library.Notes},
		{name: "note_tags.yml", data: library.NoteTags()},
		{name: "resources.yml", data: library.ResourceRecords()},
	}
	for _, f := range files {
		if err := writeYAML(filepath.Join(s.outputDir, f.name), f.data); err != nil {
			return fmt.Errorf("write %s: %w", f.name, err)
		}
	}
	return nil
}

func writeYAML(path string, data interface{}) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	enc := yaml.NewEncoder(f)
	defer func() { _ = enc.Close() }()
	return enc.Encode(data)
}
