package roster

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// fileDocument is the on-disk roster format (YAML or JSON).
type fileDocument struct {
	Participants []Participant `json:"participants" yaml:"participants"`
	Topics       []string      `json:"topics" yaml:"topics"`
}

// FileSource reads a roster document. The format is chosen by extension:
// .json is JSON, anything else is YAML.
type FileSource struct {
	Path string
}

func NewFileSource(path string) *FileSource {
	return &FileSource{Path: strings.TrimSpace(path)}
}

func (s *FileSource) Load(ctx context.Context) (*Roster, error) {
	if s == nil || s.Path == "" {
		return nil, fmt.Errorf("roster path is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	raw, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, fmt.Errorf("read roster %s: %w", s.Path, err)
	}
	var doc fileDocument
	if strings.EqualFold(filepath.Ext(s.Path), ".json") {
		err = json.Unmarshal(raw, &doc)
	} else {
		err = yaml.Unmarshal(raw, &doc)
	}
	if err != nil {
		return nil, fmt.Errorf("parse roster %s: %w", s.Path, err)
	}
	return New(doc.Participants, doc.Topics)
}
