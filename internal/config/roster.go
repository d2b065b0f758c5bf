package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joshua-takyi/eventhub/internal/models"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Roster is the curated list of organizations whose events are aggregated.
type Roster struct {
	Organizations []models.Organization `yaml:"organizations" toml:"organizations" validate:"dive"`
}

// LoadRoster reads a YAML (.yaml, .yml) or TOML (.toml) roster file. Entries are trimmed,
// validated, and deduplicated by id keeping the first occurrence.
func LoadRoster(path string) ([]models.Organization, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read roster: %w", err)
	}
	return ParseRoster(b, filepath.Ext(path))
}

func ParseRoster(b []byte, ext string) ([]models.Organization, error) {
	var r Roster
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &r); err != nil {
			return nil, fmt.Errorf("decode roster yaml: %w", err)
		}
	case ".toml":
		if err := toml.Unmarshal(b, &r); err != nil {
			return nil, fmt.Errorf("decode roster toml: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported roster format %q", ext)
	}

	r.Normalize()
	if err := models.Validate.Struct(r); err != nil {
		return nil, fmt.Errorf("invalid roster: %w", err)
	}
	return r.Organizations, nil
}

func (r *Roster) Normalize() {
	seen := make(map[string]bool, len(r.Organizations))
	out := r.Organizations[:0]
	for _, o := range r.Organizations {
		o.ID = strings.TrimSpace(o.ID)
		o.Name = strings.TrimSpace(o.Name)
		if o.ID != "" && seen[o.ID] {
			continue
		}
		seen[o.ID] = true
		out = append(out, o)
	}
	r.Organizations = out
}
