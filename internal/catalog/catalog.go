// Package catalog loads the exercise catalog from YAML and seeds it into the
// database.
package catalog

import (
	"bytes"
	"context"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/ignite-gym/ignitegym/internal/models"
)

//go:embed catalog.yaml
var defaultCatalog []byte

// Entry is one exercise as written in the catalog file
type Entry struct {
	Name        string `yaml:"name"`
	Series      int    `yaml:"series"`
	Repetitions int    `yaml:"repetitions"`
	Group       string `yaml:"group"`
	Demo        string `yaml:"demo"`
	Thumb       string `yaml:"thumb"`
}

type document struct {
	Exercises []Entry `yaml:"exercises"`
}

// Default returns the built-in catalog
func Default() ([]Entry, error) {
	return Parse(bytes.NewReader(defaultCatalog))
}

// LoadFile reads a catalog file
func LoadFile(path string) ([]Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog: %w", err)
	}
	defer f.Close()

	return Parse(f)
}

// Parse decodes and validates a catalog document. Unknown keys are rejected
// so typos do not silently drop data.
func Parse(r io.Reader) ([]Entry, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var doc document
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("catalog is empty")
		}
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}

	seen := make(map[string]struct{}, len(doc.Exercises))
	for i, e := range doc.Exercises {
		if err := e.validate(); err != nil {
			return nil, fmt.Errorf("exercise %d: %w", i+1, err)
		}
		key := e.Group + "/" + e.Name
		if _, dup := seen[key]; dup {
			return nil, fmt.Errorf("exercise %d: duplicate %q in group %q", i+1, e.Name, e.Group)
		}
		seen[key] = struct{}{}
	}

	return doc.Exercises, nil
}

func (e Entry) validate() error {
	switch {
	case strings.TrimSpace(e.Name) == "":
		return fmt.Errorf("name is required")
	case strings.TrimSpace(e.Group) == "":
		return fmt.Errorf("group is required for %q", e.Name)
	case e.Series <= 0:
		return fmt.Errorf("series must be positive for %q", e.Name)
	case e.Repetitions <= 0:
		return fmt.Errorf("repetitions must be positive for %q", e.Name)
	}
	return nil
}

// Seed upserts entries keyed by (group, name). Existing rows keep their ID
// so recorded history stays valid.
func Seed(ctx context.Context, db *gorm.DB, entries []Entry) (int, error) {
	if len(entries) == 0 {
		return 0, nil
	}

	rows := make([]models.Exercise, len(entries))
	for i, e := range entries {
		rows[i] = models.Exercise{
			Name:        e.Name,
			Series:      e.Series,
			Repetitions: e.Repetitions,
			Group:       e.Group,
			Demo:        e.Demo,
			Thumb:       e.Thumb,
		}
	}

	err := db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "group_name"}, {Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{"series", "repetitions", "demo", "thumb", "updated_at"}),
	}).Create(&rows).Error
	if err != nil {
		return 0, fmt.Errorf("failed to seed exercises: %w", err)
	}

	return len(rows), nil
}
