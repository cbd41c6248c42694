package catalog

import (
	"embed"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"mcp-meal-planner/internal/models"
)

//go:embed data/*.yaml
var defaultData embed.FS

// Decode reads a single catalog in YAML form:
//
//	fruits:
//	  apple: 95
//	  banana: 105
func Decode(r io.Reader) (FoodCatalog, error) {
	var c FoodCatalog
	if err := yaml.NewDecoder(r).Decode(&c); err != nil {
		if errors.Is(err, io.EOF) {
			return FoodCatalog{}, nil
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidCatalog, err)
	}
	if c == nil {
		c = FoodCatalog{}
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// LoadFS reads breakfast.yaml, lunch.yaml and dinner.yaml from fsys.
func LoadFS(fsys fs.FS) (Set, error) {
	var set Set
	for _, meal := range models.MealTypes {
		f, err := fsys.Open(string(meal) + ".yaml")
		if err != nil {
			return Set{}, fmt.Errorf("failed to open %s catalog: %w", meal, err)
		}
		c, err := Decode(f)
		f.Close()
		if err != nil {
			return Set{}, fmt.Errorf("failed to decode %s catalog: %w", meal, err)
		}
		switch meal {
		case models.Breakfast:
			set.Breakfast = c
		case models.Lunch:
			set.Lunch = c
		case models.Dinner:
			set.Dinner = c
		}
	}
	return set, nil
}

// LoadDir loads a catalog set from a directory on disk.
func LoadDir(dir string) (Set, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return Set{}, fmt.Errorf("failed to stat catalog dir: %w", err)
	}
	if !info.IsDir() {
		return Set{}, fmt.Errorf("catalog path %s is not a directory", filepath.Clean(dir))
	}
	return LoadFS(os.DirFS(dir))
}

// Default returns the catalogs bundled with the binary.
func Default() Set {
	sub, err := fs.Sub(defaultData, "data")
	if err != nil {
		panic(fmt.Sprintf("catalog: embedded data missing: %v", err))
	}
	set, err := LoadFS(sub)
	if err != nil {
		panic(fmt.Sprintf("catalog: embedded data invalid: %v", err))
	}
	return set
}
