package recipe

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"
)

//go:embed seed.json
var seedCatalog []byte

// LoadCatalog builds the catalog from path, or from the embedded seed when path is empty.
func LoadCatalog(path string) (*Catalog, error) {
	var (
		recipes []Recipe
		err     error
	)
	if path == "" {
		recipes, err = Seed()
	} else {
		recipes, err = ReadFile(path)
	}
	if err != nil {
		return nil, err
	}
	return NewCatalog(recipes)
}

// Seed returns a fresh copy of the recipes shipped with the binary.
func Seed() ([]Recipe, error) {
	var recipes []Recipe
	if err := json.Unmarshal(seedCatalog, &recipes); err != nil {
		return nil, fmt.Errorf("failed to decode embedded catalog: %w", err)
	}
	return recipes, nil
}

// ReadFile reads a catalog from a .json, .yaml or .yml file.
func ReadFile(path string) ([]Recipe, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file: %w", err)
	}

	var recipes []Recipe
	if isYAML(path) {
		err = yaml.Unmarshal(data, &recipes)
	} else {
		err = json.Unmarshal(data, &recipes)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to decode catalog %s: %w", path, err)
	}
	return recipes, nil
}

// WriteFile replaces the catalog at path, creating parent directories.
func WriteFile(path string, recipes []Recipe) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create catalog directory: %w", err)
	}

	var (
		data []byte
		err  error
	)
	if isYAML(path) {
		data, err = yaml.Marshal(recipes)
	} else {
		data, err = json.MarshalIndent(recipes, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("failed to encode catalog: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write catalog file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("failed to replace catalog file: %w", err)
	}
	return nil
}

// Append adds rec to the catalog file at path. A missing file starts from the
// embedded seed so the imported recipe joins the shipped ones.
func Append(path string, rec Recipe) error {
	if err := rec.Validate(); err != nil {
		return err
	}

	recipes, err := ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		recipes, err = Seed()
	}
	if err != nil {
		return err
	}

	for _, existing := range recipes {
		if existing.ID == rec.ID {
			return fmt.Errorf("%w %q in %s", ErrDuplicateID, rec.ID, path)
		}
	}
	return WriteFile(path, append(recipes, rec))
}

func isYAML(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}
