package season

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v2"
)

// Loader fetches a season package by name
type Loader interface {
	Load(ctx context.Context, season string) (*Package, error)
}

// LoaderFunc adapts a function to the Loader interface
type LoaderFunc func(ctx context.Context, season string) (*Package, error)

func (f LoaderFunc) Load(ctx context.Context, season string) (*Package, error) {
	return f(ctx, season)
}

// FileLoader reads <Dir>/<season>.yaml, .yml or .json
type FileLoader struct {
	Dir string
}

var extensions = []string{".yaml", ".yml", ".json"}

// Load reads, decodes and validates the season file
func (l FileLoader) Load(ctx context.Context, season string) (*Package, error) {
	if season == "" || strings.ContainsAny(season, `/\`) || strings.Contains(season, "..") {
		return nil, fmt.Errorf("%w: %q", ErrInvalidSeason, season)
	}

	for _, ext := range extensions {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		path := filepath.Join(l.Dir, season+ext)
		raw, err := os.ReadFile(path)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}

		pkg, err := Decode(raw, ext)
		if err != nil {
			return nil, fmt.Errorf("decode %s: %w", path, err)
		}
		if pkg.Season == "" {
			pkg.Season = season
		}
		if err := pkg.Validate(); err != nil {
			return nil, fmt.Errorf("validate %s: %w", path, err)
		}
		return pkg, nil
	}

	return nil, fmt.Errorf("%w: %s in %s", ErrSeasonNotFound, season, l.Dir)
}

// Decode parses a season package encoded as YAML or JSON, chosen by ext
func Decode(raw []byte, ext string) (*Package, error) {
	var pkg Package
	switch ext {
	case ".json":
		if err := json.Unmarshal(raw, &pkg); err != nil {
			return nil, fmt.Errorf("bad JSON: %w", err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(raw, &pkg); err != nil {
			return nil, fmt.Errorf("bad YAML: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported season file format: %s", ext)
	}
	return &pkg, nil
}
