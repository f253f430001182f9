package catalog

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/sullis/logging-log4j-audit/pkg/platform/sentinel"
)

// Source produces a catalog document. Implementations load from a file, a
// database, or a cache; the result is indexed into a MemoryManager once and
// reused for the life of the process.
type Source interface {
	Load(ctx context.Context) (*Catalog, error)
}

// FileSource loads a YAML catalog document from disk.
type FileSource struct {
	Path string
}

func (s FileSource) Load(_ context.Context) (*Catalog, error) {
	data, err := os.ReadFile(s.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("catalog file %s: %w", s.Path, sentinel.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("read catalog file: %w", err)
	}
	return Parse(data)
}

// Parse decodes and sanity-checks a YAML catalog document.
func Parse(data []byte) (*Catalog, error) {
	var cat Catalog
	if err := yaml.Unmarshal(data, &cat); err != nil {
		return nil, fmt.Errorf("parse catalog yaml: %w", err)
	}
	if err := validate(&cat); err != nil {
		return nil, err
	}
	return &cat, nil
}

// validate rejects documents the manager cannot index unambiguously.
// Events referencing undefined attributes are allowed: catalogs are authored
// externally and the validator treats the drift as a runtime guard rail.
func validate(cat *Catalog) error {
	seenAttrs := make(map[string]struct{}, len(cat.Attributes))
	for _, attr := range cat.Attributes {
		if attr.Name == "" {
			return fmt.Errorf("catalog attribute with empty name")
		}
		if _, dup := seenAttrs[attr.Name]; dup {
			return fmt.Errorf("duplicate attribute definition %q", attr.Name)
		}
		seenAttrs[attr.Name] = struct{}{}
	}

	seenEvents := make(map[eventKey]struct{}, len(cat.Events))
	for _, event := range cat.Events {
		if event.Name == "" {
			return fmt.Errorf("catalog event with empty name")
		}
		catalogID := event.CatalogID
		if catalogID == "" {
			catalogID = DefaultCatalogID
		}
		key := eventKey{event.Name, catalogID}
		if _, dup := seenEvents[key]; dup {
			return fmt.Errorf("duplicate event %q in catalog %q", event.Name, catalogID)
		}
		seenEvents[key] = struct{}{}
	}
	return nil
}
