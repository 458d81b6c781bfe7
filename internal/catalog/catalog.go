package catalog

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"os"

	"github.com/phrazzld/stargazer/internal/domain"
	"gopkg.in/yaml.v3"
)

// MaxFileSize bounds catalog files read from disk.
const MaxFileSize = 1024 * 1024

// ErrInvalidCatalog is returned when a catalog file is malformed or
// references unknown tags.
var ErrInvalidCatalog = errors.New("invalid catalog")

//go:embed default_catalog.yaml
var defaultCatalogYAML []byte

// Default returns the built-in astronomy catalog.
func Default() (domain.Catalog, error) {
	return Parse(defaultCatalogYAML)
}

// Load reads the catalog at path. An empty path selects the built-in catalog.
func Load(path string) (domain.Catalog, error) {
	if path == "" {
		return Default()
	}

	info, err := os.Stat(path)
	if err != nil {
		return domain.Catalog{}, fmt.Errorf("stat catalog %s: %w", path, err)
	}
	if info.Size() > MaxFileSize {
		return domain.Catalog{}, fmt.Errorf("%w: %s is %d bytes, limit is %d", ErrInvalidCatalog, path, info.Size(), MaxFileSize)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return domain.Catalog{}, fmt.Errorf("read catalog %s: %w", path, err)
	}
	cat, err := Parse(data)
	if err != nil {
		return domain.Catalog{}, fmt.Errorf("%s: %w", path, err)
	}
	return cat, nil
}

// Parse decodes and validates a YAML catalog. Unknown fields are rejected.
func Parse(data []byte) (domain.Catalog, error) {
	var cat domain.Catalog
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cat); err != nil {
		return domain.Catalog{}, fmt.Errorf("%w: %v", ErrInvalidCatalog, err)
	}
	if err := Validate(cat); err != nil {
		return domain.Catalog{}, err
	}
	return cat, nil
}

// Validate checks identifiers are present and unique and that every tag
// belongs to the taxonomy.
func Validate(cat domain.Catalog) error {
	slugs := make(map[string]struct{}, len(cat.Lessons))
	for i, l := range cat.Lessons {
		if l.Slug == "" {
			return fmt.Errorf("%w: lesson %d has no slug", ErrInvalidCatalog, i)
		}
		if _, dup := slugs[l.Slug]; dup {
			return fmt.Errorf("%w: duplicate lesson slug %q", ErrInvalidCatalog, l.Slug)
		}
		slugs[l.Slug] = struct{}{}
		if err := validateTags("lesson "+l.Slug, l.Tags); err != nil {
			return err
		}
	}

	ids := make(map[string]struct{}, len(cat.Quizzes))
	for i, q := range cat.Quizzes {
		if q.ID == "" {
			return fmt.Errorf("%w: quiz %d has no id", ErrInvalidCatalog, i)
		}
		if _, dup := ids[q.ID]; dup {
			return fmt.Errorf("%w: duplicate quiz id %q", ErrInvalidCatalog, q.ID)
		}
		ids[q.ID] = struct{}{}
		if err := validateTags("quiz "+q.ID, q.Tags); err != nil {
			return err
		}
	}
	return nil
}

func validateTags(owner string, tags []domain.Tag) error {
	if len(tags) == 0 {
		return fmt.Errorf("%w: %s has no tags", ErrInvalidCatalog, owner)
	}
	for _, tag := range tags {
		if !tag.IsKnown() {
			return fmt.Errorf("%w: %s has unknown tag %q", ErrInvalidCatalog, owner, tag)
		}
	}
	return nil
}
