package extraction

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var embeddedCatalog []byte

//go:embed catalog.schema.json
var catalogSchema []byte

// ErrInvalidCatalog is returned when a catalog document fails validation.
var ErrInvalidCatalog = errors.New("invalid field catalog")

// Catalog maps every canonical field to its ordered label variants.
// A Catalog is immutable once built and safe for concurrent use.
type Catalog struct {
	order    []FieldName
	variants map[FieldName][]string
}

type catalogDocument struct {
	Version int `yaml:"version"`
	Fields  []struct {
		Name     string   `yaml:"name"`
		Variants []string `yaml:"variants"`
	} `yaml:"fields"`
}

var defaultCatalog = sync.OnceValue(func() *Catalog {
	c, err := ParseCatalog(embeddedCatalog)
	if err != nil {
		panic(fmt.Sprintf("embedded field catalog: %v", err))
	}
	return c
})

// DefaultCatalog returns the catalog compiled into the binary.
func DefaultCatalog() *Catalog {
	return defaultCatalog()
}

// LoadCatalog reads a catalog override from a YAML file.
func LoadCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog %s: %w", path, err)
	}
	c, err := ParseCatalog(data)
	if err != nil {
		return nil, fmt.Errorf("catalog %s: %w", path, err)
	}
	return c, nil
}

// ParseCatalog validates a YAML catalog document and builds a Catalog.
// Every canonical field must appear exactly once.
func ParseCatalog(data []byte) (*Catalog, error) {
	if err := ValidateCatalogDocument(data); err != nil {
		return nil, err
	}

	var doc catalogDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCatalog, err)
	}

	c := &Catalog{variants: make(map[FieldName][]string, len(canonicalFields))}
	for _, f := range doc.Fields {
		name := FieldName(f.Name)
		if !IsCanonical(name) {
			return nil, fmt.Errorf("%w: unknown field %q", ErrInvalidCatalog, f.Name)
		}
		if _, dup := c.variants[name]; dup {
			return nil, fmt.Errorf("%w: field %q listed twice", ErrInvalidCatalog, f.Name)
		}
		variants := make([]string, 0, len(f.Variants))
		for _, v := range f.Variants {
			variants = append(variants, strings.ToLower(strings.TrimSpace(v)))
		}
		c.variants[name] = variants
	}

	for _, name := range canonicalFields {
		if _, ok := c.variants[name]; !ok {
			return nil, fmt.Errorf("%w: missing field %q", ErrInvalidCatalog, name)
		}
		c.order = append(c.order, name)
	}
	return c, nil
}

// ValidateCatalogDocument checks a YAML catalog document against the catalog
// JSON schema.
func ValidateCatalogDocument(data []byte) error {
	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidCatalog, err)
	}
	// Round-trip through JSON so the validator sees JSON-native types.
	b, err := json.Marshal(raw)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidCatalog, err)
	}
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidCatalog, err)
	}

	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("catalog.schema.json", bytes.NewReader(catalogSchema)); err != nil {
		return fmt.Errorf("add catalog schema: %w", err)
	}
	schema, err := compiler.Compile("catalog.schema.json")
	if err != nil {
		return fmt.Errorf("compile catalog schema: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidCatalog, err)
	}
	return nil
}

// Fields returns the catalog's fields in canonical order.
func (c *Catalog) Fields() []FieldName {
	out := make([]FieldName, len(c.order))
	copy(out, c.order)
	return out
}

// Variants returns the lower-cased label variants for a field, most specific
// first. Unknown fields have no variants.
func (c *Catalog) Variants(name FieldName) []string {
	v := c.variants[name]
	out := make([]string, len(v))
	copy(out, v)
	return out
}
