package tile

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"tinyplanet-server/internal/resources"
)

//go:embed catalog.yaml
var defaultCatalog []byte

type catalogFile struct {
	Tiles []Spec `yaml:"tiles"`
}

// Catalog is the behaviour table of every tile kind.
type Catalog struct {
	specs    map[Kind]Spec
	maxWidth int
}

// DefaultCatalog returns the built-in table.
func DefaultCatalog() *Catalog {
	c, err := ParseCatalog(defaultCatalog)
	if err != nil {
		panic(fmt.Sprintf("tile: embedded catalog is invalid: %v", err))
	}
	return c
}

// LoadCatalog reads a replacement table from path.
func LoadCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read tile catalog: %w", err)
	}
	return ParseCatalog(data)
}

// ParseCatalog decodes a YAML table. Every kind must be described exactly once.
func ParseCatalog(data []byte) (*Catalog, error) {
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse tile catalog: %w", err)
	}

	c := &Catalog{specs: make(map[Kind]Spec, len(file.Tiles))}
	for _, spec := range file.Tiles {
		if spec.Role == "" {
			spec.Role = RoleNone
		}
		if err := validateSpec(spec); err != nil {
			return nil, err
		}
		if _, dup := c.specs[spec.Kind]; dup {
			return nil, fmt.Errorf("tile kind %s is described twice", spec.Kind)
		}
		c.specs[spec.Kind] = spec
		c.maxWidth = max(c.maxWidth, spec.Width)
	}

	for _, kind := range kinds {
		if _, ok := c.specs[kind]; !ok {
			return nil, fmt.Errorf("tile kind %s is missing from the catalog", kind)
		}
	}

	return c, nil
}

func validateSpec(s Spec) error {
	if !s.Kind.Valid() {
		return fmt.Errorf("unknown tile kind %q", s.Kind)
	}
	if s.Width <= 0 {
		return fmt.Errorf("%s: width must be positive", s.Kind)
	}
	if s.IsReceiver() && len(s.Capacity) == 0 {
		return fmt.Errorf("%s: receivers need a capacity", s.Kind)
	}
	if s.IsGenerator() && len(s.Output) == 0 {
		return fmt.Errorf("%s: generators need an output", s.Kind)
	}
	for _, keep := range s.KeepDistance {
		if !keep.Kind.Valid() || keep.Radius < 0 {
			return fmt.Errorf("%s: invalid keep distance %+v", s.Kind, keep)
		}
	}
	if err := validateCosts(s.Cost); err != nil {
		return fmt.Errorf("%s: cost: %w", s.Kind, err)
	}
	for level, row := range s.Upgrades {
		if err := validateCosts(row); err != nil {
			return fmt.Errorf("%s: upgrade %d: %w", s.Kind, level, err)
		}
	}
	if s.WorkEvery < 0 || s.WorkRange < 0 || s.WorkCost < 0 {
		return fmt.Errorf("%s: work settings must not be negative", s.Kind)
	}
	return nil
}

func validateCosts(costs []resources.Cost) error {
	for _, c := range costs {
		if c.Amount < 0 {
			return fmt.Errorf("%d %s: %w", c.Amount, c.Resource, resources.ErrNegativeCost)
		}
	}
	return nil
}

// Spec returns the behaviour of kind.
func (c *Catalog) Spec(kind Kind) (Spec, bool) {
	s, ok := c.specs[kind]
	return s, ok
}

// MustSpec is Spec for kinds known to be valid, such as those of placed tiles.
func (c *Catalog) MustSpec(kind Kind) Spec {
	s, ok := c.specs[kind]
	if !ok {
		panic(fmt.Sprintf("tile: no spec for kind %q", kind))
	}
	return s
}

// MaxWidth is the widest footprint of any kind.
func (c *Catalog) MaxWidth() int { return c.maxWidth }

// All returns every spec in the order of Kinds.
func (c *Catalog) All() []Spec {
	out := make([]Spec, 0, len(kinds))
	for _, kind := range kinds {
		out = append(out, c.specs[kind])
	}
	return out
}
