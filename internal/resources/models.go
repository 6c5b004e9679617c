package resources

import (
	"fmt"
	"slices"
)

// Resource is one of the countable materials the player collects.
type Resource int

const (
	Wood Resource = iota
	Stone
	Copper
)

var all = []Resource{Wood, Stone, Copper}

// All lists every resource in display order.
func All() []Resource {
	return slices.Clone(all)
}

var names = map[Resource]string{
	Wood:   "wood",
	Stone:  "stone",
	Copper: "copper",
}

func (r Resource) String() string {
	if name, ok := names[r]; ok {
		return name
	}
	return fmt.Sprintf("resource(%d)", int(r))
}

// Parse resolves a resource from its name.
func Parse(name string) (Resource, error) {
	for r, n := range names {
		if n == name {
			return r, nil
		}
	}
	return 0, fmt.Errorf("unknown resource %q", name)
}

func (r Resource) MarshalText() ([]byte, error) {
	if _, ok := names[r]; !ok {
		return nil, fmt.Errorf("unknown resource %d", int(r))
	}
	return []byte(r.String()), nil
}

func (r *Resource) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// Cost is a single line item of a price.
type Cost struct {
	Resource Resource `json:"resource" yaml:"resource"`
	Amount   int      `json:"amount" yaml:"amount"`
}

// InsufficientError reports the first resource a spend could not cover.
type InsufficientError struct {
	Resource  Resource
	Shortfall int
}

func (e *InsufficientError) Error() string {
	return fmt.Sprintf("insufficient %s: short by %d", e.Resource, e.Shortfall)
}
