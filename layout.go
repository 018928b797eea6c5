package graphdoc

import (
	"fmt"
	"io"
	"sort"

	"github.com/go-playground/validator"
	"gopkg.in/yaml.v3"
)

// Built-in layout names.
const (
	LayoutGraphlib = "graphlib"
	LayoutNGraph   = "ngraph"
	LayoutDefault  = LayoutNGraph
)

// NodeKeys names the physical node fields.
type NodeKeys struct {
	ID   string `json:"id" yaml:"id" validate:"required"`
	Data string `json:"data,omitempty" yaml:"data,omitempty"`
}

// EdgeKeys names the physical edge fields. Directed and Data are optional;
// leaving them empty means the layout does not support that feature.
type EdgeKeys struct {
	ID       string `json:"id" yaml:"id" validate:"required"`
	Source   string `json:"source" yaml:"source" validate:"required"`
	Target   string `json:"target" yaml:"target" validate:"required"`
	Directed string `json:"directed,omitempty" yaml:"directed,omitempty"`
	Data     string `json:"data,omitempty" yaml:"data,omitempty"`
}

// Keys maps logical roles to physical field names.
type Keys struct {
	Nodes string   `json:"nodes" yaml:"nodes" validate:"required"`
	Edges string   `json:"edges" yaml:"edges" validate:"required"`
	Node  NodeKeys `json:"node" yaml:"node"`
	Edge  EdgeKeys `json:"edge" yaml:"edge"`
}

// Layout is an immutable, named set of keys.
type Layout struct {
	Name string `json:"name" yaml:"name"`
	Keys Keys   `json:"keys" yaml:",inline"`
}

// SupportsEdgeData reports whether edges may carry a data payload.
func (l Layout) SupportsEdgeData() bool { return l.Keys.Edge.Data != "" }

// SupportsDirected reports whether edges carry a directed flag.
func (l Layout) SupportsDirected() bool { return l.Keys.Edge.Directed != "" }

// Override returns a copy of l where every non-empty field of partial wins.
func (l Layout) Override(partial Keys) Layout {
	k := &l.Keys
	pick(&k.Nodes, partial.Nodes)
	pick(&k.Edges, partial.Edges)
	pick(&k.Node.ID, partial.Node.ID)
	pick(&k.Node.Data, partial.Node.Data)
	pick(&k.Edge.ID, partial.Edge.ID)
	pick(&k.Edge.Source, partial.Edge.Source)
	pick(&k.Edge.Target, partial.Edge.Target)
	pick(&k.Edge.Directed, partial.Edge.Directed)
	pick(&k.Edge.Data, partial.Edge.Data)
	return l
}

func pick(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

var keysValidator = validator.New()

// Validate checks that every required key is present and that the collection
// keys do not collide.
func (k Keys) Validate() error {
	if err := keysValidator.Struct(k); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidLayout, err)
	}
	if k.Nodes == k.Edges {
		return fmt.Errorf("%w: nodes and edges share collection key %q", ErrInvalidLayout, k.Nodes)
	}
	if k.Nodes == LabelKey || k.Edges == LabelKey {
		return fmt.Errorf("%w: collection key %q is reserved", ErrInvalidLayout, LabelKey)
	}
	if k.Edge.Source == k.Edge.Target {
		return fmt.Errorf("%w: edge source and target share key %q", ErrInvalidLayout, k.Edge.Source)
	}
	return nil
}

// GraphlibLayout names edge endpoints source/target and supports neither
// edge data nor directed edges.
func GraphlibLayout() Layout {
	return Layout{
		Name: LayoutGraphlib,
		Keys: Keys{
			Nodes: "nodes",
			Edges: "edges",
			Node:  NodeKeys{ID: "id"},
			Edge:  EdgeKeys{ID: "id", Source: "source", Target: "target"},
		},
	}
}

// NGraphLayout stores edges as links with fromId/toId endpoints, a directed
// flag and a data payload.
func NGraphLayout() Layout {
	return Layout{
		Name: LayoutNGraph,
		Keys: Keys{
			Nodes: "nodes",
			Edges: "links",
			Node:  NodeKeys{ID: "id", Data: "data"},
			Edge: EdgeKeys{
				ID:       "id",
				Source:   "fromId",
				Target:   "toId",
				Directed: "directed",
				Data:     "data",
			},
		},
	}
}

// Registry resolves layouts by name.
type Registry struct {
	layouts  map[string]Layout
	fallback string
}

// NewRegistry returns a registry holding the built-in layouts plus extra.
func NewRegistry(extra ...Layout) (*Registry, error) {
	r := &Registry{
		layouts: map[string]Layout{
			LayoutGraphlib: GraphlibLayout(),
			LayoutNGraph:   NGraphLayout(),
		},
		fallback: LayoutDefault,
	}
	for _, l := range extra {
		if err := r.Register(l); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Register adds or replaces a named layout.
func (r *Registry) Register(l Layout) error {
	if l.Name == "" {
		return fmt.Errorf("%w: layout name is required", ErrInvalidLayout)
	}
	if err := l.Keys.Validate(); err != nil {
		return fmt.Errorf("layout %q: %w", l.Name, err)
	}
	r.layouts[l.Name] = l
	return nil
}

// SetDefault changes the fallback layout.
func (r *Registry) SetDefault(name string) error {
	if _, ok := r.layouts[name]; !ok {
		return fmt.Errorf("%w: unknown layout %q", ErrInvalidLayout, name)
	}
	r.fallback = name
	return nil
}

// Names returns the registered layout names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.layouts))
	for name := range r.layouts {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Lookup returns a named layout.
func (r *Registry) Lookup(name string) (Layout, bool) {
	l, ok := r.layouts[name]
	return l, ok
}

// Resolve picks explicit keys over a named layout over the default. An empty
// name selects the default; an unregistered name is an error.
func (r *Registry) Resolve(name string, explicit *Keys) (Layout, error) {
	if explicit != nil {
		if err := explicit.Validate(); err != nil {
			return Layout{}, err
		}
		if name == "" {
			name = "custom"
		}
		return Layout{Name: name, Keys: *explicit}, nil
	}
	if name == "" {
		return r.layouts[r.fallback], nil
	}
	l, ok := r.layouts[name]
	if !ok {
		return Layout{}, fmt.Errorf("%w: unknown layout %q", ErrInvalidLayout, name)
	}
	return l, nil
}

type layoutFile struct {
	Default string   `yaml:"default"`
	Layouts []Layout `yaml:"layouts"`
}

// LoadLayouts decodes a YAML layout file and registers its layouts. An
// optional top-level "default" entry changes the registry fallback.
func (r *Registry) LoadLayouts(src io.Reader) error {
	var f layoutFile
	if err := yaml.NewDecoder(src).Decode(&f); err != nil && err != io.EOF {
		return fmt.Errorf("graphdoc: decode layouts: %w", err)
	}
	for _, l := range f.Layouts {
		if err := r.Register(l); err != nil {
			return err
		}
	}
	if f.Default != "" {
		return r.SetDefault(f.Default)
	}
	return nil
}

var defaultRegistry, _ = NewRegistry()

// ResolveLayout resolves against the built-in layouts.
func ResolveLayout(name string, explicit *Keys) (Layout, error) {
	return defaultRegistry.Resolve(name, explicit)
}
