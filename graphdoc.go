// Package graphdoc mutates labeled graphs stored as flat documents made of two
// ordered collections (nodes and edges). The physical field names of those
// collections are described by a Layout, so the same engine can drive
// documents shaped for different graph back-ends.
package graphdoc

// LabelKey is the top-level document field holding the display label.
const LabelKey = "label"

// DefaultLabel is used when a graph is created without a label.
const DefaultLabel = "Graph Document"

// Entity is a single node or edge. Its field names are layout dependent.
type Entity map[string]any

// Document is the flat root structure holding the label and both collections.
// Collections are stored as []Entity under the keys named by the active Layout.
type Document map[string]any

// NewDocument returns a document seeded with a label and empty collections.
func NewDocument(label string, layout Layout) Document {
	if label == "" {
		label = DefaultLabel
	}
	return Document{
		LabelKey:          label,
		layout.Keys.Nodes: []Entity{},
		layout.Keys.Edges: []Entity{},
	}
}

// Label returns the document's display label.
func (d Document) Label() string {
	s, _ := d[LabelKey].(string)
	return s
}

// Collection returns the ordered collection stored under key. Collections
// decoded from JSON arrive as []any and are converted in place, unless they
// hold items that are not objects; those are left as stored.
func (d Document) Collection(key string) []Entity {
	switch v := d[key].(type) {
	case []Entity:
		return v
	case []any:
		out := make([]Entity, 0, len(v))
		for _, item := range v {
			switch e := item.(type) {
			case Entity:
				out = append(out, e)
			case map[string]any:
				out = append(out, Entity(e))
			}
		}
		if len(out) == len(v) {
			d[key] = out
		}
		return out
	}
	return nil
}

// wellFormed reports whether every item stored under key is an object.
func (d Document) wellFormed(key string) bool {
	items, ok := d[key].([]any)
	if !ok {
		return true
	}
	for _, item := range items {
		switch item.(type) {
		case Entity, map[string]any:
		default:
			return false
		}
	}
	return true
}

// SetCollection stores entities under key.
func (d Document) SetCollection(key string, entities []Entity) {
	d[key] = entities
}

// Clone returns a deep copy of the document.
func (d Document) Clone() Document {
	if d == nil {
		return nil
	}
	out := make(Document, len(d))
	for k, v := range d {
		out[k] = cloneValue(v)
	}
	return out
}

// Clone returns a deep copy of the entity.
func (e Entity) Clone() Entity {
	if e == nil {
		return nil
	}
	out := make(Entity, len(e))
	for k, v := range e {
		out[k] = cloneValue(v)
	}
	return out
}

// String returns the string stored under key, or "" when absent.
func (e Entity) String(key string) string {
	if key == "" {
		return ""
	}
	s, _ := e[key].(string)
	return s
}

// Bool returns the bool stored under key.
func (e Entity) Bool(key string) bool {
	if key == "" {
		return false
	}
	b, _ := e[key].(bool)
	return b
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case Entity:
		return t.Clone()
	case map[string]any:
		return map[string]any(Entity(t).Clone())
	case Document:
		return t.Clone()
	case []Entity:
		out := make([]Entity, len(t))
		for i, e := range t {
			out[i] = e.Clone()
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = cloneValue(item)
		}
		return out
	case []string:
		return append([]string(nil), t...)
	default:
		return v
	}
}
