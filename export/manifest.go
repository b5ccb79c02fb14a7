// Package export maintains the ExportManifest: the set of generated icon
// components and its projection as an index module re-exporting each
// component, plus the distribution formats built from that index.
package export

import (
	"fmt"
	"sort"

	"github.com/c360studio/iconforge/model"
)

// Entry is one generated component in the manifest.
type Entry struct {
	// ComponentID is the exported class identifier.
	ComponentID string `yaml:"component_id" json:"componentId"`
	// Name is the safe base name, also the component file stem.
	Name string `yaml:"name" json:"name"`
	// TagName is the custom-element tag. Empty when recovered from an index.
	TagName string `yaml:"tag,omitempty" json:"tag,omitempty"`
	// Type is empty when the entry was recovered from an index.
	Type model.IconType `yaml:"type,omitempty" json:"type,omitempty"`
	// Source is the icon path relative to the icons root.
	Source string `yaml:"source,omitempty" json:"source,omitempty"`
}

// Manifest is the set of generated components keyed by name.
type Manifest struct {
	entries map[string]Entry
}

// NewManifest returns a manifest holding entries. Later entries replace
// earlier ones with the same name.
func NewManifest(entries ...Entry) *Manifest {
	m := &Manifest{entries: make(map[string]Entry, len(entries))}
	for _, e := range entries {
		m.Upsert(e)
	}
	return m
}

// Add inserts e, failing when another source already produced its name.
func (m *Manifest) Add(e Entry) error {
	if existing, ok := m.entries[e.Name]; ok && existing.Source != e.Source {
		return fmt.Errorf("component %q from %s collides with %s", e.Name, e.Source, existing.Source)
	}
	m.entries[e.Name] = e
	return nil
}

// Upsert inserts or replaces the entry with e's name.
func (m *Manifest) Upsert(e Entry) {
	m.entries[e.Name] = e
}

// Remove deletes the entry with the given name and reports whether it
// existed.
func (m *Manifest) Remove(name string) bool {
	if _, ok := m.entries[name]; !ok {
		return false
	}
	delete(m.entries, name)
	return true
}

// Get returns the entry with the given name.
func (m *Manifest) Get(name string) (Entry, bool) {
	e, ok := m.entries[name]
	return e, ok
}

// Len returns the number of entries.
func (m *Manifest) Len() int {
	return len(m.entries)
}

// Entries returns the entries sorted by name.
func (m *Manifest) Entries() []Entry {
	out := make([]Entry, 0, len(m.entries))
	for _, e := range m.entries {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Name < out[j].Name
	})
	return out
}

// CountByType returns the number of entries per icon type.
func (m *Manifest) CountByType() map[model.IconType]int {
	counts := make(map[model.IconType]int)
	for _, e := range m.entries {
		counts[e.Type]++
	}
	return counts
}
