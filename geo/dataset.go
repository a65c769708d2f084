// Package geo reads GEO series metadata (SOFT "family" files) into an
// in-memory dataset handle and prints human-readable summaries of it.
package geo

import (
	"time"

	"github.com/araddon/dateparse"
)

// Kinds of SOFT entity.
const (
	KindDatabase = "DATABASE"
	KindSeries   = "SERIES"
	KindPlatform = "PLATFORM"
	KindSample   = "SAMPLE"
)

// Metadata maps a key to its values, remembering the order in which keys were
// first seen.
type Metadata struct {
	keys   []string
	values map[string][]string
}

// Add appends value to key.
func (m *Metadata) Add(key, value string) {
	if m.values == nil {
		m.values = make(map[string][]string)
	}
	if _, exists := m.values[key]; !exists {
		m.keys = append(m.keys, key)
	}
	m.values[key] = append(m.values[key], value)
}

// Keys returns the keys in the order they were first added.
func (m *Metadata) Keys() []string {
	return append([]string(nil), m.keys...)
}

// Get returns every value recorded for key.
func (m *Metadata) Get(key string) []string {
	return m.values[key]
}

// First returns the first value recorded for key, or "" if there is none.
func (m *Metadata) First(key string) string {
	if v := m.values[key]; len(v) > 0 {
		return v[0]
	}
	return ""
}

// Len is the number of distinct keys.
func (m *Metadata) Len() int {
	return len(m.keys)
}

// Table is the tabular block attached to a sample or platform.
type Table struct {
	Header []string
	Rows   [][]string
}

// Head returns a table with at most n rows.
func (t *Table) Head(n int) *Table {
	if t == nil {
		return nil
	}
	if n < 0 {
		n = 0
	}
	if n > len(t.Rows) {
		n = len(t.Rows)
	}
	return &Table{Header: t.Header, Rows: t.Rows[:n]}
}

// Entity is one ^SAMPLE, ^PLATFORM or ^SERIES block.
type Entity struct {
	Kind     string
	Name     string
	Metadata Metadata

	// Columns describes table columns (from "#NAME = description" lines).
	Columns map[string]string
	Table   *Table
}

// SubmissionDate parses the entity's submission_date, if it has one.
func (e *Entity) SubmissionDate() (time.Time, bool) {
	raw := e.Metadata.First("submission_date")
	if raw == "" {
		return time.Time{}, false
	}

	if t, err := dateparse.ParseAny(raw); err == nil {
		return t, true
	}

	// GEO writes dates like "Jan 15 2010", which dateparse may not recognize.
	if t, err := time.Parse("Jan 2 2006", raw); err == nil {
		return t, true
	}

	return time.Time{}, false
}

// Characteristics parses the "key: value" entries of characteristics_ch1.
func (e *Entity) Characteristics() (map[string]string, error) {
	return ParseKeyValues(e.Metadata.Get("characteristics_ch1"), ":")
}

// Dataset is a GEO series together with its platforms and samples.
type Dataset struct {
	Accession string
	Metadata  Metadata
	Platforms []*Entity
	Samples   []*Entity
}

// SampleNames returns the sample accessions in the order the series lists
// them.
func (d *Dataset) SampleNames() []string {
	out := make([]string, 0, len(d.Samples))
	for _, s := range d.Samples {
		out = append(out, s.Name)
	}
	return out
}

// Sample returns the named sample, or nil.
func (d *Dataset) Sample(name string) *Entity {
	return find(d.Samples, name)
}

// Platform returns the named platform, or nil.
func (d *Dataset) Platform(name string) *Entity {
	return find(d.Platforms, name)
}

func find(entities []*Entity, name string) *Entity {
	for _, e := range entities {
		if e.Name == name {
			return e
		}
	}
	return nil
}
