// Package core holds the domain of the format bridge: mod references, the
// in-memory document value and the failure taxonomy.
package core

import (
	"math/big"
	"path/filepath"
)

const (
	// ModsDirName is the fixed subdirectory of the game directory holding mods.
	ModsDirName = "Mods"
	// SourceFileName is the human-editable document shipped with every mod.
	SourceFileName = "everest.yaml"
	// ArtifactFileName is the machine-editable intermediate artifact.
	ArtifactFileName = "everest.TTNexus.temp"
)

// ModRef identifies a mod by the game directory and the mod folder name.
// Paths are resolved by concatenation; nothing is created.
type ModRef struct {
	BaseDir string
	Name    string
}

// ModsDir returns <BaseDir>/Mods.
func (m ModRef) ModsDir() string {
	return filepath.Join(m.BaseDir, ModsDirName)
}

// Dir returns <BaseDir>/Mods/<Name>.
func (m ModRef) Dir() string {
	return filepath.Join(m.ModsDir(), m.Name)
}

// SourcePath returns the path of everest.yaml inside the mod.
func (m ModRef) SourcePath() string {
	return filepath.Join(m.Dir(), SourceFileName)
}

// ArtifactPath returns the path of the intermediate artifact inside the mod.
func (m ModRef) ArtifactPath() string {
	return filepath.Join(m.Dir(), ArtifactFileName)
}

// Value is a decoded document node. It is one of nil, bool, int64, float64,
// string, []any or *Map. Integers outside the int64 range are *big.Int.
type Value = any

// Map is a string-keyed mapping that remembers insertion order.
type Map struct {
	keys   []string
	values map[string]Value
}

// NewMap creates an empty ordered map.
func NewMap() *Map {
	return &Map{values: make(map[string]Value)}
}

// Set stores v under key. Overwriting keeps the key's original position.
func (m *Map) Set(key string, v Value) {
	if m.values == nil {
		m.values = make(map[string]Value)
	}
	if _, ok := m.values[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.values[key] = v
}

// Get returns the value stored under key.
func (m *Map) Get(key string) (Value, bool) {
	if m == nil {
		return nil, false
	}
	v, ok := m.values[key]
	return v, ok
}

// Keys returns the keys in insertion order.
func (m *Map) Keys() []string {
	if m == nil {
		return nil
	}
	out := make([]string, len(m.keys))
	copy(out, m.keys)
	return out
}

// Len returns the number of entries.
func (m *Map) Len() int {
	if m == nil {
		return 0
	}
	return len(m.keys)
}

// Equal reports whether two values are structurally identical, including
// the key order of every nested map.
func Equal(a, b Value) bool {
	return compare(a, b, true)
}

// Equivalent reports whether two values hold the same data regardless of
// map key order.
func Equivalent(a, b Value) bool {
	return compare(a, b, false)
}

func compare(a, b Value, ordered bool) bool {
	switch av := a.(type) {
	case nil:
		return b == nil
	case *Map:
		bv, ok := b.(*Map)
		if !ok || av.Len() != bv.Len() {
			return false
		}
		for i, k := range av.keys {
			if ordered && bv.keys[i] != k {
				return false
			}
			other, ok := bv.values[k]
			if !ok || !compare(av.values[k], other, ordered) {
				return false
			}
		}
		return true
	case []any:
		bv, ok := b.([]any)
		if !ok || len(av) != len(bv) {
			return false
		}
		for i := range av {
			if !compare(av[i], bv[i], ordered) {
				return false
			}
		}
		return true
	case int64:
		switch bv := b.(type) {
		case int64:
			return av == bv
		case float64:
			return float64(av) == bv
		}
		return false
	case float64:
		switch bv := b.(type) {
		case float64:
			return av == bv
		case int64:
			return av == float64(bv)
		}
		return false
	case *big.Int:
		bv, ok := b.(*big.Int)
		return ok && av.Cmp(bv) == 0
	default:
		return a == b
	}
}
