// Package config holds the flat key/value map behind the config stores.
// Keys use dot notation, so "chunking.size" is size in the [chunking]
// table of the TOML file.
package config

import (
	"maps"
	"slices"
	"sync"
)

// Values is a concurrency-safe map with the lenient typed getters of
// driven.ConfigStore. A missing key or a value of the wrong kind reads as
// the zero value.
type Values struct {
	mu sync.RWMutex
	m  map[string]any
}

// NewValues takes ownership of m. A nil map starts empty.
func NewValues(m map[string]any) *Values {
	if m == nil {
		m = map[string]any{}
	}
	return &Values{m: m}
}

func (v *Values) Get(key string) (any, bool) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	val, ok := v.m[key]
	return val, ok
}

func (v *Values) GetString(key string) string {
	val, _ := v.Get(key)
	s, _ := val.(string)
	return s
}

// GetInt truncates floats. TOML decodes integers as int64.
func (v *Values) GetInt(key string) int {
	val, _ := v.Get(key)
	switch n := val.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	case float32:
		return int(n)
	}
	return 0
}

func (v *Values) GetFloat(key string) float64 {
	val, _ := v.Get(key)
	switch n := val.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int:
		return float64(n)
	case int64:
		return float64(n)
	}
	return 0
}

func (v *Values) GetBool(key string) bool {
	val, _ := v.Get(key)
	b, _ := val.(bool)
	return b
}

// Keys returns every key in sorted order.
func (v *Values) Keys() []string {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return slices.Sorted(maps.Keys(v.m))
}

// Update runs fn with the write lock held. Changes fn makes to the map
// stay even when it returns an error.
func (v *Values) Update(fn func(m map[string]any) error) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	return fn(v.m)
}

// Replace swaps the whole map, as after a reload.
func (v *Values) Replace(m map[string]any) {
	if m == nil {
		m = map[string]any{}
	}
	v.mu.Lock()
	v.m = m
	v.mu.Unlock()
}
