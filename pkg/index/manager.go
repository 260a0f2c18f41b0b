// Package index maintains the in-memory secondary indexes that map a field
// value to the byte offsets of the records holding it.
package index

import (
	"strings"
	"sync"
	"time"

	"github.com/ssargent/filecabinet/pkg/codec"
)

// Field names of the managed indexes
const (
	FieldFirstName   = "first_name"
	FieldLastName    = "last_name"
	FieldDateOfBirth = "date_of_birth"
)

// DateKeyLayout formats dates used as index keys
const DateKeyLayout = "2006-01-02"

// SecondaryIndex maps a normalized key to the ordered offsets of matching records
type SecondaryIndex struct {
	fieldName string
	normalize func(string) string
	entries   map[string][]int64
	mutex     sync.RWMutex
}

// NewSecondaryIndex creates a new secondary index for a field. A nil
// normalize function keeps keys as given.
func NewSecondaryIndex(fieldName string, normalize func(string) string) *SecondaryIndex {
	if normalize == nil {
		normalize = func(s string) string { return s }
	}
	return &SecondaryIndex{
		fieldName: fieldName,
		normalize: normalize,
		entries:   make(map[string][]int64),
	}
}

// FieldName returns the indexed field
func (idx *SecondaryIndex) FieldName() string {
	return idx.fieldName
}

// Add appends an offset to the list for key
func (idx *SecondaryIndex) Add(key string, offset int64) {
	idx.mutex.Lock()
	defer idx.mutex.Unlock()

	k := idx.normalize(key)
	idx.entries[k] = append(idx.entries[k], offset)
}

// Remove deletes an offset from the list for key. Empty lists are dropped.
func (idx *SecondaryIndex) Remove(key string, offset int64) bool {
	idx.mutex.Lock()
	defer idx.mutex.Unlock()

	k := idx.normalize(key)
	offsets, exists := idx.entries[k]
	if !exists {
		return false
	}

	for i, off := range offsets {
		if off != offset {
			continue
		}
		offsets = append(offsets[:i], offsets[i+1:]...)
		if len(offsets) == 0 {
			delete(idx.entries, k)
		} else {
			idx.entries[k] = offsets
		}
		return true
	}
	return false
}

// Lookup returns a copy of the offsets stored for key, in insertion order
func (idx *SecondaryIndex) Lookup(key string) []int64 {
	idx.mutex.RLock()
	defer idx.mutex.RUnlock()

	offsets := idx.entries[idx.normalize(key)]
	result := make([]int64, len(offsets))
	copy(result, offsets)
	return result
}

// Len returns the number of distinct keys
func (idx *SecondaryIndex) Len() int {
	idx.mutex.RLock()
	defer idx.mutex.RUnlock()

	return len(idx.entries)
}

// Clear removes all entries from the index
func (idx *SecondaryIndex) Clear() {
	idx.mutex.Lock()
	defer idx.mutex.Unlock()

	idx.entries = make(map[string][]int64)
}

// FoldName normalizes a name for case-insensitive lookups
func FoldName(name string) string {
	return strings.ToLower(name)
}

// DateKey returns the index key for a date of birth
func DateKey(t time.Time) string {
	return t.Format(DateKeyLayout)
}

// Manager owns the first name, last name and date of birth indexes
type Manager struct {
	FirstName   *SecondaryIndex
	LastName    *SecondaryIndex
	DateOfBirth *SecondaryIndex
}

// NewManager creates empty indexes for all three fields
func NewManager() *Manager {
	return &Manager{
		FirstName:   NewSecondaryIndex(FieldFirstName, FoldName),
		LastName:    NewSecondaryIndex(FieldLastName, FoldName),
		DateOfBirth: NewSecondaryIndex(FieldDateOfBirth, nil),
	}
}

// Insert indexes a record stored at offset
func (m *Manager) Insert(f codec.Fields, offset int64) {
	m.FirstName.Add(f.FirstName, offset)
	m.LastName.Add(f.LastName, offset)
	m.DateOfBirth.Add(DateKey(f.DateOfBirth), offset)
}

// Move re-indexes a record overwritten in place. Only keys whose normalized
// value changed are touched, so an unchanged key keeps its position.
func (m *Manager) Move(old, updated codec.Fields, offset int64) {
	if FoldName(old.FirstName) != FoldName(updated.FirstName) {
		m.FirstName.Remove(old.FirstName, offset)
		m.FirstName.Add(updated.FirstName, offset)
	}
	if FoldName(old.LastName) != FoldName(updated.LastName) {
		m.LastName.Remove(old.LastName, offset)
		m.LastName.Add(updated.LastName, offset)
	}
	if !codec.SameDate(old.DateOfBirth, updated.DateOfBirth) {
		m.DateOfBirth.Remove(DateKey(old.DateOfBirth), offset)
		m.DateOfBirth.Add(DateKey(updated.DateOfBirth), offset)
	}
}

// Clear empties all indexes
func (m *Manager) Clear() {
	m.FirstName.Clear()
	m.LastName.Clear()
	m.DateOfBirth.Clear()
}

// Stats holds the number of distinct keys per index
type Stats struct {
	FirstNames   int `json:"first_names"`
	LastNames    int `json:"last_names"`
	DatesOfBirth int `json:"dates_of_birth"`
}

// Stats returns index statistics
func (m *Manager) Stats() Stats {
	return Stats{
		FirstNames:   m.FirstName.Len(),
		LastNames:    m.LastName.Len(),
		DatesOfBirth: m.DateOfBirth.Len(),
	}
}
