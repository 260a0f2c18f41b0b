package store

import (
	"sync"

	"github.com/google/btree"
)

const idIndexDegree = 32

type idEntry struct {
	id     int32
	offset int64
}

func idLess(a, b idEntry) bool {
	return a.id < b.id
}

// IDIndex maps record ids to their offsets in the data file
type IDIndex struct {
	tree  *btree.BTreeG[idEntry]
	mutex sync.RWMutex
}

// NewIDIndex creates an empty id index
func NewIDIndex() *IDIndex {
	return &IDIndex{
		tree: btree.NewG[idEntry](idIndexDegree, idLess),
	}
}

// Put adds an entry and reports whether the id was already present
func (idx *IDIndex) Put(id int32, offset int64) bool {
	idx.mutex.Lock()
	defer idx.mutex.Unlock()

	_, replaced := idx.tree.ReplaceOrInsert(idEntry{id: id, offset: offset})
	return replaced
}

// Get returns the offset of a record
func (idx *IDIndex) Get(id int32) (int64, bool) {
	idx.mutex.RLock()
	defer idx.mutex.RUnlock()

	entry, ok := idx.tree.Get(idEntry{id: id})
	return entry.offset, ok
}

// Size returns the number of ids in the index
func (idx *IDIndex) Size() int {
	idx.mutex.RLock()
	defer idx.mutex.RUnlock()

	return idx.tree.Len()
}

// Max returns the largest id, or 0 when the index is empty
func (idx *IDIndex) Max() int32 {
	idx.mutex.RLock()
	defer idx.mutex.RUnlock()

	entry, ok := idx.tree.Max()
	if !ok {
		return 0
	}
	return entry.id
}

// Ascend calls fn for every id in ascending order until fn returns false
func (idx *IDIndex) Ascend(fn func(id int32, offset int64) bool) {
	idx.mutex.RLock()
	defer idx.mutex.RUnlock()

	idx.tree.Ascend(func(e idEntry) bool {
		return fn(e.id, e.offset)
	})
}

// Clear removes all entries from the index
func (idx *IDIndex) Clear() {
	idx.mutex.Lock()
	defer idx.mutex.Unlock()

	idx.tree.Clear(false)
}
