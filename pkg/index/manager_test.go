package index

import (
	"testing"

	"github.com/ssargent/filecabinet/pkg/codec"
	"github.com/stretchr/testify/assert"
)

func TestNewSecondaryIndex(t *testing.T) {
	idx := NewSecondaryIndex("test_field", nil)

	assert.NotNil(t, idx)
	assert.Equal(t, "test_field", idx.FieldName())
	assert.Equal(t, 0, idx.Len())
}

func TestSecondaryIndex_AddLookup(t *testing.T) {
	idx := NewSecondaryIndex(FieldFirstName, FoldName)

	idx.Add("Ann", 0)
	idx.Add("ANN", 314)
	idx.Add("Bob", 157)

	assert.Equal(t, []int64{0, 314}, idx.Lookup("ann"))
	assert.Equal(t, []int64{157}, idx.Lookup("bob"))
	assert.Empty(t, idx.Lookup("carl"))
	assert.Equal(t, 2, idx.Len())
}

func TestSecondaryIndex_LookupReturnsCopy(t *testing.T) {
	idx := NewSecondaryIndex(FieldLastName, FoldName)
	idx.Add("Lee", 0)

	offsets := idx.Lookup("Lee")
	offsets[0] = 999

	assert.Equal(t, []int64{0}, idx.Lookup("Lee"))
}

func TestSecondaryIndex_Remove(t *testing.T) {
	idx := NewSecondaryIndex(FieldFirstName, FoldName)
	idx.Add("Ann", 0)
	idx.Add("Ann", 157)

	assert.True(t, idx.Remove("ann", 0))
	assert.Equal(t, []int64{157}, idx.Lookup("Ann"))

	// Removing an offset that is not present
	assert.False(t, idx.Remove("Ann", 0))
	assert.False(t, idx.Remove("Nobody", 0))

	// Removing the last offset drops the key
	assert.True(t, idx.Remove("Ann", 157))
	assert.Equal(t, 0, idx.Len())
}

func TestSecondaryIndex_Clear(t *testing.T) {
	idx := NewSecondaryIndex(FieldDateOfBirth, nil)
	idx.Add("1990-05-02", 0)
	idx.Clear()

	assert.Equal(t, 0, idx.Len())
	assert.Empty(t, idx.Lookup("1990-05-02"))
}

func TestManager_InsertAndMove(t *testing.T) {
	m := NewManager()

	ann := codec.Fields{FirstName: "Ann", LastName: "Lee", DateOfBirth: codec.Date(1990, 5, 2)}
	bob := codec.Fields{FirstName: "Bob", LastName: "Lee", DateOfBirth: codec.Date(1985, 1, 3)}

	m.Insert(ann, 0)
	m.Insert(bob, codec.RecordSize)

	assert.Equal(t, []int64{0, codec.RecordSize}, m.LastName.Lookup("LEE"))
	assert.Equal(t, []int64{0}, m.DateOfBirth.Lookup("1990-05-02"))

	anna := ann
	anna.FirstName = "Anna"
	m.Move(ann, anna, 0)

	assert.Empty(t, m.FirstName.Lookup("Ann"))
	assert.Equal(t, []int64{0}, m.FirstName.Lookup("anna"))
	// Unchanged keys keep their order
	assert.Equal(t, []int64{0, codec.RecordSize}, m.LastName.Lookup("Lee"))

	assert.Equal(t, Stats{FirstNames: 2, LastNames: 1, DatesOfBirth: 2}, m.Stats())
}

func TestManager_MoveCaseOnlyChange(t *testing.T) {
	m := NewManager()

	ann := codec.Fields{FirstName: "Ann", LastName: "Lee", DateOfBirth: codec.Date(1990, 5, 2)}
	other := codec.Fields{FirstName: "ann", LastName: "Kim", DateOfBirth: codec.Date(1990, 5, 2)}
	m.Insert(ann, 0)
	m.Insert(other, codec.RecordSize)

	upper := ann
	upper.FirstName = "ANN"
	m.Move(ann, upper, 0)

	assert.Equal(t, []int64{0, codec.RecordSize}, m.FirstName.Lookup("Ann"))
}

func TestManager_MoveDate(t *testing.T) {
	m := NewManager()

	ann := codec.Fields{FirstName: "Ann", LastName: "Lee", DateOfBirth: codec.Date(1990, 5, 2)}
	m.Insert(ann, 0)

	moved := ann
	moved.DateOfBirth = codec.Date(1991, 5, 2)
	m.Move(ann, moved, 0)

	assert.Empty(t, m.DateOfBirth.Lookup("1990-05-02"))
	assert.Equal(t, []int64{0}, m.DateOfBirth.Lookup(DateKey(codec.Date(1991, 5, 2))))

	m.Clear()
	assert.Equal(t, Stats{}, m.Stats())
}
