package store

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/segmentio/ksuid"
	"github.com/shopspring/decimal"
	"github.com/ssargent/filecabinet/pkg/codec"
	"github.com/ssargent/filecabinet/pkg/snapshot"
	"github.com/ssargent/filecabinet/pkg/validation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEngine_Restore(t *testing.T) {
	e, _ := newTestEngine(t)

	_, err := e.CreateRecord(ann())
	require.NoError(t, err)

	tooShort := ann()
	tooShort.Height = 20

	s := snapshot.New([]codec.Record{
		{ID: 1, Fields: person("Anna", "Lee", ann())},
		{ID: 50, Fields: person("Bob", "Ray", ann())},
		{ID: 51, Fields: tooShort},
	})

	result, err := e.Restore(s)
	require.NoError(t, err)

	assert.Equal(t, 1, result.Updated)
	assert.Equal(t, 1, result.Created)
	require.Len(t, result.Skipped, 1)
	assert.Equal(t, int32(51), result.Skipped[0].ID)
	assert.Equal(t, validation.FieldHeight, result.Skipped[0].Field)

	_, err = ksuid.Parse(result.BatchID)
	assert.NoError(t, err)

	assert.Equal(t, 2, e.GetStat())

	r, err := e.GetRecord(1)
	require.NoError(t, err)
	assert.Equal(t, "Anna", r.FirstName)

	// New records receive the next free id
	found, err := e.FindByFirstName("Bob")
	require.NoError(t, err)
	assert.Equal(t, []int32{2}, ids(found))

	_, err = e.GetRecord(50)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestEngine_RestoreClosed(t *testing.T) {
	e, _ := newTestEngine(t)
	require.NoError(t, e.Close())

	_, err := e.Restore(snapshot.New(nil))
	assert.ErrorIs(t, err, ErrClosed)
}

func TestEngine_ExportImportRoundTrip(t *testing.T) {
	source, _ := newTestEngine(t)

	people := []codec.Fields{
		ann(),
		person("Jean, Paul", `O"Brien`, ann()),
		{FirstName: "Zoë", LastName: "Kim", DateOfBirth: codec.Date(1985, 1, 3), Height: 181,
			Salary: decimal.RequireFromString("1234.5678"), Grade: 'B'},
	}
	for _, f := range people {
		_, err := source.CreateRecord(f)
		require.NoError(t, err)
	}

	s, err := source.Snapshot()
	require.NoError(t, err)
	assert.Equal(t, 3, s.Len())

	for _, format := range []string{snapshot.FormatCSV, snapshot.FormatXML} {
		t.Run(format, func(t *testing.T) {
			var buf bytes.Buffer
			var imported *snapshot.Snapshot
			if format == snapshot.FormatCSV {
				require.NoError(t, s.WriteCSV(&buf))
				imported, err = snapshot.ReadCSV(&buf)
			} else {
				require.NoError(t, s.WriteXML(&buf))
				imported, err = snapshot.ReadXML(&buf)
			}
			require.NoError(t, err)

			target := openEngine(t, filepath.Join(t.TempDir(), "target.db"))
			result, err := target.Restore(imported)
			require.NoError(t, err)
			assert.Equal(t, 3, result.Created)
			assert.Empty(t, result.Skipped)

			records, err := target.GetRecords()
			require.NoError(t, err)
			require.Len(t, records, len(people))
			for i, f := range people {
				assert.Equal(t, int32(i+1), records[i].ID)
				assert.True(t, records[i].Fields.Equal(f), "record %d", i+1)
			}
		})
	}
}

func TestEngine_RestoreKeepsRenumberedRecords(t *testing.T) {
	t.Run("empty store", func(t *testing.T) {
		e, _ := newTestEngine(t)

		s := snapshot.New([]codec.Record{
			{ID: 5, Fields: person("Alice", "Smith", ann())},
			{ID: 1, Fields: person("Bob", "Ray", ann())},
		})

		result, err := e.Restore(s)
		require.NoError(t, err)
		assert.Equal(t, 2, result.Created)
		assert.Equal(t, 0, result.Updated)
		assert.Equal(t, 2, e.GetStat())

		alice, err := e.FindByFirstName("Alice")
		require.NoError(t, err)
		assert.Equal(t, []int32{1}, ids(alice))

		bob, err := e.FindByFirstName("Bob")
		require.NoError(t, err)
		assert.Equal(t, []int32{2}, ids(bob))
	})

	t.Run("existing records", func(t *testing.T) {
		e, _ := newTestEngine(t)
		_, err := e.CreateRecord(ann())
		require.NoError(t, err)

		s := snapshot.New([]codec.Record{
			{ID: 7, Fields: person("Carl", "Moss", ann())},
			{ID: 2, Fields: person("Dan", "Hale", ann())},
			{ID: 1, Fields: person("Anna", "Lee", ann())},
		})

		result, err := e.Restore(s)
		require.NoError(t, err)
		assert.Equal(t, 2, result.Created)
		assert.Equal(t, 1, result.Updated)

		records, err := e.GetRecords()
		require.NoError(t, err)
		require.Len(t, records, 3)
		assert.Equal(t, "Anna", records[0].FirstName)
		assert.Equal(t, "Carl", records[1].FirstName)
		assert.Equal(t, int32(2), records[1].ID)
		assert.Equal(t, "Dan", records[2].FirstName)
		assert.Equal(t, int32(3), records[2].ID)
	})
}
