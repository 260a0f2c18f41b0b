package generator

import (
	"bytes"
	"math"
	"testing"
	"time"

	"github.com/ssargent/filecabinet/pkg/codec"
	"github.com/ssargent/filecabinet/pkg/snapshot"
	"github.com/ssargent/filecabinet/pkg/validation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func policy(t *testing.T, name string) *validation.Policy {
	t.Helper()
	p, err := validation.ByName(name)
	require.NoError(t, err)
	return p
}

func TestGenerate_SatisfiesPolicy(t *testing.T) {
	for _, name := range validation.Names() {
		t.Run(name, func(t *testing.T) {
			p := policy(t, name)
			g := New(p, WithSeed(42))

			snap, err := g.Generate(10, 200)
			require.NoError(t, err)
			require.Equal(t, 200, snap.Len())

			for i, r := range snap.Records() {
				assert.Equal(t, int32(10+i), r.ID)
				assert.NoError(t, p.Validate(r.Fields), "record %d", r.ID)
				assert.Equal(t, r.DateOfBirth, codec.Date(r.DateOfBirth.Year(), int(r.DateOfBirth.Month()), r.DateOfBirth.Day()))
				assert.LessOrEqual(t, -r.Salary.Exponent(), int32(2))
			}
		})
	}
}

func TestGenerate_GradeClass(t *testing.T) {
	digits, err := New(policy(t, validation.PolicyCustom), WithSeed(1)).Generate(1, 50)
	require.NoError(t, err)
	for _, r := range digits.Records() {
		assert.True(t, r.Grade >= '0' && r.Grade <= '9', "grade %q", r.Grade)
	}

	letters, err := New(policy(t, validation.PolicyDefault), WithSeed(1)).Generate(1, 50)
	require.NoError(t, err)
	for _, r := range letters.Records() {
		assert.True(t, r.Grade >= 'A' && r.Grade <= 'Z', "grade %q", r.Grade)
	}
}

func TestGenerate_Seeded(t *testing.T) {
	names := func() (func() string, func() string) {
		return func() string { return "Ann" }, func() string { return "Lee" }
	}

	first, last := names()
	a, err := New(policy(t, validation.PolicyDefault), WithSeed(7), WithNames(first, last)).Generate(1, 20)
	require.NoError(t, err)

	first, last = names()
	b, err := New(policy(t, validation.PolicyDefault), WithSeed(7), WithNames(first, last)).Generate(1, 20)
	require.NoError(t, err)

	for i := range a.Records() {
		assert.True(t, a.Records()[i].Fields.Equal(b.Records()[i].Fields))
	}
}

func TestGenerate_InvalidArguments(t *testing.T) {
	g := New(policy(t, validation.PolicyDefault))

	tests := []struct {
		name    string
		startID int32
		amount  int
	}{
		{"zero amount", 1, 0},
		{"negative amount", 1, -5},
		{"zero start id", 0, 10},
		{"ids overflow", math.MaxInt32 - 1, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := g.Generate(tt.startID, tt.amount)
			assert.Error(t, err)
		})
	}

	snap, err := g.Generate(math.MaxInt32, 1)
	require.NoError(t, err)
	assert.Equal(t, int32(math.MaxInt32), snap.Records()[0].ID)
}

func TestGenerate_RetriesNames(t *testing.T) {
	calls := 0
	first := func() string {
		calls++
		if calls < 3 {
			return "Bartholomew-Maximilian"
		}
		return "Ann"
	}
	g := New(policy(t, validation.PolicyCustom), WithNames(first, func() string { return "Lee" }))

	r, err := g.Record(1)
	require.NoError(t, err)
	assert.Equal(t, "Ann", r.FirstName)
	assert.Equal(t, 3, calls)

	g = New(policy(t, validation.PolicyCustom), WithNames(func() string { return "X" }, func() string { return "Lee" }))
	_, err = g.Record(1)
	assert.ErrorContains(t, err, "no acceptable name")
}

func TestGenerate_RespectsClock(t *testing.T) {
	now := time.Date(1950, 1, 5, 12, 0, 0, 0, time.UTC)
	p := policy(t, validation.PolicyDefault).WithClock(func() time.Time { return now })

	snap, err := New(p, WithSeed(3)).Generate(1, 30)
	require.NoError(t, err)
	for _, r := range snap.Records() {
		assert.False(t, r.DateOfBirth.Before(codec.Date(1950, 1, 1)))
		assert.False(t, r.DateOfBirth.After(now))
	}
}

func TestGenerate_WritesSnapshot(t *testing.T) {
	snap, err := New(policy(t, validation.PolicyDefault), WithSeed(9)).Generate(1, 25)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, snap.WriteCSV(&buf))

	back, err := snapshot.ReadCSV(&buf)
	require.NoError(t, err)
	assert.Empty(t, back.Rejected())
	require.Equal(t, snap.Len(), back.Len())
	for i, r := range back.Records() {
		assert.True(t, r.Fields.Equal(snap.Records()[i].Fields))
	}
}
