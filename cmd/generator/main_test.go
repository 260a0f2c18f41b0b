package main

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ssargent/filecabinet/pkg/snapshot"
	"github.com/ssargent/filecabinet/pkg/validation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name   string
		format string
		rules  string
		read   func(io.Reader) (*snapshot.Snapshot, error)
	}{
		{"csv default rules", "csv", validation.PolicyDefault, snapshot.ReadCSV},
		{"xml custom rules", "XML", validation.PolicyCustom, snapshot.ReadXML},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, "records."+strings.ToLower(tt.format))
			var out bytes.Buffer

			err := generate(Options{
				OutputType:      tt.format,
				Output:          path,
				Amount:          40,
				StartID:         500,
				ValidationRules: tt.rules,
				Seed:            11,
			}, strings.NewReader(""), &out)
			require.NoError(t, err)
			assert.Equal(t, "40 records were written to "+path+".\n", out.String())

			file, err := os.Open(path)
			require.NoError(t, err)
			defer file.Close()

			snap, err := tt.read(file)
			require.NoError(t, err)
			assert.Empty(t, snap.Rejected())
			require.Equal(t, 40, snap.Len())

			policy, err := validation.ByName(tt.rules)
			require.NoError(t, err)
			for i, r := range snap.Records() {
				assert.Equal(t, int32(500+i), r.ID)
				assert.NoError(t, policy.Validate(r.Fields))
			}
		})
	}
}

func TestGenerate_InvalidOptions(t *testing.T) {
	dir := t.TempDir()
	base := Options{OutputType: "csv", Output: filepath.Join(dir, "x.csv"), Amount: 5, StartID: 1, ValidationRules: "default"}

	tests := []struct {
		name   string
		modify func(o *Options)
	}{
		{"unknown format", func(o *Options) { o.OutputType = "json" }},
		{"extension mismatch", func(o *Options) { o.Output = filepath.Join(dir, "x.xml") }},
		{"unknown rules", func(o *Options) { o.ValidationRules = "strict" }},
		{"zero amount", func(o *Options) { o.Amount = 0 }},
		{"zero start id", func(o *Options) { o.StartID = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := base
			tt.modify(&opts)
			assert.Error(t, generate(opts, strings.NewReader(""), io.Discard))
		})
	}
	assert.NoFileExists(t, base.Output)
}

func TestGenerate_ExistingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "records.csv")
	require.NoError(t, os.WriteFile(path, []byte("keep"), 0600))
	opts := Options{OutputType: "csv", Output: path, Amount: 3, StartID: 1, ValidationRules: "default"}

	var out bytes.Buffer
	require.NoError(t, generate(opts, strings.NewReader("what\nno\n"), &out))
	assert.Equal(t, 2, strings.Count(out.String(), "File exists - rewrite "+path))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "keep", string(data))

	require.NoError(t, generate(opts, strings.NewReader("Y\n"), io.Discard))
	data, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "Id,First Name"))

	opts.Yes = true
	require.NoError(t, generate(opts, strings.NewReader(""), io.Discard))

	opts.Yes = false
	assert.ErrorIs(t, generate(opts, strings.NewReader(""), io.Discard), io.EOF)
}
