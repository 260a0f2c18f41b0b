package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/go-kit/log/level"
	"github.com/ssargent/filecabinet/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_LevelFilter(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(&buf, config.Logging{Level: "warn", Format: "logfmt"})
	require.NoError(t, err)

	level.Info(logger).Log("msg", "hidden")
	level.Warn(logger).Log("msg", "shown")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "msg=shown")
	assert.Contains(t, out, "level=warn")
	assert.Contains(t, out, "caller=logging_test.go")
}

func TestNew_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(&buf, config.Logging{Level: "debug", Format: "JSON"})
	require.NoError(t, err)

	level.Debug(logger).Log("msg", "opened", "records", 3)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(strings.TrimSpace(buf.String())), &entry))
	assert.Equal(t, "opened", entry["msg"])
	assert.Equal(t, "debug", entry["level"])
	assert.Contains(t, entry, "ts")
}

func TestNew_Invalid(t *testing.T) {
	_, err := New(&bytes.Buffer{}, config.Logging{Level: "loud"})
	assert.Error(t, err)

	_, err = New(&bytes.Buffer{}, config.Logging{Format: "xml"})
	assert.Error(t, err)
}
