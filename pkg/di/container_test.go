package di

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/ssargent/filecabinet/pkg/api"
	"github.com/ssargent/filecabinet/pkg/config"
	"github.com/ssargent/filecabinet/pkg/validation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubServerFactory struct{}

func (stubServerFactory) CreateServerStarter() api.ServerStarter { return nil }

func TestNewContainer(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.DataFile = filepath.Join(t.TempDir(), "cabinet.db")
	cfg.Validation.Rules = validation.PolicyCustom

	var logs bytes.Buffer
	c, err := NewContainer(cfg, &logs)
	require.NoError(t, err)

	assert.Same(t, cfg, c.GetConfig())
	assert.Equal(t, validation.PolicyCustom, c.GetPolicy().Name())
	assert.Same(t, c.GetPolicy(), c.GetEngine().Policy())
	assert.NotNil(t, c.GetMetrics())
	assert.NotNil(t, c.GetServerFactory())

	_, err = c.GetEngine().Open()
	require.NoError(t, err)
	defer c.Close()

	assert.Contains(t, logs.String(), "data file opened")
	assert.Contains(t, logs.String(), "component=store")

	families, err := c.GetRegistry().Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, families)

	c.SetServerFactory(stubServerFactory{})
	assert.Equal(t, stubServerFactory{}, c.GetServerFactory())
}

func TestNewContainer_InvalidConfig(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Validation.Rules = "strict"
	_, err := NewContainer(cfg, &bytes.Buffer{})
	assert.ErrorIs(t, err, validation.ErrUnknownPolicy)

	cfg = config.DefaultConfig()
	cfg.Logging.Format = "xml"
	_, err = NewContainer(cfg, &bytes.Buffer{})
	assert.Error(t, err)
}

func TestNewContainer_Defaults(t *testing.T) {
	c, err := NewContainer(nil, &bytes.Buffer{})
	require.NoError(t, err)
	assert.Equal(t, validation.PolicyDefault, c.GetPolicy().Name())
	assert.Equal(t, "./data/cabinet.db", c.GetConfig().DataFile)
}
