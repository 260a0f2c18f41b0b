// Package logging builds the go-kit logger shared by the engine, shell and API.
package logging

import (
	"fmt"
	"io"
	"strings"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/ssargent/filecabinet/pkg/config"
)

// New returns a logger writing to w in the configured format, filtered to the
// configured level
func New(w io.Writer, cfg config.Logging) (log.Logger, error) {
	var logger log.Logger
	switch strings.ToLower(cfg.Format) {
	case "", config.LogFormatLogfmt:
		logger = log.NewLogfmtLogger(log.NewSyncWriter(w))
	case config.LogFormatJSON:
		logger = log.NewJSONLogger(log.NewSyncWriter(w))
	default:
		return nil, fmt.Errorf("unknown log format %q", cfg.Format)
	}

	option, err := levelOption(cfg.Level)
	if err != nil {
		return nil, err
	}

	logger = level.NewFilter(logger, option)
	logger = log.With(logger, "ts", log.DefaultTimestampUTC, "caller", log.DefaultCaller)
	return logger, nil
}

func levelOption(name string) (level.Option, error) {
	switch strings.ToLower(name) {
	case "debug":
		return level.AllowDebug(), nil
	case "", "info":
		return level.AllowInfo(), nil
	case "warn":
		return level.AllowWarn(), nil
	case "error":
		return level.AllowError(), nil
	}
	return nil, fmt.Errorf("unknown log level %q", name)
}
