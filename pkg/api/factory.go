package api

import (
	"context"

	"github.com/go-kit/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/ssargent/filecabinet/pkg/metrics"
)

// httpServerFactory hands out starters that run the real HTTP server
type httpServerFactory struct{}

// NewServerFactory returns the factory used outside of tests
func NewServerFactory() ServerFactory {
	return httpServerFactory{}
}

func (httpServerFactory) CreateServerStarter() ServerStarter {
	return httpServerStarter{}
}

type httpServerStarter struct{}

// StartServer builds a Server over records and blocks until ctx is done
func (httpServerStarter) StartServer(
	ctx context.Context,
	records RecordStore,
	config ServerConfig,
	m *metrics.Metrics,
	gatherer prometheus.Gatherer,
	logger log.Logger,
) error {
	return StartServer(ctx, NewServer(records, config, m, logger), gatherer)
}
