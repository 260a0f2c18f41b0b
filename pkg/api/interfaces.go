package api

import (
	"context"

	"github.com/go-kit/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/ssargent/filecabinet/pkg/codec"
	"github.com/ssargent/filecabinet/pkg/metrics"
	"github.com/ssargent/filecabinet/pkg/snapshot"
	"github.com/ssargent/filecabinet/pkg/store"
)

// RecordStore defines the record operations the API serves
type RecordStore interface {
	CreateRecord(f codec.Fields) (int32, error)
	EditRecord(id int32, f codec.Fields) error
	GetRecord(id int32) (*codec.Record, error)
	GetRecords() ([]codec.Record, error)
	FindByFirstName(name string) ([]codec.Record, error)
	FindByLastName(name string) ([]codec.Record, error)
	FindByDate(date string) ([]codec.Record, error)
	Snapshot() (*snapshot.Snapshot, error)
	Restore(s *snapshot.Snapshot) (*store.RestoreResult, error)
	Stats() *store.StoreStats
}

// ServerStarter defines the interface for starting the API server
type ServerStarter interface {
	// StartServer serves the API until ctx is cancelled
	StartServer(ctx context.Context, records RecordStore, config ServerConfig,
		m *metrics.Metrics, gatherer prometheus.Gatherer, logger log.Logger) error
}

// ServerFactory creates server instances
type ServerFactory interface {
	// CreateServerStarter creates a server starter
	CreateServerStarter() ServerStarter
}
