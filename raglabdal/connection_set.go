package raglabdal

import (
	"context"
	"sync"

	"github.com/jamesrr39/goutil/errorsx"
	"github.com/jamesrr39/raglab/raglab"
)

type DataSourceConn interface {
	// Info methods
	Name() string
	DatasetInfo() (*raglab.DatasetInfo, errorsx.Error)

	// Analytic methods over the chunk table
	ChunkRefs(ctx context.Context, filter *ChunkFilter, limit int64) ([]*raglab.ChunkRef, errorsx.Error)
	CountChunks(ctx context.Context, filter *ChunkFilter) (int64, errorsx.Error)
	SourceDistribution(ctx context.Context) ([]*raglab.SourceCount, errorsx.Error)
	TextLengthStats(ctx context.Context, filter *ChunkFilter) (*raglab.TextLengthStats, errorsx.Error)
	TopDocsByChunkCount(ctx context.Context, n int) ([]*raglab.DocChunkCount, errorsx.Error)
	ChunksByID(ctx context.Context, chunkIDs []string) ([]*raglab.Chunk, errorsx.Error)
}

type DBConnSet struct {
	conns []DataSourceConn
	mu    *sync.RWMutex
}

func NewDBConnSet(conns []DataSourceConn) *DBConnSet {
	return &DBConnSet{conns, new(sync.RWMutex)}
}

func (dbcs *DBConnSet) GetConns() []DataSourceConn {
	dbcs.mu.RLock()
	defer dbcs.mu.RUnlock()
	return dbcs.conns
}

func (dbcs *DBConnSet) AddDBConn(conn DataSourceConn) {
	dbcs.mu.Lock()
	defer dbcs.mu.Unlock()
	dbcs.conns = append(dbcs.conns, conn)
}

// GetConnByName finds a connection by its name, or nil if none matches.
func (dbcs *DBConnSet) GetConnByName(name string) DataSourceConn {
	for _, conn := range dbcs.GetConns() {
		if conn.Name() == name {
			return conn
		}
	}
	return nil
}
