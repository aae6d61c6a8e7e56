package raglabindex

import (
	"context"
	"io"
	"testing"

	"github.com/jamesrr39/goutil/logpkg"
	"github.com/stretchr/testify/require"
)

func testLogger() *logpkg.Logger {
	return logpkg.NewLogger(io.Discard, logpkg.LogLevelError)
}

func Test_Build_InvalidOptions(t *testing.T) {
	embedder := NewLocalEmbedder(8)
	conn := newMockDataSourceConn(nil)

	_, _, err := Build(context.Background(), testLogger(), conn, embedder, BuildOptions{BatchSize: 0, MaxConcurrentBatches: 1})
	require.Error(t, err)

	_, _, err = Build(context.Background(), testLogger(), conn, embedder, BuildOptions{BatchSize: 10, MaxConcurrentBatches: 0})
	require.Error(t, err)
}

func Test_Build_EmptyDataset(t *testing.T) {
	embedder := NewLocalEmbedder(8)
	conn := newMockDataSourceConn(nil)

	index, _, err := Build(context.Background(), testLogger(), conn, embedder, DefaultBuildOptions())
	require.NoError(t, err)
	require.Equal(t, 0, index.Len())
}
