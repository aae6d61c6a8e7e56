package raglabindex

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_FlatIndex_Search(t *testing.T) {
	index, err := NewFlatIndex(3)
	require.NoError(t, err)

	require.NoError(t, index.Add("d1_c0", "d1", "Beyoncé", []float32{1, 0, 0}))
	require.NoError(t, index.Add("d1_c1", "d1", "Beyoncé", []float32{0.9, 0.1, 0}))
	require.NoError(t, index.Add("d2_c0", "d2", "Chopin", []float32{0, 1, 0}))

	hits, err := index.Search([]float32{1, 0, 0}, 2)
	require.NoError(t, err)

	require.Len(t, hits, 2)
	assert.Equal(t, "d1_c0", hits[0].ChunkID)
	assert.Equal(t, "Beyoncé", hits[0].Title)
	assert.Equal(t, float32(1), hits[0].Score)
	assert.Equal(t, "d1_c1", hits[1].ChunkID)
}

func Test_FlatIndex_Add_WrongDimensions(t *testing.T) {
	index, err := NewFlatIndex(3)
	require.NoError(t, err)

	err = index.Add("d1_c0", "d1", "", []float32{1, 0})
	require.Error(t, err)
}

func Test_FlatIndex_SaveLoad(t *testing.T) {
	index, err := NewFlatIndex(2)
	require.NoError(t, err)

	require.NoError(t, index.Add("d1_c0", "d1", "One", []float32{1, 0}))
	require.NoError(t, index.Add("d2_c0", "d2", "Two", []float32{0, 1}))

	dirPath := t.TempDir()
	indexFilePath := filepath.Join(dirPath, IndexFileName)
	metaFilePath := filepath.Join(dirPath, IndexMetaFileName)

	err = index.Save(indexFilePath, metaFilePath, &IndexMeta{Model: "local", CreatedAtMs: 123})
	require.NoError(t, err)

	loaded, meta, err := Load(indexFilePath, metaFilePath)
	require.NoError(t, err)

	assert.Equal(t, 2, loaded.Dimensions())
	assert.Equal(t, 2, loaded.Len())
	assert.Equal(t, "local", meta.Model)
	assert.Equal(t, uint64(123), meta.CreatedAtMs)
	assert.Equal(t, []string{"d1_c0", "d2_c0"}, meta.ChunkIDs)
	assert.Equal(t, []string{"One", "Two"}, meta.Titles)

	hits, err := loaded.Search([]float32{0, 1}, 1)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "d2_c0", hits[0].ChunkID)
	assert.Equal(t, "d2", hits[0].DocID)
	assert.Equal(t, "Two", hits[0].Title)
}

func Test_Load_BadFile(t *testing.T) {
	dirPath := t.TempDir()
	indexFilePath := filepath.Join(dirPath, IndexFileName)
	metaFilePath := filepath.Join(dirPath, IndexMetaFileName)

	_, _, err := Load(indexFilePath, metaFilePath)
	require.Error(t, err)
}
