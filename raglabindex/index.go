package raglabindex

import (
	"bufio"
	"encoding/binary"
	"encoding/json"
	"io"
	"os"
	"sort"

	"github.com/jamesrr39/goutil/errorsx"
)

const (
	IndexFileName     = "index.bin"
	IndexMetaFileName = "index_meta.json"

	indexFileMagic   = "RGLIDX"
	indexFileVersion = uint32(1)
)

// IndexMeta is stored next to the vector file and maps vector positions back
// to chunks.
type IndexMeta struct {
	ChunkIDs    []string `json:"chunkIds"`
	DocIDs      []string `json:"docIds"`
	Titles      []string `json:"titles"`
	Model       string   `json:"model"`
	Dimensions  int      `json:"dimensions"`
	CreatedAtMs uint64   `json:"createdAtMs"`
}

// FlatIndex is an exact (brute force) inner product index. Vectors are stored
// row-major in one flat slice. With normalized vectors the inner product is
// cosine similarity.
type FlatIndex struct {
	dimensions int
	vectors    []float32
	chunkIDs   []string
	docIDs     []string
	titles     []string
}

func NewFlatIndex(dimensions int) (*FlatIndex, errorsx.Error) {
	if dimensions <= 0 {
		return nil, errorsx.Errorf("dimensions must be positive (got %d)", dimensions)
	}

	return &FlatIndex{dimensions: dimensions}, nil
}

func (idx *FlatIndex) Dimensions() int {
	return idx.dimensions
}

func (idx *FlatIndex) Len() int {
	return len(idx.chunkIDs)
}

func (idx *FlatIndex) Add(chunkID, docID, title string, vector []float32) errorsx.Error {
	if len(vector) != idx.dimensions {
		return errorsx.Errorf("expected a vector of %d dimensions but got %d", idx.dimensions, len(vector))
	}

	idx.vectors = append(idx.vectors, vector...)
	idx.chunkIDs = append(idx.chunkIDs, chunkID)
	idx.docIDs = append(idx.docIDs, docID)
	idx.titles = append(idx.titles, title)

	return nil
}

type SearchHit struct {
	ChunkID string
	DocID   string
	Title   string
	Score   float32
}

// Search returns the k entries with the highest inner product against the
// query vector, best first.
func (idx *FlatIndex) Search(query []float32, k int) ([]*SearchHit, errorsx.Error) {
	if len(query) != idx.dimensions {
		return nil, errorsx.Errorf("expected a query vector of %d dimensions but got %d", idx.dimensions, len(query))
	}

	if k <= 0 {
		return nil, errorsx.Errorf("k must be positive (got %d)", k)
	}

	hits := make([]*SearchHit, 0, idx.Len())
	for i := 0; i < idx.Len(); i++ {
		row := idx.vectors[i*idx.dimensions : (i+1)*idx.dimensions]

		var score float32
		for j, q := range query {
			score += q * row[j]
		}

		hits = append(hits, &SearchHit{
			ChunkID: idx.chunkIDs[i],
			DocID:   idx.docIDs[i],
			Title:   idx.titles[i],
			Score:   score,
		})
	}

	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Score > hits[j].Score
	})

	if len(hits) > k {
		hits = hits[:k]
	}

	return hits, nil
}

// Save writes the vectors to indexFilePath and the chunk mapping to
// metaFilePath.
func (idx *FlatIndex) Save(indexFilePath, metaFilePath string, meta *IndexMeta) errorsx.Error {
	f, err := os.Create(indexFilePath)
	if err != nil {
		return errorsx.Wrap(err, "filepath", indexFilePath)
	}
	defer f.Close()

	w := bufio.NewWriter(f)

	_, err = w.WriteString(indexFileMagic)
	if err != nil {
		return errorsx.Wrap(err)
	}

	for _, val := range []uint32{indexFileVersion, uint32(idx.dimensions), uint32(idx.Len())} {
		err = binary.Write(w, binary.LittleEndian, val)
		if err != nil {
			return errorsx.Wrap(err)
		}
	}

	err = binary.Write(w, binary.LittleEndian, idx.vectors)
	if err != nil {
		return errorsx.Wrap(err)
	}

	err = w.Flush()
	if err != nil {
		return errorsx.Wrap(err)
	}

	meta.ChunkIDs = idx.chunkIDs
	meta.DocIDs = idx.docIDs
	meta.Titles = idx.titles
	meta.Dimensions = idx.dimensions

	metaJSON, err := json.Marshal(meta)
	if err != nil {
		return errorsx.Wrap(err)
	}

	err = os.WriteFile(metaFilePath, metaJSON, 0644)
	if err != nil {
		return errorsx.Wrap(err, "filepath", metaFilePath)
	}

	return nil
}

// Load reads an index written by Save.
func Load(indexFilePath, metaFilePath string) (*FlatIndex, *IndexMeta, errorsx.Error) {
	metaJSON, err := os.ReadFile(metaFilePath)
	if err != nil {
		return nil, nil, errorsx.Wrap(err, "filepath", metaFilePath)
	}

	meta := new(IndexMeta)
	err = json.Unmarshal(metaJSON, meta)
	if err != nil {
		return nil, nil, errorsx.Wrap(err, "filepath", metaFilePath)
	}

	f, err := os.Open(indexFilePath)
	if err != nil {
		return nil, nil, errorsx.Wrap(err, "filepath", indexFilePath)
	}
	defer f.Close()

	r := bufio.NewReader(f)

	magic := make([]byte, len(indexFileMagic))
	_, err = io.ReadFull(r, magic)
	if err != nil {
		return nil, nil, errorsx.Wrap(err)
	}

	if string(magic) != indexFileMagic {
		return nil, nil, errorsx.Errorf("not an index file: bad magic %q", magic)
	}

	var version, dimensions, count uint32
	for _, target := range []*uint32{&version, &dimensions, &count} {
		err = binary.Read(r, binary.LittleEndian, target)
		if err != nil {
			return nil, nil, errorsx.Wrap(err)
		}
	}

	if version != indexFileVersion {
		return nil, nil, errorsx.Errorf("unsupported index file version: %d", version)
	}

	if int(dimensions) != meta.Dimensions {
		return nil, nil, errorsx.Errorf("index file has %d dimensions but metadata says %d", dimensions, meta.Dimensions)
	}

	if int(count) != len(meta.ChunkIDs) || len(meta.ChunkIDs) != len(meta.DocIDs) {
		return nil, nil, errorsx.Errorf("index file has %d vectors but metadata lists %d chunks and %d docs",
			count, len(meta.ChunkIDs), len(meta.DocIDs))
	}

	// metadata written before titles were recorded has none
	if meta.Titles == nil {
		meta.Titles = make([]string, int(count))
	}
	if len(meta.Titles) != int(count) {
		return nil, nil, errorsx.Errorf("index file has %d vectors but metadata lists %d titles", count, len(meta.Titles))
	}

	vectors := make([]float32, int(dimensions)*int(count))
	err = binary.Read(r, binary.LittleEndian, vectors)
	if err != nil {
		return nil, nil, errorsx.Wrap(err)
	}

	return &FlatIndex{
		dimensions: int(dimensions),
		vectors:    vectors,
		chunkIDs:   meta.ChunkIDs,
		docIDs:     meta.DocIDs,
		titles:     meta.Titles,
	}, meta, nil
}
