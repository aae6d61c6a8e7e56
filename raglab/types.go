package raglab

const (
	// MaxTitleLen is the maximum length a document title is truncated to at ingest time.
	MaxTitleLen = 200
)

// Document is one normalized record of the corpus, stored as one JSON object
// per line in a JSONL file.
type Document struct {
	DocID  string `json:"doc_id"`
	Title  string `json:"title"`
	Source string `json:"source"`
	Text   string `json:"text"`
	URL    string `json:"url"`
}

// Chunk is one overlapping window of a document's text. CharStart/CharEnd are
// character offsets into the original document text, so the chunk text is
// always document text[CharStart:CharEnd].
type Chunk struct {
	ChunkID    string `json:"chunk_id"`
	DocID      string `json:"doc_id"`
	Title      string `json:"title"`
	ChunkIndex int64  `json:"chunk_index"`
	CharStart  int64  `json:"char_start"`
	CharEnd    int64  `json:"char_end"`
	Text       string `json:"text"`
	Source     string `json:"source"`
}

// ChunkRef is the projection of a chunk used by listings and the vector
// index metadata; fetching refs instead of full chunks keeps the text column
// out of scans that don't need it.
type ChunkRef struct {
	ChunkID string `json:"chunk_id"`
	DocID   string `json:"doc_id"`
}

type DatasetInfo struct {
	SourceDataset string `json:"sourceDataset"`
	DocCount      int64  `json:"docCount"`
	ChunkCount    int64  `json:"chunkCount"`
	ChunkSize     int    `json:"chunkSize"`
	ChunkOverlap  int    `json:"chunkOverlap"`
	CreatedAtMs   uint64 `json:"createdAtMs"`
}
