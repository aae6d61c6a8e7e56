package warehousedb

import (
	"fmt"
	"strings"

	"github.com/jamesrr39/goutil/errorsx"
	"github.com/jamesrr39/raglab/raglab"
	"github.com/jamesrr39/raglab/raglabdal"
	"github.com/jmoiron/sqlx"
)

// UploadBatchSize is how many rows go into one INSERT statement.
const UploadBatchSize = 200

var _ raglabdal.FinalStorage = &Importer{}

type toDatasourceConnFunc func() (raglabdal.DataSourceConn, errorsx.Error)

// Importer uploads corpus rows into the warehouse inside one transaction, so
// a failed upload leaves no partial dataset behind.
type Importer struct {
	tx               *sqlx.Tx
	toDatasourceConn toDatasourceConnFunc
}

func NewImporter(db *sqlx.DB, toDatasourceConn toDatasourceConnFunc) (*Importer, errorsx.Error) {
	tx, err := db.Beginx()
	if err != nil {
		return nil, errorsx.Wrap(err)
	}

	return &Importer{
		tx, toDatasourceConn,
	}, nil
}

func (importer *Importer) ImportDocuments(objs []*raglab.Document) errorsx.Error {
	for len(objs) != 0 {
		batch := objs
		if len(batch) > UploadBatchSize {
			batch = batch[:UploadBatchSize]
		}
		objs = objs[len(batch):]

		query, args := buildDocumentsInsertQuery(batch)
		_, err := importer.tx.Exec(query, args...)
		if err != nil {
			return errorsx.Wrap(err)
		}
	}

	return nil
}

func (importer *Importer) ImportChunks(objs []*raglab.Chunk) errorsx.Error {
	for len(objs) != 0 {
		batch := objs
		if len(batch) > UploadBatchSize {
			batch = batch[:UploadBatchSize]
		}
		objs = objs[len(batch):]

		query, args := buildChunksInsertQuery(batch)
		_, err := importer.tx.Exec(query, args...)
		if err != nil {
			return errorsx.Wrap(err)
		}
	}

	return nil
}

func buildDocumentsInsertQuery(docs []*raglab.Document) (string, []interface{}) {
	var valueLines []string
	var args []interface{}
	for i, doc := range docs {
		base := i * 5
		valueLines = append(valueLines, fmt.Sprintf("($%d, $%d, $%d, $%d, $%d)", base+1, base+2, base+3, base+4, base+5))
		args = append(args, doc.DocID, doc.Title, doc.Source, doc.Text, doc.URL)
	}

	query := fmt.Sprintf(
		"INSERT INTO docs (doc_id, title, source, text, url) VALUES %s",
		strings.Join(valueLines, ", "))

	return query, args
}

func buildChunksInsertQuery(chunks []*raglab.Chunk) (string, []interface{}) {
	var valueLines []string
	var args []interface{}
	for i, chunk := range chunks {
		base := i * 8
		valueLines = append(valueLines, fmt.Sprintf(
			"($%d, $%d, $%d, $%d, $%d, $%d, $%d, $%d)",
			base+1, base+2, base+3, base+4, base+5, base+6, base+7, base+8))
		args = append(args,
			chunk.ChunkID, chunk.DocID, chunk.Title, chunk.ChunkIndex,
			chunk.CharStart, chunk.CharEnd, chunk.Text, chunk.Source)
	}

	query := fmt.Sprintf(
		"INSERT INTO chunks (chunk_id, doc_id, title, chunk_index, char_start, char_end, text, source) VALUES %s",
		strings.Join(valueLines, ", "))

	return query, args
}

func (importer *Importer) Rollback() errorsx.Error {
	err := importer.tx.Rollback()
	if err != nil {
		return errorsx.Wrap(err)
	}

	return nil
}

func (importer *Importer) Commit(info *raglab.DatasetInfo) (raglabdal.DataSourceConn, errorsx.Error) {
	_, err := importer.tx.Exec(`
	INSERT INTO dataset_info (
		source_dataset,
		doc_count,
		chunk_count,
		chunk_size,
		chunk_overlap,
		created_at
	) VALUES ($1, $2, $3, $4, $5, NOW())`,
		info.SourceDataset,
		info.DocCount,
		info.ChunkCount,
		info.ChunkSize,
		info.ChunkOverlap,
	)
	if err != nil {
		return nil, errorsx.Wrap(err)
	}

	err = importer.tx.Commit()
	if err != nil {
		return nil, errorsx.Wrap(err)
	}

	return importer.toDatasourceConn()
}
