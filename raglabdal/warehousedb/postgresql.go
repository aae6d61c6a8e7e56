package warehousedb

import (
	"github.com/jamesrr39/goutil/errorsx"
	"github.com/jamesrr39/raglab/raglabdal"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

const postgresqlSchema = `
CREATE TABLE IF NOT EXISTS docs (
	doc_id TEXT PRIMARY KEY,
	title TEXT NOT NULL,
	source TEXT NOT NULL,
	text TEXT NOT NULL,
	url TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS docs_source_idx ON docs (source);

CREATE TABLE IF NOT EXISTS chunks (
	chunk_id TEXT PRIMARY KEY,
	doc_id TEXT NOT NULL,
	title TEXT NOT NULL,
	chunk_index BIGINT NOT NULL,
	char_start BIGINT NOT NULL,
	char_end BIGINT NOT NULL,
	text TEXT NOT NULL,
	source TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS chunks_doc_id_idx ON chunks (doc_id);
CREATE INDEX IF NOT EXISTS chunks_source_idx ON chunks (source);

-- dataset info

CREATE TABLE IF NOT EXISTS dataset_info (
	source_dataset TEXT NOT NULL,
	doc_count BIGINT NOT NULL,
	chunk_count BIGINT NOT NULL,
	chunk_size BIGINT NOT NULL,
	chunk_overlap BIGINT NOT NULL,
	created_at TIMESTAMP WITHOUT TIME ZONE NOT NULL
)`

func NewFinalStorage(connStr string) (*Importer, errorsx.Error) {
	db, err := sqlx.Open("postgres", "postgresql://"+connStr)
	if err != nil {
		return nil, errorsx.Wrap(err)
	}

	_, err = db.Exec(postgresqlSchema)
	if err != nil {
		return nil, errorsx.Wrap(err)
	}

	toDatasourceConnFunc := func() (raglabdal.DataSourceConn, errorsx.Error) {
		return NewWarehouseSQLDB(db, "postgresql warehouse"), nil
	}

	return NewImporter(db, toDatasourceConnFunc)
}

// Ping checks connectivity without creating any tables.
func Ping(connStr string) errorsx.Error {
	db, err := sqlx.Open("postgres", "postgresql://"+connStr)
	if err != nil {
		return errorsx.Wrap(err)
	}
	defer db.Close()

	err = db.Ping()
	if err != nil {
		return errorsx.Wrap(err)
	}

	return nil
}

func NewDBConn(connStr string) (raglabdal.DataSourceConn, errorsx.Error) {
	db, err := sqlx.Open("postgres", "postgresql://"+connStr)
	if err != nil {
		return nil, errorsx.Wrap(err)
	}

	return NewWarehouseSQLDB(db, "postgresql warehouse"), nil
}
