// Package sqlite persists the vector index as a single SQLite database
// inside the index directory. Embeddings are stored as little-endian
// float32 blobs. Build replaces prior content; Open and Search may run in
// a different process from the one that built the index. Concurrent
// readers are safe; concurrent writers to one location are not supported.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	sqlitedriver "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"docsqa/internal/domain"
	"docsqa/internal/vectorstore"
)

// indexFile is the database file name inside the index directory.
const indexFile = "index.db"

const schema = `
CREATE TABLE chunks (
	seq INTEGER PRIMARY KEY AUTOINCREMENT,
	id TEXT NOT NULL,
	document_id TEXT NOT NULL,
	source TEXT NOT NULL,
	text TEXT NOT NULL,
	position INTEGER NOT NULL,
	embedding BLOB NOT NULL
);
CREATE TABLE index_meta (
	key TEXT PRIMARY KEY,
	value TEXT NOT NULL
);
`

// Build writes a fresh index at dir, replacing any prior content there.
// Records are stored in the given order; that order is the tie-breaker
// at search time.
func Build(ctx context.Context, dir string, records []domain.Record) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating index directory: %w", err)
	}
	path := filepath.Join(dir, indexFile)
	for _, stale := range []string{path, path + "-wal", path + "-shm"} {
		if err := os.Remove(stale); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("removing previous index: %w", err)
		}
	}

	db, err := openDB(path)
	if err != nil {
		return err
	}
	defer db.Close()

	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO chunks (id, document_id, source, text, position, embedding)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	dimension := 0
	for _, rec := range records {
		if dimension == 0 {
			dimension = len(rec.Vector)
		}
		if len(rec.Vector) != dimension {
			return fmt.Errorf("vector dimension mismatch: chunk %s has %d, want %d", rec.Chunk.ID, len(rec.Vector), dimension)
		}
		if _, err := stmt.ExecContext(ctx, rec.Chunk.ID, rec.Chunk.DocumentID, rec.Chunk.Source,
			rec.Chunk.Text, rec.Chunk.Position, float32SliceToBytes(rec.Vector)); err != nil {
			return fmt.Errorf("saving chunk %s: %w", rec.Chunk.ID, err)
		}
	}

	if _, err := tx.ExecContext(ctx, `INSERT INTO index_meta (key, value) VALUES ('dimension', ?)`,
		strconv.Itoa(dimension)); err != nil {
		return fmt.Errorf("saving index metadata: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing index: %w", err)
	}
	return nil
}

// Builder adapts Build to the ingestion pipeline's builder interface.
type Builder struct{}

// Build implements ingest.Builder.
func (Builder) Build(ctx context.Context, dir string, records []domain.Record) error {
	return Build(ctx, dir, records)
}

// Index is a read handle over a persisted index. Records are loaded from
// disk on the first search and cached for the lifetime of the handle.
type Index struct {
	db   *sql.DB
	path string

	mu      sync.Mutex
	loaded  bool
	records []domain.Record
}

// Open opens an existing index at dir for querying. It fails with
// domain.ErrIndexNotFound when the location holds no valid index.
func Open(dir string) (*Index, error) {
	path := filepath.Join(dir, indexFile)
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", domain.ErrIndexNotFound, dir)
		}
		return nil, fmt.Errorf("checking index at %s: %w", dir, err)
	}

	db, err := openDB(path)
	if err != nil {
		return nil, err
	}

	var name string
	row := db.QueryRow(`SELECT name FROM sqlite_master WHERE type = 'table' AND name = 'chunks'`)
	if err := row.Scan(&name); err != nil {
		db.Close()
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s holds no chunk table", domain.ErrIndexNotFound, dir)
		}
		if isNotADatabase(err) {
			return nil, fmt.Errorf("%w: %s holds no valid index: %v", domain.ErrIndexNotFound, dir, err)
		}
		return nil, fmt.Errorf("inspecting index at %s: %w", dir, err)
	}

	return &Index{db: db, path: path}, nil
}

// Close releases the underlying database handle.
func (ix *Index) Close() error { return ix.db.Close() }

// Count reports the number of records in the index.
func (ix *Index) Count(ctx context.Context) (int, error) {
	var count int
	row := ix.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM chunks`)
	if err := row.Scan(&count); err != nil {
		return 0, fmt.Errorf("counting chunks: %w", err)
	}
	return count, nil
}

// Search returns the k records nearest to the query vector, best first,
// ties broken by insertion order. An empty index yields an empty result.
// Search never mutates the index.
func (ix *Index) Search(ctx context.Context, vector []float32, k int) ([]domain.SearchResult, error) {
	records, err := ix.load(ctx)
	if err != nil {
		return nil, err
	}
	return vectorstore.Rank(records, vector, k)
}

func (ix *Index) load(ctx context.Context) ([]domain.Record, error) {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	if ix.loaded {
		return ix.records, nil
	}

	rows, err := ix.db.QueryContext(ctx, `
		SELECT id, document_id, source, text, position, embedding
		FROM chunks ORDER BY seq
	`)
	if err != nil {
		return nil, fmt.Errorf("reading index: %w", err)
	}
	defer rows.Close()

	var records []domain.Record
	for rows.Next() {
		var rec domain.Record
		var blob []byte
		if err := rows.Scan(&rec.Chunk.ID, &rec.Chunk.DocumentID, &rec.Chunk.Source,
			&rec.Chunk.Text, &rec.Chunk.Position, &blob); err != nil {
			return nil, fmt.Errorf("scanning chunk: %w", err)
		}
		rec.Vector = bytesToFloat32Slice(blob)
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating chunks: %w", err)
	}

	ix.records = records
	ix.loaded = true
	return records, nil
}

// isNotADatabase reports whether the driver rejected the file as not
// being a SQLite database. Extended result codes carry the base code in
// the low byte.
func isNotADatabase(err error) bool {
	var derr *sqlitedriver.Error
	return errors.As(err, &derr) && derr.Code()&0xff == sqlite3.SQLITE_NOTADB
}

func openDB(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening index database: %w", err)
	}
	return db, nil
}

// float32SliceToBytes converts a vector to its stored blob form.
func float32SliceToBytes(floats []float32) []byte {
	buf := make([]byte, len(floats)*4)
	for i, f := range floats {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// bytesToFloat32Slice converts a stored blob back to a vector.
func bytesToFloat32Slice(data []byte) []float32 {
	floats := make([]float32, len(data)/4)
	for i := range floats {
		floats[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return floats
}

var _ domain.Searcher = (*Index)(nil)
