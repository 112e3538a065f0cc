package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
)

var _ driven.DocumentStore = (*documentStore)(nil)

type documentStore struct {
	db *sql.DB
}

const (
	selectDocuments = `SELECT id, name, content, mime_type, state, chunk_count, error, created_at, updated_at FROM documents`

	upsertDocument = `INSERT INTO documents
		(id, name, content, mime_type, state, chunk_count, error, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name, content = excluded.content, mime_type = excluded.mime_type,
			state = excluded.state, chunk_count = excluded.chunk_count, error = excluded.error,
			created_at = excluded.created_at, updated_at = excluded.updated_at`

	selectChunks = `SELECT c.id, c.document_id, d.name, c.content, c.position, c.embedding
		FROM chunks c JOIN documents d ON d.id = c.document_id
		WHERE c.document_id = ? ORDER BY c.position`
)

func (s *documentStore) SaveDocument(ctx context.Context, doc *domain.Document) error {
	_, err := s.db.ExecContext(ctx, upsertDocument,
		doc.ID, doc.Name, doc.Content, doc.MIMEType, string(doc.State),
		doc.ChunkCount, doc.Error, doc.CreatedAt.UTC(), doc.UpdatedAt.UTC())
	if err != nil {
		return fmt.Errorf("saving document %s: %w", doc.ID, err)
	}
	return nil
}

// SaveChunks swaps the document's chunk set inside one transaction.
func (s *documentStore) SaveChunks(ctx context.Context, documentID string, chunks []domain.Chunk) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		var one int
		switch err := tx.QueryRowContext(ctx, `SELECT 1 FROM documents WHERE id = ?`, documentID).Scan(&one); {
		case errors.Is(err, sql.ErrNoRows):
			return domain.ErrNotFound
		case err != nil:
			return fmt.Errorf("checking document: %w", err)
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM chunks WHERE document_id = ?`, documentID); err != nil {
			return fmt.Errorf("deleting old chunks: %w", err)
		}

		ins, err := tx.PrepareContext(ctx,
			`INSERT INTO chunks (id, document_id, content, position, embedding) VALUES (?, ?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("preparing chunk insert: %w", err)
		}
		defer ins.Close()

		for i := range chunks {
			c := &chunks[i]
			if _, err := ins.ExecContext(ctx, c.ID, documentID, c.Content, c.Position, encodeVector(c.Embedding)); err != nil {
				return fmt.Errorf("saving chunk %s: %w", c.ID, err)
			}
		}
		return nil
	})
}

func (s *documentStore) inTx(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

func (s *documentStore) GetDocument(ctx context.Context, id string) (*domain.Document, error) {
	doc, err := scanDocument(s.db.QueryRowContext(ctx, selectDocuments+` WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

func (s *documentStore) GetChunks(ctx context.Context, documentID string) ([]domain.Chunk, error) {
	rows, err := s.db.QueryContext(ctx, selectChunks, documentID)
	if err != nil {
		return nil, fmt.Errorf("querying chunks: %w", err)
	}
	defer rows.Close()

	var out []domain.Chunk
	for rows.Next() {
		var (
			c    domain.Chunk
			blob []byte
		)
		if err := rows.Scan(&c.ID, &c.DocumentID, &c.DocumentName, &c.Content, &c.Position, &blob); err != nil {
			return nil, fmt.Errorf("scanning chunk: %w", err)
		}
		c.Embedding = decodeVector(blob)
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *documentStore) DeleteChunks(ctx context.Context, documentID string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM chunks WHERE document_id = ?`, documentID); err != nil {
		return fmt.Errorf("deleting chunks: %w", err)
	}
	return nil
}

// DeleteDocument removes the row; its chunks go with it through the
// foreign key cascade.
func (s *documentStore) DeleteDocument(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM documents WHERE id = ?`, id); err != nil {
		return fmt.Errorf("deleting document: %w", err)
	}
	return nil
}

// ListDocuments orders by upload time, then ID for documents created in
// the same instant.
func (s *documentStore) ListDocuments(ctx context.Context) ([]domain.Document, error) {
	rows, err := s.db.QueryContext(ctx, selectDocuments+` ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("querying documents: %w", err)
	}
	defer rows.Close()

	var out []domain.Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, doc)
	}
	return out, rows.Err()
}

func scanDocument(row interface{ Scan(...any) error }) (domain.Document, error) {
	var (
		doc   domain.Document
		state string
	)
	err := row.Scan(&doc.ID, &doc.Name, &doc.Content, &doc.MIMEType, &state,
		&doc.ChunkCount, &doc.Error, &doc.CreatedAt, &doc.UpdatedAt)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return doc, err
	case err != nil:
		return doc, fmt.Errorf("scanning document: %w", err)
	}
	doc.State = domain.LifecycleState(state)
	return doc, nil
}
