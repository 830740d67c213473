package database

import (
	"context"
)

// Chunk is one indexed, retrievable segment of a document's extracted text.
// Chunks are created once at indexing time and never mutated; adjacent chunks
// deliberately repeat the configured overlap at their boundary.
type Chunk struct {
	Content    string `json:"content"`
	DocumentID string `json:"document_id"`
	ChunkIndex int    `json:"chunk_index"`
	ChunkCount int    `json:"chunk_count"`
}

// VectorStore defines the document-scoped retrieval operations the agent
// needs. All queries are scoped strictly to one document id.
type VectorStore interface {
	// AddChunks indexes the chunks of one document.
	AddChunks(ctx context.Context, documentID string, chunks []Chunk) error

	// QueryDocument returns up to limit chunk texts nearest to the query,
	// ordered by relevance.
	QueryDocument(ctx context.Context, documentID, query string, limit int) ([]string, error)

	// GetFullDocument reconstructs the document text from its chunks in
	// chunk_index order, joined by newlines.
	GetFullDocument(ctx context.Context, documentID string) (string, error)

	// Reset drops and recreates the underlying class/collection.
	Reset(ctx context.Context) error
}
