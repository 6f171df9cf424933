package database

import (
	"context"

	"github.com/tieubaoca/questbot-be/types"
)

// Page is one page of extracted document text, in page order.
type Page struct {
	Label string
	Text  string
}

// PageExtractor turns a document file into per-page text. Implemented by
// the extract service, injected into the store at construction.
type PageExtractor interface {
	ExtractPages(path string) ([]Page, error)
}

// IngestStore defines the corpus lifecycle operations. Deletions and
// insertions must be visible to the next ListIngested call.
type IngestStore interface {
	ListIngested(ctx context.Context) ([]types.Document, error)
	BulkIngest(ctx context.Context, files []types.IngestFile) error
	DeleteDocument(ctx context.Context, docID string) error
}

// Retriever fetches the chunks most relevant to a query, for grounded
// generation.
type Retriever interface {
	Retrieve(ctx context.Context, query string, limit int) ([]types.Chunk, error)
}
