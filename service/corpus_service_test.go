package service

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tieubaoca/questbot-be/types"
)

// MockIngestStore implements database.IngestStore
type MockIngestStore struct {
	OnListIngested   func(ctx context.Context) ([]types.Document, error)
	OnBulkIngest     func(ctx context.Context, files []types.IngestFile) error
	OnDeleteDocument func(ctx context.Context, docID string) error
}

func (m *MockIngestStore) ListIngested(ctx context.Context) ([]types.Document, error) {
	if m.OnListIngested != nil {
		return m.OnListIngested(ctx)
	}
	return nil, nil
}

func (m *MockIngestStore) BulkIngest(ctx context.Context, files []types.IngestFile) error {
	if m.OnBulkIngest != nil {
		return m.OnBulkIngest(ctx, files)
	}
	return nil
}

func (m *MockIngestStore) DeleteDocument(ctx context.Context, docID string) error {
	if m.OnDeleteDocument != nil {
		return m.OnDeleteDocument(ctx, docID)
	}
	return nil
}

func doc(id, fileName string) types.Document {
	return types.Document{
		DocID:    id,
		Metadata: map[string]string{types.MetaFileName: fileName},
	}
}

func writeTempFile(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte("content"), 0644))
	return path
}

func TestUploadReplacesByFileName(t *testing.T) {
	tmp := t.TempDir()
	path := writeTempFile(t, tmp, "a.pdf")

	var deleted []string
	var ingested []types.IngestFile
	store := &MockIngestStore{
		OnListIngested: func(ctx context.Context) ([]types.Document, error) {
			// a.pdf exists twice in the corpus, b.pdf once
			return []types.Document{doc("id1", "a.pdf"), doc("id2", "b.pdf"), doc("id3", "a.pdf")}, nil
		},
		OnDeleteDocument: func(ctx context.Context, docID string) error {
			deleted = append(deleted, docID)
			return nil
		},
		OnBulkIngest: func(ctx context.Context, files []types.IngestFile) error {
			ingested = files
			return nil
		},
	}
	corpus := NewCorpusService(filepath.Join(tmp, "uploads"), store)

	err := corpus.Upload(context.Background(), []types.IngestFile{{Name: "a.pdf", Path: path}})

	require.NoError(t, err)
	// Every document named a.pdf was deleted before the new ingest.
	assert.Equal(t, []string{"id1", "id3"}, deleted)
	require.Len(t, ingested, 1)
	assert.Equal(t, "a.pdf", ingested[0].Name)
	// The ingested path is the archived copy, not the original upload.
	assert.NotEqual(t, path, ingested[0].Path)
}

func TestUploadNewFileDeletesNothing(t *testing.T) {
	tmp := t.TempDir()
	path := writeTempFile(t, tmp, "new.pdf")

	var deleted []string
	store := &MockIngestStore{
		OnListIngested: func(ctx context.Context) ([]types.Document, error) {
			return []types.Document{doc("id1", "other.pdf")}, nil
		},
		OnDeleteDocument: func(ctx context.Context, docID string) error {
			deleted = append(deleted, docID)
			return nil
		},
	}
	corpus := NewCorpusService(filepath.Join(tmp, "uploads"), store)

	require.NoError(t, corpus.Upload(context.Background(), []types.IngestFile{{Name: "new.pdf", Path: path}}))
	assert.Empty(t, deleted)
}

func TestUploadIngestFailureAfterDeletePropagates(t *testing.T) {
	tmp := t.TempDir()
	path := writeTempFile(t, tmp, "a.pdf")

	var deleted []string
	store := &MockIngestStore{
		OnListIngested: func(ctx context.Context) ([]types.Document, error) {
			return []types.Document{doc("id1", "a.pdf")}, nil
		},
		OnDeleteDocument: func(ctx context.Context, docID string) error {
			deleted = append(deleted, docID)
			return nil
		},
		OnBulkIngest: func(ctx context.Context, files []types.IngestFile) error {
			return errors.New("ingest backend down")
		},
	}
	corpus := NewCorpusService(filepath.Join(tmp, "uploads"), store)

	err := corpus.Upload(context.Background(), []types.IngestFile{{Name: "a.pdf", Path: path}})

	// No rollback: the delete already happened, the error propagates.
	require.Error(t, err)
	assert.Equal(t, []string{"id1"}, deleted)
}

func TestDeleteSelectedRemovesAllMatchesAndClearsSelection(t *testing.T) {
	var deleted []string
	store := &MockIngestStore{
		OnListIngested: func(ctx context.Context) ([]types.Document, error) {
			return []types.Document{doc("id1", "a.pdf"), doc("id2", "b.pdf"), doc("id3", "a.pdf")}, nil
		},
		OnDeleteDocument: func(ctx context.Context, docID string) error {
			deleted = append(deleted, docID)
			return nil
		},
	}
	corpus := NewCorpusService(t.TempDir(), store)
	session := NewSessionStore().Acquire("s1")
	session.SetSelectedFile("a.pdf")

	require.NoError(t, corpus.DeleteSelected(context.Background(), session))
	assert.Equal(t, []string{"id1", "id3"}, deleted)
	assert.Equal(t, "", session.SelectedFile())
}

func TestDeleteAllClearsEverything(t *testing.T) {
	var deleted []string
	store := &MockIngestStore{
		OnListIngested: func(ctx context.Context) ([]types.Document, error) {
			return []types.Document{doc("id1", "a.pdf"), doc("id2", "b.pdf")}, nil
		},
		OnDeleteDocument: func(ctx context.Context, docID string) error {
			deleted = append(deleted, docID)
			return nil
		},
	}
	corpus := NewCorpusService(t.TempDir(), store)
	session := NewSessionStore().Acquire("s1")
	session.SetSelectedFile("b.pdf")

	require.NoError(t, corpus.DeleteAll(context.Background(), session))
	assert.Equal(t, []string{"id1", "id2"}, deleted)
	assert.Equal(t, "", session.SelectedFile())
}

func TestListFileNamesDistinctInOrder(t *testing.T) {
	store := &MockIngestStore{
		OnListIngested: func(ctx context.Context) ([]types.Document, error) {
			return []types.Document{
				doc("id1", "a.pdf"),
				doc("id2", "b.pdf"),
				doc("id3", "a.pdf"),
				{DocID: "id4"}, // no metadata, skipped
			}, nil
		},
	}
	corpus := NewCorpusService(t.TempDir(), store)

	names, err := corpus.ListFileNames(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"a.pdf", "b.pdf"}, names)
}
