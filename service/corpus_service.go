package service

import (
	"context"
	"log"

	"github.com/tieubaoca/questbot-be/database"
	"github.com/tieubaoca/questbot-be/types"
	"github.com/tieubaoca/questbot-be/utils"
)

// CorpusService manages the document corpus: listing, dedup-by-name
// upload and deletion. Identity for replacement is the filename only,
// content is never compared.
type CorpusService struct {
	uploadDir string
	store     database.IngestStore
}

func NewCorpusService(uploadDir string, store database.IngestStore) *CorpusService {
	return &CorpusService{
		uploadDir: uploadDir,
		store:     store,
	}
}

func (s *CorpusService) ListIngested(ctx context.Context) ([]types.Document, error) {
	return s.store.ListIngested(ctx)
}

// ListFileNames returns the distinct file names currently in the corpus,
// in first-seen order. Documents without a file name are skipped.
func (s *CorpusService) ListFileNames(ctx context.Context) ([]string, error) {
	docs, err := s.store.ListIngested(ctx)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]struct{}, len(docs))
	var names []string
	for _, doc := range docs {
		name := doc.FileName()
		if name == "" {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		names = append(names, name)
	}
	return names, nil
}

// Upload stages the incoming files into the upload dir, deletes every
// existing document whose file name collides with an incoming name, then
// bulk-ingests the new files. The delete and ingest phases are not
// transactional: an ingest failure after the delete phase leaves the
// replaced documents gone.
func (s *CorpusService) Upload(ctx context.Context, files []types.IngestFile) error {
	log.Printf("Loading count=%d files", len(files))

	staged := make([]types.IngestFile, 0, len(files))
	for _, file := range files {
		path, err := utils.CopyFileWithTimestamp(file.Path, s.uploadDir)
		if err != nil {
			return err
		}
		staged = append(staged, types.IngestFile{Name: file.Name, Path: path})
	}

	incoming := make(map[string]struct{}, len(staged))
	for _, file := range staged {
		incoming[file.Name] = struct{}{}
	}

	docs, err := s.store.ListIngested(ctx)
	if err != nil {
		return err
	}
	var toDelete []string
	for _, doc := range docs {
		if _, ok := incoming[doc.FileName()]; ok && doc.FileName() != "" {
			toDelete = append(toDelete, doc.DocID)
		}
	}
	if len(toDelete) > 0 {
		log.Printf("Uploading file(s) which were already ingested: %d document(s) will be replaced.", len(toDelete))
		for _, docID := range toDelete {
			if err := s.store.DeleteDocument(ctx, docID); err != nil {
				return err
			}
		}
	}

	return s.store.BulkIngest(ctx, staged)
}

// DeleteSelected removes every document whose file name equals the
// session's selection. File names are not unique in the corpus, so this
// may remove more than one document. The selection is cleared afterward.
func (s *CorpusService) DeleteSelected(ctx context.Context, session *Session) error {
	selected := session.SelectedFile()
	log.Printf("Deleting selected %s", selected)
	docs, err := s.store.ListIngested(ctx)
	if err != nil {
		return err
	}
	for _, doc := range docs {
		if doc.FileName() != selected || selected == "" {
			continue
		}
		if err := s.store.DeleteDocument(ctx, doc.DocID); err != nil {
			return err
		}
	}
	session.ClearSelection()
	return nil
}

// DeleteAll removes every document in the corpus and clears the
// session's selection.
func (s *CorpusService) DeleteAll(ctx context.Context, session *Session) error {
	docs, err := s.store.ListIngested(ctx)
	if err != nil {
		return err
	}
	log.Printf("Deleting count=%d files", len(docs))
	for _, doc := range docs {
		if err := s.store.DeleteDocument(ctx, doc.DocID); err != nil {
			return err
		}
	}
	session.ClearSelection()
	return nil
}
