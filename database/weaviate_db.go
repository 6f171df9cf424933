package database

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/tieubaoca/questbot-be/config"
	"github.com/tieubaoca/questbot-be/types"
	"github.com/weaviate/weaviate-go-client/v4/weaviate"
	"github.com/weaviate/weaviate-go-client/v4/weaviate/auth"
	"github.com/weaviate/weaviate-go-client/v4/weaviate/filters"
	"github.com/weaviate/weaviate-go-client/v4/weaviate/graphql"
	"github.com/weaviate/weaviate/entities/models"
)

const BATCH_SIZE = 200

// listLimit bounds the chunk scan used to reconstruct the document list.
const listLimit = 10000

const (
	maxChunkSize = 1024
	overlapSize  = 128
)

var (
	CHUNK_CLASS        = "DocumentChunk"
	CHUNK_CLASS_OBJECT = &models.Class{
		Class: CHUNK_CLASS,
		Properties: []*models.Property{
			{Name: "text", DataType: []string{"text"}},
			{Name: "docId", DataType: []string{"text"}},
			{Name: "fileName", DataType: []string{"text"}},
			{Name: "pageLabel", DataType: []string{"text"}},
			{Name: "createdAt", DataType: []string{"int"}},
		},
		VectorIndexType: "hnsw",
	}
)

// WeaviateStore is the ingestion collaborator: it owns the chunked corpus
// and answers retrieval queries against it.
type WeaviateStore struct {
	client    *weaviate.Client
	extractor PageExtractor
}

func NewWeaviateStore(config config.WeaviateStoreConfig, extractor PageExtractor) (*WeaviateStore, error) {
	var scheme string
	if strings.Contains(config.Host, "https") {
		scheme = "https"
	} else {
		scheme = "http"
	}
	host := strings.TrimPrefix(config.Host, scheme+"://")
	cfg := weaviate.Config{
		Host:   host,
		Scheme: scheme,
	}
	if config.APIKey != "" {
		cfg.AuthConfig = auth.ApiKey{
			Value: config.APIKey,
		}
		cfg.Headers = map[string]string{
			"X-Weaviate-Api-Key":     config.APIKey,
			"X-Weaviate-Cluster-Url": fmt.Sprintf("%s://%s", scheme, host),
		}
	}
	CHUNK_CLASS_OBJECT.Vectorizer = config.Text2Vec
	CHUNK_CLASS_OBJECT.ModuleConfig = config.ModuleConfig
	client, err := weaviate.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create weaviate client: %w", err)
	}

	schema, err := client.Schema().Getter().Do(context.Background())
	if err != nil {
		return nil, fmt.Errorf("failed to get schema: %w", err)
	}

	hasChunkClass := false
	for _, class := range schema.Classes {
		if class.Class == CHUNK_CLASS {
			hasChunkClass = true
			break
		}
	}
	// Create DocumentChunk class if it doesn't exist
	if !hasChunkClass {
		err = client.Schema().ClassCreator().WithClass(CHUNK_CLASS_OBJECT).Do(context.Background())
		if err != nil {
			return nil, fmt.Errorf("failed to create DocumentChunk class: %w", err)
		}
	}
	return &WeaviateStore{
		client:    client,
		extractor: extractor,
	}, nil
}

func (s *WeaviateStore) ReInit() error {
	err := s.client.Schema().ClassDeleter().WithClassName(CHUNK_CLASS).Do(context.Background())
	if err != nil {
		return fmt.Errorf("failed to delete DocumentChunk class: %w", err)
	}

	err = s.client.Schema().ClassCreator().WithClass(CHUNK_CLASS_OBJECT).Do(context.Background())
	if err != nil {
		return fmt.Errorf("failed to create DocumentChunk class: %w", err)
	}
	return nil
}

// ListIngested scans chunk provenance fields and groups them back into
// one Document per docId, first occurrence wins.
func (s *WeaviateStore) ListIngested(ctx context.Context) ([]types.Document, error) {
	fields := []graphql.Field{
		{Name: "docId"},
		{Name: "fileName"},
		{Name: "pageLabel"},
	}
	result, err := s.client.GraphQL().Get().
		WithClassName(CHUNK_CLASS).
		WithFields(fields...).
		WithLimit(listLimit).
		Do(ctx)
	if err != nil {
		return nil, err
	}
	if result.Errors != nil {
		return nil, fmt.Errorf("list failed: %v", result.Errors[0].Message)
	}

	seen := make(map[string]struct{})
	var docs []types.Document
	for _, item := range chunkRows(result) {
		chunk, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		docID, _ := chunk["docId"].(string)
		if docID == "" {
			continue
		}
		if _, dup := seen[docID]; dup {
			continue
		}
		seen[docID] = struct{}{}
		metadata := map[string]string{}
		if fileName, ok := chunk["fileName"].(string); ok {
			metadata[types.MetaFileName] = fileName
		}
		if pageLabel, ok := chunk["pageLabel"].(string); ok {
			metadata[types.MetaPageLabel] = pageLabel
		}
		docs = append(docs, types.Document{
			DocID:    docID,
			Metadata: metadata,
		})
	}
	return docs, nil
}

// BulkIngest extracts each file into pages, splits long pages into
// overlapping chunks and batch-inserts them under a fresh document id.
func (s *WeaviateStore) BulkIngest(ctx context.Context, files []types.IngestFile) error {
	createdAt := time.Now().Unix()
	var objects []*models.Object
	for _, file := range files {
		pages, err := s.extractor.ExtractPages(file.Path)
		if err != nil {
			return fmt.Errorf("failed to extract %s: %w", file.Name, err)
		}
		docID := uuid.NewString()
		for _, page := range pages {
			for _, text := range splitChunks(page.Text, maxChunkSize, overlapSize) {
				objects = append(objects, &models.Object{
					Class: CHUNK_CLASS,
					Properties: map[string]interface{}{
						"text":      text,
						"docId":     docID,
						"fileName":  file.Name,
						"pageLabel": page.Label,
						"createdAt": createdAt,
					},
				})
			}
		}
		log.Printf("Ingesting %s as document %s", file.Name, docID)
	}

	total := len(objects)
	for i := 0; i < total; i += BATCH_SIZE {
		end := i + BATCH_SIZE
		if end > total {
			end = total
		}
		batcher := s.client.Batch().ObjectsBatcher()
		for _, obj := range objects[i:end] {
			batcher = batcher.WithObjects(obj)
		}
		if _, err := batcher.Do(ctx); err != nil {
			return fmt.Errorf("failed to insert batch %d-%d: %w", i, end, err)
		}
		log.Printf("Inserted batch %d-%d of %d chunks", i, end, total)
	}
	return nil
}

// DeleteDocument removes every chunk belonging to the given document id.
func (s *WeaviateStore) DeleteDocument(ctx context.Context, docID string) error {
	where := filters.Where().
		WithPath([]string{"docId"}).
		WithOperator(filters.Equal).
		WithValueString(docID)
	_, err := s.client.Batch().ObjectsBatchDeleter().
		WithClassName(CHUNK_CLASS).
		WithWhere(where).
		Do(ctx)
	return err
}

// Retrieve runs a nearText search and maps results back into chunks with
// their provenance metadata.
func (s *WeaviateStore) Retrieve(ctx context.Context, query string, limit int) ([]types.Chunk, error) {
	fields := []graphql.Field{
		{Name: "text"},
		{Name: "docId"},
		{Name: "fileName"},
		{Name: "pageLabel"},
		{Name: "_additional", Fields: []graphql.Field{{Name: "distance"}, {Name: "id"}}},
	}
	nearText := s.client.GraphQL().NearTextArgBuilder().
		WithConcepts([]string{query}).
		WithDistance(0.7)

	getBuilder := s.client.GraphQL().Get().
		WithClassName(CHUNK_CLASS).
		WithFields(fields...).
		WithNearText(nearText)
	if limit > 0 {
		getBuilder = getBuilder.WithLimit(limit)
	}

	result, err := getBuilder.Do(ctx)
	if err != nil {
		return nil, err
	}
	if result.Errors != nil {
		return nil, fmt.Errorf("retrieval failed: %v", result.Errors[0].Message)
	}

	var chunks []types.Chunk
	for _, item := range chunkRows(result) {
		raw, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		metadata := map[string]string{}
		if fileName, ok := raw["fileName"].(string); ok {
			metadata[types.MetaFileName] = fileName
		}
		if pageLabel, ok := raw["pageLabel"].(string); ok {
			metadata[types.MetaPageLabel] = pageLabel
		}
		text, _ := raw["text"].(string)
		chunks = append(chunks, types.Chunk{
			Text:     text,
			Metadata: metadata,
		})
	}
	return chunks, nil
}

// chunkRows pulls the chunk objects out of a GraphQL Get response.
// Malformed or empty responses yield nil rather than a panic.
func chunkRows(result *models.GraphQLResponse) []interface{} {
	get, ok := result.Data["Get"].(map[string]interface{})
	if !ok {
		return nil
	}
	rows, _ := get[CHUNK_CLASS].([]interface{})
	return rows
}

// splitChunks cuts text into overlapping pieces no longer than maxSize,
// preferring sentence ends, then word boundaries.
func splitChunks(text string, maxSize, overlap int) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	if len(text) <= maxSize {
		return []string{text}
	}

	var chunks []string
	currentPos := 0
	textLen := len(text)
	for currentPos < textLen {
		chunkEnd := currentPos + maxSize
		if chunkEnd >= textLen {
			if chunk := strings.TrimSpace(text[currentPos:]); chunk != "" {
				chunks = append(chunks, chunk)
			}
			break
		}

		// Find nearest sentence end
		sentenceEnd := chunkEnd
		for i := chunkEnd - 1; i > currentPos; i-- {
			if text[i] == '.' || text[i] == '?' || text[i] == '!' {
				sentenceEnd = i + 1
				break
			}
		}

		// If no sentence end found, use word boundary
		if sentenceEnd == chunkEnd {
			for i := chunkEnd; i > currentPos; i-- {
				if text[i] == ' ' {
					sentenceEnd = i
					break
				}
			}
		}

		if chunk := strings.TrimSpace(text[currentPos:sentenceEnd]); chunk != "" {
			chunks = append(chunks, chunk)
		}

		next := sentenceEnd - overlap
		if next <= currentPos {
			next = sentenceEnd
		}
		currentPos = next
	}
	return chunks
}
