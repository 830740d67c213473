package database

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"

	"github.com/tieubaoca/invoice-agent-be/config"
	"github.com/weaviate/weaviate-go-client/v4/weaviate"
	"github.com/weaviate/weaviate-go-client/v4/weaviate/auth"
	"github.com/weaviate/weaviate-go-client/v4/weaviate/filters"
	"github.com/weaviate/weaviate-go-client/v4/weaviate/graphql"
	"github.com/weaviate/weaviate/entities/models"
)

const BATCH_SIZE = 200

var (
	CHUNK_CLASS        = "InvoiceChunk"
	CHUNK_CLASS_OBJECT = &models.Class{
		Class: CHUNK_CLASS,
		Properties: []*models.Property{
			{Name: "content", DataType: []string{"text"}},
			{Name: "documentId", DataType: []string{"text"}},
			{Name: "chunkIndex", DataType: []string{"int"}},
			{Name: "chunkCount", DataType: []string{"int"}},
		},
		VectorIndexType: "hnsw",
	}
)

// WeaviateStore implements VectorStore on a Weaviate instance.
type WeaviateStore struct {
	client *weaviate.Client
}

func NewWeaviateStore(config config.WeaviateStoreConfig) (*WeaviateStore, error) {
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
		return nil, fmt.Errorf("failed to create weaviate client: %v", err)
	}

	schema, err := client.Schema().Getter().Do(context.Background())
	if err != nil {
		return nil, fmt.Errorf("failed to get schema: %v", err)
	}

	hasChunkClass := false
	for _, class := range schema.Classes {
		if class.Class == CHUNK_CLASS {
			hasChunkClass = true
			break
		}
	}
	if !hasChunkClass {
		err = client.Schema().ClassCreator().WithClass(CHUNK_CLASS_OBJECT).Do(context.Background())
		if err != nil {
			return nil, fmt.Errorf("failed to create InvoiceChunk class: %v", err)
		}
	}
	return &WeaviateStore{
		client: client,
	}, nil
}

func (s *WeaviateStore) Reset(ctx context.Context) error {
	err := s.client.Schema().ClassDeleter().WithClassName(CHUNK_CLASS).Do(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete InvoiceChunk class: %v", err)
	}

	err = s.client.Schema().ClassCreator().WithClass(CHUNK_CLASS_OBJECT).Do(ctx)
	if err != nil {
		return fmt.Errorf("failed to create InvoiceChunk class: %v", err)
	}
	return nil
}

func (s *WeaviateStore) AddChunks(ctx context.Context, documentID string, chunks []Chunk) error {
	total := len(chunks)
	for i := 0; i < total; i += BATCH_SIZE {
		end := i + BATCH_SIZE
		if end > total {
			end = total
		}

		batcher := s.client.Batch().ObjectsBatcher()
		for j := i; j < end; j++ {
			properties := map[string]interface{}{
				"content":    chunks[j].Content,
				"documentId": documentID,
				"chunkIndex": chunks[j].ChunkIndex,
				"chunkCount": chunks[j].ChunkCount,
			}
			batcher = batcher.WithObjects(&models.Object{
				Class:      CHUNK_CLASS,
				Properties: properties,
			})
		}

		_, err := batcher.Do(ctx)
		if err != nil {
			return fmt.Errorf("failed to insert batch %d-%d: %v", i, end, err)
		}
		log.Printf("Indexed batch %d-%d of %d chunks for %s", i, end, total, documentID)
	}

	return nil
}

func (s *WeaviateStore) QueryDocument(ctx context.Context, documentID, query string, limit int) ([]string, error) {
	fields := []graphql.Field{
		{Name: "content"},
		{Name: "chunkIndex"},
		{Name: "_additional", Fields: []graphql.Field{{Name: "distance"}}},
	}
	where := filters.Where().
		WithPath([]string{"documentId"}).
		WithOperator(filters.Equal).
		WithValueString(documentID)

	nearText := s.client.GraphQL().NearTextArgBuilder().
		WithConcepts([]string{query})

	getBuilder := s.client.GraphQL().Get().
		WithClassName(CHUNK_CLASS).
		WithFields(fields...).
		WithNearText(nearText).
		WithWhere(where)
	if limit > 0 {
		getBuilder = getBuilder.WithLimit(limit)
	}

	result, err := getBuilder.Do(ctx)
	if err != nil {
		return nil, err
	}
	if result.Errors != nil {
		return nil, fmt.Errorf("query failed: %v", result.Errors[0].Message)
	}

	var texts []string
	if data, ok := result.Data["Get"].(map[string]interface{})[CHUNK_CLASS].([]interface{}); ok {
		for _, item := range data {
			if obj, ok := item.(map[string]interface{}); ok {
				if content, ok := obj["content"].(string); ok && content != "" {
					texts = append(texts, content)
				}
			}
		}
	}
	return texts, nil
}

func (s *WeaviateStore) GetFullDocument(ctx context.Context, documentID string) (string, error) {
	fields := []graphql.Field{
		{Name: "content"},
		{Name: "chunkIndex"},
	}
	where := filters.Where().
		WithPath([]string{"documentId"}).
		WithOperator(filters.Equal).
		WithValueString(documentID)

	result, err := s.client.GraphQL().Get().
		WithClassName(CHUNK_CLASS).
		WithFields(fields...).
		WithWhere(where).
		WithLimit(10000).
		Do(ctx)
	if err != nil {
		return "", err
	}
	if result.Errors != nil {
		return "", fmt.Errorf("get failed: %v", result.Errors[0].Message)
	}

	type indexed struct {
		index   int
		content string
	}
	var chunks []indexed
	if data, ok := result.Data["Get"].(map[string]interface{})[CHUNK_CLASS].([]interface{}); ok {
		for _, item := range data {
			if obj, ok := item.(map[string]interface{}); ok {
				content, _ := obj["content"].(string)
				idx := 0
				if f, ok := obj["chunkIndex"].(float64); ok {
					idx = int(f)
				}
				chunks = append(chunks, indexed{index: idx, content: content})
			}
		}
	}
	sort.Slice(chunks, func(i, j int) bool { return chunks[i].index < chunks[j].index })

	parts := make([]string, 0, len(chunks))
	for _, c := range chunks {
		parts = append(parts, c.content)
	}
	return strings.Join(parts, "\n"), nil
}
