package database

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sort"
	"strings"

	chromago "github.com/amikos-tech/chroma-go/pkg/api/v2"
	"github.com/tieubaoca/invoice-agent-be/config"
)

// ChromaStore implements VectorStore on a ChromaDB instance. Embeddings are
// produced server-side by the collection's embedding function.
type ChromaStore struct {
	client         chromago.Client
	collection     chromago.Collection
	collectionName string
}

func NewChromaStore(cfg config.ChromaStoreConfig) (*ChromaStore, error) {
	var opts []chromago.ClientOption
	if cfg.URL != "" {
		opts = append(opts, chromago.WithBaseURL(cfg.URL))
	}
	client, err := chromago.NewHTTPClient(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create chroma client: %w", err)
	}

	collectionName := cfg.Collection
	if collectionName == "" {
		collectionName = "invoice_documents"
	}
	collection, err := getOrCreateCollection(client, collectionName)
	if err != nil {
		return nil, err
	}

	return &ChromaStore{
		client:         client,
		collection:     collection,
		collectionName: collectionName,
	}, nil
}

func getOrCreateCollection(client chromago.Client, name string) (chromago.Collection, error) {
	collection, err := client.GetOrCreateCollection(
		context.Background(),
		name,
		chromago.WithCollectionMetadataCreate(
			chromago.NewMetadata(
				chromago.NewStringAttribute("description", "Invoice document embeddings"),
			),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get or create collection %s: %w", name, err)
	}
	return collection, nil
}

func (s *ChromaStore) Reset(ctx context.Context) error {
	if err := s.client.DeleteCollection(ctx, s.collectionName); err != nil {
		return fmt.Errorf("failed to delete collection: %w", err)
	}
	collection, err := getOrCreateCollection(s.client, s.collectionName)
	if err != nil {
		return err
	}
	s.collection = collection
	return nil
}

func (s *ChromaStore) AddChunks(ctx context.Context, documentID string, chunks []Chunk) error {
	for _, chunk := range chunks {
		metadata := chromago.NewDocumentMetadata(
			chromago.NewStringAttribute("document_id", documentID),
			chromago.NewIntAttribute("chunk_index", int64(chunk.ChunkIndex)),
			chromago.NewIntAttribute("chunk_count", int64(chunk.ChunkCount)),
		)
		docID := chromago.DocumentID(fmt.Sprintf("%s_chunk_%d", documentID, chunk.ChunkIndex))
		err := s.collection.Add(ctx,
			chromago.WithIDs(docID),
			chromago.WithTexts(chunk.Content),
			chromago.WithMetadatas(metadata),
		)
		if err != nil {
			return fmt.Errorf("failed to add chunk %d of %s to chromadb: %w", chunk.ChunkIndex, documentID, err)
		}
	}
	log.Printf("Indexed %d chunks for %s", len(chunks), documentID)
	return nil
}

func (s *ChromaStore) QueryDocument(ctx context.Context, documentID, query string, limit int) ([]string, error) {
	results, err := s.collection.Query(ctx,
		chromago.WithQueryTexts(query),
		chromago.WithNResults(limit),
		chromago.WithWhereQuery(chromago.EqString("document_id", documentID)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query chromadb: %w", err)
	}

	var texts []string
	documentGroups := results.GetDocumentsGroups()
	if len(documentGroups) > 0 {
		for _, doc := range documentGroups[0] {
			if doc.ContentString() != "" {
				texts = append(texts, doc.ContentString())
			}
		}
	}
	return texts, nil
}

func (s *ChromaStore) GetFullDocument(ctx context.Context, documentID string) (string, error) {
	results, err := s.collection.Get(ctx,
		chromago.WithWhereGet(chromago.EqString("document_id", documentID)),
	)
	if err != nil {
		return "", fmt.Errorf("failed to get documents from chromadb: %w", err)
	}

	documents := results.GetDocuments()
	metadatas := results.GetMetadatas()

	type indexed struct {
		index   int
		content string
	}
	chunks := make([]indexed, 0, len(documents))
	for i := range documents {
		idx := 0
		if len(metadatas) > i && metadatas[i] != nil {
			// DocumentMetadata exposes no map accessor; round-trip through
			// JSON the way the attribute values can actually be read.
			jsonBytes, err := json.Marshal(metadatas[i])
			if err == nil {
				var metaMap map[string]interface{}
				if err := json.Unmarshal(jsonBytes, &metaMap); err == nil {
					if f, ok := metaMap["chunk_index"].(float64); ok {
						idx = int(f)
					}
				}
			}
		}
		chunks = append(chunks, indexed{index: idx, content: documents[i].ContentString()})
	}
	sort.Slice(chunks, func(i, j int) bool { return chunks[i].index < chunks[j].index })

	parts := make([]string, 0, len(chunks))
	for _, c := range chunks {
		parts = append(parts, c.content)
	}
	return strings.Join(parts, "\n"), nil
}
