package service

import (
	"strings"

	"github.com/tieubaoca/invoice-agent-be/database"
	"github.com/tieubaoca/invoice-agent-be/types"
)

var DefaultChunkerConfig = types.ChunkerConfig{
	ChunkSize: 1000,
	Overlap:   200,
}

// ChunkService splits extracted text into overlapping, boundary-aware
// segments for indexing.
type ChunkService struct {
	chunkSize int
	overlap   int
}

func NewChunkService(config types.ChunkerConfig) *ChunkService {
	if config.ChunkSize <= 0 {
		config.ChunkSize = DefaultChunkerConfig.ChunkSize
	}
	if config.Overlap < 0 || config.Overlap >= config.ChunkSize {
		config.Overlap = DefaultChunkerConfig.Overlap
		if config.Overlap >= config.ChunkSize {
			config.Overlap = config.ChunkSize / 5
		}
	}
	return &ChunkService{
		chunkSize: config.ChunkSize,
		overlap:   config.Overlap,
	}
}

// Chunk splits text into chunks of at most chunkSize characters. Each chunk
// after the first starts overlap characters before the previous chunk's end,
// so content near a boundary is retrievable from either side. Before the
// final chunk, the window is shortened to the right-most sentence, line or
// word boundary when one falls at or after 70% of the window.
func (s *ChunkService) Chunk(text string) []string {
	if len(text) <= s.chunkSize {
		return []string{text}
	}

	var chunks []string
	start := 0
	for start < len(text) {
		end := start + s.chunkSize
		if end >= len(text) {
			chunks = append(chunks, text[start:])
			break
		}

		window := text[start:end]
		lastPeriod := strings.LastIndexByte(window, '.')
		lastNewline := strings.LastIndexByte(window, '\n')
		lastSpace := strings.LastIndexByte(window, ' ')

		breakPoint := lastPeriod
		if lastNewline > breakPoint {
			breakPoint = lastNewline
		}
		if lastSpace > breakPoint {
			breakPoint = lastSpace
		}
		if breakPoint >= (s.chunkSize*7)/10 {
			end = start + breakPoint + 1
		}

		chunks = append(chunks, text[start:end])

		next := end - s.overlap
		if next <= start {
			// Degenerate size/overlap combinations must still make progress.
			next = end
		}
		start = next
	}

	return chunks
}

// ChunkDocument produces indexable chunks carrying document-scoped metadata.
func (s *ChunkService) ChunkDocument(documentID, text string) []database.Chunk {
	parts := s.Chunk(text)
	chunks := make([]database.Chunk, 0, len(parts))
	for i, part := range parts {
		chunks = append(chunks, database.Chunk{
			Content:    part,
			DocumentID: documentID,
			ChunkIndex: i,
			ChunkCount: len(parts),
		})
	}
	return chunks
}
