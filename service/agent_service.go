package service

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/tieubaoca/invoice-agent-be/database"
	"github.com/tieubaoca/invoice-agent-be/types"
)

type SessionState int

const (
	StateEmpty SessionState = iota
	StateIndexed
	StateExtracted
	StateCorrected
)

// DocumentSession holds the working state for a single invoice page: its
// indexed text, the current structured record and the resolved vendor.
type DocumentSession struct {
	DocumentID string
	PageNumber int
	State      SessionState
	FullText   string
	Record     *types.InvoiceData
	Vendor     *types.Vendor
	Err        string

	mu sync.Mutex
}

// AgentService drives the invoice workflow end to end: page text comes in,
// gets indexed into the vector store, parsed into a structured record, and
// then refined through retrieval-scoped corrections.
type AgentService struct {
	chunker  *ChunkService
	vectorDB database.VectorStore
	selector *ContextService
	parser   *ParserService
	vendors  *VendorService

	mu         sync.Mutex
	batchID    string
	sourceFile string
	sessions   []*DocumentSession
}

func NewAgentService(
	chunker *ChunkService,
	vectorDB database.VectorStore,
	selector *ContextService,
	parser *ParserService,
	vendors *VendorService,
) *AgentService {
	return &AgentService{
		chunker:  chunker,
		vectorDB: vectorDB,
		selector: selector,
		parser:   parser,
		vendors:  vendors,
	}
}

// ProgressFunc receives status updates while pages are being processed.
type ProgressFunc func(status types.ProcessingStatus)

// ProcessPages indexes and extracts every page of a new invoice, replacing
// whatever document was loaded before. A page that fails to parse is reported
// in its result instead of aborting the rest of the batch.
func (s *AgentService) ProcessPages(ctx context.Context, sourceFile string, pages []string, progress ProgressFunc) (*types.ProcessResponse, error) {
	if len(pages) == 0 {
		return nil, fmt.Errorf("no pages to process")
	}

	batchID := generateDocumentID()
	sessions := make([]*DocumentSession, 0, len(pages))

	for i, pageText := range pages {
		pageNum := i + 1
		if progress != nil {
			progress(types.ProcessingStatus{
				Status:         "processing",
				Message:        fmt.Sprintf("Processing page %d of %d", pageNum, len(pages)),
				TotalPages:     len(pages),
				ProcessedPages: i,
			})
		}

		session := &DocumentSession{
			DocumentID: fmt.Sprintf("%s-P%d", batchID, pageNum),
			PageNumber: pageNum,
		}
		if err := s.indexSession(ctx, session, pageText); err != nil {
			return nil, err
		}
		if err := s.extractSession(ctx, session); err != nil {
			log.Printf("Failed to extract page %d: %v", pageNum, err)
			session.Err = err.Error()
		}
		sessions = append(sessions, session)
	}

	s.mu.Lock()
	s.batchID = batchID
	s.sourceFile = sourceFile
	s.sessions = sessions
	s.mu.Unlock()

	if progress != nil {
		progress(types.ProcessingStatus{
			Status:         "done",
			Message:        "Processing complete",
			TotalPages:     len(pages),
			ProcessedPages: len(pages),
		})
	}

	results := make([]*types.PageResult, 0, len(sessions))
	for _, session := range sessions {
		results = append(results, session.result())
	}
	return &types.ProcessResponse{
		Pages:      results,
		TotalPages: len(results),
	}, nil
}

// indexSession chunks the page text and loads it into the vector store.
func (s *AgentService) indexSession(ctx context.Context, session *DocumentSession, text string) error {
	chunks := s.chunker.ChunkDocument(session.DocumentID, text)
	if err := s.vectorDB.AddChunks(ctx, session.DocumentID, chunks); err != nil {
		return fmt.Errorf("%w: %v", types.ErrIndexing, err)
	}
	log.Printf("Indexed document %s as %d chunks", session.DocumentID, len(chunks))
	session.FullText = text
	session.State = StateIndexed
	return nil
}

// extractSession runs the initial full extraction and resolves the vendor.
func (s *AgentService) extractSession(ctx context.Context, session *DocumentSession) error {
	record, err := s.parser.ParseInvoice(ctx, session.FullText)
	if err != nil {
		return err
	}
	session.Record = record
	session.State = StateExtracted

	vendor, err := s.resolveVendor(record.Metadata)
	if err != nil {
		log.Printf("Vendor store warning for %s: %v", session.DocumentID, err)
	}
	session.Vendor = vendor
	return nil
}

// ApplyCorrection runs a retrieval-scoped correction against one page. The
// page record is replaced only when the full parse and merge succeed; any
// failure leaves it exactly as it was.
func (s *AgentService) ApplyCorrection(ctx context.Context, pageIndex *int, query string) (*types.CorrectionResponse, error) {
	session, err := s.sessionAt(pageIndex)
	if err != nil {
		return nil, err
	}

	session.mu.Lock()
	defer session.mu.Unlock()

	if session.State < StateExtracted || session.Record == nil {
		return nil, types.ErrNoActiveDocument
	}

	contextText := s.selector.Select(ctx, session.DocumentID, query, session.FullText)
	merged, delta, err := s.parser.ApplyCorrection(ctx, contextText, session.Record, query)
	if err != nil {
		return nil, err
	}

	// Re-resolve the vendor only when the correction touched its identity.
	vendor := session.Vendor
	if delta.Metadata != nil && delta.Metadata.VendorName != nil {
		vendor, err = s.resolveVendor(merged.Metadata)
		if err != nil {
			log.Printf("Vendor store warning for %s: %v", session.DocumentID, err)
		}
	}

	session.Record = merged
	session.Vendor = vendor
	session.State = StateCorrected

	return &types.CorrectionResponse{
		DocumentID:  session.DocumentID,
		InvoiceData: merged,
		Vendor:      vendor,
	}, nil
}

// ExtractField answers a one-off field question about a page without touching
// its record.
func (s *AgentService) ExtractField(ctx context.Context, pageIndex *int, fieldName, extraContext string) (map[string]interface{}, error) {
	session, err := s.sessionAt(pageIndex)
	if err != nil {
		return nil, err
	}

	session.mu.Lock()
	defer session.mu.Unlock()

	if session.State < StateExtracted {
		return nil, types.ErrNoActiveDocument
	}

	query := s.selector.BuildQuery(fieldName, extraContext)
	contextText := s.selector.Select(ctx, session.DocumentID, query, session.FullText)
	return s.parser.ExtractField(ctx, contextText, fieldName, extraContext)
}

// CurrentPages returns a snapshot of every page of the loaded document.
func (s *AgentService) CurrentPages() ([]*types.PageResult, error) {
	s.mu.Lock()
	sessions := s.sessions
	s.mu.Unlock()

	if len(sessions) == 0 {
		return nil, types.ErrNoActiveDocument
	}
	results := make([]*types.PageResult, 0, len(sessions))
	for _, session := range sessions {
		session.mu.Lock()
		results = append(results, session.result())
		session.mu.Unlock()
	}
	return results, nil
}

// SourceFile returns the path of the currently loaded upload, if any.
func (s *AgentService) SourceFile() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sourceFile
}

// Reset drops the vector store contents and forgets the loaded document.
func (s *AgentService) Reset(ctx context.Context) error {
	if err := s.vectorDB.Reset(ctx); err != nil {
		return fmt.Errorf("%w: %v", types.ErrIndexing, err)
	}
	s.mu.Lock()
	s.batchID = ""
	s.sourceFile = ""
	s.sessions = nil
	s.mu.Unlock()
	return nil
}

func (s *AgentService) sessionAt(pageIndex *int) (*DocumentSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.sessions) == 0 {
		return nil, types.ErrNoActiveDocument
	}
	idx := 0
	if pageIndex != nil {
		idx = *pageIndex
	}
	if idx < 0 || idx >= len(s.sessions) {
		return nil, fmt.Errorf("page index %d out of range, document has %d pages", idx, len(s.sessions))
	}
	return s.sessions[idx], nil
}

func (s *AgentService) resolveVendor(meta types.InvoiceMetadata) (*types.Vendor, error) {
	if meta.VendorName == nil {
		return nil, nil
	}
	return s.vendors.ResolveOrCreate(*meta.VendorName, VendorAttrs{
		Address: meta.VendorAddress,
		TaxID:   meta.VendorTaxID,
	})
}

func (session *DocumentSession) result() *types.PageResult {
	return &types.PageResult{
		PageNumber:  session.PageNumber,
		DocumentID:  session.DocumentID,
		InvoiceData: session.Record,
		Vendor:      session.Vendor,
		Error:       session.Err,
	}
}

func generateDocumentID() string {
	return "DOC-" + strings.ToUpper(uuid.New().String()[:8])
}
