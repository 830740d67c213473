package types

// ChunkerConfig contains configuration options for text chunking.
type ChunkerConfig struct {
	ChunkSize int // Maximum size of a chunk in characters
	Overlap   int // Characters repeated between adjacent chunks
}

// PageResult is the processing outcome for one page of an uploaded document.
// Multi-page PDFs produce one result per page, addressable by 0-based index.
type PageResult struct {
	PageNumber  int          `json:"page_number"`
	DocumentID  string       `json:"document_id"`
	InvoiceData *InvoiceData `json:"invoice_data"`
	Vendor      *Vendor      `json:"vendor"`
	Error       string       `json:"error,omitempty"`
}
