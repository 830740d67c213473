package types

type DataResponse struct {
	Status  string      `json:"status"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

// ProcessResponse carries the per-page results of one upload.
type ProcessResponse struct {
	Pages      []*PageResult `json:"pages"`
	TotalPages int           `json:"total_pages"`
}

// CorrectionResponse is the updated state of one page after a correction.
type CorrectionResponse struct {
	DocumentID  string       `json:"document_id"`
	InvoiceData *InvoiceData `json:"invoice_data"`
	Vendor      *Vendor      `json:"vendor"`
}

// ProcessingStatus is streamed to clients while a document is being processed.
type ProcessingStatus struct {
	Status         string `json:"status"`
	Message        string `json:"message"`
	TotalPages     int    `json:"total_pages"`
	ProcessedPages int    `json:"processed_pages"`
}
