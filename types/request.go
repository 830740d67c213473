package types

// CorrectionRequest asks the agent to fold a natural-language correction into
// the working record. PageIndex selects a page of a multi-page document;
// nil means the most recently processed page.
type CorrectionRequest struct {
	Query     string `json:"query"`
	PageIndex *int   `json:"page_index,omitempty"`
}

// ExtractionRequest asks for a single field, retrieval-scoped.
type ExtractionRequest struct {
	FieldName string `json:"field_name"`
	Context   string `json:"context,omitempty"`
	PageIndex *int   `json:"page_index,omitempty"`
}
