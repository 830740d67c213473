package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/tieubaoca/invoice-agent-be/types"
	"github.com/tieubaoca/invoice-agent-be/utils"
)

// Oracle is the narrow interface to the generative service that derives
// structured data from text. Implementations may return responses wrapped in
// fences or prose; callers must salvage the JSON object.
type Oracle interface {
	Generate(ctx context.Context, prompt, document string) (string, error)
}

// DocumentExtractor converts raw document bytes into text, guided by a hint
// prompt. Only multimodal backends implement this.
type DocumentExtractor interface {
	GenerateFromBytes(ctx context.Context, prompt, mimeType string, data []byte) (string, error)
}

const extractionPrompt = `Extract ALL information from this invoice document and structure it as JSON.

Return the data in this EXACT format:
{
  "metadata": {
    "invoice_number": "string or null",
    "invoice_date": "string or null",
    "due_date": "string or null",
    "vendor_name": "string or null",
    "vendor_address": "string or null",
    "vendor_tax_id": "string or null",
    "customer_name": "string or null",
    "customer_address": "string or null",
    "po_number": "string or null",
    "currency": "string or null",
    "subtotal": number or null,
    "tax_total": number or null,
    "total_amount": number or null,
    "payment_terms": "string or null"
  },
  "line_items": [
    {
      "description": "string or null",
      "quantity": number or null,
      "unit_price": number or null,
      "amount": number or null,
      "tax_rate": number or null,
      "tax_amount": number or null
    }
  ]
}

IMPORTANT:
- Extract ALL line items as separate objects in the line_items array
- Use null for fields that are not found or unclear
- For numbers, use numeric types (not strings)
- For dates, keep as strings in the format found
- Only return the JSON, no other text

Invoice text:
`

const correctionPromptFormat = `You have previously extracted this invoice data:

%s

The user has provided this correction/request:
"%s"

Based on the invoice text below, provide ONLY the corrected or newly requested fields.
Return a JSON object with the same structure, but include ONLY the fields that need updating.

Examples:
- If user says "PO number is missing", extract: {"metadata": {"po_number": "value"}}
- If user says "Currency is GBP not USD", return: {"metadata": {"currency": "GBP"}}
- If user says "Extract line items", return: {"line_items": [...]}

Only return the JSON with changed/new fields, no other text.

Invoice text:
`

const fieldPromptFormat = `From the following invoice text, extract ONLY the requested field(s).

Requested field: %s
%s
Return your response as a JSON object with the field name as key.
If the field is not found or unclear, return null as the value.

Examples:
- For "PO number": {"po_number": "PO-12345"}
- For "line items": {"line_items": [...]}
- For "currency": {"currency": "GBP"}

Only return the JSON, no other text.

Invoice text:
`

// ParserService drives the oracle through extraction, correction and
// single-field requests, salvaging and validating its JSON output.
type ParserService struct {
	oracle Oracle
	merger *MergeService
}

func NewParserService(oracle Oracle, merger *MergeService) *ParserService {
	return &ParserService{
		oracle: oracle,
		merger: merger,
	}
}

// ParseInvoice asks the oracle for a full structured guess over text.
func (s *ParserService) ParseInvoice(ctx context.Context, text string) (*types.InvoiceData, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return &types.InvoiceData{LineItems: []types.LineItem{}}, nil
	}

	log.Println("Parsing invoice data...")
	response, err := s.oracle.Generate(ctx, extractionPrompt, text)
	if err != nil {
		return nil, fmt.Errorf("oracle extraction failed: %w", err)
	}

	raw, err := utils.ExtractJSONObject(response)
	if err != nil {
		return nil, &types.MalformedResponseError{Raw: response, Err: err}
	}
	record, err := s.merger.ParseRecord(raw)
	if err != nil {
		return nil, err
	}
	log.Printf("Parsed invoice with %d line items", len(record.LineItems))
	return record, nil
}

// ApplyCorrection asks the oracle for a delta scoped to contextText and folds
// it into current. The input record is left untouched on any failure.
func (s *ParserService) ApplyCorrection(ctx context.Context, contextText string, current *types.InvoiceData, query string) (*types.InvoiceData, *types.InvoiceDelta, error) {
	currentJSON, err := json.MarshalIndent(current, "", "  ")
	if err != nil {
		return nil, nil, fmt.Errorf("failed to marshal current record: %w", err)
	}

	log.Printf("Processing correction: %s", query)
	prompt := fmt.Sprintf(correctionPromptFormat, string(currentJSON), query)
	response, err := s.oracle.Generate(ctx, prompt, contextText)
	if err != nil {
		return nil, nil, fmt.Errorf("oracle correction failed: %w", err)
	}

	raw, err := utils.ExtractJSONObject(response)
	if err != nil {
		return nil, nil, &types.MalformedResponseError{Raw: response, Err: err}
	}
	delta, err := s.merger.ParseDelta(raw)
	if err != nil {
		return nil, nil, err
	}

	merged := s.merger.Merge(current, delta)
	return merged, delta, nil
}

// ExtractField asks the oracle for a single field and returns the raw
// key/value result.
func (s *ParserService) ExtractField(ctx context.Context, contextText, fieldName, extraContext string) (map[string]interface{}, error) {
	contextLine := ""
	if extraContext != "" {
		contextLine = fmt.Sprintf("Additional context: %s\n", extraContext)
	}
	log.Printf("Extracting specific field: %s", fieldName)
	prompt := fmt.Sprintf(fieldPromptFormat, fieldName, contextLine)
	response, err := s.oracle.Generate(ctx, prompt, contextText)
	if err != nil {
		return nil, fmt.Errorf("oracle field extraction failed: %w", err)
	}

	raw, err := utils.ExtractJSONObject(response)
	if err != nil {
		return nil, &types.MalformedResponseError{Raw: response, Err: err}
	}
	var result map[string]interface{}
	if err := json.Unmarshal([]byte(raw), &result); err != nil {
		return nil, &types.MalformedResponseError{Raw: response, Err: err}
	}
	return result, nil
}
