package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tieubaoca/invoice-agent-be/types"
)

func TestParseInvoiceEmptyTextSkipsOracle(t *testing.T) {
	oracle := &fakeOracle{}
	parser := NewParserService(oracle, NewMergeService())

	record, err := parser.ParseInvoice(context.Background(), "   \n  ")

	require.NoError(t, err)
	assert.Empty(t, record.LineItems)
	assert.Zero(t, oracle.calls)
}

func TestParseInvoiceSalvagesFencedResponse(t *testing.T) {
	oracle := &fakeOracle{responses: []string{"```json\n" + extractionResponse + "\n```"}}
	parser := NewParserService(oracle, NewMergeService())

	record, err := parser.ParseInvoice(context.Background(), "page text")

	require.NoError(t, err)
	assert.Equal(t, "INV-001", *record.Metadata.InvoiceNumber)
	require.Len(t, record.LineItems, 1)
	assert.Equal(t, "Widget", *record.LineItems[0].Description)
}

func TestParseInvoiceMalformedResponseKeepsRaw(t *testing.T) {
	oracle := &fakeOracle{responses: []string{"No structured data here."}}
	parser := NewParserService(oracle, NewMergeService())

	_, err := parser.ParseInvoice(context.Background(), "page text")

	var malformed *types.MalformedResponseError
	require.ErrorAs(t, err, &malformed)
	assert.Equal(t, "No structured data here.", malformed.Raw)
}

func TestApplyCorrectionPromptCarriesCurrentRecord(t *testing.T) {
	oracle := &fakeOracle{responses: []string{`{"metadata": {"currency": "GBP"}}`}}
	parser := NewParserService(oracle, NewMergeService())
	current := sampleRecord()

	merged, delta, err := parser.ApplyCorrection(context.Background(), "context slice", current, "Currency is GBP")

	require.NoError(t, err)
	assert.Equal(t, "GBP", *merged.Metadata.Currency)
	require.NotNil(t, delta.Metadata)
	assert.Contains(t, oracle.lastPrompt, `"INV-001"`)
	assert.Contains(t, oracle.lastPrompt, "Currency is GBP")
	assert.Equal(t, "context slice", oracle.lastDocument)
	// Input untouched.
	assert.Equal(t, "USD", *current.Metadata.Currency)
}

func TestExtractFieldIncludesContextLine(t *testing.T) {
	oracle := &fakeOracle{responses: []string{`{"po_number": "PO-9"}`}}
	parser := NewParserService(oracle, NewMergeService())

	result, err := parser.ExtractField(context.Background(), "context slice", "po_number", "near the header")

	require.NoError(t, err)
	assert.Equal(t, "PO-9", result["po_number"])
	assert.Contains(t, oracle.lastPrompt, "po_number")
	assert.Contains(t, oracle.lastPrompt, "near the header")
}
