package service

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tieubaoca/invoice-agent-be/repository"
	"github.com/tieubaoca/invoice-agent-be/types"
)

// fakeOracle replays scripted responses and records what it was asked.
type fakeOracle struct {
	responses    []string
	calls        int
	err          error
	lastPrompt   string
	lastDocument string
}

func (f *fakeOracle) Generate(ctx context.Context, prompt, document string) (string, error) {
	f.lastPrompt = prompt
	f.lastDocument = document
	if f.err != nil {
		return "", f.err
	}
	if f.calls >= len(f.responses) {
		return "", errors.New("no scripted response left")
	}
	response := f.responses[f.calls]
	f.calls++
	return response, nil
}

const extractionResponse = `{
  "metadata": {
    "invoice_number": "INV-001",
    "vendor_name": "ACME Corp",
    "currency": "USD",
    "total_amount": 120.5
  },
  "line_items": [
    {"description": "Widget", "quantity": 2, "unit_price": 60.25, "amount": 120.5}
  ]
}`

func newTestAgent(t *testing.T, store *fakeVectorStore, oracle *fakeOracle) *AgentService {
	t.Helper()
	repo := repository.NewFileVendorRepo(filepath.Join(t.TempDir(), "vendors.json"))
	vendors, err := NewVendorService(repo)
	require.NoError(t, err)

	chunker := NewChunkService(types.ChunkerConfig{ChunkSize: 1000, Overlap: 200})
	selector := NewContextService(store, 2)
	parser := NewParserService(oracle, NewMergeService())
	return NewAgentService(chunker, store, selector, parser, vendors)
}

func TestProcessPagesExtractsEachPage(t *testing.T) {
	store := newFakeVectorStore()
	oracle := &fakeOracle{responses: []string{
		extractionResponse,
		`{"metadata": {"invoice_number": "INV-002", "vendor_name": "ACME Corporation"}, "line_items": []}`,
	}}
	agent := newTestAgent(t, store, oracle)

	var statuses []types.ProcessingStatus
	resp, err := agent.ProcessPages(context.Background(), "invoice.pdf", []string{"page one text", "page two text"}, func(status types.ProcessingStatus) {
		statuses = append(statuses, status)
	})

	require.NoError(t, err)
	require.Equal(t, 2, resp.TotalPages)
	require.Len(t, resp.Pages, 2)

	first, second := resp.Pages[0], resp.Pages[1]
	assert.True(t, strings.HasSuffix(first.DocumentID, "-P1"))
	assert.True(t, strings.HasSuffix(second.DocumentID, "-P2"))
	assert.Equal(t, strings.TrimSuffix(first.DocumentID, "-P1"), strings.TrimSuffix(second.DocumentID, "-P2"))

	require.NotNil(t, first.InvoiceData)
	assert.Equal(t, "INV-001", *first.InvoiceData.Metadata.InvoiceNumber)
	require.NotNil(t, second.InvoiceData)
	assert.Equal(t, "INV-002", *second.InvoiceData.Metadata.InvoiceNumber)

	// "ACME Corp" and "ACME Corporation" normalize identically, so both
	// pages resolve to one vendor entity.
	require.NotNil(t, first.Vendor)
	require.NotNil(t, second.Vendor)
	assert.Equal(t, first.Vendor.VendorID, second.Vendor.VendorID)

	assert.Contains(t, store.chunksByDoc, first.DocumentID)
	assert.Contains(t, store.chunksByDoc, second.DocumentID)

	require.NotEmpty(t, statuses)
	assert.Equal(t, "processing", statuses[0].Status)
	assert.Equal(t, "done", statuses[len(statuses)-1].Status)
	assert.Equal(t, 2, statuses[len(statuses)-1].ProcessedPages)
}

func TestProcessPagesRecordsPageFailure(t *testing.T) {
	store := newFakeVectorStore()
	oracle := &fakeOracle{responses: []string{"I could not read this page, sorry."}}
	agent := newTestAgent(t, store, oracle)

	resp, err := agent.ProcessPages(context.Background(), "invoice.pdf", []string{"page text"}, nil)

	require.NoError(t, err)
	require.Len(t, resp.Pages, 1)
	assert.NotEmpty(t, resp.Pages[0].Error)
	assert.Nil(t, resp.Pages[0].InvoiceData)
}

func TestProcessPagesIndexingFailure(t *testing.T) {
	store := newFakeVectorStore()
	store.addErr = errors.New("connection refused")
	agent := newTestAgent(t, store, &fakeOracle{})

	_, err := agent.ProcessPages(context.Background(), "invoice.pdf", []string{"page text"}, nil)

	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrIndexing)
}

func TestApplyCorrectionMergesDelta(t *testing.T) {
	store := newFakeVectorStore()
	oracle := &fakeOracle{responses: []string{
		extractionResponse,
		`{"metadata": {"currency": "GBP"}}`,
	}}
	agent := newTestAgent(t, store, oracle)
	_, err := agent.ProcessPages(context.Background(), "invoice.pdf", []string{"page text"}, nil)
	require.NoError(t, err)

	store.queryResults = []string{"chunk one", "chunk two"}
	resp, err := agent.ApplyCorrection(context.Background(), nil, "Currency is GBP not USD")

	require.NoError(t, err)
	assert.Equal(t, "GBP", *resp.InvoiceData.Metadata.Currency)
	assert.Equal(t, "INV-001", *resp.InvoiceData.Metadata.InvoiceNumber)
	assert.Len(t, resp.InvoiceData.LineItems, 1)

	// The oracle saw only the retrieved slice, not the whole page.
	assert.Equal(t, "chunk one\n\nchunk two", oracle.lastDocument)

	pages, err := agent.CurrentPages()
	require.NoError(t, err)
	assert.Equal(t, "GBP", *pages[0].InvoiceData.Metadata.Currency)
}

func TestApplyCorrectionFailureLeavesRecord(t *testing.T) {
	store := newFakeVectorStore()
	oracle := &fakeOracle{responses: []string{
		extractionResponse,
		"Sorry, I cannot help with that request.",
	}}
	agent := newTestAgent(t, store, oracle)
	_, err := agent.ProcessPages(context.Background(), "invoice.pdf", []string{"page text"}, nil)
	require.NoError(t, err)

	_, err = agent.ApplyCorrection(context.Background(), nil, "Currency is GBP")

	var malformed *types.MalformedResponseError
	require.ErrorAs(t, err, &malformed)
	assert.Contains(t, malformed.Raw, "Sorry")

	pages, err := agent.CurrentPages()
	require.NoError(t, err)
	assert.Equal(t, "USD", *pages[0].InvoiceData.Metadata.Currency)
}

func TestApplyCorrectionSchemaViolationLeavesRecord(t *testing.T) {
	store := newFakeVectorStore()
	oracle := &fakeOracle{responses: []string{
		extractionResponse,
		`{"metadata": {"surprise_key": true}}`,
	}}
	agent := newTestAgent(t, store, oracle)
	_, err := agent.ProcessPages(context.Background(), "invoice.pdf", []string{"page text"}, nil)
	require.NoError(t, err)

	_, err = agent.ApplyCorrection(context.Background(), nil, "Fix the totals")

	var schemaErr *types.SchemaViolationError
	require.ErrorAs(t, err, &schemaErr)

	pages, err := agent.CurrentPages()
	require.NoError(t, err)
	assert.Equal(t, "USD", *pages[0].InvoiceData.Metadata.Currency)
}

func TestApplyCorrectionWithoutDocument(t *testing.T) {
	agent := newTestAgent(t, newFakeVectorStore(), &fakeOracle{})

	_, err := agent.ApplyCorrection(context.Background(), nil, "Currency is GBP")

	assert.ErrorIs(t, err, types.ErrNoActiveDocument)
}

func TestApplyCorrectionPageOutOfRange(t *testing.T) {
	store := newFakeVectorStore()
	oracle := &fakeOracle{responses: []string{extractionResponse}}
	agent := newTestAgent(t, store, oracle)
	_, err := agent.ProcessPages(context.Background(), "invoice.pdf", []string{"page text"}, nil)
	require.NoError(t, err)

	five := 5
	_, err = agent.ApplyCorrection(context.Background(), &five, "Currency is GBP")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "out of range")
}

func TestApplyCorrectionTargetsRequestedPage(t *testing.T) {
	store := newFakeVectorStore()
	oracle := &fakeOracle{responses: []string{
		extractionResponse,
		`{"metadata": {"invoice_number": "INV-002", "currency": "USD"}, "line_items": []}`,
		`{"metadata": {"currency": "GBP"}}`,
	}}
	agent := newTestAgent(t, store, oracle)
	_, err := agent.ProcessPages(context.Background(), "invoice.pdf", []string{"page one", "page two"}, nil)
	require.NoError(t, err)

	one := 1
	resp, err := agent.ApplyCorrection(context.Background(), &one, "Currency is GBP")

	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(resp.DocumentID, "-P2"))
	assert.Equal(t, "GBP", *resp.InvoiceData.Metadata.Currency)

	// Page 0 is untouched.
	pages, err := agent.CurrentPages()
	require.NoError(t, err)
	assert.Equal(t, "USD", *pages[0].InvoiceData.Metadata.Currency)
	assert.Equal(t, "GBP", *pages[1].InvoiceData.Metadata.Currency)
}

func TestApplyCorrectionReResolvesVendor(t *testing.T) {
	store := newFakeVectorStore()
	oracle := &fakeOracle{responses: []string{
		extractionResponse,
		`{"metadata": {"vendor_name": "Globex LLC"}}`,
	}}
	agent := newTestAgent(t, store, oracle)
	resp, err := agent.ProcessPages(context.Background(), "invoice.pdf", []string{"page text"}, nil)
	require.NoError(t, err)
	originalVendor := resp.Pages[0].Vendor
	require.NotNil(t, originalVendor)

	corrected, err := agent.ApplyCorrection(context.Background(), nil, "The vendor is Globex LLC")

	require.NoError(t, err)
	require.NotNil(t, corrected.Vendor)
	assert.Equal(t, "Globex LLC", corrected.Vendor.Name)
	assert.NotEqual(t, originalVendor.VendorID, corrected.Vendor.VendorID)
}

func TestExtractFieldUsesFieldQuery(t *testing.T) {
	store := newFakeVectorStore()
	oracle := &fakeOracle{responses: []string{
		extractionResponse,
		`{"po_number": "PO-9"}`,
	}}
	agent := newTestAgent(t, store, oracle)
	_, err := agent.ProcessPages(context.Background(), "invoice.pdf", []string{"page text"}, nil)
	require.NoError(t, err)

	result, err := agent.ExtractField(context.Background(), nil, "po_number", "")

	require.NoError(t, err)
	assert.Equal(t, "PO-9", result["po_number"])
	assert.True(t, strings.HasPrefix(store.lastQuery, "purchase order number"))
}

func TestCurrentPagesWithoutDocument(t *testing.T) {
	agent := newTestAgent(t, newFakeVectorStore(), &fakeOracle{})

	_, err := agent.CurrentPages()

	assert.ErrorIs(t, err, types.ErrNoActiveDocument)
}

func TestResetForgetsDocument(t *testing.T) {
	store := newFakeVectorStore()
	oracle := &fakeOracle{responses: []string{extractionResponse}}
	agent := newTestAgent(t, store, oracle)
	_, err := agent.ProcessPages(context.Background(), "invoice.pdf", []string{"page text"}, nil)
	require.NoError(t, err)

	require.NoError(t, agent.Reset(context.Background()))

	_, err = agent.CurrentPages()
	assert.ErrorIs(t, err, types.ErrNoActiveDocument)
	assert.Empty(t, store.chunksByDoc)
	assert.Empty(t, agent.SourceFile())
}
