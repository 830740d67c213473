package service

import (
	"context"
	"log"
	"strings"

	"github.com/tieubaoca/invoice-agent-be/database"
)

// fieldQueries maps invoice field names to richer semantic queries so vector
// search sees the vocabulary the document actually uses.
var fieldQueries = map[string]string{
	"po_number":        "purchase order number P.O. PO",
	"po":               "purchase order number P.O. PO",
	"invoice_number":   "invoice number invoice #",
	"invoice_date":     "invoice date issue date billed date",
	"due_date":         "due date payment due by",
	"vendor_name":      "vendor company seller supplier",
	"vendor_address":   "vendor address seller address",
	"customer_name":    "bill to customer buyer client",
	"customer_address": "bill to address customer address",
	"currency":         "currency USD EUR GBP money",
	"subtotal":         "subtotal before tax sum total",
	"tax_total":        "tax total VAT GST sales tax",
	"total_amount":     "total amount grand total final total",
	"payment_terms":    "payment terms net days",
	"line_items":       "line items products services items quantities prices",
	"description":      "item description product service",
	"quantity":         "quantity qty amount",
	"unit_price":       "unit price price per",
	"amount":           "amount total price",
	"tax_rate":         "tax rate percentage",
}

// ContextService turns a free-text request into a bounded slice of the
// original document via the vector store, with a full-text fallback.
type ContextService struct {
	vectorDB database.VectorStore
	topK     int
}

func NewContextService(vectorDB database.VectorStore, topK int) *ContextService {
	if topK <= 0 {
		topK = 2
	}
	return &ContextService{
		vectorDB: vectorDB,
		topK:     topK,
	}
}

// BuildQuery expands a field name into a semantic query. Unknown fields fall
// back to "{field} {normalized field}"; extra context is appended when given.
func (s *ContextService) BuildQuery(fieldName, extraContext string) string {
	normalized := strings.ToLower(fieldName)
	normalized = strings.ReplaceAll(normalized, " ", "_")
	normalized = strings.ReplaceAll(normalized, "-", "_")

	query, ok := fieldQueries[normalized]
	if !ok {
		query = fieldName + " " + normalized
	}
	if extraContext != "" {
		query = query + " " + extraContext
	}
	return query
}

// Select returns the top chunks for the query joined by a blank line, or the
// whole document text when retrieval returns nothing or fails. Retrieval
// errors are recovered locally; the oracle is never starved of context.
func (s *ContextService) Select(ctx context.Context, documentID, query, fullText string) string {
	chunks, err := s.vectorDB.QueryDocument(ctx, documentID, query, s.topK)
	if err != nil {
		log.Printf("WARN: retrieval failed for %s, falling back to full text: %v", documentID, err)
		return s.fullDocument(ctx, documentID, fullText)
	}
	if len(chunks) == 0 {
		log.Printf("No relevant chunks found for %s, using full document", documentID)
		return s.fullDocument(ctx, documentID, fullText)
	}
	log.Printf("Retrieved %d relevant chunks for %s", len(chunks), documentID)
	return strings.Join(chunks, "\n\n")
}

// fullDocument prefers the caller's cached text; when that is empty the
// document is reconstructed from the stored chunks in index order.
func (s *ContextService) fullDocument(ctx context.Context, documentID, fullText string) string {
	if fullText != "" {
		return fullText
	}
	text, err := s.vectorDB.GetFullDocument(ctx, documentID)
	if err != nil {
		log.Printf("WARN: could not reconstruct document %s: %v", documentID, err)
		return ""
	}
	return text
}
