package service

import (
	"bytes"
	"encoding/json"

	"github.com/tieubaoca/invoice-agent-be/types"
)

// MergeService folds a partial correction payload into an existing record.
// Metadata merges field by field (overwrite if present, null leaves the
// current value untouched); a non-empty line_items slice replaces the whole
// sequence. Both rules are idempotent.
type MergeService struct{}

func NewMergeService() *MergeService {
	return &MergeService{}
}

// ParseRecord decodes a full extraction payload, rejecting unknown keys so a
// malformed oracle response is detectable rather than silently dropped.
func (s *MergeService) ParseRecord(raw string) (*types.InvoiceData, error) {
	var record types.InvoiceData
	if err := strictDecode(raw, &record); err != nil {
		return nil, &types.SchemaViolationError{Raw: raw, Err: err}
	}
	if record.LineItems == nil {
		record.LineItems = []types.LineItem{}
	}
	return &record, nil
}

// ParseDelta decodes a partial correction payload under the same strict
// schema rules.
func (s *MergeService) ParseDelta(raw string) (*types.InvoiceDelta, error) {
	var delta types.InvoiceDelta
	if err := strictDecode(raw, &delta); err != nil {
		return nil, &types.SchemaViolationError{Raw: raw, Err: err}
	}
	return &delta, nil
}

func strictDecode(raw string, v interface{}) error {
	dec := json.NewDecoder(bytes.NewReader([]byte(raw)))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

// Merge applies delta onto current and returns the merged record. The input
// record is not modified.
func (s *MergeService) Merge(current *types.InvoiceData, delta *types.InvoiceDelta) *types.InvoiceData {
	merged := current.Clone()

	if delta.Metadata != nil {
		mergeMetadata(&merged.Metadata, delta.Metadata)
	}
	if len(delta.LineItems) > 0 {
		merged.LineItems = make([]types.LineItem, len(delta.LineItems))
		copy(merged.LineItems, delta.LineItems)
	}
	return merged
}

func mergeMetadata(dst, src *types.InvoiceMetadata) {
	if src.InvoiceNumber != nil {
		dst.InvoiceNumber = src.InvoiceNumber
	}
	if src.InvoiceDate != nil {
		dst.InvoiceDate = src.InvoiceDate
	}
	if src.DueDate != nil {
		dst.DueDate = src.DueDate
	}
	if src.VendorName != nil {
		dst.VendorName = src.VendorName
	}
	if src.VendorAddress != nil {
		dst.VendorAddress = src.VendorAddress
	}
	if src.VendorTaxID != nil {
		dst.VendorTaxID = src.VendorTaxID
	}
	if src.CustomerName != nil {
		dst.CustomerName = src.CustomerName
	}
	if src.CustomerAddress != nil {
		dst.CustomerAddress = src.CustomerAddress
	}
	if src.PONumber != nil {
		dst.PONumber = src.PONumber
	}
	if src.Currency != nil {
		dst.Currency = src.Currency
	}
	if src.Subtotal != nil {
		dst.Subtotal = src.Subtotal
	}
	if src.TaxTotal != nil {
		dst.TaxTotal = src.TaxTotal
	}
	if src.TotalAmount != nil {
		dst.TotalAmount = src.TotalAmount
	}
	if src.PaymentTerms != nil {
		dst.PaymentTerms = src.PaymentTerms
	}
}
