package types

// InvoiceMetadata holds the header-level fields of an invoice. Every field is
// nullable: a nil pointer means the value was not found (or not yet corrected).
type InvoiceMetadata struct {
	InvoiceNumber   *string  `json:"invoice_number"`
	InvoiceDate     *string  `json:"invoice_date"`
	DueDate         *string  `json:"due_date"`
	VendorName      *string  `json:"vendor_name"`
	VendorAddress   *string  `json:"vendor_address"`
	VendorTaxID     *string  `json:"vendor_tax_id"`
	CustomerName    *string  `json:"customer_name"`
	CustomerAddress *string  `json:"customer_address"`
	PONumber        *string  `json:"po_number"`
	Currency        *string  `json:"currency"`
	Subtotal        *float64 `json:"subtotal"`
	TaxTotal        *float64 `json:"tax_total"`
	TotalAmount     *float64 `json:"total_amount"`
	PaymentTerms    *string  `json:"payment_terms"`
}

// LineItem is a single row of the invoice body.
type LineItem struct {
	Description *string  `json:"description"`
	Quantity    *float64 `json:"quantity"`
	UnitPrice   *float64 `json:"unit_price"`
	Amount      *float64 `json:"amount"`
	TaxRate     *float64 `json:"tax_rate"`
	TaxAmount   *float64 `json:"tax_amount"`
}

// InvoiceData is the working record for one processed document: flat metadata
// plus the ordered line items. Line item order reflects document order.
type InvoiceData struct {
	Metadata  InvoiceMetadata `json:"metadata"`
	LineItems []LineItem      `json:"line_items"`
}

// InvoiceDelta is a partial payload returned by the oracle in response to a
// correction request. Metadata is nil when the delta touches no header fields;
// a non-empty LineItems slice replaces the whole sequence.
type InvoiceDelta struct {
	Metadata  *InvoiceMetadata `json:"metadata,omitempty"`
	LineItems []LineItem       `json:"line_items,omitempty"`
}

// Clone returns a deep copy of the record so a failed merge never leaves a
// half-written session behind.
func (d *InvoiceData) Clone() *InvoiceData {
	out := &InvoiceData{Metadata: d.Metadata}
	if d.LineItems != nil {
		out.LineItems = make([]LineItem, len(d.LineItems))
		copy(out.LineItems, d.LineItems)
	}
	return out
}

// Vendor is a deduplicated master-data record. NormalizedName is derived from
// Name and used only for matching; it is never edited by hand.
type Vendor struct {
	VendorID       string  `json:"vendor_id"`
	Name           string  `json:"name"`
	NormalizedName string  `json:"normalized_name"`
	Address        *string `json:"address"`
	TaxID          *string `json:"tax_id"`
	ContactEmail   *string `json:"contact_email"`
	ContactPhone   *string `json:"contact_phone"`
	CreatedAt      string  `json:"created_at"`
}
