package service

import (
	"fmt"
	"log"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/tieubaoca/invoice-agent-be/repository"
	"github.com/tieubaoca/invoice-agent-be/types"
)

// Legal suffixes stripped during normalization, anchored at the end of the
// name only so a suffix token is never removed from the middle.
var suffixPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\binc\.?$`),
	regexp.MustCompile(`\bincorporated$`),
	regexp.MustCompile(`\bcorp\.?$`),
	regexp.MustCompile(`\bcorporation$`),
	regexp.MustCompile(`\bltd\.?$`),
	regexp.MustCompile(`\blimited$`),
	regexp.MustCompile(`\bllc\.?$`),
	regexp.MustCompile(`\bllp\.?$`),
	regexp.MustCompile(`\bco\.?$`),
	regexp.MustCompile(`\bcompany$`),
	regexp.MustCompile(`\bplc\.?$`),
}

var punctuationPattern = regexp.MustCompile(`[^\p{L}\p{N}_\s]`)

// VendorService deduplicates vendor master data across documents using
// normalized-name matching. The entity store is append-only: vendors are
// created once and never overwritten on a repeat hit.
type VendorService struct {
	repo    repository.VendorRepo
	vendors []*types.Vendor
	mu      sync.Mutex
}

func NewVendorService(repo repository.VendorRepo) (*VendorService, error) {
	vendors, err := repo.LoadAll()
	if err != nil {
		return nil, err
	}
	return &VendorService{
		repo:    repo,
		vendors: vendors,
	}, nil
}

// Normalize lowercases the name, strips trailing legal suffixes and all
// punctuation, and collapses whitespace. An empty or all-punctuation input
// normalizes to "".
func (s *VendorService) Normalize(name string) string {
	if name == "" {
		return ""
	}
	normalized := strings.ToLower(name)
	for _, pattern := range suffixPatterns {
		normalized = pattern.ReplaceAllString(normalized, "")
	}
	normalized = punctuationPattern.ReplaceAllString(normalized, "")
	normalized = strings.Join(strings.Fields(normalized), " ")
	return normalized
}

// Resolve looks up an existing vendor: exact normalized match first, then
// bidirectional substring containment, each by insertion order. An empty
// normalized query never matches anything, including other empty-normalized
// entries.
func (s *VendorService) Resolve(name string) *types.Vendor {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.resolveLocked(name)
}

func (s *VendorService) resolveLocked(name string) *types.Vendor {
	if name == "" {
		return nil
	}
	normalizedQuery := s.Normalize(name)
	log.Printf("Searching for vendor: '%s' (normalized: '%s')", name, normalizedQuery)

	if normalizedQuery == "" {
		return nil
	}

	for _, vendor := range s.vendors {
		if vendor.NormalizedName == normalizedQuery {
			log.Printf("Found exact vendor match: %s (%s)", vendor.Name, vendor.VendorID)
			return vendor
		}
	}

	// Substring containment is a deliberate precision/recall trade-off: it
	// can false-positive on short names, and that behavior is part of the
	// observable contract.
	for _, vendor := range s.vendors {
		if strings.Contains(vendor.NormalizedName, normalizedQuery) ||
			strings.Contains(normalizedQuery, vendor.NormalizedName) {
			log.Printf("Found fuzzy vendor match: %s (%s)", vendor.Name, vendor.VendorID)
			return vendor
		}
	}

	log.Printf("No vendor found for: '%s'", name)
	return nil
}

// VendorAttrs carries the optional attributes recorded when a vendor is
// first created.
type VendorAttrs struct {
	Address      *string
	TaxID        *string
	ContactEmail *string
	ContactPhone *string
}

// ResolveOrCreate returns the existing vendor for name, or creates, persists
// and returns a new one. The lookup and the append are atomic as a unit so
// concurrent calls with the same name cannot race into duplicates. A
// persistence failure is reported but the in-memory vendor stays usable.
func (s *VendorService) ResolveOrCreate(name string, attrs VendorAttrs) (*types.Vendor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if vendor := s.resolveLocked(name); vendor != nil {
		return vendor, nil
	}

	vendor := &types.Vendor{
		VendorID:       generateVendorID(),
		Name:           name,
		NormalizedName: s.Normalize(name),
		Address:        attrs.Address,
		TaxID:          attrs.TaxID,
		ContactEmail:   attrs.ContactEmail,
		ContactPhone:   attrs.ContactPhone,
		CreatedAt:      time.Now().Format(time.RFC3339),
	}
	s.vendors = append(s.vendors, vendor)
	log.Printf("Vendor created: %s (%s)", vendor.Name, vendor.VendorID)

	if err := s.repo.SaveAll(s.vendors); err != nil {
		return vendor, fmt.Errorf("%w: %v", types.ErrVendorStore, err)
	}
	return vendor, nil
}

// ListVendors returns all vendors in insertion order.
func (s *VendorService) ListVendors() []*types.Vendor {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*types.Vendor, len(s.vendors))
	copy(out, s.vendors)
	return out
}

func generateVendorID() string {
	return "VEN-" + strings.ToUpper(uuid.New().String()[:8])
}
