package repository

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/tieubaoca/invoice-agent-be/types"
)

// VendorRepo persists vendor master data. The store is small and append-only:
// every creation rewrites the whole file.
type VendorRepo interface {
	LoadAll() ([]*types.Vendor, error)
	SaveAll(vendors []*types.Vendor) error
}

type fileVendorRepo struct {
	path string
}

func NewFileVendorRepo(path string) VendorRepo {
	return &fileVendorRepo{path: path}
}

func (r *fileVendorRepo) LoadAll() ([]*types.Vendor, error) {
	data, err := os.ReadFile(r.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read vendor database: %w", err)
	}

	var vendors []*types.Vendor
	if err := json.Unmarshal(data, &vendors); err != nil {
		return nil, fmt.Errorf("failed to parse vendor database: %w", err)
	}
	return vendors, nil
}

func (r *fileVendorRepo) SaveAll(vendors []*types.Vendor) error {
	data, err := json.MarshalIndent(vendors, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal vendors: %w", err)
	}
	if err := os.WriteFile(r.path, data, 0644); err != nil {
		return fmt.Errorf("failed to write vendor database: %w", err)
	}
	return nil
}
