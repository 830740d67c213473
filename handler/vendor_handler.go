package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/tieubaoca/invoice-agent-be/service"
	"github.com/tieubaoca/invoice-agent-be/types"
)

type VendorHandler struct {
	vendors *service.VendorService
	search  *service.SearchService
}

func NewVendorHandler(vendors *service.VendorService, search *service.SearchService) *VendorHandler {
	return &VendorHandler{
		vendors: vendors,
		search:  search,
	}
}

// ListVendorsHandler returns every vendor in the store.
func (h *VendorHandler) ListVendorsHandler(c *gin.Context) {
	c.JSON(http.StatusOK, types.DataResponse{
		Status: "success",
		Data:   h.vendors.ListVendors(),
	})
}

// LookupVendorHandler resolves a vendor name against the store and, when the
// search backend is configured, enriches the answer with web results.
func (h *VendorHandler) LookupVendorHandler(c *gin.Context) {
	name := c.Query("q")
	if name == "" {
		c.JSON(http.StatusBadRequest, types.DataResponse{
			Status:  "error",
			Message: "Query parameter q is required",
		})
		return
	}

	result := gin.H{
		"vendor": h.vendors.Resolve(name),
	}
	if h.search != nil {
		searchResults, err := h.search.LookupVendor(c.Request.Context(), name)
		if err == nil {
			result["search_results"] = searchResults
		}
	}
	c.JSON(http.StatusOK, types.DataResponse{
		Status: "success",
		Data:   result,
	})
}
