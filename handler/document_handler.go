package handler

import (
	"fmt"
	"mime"
	"net/http"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"github.com/tieubaoca/invoice-agent-be/service"
	"github.com/tieubaoca/invoice-agent-be/types"
)

// DocumentHandler serves the source file of the currently loaded invoice so
// the frontend can render it next to the extracted data.
type DocumentHandler struct {
	agent *service.AgentService
}

func NewDocumentHandler(agent *service.AgentService) *DocumentHandler {
	return &DocumentHandler{agent: agent}
}

func (h *DocumentHandler) ServeDocumentHandler(c *gin.Context) {
	sourceFile := h.agent.SourceFile()
	if sourceFile == "" {
		c.JSON(http.StatusNotFound, types.DataResponse{
			Status:  "error",
			Message: types.ErrNoActiveDocument.Error(),
		})
		return
	}

	contentType := mime.TypeByExtension(filepath.Ext(sourceFile))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	c.Header("Content-Type", contentType)
	c.Header("Content-Disposition", fmt.Sprintf("inline; filename=%s", filepath.Base(sourceFile)))
	c.File(sourceFile)
}
