package handler

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/tieubaoca/invoice-agent-be/service"
	"github.com/tieubaoca/invoice-agent-be/types"
	"github.com/tieubaoca/invoice-agent-be/utils"
)

type InvoiceHandler struct {
	agent            *service.AgentService
	extractor        *service.ExtractService
	ws               *service.WebSocketService
	uploadDir        string
	extractedTextDir string
	sampleFile       string
}

func NewInvoiceHandler(
	agent *service.AgentService,
	extractor *service.ExtractService,
	ws *service.WebSocketService,
	uploadDir string,
	extractedTextDir string,
	sampleFile string,
) *InvoiceHandler {
	return &InvoiceHandler{
		agent:            agent,
		extractor:        extractor,
		ws:               ws,
		uploadDir:        uploadDir,
		extractedTextDir: extractedTextDir,
		sampleFile:       sampleFile,
	}
}

// ProcessInvoiceHandler accepts an invoice upload and streams processing
// status back over SSE, finishing with the per-page extraction results.
func (h *InvoiceHandler) ProcessInvoiceHandler(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, types.DataResponse{
			Status:  "error",
			Message: "Invalid file",
		})
		return
	}
	defer file.Close()

	const maxSize = 20 << 20
	if header.Size > maxSize {
		c.JSON(http.StatusBadRequest, types.DataResponse{
			Status:  "error",
			Message: "File too large",
		})
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		c.JSON(http.StatusInternalServerError, types.DataResponse{
			Status:  "error",
			Message: "Failed to read file",
		})
		return
	}
	savedPath, err := utils.SaveUpload(h.uploadDir, header.Filename, data)
	if err != nil {
		c.JSON(http.StatusInternalServerError, types.DataResponse{
			Status:  "error",
			Message: "Failed to save file",
		})
		return
	}

	h.streamProcessing(c, savedPath)
}

// ProcessSampleHandler runs the pipeline over the bundled sample invoice so
// the flow can be demoed without uploading anything.
func (h *InvoiceHandler) ProcessSampleHandler(c *gin.Context) {
	if h.sampleFile == "" {
		c.JSON(http.StatusNotFound, types.DataResponse{
			Status:  "error",
			Message: "No sample invoice configured",
		})
		return
	}
	if _, err := os.Stat(h.sampleFile); err != nil {
		c.JSON(http.StatusNotFound, types.DataResponse{
			Status:  "error",
			Message: "Sample invoice not found",
		})
		return
	}
	h.streamProcessing(c, h.sampleFile)
}

// streamProcessing extracts and processes the file at path, streaming status
// updates over SSE and finishing with the per-page results.
func (h *InvoiceHandler) streamProcessing(c *gin.Context, path string) {
	statusChan := make(chan types.ProcessingStatus)
	resultChan := make(chan *types.ProcessResponse, 1)
	errChan := make(chan error, 1)
	// Closed when the handler returns so the worker never blocks on a
	// status send to a client that already disconnected.
	done := make(chan struct{})
	defer close(done)
	go func() {
		ctx := c.Request.Context()
		pages, err := h.extractor.ExtractPages(ctx, path)
		if err != nil {
			errChan <- err
			return
		}
		resp, err := h.agent.ProcessPages(ctx, path, pages, func(status types.ProcessingStatus) {
			select {
			case statusChan <- status:
			case <-done:
			}
			h.ws.Broadcast(status)
		})
		if err != nil {
			errChan <- err
			return
		}
		h.saveExtractedTexts(resp, pages)
		resultChan <- resp
	}()

	clientGone := c.Writer.CloseNotify()
	for {
		select {
		case <-clientGone:
			return
		case status := <-statusChan:
			jsonStatus, err := json.Marshal(status)
			if err != nil {
				continue
			}
			c.SSEvent("message", string(jsonStatus))
			c.Writer.Flush()
		case err := <-errChan:
			c.JSON(statusForError(err), types.DataResponse{
				Status:  "error",
				Message: err.Error(),
			})
			return
		case resp := <-resultChan:
			c.JSON(http.StatusOK, types.DataResponse{
				Status: "success",
				Data:   resp,
			})
			return
		}
	}
}

func (h *InvoiceHandler) saveExtractedTexts(resp *types.ProcessResponse, pages []string) {
	for i, page := range resp.Pages {
		if i >= len(pages) {
			break
		}
		if _, err := utils.SaveExtractedText(h.extractedTextDir, page.DocumentID, pages[i]); err != nil {
			log.Printf("Failed to save extracted text for %s: %v", page.DocumentID, err)
		}
	}
}

// CorrectionHandler applies a natural-language correction to one page of the
// loaded invoice.
func (h *InvoiceHandler) CorrectionHandler(c *gin.Context) {
	var req types.CorrectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, types.DataResponse{
			Status:  "error",
			Message: "Invalid request",
		})
		return
	}
	if req.Query == "" {
		c.JSON(http.StatusBadRequest, types.DataResponse{
			Status:  "error",
			Message: "Query is required",
		})
		return
	}

	resp, err := h.agent.ApplyCorrection(c.Request.Context(), req.PageIndex, req.Query)
	if err != nil {
		c.JSON(statusForError(err), types.DataResponse{
			Status:  "error",
			Message: err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, types.DataResponse{
		Status: "success",
		Data:   resp,
	})
}

// ExtractFieldHandler answers a one-off field question about a page.
func (h *InvoiceHandler) ExtractFieldHandler(c *gin.Context) {
	var req types.ExtractionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, types.DataResponse{
			Status:  "error",
			Message: "Invalid request",
		})
		return
	}
	if req.FieldName == "" {
		c.JSON(http.StatusBadRequest, types.DataResponse{
			Status:  "error",
			Message: "Field name is required",
		})
		return
	}

	result, err := h.agent.ExtractField(c.Request.Context(), req.PageIndex, req.FieldName, req.Context)
	if err != nil {
		c.JSON(statusForError(err), types.DataResponse{
			Status:  "error",
			Message: err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, types.DataResponse{
		Status: "success",
		Data:   result,
	})
}

// CurrentHandler returns the current state of every page of the loaded
// invoice.
func (h *InvoiceHandler) CurrentHandler(c *gin.Context) {
	pages, err := h.agent.CurrentPages()
	if err != nil {
		c.JSON(statusForError(err), types.DataResponse{
			Status:  "error",
			Message: err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, types.DataResponse{
		Status: "success",
		Data: types.ProcessResponse{
			Pages:      pages,
			TotalPages: len(pages),
		},
	})
}

// DownloadHandler serves the current records as a JSON attachment.
func (h *InvoiceHandler) DownloadHandler(c *gin.Context) {
	pages, err := h.agent.CurrentPages()
	if err != nil {
		c.JSON(statusForError(err), types.DataResponse{
			Status:  "error",
			Message: err.Error(),
		})
		return
	}
	payload, err := json.MarshalIndent(types.ProcessResponse{
		Pages:      pages,
		TotalPages: len(pages),
	}, "", "  ")
	if err != nil {
		c.JSON(http.StatusInternalServerError, types.DataResponse{
			Status:  "error",
			Message: "Failed to marshal invoice data",
		})
		return
	}
	c.Header("Content-Disposition", "attachment; filename=invoice_data.json")
	c.Data(http.StatusOK, "application/json", payload)
}

func statusForError(err error) int {
	var malformed *types.MalformedResponseError
	var schema *types.SchemaViolationError
	switch {
	case errors.Is(err, types.ErrNoActiveDocument):
		return http.StatusBadRequest
	case errors.As(err, &malformed), errors.As(err, &schema):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
