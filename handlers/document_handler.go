package handlers

import (
	"errors"
	"fmt"
	"mime"
	"net/http"
	"strings"

	"chatiip-backend/logger"
	"chatiip-backend/models"
	"chatiip-backend/service"
	"chatiip-backend/textutil"

	"github.com/gin-gonic/gin"
)

// MaxDocumentBodyBytes bounds JSON bodies carrying base64 files
const MaxDocumentBodyBytes = 100 << 20

// DocumentHandler handles HTTP requests for legal documents
type DocumentHandler struct {
	docs *service.DocumentService
	log  *logger.Logger
}

// NewDocumentHandler creates a new document handler
func NewDocumentHandler(docs *service.DocumentService, log *logger.Logger) *DocumentHandler {
	if log == nil {
		log = logger.NewNop()
	}
	return &DocumentHandler{docs: docs, log: log.With("handler", "DocumentHandler")}
}

// ListDocuments handles GET /api/docs
func (h *DocumentHandler) ListDocuments(c *gin.Context) {
	req := service.ListDocumentsRequest{
		Search:        strings.TrimSpace(c.Query("search")),
		CategoryMajor: strings.TrimSpace(c.Query("categoryMajor")),
		CategoryMinor: strings.TrimSpace(c.Query("categoryMinor")),
		Status:        models.DocumentStatus(strings.TrimSpace(c.Query("status"))),
		IssuedFrom:    textutil.ParseDate(c.Query("from")),
		IssuedTo:      textutil.ParseDate(c.Query("to")),
		Page:          queryInt(c, "page", 1),
		Limit:         queryInt(c, "limit", 20),
	}
	if req.Limit < 1 {
		req.Limit = 1
	}

	result, err := h.docs.List(c.Request.Context(), req)
	if err != nil {
		respondServiceError(c, h.log, "list documents", err)
		return
	}
	respondPage(c, result.Items, result.Page, result.Limit, result.Total)
}

// CategoryStats handles GET /api/docs/stats/categories
func (h *DocumentHandler) CategoryStats(c *gin.Context) {
	stats, err := h.docs.CategoryStats(c.Request.Context())
	if err != nil {
		respondServiceError(c, h.log, "category stats", err)
		return
	}
	respondOK(c, http.StatusOK, stats)
}

// GetDocument handles GET /api/docs/:ref where ref is the slug
func (h *DocumentHandler) GetDocument(c *gin.Context) {
	doc, err := h.docs.GetBySlug(c.Request.Context(), c.Param("ref"))
	if err != nil {
		respondServiceError(c, h.log, "get document", err)
		return
	}
	respondOK(c, http.StatusOK, doc)
}

// DownloadFile handles GET /api/docs/:id/download
func (h *DocumentHandler) DownloadFile(c *gin.Context) {
	id, ok := parseID(c, "ref")
	if !ok {
		return
	}
	reader, file, err := h.docs.OpenFile(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, h.log, "download file", err)
		return
	}
	defer reader.Close()

	disposition := mime.FormatMediaType("attachment", map[string]string{"filename": file.OriginalName})
	if disposition == "" {
		disposition = fmt.Sprintf("attachment; filename=%q", "download")
	}
	c.DataFromReader(http.StatusOK, file.Size, file.MimeType, reader, map[string]string{
		"Content-Disposition": disposition,
	})
}

// CreateDocument handles POST /api/docs
func (h *DocumentHandler) CreateDocument(c *gin.Context) {
	in, ok := h.bindInput(c)
	if !ok {
		return
	}
	doc, err := h.docs.Create(c.Request.Context(), in)
	if err != nil {
		respondServiceError(c, h.log, "create document", err)
		return
	}
	respondOK(c, http.StatusCreated, doc)
}

// UpdateDocument handles PUT /api/docs/:id
func (h *DocumentHandler) UpdateDocument(c *gin.Context) {
	id, ok := parseID(c, "ref")
	if !ok {
		return
	}
	in, ok := h.bindInput(c)
	if !ok {
		return
	}
	doc, err := h.docs.Update(c.Request.Context(), id, in)
	if err != nil {
		respondServiceError(c, h.log, "update document", err)
		return
	}
	respondOK(c, http.StatusOK, doc)
}

// DeleteDocument handles DELETE /api/docs/:id
func (h *DocumentHandler) DeleteDocument(c *gin.Context) {
	id, ok := parseID(c, "ref")
	if !ok {
		return
	}
	if err := h.docs.Delete(c.Request.Context(), id); err != nil {
		respondServiceError(c, h.log, "delete document", err)
		return
	}
	respondOK(c, http.StatusOK, gin.H{"id": id})
}

func (h *DocumentHandler) bindInput(c *gin.Context) (service.DocumentInput, bool) {
	var in service.DocumentInput
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, MaxDocumentBodyBytes)
	if err := c.ShouldBindJSON(&in); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			respondError(c, http.StatusBadRequest, "PAYLOAD_TOO_LARGE",
				fmt.Sprintf("request body exceeds %d MB", MaxDocumentBodyBytes>>20))
			return in, false
		}
		respondError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return in, false
	}
	return in, true
}
