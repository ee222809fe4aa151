package handlers

import (
	"net/http"

	"chatiip-backend/logger"
	"chatiip-backend/service"

	"github.com/gin-gonic/gin"
)

// NewsHandler handles HTTP requests for news articles
type NewsHandler struct {
	news *service.NewsService
	log  *logger.Logger
}

// NewNewsHandler creates a new news handler
func NewNewsHandler(news *service.NewsService, log *logger.Logger) *NewsHandler {
	if log == nil {
		log = logger.NewNop()
	}
	return &NewsHandler{news: news, log: log.With("handler", "NewsHandler")}
}

// ListNews handles GET /api/news
func (h *NewsHandler) ListNews(c *gin.Context) {
	list, err := h.news.List(c.Request.Context(), "")
	if err != nil {
		respondServiceError(c, h.log, "list news", err)
		return
	}
	respondOK(c, http.StatusOK, list)
}

// ListByCategory handles GET /api/news/category/:cat
func (h *NewsHandler) ListByCategory(c *gin.Context) {
	list, err := h.news.List(c.Request.Context(), c.Param("cat"))
	if err != nil {
		respondServiceError(c, h.log, "list news by category", err)
		return
	}
	respondOK(c, http.StatusOK, list)
}

// GetNews handles GET /api/news/:ref where ref is the slug
func (h *NewsHandler) GetNews(c *gin.Context) {
	n, err := h.news.GetBySlug(c.Request.Context(), c.Param("ref"))
	if err != nil {
		respondServiceError(c, h.log, "get news", err)
		return
	}
	respondOK(c, http.StatusOK, n)
}

// CreateNews handles POST /api/news
func (h *NewsHandler) CreateNews(c *gin.Context) {
	var in service.NewsInput
	if err := c.ShouldBindJSON(&in); err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}
	n, err := h.news.Create(c.Request.Context(), in)
	if err != nil {
		respondServiceError(c, h.log, "create news", err)
		return
	}
	respondOK(c, http.StatusCreated, n)
}

// UpdateNews handles PUT /api/news/:ref
func (h *NewsHandler) UpdateNews(c *gin.Context) {
	id, ok := parseID(c, "ref")
	if !ok {
		return
	}
	var in service.NewsInput
	if err := c.ShouldBindJSON(&in); err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}
	n, err := h.news.Update(c.Request.Context(), id, in)
	if err != nil {
		respondServiceError(c, h.log, "update news", err)
		return
	}
	respondOK(c, http.StatusOK, n)
}

// DeleteNews handles DELETE /api/news/:ref
func (h *NewsHandler) DeleteNews(c *gin.Context) {
	id, ok := parseID(c, "ref")
	if !ok {
		return
	}
	if err := h.news.Delete(c.Request.Context(), id); err != nil {
		respondServiceError(c, h.log, "delete news", err)
		return
	}
	respondOK(c, http.StatusOK, gin.H{"id": id})
}
