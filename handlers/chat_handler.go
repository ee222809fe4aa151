package handlers

import (
	"net/http"
	"strings"

	"chatiip-backend/logger"
	"chatiip-backend/service"

	"github.com/gin-gonic/gin"
)

// ChatHandler handles the public chat endpoint and chat logs
type ChatHandler struct {
	chat *service.ChatService
	log  *logger.Logger
}

// NewChatHandler creates a new chat handler
func NewChatHandler(chat *service.ChatService, log *logger.Logger) *ChatHandler {
	if log == nil {
		log = logger.NewNop()
	}
	return &ChatHandler{chat: chat, log: log.With("handler", "ChatHandler")}
}

// AskRequest represents the request body for a chat question
type AskRequest struct {
	Question string `json:"question"`
}

// Ask handles POST /api/chat
func (h *ChatHandler) Ask(c *gin.Context) {
	var req AskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}
	result, err := h.chat.Ask(c.Request.Context(), req.Question, requestBaseURL(c))
	if err != nil {
		respondServiceError(c, h.log, "chat", err)
		return
	}
	respondOK(c, http.StatusOK, result)
}

// RecordLog handles POST /api/logs
func (h *ChatHandler) RecordLog(c *gin.Context) {
	var req service.RecordLogRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}
	req.IP = clientIP(c)
	req.UserAgent = c.GetHeader("User-Agent")

	entry, err := h.chat.RecordLog(c.Request.Context(), req)
	if err != nil {
		respondServiceError(c, h.log, "record chat log", err)
		return
	}
	respondOK(c, http.StatusOK, gin.H{"id": entry.ID})
}

// ListLogs handles GET /api/logs
func (h *ChatHandler) ListLogs(c *gin.Context) {
	result, err := h.chat.ListLogs(c.Request.Context(), c.Query("search"), queryInt(c, "page", 1), queryInt(c, "limit", 50))
	if err != nil {
		respondServiceError(c, h.log, "list chat logs", err)
		return
	}
	respondPage(c, result.Items, result.Page, result.Limit, result.Total)
}

// requestBaseURL is scheme://host of the request; forwarded headers are
// ignored
func requestBaseURL(c *gin.Context) string {
	scheme := "http"
	if c.Request.TLS != nil {
		scheme = "https"
	}
	return scheme + "://" + c.Request.Host
}

// clientIP prefers the first X-Forwarded-For entry
func clientIP(c *gin.Context) string {
	if ip := firstHeaderValue(c.GetHeader("X-Forwarded-For")); ip != "" {
		return ip
	}
	return c.ClientIP()
}

func firstHeaderValue(v string) string {
	if i := strings.IndexByte(v, ','); i >= 0 {
		v = v[:i]
	}
	return strings.TrimSpace(v)
}
