package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"chatiip-backend/chatbot"
	"chatiip-backend/logger"
	"chatiip-backend/models"
)

// FallbackAnswer is returned when the chatbot cannot answer
const FallbackAnswer = "Mình đã nhận được câu hỏi của bạn. Hiện hệ thống trả lời đang bận, bạn thử lại sau nhé."

const defaultLogLimit = 50

// CitationResolver attaches supporting documents to a question
type CitationResolver interface {
	Resolve(ctx context.Context, question, baseURL string) ([]models.Citation, error)
}

// ChatService answers questions and records chat logs
type ChatService struct {
	answerer chatbot.Answerer
	resolver CitationResolver
	logs     ChatLogRepository
	log      *logger.Logger
}

// ChatServiceOption is a functional option for ChatService
type ChatServiceOption func(*ChatService)

// WithAnswerer sets the chatbot backend
func WithAnswerer(a chatbot.Answerer) ChatServiceOption {
	return func(s *ChatService) {
		s.answerer = a
	}
}

// WithCitationResolver sets the citation resolver
func WithCitationResolver(r CitationResolver) ChatServiceOption {
	return func(s *ChatService) {
		s.resolver = r
	}
}

// WithChatLogRepository sets the chat log repository
func WithChatLogRepository(repo ChatLogRepository) ChatServiceOption {
	return func(s *ChatService) {
		s.logs = repo
	}
}

// WithChatLogger sets the logger
func WithChatLogger(log *logger.Logger) ChatServiceOption {
	return func(s *ChatService) {
		if log != nil {
			s.log = log
		}
	}
}

// NewChatService creates a new chat service
func NewChatService(opts ...ChatServiceOption) *ChatService {
	s := &ChatService{log: logger.NewNop()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ChatResult is the answer to one question with its citations
type ChatResult struct {
	Answer    string            `json:"answer"`
	Citations []models.Citation `json:"citations"`
}

// Ask answers question. Chatbot and citation failures degrade to the
// fallback answer and an empty citation list
func (s *ChatService) Ask(ctx context.Context, question, baseURL string) (*ChatResult, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, fmt.Errorf("%w: question is required", ErrValidation)
	}

	answer := ""
	if s.answerer != nil {
		var err error
		answer, err = s.answerer.Answer(ctx, question)
		if err != nil {
			s.log.Warn("chatbot answer failed", "error", err)
		}
	}
	if strings.TrimSpace(answer) == "" {
		answer = FallbackAnswer
	}

	citations := []models.Citation{}
	if s.resolver != nil {
		found, err := s.resolver.Resolve(ctx, question, baseURL)
		if err != nil {
			s.log.Warn("citation lookup failed", "error", err)
		} else if len(found) > 0 {
			citations = found
		}
	}

	return &ChatResult{Answer: answer, Citations: citations}, nil
}

// RecordLogRequest represents a chat log submitted by the widget
type RecordLogRequest struct {
	Question  string          `json:"question"`
	Answer    string          `json:"answer"`
	Source    string          `json:"source"`
	SessionID string          `json:"sessionId"`
	Meta      models.Metadata `json:"meta"`
	IP        string          `json:"-"`
	UserAgent string          `json:"-"`
}

// RecordLog stores one exchange
func (s *ChatService) RecordLog(ctx context.Context, req RecordLogRequest) (*models.ChatLog, error) {
	if s.logs == nil {
		return nil, errors.New("chat log repository not set")
	}
	if strings.TrimSpace(req.Question) == "" {
		return nil, fmt.Errorf("%w: question is required", ErrValidation)
	}

	entry := &models.ChatLog{
		Question:  req.Question,
		Answer:    req.Answer,
		Source:    strings.TrimSpace(req.Source),
		SessionID: req.SessionID,
		IP:        req.IP,
		UserAgent: req.UserAgent,
		Meta:      req.Meta,
	}
	if entry.Source == "" {
		entry.Source = models.DefaultChatSource
	}
	if entry.Meta == nil {
		entry.Meta = models.Metadata{}
	}
	if err := s.logs.Create(ctx, entry); err != nil {
		return nil, fmt.Errorf("record chat log: %w", err)
	}
	return entry, nil
}

// ListLogsResult represents one page of chat logs
type ListLogsResult struct {
	Items []*models.ChatLog `json:"data"`
	Page  int               `json:"page"`
	Limit int               `json:"limit"`
	Total int64             `json:"total"`
}

// ListLogs pages through logs newest first, optionally filtered by a
// case-insensitive substring of question or answer
func (s *ChatService) ListLogs(ctx context.Context, search string, page, limit int) (*ListLogsResult, error) {
	if s.logs == nil {
		return nil, errors.New("chat log repository not set")
	}
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultLogLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}
	items, total, err := s.logs.List(ctx, strings.TrimSpace(search), limit, (page-1)*limit)
	if err != nil {
		return nil, fmt.Errorf("list chat logs: %w", err)
	}
	if items == nil {
		items = []*models.ChatLog{}
	}
	return &ListLogsResult{Items: items, Page: page, Limit: limit, Total: total}, nil
}
