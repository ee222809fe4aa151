package chatbot

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// DefaultGeminiModel is used when no model name is configured
const DefaultGeminiModel = "gemini-1.5-flash"

const systemPrompt = `Bạn là trợ lý pháp luật Việt Nam. Trả lời ngắn gọn, chính xác bằng tiếng Việt, ` +
	`nêu rõ căn cứ pháp lý (số hiệu văn bản, điều khoản) khi có thể. ` +
	`Nếu không chắc chắn, hãy nói rõ và khuyên người hỏi tham khảo văn bản gốc.`

// GeminiClient answers questions with a Gemini model
type GeminiClient struct {
	client *genai.Client
	model  *genai.GenerativeModel
}

// NewGeminiClient connects to Gemini with apiKey
func NewGeminiClient(ctx context.Context, apiKey, model string) (*GeminiClient, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY not set")
	}
	if model == "" {
		model = DefaultGeminiModel
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	m := client.GenerativeModel(model)
	m.SystemInstruction = genai.NewUserContent(genai.Text(systemPrompt))
	m.SetTemperature(0.2)
	return &GeminiClient{client: client, model: m}, nil
}

// Answer generates a reply to question
func (g *GeminiClient) Answer(ctx context.Context, question string) (string, error) {
	resp, err := g.model.GenerateContent(ctx, genai.Text(question))
	if err != nil {
		return "", fmt.Errorf("gemini generate: %w", err)
	}
	return responseText(resp)
}

// Close releases the underlying client
func (g *GeminiClient) Close() error {
	return g.client.Close()
}

func responseText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil {
		return "", ErrEmptyAnswer
	}
	if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != genai.BlockReasonUnspecified {
		return "", fmt.Errorf("gemini blocked prompt: %s", resp.PromptFeedback.BlockReason)
	}

	var b strings.Builder
	for _, cand := range resp.Candidates {
		if cand == nil || cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if text, ok := part.(genai.Text); ok {
				b.WriteString(string(text))
			}
		}
		if b.Len() > 0 {
			break
		}
	}
	answer := strings.TrimSpace(b.String())
	if answer == "" {
		return "", ErrEmptyAnswer
	}
	return answer, nil
}
