// Package chatbot obtains answers to user questions from an upstream
// chatbot service or from Gemini
package chatbot

import (
	"context"
	"errors"
)

// ErrEmptyAnswer is returned when the backend replied without any text
var ErrEmptyAnswer = errors.New("chatbot returned an empty answer")

// Answerer answers one question
type Answerer interface {
	Answer(ctx context.Context, question string) (string, error)
}
