package assistant

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"pricingdesk/internal/models"
)

// Invoker sends one prompt to the hosted model and returns its reply.
type Invoker interface {
	Invoke(ctx context.Context, prompt string) (string, error)
}

const systemPrompt = `You are an AI assistant specialized in insurance pricing and actuarial analysis.
You help users understand insurance product pricing methodologies, actuarial
concepts and calculations, risk assessment and underwriting, data analysis,
regulatory compliance and product feature analysis.

Provide clear, accurate explanations, help interpret pricing data and trends,
and always recommend consulting with qualified actuaries for critical
decisions. Keep responses concise but comprehensive.`

// Service answers chat turns. Each turn goes to the primary invoker with
// the recent history as context; any primary failure degrades silently to
// the canned fallback responder. Respond never returns an error.
type Service struct {
	invoker Invoker
	log     *zap.SugaredLogger
}

// NewService builds the assistant. A nil invoker pins every turn to the
// fallback responder (no warehouse connection available).
func NewService(invoker Invoker, log *zap.SugaredLogger) *Service {
	return &Service{invoker: invoker, log: log}
}

// Respond handles one user turn against the given history and returns the
// reply together with the updated, trimmed history. The (user, assistant)
// pair is always appended, whichever mode produced the answer.
func (s *Service) Respond(ctx context.Context, history []models.ChatTurn, userMessage string) (string, []models.ChatTurn) {
	history = append(history, models.ChatTurn{Role: models.RoleUser, Content: userMessage})

	reply, err := s.primary(ctx, history, userMessage)
	if err != nil {
		if s.invoker != nil {
			s.log.Warnw("primary assistant invocation failed, using fallback", "error", err)
		}
		reply = fallbackResponse(userMessage)
	}

	history = append(history, models.ChatTurn{Role: models.RoleAssistant, Content: reply})
	return reply, models.TrimHistory(history)
}

func (s *Service) primary(ctx context.Context, history []models.ChatTurn, userMessage string) (string, error) {
	if s.invoker == nil {
		return "", fmt.Errorf("no model invoker configured")
	}
	reply, err := s.invoker.Invoke(ctx, buildPrompt(history, userMessage))
	if err != nil {
		return "", err
	}
	reply = strings.TrimSpace(reply)
	if reply == "" {
		return "", fmt.Errorf("empty response from model")
	}
	return reply, nil
}

// buildPrompt concatenates the system preamble, the bounded recent history
// and the current question into a single prompt. history already contains
// the current user turn, so it is excluded from the context block.
func buildPrompt(history []models.ChatTurn, userMessage string) string {
	var b strings.Builder
	b.WriteString(systemPrompt)

	prior := history[:len(history)-1]
	if len(prior) > 0 {
		b.WriteString("\n\nConversation so far:\n")
		for _, turn := range prior {
			b.WriteString(string(turn.Role))
			b.WriteString(": ")
			b.WriteString(turn.Content)
			b.WriteString("\n")
		}
	}
	b.WriteString("\n\nUser question: ")
	b.WriteString(userMessage)
	return b.String()
}

// Summary gives a one-line description of the conversation.
func Summary(history []models.ChatTurn) string {
	var topics []string
	count := 0
	for _, turn := range history {
		if turn.Role != models.RoleUser {
			continue
		}
		count++
		if len(topics) < 3 {
			topics = append(topics, turn.Content)
		}
	}
	if count == 0 {
		return "No conversation history available."
	}
	return fmt.Sprintf("Conversation has %d user message(s) covering topics like: %s",
		count, strings.Join(topics, ", "))
}
