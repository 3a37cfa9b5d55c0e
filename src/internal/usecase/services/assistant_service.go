package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/api-sage/bank-one-one/src/internal/logger"
)

const (
	maxAssistantHistory = 12
	maxToolRounds       = 3
)

const (
	replyEmptyInput       = "I need a message to help you."
	replyNotConfigured    = "The assistant is not configured on this server right now."
	replyNoAnswer         = "I could not produce an answer right now."
	assistantInstructions = `You are a secure banking assistant.
Rules:
- You can answer only about the authenticated user's banking data and product help.
- Never ask for or use a userId from the user message.
- For account data questions, call tools.
- If the user asks for another user's data, refuse.
- If information is unavailable, say so clearly.
- Keep responses concise and practical.`
)

type ChatRole string

const (
	RoleSystem    ChatRole = "system"
	RoleUser      ChatRole = "user"
	RoleAssistant ChatRole = "assistant"
	RoleTool      ChatRole = "tool"
)

type ToolCall struct {
	ID        string
	Name      string
	Arguments string
}

// ChatMessage is one turn of a conversation. ToolCalls is set on assistant
// turns that request tools; ToolCallID on the tool turns answering them.
type ChatMessage struct {
	Role       ChatRole
	Content    string
	ToolCalls  []ToolCall
	ToolCallID string
}

// ChatModel is a chat completion provider. tools may be empty, in which case
// the model must answer in text.
type ChatModel interface {
	Complete(ctx context.Context, messages []ChatMessage, tools []ToolDefinition) (ChatMessage, error)
}

type AssistantService struct {
	model ChatModel
	tools *Toolbox
}

// NewAssistantService builds the assistant. A nil model yields a fixed
// "not configured" reply.
func NewAssistantService(model ChatModel, tools *Toolbox) *AssistantService {
	return &AssistantService{model: model, tools: tools}
}

// Reply answers input for userID given the prior conversation and returns the
// history to pass on the next turn.
func (s *AssistantService) Reply(ctx context.Context, userID string, input string, history []ChatMessage) (string, []ChatMessage, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return replyEmptyInput, history, nil
	}
	if s.model == nil {
		return replyNotConfigured, history, nil
	}

	recent := lastMessages(history, maxAssistantHistory)
	userTurn := ChatMessage{Role: RoleUser, Content: input}

	messages := make([]ChatMessage, 0, len(recent)+2)
	messages = append(messages, ChatMessage{Role: RoleSystem, Content: assistantInstructions})
	messages = append(messages, recent...)
	messages = append(messages, userTurn)

	reply, err := s.converse(ctx, userID, messages)
	if err != nil {
		logger.Error("assistant reply failed", err, logger.Fields{
			"userId": userID,
		})
		return "", history, err
	}

	next := make([]ChatMessage, 0, len(recent)+2)
	next = append(next, recent...)
	next = append(next, userTurn, ChatMessage{Role: RoleAssistant, Content: reply})
	return reply, lastMessages(next, maxAssistantHistory), nil
}

func (s *AssistantService) converse(ctx context.Context, userID string, messages []ChatMessage) (string, error) {
	definitions := s.tools.Definitions()

	for round := 0; round < maxToolRounds; round++ {
		answer, err := s.model.Complete(ctx, messages, definitions)
		if err != nil {
			return "", fmt.Errorf("complete round %d: %w", round+1, err)
		}
		if len(answer.ToolCalls) == 0 {
			return replyOrFallback(answer.Content), nil
		}

		answer.Role = RoleAssistant
		messages = append(messages, answer)
		for _, call := range answer.ToolCalls {
			result, err := s.tools.Execute(ctx, userID, call)
			if err != nil {
				return "", err
			}
			logger.Info("assistant tool executed", logger.Fields{
				"userId": userID,
				"tool":   call.Name,
				"round":  round + 1,
			})
			messages = append(messages, ChatMessage{Role: RoleTool, Content: result, ToolCallID: call.ID})
		}
	}

	final, err := s.model.Complete(ctx, messages, nil)
	if err != nil {
		return "", fmt.Errorf("complete final round: %w", err)
	}
	return replyOrFallback(final.Content), nil
}

func replyOrFallback(content string) string {
	if strings.TrimSpace(content) == "" {
		return replyNoAnswer
	}
	return content
}

func lastMessages(history []ChatMessage, n int) []ChatMessage {
	if len(history) <= n {
		return append([]ChatMessage(nil), history...)
	}
	return append([]ChatMessage(nil), history[len(history)-n:]...)
}
