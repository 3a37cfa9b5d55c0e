// Package llm adapts hosted chat models to services.ChatModel.
package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/api-sage/bank-one-one/src/internal/usecase/services"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

const (
	DefaultModel       = "gpt-4o-mini"
	defaultTemperature = 0.2
)

var errNoChoices = errors.New("chat completion returned no choices")

type OpenAIModel struct {
	client      openai.Client
	model       string
	temperature float64
}

// NewOpenAIModel builds a chat model on the OpenAI chat completions API.
// Extra options are applied after the API key.
func NewOpenAIModel(apiKey string, model string, opts ...option.RequestOption) *OpenAIModel {
	if strings.TrimSpace(model) == "" {
		model = DefaultModel
	}
	requestOpts := append([]option.RequestOption{option.WithAPIKey(apiKey)}, opts...)
	return &OpenAIModel{
		client:      openai.NewClient(requestOpts...),
		model:       model,
		temperature: defaultTemperature,
	}
}

func (m *OpenAIModel) Complete(ctx context.Context, messages []services.ChatMessage, tools []services.ToolDefinition) (services.ChatMessage, error) {
	params := openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(m.model),
		Messages:    toMessageParams(messages),
		Temperature: openai.Float(m.temperature),
	}
	if len(tools) > 0 {
		params.Tools = toToolParams(tools)
	}

	completion, err := m.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return services.ChatMessage{}, fmt.Errorf("openai chat completion: %w", err)
	}
	if len(completion.Choices) == 0 {
		return services.ChatMessage{}, errNoChoices
	}

	message := completion.Choices[0].Message
	out := services.ChatMessage{
		Role:    services.RoleAssistant,
		Content: message.Content,
	}
	for _, call := range message.ToolCalls {
		out.ToolCalls = append(out.ToolCalls, services.ToolCall{
			ID:        call.ID,
			Name:      call.Function.Name,
			Arguments: call.Function.Arguments,
		})
	}
	return out, nil
}

func toMessageParams(messages []services.ChatMessage) []openai.ChatCompletionMessageParamUnion {
	out := make([]openai.ChatCompletionMessageParamUnion, 0, len(messages))
	for _, msg := range messages {
		switch msg.Role {
		case services.RoleSystem:
			out = append(out, openai.SystemMessage(msg.Content))
		case services.RoleAssistant:
			out = append(out, assistantParam(msg))
		case services.RoleTool:
			out = append(out, openai.ToolMessage(msg.Content, msg.ToolCallID))
		default:
			out = append(out, openai.UserMessage(msg.Content))
		}
	}
	return out
}

func assistantParam(msg services.ChatMessage) openai.ChatCompletionMessageParamUnion {
	if len(msg.ToolCalls) == 0 {
		return openai.AssistantMessage(msg.Content)
	}

	assistant := openai.ChatCompletionAssistantMessageParam{}
	if msg.Content != "" {
		assistant.Content.OfString = openai.String(msg.Content)
	}
	for _, call := range msg.ToolCalls {
		assistant.ToolCalls = append(assistant.ToolCalls, openai.ChatCompletionMessageToolCallParam{
			ID: call.ID,
			Function: openai.ChatCompletionMessageToolCallFunctionParam{
				Name:      call.Name,
				Arguments: call.Arguments,
			},
		})
	}
	return openai.ChatCompletionMessageParamUnion{OfAssistant: &assistant}
}

func toToolParams(tools []services.ToolDefinition) []openai.ChatCompletionToolParam {
	out := make([]openai.ChatCompletionToolParam, 0, len(tools))
	for _, def := range tools {
		out = append(out, openai.ChatCompletionToolParam{
			Function: openai.FunctionDefinitionParam{
				Name:        def.Name,
				Description: openai.String(def.Description),
				Parameters:  openai.FunctionParameters(def.Parameters),
			},
		})
	}
	return out
}

var _ services.ChatModel = (*OpenAIModel)(nil)
