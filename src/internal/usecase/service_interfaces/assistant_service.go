package service_interfaces

import (
	"context"

	"github.com/api-sage/bank-one-one/src/internal/usecase/services"
)

type AssistantService interface {
	Reply(ctx context.Context, userID string, input string, history []services.ChatMessage) (string, []services.ChatMessage, error)
}
