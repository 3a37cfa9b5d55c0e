package controller

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/websocket"

	"github.com/api-sage/bank-one-one/src/internal/adapter/http/middleware"
	"github.com/api-sage/bank-one-one/src/internal/adapter/http/models"
	"github.com/api-sage/bank-one-one/src/internal/commons"
	"github.com/api-sage/bank-one-one/src/internal/domain"
	"github.com/api-sage/bank-one-one/src/internal/logger"
	"github.com/api-sage/bank-one-one/src/internal/usecase/service_interfaces"
	"github.com/api-sage/bank-one-one/src/internal/usecase/services"
)

const (
	chatUnavailableMessage = "Assistant is temporarily unavailable"
	maxChatDecodeErrors    = 3
	maxChatFrameBytes      = 8 << 10
)

// ChatController serves the assistant over a websocket. Each connection keeps
// its own conversation history.
type ChatController struct {
	assistant service_interfaces.AssistantService
	tokens    middleware.TokenParser
	users     service_interfaces.VerifiedUserLoader
	origins   []string
}

func NewChatController(assistant service_interfaces.AssistantService, tokens middleware.TokenParser, users service_interfaces.VerifiedUserLoader, origins []string) *ChatController {
	return &ChatController{
		assistant: assistant,
		tokens:    tokens,
		users:     users,
		origins:   origins,
	}
}

func (c *ChatController) RegisterRoutes(mux *http.ServeMux, _ func(http.Handler) http.Handler) {
	mux.HandleFunc("GET /api/v1/chat/ws", c.serveWS)
}

func (c *ChatController) serveWS(w http.ResponseWriter, r *http.Request) {
	raw := strings.TrimSpace(r.URL.Query().Get("token"))
	if raw == "" {
		raw = middleware.BearerToken(r)
	}
	if raw == "" {
		writeJSON(w, http.StatusUnauthorized, errorBody("Authentication required"))
		return
	}

	claims, err := c.tokens.Parse(raw)
	if err != nil {
		logger.Info("chat websocket rejected token", logger.Fields{
			"remote": r.RemoteAddr,
			"reason": err.Error(),
		})
		writeJSON(w, http.StatusUnauthorized, errorBody("Invalid or expired token"))
		return
	}

	if _, err := c.users.VerifiedUser(r.Context(), claims.UserID); err != nil {
		status := statusForError(err)
		if status == http.StatusInternalServerError {
			logError(r, err, logger.Fields{"userId": claims.UserID})
		}
		writeJSON(w, status, errorBody(chatRejection(err, status)))
		return
	}

	server := websocket.Server{
		Handshake: c.checkOrigin,
		Handler: func(conn *websocket.Conn) {
			c.handleConn(conn, claims.UserID)
		},
	}
	server.ServeHTTP(w, r)
}

// checkOrigin accepts clients without an Origin header and browsers from the
// configured origins.
func (c *ChatController) checkOrigin(_ *websocket.Config, r *http.Request) error {
	origin := r.Header.Get("Origin")
	if origin == "" || middleware.AllowsOrigin(c.origins, origin) {
		return nil
	}
	return fmt.Errorf("origin %q not allowed", origin)
}

func (c *ChatController) handleConn(conn *websocket.Conn, userID string) {
	defer func() {
		_ = conn.Close()
	}()
	conn.MaxPayloadBytes = maxChatFrameBytes

	ctx := conn.Request().Context()
	logger.Info("chat websocket connected", logger.Fields{"userId": userID})

	var history []services.ChatMessage
	decodeErrors := 0

	for {
		var frame models.ChatFrame
		if err := websocket.JSON.Receive(conn, &frame); err != nil {
			if errors.Is(err, io.EOF) || ctx.Err() != nil {
				logger.Info("chat websocket disconnected", logger.Fields{"userId": userID})
				return
			}
			decodeErrors++
			reply := "Invalid message format"
			if errors.Is(err, websocket.ErrFrameTooLarge) {
				reply = "Message is too large"
			}
			if sendErr := sendChatFrame(conn, models.ChatErrorFrame, reply); sendErr != nil || decodeErrors >= maxChatDecodeErrors {
				return
			}
			continue
		}
		decodeErrors = 0

		if frame.Type != models.ChatMessageFrame {
			if err := sendChatFrame(conn, models.ChatErrorFrame, "Unsupported message type"); err != nil {
				return
			}
			continue
		}

		message := strings.TrimSpace(frame.Message)
		if problem := validateChatMessage(message); problem != "" {
			if err := sendChatFrame(conn, models.ChatErrorFrame, problem); err != nil {
				return
			}
			continue
		}

		reply, next, err := c.assistant.Reply(ctx, userID, message, history)
		if err != nil {
			logger.Error("chat assistant reply failed", err, logger.Fields{"userId": userID})
			if err := sendChatFrame(conn, models.ChatErrorFrame, chatUnavailableMessage); err != nil {
				return
			}
			continue
		}
		history = next

		if err := sendChatFrame(conn, models.BotReplyFrame, reply); err != nil {
			return
		}
	}
}

func validateChatMessage(message string) string {
	if message == "" {
		return "Message is required"
	}
	if utf8.RuneCountInString(message) > models.MaxChatMessageLength {
		return fmt.Sprintf("Message must be at most %d characters", models.MaxChatMessageLength)
	}
	return ""
}

func sendChatFrame(conn *websocket.Conn, frameType string, message string) error {
	return websocket.JSON.Send(conn, models.ChatFrame{Type: frameType, Message: message})
}

func chatRejection(err error, status int) string {
	if status == http.StatusInternalServerError {
		return "Unable to load user"
	}
	if errors.Is(err, domain.ErrUserNotVerified) {
		return "Account not verified"
	}
	return err.Error()
}

func errorBody(message string) commons.Response[models.EmptyResponse] {
	return commons.ErrorResponse[models.EmptyResponse](message)
}
