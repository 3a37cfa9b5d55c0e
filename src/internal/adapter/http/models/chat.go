package models

const (
	ChatMessageFrame = "chat_message"
	BotReplyFrame    = "bot_reply"
	ChatErrorFrame   = "chat_error"

	MaxChatMessageLength = 2000
)

// ChatFrame is one websocket message in either direction.
type ChatFrame struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}
