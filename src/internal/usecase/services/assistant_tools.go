package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/api-sage/bank-one-one/src/internal/domain"
	"github.com/api-sage/bank-one-one/src/internal/logger"
)

const (
	ToolGetBalance                     = "get_balance"
	ToolGetLastTransfer                = "get_last_transfer"
	ToolCountTransfers                 = "count_transfers"
	ToolGetLastSentTransferToRecipient = "get_last_sent_transfer_to_recipient"
)

const assistantCurrency = "ILS"

// ToolDefinition describes a callable tool to the chat model. Parameters is a
// JSON schema object.
type ToolDefinition struct {
	Name        string
	Description string
	Parameters  map[string]any
}

// Toolbox is the closed, read-only catalogue the assistant may call. Every
// tool is scoped to the calling user and none of them moves money.
type Toolbox struct {
	accounts     domain.AccountRepository
	transactions domain.TransactionRepository
	users        domain.UserDirectory
	now          func() time.Time
}

func NewToolbox(accounts domain.AccountRepository, transactions domain.TransactionRepository, users domain.UserDirectory) *Toolbox {
	return &Toolbox{
		accounts:     accounts,
		transactions: transactions,
		users:        users,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

func (t *Toolbox) Definitions() []ToolDefinition {
	emptyObject := map[string]any{"type": "object", "properties": map[string]any{}}
	return []ToolDefinition{
		{
			Name:        ToolGetBalance,
			Description: "Get the authenticated user current account balance and status",
			Parameters:  emptyObject,
		},
		{
			Name:        ToolGetLastTransfer,
			Description: "Get the most recent transfer (incoming or outgoing) for authenticated user",
			Parameters:  emptyObject,
		},
		{
			Name:        ToolCountTransfers,
			Description: "Count user transfers in optional date range",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"from": map[string]any{"type": "string", "description": "Optional ISO date like 2026-02-01"},
					"to":   map[string]any{"type": "string", "description": "Optional ISO date like 2026-02-28"},
				},
			},
		},
		{
			Name:        ToolGetLastSentTransferToRecipient,
			Description: "Get the latest outgoing transfer to recipient by local-part name before @",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"recipientName": map[string]any{"type": "string", "description": `Recipient email local part, for example "danny"`},
				},
				"required": []string{"recipientName"},
			},
		},
	}
}

type toolResult map[string]any

func notFound(message string) toolResult {
	return toolResult{"found": false, "message": message}
}

// Execute runs one tool call for userID and returns its JSON result. Bad
// arguments and unknown tools produce a found=false result. Only storage
// failures are returned as errors.
func (t *Toolbox) Execute(ctx context.Context, userID string, call ToolCall) (string, error) {
	result, err := t.execute(ctx, userID, call)
	if err != nil {
		logger.Error("assistant tool failed", err, logger.Fields{
			"userId": userID,
			"tool":   call.Name,
		})
		return "", err
	}

	raw, err := json.Marshal(result)
	if err != nil {
		return "", fmt.Errorf("marshal %s result: %w", call.Name, err)
	}
	return string(raw), nil
}

func (t *Toolbox) execute(ctx context.Context, userID string, call ToolCall) (toolResult, error) {
	switch call.Name {
	case ToolGetBalance:
		return t.getBalance(ctx, userID)
	case ToolGetLastTransfer:
		return t.getLastTransfer(ctx, userID)
	case ToolCountTransfers:
		var args struct {
			From string `json:"from"`
			To   string `json:"to"`
		}
		if err := decodeToolArgs(call.Arguments, &args); err != nil {
			return notFound("Invalid tool arguments"), nil
		}
		return t.countTransfers(ctx, userID, args.From, args.To)
	case ToolGetLastSentTransferToRecipient:
		var args struct {
			RecipientName string `json:"recipientName"`
		}
		if err := decodeToolArgs(call.Arguments, &args); err != nil {
			return notFound("Invalid tool arguments"), nil
		}
		return t.getLastSentTo(ctx, userID, args.RecipientName)
	default:
		return notFound("Unsupported tool: " + call.Name), nil
	}
}

func decodeToolArgs(raw string, dst any) error {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	return json.Unmarshal([]byte(raw), dst)
}

func (t *Toolbox) getBalance(ctx context.Context, userID string) (toolResult, error) {
	account, err := t.accounts.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			return notFound("Account not found"), nil
		}
		return nil, err
	}
	return toolResult{
		"found":    true,
		"balance":  account.Balance.String(),
		"status":   string(account.Status),
		"currency": assistantCurrency,
	}, nil
}

func (t *Toolbox) history(ctx context.Context, userID string) ([]domain.Transaction, string, error) {
	email, err := t.users.ResolveEmail(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			return nil, "", nil
		}
		return nil, "", err
	}
	txns, err := t.transactions.FindByParticipant(ctx, email)
	if err != nil {
		return nil, "", err
	}
	return txns, email, nil
}

func (t *Toolbox) getLastTransfer(ctx context.Context, userID string) (toolResult, error) {
	txns, _, err := t.history(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(txns) == 0 {
		return notFound("No transactions found"), nil
	}

	result := transferResult(txns[0])
	result["fromEmail"] = txns[0].FromEmail
	return result, nil
}

func (t *Toolbox) countTransfers(ctx context.Context, userID string, from string, to string) (toolResult, error) {
	start, end, ok := transferRange(t.now(), from, to)
	if !ok {
		return notFound("Invalid date range format"), nil
	}

	txns, _, err := t.history(ctx, userID)
	if err != nil {
		return nil, err
	}

	count := 0
	for _, txn := range txns {
		if !txn.CreatedAt.Before(start) && !txn.CreatedAt.After(end) {
			count++
		}
	}

	return toolResult{
		"found": true,
		"count": count,
		"from":  start.Format(time.RFC3339),
		"to":    end.Format(time.RFC3339),
	}, nil
}

func (t *Toolbox) getLastSentTo(ctx context.Context, userID string, recipientName string) (toolResult, error) {
	recipientName = strings.TrimSpace(recipientName)
	if recipientName == "" {
		return notFound("recipientName is required"), nil
	}

	email, err := t.users.ResolveEmail(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			return notFound("User not found"), nil
		}
		return nil, err
	}

	txn, err := t.transactions.FindLatestSentTo(ctx, email, recipientName)
	if err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			return notFound("No outgoing transfer found for recipient " + recipientName), nil
		}
		return nil, err
	}
	return transferResult(txn), nil
}

func transferResult(txn domain.Transaction) toolResult {
	var description any
	if txn.Description != "" {
		description = txn.Description
	}
	return toolResult{
		"found":       true,
		"id":          txn.ID,
		"toEmail":     txn.ToEmail,
		"amount":      txn.Amount.String(),
		"status":      string(txn.Status),
		"description": description,
		"createdAt":   txn.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// transferRange resolves the optional from/to bounds. The default window is
// month to date. A date-only upper bound covers that whole day.
func transferRange(now time.Time, from string, to string) (time.Time, time.Time, bool) {
	now = now.UTC()
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	end := now

	if from = strings.TrimSpace(from); from != "" {
		parsed, _, err := parseToolDate(from)
		if err != nil {
			return time.Time{}, time.Time{}, false
		}
		start = parsed
	}
	if to = strings.TrimSpace(to); to != "" {
		parsed, dateOnly, err := parseToolDate(to)
		if err != nil {
			return time.Time{}, time.Time{}, false
		}
		if dateOnly {
			parsed = parsed.Add(24*time.Hour - time.Nanosecond)
		}
		end = parsed
	}

	if end.Before(start) {
		return time.Time{}, time.Time{}, false
	}
	return start, end, true
}

func parseToolDate(value string) (time.Time, bool, error) {
	if parsed, err := time.Parse(time.DateOnly, value); err == nil {
		return parsed.UTC(), true, nil
	}
	parsed, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, false, err
	}
	return parsed.UTC(), false, nil
}
