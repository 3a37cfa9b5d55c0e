package services_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/api-sage/bank-one-one/src/internal/domain"
	"github.com/api-sage/bank-one-one/src/internal/usecase/services"
)

func newTestToolbox() *services.Toolbox {
	march := func(day int) time.Time { return time.Date(2026, time.March, day, 12, 0, 0, 0, time.UTC) }

	return services.NewToolbox(
		accountRepoStub{
			getByUserIDFn: func(_ context.Context, userID string) (domain.Account, error) {
				if userID != "u-1" {
					return domain.Account{}, domain.ErrRecordNotFound
				}
				return domain.Account{ID: "acc-1", Balance: 1234, Status: domain.AccountStatusActive}, nil
			},
		},
		transactionRepoStub{
			findByParticipantFn: func(context.Context, string) ([]domain.Transaction, error) {
				return []domain.Transaction{
					{ID: 3, FromEmail: "me@example.com", ToEmail: "dan@example.com", Amount: 300, Status: domain.TransactionStatusCompleted, CreatedAt: march(20)},
					{ID: 2, FromEmail: "eve@example.com", ToEmail: "me@example.com", Amount: 200, Status: domain.TransactionStatusCompleted, CreatedAt: march(10)},
					{ID: 1, FromEmail: "me@example.com", ToEmail: "eve@example.com", Amount: 100, Status: domain.TransactionStatusCompleted, CreatedAt: march(1)},
				}, nil
			},
			findLatestSentToFn: func(_ context.Context, _ string, recipient string) (domain.Transaction, error) {
				if recipient == "dan" {
					return domain.Transaction{ID: 3, FromEmail: "me@example.com", ToEmail: "dan@example.com", Amount: 300, Status: domain.TransactionStatusCompleted, CreatedAt: march(20)}, nil
				}
				return domain.Transaction{}, domain.ErrRecordNotFound
			},
		},
		callerIs("me@example.com"),
	)
}

func runTool(t *testing.T, box *services.Toolbox, name string, args string) map[string]any {
	t.Helper()
	raw, err := box.Execute(context.Background(), "u-1", services.ToolCall{ID: "call-1", Name: name, Arguments: args})
	if err != nil {
		t.Fatalf("execute %s: %v", name, err)
	}
	var out map[string]any
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		t.Fatalf("decode %s result: %v", name, err)
	}
	return out
}

func TestToolboxDefinitionsAreClosed(t *testing.T) {
	var names []string
	for _, def := range newTestToolbox().Definitions() {
		names = append(names, def.Name)
	}
	want := "get_balance,get_last_transfer,count_transfers,get_last_sent_transfer_to_recipient"
	if got := strings.Join(names, ","); got != want {
		t.Fatalf("expected %s, got %s", want, got)
	}
}

func TestToolboxResults(t *testing.T) {
	box := newTestToolbox()

	balance := runTool(t, box, services.ToolGetBalance, "")
	if balance["found"] != true || balance["balance"] != "12.34" || balance["status"] != "ACTIVE" {
		t.Fatalf("unexpected balance result %v", balance)
	}

	last := runTool(t, box, services.ToolGetLastTransfer, "{}")
	if last["found"] != true || last["id"] != float64(3) || last["toEmail"] != "dan@example.com" || last["description"] != nil {
		t.Fatalf("unexpected last transfer %v", last)
	}

	sent := runTool(t, box, services.ToolGetLastSentTransferToRecipient, `{"recipientName":" dan "}`)
	if sent["found"] != true || sent["amount"] != "3.00" {
		t.Fatalf("unexpected sent transfer %v", sent)
	}

	missing := runTool(t, box, services.ToolGetLastSentTransferToRecipient, `{"recipientName":"daniela"}`)
	if missing["found"] != false || missing["message"] != "No outgoing transfer found for recipient daniela" {
		t.Fatalf("unexpected miss %v", missing)
	}
}

func TestToolboxCountTransfers(t *testing.T) {
	box := newTestToolbox()

	tests := []struct {
		args      string
		wantFound bool
		wantCount float64
	}{
		{args: `{"from":"2026-03-01","to":"2026-03-31"}`, wantFound: true, wantCount: 3},
		{args: `{"from":"2026-03-05","to":"2026-03-20"}`, wantFound: true, wantCount: 2},
		{args: `{"from":"2026-03-01T12:00:00Z","to":"2026-03-10T12:00:00Z"}`, wantFound: true, wantCount: 2},
		{args: `{"from":"2026-03-21","to":"2026-04-30"}`, wantFound: true, wantCount: 0},
		{args: `{"from":"March first"}`, wantFound: false},
		{args: `{"from":"2026-03-20","to":"2026-03-01"}`, wantFound: false},
		{args: `{not json`, wantFound: false},
	}

	for _, tc := range tests {
		t.Run(tc.args, func(t *testing.T) {
			out := runTool(t, box, services.ToolCountTransfers, tc.args)
			if out["found"] != tc.wantFound {
				t.Fatalf("expected found=%v, got %v", tc.wantFound, out)
			}
			if tc.wantFound && out["count"] != tc.wantCount {
				t.Fatalf("expected count %v, got %v", tc.wantCount, out["count"])
			}
		})
	}
}

func TestToolboxUnknownTool(t *testing.T) {
	out := runTool(t, newTestToolbox(), "transfer_money", `{"amount":100}`)
	if out["found"] != false || out["message"] != "Unsupported tool: transfer_money" {
		t.Fatalf("unexpected result %v", out)
	}
}

func TestAssistantFixedReplies(t *testing.T) {
	history := []services.ChatMessage{{Role: services.RoleUser, Content: "hi"}}

	svc := services.NewAssistantService(nil, newTestToolbox())
	reply, next, err := svc.Reply(context.Background(), "u-1", "   ", history)
	if err != nil || reply != "I need a message to help you." || len(next) != 1 {
		t.Fatalf("unexpected empty-input reply %q %v %v", reply, next, err)
	}

	reply, next, err = svc.Reply(context.Background(), "u-1", "balance?", history)
	if err != nil || reply != "The assistant is not configured on this server right now." || len(next) != 1 {
		t.Fatalf("unexpected unconfigured reply %q %v %v", reply, next, err)
	}
}

func TestAssistantRunsToolsThenAnswers(t *testing.T) {
	calls := 0
	model := chatModelStub{completeFn: func(_ context.Context, messages []services.ChatMessage, tools []services.ToolDefinition) (services.ChatMessage, error) {
		calls++
		if calls == 1 {
			if messages[0].Role != services.RoleSystem || len(tools) != 4 {
				t.Fatalf("expected system prompt and tool catalogue, got %d messages %d tools", len(messages), len(tools))
			}
			return services.ChatMessage{ToolCalls: []services.ToolCall{{ID: "c1", Name: services.ToolGetBalance, Arguments: "{}"}}}, nil
		}

		toolTurn := messages[len(messages)-1]
		if toolTurn.Role != services.RoleTool || toolTurn.ToolCallID != "c1" || !strings.Contains(toolTurn.Content, `"12.34"`) {
			t.Fatalf("expected tool result turn, got %+v", toolTurn)
		}
		if messages[len(messages)-2].Role != services.RoleAssistant {
			t.Fatal("expected assistant tool request before tool result")
		}
		return services.ChatMessage{Role: services.RoleAssistant, Content: "Your balance is 12.34 ILS."}, nil
	}}

	svc := services.NewAssistantService(model, newTestToolbox())
	reply, next, err := svc.Reply(context.Background(), "u-1", "what's my balance?", nil)
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if reply != "Your balance is 12.34 ILS." {
		t.Fatalf("unexpected reply %q", reply)
	}
	if len(next) != 2 || next[0].Role != services.RoleUser || next[1].Content != reply {
		t.Fatalf("unexpected history %+v", next)
	}
}

func TestAssistantCapsToolRounds(t *testing.T) {
	calls := 0
	model := chatModelStub{completeFn: func(_ context.Context, _ []services.ChatMessage, tools []services.ToolDefinition) (services.ChatMessage, error) {
		calls++
		if len(tools) == 0 {
			return services.ChatMessage{Content: "final"}, nil
		}
		return services.ChatMessage{ToolCalls: []services.ToolCall{{ID: fmt.Sprint(calls), Name: services.ToolGetLastTransfer}}}, nil
	}}

	reply, _, err := services.NewAssistantService(model, newTestToolbox()).Reply(context.Background(), "u-1", "loop", nil)
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if reply != "final" || calls != 4 {
		t.Fatalf("expected 3 tool rounds and a final answer, got %q after %d calls", reply, calls)
	}
}

func TestAssistantTrimsHistory(t *testing.T) {
	history := make([]services.ChatMessage, 20)
	for i := range history {
		history[i] = services.ChatMessage{Role: services.RoleUser, Content: fmt.Sprint(i)}
	}

	model := chatModelStub{completeFn: func(_ context.Context, messages []services.ChatMessage, _ []services.ToolDefinition) (services.ChatMessage, error) {
		if len(messages) != 14 || messages[1].Content != "8" {
			t.Fatalf("expected system + last 12 + user, got %d starting at %q", len(messages), messages[1].Content)
		}
		return services.ChatMessage{Content: "ok"}, nil
	}}

	_, next, err := services.NewAssistantService(model, newTestToolbox()).Reply(context.Background(), "u-1", "next", history)
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if len(next) != 12 || next[10].Content != "next" || next[11].Content != "ok" {
		t.Fatalf("unexpected trimmed history %+v", next)
	}
}

func TestAssistantModelFailureKeepsHistory(t *testing.T) {
	history := []services.ChatMessage{{Role: services.RoleUser, Content: "earlier"}}
	model := chatModelStub{completeFn: func(context.Context, []services.ChatMessage, []services.ToolDefinition) (services.ChatMessage, error) {
		return services.ChatMessage{}, errors.New("rate limited")
	}}

	_, next, err := services.NewAssistantService(model, newTestToolbox()).Reply(context.Background(), "u-1", "hello", history)
	if err == nil {
		t.Fatal("expected error")
	}
	if len(next) != 1 || next[0].Content != "earlier" {
		t.Fatalf("expected unchanged history, got %+v", next)
	}
}
