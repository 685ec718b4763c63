package assistant

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"shopterm/internal/shop"

	openrouter "github.com/revrost/go-openrouter"
	"go.uber.org/zap"
)

const (
	maxToolRounds      = 4
	defaultSearchLimit = 10
	defaultLowStock    = 10
	defaultSlowDays    = 30
	maxSearchLimit     = 50
)

// ToolCallRecord is the audit trail of one tool invocation, logged and shown
// to the operator alongside the answer.
type ToolCallRecord struct {
	Name string         `json:"name"`
	Args map[string]any `json:"args,omitempty"`
	MS   int64          `json:"ms"`
	OK   bool           `json:"ok"`
	Err  string         `json:"err,omitempty"`
}

// Answer is the assistant's reply to one operator question.
type Answer struct {
	Query     string           `json:"query"`
	Text      string           `json:"answer_text"`
	ToolCalls []ToolCallRecord `json:"tool_calls,omitempty"`
}

// Agent runs the tool-calling loop: the model asks for shop data, the agent
// fetches it, and the loop ends when the model produces a plain answer or
// the round budget runs out.
type Agent struct {
	llm    *Client
	api    *shop.Client
	logger *zap.Logger
}

func NewAgent(llm *Client, api *shop.Client, logger *zap.Logger) *Agent {
	return &Agent{
		llm:    llm,
		api:    api,
		logger: logger.Named("assistant.agent"),
	}
}

func (a *Agent) Enabled() bool {
	return a != nil && a.llm.Enabled()
}

// Ask answers one question, appending to history when one is supplied so a
// follow-up question keeps its context.
func (a *Agent) Ask(ctx context.Context, query string, history *History) (Answer, error) {
	if !a.Enabled() {
		return Answer{}, ErrNotConfigured
	}

	var messages []openrouter.ChatCompletionMessage
	if history != nil {
		if history.Len() == 0 {
			history.Append(openrouter.SystemMessage(SystemPrompt))
		}
		history.Append(openrouter.UserMessage(query))
	} else {
		messages = []openrouter.ChatCompletionMessage{
			openrouter.SystemMessage(SystemPrompt),
			openrouter.UserMessage(query),
		}
	}

	var toolCalls []ToolCallRecord

	for round := 0; round < maxToolRounds; round++ {
		if history != nil {
			messages = history.Messages()
		}
		resp, err := a.llm.ChatWithMessages(ctx, messages, ToolSchemas())
		if err != nil {
			return Answer{}, err
		}
		if len(resp.Choices) == 0 {
			return Answer{}, errors.New("llm returned empty response")
		}

		msg := resp.Choices[0].Message
		a.logger.Debug("llm response",
			zap.String("content", msg.Content.Text),
			zap.Int("tool_calls", len(msg.ToolCalls)),
		)

		if history != nil {
			history.Append(msg)
		} else {
			messages = append(messages, msg)
		}

		if len(msg.ToolCalls) == 0 {
			return Answer{
				Query:     query,
				Text:      strings.TrimSpace(msg.Content.Text),
				ToolCalls: toolCalls,
			}, nil
		}

		toolMsgs, records := a.executeToolCalls(ctx, msg.ToolCalls)
		toolCalls = append(toolCalls, records...)
		for _, toolMsg := range toolMsgs {
			if history != nil {
				history.Append(toolMsg)
			} else {
				messages = append(messages, toolMsg)
			}
		}
	}

	return Answer{
		Query:     query,
		Text:      "Could not finish within the tool budget. Try a narrower question.",
		ToolCalls: toolCalls,
	}, nil
}

// executeToolCalls runs every requested tool. Failures are fed back to the
// model as tool output instead of aborting the loop, so it can rephrase or
// recover on the next round.
func (a *Agent) executeToolCalls(ctx context.Context, calls []openrouter.ToolCall) ([]openrouter.ChatCompletionMessage, []ToolCallRecord) {
	toolMessages := make([]openrouter.ChatCompletionMessage, 0, len(calls))
	records := make([]ToolCallRecord, 0, len(calls))

	for _, call := range calls {
		args := map[string]any{}
		if call.Function.Arguments != "" {
			if err := json.Unmarshal([]byte(call.Function.Arguments), &args); err != nil {
				record := ToolCallRecord{Name: call.Function.Name, Err: fmt.Sprintf("invalid tool args: %v", err)}
				records = append(records, record)
				toolMessages = append(toolMessages, openrouter.ToolMessage(call.ID, toolErrorPayload(record.Err)))
				continue
			}
		}

		result, record := a.dispatch(ctx, call.Function.Name, args)
		records = append(records, record)
		if record.Err != "" {
			toolMessages = append(toolMessages, openrouter.ToolMessage(call.ID, toolErrorPayload(record.Err)))
			continue
		}

		payload, err := json.Marshal(result)
		if err != nil {
			toolMessages = append(toolMessages, openrouter.ToolMessage(call.ID, toolErrorPayload(err.Error())))
			continue
		}
		toolMessages = append(toolMessages, openrouter.ToolMessage(call.ID, string(payload)))
	}

	return toolMessages, records
}

func (a *Agent) dispatch(ctx context.Context, name string, args map[string]any) (any, ToolCallRecord) {
	switch name {
	case "GetDashboardSummary":
		return a.track(name, args, func() (any, error) { return a.api.DashboardSummary(ctx) })
	case "GetSalesAnalysis":
		return a.track(name, args, func() (any, error) { return a.api.SalesAnalysis(ctx) })
	case "GetTopProducts":
		return a.track(name, args, func() (any, error) { return a.api.TopProducts(ctx) })
	case "GetStockSummary":
		return a.track(name, args, func() (any, error) { return a.api.StockSummary(ctx) })
	case "GetLowStock":
		threshold := intArg(args, "threshold", defaultLowStock)
		return a.track(name, args, func() (any, error) { return a.api.LowStock(ctx, threshold) })
	case "GetSlowMoving":
		days := intArg(args, "days", defaultSlowDays)
		return a.track(name, args, func() (any, error) { return a.api.SlowMoving(ctx, days) })
	case "GetProfitReport":
		return a.track(name, args, func() (any, error) { return a.api.ProductWiseProfit(ctx) })
	case "SearchProducts":
		query := stringArg(args, "query")
		limit := intArg(args, "limit", defaultSearchLimit)
		if limit > maxSearchLimit {
			limit = maxSearchLimit
		}
		return a.track(name, args, func() (any, error) { return a.searchProducts(ctx, query, limit) })
	case "ListExpenses":
		return a.track(name, args, func() (any, error) { return a.api.ListExpenses(ctx) })
	default:
		err := fmt.Sprintf("unknown tool: %s", name)
		return nil, ToolCallRecord{Name: name, Args: args, Err: err}
	}
}

// searchProducts filters the product list by a case-insensitive substring of
// the name; the backend has no search endpoint.
func (a *Agent) searchProducts(ctx context.Context, query string, limit int) ([]shop.Product, error) {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return nil, errors.New("search query is empty")
	}

	products, err := a.api.ListProducts(ctx)
	if err != nil {
		return nil, err
	}

	matches := make([]shop.Product, 0, limit)
	for _, p := range products {
		if strings.Contains(strings.ToLower(p.Name), query) {
			matches = append(matches, p)
			if len(matches) >= limit {
				break
			}
		}
	}
	return matches, nil
}

func (a *Agent) track(name string, args map[string]any, fn func() (any, error)) (any, ToolCallRecord) {
	start := time.Now()
	result, err := fn()
	record := ToolCallRecord{
		Name: name,
		Args: args,
		MS:   time.Since(start).Milliseconds(),
		OK:   err == nil,
	}
	if err != nil {
		record.Err = err.Error()
	}
	a.logger.Info("tool call",
		zap.String("name", name),
		zap.Any("args", args),
		zap.Int64("ms", record.MS),
		zap.Bool("ok", record.OK),
		zap.String("err", record.Err),
	)
	return result, record
}

func toolErrorPayload(message string) string {
	payload, _ := json.Marshal(map[string]string{"error": message})
	return string(payload)
}

func stringArg(args map[string]any, key string) string {
	if value, ok := args[key].(string); ok {
		return value
	}
	return ""
}

func intArg(args map[string]any, key string, fallback int) int {
	switch value := args[key].(type) {
	case float64:
		return int(value)
	case int:
		return value
	default:
		return fallback
	}
}
