package assistant

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"shopterm/internal/config"
	"shopterm/internal/shop"

	openrouter "github.com/revrost/go-openrouter"
	"go.uber.org/zap"
)

func newTestAgent(t *testing.T, handler http.Handler) *Agent {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	api := shop.NewClient(config.Config{APIBaseURL: srv.URL, Timeout: 5 * time.Second}, zap.NewNop())
	api.SetToken("test-token")
	return NewAgent(nil, api, zap.NewNop())
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func TestDispatchLowStockDefaultThreshold(t *testing.T) {
	a := newTestAgent(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/stock/low-stock" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("threshold"); got != "10" {
			t.Errorf("expected default threshold 10, got %q", got)
		}
		writeJSON(w, []shop.StockItem{{Name: "Soap", StockQty: 2}})
	}))

	result, record := a.dispatch(context.Background(), "GetLowStock", map[string]any{})
	if !record.OK {
		t.Fatalf("expected success, got %q", record.Err)
	}
	items, ok := result.([]shop.StockItem)
	if !ok || len(items) != 1 {
		t.Errorf("unexpected result: %#v", result)
	}
}

func TestDispatchUnknownTool(t *testing.T) {
	a := newTestAgent(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("unknown tool must not reach the API")
	}))

	_, record := a.dispatch(context.Background(), "DropTables", nil)
	if record.OK || record.Err == "" {
		t.Fatalf("expected an error record, got %+v", record)
	}
}

func TestDispatchRecordsAPIFailure(t *testing.T) {
	a := newTestAgent(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		writeJSON(w, map[string]string{"detail": "boom"})
	}))

	_, record := a.dispatch(context.Background(), "GetDashboardSummary", nil)
	if record.OK {
		t.Fatal("expected a failed record")
	}
	if record.Err == "" {
		t.Error("expected the error text captured in the record")
	}
}

func TestSearchProducts(t *testing.T) {
	a := newTestAgent(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		products := make([]shop.Product, 0, 12)
		for i := 0; i < 12; i++ {
			products = append(products, shop.Product{Name: fmt.Sprintf("Soap Bar %d", i), SellingPrice: 40})
		}
		products = append(products, shop.Product{Name: "Bread", SellingPrice: 35})
		writeJSON(w, products)
	}))

	matches, err := a.searchProducts(context.Background(), "SOAP", 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(matches) != 5 {
		t.Errorf("expected the limit applied, got %d matches", len(matches))
	}

	if _, err := a.searchProducts(context.Background(), "   ", 5); err == nil {
		t.Error("expected error for an empty query")
	}
}

func TestExecuteToolCallsFeedsErrorsBack(t *testing.T) {
	a := newTestAgent(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))

	calls := []openrouter.ToolCall{
		{
			ID: "call-1",
			Function: openrouter.FunctionCall{
				Name:      "GetStockSummary",
				Arguments: "",
			},
		},
		{
			ID: "call-2",
			Function: openrouter.FunctionCall{
				Name:      "GetLowStock",
				Arguments: "{not json",
			},
		},
	}

	msgs, records := a.executeToolCalls(context.Background(), calls)
	if len(msgs) != 2 || len(records) != 2 {
		t.Fatalf("expected one message and record per call, got %d/%d", len(msgs), len(records))
	}
	for i, record := range records {
		if record.OK {
			t.Errorf("record %d: expected failure", i)
		}
	}
}

func TestIntArg(t *testing.T) {
	args := map[string]any{"days": float64(7), "limit": 3}

	if got := intArg(args, "days", 30); got != 7 {
		t.Errorf("expected 7, got %d", got)
	}
	if got := intArg(args, "limit", 10); got != 3 {
		t.Errorf("expected 3, got %d", got)
	}
	if got := intArg(args, "missing", 30); got != 30 {
		t.Errorf("expected fallback 30, got %d", got)
	}
}

func TestHistoryTrimKeepsSystemMessage(t *testing.T) {
	h := NewHistory()
	h.Append(openrouter.SystemMessage("rules"))

	for i := 0; i < 30; i++ {
		h.Append(openrouter.UserMessage(fmt.Sprintf("question %d", i)))
	}

	msgs := h.Messages()
	if len(msgs) > defaultHistoryMaxMessages {
		t.Fatalf("expected at most %d messages, got %d", defaultHistoryMaxMessages, len(msgs))
	}
	if msgs[0].Role != openrouter.ChatMessageRoleSystem {
		t.Errorf("expected the system message preserved, got role %q", msgs[0].Role)
	}
	if last := msgs[len(msgs)-1]; last.Content.Text != "question 29" {
		t.Errorf("expected the newest message kept, got %q", last.Content.Text)
	}
}

func TestHistoryClear(t *testing.T) {
	h := NewHistory()
	h.Append(openrouter.UserMessage("hello"))
	h.Clear()

	if h.Len() != 0 {
		t.Errorf("expected empty history, got %d", h.Len())
	}
	if h.Messages() != nil {
		t.Errorf("expected nil messages after clear")
	}
}
