package assistant

import (
	"strings"

	openrouter "github.com/revrost/go-openrouter"
)

const (
	defaultHistoryMaxMessages = 20
	defaultHistoryMaxWords    = 2000
)

// History holds the assist REPL's conversation, bounded by message count and
// a rough word budget. The system message is always kept; the oldest turns
// are dropped first.
type History struct {
	messages    []openrouter.ChatCompletionMessage
	maxMessages int
	maxWords    int
}

func NewHistory() *History {
	return &History{
		maxMessages: defaultHistoryMaxMessages,
		maxWords:    defaultHistoryMaxWords,
	}
}

func (h *History) Len() int {
	return len(h.messages)
}

func (h *History) Append(message openrouter.ChatCompletionMessage) {
	h.messages = append(h.messages, message)
	for h.overBudget() {
		h.dropOldestTurn()
	}
}

func (h *History) Messages() []openrouter.ChatCompletionMessage {
	if len(h.messages) == 0 {
		return nil
	}
	out := make([]openrouter.ChatCompletionMessage, len(h.messages))
	copy(out, h.messages)
	return out
}

func (h *History) Clear() {
	h.messages = nil
}

// WordCount approximates the context size; exact tokenization is not worth a
// dependency for a trim heuristic.
func (h *History) WordCount() int {
	total := 0
	for _, msg := range h.messages {
		total += messageWords(msg)
	}
	return total
}

func (h *History) overBudget() bool {
	if len(h.messages) <= 1 {
		return false
	}
	return len(h.messages) > h.maxMessages || h.WordCount() > h.maxWords
}

func (h *History) dropOldestTurn() {
	if len(h.messages) == 0 {
		return
	}
	if h.messages[0].Role == openrouter.ChatMessageRoleSystem {
		if len(h.messages) <= 1 {
			return
		}
		h.messages = append(h.messages[:1], h.messages[2:]...)
		return
	}
	h.messages = h.messages[1:]
}

func messageWords(msg openrouter.ChatCompletionMessage) int {
	if msg.Content.Text != "" {
		return len(strings.Fields(msg.Content.Text))
	}
	total := 0
	for _, part := range msg.Content.Multi {
		total += len(strings.Fields(part.Text))
	}
	return total
}
