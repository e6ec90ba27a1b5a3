package stages

import (
	"sync"

	"github.com/lokutor-ai/voicepipe/internal/types"
)

// History is the bounded rolling conversation context handed to the
// LLMProvider on every turn, adapted from the teacher's
// ConversationSession (role/content pair accumulation with a cap on
// retained turns) but stripped of voice/language session fields that
// belong to the responder/synthesizer stages instead.
type History struct {
	mu          sync.Mutex
	messages    []types.Message
	maxMessages int
}

// NewHistory returns a History that keeps at most maxMessages turns,
// always including the leading system prompt if one was set via
// SetSystemPrompt.
func NewHistory(maxMessages int) *History {
	if maxMessages <= 0 {
		maxMessages = 20
	}
	return &History{maxMessages: maxMessages}
}

// SetSystemPrompt inserts (or replaces) the leading system message.
func (h *History) SetSystemPrompt(prompt string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.messages) > 0 && h.messages[0].Role == "system" {
		h.messages[0].Content = prompt
		return
	}
	h.messages = append([]types.Message{{Role: "system", Content: prompt}}, h.messages...)
}

// Add appends one turn, trimming the oldest non-system turn once the
// cap is exceeded.
func (h *History) Add(role, content string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.messages = append(h.messages, types.Message{Role: role, Content: content})

	hasSystem := len(h.messages) > 0 && h.messages[0].Role == "system"
	limit := h.maxMessages
	if hasSystem {
		limit++
	}
	if len(h.messages) > limit {
		if hasSystem {
			h.messages = append(h.messages[:1], h.messages[len(h.messages)-h.maxMessages:]...)
		} else {
			h.messages = h.messages[len(h.messages)-h.maxMessages:]
		}
	}
}

// Snapshot returns a copy of the current message list, safe to hand to
// an LLMProvider call running concurrently with further Add calls.
func (h *History) Snapshot() []types.Message {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]types.Message, len(h.messages))
	copy(out, h.messages)
	return out
}

// Clear drops all turns, including the system prompt.
func (h *History) Clear() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.messages = nil
}
