// ABOUTME: Transcript is the ordered, append-only message log for one agent run
// ABOUTME: Append enforces that every tool message answers an open assistant tool call
package agent

import (
	"errors"
	"fmt"

	"github.com/harper/sous/internal/models"
)

// ErrInvalidTranscript is returned when a message would break tool call correlation
var ErrInvalidTranscript = errors.New("invalid transcript")

// Transcript has a single writer. Tool observations must directly follow the
// assistant message that issued their calls, in the order the calls were issued.
type Transcript struct {
	messages []models.Message
	open     []string
	seen     map[string]bool
}

// NewTranscript creates an empty transcript
func NewTranscript() *Transcript {
	return &Transcript{
		seen: make(map[string]bool),
	}
}

// Append validates msg against the current state and adds it
func (t *Transcript) Append(msg models.Message) error {
	if !msg.Role.Valid() {
		return fmt.Errorf("%w: unknown role %q", ErrInvalidTranscript, msg.Role)
	}

	switch msg.Role {
	case models.RoleTool:
		if msg.ToolCallID == "" {
			return fmt.Errorf("%w: tool message without tool_call_id", ErrInvalidTranscript)
		}
		if len(t.open) == 0 {
			return fmt.Errorf("%w: tool message %q answers no pending tool call", ErrInvalidTranscript, msg.ToolCallID)
		}
		if t.open[0] != msg.ToolCallID {
			return fmt.Errorf("%w: tool message %q arrived before %q", ErrInvalidTranscript, msg.ToolCallID, t.open[0])
		}
		t.open = t.open[1:]

	case models.RoleAssistant:
		if err := t.requireNoOpenCalls(); err != nil {
			return err
		}
		ids := make(map[string]bool, len(msg.ToolCalls))
		for _, call := range msg.ToolCalls {
			if call.ID == "" {
				return fmt.Errorf("%w: tool call %q has no id", ErrInvalidTranscript, call.Name)
			}
			if t.seen[call.ID] || ids[call.ID] {
				return fmt.Errorf("%w: duplicate tool call id %q", ErrInvalidTranscript, call.ID)
			}
			ids[call.ID] = true
		}
		for _, call := range msg.ToolCalls {
			t.seen[call.ID] = true
			t.open = append(t.open, call.ID)
		}

	default:
		if err := t.requireNoOpenCalls(); err != nil {
			return err
		}
	}

	t.messages = append(t.messages, msg)
	return nil
}

// AppendAll appends messages in order, stopping at the first invalid one
func (t *Transcript) AppendAll(msgs []models.Message) error {
	for i, msg := range msgs {
		if err := t.Append(msg); err != nil {
			return fmt.Errorf("message %d: %w", i, err)
		}
	}
	return nil
}

// Messages returns a copy of the log
func (t *Transcript) Messages() []models.Message {
	out := make([]models.Message, len(t.messages))
	copy(out, t.messages)
	return out
}

// Len returns the number of messages
func (t *Transcript) Len() int {
	return len(t.messages)
}

// Pending reports how many tool calls are still waiting for an observation
func (t *Transcript) Pending() int {
	return len(t.open)
}

func (t *Transcript) requireNoOpenCalls() error {
	if len(t.open) > 0 {
		return fmt.Errorf("%w: %d tool call(s) left without an observation", ErrInvalidTranscript, len(t.open))
	}
	return nil
}

// ValidateHistory checks a caller-supplied history without keeping it
func ValidateHistory(history []models.Message) error {
	t := NewTranscript()
	if err := t.AppendAll(history); err != nil {
		return err
	}
	return t.requireNoOpenCalls()
}
