// ABOUTME: Tests for transcript ordering and tool call correlation
// ABOUTME: Invalid sequences must be rejected before reaching the model
package agent

import (
	"errors"
	"testing"

	"github.com/harper/sous/internal/models"
)

func call(id string) models.ToolCall {
	return models.ToolCall{ID: id, Name: SearchRecipesTool, Arguments: `{"query":"soup"}`}
}

func TestTranscriptValidSequence(t *testing.T) {
	tr := NewTranscript()
	msgs := []models.Message{
		models.SystemMessage("sys"),
		models.UserMessage("hi"),
		models.AssistantMessage("", call("a"), call("b")),
		models.ToolMessage("a", "{}"),
		models.ToolMessage("b", "{}"),
		models.AssistantMessage("done"),
		models.UserMessage("more"),
	}
	if err := tr.AppendAll(msgs); err != nil {
		t.Fatalf("AppendAll() error = %v", err)
	}
	if tr.Len() != len(msgs) {
		t.Errorf("Len() = %d, want %d", tr.Len(), len(msgs))
	}
	if tr.Pending() != 0 {
		t.Errorf("Pending() = %d, want 0", tr.Pending())
	}

	copied := tr.Messages()
	copied[0].Content = "changed"
	if tr.Messages()[0].Content != "sys" {
		t.Error("Messages() must return a copy")
	}
}

func TestTranscriptRejects(t *testing.T) {
	tests := []struct {
		name string
		msgs []models.Message
	}{
		{"unknown role", []models.Message{{Role: "narrator", Content: "x"}}},
		{"orphan tool message", []models.Message{models.UserMessage("hi"), models.ToolMessage("a", "{}")}},
		{"tool message without id", []models.Message{models.AssistantMessage("", call("a")), models.ToolMessage("", "{}")}},
		{"wrong tool id", []models.Message{models.AssistantMessage("", call("a")), models.ToolMessage("b", "{}")}},
		{"out of order", []models.Message{
			models.AssistantMessage("", call("a"), call("b")),
			models.ToolMessage("b", "{}"),
		}},
		{"answered twice", []models.Message{
			models.AssistantMessage("", call("a")),
			models.ToolMessage("a", "{}"),
			models.ToolMessage("a", "{}"),
		}},
		{"user before observation", []models.Message{
			models.AssistantMessage("", call("a")),
			models.UserMessage("hello?"),
		}},
		{"duplicate call id", []models.Message{
			models.AssistantMessage("", call("a")),
			models.ToolMessage("a", "{}"),
			models.AssistantMessage("", call("a")),
		}},
		{"duplicate id in one message", []models.Message{models.AssistantMessage("", call("a"), call("a"))}},
		{"call without id", []models.Message{models.AssistantMessage("", call(""))}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewTranscript().AppendAll(tt.msgs)
			if !errors.Is(err, ErrInvalidTranscript) {
				t.Errorf("AppendAll() error = %v, want ErrInvalidTranscript", err)
			}
		})
	}
}

func TestValidateHistory(t *testing.T) {
	if err := ValidateHistory(nil); err != nil {
		t.Errorf("ValidateHistory(nil) error = %v", err)
	}

	valid := []models.Message{
		models.UserMessage("hi"),
		models.AssistantMessage("", call("a")),
		models.ToolMessage("a", "{}"),
		models.AssistantMessage("here you go"),
	}
	if err := ValidateHistory(valid); err != nil {
		t.Errorf("ValidateHistory(valid) error = %v", err)
	}

	dangling := []models.Message{
		models.UserMessage("hi"),
		models.AssistantMessage("", call("a")),
	}
	if err := ValidateHistory(dangling); !errors.Is(err, ErrInvalidTranscript) {
		t.Errorf("ValidateHistory(dangling) error = %v, want ErrInvalidTranscript", err)
	}
}
