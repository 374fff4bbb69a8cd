// ABOUTME: Tests for Recipe helpers
// ABOUTME: Verifies embedding text assembly and derived fields
package models

import (
	"strings"
	"testing"
)

func TestRecipe_EmbeddingText(t *testing.T) {
	r := &Recipe{
		Title:       "Shakshuka",
		Description: "Eggs poached in spiced tomato sauce",
		Ingredients: []string{"eggs", "tomatoes", "cumin"},
		Tags:        []string{"breakfast", "vegetarian"},
	}

	text := r.EmbeddingText()

	for _, want := range []string{"Shakshuka", "spiced tomato", "Ingredients: eggs, tomatoes, cumin", "Tags: breakfast, vegetarian"} {
		if !strings.Contains(text, want) {
			t.Errorf("EmbeddingText() = %q, missing %q", text, want)
		}
	}

	bare := (&Recipe{Title: "Toast"}).EmbeddingText()
	if bare != "Toast" {
		t.Errorf("EmbeddingText() for title only = %q, want %q", bare, "Toast")
	}
}

func TestRecipe_Helpers(t *testing.T) {
	r := &Recipe{PrepMinutes: 10, CookMinutes: 25}
	if r.TotalMinutes() != 35 {
		t.Errorf("TotalMinutes() = %d, want 35", r.TotalMinutes())
	}
	if r.HasEmbedding() {
		t.Error("HasEmbedding() should be false without a vector")
	}
	r.Embedding = []float64{0.1}
	if !r.HasEmbedding() {
		t.Error("HasEmbedding() should be true with a vector")
	}
}

func TestRole_Valid(t *testing.T) {
	for _, r := range []Role{RoleSystem, RoleUser, RoleAssistant, RoleTool} {
		if !r.Valid() {
			t.Errorf("%q should be valid", r)
		}
	}
	if Role("narrator").Valid() {
		t.Error("unknown role should be invalid")
	}
}

func TestMessageConstructors(t *testing.T) {
	call := ToolCall{ID: "call_1", Name: "search_recipes", Arguments: `{"query":"soup"}`}
	asst := AssistantMessage("", call)
	if asst.Role != RoleAssistant || len(asst.ToolCalls) != 1 || asst.ToolCalls[0].ID != "call_1" {
		t.Errorf("AssistantMessage() = %+v", asst)
	}

	tool := ToolMessage("call_1", `{"status":"success"}`)
	if tool.Role != RoleTool || tool.ToolCallID != "call_1" {
		t.Errorf("ToolMessage() = %+v", tool)
	}

	if m := UserMessage("hi"); m.Role != RoleUser || m.Content != "hi" {
		t.Errorf("UserMessage() = %+v", m)
	}
	if m := SystemMessage("rules"); m.Role != RoleSystem || m.Content != "rules" {
		t.Errorf("SystemMessage() = %+v", m)
	}
}
