// ABOUTME: Scripted fakes for the completion model and recipe search
// ABOUTME: Shared by the executor and agent loop tests
package agent

import (
	"context"
	"fmt"
	"sync"

	"github.com/harper/sous/internal/models"
	"github.com/harper/sous/internal/retriever"
)

type searchCall struct {
	query      string
	limit      int
	min        float64
	excludeIDs []string
}

type fakeSearcher struct {
	mu      sync.Mutex
	calls   []searchCall
	results map[string][]retriever.Result
	err     error
}

func (f *fakeSearcher) SearchByQuery(_ context.Context, query string, limit int, minSimilarity float64, excludeIDs []string) ([]retriever.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, searchCall{query: query, limit: limit, min: minSimilarity, excludeIDs: excludeIDs})
	if f.err != nil {
		return nil, f.err
	}
	return f.results[query], nil
}

func result(id, title string, score float64) retriever.Result {
	return retriever.Result{
		ID:      id,
		Payload: models.Recipe{ID: id, Title: title, Ingredients: []string{"salt"}},
		Score:   score,
	}
}

// scriptedCompleter returns replies in order; once exhausted it repeats the last one
type scriptedCompleter struct {
	replies  []models.Message
	errAt    int
	err      error
	requests [][]models.Message
	tools    [][]models.ToolDefinition
}

func (s *scriptedCompleter) Complete(_ context.Context, messages []models.Message, tools []models.ToolDefinition) (models.Message, error) {
	s.requests = append(s.requests, messages)
	s.tools = append(s.tools, tools)
	n := len(s.requests)
	if s.err != nil && n == s.errAt {
		return models.Message{}, s.err
	}
	if len(s.replies) == 0 {
		return models.Message{}, fmt.Errorf("no scripted reply")
	}
	if n > len(s.replies) {
		return s.replies[len(s.replies)-1], nil
	}
	return s.replies[n-1], nil
}

// loopingCompleter always asks for another search with a fresh call id
type loopingCompleter struct {
	calls int
}

func (l *loopingCompleter) Complete(_ context.Context, _ []models.Message, _ []models.ToolDefinition) (models.Message, error) {
	l.calls++
	return models.AssistantMessage("", models.ToolCall{
		ID:        fmt.Sprintf("call_%d", l.calls),
		Name:      SearchRecipesTool,
		Arguments: `{"query":"pasta"}`,
	}), nil
}

func searchCallMsg(id, args string) models.ToolCall {
	return models.ToolCall{ID: id, Name: SearchRecipesTool, Arguments: args}
}
