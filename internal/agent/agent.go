// ABOUTME: ConversationAgent runs the think/act loop between the model and the tools
// ABOUTME: Bounded by an iteration cap; completion failures end the turn with a safe message
package agent

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/sync/errgroup"

	"github.com/harper/sous/internal/metrics"
	"github.com/harper/sous/internal/models"
)

// DefaultMaxIterations caps model round trips per turn
const DefaultMaxIterations = 5

// maxParallelTools bounds concurrent tool calls within one step
const maxParallelTools = 4

// Canned replies for the non-answer terminal states
const (
	IterationLimitText = "I'm thinking too hard about this one. Could you rephrase or narrow down what you're looking for?"
	ErrorText          = "Sorry, I'm having trouble reaching the kitchen right now. Please try again in a moment."
)

// ErrEmptyMessage is returned when the request carries no user text
var ErrEmptyMessage = errors.New("message is required")

// Completer is the chat model collaborator
type Completer interface {
	Complete(ctx context.Context, messages []models.Message, tools []models.ToolDefinition) (models.Message, error)
}

// Options configure an Agent
type Options struct {
	// MaxIterations <= 0 uses DefaultMaxIterations; the cap cannot be disabled
	MaxIterations int
	// ParallelToolCalls runs the calls of one step concurrently
	ParallelToolCalls bool
	Logger            *slog.Logger
	Metrics           *metrics.Recorder
}

// Agent is safe for concurrent use; all per-turn state lives in Process
type Agent struct {
	completer     Completer
	tools         *ToolExecutor
	maxIterations int
	parallel      bool
	logger        *slog.Logger
	metrics       *metrics.Recorder
}

// New creates an Agent
func New(completer Completer, tools *ToolExecutor, opts Options) *Agent {
	if opts.MaxIterations <= 0 {
		opts.MaxIterations = DefaultMaxIterations
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Agent{
		completer:     completer,
		tools:         tools,
		maxIterations: opts.MaxIterations,
		parallel:      opts.ParallelToolCalls,
		logger:        opts.Logger,
		metrics:       opts.Metrics,
	}
}

// MaxIterations returns the configured cap
func (a *Agent) MaxIterations() int {
	return a.maxIterations
}

// turn is the state owned by one Process call
type turn struct {
	transcript *Transcript
	excludeIDs []string
	collected  []models.Recipe
	seen       map[string]bool
	iterations int
}

func (t *turn) collect(recipes []models.Recipe) {
	for _, r := range recipes {
		if t.seen[r.ID] {
			continue
		}
		t.seen[r.ID] = true
		t.collected = append(t.collected, r)
	}
}

// Process runs one user turn. Only invalid requests return an error; model and
// tool failures are reported through TerminatedBy.
func (a *Agent) Process(ctx context.Context, req models.AgentRequest) (*models.AgentResponse, error) {
	message := strings.TrimSpace(req.Message)
	if message == "" {
		return nil, ErrEmptyMessage
	}

	ctx, span := otel.Tracer("sous/agent").Start(ctx, "agent.process")
	defer span.End()

	t := &turn{
		transcript: NewTranscript(),
		excludeIDs: mergeIDs(req.ExcludeIDs),
		seen:       make(map[string]bool),
	}

	if err := a.seed(t, req.History, message, req.UserProfile); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	finalText, terminatedBy := a.loop(ctx, t)

	resp := &models.AgentResponse{
		FinalText:          finalText,
		Intent:             models.IntentGeneralChat,
		Recipes:            []models.Recipe{},
		SuggestedRecipeIDs: []string{},
		IsFollowUp:         len(t.excludeIDs) > 0,
		TerminatedBy:       terminatedBy,
		Iterations:         t.iterations,
	}
	if terminatedBy != models.TerminatedError && len(t.collected) > 0 {
		resp.Intent = models.IntentSearchRecipes
		resp.Recipes = t.collected
		for _, r := range t.collected {
			resp.SuggestedRecipeIDs = append(resp.SuggestedRecipeIDs, r.ID)
		}
	}

	span.SetAttributes(
		attribute.String("agent.terminated_by", string(terminatedBy)),
		attribute.Int("agent.iterations", t.iterations),
		attribute.Int("agent.recipes", len(resp.Recipes)),
	)
	a.metrics.ObserveTurn(string(terminatedBy), t.iterations)
	a.logger.Info("agent turn complete",
		"terminated_by", terminatedBy,
		"iterations", t.iterations,
		"recipes", len(resp.Recipes),
		"follow_up", resp.IsFollowUp)

	return resp, nil
}

// seed builds [system, ...history, user]. The system prompt is rebuilt every turn,
// so system messages in the caller's history are dropped.
func (a *Agent) seed(t *turn, history []models.Message, message string, profile *models.UserProfile) error {
	if err := t.transcript.Append(models.SystemMessage(BuildSystemPrompt(profile, t.excludeIDs))); err != nil {
		return err
	}

	for i, msg := range history {
		if msg.Role == models.RoleSystem {
			continue
		}
		if err := t.transcript.Append(msg); err != nil {
			return fmt.Errorf("history message %d: %w", i, err)
		}
	}

	if err := t.transcript.Append(models.UserMessage(message)); err != nil {
		return fmt.Errorf("history: %w", err)
	}
	return nil
}

func (a *Agent) loop(ctx context.Context, t *turn) (string, models.TerminatedBy) {
	defs := a.tools.Definitions()

	for t.iterations < a.maxIterations {
		t.iterations++

		reply, err := a.think(ctx, t, defs)
		if err != nil {
			a.logger.Error("agent turn failed", "iteration", t.iterations, "error", err)
			return ErrorText, models.TerminatedError
		}

		if len(reply.ToolCalls) == 0 {
			return reply.Content, models.TerminatedFinalAnswer
		}

		if err := a.act(ctx, t, reply.ToolCalls); err != nil {
			a.logger.Error("agent turn failed", "iteration", t.iterations, "error", err)
			return ErrorText, models.TerminatedError
		}
	}

	a.logger.Warn("iteration limit reached", "max_iterations", a.maxIterations)
	return IterationLimitText, models.TerminatedIterationLimit
}

func (a *Agent) think(ctx context.Context, t *turn, defs []models.ToolDefinition) (models.Message, error) {
	ctx, span := otel.Tracer("sous/agent").Start(ctx, "agent.think")
	defer span.End()
	span.SetAttributes(attribute.Int("agent.iteration", t.iterations))

	reply, err := a.completer.Complete(ctx, t.transcript.Messages(), defs)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return models.Message{}, err
	}

	reply.Role = models.RoleAssistant
	reply.ToolCallID = ""
	if err := t.transcript.Append(reply); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return models.Message{}, err
	}

	span.SetAttributes(attribute.Int("agent.tool_calls", len(reply.ToolCalls)))
	return reply, nil
}

// act runs every call and appends observations in the order the calls were issued
func (a *Agent) act(ctx context.Context, t *turn, calls []models.ToolCall) error {
	outcomes := make([]ToolOutcome, len(calls))

	if a.parallel && len(calls) > 1 {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(maxParallelTools)
		for i, call := range calls {
			g.Go(func() error {
				outcomes[i] = a.tools.Execute(gctx, call, t.excludeIDs)
				return nil
			})
		}
		_ = g.Wait()
	} else {
		for i, call := range calls {
			outcomes[i] = a.tools.Execute(ctx, call, t.excludeIDs)
		}
	}

	for i, call := range calls {
		if err := t.transcript.Append(models.ToolMessage(call.ID, outcomes[i].Content)); err != nil {
			return err
		}
		t.collect(outcomes[i].Recipes)
	}
	return nil
}
