// ABOUTME: Request and response shapes for the conversational recipe agent
// ABOUTME: History and exclusions are owned by the client and round-tripped per call
package models

// TerminatedBy records which terminal state ended an agent run
type TerminatedBy string

const (
	TerminatedFinalAnswer    TerminatedBy = "final_answer"
	TerminatedIterationLimit TerminatedBy = "iteration_limit"
	TerminatedError          TerminatedBy = "error"
)

// Intent classifies what a turn ended up doing
type Intent string

const (
	IntentSearchRecipes Intent = "search_recipes"
	IntentGeneralChat   Intent = "general_chat"
)

// AgentRequest is one user turn sent to the agent
type AgentRequest struct {
	Message     string       `json:"message"`
	History     []Message    `json:"history,omitempty"`
	ExcludeIDs  []string     `json:"exclude_ids,omitempty"`
	UserProfile *UserProfile `json:"user_profile,omitempty"`
}

// AgentResponse is the outcome of one agent run
type AgentResponse struct {
	FinalText          string       `json:"final_text"`
	Intent             Intent       `json:"intent"`
	Recipes            []Recipe     `json:"recipes"`
	SuggestedRecipeIDs []string     `json:"suggested_recipe_ids"`
	IsFollowUp         bool         `json:"is_follow_up"`
	TerminatedBy       TerminatedBy `json:"terminated_by"`
	Iterations         int          `json:"iterations"`
}
