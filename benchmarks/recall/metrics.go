// ABOUTME: Scoring for recall benchmarks: recipe recall, no-repeat, faithfulness
// ABOUTME: Deterministic comparisons against each scenario's ground truth

package recall

import (
	"fmt"
	"strings"

	"github.com/harper/sous/internal/models"
)

// passThreshold is the minimum for every score in a passing scenario
const passThreshold = 0.9

// Transcript is what a scenario run produced, turn by turn
type Transcript struct {
	Responses []*models.AgentResponse
}

// Final returns the last turn's response, or nil
func (t Transcript) Final() *models.AgentResponse {
	if len(t.Responses) == 0 {
		return nil
	}
	return t.Responses[len(t.Responses)-1]
}

// Scorer computes benchmark scores
type Scorer struct{}

// NewScorer creates a new scorer
func NewScorer() *Scorer {
	return &Scorer{}
}

// CalculateRecall is the share of expected titles suggested in any turn
func (s *Scorer) CalculateRecall(transcript Transcript, expectedTitles []string) (float64, string) {
	if len(expectedTitles) == 0 {
		return 1.0, "No recipes expected"
	}

	suggested := make(map[string]bool)
	for _, resp := range transcript.Responses {
		for _, r := range resp.Recipes {
			suggested[strings.ToLower(r.Title)] = true
		}
	}

	missing := []string{}
	for _, title := range expectedTitles {
		if !suggested[strings.ToLower(title)] {
			missing = append(missing, title)
		}
	}

	recall := float64(len(expectedTitles)-len(missing)) / float64(len(expectedTitles))
	if len(missing) == 0 {
		return 1.0, "Perfect recall - all expected recipes suggested"
	}
	return recall, fmt.Sprintf("Partial recall (%.2f) - missing recipes: %v", recall, missing)
}

// CalculateNoRepeat is the share of later-turn suggestions that were new
func (s *Scorer) CalculateNoRepeat(transcript Transcript) (float64, string) {
	shown := make(map[string]bool)
	later, repeated := 0, []string{}

	for i, resp := range transcript.Responses {
		for _, id := range resp.SuggestedRecipeIDs {
			if i > 0 {
				later++
				if shown[id] {
					repeated = append(repeated, id)
				}
			}
		}
		for _, id := range resp.SuggestedRecipeIDs {
			shown[id] = true
		}
	}

	if later == 0 || len(repeated) == 0 {
		return 1.0, "No repeated recipes"
	}
	score := float64(later-len(repeated)) / float64(later)
	return score, fmt.Sprintf("Repeated recipes in follow-up turns: %v", repeated)
}

// CalculateFaithfulness checks the final response for expected and forbidden strings
func (s *Scorer) CalculateFaithfulness(response string, expectedInResponse, forbiddenInResponse []string) (float64, string) {
	responseUpper := strings.ToUpper(response)

	missingItems := []string{}
	for _, expected := range expectedInResponse {
		if !strings.Contains(responseUpper, strings.ToUpper(expected)) {
			missingItems = append(missingItems, expected)
		}
	}

	forbiddenFound := []string{}
	for _, forbidden := range forbiddenInResponse {
		if strings.Contains(responseUpper, strings.ToUpper(forbidden)) {
			forbiddenFound = append(forbiddenFound, forbidden)
		}
	}

	switch {
	case len(missingItems) == 0 && len(forbiddenFound) == 0:
		return 1.0, "Response matches expected ground truth"
	case len(missingItems) > 0 && len(forbiddenFound) > 0:
		return 0.0, fmt.Sprintf("Missing expected items: %v, forbidden items found: %v", missingItems, forbiddenFound)
	case len(missingItems) > 0:
		return 0.5, fmt.Sprintf("Missing expected items: %v", missingItems)
	}
	return 0.5, fmt.Sprintf("Forbidden items found: %v", forbiddenFound)
}

// Evaluate scores a finished scenario run
func (s *Scorer) Evaluate(scenario Scenario, transcript Transcript) Result {
	truth := scenario.GroundTruth
	final := transcript.Final()

	finalText := ""
	intent := models.Intent("")
	if final != nil {
		finalText = final.FinalText
		intent = final.Intent
	}

	recall, recallDetail := s.CalculateRecall(transcript, truth.ExpectedRecipes)
	faithfulness, faithfulnessDetail := s.CalculateFaithfulness(finalText, truth.ExpectedInResponse, truth.ForbiddenInResponse)

	noRepeat, noRepeatDetail := 1.0, "Not checked"
	if truth.NoRepeat {
		noRepeat, noRepeatDetail = s.CalculateNoRepeat(transcript)
	}

	intentMatched := truth.ExpectedIntent == "" || truth.ExpectedIntent == intent

	overall := (recall + faithfulness + noRepeat) / 3.0

	status := "FAIL"
	if recall >= passThreshold && faithfulness >= passThreshold && noRepeat >= passThreshold && intentMatched {
		status = "PASS"
	}

	return Result{
		ScenarioID:    scenario.ID,
		ScenarioName:  scenario.Name,
		RecallScore:   recall,
		NoRepeatScore: noRepeat,
		Faithfulness:  faithfulness,
		IntentMatched: intentMatched,
		OverallScore:  overall,
		Status:        status,
		Details: map[string]interface{}{
			"recall_detail":       recallDetail,
			"no_repeat_detail":    noRepeatDetail,
			"faithfulness_detail": faithfulnessDetail,
			"final_intent":        intent,
			"final_response":      finalText[:min(200, len(finalText))],
			"turns":               len(transcript.Responses),
		},
	}
}
