// ABOUTME: CLI command to chat with the recipe assistant
// ABOUTME: Optionally round-trips history and shown recipe ids through a session file
package commands

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/harper/sous/internal/models"
)

var (
	chatSession string
	chatUser    string
	chatReset   bool
)

// Session is the client-held conversation state carried between turns
type Session struct {
	History    []models.Message `json:"history"`
	ExcludeIDs []string         `json:"exclude_ids"`
}

// NewChatCmd creates chat command
func NewChatCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chat [message]",
		Short: "Ask the recipe assistant",
		Long: `Send one message to the recipe assistant.

With --session the conversation history and the ids of recipes already
shown are stored in a JSON file, so a follow-up like "something else"
will not repeat earlier suggestions.

Examples:
  sous chat "something warm with chickpeas"
  sous chat --session dinner.json "high protein, under 30 minutes"
  sous chat --session dinner.json "show me something else"
  echo "vegan dessert" | sous chat`,
		Args: cobra.MaximumNArgs(1),
		RunE: runChat,
	}

	cmd.Flags().StringVar(&chatSession, "session", "", "Session file for history and shown recipes")
	cmd.Flags().StringVar(&chatUser, "user", "local", "User id whose profile personalizes answers")
	cmd.Flags().BoolVar(&chatReset, "reset", false, "Start the session over")

	return cmd
}

func runChat(cmd *cobra.Command, args []string) error {
	message, err := readMessage(cmd, args)
	if err != nil {
		return err
	}

	session := &Session{}
	if chatSession != "" && !chatReset {
		session, err = loadSession(chatSession)
		if err != nil {
			return err
		}
	}

	a, err := openApp(true)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	profile, err := a.store.Profiles().Get(cmd.Context(), chatUser)
	if err != nil {
		if verbose {
			fmt.Fprintf(os.Stderr, "Warning: Could not load profile: %v\n", err)
		}
		profile = nil
	}

	resp, err := a.agent(nil).Process(cmd.Context(), models.AgentRequest{
		Message:     message,
		History:     session.History,
		ExcludeIDs:  session.ExcludeIDs,
		UserProfile: profile,
	})
	if err != nil {
		return fmt.Errorf("asking assistant: %w", err)
	}

	if chatSession != "" {
		session.Apply(message, resp)
		if err := saveSession(chatSession, session); err != nil {
			return err
		}
	}

	if outputFormat == "json" {
		jsonData, err := json.MarshalIndent(resp, "", "  ")
		if err != nil {
			return fmt.Errorf("marshaling JSON: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s\n", jsonData)
		return nil
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s\n", resp.FinalText)
	if len(resp.Recipes) > 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "\n")
		for _, recipe := range resp.Recipes {
			fmt.Fprintf(cmd.OutOrStdout(), "  • %s (%s)\n", recipe.Title, recipe.ID)
		}
	}
	if verbose {
		fmt.Fprintf(cmd.OutOrStdout(), "\n[%s after %d step(s)]\n", resp.TerminatedBy, resp.Iterations)
	}

	return nil
}

// Apply folds one completed turn into the session: the user/assistant pair
// joins the history and suggested ids join the exclusions.
func (s *Session) Apply(message string, resp *models.AgentResponse) {
	s.History = append(s.History,
		models.Message{Role: models.RoleUser, Content: message},
		models.Message{Role: models.RoleAssistant, Content: resp.FinalText},
	)
	for _, id := range resp.SuggestedRecipeIDs {
		if !containsString(s.ExcludeIDs, id) {
			s.ExcludeIDs = append(s.ExcludeIDs, id)
		}
	}
}

func loadSession(path string) (*Session, error) {
	// #nosec G304 -- session path is provided by the user
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return &Session{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading session: %w", err)
	}

	var session Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("parsing session %s: %w", path, err)
	}
	return &session, nil
}

func saveSession(path string, session *Session) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("creating session directory: %w", err)
		}
	}

	data, err := json.MarshalIndent(session, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling session: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("writing session: %w", err)
	}
	return nil
}

// readMessage takes the message from args or, failing that, stdin
func readMessage(cmd *cobra.Command, args []string) (string, error) {
	var text string
	if len(args) > 0 {
		text = args[0]
	} else {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", fmt.Errorf("reading stdin: %w", err)
		}
		text = string(data)
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return "", fmt.Errorf("no message provided")
	}
	return text, nil
}
