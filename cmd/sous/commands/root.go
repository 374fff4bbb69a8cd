// ABOUTME: Root command for the sous CLI with global flags
// ABOUTME: Wires every subcommand and enforces verbose/quiet exclusivity
package commands

import (
	"github.com/spf13/cobra"
)

var (
	verbose      bool
	quiet        bool
	outputFormat string
)

const banner = `
 ███████  ██████  ██    ██ ███████
 ██      ██    ██ ██    ██ ██
 ███████ ██    ██ ██    ██ ███████
      ██ ██    ██ ██    ██      ██
 ███████  ██████   ██████  ███████
`

// NewRootCmd builds the root command and its subcommands
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sous",
		Short: "Conversational recipe assistant",
		Long: banner + `
Sous finds recipes in your local corpus by meaning rather than keywords
and chats about them through a tool-using assistant. Follow-up requests
never repeat recipes already shown in the same session.

Recipes and profiles live in a SQLite database under your XDG data
directory. Semantic features need OPENAI_API_KEY (a .env file works).`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")
	cmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Suppress informational output")
	cmd.PersistentFlags().StringVar(&outputFormat, "format", "auto", "Output format (auto, table, json)")
	cmd.MarkFlagsMutuallyExclusive("verbose", "quiet")

	cmd.AddCommand(
		NewChatCmd(),
		NewSearchCmd(),
		NewAddCmd(),
		NewImportCmd(),
		NewExportCmd(),
		NewReindexCmd(),
		NewListCmd(),
		NewRemoveCmd(),
		NewProfileCmd(),
		NewMCPCmd(),
		NewVersionCmd(),
	)

	return cmd
}

// Execute runs the root command
func Execute() error {
	return NewRootCmd().Execute()
}
