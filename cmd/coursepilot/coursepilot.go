// Package coursepilotcmder
package coursepilotcmder

import (
	askcmder "github.com/oceanlabs/coursepilot/cmd/coursepilot/ask"
	chatcmder "github.com/oceanlabs/coursepilot/cmd/coursepilot/chat"
	clearcmder "github.com/oceanlabs/coursepilot/cmd/coursepilot/clear"
	configcmder "github.com/oceanlabs/coursepilot/cmd/coursepilot/config"
	indexcmder "github.com/oceanlabs/coursepilot/cmd/coursepilot/index"
	servecmder "github.com/oceanlabs/coursepilot/cmd/coursepilot/serve"
	statuscmder "github.com/oceanlabs/coursepilot/cmd/coursepilot/status"
	"github.com/spf13/cobra"
)

const coursepilotLongDesc string = `Coursepilot answers questions about your course materials.

Index a directory of notes and transcripts, then ask questions:
  coursepilot index --corpus ./notes    Build the search index
  coursepilot ask "what is a monad?"    Ask a single question
  coursepilot chat                      Start an interactive session`

const coursepilotShortDesc string = "Coursepilot - Course Material Q&A"

func NewCoursepilotCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "coursepilot",
		Short: coursepilotShortDesc,
		Long:  coursepilotLongDesc,
	}

	// Global flags
	cmd.PersistentFlags().BoolP("debug", "d", false, "Enable debug logging")
	cmd.PersistentFlags().String("config-dir", "", "Override the .coursepilot/ directory")

	// Add subcommands
	cmd.AddCommand(indexcmder.NewIndexCmd())
	cmd.AddCommand(askcmder.NewAskCmd())
	cmd.AddCommand(chatcmder.NewChatCmd())
	cmd.AddCommand(statuscmder.NewStatusCmd())
	cmd.AddCommand(clearcmder.NewClearCmd())
	cmd.AddCommand(servecmder.NewServeCmd())
	cmd.AddCommand(configcmder.NewConfigCmd())

	return cmd
}
