package cmd

import (
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var errorLabel = color.New(color.FgRed)

// rootCmd represents the base command for the wbxmeet application
var rootCmd = &cobra.Command{
	Use:   "wbxmeet",
	Short: "Schedules and manages Webex meetings through the XML API",
	Long: `wbxmeet talks to the Webex Meetings XML API. It authenticates with a
password, an access token or a cached OAuth token and then creates, lists,
inspects and deletes meetings.

It can run as:
  - A standalone CLI tool (default runs the sample flow)
  - An OAuth login web app that caches a token for later use
  - An MCP (Model Context Protocol) server for AI assistants

Settings are read from .env, an optional YAML file and the environment:
SITENAME, WEBEXID, PASSWORD or ACCESS_TOKEN, and CLIENT_ID, CLIENT_SECRET
for OAuth.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// version will be set by main
var version = "dev"

// SetVersion sets the version for the root command
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}

// Execute is the main entry point for the CLI application
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "wbxmeet version %s\n" .Version}}`)

	// If no subcommand is provided, run the flow command by default
	if len(os.Args) == 1 {
		os.Args = append(os.Args, "flow")
	}

	if err := rootCmd.Execute(); err != nil {
		_, _ = errorLabel.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	addGlobalFlags(rootCmd)

	rootCmd.AddCommand(newFlowCmd())
	rootCmd.AddCommand(newUserCmd())
	rootCmd.AddCommand(newMeetingCmd())
	rootCmd.AddCommand(newOAuthCmd())
	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newGenerateDocsCmd())
}
