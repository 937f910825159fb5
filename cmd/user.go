package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newUserCmd() *cobra.Command {
	var rawXML bool

	cmd := &cobra.Command{
		Use:   "user",
		Short: "Show the authenticated user",
		Long: `Authenticate and print the user's profile and the meeting types they may
schedule. --xml prints the complete GetUser response instead.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(globals, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			ctx := commandContext(cmd)
			client, err := a.meetingsClient("cli")
			if err != nil {
				return err
			}

			s, err := a.authenticate(ctx, client)
			if err != nil {
				return err
			}
			u, err := client.GetUser(ctx, s)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if rawXML {
				fmt.Fprintln(out, u.Document.Indent())
				return nil
			}
			fmt.Fprintf(out, "WebEx ID:      %s\n", u.WebExID)
			fmt.Fprintf(out, "Name:          %s\n", strings.TrimSpace(u.FirstName+" "+u.LastName))
			fmt.Fprintf(out, "Email:         %s\n", u.Email)
			fmt.Fprintf(out, "Time Zone ID:  %s\n", u.TimeZoneID)
			fmt.Fprintf(out, "Meeting Types: %s\n", strings.Join(u.MeetingTypes, ", "))
			return nil
		},
	}

	cmd.Flags().BoolVar(&rawXML, "xml", false, "Print the raw GetUser response")
	return cmd
}
