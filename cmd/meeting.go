package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/teemow/wbxmeet/internal/meetings"
)

func newMeetingCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "meeting",
		Short: "Create, list, show or delete meetings",
	}

	cmd.AddCommand(newMeetingCreateCmd())
	cmd.AddCommand(newMeetingListCmd())
	cmd.AddCommand(newMeetingGetCmd())
	cmd.AddCommand(newMeetingDeleteCmd())
	return cmd
}

func newMeetingCreateCmd() *cobra.Command {
	var (
		name        string
		meetingType string
		start       string
		duration    time.Duration
		agenda      string
		password    string
		timeZoneID  int
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Schedule a meeting",
		Long: `Schedule a meeting hosted by the authenticated user. Without --type the
user's first meeting type is used. --start takes RFC3339, converted into
--time-zone, or "MM/DD/YYYY HH:MM:SS" as wall-clock time of --time-zone. It
defaults to five minutes from now.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			startAt := time.Now().Add(flowStartDelay)
			if start != "" {
				t, err := meetings.ParseTimeInputIn(start, timeZoneID)
				if err != nil {
					return fmt.Errorf("invalid --start: %w", err)
				}
				startAt = t
			}

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
			if meetingType == "" {
				u, err := client.GetUser(ctx, s)
				if err != nil {
					return err
				}
				if meetingType = u.FirstMeetingType(); meetingType == "" {
					return fmt.Errorf("user %s has no meeting types, pass --type", s.WebExID())
				}
			}

			in := meetings.NewCreateMeetingInput(name, meetingType, startAt)
			in.Duration = duration
			in.Agenda = agenda
			in.MeetingPassword = password
			if timeZoneID > 0 {
				in.TimeZoneID = timeZoneID
			}

			created, err := client.CreateMeeting(ctx, s, in)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Meeting Key: %s\n", created.MeetingKey)
			fmt.Fprintf(out, "Start Time:  %s\n", meetings.FormatDateIn(startAt, in.TimeZoneID))
			if created.AttendeeICalURL != "" {
				fmt.Fprintf(out, "iCalendar:   %s\n", created.AttendeeICalURL)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Meeting name (required)")
	cmd.Flags().StringVar(&meetingType, "type", "", "Meeting type ID (default: the user's first type)")
	cmd.Flags().StringVar(&start, "start", "", "Start time (default: five minutes from now)")
	cmd.Flags().DurationVar(&duration, "duration", meetings.DefaultDuration, "Meeting length")
	cmd.Flags().StringVar(&agenda, "agenda", "", "Agenda")
	cmd.Flags().StringVar(&password, "password", "", "Meeting password")
	cmd.Flags().IntVar(&timeZoneID, "time-zone", meetings.DefaultTimeZoneID, "Webex time zone ID of --start")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func newMeetingListCmd() *cobra.Command {
	var (
		in         meetings.ListMeetingsInput
		from, to   string
		timeZoneID int
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List upcoming meetings",
		Long: `List meetings hosted by the authenticated user (or --host) starting from
now (or --from), ordered by start time.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var err error
			if from != "" {
				if in.StartDateStart, err = meetings.ParseTimeInputIn(from, timeZoneID); err != nil {
					return fmt.Errorf("invalid --from: %w", err)
				}
			}
			if to != "" {
				if in.StartDateEnd, err = meetings.ParseTimeInputIn(to, timeZoneID); err != nil {
					return fmt.Errorf("invalid --to: %w", err)
				}
			}
			in.TimeZoneID = timeZoneID

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
			list, err := client.ListMeetings(ctx, s, in)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			printMeetingTable(out, list.Meetings)
			if list.Total > list.Returned {
				fmt.Fprintf(out, "\n%d of %d meetings, next page: --start-from %d\n", list.Returned, list.Total, list.StartFrom+list.Returned)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&in.MaximumNum, "max", meetings.DefaultMaximumNum, "Maximum number of meetings")
	cmd.Flags().IntVar(&in.StartFrom, "start-from", 0, "1-based index of the first record, for paging")
	cmd.Flags().StringVar(&in.OrderBy, "order-by", meetings.DefaultOrderBy, "Sort field")
	cmd.Flags().StringVar(&in.OrderAD, "order", meetings.DefaultOrderDirection, "ASC or DESC")
	cmd.Flags().StringVar(&in.HostWebExID, "host", "", "Host WebEx ID (default: the authenticated user)")
	cmd.Flags().StringVar(&from, "from", "", "Earliest start time (default: now)")
	cmd.Flags().StringVar(&to, "to", "", "Latest start time")
	cmd.Flags().IntVar(&timeZoneID, "time-zone", meetings.DefaultTimeZoneID, "Webex time zone ID of --from and --to")
	return cmd
}

func newMeetingGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get MEETING_KEY",
		Short: "Show a meeting",
		Args:  cobra.ExactArgs(1),
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
			m, err := client.GetMeeting(ctx, s, args[0])
			if err != nil {
				return err
			}
			printMeetingDetails(cmd.OutOrStdout(), m)
			return nil
		},
	}
}

func newMeetingDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete MEETING_KEY",
		Short: "Delete a meeting",
		Args:  cobra.ExactArgs(1),
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
			if err := client.DeleteMeeting(ctx, s, args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Meeting %s deleted\n", args[0])
			return nil
		},
	}
}
