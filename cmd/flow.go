package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/teemow/wbxmeet/internal/logging"
	"github.com/teemow/wbxmeet/internal/meetings"
)

// Settings of the meeting the flow creates.
const (
	flowConfName        = "Test Meeting"
	flowAgenda          = "Test meeting creation"
	flowMeetingPassword = "C!sco123"
	flowTelephony       = "Call 1-800-555-1234, Passcode 98765"
	flowStartDelay      = 300 * time.Second
	flowListSize        = 10
)

func newFlowCmd() *cobra.Command {
	var pause bool

	cmd := &cobra.Command{
		Use:   "flow",
		Short: "Run the sample sequence against the configured site",
		Long: `Authenticate, look up the first meeting type of the user, create a
meeting five minutes from now, list upcoming meetings, show the details of
the next one and delete it.

The sequence stops at the first error. Nothing created before the error is
rolled back.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(globals, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			client, err := a.meetingsClient("cli")
			if err != nil {
				return err
			}

			f := &flow{
				out:    cmd.OutOrStdout(),
				in:     bufio.NewReader(cmd.InOrStdin()),
				pause:  pause,
				client: client,
				now:    time.Now,
			}
			return f.run(commandContext(cmd), func(ctx context.Context) (meetings.Session, error) {
				return a.authenticate(ctx, client)
			})
		},
	}

	cmd.Flags().BoolVar(&pause, "pause", false, "Wait for Enter between steps")
	return cmd
}

// flow runs the sample sequence and prints each step.
type flow struct {
	out    io.Writer
	in     *bufio.Reader
	pause  bool
	client *meetings.Client
	now    func() time.Time
}

func (f *flow) run(ctx context.Context, open func(context.Context) (meetings.Session, error)) error {
	s, err := open(ctx)
	if err != nil {
		return err
	}
	fmt.Fprint(f.out, "\nSession Ticket:\n\n")
	fmt.Fprintln(f.out, logging.SanitizeToken(s.Ticket()))
	fmt.Fprintln(f.out)
	f.wait()

	u, err := f.client.GetUser(ctx, s)
	if err != nil {
		return err
	}
	meetingType := u.FirstMeetingType()
	if meetingType == "" {
		return fmt.Errorf("user %s has no meeting types", s.WebExID())
	}
	fmt.Fprintf(f.out, "\nFirst meetingType available: %s\n\n", meetingType)
	f.wait()

	in := meetings.NewCreateMeetingInput(flowConfName, meetingType, f.now().Add(flowStartDelay))
	in.Agenda = flowAgenda
	in.MeetingPassword = flowMeetingPassword
	in.TelephonyDescription = flowTelephony
	created, err := f.client.CreateMeeting(ctx, s, in)
	if err != nil {
		return err
	}
	fmt.Fprint(f.out, "\nMeeting Created:\n\n")
	fmt.Fprintf(f.out, "    Meeting Key: %s\n\n", created.MeetingKey)
	f.wait()

	list, err := f.client.ListMeetings(ctx, s, meetings.ListMeetingsInput{
		MaximumNum:     flowListSize,
		StartDateStart: f.now(),
	})
	if err != nil {
		return err
	}
	fmt.Fprint(f.out, "\nUpcoming Meetings:\n\n")
	printMeetingTable(f.out, list.Meetings)
	fmt.Fprintln(f.out)
	if len(list.Meetings) == 0 {
		return errors.New("no upcoming meetings found")
	}
	f.wait()

	next, err := f.client.GetMeeting(ctx, s, list.Meetings[0].MeetingKey)
	if err != nil {
		return err
	}
	fmt.Fprint(f.out, "\nNext Meeting Details:\n\n")
	printMeetingDetails(f.out, next)
	fmt.Fprintln(f.out)
	f.wait()

	if err := f.client.DeleteMeeting(ctx, s, next.MeetingKey); err != nil {
		return err
	}
	fmt.Fprint(f.out, "\nNext Meeting Delete: SUCCESS\n\n")
	return nil
}

func (f *flow) wait() {
	if !f.pause {
		return
	}
	fmt.Fprint(f.out, "Press Enter to continue...")
	_, _ = f.in.ReadString('\n')
}

// printMeetingTable prints start time, name and key in fixed-width columns.
func printMeetingTable(w io.Writer, list []meetings.MeetingSummary) {
	const row = "%-22s%-25s%-25s\n"
	fmt.Fprintf(w, row, "Start Time", "Meeting Name", "Meeting Key")
	fmt.Fprintf(w, row, "----------", "------------", "-----------")
	for _, m := range list {
		fmt.Fprintf(w, row, m.StartDate, m.ConfName, m.MeetingKey)
	}
}

func printMeetingDetails(w io.Writer, m *meetings.Meeting) {
	fmt.Fprintf(w, "    Meeting Name: %s\n", m.ConfName)
	fmt.Fprintf(w, "     Meeting Key: %s\n", m.MeetingKey)
	fmt.Fprintf(w, "      Start Time: %s\n", m.StartDate)
	fmt.Fprintf(w, "       Join Link: %s\n", m.MeetingLink)
	fmt.Fprintf(w, "        Password: %s\n", m.MeetingPassword)
}
