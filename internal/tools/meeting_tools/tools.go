package meeting_tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/wbxmeet/internal/meetings"
	"github.com/teemow/wbxmeet/internal/server"
	"github.com/teemow/wbxmeet/internal/tools/batch"
	"github.com/teemow/wbxmeet/internal/tools/common"
	"github.com/teemow/wbxmeet/internal/webexauth"
)

// DefaultStartDelay is how far in the future webex_create_meeting schedules
// a meeting when no start is given.
const DefaultStartDelay = 5 * time.Minute

const accountDescription = "Account name (default: 'default'). Named accounts require OAuth mode."

// RegisterMeetingTools registers the Webex meeting tools with the MCP server.
func RegisterMeetingTools(s *mcpserver.MCPServer, sc *server.ServerContext, readOnly bool) error {
	getUserTool := mcp.NewTool("webex_get_user",
		mcp.WithDescription("Get the Webex user profile of the session user, including the meeting types they may schedule"),
		mcp.WithString("account",
			mcp.Description(accountDescription),
		),
	)
	s.AddTool(getUserTool, common.InstrumentedToolHandler("webex_get_user", true, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleGetUser(ctx, request, sc)
		}))

	listMeetingsTool := mcp.NewTool("webex_list_meetings",
		mcp.WithDescription("List Webex meetings, by default the next 10 meetings hosted by the session user ordered by start time"),
		mcp.WithString("account",
			mcp.Description(accountDescription),
		),
		mcp.WithNumber("max_results",
			mcp.Description("Maximum number of meetings to return (default: 10)"),
		),
		mcp.WithNumber("start_from",
			mcp.Description("1-based index of the first record to return, for paging"),
		),
		mcp.WithString("order_by",
			mcp.Description("Sort field, e.g. STARTTIME, CONFNAME, HOSTWEBEXID (default: STARTTIME)"),
		),
		mcp.WithString("order_direction",
			mcp.Description("ASC or DESC (default: ASC)"),
		),
		mcp.WithString("host",
			mcp.Description("WebEx ID of the host (default: the session user)"),
		),
		mcp.WithString("from",
			mcp.Description("Earliest start time, RFC3339 or MM/DD/YYYY HH:MM:SS (default: now)"),
		),
		mcp.WithString("to",
			mcp.Description("Latest start time, RFC3339 or MM/DD/YYYY HH:MM:SS"),
		),
		mcp.WithNumber("time_zone_id",
			mcp.Description("Webex time zone ID the date range is expressed in (default: 4, GMT-08:00 Pacific)"),
		),
	)
	s.AddTool(listMeetingsTool, common.InstrumentedToolHandler("webex_list_meetings", true, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleListMeetings(ctx, request, sc)
		}))

	getMeetingTool := mcp.NewTool("webex_get_meeting",
		mcp.WithDescription("Get details of a Webex meeting, including the join link and password"),
		mcp.WithString("account",
			mcp.Description(accountDescription),
		),
		mcp.WithString("meeting_key",
			mcp.Required(),
			mcp.Description("Meeting key as returned by webex_list_meetings or webex_create_meeting"),
		),
	)
	s.AddTool(getMeetingTool, common.InstrumentedToolHandler("webex_get_meeting", true, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleGetMeeting(ctx, request, sc)
		}))

	if readOnly {
		return nil
	}

	createMeetingTool := mcp.NewTool("webex_create_meeting",
		mcp.WithDescription("Schedule a Webex meeting hosted by the session user"),
		mcp.WithString("account",
			mcp.Description(accountDescription),
		),
		mcp.WithString("conf_name",
			mcp.Required(),
			mcp.Description("Meeting name"),
		),
		mcp.WithString("meeting_type",
			mcp.Description("Meeting type ID (default: the first type of the session user)"),
		),
		mcp.WithString("start",
			mcp.Description("Start time, RFC3339 or MM/DD/YYYY HH:MM:SS (default: five minutes from now)"),
		),
		mcp.WithNumber("duration_minutes",
			mcp.Description("Duration in minutes (default: 20)"),
		),
		mcp.WithString("agenda",
			mcp.Description("Meeting agenda"),
		),
		mcp.WithString("meeting_password",
			mcp.Description("Password attendees need to join"),
		),
		mcp.WithNumber("time_zone_id",
			mcp.Description("Webex time zone ID of the start time (default: 4, GMT-08:00 Pacific)"),
		),
	)
	s.AddTool(createMeetingTool, common.InstrumentedToolHandler("webex_create_meeting", false, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleCreateMeeting(ctx, request, sc)
		}))

	deleteMeetingTool := mcp.NewTool("webex_delete_meeting",
		mcp.WithDescription("Delete one or more Webex meetings"),
		mcp.WithString("account",
			mcp.Description(accountDescription),
		),
		mcp.WithString("meeting_key",
			mcp.Required(),
			mcp.Description("Meeting key (string) or array of meeting keys to delete"),
		),
	)
	s.AddTool(deleteMeetingTool, common.InstrumentedToolHandler("webex_delete_meeting", false, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleDeleteMeeting(ctx, request, sc)
		}))

	return nil
}

// userView, meetingSummaryView and meetingView are the JSON shapes the
// tools return.
type userView struct {
	WebExID      string   `json:"webExId"`
	FirstName    string   `json:"firstName,omitempty"`
	LastName     string   `json:"lastName,omitempty"`
	Email        string   `json:"email,omitempty"`
	TimeZoneID   string   `json:"timeZoneId,omitempty"`
	MeetingTypes []string `json:"meetingTypes"`
}

type meetingSummaryView struct {
	MeetingKey  string `json:"meetingKey"`
	ConfName    string `json:"confName"`
	MeetingType string `json:"meetingType,omitempty"`
	HostWebExID string `json:"hostWebExId,omitempty"`
	StartDate   string `json:"startDate"`
	Duration    int    `json:"durationMinutes"`
	Status      string `json:"status,omitempty"`
}

type meetingListView struct {
	Total     int                  `json:"total"`
	Returned  int                  `json:"returned"`
	StartFrom int                  `json:"startFrom"`
	Meetings  []meetingSummaryView `json:"meetings"`
}

type meetingView struct {
	MeetingKey      string `json:"meetingKey"`
	ConfName        string `json:"confName"`
	MeetingType     string `json:"meetingType,omitempty"`
	Agenda          string `json:"agenda,omitempty"`
	HostWebExID     string `json:"hostWebExId,omitempty"`
	StartDate       string `json:"startDate"`
	Duration        int    `json:"durationMinutes"`
	TimeZoneID      string `json:"timeZoneId,omitempty"`
	MeetingLink     string `json:"meetingLink,omitempty"`
	MeetingPassword string `json:"meetingPassword,omitempty"`
	Status          string `json:"status,omitempty"`
}

type createdView struct {
	MeetingKey      string `json:"meetingKey"`
	ConfName        string `json:"confName"`
	MeetingType     string `json:"meetingType"`
	StartDate       string `json:"startDate"`
	HostICalURL     string `json:"hostICalendarUrl,omitempty"`
	AttendeeICalURL string `json:"attendeeICalendarUrl,omitempty"`
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to format result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

// call is the session a tool runs with. ctx carries the account so the
// OAuth transport picks its token.
type call struct {
	ctx     context.Context
	account string
	session meetings.Session
	sc      *server.ServerContext
}

func session(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (call, error) {
	account := common.GetAccountFromArgs(request.GetArguments())
	ctx = webexauth.WithAccount(ctx, account)
	s, err := sc.SessionForAccount(ctx, account)
	if err != nil {
		return call{}, err
	}
	return call{ctx: ctx, account: account, session: s, sc: sc}, nil
}

// failed drops a ticket the service rejected and passes err through.
func (c call) failed(err error) error {
	c.sc.InvalidateRejected(c.account, c.session, err)
	return err
}

func handleGetUser(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	c, err := session(ctx, request, sc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	u, err := sc.Meetings().GetUser(c.ctx, c.session)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to get user: %v", c.failed(err))), nil
	}

	view := userView{
		WebExID:      u.WebExID,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		Email:        u.Email,
		TimeZoneID:   u.TimeZoneID,
		MeetingTypes: u.MeetingTypes,
	}
	if view.MeetingTypes == nil {
		view.MeetingTypes = []string{}
	}
	return jsonResult(view)
}

func handleListMeetings(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	in := meetings.ListMeetingsInput{
		MaximumNum:  intArg(args, "max_results"),
		StartFrom:   intArg(args, "start_from"),
		OrderBy:     stringArg(args, "order_by"),
		OrderAD:     stringArg(args, "order_direction"),
		HostWebExID: stringArg(args, "host"),
		TimeZoneID:  intArg(args, "time_zone_id"),
	}
	var err error
	if in.StartDateStart, err = timeArg(args, "from", in.TimeZoneID); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if in.StartDateEnd, err = timeArg(args, "to", in.TimeZoneID); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	c, err := session(ctx, request, sc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	list, err := sc.Meetings().ListMeetings(c.ctx, c.session, in)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to list meetings: %v", c.failed(err))), nil
	}

	view := meetingListView{
		Total:     list.Total,
		Returned:  list.Returned,
		StartFrom: list.StartFrom,
		Meetings:  make([]meetingSummaryView, 0, len(list.Meetings)),
	}
	for _, m := range list.Meetings {
		view.Meetings = append(view.Meetings, meetingSummaryView{
			MeetingKey:  m.MeetingKey,
			ConfName:    m.ConfName,
			MeetingType: m.MeetingType,
			HostWebExID: m.HostWebExID,
			StartDate:   m.StartDate,
			Duration:    m.Duration,
			Status:      m.Status,
		})
	}
	return jsonResult(view)
}

func handleGetMeeting(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	meetingKey := stringArg(request.GetArguments(), "meeting_key")
	if meetingKey == "" {
		return mcp.NewToolResultError("meeting_key is required"), nil
	}

	c, err := session(ctx, request, sc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	m, err := sc.Meetings().GetMeeting(c.ctx, c.session, meetingKey)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to get meeting: %v", c.failed(err))), nil
	}

	return jsonResult(meetingView{
		MeetingKey:      m.MeetingKey,
		ConfName:        m.ConfName,
		MeetingType:     m.MeetingType,
		Agenda:          m.Agenda,
		HostWebExID:     m.HostWebExID,
		StartDate:       m.StartDate,
		Duration:        m.Duration,
		TimeZoneID:      m.TimeZoneID,
		MeetingLink:     m.MeetingLink,
		MeetingPassword: m.MeetingPassword,
		Status:          m.Status,
	})
}

func handleCreateMeeting(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	confName := stringArg(args, "conf_name")
	if confName == "" {
		return mcp.NewToolResultError("conf_name is required"), nil
	}
	timeZoneID := meetings.DefaultTimeZoneID
	if tz := intArg(args, "time_zone_id"); tz > 0 {
		timeZoneID = tz
	}
	start, err := timeArg(args, "start", timeZoneID)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if start.IsZero() {
		start = time.Now().Add(DefaultStartDelay)
	}

	c, err := session(ctx, request, sc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	meetingType := stringArg(args, "meeting_type")
	if meetingType == "" {
		u, err := sc.Meetings().GetUser(c.ctx, c.session)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to look up meeting types: %v", c.failed(err))), nil
		}
		meetingType = u.FirstMeetingType()
		if meetingType == "" {
			return mcp.NewToolResultError("user has no meeting types, pass meeting_type explicitly"), nil
		}
	}

	in := meetings.NewCreateMeetingInput(confName, meetingType, start)
	in.Agenda = stringArg(args, "agenda")
	in.MeetingPassword = stringArg(args, "meeting_password")
	if d := intArg(args, "duration_minutes"); d > 0 {
		in.Duration = time.Duration(d) * time.Minute
	}
	in.TimeZoneID = timeZoneID

	created, err := sc.Meetings().CreateMeeting(c.ctx, c.session, in)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to create meeting: %v", c.failed(err))), nil
	}

	return jsonResult(createdView{
		MeetingKey:      created.MeetingKey,
		ConfName:        confName,
		MeetingType:     meetingType,
		StartDate:       meetings.FormatDateIn(start, timeZoneID),
		HostICalURL:     created.HostICalURL,
		AttendeeICalURL: created.AttendeeICalURL,
	})
}

func handleDeleteMeeting(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	keys, err := batch.ParseKeys(request.GetArguments()["meeting_key"], "meeting_key")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	c, err := session(ctx, request, sc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if len(keys) == 1 {
		if err := sc.Meetings().DeleteMeeting(c.ctx, c.session, keys[0]); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to delete meeting: %v", c.failed(err))), nil
		}
		return mcp.NewToolResultText(fmt.Sprintf("Meeting %s deleted", keys[0])), nil
	}

	summary := batch.Run(c.ctx, keys, func(ctx context.Context, key string) (string, error) {
		if err := sc.Meetings().DeleteMeeting(ctx, c.session, key); err != nil {
			return "", c.failed(err)
		}
		return "deleted", nil
	})
	if summary.Successful == 0 {
		return mcp.NewToolResultError(summary.JSON()), nil
	}
	return mcp.NewToolResultText(summary.JSON()), nil
}

func stringArg(args map[string]any, name string) string {
	v, _ := args[name].(string)
	return v
}

// intArg accepts JSON numbers and numeric strings. Anything else is 0.
func intArg(args map[string]any, name string) int {
	switch v := args[name].(type) {
	case float64:
		return int(v)
	case int:
		return v
	case string:
		n, err := strconv.Atoi(v)
		if err == nil {
			return n
		}
	}
	return 0
}

// timeArg parses an RFC3339 or MM/DD/YYYY HH:MM:SS argument for the Webex
// time zone timeZoneID. A missing argument is the zero time.
func timeArg(args map[string]any, name string, timeZoneID int) (time.Time, error) {
	v := stringArg(args, name)
	if v == "" {
		return time.Time{}, nil
	}
	t, err := meetings.ParseTimeInputIn(v, timeZoneID)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid %s: %w", name, err)
	}
	return t, nil
}
