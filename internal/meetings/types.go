package meetings

import (
	"strconv"
	"time"

	"github.com/teemow/wbxmeet/internal/xmlapi"
)

// DateLayout is the MM/DD/YYYY HH:MM:SS format the XML API uses for dates.
const DateLayout = "01/02/2006 15:04:05"

// Defaults applied to CreateMeetingInput and ListMeetingsInput.
const (
	// DefaultTimeZoneID is Webex time zone 4, GMT-08:00 Pacific.
	DefaultTimeZoneID      = 4
	DefaultDuration        = 20 * time.Minute
	DefaultOpenTime        = 900 * time.Second
	DefaultTelephony       = "CALLIN"
	DefaultMaximumNum      = 10
	DefaultOrderBy         = "STARTTIME"
	DefaultOrderDirection  = "ASC"
	listMethodAND          = "AND"
	noRecordFoundException = "000015"
)

// FormatDate formats t in DateLayout, using t's own location.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// ParseDate parses a DateLayout value as wall-clock time in loc.
func ParseDate(s string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	return time.ParseInLocation(DateLayout, s, loc)
}

// User is the result of GetUser.
type User struct {
	WebExID    string
	FirstName  string
	LastName   string
	Email      string
	TimeZoneID string
	// MeetingTypes lists the meeting type IDs the user may schedule, in the
	// order the service returned them.
	MeetingTypes []string

	// Document is the full response for fields not mapped above.
	Document *xmlapi.Document
}

// FirstMeetingType returns the first entry of MeetingTypes, or "".
func (u *User) FirstMeetingType() string {
	if len(u.MeetingTypes) == 0 {
		return ""
	}
	return u.MeetingTypes[0]
}

// EnableOptions are the meeting features toggled on creation.
type EnableOptions struct {
	Chat       bool
	Poll       bool
	AudioVideo bool
	SupportE2E bool
	AutoRecord bool
}

// CreateMeetingInput describes a meeting to schedule. Use
// NewCreateMeetingInput to get the defaults filled in.
type CreateMeetingInput struct {
	ConfName        string
	MeetingType     string
	Agenda          string
	MeetingPassword string

	// StartDate is sent as wall-clock time of TimeZoneID. For IDs without
	// a known location it is sent in its own location.
	StartDate              time.Time
	Duration               time.Duration
	OpenTime               time.Duration
	TimeZoneID             int
	JoinTeleconfBeforeHost bool

	Options EnableOptions

	TelephonySupport     string
	TelephonyDescription string
}

// NewCreateMeetingInput returns an input with every optional setting at its
// default: all features enabled, 20 minutes long, opening 15 minutes early,
// call-in telephony.
func NewCreateMeetingInput(confName, meetingType string, start time.Time) CreateMeetingInput {
	return CreateMeetingInput{
		ConfName:    confName,
		MeetingType: meetingType,
		StartDate:   start,
		Duration:    DefaultDuration,
		OpenTime:    DefaultOpenTime,
		TimeZoneID:  DefaultTimeZoneID,
		Options: EnableOptions{
			Chat:       true,
			Poll:       true,
			AudioVideo: true,
			SupportE2E: true,
			AutoRecord: true,
		},
		TelephonySupport: DefaultTelephony,
	}
}

// CreatedMeeting is the result of CreateMeeting.
type CreatedMeeting struct {
	MeetingKey      string
	HostICalURL     string
	AttendeeICalURL string
	GuestToken      string
}

// ListMeetingsInput filters LstsummaryMeeting. Zero values select the
// defaults: 10 results, ordered by start time ascending, hosted by the
// session user, starting from now.
type ListMeetingsInput struct {
	MaximumNum     int
	StartFrom      int
	OrderBy        string
	OrderAD        string
	HostWebExID    string
	StartDateStart time.Time
	StartDateEnd   time.Time
	TimeZoneID     int
}

// MeetingSummary is one entry of a meeting listing.
type MeetingSummary struct {
	MeetingKey  string
	ConfName    string
	MeetingType string
	HostWebExID string
	// StartDate is the raw DateLayout value; Start is its parsed form in
	// the listing's time zone, zero if it did not parse.
	StartDate string
	Start     time.Time
	Duration  int
	Status    string
}

// MeetingList is the result of LstsummaryMeeting.
type MeetingList struct {
	Meetings  []MeetingSummary
	Total     int
	Returned  int
	StartFrom int
}

// Meeting is the result of GetMeeting.
type Meeting struct {
	MeetingKey      string
	ConfName        string
	MeetingType     string
	Agenda          string
	HostWebExID     string
	StartDate       string
	Start           time.Time
	Duration        int
	TimeZoneID      string
	MeetingLink     string
	MeetingPassword string
	Status          string

	Document *xmlapi.Document
}

func atoi(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}

func minutes(d time.Duration) string {
	return strconv.Itoa(int(d / time.Minute))
}

func seconds(d time.Duration) string {
	return strconv.Itoa(int(d / time.Second))
}
