package meetings

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/beevik/etree"

	"github.com/teemow/wbxmeet/internal/instrumentation"
	"github.com/teemow/wbxmeet/internal/logging"
	"github.com/teemow/wbxmeet/internal/xmlapi"
)

// Caller performs one XML API round trip. *xmlapi.Client implements it.
type Caller interface {
	Call(ctx context.Context, op xmlapi.Operation, sc xmlapi.SecurityContext, fields ...xmlapi.Field) (*xmlapi.Document, error)
}

// Client exposes the meeting operations of the XML API.
type Client struct {
	api    Caller
	logger *slog.Logger
	audit  *instrumentation.AuditLogger
	source string
	now    func() time.Time
}

// Option configures a Client.
type Option func(*Client)

func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// WithAudit records meeting creation and deletion on a, tagged with source.
func WithAudit(a *instrumentation.AuditLogger, source string) Option {
	return func(c *Client) {
		c.audit = a
		c.source = source
	}
}

// WithClock replaces time.Now for expiry checks and default dates.
func WithClock(now func() time.Time) Option {
	return func(c *Client) { c.now = now }
}

// NewClient returns a Client sending calls through api.
func NewClient(api Caller, opts ...Option) *Client {
	c := &Client{api: api, logger: slog.Default(), now: time.Now}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) call(ctx context.Context, s Session, op xmlapi.Operation, fields ...xmlapi.Field) (*xmlapi.Document, error) {
	if err := s.Check(c.now()); err != nil {
		return nil, fmt.Errorf("cannot call %s: %w", op.Name, err)
	}
	return c.api.Call(ctx, op, s.SecurityContext(), fields...)
}

// AuthenticateUser exchanges credentials for a Session. With an access token
// the token goes into the request body; otherwise the password goes into the
// security context.
func (c *Client) AuthenticateUser(ctx context.Context, creds Credentials) (Session, error) {
	if creds.SiteName == "" || creds.WebExID == "" {
		return Session{}, fmt.Errorf("%w: site name and WebEx ID are required", ErrInvalidInput)
	}

	sc := xmlapi.SecurityContext{SiteName: creds.SiteName, WebExID: creds.WebExID}
	var fields []xmlapi.Field
	switch {
	case creds.AccessToken != "":
		fields = append(fields, xmlapi.F("accessToken", creds.AccessToken))
	case creds.Password != "":
		sc.Password = creds.Password
	default:
		return Session{}, ErrMissingCredential
	}

	doc, err := c.api.Call(ctx, xmlapi.OpAuthenticateUser, sc, fields...)
	if err != nil {
		return Session{}, fmt.Errorf("failed to authenticate: %w", err)
	}

	ticket := doc.Body("sessionTicket")
	if ticket == "" {
		return Session{}, fmt.Errorf("failed to authenticate: %w: sessionTicket missing", xmlapi.ErrMalformedResponse)
	}

	s := Session{
		siteName:      creds.SiteName,
		webExID:       creds.WebExID,
		sessionTicket: ticket,
		createdAt:     c.now(),
	}
	if ms, err := strconv.ParseInt(doc.Body("createTime"), 10, 64); err == nil && ms > 0 {
		s.createdAt = time.UnixMilli(ms)
	}
	// Expiry is measured on the local clock so skew against the service
	// cannot expire a fresh session.
	if ttl, err := strconv.Atoi(doc.Body("timeToLive")); err == nil && ttl > 0 {
		s.expiresAt = c.now().Add(time.Duration(ttl) * time.Second)
	}

	c.logger.Info("authenticated", "session", s)
	return s, nil
}

// GetUser returns the session user's profile.
func (c *Client) GetUser(ctx context.Context, s Session) (*User, error) {
	doc, err := c.call(ctx, s, xmlapi.OpGetUser, xmlapi.F("webExId", s.WebExID()))
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	u := &User{
		WebExID:    doc.Body("webExId"),
		FirstName:  doc.Body("firstName"),
		LastName:   doc.Body("lastName"),
		Email:      doc.Body("email"),
		TimeZoneID: doc.Body("timeZoneID"),
		Document:   doc,
	}
	if u.WebExID == "" {
		u.WebExID = s.WebExID()
	}
	if types := doc.Element(xmlapi.PathBodyContent + "/meetingTypes"); types != nil {
		for _, t := range types.ChildElements() {
			u.MeetingTypes = append(u.MeetingTypes, t.Text())
		}
	}
	return u, nil
}

// CreateMeeting schedules a meeting and returns its key.
func (c *Client) CreateMeeting(ctx context.Context, s Session, in CreateMeetingInput) (*CreatedMeeting, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	start := c.now()
	doc, err := c.call(ctx, s, xmlapi.OpCreateMeeting, in.fields()...)
	if err != nil {
		c.logChange(ctx, s, xmlapi.OpCreateMeeting, "", start, err)
		return nil, fmt.Errorf("failed to create meeting: %w", err)
	}

	m := &CreatedMeeting{
		MeetingKey:      doc.Body("meetingkey"),
		HostICalURL:     doc.Body("iCalendarURL/host"),
		AttendeeICalURL: doc.Body("iCalendarURL/attendee"),
		GuestToken:      doc.Body("guestToken"),
	}
	if m.MeetingKey == "" {
		err := fmt.Errorf("%w: meetingkey missing", xmlapi.ErrMalformedResponse)
		c.logChange(ctx, s, xmlapi.OpCreateMeeting, "", start, err)
		return nil, fmt.Errorf("failed to create meeting: %w", err)
	}

	c.logChange(ctx, s, xmlapi.OpCreateMeeting, m.MeetingKey, start, nil)
	c.logger.Info("meeting created", logging.MeetingKey(m.MeetingKey), logging.Site(s.SiteName()))
	return m, nil
}

func (in CreateMeetingInput) validate() error {
	switch {
	case in.ConfName == "":
		return fmt.Errorf("%w: conference name is required", ErrInvalidInput)
	case in.StartDate.IsZero():
		return fmt.Errorf("%w: start date is required", ErrInvalidInput)
	case in.Duration < time.Minute:
		return fmt.Errorf("%w: duration must be at least one minute", ErrInvalidInput)
	case in.OpenTime < 0:
		return fmt.Errorf("%w: open time must not be negative", ErrInvalidInput)
	}
	return nil
}

func (in CreateMeetingInput) fields() []xmlapi.Field {
	var fields []xmlapi.Field
	if in.MeetingPassword != "" {
		fields = append(fields, xmlapi.Group("accessControl",
			xmlapi.F("meetingPassword", in.MeetingPassword)))
	}

	meta := []xmlapi.Field{xmlapi.F("confName", in.ConfName)}
	if in.MeetingType != "" {
		meta = append(meta, xmlapi.F("meetingType", in.MeetingType))
	}
	if in.Agenda != "" {
		meta = append(meta, xmlapi.F("agenda", in.Agenda))
	}
	fields = append(fields, xmlapi.Group("metaData", meta...))

	fields = append(fields,
		xmlapi.Group("enableOptions",
			xmlapi.F("chat", strconv.FormatBool(in.Options.Chat)),
			xmlapi.F("poll", strconv.FormatBool(in.Options.Poll)),
			xmlapi.F("audioVideo", strconv.FormatBool(in.Options.AudioVideo)),
			xmlapi.F("supportE2E", strconv.FormatBool(in.Options.SupportE2E)),
			xmlapi.F("autoRecord", strconv.FormatBool(in.Options.AutoRecord)),
		),
		xmlapi.Group("schedule",
			xmlapi.F("startDate", FormatDateIn(in.StartDate, in.TimeZoneID)),
			xmlapi.F("openTime", seconds(in.OpenTime)),
			xmlapi.F("joinTeleconfBeforeHost", strconv.FormatBool(in.JoinTeleconfBeforeHost)),
			xmlapi.F("duration", minutes(in.Duration)),
			xmlapi.F("timeZoneID", strconv.Itoa(timeZoneOrDefault(in.TimeZoneID))),
		),
	)

	if in.TelephonySupport != "" {
		tel := []xmlapi.Field{xmlapi.F("telephonySupport", in.TelephonySupport)}
		if in.TelephonyDescription != "" {
			tel = append(tel, xmlapi.F("extTelephonyDescription", in.TelephonyDescription))
		}
		fields = append(fields, xmlapi.Group("telephony", tel...))
	}
	return fields
}

// ListMeetings runs LstsummaryMeeting. A "no record found" answer from the
// service is returned as an empty list rather than an error.
func (c *Client) ListMeetings(ctx context.Context, s Session, in ListMeetingsInput) (*MeetingList, error) {
	if in.MaximumNum < 0 || in.StartFrom < 0 {
		return nil, fmt.Errorf("%w: maximum and offset must not be negative", ErrInvalidInput)
	}

	doc, err := c.call(ctx, s, xmlapi.OpLstsummaryMeeting, in.fields(s, c.now())...)
	if err != nil {
		if isNoRecordFound(err) {
			return &MeetingList{}, nil
		}
		return nil, fmt.Errorf("failed to list meetings: %w", err)
	}

	list := &MeetingList{
		Total:     atoi(doc.Body("matchingRecords/total")),
		Returned:  atoi(doc.Body("matchingRecords/returned")),
		StartFrom: atoi(doc.Body("matchingRecords/startFrom")),
	}
	loc := zoneOrLocal(in.TimeZoneID)
	for _, el := range doc.All("meeting") {
		list.Meetings = append(list.Meetings, summaryFrom(el, loc))
	}
	return list, nil
}

func (in ListMeetingsInput) fields(s Session, now time.Time) []xmlapi.Field {
	maximum := in.MaximumNum
	if maximum == 0 {
		maximum = DefaultMaximumNum
	}
	orderBy := in.OrderBy
	if orderBy == "" {
		orderBy = DefaultOrderBy
	}
	orderAD := in.OrderAD
	if orderAD == "" {
		orderAD = DefaultOrderDirection
	}
	host := in.HostWebExID
	if host == "" {
		host = s.WebExID()
	}
	from := in.StartDateStart
	if from.IsZero() {
		from = now
	}

	var control []xmlapi.Field
	if in.StartFrom > 0 {
		control = append(control, xmlapi.F("startFrom", strconv.Itoa(in.StartFrom)))
	}
	control = append(control,
		xmlapi.F("maximumNum", strconv.Itoa(maximum)),
		xmlapi.F("listMethod", listMethodAND),
	)

	scope := []xmlapi.Field{xmlapi.F("startDateStart", FormatDateIn(from, in.TimeZoneID))}
	if !in.StartDateEnd.IsZero() {
		scope = append(scope, xmlapi.F("startDateEnd", FormatDateIn(in.StartDateEnd, in.TimeZoneID)))
	}
	scope = append(scope, xmlapi.F("timeZoneID", strconv.Itoa(timeZoneOrDefault(in.TimeZoneID))))

	return []xmlapi.Field{
		xmlapi.Group("listControl", control...),
		xmlapi.Group("order", xmlapi.F("orderBy", orderBy), xmlapi.F("orderAD", orderAD)),
		xmlapi.Group("dateScope", scope...),
		xmlapi.F("hostWebExID", host),
	}
}

func summaryFrom(el *etree.Element, loc *time.Location) MeetingSummary {
	m := MeetingSummary{
		MeetingKey:  xmlapi.ChildText(el, "meetingKey"),
		ConfName:    xmlapi.ChildText(el, "confName"),
		MeetingType: xmlapi.ChildText(el, "meetingType"),
		HostWebExID: xmlapi.ChildText(el, "hostWebExID"),
		StartDate:   xmlapi.ChildText(el, "startDate"),
		Duration:    atoi(xmlapi.ChildText(el, "duration")),
		Status:      xmlapi.ChildText(el, "status"),
	}
	if t, err := ParseDate(m.StartDate, loc); err == nil {
		m.Start = t
	}
	return m
}

func isNoRecordFound(err error) bool {
	var apiErr *xmlapi.APIError
	return errors.As(err, &apiErr) && apiErr.ExceptionID == noRecordFoundException
}

// GetMeeting returns the details of one meeting.
func (c *Client) GetMeeting(ctx context.Context, s Session, meetingKey string) (*Meeting, error) {
	if meetingKey == "" {
		return nil, fmt.Errorf("%w: meeting key is required", ErrInvalidInput)
	}

	doc, err := c.call(ctx, s, xmlapi.OpGetMeeting, xmlapi.F("meetingKey", meetingKey))
	if err != nil {
		return nil, fmt.Errorf("failed to get meeting %s: %w", meetingKey, err)
	}

	m := &Meeting{
		MeetingKey:      doc.Body("meetingkey"),
		ConfName:        doc.Body("metaData/confName"),
		MeetingType:     doc.Body("metaData/meetingType"),
		Agenda:          doc.Body("metaData/agenda"),
		HostWebExID:     doc.Body("schedule/hostWebExID"),
		StartDate:       doc.Body("schedule/startDate"),
		Duration:        atoi(doc.Body("schedule/duration")),
		TimeZoneID:      doc.Body("schedule/timeZoneID"),
		MeetingLink:     doc.Body("meetingLink"),
		MeetingPassword: doc.Body("accessControl/meetingPassword"),
		Status:          doc.Body("status"),
		Document:        doc,
	}
	if m.MeetingKey == "" {
		m.MeetingKey = meetingKey
	}
	if t, err := ParseDate(m.StartDate, zoneOrLocal(atoi(m.TimeZoneID))); err == nil {
		m.Start = t
	}
	return m, nil
}

// DeleteMeeting deletes a meeting (DelMeeting).
func (c *Client) DeleteMeeting(ctx context.Context, s Session, meetingKey string) error {
	if meetingKey == "" {
		return fmt.Errorf("%w: meeting key is required", ErrInvalidInput)
	}

	start := c.now()
	_, err := c.call(ctx, s, xmlapi.OpDelMeeting, xmlapi.F("meetingKey", meetingKey))
	c.logChange(ctx, s, xmlapi.OpDelMeeting, meetingKey, start, err)
	if err != nil {
		return fmt.Errorf("failed to delete meeting %s: %w", meetingKey, err)
	}

	c.logger.Info("meeting deleted", logging.MeetingKey(meetingKey), logging.Site(s.SiteName()))
	return nil
}

func (c *Client) logChange(ctx context.Context, s Session, op xmlapi.Operation, key string, start time.Time, err error) {
	change := instrumentation.Change{
		Operation:  op.Name,
		Source:     c.source,
		Site:       s.SiteName(),
		WebExID:    s.WebExID(),
		MeetingKey: key,
		Success:    err == nil,
		Duration:   c.now().Sub(start),
	}
	if err != nil {
		change.Error = err.Error()
	}
	c.audit.LogChange(ctx, change)
}

func timeZoneOrDefault(id int) int {
	if id <= 0 {
		return DefaultTimeZoneID
	}
	return id
}
