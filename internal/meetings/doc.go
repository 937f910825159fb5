// Package meetings implements the Webex Meetings operations used by wbxmeet:
// AuthenticateUser, GetUser, CreateMeeting, LstsummaryMeeting (ListMeetings),
// GetMeeting and DelMeeting (DeleteMeeting).
//
// AuthenticateUser returns a Session, an immutable value that every other
// operation takes explicitly. A Session is checked before any request is
// sent: a zero Session fails with ErrNoSession and an expired one with
// ErrSessionExpired. OAuth users can skip AuthenticateUser and build a
// Session from an access token with NewTokenSession.
//
// Remote failures surface unchanged from the xmlapi package, so callers can
// use errors.As with *xmlapi.APIError or *xmlapi.TransportError.
package meetings
