// Package meeting_tools provides MCP tools for the Webex Meetings XML API.
//
// Read tools are always registered:
//   - webex_get_user - Profile and meeting types of the session user
//   - webex_list_meetings - Upcoming meetings hosted by a user
//   - webex_get_meeting - Details and join link of one meeting
//
// Write tools are registered only when the server runs with --yolo:
//   - webex_create_meeting - Schedule a meeting
//   - webex_delete_meeting - Delete one meeting, or several given an array of keys
//
// Every tool accepts an optional "account" argument. Named accounts are only
// available in OAuth mode, where each account has its own cached token.
//
// Example usage:
//
//	webex_create_meeting(
//	    conf_name="Weekly sync",
//	    start="2024-05-02T15:00:00-07:00",
//	    duration_minutes=30
//	)
package meeting_tools
