package resources

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/wbxmeet/internal/meetings"
	"github.com/teemow/wbxmeet/internal/server"
	"github.com/teemow/wbxmeet/internal/webexauth"
)

// Resource URIs.
const (
	ProfileURI          = "webex://user/profile"
	UpcomingMeetingsURI = "webex://meetings/upcoming"
)

// Definitions returns the resources RegisterUserResources serves.
func Definitions() []mcp.Resource {
	return []mcp.Resource{
		mcp.NewResource(
			ProfileURI,
			"Current User Profile",
			mcp.WithResourceDescription("Profile and meeting types of the authenticated Webex user"),
			mcp.WithMIMEType("application/json"),
		),
		mcp.NewResource(
			UpcomingMeetingsURI,
			"Upcoming Meetings",
			mcp.WithResourceDescription("The next meetings hosted by the authenticated Webex user"),
			mcp.WithMIMEType("application/json"),
		),
	}
}

// RegisterUserResources registers resources describing the default account's
// session user.
func RegisterUserResources(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	handlers := map[string]func(context.Context, mcp.ReadResourceRequest, *server.ServerContext) ([]mcp.ResourceContents, error){
		ProfileURI:          handleUserProfile,
		UpcomingMeetingsURI: handleUpcomingMeetings,
	}

	for _, r := range Definitions() {
		handle := handlers[r.URI]
		s.AddResource(r, func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
			return handle(ctx, request, sc)
		})
	}
	return nil
}

func handleUserProfile(ctx context.Context, request mcp.ReadResourceRequest, sc *server.ServerContext) ([]mcp.ResourceContents, error) {
	ctx = webexauth.WithAccount(ctx, webexauth.DefaultAccount)
	s, err := sc.Session(ctx)
	if err != nil {
		return nil, err
	}

	u, err := sc.Meetings().GetUser(ctx, s)
	if err != nil {
		sc.InvalidateRejected(webexauth.DefaultAccount, s, err)
		return nil, fmt.Errorf("failed to get user profile: %w", err)
	}

	profileData := map[string]interface{}{
		"site":         s.SiteName(),
		"webExId":      u.WebExID,
		"firstName":    u.FirstName,
		"lastName":     u.LastName,
		"email":        u.Email,
		"timeZoneId":   u.TimeZoneID,
		"meetingTypes": u.MeetingTypes,
	}

	return jsonContents(request.Params.URI, profileData)
}

func handleUpcomingMeetings(ctx context.Context, request mcp.ReadResourceRequest, sc *server.ServerContext) ([]mcp.ResourceContents, error) {
	ctx = webexauth.WithAccount(ctx, webexauth.DefaultAccount)
	s, err := sc.Session(ctx)
	if err != nil {
		return nil, err
	}

	list, err := sc.Meetings().ListMeetings(ctx, s, meetings.ListMeetingsInput{})
	if err != nil {
		sc.InvalidateRejected(webexauth.DefaultAccount, s, err)
		return nil, fmt.Errorf("failed to list upcoming meetings: %w", err)
	}

	entries := make([]map[string]interface{}, 0, len(list.Meetings))
	for _, m := range list.Meetings {
		entries = append(entries, map[string]interface{}{
			"meetingKey":      m.MeetingKey,
			"confName":        m.ConfName,
			"startDate":       m.StartDate,
			"durationMinutes": m.Duration,
		})
	}

	return jsonContents(request.Params.URI, map[string]interface{}{
		"site":     s.SiteName(),
		"host":     s.WebExID(),
		"total":    list.Total,
		"meetings": entries,
	})
}

func jsonContents(uri string, v any) ([]mcp.ResourceContents, error) {
	jsonData, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal resource data: %w", err)
	}

	return []mcp.ResourceContents{
		&mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(jsonData),
		},
	}, nil
}
