package logging

import (
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWithHelpers(t *testing.T) {
	logger := slog.Default()
	assert.NotNil(t, WithOperation(logger, "GetUser"))
	assert.NotNil(t, WithTool(logger, "webex_get_user"))
	assert.NotNil(t, WithSite(logger, "acme"))
}

func TestAttrs(t *testing.T) {
	tests := []struct {
		name    string
		attr    slog.Attr
		wantKey string
		wantVal string
	}{
		{"operation", Operation("CreateMeeting"), KeyOperation, "CreateMeeting"},
		{"site", Site("acme"), KeySite, "acme"},
		{"tool", Tool("webex_get_meeting"), KeyTool, "webex_get_meeting"},
		{"status", Status(StatusSuccess), KeyStatus, "success"},
		{"http status", HTTPStatus(502), KeyHTTPStatus, "502"},
		{"result", Result("FAILURE"), KeyResult, "FAILURE"},
		{"meeting key", MeetingKey("123456789"), KeyMeetingKey, "123456789"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantKey, tt.attr.Key)
			assert.Equal(t, tt.wantVal, tt.attr.Value.String())
		})
	}
}

func TestErr(t *testing.T) {
	attr := Err(errors.New("test error"))
	assert.Equal(t, KeyError, attr.Key)
	assert.Equal(t, "test error", attr.Value.String())

	// nil yields an empty group, which slog omits
	assert.Equal(t, "", Err(nil).Key)
}

func TestAnonymizeUser(t *testing.T) {
	tests := []struct {
		id      string
		wantLen int
	}{
		{"bob", 21}, // "user:" + 16 hex chars
		{"jane@example.com", 21},
		{"", 0},
	}
	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			got := AnonymizeUser(tt.id)
			assert.Len(t, got, tt.wantLen)
			if tt.wantLen > 0 {
				assert.True(t, strings.HasPrefix(got, "user:"))
				assert.NotContains(t, got, tt.id)
			}
		})
	}

	assert.Equal(t, AnonymizeUser("bob"), AnonymizeUser("bob"))
	assert.Equal(t, AnonymizeUser("Bob"), AnonymizeUser("bob"), "WebEx IDs are case insensitive")
	assert.NotEqual(t, AnonymizeUser("bob"), AnonymizeUser("alice"))
}

func TestUserHash(t *testing.T) {
	attr := UserHash("bob")
	assert.Equal(t, KeyUserHash, attr.Key)
	assert.Equal(t, AnonymizeUser("bob"), attr.Value.String())
}

func TestSanitizeToken(t *testing.T) {
	tests := []struct {
		token    string
		expected string
	}{
		{"", "<empty>"},
		{"ABC123", "[token:6 chars]"},
		{"a_very_long_token_string", "[token:24 chars]"},
	}
	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, SanitizeToken(tt.token))
		})
	}
}
