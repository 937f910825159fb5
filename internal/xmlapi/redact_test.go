package xmlapi

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedact(t *testing.T) {
	env, err := NewEnvelope(OpCreateMeeting, SecurityContext{SiteName: "acme", WebExID: "bob", SessionTicket: "SECRET-TICKET"},
		Group("accessControl", F("meetingPassword", "C!sco123")),
		Group("metaData", F("confName", "Weekly sync")),
	)
	require.NoError(t, err)

	out := Redact(env.Bytes())
	assert.NotContains(t, out, "SECRET-TICKET")
	assert.NotContains(t, out, "C!sco123")
	assert.Contains(t, out, "[token:13 chars]")
	assert.Contains(t, out, "Weekly sync")
	assert.Contains(t, out, "<siteName>acme</siteName>")
}

func TestRedact_Response(t *testing.T) {
	out := Redact([]byte(responseXML("SUCCESS", "", "<use:sessionTicket>ABC123</use:sessionTicket>")))
	assert.NotContains(t, out, "ABC123")
	assert.Contains(t, out, "[token:6 chars]")
}

func TestRedact_NotXML(t *testing.T) {
	assert.Equal(t, "[token:9 chars]", Redact([]byte("password!")))
}

func TestRedact_Latin1(t *testing.T) {
	body := []byte("<?xml version=\"1.0\" encoding=\"ISO-8859-1\"?>\n" +
		"<serv:message xmlns:serv=\"http://www.webex.com/schemas/2002/06/service\"><serv:body><serv:bodyContent>" +
		"<confName>Caf\xe9</confName><sessionTicket>ABC123</sessionTicket>" +
		"</serv:bodyContent></serv:body></serv:message>")

	out := Redact(body)
	assert.Contains(t, out, "<confName>Caf\u00e9</confName>")
	assert.NotContains(t, out, "ABC123")
	assert.Contains(t, out, "[token:6 chars]")
}
