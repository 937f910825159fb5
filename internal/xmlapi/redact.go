package xmlapi

import (
	"strings"

	"github.com/beevik/etree"
	"golang.org/x/net/html/charset"

	"github.com/teemow/wbxmeet/internal/logging"
)

// secretElements are replaced by a length marker in debug dumps.
var secretElements = map[string]bool{
	"password":         true,
	"sessionTicket":    true,
	"webExAccessToken": true,
	"accessToken":      true,
	"meetingPassword":  true,
	"guestToken":       true,
}

// Redact returns data pretty-printed with credential elements masked. Input
// that does not parse is returned as a length marker only.
func Redact(data []byte) string {
	doc := etree.NewDocument()
	doc.ReadSettings.CharsetReader = charset.NewReaderLabel
	if err := doc.ReadFromBytes(data); err != nil || doc.Root() == nil {
		return logging.SanitizeToken(string(data))
	}
	redactElement(doc.Root())
	doc.Indent(2)
	s, err := doc.WriteToString()
	if err != nil {
		return logging.SanitizeToken(string(data))
	}
	return strings.TrimSpace(s)
}

func redactElement(el *etree.Element) {
	if secretElements[el.Tag] && el.Text() != "" {
		el.SetText(logging.SanitizeToken(el.Text()))
	}
	for _, child := range el.ChildElements() {
		redactElement(child)
	}
}
