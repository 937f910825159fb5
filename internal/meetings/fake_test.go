package meetings

import (
	"context"
	"fmt"
	"strings"

	"github.com/teemow/wbxmeet/internal/xmlapi"
)

type call struct {
	op     xmlapi.Operation
	sc     xmlapi.SecurityContext
	fields []xmlapi.Field
}

// fakeCaller replies with canned response bodies per operation and records
// every call.
type fakeCaller struct {
	responses map[string]string
	errs      map[string]error
	calls     []call
}

func (f *fakeCaller) Call(_ context.Context, op xmlapi.Operation, sc xmlapi.SecurityContext, fields ...xmlapi.Field) (*xmlapi.Document, error) {
	f.calls = append(f.calls, call{op: op, sc: sc, fields: fields})
	if err := f.errs[op.Name]; err != nil {
		return nil, err
	}
	body, ok := f.responses[op.Name]
	if !ok {
		return nil, fmt.Errorf("unexpected call %s", op.Name)
	}
	return xmlapi.Validate(&xmlapi.RawResponse{StatusCode: 200, Body: []byte(body)})
}

func (f *fakeCaller) last() call {
	return f.calls[len(f.calls)-1]
}

// field finds a field by slash-separated path in a call's body fields.
func (c call) field(path string) (xmlapi.Field, bool) {
	fields := c.fields
	parts := strings.Split(path, "/")
	for i, name := range parts {
		found := false
		for _, f := range fields {
			if f.Name == name {
				if i == len(parts)-1 {
					return f, true
				}
				fields = f.Children
				found = true
				break
			}
		}
		if !found {
			return xmlapi.Field{}, false
		}
	}
	return xmlapi.Field{}, false
}

func success(content string) string {
	return `<?xml version="1.0" encoding="UTF-8"?>
<serv:message xmlns:serv="http://www.webex.com/schemas/2002/06/service" xmlns:com="http://www.webex.com/schemas/2002/06/common" xmlns:meet="http://www.webex.com/schemas/2002/06/service/meeting" xmlns:use="http://www.webex.com/schemas/2002/06/service/user">
<serv:header><serv:response><serv:result>SUCCESS</serv:result><serv:gsbStatus>PRIMARY</serv:gsbStatus></serv:response></serv:header>
<serv:body><serv:bodyContent>` + content + `</serv:bodyContent></serv:body>
</serv:message>`
}

func failure(result, reason, exceptionID string) string {
	return `<?xml version="1.0" encoding="UTF-8"?>
<serv:message xmlns:serv="http://www.webex.com/schemas/2002/06/service">
<serv:header><serv:response><serv:result>` + result + `</serv:result><serv:reason>` + reason + `</serv:reason><serv:gsbStatus>PRIMARY</serv:gsbStatus><serv:exceptionID>` + exceptionID + `</serv:exceptionID></serv:response></serv:header>
<serv:body><serv:bodyContent/></serv:body>
</serv:message>`
}

const (
	authResponse = `<use:sessionTicket>ABC123</use:sessionTicket><use:createTime>1563455678000</use:createTime><use:timeToLive>5400</use:timeToLive>`

	getUserResponse = `<use:firstName>Bob</use:firstName><use:lastName>Builder</use:lastName><use:email>bob@acme.com</use:email>
<use:webExId>bob</use:webExId><use:timeZoneID>4</use:timeZoneID>
<use:meetingTypes><use:meetingType>214</use:meetingType><use:meetingType>215</use:meetingType></use:meetingTypes>`

	createResponse = `<meet:meetingkey>625993159</meet:meetingkey>
<meet:iCalendarURL><serv:host>https://acme.webex.com/host.ics</serv:host><serv:attendee>https://acme.webex.com/attendee.ics</serv:attendee></meet:iCalendarURL>
<meet:guestToken>gt-1</meet:guestToken>`

	listResponse = `<meet:matchingRecords><serv:total>2</serv:total><serv:returned>2</serv:returned><serv:startFrom>1</serv:startFrom></meet:matchingRecords>
<meet:meeting><meet:meetingKey>625993159</meet:meetingKey><meet:confName>Test Meeting</meet:confName><meet:meetingType>214</meet:meetingType><meet:hostWebExID>bob</meet:hostWebExID><meet:startDate>07/18/2019 13:05:00</meet:startDate><meet:duration>20</meet:duration><meet:status>NOT_INPROGRESS</meet:status></meet:meeting>
<meet:meeting><meet:meetingKey>625993160</meet:meetingKey><meet:confName>Review &amp; Plan</meet:confName><meet:startDate>07/19/2019 09:00:00</meet:startDate><meet:duration>60</meet:duration></meet:meeting>`

	getMeetingResponse = `<meet:accessControl><meet:meetingPassword>C!sco123</meet:meetingPassword></meet:accessControl>
<meet:metaData><meet:confName>Test Meeting</meet:confName><meet:meetingType>214</meet:meetingType><meet:agenda>Test meeting creation</meet:agenda></meet:metaData>
<meet:schedule><meet:startDate>07/18/2019 13:05:00</meet:startDate><meet:duration>20</meet:duration><meet:timeZoneID>4</meet:timeZoneID><meet:hostWebExID>bob</meet:hostWebExID></meet:schedule>
<meet:meetingkey>625993159</meet:meetingkey><meet:status>NOT_INPROGRESS</meet:status>
<meet:meetingLink>https://acme.webex.com/acme/j.php?MTID=m123</meet:meetingLink>`
)
