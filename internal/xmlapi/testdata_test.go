package xmlapi

import "fmt"

// responseXML wraps body content in a response envelope the way the
// service does, with every element namespace-prefixed.
func responseXML(result, reason, content string) string {
	header := fmt.Sprintf(`<serv:result>%s</serv:result>`, result)
	if reason != "" {
		header += fmt.Sprintf(`<serv:reason>%s</serv:reason><serv:gsbStatus>PRIMARY</serv:gsbStatus><serv:exceptionID>030002</serv:exceptionID>`, reason)
	}
	return `<?xml version="1.0" encoding="UTF-8"?>
<serv:message xmlns:serv="http://www.webex.com/schemas/2002/06/service" xmlns:com="http://www.webex.com/schemas/2002/06/common" xmlns:use="http://www.webex.com/schemas/2002/06/service/user">
<serv:header><serv:response>` + header + `</serv:response></serv:header>
<serv:body><serv:bodyContent xsi:type="use:authenticateUserResponse" xmlns:xsi="http://www.w3.org/2001/XMLSchema-instance">` + content + `</serv:bodyContent></serv:body>
</serv:message>`
}
