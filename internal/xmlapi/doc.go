// Package xmlapi implements the envelope, transport and response handling
// of the Webex Meetings XML API.
//
// Every call is one HTTP POST of a serv:message envelope to the XML service
// endpoint:
//
//	<serv:message xmlns:serv="http://www.webex.com/schemas/2002/06/service"
//	              xmlns:xsi="http://www.w3.org/2001/XMLSchema-instance">
//	  <header>
//	    <securityContext>
//	      <siteName>acme</siteName>
//	      <webExID>bob</webExID>
//	      <sessionTicket>...</sessionTicket>
//	    </securityContext>
//	  </header>
//	  <body>
//	    <bodyContent xsi:type="java:com.webex.service.binding.user.GetUser">
//	      <webExId>bob</webExId>
//	    </bodyContent>
//	  </body>
//	</serv:message>
//
// Envelopes are built as XML trees, so field values are escaped. Responses
// are looked up by local element name: "header/response/result" matches
// serv:header/serv:response/serv:result as well as unprefixed elements.
//
// A non-2xx HTTP status yields a *TransportError, a result other than
// SUCCESS an *APIError. Neither is retried.
package xmlapi
