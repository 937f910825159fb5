package xmlapi

import (
	"errors"
	"fmt"

	"github.com/beevik/etree"
)

const (
	// ServiceNamespace is bound to the serv prefix of every envelope.
	ServiceNamespace = "http://www.webex.com/schemas/2002/06/service"
	// XSINamespace is bound to the xsi prefix used by bodyContent.
	XSINamespace = "http://www.w3.org/2001/XMLSchema-instance"

	bindingPrefix = "java:com.webex.service.binding."
)

// Operation identifies a remote API call.
type Operation struct {
	// Name is the remote operation name, e.g. "CreateMeeting".
	Name string
	// Service is the binding package, "user" or "meeting".
	Service string
}

// Binding returns the xsi:type value of the request bodyContent.
func (o Operation) Binding() string {
	return bindingPrefix + o.Service + "." + o.Name
}

func (o Operation) String() string {
	return o.Name
}

var (
	OpAuthenticateUser  = Operation{Name: "AuthenticateUser", Service: "user"}
	OpGetUser           = Operation{Name: "GetUser", Service: "user"}
	OpCreateMeeting     = Operation{Name: "CreateMeeting", Service: "meeting"}
	OpLstsummaryMeeting = Operation{Name: "LstsummaryMeeting", Service: "meeting"}
	OpGetMeeting        = Operation{Name: "GetMeeting", Service: "meeting"}
	OpDelMeeting        = Operation{Name: "DelMeeting", Service: "meeting"}
)

// SecurityContext is the header/securityContext of an envelope. At most one
// credential is written, in this order of preference: SessionTicket,
// AccessToken (as webExAccessToken), Password. AuthenticateUser with an
// access token sends no header credential at all.
type SecurityContext struct {
	SiteName      string
	WebExID       string
	Password      string
	SessionTicket string
	AccessToken   string
}

// Field is one element of the bodyContent. A field with children is written
// as a nested element and its Value is ignored.
type Field struct {
	Name     string
	Value    string
	Children []Field
}

// F returns a leaf field.
func F(name, value string) Field {
	return Field{Name: name, Value: value}
}

// Group returns a field wrapping children, in order.
func Group(name string, children ...Field) Field {
	return Field{Name: name, Children: children}
}

// Envelope is a serialized request. It has no mutators: what was built is
// what is sent.
type Envelope struct {
	op   Operation
	data []byte
}

var errEmptyFieldName = errors.New("field name is empty")

// NewEnvelope builds the request envelope for op.
func NewEnvelope(op Operation, sc SecurityContext, fields ...Field) (*Envelope, error) {
	if op.Name == "" || op.Service == "" {
		return nil, fmt.Errorf("operation name and service are required")
	}
	if sc.SiteName == "" {
		return nil, fmt.Errorf("site name is required")
	}

	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)

	message := doc.CreateElement("serv:message")
	message.CreateAttr("xmlns:serv", ServiceNamespace)
	message.CreateAttr("xmlns:xsi", XSINamespace)

	security := message.CreateElement("header").CreateElement("securityContext")
	security.CreateElement("siteName").SetText(sc.SiteName)
	security.CreateElement("webExID").SetText(sc.WebExID)
	switch {
	case sc.SessionTicket != "":
		security.CreateElement("sessionTicket").SetText(sc.SessionTicket)
	case sc.AccessToken != "":
		security.CreateElement("webExAccessToken").SetText(sc.AccessToken)
	case sc.Password != "":
		security.CreateElement("password").SetText(sc.Password)
	}

	content := message.CreateElement("body").CreateElement("bodyContent")
	content.CreateAttr("xsi:type", op.Binding())
	for _, f := range fields {
		if err := appendField(content, f); err != nil {
			return nil, fmt.Errorf("failed to build %s body: %w", op.Name, err)
		}
	}

	data, err := doc.WriteToBytes()
	if err != nil {
		return nil, fmt.Errorf("failed to serialize %s envelope: %w", op.Name, err)
	}
	return &Envelope{op: op, data: data}, nil
}

func appendField(parent *etree.Element, f Field) error {
	if f.Name == "" {
		return errEmptyFieldName
	}
	el := parent.CreateElement(f.Name)
	if len(f.Children) == 0 {
		el.SetText(f.Value)
		return nil
	}
	for _, child := range f.Children {
		if err := appendField(el, child); err != nil {
			return fmt.Errorf("%s: %w", f.Name, err)
		}
	}
	return nil
}

// Operation returns the operation the envelope was built for.
func (e *Envelope) Operation() Operation {
	return e.op
}

// Bytes returns a copy of the serialized envelope.
func (e *Envelope) Bytes() []byte {
	return append([]byte(nil), e.data...)
}

func (e *Envelope) String() string {
	return string(e.data)
}
