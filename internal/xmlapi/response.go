package xmlapi

import (
	"fmt"
	"strings"

	"github.com/beevik/etree"
	"golang.org/x/net/html/charset"
)

// Response paths, relative to the message root.
const (
	PathResult      = "header/response/result"
	PathReason      = "header/response/reason"
	PathExceptionID = "header/response/exceptionID"
	PathBodyContent = "body/bodyContent"
)

// Document is a parsed response envelope. Lookups match elements by local
// name and ignore namespace prefixes.
type Document struct {
	doc *etree.Document
}

// Parse reads data as an XML document with a root element.
func Parse(data []byte) (*Document, error) {
	doc := etree.NewDocument()
	doc.ReadSettings.CharsetReader = charset.NewReaderLabel
	if err := doc.ReadFromBytes(data); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedResponse, err)
	}
	if doc.Root() == nil {
		return nil, fmt.Errorf("%w: no root element", ErrMalformedResponse)
	}
	return &Document{doc: doc}, nil
}

// Validate turns a raw response into a Document. It fails with a
// *TransportError for a status outside 200-299 without looking at the body,
// with ErrMalformedResponse when the body is not XML or has no result, and
// with an *APIError when the result is not SUCCESS.
func Validate(resp *RawResponse) (*Document, error) {
	return validate(resp, "")
}

func validate(resp *RawResponse, operation string) (*Document, error) {
	if err := checkStatus(resp); err != nil {
		return nil, err
	}

	doc, err := Parse(resp.Body)
	if err != nil {
		return nil, err
	}

	result := doc.Element(PathResult)
	if result == nil {
		return nil, fmt.Errorf("%w: %s not found", ErrMalformedResponse, PathResult)
	}
	if result.Text() != ResultSuccess {
		return nil, &APIError{
			Operation:   operation,
			Result:      result.Text(),
			Reason:      doc.Text(PathReason),
			ExceptionID: doc.Text(PathExceptionID),
		}
	}
	return doc, nil
}

// Root returns the root element.
func (d *Document) Root() *etree.Element {
	return d.doc.Root()
}

// Element returns the first element matching a slash-separated path of
// local names relative to the root, or nil.
func (d *Document) Element(path string) *etree.Element {
	p, err := etree.CompilePath(path)
	if err != nil {
		return nil
	}
	return d.doc.Root().FindElementPath(p)
}

// Elements returns every element matching path, in document order.
func (d *Document) Elements(path string) []*etree.Element {
	p, err := etree.CompilePath(path)
	if err != nil {
		return nil
	}
	return d.doc.Root().FindElementsPath(p)
}

// Text returns the text of the element at path, or "" if there is none.
func (d *Document) Text(path string) string {
	if el := d.Element(path); el != nil {
		return el.Text()
	}
	return ""
}

// All returns every descendant with the given local name, at any depth.
func (d *Document) All(name string) []*etree.Element {
	return d.Elements(".//" + name)
}

// Body returns the text of a direct child of body/bodyContent.
func (d *Document) Body(name string) string {
	return d.Text(PathBodyContent + "/" + name)
}

// Result returns the header result value.
func (d *Document) Result() string {
	return d.Text(PathResult)
}

// String returns the document as received, re-serialized.
func (d *Document) String() string {
	s, err := d.doc.WriteToString()
	if err != nil {
		return ""
	}
	return s
}

// Indent returns the document pretty-printed with two-space indentation.
// The Document itself is left untouched.
func (d *Document) Indent() string {
	cp := d.doc.Copy()
	cp.Indent(2)
	s, err := cp.WriteToString()
	if err != nil {
		return ""
	}
	return strings.TrimSpace(s) + "\n"
}

// ChildText returns the text of a direct child of el matched by local name.
func ChildText(el *etree.Element, name string) string {
	if el == nil {
		return ""
	}
	if child := el.SelectElement(name); child != nil {
		return child.Text()
	}
	return ""
}
