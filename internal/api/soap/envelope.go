package soap

import (
	"bytes"
	"encoding/xml"
	"strings"
)

const envelopeNS = "http://schemas.xmlsoap.org/soap/envelope/"

// Envelope is the response wrapper written back to SOAP clients.
type Envelope struct {
	XMLName xml.Name    `xml:"soapenv:Envelope"`
	NS      string      `xml:"xmlns:soapenv,attr"`
	Header  *Header     `xml:"soapenv:Header,omitempty"`
	Body    interface{} `xml:"soapenv:Body"`
}

// Header is the optional response header block.
type Header struct {
	Content interface{} `xml:",any"`
}

// Fault is the SOAP 1.1 fault element.
type Fault struct {
	XMLName xml.Name `xml:"soapenv:Fault"`
	Code    string   `xml:"faultcode"`
	Message string   `xml:"faultstring"`
}

// NewEnvelope wraps a body payload in a response envelope.
func NewEnvelope(body interface{}) Envelope {
	return Envelope{NS: envelopeNS, Body: body}
}

// ExtractAuthorization scans the raw envelope for an Authorization element
// inside the SOAP header block and returns its trimmed text content, or ""
// when absent. Both "Bearer <token>" and bare token forms are returned as
// the bare token.
func ExtractAuthorization(raw []byte) string {
	decoder := xml.NewDecoder(bytes.NewReader(raw))

	inHeader := false
	inAuthorization := false
	var value strings.Builder

	for {
		tok, err := decoder.Token()
		if err != nil {
			return ""
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "Header":
				inHeader = true
			case "Authorization":
				if inHeader {
					inAuthorization = true
					value.Reset()
				}
			case "Body":
				// the header block is over, nothing left to find
				return ""
			}
		case xml.CharData:
			if inAuthorization {
				value.Write(t)
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "Authorization":
				if inAuthorization {
					return NormalizeToken(value.String())
				}
			case "Header":
				inHeader = false
			}
		}
	}
}

// NormalizeToken strips an optional Bearer prefix and surrounding space.
// Both "Bearer <token>" and a bare token yield the token itself.
func NormalizeToken(value string) string {
	value = strings.TrimSpace(value)
	if strings.HasPrefix(value, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(value, "Bearer "))
	}
	return value
}

// BodyElement positions the decoder at the first child element of the SOAP
// body and returns it, so operation handlers can decode their typed request
// from it.
func BodyElement(raw []byte) (*xml.Decoder, xml.StartElement, error) {
	decoder := xml.NewDecoder(bytes.NewReader(raw))

	inBody := false
	for {
		tok, err := decoder.Token()
		if err != nil {
			return nil, xml.StartElement{}, err
		}
		start, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		if !inBody {
			if start.Name.Local == "Body" {
				inBody = true
			}
			continue
		}
		return decoder, start, nil
	}
}
