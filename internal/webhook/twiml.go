package webhook

import "encoding/xml"

// messagingResponse is the TwiML reply document. An empty Message omits the
// element entirely, producing the bare <Response/> used for silent
// acknowledgments.
type messagingResponse struct {
	XMLName xml.Name `xml:"Response"`
	Message string   `xml:"Message,omitempty"`
}

// TwiML renders the reply text as a message-response XML document.
func TwiML(text string) string {
	out, err := xml.Marshal(messagingResponse{Message: text})
	if err != nil {
		// Marshalling a two-field struct cannot fail at runtime; keep the
		// sender covered anyway.
		return xml.Header + "<Response></Response>"
	}
	return xml.Header + string(out)
}
