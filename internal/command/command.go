// Package command classifies inbound message text as a control command or a
// free-text query.
package command

import "strings"

// Kind identifies a recognized control command.
type Kind string

// Recognized command kinds. None marks free-text queries.
const (
	Stop   Kind = "STOP"
	Help   Kind = "HELP"
	More   Kind = "MORE"
	Start  Kind = "START"
	Status Kind = "STATUS"
	Config Kind = "CONFIG"
	None   Kind = "NONE"
)

// keywords is the registered match table. Matching is first-match-wins, so
// this order is the tie-break for overlapping prefixes.
var keywords = []Kind{Stop, Help, More, Start, Status, Config}

// Parsed is the classification result for one message body.
type Parsed struct {
	IsCommand bool
	Kind      Kind
	Remainder string // text after the keyword, trimmed; reserved for command arguments
}

// Parse normalizes the text (trim, uppercase) and matches it against the
// keyword table by prefix, so "stop please" parses as STOP. Prefix semantics
// also mean "stopwatch" parses as STOP; kept to match the service's
// established behavior.
func Parse(text string) Parsed {
	clean := strings.ToUpper(strings.TrimSpace(text))
	for _, k := range keywords {
		if strings.HasPrefix(clean, string(k)) {
			return Parsed{
				IsCommand: true,
				Kind:      k,
				Remainder: strings.TrimSpace(clean[len(k):]),
			}
		}
	}
	return Parsed{Kind: None}
}
