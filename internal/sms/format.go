// Package sms fits reply text to SMS transport limits and handles the
// occasional compliance footer.
package sms

import (
	"math/rand"
	"strings"
	"sync"
)

const (
	// DefaultMaxLength is the transport-safe reply length.
	DefaultMaxLength = 150

	// continuationMarker is appended to every truncated reply.
	continuationMarker = "...(send MORE)"

	// reservedSuffix is the length budget held back for the marker while
	// accumulating sentences.
	reservedSuffix = 15

	// DefaultComplianceProbability is the per-message chance of appending the
	// regulatory footer.
	DefaultComplianceProbability = 0.1

	complianceFooter = "\n\nReply STOP to end. Msg&data rates may apply."
)

// Result is the outcome of fitting text to the transport limit.
type Result struct {
	Text      string
	Truncated bool
}

// Truncate fits text within maxLength. Short text passes through unchanged.
// Longer text is cut at sentence boundaries (". "), greedily keeping whole
// sentences while the running length plus the reserved marker budget fits.
// If not even the first sentence fits, the raw text is hard-cut. The marker
// is always appended on truncation, and the output of a truncation is itself
// short enough to pass through unchanged.
func Truncate(text string, maxLength int) Result {
	if maxLength <= reservedSuffix {
		maxLength = reservedSuffix + 1
	}
	if len(text) <= maxLength {
		return Result{Text: text}
	}

	var b strings.Builder
	for _, sentence := range strings.Split(text, ". ") {
		if b.Len()+len(sentence)+2 > maxLength-reservedSuffix {
			break
		}
		b.WriteString(sentence)
		b.WriteString(". ")
	}

	kept := b.String()
	if kept == "" {
		kept = text[:maxLength-reservedSuffix]
	}
	return Result{
		Text:      strings.TrimSpace(kept) + continuationMarker,
		Truncated: true,
	}
}

// Formatter applies a configured length limit and compliance cadence.
// Safe for concurrent use.
type Formatter struct {
	maxLength      int
	complianceProb float64

	mu  sync.Mutex
	rng *rand.Rand
}

// NewFormatter creates a Formatter. Non-positive maxLength falls back to
// DefaultMaxLength; a negative probability falls back to the default, and
// zero disables the footer.
func NewFormatter(maxLength int, complianceProb float64, seed int64) *Formatter {
	if maxLength <= 0 {
		maxLength = DefaultMaxLength
	}
	if complianceProb < 0 {
		complianceProb = DefaultComplianceProbability
	}
	return &Formatter{
		maxLength:      maxLength,
		complianceProb: complianceProb,
		rng:            rand.New(rand.NewSource(seed)),
	}
}

// Fit truncates text to the configured limit.
func (f *Formatter) Fit(text string) Result {
	return Truncate(text, f.maxLength)
}

// MaxLength returns the configured limit.
func (f *Formatter) MaxLength() int {
	return f.maxLength
}

// WithCompliance appends the regulatory footer with the configured
// probability. The cadence is probabilistic rather than every-Nth so
// reminders land irregularly across users.
func (f *Formatter) WithCompliance(text string) string {
	f.mu.Lock()
	roll := f.rng.Float64()
	f.mu.Unlock()

	if roll < f.complianceProb {
		return text + complianceFooter
	}
	return text
}
