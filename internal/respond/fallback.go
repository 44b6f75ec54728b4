package respond

import (
	"math/rand"
	"strings"
	"sync"
)

// genericFallbacks are the apologies used when the completion service is
// down and no topic matches.
var genericFallbacks = []string{
	"I'm having trouble right now. Could you try asking again in a moment? 🤖",
	"Sorry, I couldn't process that. Could you rephrase your question? 💭",
	"I'm experiencing technical difficulties. Please try again shortly! ⚙️",
}

// topicFallbacks map message keywords to canned topic replies, checked in
// this order.
var topicFallbacks = []struct {
	keyword string
	reply   string
}{
	{"weather", "I can't check weather right now. Try a local weather app or website! ☀️"},
	{"recipe", "I can't access recipes right now. Try googling '[food name] recipe'! 🍳"},
	{"scam", "When in doubt, don't click links or share personal info. Trust your instincts! 🛡️"},
}

// fallbackPicker chooses a generic apology uniformly. A mutex guards the rng
// since fallbacks can fire from concurrent requests.
type fallbackPicker struct {
	mu  sync.Mutex
	rng *rand.Rand
}

func newFallbackPicker() *fallbackPicker {
	return &fallbackPicker{rng: rand.New(rand.NewSource(rand.Int63()))}
}

func (f *fallbackPicker) pick() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return genericFallbacks[f.rng.Intn(len(genericFallbacks))]
}

// Fallback returns a canned reply for the original user message: a
// topic-specific answer when a known keyword appears, otherwise a uniformly
// chosen generic apology. Never fails.
func (g *Generator) Fallback(message string) string {
	msg := strings.ToLower(message)
	for _, tf := range topicFallbacks {
		if strings.Contains(msg, tf.keyword) {
			return tf.reply
		}
	}
	return g.fb.pick()
}
