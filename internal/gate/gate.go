// Package gate applies the ordered admission vetoes (kill switch, pause
// window, block list, rate limit) before any message is processed.
package gate

import (
	"fmt"
	"time"
)

// DenialKind identifies which veto rejected a message.
type DenialKind string

// Denial kinds, in evaluation order.
const (
	DenyNone        DenialKind = ""
	DenyKillSwitch  DenialKind = "killswitch"
	DenyPaused      DenialKind = "paused"
	DenyBlocked     DenialKind = "blocked"
	DenyRateLimited DenialKind = "ratelimited"
)

// Canned rejection replies. Blocked senders get no reply at all so the block
// is not signalled to them.
const (
	killSwitchReply = "Service is temporarily unavailable. Please try again later."
	pausedReply     = "Service is paused for maintenance. Please try again in a few minutes."
	rateLimitReply  = "You're sending messages too quickly. Please wait a moment before trying again."
)

// Decision is the admission outcome for one inbound message.
type Decision struct {
	Allowed bool
	Denied  DenialKind
	Reply   string // canned rejection text; empty for allowed and for blocked
}

// Gate evaluates the admission vetoes in fixed order. Evaluation is
// side-effect-free except that an allowed pass increments the rate counter.
type Gate struct {
	state   StateReader
	limiter Limiter
	now     func() time.Time
}

// Opts holds parameters for creating a Gate.
type Opts struct {
	State   StateReader
	Limiter Limiter
	Now     func() time.Time // defaults to time.Now
}

// New creates a Gate.
func New(opts Opts) (*Gate, error) {
	if opts.State == nil {
		return nil, fmt.Errorf("gate: state reader is required")
	}
	if opts.Limiter == nil {
		return nil, fmt.Errorf("gate: limiter is required")
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Gate{state: opts.State, limiter: opts.Limiter, now: now}, nil
}

// Check evaluates the vetoes for one message. Block-list matching uses the
// raw sender address, since operators block the numbers they see; the rate
// limiter keys on the hashed identity.
func (g *Gate) Check(rawFrom, identity string) Decision {
	st := g.state.Snapshot()

	if st.KillSwitch {
		return Decision{Denied: DenyKillSwitch, Reply: killSwitchReply}
	}
	if !st.PausedUntil.IsZero() && st.PausedUntil.After(g.now()) {
		return Decision{Denied: DenyPaused, Reply: pausedReply}
	}
	if g.state.IsBlocked(rawFrom) {
		return Decision{Denied: DenyBlocked}
	}
	if !g.limiter.Allow(identity, st.RatePerMinute) {
		return Decision{Denied: DenyRateLimited, Reply: rateLimitReply}
	}
	return Decision{Allowed: true}
}
