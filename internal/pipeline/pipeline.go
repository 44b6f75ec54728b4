// Package pipeline is the transport-agnostic message-processing core:
// admission, command parsing, moderation, response generation, and SMS
// formatting. Transport adapters only translate request/response shapes.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/zulandar/textline/internal/command"
	"github.com/zulandar/textline/internal/gate"
	"github.com/zulandar/textline/internal/identity"
	"github.com/zulandar/textline/internal/respond"
	"github.com/zulandar/textline/internal/sms"
)

// Moderator is the content-safety collaborator.
type Moderator interface {
	Moderate(ctx context.Context, text string) (flagged bool, err error)
}

// InteractionLogger receives privacy-preserving interaction records. It must
// never receive raw message content or raw sender addresses.
type InteractionLogger interface {
	Log(identityHash, kind string, status int, elapsed time.Duration)
}

// Inbound is one received message, immutable once constructed.
type Inbound struct {
	Body string
	From string // raw sender address; never logged, hashed immediately
	To   string
}

// Outcome is the transport-facing result. When Err is set the transport
// returns a structured error body; otherwise Reply is rendered as a message
// document (an empty Reply acknowledges silently).
type Outcome struct {
	Status int
	Reply  string
	Err    string
}

// Canned replies owned by the pipeline.
const (
	deflectionReply = "I can't help with that request. Please ask me something else I can assist with! 😊"
	genericApology  = "Sorry, I'm experiencing technical difficulties. Please try again in a moment! 🤖"
)

// moderationTimeout bounds the moderation call; a hung classifier must not
// hold the request.
const moderationTimeout = 10 * time.Second

// Pipeline wires the processing stages together.
type Pipeline struct {
	salt      string
	gate      *gate.Gate
	state     gate.StateReader
	moderator Moderator
	generator *respond.Generator
	formatter *sms.Formatter
	logger    InteractionLogger
	out       io.Writer
}

// Opts holds parameters for creating a Pipeline.
type Opts struct {
	Salt      string
	Gate      *gate.Gate
	State     gate.StateReader
	Moderator Moderator
	Generator *respond.Generator
	Formatter *sms.Formatter
	Logger    InteractionLogger // optional; defaults to a no-op
	Out       io.Writer         // defaults to os.Stdout
}

// New creates a Pipeline.
func New(opts Opts) (*Pipeline, error) {
	if opts.Salt == "" {
		return nil, fmt.Errorf("pipeline: salt is required")
	}
	if opts.Gate == nil {
		return nil, fmt.Errorf("pipeline: gate is required")
	}
	if opts.State == nil {
		return nil, fmt.Errorf("pipeline: state reader is required")
	}
	if opts.Moderator == nil {
		return nil, fmt.Errorf("pipeline: moderator is required")
	}
	if opts.Generator == nil {
		return nil, fmt.Errorf("pipeline: generator is required")
	}
	if opts.Formatter == nil {
		return nil, fmt.Errorf("pipeline: formatter is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = nopLogger{}
	}
	out := opts.Out
	if out == nil {
		out = os.Stdout
	}
	return &Pipeline{
		salt:      opts.Salt,
		gate:      opts.Gate,
		state:     opts.State,
		moderator: opts.Moderator,
		generator: opts.Generator,
		formatter: opts.Formatter,
		logger:    logger,
		out:       out,
	}, nil
}

// Handle processes one inbound message end to end. It never panics out: any
// unexpected failure resolves to a 500 with the generic apology so the
// sender always receives a valid reply.
func (p *Pipeline) Handle(ctx context.Context, msg Inbound) (out Outcome) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(p.out, "pipeline: recovered: %v\n", r)
			out = Outcome{Status: http.StatusInternalServerError, Reply: genericApology}
		}
	}()

	if strings.TrimSpace(msg.Body) == "" || strings.TrimSpace(msg.From) == "" {
		return Outcome{Status: http.StatusBadRequest, Err: "missing required parameters"}
	}

	id, err := identity.Hash(msg.From, p.salt)
	if err != nil {
		return Outcome{Status: http.StatusBadRequest, Err: "missing required parameters"}
	}

	if d := p.gate.Check(msg.From, id); !d.Allowed {
		switch d.Denied {
		case gate.DenyBlocked:
			// Silent success: no reply text, nothing to signal the block.
			p.logger.Log(id, "blocked", http.StatusOK, time.Since(start))
			return Outcome{Status: http.StatusOK}
		case gate.DenyRateLimited:
			p.logger.Log(id, "ratelimited", http.StatusTooManyRequests, time.Since(start))
			return Outcome{Status: http.StatusTooManyRequests, Reply: d.Reply}
		default:
			// Kill switch / pause: reject without any further processing.
			return Outcome{Status: http.StatusServiceUnavailable, Reply: d.Reply}
		}
	}

	parsed := command.Parse(msg.Body)

	var reply, kind string
	switch {
	case parsed.IsCommand:
		reply = p.handleCommand(parsed, id)
		kind = "command:" + strings.ToLower(string(parsed.Kind))

	default:
		st := p.state.Snapshot()
		if st.ModerationEnabled && !p.moderationAllows(ctx, msg.Body) {
			reply = deflectionReply
			kind = "moderated"
		} else if st.FallbackMode {
			reply = p.generator.Fallback(msg.Body)
			kind = "fallback"
		} else {
			reply = p.generator.Generate(ctx, msg.Body, id)
			kind = "query"
		}
	}

	reply = p.formatter.WithCompliance(reply)
	p.logger.Log(id, kind, http.StatusOK, time.Since(start))
	return Outcome{Status: http.StatusOK, Reply: reply}
}

// moderationAllows applies the fail-open policy: classifier errors and
// timeouts count as safe, prioritizing availability over strictness.
func (p *Pipeline) moderationAllows(ctx context.Context, text string) bool {
	mctx, cancel := context.WithTimeout(ctx, moderationTimeout)
	defer cancel()

	flagged, err := p.moderator.Moderate(mctx, text)
	if err != nil {
		fmt.Fprintf(p.out, "pipeline: moderation unavailable, failing open: %v\n", err)
		return true
	}
	return !flagged
}

type nopLogger struct{}

func (nopLogger) Log(identityHash, kind string, status int, elapsed time.Duration) {}
