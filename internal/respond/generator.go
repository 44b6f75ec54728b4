// Package respond turns free-text queries into SMS-fit replies: persona
// selection, completion calls, response caching, and MORE continuations.
package respond

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync/atomic"
	"time"

	"github.com/zulandar/textline/internal/cache"
	"github.com/zulandar/textline/internal/persona"
	"github.com/zulandar/textline/internal/sms"
)

// Completer is the completion-service collaborator.
type Completer interface {
	Complete(ctx context.Context, systemPrompt, userText string, maxTokens int) (string, error)
}

// Notifier receives an operator alert when completion failures sustain.
type Notifier interface {
	Notify(ctx context.Context, title, body string) error
}

// failureStreakThreshold is the consecutive-failure count that triggers one
// operator alert. The counter resets on the next successful completion.
const failureStreakThreshold = 5

// cacheableQueryLen is the input-length ceiling for general query caching.
// Short queries repeat often; long ones rarely do.
const cacheableQueryLen = 50

// noContinuationReply is returned by Continue when no slot is pending.
const noContinuationReply = "Sorry, I don't have a longer response available. Please ask your question again! 🤖"

// defaultTimeout bounds a single completion call.
const defaultTimeout = 15 * time.Second

// Generator orchestrates persona, completion, formatting, and the two cache
// roles for free-text queries.
type Generator struct {
	completer     Completer
	formatter     *sms.Formatter
	queryCache    *cache.Bounded
	continuations *cache.Continuations
	maxTokens     int
	timeout       time.Duration
	out           io.Writer
	fb            *fallbackPicker
	notifier      Notifier
	streak        atomic.Int64
}

// GeneratorOpts holds parameters for creating a Generator.
type GeneratorOpts struct {
	Completer     Completer
	Formatter     *sms.Formatter
	QueryCache    *cache.Bounded
	Continuations *cache.Continuations
	MaxTokens     int           // defaults to 150
	Timeout       time.Duration // per completion call; defaults to 15s
	Out           io.Writer     // defaults to os.Stdout
	Notifier      Notifier      // optional; alerted on sustained failures
}

// NewGenerator creates a Generator.
func NewGenerator(opts GeneratorOpts) (*Generator, error) {
	if opts.Completer == nil {
		return nil, fmt.Errorf("respond: completer is required")
	}
	if opts.Formatter == nil {
		return nil, fmt.Errorf("respond: formatter is required")
	}
	if opts.QueryCache == nil {
		return nil, fmt.Errorf("respond: query cache is required")
	}
	if opts.Continuations == nil {
		return nil, fmt.Errorf("respond: continuation store is required")
	}
	maxTokens := opts.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 150
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	out := opts.Out
	if out == nil {
		out = os.Stdout
	}
	return &Generator{
		completer:     opts.Completer,
		formatter:     opts.Formatter,
		queryCache:    opts.QueryCache,
		continuations: opts.Continuations,
		maxTokens:     maxTokens,
		timeout:       timeout,
		out:           out,
		fb:            newFallbackPicker(),
		notifier:      opts.Notifier,
	}, nil
}

// Generate produces an SMS-fit reply for a free-text message. The cache is
// checked first; on a miss the selected persona's prompt and the message go
// to the completion service. Truncated replies store the full text under the
// sender's continuation slot. Failures never propagate; they resolve to a
// fallback reply.
func (g *Generator) Generate(ctx context.Context, message, identity string) string {
	key := normalizeKey(message)
	if text, ok := g.queryCache.Get(key); ok {
		fmt.Fprintf(g.out, "respond: cache hit for %q\n", truncateForLog(key, 20))
		return text
	}

	p := persona.Select(message)

	cctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()
	full, err := g.completer.Complete(cctx, p.SystemPrompt, message, g.maxTokens)
	if err != nil || strings.TrimSpace(full) == "" {
		if err == nil {
			err = fmt.Errorf("empty completion")
		}
		fmt.Fprintf(g.out, "respond: completion failed (persona=%s): %v\n", p.Key, err)
		g.noteFailure(err)
		return g.Fallback(message)
	}
	g.streak.Store(0)

	res := g.formatter.Fit(full)
	if res.Truncated {
		g.continuations.Put(identity, full)
	}
	if len(message) < cacheableQueryLen && !res.Truncated {
		g.queryCache.Put(key, res.Text)
	}
	return res.Text
}

// Continue consumes the pending continuation slot for identity (the MORE
// command). The slot is single-use; absence yields a fixed reply.
func (g *Generator) Continue(identity string) string {
	if full, ok := g.continuations.Take(identity); ok {
		return full
	}
	return noContinuationReply
}

// noteFailure counts consecutive completion failures and alerts the operator
// once when the streak reaches the threshold.
func (g *Generator) noteFailure(err error) {
	n := g.streak.Add(1)
	if g.notifier == nil || n != failureStreakThreshold {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	body := fmt.Sprintf("%d consecutive completion failures; serving fallbacks. Last error: %v", n, err)
	if nerr := g.notifier.Notify(ctx, "Completion failures", body); nerr != nil {
		fmt.Fprintf(g.out, "respond: alert delivery failed: %v\n", nerr)
	}
}

// normalizeKey is the general-cache key: lowercased, trimmed message text.
func normalizeKey(message string) string {
	return strings.ToLower(strings.TrimSpace(message))
}

func truncateForLog(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
