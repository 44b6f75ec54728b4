// Package alert delivers operator notifications (kill-switch flips, digests)
// to chat platforms. All delivery is best-effort.
package alert

import (
	"context"
	"strings"
)

// Notifier delivers one operator alert.
type Notifier interface {
	Notify(ctx context.Context, title, body string) error
}

// Nop is a Notifier that drops everything.
type Nop struct{}

// Notify implements Notifier.
func (Nop) Notify(ctx context.Context, title, body string) error { return nil }

// Multi fans an alert out to several notifiers, collecting errors.
type Multi []Notifier

// Notify implements Notifier. Every target is attempted; errors are joined.
func (m Multi) Notify(ctx context.Context, title, body string) error {
	var errs []string
	for _, n := range m {
		if err := n.Notify(ctx, title, body); err != nil {
			errs = append(errs, err.Error())
		}
	}
	if len(errs) > 0 {
		return &multiError{msgs: errs}
	}
	return nil
}

type multiError struct {
	msgs []string
}

func (e *multiError) Error() string {
	return "alert: " + strings.Join(e.msgs, "; ")
}
