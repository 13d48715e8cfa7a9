// Package notifier renders resolved memory entries as speech.
//
// Announcing is a best-effort side effect. An [Announcer] never returns an
// error and never blocks the caller on the speech backend; backend failures
// are logged and dropped inside this package.
package notifier

import (
	"context"
	"fmt"
)

// Announcer speaks a line of text on a best-effort basis.
type Announcer interface {
	Announce(ctx context.Context, text string)
}

// Speaker is a speech backend. Unlike Announcer it reports failures; the Pool
// is responsible for containing them.
type Speaker interface {
	Speak(ctx context.Context, text string) error
}

// Text builds the announcement for an identified person.
func Text(relationship, label, summary string) string {
	return fmt.Sprintf("This is your %s named %s. Recent memory: %s", relationship, label, summary)
}

// Nop is an Announcer used when speech is disabled.
type Nop struct{}

// Announce does nothing.
func (Nop) Announce(context.Context, string) {}
