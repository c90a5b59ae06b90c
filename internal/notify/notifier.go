// Package notify delivers operator alerts for scan results. An Alert carries
// a typed event so operators can subscribe to only the event kinds they care
// about; delivery fans out to every configured channel.
package notify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
)

// Event classifies an alert. Operators filter on it via the notify.events
// config list.
type Event string

// EventOpportunity is raised when a scan pass finds arbitrage opportunities.
const EventOpportunity Event = "opportunity"

// Alert is one operator notification: a typed event with a short title and a
// preformatted body.
type Alert struct {
	Event Event
	Title string
	Body  string
}

// Sender is one delivery channel (Telegram chat, Discord webhook, ...).
type Sender interface {
	Deliver(ctx context.Context, alert Alert) error
	// Name identifies the channel in logs and aggregated errors.
	Name() string
}

// Notifier fans alerts out to its senders, dropping alerts whose event is not
// in the allowed set.
type Notifier struct {
	senders []Sender
	allowed map[Event]struct{} // empty set allows everything
	logger  *slog.Logger
}

// NewNotifier builds a Notifier for the given senders. events lists the
// allowed event names as configured; blank entries are ignored, and an empty
// list allows every event.
func NewNotifier(senders []Sender, events []string, logger *slog.Logger) *Notifier {
	allowed := make(map[Event]struct{}, len(events))
	for _, e := range events {
		if e = strings.TrimSpace(e); e != "" {
			allowed[Event(e)] = struct{}{}
		}
	}
	return &Notifier{
		senders: senders,
		allowed: allowed,
		logger:  logger.With(slog.String("component", "notifier")),
	}
}

// Send delivers the alert on every channel. Delivery is attempted on all
// senders even when some fail; the failures come back joined into one error.
func (n *Notifier) Send(ctx context.Context, alert Alert) error {
	if !n.allows(alert.Event) {
		n.logger.DebugContext(ctx, "alert suppressed by event filter",
			slog.String("event", string(alert.Event)),
		)
		return nil
	}

	var errs []error
	for _, s := range n.senders {
		if err := s.Deliver(ctx, alert); err != nil {
			n.logger.ErrorContext(ctx, "alert delivery failed",
				slog.String("sender", s.Name()),
				slog.String("error", err.Error()),
			)
			errs = append(errs, fmt.Errorf("%s: %w", s.Name(), err))
			continue
		}
		n.logger.DebugContext(ctx, "alert delivered",
			slog.String("sender", s.Name()),
			slog.String("title", alert.Title),
		)
	}
	return errors.Join(errs...)
}

func (n *Notifier) allows(event Event) bool {
	if len(n.allowed) == 0 {
		return true
	}
	_, ok := n.allowed[event]
	return ok
}
