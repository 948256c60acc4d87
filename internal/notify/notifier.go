// Package notify announces ledger events to operator channels (Telegram,
// Discord). Events can be filtered so operators only hear about the ones
// they care about, typically settlements.
package notify

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sonicbet/sonicbet/internal/domain"
)

// Event types the ledger emits.
const (
	EventMarketCreated  = "market.created"
	EventBetPlaced      = "bet.placed"
	EventMarketResolved = "market.resolved"
	EventRewardClaimed  = "reward.claimed"
)

// Sender is one delivery channel.
type Sender interface {
	// Send delivers a notification with the given title and message body.
	Send(ctx context.Context, title, message string) error
	// Name identifies the sender ("telegram", "discord").
	Name() string
}

// Notifier fans notifications out to all registered senders, filtered by
// event type. An empty filter allows every event.
type Notifier struct {
	senders []Sender
	events  map[string]bool
	logger  *slog.Logger
}

// NewNotifier creates a Notifier delivering to the given senders. Only
// events listed in events pass the filter; an empty list allows all.
func NewNotifier(senders []Sender, events []string, logger *slog.Logger) *Notifier {
	allowed := make(map[string]bool, len(events))
	for _, e := range events {
		allowed[strings.TrimSpace(e)] = true
	}
	return &Notifier{
		senders: senders,
		events:  allowed,
		logger:  logger.With(slog.String("component", "notifier")),
	}
}

// Notify delivers to all senders if the event type passes the filter.
func (n *Notifier) Notify(ctx context.Context, event, title, message string) error {
	if len(n.events) > 0 && !n.events[event] {
		n.logger.DebugContext(ctx, "event filtered out", slog.String("event", event))
		return nil
	}

	if len(n.senders) == 0 {
		return nil
	}

	var errs []string
	for _, s := range n.senders {
		if err := s.Send(ctx, title, message); err != nil {
			n.logger.ErrorContext(ctx, "sender failed",
				slog.String("sender", s.Name()),
				slog.String("error", err.Error()),
			)
			errs = append(errs, fmt.Sprintf("%s: %v", s.Name(), err))
			continue
		}
		n.logger.DebugContext(ctx, "notification sent",
			slog.String("sender", s.Name()),
			slog.String("title", title),
		)
	}

	if len(errs) > 0 {
		return fmt.Errorf("notify: %d sender(s) failed: %s", len(errs), strings.Join(errs, "; "))
	}
	return nil
}

// SettlementMessage renders a settlement announcement body.
func SettlementMessage(st domain.Settlement) string {
	if st.WinningBets == 0 {
		return fmt.Sprintf("Market %s resolved %s. No winning bets; pool of %.2f S forfeited.",
			st.MarketID, st.Result, st.TotalPool)
	}
	return fmt.Sprintf("Market %s resolved %s. Pool of %.2f S split across %d winning bet(s).",
		st.MarketID, st.Result, st.TotalPool, st.WinningBets)
}
