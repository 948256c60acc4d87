// Package service implements the application use cases on top of the ledger:
// market administration, bet placement, settlement, and reward claims. Each
// service mirrors durable history and publishes bus events on a best-effort
// basis; the ledger alone decides what happened.
package service

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/sonicbet/sonicbet/internal/domain"
)

// Bus channels the services publish on. The websocket hub subscribes to all
// of them.
const (
	ChannelMarkets     = "sonicbet.markets"
	ChannelBets        = "sonicbet.bets"
	ChannelSettlements = "sonicbet.settlements"
	ChannelRewards     = "sonicbet.rewards"
)

// Event is the JSON envelope published on the signal bus. Exactly one of the
// payload fields is set, matching Type.
type Event struct {
	Type       string                  `json:"type"`
	At         time.Time               `json:"at"`
	Market     *domain.Market          `json:"market,omitempty"`
	Bet        *domain.Bet             `json:"bet,omitempty"`
	Settlement *domain.Settlement      `json:"settlement,omitempty"`
	Reward     *domain.ClaimableReward `json:"reward,omitempty"`
}

// publishEvent marshals and publishes an event. Publish failures are logged
// and swallowed: the bus only feeds UI push, never state.
func publishEvent(ctx context.Context, bus domain.SignalBus, logger *slog.Logger, channel string, ev Event) {
	if bus == nil {
		return
	}
	ev.At = time.Now()

	payload, err := json.Marshal(ev)
	if err != nil {
		logger.WarnContext(ctx, "event marshal failed",
			slog.String("type", ev.Type),
			slog.String("error", err.Error()),
		)
		return
	}
	if err := bus.Publish(ctx, channel, payload); err != nil {
		logger.WarnContext(ctx, "event publish failed",
			slog.String("channel", channel),
			slog.String("type", ev.Type),
			slog.String("error", err.Error()),
		)
	}
}
