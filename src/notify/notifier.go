// Package notify forwards position events to chat channels.
package notify

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"papertrader/src/model"
)

// Sender delivers one formatted message.
type Sender interface {
	Send(ctx context.Context, title, message string) error
	Name() string
}

// Notifier is an events.Sink. Publish queues the event; Run delivers queued
// events until its context ends. A full queue drops the event.
type Notifier struct {
	sender Sender
	events map[model.EventType]bool
	queue  chan model.Event
	logger *logrus.Entry
}

func NewNotifier(logger *logrus.Entry, sender Sender, events []string, queueSize int) *Notifier {
	if logger == nil {
		logger = logrus.NewEntry(logrus.StandardLogger())
	}
	if queueSize <= 0 {
		queueSize = 100
	}
	allowed := make(map[model.EventType]bool, len(events))
	for _, e := range events {
		if e = strings.TrimSpace(e); e != "" {
			allowed[model.EventType(e)] = true
		}
	}
	return &Notifier{
		sender: sender,
		events: allowed,
		queue:  make(chan model.Event, queueSize),
		logger: logger.WithFields(logrus.Fields{"component": "Notifier", "sender": sender.Name()}),
	}
}

func (n *Notifier) Publish(ev model.Event) {
	if len(n.events) > 0 && !n.events[ev.Type] {
		return
	}
	select {
	case n.queue <- ev:
	default:
		n.logger.WithField("type", ev.Type).Warn("notification queue full, event dropped")
	}
}

func (n *Notifier) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev := <-n.queue:
			title, message := Format(ev)
			if err := n.sender.Send(ctx, title, message); err != nil {
				n.logger.WithError(err).WithField("type", ev.Type).Error("notification failed")
			}
		}
	}
}

// Format renders an event as a title and a message body.
func Format(ev model.Event) (title, message string) {
	var b strings.Builder
	if ev.TokenID != "" {
		fmt.Fprintf(&b, "Token: `%s`\n", ev.TokenID)
	}
	if ev.Price != nil {
		fmt.Fprintf(&b, "Price: %s\n", ev.Price.String())
	}
	if ev.StopLossPrice != nil {
		fmt.Fprintf(&b, "Stop: %s\n", ev.StopLossPrice.String())
	}
	if r := ev.Record; r != nil && r.RealizedPnl != nil {
		fmt.Fprintf(&b, "PnL: %s USD", r.RealizedPnl.StringFixed(2))
		if r.PnlPercentage != nil {
			fmt.Fprintf(&b, " (%s%%)", r.PnlPercentage.StringFixed(2))
		}
		b.WriteString("\n")
	}
	if ev.Message != "" {
		b.WriteString(ev.Message)
	}

	switch ev.Type {
	case model.EventPositionOpened:
		title = "Position opened"
	case model.EventStopRaised:
		title = "Trailing stop raised"
	case model.EventTakeProfit:
		title = "Take profit hit"
	case model.EventPositionClosed:
		title = "Position closed"
	case model.EventPriceStale:
		title = "Price feed stale"
	case model.EventPriceRecovered:
		title = "Price feed recovered"
	case model.EventSignalRejected:
		title = "Signal rejected"
	case model.EventAccountReset:
		title = "Account reset"
	default:
		title = string(ev.Type)
	}
	return title, strings.TrimRight(b.String(), "\n")
}
