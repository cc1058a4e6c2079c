// Package notify turns change events into chat messages and delivers them.
package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/caesar-terminal/listwatch/internal/engine"
	"github.com/caesar-terminal/listwatch/internal/instrument"
)

const timeLayout = "2006-01-02 15:04:05"

// Message is one alert line. Exchange is meaningful only when HasExchange
// is set; the heartbeat carries no exchange.
type Message struct {
	Text        string
	Exchange    instrument.Exchange
	HasExchange bool
}

// Render returns the text as posted, prefixed with the exchange emoji when
// the message is tagged.
func (m Message) Render() string {
	if !m.HasExchange {
		return m.Text
	}
	return m.Exchange.SlackEmoji() + " " + m.Text
}

// Notifier delivers a single message.
type Notifier interface {
	Notify(ctx context.Context, m Message) error
}

// Format renders ev as a message tagged with its instrument's exchange.
func Format(ev engine.Event) Message {
	var text string
	switch e := ev.(type) {
	case engine.Removed:
		text = fmt.Sprintf("Old pair removed: %s", e.Instr)
	case engine.Added:
		text = fmt.Sprintf("New pair added: %s, status: %s", e.Instr, e.Status)
	case engine.ScheduledRollout:
		text = fmt.Sprintf("%s will rollout at %s UTC", e.Instr, e.At.UTC().Format(timeLayout))
	case engine.StatusChanged:
		text = fmt.Sprintf("Status changed: %s was %s, now %s", e.Instr, e.From, e.To)
	case engine.ImminentRollout:
		text = fmt.Sprintf("%s will rollout in %s", e.Instr, untilRollout(e.In))
	default:
		panic(fmt.Sprintf("notify: unhandled event %T", ev))
	}
	return Message{
		Text:        text,
		Exchange:    ev.Instrument().Market.Exchange(),
		HasExchange: true,
	}
}

// untilRollout rounds d to the second. A listing is only reported while
// still in the future, so it never renders below one second.
func untilRollout(d time.Duration) time.Duration {
	d = d.Round(time.Second)
	if d < time.Second {
		return time.Second
	}
	return d
}

// Heartbeat is the untagged message sent after a run persisted its
// snapshots.
func Heartbeat(now time.Time) Message {
	return Message{Text: fmt.Sprintf("Last updated at %s UTC", now.UTC().Format(timeLayout))}
}
