package notify

import (
	"context"
	"fmt"

	"github.com/slack-go/slack"
)

// SlackNotifier posts messages to one channel with chat.postMessage.
type SlackNotifier struct {
	client  *slack.Client
	channel string
}

// NewSlackNotifier creates a notifier authenticated with token. opts are
// passed to the slack client (tests point slack.OptionAPIURL at a fake).
func NewSlackNotifier(token, channel string, opts ...slack.Option) *SlackNotifier {
	return &SlackNotifier{
		client:  slack.New(token, opts...),
		channel: channel,
	}
}

func (n *SlackNotifier) Notify(ctx context.Context, m Message) error {
	_, _, err := n.client.PostMessageContext(ctx, n.channel, slack.MsgOptionText(m.Render(), false))
	if err != nil {
		return fmt.Errorf("notify: post to %s: %w", n.channel, err)
	}
	return nil
}
