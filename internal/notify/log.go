package notify

import (
	"context"
	"log/slog"
)

// LogNotifier is the dry-run notifier: it logs each message and never
// fails.
type LogNotifier struct {
	logger *slog.Logger
}

func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) Notify(ctx context.Context, m Message) error {
	n.logger.InfoContext(ctx, "dry run, message not posted", "text", m.Render())
	return nil
}
