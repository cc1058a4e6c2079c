package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/awnumar/memguard"
	"github.com/slack-go/slack"

	"github.com/caesar-terminal/listwatch/internal/config"
	"github.com/caesar-terminal/listwatch/internal/fetch"
	"github.com/caesar-terminal/listwatch/internal/kms"
	"github.com/caesar-terminal/listwatch/internal/logger"
	"github.com/caesar-terminal/listwatch/internal/metrics"
	"github.com/caesar-terminal/listwatch/internal/notify"
	"github.com/caesar-terminal/listwatch/internal/runner"
	"github.com/caesar-terminal/listwatch/internal/store"
)

func main() {
	os.Exit(run())
}

func run() int {
	defer memguard.Purge()

	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		return 1
	}

	log, logCloser, err := logger.New(logger.Options{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		File:       cfg.Log.File,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		return 1
	}
	defer logCloser.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	st, closeStore, err := openStore(cfg)
	if err != nil {
		log.Error("failed to open store", "error", err)
		return 1
	}
	defer closeStore()

	notifier, err := newNotifier(ctx, cfg, log)
	if err != nil {
		log.Error("failed to create notifier", "error", err)
		return 1
	}

	fetcher := fetch.New(fetch.Options{
		Timeout:            cfg.Fetch.Timeout,
		MaxRetries:         cfg.Fetch.MaxRetries,
		InsecureSkipVerify: cfg.Fetch.InsecureSkipVerify,
		InitialBackoff:     fetch.DefaultOptions().InitialBackoff,
	}, log)

	log.Info("listwatch starting", "env", cfg.Env, "markets", len(cfg.Markets), "dry_run", cfg.DryRun)
	rep, runErr := runner.New(fetcher, st, notifier, cfg.Markets, log).Run(ctx)

	m := metrics.New()
	m.Record(rep)
	if cfg.Metrics.PushgatewayURL != "" {
		if err := m.Push(ctx, cfg.Metrics.PushgatewayURL, cfg.Metrics.Job); err != nil {
			log.Error("failed to push metrics", "error", err)
		}
	}

	if runErr != nil {
		log.Error("run failed", "run_id", rep.RunID, "error", runErr)
		fmt.Fprintf(os.Stderr, "listwatch: %v\n", runErr)
		return 1
	}
	return 0
}

func openStore(cfg *config.Config) (store.Store, func(), error) {
	switch cfg.Store.Backend {
	case "redis":
		client := store.NewRedisClient(cfg.Store.Redis.Addr, cfg.Store.Redis.Password, cfg.Store.Redis.DB)
		closeFn := func() {
			if c, ok := client.(io.Closer); ok {
				c.Close()
			}
		}
		return store.NewRedisStore(client, cfg.Store.Redis.Prefix), closeFn, nil
	default:
		fs, err := store.NewFileStore(cfg.Store.Dir)
		if err != nil {
			return nil, nil, err
		}
		return fs, func() {}, nil
	}
}

func newNotifier(ctx context.Context, cfg *config.Config, log *slog.Logger) (notify.Notifier, error) {
	if cfg.DryRun {
		return notify.NewLogNotifier(log), nil
	}

	var tok *kms.Token
	var err error
	if cfg.Slack.TokenCiphertext != "" {
		client, kerr := kms.New(ctx, kms.Options{Region: cfg.AWS.Region, Endpoint: cfg.AWS.LocalStackEndpoint})
		if kerr != nil {
			return nil, kerr
		}
		tok, err = client.DecryptToken(ctx, cfg.Slack.TokenCiphertext)
	} else {
		tok, err = kms.SealToken([]byte(cfg.Slack.Token))
	}
	if err != nil {
		return nil, err
	}

	plain, err := tok.Reveal()
	if err != nil {
		return nil, err
	}

	var opts []slack.Option
	if cfg.Slack.APIURL != "" {
		opts = append(opts, slack.OptionAPIURL(cfg.Slack.APIURL))
	}
	slackNotifier := notify.NewSlackNotifier(plain, cfg.Slack.Channel, opts...)
	return notify.NewBreaker(notify.BreakerConfig{
		MaxFailures: cfg.Slack.MaxFailures,
		CoolOff:     cfg.Slack.CoolOff,
	}, slackNotifier), nil
}
