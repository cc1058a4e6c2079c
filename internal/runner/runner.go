// Package runner executes one polling pass: fetch every market, diff it
// against the stored baseline, deliver alerts and persist the new
// baselines only if every alert was delivered.
package runner

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/gammazero/deque"
	"github.com/google/uuid"

	"github.com/caesar-terminal/listwatch/internal/engine"
	"github.com/caesar-terminal/listwatch/internal/instrument"
	"github.com/caesar-terminal/listwatch/internal/listing"
	"github.com/caesar-terminal/listwatch/internal/notify"
	"github.com/caesar-terminal/listwatch/internal/store"
)

// Fetcher returns the raw listing document of a market.
type Fetcher interface {
	FetchListing(ctx context.Context, market instrument.Market) ([]byte, error)
}

// MarketReport summarises one market within a run.
type MarketReport struct {
	Market instrument.Market
	// Baseline is the outcome of loading the stored snapshot.
	Baseline    store.Outcome
	Events      map[engine.Kind]int
	Instruments int
	Tradable    int
}

// Report summarises a run.
type Report struct {
	RunID   string
	Started time.Time
	Markets []MarketReport
	// Sent and Failed count event notifications; the heartbeat is excluded.
	Sent      int
	Failed    int
	Persisted bool
}

// tally folds notification outcomes.
type tally struct {
	sent   int
	failed int
}

func (t tally) add(err error) tally {
	if err != nil {
		t.failed++
	} else {
		t.sent++
	}
	return t
}

// pair is a freshly parsed snapshot and the baseline it is compared with.
type pair struct {
	next instrument.Snapshot
	prev instrument.Snapshot
}

type Runner struct {
	fetcher  Fetcher
	store    store.Store
	notifier notify.Notifier
	markets  []instrument.Market
	logger   *slog.Logger
	nowFunc  func() time.Time
}

func New(fetcher Fetcher, st store.Store, notifier notify.Notifier, markets []instrument.Market, logger *slog.Logger) *Runner {
	return &Runner{
		fetcher:  fetcher,
		store:    st,
		notifier: notifier,
		markets:  markets,
		logger:   logger,
		nowFunc:  func() time.Time { return time.Now().UTC() },
	}
}

// Run performs one pass. A fetch, parse or first-baseline save failure
// aborts the run and is returned; failed notifications are only counted,
// and when any occurred no snapshot of the diffed markets is persisted so
// the next run reproduces the same alerts.
func (r *Runner) Run(ctx context.Context) (Report, error) {
	rep := Report{RunID: uuid.NewString(), Started: r.nowFunc()}
	log := r.logger.With("run_id", rep.RunID)

	var pending []pair
	for _, market := range r.markets {
		mlog := log.With("market", market)

		raw, err := r.fetcher.FetchListing(ctx, market)
		if err != nil {
			return rep, fmt.Errorf("runner: fetch %s: %w", market, err)
		}
		next, err := listing.Parse(market, raw)
		if err != nil {
			return rep, fmt.Errorf("runner: parse %s: %w", market, err)
		}

		res := r.store.Load(ctx, market)
		mr := newMarketReport(next, res.Outcome)
		switch res.Outcome {
		case store.Found:
			pending = append(pending, pair{next: next, prev: res.Snapshot})
			rep.Markets = append(rep.Markets, mr)
			continue
		case store.Missing:
			mlog.Info("no stored snapshot, saving baseline")
		case store.Invalid:
			mlog.Warn("stored snapshot is invalid, saving new baseline", "error", res.Err)
		default:
			mlog.Error("stored snapshot is unreadable, saving new baseline", "error", res.Err)
		}
		if err := r.store.Save(ctx, next); err != nil {
			return rep, fmt.Errorf("runner: save baseline %s: %w", market, err)
		}
		rep.Markets = append(rep.Markets, mr)
	}

	now := r.nowFunc()
	var queue deque.Deque[notify.Message]
	for _, p := range pending {
		events := engine.Diff(p.next, p.prev, now)
		mr := rep.market(p.next.Market)
		for _, ev := range events {
			mr.Events[ev.Kind()]++
			queue.PushBack(notify.Format(ev))
		}
		if len(events) > 0 {
			log.Info("changes detected", "market", p.next.Market, "events", len(events))
		}
	}

	var t tally
	for queue.Len() > 0 {
		m := queue.PopFront()
		err := r.notifier.Notify(ctx, m)
		if err != nil {
			log.Error("notification failed", "text", m.Text, "error", err)
		}
		t = t.add(err)
	}
	rep.Sent, rep.Failed = t.sent, t.failed

	if t.failed > 0 {
		log.Warn("notifications failed, snapshots not persisted", "failed", t.failed, "sent", t.sent)
		return rep, nil
	}

	for _, p := range pending {
		if err := r.store.Save(ctx, p.next); err != nil {
			return rep, fmt.Errorf("runner: save %s: %w", p.next.Market, err)
		}
	}
	rep.Persisted = true

	if err := r.notifier.Notify(ctx, notify.Heartbeat(now)); err != nil {
		log.Error("heartbeat failed", "error", err)
	}
	log.Info("run complete", "markets", len(rep.Markets), "sent", t.sent)
	return rep, nil
}

func newMarketReport(s instrument.Snapshot, baseline store.Outcome) MarketReport {
	mr := MarketReport{
		Market:      s.Market,
		Baseline:    baseline,
		Events:      make(map[engine.Kind]int),
		Instruments: len(s.Info),
	}
	for _, info := range s.Info {
		if info.Tradable() {
			mr.Tradable++
		}
	}
	return mr
}

// market returns the report entry for m. Every diffed market has one.
func (r *Report) market(m instrument.Market) *MarketReport {
	for i := range r.Markets {
		if r.Markets[i].Market == m {
			return &r.Markets[i]
		}
	}
	panic("runner: no report for " + string(m))
}

// EventCount returns the number of events of kind k across all markets.
func (r Report) EventCount(k engine.Kind) int {
	n := 0
	for _, mr := range r.Markets {
		n += mr.Events[k]
	}
	return n
}
