// Package store persists the last observed snapshot of every market so the
// next run has a baseline to diff against.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/caesar-terminal/listwatch/internal/engine"
	"github.com/caesar-terminal/listwatch/internal/instrument"
)

// Store loads and saves per-market snapshots.
type Store interface {
	Load(ctx context.Context, market instrument.Market) LoadResult
	Save(ctx context.Context, snap instrument.Snapshot) error
}

// Outcome classifies a Load attempt.
type Outcome uint8

const (
	// Found: a valid snapshot for the market was loaded.
	Found Outcome = iota + 1
	// Missing: nothing has been stored for the market yet.
	Missing
	// Invalid: stored data exists but does not decode or validate.
	Invalid
	// Unreadable: the backend failed (permissions, connection).
	Unreadable
)

func (o Outcome) String() string {
	switch o {
	case Found:
		return "found"
	case Missing:
		return "missing"
	case Invalid:
		return "invalid"
	case Unreadable:
		return "unreadable"
	default:
		return "unknown"
	}
}

// LoadResult is the outcome of Load. Snapshot is set only when Outcome is
// Found; Err is set for Invalid and Unreadable.
type LoadResult struct {
	Snapshot instrument.Snapshot
	Outcome  Outcome
	Err      error
}

// OK reports whether a usable baseline was loaded.
func (r LoadResult) OK() bool { return r.Outcome == Found }

func found(s instrument.Snapshot) LoadResult { return LoadResult{Snapshot: s, Outcome: Found} }
func missing() LoadResult                   { return LoadResult{Outcome: Missing} }
func invalid(err error) LoadResult          { return LoadResult{Outcome: Invalid, Err: err} }
func unreadable(err error) LoadResult       { return LoadResult{Outcome: Unreadable, Err: err} }

// Encode renders the canonical JSON form of s:
//
//	{"info": {symbol: {"instr": {"market", "pair"}, "status", "date"}}, "market"}
//
// Dates are ISO-8601 UTC with millisecond precision preserved.
func Encode(s instrument.Snapshot) ([]byte, error) {
	if s.Info == nil {
		s.Info = map[string]instrument.Info{}
	}
	return json.Marshal(s)
}

// ErrIncomplete is returned by Decode when a stored entry lacks a required
// field.
var ErrIncomplete = errors.New("snapshot entry is incomplete")

// storedInfo mirrors instrument.Info with every field required, so an
// absent or null field is told apart from its zero value.
type storedInfo struct {
	Instr  *instrument.Instrument `json:"instr"`
	Status *string                `json:"status"`
	Date   *time.Time             `json:"date"`
}

type storedSnapshot struct {
	Info   map[string]storedInfo `json:"info"`
	Market instrument.Market     `json:"market"`
}

// Decode parses the canonical JSON form and checks it is a well-formed
// snapshot of market. Every entry must carry instr, status and date.
func Decode(data []byte, market instrument.Market) (instrument.Snapshot, error) {
	var stored storedSnapshot
	if err := json.Unmarshal(data, &stored); err != nil {
		return instrument.Snapshot{}, fmt.Errorf("decode snapshot: %w", err)
	}

	s := instrument.Snapshot{Market: stored.Market}
	if stored.Info != nil {
		s.Info = make(map[string]instrument.Info, len(stored.Info))
	}
	for sym, e := range stored.Info {
		switch {
		case e.Instr == nil:
			return instrument.Snapshot{}, fmt.Errorf("%w: %s: missing instr", ErrIncomplete, sym)
		case e.Status == nil:
			return instrument.Snapshot{}, fmt.Errorf("%w: %s: missing status", ErrIncomplete, sym)
		case e.Date == nil:
			return instrument.Snapshot{}, fmt.Errorf("%w: %s: missing date", ErrIncomplete, sym)
		}
		s.Info[sym] = instrument.Info{Instr: *e.Instr, Status: *e.Status, Date: e.Date.UTC()}
	}

	if err := engine.ValidateSnapshot(s, market); err != nil {
		return instrument.Snapshot{}, err
	}
	return s, nil
}

// decodeResult wraps Decode into a LoadResult.
func decodeResult(data []byte, market instrument.Market) LoadResult {
	s, err := Decode(data, market)
	if err != nil {
		return invalid(err)
	}
	return found(s)
}
