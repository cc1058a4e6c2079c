package engine

import (
	"time"

	"github.com/caesar-terminal/listwatch/internal/instrument"
)

// Kind classifies a change event.
type Kind uint8

const (
	KindRemoved Kind = iota + 1
	KindAdded
	KindScheduledRollout
	KindStatusChanged
	KindImminentRollout
)

func (k Kind) String() string {
	switch k {
	case KindRemoved:
		return "removed"
	case KindAdded:
		return "added"
	case KindScheduledRollout:
		return "scheduled_rollout"
	case KindStatusChanged:
		return "status_changed"
	case KindImminentRollout:
		return "imminent_rollout"
	default:
		return "unknown"
	}
}

// Event is one classified change between two snapshots of a market. The
// set of implementations is closed.
type Event interface {
	Kind() Kind
	Instrument() instrument.Instrument
	event()
}

// Removed: the symbol was in the old snapshot but not the new one.
type Removed struct {
	Instr instrument.Instrument
}

// Added: the symbol is new in this snapshot.
type Added struct {
	Instr  instrument.Instrument
	Status string
}

// ScheduledRollout follows Added when the new symbol lists in the future.
type ScheduledRollout struct {
	Instr instrument.Instrument
	At    time.Time
}

// StatusChanged: the symbol exists in both snapshots with different
// native statuses.
type StatusChanged struct {
	Instr instrument.Instrument
	From  string
	To    string
}

// ImminentRollout: the symbol lists within ImminentWindow of now.
type ImminentRollout struct {
	Instr instrument.Instrument
	In    time.Duration
}

func (e Removed) Kind() Kind          { return KindRemoved }
func (e Added) Kind() Kind            { return KindAdded }
func (e ScheduledRollout) Kind() Kind { return KindScheduledRollout }
func (e StatusChanged) Kind() Kind    { return KindStatusChanged }
func (e ImminentRollout) Kind() Kind  { return KindImminentRollout }

func (e Removed) Instrument() instrument.Instrument          { return e.Instr }
func (e Added) Instrument() instrument.Instrument            { return e.Instr }
func (e ScheduledRollout) Instrument() instrument.Instrument { return e.Instr }
func (e StatusChanged) Instrument() instrument.Instrument    { return e.Instr }
func (e ImminentRollout) Instrument() instrument.Instrument  { return e.Instr }

func (Removed) event()          {}
func (Added) event()            {}
func (ScheduledRollout) event() {}
func (StatusChanged) event()    {}
func (ImminentRollout) event()  {}
