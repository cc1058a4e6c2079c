package engine

import (
	"sort"
	"time"

	"github.com/caesar-terminal/listwatch/internal/instrument"
)

// ImminentWindow is how close to now a listing must be to raise an
// ImminentRollout alert.
const ImminentWindow = 18 * time.Minute

// Diff compares next against prev, two snapshots of the same market, as
// observed at now. Removals come first, then additions and status changes;
// both groups iterate in ascending symbol order. Rollout checks use strict
// inequality, so a listing exactly at now raises nothing.
func Diff(next, prev instrument.Snapshot, now time.Time) []Event {
	var events []Event

	for _, sym := range sortedSymbols(prev.Info) {
		if _, ok := next.Info[sym]; !ok {
			events = append(events, Removed{Instr: prev.Info[sym].Instr})
		}
	}

	for _, sym := range sortedSymbols(next.Info) {
		info := next.Info[sym]

		if old, ok := prev.Info[sym]; !ok {
			events = append(events, Added{Instr: info.Instr, Status: info.Status})
			if info.Date.After(now) {
				events = append(events, ScheduledRollout{Instr: info.Instr, At: info.Date})
			}
		} else if old.Status != info.Status {
			events = append(events, StatusChanged{Instr: info.Instr, From: old.Status, To: info.Status})
		}

		if remaining := info.Date.Sub(now); info.Date.After(now) && remaining < ImminentWindow {
			events = append(events, ImminentRollout{Instr: info.Instr, In: remaining})
		}
	}

	return events
}

func sortedSymbols(m map[string]instrument.Info) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
