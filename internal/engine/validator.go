package engine

import (
	"errors"
	"fmt"

	"github.com/caesar-terminal/listwatch/internal/instrument"
)

// Sentinel errors returned by ValidateSnapshot.
var (
	ErrMarketMismatch    = errors.New("snapshot belongs to another market")
	ErrForeignInstrument = errors.New("snapshot entry belongs to another market")
	ErrKeyMismatch       = errors.New("snapshot key does not match instrument pair")
	ErrNilInfo           = errors.New("snapshot has no info map")
)

// ValidateSnapshot checks that s is a well-formed snapshot of market: the
// snapshot is tagged with market and every entry is keyed by its own pair
// and owned by that market. Diff assumes these hold.
func ValidateSnapshot(s instrument.Snapshot, market instrument.Market) error {
	if s.Market != market {
		return fmt.Errorf("%w: want %s, got %s", ErrMarketMismatch, market, s.Market)
	}
	if s.Info == nil {
		return ErrNilInfo
	}

	for sym, info := range s.Info {
		if info.Instr.Market != market {
			return fmt.Errorf("%w: %s is %s", ErrForeignInstrument, sym, info.Instr)
		}
		if info.Instr.Pair != sym {
			return fmt.Errorf("%w: key %s, pair %s", ErrKeyMismatch, sym, info.Instr.Pair)
		}
	}
	return nil
}
