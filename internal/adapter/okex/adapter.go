package okex

import (
	"github.com/caesar-terminal/listwatch/internal/adapter"
	"github.com/caesar-terminal/listwatch/internal/instrument"
)

// Raw /public/instruments response. Every field used here is mandatory.
type rawInstruments struct {
	Code string           `json:"code"`
	Data *[]rawInstrument `json:"data"`
}

type rawInstrument struct {
	InstID   *string         `json:"instId"`
	State    *string         `json:"state"`
	ListTime *adapter.Millis `json:"listTime"`
}

// Parse converts an OKX instruments response into a snapshot for market.
// There is no default path: a record missing instId, state or listTime
// rejects the whole response.
func Parse(market instrument.Market, raw []byte) (instrument.Snapshot, error) {
	var resp rawInstruments
	if err := adapter.Decode(market, raw, &resp); err != nil {
		return instrument.Snapshot{}, err
	}
	if resp.Data == nil {
		return instrument.Snapshot{}, adapter.SchemaError(market, "missing data")
	}

	snap := instrument.NewSnapshot(market)
	for i, r := range *resp.Data {
		switch {
		case r.InstID == nil:
			return instrument.Snapshot{}, adapter.SchemaError(market, "data[%d]: missing instId", i)
		case r.State == nil:
			return instrument.Snapshot{}, adapter.SchemaError(market, "data[%d] %s: missing state", i, *r.InstID)
		case r.ListTime == nil:
			return instrument.Snapshot{}, adapter.SchemaError(market, "data[%d] %s: missing listTime", i, *r.InstID)
		}
		snap.Add(instrument.Info{
			Instr:  instrument.Instrument{Market: market, Pair: *r.InstID},
			Status: *r.State,
			Date:   r.ListTime.Time(),
		})
	}
	return snap, nil
}
