package binance

import (
	"encoding/json"

	"github.com/caesar-terminal/listwatch/internal/adapter"
	"github.com/caesar-terminal/listwatch/internal/instrument"
)

// Raw exchangeInfo response, shared by spot (/api), USDⓈ-M futures (/fapi)
// and COIN-M delivery (/dapi).
type rawExchangeInfo struct {
	Symbols *[]rawSymbol `json:"symbols"`
}

type rawSymbol struct {
	Symbol *string `json:"symbol"`
	// Spot and USDⓈ-M futures report status; COIN-M delivery reports
	// contractStatus instead.
	Status         *string           `json:"status"`
	ContractStatus *string           `json:"contractStatus"`
	OnboardDate    *adapter.Millis   `json:"onboardDate"`
	Filters        []json.RawMessage `json:"filters"`
}

// Parse converts a Binance exchangeInfo response into a snapshot for
// market. A record without a symbol rejects the whole response.
func Parse(market instrument.Market, raw []byte) (instrument.Snapshot, error) {
	var resp rawExchangeInfo
	if err := adapter.Decode(market, raw, &resp); err != nil {
		return instrument.Snapshot{}, err
	}
	if resp.Symbols == nil {
		return instrument.Snapshot{}, adapter.SchemaError(market, "missing symbols")
	}

	snap := instrument.NewSnapshot(market)
	for i, s := range *resp.Symbols {
		if s.Symbol == nil {
			return instrument.Snapshot{}, adapter.SchemaError(market, "symbols[%d]: missing symbol", i)
		}
		snap.Add(instrument.Info{
			Instr:  instrument.Instrument{Market: market, Pair: *s.Symbol},
			Status: adapter.StatusOr(adapter.UnknownStatus, s.Status, s.ContractStatus),
			Date:   adapter.ListingTime(s.OnboardDate),
		})
	}
	return snap, nil
}
