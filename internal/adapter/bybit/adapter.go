package bybit

import (
	"github.com/caesar-terminal/listwatch/internal/adapter"
	"github.com/caesar-terminal/listwatch/internal/instrument"
)

// Raw v5 /market/instruments-info response.
type rawResponse struct {
	RetCode int        `json:"retCode"`
	RetMsg  string     `json:"retMsg"`
	Result  *rawResult `json:"result"`
}

type rawResult struct {
	Category string       `json:"category"`
	List     *[]rawSymbol `json:"list"`
}

type rawSymbol struct {
	Symbol     *string         `json:"symbol"`
	Status     *string         `json:"status"`
	LaunchTime *adapter.Millis `json:"launchTime"`
	// Decoded to keep the wire shape honest; nothing downstream reads it.
	PriceFilter map[string]string `json:"priceFilter"`
}

// Parse converts a Bybit instruments-info response into a snapshot for
// market.
func Parse(market instrument.Market, raw []byte) (instrument.Snapshot, error) {
	var resp rawResponse
	if err := adapter.Decode(market, raw, &resp); err != nil {
		return instrument.Snapshot{}, err
	}
	if resp.Result == nil {
		return instrument.Snapshot{}, adapter.SchemaError(market, "missing result")
	}
	if resp.Result.List == nil {
		return instrument.Snapshot{}, adapter.SchemaError(market, "missing result.list")
	}

	snap := instrument.NewSnapshot(market)
	for i, s := range *resp.Result.List {
		if s.Symbol == nil {
			return instrument.Snapshot{}, adapter.SchemaError(market, "result.list[%d]: missing symbol", i)
		}
		snap.Add(instrument.Info{
			Instr:  instrument.Instrument{Market: market, Pair: *s.Symbol},
			Status: adapter.StatusOr(adapter.UnknownStatus, s.Status),
			Date:   adapter.ListingTime(s.LaunchTime),
		})
	}
	return snap, nil
}
