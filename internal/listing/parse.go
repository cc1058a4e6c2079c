// Package listing selects the exchange adapter for a market.
package listing

import (
	"github.com/caesar-terminal/listwatch/internal/adapter/binance"
	"github.com/caesar-terminal/listwatch/internal/adapter/bybit"
	"github.com/caesar-terminal/listwatch/internal/adapter/okex"
	"github.com/caesar-terminal/listwatch/internal/instrument"
)

// Parse converts a raw instrument-listing response for market into a
// canonical snapshot, using the adapter of the market's exchange.
func Parse(market instrument.Market, raw []byte) (instrument.Snapshot, error) {
	switch market.Exchange() {
	case instrument.Binance:
		return binance.Parse(market, raw)
	case instrument.Okex:
		return okex.Parse(market, raw)
	case instrument.Bybit:
		return bybit.Parse(market, raw)
	}
	panic("listing: no adapter for " + string(market))
}
