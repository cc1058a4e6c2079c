package instrument

import "fmt"

// Exchange identifies the venue that owns one or more markets.
type Exchange string

const (
	Binance Exchange = "Binance"
	Okex    Exchange = "Okex"
	Bybit   Exchange = "Bybit"
)

// SlackEmoji returns the workspace emoji used to tag alerts for the exchange.
func (e Exchange) SlackEmoji() string {
	switch e {
	case Binance:
		return ":binance:"
	case Okex:
		return ":okx:"
	case Bybit:
		return ":bybit:"
	}
	panic("instrument: unmapped exchange " + string(e))
}

// tradingStatus is the native status string meaning "open for trading".
func (e Exchange) tradingStatus() string {
	switch e {
	case Binance:
		return "TRADING"
	case Okex:
		return "live"
	case Bybit:
		return "Trading"
	}
	panic("instrument: unmapped exchange " + string(e))
}

// Market is one product family on one exchange.
type Market string

const (
	BinanceDelivery Market = "BinanceDelivery"
	BinanceFutures  Market = "BinanceFutures"
	BinanceSpots    Market = "BinanceSpots"
	OkexSpots       Market = "OkexSpots"
	OkexSwaps       Market = "OkexSwaps"
	BybitFutures    Market = "BybitFutures"
	BybitInverse    Market = "BybitInverse"
	BybitSpots      Market = "BybitSpots"
)

// AllMarkets returns every supported market in polling order.
func AllMarkets() []Market {
	return []Market{
		BinanceFutures,
		BinanceSpots,
		BinanceDelivery,
		OkexSwaps,
		OkexSpots,
		BybitFutures,
		BybitInverse,
		BybitSpots,
	}
}

// ParseMarket validates s against the closed set of markets.
func ParseMarket(s string) (Market, error) {
	m := Market(s)
	switch m {
	case BinanceDelivery, BinanceFutures, BinanceSpots,
		OkexSpots, OkexSwaps,
		BybitFutures, BybitInverse, BybitSpots:
		return m, nil
	}
	return "", fmt.Errorf("unknown market %q", s)
}

func (m Market) String() string { return string(m) }

// Exchange returns the parent exchange. Every market maps to exactly one
// exchange; an unmapped value is a programming error.
func (m Market) Exchange() Exchange {
	switch m {
	case BinanceDelivery, BinanceFutures, BinanceSpots:
		return Binance
	case OkexSpots, OkexSwaps:
		return Okex
	case BybitFutures, BybitInverse, BybitSpots:
		return Bybit
	}
	panic("instrument: unmapped market " + string(m))
}

// EndpointURL returns the REST base URL serving the market.
func (m Market) EndpointURL() string {
	switch m {
	case BinanceDelivery:
		return "https://dapi.binance.com/dapi/v1"
	case BinanceFutures:
		return "https://fapi.binance.com/fapi/v1"
	case BinanceSpots:
		return "https://api.binance.com/api/v1"
	case OkexSpots, OkexSwaps:
		return "https://www.okx.com/api/v5"
	case BybitFutures, BybitInverse, BybitSpots:
		return "https://api.bybit.com/v5"
	}
	panic("instrument: unmapped market " + string(m))
}

// ExchangeInfoPath returns the path of the instrument-listing endpoint,
// relative to EndpointURL.
func (m Market) ExchangeInfoPath() string {
	switch m {
	case BinanceDelivery, BinanceFutures, BinanceSpots:
		return "/exchangeInfo"
	case OkexSpots:
		return "/public/instruments?instType=SPOT"
	case OkexSwaps:
		return "/public/instruments?instType=SWAP"
	case BybitFutures:
		return "/market/instruments-info?category=linear"
	case BybitInverse:
		return "/market/instruments-info?category=inverse"
	case BybitSpots:
		return "/market/instruments-info?category=spot"
	}
	panic("instrument: unmapped market " + string(m))
}
