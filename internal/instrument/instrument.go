package instrument

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Sentinel errors returned by Convert.
var (
	ErrUnsupportedSource = errors.New("conversion only supported from BinanceFutures")
	ErrUnsupportedPair   = errors.New("unsupported pair")
	ErrUnknownTarget     = errors.New("unknown target market")
)

// Instrument is a tradable pair identified by its exchange-native symbol on
// a given market.
type Instrument struct {
	Market Market `json:"market"`
	Pair   string `json:"pair"`
}

func (i Instrument) String() string {
	return fmt.Sprintf("%s/%s", i.Market, i.Pair)
}

// multiplierPrefix marks Binance futures contracts quoted per 1000 units,
// e.g. 1000PEPEUSDT.
const multiplierPrefix = "1000"

// Convert maps a BinanceFutures instrument onto the symbol convention of
// another market in the same family.
func (i Instrument) Convert(target Market) (Instrument, error) {
	if i.Market != BinanceFutures {
		return Instrument{}, fmt.Errorf("%w: got %s", ErrUnsupportedSource, i.Market)
	}

	switch target {
	case BinanceFutures:
		return Instrument{Market: target, Pair: i.Pair}, nil
	case BinanceSpots:
		return Instrument{Market: target, Pair: strings.TrimPrefix(i.Pair, multiplierPrefix)}, nil
	case BinanceDelivery:
		if i.Pair != "BTCUSDT" && i.Pair != "ETHUSDT" {
			return Instrument{}, fmt.Errorf("%w: BinanceDelivery supports only BTC/ETH, not %s", ErrUnsupportedPair, i.Pair)
		}
		return Instrument{Market: target, Pair: i.Pair[:len(i.Pair)-1] + "_PERP"}, nil
	case OkexSwaps:
		return Instrument{Market: target, Pair: i.baseAsset() + "-USDT-SWAP"}, nil
	case OkexSpots:
		return Instrument{Market: target, Pair: i.baseAsset() + "-USDT"}, nil
	}
	return Instrument{}, fmt.Errorf("%w: %s", ErrUnknownTarget, target)
}

// baseAsset strips the multiplier prefix and returns everything before the
// first USDT occurrence.
func (i Instrument) baseAsset() string {
	pair := strings.TrimPrefix(i.Pair, multiplierPrefix)
	base, _, _ := strings.Cut(pair, "USDT")
	return base
}

// Info is the lifecycle state of one instrument as observed on its market.
// Status is exchange-native and only ever compared within one market. Date
// is the listing instant; the zero point of the Unix epoch means the source
// gave no date and the instrument is already listed.
type Info struct {
	Instr  Instrument `json:"instr"`
	Status string     `json:"status"`
	Date   time.Time  `json:"date"`
}

// Unlisted is the listing date assigned when the source provides none.
var Unlisted = time.Unix(0, 0).UTC()

// Tradable reports whether the status is the exchange's "open for trading"
// value.
func (i Info) Tradable() bool {
	return i.Status == i.Instr.Market.Exchange().tradingStatus()
}

// Snapshot is the full instrument catalog of one market at one point in
// time, keyed by native symbol.
type Snapshot struct {
	Info   map[string]Info `json:"info"`
	Market Market          `json:"market"`
}

// NewSnapshot returns an empty snapshot for market.
func NewSnapshot(market Market) Snapshot {
	return Snapshot{
		Info:   make(map[string]Info),
		Market: market,
	}
}

// Add records info under its pair.
func (s Snapshot) Add(info Info) {
	s.Info[info.Instr.Pair] = info
}
