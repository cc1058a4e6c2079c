package instrument

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConvert(t *testing.T) {
	tests := []struct {
		name   string
		pair   string
		target Market
		want   string
	}{
		{"FuturesIdentity", "1000PEPEUSDT", BinanceFutures, "1000PEPEUSDT"},
		{"SpotsStripsMultiplier", "1000PEPEUSDT", BinanceSpots, "PEPEUSDT"},
		{"SpotsPlain", "SOLUSDT", BinanceSpots, "SOLUSDT"},
		{"DeliveryBTC", "BTCUSDT", BinanceDelivery, "BTCUSD_PERP"},
		{"DeliveryETH", "ETHUSDT", BinanceDelivery, "ETHUSD_PERP"},
		{"OkexSwap", "ETHUSDT", OkexSwaps, "ETH-USDT-SWAP"},
		{"OkexSwapMultiplier", "1000SHIBUSDT", OkexSwaps, "SHIB-USDT-SWAP"},
		{"OkexSpot", "ETHUSDT", OkexSpots, "ETH-USDT"},
		{"OkexSpotMultiplier", "1000BONKUSDT", OkexSpots, "BONK-USDT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Instrument{Market: BinanceFutures, Pair: tt.pair}.Convert(tt.target)
			require.NoError(t, err)
			assert.Equal(t, Instrument{Market: tt.target, Pair: tt.want}, got)
		})
	}
}

func TestConvert_Errors(t *testing.T) {
	_, err := Instrument{Market: BinanceFutures, Pair: "SOLUSDT"}.Convert(BinanceDelivery)
	assert.ErrorIs(t, err, ErrUnsupportedPair)
	assert.Contains(t, err.Error(), "SOLUSDT")

	_, err = Instrument{Market: BinanceSpots, Pair: "BTCUSDT"}.Convert(BinanceFutures)
	assert.ErrorIs(t, err, ErrUnsupportedSource)

	_, err = Instrument{Market: BinanceFutures, Pair: "BTCUSDT"}.Convert(BybitSpots)
	assert.ErrorIs(t, err, ErrUnknownTarget)
	assert.Contains(t, err.Error(), "BybitSpots")
}

func TestConvert_DoesNotMutateSource(t *testing.T) {
	src := Instrument{Market: BinanceFutures, Pair: "1000PEPEUSDT"}
	_, err := src.Convert(BinanceSpots)
	require.NoError(t, err)
	assert.Equal(t, "1000PEPEUSDT", src.Pair)
}

func TestMarket_Exchange(t *testing.T) {
	want := map[Market]Exchange{
		BinanceDelivery: Binance,
		BinanceFutures:  Binance,
		BinanceSpots:    Binance,
		OkexSpots:       Okex,
		OkexSwaps:       Okex,
		BybitFutures:    Bybit,
		BybitInverse:    Bybit,
		BybitSpots:      Bybit,
	}
	for _, m := range AllMarkets() {
		assert.Equal(t, want[m], m.Exchange(), m.String())
		assert.NotEmpty(t, m.EndpointURL())
		assert.NotEmpty(t, m.ExchangeInfoPath())
	}
	assert.Len(t, AllMarkets(), len(want))
}

func TestMarket_UnmappedPanics(t *testing.T) {
	assert.Panics(t, func() { Market("KrakenSpots").Exchange() })
}

func TestParseMarket(t *testing.T) {
	m, err := ParseMarket("OkexSwaps")
	require.NoError(t, err)
	assert.Equal(t, OkexSwaps, m)

	_, err = ParseMarket("okexswaps")
	assert.Error(t, err)
}

func TestInfo_Tradable(t *testing.T) {
	tests := []struct {
		market Market
		status string
		want   bool
	}{
		{BinanceFutures, "TRADING", true},
		{BinanceDelivery, "PENDING_TRADING", false},
		{OkexSwaps, "live", true},
		{OkexSpots, "preopen", false},
		{BybitSpots, "Trading", true},
		{BybitInverse, "PreLaunch", false},
	}
	for _, tt := range tests {
		info := Info{Instr: Instrument{Market: tt.market, Pair: "X"}, Status: tt.status, Date: Unlisted}
		assert.Equal(t, tt.want, info.Tradable(), "%s %s", tt.market, tt.status)
	}
}

func TestInstrument_String(t *testing.T) {
	assert.Equal(t, "OkexSwaps/BTC-USDT-SWAP", Instrument{Market: OkexSwaps, Pair: "BTC-USDT-SWAP"}.String())
}

func TestUnlistedIsEpoch(t *testing.T) {
	assert.Equal(t, int64(0), Unlisted.Unix())
	assert.Equal(t, time.UTC, Unlisted.Location())
}
