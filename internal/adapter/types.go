// Package adapter holds the pieces shared by the per-exchange listing
// adapters. Each exchange lives in its own subpackage and turns the raw
// instrument-listing response into an instrument.Snapshot.
package adapter

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/caesar-terminal/listwatch/internal/instrument"
)

// ErrSchema is wrapped by every adapter error caused by a structurally
// invalid response (missing required field, wrong type).
var ErrSchema = errors.New("listing schema violation")

// SchemaError reports a schema violation for market.
func SchemaError(market instrument.Market, format string, args ...any) error {
	return fmt.Errorf("%w: %s: %s", ErrSchema, market, fmt.Sprintf(format, args...))
}

// Decode unmarshals raw into v, reporting failures as schema errors.
func Decode(market instrument.Market, raw []byte, v any) error {
	if err := json.Unmarshal(raw, v); err != nil {
		return SchemaError(market, "decode: %v", err)
	}
	return nil
}

// Millis is a Unix-millisecond timestamp. Exchanges disagree on whether
// they send it as a JSON number or a decimal string; both are accepted.
type Millis int64

func (m *Millis) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		data = []byte(s)
	}

	ms, err := strconv.ParseInt(string(data), 10, 64)
	if err != nil {
		return fmt.Errorf("invalid millisecond timestamp %q", data)
	}
	*m = Millis(ms)
	return nil
}

// Time converts the timestamp to a UTC instant.
func (m Millis) Time() time.Time {
	return time.UnixMilli(int64(m)).UTC()
}

// ListingTime returns the UTC listing instant, or instrument.Unlisted when
// the exchange did not send one.
func ListingTime(m *Millis) time.Time {
	if m == nil {
		return instrument.Unlisted
	}
	return m.Time()
}

// StatusOr returns the first non-nil candidate, or fallback.
func StatusOr(fallback string, candidates ...*string) string {
	for _, c := range candidates {
		if c != nil {
			return *c
		}
	}
	return fallback
}

// UnknownStatus is assigned when the exchange omits every status field.
const UnknownStatus = "unknown"
