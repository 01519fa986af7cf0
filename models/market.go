package models

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// EndpointKey identifies one of the four remote market data sets.
type EndpointKey string

const (
	EndpointMarketSummary EndpointKey = "marketSummary"
	EndpointTopGainers    EndpointKey = "topGainers"
	EndpointTopLosers     EndpointKey = "topLosers"
	EndpointMostActive    EndpointKey = "mostActive"
)

// AllEndpointKeys lists every endpoint key in a stable order.
var AllEndpointKeys = []EndpointKey{
	EndpointMarketSummary,
	EndpointTopGainers,
	EndpointTopLosers,
	EndpointMostActive,
}

// Path returns the remote path for the key. The summary path is spelled the
// way the exchange spells it.
func (k EndpointKey) Path() string {
	if k == EndpointMarketSummary {
		return "marketSummery"
	}
	return string(k)
}

// FlexFloat decodes a JSON number, a numeric string or null into a float64.
// Anything it cannot read decodes as zero.
type FlexFloat struct {
	Value float64
	Set   bool
}

func (f *FlexFloat) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*f = FlexFloat{}
		return nil
	}

	raw := string(data)
	if strings.HasPrefix(raw, `"`) {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			*f = FlexFloat{}
			return nil
		}
		raw = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	}

	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		*f = FlexFloat{}
		return nil
	}
	*f = FlexFloat{Value: v, Set: true}
	return nil
}

// FlexString decodes a JSON string or number as text. null, objects and
// arrays decode as empty.
type FlexString struct {
	Value string
	Set   bool
}

func (f *FlexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	*f = FlexString{}
	if len(data) == 0 {
		return nil
	}

	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err == nil {
			*f = FlexString{Value: strings.TrimSpace(s), Set: true}
		}
	case '-', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		*f = FlexString{Value: string(data), Set: true}
	}
	return nil
}

// MarketSummary is the exchange-wide snapshot returned by the summary endpoint.
type MarketSummary struct {
	ASPI       float64 `json:"aspi"`
	ASPIChange float64 `json:"aspi_change"`
	Turnover   float64 `json:"turnover"`
	MarketCap  float64 `json:"market_cap"`
}

// RawMarketSummary mirrors the wire shape of the summary endpoint.
type RawMarketSummary struct {
	ASPI       FlexFloat `json:"ASPI"`
	ASPIChange FlexFloat `json:"ASPIChange"`
	Turnover   FlexFloat `json:"turnover"`
	MarketCap  FlexFloat `json:"marketCap"`
}

// StockRow is the canonical record used for rendering, whatever field names
// the exchange used on the wire.
type StockRow struct {
	Symbol           string  `json:"symbol"`
	Price            float64 `json:"price"`
	Change           float64 `json:"change"`
	PercentageChange float64 `json:"percentage_change"`
}

// RawStockRow accepts every field name variant seen from the exchange.
type RawStockRow struct {
	Symbol           FlexString `json:"symbol"`
	Name             FlexString `json:"name"`
	Price            FlexFloat  `json:"price"`
	LastPrice        FlexFloat  `json:"lastPrice"`
	Change           FlexFloat  `json:"change"`
	PercentageChange FlexFloat  `json:"percentageChange"`
}

// FormattedChange is the display form of a signed change value.
type FormattedChange struct {
	Value      string `json:"value"`
	IsPositive bool   `json:"is_positive"`
	Color      string `json:"color"`
}

// CSS classes shared with the page stylesheet.
const (
	ColorPositive = "positive"
	ColorNegative = "negative"
)
