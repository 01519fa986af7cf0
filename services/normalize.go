package services

import "github.com/fenilmodi00/cse-site/models"

const missingSymbol = "N/A"

// NormalizeStockRow maps the exchange's field name variants onto StockRow.
// symbol wins over name and price over lastPrice; an empty or zero value
// falls through to the alternative, then to "N/A" or 0.
func NormalizeStockRow(raw models.RawStockRow) models.StockRow {
	row := models.StockRow{
		Symbol:           missingSymbol,
		Change:           raw.Change.Value,
		PercentageChange: raw.PercentageChange.Value,
	}

	switch {
	case raw.Symbol.Value != "":
		row.Symbol = raw.Symbol.Value
	case raw.Name.Value != "":
		row.Symbol = raw.Name.Value
	}

	switch {
	case raw.Price.Value != 0:
		row.Price = raw.Price.Value
	case raw.LastPrice.Value != 0:
		row.Price = raw.LastPrice.Value
	}

	return row
}

// NormalizeStockRows normalizes every row, keeping order. Partially filled
// rows are kept with defaults rather than dropped.
func NormalizeStockRows(raw []models.RawStockRow) []models.StockRow {
	rows := make([]models.StockRow, 0, len(raw))
	for _, r := range raw {
		rows = append(rows, NormalizeStockRow(r))
	}
	return rows
}

// NormalizeMarketSummary converts the wire summary, defaulting absent figures to zero.
func NormalizeMarketSummary(raw models.RawMarketSummary) models.MarketSummary {
	return models.MarketSummary{
		ASPI:       raw.ASPI.Value,
		ASPIChange: raw.ASPIChange.Value,
		Turnover:   raw.Turnover.Value,
		MarketCap:  raw.MarketCap.Value,
	}
}
