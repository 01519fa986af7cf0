package services

import (
	"html/template"
	"strings"

	"github.com/fenilmodi00/cse-site/models"
)

const (
	// MaxTableRows is how many rows a stock table region shows.
	MaxTableRows = 5
	// MaxTickerItems is how many gainers and how many losers the ticker shows.
	MaxTickerItems = 3

	TickerSeparator   = " • "
	TickerPlaceholder = "Live market data will appear here shortly."
	NoDataNotice      = "No data available"
)

var stockTableTemplate = template.Must(template.New("stock-table").Parse(
	`{{if .}}<table class="stock-table">` +
		`<thead><tr><th>Symbol</th><th>Price</th><th>Change</th><th>% Change</th></tr></thead>` +
		`<tbody>{{range .}}<tr>` +
		`<td class="symbol">{{.Symbol}}</td>` +
		`<td class="price">{{.Price}}</td>` +
		`<td class="change {{.Change.Color}}">{{.Change.Value}}</td>` +
		`<td class="change {{.Percent.Color}}">{{.Percent.Value}}%</td>` +
		`</tr>{{end}}</tbody></table>` +
		`{{else}}<p class="no-data">` + NoDataNotice + `</p>{{end}}`))

var tickerItemTemplate = template.Must(template.New("ticker-item").Parse(
	`<span class="ticker-item {{.Color}}">{{.Symbol}} {{if .Plus}}+{{end}}{{.Text}}%</span>`))

var changeTemplate = template.Must(template.New("change").Parse(
	`<span class="change {{.Color}}">{{if .Plus}}+{{end}}{{.Text}}%</span>`))

var errorTemplate = template.Must(template.New("error").Parse(
	`<p class="error-message">{{.}}</p>`))

var textTemplate = template.Must(template.New("text").Parse(`{{.}}`))

type tableRowView struct {
	Symbol  string
	Price   string
	Change  models.FormattedChange
	Percent models.FormattedChange
}

// RenderStockTable renders rows as the fixed four-column table. An empty
// slice renders the no-data notice instead of an empty table.
func RenderStockTable(rows []models.StockRow) string {
	views := make([]tableRowView, 0, len(rows))
	for _, row := range rows {
		views = append(views, tableRowView{
			Symbol:  row.Symbol,
			Price:   FormatCurrency(row.Price),
			Change:  FormatPercentageChange(row.Change),
			Percent: FormatPercentageChange(row.PercentageChange),
		})
	}
	return execute(stockTableTemplate, views)
}

// RenderChange renders a signed percentage, prefixing "+" on non-negative values.
func RenderChange(change float64) string {
	formatted := FormatPercentageChange(change)
	return execute(changeTemplate, struct {
		Color string
		Plus  bool
		Text  string
	}{formatted.Color, formatted.IsPositive, formatted.Value})
}

// RenderTicker renders up to MaxTickerItems gainers and losers joined by
// TickerSeparator. Gainers carry an explicit "+"; losers keep their own sign.
func RenderTicker(gainers, losers []models.StockRow) string {
	items := make([]string, 0, 2*MaxTickerItems)

	for _, row := range firstN(gainers, MaxTickerItems) {
		formatted := FormatPercentageChange(row.PercentageChange)
		items = append(items, renderTickerItem(row.Symbol, formatted.Value, formatted.Color, true))
	}
	for _, row := range firstN(losers, MaxTickerItems) {
		formatted := FormatPercentageChange(row.PercentageChange)
		items = append(items, renderTickerItem(row.Symbol, formatted.Value, formatted.Color, false))
	}

	if len(items) == 0 {
		return RenderText(TickerPlaceholder)
	}
	return strings.Join(items, TickerSeparator)
}

// The "+" lives in the template text; as data html/template would escape it.
func renderTickerItem(symbol, text, color string, plus bool) string {
	return execute(tickerItemTemplate, struct {
		Symbol string
		Text   string
		Color  string
		Plus   bool
	}{symbol, text, color, plus})
}

// RenderError renders the fixed failure notice for a region.
func RenderError(message string) string {
	return execute(errorTemplate, message)
}

// RenderText escapes plain text for insertion into a region.
func RenderText(text string) string {
	return execute(textTemplate, text)
}

func execute(tmpl *template.Template, data interface{}) string {
	var sb strings.Builder
	if err := tmpl.Execute(&sb, data); err != nil {
		// Templates are parsed at init and only see plain strings.
		return ""
	}
	return sb.String()
}

func firstN(rows []models.StockRow, n int) []models.StockRow {
	if len(rows) > n {
		return rows[:n]
	}
	return rows
}
