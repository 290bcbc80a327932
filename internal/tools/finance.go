package tools

import (
	"fmt"
	"net/url"
	"strconv"

	"github.com/firebase/genkit/go/ai"
)

// FinanceInput defines input for the getFinance tool.
type FinanceInput struct {
	Symbol   string `json:"symbol,omitempty" jsonschema_description:"Stock or cryptocurrency symbol (e.g. AAPL, BTC-USD)"`
	DataType string `json:"dataType" jsonschema_description:"Type of data: quote (latest price), overview (company info), news, or market-heatmap"`
}

const maxNewsItems = 5

// GetFinance retrieves financial data from Alpha Vantage.
//
// The market-heatmap type needs no upstream call: it returns a widget marker
// the client renders itself. All other types require an API key; a missing
// key is reported to the model as a structured error rather than failing the
// turn.
func (h *Handler) GetFinance(ctx *ai.ToolContext, input FinanceInput) (Result, error) {
	if input.DataType == "market-heatmap" {
		return Result{
			Status:  StatusSuccess,
			Message: "Market heatmap widget requested",
			Data:    map[string]any{"widgetType": "market-heatmap"},
		}, nil
	}

	if h.cfg.AlphaVantageKey == "" {
		return errorResult(ErrCodeValidation,
			"ALPHAVANTAGE_API_KEY is not set; financial data is unavailable"), nil
	}
	if input.Symbol == "" {
		return errorResult(ErrCodeValidation, "symbol is required for "+input.DataType), nil
	}

	switch input.DataType {
	case "quote":
		return h.stockQuote(ctx, input.Symbol)
	case "overview":
		return h.companyOverview(ctx, input.Symbol)
	case "news":
		return h.companyNews(ctx, input.Symbol)
	default:
		return errorResult(ErrCodeValidation,
			fmt.Sprintf("unsupported data type: %s", input.DataType)), nil
	}
}

// alphaVantage calls one Alpha Vantage function for a symbol.
func (h *Handler) alphaVantage(ctx *ai.ToolContext, function, symbolParam, symbol string) (map[string]any, error) {
	params := url.Values{}
	params.Set("function", function)
	params.Set(symbolParam, symbol)
	params.Set("apikey", h.cfg.AlphaVantageKey)

	data, err := h.fetchJSON(ctx.Context, h.cfg.FinanceBaseURL+"?"+params.Encode())
	if err != nil {
		return nil, err
	}
	if msg, ok := data["Error Message"].(string); ok && msg != "" {
		return nil, fmt.Errorf("upstream error: %s", msg)
	}
	return data, nil
}

func (h *Handler) stockQuote(ctx *ai.ToolContext, symbol string) (Result, error) {
	data, err := h.alphaVantage(ctx, "GLOBAL_QUOTE", "symbol", symbol)
	if err != nil {
		return errorResult(ErrCodeNetwork, fmt.Sprintf("quote request failed: %v", err)), nil
	}

	quote, ok := data["Global Quote"].(map[string]any)
	if !ok || len(quote) == 0 {
		return errorResult(ErrCodeNotFound, "no quote data found for symbol: "+symbol), nil
	}

	return Result{
		Status:  StatusSuccess,
		Message: "Latest quote for " + symbol,
		Data: map[string]any{
			"symbol":        str(quote, "01. symbol"),
			"price":         num(quote, "05. price"),
			"change":        num(quote, "09. change"),
			"changePercent": str(quote, "10. change percent"),
			"lastTradeDay":  str(quote, "07. latest trading day"),
			"volume":        num(quote, "06. volume"),
		},
	}, nil
}

func (h *Handler) companyOverview(ctx *ai.ToolContext, symbol string) (Result, error) {
	data, err := h.alphaVantage(ctx, "OVERVIEW", "symbol", symbol)
	if err != nil {
		return errorResult(ErrCodeNetwork, fmt.Sprintf("overview request failed: %v", err)), nil
	}
	// Alpha Vantage signals "unknown symbol" with an empty object.
	if len(data) == 0 {
		return errorResult(ErrCodeNotFound, "no company overview found for symbol: "+symbol), nil
	}

	return Result{
		Status:  StatusSuccess,
		Message: "Company overview for " + symbol,
		Data: map[string]any{
			"symbol":        str(data, "Symbol"),
			"name":          str(data, "Name"),
			"description":   str(data, "Description"),
			"exchange":      str(data, "Exchange"),
			"industry":      str(data, "Industry"),
			"sector":        str(data, "Sector"),
			"marketCap":     str(data, "MarketCapitalization"),
			"peRatio":       str(data, "PERatio"),
			"dividendYield": str(data, "DividendYield"),
			"weekHigh52":    str(data, "52WeekHigh"),
			"weekLow52":     str(data, "52WeekLow"),
		},
	}, nil
}

func (h *Handler) companyNews(ctx *ai.ToolContext, symbol string) (Result, error) {
	// No per-symbol news endpoint; NEWS_SENTIMENT returns ticker-related feed.
	data, err := h.alphaVantage(ctx, "NEWS_SENTIMENT", "tickers", symbol)
	if err != nil {
		return errorResult(ErrCodeNetwork, fmt.Sprintf("news request failed: %v", err)), nil
	}

	feed, ok := data["feed"].([]any)
	if !ok || len(feed) == 0 {
		return errorResult(ErrCodeNotFound, "no news found for symbol: "+symbol), nil
	}
	if len(feed) > maxNewsItems {
		feed = feed[:maxNewsItems]
	}

	news := make([]map[string]any, 0, len(feed))
	for _, raw := range feed {
		item, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		news = append(news, map[string]any{
			"title":         str(item, "title"),
			"summary":       str(item, "summary"),
			"url":           str(item, "url"),
			"timePublished": str(item, "time_published"),
			"source":        str(item, "source"),
		})
	}

	return Result{
		Status:  StatusSuccess,
		Message: fmt.Sprintf("%d news items for %s", len(news), symbol),
		Data:    map[string]any{"symbol": symbol, "news": news},
	}, nil
}

// str extracts a string field from a decoded JSON object.
func str(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return s
}

// num extracts a numeric field that Alpha Vantage encodes as a string.
func num(m map[string]any, key string) float64 {
	s, ok := m[key].(string)
	if !ok {
		f, _ := m[key].(float64)
		return f
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return f
}
