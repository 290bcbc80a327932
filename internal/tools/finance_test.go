package tools

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/fathom0/fathom/internal/log"
)

func newFinanceHandler(t *testing.T, apiKey string, handler http.HandlerFunc) *Handler {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := Config{FinanceBaseURL: srv.URL, AlphaVantageKey: apiKey}
	return NewHandler(cfg, srv.Client(), nil, nil, nil, log.NewNop())
}

func TestGetFinanceMarketHeatmap(t *testing.T) {
	// No upstream call and no API key needed.
	h := NewHandler(Config{}, nil, nil, nil, nil, log.NewNop())

	result, err := h.GetFinance(toolCtx(), FinanceInput{DataType: "market-heatmap"})
	if err != nil {
		t.Fatalf("GetFinance() error = %v", err)
	}
	if result.Status != StatusSuccess {
		t.Fatalf("Status = %q, want %q", result.Status, StatusSuccess)
	}
	if result.Data["widgetType"] != "market-heatmap" {
		t.Errorf("widgetType = %v, want market-heatmap", result.Data["widgetType"])
	}
}

func TestGetFinanceMissingAPIKey(t *testing.T) {
	h := NewHandler(Config{}, nil, nil, nil, nil, log.NewNop())

	result, err := h.GetFinance(toolCtx(), FinanceInput{Symbol: "AAPL", DataType: "quote"})
	if err != nil {
		t.Fatalf("GetFinance() error = %v, want nil: missing key is a model-visible error", err)
	}
	if result.Status != StatusError {
		t.Fatalf("Status = %q, want %q", result.Status, StatusError)
	}
	if result.Error == nil || result.Error.Code != ErrCodeValidation {
		t.Errorf("Error = %+v, want code %q", result.Error, ErrCodeValidation)
	}
}

func TestGetFinanceQuote(t *testing.T) {
	h := newFinanceHandler(t, "test-key", func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("function"); got != "GLOBAL_QUOTE" {
			t.Errorf("function = %q, want GLOBAL_QUOTE", got)
		}
		if got := r.URL.Query().Get("apikey"); got != "test-key" {
			t.Errorf("apikey = %q, want test-key", got)
		}
		_, _ = w.Write([]byte(`{
			"Global Quote": {
				"01. symbol": "AAPL",
				"05. price": "231.4100",
				"06. volume": "48231234",
				"07. latest trading day": "2026-08-27",
				"09. change": "1.2300",
				"10. change percent": "0.5343%"
			}
		}`))
	})

	result, err := h.GetFinance(toolCtx(), FinanceInput{Symbol: "AAPL", DataType: "quote"})
	if err != nil {
		t.Fatalf("GetFinance() error = %v", err)
	}
	if result.Status != StatusSuccess {
		t.Fatalf("Status = %q, want %q (error: %+v)", result.Status, StatusSuccess, result.Error)
	}
	if result.Data["symbol"] != "AAPL" {
		t.Errorf("symbol = %v, want AAPL", result.Data["symbol"])
	}
	if result.Data["price"] != 231.41 {
		t.Errorf("price = %v, want 231.41", result.Data["price"])
	}
	if result.Data["changePercent"] != "0.5343%" {
		t.Errorf("changePercent = %v", result.Data["changePercent"])
	}
}

func TestGetFinanceQuoteUnknownSymbol(t *testing.T) {
	h := newFinanceHandler(t, "test-key", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"Global Quote": {}}`))
	})

	result, err := h.GetFinance(toolCtx(), FinanceInput{Symbol: "NOPE", DataType: "quote"})
	if err != nil {
		t.Fatalf("GetFinance() error = %v", err)
	}
	if result.Error == nil || result.Error.Code != ErrCodeNotFound {
		t.Errorf("Error = %+v, want code %q", result.Error, ErrCodeNotFound)
	}
}

func TestGetFinanceOverviewEmptyObject(t *testing.T) {
	h := newFinanceHandler(t, "test-key", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	})

	result, err := h.GetFinance(toolCtx(), FinanceInput{Symbol: "NOPE", DataType: "overview"})
	if err != nil {
		t.Fatalf("GetFinance() error = %v", err)
	}
	if result.Error == nil || result.Error.Code != ErrCodeNotFound {
		t.Errorf("Error = %+v, want code %q", result.Error, ErrCodeNotFound)
	}
}

func TestGetFinanceNewsCapsAtFive(t *testing.T) {
	h := newFinanceHandler(t, "test-key", func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("function"); got != "NEWS_SENTIMENT" {
			t.Errorf("function = %q, want NEWS_SENTIMENT", got)
		}
		if got := r.URL.Query().Get("tickers"); got != "AAPL" {
			t.Errorf("tickers = %q, want AAPL", got)
		}
		_, _ = w.Write([]byte(`{"feed": [
			{"title": "a"}, {"title": "b"}, {"title": "c"},
			{"title": "d"}, {"title": "e"}, {"title": "f"}, {"title": "g"}
		]}`))
	})

	result, err := h.GetFinance(toolCtx(), FinanceInput{Symbol: "AAPL", DataType: "news"})
	if err != nil {
		t.Fatalf("GetFinance() error = %v", err)
	}
	if result.Status != StatusSuccess {
		t.Fatalf("Status = %q, want %q", result.Status, StatusSuccess)
	}

	news, ok := result.Data["news"].([]map[string]any)
	if !ok {
		t.Fatalf("Data[news] has type %T", result.Data["news"])
	}
	if len(news) != 5 {
		t.Errorf("len(news) = %d, want 5", len(news))
	}
}

func TestGetFinanceUpstreamError(t *testing.T) {
	h := newFinanceHandler(t, "test-key", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"Error Message": "Invalid API call"}`))
	})

	result, err := h.GetFinance(toolCtx(), FinanceInput{Symbol: "AAPL", DataType: "quote"})
	if err != nil {
		t.Fatalf("GetFinance() error = %v", err)
	}
	if result.Status != StatusError {
		t.Fatalf("Status = %q, want %q", result.Status, StatusError)
	}
	if result.Error == nil || result.Error.Code != ErrCodeNetwork {
		t.Errorf("Error = %+v, want code %q", result.Error, ErrCodeNetwork)
	}
}

func TestGetFinanceUnsupportedDataType(t *testing.T) {
	h := newFinanceHandler(t, "test-key", func(w http.ResponseWriter, r *http.Request) {})

	result, err := h.GetFinance(toolCtx(), FinanceInput{Symbol: "AAPL", DataType: "dividends"})
	if err != nil {
		t.Fatalf("GetFinance() error = %v", err)
	}
	if result.Error == nil || result.Error.Code != ErrCodeValidation {
		t.Errorf("Error = %+v, want code %q", result.Error, ErrCodeValidation)
	}
}
