package yahoo

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestGetQuotePrefersPercentYield(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("symbols"); got != "VOD.L" {
			t.Errorf("symbols = %q, want VOD.L", got)
		}
		w.Write([]byte(`{"quoteResponse": {"result": [
			{"symbol": "VOD.L", "regularMarketPrice": 72.5, "regularMarketTime": 1700000000,
			 "dividendYield": 7.8, "trailingAnnualDividendYield": 0.075}
		]}}`))
	}))
	defer srv.Close()

	client := NewClient(WithBaseURL(srv.URL))
	quote, err := client.GetQuote(context.Background(), "VOD.L")
	if err != nil {
		t.Fatalf("GetQuote returned error: %v", err)
	}

	if quote.DividendYield != 7.8 {
		t.Errorf("yield = %v, want 7.8", quote.DividendYield)
	}
	if quote.Price != 72.5 {
		t.Errorf("price = %v, want 72.5", quote.Price)
	}
}

func TestGetQuoteDerivesYieldFromTrailingFraction(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"quoteResponse": {"result": [
			{"symbol": "AAPL", "regularMarketPrice": 190.0, "trailingAnnualDividendYield": 0.005}
		]}}`))
	}))
	defer srv.Close()

	client := NewClient(WithBaseURL(srv.URL))
	quote, err := client.GetQuote(context.Background(), "AAPL")
	if err != nil {
		t.Fatalf("GetQuote returned error: %v", err)
	}

	if quote.DividendYield != 0.5 {
		t.Errorf("yield = %v, want 0.5 (fraction converted to percent)", quote.DividendYield)
	}
}

func TestGetQuoteNoResult(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"quoteResponse": {"result": []}}`))
	}))
	defer srv.Close()

	client := NewClient(WithBaseURL(srv.URL))
	if _, err := client.GetQuote(context.Background(), "NOPE"); err == nil {
		t.Fatal("expected error for empty result set")
	}
}

func TestGetDailyHistorySkipsNullCloses(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("interval"); got != "1d" {
			t.Errorf("interval = %q, want 1d", got)
		}
		w.Write([]byte(`{"chart": {"result": [
			{"timestamp": [1700000000, 1700086400, 1700172800],
			 "indicators": {"quote": [{"close": [100.0, null, 102.5]}]}}
		]}}`))
	}))
	defer srv.Close()

	client := NewClient(WithBaseURL(srv.URL))
	history, err := client.GetDailyHistory(context.Background(), "AAPL",
		time.Now().AddDate(-1, 0, 0), time.Now())
	if err != nil {
		t.Fatalf("GetDailyHistory returned error: %v", err)
	}

	if len(history) != 2 {
		t.Fatalf("expected 2 closes (null skipped), got %d", len(history))
	}
	if history[0].Close != 100.0 || history[1].Close != 102.5 {
		t.Errorf("unexpected closes: %+v", history)
	}
	if !history[0].Date.Before(history[1].Date) {
		t.Error("history should be in ascending date order")
	}
}
