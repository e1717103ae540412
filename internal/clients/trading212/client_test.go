package trading212

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestGetPieMapsDetailDocument(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/equity/pies/42" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("Authorization = %q, want bearer credential", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"settings": {"id": 42, "name": "Growth (40%)", "creationDate": 1644665211, "dividendCashAction": "REINVEST"},
			"instruments": [
				{"ticker": "AAPL_US_EQ", "currentShare": 0.6, "expectedShare": 0.5, "ownedQuantity": 2.5,
				 "result": {"priceAvgInvestedValue": 400.0, "priceAvgValue": 450.0}},
				{"ticker": "VODl_EQ", "currentShare": 0.4, "expectedShare": 0.5, "ownedQuantity": 100,
				 "result": {"priceAvgInvestedValue": 120.0, "priceAvgValue": 110.0}}
			]
		}`))
	}))
	defer srv.Close()

	client := NewClient("test-key", WithBaseURL(srv.URL))
	detail, err := client.GetPie(context.Background(), 42)
	if err != nil {
		t.Fatalf("GetPie returned error: %v", err)
	}

	if detail.Name != "Growth (40%)" {
		t.Errorf("name = %q, want %q", detail.Name, "Growth (40%)")
	}
	if detail.DividendCashAction != "REINVEST" {
		t.Errorf("dividendCashAction = %q, want REINVEST", detail.DividendCashAction)
	}
	if detail.CreationDate.IsZero() {
		t.Error("creationDate should parse from epoch seconds")
	}
	if len(detail.Holdings) != 2 {
		t.Fatalf("expected 2 holdings, got %d", len(detail.Holdings))
	}
	if detail.Holdings[0].PriceAvgInvestedValue != 400.0 {
		t.Errorf("invested value = %v, want 400", detail.Holdings[0].PriceAvgInvestedValue)
	}
}

func TestGetInstrumentsBuildsList(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[
			{"ticker": "AAPL_US_EQ", "name": "Apple", "currencyCode": "USD", "type": "STOCK",
			 "addedOn": "2018-07-03T00:00:00Z", "maxOpenQuantity": 1000000, "minTradeQuantity": 0.01},
			{"ticker": "VUSAl_EQ", "name": "Vanguard S&P 500", "currencyCode": "GBX", "type": "ETF",
			 "addedOn": "2019-01-15", "maxOpenQuantity": 500000, "minTradeQuantity": 0.01}
		]`))
	}))
	defer srv.Close()

	client := NewClient("test-key", WithBaseURL(srv.URL))
	instruments, err := client.GetInstruments(context.Background())
	if err != nil {
		t.Fatalf("GetInstruments returned error: %v", err)
	}

	if len(instruments) != 2 {
		t.Fatalf("expected 2 instruments, got %d", len(instruments))
	}
	if instruments[0].CurrencyCode != "USD" {
		t.Errorf("currency = %q, want USD", instruments[0].CurrencyCode)
	}
	if instruments[1].AddedOn.IsZero() {
		t.Error("addedOn should parse from date-only format")
	}
}

func TestGetInstrumentsMalformedPayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"error": "not an array"}`))
	}))
	defer srv.Close()

	client := NewClient("test-key", WithBaseURL(srv.URL))
	if _, err := client.GetInstruments(context.Background()); err == nil {
		t.Fatal("expected decode error for non-array catalogue payload")
	}
}

func TestGetCashObjectAndArrayShapes(t *testing.T) {
	cases := []struct {
		name string
		body string
		want float64
	}{
		{"object free", `{"free": 123.45, "total": 5000}`, 123.45},
		{"object cash", `{"cash": 67.89}`, 67.89},
		{"array", `[{"cash": 42.0}]`, 42.0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(tc.body))
			}))
			defer srv.Close()

			client := NewClient("test-key", WithBaseURL(srv.URL))
			got, err := client.GetCash(context.Background())
			if err != nil {
				t.Fatalf("GetCash returned error: %v", err)
			}
			if got != tc.want {
				t.Errorf("cash = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestGetPiesReturnsRefs(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"id": 1, "cash": 0}, {"id": 2}]`))
	}))
	defer srv.Close()

	client := NewClient("test-key", WithBaseURL(srv.URL))
	pies, err := client.GetPies(context.Background())
	if err != nil {
		t.Fatalf("GetPies returned error: %v", err)
	}
	if len(pies) != 2 || pies[0].ID != 1 || pies[1].ID != 2 {
		t.Errorf("unexpected pie refs: %+v", pies)
	}
}
