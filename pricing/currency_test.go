package pricing_test

import (
	"errors"
	"testing"

	"github.com/enescc00/b2bsitesibitmis-sub000/pricing"
	"github.com/shopspring/decimal"
)

func testRates() pricing.CurrencyTable {
	return pricing.NewCurrencyTable(map[pricing.CurrencyCode]pricing.Rate{
		pricing.CurrencyUSD: {Buy: decimal.NewFromFloat(32.50), Sell: decimal.NewFromFloat(32.80)},
		pricing.CurrencyEUR: {Buy: decimal.NewFromFloat(35.00), Sell: decimal.NewFromFloat(35.40)},
	})
}

func TestConvert_SameCurrencyIsIdentity(t *testing.T) {
	table := testRates()
	for _, code := range []pricing.CurrencyCode{pricing.CurrencyTRY, pricing.CurrencyUSD, pricing.CurrencyEUR} {
		amount := decimal.NewFromFloat(123.456)
		got, err := table.Convert(amount, code, code)
		if err != nil {
			t.Fatalf("convert %s->%s: %v", code, code, err)
		}
		if !got.Equal(amount) {
			t.Fatalf("convert %s->%s: expected %s, got %s", code, code, amount, got)
		}
	}

	// identity holds even for a code with no configured rate
	got, err := pricing.NewCurrencyTable(nil).Convert(decimal.NewFromInt(7), pricing.CurrencyUSD, pricing.CurrencyUSD)
	if err != nil || !got.Equal(decimal.NewFromInt(7)) {
		t.Fatalf("identity must not require a rate: got %s, err %v", got, err)
	}
}

func TestConvert_ForeignToTRYUsesSellRate(t *testing.T) {
	table := testRates()
	got, err := table.Convert(decimal.NewFromInt(10), pricing.CurrencyUSD, pricing.CurrencyTRY)
	if err != nil {
		t.Fatal(err)
	}
	if want := decimal.NewFromInt(328); !got.Equal(want) {
		t.Fatalf("expected %s, got %s", want, got)
	}
}

func TestConvert_TRYToForeignDividesByBuyRate(t *testing.T) {
	table := testRates()
	got, err := table.Convert(decimal.NewFromInt(325), pricing.CurrencyTRY, pricing.CurrencyUSD)
	if err != nil {
		t.Fatal(err)
	}
	if want := decimal.NewFromInt(10); !got.Equal(want) {
		t.Fatalf("expected %s, got %s", want, got)
	}
}

func TestConvert_CrossCurrencyGoesThroughTRY(t *testing.T) {
	table := testRates()
	// 10 USD -> 328 TRY -> / 35.00 EUR buy
	got, err := table.Convert(decimal.NewFromInt(10), pricing.CurrencyUSD, pricing.CurrencyEUR)
	if err != nil {
		t.Fatal(err)
	}
	want := decimal.NewFromInt(328).Div(decimal.NewFromInt(35))
	if !got.Equal(want) {
		t.Fatalf("expected %s, got %s", want, got)
	}
	// only the final result is rounded, by the caller
	if rounded := pricing.Round2(got); rounded.String() != "9.37" {
		t.Fatalf("expected 9.37 after final rounding, got %s", rounded)
	}
}

func TestConvert_UnknownCurrency(t *testing.T) {
	table := testRates()
	_, err := table.Convert(decimal.NewFromInt(5), "GBP", pricing.CurrencyTRY)
	if !errors.Is(err, pricing.ErrUnknownCurrency) {
		t.Fatalf("expected ErrUnknownCurrency, got %v", err)
	}
	_, err = table.Convert(decimal.NewFromInt(5), pricing.CurrencyTRY, "GBP")
	if !errors.Is(err, pricing.ErrUnknownCurrency) {
		t.Fatalf("expected ErrUnknownCurrency, got %v", err)
	}
}

func TestRound2_HalfUp(t *testing.T) {
	cases := map[string]string{
		"1.005":    "1.01",
		"1.004":    "1.00",
		"1706.256": "1706.26",
		"2.675":    "2.68",
	}
	for in, want := range cases {
		d, err := decimal.NewFromString(in)
		if err != nil {
			t.Fatal(err)
		}
		if got := pricing.Round2(d).String(); got != want {
			t.Fatalf("Round2(%s): expected %s, got %s", in, want, got)
		}
	}
}
