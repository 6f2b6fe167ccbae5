package pricing

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestAdjustDirection(t *testing.T) {
	m := Model{SlippagePct: decimal.NewFromFloat(0.002)}
	p := decimal.NewFromInt(10)

	buy := m.Adjust(p, Buy)
	sell := m.Adjust(p, Sell)

	if !buy.GreaterThan(p) {
		t.Fatalf("buy fill %s should exceed quote %s", buy, p)
	}
	if !sell.LessThan(p) {
		t.Fatalf("sell fill %s should be under quote %s", sell, p)
	}

	want := decimal.NewFromFloat(10.02)
	if !buy.Equal(want) {
		t.Fatalf("buy fill mismatch: got %s want %s", buy, want)
	}
}

func TestAdjustZeroSlippage(t *testing.T) {
	var m Model
	p := decimal.NewFromFloat(7.35)

	if !m.Adjust(p, Buy).Equal(p) {
		t.Fatalf("zero-slippage buy should fill at quote")
	}
	if !m.Adjust(p, Sell).Equal(p) {
		t.Fatalf("zero-slippage sell should fill at quote")
	}
}

func TestAdjustDeterministic(t *testing.T) {
	m := Model{SlippagePct: decimal.NewFromFloat(0.01)}
	p := decimal.NewFromFloat(3.1415)

	a := m.Adjust(p, Buy)
	b := m.Adjust(p, Buy)
	if !a.Equal(b) {
		t.Fatalf("adjust is not deterministic: %s vs %s", a, b)
	}
}

func TestNotional(t *testing.T) {
	got := Notional(decimal.NewFromInt(10), 3)
	want := decimal.NewFromInt(3000)
	if !got.Equal(want) {
		t.Fatalf("notional mismatch: got %s want %s", got, want)
	}
}
