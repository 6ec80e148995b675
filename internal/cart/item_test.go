package cart

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestLineTotalRoundsToCents(t *testing.T) {
	item := Item{ID: "A", UnitPrice: 3.333, Quantity: 3}
	if got := item.LineTotal(); !got.Equal(decimal.NewFromFloat(10.00)) {
		t.Fatalf("expected 10.00, got %s", got)
	}
}

func TestTotalSumsLines(t *testing.T) {
	items := []Item{
		{ID: "A", UnitPrice: 12.50, Quantity: 2},
		{ID: "B", UnitPrice: 0.99, Quantity: 3},
	}
	if got := Total(items); !got.Equal(decimal.NewFromFloat(27.97)) {
		t.Fatalf("expected 27.97, got %s", got)
	}
}

func TestTotalEmptyCartIsZero(t *testing.T) {
	if got := Total(nil); !got.Equal(decimal.Zero) {
		t.Fatalf("expected zero, got %s", got)
	}
}
