package pricing

import (
	"testing"

	"github.com/bitesofsouth/ordering-backend/pkg/types"
)

func TestQuoteEmptyCart(t *testing.T) {
	t.Parallel()

	if got := Quote(nil, 0); got != (Totals{}) {
		t.Fatalf("empty cart totals = %+v, want zeros", got)
	}
	if got := Quote([]types.CartLine{}, 5000); got != (Totals{}) {
		t.Fatalf("empty cart with discount = %+v, want zeros", got)
	}
}

func TestQuoteKnownScenario(t *testing.T) {
	t.Parallel()

	// One item at Rs 100, quantity 2.
	lines := []types.CartLine{
		{ID: "A", Title: "Masala Dosa", UnitPricePaise: 10000, Quantity: 2},
	}

	got := Quote(lines, 0)
	want := Totals{
		ItemTotalPaise:     20000,
		GSTPaise:           2000,
		ServiceChargePaise: 1000,
		DiscountPaise:      0,
		GrandTotalPaise:    23000,
	}
	if got != want {
		t.Fatalf("totals = %+v, want %+v", got, want)
	}
}

func TestQuoteOversizedDiscountClamps(t *testing.T) {
	t.Parallel()

	lines := []types.CartLine{
		{ID: "A", Title: "Masala Dosa", UnitPricePaise: 10000, Quantity: 2},
	}

	// Flat coupon worth Rs 250 against a Rs 200 subtotal.
	got := Quote(lines, 25000)
	if got.DiscountPaise != 19999 {
		t.Fatalf("discount = %d, want 19999", got.DiscountPaise)
	}
	if got.GrandTotalPaise != 3001 {
		t.Fatalf("grand total = %d, want 3001", got.GrandTotalPaise)
	}
}

func TestQuoteGrandTotalNeverNegative(t *testing.T) {
	t.Parallel()

	lines := []types.CartLine{
		{ID: "A", UnitPricePaise: 100, Quantity: 1},
	}
	for _, discount := range []int64{0, 50, 99, 100, 1_000_000} {
		got := Quote(lines, discount)
		if got.GrandTotalPaise < 0 {
			t.Fatalf("discount %d produced negative grand total %d", discount, got.GrandTotalPaise)
		}
		sum := got.ItemTotalPaise + got.GSTPaise + got.ServiceChargePaise - got.DiscountPaise
		if sum < 0 {
			sum = 0
		}
		if got.GrandTotalPaise != sum {
			t.Fatalf("grand total identity broken: %+v", got)
		}
	}
}

func TestQuoteFiltersInvalidLines(t *testing.T) {
	t.Parallel()

	lines := []types.CartLine{
		{ID: "ok", UnitPricePaise: 5000, Quantity: 1},
		{ID: "neg-price", UnitPricePaise: -100, Quantity: 3},
		{ID: "zero-qty", UnitPricePaise: 4000, Quantity: 0},
		{ID: "redeemed", UnitPricePaise: 0, Quantity: 1, IsRedeemed: true},
	}

	got := Quote(lines, 0)
	if got.ItemTotalPaise != 5000 {
		t.Fatalf("item total = %d, want 5000 (invalid lines filtered)", got.ItemTotalPaise)
	}
}

func TestQuoteRatesAreExact(t *testing.T) {
	t.Parallel()

	cases := []struct {
		itemTotal int64
		gst       int64
		service   int64
	}{
		{20000, 2000, 1000},
		{99900, 9990, 4995},
		{1, 0, 0},       // 0.1 and 0.05 paise round to zero
		{15, 2, 1},      // 1.5 rounds away from zero, 0.75 rounds to 1
		{100001, 10000, 5000},
	}
	for _, tc := range cases {
		lines := []types.CartLine{{ID: "x", UnitPricePaise: tc.itemTotal, Quantity: 1}}
		got := Quote(lines, 0)
		if got.GSTPaise != tc.gst || got.ServiceChargePaise != tc.service {
			t.Fatalf("itemTotal %d: gst=%d service=%d, want gst=%d service=%d",
				tc.itemTotal, got.GSTPaise, got.ServiceChargePaise, tc.gst, tc.service)
		}
	}
}

func TestClampDiscount(t *testing.T) {
	t.Parallel()

	if got := ClampDiscount(-5, 1000); got != 0 {
		t.Fatalf("negative discount = %d, want 0", got)
	}
	if got := ClampDiscount(500, 1000); got != 500 {
		t.Fatalf("in-range discount = %d, want 500", got)
	}
	if got := ClampDiscount(1000, 1000); got != 999 {
		t.Fatalf("equal discount = %d, want 999", got)
	}
	if got := ClampDiscount(100, 0); got != 0 {
		t.Fatalf("discount on zero total = %d, want 0", got)
	}
}
