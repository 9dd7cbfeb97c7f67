package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/bitesofsouth/ordering-backend/pkg/types"
)

// Tax and service rates are fixed for the storefront, not configurable per
// order.
var (
	gstRate           = decimal.NewFromFloat(0.10)
	serviceChargeRate = decimal.NewFromFloat(0.05)
)

// DiscountEpsilonPaise keeps the payable total strictly positive when a
// coupon alone would zero it out.
const DiscountEpsilonPaise int64 = 1

// Totals is the derived bill for a cart. All amounts are paise.
type Totals struct {
	ItemTotalPaise     int64 `json:"item_total_paise"`
	GSTPaise           int64 `json:"gst_paise"`
	ServiceChargePaise int64 `json:"service_charge_paise"`
	DiscountPaise      int64 `json:"discount_paise"`
	GrandTotalPaise    int64 `json:"grand_total_paise"`
}

// Quote computes the bill for the given lines and discount. It is pure:
// lines with a negative price or non-positive quantity contribute nothing,
// the discount never exceeds the item total minus epsilon, and the grand
// total floors at zero. An empty cart yields all-zero totals.
func Quote(lines []types.CartLine, discountPaise int64) Totals {
	var itemTotal int64
	for _, line := range lines {
		if !line.Countable() {
			continue
		}
		itemTotal += line.LineTotalPaise()
	}

	if itemTotal == 0 {
		return Totals{}
	}

	gst := applyRate(itemTotal, gstRate)
	serviceCharge := applyRate(itemTotal, serviceChargeRate)
	discount := ClampDiscount(discountPaise, itemTotal)

	grand := itemTotal + gst + serviceCharge - discount
	if grand < 0 {
		grand = 0
	}

	return Totals{
		ItemTotalPaise:     itemTotal,
		GSTPaise:           gst,
		ServiceChargePaise: serviceCharge,
		DiscountPaise:      discount,
		GrandTotalPaise:    grand,
	}
}

// ClampDiscount bounds a discount to the valid range for the given item
// total: never negative, never reaching the item total itself.
func ClampDiscount(discountPaise, itemTotalPaise int64) int64 {
	if discountPaise <= 0 || itemTotalPaise <= 0 {
		return 0
	}
	if discountPaise >= itemTotalPaise {
		return itemTotalPaise - DiscountEpsilonPaise
	}
	return discountPaise
}

func applyRate(amountPaise int64, rate decimal.Decimal) int64 {
	return decimal.NewFromInt(amountPaise).Mul(rate).Round(0).IntPart()
}
