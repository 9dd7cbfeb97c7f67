package types

// DefaultMakingTimeMinutes is assumed for lines that arrive without a
// preparation time.
const DefaultMakingTimeMinutes = 15

// CartLine is one entry of a session cart. Redeemed lines carry a zero unit
// price and the point cost of the reward instead.
type CartLine struct {
	ID                string `json:"id"`
	Title             string `json:"title"`
	UnitPricePaise    int64  `json:"unit_price_paise"`
	Quantity          int    `json:"quantity"`
	Image             string `json:"image,omitempty"`
	MakingTimeMinutes int    `json:"making_time_minutes"`
	IsRedeemed        bool   `json:"is_redeemed"`
	RequiredPoints    int    `json:"required_points"`
}

// LineTotalPaise returns unit price times quantity for the line.
func (l CartLine) LineTotalPaise() int64 {
	return l.UnitPricePaise * int64(l.Quantity)
}

// Countable reports whether the line contributes to pricing: non-negative
// price and positive quantity. Lines failing this are tolerated as
// zero-contribution rather than rejected.
func (l CartLine) Countable() bool {
	return l.UnitPricePaise >= 0 && l.Quantity > 0
}
