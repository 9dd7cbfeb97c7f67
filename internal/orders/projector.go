package orders

import (
	"strconv"
)

// Customer-facing status lines, picked by fulfilment mode and progress.
const (
	MsgCookingInProgress = "Cooking in Progress"
	MsgReadyToServe      = "Ready to Serve"
	MsgDeliveredToTable  = "Delivered to Table"
	MsgPackingYourOrder  = "Packing Your Order"
	MsgOrderPacked       = "Order Packed"
	MsgOrderDelivered    = "Order Delivered"
)

// StatusView selects which storefront surface a status line is rendered for.
type StatusView int

const (
	// TrackView is the live single-order tracking page (and its SSE feed).
	TrackView StatusView = iota
	// HistoryView is the past-orders listing.
	HistoryView
)

// ProjectProgress turns the stored pending status into a percentage.
// Malformed values project to 0 rather than failing the read.
func ProjectProgress(raw string) int {
	progress, err := strconv.Atoi(raw)
	if err != nil {
		return 0
	}
	if progress < 0 {
		return 0
	}
	if progress > 100 {
		return 100
	}
	return progress
}

// StatusMessage renders the storefront status line. At full progress the
// tracking page announces the order as ready while the history list records
// it as handed over.
func StatusMessage(dineIn bool, progress int, view StatusView) string {
	if dineIn {
		switch {
		case progress >= 100 && view == HistoryView:
			return MsgDeliveredToTable
		case progress >= 100:
			return MsgReadyToServe
		default:
			return MsgCookingInProgress
		}
	}
	switch {
	case progress >= 100 && view == HistoryView:
		return MsgOrderDelivered
	case progress >= 100:
		return MsgOrderPacked
	default:
		return MsgPackingYourOrder
	}
}
