package enums

// PaymentStatus reflects the gateway-side state of an order's payment.
type PaymentStatus string

const (
	PaymentStatusPaid     PaymentStatus = "Paid"
	PaymentStatusRefunded PaymentStatus = "Refunded"
	PaymentStatusFailed   PaymentStatus = "Failed"
	// PaymentStatusNotRequired marks orders settled entirely with reward
	// points, where no gateway payment exists.
	PaymentStatusNotRequired PaymentStatus = "NotRequired"
)

var validPaymentStatuses = []PaymentStatus{
	PaymentStatusPaid,
	PaymentStatusRefunded,
	PaymentStatusFailed,
	PaymentStatusNotRequired,
}

// String implements fmt.Stringer.
func (s PaymentStatus) String() string {
	return string(s)
}

// IsValid reports whether the payment status is recognized.
func (s PaymentStatus) IsValid() bool {
	for _, candidate := range validPaymentStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}
