package razorpay

import (
	"context"
	"errors"
	"strings"

	razorpaygo "github.com/razorpay/razorpay-go"
	"github.com/razorpay/razorpay-go/utils"

	"github.com/bitesofsouth/ordering-backend/pkg/config"
	pkgerrors "github.com/bitesofsouth/ordering-backend/pkg/errors"
	"github.com/bitesofsouth/ordering-backend/pkg/logger"
)

var (
	errKeyRequired    = errors.New("razorpay key id is required")
	errSecretRequired = errors.New("razorpay key secret is required")
)

// Client wraps the Razorpay SDK: it registers gateway orders and verifies
// the payment signatures produced by the hosted checkout widget.
type Client struct {
	api       *razorpaygo.Client
	keySecret string
	currency  string
}

// GatewayOrder is the gateway-side order the hosted widget collects payment
// against. Amount is in minor currency units (paise).
type GatewayOrder struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
	Status   string `json:"status"`
}

// Confirmation is what the widget hands back after a successful payment.
type Confirmation struct {
	PaymentID string `json:"razorpay_payment_id"`
	OrderID   string `json:"razorpay_order_id"`
	Signature string `json:"razorpay_signature"`
}

// NewClient initializes the gateway client with the configured credentials.
func NewClient(ctx context.Context, cfg config.RazorpayConfig, logg *logger.Logger) (*Client, error) {
	keyID := strings.TrimSpace(cfg.KeyID)
	if keyID == "" {
		return nil, errKeyRequired
	}
	keySecret := strings.TrimSpace(cfg.KeySecret)
	if keySecret == "" {
		return nil, errSecretRequired
	}

	currency := cfg.Currency
	if currency == "" {
		currency = "INR"
	}

	if logg != nil {
		logg.Info(ctx, "razorpay client initialized")
	}

	return &Client{
		api:       razorpaygo.NewClient(keyID, keySecret),
		keySecret: keySecret,
		currency:  currency,
	}, nil
}

// Currency returns the configured settlement currency.
func (c *Client) Currency() string {
	return c.currency
}

// CreateOrder registers a gateway order for the given payable amount in paise.
func (c *Client) CreateOrder(ctx context.Context, amountPaise int64, receipt string) (*GatewayOrder, error) {
	if amountPaise <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payable amount must be positive")
	}

	body, err := c.api.Order.Create(map[string]interface{}{
		"amount":   amountPaise,
		"currency": c.currency,
		"receipt":  receipt,
	}, nil)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "payment gateway rejected order")
	}
	return gatewayOrderFromResponse(body), nil
}

// VerifyConfirmation checks the widget's signature over the order and
// payment ids. A mismatch means the confirmation cannot be trusted and the
// payment is treated as declined.
func (c *Client) VerifyConfirmation(conf Confirmation) error {
	if conf.PaymentID == "" || conf.OrderID == "" || conf.Signature == "" {
		return pkgerrors.New(pkgerrors.CodePaymentDeclined, "payment confirmation is incomplete")
	}

	params := map[string]interface{}{
		"razorpay_order_id":   conf.OrderID,
		"razorpay_payment_id": conf.PaymentID,
	}
	if !utils.VerifyPaymentSignature(params, conf.Signature, c.keySecret) {
		return pkgerrors.New(pkgerrors.CodePaymentDeclined, "payment signature mismatch")
	}
	return nil
}

// gatewayOrderFromResponse lifts the SDK's untyped response into the order
// shape the storefront consumes.
func gatewayOrderFromResponse(body map[string]interface{}) *GatewayOrder {
	return &GatewayOrder{
		ID:       stringField(body, "id"),
		Amount:   int64Field(body, "amount"),
		Currency: stringField(body, "currency"),
		Receipt:  stringField(body, "receipt"),
		Status:   stringField(body, "status"),
	}
}

func stringField(body map[string]interface{}, key string) string {
	if value, ok := body[key].(string); ok {
		return value
	}
	return ""
}

func int64Field(body map[string]interface{}, key string) int64 {
	switch value := body[key].(type) {
	case float64:
		return int64(value)
	case int64:
		return value
	case int:
		return int64(value)
	default:
		return 0
	}
}
