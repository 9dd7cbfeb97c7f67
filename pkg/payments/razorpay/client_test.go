package razorpay

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"testing"

	"github.com/bitesofsouth/ordering-backend/pkg/config"
	pkgerrors "github.com/bitesofsouth/ordering-backend/pkg/errors"
)

func newTestClient(t *testing.T) *Client {
	t.Helper()
	client, err := NewClient(context.Background(), config.RazorpayConfig{
		KeyID:     "rzp_test_key",
		KeySecret: "test-secret",
		Currency:  "INR",
	}, nil)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return client
}

// sign mints the signature the checkout widget would attach to a captured payment.
func sign(secret, orderID, paymentID string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

func TestNewClientRequiresCredentials(t *testing.T) {
	t.Parallel()

	if _, err := NewClient(context.Background(), config.RazorpayConfig{KeySecret: "s"}, nil); err == nil {
		t.Fatal("expected error without key id")
	}
	if _, err := NewClient(context.Background(), config.RazorpayConfig{KeyID: "k"}, nil); err == nil {
		t.Fatal("expected error without key secret")
	}
}

func TestCreateOrderRejectsNonPositiveAmount(t *testing.T) {
	t.Parallel()

	client := newTestClient(t)
	if _, err := client.CreateOrder(context.Background(), 0, "r1"); !pkgerrors.Is(err, pkgerrors.CodeValidation) {
		t.Fatalf("err = %v, want validation error", err)
	}
	if _, err := client.CreateOrder(context.Background(), -500, "r1"); !pkgerrors.Is(err, pkgerrors.CodeValidation) {
		t.Fatalf("negative amount should be rejected")
	}
}

func TestGatewayOrderFromResponse(t *testing.T) {
	t.Parallel()

	order := gatewayOrderFromResponse(map[string]interface{}{
		"id":       "order_abc",
		"amount":   float64(23000),
		"currency": "INR",
		"receipt":  "r1",
		"status":   "created",
	})
	if order.ID != "order_abc" || order.Amount != 23000 || order.Currency != "INR" {
		t.Fatalf("unexpected order: %+v", order)
	}
	if order.Receipt != "r1" || order.Status != "created" {
		t.Fatalf("unexpected order: %+v", order)
	}

	empty := gatewayOrderFromResponse(map[string]interface{}{})
	if empty.ID != "" || empty.Amount != 0 {
		t.Fatalf("missing fields should decode to zero values: %+v", empty)
	}
}

func TestVerifyConfirmation(t *testing.T) {
	t.Parallel()

	client := newTestClient(t)

	good := Confirmation{
		OrderID:   "order_abc",
		PaymentID: "pay_xyz",
		Signature: sign("test-secret", "order_abc", "pay_xyz"),
	}
	if err := client.VerifyConfirmation(good); err != nil {
		t.Fatalf("valid signature rejected: %v", err)
	}

	forged := good
	forged.Signature = sign("wrong-secret", "order_abc", "pay_xyz")
	if err := client.VerifyConfirmation(forged); !pkgerrors.Is(err, pkgerrors.CodePaymentDeclined) {
		t.Fatalf("err = %v, want payment declined", err)
	}

	if err := client.VerifyConfirmation(Confirmation{}); !pkgerrors.Is(err, pkgerrors.CodePaymentDeclined) {
		t.Fatal("incomplete confirmation should be declined")
	}
}
