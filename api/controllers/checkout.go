package controllers

import (
	"net/http"

	"github.com/bitesofsouth/ordering-backend/api/middleware"
	"github.com/bitesofsouth/ordering-backend/api/responses"
	"github.com/bitesofsouth/ordering-backend/api/validators"
	checkoutsvc "github.com/bitesofsouth/ordering-backend/internal/checkout"
	pkgerrors "github.com/bitesofsouth/ordering-backend/pkg/errors"
	"github.com/bitesofsouth/ordering-backend/pkg/logger"
	"github.com/bitesofsouth/ordering-backend/pkg/payments/razorpay"
)

type quoteRequest struct {
	CouponCode string `json:"coupon_code"`
}

type paymentOrderRequest struct {
	CouponCode string `json:"coupon_code"`
}

// checkoutRequest leaves the razorpay fields optional: a cart settled
// entirely with reward points never goes through the widget, and the service
// rejects a payable order whose confirmation is incomplete.
type checkoutRequest struct {
	DineIn       bool   `json:"dine_in"`
	TableNo      string `json:"table_no"`
	Instructions string `json:"instructions"`
	CouponCode   string `json:"coupon_code"`
	PaymentID    string `json:"razorpay_payment_id"`
	OrderID      string `json:"razorpay_order_id"`
	Signature    string `json:"razorpay_signature"`
}

// CartQuote prices the current cart, optionally applying a coupon code.
func CartQuote(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}

		var payload quoteRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		quote, err := svc.QuoteCart(r.Context(), middleware.UserIDFromContext(r.Context()), payload.CouponCode)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, quote)
	}
}

// PaymentOrderCreate registers the cart total with the payment gateway and
// hands the gateway order back for the hosted widget.
func PaymentOrderCreate(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}

		var payload paymentOrderRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.CreatePaymentOrder(r.Context(), middleware.UserIDFromContext(r.Context()), payload.CouponCode)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, order)
	}
}

// CheckoutPlace turns the paid cart into an order.
func CheckoutPlace(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}

		var payload checkoutRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		view, err := svc.Checkout(r.Context(), checkoutsvc.Input{
			UserID:       middleware.UserIDFromContext(r.Context()),
			DineIn:       payload.DineIn,
			TableNo:      payload.TableNo,
			Instructions: payload.Instructions,
			CouponCode:   payload.CouponCode,
			Confirmation: razorpay.Confirmation{
				PaymentID: payload.PaymentID,
				OrderID:   payload.OrderID,
				Signature: payload.Signature,
			},
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, view)
	}
}
