package controllers

import (
	"net/http"
	"time"

	"github.com/bitesofsouth/ordering-backend/api/responses"
	couponsvc "github.com/bitesofsouth/ordering-backend/internal/coupons"
	"github.com/bitesofsouth/ordering-backend/pkg/db/models"
	pkgerrors "github.com/bitesofsouth/ordering-backend/pkg/errors"
	"github.com/bitesofsouth/ordering-backend/pkg/logger"
)

type couponView struct {
	Code         string `json:"code"`
	DiscountType string `json:"discount_type"`
	Value        string `json:"value"`
	ExpiresAt    string `json:"expires_at,omitempty"`
}

func newCouponView(coupon models.Coupon) couponView {
	view := couponView{
		Code:         coupon.Code,
		DiscountType: coupon.DiscountType.String(),
		Value:        coupon.Value.String(),
	}
	if coupon.ExpiresAt != nil {
		view.ExpiresAt = coupon.ExpiresAt.UTC().Format(time.RFC3339)
	}
	return view
}

// CouponList returns coupons that can still be applied.
func CouponList(svc couponsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "coupon service unavailable"))
			return
		}

		coupons, err := svc.ListAvailable(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		views := make([]couponView, 0, len(coupons))
		for _, coupon := range coupons {
			views = append(views, newCouponView(coupon))
		}
		responses.WriteSuccess(w, views)
	}
}
