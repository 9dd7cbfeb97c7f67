package controllers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"gorm.io/gorm"

	"github.com/bitesofsouth/ordering-backend/api/middleware"
	"github.com/bitesofsouth/ordering-backend/api/responses"
	"github.com/bitesofsouth/ordering-backend/api/validators"
	cartsvc "github.com/bitesofsouth/ordering-backend/internal/cart"
	"github.com/bitesofsouth/ordering-backend/internal/menu"
	pkgerrors "github.com/bitesofsouth/ordering-backend/pkg/errors"
	"github.com/bitesofsouth/ordering-backend/pkg/logger"
	"github.com/bitesofsouth/ordering-backend/pkg/types"
)

type cartAddRequest struct {
	ItemID   string `json:"item_id" validate:"required,uuid"`
	Quantity int    `json:"quantity" validate:"required,min=1"`
}

type cartQuantityRequest struct {
	Delta int `json:"delta" validate:"required"`
}

// CartFetch returns the caller's current cart.
func CartFetch(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		lines, err := svc.Get(r.Context(), middleware.UserIDFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, lines)
	}
}

// CartAdd puts a menu item in the cart, merging quantity with an existing
// line for the same item. Price and making time come from the menu, never
// from the client.
func CartAdd(svc cartsvc.Service, menuRepo menu.Repository, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil || menuRepo == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		var payload cartAddRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		item, err := menuRepo.FindByID(r.Context(), payload.ItemID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "menu item not found"))
				return
			}
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if !item.Available {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "menu item not found"))
			return
		}

		line := types.CartLine{
			ID:                item.ID.String(),
			Title:             item.Name,
			UnitPricePaise:    item.PricePaise,
			Quantity:          payload.Quantity,
			Image:             item.ImageURL,
			MakingTimeMinutes: item.MakingTimeMinutes,
		}

		lines, err := svc.Add(r.Context(), middleware.UserIDFromContext(r.Context()), line)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, lines)
	}
}

// CartUpdateQuantity nudges a line's quantity by a signed delta. The line is
// removed when the quantity reaches zero.
func CartUpdateQuantity(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		lineID := strings.TrimSpace(chi.URLParam(r, "lineID"))
		if lineID == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "line id required"))
			return
		}

		var payload cartQuantityRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		lines, err := svc.ChangeQuantity(r.Context(), middleware.UserIDFromContext(r.Context()), lineID, payload.Delta)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, lines)
	}
}

// CartClear empties the caller's cart.
func CartClear(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		if err := svc.Clear(r.Context(), middleware.UserIDFromContext(r.Context())); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]bool{"cleared": true})
	}
}
