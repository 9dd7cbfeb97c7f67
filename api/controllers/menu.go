package controllers

import (
	"net/http"

	"github.com/bitesofsouth/ordering-backend/api/responses"
	"github.com/bitesofsouth/ordering-backend/internal/menu"
	"github.com/bitesofsouth/ordering-backend/pkg/db/models"
	pkgerrors "github.com/bitesofsouth/ordering-backend/pkg/errors"
	"github.com/bitesofsouth/ordering-backend/pkg/logger"
)

type menuItemView struct {
	ID                string `json:"id"`
	Name              string `json:"name"`
	Description       string `json:"description,omitempty"`
	ImageURL          string `json:"image_url,omitempty"`
	PricePaise        int64  `json:"price_paise"`
	MakingTimeMinutes int    `json:"making_time_minutes"`
	Category          string `json:"category,omitempty"`
}

func newMenuItemView(item models.MenuItem) menuItemView {
	return menuItemView{
		ID:                item.ID.String(),
		Name:              item.Name,
		Description:       item.Description,
		ImageURL:          item.ImageURL,
		PricePaise:        item.PricePaise,
		MakingTimeMinutes: item.MakingTimeMinutes,
		Category:          item.Category,
	}
}

// MenuList returns the available storefront menu.
func MenuList(repo menu.Repository, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if repo == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "menu unavailable"))
			return
		}

		items, err := repo.List(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing menu"))
			return
		}

		views := make([]menuItemView, 0, len(items))
		for _, item := range items {
			views = append(views, newMenuItemView(item))
		}
		responses.WriteSuccess(w, views)
	}
}
