package controllers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/bitesofsouth/ordering-backend/api/middleware"
	"github.com/bitesofsouth/ordering-backend/api/responses"
	"github.com/bitesofsouth/ordering-backend/api/validators"
	orderssvc "github.com/bitesofsouth/ordering-backend/internal/orders"
	"github.com/bitesofsouth/ordering-backend/pkg/enums"
	pkgerrors "github.com/bitesofsouth/ordering-backend/pkg/errors"
	"github.com/bitesofsouth/ordering-backend/pkg/logger"
)

type progressRequest struct {
	Progress int  `json:"progress" validate:"gte=0,lte=100"`
	Complete bool `json:"complete"`
}

func isStaff(r *http.Request) bool {
	return middleware.RoleFromContext(r.Context()) == string(enums.RoleStaff)
}

// OrdersList returns the caller's order history, newest first.
func OrdersList(svc orderssvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		views, err := svc.ListForUser(r.Context(), middleware.UserIDFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, views)
	}
}

// OrderDetail returns one order with its projected status.
func OrderDetail(svc orderssvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		orderID := strings.TrimSpace(chi.URLParam(r, "orderID"))
		view, err := svc.Get(r.Context(), middleware.UserIDFromContext(r.Context()), isStaff(r), orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}

// OrderProgressUpdate is the kitchen's handle on an order: it moves the
// progress bar and broadcasts the change to watching customers.
func OrderProgressUpdate(svc orderssvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		orderID := strings.TrimSpace(chi.URLParam(r, "orderID"))

		var payload progressRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		view, err := svc.SetProgress(r.Context(), orderID, payload.Progress, payload.Complete)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}

// OrderEvents streams live status updates for one order as server-sent
// events. The connection stays open until the client goes away.
func OrderEvents(svc orderssvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		flusher, ok := w.(http.Flusher)
		if !ok {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "streaming unsupported"))
			return
		}

		ctx := r.Context()
		orderID := strings.TrimSpace(chi.URLParam(r, "orderID"))
		userID := middleware.UserIDFromContext(ctx)

		// Snapshot first so the client renders something before the next
		// kitchen update arrives.
		view, err := svc.Get(ctx, userID, isStaff(r), orderID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		sub, err := svc.Watch(ctx, userID, isStaff(r), orderID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		defer sub.Close()

		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")
		w.WriteHeader(http.StatusOK)

		writeSSE(w, orderssvc.StatusEvent{
			OrderID:     view.ID,
			Progress:    view.Progress,
			OrderStatus: view.OrderStatus,
			Message:     view.Message,
			DineIn:      view.DineIn,
		})
		flusher.Flush()

		for {
			select {
			case <-ctx.Done():
				return
			case event, open := <-sub.Updates():
				if !open {
					return
				}
				writeSSE(w, event)
				flusher.Flush()
			}
		}
	}
}

func writeSSE(w http.ResponseWriter, event orderssvc.StatusEvent) {
	payload, err := json.Marshal(event)
	if err != nil {
		return
	}
	fmt.Fprintf(w, "event: status\ndata: %s\n\n", payload)
}
