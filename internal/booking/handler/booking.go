package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/julienschmidt/httprouter"

	"guichet/internal/booking/service"
	"guichet/internal/booking/validator"
	apperrors "guichet/pkg/errors"
	httputil "guichet/pkg/http"
	"guichet/pkg/logger"
	"guichet/pkg/model"
)

type BookingHandler struct {
	service service.BookingService
	log     *logger.Logger
}

func NewBookingHandler(service service.BookingService, log *logger.Logger) *BookingHandler {
	return &BookingHandler{
		service: service,
		log:     log,
	}
}

type bookRequest struct {
	CaseKind     string `json:"case_kind"`
	CaseID       string `json:"case_id"`
	Family       bool   `json:"family"`
	MaxDaysAhead int    `json:"max_days_ahead"`
}

type bookResponse struct {
	Satisfied bool          `json:"satisfied"`
	Confirmed bool          `json:"confirmed"`
	Slots     []*model.Slot `json:"slots"`
}

// Book reserves a slot over HTTP and confirms it in the same call: at
// this surface the case reference already exists, so there is no
// intermediate save to wait for before confirming.
func (h *BookingHandler) Book(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	siteID := ps.ByName("siteID")

	var req bookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "Book", "operation", "WriteJSON", "error", writeErr)
		}
		return
	}

	ref := model.CaseRef{Kind: model.CaseKind(req.CaseKind), ID: req.CaseID}
	result, err := h.service.Book(r.Context(), siteID, ref, service.BookOptions{
		MaxDaysAhead: req.MaxDaysAhead,
		Family:       req.Family,
	})
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Book", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if result.Satisfied {
		if err := h.service.Confirm(r.Context(), result); err != nil {
			if writeErr := httputil.WriteError(w, err); writeErr != nil {
				h.log.Error("failed to write error response", "handler", "Book", "operation", "WriteError", "error", writeErr)
			}
			return
		}
	}

	resp := bookResponse{Satisfied: result.Satisfied, Confirmed: result.Confirmed, Slots: result.Slots}
	if !result.Satisfied {
		resp.Slots = []*model.Slot{}
		if err := httputil.WriteSuccess(w, resp); err != nil {
			h.log.Error("failed to write success response", "handler", "Book", "operation", "WriteSuccess", "error", err)
		}
		return
	}

	if err := httputil.WriteCreated(w, resp); err != nil {
		h.log.Error("failed to write created response", "handler", "Book", "operation", "WriteCreated", "error", err)
	}
}

func (h *BookingHandler) AddSlots(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var req validator.AddSlotsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "AddSlots", "operation", "WriteJSON", "error", writeErr)
		}
		return
	}
	req.SiteID = ps.ByName("siteID")

	slots, err := h.service.AddSlots(r.Context(), &req)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "AddSlots", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteCreated(w, slots); err != nil {
		h.log.Error("failed to write created response", "handler", "AddSlots", "operation", "WriteCreated", "error", err)
	}
}

func (h *BookingHandler) ListSlots(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	query := r.URL.Query()

	limit, _, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "ListSlots", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	var from time.Time
	if fromStr := query.Get("from"); fromStr != "" {
		var err error
		from, err = time.Parse(time.RFC3339, fromStr)
		if err != nil {
			if writeErr := httputil.WriteError(w, apperrors.InvalidInput("invalid from parameter: "+fromStr)); writeErr != nil {
				h.log.Error("failed to write error response", "handler", "ListSlots", "operation", "WriteError", "error", writeErr)
			}
			return
		}
	}

	slots, err := h.service.ListUpcomingSlots(r.Context(), ps.ByName("siteID"), service.ListFilter{
		From:     from,
		FreeOnly: query.Get("free_only") == "true",
		Limit:    limit,
	})
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "ListSlots", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, slots); err != nil {
		h.log.Error("failed to write success response", "handler", "ListSlots", "operation", "WriteSuccess", "error", err)
	}
}

type reserveAllRequest struct {
	SlotIDs  []string `json:"slot_ids"`
	CaseKind string   `json:"case_kind"`
	CaseID   string   `json:"case_id"`
}

func (h *BookingHandler) ReserveAll(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req reserveAllRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "ReserveAll", "operation", "WriteJSON", "error", writeErr)
		}
		return
	}

	ref := model.CaseRef{Kind: model.CaseKind(req.CaseKind), ID: req.CaseID}
	slots, err := h.service.ReserveAll(r.Context(), req.SlotIDs, ref)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "ReserveAll", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, slots); err != nil {
		h.log.Error("failed to write success response", "handler", "ReserveAll", "operation", "WriteSuccess", "error", err)
	}
}

func (h *BookingHandler) Release(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id := ps.ByName("id")
	if id == "" {
		if err := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "ID parameter is required",
		}); err != nil {
			h.log.Error("failed to write bad request response", "handler", "Release", "operation", "WriteJSON", "error", err)
		}
		return
	}

	slot, err := h.service.ReleaseSlot(r.Context(), id)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Release", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, slot); err != nil {
		h.log.Error("failed to write success response", "handler", "Release", "operation", "WriteSuccess", "error", err)
	}
}

func (h *BookingHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/sites/:siteID/bookings", h.Book)
	router.POST("/api/v1/sites/:siteID/slots", h.AddSlots)
	router.GET("/api/v1/sites/:siteID/slots", h.ListSlots)
	router.POST("/api/v1/bookings/reserve", h.ReserveAll)
	router.POST("/api/v1/slots/:id/release", h.Release)
}
