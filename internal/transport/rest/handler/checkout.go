package handler

import (
	"errors"
	"net/http"

	"formassist/internal/model"
	"formassist/internal/service"
	"formassist/internal/transport/rest/middleware"

	"go.uber.org/zap"
)

// CheckoutHandler starts payment sessions
type CheckoutHandler struct {
	checkoutSvc *service.CheckoutService
	log         *zap.Logger
}

// NewCheckoutHandler creates a new checkout handler
func NewCheckoutHandler(checkoutSvc *service.CheckoutService, log *zap.Logger) *CheckoutHandler {
	return &CheckoutHandler{checkoutSvc: checkoutSvc, log: log}
}

func writeCheckoutError(w http.ResponseWriter, status int, message string) {
	var body model.CheckoutError
	body.Error.Message = message
	writeJSON(w, status, body)
}

// Create handles POST /api/checkout_sessions
//
// @Summary Create a payment checkout session
// @Accept json
// @Produce json
// @Param body body model.CheckoutRequest false "language"
// @Success 200 {object} model.CheckoutResponse
// @Failure 501 {object} model.CheckoutError
// @Router /api/checkout_sessions [post]
func (h *CheckoutHandler) Create(w http.ResponseWriter, r *http.Request) {
	if !h.checkoutSvc.Enabled() {
		writeCheckoutError(w, http.StatusNotImplemented, "Payments are not configured on this server.")
		return
	}

	var req model.CheckoutRequest
	if err := decodeOptional(r, &req); err != nil {
		writeCheckoutError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Lang == "" {
		req.Lang = string(middleware.GetLocale(r.Context()))
	}

	id, err := h.checkoutSvc.CreateSession(r.Context(), req.Lang)
	if err != nil {
		h.log.Warn("checkout session", zap.Error(err))
		switch {
		case errors.Is(err, service.ErrCheckoutDisabled):
			writeCheckoutError(w, http.StatusNotImplemented, "Payments are not configured on this server.")
		case errors.Is(err, service.ErrCheckoutFailed):
			writeCheckoutError(w, http.StatusBadGateway, err.Error())
		default:
			writeCheckoutError(w, http.StatusInternalServerError, "internal error")
		}
		return
	}
	writeJSON(w, http.StatusOK, model.CheckoutResponse{SessionID: id})
}
