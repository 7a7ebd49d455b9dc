package handler

import (
	"net/http"

	"formassist/internal/service"
	"formassist/internal/transport/rest/middleware"
)

// ReviewHandler handles whole-form review endpoints
type ReviewHandler struct {
	reviewSvc *service.ReviewService
}

// NewReviewHandler creates a new review handler
func NewReviewHandler(reviewSvc *service.ReviewService) *ReviewHandler {
	return &ReviewHandler{reviewSvc: reviewSvc}
}

// Generate handles POST /v1/session/review. Generation failures still
// return 200 with a default review and warnings.
//
// @Summary Review the current answers
// @Produce json
// @Security SessionToken
// @Success 200 {object} model.StoredReview
// @Router /session/review [post]
func (h *ReviewHandler) Generate(w http.ResponseWriter, r *http.Request) {
	stored, err := h.reviewSvc.Generate(r.Context(), middleware.GetSessionID(r.Context()))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stored)
}

// Latest handles GET /v1/session/review
//
// @Summary Last stored review, or the default review
// @Produce json
// @Security SessionToken
// @Success 200 {object} model.StoredReview
// @Router /session/review [get]
func (h *ReviewHandler) Latest(w http.ResponseWriter, r *http.Request) {
	stored, err := h.reviewSvc.Latest(r.Context(), middleware.GetSessionID(r.Context()))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stored)
}
