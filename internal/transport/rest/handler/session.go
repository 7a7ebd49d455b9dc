package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"formassist/internal/model"
	"formassist/internal/service"
	"formassist/internal/transport/rest/middleware"

	"github.com/gorilla/mux"
)

// MaxEvidenceSize bounds one uploaded evidence file
const MaxEvidenceSize = 10 << 20

// SessionHandler handles session and answer endpoints
type SessionHandler struct {
	sessionSvc *service.SessionService
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(sessionSvc *service.SessionService) *SessionHandler {
	return &SessionHandler{sessionSvc: sessionSvc}
}

// Create handles POST /v1/sessions
//
// @Summary Start a session
// @Accept json
// @Produce json
// @Param body body model.CreateSessionRequest false "module and language"
// @Success 201 {object} model.CreateSessionResponse
// @Router /sessions [post]
func (h *SessionHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req model.CreateSessionRequest
	if err := decodeOptional(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Lang == "" {
		req.Lang = string(middleware.GetLocale(r.Context()))
	}

	resp, err := h.sessionSvc.Create(r.Context(), &req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

// State handles GET /v1/session
//
// @Summary Current session state
// @Produce json
// @Security SessionToken
// @Success 200 {object} model.SessionState
// @Router /session [get]
func (h *SessionHandler) State(w http.ResponseWriter, r *http.Request) {
	state, err := h.sessionSvc.State(r.Context(), middleware.GetSessionID(r.Context()))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, state)
}

// Delete handles DELETE /v1/session
//
// @Summary End the session and erase its answers and evidence
// @Security SessionToken
// @Success 204
// @Router /session [delete]
func (h *SessionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.sessionSvc.Delete(r.Context(), middleware.GetSessionID(r.Context())); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SelectModule handles PUT /v1/session/module
//
// @Summary Switch module or language; discards all answers
// @Accept json
// @Produce json
// @Security SessionToken
// @Param body body model.SelectModuleRequest true "module and language"
// @Success 200 {object} model.SessionState
// @Router /session/module [put]
func (h *SessionHandler) SelectModule(w http.ResponseWriter, r *http.Request) {
	var req model.SelectModuleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	state, err := h.sessionSvc.SelectModule(r.Context(), middleware.GetSessionID(r.Context()), &req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, state)
}

// SetAnswer handles PATCH /v1/session/answers/{questionId}
//
// @Summary Change one property of an answer
// @Accept json
// @Produce json
// @Security SessionToken
// @Param questionId path string true "question id"
// @Param body body model.SetAnswerRequest true "property and value"
// @Success 200 {object} model.AnswerUpdate
// @Router /session/answers/{questionId} [patch]
func (h *SessionHandler) SetAnswer(w http.ResponseWriter, r *http.Request) {
	var req model.SetAnswerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Property == "" {
		req.Property = model.PropertyValue
	}

	update, err := h.sessionSvc.SetAnswer(r.Context(), middleware.GetSessionID(r.Context()), mux.Vars(r)["questionId"], &req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, update)
}

// UploadEvidence handles POST /v1/session/answers/{questionId}/evidence
//
// @Summary Attach an evidence file to an answer
// @Accept multipart/form-data
// @Produce json
// @Security SessionToken
// @Param questionId path string true "question id"
// @Param file formData file true "evidence file, at most 10 MiB"
// @Success 200 {object} model.AnswerUpdate
// @Router /session/answers/{questionId}/evidence [post]
func (h *SessionHandler) UploadEvidence(w http.ResponseWriter, r *http.Request) {
	const limit = MaxEvidenceSize + 1<<20 // room for multipart framing
	if r.ContentLength > limit {
		writeError(w, http.StatusRequestEntityTooLarge, "file too large")
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, limit)
	file, header, err := r.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "file too large")
			return
		}
		writeError(w, http.StatusBadRequest, "missing file")
		return
	}
	defer file.Close()

	if header.Size > MaxEvidenceSize {
		writeError(w, http.StatusRequestEntityTooLarge, "file too large")
		return
	}

	mimeType := header.Header.Get("Content-Type")
	if mimeType == "" || mimeType == "application/octet-stream" {
		sniff := make([]byte, 512)
		n, _ := io.ReadFull(file, sniff)
		mimeType = http.DetectContentType(sniff[:n])
		if _, err := file.Seek(0, io.SeekStart); err != nil {
			writeError(w, http.StatusBadRequest, "unreadable file")
			return
		}
	}

	update, err := h.sessionSvc.AttachEvidence(r.Context(), middleware.GetSessionID(r.Context()), mux.Vars(r)["questionId"], header.Filename, mimeType, file)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, update)
}

// DownloadEvidence handles GET /v1/session/answers/{questionId}/evidence
//
// @Summary Download the evidence file of an answer
// @Produce octet-stream
// @Security SessionToken
// @Param questionId path string true "question id"
// @Success 200 {file} file
// @Router /session/answers/{questionId}/evidence [get]
func (h *SessionHandler) DownloadEvidence(w http.ResponseWriter, r *http.Request) {
	ref, data, err := h.sessionSvc.ReadEvidence(r.Context(), middleware.GetSessionID(r.Context()), mux.Vars(r)["questionId"])
	if err != nil {
		writeServiceError(w, err)
		return
	}
	w.Header().Set("Content-Type", ref.MIMEType)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", ref.FileName))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}
