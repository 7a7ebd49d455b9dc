package handler

import (
	"net/http"

	"formassist/internal/form"
	"formassist/internal/service"
	"formassist/internal/transport/rest/middleware"

	"github.com/gorilla/mux"
)

// ModuleHandler serves the form catalog
type ModuleHandler struct {
	catalogSvc *service.CatalogService
}

// NewModuleHandler creates a new module handler
func NewModuleHandler(catalogSvc *service.CatalogService) *ModuleHandler {
	return &ModuleHandler{catalogSvc: catalogSvc}
}

// List handles GET /v1/modules
//
// @Summary List form modules
// @Produce json
// @Param lang query string false "locale (en, cy, pl)"
// @Success 200 {array} model.ModuleSummary
// @Router /modules [get]
func (h *ModuleHandler) List(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.catalogSvc.List(middleware.GetLocale(r.Context())))
}

// Get handles GET /v1/modules/{id}
//
// @Summary Get one module rendered in a locale
// @Produce json
// @Param id path string true "module id"
// @Param lang query string false "locale (en, cy, pl)"
// @Success 200 {object} model.ModuleView
// @Failure 404 {object} map[string]string
// @Router /modules/{id} [get]
func (h *ModuleHandler) Get(w http.ResponseWriter, r *http.Request) {
	m, err := h.catalogSvc.Get(mux.Vars(r)["id"])
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, form.LocalizeModule(m, middleware.GetLocale(r.Context())))
}
