package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/upb/rbac-dashboard/authz"
	"github.com/upb/rbac-dashboard/middleware"
	"github.com/upb/rbac-dashboard/models"
	"github.com/upb/rbac-dashboard/services"
	"github.com/upb/rbac-dashboard/store"
	"github.com/upb/rbac-dashboard/utils"
	"go.uber.org/zap"
)

// resourceAllowLists maps each data type to the roles that may read it.
// This is the allow-list authorization mode: evaluated by exact membership,
// independent of the role hierarchy.
var resourceAllowLists = map[models.Resource][]models.Role{
	models.ResourceOrders:   {models.RoleViewer, models.RoleEditor, models.RoleAdmin},
	models.ResourceUsers:    {models.RoleViewer, models.RoleEditor, models.RoleAdmin},
	models.ResourceRiders:   {models.RoleViewer, models.RoleEditor, models.RoleAdmin},
	models.ResourceSettings: {models.RoleAdmin},
}

// DataHandler serves the dashboard data endpoints backed by the store
type DataHandler struct {
	store  store.Store
	logger *zap.Logger
}

// NewDataHandler creates a new DataHandler
func NewDataHandler(s store.Store, logger *zap.Logger) *DataHandler {
	return &DataHandler{
		store:  s,
		logger: logger,
	}
}

// HandleGetData handles GET /api/data/{type}. The read gate is data-type
// specific: orders/users/riders are open to every role, settings to admins.
func (h *DataHandler) HandleGetData(w http.ResponseWriter, r *http.Request) {
	principal := middleware.GetPrincipalFromContext(r.Context())
	resource := models.Resource(chi.URLParam(r, "type"))

	allowed, ok := resourceAllowLists[resource]
	if !ok {
		_ = utils.WriteNotFound(w, "Data type not found.")
		return
	}

	if decision := authz.DecideAllowList(principal, allowed...); !decision.Allowed {
		h.denyRead(w, principal, resource, decision)
		return
	}

	data, err := h.store.Get(r.Context(), resource)
	if err != nil {
		HandleServiceError(w, storeError(err), h.logger)
		return
	}

	_ = utils.WriteOK(w, data)
}

// HandleUpdateData handles PUT /api/data/{type}/{id}. The route gate already
// requires editor rank; settings is additionally restricted to admins.
func (h *DataHandler) HandleUpdateData(w http.ResponseWriter, r *http.Request) {
	principal := middleware.GetPrincipalFromContext(r.Context())
	resource := models.Resource(chi.URLParam(r, "type"))
	id := chi.URLParam(r, "id")

	if resource == models.ResourceSettings {
		if decision := authz.DecideAllowList(principal, models.RoleAdmin); !decision.Allowed {
			_ = utils.WriteForbidden(w, "Only admins can edit settings.")
			return
		}
	}

	var patch map[string]any
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		_ = utils.WriteBadRequest(w, "Invalid request body.", nil)
		return
	}

	updated, err := h.store.Update(r.Context(), resource, id, patch)
	if err != nil {
		HandleServiceError(w, storeError(err), h.logger)
		return
	}

	h.logger.Info("record updated",
		zap.String("resource", string(resource)),
		zap.String("id", id),
		zap.String("subject", subjectOf(principal)))

	_ = utils.WriteOK(w, map[string]any{
		"message":     fmt.Sprintf("%s with id %s updated successfully", resource, id),
		"updatedData": updated,
	})
}

// HandleDeleteData handles DELETE /api/data/{type}/{id} (admin only via route gate)
func (h *DataHandler) HandleDeleteData(w http.ResponseWriter, r *http.Request) {
	principal := middleware.GetPrincipalFromContext(r.Context())
	resource := models.Resource(chi.URLParam(r, "type"))
	id := chi.URLParam(r, "id")

	if err := h.store.Delete(r.Context(), resource, id); err != nil {
		HandleServiceError(w, storeError(err), h.logger)
		return
	}

	h.logger.Info("record deleted",
		zap.String("resource", string(resource)),
		zap.String("id", id),
		zap.String("subject", subjectOf(principal)))

	_ = utils.WriteOK(w, map[string]string{
		"message": fmt.Sprintf("%s with id %s deleted successfully", resource, id),
	})
}

// HandleStats handles GET /api/dashboard/stats
func (h *DataHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.store.Stats(r.Context())
	if err != nil {
		HandleServiceError(w, storeError(err), h.logger)
		return
	}
	_ = utils.WriteOK(w, stats)
}

func (h *DataHandler) denyRead(w http.ResponseWriter, principal *models.Principal, resource models.Resource, decision authz.Decision) {
	if decision.Reason == authz.ReasonUnauthenticated {
		_ = utils.WriteUnauthorized(w, "")
		return
	}
	h.logger.Warn("data read denied",
		zap.String("resource", string(resource)),
		zap.String("subject", subjectOf(principal)),
		zap.String("reason", string(decision.Reason)))
	if resource == models.ResourceSettings {
		_ = utils.WriteForbidden(w, "Only admins can access settings.")
		return
	}
	_ = utils.WriteForbidden(w, fmt.Sprintf("Access denied for %s data.", resource))
}

// storeError maps store errors to domain errors so HandleServiceError can
// translate them; token errors never reach this path.
func storeError(err error) error {
	switch {
	case errors.Is(err, store.ErrResourceNotFound):
		return services.ErrDataTypeNotFound
	case errors.Is(err, store.ErrRecordNotFound):
		return services.ErrRecordNotFound
	default:
		return services.WrapInternal("store operation failed", err)
	}
}

func subjectOf(p *models.Principal) string {
	if p == nil {
		return ""
	}
	return p.ID
}
