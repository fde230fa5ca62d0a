package handler

import (
	"encoding/json"
	"net/http"

	"github.com/aldenhart/docspace/internal/api/middleware"
	"github.com/aldenhart/docspace/internal/api/response"
	"github.com/aldenhart/docspace/internal/domain"
	"github.com/aldenhart/docspace/internal/service"
	"github.com/google/uuid"
)

// PermissionHandler handles permission endpoints
type PermissionHandler struct {
	resolver *service.PermissionResolver
}

// NewPermissionHandler creates a new permission handler
func NewPermissionHandler(resolver *service.PermissionResolver) *PermissionHandler {
	return &PermissionHandler{resolver: resolver}
}

// Grant handles creating an explicit permission grant
func (h *PermissionHandler) Grant(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "unauthorized")
		return
	}

	var input domain.GrantPermissionRequest
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	if err := validate.Struct(input); err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	grant, err := h.resolver.Grant(r.Context(), userID, input)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Created(w, grant)
}

// Check answers a single permission question for the caller
func (h *PermissionHandler) Check(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "unauthorized")
		return
	}

	resourceType := domain.ResourceType(r.URL.Query().Get("resource_type"))
	if !resourceType.Valid() {
		response.BadRequest(w, "invalid resource_type")
		return
	}
	resourceID, err := uuid.Parse(r.URL.Query().Get("resource_id"))
	if err != nil {
		response.BadRequest(w, "invalid resource_id")
		return
	}
	perm := r.URL.Query().Get("permission")
	if perm == "" {
		response.BadRequest(w, "missing permission")
		return
	}

	allowed := h.resolver.HasPermission(r.Context(), userID, resourceType, resourceID, perm)

	response.OK(w, map[string]any{
		"resource_type": resourceType,
		"resource_id":   resourceID,
		"permission":    perm,
		"allowed":       allowed,
	})
}

// Me returns the caller's full resolved permission aggregate
func (h *PermissionHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "unauthorized")
		return
	}

	resolved, err := h.resolver.ResolveAll(r.Context(), userID)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.OK(w, resolved)
}
