package role

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"

	"github.com/taskcore/task-management/internal"
	"github.com/taskcore/task-management/internal/transport"
	"github.com/taskcore/task-management/pkg/logger"
)

type ServiceAPI interface {
	CreateRole(dto CreateRoleDTO, createdBy int64) (*Role, error)
	UpdateRole(roleID int64, dto UpdateRoleDTO) (*Role, error)
	DeleteRole(roleID int64) error
	CloneRole(sourceID int64, dto CloneRoleDTO, createdBy int64) (*Role, error)
	GetRole(roleID int64) (*Role, error)
	ListRoles() ([]*Role, error)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(service ServiceAPI) *Handler {
	lg := logger.LoggerWrapper()
	if lg == nil {
		lg = slog.Default()
	}
	return &Handler{
		BaseHandler: transport.NewBaseHandler(lg),
		Service:     service,
	}
}

func (h *Handler) ListRoles(w http.ResponseWriter, r *http.Request) {
	roles, err := h.Service.ListRoles()
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, roles)
}

func (h *Handler) GetRole(w http.ResponseWriter, r *http.Request) {
	roleID, ok := h.roleIDParam(w, r)
	if !ok {
		return
	}

	found, err := h.Service.GetRole(roleID)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, found)
}

func (h *Handler) CreateRole(w http.ResponseWriter, r *http.Request) {
	principal, ok := internal.PrincipalFromContext(r.Context())
	if !ok || principal == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var dto CreateRoleDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.Logger.Error("CreateRole: invalid request body", "error", err)
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	created, err := h.Service.CreateRole(dto, principal.ID)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, created)
}

func (h *Handler) UpdateRole(w http.ResponseWriter, r *http.Request) {
	roleID, ok := h.roleIDParam(w, r)
	if !ok {
		return
	}

	var dto UpdateRoleDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.Logger.Error("UpdateRole: invalid request body", "error", err)
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	updated, err := h.Service.UpdateRole(roleID, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, updated)
}

func (h *Handler) DeleteRole(w http.ResponseWriter, r *http.Request) {
	roleID, ok := h.roleIDParam(w, r)
	if !ok {
		return
	}

	if err := h.Service.DeleteRole(roleID); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]string{"message": "Role deleted"})
}

func (h *Handler) CloneRole(w http.ResponseWriter, r *http.Request) {
	principal, ok := internal.PrincipalFromContext(r.Context())
	if !ok || principal == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	roleID, ok := h.roleIDParam(w, r)
	if !ok {
		return
	}

	var dto CloneRoleDTO
	if r.Body != nil {
		// body is optional for clone; decode errors other than EOF are real
		if err := json.NewDecoder(r.Body).Decode(&dto); err != nil && err.Error() != "EOF" {
			h.WriteError(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}

	cloned, err := h.Service.CloneRole(roleID, dto, principal.ID)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, cloned)
}

func (h *Handler) roleIDParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := chi.URLParam(r, "roleID")
	roleID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		h.Logger.Error("invalid role ID", "id", raw)
		h.WriteError(w, http.StatusBadRequest, "invalid role ID")
		return 0, false
	}
	return roleID, true
}
