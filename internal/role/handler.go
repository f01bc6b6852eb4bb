package role

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/markap/api-backoffice/internal/apperrors"
	"gorm.io/gorm"
)

// Handler encapsula DB y repository.
type Handler struct {
	DB         *gorm.DB
	Repository *Repository
}

func NewHandler(db *gorm.DB) *Handler {
	return &Handler{DB: db, Repository: NewRepository(db)}
}

// GET /roles
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.Repository.List()
	if err != nil {
		apperrors.WriteError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(list)
}

type createRoleRequest struct {
	Name        string `json:"name"`
	Code        string `json:"code"`
	Description string `json:"description"`
}

// POST /roles
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req createRoleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "payload inválido", http.StatusBadRequest)
		return
	}
	var errs []string
	if req.Name == "" {
		errs = append(errs, "name es requerido")
	}
	if req.Code == "" {
		errs = append(errs, "code es requerido")
	}
	if len(errs) > 0 {
		apperrors.WriteError(w, apperrors.Validation(errs))
		return
	}

	role := Role{Name: req.Name, Code: req.Code, Description: req.Description, IsActive: true}
	if err := h.Repository.Create(&role); err != nil {
		apperrors.WriteError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(role)
}

// PATCH /roles/{id}
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	role, err := h.Repository.FindByID(mux.Vars(r)["id"])
	if err != nil {
		apperrors.WriteError(w, err)
		return
	}
	var req struct {
		Name        *string `json:"name"`
		Description *string `json:"description"`
		IsActive    *bool   `json:"isActive"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "payload inválido", http.StatusBadRequest)
		return
	}
	if req.Name != nil {
		role.Name = *req.Name
	}
	if req.Description != nil {
		role.Description = *req.Description
	}
	if req.IsActive != nil {
		role.IsActive = *req.IsActive
	}
	if err := h.Repository.Update(role); err != nil {
		apperrors.WriteError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(role)
}

// POST /roles/{id}/users
func (h *Handler) AssignUser(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID string `json:"userId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.UserID == "" {
		http.Error(w, "payload inválido", http.StatusBadRequest)
		return
	}
	role, err := h.Repository.FindByID(mux.Vars(r)["id"])
	if err != nil {
		apperrors.WriteError(w, err)
		return
	}
	ur, err := h.Repository.AssignToUser(req.UserID, role.ID)
	if err != nil {
		apperrors.WriteError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(ur)
}

// DELETE /roles/{id}/users/{userId}
func (h *Handler) RevokeUser(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	if err := h.Repository.RevokeFromUser(vars["userId"], vars["id"]); err != nil {
		apperrors.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// GET /roles/{id}/applications
func (h *Handler) ListApplicationGrants(w http.ResponseWriter, r *http.Request) {
	role, err := h.Repository.FindByID(mux.Vars(r)["id"])
	if err != nil {
		apperrors.WriteError(w, err)
		return
	}
	grants, err := h.Repository.ListGrantsByRole(role.ID)
	if err != nil {
		apperrors.WriteError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(grants)
}

// POST /roles/{id}/applications
func (h *Handler) GrantApplication(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ApplicationID string `json:"applicationId"`
		CanRead       bool   `json:"canRead"`
		CanWrite      bool   `json:"canWrite"`
		CanDelete     bool   `json:"canDelete"`
		IsAdmin       bool   `json:"isAdmin"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ApplicationID == "" {
		http.Error(w, "payload inválido", http.StatusBadRequest)
		return
	}
	role, err := h.Repository.FindByID(mux.Vars(r)["id"])
	if err != nil {
		apperrors.WriteError(w, err)
		return
	}
	grant := RoleApplication{
		RoleID:        role.ID,
		ApplicationID: req.ApplicationID,
		CanRead:       req.CanRead,
		CanWrite:      req.CanWrite,
		CanDelete:     req.CanDelete,
		IsAdmin:       req.IsAdmin,
	}
	if err := h.Repository.GrantApplication(&grant); err != nil {
		apperrors.WriteError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(grant)
}
