package application

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/markap/api-backoffice/internal/apperrors"
	"github.com/markap/api-backoffice/internal/auth"
	"gorm.io/gorm"
)

// AccessResolver resuelve las aplicaciones legibles por un usuario a
// través de sus roles. Lo implementa el repositorio de roles; se
// inyecta para no acoplar este paquete al de roles.
type AccessResolver interface {
	FindApplicationIDsByUser(userID string) ([]string, error)
}

// Handler encapsula DB, repository y el resolutor de accesos.
type Handler struct {
	DB         *gorm.DB
	Repository *Repository
	Access     AccessResolver
}

func NewHandler(db *gorm.DB, access AccessResolver) *Handler {
	return &Handler{DB: db, Repository: NewRepository(db), Access: access}
}

// GET /applications
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.Repository.ListActive()
	if err != nil {
		apperrors.WriteError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(list)
}

// GET /applications/mine
// Las aplicaciones que el usuario autenticado puede leer según los
// permisos otorgados a sus roles vigentes.
func (h *Handler) ListMine(w http.ResponseWriter, r *http.Request) {
	ids, err := h.Access.FindApplicationIDsByUser(auth.UserIDFromContext(r.Context()))
	if err != nil {
		apperrors.WriteError(w, err)
		return
	}
	list, err := h.Repository.ListActiveByIDs(ids)
	if err != nil {
		apperrors.WriteError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(list)
}

// GET /applications/{slug}
func (h *Handler) GetBySlug(w http.ResponseWriter, r *http.Request) {
	app, err := h.Repository.FindBySlug(mux.Vars(r)["slug"])
	if err != nil {
		apperrors.WriteError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(app)
}

type createApplicationRequest struct {
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
	Color       string `json:"color"`
	URL         string `json:"url"`
	Order       int    `json:"order"`
}

// POST /applications
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req createApplicationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "payload inválido", http.StatusBadRequest)
		return
	}

	var errs []string
	if req.Name == "" {
		errs = append(errs, "name es requerido")
	}
	if req.Slug == "" {
		errs = append(errs, "slug es requerido")
	}
	if len(errs) > 0 {
		apperrors.WriteError(w, apperrors.Validation(errs))
		return
	}

	app := Application{
		Name:        req.Name,
		Slug:        req.Slug,
		Description: req.Description,
		Icon:        req.Icon,
		Color:       req.Color,
		URL:         req.URL,
		IsActive:    true,
		Order:       req.Order,
	}
	if err := h.Repository.Create(&app); err != nil {
		apperrors.WriteError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(app)
}

// PATCH /applications/{id}
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	app, err := h.Repository.FindByID(mux.Vars(r)["id"])
	if err != nil {
		apperrors.WriteError(w, err)
		return
	}

	var req struct {
		Name        *string `json:"name"`
		Description *string `json:"description"`
		Icon        *string `json:"icon"`
		Color       *string `json:"color"`
		URL         *string `json:"url"`
		IsActive    *bool   `json:"isActive"`
		Order       *int    `json:"order"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "payload inválido", http.StatusBadRequest)
		return
	}
	if req.Name != nil {
		app.Name = *req.Name
	}
	if req.Description != nil {
		app.Description = *req.Description
	}
	if req.Icon != nil {
		app.Icon = *req.Icon
	}
	if req.Color != nil {
		app.Color = *req.Color
	}
	if req.URL != nil {
		app.URL = *req.URL
	}
	if req.IsActive != nil {
		app.IsActive = *req.IsActive
	}
	if req.Order != nil {
		app.Order = *req.Order
	}

	if err := h.Repository.Update(app); err != nil {
		apperrors.WriteError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(app)
}
