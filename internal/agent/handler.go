package agent

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"github.com/markap/api-backoffice/internal/apperrors"
	"github.com/markap/api-backoffice/internal/application"
	"github.com/markap/api-backoffice/internal/utils"
	"gorm.io/gorm"
)

// Handler encapsula DB y repositories.
type Handler struct {
	DB         *gorm.DB
	Repository *Repository
	Apps       *application.Repository
}

func NewHandler(db *gorm.DB) *Handler {
	return &Handler{
		DB:         db,
		Repository: NewRepository(db),
		Apps:       application.NewRepository(db),
	}
}

// GET /agents
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	slug := r.URL.Query().Get("applicationSlug")
	if slug == "" {
		slug = "alquileres"
	}
	app, err := h.Apps.FindBySlug(slug)
	if err != nil {
		apperrors.WriteError(w, err)
		return
	}
	page, limit := utils.ParsePagination(r)

	f := ListFilters{
		ApplicationID: app.ID,
		Page:          page,
		Limit:         limit,
		Search:        strings.TrimSpace(r.URL.Query().Get("search")),
		Type:          r.URL.Query().Get("type"),
	}
	if v := r.URL.Query().Get("isActive"); v != "" {
		active := v == "true"
		f.IsActive = &active
	}

	result, err := h.Repository.FindMany(f)
	if err != nil {
		apperrors.WriteError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(result)
}

// GET /agents/{id}
func (h *Handler) GetByID(w http.ResponseWriter, r *http.Request) {
	a, err := h.Repository.FindByID(mux.Vars(r)["id"])
	if err != nil {
		apperrors.WriteError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(a)
}

type createAgentRequest struct {
	ApplicationSlug string  `json:"applicationSlug"`
	Type            string  `json:"type"`
	UserID          *string `json:"userId"`
	FullName        string  `json:"fullName"`
	Email           string  `json:"email"`
	Phone           string  `json:"phone"`
	DocumentType    string  `json:"documentType"`
	DocumentNumber  string  `json:"documentNumber"`
}

// POST /agents
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req createAgentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "payload inválido", http.StatusBadRequest)
		return
	}
	if req.ApplicationSlug == "" {
		req.ApplicationSlug = "alquileres"
	}

	var errs []string
	switch req.Type {
	case TypeInternal, TypeExternal:
	default:
		errs = append(errs, "type debe ser INTERNAL o EXTERNAL")
	}
	if req.Type == TypeInternal && (req.UserID == nil || *req.UserID == "") {
		errs = append(errs, "userId es requerido para agentes internos")
	}
	if req.FullName == "" {
		errs = append(errs, "fullName es requerido")
	}
	if len(errs) > 0 {
		apperrors.WriteError(w, apperrors.Validation(errs))
		return
	}

	app, err := h.Apps.FindBySlug(req.ApplicationSlug)
	if err != nil {
		apperrors.WriteError(w, err)
		return
	}

	a := Agent{
		ApplicationID:  app.ID,
		Type:           req.Type,
		UserID:         req.UserID,
		FullName:       req.FullName,
		Email:          req.Email,
		Phone:          req.Phone,
		DocumentType:   req.DocumentType,
		DocumentNumber: req.DocumentNumber,
		IsActive:       true,
	}
	if err := h.Repository.Create(&a); err != nil {
		apperrors.WriteError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(a)
}

// PATCH /agents/{id}
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	a, err := h.Repository.FindByID(mux.Vars(r)["id"])
	if err != nil {
		apperrors.WriteError(w, err)
		return
	}

	var req struct {
		Type           *string `json:"type"`
		UserID         *string `json:"userId"`
		FullName       *string `json:"fullName"`
		Email          *string `json:"email"`
		Phone          *string `json:"phone"`
		DocumentType   *string `json:"documentType"`
		DocumentNumber *string `json:"documentNumber"`
		IsActive       *bool   `json:"isActive"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "payload inválido", http.StatusBadRequest)
		return
	}
	if req.Type != nil {
		switch *req.Type {
		case TypeInternal, TypeExternal:
			a.Type = *req.Type
		default:
			apperrors.WriteError(w, apperrors.Validation([]string{"type debe ser INTERNAL o EXTERNAL"}))
			return
		}
	}
	if req.UserID != nil {
		a.UserID = req.UserID
	}
	if req.FullName != nil {
		a.FullName = *req.FullName
	}
	if req.Email != nil {
		a.Email = *req.Email
	}
	if req.Phone != nil {
		a.Phone = *req.Phone
	}
	if req.DocumentType != nil {
		a.DocumentType = *req.DocumentType
	}
	if req.DocumentNumber != nil {
		a.DocumentNumber = *req.DocumentNumber
	}
	if req.IsActive != nil {
		a.IsActive = *req.IsActive
	}

	if err := h.Repository.Update(a); err != nil {
		apperrors.WriteError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(a)
}
