package client

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

// Handler encapsula DB, repository y el repositorio de aplicaciones
// para resolver el slug de tenencia.
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

func (h *Handler) resolveApplication(r *http.Request) (*application.Application, error) {
	slug := r.URL.Query().Get("applicationSlug")
	if slug == "" {
		slug = "alquileres"
	}
	return h.Apps.FindBySlug(slug)
}

// GET /clients
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	app, err := h.resolveApplication(r)
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
		ClientType:    r.URL.Query().Get("clientType"),
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

// GET /clients/{id}
func (h *Handler) GetByID(w http.ResponseWriter, r *http.Request) {
	c, err := h.Repository.FindByID(mux.Vars(r)["id"])
	if err != nil {
		apperrors.WriteError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(c)
}

type createClientRequest struct {
	ApplicationSlug string `json:"applicationSlug"`
	ClientType      string `json:"clientType"`
	DocumentType    string `json:"documentType"`
	DocumentNumber  string `json:"documentNumber"`
	FullName        string `json:"fullName"`

	LegalRepresentativeName     string `json:"legalRepresentativeName"`
	LegalRepresentativePosition string `json:"legalRepresentativePosition"`

	PrimaryPhone   string `json:"primaryPhone"`
	SecondaryPhone string `json:"secondaryPhone"`
	PrimaryEmail   string `json:"primaryEmail"`
	SecondaryEmail string `json:"secondaryEmail"`

	AddressLine string `json:"addressLine"`
	DistrictID  string `json:"districtId"`
	Notes       string `json:"notes"`
}

// POST /clients
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req createClientRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "payload inválido", http.StatusBadRequest)
		return
	}
	if req.ApplicationSlug == "" {
		req.ApplicationSlug = "alquileres"
	}

	var errs []string
	switch req.ClientType {
	case TypeOwner, TypeTenant, TypeBoth:
	default:
		errs = append(errs, "clientType debe ser OWNER, TENANT o BOTH")
	}
	if req.DocumentType == "" {
		errs = append(errs, "documentType es requerido")
	}
	if req.DocumentNumber == "" {
		errs = append(errs, "documentNumber es requerido")
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

	c := Client{
		ApplicationID:               app.ID,
		ClientType:                  req.ClientType,
		DocumentType:                req.DocumentType,
		DocumentNumber:              req.DocumentNumber,
		FullName:                    req.FullName,
		LegalRepresentativeName:     req.LegalRepresentativeName,
		LegalRepresentativePosition: req.LegalRepresentativePosition,
		PrimaryPhone:                req.PrimaryPhone,
		SecondaryPhone:              req.SecondaryPhone,
		PrimaryEmail:                req.PrimaryEmail,
		SecondaryEmail:              req.SecondaryEmail,
		AddressLine:                 req.AddressLine,
		DistrictID:                  req.DistrictID,
		Notes:                       strings.TrimSpace(req.Notes),
		IsActive:                    true,
	}
	if err := h.Repository.Create(&c); err != nil {
		apperrors.WriteError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(c)
}

// PATCH /clients/{id}
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	c, err := h.Repository.FindByID(mux.Vars(r)["id"])
	if err != nil {
		apperrors.WriteError(w, err)
		return
	}

	var req struct {
		ClientType     *string `json:"clientType"`
		DocumentType   *string `json:"documentType"`
		DocumentNumber *string `json:"documentNumber"`
		FullName       *string `json:"fullName"`
		PrimaryPhone   *string `json:"primaryPhone"`
		SecondaryPhone *string `json:"secondaryPhone"`
		PrimaryEmail   *string `json:"primaryEmail"`
		SecondaryEmail *string `json:"secondaryEmail"`
		AddressLine    *string `json:"addressLine"`
		DistrictID     *string `json:"districtId"`
		Notes          *string `json:"notes"`
		IsActive       *bool   `json:"isActive"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "payload inválido", http.StatusBadRequest)
		return
	}
	if req.ClientType != nil {
		switch *req.ClientType {
		case TypeOwner, TypeTenant, TypeBoth:
			c.ClientType = *req.ClientType
		default:
			apperrors.WriteError(w, apperrors.Validation([]string{"clientType debe ser OWNER, TENANT o BOTH"}))
			return
		}
	}
	if req.DocumentType != nil {
		c.DocumentType = *req.DocumentType
	}
	if req.DocumentNumber != nil {
		c.DocumentNumber = *req.DocumentNumber
	}
	if req.FullName != nil {
		c.FullName = *req.FullName
	}
	if req.PrimaryPhone != nil {
		c.PrimaryPhone = *req.PrimaryPhone
	}
	if req.SecondaryPhone != nil {
		c.SecondaryPhone = *req.SecondaryPhone
	}
	if req.PrimaryEmail != nil {
		c.PrimaryEmail = *req.PrimaryEmail
	}
	if req.SecondaryEmail != nil {
		c.SecondaryEmail = *req.SecondaryEmail
	}
	if req.AddressLine != nil {
		c.AddressLine = *req.AddressLine
	}
	if req.DistrictID != nil {
		c.DistrictID = *req.DistrictID
	}
	if req.Notes != nil {
		c.Notes = strings.TrimSpace(*req.Notes)
	}
	if req.IsActive != nil {
		c.IsActive = *req.IsActive
	}

	if err := h.Repository.Update(c); err != nil {
		apperrors.WriteError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(c)
}
