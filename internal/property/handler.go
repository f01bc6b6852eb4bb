package property

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

// ActiveRentalCounter cuenta los alquileres en vigencia de una propiedad.
// Lo implementa el repositorio de alquileres; se inyecta para no invertir
// la dependencia entre paquetes.
type ActiveRentalCounter interface {
	CountActiveByProperty(propertyID string) (int64, error)
}

// Handler encapsula DB, repositories y el contador de alquileres vigentes.
type Handler struct {
	DB            *gorm.DB
	Repository    *Repository
	Apps          *application.Repository
	RentalCounter ActiveRentalCounter
}

func NewHandler(db *gorm.DB, counter ActiveRentalCounter) *Handler {
	return &Handler{
		DB:            db,
		Repository:    NewRepository(db),
		Apps:          application.NewRepository(db),
		RentalCounter: counter,
	}
}

// GET /properties
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

	result, err := h.Repository.FindMany(ListFilters{
		ApplicationID: app.ID,
		Page:          page,
		Limit:         limit,
		Search:        strings.TrimSpace(r.URL.Query().Get("search")),
		ListingStatus: r.URL.Query().Get("listingStatus"),
		DistrictID:    r.URL.Query().Get("districtId"),
		OwnerID:       r.URL.Query().Get("ownerId"),
	})
	if err != nil {
		apperrors.WriteError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(result)
}

// GET /properties/stats
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	slug := r.URL.Query().Get("applicationSlug")
	if slug == "" {
		slug = "alquileres"
	}
	app, err := h.Apps.FindBySlug(slug)
	if err != nil {
		apperrors.WriteError(w, err)
		return
	}
	stats, err := h.Repository.GetStats(app.ID)
	if err != nil {
		apperrors.WriteError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(stats)
}

// GET /properties/{id}
func (h *Handler) GetByID(w http.ResponseWriter, r *http.Request) {
	p, err := h.Repository.FindByID(mux.Vars(r)["id"])
	if err != nil {
		apperrors.WriteError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(p)
}

type createPropertyRequest struct {
	ApplicationSlug string   `json:"applicationSlug"`
	Code            string   `json:"code"`
	OwnerID         string   `json:"ownerId"`
	PropertyType    string   `json:"propertyType"`
	AddressLine     string   `json:"addressLine"`
	DistrictID      string   `json:"districtId"`
	Description     string   `json:"description"`
	Area            *float64 `json:"area"`
	Bedrooms        *int     `json:"bedrooms"`
	Bathrooms       *int     `json:"bathrooms"`
	AgeYears        *int     `json:"ageYears"`
	FloorLevel      string   `json:"floorLevel"`
	ParkingSpaces   *int     `json:"parkingSpaces"`
	Partida1        string   `json:"partida1"`
	Partida2        string   `json:"partida2"`
	Partida3        string   `json:"partida3"`
	MonthlyRent     *float64 `json:"monthlyRent"`
	Maintenance     *float64 `json:"maintenanceAmount"`
	DepositMonths   *int     `json:"depositMonths"`
}

// POST /properties
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req createPropertyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "payload inválido", http.StatusBadRequest)
		return
	}
	if req.ApplicationSlug == "" {
		req.ApplicationSlug = "alquileres"
	}

	var errs []string
	if req.Code == "" {
		errs = append(errs, "code es requerido")
	}
	if req.OwnerID == "" {
		errs = append(errs, "ownerId es requerido")
	}
	if req.AddressLine == "" {
		errs = append(errs, "addressLine es requerido")
	}
	if req.DistrictID == "" {
		errs = append(errs, "districtId es requerido")
	}
	if req.MonthlyRent != nil && *req.MonthlyRent <= 0 {
		errs = append(errs, "monthlyRent debe ser mayor a 0")
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

	p := Property{
		ApplicationID:     app.ID,
		Code:              req.Code,
		OwnerID:           req.OwnerID,
		PropertyType:      req.PropertyType,
		AddressLine:       req.AddressLine,
		DistrictID:        req.DistrictID,
		Description:       req.Description,
		Area:              req.Area,
		Bedrooms:          req.Bedrooms,
		Bathrooms:         req.Bathrooms,
		AgeYears:          req.AgeYears,
		FloorLevel:        req.FloorLevel,
		ParkingSpaces:     req.ParkingSpaces,
		Partida1:          req.Partida1,
		Partida2:          req.Partida2,
		Partida3:          req.Partida3,
		MonthlyRent:       req.MonthlyRent,
		MaintenanceAmount: req.Maintenance,
		DepositMonths:     req.DepositMonths,
		IsActive:          true,
	}
	if err := h.Repository.Create(&p); err != nil {
		apperrors.WriteError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(p)
}

// PATCH /properties/{id}
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	p, err := h.Repository.FindByID(mux.Vars(r)["id"])
	if err != nil {
		apperrors.WriteError(w, err)
		return
	}

	var req struct {
		PropertyType  *string  `json:"propertyType"`
		AddressLine   *string  `json:"addressLine"`
		DistrictID    *string  `json:"districtId"`
		Description   *string  `json:"description"`
		Area          *float64 `json:"area"`
		Bedrooms      *int     `json:"bedrooms"`
		Bathrooms     *int     `json:"bathrooms"`
		AgeYears      *int     `json:"ageYears"`
		FloorLevel    *string  `json:"floorLevel"`
		ParkingSpaces *int     `json:"parkingSpaces"`
		Partida1      *string  `json:"partida1"`
		Partida2      *string  `json:"partida2"`
		Partida3      *string  `json:"partida3"`
		MonthlyRent   *float64 `json:"monthlyRent"`
		Maintenance   *float64 `json:"maintenanceAmount"`
		DepositMonths *int     `json:"depositMonths"`
		IsActive      *bool    `json:"isActive"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "payload inválido", http.StatusBadRequest)
		return
	}
	if req.MonthlyRent != nil && *req.MonthlyRent <= 0 {
		apperrors.WriteError(w, apperrors.Validation([]string{"monthlyRent debe ser mayor a 0"}))
		return
	}
	if req.PropertyType != nil {
		p.PropertyType = *req.PropertyType
	}
	if req.AddressLine != nil {
		p.AddressLine = *req.AddressLine
	}
	if req.DistrictID != nil {
		p.DistrictID = *req.DistrictID
	}
	if req.Description != nil {
		p.Description = *req.Description
	}
	if req.Area != nil {
		p.Area = req.Area
	}
	if req.Bedrooms != nil {
		p.Bedrooms = req.Bedrooms
	}
	if req.Bathrooms != nil {
		p.Bathrooms = req.Bathrooms
	}
	if req.AgeYears != nil {
		p.AgeYears = req.AgeYears
	}
	if req.FloorLevel != nil {
		p.FloorLevel = *req.FloorLevel
	}
	if req.ParkingSpaces != nil {
		p.ParkingSpaces = req.ParkingSpaces
	}
	if req.Partida1 != nil {
		p.Partida1 = *req.Partida1
	}
	if req.Partida2 != nil {
		p.Partida2 = *req.Partida2
	}
	if req.Partida3 != nil {
		p.Partida3 = *req.Partida3
	}
	if req.MonthlyRent != nil {
		p.MonthlyRent = req.MonthlyRent
	}
	if req.Maintenance != nil {
		p.MaintenanceAmount = req.Maintenance
	}
	if req.DepositMonths != nil {
		p.DepositMonths = req.DepositMonths
	}
	if req.IsActive != nil {
		p.IsActive = *req.IsActive
	}

	if err := h.Repository.Update(p); err != nil {
		apperrors.WriteError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(p)
}

// PATCH /properties/{id}/listing-status
// Solo se permite cambiar el estado mientras la propiedad tiene un
// alquiler en vigencia (status ACTIVE y fecha de fin no pasada).
func (h *Handler) UpdateListingStatus(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ListingStatus string `json:"listingStatus"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "payload inválido", http.StatusBadRequest)
		return
	}
	switch req.ListingStatus {
	case StatusRented, StatusExpiring, StatusMaintenance:
	default:
		apperrors.WriteError(w, apperrors.Validation([]string{"listingStatus debe ser RENTED, EXPIRING o MAINTENANCE"}))
		return
	}

	p, err := h.Repository.FindByID(mux.Vars(r)["id"])
	if err != nil {
		apperrors.WriteError(w, err)
		return
	}

	activeCount, err := h.RentalCounter.CountActiveByProperty(p.ID)
	if err != nil {
		apperrors.WriteError(w, err)
		return
	}
	if activeCount == 0 {
		apperrors.WriteError(w, apperrors.BusinessRule(
			"Solo se puede cambiar el estado si la propiedad tiene un alquiler en vigencia."))
		return
	}

	if err := h.Repository.UpdateListingStatus(p.ID, req.ListingStatus); err != nil {
		apperrors.WriteError(w, err)
		return
	}
	p.ListingStatus = &req.ListingStatus
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(p)
}
