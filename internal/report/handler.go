package report

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/markap/api-backoffice/internal/apperrors"
	"github.com/markap/api-backoffice/internal/application"
	"gorm.io/gorm"
)

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

func (h *Handler) resolveApplication(r *http.Request) (string, error) {
	slug := r.URL.Query().Get("applicationSlug")
	if slug == "" {
		slug = "alquileres"
	}
	app, err := h.Apps.FindBySlug(slug)
	if err != nil {
		return "", err
	}
	return app.ID, nil
}

// GET /reports/summary
func (h *Handler) Summary(w http.ResponseWriter, r *http.Request) {
	appID, err := h.resolveApplication(r)
	if err != nil {
		apperrors.WriteError(w, err)
		return
	}
	summary, err := h.Repository.GetSummary(appID)
	if err != nil {
		apperrors.WriteError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(summary)
}

// GET /reports/rentals-by-month
func (h *Handler) RentalsByMonth(w http.ResponseWriter, r *http.Request) {
	appID, err := h.resolveApplication(r)
	if err != nil {
		apperrors.WriteError(w, err)
		return
	}
	buckets, err := h.Repository.GetRentalsByMonth(appID)
	if err != nil {
		apperrors.WriteError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(buckets)
}

// GET /reports/expiring-contracts?days=30
func (h *Handler) ExpiringContracts(w http.ResponseWriter, r *http.Request) {
	appID, err := h.resolveApplication(r)
	if err != nil {
		apperrors.WriteError(w, err)
		return
	}
	days := 30
	if v := r.URL.Query().Get("days"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 365 {
			days = n
		}
	}
	contracts, err := h.Repository.GetExpiringContracts(appID, days)
	if err != nil {
		apperrors.WriteError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(contracts)
}

// GET /reports/vacant-properties
func (h *Handler) VacantProperties(w http.ResponseWriter, r *http.Request) {
	appID, err := h.resolveApplication(r)
	if err != nil {
		apperrors.WriteError(w, err)
		return
	}
	properties, err := h.Repository.GetVacantProperties(appID)
	if err != nil {
		apperrors.WriteError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(properties)
}
