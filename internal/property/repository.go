package property

import (
	"errors"

	"github.com/markap/api-backoffice/internal/apperrors"
	"gorm.io/gorm"
)

// ListFilters son los filtros de listado paginado.
type ListFilters struct {
	ApplicationID string
	Page          int
	Limit         int
	Search        string
	ListingStatus string
	DistrictID    string
	OwnerID       string
}

// ListResult es una página de propiedades.
type ListResult struct {
	Data  []Property `json:"data"`
	Total int64      `json:"total"`
	Page  int        `json:"page"`
	Limit int        `json:"limit"`
}

// Stats resume el inventario por estado comercial.
type Stats struct {
	Total       int64 `json:"total"`
	Available   int64 `json:"available"`
	Rented      int64 `json:"rented"`
	Expiring    int64 `json:"expiring"`
	Maintenance int64 `json:"maintenance"`
}

// Repository encapsula operaciones de base para Property.
type Repository struct {
	DB *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{DB: db}
}

// Create inserta una propiedad nueva.
func (r *Repository) Create(p *Property) error {
	return r.DB.Create(p).Error
}

// FindByID busca una propiedad no eliminada por ID.
func (r *Repository) FindByID(id string) (*Property, error) {
	var p Property
	err := r.DB.First(&p, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.NotFound("Property", id)
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// FindMany retorna una página de propiedades según filtros.
func (r *Repository) FindMany(f ListFilters) (*ListResult, error) {
	q := r.DB.Model(&Property{}).Where("application_id = ?", f.ApplicationID)
	if f.ListingStatus != "" {
		q = q.Where("listing_status = ?", f.ListingStatus)
	}
	if f.DistrictID != "" {
		q = q.Where("district_id = ?", f.DistrictID)
	}
	if f.OwnerID != "" {
		q = q.Where("owner_id = ?", f.OwnerID)
	}
	if f.Search != "" {
		like := "%" + f.Search + "%"
		q = q.Where("code LIKE ? OR address_line LIKE ?", like, like)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, err
	}
	var data []Property
	err := q.Order("code asc").
		Offset((f.Page - 1) * f.Limit).
		Limit(f.Limit).
		Find(&data).Error
	if err != nil {
		return nil, err
	}
	return &ListResult{Data: data, Total: total, Page: f.Page, Limit: f.Limit}, nil
}

// Update guarda cambios en una propiedad existente.
func (r *Repository) Update(p *Property) error {
	return r.DB.Save(p).Error
}

// UpdateListingStatus cambia solo el estado comercial.
func (r *Repository) UpdateListingStatus(id, status string) error {
	return r.DB.Model(&Property{}).Where("id = ?", id).Update("listing_status", status).Error
}

// GetStats cuenta propiedades por estado comercial.
func (r *Repository) GetStats(applicationID string) (*Stats, error) {
	var s Stats
	base := func() *gorm.DB {
		return r.DB.Model(&Property{}).Where("application_id = ?", applicationID)
	}
	if err := base().Count(&s.Total).Error; err != nil {
		return nil, err
	}
	if err := base().Where("listing_status = ? OR listing_status IS NULL", StatusAvailable).Count(&s.Available).Error; err != nil {
		return nil, err
	}
	if err := base().Where("listing_status = ?", StatusRented).Count(&s.Rented).Error; err != nil {
		return nil, err
	}
	if err := base().Where("listing_status = ?", StatusExpiring).Count(&s.Expiring).Error; err != nil {
		return nil, err
	}
	if err := base().Where("listing_status = ?", StatusMaintenance).Count(&s.Maintenance).Error; err != nil {
		return nil, err
	}
	return &s, nil
}
