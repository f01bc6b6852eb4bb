package agent

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
	Type          string
	IsActive      *bool
}

// ListResult es una página de agentes.
type ListResult struct {
	Data  []Agent `json:"data"`
	Total int64   `json:"total"`
	Page  int     `json:"page"`
	Limit int     `json:"limit"`
}

// Repository encapsula operaciones de base para Agent.
type Repository struct {
	DB *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{DB: db}
}

// Create inserta un agente nuevo.
func (r *Repository) Create(a *Agent) error {
	return r.DB.Create(a).Error
}

// FindByID busca un agente no eliminado por ID.
func (r *Repository) FindByID(id string) (*Agent, error) {
	var a Agent
	err := r.DB.First(&a, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.NotFound("Agent", id)
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// FindMany retorna una página de agentes según filtros.
func (r *Repository) FindMany(f ListFilters) (*ListResult, error) {
	q := r.DB.Model(&Agent{}).Where("application_id = ?", f.ApplicationID)
	if f.Type != "" {
		q = q.Where("type = ?", f.Type)
	}
	if f.IsActive != nil {
		q = q.Where("is_active = ?", *f.IsActive)
	}
	if f.Search != "" {
		like := "%" + f.Search + "%"
		q = q.Where("full_name LIKE ? OR email LIKE ? OR document_number LIKE ?", like, like, like)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, err
	}
	var data []Agent
	err := q.Order("full_name asc").
		Offset((f.Page - 1) * f.Limit).
		Limit(f.Limit).
		Find(&data).Error
	if err != nil {
		return nil, err
	}
	return &ListResult{Data: data, Total: total, Page: f.Page, Limit: f.Limit}, nil
}

// Update guarda cambios en un agente existente.
func (r *Repository) Update(a *Agent) error {
	return r.DB.Save(a).Error
}
