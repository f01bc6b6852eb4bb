package client

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
	ClientType    string
	IsActive      *bool
}

// ListResult es una página de clientes.
type ListResult struct {
	Data  []Client `json:"data"`
	Total int64    `json:"total"`
	Page  int      `json:"page"`
	Limit int      `json:"limit"`
}

// Repository encapsula operaciones de base para Client.
type Repository struct {
	DB *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{DB: db}
}

// Create inserta un cliente nuevo.
func (r *Repository) Create(c *Client) error {
	return r.DB.Create(c).Error
}

// FindByID busca un cliente no eliminado por ID.
func (r *Repository) FindByID(id string) (*Client, error) {
	var c Client
	err := r.DB.First(&c, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.NotFound("Client", id)
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// FindMany retorna una página de clientes según filtros.
func (r *Repository) FindMany(f ListFilters) (*ListResult, error) {
	q := r.DB.Model(&Client{}).Where("application_id = ?", f.ApplicationID)
	if f.ClientType != "" {
		q = q.Where("client_type = ?", f.ClientType)
	}
	if f.IsActive != nil {
		q = q.Where("is_active = ?", *f.IsActive)
	}
	if f.Search != "" {
		like := "%" + f.Search + "%"
		q = q.Where("full_name LIKE ? OR document_number LIKE ? OR primary_email LIKE ?", like, like, like)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, err
	}
	var data []Client
	err := q.Order("full_name asc").
		Offset((f.Page - 1) * f.Limit).
		Limit(f.Limit).
		Find(&data).Error
	if err != nil {
		return nil, err
	}
	return &ListResult{Data: data, Total: total, Page: f.Page, Limit: f.Limit}, nil
}

// Update guarda cambios en un cliente existente.
func (r *Repository) Update(c *Client) error {
	return r.DB.Save(c).Error
}
