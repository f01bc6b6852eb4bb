package application

import (
	"errors"

	"github.com/markap/api-backoffice/internal/apperrors"
	"gorm.io/gorm"
)

// Repository encapsula operaciones de base para Application.
type Repository struct {
	DB *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{DB: db}
}

// ListActive retorna las aplicaciones activas ordenadas.
func (r *Repository) ListActive() ([]Application, error) {
	var list []Application
	err := r.DB.Where("is_active = ?", true).Order(`"order" asc`).Find(&list).Error
	return list, err
}

// FindBySlug busca una aplicación por su slug externo.
func (r *Repository) FindBySlug(slug string) (*Application, error) {
	var app Application
	err := r.DB.Where("slug = ?", slug).First(&app).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.NotFound("Application", slug)
	}
	if err != nil {
		return nil, err
	}
	return &app, nil
}

// FindByID busca una aplicación por ID.
func (r *Repository) FindByID(id string) (*Application, error) {
	var app Application
	err := r.DB.First(&app, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.NotFound("Application", id)
	}
	if err != nil {
		return nil, err
	}
	return &app, nil
}

// ListActiveByIDs retorna las aplicaciones activas del conjunto dado,
// ordenadas. Un conjunto vacío retorna lista vacía, no todas.
func (r *Repository) ListActiveByIDs(ids []string) ([]Application, error) {
	if len(ids) == 0 {
		return []Application{}, nil
	}
	var list []Application
	err := r.DB.Where("id IN ? AND is_active = ?", ids, true).
		Order(`"order" asc`).
		Find(&list).Error
	return list, err
}

// Create inserta una nueva aplicación.
func (r *Repository) Create(app *Application) error {
	return r.DB.Create(app).Error
}

// Update guarda cambios en una aplicación existente.
func (r *Repository) Update(app *Application) error {
	return r.DB.Save(app).Error
}
