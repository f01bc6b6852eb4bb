package application

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Application es la raíz de tenencia: cada sub-módulo del back office
// (alquileres, ventas, interiorismo...) con su slug de ruteo.
type Application struct {
	ID        string         `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deletedAt,omitempty"`

	Name        string `gorm:"size:255;not null" json:"name"`
	Slug        string `gorm:"size:100;not null;uniqueIndex" json:"slug"`
	Description string `json:"description"`
	Icon        string `gorm:"size:50" json:"icon"`
	Color       string `gorm:"size:20" json:"color"`
	URL         string `gorm:"size:255" json:"url"`
	IsActive    bool   `gorm:"not null;default:true" json:"isActive"`
	Order       int    `gorm:"not null;default:0" json:"order"`
}

func (a *Application) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return nil
}

// Migrate crea la tabla en la base de datos.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&Application{})
}
