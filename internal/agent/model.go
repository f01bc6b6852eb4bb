package agent

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Tipos de agente
const (
	TypeInternal = "INTERNAL"
	TypeExternal = "EXTERNAL"
)

// Agent es un agente interno (vinculado a un usuario) o externo,
// usado como destino de comisiones en la configuración financiera.
type Agent struct {
	ID        string         `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deletedAt,omitempty"`

	ApplicationID string  `gorm:"type:uuid;not null;index" json:"applicationId"`
	Type          string  `gorm:"size:20;not null;index" json:"type"`
	UserID        *string `gorm:"type:uuid" json:"userId,omitempty"`

	FullName       string `gorm:"size:255;not null" json:"fullName"`
	Email          string `gorm:"size:255" json:"email"`
	Phone          string `gorm:"size:50" json:"phone"`
	DocumentType   string `gorm:"size:20" json:"documentType"`
	DocumentNumber string `gorm:"size:50" json:"documentNumber"`
	IsActive       bool   `gorm:"not null;default:true" json:"isActive"`
}

func (a *Agent) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return nil
}

// Migrate crea la tabla en la base de datos.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&Agent{})
}
