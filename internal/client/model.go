package client

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Tipos de cliente
const (
	TypeOwner  = "OWNER"
	TypeTenant = "TENANT"
	TypeBoth   = "BOTH"
)

// Client representa un propietario o inquilino dentro de una aplicación.
type Client struct {
	ID        string         `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deletedAt,omitempty"`

	ApplicationID string `gorm:"type:uuid;not null;index" json:"applicationId"`
	ClientType    string `gorm:"size:20;not null;index" json:"clientType"`

	DocumentType   string `gorm:"size:20;not null" json:"documentType"`
	DocumentNumber string `gorm:"size:50;not null;index" json:"documentNumber"`
	FullName       string `gorm:"size:255;not null" json:"fullName"`

	LegalRepresentativeName     string `json:"legalRepresentativeName"`
	LegalRepresentativePosition string `json:"legalRepresentativePosition"`

	PrimaryPhone   string `gorm:"size:50" json:"primaryPhone"`
	SecondaryPhone string `gorm:"size:50" json:"secondaryPhone"`
	PrimaryEmail   string `gorm:"size:255" json:"primaryEmail"`
	SecondaryEmail string `gorm:"size:255" json:"secondaryEmail"`

	AddressLine string `json:"addressLine"`
	DistrictID  string `gorm:"size:50" json:"districtId"`

	Notes    string `json:"notes"`
	IsActive bool   `gorm:"not null;default:true" json:"isActive"`
}

func (c *Client) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}

// Migrate crea la tabla en la base de datos.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&Client{})
}
