package property

import (
	"time"

	"github.com/google/uuid"
	"github.com/markap/api-backoffice/internal/client"
	"gorm.io/gorm"
)

// Estados comerciales de una propiedad. Es nulo hasta el primer alquiler.
const (
	StatusAvailable   = "AVAILABLE"
	StatusRented      = "RENTED"
	StatusExpiring    = "EXPIRING"
	StatusMaintenance = "MAINTENANCE"
)

// Property es una unidad alquilable, propiedad de un Client tipo OWNER.
type Property struct {
	ID        string         `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deletedAt,omitempty"`

	// code es único dentro de su aplicación
	ApplicationID string `gorm:"type:uuid;not null;index:idx_properties_app_code,unique" json:"applicationId"`
	Code          string `gorm:"size:50;not null;index:idx_properties_app_code,unique" json:"code"`
	OwnerID       string `gorm:"type:uuid;not null;index" json:"ownerId"`

	PropertyType string `gorm:"size:50" json:"propertyType"`
	AddressLine  string `gorm:"not null" json:"addressLine"`
	DistrictID   string `gorm:"size:50;not null" json:"districtId"`
	Description  string `json:"description"`

	Area          *float64 `json:"area,omitempty"`
	Bedrooms      *int     `json:"bedrooms,omitempty"`
	Bathrooms     *int     `json:"bathrooms,omitempty"`
	AgeYears      *int     `json:"ageYears,omitempty"`
	FloorLevel    string   `gorm:"size:20" json:"floorLevel"`
	ParkingSpaces *int     `json:"parkingSpaces,omitempty"`

	// Partidas registrales
	Partida1 string `gorm:"size:50" json:"partida1"`
	Partida2 string `gorm:"size:50" json:"partida2"`
	Partida3 string `gorm:"size:50" json:"partida3"`

	MonthlyRent       *float64 `json:"monthlyRent,omitempty"`
	MaintenanceAmount *float64 `json:"maintenanceAmount,omitempty"`
	DepositMonths     *int     `json:"depositMonths,omitempty"`

	ListingStatus *string `gorm:"size:20;index" json:"listingStatus"`
	IsActive      bool    `gorm:"not null;default:true" json:"isActive"`

	Owner client.Client `gorm:"foreignKey:OwnerID" json:"-"`
}

func (p *Property) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}

// Migrate crea la tabla en la base de datos.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&Property{})
}
