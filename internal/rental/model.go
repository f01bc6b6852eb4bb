package rental

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/markap/api-backoffice/internal/client"
	"github.com/markap/api-backoffice/internal/property"
	"gorm.io/gorm"
)

// Estados almacenados del contrato. EXPIRED solo se fija por acción
// explícita: "vencido" como clasificación se computa por fecha al
// consultar, nunca por un job de fondo.
const (
	StatusActive    = "ACTIVE"
	StatusExpired   = "EXPIRED"
	StatusCancelled = "CANCELLED"
)

// Monedas soportadas
const (
	CurrencyPEN = "PEN"
	CurrencyUSD = "USD"
)

// Tipos de adjunto
const (
	AttachmentContract    = "CONTRACT"
	AttachmentDeliveryAct = "DELIVERY_ACT"
)

// Rental es el contrato de alquiler: vincula una propiedad, un
// inquilino, un rango de fechas y las condiciones de pago.
type Rental struct {
	ID        string         `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deletedAt,omitempty"`

	ApplicationID string `gorm:"type:uuid;not null;index" json:"applicationId"`
	PropertyID    string `gorm:"type:uuid;not null;index" json:"propertyId"`
	TenantID      string `gorm:"type:uuid;not null;index" json:"tenantId"`

	StartDate       time.Time `gorm:"not null" json:"startDate"`
	EndDate         time.Time `gorm:"not null" json:"endDate"`
	Currency        string    `gorm:"size:3;not null;default:'PEN'" json:"currency"`
	MonthlyAmount   float64   `gorm:"not null" json:"monthlyAmount"`
	SecurityDeposit *float64  `json:"securityDeposit,omitempty"`
	PaymentDueDay   int       `gorm:"not null" json:"paymentDueDay"`
	Status          string    `gorm:"size:20;not null;default:'ACTIVE';index" json:"status"`
	Notes           string    `json:"notes"`

	Property property.Property `gorm:"foreignKey:PropertyID" json:"-"`
	Tenant   client.Client     `gorm:"foreignKey:TenantID" json:"-"`

	Attachments []RentalAttachment `gorm:"foreignKey:RentalID;constraint:OnDelete:CASCADE" json:"attachments,omitempty"`
}

func (r *Rental) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}

// DisplayCode deriva el código legible del contrato a partir del año
// de inicio y los últimos 6 caracteres del ID. No se almacena.
func (r *Rental) DisplayCode() string {
	short := strings.ToUpper(strings.ReplaceAll(r.ID, "-", ""))
	if len(short) > 6 {
		short = short[len(short)-6:]
	}
	return fmt.Sprintf("ALQ-%d-%s", r.StartDate.Year(), short)
}

// IsInForce indica si el contrato está en vigencia: status ACTIVE y
// fecha de fin no pasada. No confundir con el status almacenado.
func (r *Rental) IsInForce(today time.Time) bool {
	return r.Status == StatusActive && !r.EndDate.Before(today)
}

// RentalAttachment es la referencia a un documento subido (contrato
// firmado o acta de entrega). Cada tipo aparece a lo sumo una vez.
type RentalAttachment struct {
	ID        string    `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt time.Time `json:"createdAt"`

	RentalID         string `gorm:"type:uuid;not null;index" json:"rentalId"`
	Type             string `gorm:"size:20;not null" json:"type"`
	FilePath         string `gorm:"not null" json:"filePath"`
	OriginalFileName string `gorm:"size:255;not null" json:"originalFileName"`
}

func (a *RentalAttachment) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return nil
}

// Migrate crea las tablas del módulo.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&Rental{}, &RentalAttachment{}, &RentalFinancialConfig{})
}
