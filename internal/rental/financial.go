package rental

import (
	"math"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ValueKind indica cómo se interpreta un valor financiero contra la
// renta mensual: porcentaje (0-100) o monto fijo.
type ValueKind string

const (
	KindPercent ValueKind = "PERCENT"
	KindFixed   ValueKind = "FIXED"
)

// Resolve calcula el monto que representa el par (tipo, valor) sobre
// la base dada, redondeado a centavos.
func (k ValueKind) Resolve(value, base float64) float64 {
	if k == KindPercent {
		return round2(base * value / 100)
	}
	return round2(value)
}

// round2 redondea a 2 decimales, mitad hacia afuera del cero.
func round2(x float64) float64 {
	return math.Round(x*100) / 100
}

// RentalFinancialConfig es la configuración financiera 1:1 del
// alquiler: gasto, impuesto y comisiones de agentes. Se crea recién en
// la primera escritura (upsert); su ausencia es un estado válido.
type RentalFinancialConfig struct {
	ID        string    `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	RentalID string `gorm:"type:uuid;not null;uniqueIndex" json:"rentalId"`
	Currency string `gorm:"size:3;not null;default:'PEN'" json:"currency"`

	ExpenseType  ValueKind `gorm:"size:10;not null;default:'FIXED'" json:"expenseType"`
	ExpenseValue float64   `gorm:"not null;default:0" json:"expenseValue"`

	TaxType  ValueKind `gorm:"size:10;not null;default:'FIXED'" json:"taxType"`
	TaxValue float64   `gorm:"not null;default:0" json:"taxValue"`

	ExternalAgentID    *string   `gorm:"type:uuid" json:"externalAgentId,omitempty"`
	ExternalAgentType  ValueKind `gorm:"size:10;not null;default:'FIXED'" json:"externalAgentType"`
	ExternalAgentValue float64   `gorm:"not null;default:0" json:"externalAgentValue"`
	// Nombre libre cuando no hay registro de agente
	ExternalAgentName string `gorm:"size:255" json:"externalAgentName"`

	InternalAgentID    *string   `gorm:"type:uuid" json:"internalAgentId,omitempty"`
	InternalAgentType  ValueKind `gorm:"size:10;not null;default:'FIXED'" json:"internalAgentType"`
	InternalAgentValue float64   `gorm:"not null;default:0" json:"internalAgentValue"`
}

func (c *RentalFinancialConfig) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}

// Breakdown es el desglose mensual derivado: cada deducción resuelta
// más la utilidad resultante. Hace eco de la config y de la entrada
// para que el resultado sea auto-descriptivo.
type Breakdown struct {
	MonthlyAmount           float64                `json:"monthlyAmount"`
	Currency                string                 `json:"currency"`
	Expense                 float64                `json:"expense"`
	Tax                     float64                `json:"tax"`
	ExternalAgentCommission float64                `json:"externalAgentCommission"`
	InternalAgentCommission float64                `json:"internalAgentCommission"`
	Utility                 float64                `json:"utility"`
	Config                  *RentalFinancialConfig `json:"config"`
}

// ComputeBreakdown es una función pura de (config | nil, renta, moneda).
// Sin config todas las deducciones son 0 y la utilidad es la renta.
// La utilidad puede ser negativa; no es un error.
func ComputeBreakdown(cfg *RentalFinancialConfig, monthlyAmount float64, currency string) Breakdown {
	b := Breakdown{
		MonthlyAmount: monthlyAmount,
		Currency:      currency,
		Config:        cfg,
	}
	if cfg != nil {
		b.Expense = cfg.ExpenseType.Resolve(cfg.ExpenseValue, monthlyAmount)
		b.Tax = cfg.TaxType.Resolve(cfg.TaxValue, monthlyAmount)
		b.ExternalAgentCommission = cfg.ExternalAgentType.Resolve(cfg.ExternalAgentValue, monthlyAmount)
		b.InternalAgentCommission = cfg.InternalAgentType.Resolve(cfg.InternalAgentValue, monthlyAmount)
	}
	b.Utility = round2(monthlyAmount - b.Expense - b.Tax - b.ExternalAgentCommission - b.InternalAgentCommission)
	return b
}
