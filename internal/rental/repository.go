package rental

import (
	"errors"
	"time"

	"github.com/markap/api-backoffice/internal/apperrors"
	"github.com/markap/api-backoffice/internal/property"
	"gorm.io/gorm"
)

// ListFilters son los filtros del listado paginado.
type ListFilters struct {
	ApplicationID string
	Page          int
	Limit         int
	Search        string
	Status        string
}

// ListResult es una página de alquileres.
type ListResult struct {
	Data  []ListItem `json:"data"`
	Total int64      `json:"total"`
	Page  int        `json:"page"`
	Limit int        `json:"limit"`
}

// Stats resume los contratos de una aplicación. "Vencidos" es la
// clasificación computada por fecha, no el status almacenado.
type Stats struct {
	Total     int64 `json:"total"`
	Vigentes  int64 `json:"vigentes"`
	PorVencer int64 `json:"porVencer"`
	Vencidos  int64 `json:"vencidos"`
}

// Repository encapsula operaciones de base para Rental y su
// configuración financiera.
type Repository struct {
	DB *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{DB: db}
}

func todayStart() time.Time {
	now := time.Now()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
}

// Create inserta el alquiler y marca la propiedad como RENTED en la
// misma transacción: crear un contrato siempre alquila la propiedad,
// sin ventana entre las dos escrituras.
func (r *Repository) Create(rent *Rental) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(rent).Error; err != nil {
			return err
		}
		return tx.Model(&property.Property{}).
			Where("id = ?", rent.PropertyID).
			Update("listing_status", property.StatusRented).Error
	})
}

// FindByID busca un alquiler no eliminado con propiedad, propietario,
// inquilino y adjuntos precargados.
func (r *Repository) FindByID(id string) (*Rental, error) {
	var rent Rental
	err := r.DB.
		Preload("Property").
		Preload("Property.Owner").
		Preload("Tenant").
		Preload("Attachments").
		First(&rent, "rentals.id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.NotFound("Rental", id)
	}
	if err != nil {
		return nil, err
	}
	return &rent, nil
}

// FindMany retorna una página de alquileres; busca por código de
// propiedad, dirección, inquilino o propietario.
func (r *Repository) FindMany(f ListFilters) (*ListResult, error) {
	q := r.DB.Model(&Rental{}).
		Joins("JOIN properties ON properties.id = rentals.property_id").
		Joins("JOIN clients ON clients.id = rentals.tenant_id").
		Where("rentals.application_id = ?", f.ApplicationID)
	if f.Status != "" {
		q = q.Where("rentals.status = ?", f.Status)
	}
	if f.Search != "" {
		like := "%" + f.Search + "%"
		q = q.Where(
			"properties.code LIKE ? OR properties.address_line LIKE ? OR clients.full_name LIKE ?",
			like, like, like,
		)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, err
	}

	var rentals []Rental
	err := q.
		Preload("Property").
		Preload("Property.Owner").
		Preload("Tenant").
		Preload("Attachments").
		Order("rentals.start_date desc, rentals.created_at desc").
		Offset((f.Page - 1) * f.Limit).
		Limit(f.Limit).
		Find(&rentals).Error
	if err != nil {
		return nil, err
	}

	items := make([]ListItem, 0, len(rentals))
	for i := range rentals {
		items = append(items, toListItem(&rentals[i]))
	}
	return &ListResult{Data: items, Total: total, Page: f.Page, Limit: f.Limit}, nil
}

// GetStats cuenta contratos por clasificación de vigencia.
func (r *Repository) GetStats(applicationID string) (*Stats, error) {
	today := todayStart()
	in30Days := today.AddDate(0, 0, 30)

	base := func() *gorm.DB {
		return r.DB.Model(&Rental{}).Where("application_id = ?", applicationID)
	}

	var s Stats
	if err := base().Count(&s.Total).Error; err != nil {
		return nil, err
	}
	if err := base().
		Where("status = ? AND start_date <= ? AND end_date >= ?", StatusActive, today, today).
		Count(&s.Vigentes).Error; err != nil {
		return nil, err
	}
	if err := base().
		Where("status = ? AND end_date >= ? AND end_date <= ?", StatusActive, today, in30Days).
		Count(&s.PorVencer).Error; err != nil {
		return nil, err
	}
	if err := base().
		Where("end_date < ? OR status = ?", today, StatusExpired).
		Count(&s.Vencidos).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

// CountActiveByProperty cuenta los alquileres en vigencia de una
// propiedad: status ACTIVE y fecha de fin no pasada. Los vencidos sin
// marcar no cuentan.
func (r *Repository) CountActiveByProperty(propertyID string) (int64, error) {
	var count int64
	err := r.DB.Model(&Rental{}).
		Where("property_id = ? AND status = ? AND end_date >= ?", propertyID, StatusActive, todayStart()).
		Count(&count).Error
	return count, err
}

// Update guarda cambios en un alquiler existente.
func (r *Repository) Update(rent *Rental) error {
	return r.DB.Save(rent).Error
}

// CreateAttachment registra la referencia a un documento subido.
func (r *Repository) CreateAttachment(a *RentalAttachment) error {
	return r.DB.Create(a).Error
}

// ---- Configuración financiera ----

// FindConfigByRentalID retorna la config del alquiler o nil si no
// existe todavía (estado válido: desglose sin deducciones).
func (r *Repository) FindConfigByRentalID(rentalID string) (*RentalFinancialConfig, error) {
	var cfg RentalFinancialConfig
	err := r.DB.Where("rental_id = ?", rentalID).First(&cfg).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &cfg, nil
}

// FinancialConfigPatch lleva los campos a modificar; los campos nil
// conservan el valor almacenado (o el default en la primera creación).
type FinancialConfigPatch struct {
	Currency *string

	ExpenseType  *ValueKind
	ExpenseValue *float64

	TaxType  *ValueKind
	TaxValue *float64

	ExternalAgentID    *string
	ExternalAgentType  *ValueKind
	ExternalAgentValue *float64
	ExternalAgentName  *string

	InternalAgentID    *string
	InternalAgentType  *ValueKind
	InternalAgentValue *float64
}

// UpsertConfig crea o actualiza la config con semántica de merge:
// nunca hay un paso de creación separado.
func (r *Repository) UpsertConfig(rentalID string, patch FinancialConfigPatch) (*RentalFinancialConfig, error) {
	cfg, err := r.FindConfigByRentalID(rentalID)
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		cfg = &RentalFinancialConfig{
			RentalID:          rentalID,
			Currency:          CurrencyPEN,
			ExpenseType:       KindFixed,
			TaxType:           KindFixed,
			ExternalAgentType: KindFixed,
			InternalAgentType: KindFixed,
		}
	}

	if patch.Currency != nil {
		cfg.Currency = *patch.Currency
	}
	if patch.ExpenseType != nil {
		cfg.ExpenseType = *patch.ExpenseType
	}
	if patch.ExpenseValue != nil {
		cfg.ExpenseValue = *patch.ExpenseValue
	}
	if patch.TaxType != nil {
		cfg.TaxType = *patch.TaxType
	}
	if patch.TaxValue != nil {
		cfg.TaxValue = *patch.TaxValue
	}
	if patch.ExternalAgentID != nil {
		if *patch.ExternalAgentID == "" {
			cfg.ExternalAgentID = nil
		} else {
			cfg.ExternalAgentID = patch.ExternalAgentID
		}
	}
	if patch.ExternalAgentType != nil {
		cfg.ExternalAgentType = *patch.ExternalAgentType
	}
	if patch.ExternalAgentValue != nil {
		cfg.ExternalAgentValue = *patch.ExternalAgentValue
	}
	if patch.ExternalAgentName != nil {
		cfg.ExternalAgentName = *patch.ExternalAgentName
	}
	if patch.InternalAgentID != nil {
		if *patch.InternalAgentID == "" {
			cfg.InternalAgentID = nil
		} else {
			cfg.InternalAgentID = patch.InternalAgentID
		}
	}
	if patch.InternalAgentType != nil {
		cfg.InternalAgentType = *patch.InternalAgentType
	}
	if patch.InternalAgentValue != nil {
		cfg.InternalAgentValue = *patch.InternalAgentValue
	}

	if err := r.DB.Save(cfg).Error; err != nil {
		return nil, err
	}
	return cfg, nil
}

// GetBreakdown arma el desglose financiero del alquiler. Dos llamadas
// sin cambios de config intermedios dan el mismo resultado.
func (r *Repository) GetBreakdown(rentalID string, monthlyAmount float64, currency string) (*Breakdown, error) {
	cfg, err := r.FindConfigByRentalID(rentalID)
	if err != nil {
		return nil, err
	}
	b := ComputeBreakdown(cfg, monthlyAmount, currency)
	return &b, nil
}
