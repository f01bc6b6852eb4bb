package report

import (
	"time"

	"github.com/markap/api-backoffice/internal/client"
	"github.com/markap/api-backoffice/internal/property"
	"github.com/markap/api-backoffice/internal/rental"
	"gorm.io/gorm"
)

// Summary concentra los totales del panel de una aplicación.
type Summary struct {
	ActiveClients    int64 `json:"activeClients"`
	TotalProperties  int64 `json:"totalProperties"`
	TotalRentals     int64 `json:"totalRentals"`
	RentalsInForce   int64 `json:"rentalsInForce"`
	RentalsExpiring  int64 `json:"rentalsExpiring"`
	PropertiesVacant int64 `json:"propertiesVacant"`
}

// MonthBucket es un mes calendario con su cantidad de contratos iniciados.
type MonthBucket struct {
	Month string `json:"month"` // YYYY-MM
	Count int64  `json:"count"`
}

// ExpiringContract es un contrato próximo a vencer, aplanado para el listado.
type ExpiringContract struct {
	ID            string    `json:"id"`
	Code          string    `json:"code"`
	EndDate       time.Time `json:"endDate"`
	DaysRemaining int       `json:"daysRemaining"`
	TenantName    string    `json:"tenantName"`
	PropertyCode  string    `json:"propertyCode"`
	AddressLine   string    `json:"addressLine"`
}

// VacantProperty es una propiedad sin contrato en vigencia.
type VacantProperty struct {
	ID            string   `json:"id"`
	Code          string   `json:"code"`
	AddressLine   string   `json:"addressLine"`
	PropertyType  string   `json:"propertyType"`
	OwnerName     string   `json:"ownerName"`
	MonthlyRent   *float64 `json:"monthlyRent,omitempty"`
	ListingStatus *string  `json:"listingStatus"`
}

// Repository arma proyecciones de solo lectura; no escribe nada.
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

// GetSummary junta los conteos del panel en una sola respuesta.
func (r *Repository) GetSummary(applicationID string) (*Summary, error) {
	today := todayStart()
	in30Days := today.AddDate(0, 0, 30)

	var s Summary
	var err error
	if s.ActiveClients, err = r.CountActiveClients(applicationID); err != nil {
		return nil, err
	}
	if err := r.DB.Model(&property.Property{}).
		Where("application_id = ? AND is_active = ?", applicationID, true).
		Count(&s.TotalProperties).Error; err != nil {
		return nil, err
	}
	if err := r.DB.Model(&rental.Rental{}).
		Where("application_id = ?", applicationID).
		Count(&s.TotalRentals).Error; err != nil {
		return nil, err
	}
	if err := r.DB.Model(&rental.Rental{}).
		Where("application_id = ? AND status = ? AND end_date >= ?", applicationID, rental.StatusActive, today).
		Count(&s.RentalsInForce).Error; err != nil {
		return nil, err
	}
	if err := r.DB.Model(&rental.Rental{}).
		Where("application_id = ? AND status = ? AND end_date >= ? AND end_date <= ?",
			applicationID, rental.StatusActive, today, in30Days).
		Count(&s.RentalsExpiring).Error; err != nil {
		return nil, err
	}
	if err := r.vacantQuery(applicationID, today).
		Count(&s.PropertiesVacant).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

// GetRentalsByMonth cuenta contratos por mes de inicio para los últimos
// 12 meses calendario, incluyendo el actual. Los meses sin contratos
// aparecen con cero.
func (r *Repository) GetRentalsByMonth(applicationID string) ([]MonthBucket, error) {
	now := time.Now()
	firstMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()).AddDate(0, -11, 0)

	var rentals []rental.Rental
	err := r.DB.Model(&rental.Rental{}).
		Select("start_date").
		Where("application_id = ? AND start_date >= ?", applicationID, firstMonth).
		Find(&rentals).Error
	if err != nil {
		return nil, err
	}

	// La agrupación por mes se hace en memoria: date_trunc no es
	// portable entre postgres y sqlite.
	counts := make(map[string]int64, 12)
	for i := range rentals {
		counts[rentals[i].StartDate.Format("2006-01")]++
	}

	buckets := make([]MonthBucket, 0, 12)
	for i := 0; i < 12; i++ {
		m := firstMonth.AddDate(0, i, 0).Format("2006-01")
		buckets = append(buckets, MonthBucket{Month: m, Count: counts[m]})
	}
	return buckets, nil
}

// GetExpiringContracts lista los contratos en vigencia que vencen dentro
// de los próximos `days` días, ordenados por fecha de fin ascendente.
func (r *Repository) GetExpiringContracts(applicationID string, days int) ([]ExpiringContract, error) {
	today := todayStart()
	limit := today.AddDate(0, 0, days)

	var rentals []rental.Rental
	err := r.DB.
		Preload("Property").
		Preload("Tenant").
		Where("application_id = ? AND status = ? AND end_date >= ? AND end_date <= ?",
			applicationID, rental.StatusActive, today, limit).
		Order("end_date asc").
		Find(&rentals).Error
	if err != nil {
		return nil, err
	}

	out := make([]ExpiringContract, 0, len(rentals))
	for i := range rentals {
		rent := &rentals[i]
		out = append(out, ExpiringContract{
			ID:            rent.ID,
			Code:          rent.DisplayCode(),
			EndDate:       rent.EndDate,
			DaysRemaining: int(rent.EndDate.Sub(today).Hours() / 24),
			TenantName:    rent.Tenant.FullName,
			PropertyCode:  rent.Property.Code,
			AddressLine:   rent.Property.AddressLine,
		})
	}
	return out, nil
}

func (r *Repository) vacantQuery(applicationID string, today time.Time) *gorm.DB {
	return r.DB.Model(&property.Property{}).
		Where("properties.application_id = ? AND properties.is_active = ?", applicationID, true).
		Where(`NOT EXISTS (
			SELECT 1 FROM rentals
			WHERE rentals.property_id = properties.id
			  AND rentals.deleted_at IS NULL
			  AND rentals.status = ?
			  AND rentals.end_date >= ?
		)`, rental.StatusActive, today)
}

// GetVacantProperties lista las propiedades activas sin contrato en vigencia.
func (r *Repository) GetVacantProperties(applicationID string) ([]VacantProperty, error) {
	var properties []property.Property
	err := r.vacantQuery(applicationID, todayStart()).
		Preload("Owner").
		Order("properties.code asc").
		Find(&properties).Error
	if err != nil {
		return nil, err
	}

	out := make([]VacantProperty, 0, len(properties))
	for i := range properties {
		p := &properties[i]
		out = append(out, VacantProperty{
			ID:            p.ID,
			Code:          p.Code,
			AddressLine:   p.AddressLine,
			PropertyType:  p.PropertyType,
			OwnerName:     p.Owner.FullName,
			MonthlyRent:   p.MonthlyRent,
			ListingStatus: p.ListingStatus,
		})
	}
	return out, nil
}

// CountActiveClients cuenta los clientes activos de la aplicación.
func (r *Repository) CountActiveClients(applicationID string) (int64, error) {
	var count int64
	err := r.DB.Model(&client.Client{}).
		Where("application_id = ? AND is_active = ?", applicationID, true).
		Count(&count).Error
	return count, err
}
