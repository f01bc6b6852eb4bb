package report

import (
	"testing"
	"time"

	"github.com/markap/api-backoffice/internal/application"
	"github.com/markap/api-backoffice/internal/client"
	"github.com/markap/api-backoffice/internal/property"
	"github.com/markap/api-backoffice/internal/rental"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupReportTest(t *testing.T) (*Repository, *gorm.DB, application.Application) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, application.Migrate(db))
	require.NoError(t, client.Migrate(db))
	require.NoError(t, property.Migrate(db))
	require.NoError(t, rental.Migrate(db))

	app := application.Application{Name: "Alquileres", Slug: "alquileres", IsActive: true}
	require.NoError(t, db.Create(&app).Error)
	return NewRepository(db), db, app
}

func seedRented(t *testing.T, db *gorm.DB, app application.Application, code string, end time.Time) (property.Property, rental.Rental) {
	t.Helper()
	owner := client.Client{
		ApplicationID: app.ID, ClientType: client.TypeOwner,
		DocumentType: "DNI", DocumentNumber: code + "-own", FullName: "Dueño " + code, IsActive: true,
	}
	require.NoError(t, db.Create(&owner).Error)
	tenant := client.Client{
		ApplicationID: app.ID, ClientType: client.TypeTenant,
		DocumentType: "DNI", DocumentNumber: code + "-ten", FullName: "Inquilino " + code, IsActive: true,
	}
	require.NoError(t, db.Create(&tenant).Error)
	p := property.Property{
		ApplicationID: app.ID, Code: code, OwnerID: owner.ID,
		AddressLine: "Calle " + code, DistrictID: "lima", IsActive: true,
	}
	require.NoError(t, db.Create(&p).Error)

	rent := rental.Rental{
		ApplicationID: app.ID, PropertyID: p.ID, TenantID: tenant.ID,
		StartDate: end.AddDate(-1, 0, 0), EndDate: end,
		Currency: rental.CurrencyPEN, MonthlyAmount: 2000, PaymentDueDay: 5,
		Status: rental.StatusActive,
	}
	require.NoError(t, db.Create(&rent).Error)
	return p, rent
}

func TestGetSummaryCounts(t *testing.T) {
	repo, db, app := setupReportTest(t)

	seedRented(t, db, app, "P-1", time.Now().AddDate(1, 0, 0))     // vigente
	seedRented(t, db, app, "P-2", time.Now().AddDate(0, 0, 10))    // vigente y por vencer
	seedRented(t, db, app, "P-3", time.Now().AddDate(0, 0, -5))    // vencido por fecha

	s, err := repo.GetSummary(app.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(6), s.ActiveClients)
	assert.Equal(t, int64(3), s.TotalProperties)
	assert.Equal(t, int64(3), s.TotalRentals)
	assert.Equal(t, int64(2), s.RentalsInForce)
	assert.Equal(t, int64(1), s.RentalsExpiring)
	assert.Equal(t, int64(1), s.PropertiesVacant)
}

func TestGetVacantProperties(t *testing.T) {
	repo, db, app := setupReportTest(t)

	seedRented(t, db, app, "P-1", time.Now().AddDate(1, 0, 0))
	vacant, _ := seedRented(t, db, app, "P-2", time.Now().AddDate(0, 0, -5))

	got, err := repo.GetVacantProperties(app.ID)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, vacant.ID, got[0].ID)
	assert.Equal(t, "Dueño P-2", got[0].OwnerName)
}

func TestGetExpiringContracts(t *testing.T) {
	repo, db, app := setupReportTest(t)

	seedRented(t, db, app, "P-1", time.Now().AddDate(1, 0, 0))
	_, expiring := seedRented(t, db, app, "P-2", time.Now().AddDate(0, 0, 10))

	got, err := repo.GetExpiringContracts(app.ID, 30)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, expiring.ID, got[0].ID)
	assert.Equal(t, "Inquilino P-2", got[0].TenantName)
	assert.Equal(t, "P-2", got[0].PropertyCode)
	assert.InDelta(t, 10, got[0].DaysRemaining, 1)
}

func TestGetRentalsByMonthFillsEmptyBuckets(t *testing.T) {
	repo, db, app := setupReportTest(t)

	// Ambos contratos inician este mes (start = end - 1 año)
	seedRented(t, db, app, "P-1", time.Now().AddDate(1, 0, 0))
	seedRented(t, db, app, "P-2", time.Now().AddDate(1, 0, 0))

	buckets, err := repo.GetRentalsByMonth(app.ID)
	require.NoError(t, err)
	require.Len(t, buckets, 12)

	currentMonth := time.Now().Format("2006-01")
	assert.Equal(t, currentMonth, buckets[11].Month)
	assert.Equal(t, int64(2), buckets[11].Count)

	var total int64
	for _, b := range buckets {
		total += b.Count
	}
	assert.Equal(t, int64(2), total)
}
