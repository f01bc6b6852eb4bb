package rental

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/markap/api-backoffice/internal/notification"
	"github.com/markap/api-backoffice/internal/role"
	"github.com/markap/api-backoffice/internal/user"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type nopEmitter struct{}

func (nopEmitter) EmitToUser(string, interface{}) {}

func setupHandlerTest(t *testing.T) (*Handler, *gorm.DB) {
	t.Helper()
	db := setupTestDB(t)
	require.NoError(t, user.Migrate(db))
	require.NoError(t, role.Migrate(db))
	require.NoError(t, notification.Migrate(db))

	svc := notification.NewService(db, nopEmitter{})
	return NewHandler(db, svc, t.TempDir()), db
}

func multipartBody(t *testing.T, fields map[string]string, files map[string][]byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	for field, content := range files {
		fw, err := w.CreateFormFile(field, field+".pdf")
		require.NoError(t, err)
		_, err = fw.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

func postRental(t *testing.T, h *Handler, fields map[string]string, files map[string][]byte) *httptest.ResponseRecorder {
	t.Helper()
	body, contentType := multipartBody(t, fields, files)
	req := httptest.NewRequest(http.MethodPost, "/rentals", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	h.Create(rec, req)
	return rec
}

func validFields(f fixture) map[string]string {
	return map[string]string{
		"applicationSlug": "alquileres",
		"propertyId":      f.Property.ID,
		"tenantId":        f.Tenant.ID,
		"startDate":       "2026-01-01",
		"endDate":         "2027-01-01",
		"currency":        CurrencyPEN,
		"monthlyAmount":   "2500",
		"paymentDueDay":   "5",
	}
}

func TestCreateRentalHappyPath(t *testing.T) {
	h, db := setupHandlerTest(t)
	f := seedFixture(t, db)

	rec := postRental(t, h, validFields(f), map[string][]byte{
		"contractFile": []byte("pdf de prueba"),
	})

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var created Rental
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, StatusActive, created.Status)
	assert.Equal(t, 2500.0, created.MonthlyAmount)

	// La propiedad queda RENTED en la misma operación
	var reloaded struct{ ListingStatus *string }
	require.NoError(t, db.Table("properties").
		Select("listing_status").
		Where("id = ?", f.Property.ID).
		Scan(&reloaded).Error)
	require.NotNil(t, reloaded.ListingStatus)
	assert.Equal(t, "RENTED", *reloaded.ListingStatus)

	// El contrato subido queda registrado como adjunto
	var attachments []RentalAttachment
	require.NoError(t, db.Where("rental_id = ?", created.ID).Find(&attachments).Error)
	require.Len(t, attachments, 1)
	assert.Equal(t, AttachmentContract, attachments[0].Type)
	assert.Equal(t, "contractFile.pdf", attachments[0].OriginalFileName)
}

func TestCreateRentalInvalidDatesPersistsNothing(t *testing.T) {
	h, db := setupHandlerTest(t)
	f := seedFixture(t, db)

	fields := validFields(f)
	fields["startDate"] = "2027-01-01"
	fields["endDate"] = "2026-01-01"

	rec := postRental(t, h, fields, nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "startDate debe ser anterior a endDate")

	var count int64
	require.NoError(t, db.Model(&Rental{}).Count(&count).Error)
	assert.Zero(t, count)

	// La propiedad tampoco cambió
	var reloaded struct{ ListingStatus *string }
	require.NoError(t, db.Table("properties").
		Select("listing_status").
		Where("id = ?", f.Property.ID).
		Scan(&reloaded).Error)
	assert.Nil(t, reloaded.ListingStatus)
}

func TestCreateRentalCollectsAllViolations(t *testing.T) {
	h, db := setupHandlerTest(t)
	f := seedFixture(t, db)

	fields := validFields(f)
	fields["monthlyAmount"] = "0"
	fields["paymentDueDay"] = "31"
	fields["currency"] = "EUR"

	rec := postRental(t, h, fields, nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "monthlyAmount debe ser mayor a 0")
	assert.Contains(t, body, "paymentDueDay debe estar entre 1 y 28")
	assert.Contains(t, body, "currency debe ser PEN o USD")
}

func TestCreateRentalNotifiesAdmins(t *testing.T) {
	h, db := setupHandlerTest(t)
	f := seedFixture(t, db)

	admin := user.User{Email: "admin@markap.pe", Password: "x", FirstName: "Admin", IsActive: true}
	require.NoError(t, db.Create(&admin).Error)
	roles := role.NewRepository(db)
	adminRole := role.Role{Code: "ADMIN", Name: "Administrador", IsActive: true}
	require.NoError(t, roles.Create(&adminRole))
	_, err := roles.AssignToUser(admin.ID, adminRole.ID)
	require.NoError(t, err)

	rec := postRental(t, h, validFields(f), nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var rows []notification.Notification
	require.NoError(t, db.Find(&rows).Error)
	require.Len(t, rows, 1)
	assert.Equal(t, admin.ID, rows[0].UserID)
	assert.Equal(t, "Inquilino: María López. Propiedad: Av. Arequipa 123", rows[0].Body)
}
