package user

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/markap/api-backoffice/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupUserTest(t *testing.T) (*Handler, *gorm.DB) {
	t.Helper()
	t.Setenv("JWT_SECRET", "clave-de-prueba")

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, Migrate(db))
	return NewHandler(db), db
}

func seedUser(t *testing.T, db *gorm.DB, email, password string, active bool) User {
	t.Helper()
	hash, err := utils.HashPassword(password)
	require.NoError(t, err)
	u := User{Email: email, Password: hash, FirstName: "Ana", LastName: "Torres", IsActive: true}
	require.NoError(t, db.Create(&u).Error)
	if !active {
		// is_active tiene default:true; el false en el insert se omite
		require.NoError(t, db.Model(&User{}).Where("id = ?", u.ID).Update("is_active", false).Error)
		u.IsActive = false
	}
	return u
}

func postJSON(handler http.HandlerFunc, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler(rec, req)
	return rec
}

func TestLoginReturnsTokenAndUser(t *testing.T) {
	h, db := setupUserTest(t)
	seedUser(t, db, "ana@markap.pe", "secreto123", true)

	rec := postJSON(h.Login, "/auth/login", `{"email":"ana@markap.pe","password":"secreto123"}`)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var resp struct {
		User        User   `json:"user"`
		AccessToken string `json:"accessToken"`
		ExpiresIn   int    `json:"expiresIn"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "ana@markap.pe", resp.User.Email)
	assert.NotEmpty(t, resp.AccessToken)
	assert.Equal(t, 86400, resp.ExpiresIn)
	// La contraseña nunca se serializa
	assert.NotContains(t, rec.Body.String(), "secreto123")
	assert.NotContains(t, rec.Body.String(), "$2a$")
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	h, db := setupUserTest(t)
	seedUser(t, db, "ana@markap.pe", "secreto123", true)

	rec := postJSON(h.Login, "/auth/login", `{"email":"ana@markap.pe","password":"otra"}`)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLoginRejectsInactiveUser(t *testing.T) {
	h, db := setupUserTest(t)
	seedUser(t, db, "ana@markap.pe", "secreto123", false)

	rec := postJSON(h.Login, "/auth/login", `{"email":"ana@markap.pe","password":"secreto123"}`)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRegisterValidatesPasswordLength(t *testing.T) {
	h, _ := setupUserTest(t)

	rec := postJSON(h.Register, "/auth/register",
		`{"email":"nueva@markap.pe","password":"corta","firstName":"Eva","lastName":"Mori"}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "password debe tener al menos 8 caracteres")
}

func TestRegisterNormalizesEmail(t *testing.T) {
	h, db := setupUserTest(t)

	rec := postJSON(h.Register, "/auth/register",
		`{"email":"  Eva@Markap.PE ","password":"secreto123","firstName":"Eva","lastName":"Mori"}`)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var u User
	require.NoError(t, db.First(&u, "email = ?", "eva@markap.pe").Error)
	assert.True(t, utils.CheckPassword(u.Password, "secreto123"))
}

func TestForgotPasswordAlwaysRespondsOK(t *testing.T) {
	h, db := setupUserTest(t)
	u := seedUser(t, db, "ana@markap.pe", "secreto123", true)

	// Email inexistente: misma respuesta, sin código
	rec := postJSON(h.ForgotPassword, "/auth/forgot-password", `{"email":"nadie@markap.pe"}`)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = postJSON(h.ForgotPassword, "/auth/forgot-password", `{"email":"ana@markap.pe"}`)
	assert.Equal(t, http.StatusOK, rec.Code)

	var codes []PasswordResetCode
	require.NoError(t, db.Find(&codes).Error)
	require.Len(t, codes, 1)
	assert.Equal(t, u.ID, codes[0].UserID)
	assert.True(t, codes[0].ExpiresAt.After(time.Now()))
	// El hash siempre es bcrypt; una fila con hash vacío sería incanjeable
	assert.True(t, strings.HasPrefix(codes[0].CodeHash, "$2"))
}

func TestResetPasswordFlow(t *testing.T) {
	h, db := setupUserTest(t)
	u := seedUser(t, db, "ana@markap.pe", "secreto123", true)

	codeHash, err := utils.HashPassword("123456")
	require.NoError(t, err)
	require.NoError(t, db.Create(&PasswordResetCode{
		UserID: u.ID, CodeHash: codeHash, ExpiresAt: time.Now().Add(15 * time.Minute),
	}).Error)

	// Código equivocado
	rec := postJSON(h.ResetPassword, "/auth/reset-password",
		`{"email":"ana@markap.pe","code":"000000","newPassword":"nueva-clave-1"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// Código correcto
	rec = postJSON(h.ResetPassword, "/auth/reset-password",
		`{"email":"ana@markap.pe","code":"123456","newPassword":"nueva-clave-1"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var reloaded User
	require.NoError(t, db.First(&reloaded, "id = ?", u.ID).Error)
	assert.True(t, utils.CheckPassword(reloaded.Password, "nueva-clave-1"))
	assert.False(t, utils.CheckPassword(reloaded.Password, "secreto123"))

	// El código queda usado: no sirve dos veces
	rec = postJSON(h.ResetPassword, "/auth/reset-password",
		`{"email":"ana@markap.pe","code":"123456","newPassword":"otra-clave-2"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestListUsersFiltersAndOmitsPassword(t *testing.T) {
	h, db := setupUserTest(t)
	seedUser(t, db, "ana@markap.pe", "secreto123", true)
	seedUser(t, db, "bruno@markap.pe", "secreto123", true)
	seedUser(t, db, "carla@markap.pe", "secreto123", false)

	req := httptest.NewRequest(http.MethodGet, "/users?isActive=true", nil)
	rec := httptest.NewRecorder()
	h.List(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var result ListResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.EqualValues(t, 2, result.Total)
	require.Len(t, result.Data, 2)
	assert.Equal(t, "ana@markap.pe", result.Data[0].Email)
	assert.NotContains(t, rec.Body.String(), "$2")

	req = httptest.NewRequest(http.MethodGet, "/users?search=bruno", nil)
	rec = httptest.NewRecorder()
	h.List(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	result = ListResult{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	require.Len(t, result.Data, 1)
	assert.Equal(t, "bruno@markap.pe", result.Data[0].Email)
}

func TestUpdateUserAppliesPartialChanges(t *testing.T) {
	h, db := setupUserTest(t)
	u := seedUser(t, db, "ana@markap.pe", "secreto123", true)

	req := httptest.NewRequest(http.MethodPatch, "/users/"+u.ID,
		strings.NewReader(`{"email":"  ANA.NUEVA@markap.pe ","firstName":"Ana María"}`))
	req = mux.SetURLVars(req, map[string]string{"id": u.ID})
	rec := httptest.NewRecorder()
	h.Update(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var reloaded User
	require.NoError(t, db.First(&reloaded, "id = ?", u.ID).Error)
	assert.Equal(t, "ana.nueva@markap.pe", reloaded.Email)
	assert.Equal(t, "Ana María", reloaded.FirstName)
	// Campos no enviados quedan intactos
	assert.Equal(t, "Torres", reloaded.LastName)
}

func TestUpdateUserRejectsEmptyEmail(t *testing.T) {
	h, db := setupUserTest(t)
	u := seedUser(t, db, "ana@markap.pe", "secreto123", true)

	req := httptest.NewRequest(http.MethodPatch, "/users/"+u.ID,
		strings.NewReader(`{"email":"   "}`))
	req = mux.SetURLVars(req, map[string]string{"id": u.ID})
	rec := httptest.NewRecorder()
	h.Update(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	var reloaded User
	require.NoError(t, db.First(&reloaded, "id = ?", u.ID).Error)
	assert.Equal(t, "ana@markap.pe", reloaded.Email)
}

func TestToggleActiveFlipsFlag(t *testing.T) {
	h, db := setupUserTest(t)
	u := seedUser(t, db, "ana@markap.pe", "secreto123", true)

	req := httptest.NewRequest(http.MethodPatch, "/users/"+u.ID+"/toggle-active", nil)
	req = mux.SetURLVars(req, map[string]string{"id": u.ID})
	rec := httptest.NewRecorder()
	h.ToggleActive(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var reloaded User
	require.NoError(t, db.First(&reloaded, "id = ?", u.ID).Error)
	assert.False(t, reloaded.IsActive)

	req = httptest.NewRequest(http.MethodPatch, "/users/"+u.ID+"/toggle-active", nil)
	req = mux.SetURLVars(req, map[string]string{"id": u.ID})
	rec = httptest.NewRecorder()
	h.ToggleActive(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, db.First(&reloaded, "id = ?", u.ID).Error)
	assert.True(t, reloaded.IsActive)
}

func TestToggleActiveUnknownUserReturns404(t *testing.T) {
	h, _ := setupUserTest(t)

	req := httptest.NewRequest(http.MethodPatch, "/users/no-existe/toggle-active", nil)
	req = mux.SetURLVars(req, map[string]string{"id": "no-existe"})
	rec := httptest.NewRecorder()
	h.ToggleActive(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
