package application

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/markap/api-backoffice/internal/auth"
	"github.com/markap/api-backoffice/internal/role"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupApplicationTest(t *testing.T) (*Handler, *role.Repository) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, Migrate(db))
	require.NoError(t, role.Migrate(db))
	roles := role.NewRepository(db)
	return NewHandler(db, roles), roles
}

func TestListMineReturnsOnlyGrantedApplications(t *testing.T) {
	h, roles := setupApplicationTest(t)

	granted := Application{Name: "Alquileres", Slug: "alquileres", IsActive: true}
	require.NoError(t, h.Repository.Create(&granted))
	other := Application{Name: "Contabilidad", Slug: "contabilidad", IsActive: true}
	require.NoError(t, h.Repository.Create(&other))

	viewer := role.Role{Code: "VIEWER", Name: "Visor", IsActive: true}
	require.NoError(t, roles.Create(&viewer))
	require.NoError(t, roles.GrantApplication(&role.RoleApplication{
		RoleID: viewer.ID, ApplicationID: granted.ID, CanRead: true,
	}))

	userID := uuid.NewString()
	_, err := roles.AssignToUser(userID, viewer.ID)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/applications/mine", nil)
	req = req.WithContext(context.WithValue(req.Context(), auth.CtxUserID, userID))
	rec := httptest.NewRecorder()
	h.ListMine(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var got []Application
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	require.Len(t, got, 1)
	assert.Equal(t, "alquileres", got[0].Slug)
}

func TestListMineWithoutGrantsReturnsEmptyList(t *testing.T) {
	h, _ := setupApplicationTest(t)

	app := Application{Name: "Alquileres", Slug: "alquileres", IsActive: true}
	require.NoError(t, h.Repository.Create(&app))

	req := httptest.NewRequest(http.MethodGet, "/applications/mine", nil)
	req = req.WithContext(context.WithValue(req.Context(), auth.CtxUserID, uuid.NewString()))
	rec := httptest.NewRecorder()
	h.ListMine(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var got []Application
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	assert.Empty(t, got)
}
