package notification

import (
	"testing"

	"github.com/markap/api-backoffice/internal/role"
	"github.com/markap/api-backoffice/internal/user"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type recordingEmitter struct {
	emitted []string // userIDs en orden de emisión
}

func (e *recordingEmitter) EmitToUser(userID string, payload interface{}) {
	e.emitted = append(e.emitted, userID)
}

func setupServiceTest(t *testing.T) (*Service, *recordingEmitter, *gorm.DB) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, user.Migrate(db))
	require.NoError(t, role.Migrate(db))
	require.NoError(t, Migrate(db))

	emitter := &recordingEmitter{}
	return NewService(db, emitter), emitter, db
}

func seedUserWithRole(t *testing.T, db *gorm.DB, email, roleCode string) user.User {
	t.Helper()
	u := user.User{Email: email, Password: "x", FirstName: "Test", IsActive: true}
	require.NoError(t, db.Create(&u).Error)

	roles := role.NewRepository(db)
	r, err := roles.FindByCode(roleCode)
	if err != nil {
		r = &role.Role{Code: roleCode, Name: roleCode, IsActive: true}
		require.NoError(t, roles.Create(r))
	}
	_, err = roles.AssignToUser(u.ID, r.ID)
	require.NoError(t, err)
	return u
}

func TestNotifyRentalCreatedFansOutToAdminsAndManagers(t *testing.T) {
	svc, emitter, db := setupServiceTest(t)

	admin := seedUserWithRole(t, db, "admin@markap.pe", "ADMIN")
	manager := seedUserWithRole(t, db, "manager@markap.pe", "MANAGER")
	seedUserWithRole(t, db, "viewer@markap.pe", "VIEWER")

	err := svc.NotifyRentalCreated("r-1", "alquileres", "María López", "Av. Arequipa 123")
	require.NoError(t, err)

	var rows []Notification
	require.NoError(t, db.Order("created_at asc").Find(&rows).Error)
	require.Len(t, rows, 2)

	recipients := []string{rows[0].UserID, rows[1].UserID}
	assert.ElementsMatch(t, []string{admin.ID, manager.ID}, recipients)

	for _, n := range rows {
		assert.Equal(t, TypeRentalCreated, n.Type)
		assert.Equal(t, "Nuevo alquiler registrado", n.Title)
		assert.Equal(t, "Inquilino: María López. Propiedad: Av. Arequipa 123", n.Body)
		assert.Equal(t, "r-1", n.Data["rentalId"])
		assert.Equal(t, "alquileres", n.Data["applicationSlug"])
		assert.Nil(t, n.ReadAt)
	}

	assert.ElementsMatch(t, []string{admin.ID, manager.ID}, emitter.emitted)
}

func TestNotifyRentalCreatedWithoutRecipientsIsNoop(t *testing.T) {
	svc, emitter, db := setupServiceTest(t)

	err := svc.NotifyRentalCreated("r-1", "alquileres", "María López", "Av. Arequipa 123")
	require.NoError(t, err)

	var count int64
	require.NoError(t, db.Model(&Notification{}).Count(&count).Error)
	assert.Zero(t, count)
	assert.Empty(t, emitter.emitted)
}

func TestNotifyRentalCreatedIgnoresRevokedAssignments(t *testing.T) {
	svc, emitter, db := setupServiceTest(t)

	admin := seedUserWithRole(t, db, "admin@markap.pe", "ADMIN")
	roles := role.NewRepository(db)
	r, err := roles.FindByCode("ADMIN")
	require.NoError(t, err)
	require.NoError(t, roles.RevokeFromUser(admin.ID, r.ID))

	require.NoError(t, svc.NotifyRentalCreated("r-1", "alquileres", "María López", "Av. Arequipa 123"))

	var count int64
	require.NoError(t, db.Model(&Notification{}).Count(&count).Error)
	assert.Zero(t, count)
	assert.Empty(t, emitter.emitted)
}

func TestMarkAsReadIsOwnerScoped(t *testing.T) {
	svc, _, db := setupServiceTest(t)

	owner := seedUserWithRole(t, db, "admin@markap.pe", "ADMIN")
	require.NoError(t, svc.NotifyRentalCreated("r-1", "alquileres", "María López", "Av. Arequipa 123"))

	var n Notification
	require.NoError(t, db.First(&n).Error)

	_, err := svc.Repository.MarkAsRead(n.ID, "otro-usuario")
	assert.Error(t, err)

	got, err := svc.Repository.MarkAsRead(n.ID, owner.ID)
	require.NoError(t, err)
	assert.NotNil(t, got.ReadAt)

	unread, err := svc.Repository.CountUnreadByUser(owner.ID)
	require.NoError(t, err)
	assert.Zero(t, unread)
}
