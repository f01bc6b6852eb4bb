package role

import (
	"errors"
	"time"

	"github.com/markap/api-backoffice/internal/apperrors"
	"gorm.io/gorm"
)

// Repository encapsula operaciones de base para roles y asignaciones.
type Repository struct {
	DB *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{DB: db}
}

// List retorna todos los roles no eliminados.
func (r *Repository) List() ([]Role, error) {
	var list []Role
	err := r.DB.Order("code asc").Find(&list).Error
	return list, err
}

// FindByID busca un rol por ID.
func (r *Repository) FindByID(id string) (*Role, error) {
	var role Role
	err := r.DB.First(&role, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.NotFound("Role", id)
	}
	if err != nil {
		return nil, err
	}
	return &role, nil
}

// FindByCode busca un rol por su código estable.
func (r *Repository) FindByCode(code string) (*Role, error) {
	var role Role
	err := r.DB.First(&role, "code = ?", code).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.NotFound("Role", code)
	}
	if err != nil {
		return nil, err
	}
	return &role, nil
}

// Create inserta un rol nuevo.
func (r *Repository) Create(role *Role) error {
	return r.DB.Create(role).Error
}

// Update guarda cambios en un rol.
func (r *Repository) Update(role *Role) error {
	return r.DB.Save(role).Error
}

// AssignToUser asigna un rol a un usuario.
func (r *Repository) AssignToUser(userID, roleID string) (*UserRole, error) {
	ur := UserRole{UserID: userID, RoleID: roleID, IsActive: true}
	if err := r.DB.Create(&ur).Error; err != nil {
		return nil, err
	}
	return &ur, nil
}

// RevokeFromUser revoca todas las asignaciones vigentes de un rol para
// un usuario. No borra filas: marca revoked_at.
func (r *Repository) RevokeFromUser(userID, roleID string) error {
	now := time.Now()
	return r.DB.Model(&UserRole{}).
		Where("user_id = ? AND role_id = ? AND revoked_at IS NULL", userID, roleID).
		Updates(map[string]interface{}{"is_active": false, "revoked_at": now}).Error
}

// GrantApplication otorga acceso de un rol a una aplicación.
func (r *Repository) GrantApplication(grant *RoleApplication) error {
	return r.DB.Create(grant).Error
}

// ListGrantsByRole retorna los permisos rol↔aplicación de un rol.
func (r *Repository) ListGrantsByRole(roleID string) ([]RoleApplication, error) {
	var grants []RoleApplication
	err := r.DB.Where("role_id = ?", roleID).
		Order("created_at asc").
		Find(&grants).Error
	return grants, err
}

// FindApplicationIDsByUser resuelve las aplicaciones que un usuario
// puede leer a través de sus roles vigentes: asignación activa y no
// revocada, rol activo, permiso can_read. Sin duplicados.
func (r *Repository) FindApplicationIDsByUser(userID string) ([]string, error) {
	var ids []string
	err := r.DB.Model(&RoleApplication{}).
		Distinct("role_applications.application_id").
		Joins("JOIN user_roles ON user_roles.role_id = role_applications.role_id").
		Joins("JOIN roles ON roles.id = role_applications.role_id").
		Where("user_roles.user_id = ? AND user_roles.is_active = ? AND user_roles.revoked_at IS NULL", userID, true).
		Where("roles.is_active = ?", true).
		Where("role_applications.can_read = ?", true).
		Pluck("role_applications.application_id", &ids).Error
	return ids, err
}

// FindUserIDsByRoleCodes resuelve los usuarios con asignación vigente
// (activa y no revocada) de alguno de los roles dados, sin duplicados.
// Es la consulta que alimenta el fan-out de notificaciones.
func (r *Repository) FindUserIDsByRoleCodes(codes []string) ([]string, error) {
	if len(codes) == 0 {
		return nil, nil
	}
	var userIDs []string
	err := r.DB.Model(&UserRole{}).
		Distinct("user_roles.user_id").
		Joins("JOIN roles ON roles.id = user_roles.role_id").
		Where("roles.code IN ? AND roles.is_active = ?", codes, true).
		Where("user_roles.is_active = ? AND user_roles.revoked_at IS NULL", true).
		Pluck("user_roles.user_id", &userIDs).Error
	return userIDs, err
}
