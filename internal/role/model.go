package role

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Role define un perfil de acceso (ADMIN, MANAGER, ...).
type Role struct {
	ID        string         `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deletedAt,omitempty"`

	Name        string `gorm:"size:100;not null" json:"name"`
	Code        string `gorm:"size:50;not null;uniqueIndex" json:"code"`
	Description string `json:"description"`
	IsActive    bool   `gorm:"not null;default:true" json:"isActive"`
}

func (r *Role) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}

// UserRole asigna un rol a un usuario; se revoca, no se borra.
type UserRole struct {
	ID        string    `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt time.Time `json:"createdAt"`

	UserID    string     `gorm:"type:uuid;not null;index" json:"userId"`
	RoleID    string     `gorm:"type:uuid;not null;index" json:"roleId"`
	IsActive  bool       `gorm:"not null;default:true" json:"isActive"`
	RevokedAt *time.Time `json:"revokedAt,omitempty"`
}

func (ur *UserRole) BeforeCreate(tx *gorm.DB) error {
	if ur.ID == "" {
		ur.ID = uuid.NewString()
	}
	return nil
}

// RoleApplication es la tabla de permisos rol↔aplicación con flags
// de lectura/escritura/borrado/administración.
type RoleApplication struct {
	ID        string    `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt time.Time `json:"createdAt"`

	RoleID        string `gorm:"type:uuid;not null;index" json:"roleId"`
	ApplicationID string `gorm:"type:uuid;not null;index" json:"applicationId"`
	CanRead       bool   `gorm:"not null;default:true" json:"canRead"`
	CanWrite      bool   `gorm:"not null;default:false" json:"canWrite"`
	CanDelete     bool   `gorm:"not null;default:false" json:"canDelete"`
	IsAdmin       bool   `gorm:"not null;default:false" json:"isAdmin"`
}

func (ra *RoleApplication) BeforeCreate(tx *gorm.DB) error {
	if ra.ID == "" {
		ra.ID = uuid.NewString()
	}
	return nil
}

// Migrate crea las tablas del módulo.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&Role{}, &UserRole{}, &RoleApplication{})
}
