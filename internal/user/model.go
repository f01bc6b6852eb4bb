package user

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User representa una cuenta del sistema.
type User struct {
	ID        string         `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deletedAt,omitempty"`

	Email     string `gorm:"size:255;not null;uniqueIndex" json:"email"`
	Password  string `gorm:"size:255;not null" json:"-"`
	FirstName string `gorm:"size:100;not null" json:"firstName"`
	LastName  string `gorm:"size:100;not null" json:"lastName"`
	IsActive  bool   `gorm:"not null;default:true" json:"isActive"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}

// FullName retorna nombre y apellido juntos.
func (u *User) FullName() string {
	return u.FirstName + " " + u.LastName
}

// CanAuthenticate indica si la cuenta puede iniciar sesión.
func (u *User) CanAuthenticate() bool {
	return u.IsActive && !u.DeletedAt.Valid
}

// PasswordResetCode es un código de recuperación de un solo uso.
type PasswordResetCode struct {
	ID        string    `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt time.Time `json:"createdAt"`

	UserID    string     `gorm:"type:uuid;not null;index" json:"userId"`
	CodeHash  string     `gorm:"size:255;not null" json:"-"`
	ExpiresAt time.Time  `gorm:"not null" json:"expiresAt"`
	UsedAt    *time.Time `json:"usedAt,omitempty"`
}

func (c *PasswordResetCode) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}

// Migrate crea las tablas del módulo.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&User{}, &PasswordResetCode{})
}
