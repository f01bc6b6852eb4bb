package user

import (
	"errors"
	"time"

	"github.com/markap/api-backoffice/internal/apperrors"
	"gorm.io/gorm"
)

// Repository encapsula operaciones de base para usuarios y códigos de reset.
type Repository struct {
	DB *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{DB: db}
}

// Create inserta un usuario nuevo.
func (r *Repository) Create(u *User) error {
	return r.DB.Create(u).Error
}

// FindByEmail busca un usuario no eliminado por email.
func (r *Repository) FindByEmail(email string) (*User, error) {
	var u User
	err := r.DB.Where("email = ?", email).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.NotFound("User", email)
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// FindByID busca un usuario no eliminado por ID.
func (r *Repository) FindByID(id string) (*User, error) {
	var u User
	err := r.DB.First(&u, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.NotFound("User", id)
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// ListFilters son los filtros del listado de cuentas.
type ListFilters struct {
	Page     int
	Limit    int
	Search   string
	IsActive *bool
}

// ListResult es una página de usuarios.
type ListResult struct {
	Data  []User `json:"data"`
	Total int64  `json:"total"`
	Page  int    `json:"page"`
	Limit int    `json:"limit"`
}

// FindMany retorna una página de usuarios según filtros.
func (r *Repository) FindMany(f ListFilters) (*ListResult, error) {
	q := r.DB.Model(&User{})
	if f.IsActive != nil {
		q = q.Where("is_active = ?", *f.IsActive)
	}
	if f.Search != "" {
		like := "%" + f.Search + "%"
		q = q.Where("email LIKE ? OR first_name LIKE ? OR last_name LIKE ?", like, like, like)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, err
	}
	var data []User
	err := q.Order("email asc").
		Offset((f.Page - 1) * f.Limit).
		Limit(f.Limit).
		Find(&data).Error
	if err != nil {
		return nil, err
	}
	return &ListResult{Data: data, Total: total, Page: f.Page, Limit: f.Limit}, nil
}

// Update guarda cambios en un usuario existente.
func (r *Repository) Update(u *User) error {
	return r.DB.Save(u).Error
}

// UpdatePassword cambia el hash de contraseña de un usuario.
func (r *Repository) UpdatePassword(userID, hash string) error {
	return r.DB.Model(&User{}).Where("id = ?", userID).Update("password", hash).Error
}

// CreateResetCode persiste un código de recuperación.
func (r *Repository) CreateResetCode(c *PasswordResetCode) error {
	return r.DB.Create(c).Error
}

// FindValidResetCodes retorna los códigos vigentes (no usados, no vencidos)
// de un usuario, del más reciente al más viejo.
func (r *Repository) FindValidResetCodes(userID string) ([]PasswordResetCode, error) {
	var codes []PasswordResetCode
	err := r.DB.
		Where("user_id = ? AND used_at IS NULL AND expires_at > ?", userID, time.Now()).
		Order("created_at desc").
		Find(&codes).Error
	return codes, err
}

// MarkResetCodeUsed sella un código como consumido.
func (r *Repository) MarkResetCodeUsed(id string) error {
	now := time.Now()
	return r.DB.Model(&PasswordResetCode{}).Where("id = ?", id).Update("used_at", now).Error
}
