package notification

import (
	"errors"
	"time"

	"github.com/markap/api-backoffice/internal/apperrors"
	"gorm.io/gorm"
)

// ListFilters son los filtros del listado por usuario.
type ListFilters struct {
	UserID     string
	UnreadOnly bool
	Limit      int
	Offset     int
}

// ListResult es una página de notificaciones.
type ListResult struct {
	Data  []Notification `json:"data"`
	Total int64          `json:"total"`
}

// Repository encapsula operaciones de base para Notification.
type Repository struct {
	DB *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{DB: db}
}

// Create inserta una notificación.
func (r *Repository) Create(n *Notification) error {
	return r.DB.Create(n).Error
}

// FindManyByUser retorna las notificaciones de un usuario, de la más
// reciente a la más vieja.
func (r *Repository) FindManyByUser(f ListFilters) (*ListResult, error) {
	q := r.DB.Model(&Notification{}).Where("user_id = ?", f.UserID)
	if f.UnreadOnly {
		q = q.Where("read_at IS NULL")
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, err
	}
	if f.Limit <= 0 {
		f.Limit = 20
	}
	var data []Notification
	err := q.Order("created_at desc").Offset(f.Offset).Limit(f.Limit).Find(&data).Error
	if err != nil {
		return nil, err
	}
	return &ListResult{Data: data, Total: total}, nil
}

// MarkAsRead sella readAt; solo el dueño puede marcar la suya.
func (r *Repository) MarkAsRead(id, userID string) (*Notification, error) {
	var n Notification
	err := r.DB.Where("id = ? AND user_id = ?", id, userID).First(&n).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.NotFound("Notification", id)
	}
	if err != nil {
		return nil, err
	}
	if n.ReadAt == nil {
		now := time.Now()
		n.ReadAt = &now
		if err := r.DB.Model(&n).Update("read_at", now).Error; err != nil {
			return nil, err
		}
	}
	return &n, nil
}

// CountUnreadByUser cuenta las no leídas de un usuario.
func (r *Repository) CountUnreadByUser(userID string) (int64, error) {
	var count int64
	err := r.DB.Model(&Notification{}).
		Where("user_id = ? AND read_at IS NULL", userID).
		Count(&count).Error
	return count, err
}
