package notification

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Tipos de notificación emitidos por el servidor.
const TypeRentalCreated = "RENTAL_CREATED"

// Notification es una notificación persistida para un usuario. La crea
// siempre el servidor; solo muta readAt.
type Notification struct {
	ID        string    `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt time.Time `json:"createdAt"`

	UserID string `gorm:"type:uuid;not null;index" json:"userId"`
	Type   string `gorm:"size:50;not null" json:"type"`
	Title  string `gorm:"size:255;not null" json:"title"`
	Body   string `json:"body"`

	// Payload estructurado (ids, slug) para que el front navegue
	Data map[string]interface{} `gorm:"serializer:json" json:"data"`

	ReadAt *time.Time `json:"readAt,omitempty"`
}

func (n *Notification) BeforeCreate(tx *gorm.DB) error {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	return nil
}

// Migrate crea la tabla en la base de datos.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&Notification{})
}
