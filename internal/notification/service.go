package notification

import (
	"fmt"
	"time"

	"github.com/markap/api-backoffice/internal/role"
	"gorm.io/gorm"
)

// Roles que reciben la notificación de alquiler creado.
var RentalNotificationRoleCodes = []string{"ADMIN", "MANAGER"}

// Emitter empuja un payload a las sesiones vivas de un usuario.
// Lo implementa el Gateway; es inyectable para poder cambiar el
// registro en memoria por un pub/sub compartido sin tocar el fan-out.
type Emitter interface {
	EmitToUser(userID string, payload interface{})
}

// payload enviado por el socket
type pushPayload struct {
	ID        string                 `json:"id"`
	Type      string                 `json:"type"`
	Title     string                 `json:"title"`
	Body      string                 `json:"body"`
	Data      map[string]interface{} `json:"data"`
	CreatedAt time.Time              `json:"createdAt"`
}

// Service implementa el fan-out de notificaciones.
type Service struct {
	Repository *Repository
	Roles      *role.Repository
	Emitter    Emitter
}

func NewService(db *gorm.DB, emitter Emitter) *Service {
	return &Service{
		Repository: NewRepository(db),
		Roles:      role.NewRepository(db),
		Emitter:    emitter,
	}
}

// CreateForUserIDs persiste una notificación por usuario y después
// empuja cada una por el socket. La persistencia de todos los
// destinatarios termina antes del primer push: quien consulte apenas
// recibido el push siempre encuentra la fila.
func (s *Service) CreateForUserIDs(userIDs []string, typ, title, body string, data map[string]interface{}) ([]Notification, error) {
	created := make([]Notification, 0, len(userIDs))
	for _, userID := range userIDs {
		n := Notification{
			UserID: userID,
			Type:   typ,
			Title:  title,
			Body:   body,
			Data:   data,
		}
		if err := s.Repository.Create(&n); err != nil {
			return nil, err
		}
		created = append(created, n)
	}
	for i := range created {
		n := &created[i]
		s.Emitter.EmitToUser(n.UserID, pushPayload{
			ID:        n.ID,
			Type:      n.Type,
			Title:     n.Title,
			Body:      n.Body,
			Data:      n.Data,
			CreatedAt: n.CreatedAt,
		})
	}
	return created, nil
}

// NotifyRentalCreated notifica a los usuarios con rol ADMIN o MANAGER
// que se registró un alquiler. Sin destinatarios es un no-op.
func (s *Service) NotifyRentalCreated(rentalID, applicationSlug, tenantName, propertyAddress string) error {
	userIDs, err := s.Roles.FindUserIDsByRoleCodes(RentalNotificationRoleCodes)
	if err != nil {
		return err
	}
	if len(userIDs) == 0 {
		return nil
	}
	_, err = s.CreateForUserIDs(
		userIDs,
		TypeRentalCreated,
		"Nuevo alquiler registrado",
		fmt.Sprintf("Inquilino: %s. Propiedad: %s", tenantName, propertyAddress),
		map[string]interface{}{"rentalId": rentalID, "applicationSlug": applicationSlug},
	)
	return err
}
