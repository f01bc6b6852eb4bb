package notification

import (
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/markap/api-backoffice/internal/auth"
	"github.com/sirupsen/logrus"
)

// session envuelve una conexión con su mutex de escritura:
// gorilla/websocket no admite más de un escritor concurrente por
// conexión.
type session struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (s *session) writeJSON(payload interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn.WriteJSON(payload)
}

// Gateway mantiene el registro en memoria de sesiones WebSocket por
// usuario y empuja notificaciones en vivo. El registro es local al
// proceso: un usuario conectado a otra instancia solo recibe la fila
// persistida.
type Gateway struct {
	upgrader websocket.Upgrader

	mu    sync.Mutex
	conns map[string]map[*session]bool
}

// NewGateway crea el gateway aceptando conexiones del origen dado.
func NewGateway(allowedOrigin string) *Gateway {
	return &Gateway{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || origin == allowedOrigin
			},
		},
		conns: make(map[string]map[*session]bool),
	}
}

// HandleWS autentica por token en la query, registra la conexión y la
// mantiene hasta que el cliente corta.
// GET /ws/notifications?token=...
func (g *Gateway) HandleWS(w http.ResponseWriter, r *http.Request) {
	claims, err := auth.ValidateToken(r.URL.Query().Get("token"))
	if err != nil {
		http.Error(w, "Token inválido", http.StatusUnauthorized)
		return
	}
	userID := claims.UserID()

	conn, err := g.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade ya respondió el error
		return
	}

	sess := &session{conn: conn}
	g.register(userID, sess)
	defer g.unregister(userID, sess)

	// Drena mensajes entrantes hasta la desconexión; el canal es
	// solo de servidor a cliente.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (g *Gateway) register(userID string, sess *session) {
	g.mu.Lock()
	defer g.mu.Unlock()
	set := g.conns[userID]
	if set == nil {
		set = make(map[*session]bool)
		g.conns[userID] = set
	}
	set[sess] = true
}

func (g *Gateway) unregister(userID string, sess *session) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if set := g.conns[userID]; set != nil {
		delete(set, sess)
		if len(set) == 0 {
			delete(g.conns, userID)
		}
	}
	sess.conn.Close()
}

// ConnectedCount retorna cuántas sesiones vivas tiene un usuario.
func (g *Gateway) ConnectedCount(userID string) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.conns[userID])
}

// EmitToUser empuja el payload a todas las sesiones vivas del usuario.
// Mejor esfuerzo: sin garantía de entrega ni reintentos; un usuario
// desconectado simplemente no recibe nada. Las escrituras sobre una
// misma sesión se serializan en session.writeJSON.
func (g *Gateway) EmitToUser(userID string, payload interface{}) {
	g.mu.Lock()
	targets := make([]*session, 0, len(g.conns[userID]))
	for sess := range g.conns[userID] {
		targets = append(targets, sess)
	}
	g.mu.Unlock()

	for _, sess := range targets {
		if err := sess.writeJSON(payload); err != nil {
			logrus.WithError(err).Debug("emisión websocket descartada")
		}
	}
}
