package auth

import (
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TTL del access token
const AccessTTL = 24 * time.Hour

var (
	secretMu  sync.RWMutex
	jwtSecret []byte
)

// SetSecret fija la clave de firma desde la configuración; cmd/main la
// llama una vez al arrancar.
func SetSecret(s string) {
	secretMu.Lock()
	defer secretMu.Unlock()
	jwtSecret = []byte(s)
}

// Sin SetSecret previo se cae a JWT_SECRET del entorno.
func secret() ([]byte, error) {
	secretMu.RLock()
	s := jwtSecret
	secretMu.RUnlock()
	if len(s) == 0 {
		s = []byte(os.Getenv("JWT_SECRET"))
	}
	if len(s) == 0 {
		return nil, errors.New("clave de firma JWT no configurada")
	}
	return s, nil
}

// Claims del token de acceso. El subject lleva el ID del usuario.
type Claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// UserID retorna el ID de usuario contenido en el token.
func (c *Claims) UserID() string { return c.Subject }

// GenerateToken genera un JWT HS256 con validez de 24h.
func GenerateToken(userID, email string) (string, error) {
	key, err := secret()
	if err != nil {
		return "", err
	}
	now := time.Now()
	claims := &Claims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(AccessTTL)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(key)
}

// ValidateToken valida el token y retorna las claims.
func ValidateToken(tokenStr string) (*Claims, error) {
	key, err := secret()
	if err != nil {
		return nil, err
	}
	parser := jwt.NewParser(jwt.WithValidMethods([]string{"HS256"}))
	token, err := parser.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		return key, nil
	})
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("token inválido o expirado: %w", err)
	}
	claims, ok := token.Claims.(*Claims)
	if !ok {
		return nil, errors.New("no se pudieron extraer las claims")
	}
	return claims, nil
}
