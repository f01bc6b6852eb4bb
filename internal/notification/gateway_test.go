package notification

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/markap/api-backoffice/internal/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dialGateway(t *testing.T, server *httptest.Server, token string) (*websocket.Conn, int) {
	t.Helper()
	url := strings.Replace(server.URL, "http", "ws", 1) + "?token=" + token
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if resp != nil {
		defer resp.Body.Close()
		if err != nil {
			return nil, resp.StatusCode
		}
	}
	require.NoError(t, err)
	return conn, resp.StatusCode
}

func TestGatewayRegistersAndEmits(t *testing.T) {
	t.Setenv("JWT_SECRET", "clave-de-prueba")
	g := NewGateway("http://localhost:5173")
	server := httptest.NewServer(http.HandlerFunc(g.HandleWS))
	defer server.Close()

	token, err := auth.GenerateToken("u-1", "ana@markap.pe")
	require.NoError(t, err)

	conn, _ := dialGateway(t, server, token)
	defer conn.Close()

	require.Eventually(t, func() bool {
		return g.ConnectedCount("u-1") == 1
	}, time.Second, 10*time.Millisecond)

	g.EmitToUser("u-1", map[string]string{"title": "hola"})

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(time.Second)))
	var got map[string]string
	require.NoError(t, conn.ReadJSON(&got))
	assert.Equal(t, "hola", got["title"])

	conn.Close()
	require.Eventually(t, func() bool {
		return g.ConnectedCount("u-1") == 0
	}, time.Second, 10*time.Millisecond)
}

func TestGatewayEmitsConcurrentlyToOneSession(t *testing.T) {
	t.Setenv("JWT_SECRET", "clave-de-prueba")
	g := NewGateway("http://localhost:5173")
	server := httptest.NewServer(http.HandlerFunc(g.HandleWS))
	defer server.Close()

	token, err := auth.GenerateToken("u-1", "ana@markap.pe")
	require.NoError(t, err)

	conn, _ := dialGateway(t, server, token)
	defer conn.Close()

	require.Eventually(t, func() bool {
		return g.ConnectedCount("u-1") == 1
	}, time.Second, 10*time.Millisecond)

	// Varios fan-outs simultáneos escriben la misma sesión; cada
	// frame debe llegar entero.
	const emitters = 8
	var wg sync.WaitGroup
	wg.Add(emitters)
	for i := 0; i < emitters; i++ {
		go func(n int) {
			defer wg.Done()
			g.EmitToUser("u-1", map[string]int{"seq": n})
		}(i)
	}

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	seen := make(map[int]bool)
	for i := 0; i < emitters; i++ {
		var got map[string]int
		require.NoError(t, conn.ReadJSON(&got))
		seen[got["seq"]] = true
	}
	wg.Wait()
	assert.Len(t, seen, emitters)
}

func TestGatewayRejectsInvalidToken(t *testing.T) {
	t.Setenv("JWT_SECRET", "clave-de-prueba")
	g := NewGateway("http://localhost:5173")
	server := httptest.NewServer(http.HandlerFunc(g.HandleWS))
	defer server.Close()

	_, status := dialGateway(t, server, "no-es-un-jwt")
	assert.Equal(t, 401, status)
}

func TestGatewayEmitToDisconnectedUserIsNoop(t *testing.T) {
	g := NewGateway("http://localhost:5173")
	// Sin sesiones registradas no pasa nada
	g.EmitToUser("nadie", map[string]string{"title": "hola"})
	assert.Zero(t, g.ConnectedCount("nadie"))
}
