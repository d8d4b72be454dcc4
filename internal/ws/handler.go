// handler.go
package ws

import (
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

const writeWait = 10 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// el gateway de enfrente ya filtra orígenes
	CheckOrigin: func(r *http.Request) bool { return true },
}

// gorillaConn adapta *websocket.Conn a Conn. gorilla permite un solo writer
// concurrente, así que todas las escrituras pasan por el mutex.
type gorillaConn struct {
	mu sync.Mutex
	c  *websocket.Conn
}

func (g *gorillaConn) WriteJSON(v any) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	_ = g.c.SetWriteDeadline(time.Now().Add(writeWait))
	return g.c.WriteJSON(v)
}

func (g *gorillaConn) Ping() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.c.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait))
}

func (g *gorillaConn) Close() error {
	return g.c.Close()
}

// Handler atiende el endpoint persistente GET /ws, común a todos los roles.
type Handler struct {
	registry   *Registry
	dispatcher *Dispatcher
}

func NewHandler(r *Registry, d *Dispatcher) *Handler {
	return &Handler{registry: r, dispatcher: d}
}

// Serve hace el upgrade y corre el loop de lectura de la conexión. Pase lo
// que pase (cierre remoto, baja por liveness, shutdown) la conexión queda
// fuera del registro antes de que la goroutine termine.
func (h *Handler) Serve(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Println("[WS] upgrade fallido:", err)
		return
	}

	sock := &gorillaConn{c: conn}
	id := h.registry.Register(sock)
	log.Println("[WS] conexión abierta:", id)

	// el pong del transporte rearma el flag que el monitor limpia cada tick
	conn.SetPongHandler(func(string) error {
		h.registry.MarkAlive(id)
		return nil
	})

	defer func() {
		h.registry.Unregister(id)
		_ = conn.Close()
		log.Println("[WS] conexión cerrada:", id)
	}()

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			return
		}
		h.dispatcher.Dispatch(c.Request.Context(), id, sock, raw)
	}
}
