// monitor.go
package ws

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"
)

// LivenessMonitor detecta sockets medio abiertos que el transporte no vio
// cerrarse. Es un detector de dos ticks: en cada intervalo, la conexión que
// no respondió el ping del intervalo anterior se cierra y se da de baja;
// a las demás se les limpia el flag y se les manda un ping nuevo, que el
// pong entrante volverá a armar.
//
// Un ping que no se puede enviar cuenta igual que un pong ausente: baja
// inmediata. Se prefiere un falso desconectado antes que un socket filtrado.
type LivenessMonitor struct {
	registry *Registry
	interval time.Duration
}

func NewLivenessMonitor(r *Registry, interval time.Duration) *LivenessMonitor {
	return &LivenessMonitor{registry: r, interval: interval}
}

// Run bloquea hasta que el contexto se cancele (shutdown del proceso).
func (m *LivenessMonitor) Run(ctx context.Context) {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	log.Println("[Monitor] iniciado, intervalo:", m.interval)

	for {
		select {
		case <-ticker.C:
			m.sweep()
		case <-ctx.Done():
			log.Println("[Monitor] detenido")
			return
		}
	}
}

func (m *LivenessMonitor) sweep() {
	type probe struct {
		id    uuid.UUID
		sock  Conn
		alive bool
	}

	// snapshot + limpieza del flag bajo lock; los pings van fuera del lock
	m.registry.mu.Lock()
	probes := make([]probe, 0, len(m.registry.clients))
	for _, c := range m.registry.clients {
		probes = append(probes, probe{id: c.id, sock: c.sock, alive: c.alive})
		c.alive = false
	}
	m.registry.mu.Unlock()

	for _, p := range probes {
		if !p.alive {
			m.evict(p.id, p.sock, "sin respuesta al heartbeat")
			continue
		}
		if err := p.sock.Ping(); err != nil {
			m.evict(p.id, p.sock, "fallo enviando ping: "+err.Error())
		}
	}
}

func (m *LivenessMonitor) evict(id uuid.UUID, sock Conn, reason string) {
	log.Println("[Monitor] conexión dada de baja:", id, "-", reason)
	_ = sock.Close()
	m.registry.Unregister(id)
}
