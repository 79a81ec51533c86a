// Package websocket pushes live status snapshots (running timers and the
// pending break) to connected clients.
package websocket

import (
	"encoding/json"
	"log/slog"
	"time"

	"github.com/gorilla/websocket"
	"github.com/jonboulle/clockwork"
	"github.com/pscheid92/screencoach/internal/domain"
	"github.com/pscheid92/screencoach/internal/metrics"
)

const (
	maxClients   = 16
	tickInterval = time.Second
	writeTimeout = 5 * time.Second
)

// SnapshotProvider supplies the live state that gets broadcast every tick.
type SnapshotProvider interface {
	Timers() []domain.TimerSnapshot
	PendingBreak() *domain.PendingBreak
}

// statusSnapshot is the wire format pushed to clients.
type statusSnapshot struct {
	Timers       []domain.TimerSnapshot `json:"timers"`
	PendingBreak *domain.PendingBreak   `json:"pendingBreak"`
}

// broadcasterCmd is the command interface for the StatusBroadcaster actor.
type broadcasterCmd interface{ isBroadcasterCmd() }

type baseBroadcasterCmd struct{}

func (baseBroadcasterCmd) isBroadcasterCmd() {}

type registerCmd struct {
	baseBroadcasterCmd
	connection   *websocket.Conn
	errorChannel chan error
}

type unregisterCmd struct {
	baseBroadcasterCmd
	connection *websocket.Conn
}

type pushCmd struct {
	baseBroadcasterCmd
}

type stopCmd struct {
	baseBroadcasterCmd
}

// StatusBroadcaster is a single-goroutine actor owning all client
// connections. It broadcasts a snapshot every second and immediately whenever
// Push is called (break triggered or completed), so clients never wait a full
// tick to see an overlay flip.
type StatusBroadcaster struct {
	cmdCh    chan broadcasterCmd
	clock    clockwork.Clock
	provider SnapshotProvider
	clients  map[*websocket.Conn]struct{}
}

func NewStatusBroadcaster(provider SnapshotProvider, clock clockwork.Clock) *StatusBroadcaster {
	b := &StatusBroadcaster{
		cmdCh:    make(chan broadcasterCmd, 64),
		clock:    clock,
		provider: provider,
		clients:  make(map[*websocket.Conn]struct{}),
	}
	go b.run()
	return b
}

// Register adds a client and sends it an initial snapshot.
func (b *StatusBroadcaster) Register(conn *websocket.Conn) error {
	errCh := make(chan error, 1)
	b.cmdCh <- registerCmd{connection: conn, errorChannel: errCh}
	return <-errCh
}

// Unregister removes a client. Safe to call for unknown connections.
func (b *StatusBroadcaster) Unregister(conn *websocket.Conn) {
	b.cmdCh <- unregisterCmd{connection: conn}
}

// Push broadcasts a snapshot out of band. Never blocks: with the command
// buffer full the next tick covers the update anyway.
func (b *StatusBroadcaster) Push() {
	select {
	case b.cmdCh <- pushCmd{}:
	default:
	}
}

// Stop closes all client connections and terminates the actor.
func (b *StatusBroadcaster) Stop() {
	b.cmdCh <- stopCmd{}
}

func (b *StatusBroadcaster) run() {
	ticker := b.clock.NewTicker(tickInterval)
	defer ticker.Stop()

	for {
		select {
		case cmd := <-b.cmdCh:
			switch c := cmd.(type) {
			case registerCmd:
				b.handleRegister(c)
			case unregisterCmd:
				b.remove(c.connection)
			case pushCmd:
				b.broadcast()
			case stopCmd:
				b.handleStop()
				return
			default:
				slog.Error("StatusBroadcaster: unknown command", "type", cmd)
			}
		case <-ticker.Chan():
			b.broadcast()
		}
	}
}

func (b *StatusBroadcaster) handleRegister(c registerCmd) {
	if len(b.clients) >= maxClients {
		c.connection.Close()
		c.errorChannel <- domain.ErrTooManyClients
		return
	}
	b.clients[c.connection] = struct{}{}
	metrics.WebSocketClients.Set(float64(len(b.clients)))
	b.send(c.connection, b.snapshot())
	c.errorChannel <- nil
}

func (b *StatusBroadcaster) remove(conn *websocket.Conn) {
	if _, ok := b.clients[conn]; !ok {
		return
	}
	delete(b.clients, conn)
	conn.Close()
	metrics.WebSocketClients.Set(float64(len(b.clients)))
}

func (b *StatusBroadcaster) handleStop() {
	for conn := range b.clients {
		conn.Close()
	}
	b.clients = make(map[*websocket.Conn]struct{})
	metrics.WebSocketClients.Set(0)
}

func (b *StatusBroadcaster) snapshot() []byte {
	snap := statusSnapshot{
		Timers:       b.provider.Timers(),
		PendingBreak: b.provider.PendingBreak(),
	}
	doc, err := json.Marshal(snap)
	if err != nil {
		slog.Error("Failed to marshal status snapshot", "error", err)
		return nil
	}
	return doc
}

func (b *StatusBroadcaster) broadcast() {
	if len(b.clients) == 0 {
		return
	}
	doc := b.snapshot()
	for conn := range b.clients {
		b.send(conn, doc)
	}
}

// send writes one message; a failed write drops the client.
func (b *StatusBroadcaster) send(conn *websocket.Conn, doc []byte) {
	if doc == nil {
		return
	}
	conn.SetWriteDeadline(b.clock.Now().Add(writeTimeout))
	if err := conn.WriteMessage(websocket.TextMessage, doc); err != nil {
		b.remove(conn)
	}
}
