package stream

import (
	"context"
	"errors"
	"net"
	"net/http"
	"sync"
	"time"

	"arcade-drive/internal/app"
	"arcade-drive/internal/event"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

const (
	DefaultRate       = 30
	DefaultWriteWait  = time.Second
	DefaultPingPeriod = 2 * time.Second
)

// Message is the envelope written to clients.
type Message struct {
	Type  string     `json:"type"`
	Frame *app.Frame `json:"frame,omitempty"`
	Rate  int        `json:"rate,omitempty"`
}

// Hub fans the latest frame out to websocket clients at a fixed rate. The
// simulation publishes; clients never feed anything back into it.
type Hub struct {
	mu     sync.Mutex
	latest app.Frame
	seq    uint64

	rate      int
	writeWait time.Duration
	upgrader  websocket.Upgrader
	log       zerolog.Logger

	clientsMu sync.Mutex
	clients   int
	active    sync.WaitGroup
}

// NewHub returns a hub sending at most rate frames per second to each client.
func NewHub(rate int, log zerolog.Logger) *Hub {
	if rate <= 0 {
		rate = DefaultRate
	}
	return &Hub{
		rate:      rate,
		writeWait: DefaultWriteWait,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		log: log.With().Str("component", "stream").Logger(),
	}
}

// Publish replaces the latest frame.
func (h *Hub) Publish(f app.Frame) {
	h.mu.Lock()
	h.latest = f
	h.seq++
	h.mu.Unlock()
}

// Attach publishes every frame the session triggers on bus.
func (h *Hub) Attach(bus *event.Bus) event.Token {
	return bus.On(app.FrameEvent, func(args ...any) {
		if len(args) == 0 {
			return
		}
		if f, ok := args[0].(app.Frame); ok {
			h.Publish(f)
		}
	})
}

func (h *Hub) snapshot() (app.Frame, uint64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.latest, h.seq
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	h.clientsMu.Lock()
	defer h.clientsMu.Unlock()
	return h.clients
}

func (h *Hub) addClient(d int) {
	h.clientsMu.Lock()
	h.clients += d
	h.clientsMu.Unlock()
}

// Handler upgrades requests to websocket connections and streams frames.
func (h *Hub) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := h.upgrader.Upgrade(w, r, nil)
		if err != nil {
			h.log.Warn().Err(err).Str("remote", r.RemoteAddr).Msg("upgrade failed")
			return
		}
		h.active.Add(1)
		defer h.active.Done()
		h.addClient(1)
		defer h.addClient(-1)
		h.log.Info().Str("remote", r.RemoteAddr).Msg("client connected")
		h.serve(r.Context(), conn)
		h.log.Info().Str("remote", r.RemoteAddr).Msg("client disconnected")
	})
}

func (h *Hub) serve(ctx context.Context, conn *websocket.Conn) {
	defer conn.Close()

	// drain and discard; a read error means the client went away
	gone := make(chan struct{})
	go func() {
		defer close(gone)
		for {
			if _, _, err := conn.NextReader(); err != nil {
				return
			}
		}
	}()

	if err := h.write(conn, Message{Type: "hello", Rate: h.rate}); err != nil {
		return
	}

	ticker := time.NewTicker(time.Second / time.Duration(h.rate))
	defer ticker.Stop()
	ping := time.NewTicker(DefaultPingPeriod)
	defer ping.Stop()

	var sent uint64
	for {
		select {
		case <-ctx.Done():
			msg := websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down")
			_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(h.writeWait))
			return
		case <-gone:
			return
		case <-ping.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(h.writeWait)); err != nil {
				return
			}
		case <-ticker.C:
			f, seq := h.snapshot()
			if seq == sent {
				continue
			}
			if err := h.write(conn, Message{Type: "frame", Frame: &f}); err != nil {
				h.log.Debug().Err(err).Msg("dropping slow client")
				return
			}
			sent = seq
		}
	}
}

func (h *Hub) write(conn *websocket.Conn, m Message) error {
	if err := conn.SetWriteDeadline(time.Now().Add(h.writeWait)); err != nil {
		return err
	}
	return conn.WriteJSON(m)
}

// Serve listens on addr and serves the hub at /ws until ctx is cancelled.
func Serve(ctx context.Context, addr string, h *Hub) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return ServeListener(ctx, ln, h)
}

// ServeListener is Serve on an existing listener. Cancelling ctx also ends
// every client stream, and ServeListener returns once they have closed.
func ServeListener(ctx context.Context, ln net.Listener, h *Hub) error {
	mux := http.NewServeMux()
	mux.Handle("/ws", h.Handler())
	srv := &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
		// hijacked connections are invisible to Shutdown, so their request
		// contexts carry ctx instead
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	errc := make(chan error, 1)
	go func() { errc <- srv.Serve(ln) }()
	h.log.Info().Str("addr", ln.Addr().String()).Msg("pose stream listening")

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		done := make(chan struct{})
		go func() {
			h.active.Wait()
			close(done)
		}()
		select {
		case <-done:
		case <-shutdownCtx.Done():
			h.log.Warn().Int("clients", h.Clients()).Msg("client streams still open after shutdown")
		}
		return ctx.Err()
	}
}
