// Package overlay serves indicator frames to overlay clients over
// websockets.
package overlay

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/udisondev/wayfinder/internal/indicator"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
)

// Indicator is the part of indicator.Service the overlay drives.
type Indicator interface {
	Subscribe(ctx context.Context, id string) (<-chan indicator.Frame, error)
	Unsubscribe(ctx context.Context, id string) error
	SetPosition(ctx context.Context, id string, pos indicator.Target) error
	SetTargets(ctx context.Context, id string, targets []indicator.Target) error
}

// Handler upgrades /ws?id=<subscriber> requests and bridges them to the
// indicator service.
type Handler struct {
	svc      Indicator
	upgrader websocket.Upgrader
}

// NewHandler creates a handler. checkOrigin may be nil to accept any
// origin.
func NewHandler(svc Indicator, checkOrigin func(*http.Request) bool) *Handler {
	if checkOrigin == nil {
		checkOrigin = func(*http.Request) bool { return true }
	}
	return &Handler{
		svc: svc,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     checkOrigin,
		},
	}
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	if id == "" {
		http.Error(w, "missing id", http.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Debug("websocket upgrade failed", "id", id, "error", err)
		return
	}

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	frames, err := h.svc.Subscribe(ctx, id)
	if err != nil {
		slog.Warn("overlay subscribe failed", "id", id, "error", err)
		msg := websocket.FormatCloseMessage(websocket.ClosePolicyViolation, err.Error())
		_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait))
		_ = conn.Close()
		return
	}
	slog.Info("overlay connected", "id", id, "remote", r.RemoteAddr)

	s := &session{
		id:     id,
		conn:   conn,
		svc:    h.svc,
		frames: frames,
		errs:   make(chan string, 8),
	}
	go s.writePump()
	s.readPump(ctx)

	// background: the request context is already cancelled here
	if err := h.svc.Unsubscribe(context.Background(), id); err != nil && !errors.Is(err, indicator.ErrStopped) {
		slog.Debug("overlay unsubscribe", "id", id, "error", err)
	}
	slog.Info("overlay disconnected", "id", id)
}

type session struct {
	id     string
	conn   *websocket.Conn
	svc    Indicator
	frames <-chan indicator.Frame
	errs   chan string
}

// readPump applies client messages until the connection fails.
func (s *session) readPump(ctx context.Context) {
	defer s.conn.Close()

	s.conn.SetReadLimit(maxMessageSize)
	_ = s.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var msg ClientMessage
		if err := s.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				slog.Debug("overlay read failed", "id", s.id, "error", err)
			}
			return
		}
		if err := s.apply(ctx, msg); err != nil {
			if errors.Is(err, indicator.ErrStopped) {
				return
			}
			select {
			case s.errs <- err.Error():
			default:
				slog.Debug("overlay error dropped", "id", s.id, "error", err)
			}
		}
	}
}

func (s *session) apply(ctx context.Context, msg ClientMessage) error {
	switch msg.Type {
	case TypePosition:
		return s.svc.SetPosition(ctx, s.id, indicator.Target{Location: msg.Location, X: msg.X, Y: msg.Y})
	case TypeTargets:
		targets := make([]indicator.Target, 0, len(msg.Targets))
		for _, t := range msg.Targets {
			targets = append(targets, toTarget(t))
		}
		return s.svc.SetTargets(ctx, s.id, targets)
	}
	return fmt.Errorf("unknown message type %q", msg.Type)
}

// writePump forwards frames and errors and keeps the connection alive.
// It returns when the frame channel closes or a write fails.
func (s *session) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = s.conn.Close()
	}()

	for {
		select {
		case f, ok := <-s.frames:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = s.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, "indicator stopped"))
				return
			}
			if err := s.conn.WriteJSON(frameMessage(f)); err != nil {
				slog.Debug("overlay frame write failed", "id", s.id, "error", err)
				return
			}

		case e := <-s.errs:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteJSON(ErrorMessage{Type: TypeError, Error: e}); err != nil {
				return
			}

		case <-ticker.C:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
