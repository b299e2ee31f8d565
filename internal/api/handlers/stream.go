package handlers

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/wonny/twstrategy/internal/brain"
	"github.com/wonny/twstrategy/pkg/logger"
)

const (
	pingInterval = 30 * time.Second
	pongWait     = 60 * time.Second
	writeWait    = 10 * time.Second

	// Boards queued per client; older ones are dropped for slow readers
	streamBuffer = 4
)

// StreamHandler pushes every published leaderboard over a websocket
type StreamHandler struct {
	service  RankingService
	upgrader websocket.Upgrader
	logger   *logger.Logger
}

// NewStreamHandler creates a new leaderboard stream handler
func NewStreamHandler(service RankingService, log *logger.Logger) *StreamHandler {
	return &StreamHandler{
		service: service,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		logger: log,
	}
}

// Stream upgrades the connection, sends the current board and then each new one
// GET /api/ranking/stream
func (h *StreamHandler) Stream(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.WithError(err).Warn("Websocket upgrade failed")
		return
	}
	defer conn.Close()

	boards := make(chan brain.RankingView, streamBuffer)
	unsubscribe := h.service.Subscribe(func(v brain.RankingView) {
		select {
		case boards <- v:
		default:
			h.logger.Debug("Stream client lagging, board dropped")
		}
	})
	defer unsubscribe()

	if current := h.service.Leaderboard(); current != nil {
		boards <- *current
	}

	closed := make(chan struct{})
	go h.readLoop(conn, closed)

	h.logger.WithField("remote", r.RemoteAddr).Info("Stream client connected")

	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-closed:
			h.logger.WithField("remote", r.RemoteAddr).Info("Stream client disconnected")
			return
		case <-r.Context().Done():
			return
		case v := <-boards:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(v); err != nil {
				h.logger.WithError(err).Warn("Failed to write leaderboard")
				return
			}
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, []byte{}, time.Now().Add(writeWait)); err != nil {
				h.logger.WithError(err).Warn("Failed to send ping")
				return
			}
		}
	}
}

// readLoop drains client frames so pongs and close frames are processed
func (h *StreamHandler) readLoop(conn *websocket.Conn, closed chan<- struct{}) {
	defer close(closed)

	conn.SetReadLimit(512)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
