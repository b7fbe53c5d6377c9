package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/vncsmyrnk/covervote/internal/core/domain"
	"github.com/vncsmyrnk/covervote/internal/core/ports"
	"github.com/vncsmyrnk/covervote/internal/logger"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
)

type liveMessage struct {
	Event string             `json:"event"`
	Data  domain.TallyUpdate `json:"data"`
}

type LiveHandler struct {
	broadcaster ports.Broadcaster
	upgrader    websocket.Upgrader
	logger      *zap.Logger
}

func NewLiveHandler(broadcaster ports.Broadcaster, allowedOrigins []string, l *zap.Logger) *LiveHandler {
	return &LiveHandler{
		broadcaster: broadcaster,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return originAllowed(allowedOrigins, r.Header.Get("Origin"))
			},
		},
		logger: logger.Resolve(l),
	}
}

// Live godoc
// @Summary      Live tally stream
// @Description  Websocket. The first message is `initialData` with the full vote history, followed by a `voteUpdate` per accepted vote.
// @Tags         results
// @Router       /api/live [get]
func (h *LiveHandler) Live(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Debug("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	updates, unsubscribe := h.broadcaster.Subscribe(ctx)
	defer unsubscribe()

	go readUntilClosed(conn, cancel)

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case update, ok := <-updates:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, ""))
				return
			}
			if err := conn.WriteJSON(liveMessage{Event: update.Event, Data: update}); err != nil {
				h.logger.Debug("live write failed", zap.Error(err))
				return
			}
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		}
	}
}

// readUntilClosed consumes client frames so pongs and close frames are handled.
func readUntilClosed(conn *websocket.Conn, cancel context.CancelFunc) {
	defer cancel()
	conn.SetReadLimit(maxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func originAllowed(allowed []string, origin string) bool {
	if origin == "" {
		return true
	}
	for _, a := range allowed {
		if a == "*" || a == origin {
			return true
		}
	}
	return false
}
