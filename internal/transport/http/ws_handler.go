package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"daily-challenge-service/internal/app"
	"daily-challenge-service/internal/domain"
)

const pingInterval = 30 * time.Second

// WSHandler streams live leaderboard snapshots to watchers.
type WSHandler struct {
	service  *app.DailyChallengeService
	upgrader websocket.Upgrader
	logger   *slog.Logger
}

func NewWSHandler(service *app.DailyChallengeService, logger *slog.Logger) *WSHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &WSHandler{
		service: service,
		logger:  logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

// ServeWS upgrades the request and pushes a snapshot after every accepted
// submission for the requested (date, type). Client messages are ignored.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	date := q.Get("date")
	t := domain.ParseChallengeType(q.Get("type"))

	updates, cancel, err := h.service.Subscribe(r.Context(), date, t)
	if err != nil {
		if domain.IsValidation(err) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.Error("live leaderboard subscribe failed", slog.String("date", date), slog.String("type", t.String()), slog.String("error", err.Error()))
		writeError(w, http.StatusServiceUnavailable, "live leaderboard unavailable")
		return
	}
	defer cancel()

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("ws upgrade failed", slog.String("error", err.Error()))
		return
	}
	defer conn.Close()

	readerDone := make(chan struct{})

	// Reads only to notice the peer going away.
	go func() {
		defer close(readerDone)
		for {
			if _, _, err := conn.NextReader(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case lb, ok := <-updates:
			if !ok {
				return
			}
			if err := conn.WriteJSON(outboundMessage[domain.Leaderboard]{Type: "leaderboard", Payload: lb}); err != nil {
				h.logger.Warn("ws write error", slog.String("error", err.Error()))
				return
			}
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(5*time.Second)); err != nil {
				return
			}
		case <-readerDone:
			return
		}
	}
}
