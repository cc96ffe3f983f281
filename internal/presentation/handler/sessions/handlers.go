package sessions

import (
	"net/http"
	"slices"

	"github.com/anchorsync/anchorsync/internal/infrastructure/configs"
	"github.com/anchorsync/anchorsync/internal/infrastructure/session"
	"github.com/anchorsync/anchorsync/internal/infrastructure/ws"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Handler upgrades HTTP requests into relay connections. Each accepted
// socket gets an opaque connection handle and two pump goroutines; the
// relay takes over from there.
type Handler struct {
	relay    *ws.Relay
	cfg      configs.RelayConfig
	upgrader websocket.Upgrader
	logger   *zap.SugaredLogger
}

func NewHandler(relay *ws.Relay, cfg configs.RelayConfig, allowedOrigins []string, logger *zap.SugaredLogger) *Handler {
	return &Handler{
		relay: relay,
		cfg:   cfg,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(allowedOrigins),
		},
		logger: logger,
	}
}

func (h *Handler) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warnw("websocket upgrade failed", "remote", r.RemoteAddr, "err", err)
		return
	}

	id := session.ConnID(uuid.NewString())
	client := ws.NewClient(id, conn, h.cfg.SendBuffer, h.cfg.MaxMessageBytes, h.logger)

	h.relay.Register(id, client)

	go client.WritePump()
	go client.ReadPump(h.relay)

	h.logger.Infow("connection accepted", "conn", id, "remote", r.RemoteAddr)
}

func originChecker(allowed []string) func(r *http.Request) bool {
	if slices.Contains(allowed, "*") {
		return func(r *http.Request) bool { return true }
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		return slices.Contains(allowed, origin)
	}
}
