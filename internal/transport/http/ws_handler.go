package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"geo-quiz-service/internal/app"
	"geo-quiz-service/internal/domain"
	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// WSHandler is the map widget's channel: snapshots out, starts and clicks in.
type WSHandler struct {
	service  *app.GameService
	logger   *zap.Logger
	upgrader websocket.Upgrader
}

func NewWSHandler(service *app.GameService, logger *zap.Logger) *WSHandler {
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

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type clickPayload struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type outboundMessage struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

type errorPayload struct {
	Message string `json:"message"`
}

// ServeWS upgrades the request and streams the session's render state until either side hangs up.
// The session has been authorised by sessionAuth.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	updates, cancel, err := h.service.Subscribe(r.Context(), sessionID)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	defer cancel()

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("ws upgrade failed", zap.String("session_id", sessionID), zap.Error(err))
		return
	}
	defer conn.Close()

	log := h.logger.With(zap.String("session_id", sessionID))
	if claims := claimsFrom(r); claims != nil {
		log = log.With(zap.String("player", claims.Player))
	}
	log.Debug("ws connected")

	send := make(chan outboundMessage, 16)
	closeSignals := make(chan struct{})
	writerDone := make(chan struct{})
	updatesDone := make(chan struct{})

	// Single writer: gorilla connections allow one concurrent writer.
	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				log.Debug("ws write error", zap.Error(err))
				_ = conn.Close()
				return
			}
		}
	}()

	push := func(msg outboundMessage) bool {
		select {
		case send <- msg:
			return true
		case <-writerDone:
			return false
		case <-closeSignals:
			return false
		}
	}

	go func() {
		defer close(updatesDone)
		for {
			select {
			case snap, ok := <-updates:
				if !ok {
					// session closed or reaped; unblock the reader
					_ = conn.Close()
					return
				}
				if !push(outboundMessage{Type: "state", Payload: snap}) {
					return
				}
			case <-closeSignals:
				return
			}
		}
	}()

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		if err := h.handleInbound(r, sessionID, inbound); err != nil {
			if !push(outboundMessage{Type: "error", Payload: errorPayload{Message: err.Error()}}) {
				break
			}
		}
	}

	close(closeSignals)
	<-updatesDone
	close(send)
	<-writerDone
	log.Debug("ws disconnected")
}

var (
	errInvalidClick       = errors.New("invalid click payload")
	errUnsupportedMessage = errors.New("unsupported message type")
)

func (h *WSHandler) handleInbound(r *http.Request, sessionID string, inbound inboundMessage) error {
	switch inbound.Type {
	case "start":
		return h.service.Start(r.Context(), sessionID)
	case "click":
		var payload clickPayload
		if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
			return errInvalidClick
		}
		return h.service.Guess(r.Context(), sessionID, domain.Coordinate{Lat: payload.Lat, Lng: payload.Lng})
	default:
		return errUnsupportedMessage
	}
}
