package ws

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/toodoo/core/internal/domain/entities"
	"github.com/toodoo/core/internal/infrastructure/config"
	"github.com/toodoo/core/internal/infrastructure/logger"
	"github.com/toodoo/core/internal/ports"
)

// Handler upgrades chat endpoints to websocket connections and bridges them
// to the hub. Every frame is persisted before it is broadcast, so the live
// channel never carries a message that history would not show.
type Handler struct {
	hub       *Hub
	messaging ports.MessagingService
	cfg       config.ChatConfig
	logger    *logger.Logger
	upgrader  websocket.Upgrader
}

// NewHandler creates a new websocket handler
func NewHandler(hub *Hub, messaging ports.MessagingService, cfg config.ChatConfig, logger *logger.Logger) *Handler {
	return &Handler{
		hub:       hub,
		messaging: messaging,
		cfg:       cfg,
		logger:    logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

// HandleGlobalChat serves the shared room. The inbound frame carries the
// sender's username, which resolves the sender for persistence.
func (h *Handler) HandleGlobalChat(c echo.Context) error {
	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}

	room := h.cfg.GlobalRoom
	client := newClient(h.hub, room, conn, h.cfg.SendBufferSize)
	h.hub.Join(room, client)

	go client.writePump()
	client.readPump(func(frame Frame) {
		if frame.Message == "" || frame.Username == "" {
			return
		}

		msg, err := h.messaging.SaveChatMessage(context.Background(), frame.Username, room, frame.Message)
		if err != nil {
			h.logger.Warn("Failed to persist chat message", "error", err, "room", room)
			return
		}

		h.broadcast(room, Frame{Message: msg.Content, Username: msg.SenderName})
	})

	return nil
}

// HandlePrivateChat serves one conversation's room. Only authenticated
// participants are admitted; everyone else is refused before the upgrade.
func (h *Handler) HandlePrivateChat(c echo.Context) error {
	conversationID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid conversation id")
	}

	actor, ok := c.Get("user_id").(uuid.UUID)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}

	_, err = h.messaging.GetConversation(c.Request().Context(), actor, conversationID)
	if err != nil {
		if errors.Is(err, entities.ErrNotParticipant) {
			return echo.NewHTTPError(http.StatusForbidden, "not a participant of this conversation")
		}
		if errors.Is(err, entities.ErrConversationNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "conversation not found")
		}
		return err
	}

	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}

	room := PrivateRoomName(conversationID)
	client := newClient(h.hub, room, conn, h.cfg.SendBufferSize)
	h.hub.Join(room, client)

	go client.writePump()
	client.readPump(func(frame Frame) {
		if frame.Message == "" {
			return
		}

		msg, err := h.messaging.SendMessage(context.Background(), actor, conversationID, frame.Message)
		if err != nil {
			h.logger.Warn("Failed to persist private message", "error", err, "conversation_id", conversationID)
			return
		}

		h.broadcast(room, Frame{Message: msg.Content, Username: msg.SenderName})
	})

	return nil
}

func (h *Handler) broadcast(room string, frame Frame) {
	payload, err := json.Marshal(frame)
	if err != nil {
		h.logger.Error("Failed to marshal chat frame", "error", err)
		return
	}

	h.hub.Broadcast(room, payload)
}
