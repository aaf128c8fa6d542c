package http

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/toodoo/core/internal/application/services"
	"github.com/toodoo/core/internal/infrastructure/config"
	"github.com/toodoo/core/internal/infrastructure/logger"
	"github.com/toodoo/core/internal/ports"
)

// MessagingHandler handles conversation and chat history requests
type MessagingHandler struct {
	messagingService *services.MessagingService
	chatCfg          config.ChatConfig
	logger           *logger.Logger
}

// NewMessagingHandler creates a new messaging handler
func NewMessagingHandler(messagingService *services.MessagingService, chatCfg config.ChatConfig, logger *logger.Logger) *MessagingHandler {
	return &MessagingHandler{
		messagingService: messagingService,
		chatCfg:          chatCfg,
		logger:           logger,
	}
}

// Inbox handles listing the caller's conversations
func (h *MessagingHandler) Inbox(c echo.Context) error {
	actor := getUserIDFromContext(c)

	conversations, err := h.messagingService.Inbox(c.Request().Context(), actor)
	if err != nil {
		h.logger.Error("Inbox failed", "error", err, "user_id", actor)
		return mapDomainError(err, "Failed to list conversations")
	}

	return c.JSON(http.StatusOK, conversations)
}

// StartConversation finds or creates the two-party conversation with the
// named user.
func (h *MessagingHandler) StartConversation(c echo.Context) error {
	actor := getUserIDFromContext(c)

	var req ports.StartConversationRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	conversation, err := h.messagingService.StartConversation(c.Request().Context(), actor, req.Username)
	if err != nil {
		h.logger.Error("Start conversation failed", "error", err, "user_id", actor, "peer", req.Username)
		return mapDomainError(err, "Failed to start conversation")
	}

	return c.JSON(http.StatusOK, conversation)
}

// DeleteConversation handles deleting a conversation
func (h *MessagingHandler) DeleteConversation(c echo.Context) error {
	actor := getUserIDFromContext(c)

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid conversation ID")
	}

	if err := h.messagingService.DeleteConversation(c.Request().Context(), actor, id); err != nil {
		h.logger.Error("Delete conversation failed", "error", err, "conversation_id", id, "user_id", actor)
		return mapDomainError(err, "Failed to delete conversation")
	}

	return c.JSON(http.StatusOK, ports.MessageResponse{Message: "Conversation deleted successfully"})
}

// ListMessages handles listing a conversation's message history
func (h *MessagingHandler) ListMessages(c echo.Context) error {
	actor := getUserIDFromContext(c)

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid conversation ID")
	}

	messages, err := h.messagingService.ListMessages(c.Request().Context(), actor, id)
	if err != nil {
		return mapDomainError(err, "Failed to list messages")
	}

	return c.JSON(http.StatusOK, messages)
}

// SendMessage handles posting a message into a conversation over HTTP
func (h *MessagingHandler) SendMessage(c echo.Context) error {
	actor := getUserIDFromContext(c)

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid conversation ID")
	}

	var req ports.SendMessageRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	message, err := h.messagingService.SendMessage(c.Request().Context(), actor, id, req.Content)
	if err != nil {
		h.logger.Error("Send message failed", "error", err, "conversation_id", id, "user_id", actor)
		return mapDomainError(err, "Failed to send message")
	}

	return c.JSON(http.StatusCreated, message)
}

// ChatHistory handles listing the shared room's persisted history
func (h *MessagingHandler) ChatHistory(c echo.Context) error {
	limit := h.chatCfg.HistoryLimit

	if limitStr := c.QueryParam("limit"); limitStr != "" {
		n, err := strconv.Atoi(limitStr)
		if err != nil || n < 1 {
			return echo.NewHTTPError(http.StatusBadRequest, "Invalid limit parameter")
		}
		limit = n
	}

	messages, err := h.messagingService.ChatHistory(c.Request().Context(), h.chatCfg.GlobalRoom, limit)
	if err != nil {
		h.logger.Error("Chat history failed", "error", err)
		return mapDomainError(err, "Failed to list chat history")
	}

	return c.JSON(http.StatusOK, messages)
}
