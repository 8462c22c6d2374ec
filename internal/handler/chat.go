package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"carvalue/internal/logging"
	"carvalue/internal/model"
	"carvalue/internal/service"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ChatHandler handles the conversational valuation endpoints
type ChatHandler struct {
	conversations *service.ConversationService
	logger        *zap.Logger
}

// NewChatHandler creates a new chat handler
func NewChatHandler(conversations *service.ConversationService, logger *zap.Logger) *ChatHandler {
	return &ChatHandler{
		conversations: conversations,
		logger:        logger,
	}
}

// wsFrame is one message on the chat websocket
type wsFrame struct {
	Type  string `json:"type"`
	Data  any    `json:"data,omitempty"`
	Error string `json:"error,omitempty"`
}

// CreateSession handles POST /api/v1/chat/sessions
func (h *ChatHandler) CreateSession(c *gin.Context) {
	session := h.conversations.CreateSession()
	c.JSON(http.StatusCreated, h.conversations.Snapshot(session))
}

// GetSession handles GET /api/v1/chat/sessions/:id
func (h *ChatHandler) GetSession(c *gin.Context) {
	session, err := h.conversations.GetSession(c.Param("id"))
	if err != nil {
		writeChatError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.conversations.Snapshot(session))
}

// DeleteSession handles DELETE /api/v1/chat/sessions/:id
func (h *ChatHandler) DeleteSession(c *gin.Context) {
	if err := h.conversations.DeleteSession(c.Param("id")); err != nil {
		writeChatError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// SendMessage handles POST /api/v1/chat/sessions/:id/messages
func (h *ChatHandler) SendMessage(c *gin.Context) {
	var req model.ChatMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	ctx := logging.WithSessionID(c.Request.Context(), c.Param("id"))
	resp, err := h.conversations.HandleTurn(ctx, c.Param("id"), req.Content, nil)
	if err != nil {
		writeChatError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// StreamMessage handles POST /api/v1/chat/sessions/:id/stream - SSE streaming turn
func (h *ChatHandler) StreamMessage(c *gin.Context) {
	var req model.ChatMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	// reject unknown sessions before switching to an event stream
	if _, err := h.conversations.GetSession(c.Param("id")); err != nil {
		writeChatError(c, err)
		return
	}

	flusher, ok := startSSE(c)
	if !ok {
		return
	}

	sendSSE(c, "start", gin.H{"session_id": c.Param("id")})
	flusher.Flush()

	ctx := logging.WithSessionID(c.Request.Context(), c.Param("id"))
	resp, err := h.conversations.HandleTurn(ctx, c.Param("id"), req.Content, func(event string, data any) error {
		sendSSE(c, event, data)
		flusher.Flush()
		return nil
	})
	if err != nil {
		sendSSE(c, "error", gin.H{"error": err.Error()})
		flusher.Flush()
		return
	}

	sendSSE(c, "turn", resp)
	flusher.Flush()

	sendSSE(c, "done", nil)
	flusher.Flush()
}

// WebSocket handles GET /api/v1/chat/ws. The session is taken from the
// session_id query parameter or created on connect.
func (h *ChatHandler) WebSocket(c *gin.Context) {
	var (
		session *model.ChatSession
		err     error
	)
	if id := c.Query("session_id"); id != "" {
		session, err = h.conversations.GetSession(id)
		if err != nil {
			writeChatError(c, err)
			return
		}
	}

	conn, err := websocket.Accept(c.Writer, c.Request, &websocket.AcceptOptions{InsecureSkipVerify: true})
	if err != nil {
		h.logger.Warn("websocket accept failed", zap.Error(err))
		return
	}
	defer conn.Close(websocket.StatusInternalError, "internal error")

	if session == nil {
		session = h.conversations.CreateSession()
	}

	ctx := logging.WithSessionID(c.Request.Context(), session.ID)
	if err := writeFrame(ctx, conn, wsFrame{Type: "session", Data: h.conversations.Snapshot(session)}); err != nil {
		return
	}

	for {
		var req model.ChatMessageRequest
		if err := wsjson.Read(ctx, conn, &req); err != nil {
			switch websocket.CloseStatus(err) {
			case websocket.StatusNormalClosure, websocket.StatusGoingAway:
				conn.Close(websocket.StatusNormalClosure, "")
			default:
				h.logger.Debug("websocket read ended", zap.String("session_id", session.ID), zap.Error(err))
			}
			return
		}

		resp, err := h.conversations.HandleTurn(ctx, session.ID, req.Content, func(event string, data any) error {
			return writeFrame(ctx, conn, wsFrame{Type: event, Data: data})
		})
		if err != nil {
			if werr := writeFrame(ctx, conn, wsFrame{Type: "error", Error: err.Error()}); werr != nil {
				return
			}
			if errors.Is(err, service.ErrSessionNotFound) {
				conn.Close(websocket.StatusPolicyViolation, "session expired")
				return
			}
			continue
		}

		if err := writeFrame(ctx, conn, wsFrame{Type: "turn", Data: resp}); err != nil {
			return
		}
	}
}

// Examples handles GET /api/v1/chat/examples
func (h *ChatHandler) Examples(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"examples": service.QuickPrompts})
}

// GetTheme handles GET /api/v1/chat/sessions/:id/theme
func (h *ChatHandler) GetTheme(c *gin.Context) {
	session, err := h.conversations.GetSession(c.Param("id"))
	if err != nil {
		writeChatError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"dark_mode": session.DarkMode})
}

// SetTheme handles PUT /api/v1/chat/sessions/:id/theme
func (h *ChatHandler) SetTheme(c *gin.Context) {
	var req model.ThemeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	session, err := h.conversations.SetDarkMode(c.Param("id"), *req.DarkMode)
	if err != nil {
		writeChatError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"dark_mode": session.DarkMode})
}

func writeFrame(ctx context.Context, conn *websocket.Conn, frame wsFrame) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	return wsjson.Write(ctx, conn, frame)
}

func writeChatError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrSessionNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Session not found"})
	case errors.Is(err, service.ErrTurnInProgress):
		c.JSON(http.StatusConflict, gin.H{"error": "A message is already being processed"})
	case errors.Is(err, service.ErrEmptyMessage):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Message is empty"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Chat failed: " + err.Error()})
	}
}
