package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

const (
	defaultUserID      = "anonymous"
	errNoMessage       = "No message provided"
	errDatabaseDown    = "Database connection error"
	errTooManyRequests = "Too many requests"
)

type chatRequest struct {
	UserID  string `json:"user_id"`
	Message string `json:"message"`
}

func (r chatRequest) normalize() (chatRequest, bool) {
	if r.UserID == "" {
		r.UserID = defaultUserID
	}
	return r, r.Message != ""
}

type handlers struct {
	chat     ChatProcessor
	symptoms SymptomLister
	limiter  *clientLimiter
	log      *logrus.Logger
}

func (h *handlers) postChat(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errNoMessage})
		return
	}
	req, ok := req.normalize()
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": errNoMessage})
		return
	}

	c.JSON(http.StatusOK, h.chat.ProcessMessage(c.Request.Context(), req.UserID, req.Message))
}

func (h *handlers) listSymptoms(c *gin.Context) {
	symptoms, err := h.symptoms.ListSymptoms(c.Request.Context())
	if err != nil {
		h.log.WithError(err).Error("Failed to list symptoms")
		c.JSON(http.StatusInternalServerError, gin.H{"error": errDatabaseDown})
		return
	}
	c.JSON(http.StatusOK, symptoms)
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin:     func(*http.Request) bool { return true },
}

// chatSocket answers every inbound chat frame with one response frame until
// the client disconnects. Each frame draws from the client's rate limit.
func (h *handlers) chatSocket(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.WithError(err).Warn("Websocket upgrade failed")
		return
	}
	defer conn.Close()
	conn.SetReadLimit(maxBodyBytes)

	ctx := c.Request.Context()
	clientIP := c.ClientIP()
	for {
		var req chatRequest
		if err := conn.ReadJSON(&req); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				h.log.WithError(err).Warn("Websocket read failed")
			}
			return
		}

		var reply any
		norm, ok := req.normalize()
		switch {
		case !ok:
			reply = gin.H{"error": errNoMessage}
		case !h.limiter.allow(clientIP):
			reply = gin.H{"error": errTooManyRequests}
		default:
			reply = h.chat.ProcessMessage(ctx, norm.UserID, norm.Message)
		}
		if err := conn.WriteJSON(reply); err != nil {
			h.log.WithError(err).Warn("Websocket write failed")
			return
		}
	}
}
