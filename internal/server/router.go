// Package server exposes the chat service over HTTP and websockets.
package server

import (
	"context"
	"net/http"
	"path/filepath"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/Skufu/symptomcheck/internal/chat"
	"github.com/Skufu/symptomcheck/internal/store"
)

const maxBodyBytes = 1 << 20

type HealthChecker interface {
	Ping(ctx context.Context) error
}

type ChatProcessor interface {
	ProcessMessage(ctx context.Context, userID, message string) chat.Response
}

type SymptomLister interface {
	ListSymptoms(ctx context.Context) ([]store.Symptom, error)
}

// Deps are the collaborators of the router. Health may be nil when no store
// is configured.
type Deps struct {
	Chat       ChatProcessor
	Symptoms   SymptomLister
	Health     HealthChecker
	StaticRoot string
	RateLimit  RateLimitConfig
	Logger     *logrus.Logger
}

func NewRouter(d Deps) *gin.Engine {
	router := gin.New()
	router.Use(
		requestID(),
		accessLog(d.Logger),
		gin.Recovery(),
		limitBodySize(maxBodyBytes),
		cors.New(cors.Config{
			AllowOrigins:  []string{"*"},
			AllowMethods:  []string{"GET", "POST", "OPTIONS"},
			AllowHeaders:  []string{"Origin", "Content-Type", "Authorization", requestIDHeader},
			ExposeHeaders: []string{requestIDHeader},
			MaxAge:        12 * time.Hour,
		}),
	)

	router.Static("/static", d.StaticRoot)
	router.StaticFile("/", filepath.Join(d.StaticRoot, "index.html"))

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/readyz", readyHandler(d.Health))

	limiter := newClientLimiter(d.RateLimit)
	h := &handlers{chat: d.Chat, symptoms: d.Symptoms, limiter: limiter, log: d.Logger}

	api := router.Group("/api")
	api.POST("/chat", limiter.middleware(), h.postChat)
	// Websocket frames are limited one by one inside the handler.
	api.GET("/chat/ws", h.chatSocket)
	api.GET("/symptoms", h.listSymptoms)

	return router
}

func readyHandler(health HealthChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		if health == nil {
			c.JSON(http.StatusOK, gin.H{"status": "ok", "store": "disabled"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if err := health.Ping(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status": "degraded",
				"store":  "unhealthy: " + err.Error(),
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok", "store": "ok"})
	}
}
