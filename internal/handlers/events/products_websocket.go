package events

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"inventory_back_end/internal/services"
)

const pingInterval = 30 * time.Second

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		// Les origines sont filtrées par le middleware CORS
		return true
	},
}

type Handler struct {
	events services.EventSubscriber
}

func NewHandler(events services.EventSubscriber) *Handler {
	return &Handler{events: events}
}

func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/ws/products", h.ProductsWebSocket)
}

// ProductsWebSocket pousse chaque création / modification / suppression de produit au client.
func (h *Handler) ProductsWebSocket(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		zap.S().Errorf("❌ Erreur upgrade WebSocket: %v", err)
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	events, err := h.events.Subscribe(ctx)
	if err != nil {
		zap.S().Errorf("❌ Abonnement événements produits: %v", err)
		conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseInternalServerErr, "events unavailable"))
		return
	}

	if err := conn.WriteJSON(gin.H{"type": "connected"}); err != nil {
		return
	}

	// Lecture en arrière-plan pour détecter la fermeture côté client.
	go func() {
		defer cancel()
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
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			if err := conn.WriteJSON(ev); err != nil {
				zap.S().Warnf("⚠️ Erreur envoi WebSocket: %v", err)
				return
			}
		case <-ticker.C:
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
