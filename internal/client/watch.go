package client

import (
	"context"
	"fmt"
	"strings"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"inventory_back_end/internal/models"
)

func (c *Client) websocketURL(path string) string {
	base := c.BaseURL
	switch {
	case strings.HasPrefix(base, "https://"):
		base = "wss://" + strings.TrimPrefix(base, "https://")
	case strings.HasPrefix(base, "http://"):
		base = "ws://" + strings.TrimPrefix(base, "http://")
	}
	return base + path
}

// WatchProducts s'abonne au flux des changements produits. Le canal est fermé
// quand ctx est annulé ou que la connexion tombe.
func (c *Client) WatchProducts(ctx context.Context) (<-chan models.ProductEvent, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, c.websocketURL("/ws/products"), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open product feed: %w", err)
	}

	// Le serveur envoie {"type":"connected"} une fois l'abonnement actif.
	var hello map[string]interface{}
	if err := conn.ReadJSON(&hello); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to join product feed: %w", err)
	}

	out := make(chan models.ProductEvent, 16)

	go func() {
		<-ctx.Done()
		conn.Close()
	}()

	go func() {
		defer close(out)
		defer conn.Close()
		for {
			var ev models.ProductEvent
			if err := conn.ReadJSON(&ev); err != nil {
				if ctx.Err() == nil {
					zap.S().Warnf("Product feed closed: %v", err)
				}
				return
			}
			if ev.ID == "" {
				continue
			}
			select {
			case out <- ev:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}
