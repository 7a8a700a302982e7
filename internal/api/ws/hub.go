package ws

import (
	"context"
	"net/http"

	"github.com/coder/websocket"
	"github.com/rs/zerolog/log"

	"github.com/gosuda/campusbot/internal/server/middleware"
	redisstore "github.com/gosuda/campusbot/internal/store/redis"
)

// Subscriber is the pub/sub side the hub reads from. *redisstore.PubSub
// satisfies it.
type Subscriber interface {
	Subscribe(ctx context.Context, channel string) (<-chan []byte, func(), error)
}

// Hub streams Redis pub/sub traffic to WebSocket clients.
type Hub struct {
	pubsub Subscriber
}

// NewHub creates a new WebSocket hub.
func NewHub(pubsub Subscriber) *Hub {
	return &Hub{pubsub: pubsub}
}

// ServeMisses streams the admin's tenant miss feed. Each message is a JSON
// encoded notify.MissEvent published when the assistant forwards a question.
func (h *Hub) ServeMisses(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := middleware.TenantIDFromContext(r.Context())
	if !ok {
		http.Error(w, "missing tenant", http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	messages, cleanup, err := h.pubsub.Subscribe(ctx, redisstore.MissChannel(tenantID))
	if err != nil {
		log.Error().Err(err).Str("tenant_id", tenantID).Msg("websocket subscribe")
		http.Error(w, "subscribe failed", http.StatusServiceUnavailable)
		return
	}
	defer cleanup()

	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		log.Error().Err(err).Msg("websocket accept")
		return
	}
	defer conn.CloseNow()

	// Clients never send; CloseRead handles control frames and cancels ctx
	// once the peer goes away.
	ctx = conn.CloseRead(ctx)

	for {
		select {
		case <-ctx.Done():
			_ = conn.Close(websocket.StatusNormalClosure, "connection closed")
			return
		case msg, msgOK := <-messages:
			if !msgOK {
				_ = conn.Close(websocket.StatusNormalClosure, "channel closed")
				return
			}
			if writeErr := conn.Write(ctx, websocket.MessageText, msg); writeErr != nil {
				log.Debug().Err(writeErr).Msg("websocket write")
				return
			}
		}
	}
}
