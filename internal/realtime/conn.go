package realtime

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"ridehail/pkg/jwt"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// wsConn wraps a websocket.Conn with a write mutex.
// gorilla/websocket allows one concurrent writer; this enforces that.
type wsConn struct {
	mu sync.Mutex
	ws *websocket.Conn
}

func (c *wsConn) Send(f Frame) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ws.WriteJSON(f)
}

// UserSource confirms the token's subject still exists.
type UserSource interface {
	Exists(ctx context.Context, userID string) bool
}

// Gateway upgrades realtime connections and feeds inbound frames to the
// location ingest path.
type Gateway struct {
	hub    *Hub
	users  UserSource
	ingest *Ingestor
}

// NewGateway wires the realtime gateway.
func NewGateway(hub *Hub, users UserSource, ingest *Ingestor) *Gateway {
	return &Gateway{hub: hub, users: users, ingest: ingest}
}

// Routes returns a chi.Router for the /ws mount point.
func (g *Gateway) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/trips", g.HandleWS)
	return r
}

// HandleWS authenticates the handshake's query token, upgrades the
// connection, and subscribes it to the subject's own mailbox. A missing
// or invalid token, or an unknown user, rejects the connection before it
// joins any group.
func (g *Gateway) HandleWS(w http.ResponseWriter, r *http.Request) {
	claims, err := jwt.FromQuery(r)
	if err != nil {
		http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
		return
	}
	if !g.users.Exists(r.Context(), claims.UserID) {
		http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
		return
	}

	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[realtime] upgrade error: %v", err)
		return
	}

	conn := &wsConn{ws: ws}
	subject := Subject(claims.UserID)
	g.hub.Subscribe(subject, conn)
	log.Printf("[realtime] %s connected", subject)

	defer func() {
		g.hub.Unsubscribe(subject, conn)
		ws.Close()
		log.Printf("[realtime] %s disconnected", subject)
	}()

	for {
		_, raw, err := ws.ReadMessage()
		if err != nil {
			return
		}

		var env Envelope
		if err := json.Unmarshal(raw, &env); err != nil {
			_ = conn.Send(Err(EventLocationUpdate, "malformed frame"))
			continue
		}

		switch env.Type {
		case TypeLocationUpdate:
			var report LocationReport
			if err := json.Unmarshal(env.Data, &report); err != nil {
				_ = conn.Send(Err(EventLocationUpdate, "malformed location update"))
				continue
			}
			if err := g.ingest.Handle(r.Context(), claims.UserID, report); err != nil {
				_ = conn.Send(Err(EventLocationUpdate, err.Error()))
			}
		default:
			_ = conn.Send(Err(env.Type, "unknown message type"))
		}
	}
}
