package realtime

import (
	"context"
	"net/http"
	"time"

	"github.com/dmitrijs2005/tasksync/internal/common"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// TokenVerifier resolves an access token to the caller's user id.
type TokenVerifier func(ctx context.Context, token string) (string, error)

type HandlerOptions struct {
	// RequireToken rejects upgrades that carry no ?token= query parameter.
	RequireToken bool
	// AllowedOrigin is matched against the Origin header; empty allows any.
	AllowedOrigin string
	PingInterval  time.Duration
}

// Handler upgrades GET /ws requests. A valid ?token= binds the socket to its
// user so it can only join that user's room.
func (h *Hub) Handler(verify TokenVerifier, opts HandlerOptions) gin.HandlerFunc {
	if opts.PingInterval <= 0 {
		opts.PingInterval = 30 * time.Second
	}

	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			return opts.AllowedOrigin == "" || opts.AllowedOrigin == "*" || origin == "" || origin == opts.AllowedOrigin
		},
	}

	return func(c *gin.Context) {
		ctx := c.Request.Context()

		var authUserID string
		if token := c.Query(common.AccessTokenQueryParam); token != "" {
			userID, err := verify(ctx, token)
			if err != nil {
				h.log.Warn(ctx, "websocket token rejected", "error", err)
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Invalid or expired token"})
				return
			}
			authUserID = userID
		} else if opts.RequireToken {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Authentication required"})
			return
		}

		ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			h.log.Error(ctx, "failed to upgrade the websocket", "error", err)
			return
		}

		conn := newConn(h, ws, authUserID)
		if err := h.register(conn); err != nil {
			_ = ws.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"), time.Now().Add(writeWait))
			_ = ws.Close()
			return
		}
		h.log.Info(ctx, "websocket client connected", "conn_id", conn.id, "user_id", authUserID)

		// the request context ends with the hijacked handler, so detach it
		conn.serve(context.WithoutCancel(ctx), opts.PingInterval)
		h.log.Info(ctx, "websocket client disconnected", "conn_id", conn.id)
	}
}
