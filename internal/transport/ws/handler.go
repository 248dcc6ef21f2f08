package ws

import (
	"net/http"
	"net/url"

	"github.com/vedran77/inkwell/internal/logging"
	"github.com/vedran77/inkwell/internal/transport/http/middleware"
	"nhooyr.io/websocket"
)

// ServeWS returns an HTTP handler that upgrades to WebSocket. The connection
// is served on the request goroutine until it closes.
func ServeWS(hub *Hub, originPatterns []string, log logging.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		reqLog := logging.FromContext(ctx, log)

		conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			OriginPatterns: originPatterns,
		})
		if err != nil {
			reqLog.Warn(ctx, "ws accept failed", "error", err)
			return
		}
		conn.SetReadLimit(maxMessageSize)

		client := NewClient(hub, conn, middleware.GetPrincipal(ctx), reqLog)
		if !hub.Register(client) {
			conn.Close(websocket.StatusGoingAway, "server shutting down")
			return
		}

		go client.WritePump()
		client.ReadPump(ctx)
	}
}

// OriginPatterns turns allowed origins like "https://blog.example.com" into
// the host patterns websocket.Accept matches against.
func OriginPatterns(origins []string) []string {
	var out []string
	for _, o := range origins {
		u, err := url.Parse(o)
		if err != nil || u.Host == "" {
			out = append(out, o)
			continue
		}
		out = append(out, u.Host)
	}
	return out
}
