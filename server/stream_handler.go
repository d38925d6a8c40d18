package server

import (
	"context"
	"net/http"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Cross-origin policy is enforced by the deployment's edge; the token
	// check in RequireAuth already gates who can open a stream.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// CreditStreamHandler upgrades to a websocket and streams credit-balance
// events for the caller's selected company. The first frame is the snapshot
// fetched at subscription time; the stream ends when the client disconnects
// or the request context is cancelled, releasing the bus registration.
func (s *Server) CreditStreamHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := ClaimsFromContext(r.Context())
		if !ok {
			http.Error(w, "unauthenticated", http.StatusUnauthorized)
			return
		}

		sctx := s.sessionContext(claims)
		if !sctx.CompanySelected() {
			http.Error(w, "select a company before streaming", http.StatusConflict)
			return
		}

		// Subscribe before upgrading so a snapshot failure can still be
		// reported as a plain HTTP error.
		ctx, cancel := context.WithCancel(r.Context())
		defer cancel()

		events, err := s.bus.Subscribe(ctx, sctx.SelectedCompanyID)
		if err != nil {
			writeError(w, err)
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			s.log.Warn().Err(err).Msg("credit stream upgrade failed")
			return
		}
		defer conn.Close()

		// Read pump: the client sends nothing meaningful, but reading is how
		// we notice the disconnect.
		go func() {
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					cancel()
					return
				}
			}
		}()

		for event := range events {
			if err := conn.WriteJSON(event); err != nil {
				cancel()
				break
			}
		}
	}
}
