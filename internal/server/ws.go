package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"quizbuzzer/internal/protocol"
	"quizbuzzer/internal/wshub"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const maxFrameBytes = 64 << 10

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: s.anyOrigin(),
		OriginPatterns:     s.AllowedOrigins,
	})
	if err != nil {
		log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}
	defer conn.CloseNow()
	conn.SetReadLimit(maxFrameBytes)

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	client := &wshub.Client{ID: uuid.NewString(), Conn: conn, Send: make(chan []byte, sendBuffer)}
	s.Hub.Register(client)
	go client.WritePump(ctx)
	log.Debug().Str("conn", client.ID).Str("remote", r.RemoteAddr).Msg("websocket connected")

	c := &connection{id: client.ID}
	defer func() {
		s.leave(c)
		s.Hub.Unregister(client.ID)
		log.Debug().Str("conn", client.ID).Msg("websocket disconnected")
	}()

	for {
		typ, data, err := conn.Read(ctx)
		if err != nil {
			var ce websocket.CloseError
			if !errors.As(err, &ce) && ctx.Err() == nil {
				log.Debug().Err(err).Str("conn", client.ID).Msg("websocket read ended")
			}
			return
		}
		if typ != websocket.MessageText {
			continue
		}
		// malformed frames are dropped, the connection stays open
		var env protocol.Envelope
		if err := json.Unmarshal(data, &env); err != nil {
			log.Debug().Err(err).Str("conn", client.ID).Msg("malformed frame")
			continue
		}
		s.dispatch(c, env)
	}
}
