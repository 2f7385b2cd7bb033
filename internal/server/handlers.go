package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"quizbuzzer/internal/protocol"
	"quizbuzzer/internal/rooms"

	"github.com/rs/zerolog/log"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("encode response")
	}
}

func (s *Server) handleCreateRoom(w http.ResponseWriter, r *http.Request) {
	room, err := s.Rooms.Create()
	if err != nil {
		log.Error().Err(err).Msg("create room")
		http.Error(w, "Failed to create room", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"code": room.Code})
}

// handleRoomState returns the participant view of a live room.
func (s *Server) handleRoomState(w http.ResponseWriter, r *http.Request) {
	room := s.Rooms.Get(r.PathValue("code"))
	if room == nil {
		http.Error(w, "Room not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, room.Session.Snapshot(false))
}

// handleEvents streams a room to read-only spectators over SSE, starting
// with the current participant view.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	code := rooms.NormalizeCode(r.PathValue("code"))
	room := s.Rooms.Get(code)
	if room == nil {
		http.Error(w, "Room not found", http.StatusNotFound)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	msgChan := s.Spectators.Subscribe(code)
	defer s.Spectators.Unsubscribe(code, msgChan)

	initial, err := json.Marshal(room.Session.Snapshot(false))
	if err == nil {
		writeEvent(w, protocol.PlayerUpdate, string(initial))
		flusher.Flush()
	}

	for {
		select {
		case <-r.Context().Done():
			return
		case msg, ok := <-msgChan:
			if !ok {
				return
			}
			writeEvent(w, msg.Event, msg.Data)
			flusher.Flush()
		}
	}
}

func writeEvent(w http.ResponseWriter, event, data string) {
	fmt.Fprintf(w, "event: %s\n", event)
	for _, line := range strings.Split(data, "\n") {
		fmt.Fprintf(w, "data: %s\n", line)
	}
	fmt.Fprint(w, "\n")
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.DB != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := s.DB.Ping(ctx); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "db_error", "error": err.Error()})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	clients, active := s.Hub.Stats()
	list := s.Rooms.List()
	infos := make([]rooms.Info, 0, len(list))
	for _, room := range list {
		infos = append(infos, room.Info())
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"connections": clients,
		"activeRooms": active,
		"rooms":       infos,
	})
}
