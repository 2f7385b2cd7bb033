package server

import (
	"encoding/json"

	"quizbuzzer/internal/protocol"
	"quizbuzzer/internal/rooms"
	"quizbuzzer/internal/session"

	"github.com/rs/zerolog/log"
)

// connection is the gateway's record of one websocket: which room it
// joined and as whom.
type connection struct {
	id     string
	member session.Member
	room   *rooms.Room
}

func (c *connection) joined() bool {
	return c.room != nil && !c.room.Session.Closed()
}

// decode reads a payload for the connection's room. A payload naming a
// different room is refused.
func decode[T any](c *connection, env protocol.Envelope) (T, bool) {
	var p T
	if len(env.Data) == 0 {
		return p, true
	}
	var ref protocol.RoomRef
	if err := json.Unmarshal(env.Data, &ref); err == nil && ref.Room != "" && rooms.NormalizeCode(ref.Room) != c.room.Code {
		log.Debug().Str("conn", c.id).Str("type", env.Type).Str("room", ref.Room).Msg("message for another room")
		return p, false
	}
	if err := json.Unmarshal(env.Data, &p); err != nil {
		log.Debug().Err(err).Str("conn", c.id).Str("type", env.Type).Msg("malformed payload")
		return p, false
	}
	return p, true
}

func (s *Server) dispatch(c *connection, env protocol.Envelope) {
	if env.Type == protocol.Join {
		var p protocol.JoinPayload
		if err := json.Unmarshal(env.Data, &p); err != nil {
			log.Debug().Err(err).Str("conn", c.id).Msg("malformed join")
			return
		}
		s.join(c, p)
		return
	}
	if !c.joined() {
		log.Debug().Str("conn", c.id).Str("type", env.Type).Msg("message before join")
		return
	}

	m, sess := c.member, c.room.Session
	switch env.Type {
	case protocol.Settings:
		if p, ok := decode[protocol.SettingsPayload](c, env); ok {
			sess.ApplySettings(m, p)
		}
	case protocol.Buzz:
		if _, ok := decode[protocol.BuzzPayload](c, env); ok {
			sess.Buzz(m)
		}
	case protocol.BuzzModeChanged:
		if p, ok := decode[protocol.BuzzModePayload](c, env); ok {
			sess.ChangeBuzzMode(m, p.Mode)
		}
	case protocol.Result:
		if p, ok := decode[protocol.ResultPayload](c, env); ok {
			sess.Result(m, p.Name, p.Type)
		}
	case protocol.ResetBuzz:
		if _, ok := decode[protocol.RoomRef](c, env); ok {
			sess.ResetBuzz(m)
		}
	case protocol.ResetRoom:
		if _, ok := decode[protocol.RoomRef](c, env); ok && sess.ResetRoom(m) {
			s.Hub.DropRoom(c.room.Code)
			s.Rooms.Delete(c.room.Code)
		}
	case protocol.AdjustPoints:
		if p, ok := decode[protocol.AdjustPointsPayload](c, env); ok {
			sess.AdjustPoints(m, p.Name, p.Delta)
		}
	case protocol.SetPoints:
		if p, ok := decode[protocol.SetPointsPayload](c, env); ok {
			sess.SetPoints(m, p.Name, p.Points)
		}
	case protocol.ResetAllPoints:
		if _, ok := decode[protocol.RoomRef](c, env); ok {
			sess.ResetAllPoints(m)
		}
	case protocol.TextUpdate:
		if p, ok := decode[protocol.TextUpdatePayload](c, env); ok {
			sess.TextUpdate(m, p.Text)
		}
	case protocol.ClearTexts:
		if _, ok := decode[protocol.RoomRef](c, env); ok {
			sess.ClearTexts(m)
		}
	case protocol.ClearSingleText:
		if p, ok := decode[protocol.TargetPayload](c, env); ok {
			sess.ClearSingleText(m, p.TargetName)
		}
	case protocol.LockTexts:
		if p, ok := decode[protocol.LockTextsPayload](c, env); ok {
			sess.LockTexts(m, p.Locked)
		}
	case protocol.LoginStatus:
		if p, ok := decode[protocol.LoginStatusPayload](c, env); ok {
			sess.LoginStatus(m, p.Name, p.LoggedIn, p.MCAnswers)
		}
	case protocol.UnlockText:
		if p, ok := decode[protocol.TargetPayload](c, env); ok {
			sess.UnlockText(m, p.TargetName)
		}
	case protocol.UnlockAllTexts:
		if _, ok := decode[protocol.RoomRef](c, env); ok {
			sess.UnlockAllTexts(m)
		}
	case protocol.MCAnswer:
		if p, ok := decode[protocol.MCAnswerPayload](c, env); ok {
			sess.MCAnswer(m, p.Answers)
		}
	case protocol.HostMCSolve:
		if p, ok := decode[protocol.MCSolvePayload](c, env); ok {
			sess.HostMCSolve(m, p.Solution)
		}
	case protocol.SurrenderToggle:
		if p, ok := decode[protocol.SurrenderPayload](c, env); ok {
			sess.SurrenderToggle(m, p.Name)
		}
	case protocol.SurrenderClear:
		if _, ok := decode[protocol.RoomRef](c, env); ok {
			sess.SurrenderClear(m)
		}
	case protocol.SurrenderClearSingle:
		if p, ok := decode[protocol.TargetPayload](c, env); ok {
			sess.SurrenderClearSingle(m, p.TargetName)
		}
	case protocol.StartTimer:
		if p, ok := decode[protocol.StartTimerPayload](c, env); ok {
			sess.StartTimer(m, p.Duration, p.AutoBuzz, p.StopOnBuzz)
		}
	case protocol.PauseTimer:
		if _, ok := decode[protocol.RoomRef](c, env); ok {
			sess.PauseTimer(m)
		}
	case protocol.ResumeTimer:
		if _, ok := decode[protocol.RoomRef](c, env); ok {
			sess.ResumeTimer(m)
		}
	case protocol.ResetTimer:
		if _, ok := decode[protocol.RoomRef](c, env); ok {
			sess.ResetTimer(m)
		}
	default:
		log.Debug().Str("conn", c.id).Str("type", env.Type).Msg("unknown message")
	}
}

// join attaches the connection to a room, creating the room on first use.
// A connection belongs to one room at a time.
func (s *Server) join(c *connection, p protocol.JoinPayload) {
	room, _ := s.Rooms.GetOrCreate(p.Room)
	if room == nil {
		return
	}
	s.leave(c)

	// the hub group must exist before the session publishes the join
	s.Hub.Join(room.Code, c.id)
	m, ok := room.Session.Join(c.id, p.Name, p.IsHost)
	if !ok {
		s.Hub.Leave(c.id)
		log.Debug().Str("conn", c.id).Str("room", room.Code).Str("name", p.Name).Msg("join refused")
		return
	}
	c.room, c.member = room, m
}

func (s *Server) leave(c *connection) {
	if c.room == nil {
		return
	}
	c.room.Session.Leave(c.member)
	s.Hub.Leave(c.id)
	c.room, c.member = nil, session.Member{}
}
