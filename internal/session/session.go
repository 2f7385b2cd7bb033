package session

import (
	"slices"
	"strings"
	"sync"
	"time"

	"quizbuzzer/internal/answers"
	"quizbuzzer/internal/buzz"
	"quizbuzzer/internal/countdown"
	"quizbuzzer/internal/events"
	"quizbuzzer/internal/players"
	"quizbuzzer/internal/protocol"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
)

// Publisher delivers outbound messages to the connections of one room.
type Publisher interface {
	Broadcast(msg protocol.Message)
	BroadcastExcept(connID string, msg protocol.Message)
	Send(connID string, msg protocol.Message)
}

type discard struct{}

func (discard) Broadcast(protocol.Message)               {}
func (discard) BroadcastExcept(string, protocol.Message) {}
func (discard) Send(string, protocol.Message)            {}

// Member is the typed record of one connection's place in a room,
// created at join and passed to every handler.
type Member struct {
	ConnID string
	Player string
	Room   string
	IsHost bool
}

type Config struct {
	Settings     Settings
	Clock        clockwork.Clock
	TickInterval time.Duration
	Bus          *events.Bus
}

type timerOptions struct {
	autoBuzz   bool
	stopOnBuzz bool
}

// Session is the state machine of one room. Every handler and every timer
// tick holds mu for its whole run, so room state changes one event at a
// time.
type Session struct {
	mu         sync.Mutex
	code       string
	settings   Settings
	hostConn   string
	members    map[string]Member
	players    *players.Store
	arbiter    *buzz.Arbiter
	answers    *answers.Collector
	surrender  *buzz.Surrender
	timer      *countdown.Timer
	timerOpts  timerOptions
	clock      clockwork.Clock
	pub        Publisher
	bus        *events.Bus
	closed     bool
	lastActive time.Time
}

func New(code string, pub Publisher, cfg Config) *Session {
	if cfg.Clock == nil {
		cfg.Clock = clockwork.NewRealClock()
	}
	if pub == nil {
		pub = discard{}
	}
	return &Session{
		code:       code,
		settings:   cfg.Settings,
		members:    make(map[string]Member),
		players:    players.NewStore(),
		arbiter:    buzz.NewArbiter(cfg.Settings.BuzzMode),
		answers:    answers.NewCollector(),
		surrender:  buzz.NewSurrender(),
		timer:      countdown.New(cfg.Clock, cfg.TickInterval),
		clock:      cfg.Clock,
		pub:        pub,
		bus:        cfg.Bus,
		lastActive: cfg.Clock.Now(),
	}
}

func (s *Session) Code() string {
	return s.code
}

// Join admits a connection. Hosts replace any previous host; participants
// are added to the scoreboard, keeping the score of a returning name.
// Empty and reserved names are refused.
func (s *Session) Join(connID, name string, isHost bool) (Member, bool) {
	name = strings.TrimSpace(name)
	if !isHost && (name == "" || name == buzz.NoPlayer) {
		return Member{}, false
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return Member{}, false
	}
	s.touch()

	m := Member{ConnID: connID, Player: name, Room: s.code, IsHost: isHost}
	s.members[connID] = m
	if isHost {
		s.hostConn = connID
		log.Info().Str("room", s.code).Str("conn", connID).Msg("host joined")
	} else {
		s.players.Add(name)
		s.refreshGate()
		log.Info().Str("room", s.code).Str("player", name).Msg("player joined")
	}
	s.publishState()
	return m, true
}

// Leave detaches a connection. The player's score is kept for a later
// rejoin; submission lock, MC selection, surrender flag and buzz queue
// slot are dropped once no other connection plays under that name.
func (s *Session) Leave(m Member) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.members[m.ConnID]; !ok {
		return
	}
	delete(s.members, m.ConnID)
	s.touch()

	if s.hostConn == m.ConnID {
		s.hostConn = ""
	}
	if !m.IsHost && !s.connected(m.Player) {
		s.answers.Forget(m.Player)
		s.surrender.ClearOne(m.Player)
		s.refreshGate()
		if s.arbiter.Forget(m.Player) && !s.closed {
			s.announceQueue()
		}
	}
	if s.closed {
		return
	}
	log.Info().Str("room", s.code).Str("player", m.Player).Bool("host", m.IsHost).Msg("member left")
	s.publishState()
}

// Close stops the timer and rejects every later event.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.timer.Reset()
}

func (s *Session) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// Empty reports whether no connection is attached.
func (s *Session) Empty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.members) == 0
}

func (s *Session) MemberCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.members)
}

func (s *Session) LastActive() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActive
}

func (s *Session) Settings() Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.settings
}

// ApplySettings merges a partial settings update from the host. A changed
// buzz mode hard-resets the round like buzzModeChanged.
func (s *Session) ApplySettings(m Member, p protocol.SettingsPayload) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.isHost(m) {
		return
	}
	prev := s.settings.BuzzMode
	s.settings.Apply(p)
	if s.settings.BuzzMode != prev {
		s.arbiter.SetMode(s.settings.BuzzMode)
		s.toAll(protocol.Message{Type: protocol.BuzzModeSet, Data: protocol.BuzzModeData{Mode: string(s.settings.BuzzMode)}})
	}
	s.publishState()
}

// ResetRoom wipes the room for everyone. The caller drops the session from
// the registry when it returns true.
func (s *Session) ResetRoom(m Member) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.isHost(m) {
		return false
	}
	s.closed = true
	s.timer.Reset()
	s.toAll(protocol.Message{Type: protocol.RoomReset})
	s.emit(events.Event{Type: events.RoomReset, Data: s.players.Scores()})
	log.Info().Str("room", s.code).Msg("room reset")
	return true
}

func (s *Session) isHost(m Member) bool {
	if s.closed || !m.IsHost || m.ConnID != s.hostConn {
		return false
	}
	s.touch()
	return true
}

func (s *Session) isParticipant(m Member) bool {
	if s.closed || m.IsHost {
		return false
	}
	if _, ok := s.members[m.ConnID]; !ok || !s.players.Has(m.Player) {
		return false
	}
	s.touch()
	return true
}

// target resolves whose row a message addresses: participants always act
// on themselves, the host names a known player.
func (s *Session) target(m Member, name string) (string, bool) {
	if s.isParticipant(m) {
		return m.Player, true
	}
	if s.isHost(m) && s.players.Has(name) {
		return name, true
	}
	return "", false
}

func (s *Session) connected(name string) bool {
	for _, mem := range s.members {
		if !mem.IsHost && mem.Player == name {
			return true
		}
	}
	return false
}

func (s *Session) connectedNames() []string {
	names := make([]string, 0, len(s.members))
	for _, mem := range s.members {
		if !mem.IsHost && !slices.Contains(names, mem.Player) {
			names = append(names, mem.Player)
		}
	}
	slices.Sort(names)
	return names
}

func (s *Session) touch() {
	s.lastActive = s.clock.Now()
}

func (s *Session) emit(ev events.Event) {
	ev.Room = s.code
	ev.At = s.clock.Now()
	s.bus.Publish(ev)
}

func (s *Session) toAll(msg protocol.Message) {
	s.pub.Broadcast(msg)
}

func (s *Session) toHost(msg protocol.Message) {
	if s.hostConn != "" {
		s.pub.Send(s.hostConn, msg)
	}
}

// toParticipants reaches everyone but the host.
func (s *Session) toParticipants(msg protocol.Message) {
	s.pub.BroadcastExcept(s.hostConn, msg)
}

func sound(name string) protocol.Message {
	return protocol.Message{Type: protocol.PlaySound, Data: protocol.SoundData{Sound: name}}
}
