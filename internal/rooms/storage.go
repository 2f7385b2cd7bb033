package rooms

import (
	"sync"
	"time"

	"quizbuzzer/internal/session"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
)

const (
	defaultIdleTTL = 30 * time.Minute
	sweepInterval  = time.Minute
)

type Config struct {
	Session session.Config
	// Publisher builds the outbound channel of a new room.
	Publisher func(code string) session.Publisher
	IdleTTL   time.Duration
	Clock     clockwork.Clock
}

// Store maps room codes to live sessions. It is created once by the
// server and passed to the handlers.
type Store struct {
	mu    sync.Mutex
	rooms map[string]*Room
	cfg   Config
	done  chan struct{}
	once  sync.Once
}

func NewStore(cfg Config) *Store {
	if cfg.Clock == nil {
		cfg.Clock = clockwork.NewRealClock()
	}
	if cfg.Session.Clock == nil {
		cfg.Session.Clock = cfg.Clock
	}
	if cfg.IdleTTL <= 0 {
		cfg.IdleTTL = defaultIdleTTL
	}
	s := &Store{
		rooms: make(map[string]*Room),
		cfg:   cfg,
		done:  make(chan struct{}),
	}
	ticker := cfg.Clock.NewTicker(sweepInterval)
	go s.sweepStale(ticker)
	return s
}

// GetOrCreate returns the room for code, creating it on first join.
func (s *Store) GetOrCreate(code string) (*Room, bool) {
	code = NormalizeCode(code)
	if code == "" {
		return nil, false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if r, ok := s.rooms[code]; ok {
		return r, false
	}
	return s.newRoom(code), true
}

// Create opens a room under a freshly generated code.
func (s *Store) Create() (*Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	code, err := GenerateCode(func(c string) bool {
		_, exists := s.rooms[c]
		return exists
	})
	if err != nil {
		return nil, err
	}
	return s.newRoom(code), nil
}

func (s *Store) newRoom(code string) *Room {
	var pub session.Publisher
	if s.cfg.Publisher != nil {
		pub = s.cfg.Publisher(code)
	}
	room := &Room{
		Code:      code,
		Session:   session.New(code, pub, s.cfg.Session),
		CreatedAt: s.cfg.Clock.Now(),
	}
	s.rooms[code] = room
	log.Info().Str("room", code).Msg("room created")
	return room
}

func (s *Store) Get(code string) *Room {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rooms[NormalizeCode(code)]
}

// Delete closes the room's session and forgets it. A later join under the
// same code starts from scratch.
func (s *Store) Delete(code string) {
	code = NormalizeCode(code)
	s.mu.Lock()
	room, ok := s.rooms[code]
	delete(s.rooms, code)
	s.mu.Unlock()
	if ok {
		room.Session.Close()
		log.Info().Str("room", code).Msg("room deleted")
	}
}

func (s *Store) List() []*Room {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := make([]*Room, 0, len(s.rooms))
	for _, r := range s.rooms {
		list = append(list, r)
	}
	return list
}

// Sweep removes rooms with no connections whose last activity is older
// than the idle TTL, and returns their codes.
func (s *Store) Sweep(now time.Time) []string {
	var stale []*Room
	s.mu.Lock()
	for code, room := range s.rooms {
		if room.Session.Empty() && now.Sub(room.Session.LastActive()) > s.cfg.IdleTTL {
			stale = append(stale, room)
			delete(s.rooms, code)
		}
	}
	s.mu.Unlock()

	codes := make([]string, 0, len(stale))
	for _, room := range stale {
		room.Session.Close()
		codes = append(codes, room.Code)
	}
	if len(codes) > 0 {
		log.Info().Strs("rooms", codes).Msg("swept idle rooms")
	}
	return codes
}

// Stop ends the sweeper and closes every room.
func (s *Store) Stop() {
	s.once.Do(func() { close(s.done) })
	for _, room := range s.List() {
		s.Delete(room.Code)
	}
}

func (s *Store) sweepStale(ticker clockwork.Ticker) {
	defer ticker.Stop()
	for {
		select {
		case <-s.done:
			return
		case <-ticker.Chan():
			s.Sweep(s.cfg.Clock.Now())
		}
	}
}
