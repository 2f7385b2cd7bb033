package players

// Store keeps the scoreboard of one room in join order.
// It is not safe for concurrent use; the owning session serializes access.
type Store struct {
	players map[string]*Player
	order   []string
}

func NewStore() *Store {
	return &Store{
		players: make(map[string]*Player),
	}
}

// Add registers name with a zero score. It reports false and keeps the
// existing score when the name is already known.
func (s *Store) Add(name string) (*Player, bool) {
	if p, e := s.players[name]; e {
		return p, false
	}
	p := &Player{Name: name}
	s.players[name] = p
	s.order = append(s.order, name)
	return p, true
}

func (s *Store) Has(name string) bool {
	_, exists := s.players[name]
	return exists
}

// Names returns player names in join order.
func (s *Store) Names() []string {
	names := make([]string, len(s.order))
	copy(names, s.order)
	return names
}

// Scores returns a name -> score copy.
func (s *Store) Scores() map[string]int {
	scores := make(map[string]int, len(s.players))
	for name, p := range s.players {
		scores[name] = p.Score
	}
	return scores
}

// UpdateScore adds points to a player. Unknown names return nil.
func (s *Store) UpdateScore(name string, points int) *Player {
	if p, e := s.players[name]; e {
		p.Score += points
		return p
	}
	return nil
}

// Adjust applies delta and reports the effect. A zero delta or unknown
// name yields no effect.
func (s *Store) Adjust(name string, delta int) []Effect {
	if delta == 0 || s.UpdateScore(name, delta) == nil {
		return nil
	}
	return []Effect{{Name: name, Delta: delta}}
}

// Set overwrites a player's score and reports the difference as an effect.
func (s *Store) Set(name string, points int) []Effect {
	p, e := s.players[name]
	if !e {
		return nil
	}
	return s.Adjust(name, points-p.Score)
}

// AdjustOthers applies delta to every player except name.
func (s *Store) AdjustOthers(name string, delta int) []Effect {
	var effects []Effect
	for _, other := range s.order {
		if other == name {
			continue
		}
		effects = append(effects, s.Adjust(other, delta)...)
	}
	return effects
}

// ResetAll zeroes every score, returning the negated scores as effects.
func (s *Store) ResetAll() []Effect {
	var effects []Effect
	for _, name := range s.order {
		effects = append(effects, s.Set(name, 0)...)
	}
	return effects
}
