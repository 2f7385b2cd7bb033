package buzz

// Surrender tracks per-player "pass" flags.
type Surrender struct {
	flags map[string]bool
}

func NewSurrender() *Surrender {
	return &Surrender{flags: make(map[string]bool)}
}

// Toggle flips name's flag and returns the new value.
func (s *Surrender) Toggle(name string) bool {
	s.flags[name] = !s.flags[name]
	if !s.flags[name] {
		delete(s.flags, name)
	}
	return s.flags[name]
}

func (s *Surrender) Has(name string) bool {
	return s.flags[name]
}

func (s *Surrender) Clear() {
	s.flags = make(map[string]bool)
}

func (s *Surrender) ClearOne(name string) {
	delete(s.flags, name)
}

// All reports whether every given player has surrendered. An empty room
// never counts as all surrendered.
func (s *Surrender) All(names []string) bool {
	if len(names) == 0 {
		return false
	}
	for _, n := range names {
		if !s.flags[n] {
			return false
		}
	}
	return true
}

// Flags returns a copy of the set flags.
func (s *Surrender) Flags() map[string]bool {
	out := make(map[string]bool, len(s.flags))
	for n, v := range s.flags {
		out[n] = v
	}
	return out
}
