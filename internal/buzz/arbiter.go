package buzz

import "slices"

type Mode string

const (
	ModeFirst = Mode("first")
	ModeMulti = Mode("multi")
)

// ParseMode maps a client-supplied mode name. Anything unrecognized is FIRST.
func ParseMode(s string) Mode {
	switch Mode(s) {
	case ModeMulti, "MULTI", "multiple":
		return ModeMulti
	default:
		return ModeFirst
	}
}

// NoPlayer is the buzzer identity used when the countdown runs out.
const NoPlayer = "__timeout__"

// Availability is the room-wide buzz gate, in precedence order:
// Blocked (everyone surrendered) wins over Locked (FIRST round taken),
// which wins over Open.
type Availability string

const (
	Open    = Availability("open")
	Locked  = Availability("locked")
	Blocked = Availability("blocked")
)

// Outcome describes what a single buzz attempt did.
type Outcome struct {
	Accepted bool
	// Reason is the gate that rejected the buzz, or Duplicate for a repeat
	// MULTI buzz. Empty when accepted.
	Reason Availability
	First  bool
	Order  []string
}

const Duplicate = Availability("duplicate")

// Arbiter holds one room's buzz round. Not safe for concurrent use.
type Arbiter struct {
	mode    Mode
	locked  bool
	order   []string
	blocked bool
}

func NewArbiter(mode Mode) *Arbiter {
	return &Arbiter{mode: mode}
}

func (a *Arbiter) Mode() Mode {
	return a.mode
}

func (a *Arbiter) Availability() Availability {
	switch {
	case a.blocked:
		return Blocked
	case a.locked:
		return Locked
	default:
		return Open
	}
}

// RoundLocked reports the FIRST-mode lock only, ignoring the surrender gate.
func (a *Arbiter) RoundLocked() bool {
	return a.locked
}

// Order returns a copy of the accepted buzz order.
func (a *Arbiter) Order() []string {
	return slices.Clone(a.order)
}

// Active returns the buzzer whose answer is being adjudicated.
func (a *Arbiter) Active() (string, bool) {
	if len(a.order) == 0 {
		return "", false
	}
	return a.order[0], true
}

// CanAdjudicate reports whether a verdict for name is allowed: in FIRST
// mode only the winner, in MULTI anyone in the queue.
func (a *Arbiter) CanAdjudicate(name string) bool {
	if len(a.order) == 0 {
		return false
	}
	if a.locked || a.mode == ModeFirst {
		return a.order[0] == name
	}
	return slices.Contains(a.order, name)
}

func (a *Arbiter) Accept(name string) Outcome {
	if a.blocked {
		return Outcome{Reason: Blocked}
	}
	if a.locked {
		return Outcome{Reason: Locked}
	}
	if a.mode == ModeFirst {
		a.locked = true
		a.order = []string{name}
		return Outcome{Accepted: true, First: true, Order: a.Order()}
	}
	if slices.Contains(a.order, name) {
		return Outcome{Reason: Duplicate}
	}
	a.order = append(a.order, name)
	return Outcome{Accepted: true, First: len(a.order) == 1, Order: a.Order()}
}

// ForceFirst locks the round for name as a FIRST-mode winner regardless
// of the configured mode. It fails only if the round is already locked.
func (a *Arbiter) ForceFirst(name string) bool {
	if a.locked {
		return false
	}
	a.locked = true
	a.order = []string{name}
	return true
}

// Reset clears the round. Calling it repeatedly is harmless.
func (a *Arbiter) Reset() {
	a.locked = false
	a.order = nil
}

// SetMode switches mode and hard-resets the round.
func (a *Arbiter) SetMode(mode Mode) {
	a.mode = mode
	a.Reset()
}

// SetBlocked toggles the surrender gate. It reports whether the gate changed.
func (a *Arbiter) SetBlocked(blocked bool) bool {
	changed := a.blocked != blocked
	a.blocked = blocked
	return changed
}

// Forget drops name from the queue, unlocking if it was the FIRST winner.
// It reports whether name was queued.
func (a *Arbiter) Forget(name string) bool {
	i := slices.Index(a.order, name)
	if i < 0 {
		return false
	}
	a.order = slices.Delete(a.order, i, i+1)
	if len(a.order) == 0 {
		a.locked = false
	}
	return true
}
