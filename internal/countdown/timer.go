package countdown

import (
	"math"
	"time"

	"github.com/jonboulle/clockwork"
)

type State string

const (
	StateIdle    = State("idle")
	StateRunning = State("running")
	StatePaused  = State("paused")
	StateExpired = State("expired")
)

const DefaultInterval = 250 * time.Millisecond

// Status is the wire view of a timer.
type Status struct {
	Running  bool    `json:"running"`
	Paused   bool    `json:"paused"`
	TimeLeft float64 `json:"timeLeft"`
}

// Timer is a pausable countdown that ticks on its own goroutine.
// The owner must serialize calls; tick callbacks carry the generation they
// were started with so the owner can drop ticks from a replaced run.
type Timer struct {
	clock    clockwork.Clock
	interval time.Duration

	state     State
	deadline  time.Time
	remaining time.Duration
	gen       uint64
	stop      chan struct{}
	onTick    func(gen uint64)
}

func New(clock clockwork.Clock, interval time.Duration) *Timer {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Timer{
		clock:    clock,
		interval: interval,
		state:    StateIdle,
	}
}

func (t *Timer) State() State {
	return t.state
}

// Current reports whether gen belongs to the run that is ticking now.
func (t *Timer) Current(gen uint64) bool {
	return t.state == StateRunning && gen == t.gen
}

// Start begins a countdown from any state, replacing a previous run.
func (t *Timer) Start(d time.Duration, onTick func(gen uint64)) uint64 {
	t.stopTicking()
	t.onTick = onTick
	t.deadline = t.clock.Now().Add(d)
	t.remaining = 0
	t.state = StateRunning
	return t.startTicking()
}

// Pause is valid only while running.
func (t *Timer) Pause() bool {
	if t.state != StateRunning {
		return false
	}
	t.stopTicking()
	t.remaining = max(t.deadline.Sub(t.clock.Now()), 0)
	t.state = StatePaused
	return true
}

// Resume is valid only while paused.
func (t *Timer) Resume() bool {
	if t.state != StatePaused {
		return false
	}
	t.deadline = t.clock.Now().Add(t.remaining)
	t.remaining = 0
	t.state = StateRunning
	t.startTicking()
	return true
}

// Reset returns to idle from any state.
func (t *Timer) Reset() {
	t.stopTicking()
	t.state = StateIdle
	t.deadline = time.Time{}
	t.remaining = 0
}

// Expire moves a running timer to expired and stops ticking.
func (t *Timer) Expire() bool {
	if t.state != StateRunning {
		return false
	}
	t.stopTicking()
	t.state = StateExpired
	t.remaining = 0
	return true
}

// Remaining is the time left in the current state.
func (t *Timer) Remaining() time.Duration {
	switch t.state {
	case StateRunning:
		return max(t.deadline.Sub(t.clock.Now()), 0)
	case StatePaused:
		return t.remaining
	default:
		return 0
	}
}

func (t *Timer) Status() Status {
	left := t.Remaining().Seconds()
	return Status{
		Running:  t.state == StateRunning,
		Paused:   t.state == StatePaused,
		TimeLeft: math.Ceil(left*10) / 10,
	}
}

func (t *Timer) startTicking() uint64 {
	t.gen++
	stop := make(chan struct{})
	t.stop = stop
	ticker := t.clock.NewTicker(t.interval)
	go run(ticker, stop, t.gen, t.onTick)
	return t.gen
}

func (t *Timer) stopTicking() {
	if t.stop != nil {
		close(t.stop)
		t.stop = nil
	}
}

func run(ticker clockwork.Ticker, stop <-chan struct{}, gen uint64, onTick func(uint64)) {
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.Chan():
			if onTick != nil {
				onTick(gen)
			}
		}
	}
}
