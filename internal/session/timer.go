package session

import (
	"time"

	"quizbuzzer/internal/buzz"
	"quizbuzzer/internal/events"
	"quizbuzzer/internal/protocol"

	"github.com/rs/zerolog/log"
)

// StartTimer (re)starts the countdown. autoBuzz and stopOnBuzz override
// the room settings for this run when non-nil.
func (s *Session) StartTimer(m Member, seconds float64, autoBuzz, stopOnBuzz *bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.isHost(m) || seconds <= 0 {
		return
	}
	s.timerOpts = timerOptions{
		autoBuzz:   s.settings.TimerAutoBuzz,
		stopOnBuzz: s.settings.TimerStopOnBuzz,
	}
	if autoBuzz != nil {
		s.timerOpts.autoBuzz = *autoBuzz
	}
	if stopOnBuzz != nil {
		s.timerOpts.stopOnBuzz = *stopOnBuzz
	}

	d := time.Duration(seconds * float64(time.Second))
	s.timer.Start(d, s.tick)
	log.Info().Str("room", s.code).Dur("duration", d).Bool("auto_buzz", s.timerOpts.autoBuzz).Msg("timer started")
	s.broadcastTimer()
}

func (s *Session) PauseTimer(m Member) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.isHost(m) && s.timer.Pause() {
		s.broadcastTimer()
	}
}

func (s *Session) ResumeTimer(m Member) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.isHost(m) && s.timer.Resume() {
		s.broadcastTimer()
	}
}

func (s *Session) ResetTimer(m Member) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.isHost(m) {
		return
	}
	s.timer.Reset()
	s.broadcastTimer()
}

// tick runs on the timer goroutine. Ticks from a replaced run or for a
// closed room are dropped.
func (s *Session) tick(gen uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		s.timer.Reset()
		return
	}
	if !s.timer.Current(gen) {
		return
	}
	if s.timer.Remaining() > 0 {
		s.broadcastTimer()
		return
	}
	s.expire()
}

// expire ends a run. With auto-buzz on and nobody buzzed yet, the timeout
// sentinel takes the round exactly like a FIRST-mode winner.
func (s *Session) expire() {
	s.timer.Expire()
	s.broadcastTimer()
	s.toAll(protocol.Message{Type: protocol.TimerEnd})
	s.toAll(sound("timeUp"))
	s.emit(events.Event{Type: events.TimerExpired})
	log.Info().Str("room", s.code).Msg("timer expired")

	if s.timerOpts.autoBuzz && len(s.arbiter.Order()) == 0 && s.arbiter.ForceFirst(buzz.NoPlayer) {
		s.announceBuzz(buzz.NoPlayer, s.arbiter.Order(), true)
		s.emit(events.Event{Type: events.BuzzAccepted, Player: buzz.NoPlayer})
	}
	s.publishState()
}

func (s *Session) broadcastTimer() {
	s.toAll(protocol.Message{Type: protocol.TimerUpdate, Data: s.timer.Status()})
}
