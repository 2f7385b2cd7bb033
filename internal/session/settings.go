package session

import (
	"quizbuzzer/internal/buzz"
	"quizbuzzer/internal/protocol"
)

// Settings are the host-tunable rules of a room.
type Settings struct {
	ShowPoints            bool      `json:"showPoints" yaml:"showPoints"`
	PointsRight           int       `json:"pointsRight" yaml:"pointsRight"`
	PointsWrong           int       `json:"pointsWrong" yaml:"pointsWrong"`
	PointsOthers          int       `json:"pointsOthers" yaml:"pointsOthers"`
	BuzzMode              buzz.Mode `json:"buzzMode" yaml:"buzzMode"`
	ShowBuzzedPlayerToAll bool      `json:"showBuzzedPlayerToAll" yaml:"showBuzzedPlayerToAll"`
	MCOptionCount         int       `json:"mcOptionCount" yaml:"mcOptionCount"`
	MCMultiSelect         bool      `json:"mcMultiSelect" yaml:"mcMultiSelect"`
	MCWrongPoints         int       `json:"mcWrongPoints" yaml:"mcWrongPoints"`
	TimerAutoBuzz         bool      `json:"timerAutoBuzz" yaml:"timerAutoBuzz"`
	TimerStopOnBuzz       bool      `json:"timerStopOnBuzz" yaml:"timerStopOnBuzz"`
}

func DefaultSettings() Settings {
	return Settings{
		ShowPoints:      true,
		PointsRight:     100,
		BuzzMode:        buzz.ModeFirst,
		MCOptionCount:   4,
		TimerStopOnBuzz: true,
	}
}

// Apply merges the fields present in p. Out-of-range option counts are
// ignored and unknown modes fall back to FIRST.
func (s *Settings) Apply(p protocol.SettingsPayload) {
	if p.ShowPoints != nil {
		s.ShowPoints = *p.ShowPoints
	}
	if p.PointsRight != nil {
		s.PointsRight = *p.PointsRight
	}
	if p.PointsWrong != nil {
		s.PointsWrong = *p.PointsWrong
	}
	if p.PointsOthers != nil {
		s.PointsOthers = *p.PointsOthers
	}
	if p.BuzzMode != nil {
		s.BuzzMode = buzz.ParseMode(*p.BuzzMode)
	}
	if p.ShowBuzzedPlayerToAll != nil {
		s.ShowBuzzedPlayerToAll = *p.ShowBuzzedPlayerToAll
	}
	if p.MCOptionCount != nil && *p.MCOptionCount > 0 {
		s.MCOptionCount = *p.MCOptionCount
	}
	if p.MCMultiSelect != nil {
		s.MCMultiSelect = *p.MCMultiSelect
	}
	if p.MCWrongPoints != nil {
		s.MCWrongPoints = *p.MCWrongPoints
	}
	if p.TimerAutoBuzz != nil {
		s.TimerAutoBuzz = *p.TimerAutoBuzz
	}
	if p.TimerStopOnBuzz != nil {
		s.TimerStopOnBuzz = *p.TimerStopOnBuzz
	}
}
