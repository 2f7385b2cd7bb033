// Package protocol defines the JSON envelopes exchanged with clients.
package protocol

import "encoding/json"

// Inbound message names.
const (
	Join                 = "join"
	Settings             = "settings"
	Buzz                 = "buzz"
	BuzzModeChanged      = "buzzModeChanged"
	Result               = "result"
	ResetBuzz            = "resetBuzz"
	ResetRoom            = "resetRoom"
	AdjustPoints         = "adjustPoints"
	SetPoints            = "setPoints"
	ResetAllPoints       = "resetAllPoints"
	TextUpdate           = "textUpdate"
	ClearTexts           = "clearTexts"
	ClearSingleText      = "clearSingleText"
	LockTexts            = "lockTexts"
	LoginStatus          = "loginStatus"
	UnlockText           = "unlockText"
	UnlockAllTexts       = "unlockAllTexts"
	MCAnswer             = "mcAnswer"
	HostMCSolve          = "hostMcSolve"
	SurrenderToggle      = "surrenderToggle"
	SurrenderClear       = "surrenderClear"
	SurrenderClearSingle = "surrenderClearSingle"
	StartTimer           = "startTimer"
	PauseTimer           = "pauseTimer"
	ResumeTimer          = "resumeTimer"
	ResetTimer           = "resetTimer"
)

// Outbound message names.
const (
	PlayerUpdate       = "playerUpdate"
	BuzzEvent          = "buzz"
	BuzzBlocked        = "buzzBlocked"
	BuzzOrder          = "buzzOrder"
	BuzzModeSet        = "buzzModeSet"
	BuzzReset          = "resetBuzz"
	RoomReset          = "roomReset"
	ScoreUpdateEffects = "scoreUpdateEffects"
	LoginStatusUpdate  = "loginStatusUpdate"
	MCSolved           = "mcSolved"
	TimerUpdate        = "timerUpdate"
	TimerEnd           = "timerEnd"
	PlaySound          = "playSound"
)

// Envelope is the frame read from a client.
type Envelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// Message is the frame sent to clients.
type Message struct {
	Type string `json:"type"`
	Data any    `json:"data,omitempty"`
}

// RoomRef is the payload of every message that only names a room. Some
// clients send the bare room string instead of an object.
type RoomRef struct {
	Room string `json:"room"`
}

func (r *RoomRef) UnmarshalJSON(b []byte) error {
	var code string
	if err := json.Unmarshal(b, &code); err == nil {
		r.Room = code
		return nil
	}
	type plain RoomRef
	return json.Unmarshal(b, (*plain)(r))
}

type JoinPayload struct {
	Name   string `json:"name"`
	Room   string `json:"room"`
	IsHost bool   `json:"isHost"`
}

// SettingsPayload carries a partial settings update; nil fields are kept.
type SettingsPayload struct {
	Room                  string  `json:"room"`
	ShowPoints            *bool   `json:"showPoints,omitempty"`
	PointsRight           *int    `json:"pointsRight,omitempty"`
	PointsWrong           *int    `json:"pointsWrong,omitempty"`
	PointsOthers          *int    `json:"pointsOthers,omitempty"`
	BuzzMode              *string `json:"buzzMode,omitempty"`
	ShowBuzzedPlayerToAll *bool   `json:"showBuzzedPlayerToAll,omitempty"`
	MCOptionCount         *int    `json:"mcOptionCount,omitempty"`
	MCMultiSelect         *bool   `json:"mcMultiSelect,omitempty"`
	MCWrongPoints         *int    `json:"mcWrongPoints,omitempty"`
	TimerAutoBuzz         *bool   `json:"timerAutoBuzz,omitempty"`
	TimerStopOnBuzz       *bool   `json:"timerStopOnBuzz,omitempty"`
}

type BuzzPayload struct {
	Room string `json:"room"`
	Name string `json:"name"`
}

type BuzzModePayload struct {
	Room string `json:"room"`
	Mode string `json:"mode"`
}

type ResultPayload struct {
	Room string `json:"room"`
	Name string `json:"name"`
	Type string `json:"type"`
}

type AdjustPointsPayload struct {
	Room  string `json:"room"`
	Name  string `json:"name"`
	Delta int    `json:"delta"`
}

type SetPointsPayload struct {
	Room   string `json:"room"`
	Name   string `json:"name"`
	Points int    `json:"points"`
}

type TextUpdatePayload struct {
	Room string `json:"room"`
	Name string `json:"name"`
	Text string `json:"text"`
}

type TargetPayload struct {
	Room       string `json:"room"`
	TargetName string `json:"targetName"`
}

type LockTextsPayload struct {
	Room   string `json:"room"`
	Locked bool   `json:"locked"`
}

type LoginStatusPayload struct {
	Room      string `json:"room"`
	Name      string `json:"name"`
	LoggedIn  bool   `json:"loggedIn"`
	MCAnswers []int  `json:"mcAnswers,omitempty"`
}

type MCAnswerPayload struct {
	Room    string `json:"room"`
	Name    string `json:"name"`
	Answers []int  `json:"answers"`
}

type MCSolvePayload struct {
	Room     string `json:"room"`
	Solution []int  `json:"solution"`
}

type SurrenderPayload struct {
	Room string `json:"room"`
	Name string `json:"name"`
}

// StartTimerPayload has Duration in seconds. AutoBuzz and StopOnBuzz
// override the room settings for this run when present.
type StartTimerPayload struct {
	Room       string  `json:"room"`
	Duration   float64 `json:"duration"`
	AutoBuzz   *bool   `json:"autoBuzz,omitempty"`
	StopOnBuzz *bool   `json:"stopOnBuzz,omitempty"`
}
