package protocol

import (
	"quizbuzzer/internal/countdown"
	"quizbuzzer/internal/players"
)

type BuzzData struct {
	Name    string `json:"name,omitempty"`
	Timeout bool   `json:"timeout,omitempty"`
}

type BuzzBlockedData struct {
	Reason string `json:"reason"`
}

type BuzzOrderData struct {
	Order []string `json:"order"`
}

type BuzzModeData struct {
	Mode string `json:"mode"`
}

type LoginStatusData struct {
	Name     string          `json:"name,omitempty"`
	LoggedIn bool            `json:"loggedIn"`
	Status   map[string]bool `json:"status"`
}

type MCSolvedData struct {
	Solution       []int    `json:"solution"`
	CorrectPlayers []string `json:"correctPlayers"`
}

type SoundData struct {
	Sound string `json:"sound"`
}

type MCSettings struct {
	OptionCount int  `json:"optionCount"`
	MultiSelect bool `json:"multiSelect"`
}

// Snapshot is the full room projection sent as playerUpdate. Texts and
// MCAnswers are only filled in the host view.
type Snapshot struct {
	Room        string            `json:"room"`
	Players     map[string]int    `json:"players"`
	PlayerOrder []string          `json:"playerOrder"`
	ShowPoints  bool              `json:"showPoints"`
	BuzzMode    string            `json:"buzzMode"`
	BuzzOrder   []string          `json:"buzzOrder"`
	BuzzState   string            `json:"buzzState"`
	Texts       map[string]string `json:"texts,omitempty"`
	MCSettings  MCSettings        `json:"mcSettings"`
	MCAnswers   map[string][]int  `json:"mcAnswers,omitempty"`
	LoginStatus map[string]bool   `json:"loginStatus"`
	Surrender   map[string]bool   `json:"surrender"`
	Connected   []string          `json:"connected"`
	Timer       countdown.Status  `json:"timer"`
	Settings    any               `json:"settings,omitempty"`
}

// Effects wraps score deltas so a nil slice still encodes as [].
func Effects(effects []players.Effect) []players.Effect {
	if effects == nil {
		return []players.Effect{}
	}
	return effects
}
