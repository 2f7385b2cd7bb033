package rooms

import (
	"time"

	"quizbuzzer/internal/session"
)

type Room struct {
	Code      string
	Session   *session.Session
	CreatedAt time.Time
}

// Info is the summary reported by /stats.
type Info struct {
	Code      string    `json:"code"`
	Members   int       `json:"members"`
	CreatedAt time.Time `json:"createdAt"`
}

func (r *Room) Info() Info {
	return Info{Code: r.Code, Members: r.Session.MemberCount(), CreatedAt: r.CreatedAt}
}
