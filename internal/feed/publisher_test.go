package feed

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"quizbuzzer/internal/events"

	"github.com/nats-io/nats.go"
)

type fakeConn struct {
	msgs []*nats.Msg
	err  error
}

func (f *fakeConn) PublishMsg(m *nats.Msg) error {
	if f.err != nil {
		return f.err
	}
	f.msgs = append(f.msgs, m)
	return nil
}

func newTestPublisher(conn *fakeConn) *Publisher {
	return &Publisher{pub: conn, prefix: "quiz"}
}

func TestSubject(t *testing.T) {
	p := newTestPublisher(&fakeConn{})
	got := p.Subject(events.Event{Room: "AB.C", Type: events.BuzzAccepted})
	if got != "quiz.AB_C.buzz_accepted" {
		t.Errorf("Subject() = %q", got)
	}
	if got := p.Subject(events.Event{Type: events.TimerExpired}); got != "quiz._.timer_expired" {
		t.Errorf("Subject() with no room = %q", got)
	}
}

func TestWrite_Envelope(t *testing.T) {
	conn := &fakeConn{}
	p := newTestPublisher(conn)
	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	err := p.Write(context.Background(), []events.Event{
		{Room: "QUIZ", Type: events.Verdict, Player: "Alice", Delta: 100, At: at},
		{Room: "QUIZ", Type: events.TimerExpired, At: at},
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(conn.msgs) != 2 {
		t.Fatalf("published %d messages, want 2", len(conn.msgs))
	}

	msg := conn.msgs[0]
	if msg.Subject != "quiz.QUIZ.verdict" {
		t.Errorf("Subject = %q", msg.Subject)
	}
	if msg.Header.Get("Event-Type") != "verdict" || msg.Header.Get("Event-ID") == "" {
		t.Errorf("Header = %v", msg.Header)
	}
	var env struct {
		EventID string `json:"eventId"`
		Room    string `json:"room"`
		Player  string `json:"player"`
		Delta   int    `json:"delta"`
	}
	if err := json.Unmarshal(msg.Data, &env); err != nil {
		t.Fatal(err)
	}
	if env.Room != "QUIZ" || env.Player != "Alice" || env.Delta != 100 || env.EventID != msg.Header.Get("Event-ID") {
		t.Errorf("envelope = %+v", env)
	}
}

func TestWrite_StopsOnError(t *testing.T) {
	conn := &fakeConn{err: errors.New("nats down")}
	p := newTestPublisher(conn)
	if err := p.Write(context.Background(), []events.Event{{Room: "Q", Type: events.Verdict}}); err == nil {
		t.Error("Write() should surface publish errors")
	}
}

func TestWrite_CancelledContext(t *testing.T) {
	conn := &fakeConn{}
	p := newTestPublisher(conn)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := p.Write(ctx, []events.Event{{Room: "Q", Type: events.Verdict}}); err == nil {
		t.Error("Write() should stop on a cancelled context")
	}
	if len(conn.msgs) != 0 {
		t.Error("nothing should be published after cancel")
	}
}
