package server

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"quizbuzzer/internal/broadcast"
	"quizbuzzer/internal/events"
	"quizbuzzer/internal/protocol"
	"quizbuzzer/internal/rooms"
	"quizbuzzer/internal/session"
	"quizbuzzer/internal/wshub"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
)

func newTestServer(t *testing.T) (*Server, *httptest.Server) {
	t.Helper()
	hub := wshub.NewHub()
	spectators := broadcast.NewBroadcaster()
	store := rooms.NewStore(rooms.Config{
		Session: session.Config{
			Settings:     session.DefaultSettings(),
			TickInterval: 50 * time.Millisecond,
			Bus:          events.NewBus(100),
		},
		Publisher: newRoomPublisher(hub, spectators),
	})
	t.Cleanup(store.Stop)

	srv := &Server{
		Rooms:          store,
		Hub:            hub,
		Spectators:     spectators,
		AllowedOrigins: []string{"*"},
	}
	ts := httptest.NewServer(srv.Routes())
	t.Cleanup(ts.Close)
	return srv, ts
}

type wsClient struct {
	t    *testing.T
	conn *websocket.Conn
}

func dial(t *testing.T, ts *httptest.Server) *wsClient {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	conn, _, err := websocket.Dial(ctx, "ws"+strings.TrimPrefix(ts.URL, "http")+"/ws", nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close(websocket.StatusNormalClosure, "") })
	return &wsClient{t: t, conn: conn}
}

func (c *wsClient) send(typ string, data any) {
	c.t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := wsjson.Write(ctx, c.conn, protocol.Message{Type: typ, Data: data}); err != nil {
		c.t.Fatalf("write %s: %v", typ, err)
	}
}

// await reads frames until one of type typ arrives whose payload satisfies
// match (nil matches anything).
func (c *wsClient) await(typ string, match func(json.RawMessage) bool) json.RawMessage {
	c.t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	for {
		var env protocol.Envelope
		if err := wsjson.Read(ctx, c.conn, &env); err != nil {
			c.t.Fatalf("waiting for %s: %v", typ, err)
		}
		if env.Type == typ && (match == nil || match(env.Data)) {
			return env.Data
		}
	}
}

func snapshotWhere(cond func(protocol.Snapshot) bool) func(json.RawMessage) bool {
	return func(raw json.RawMessage) bool {
		var snap protocol.Snapshot
		return json.Unmarshal(raw, &snap) == nil && cond(snap)
	}
}

func join(t *testing.T, ts *httptest.Server, room, name string, host bool) *wsClient {
	t.Helper()
	c := dial(t, ts)
	c.send(protocol.Join, protocol.JoinPayload{Name: name, Room: room, IsHost: host})
	if host {
		c.await(protocol.PlayerUpdate, nil)
	} else {
		c.await(protocol.PlayerUpdate, snapshotWhere(func(s protocol.Snapshot) bool {
			_, ok := s.Players[name]
			return ok
		}))
	}
	return c
}

func TestCreateRoom(t *testing.T) {
	_, ts := newTestServer(t)

	resp, err := http.Post(ts.URL+"/rooms", "application/json", nil)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusCreated)
	}
	var body struct {
		Code string `json:"code"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if len(body.Code) != 4 {
		t.Errorf("code = %q, want 4 characters", body.Code)
	}

	state, err := http.Get(ts.URL + "/rooms/" + strings.ToLower(body.Code))
	if err != nil {
		t.Fatal(err)
	}
	state.Body.Close()
	if state.StatusCode != http.StatusOK {
		t.Errorf("GET created room status = %d", state.StatusCode)
	}
}

func TestRoomState_NotFound(t *testing.T) {
	_, ts := newTestServer(t)
	resp, err := http.Get(ts.URL + "/rooms/ZZZZ")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
}

func TestHealth(t *testing.T) {
	_, ts := newTestServer(t)
	resp, err := http.Get(ts.URL + "/health")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	var body map[string]string
	json.NewDecoder(resp.Body).Decode(&body)
	if resp.StatusCode != http.StatusOK || body["status"] != "ok" {
		t.Errorf("health = %d %v", resp.StatusCode, body)
	}
}

func TestAnalytics_WithoutDatabase(t *testing.T) {
	_, ts := newTestServer(t)
	resp, err := http.Get(ts.URL + "/analytics/leaderboard")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", resp.StatusCode)
	}
}

func TestCORSPreflight(t *testing.T) {
	_, ts := newTestServer(t)
	req, _ := http.NewRequest(http.MethodOptions, ts.URL+"/rooms", nil)
	req.Header.Set("Origin", "https://quiz.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if got := resp.Header.Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("Access-Control-Allow-Origin = %q, want *", got)
	}
}

func TestGateway_FirstModeRound(t *testing.T) {
	_, ts := newTestServer(t)
	host := join(t, ts, "quiz", "Host", true)
	alice := join(t, ts, "quiz", "Alice", false)
	bob := join(t, ts, "quiz", "Bob", false)

	alice.send(protocol.Buzz, protocol.BuzzPayload{Room: "QUIZ", Name: "Alice"})

	raw := host.await(protocol.BuzzEvent, nil)
	var hostBuzz protocol.BuzzData
	json.Unmarshal(raw, &hostBuzz)
	if hostBuzz.Name != "Alice" {
		t.Errorf("host buzz = %+v, want Alice", hostBuzz)
	}
	raw = bob.await(protocol.BuzzEvent, nil)
	var bobBuzz protocol.BuzzData
	json.Unmarshal(raw, &bobBuzz)
	if bobBuzz.Name != "" {
		t.Errorf("participants should not see the name, got %+v", bobBuzz)
	}

	host.send(protocol.Result, protocol.ResultPayload{Room: "QUIZ", Name: "Alice", Type: "correct"})

	raw = bob.await(protocol.ScoreUpdateEffects, nil)
	var effects []struct {
		Name  string `json:"name"`
		Delta int    `json:"delta"`
	}
	if err := json.Unmarshal(raw, &effects); err != nil {
		t.Fatal(err)
	}
	if len(effects) != 1 || effects[0].Name != "Alice" || effects[0].Delta != 100 {
		t.Errorf("effects = %+v, want Alice +100", effects)
	}

	host.await(protocol.PlayerUpdate, snapshotWhere(func(s protocol.Snapshot) bool {
		return s.Players["Alice"] == 100 && len(s.BuzzOrder) == 0
	}))
}

func TestGateway_HostViewOnlyToHost(t *testing.T) {
	_, ts := newTestServer(t)
	host := join(t, ts, "TEXT", "Host", true)
	alice := join(t, ts, "TEXT", "Alice", false)

	alice.send(protocol.TextUpdate, protocol.TextUpdatePayload{Room: "TEXT", Name: "Alice", Text: "Paris"})

	host.await(protocol.PlayerUpdate, snapshotWhere(func(s protocol.Snapshot) bool {
		return s.Texts["Alice"] == "Paris"
	}))
	raw := alice.await(protocol.PlayerUpdate, nil)
	if strings.Contains(string(raw), "Paris") {
		t.Errorf("participant view leaked answer text: %s", raw)
	}
}

func TestGateway_IgnoresMalformedAndForeignMessages(t *testing.T) {
	_, ts := newTestServer(t)
	host := join(t, ts, "ONE", "Host", true)
	alice := join(t, ts, "ONE", "Alice", false)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	alice.conn.Write(ctx, websocket.MessageText, []byte("{not json"))
	alice.send("noSuchMessage", nil)
	host.send(protocol.AdjustPoints, protocol.AdjustPointsPayload{Room: "TWO", Name: "Alice", Delta: 5})
	host.send(protocol.AdjustPoints, map[string]any{"room": "ONE", "name": "Alice", "delta": "lots"})
	host.send(protocol.AdjustPoints, protocol.AdjustPointsPayload{Room: "ONE", Name: "Alice", Delta: 7})

	host.await(protocol.PlayerUpdate, snapshotWhere(func(s protocol.Snapshot) bool {
		return s.Players["Alice"] == 7
	}))
}

func TestGateway_RoomOnlyPayloadAsBareString(t *testing.T) {
	_, ts := newTestServer(t)
	host := join(t, ts, "BARE", "Host", true)
	alice := join(t, ts, "BARE", "Alice", false)

	alice.send(protocol.Buzz, protocol.BuzzPayload{Room: "BARE"})
	host.await(protocol.BuzzEvent, nil)

	host.send(protocol.ResetBuzz, "BARE")
	alice.await(protocol.BuzzReset, nil)
}

func TestGateway_ResetRoomDropsRegistryEntry(t *testing.T) {
	srv, ts := newTestServer(t)
	host := join(t, ts, "GONE", "Host", true)
	alice := join(t, ts, "GONE", "Alice", false)

	host.send(protocol.ResetRoom, protocol.RoomRef{Room: "GONE"})
	alice.await(protocol.RoomReset, nil)

	deadline := time.Now().Add(2 * time.Second)
	for srv.Rooms.Get("GONE") != nil {
		if time.Now().After(deadline) {
			t.Fatal("room still registered after reset")
		}
		time.Sleep(5 * time.Millisecond)
	}

	// rejoining the same code starts a fresh room
	join(t, ts, "GONE", "Bob", false)
	snap := srv.Rooms.Get("GONE").Session.Snapshot(false)
	if _, ok := snap.Players["Alice"]; ok || len(snap.Players) != 1 {
		t.Errorf("fresh room players = %v, want only Bob", snap.Players)
	}
}

func TestGateway_DisconnectKeepsScore(t *testing.T) {
	srv, ts := newTestServer(t)
	host := join(t, ts, "KEEP", "Host", true)
	alice := join(t, ts, "KEEP", "Alice", false)

	host.send(protocol.SetPoints, protocol.SetPointsPayload{Room: "KEEP", Name: "Alice", Points: 42})
	host.await(protocol.PlayerUpdate, snapshotWhere(func(s protocol.Snapshot) bool { return s.Players["Alice"] == 42 }))

	alice.conn.Close(websocket.StatusNormalClosure, "bye")
	host.await(protocol.PlayerUpdate, snapshotWhere(func(s protocol.Snapshot) bool { return len(s.Connected) == 0 }))

	if got := srv.Rooms.Get("KEEP").Session.Snapshot(false).Players["Alice"]; got != 42 {
		t.Errorf("score after disconnect = %d, want 42", got)
	}
}

func TestSpectatorEvents(t *testing.T) {
	_, ts := newTestServer(t)
	host := join(t, ts, "SPEC", "Host", true)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, ts.URL+"/rooms/SPEC/events", nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if ct := resp.Header.Get("Content-Type"); ct != "text/event-stream" {
		t.Fatalf("Content-Type = %q", ct)
	}

	reader := bufio.NewReader(resp.Body)
	readEvent := func() (string, string) {
		var event, data string
		for {
			line, err := reader.ReadString('\n')
			if err != nil {
				t.Fatalf("reading stream: %v", err)
			}
			line = strings.TrimRight(line, "\n")
			switch {
			case strings.HasPrefix(line, "event: "):
				event = strings.TrimPrefix(line, "event: ")
			case strings.HasPrefix(line, "data: "):
				data += strings.TrimPrefix(line, "data: ")
			case line == "" && event != "":
				return event, data
			}
		}
	}

	if event, _ := readEvent(); event != protocol.PlayerUpdate {
		t.Fatalf("first event = %q, want the current snapshot", event)
	}

	host.send(protocol.BuzzModeChanged, protocol.BuzzModePayload{Room: "SPEC", Mode: "multi"})
	for {
		event, data := readEvent()
		if event == protocol.BuzzModeSet {
			if data != `{"mode":"multi"}` {
				t.Errorf("buzzModeSet data = %s", data)
			}
			return
		}
	}
}
