package players

import "testing"

func TestNewStore(t *testing.T) {
	s := NewStore()
	if s == nil {
		t.Fatal("NewStore() returned nil")
	}
	if n := len(s.Names()); n != 0 {
		t.Errorf("new store should be empty, got %d players", n)
	}
}

func TestStore_Add(t *testing.T) {
	s := NewStore()
	p, created := s.Add("Alice")
	if !created {
		t.Error("first Add should report created")
	}
	if p.Name != "Alice" || p.Score != 0 {
		t.Errorf("player = %+v, want Alice with 0", *p)
	}

	s.UpdateScore("Alice", 40)
	p, created = s.Add("Alice")
	if created {
		t.Error("second Add should not report created")
	}
	if p.Score != 40 {
		t.Errorf("rejoin Score = %d, want 40 (retained)", p.Score)
	}
	if n := len(s.Names()); n != 1 {
		t.Errorf("len(Names) = %d, want 1", n)
	}
}

func TestStore_NamesKeepJoinOrder(t *testing.T) {
	s := NewStore()
	for _, n := range []string{"Carol", "Alice", "Bob"} {
		s.Add(n)
	}
	names := s.Names()
	want := []string{"Carol", "Alice", "Bob"}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("Names() = %v, want %v", names, want)
		}
	}
}

func TestStore_UpdateScore(t *testing.T) {
	s := NewStore()
	s.Add("Alice")

	p := s.UpdateScore("Alice", 10)
	if p.Score != 10 {
		t.Errorf("Score = %d, want 10", p.Score)
	}
	p = s.UpdateScore("Alice", -15)
	if p.Score != -5 {
		t.Errorf("Score = %d, want -5", p.Score)
	}
	if s.UpdateScore("nobody", 5) != nil {
		t.Error("UpdateScore should return nil for unknown player")
	}
}

func TestStore_Adjust(t *testing.T) {
	s := NewStore()
	s.Add("Alice")

	effects := s.Adjust("Alice", 7)
	if len(effects) != 1 || effects[0] != (Effect{Name: "Alice", Delta: 7}) {
		t.Errorf("effects = %v, want [{Alice 7}]", effects)
	}
	if effects := s.Adjust("Alice", 0); len(effects) != 0 {
		t.Errorf("zero delta effects = %v, want none", effects)
	}
	if effects := s.Adjust("nobody", 3); len(effects) != 0 {
		t.Errorf("unknown player effects = %v, want none", effects)
	}
}

func TestStore_Set(t *testing.T) {
	s := NewStore()
	s.Add("Alice")
	s.UpdateScore("Alice", 30)

	effects := s.Set("Alice", 100)
	if len(effects) != 1 || effects[0].Delta != 70 {
		t.Errorf("effects = %v, want delta 70", effects)
	}
	if got := s.Scores()["Alice"]; got != 100 {
		t.Errorf("Score = %d, want 100", got)
	}
}

func TestStore_AdjustOthers(t *testing.T) {
	s := NewStore()
	s.Add("A")
	s.Add("B")
	s.Add("C")

	effects := s.AdjustOthers("A", 10)
	if len(effects) != 2 {
		t.Fatalf("effects = %v, want 2 entries", effects)
	}
	scores := s.Scores()
	if scores["A"] != 0 || scores["B"] != 10 || scores["C"] != 10 {
		t.Errorf("scores = %v, want A=0 B=10 C=10", scores)
	}
}

func TestStore_ResetAll(t *testing.T) {
	s := NewStore()
	s.Add("Alice")
	s.Add("Bob")
	s.Add("Carol")
	s.UpdateScore("Alice", 100)
	s.UpdateScore("Bob", -20)

	effects := s.ResetAll()

	if Sum(effects) != -80 {
		t.Errorf("Sum(effects) = %d, want -80", Sum(effects))
	}
	if len(effects) != 2 {
		t.Errorf("effects = %v, want only non-zero rows", effects)
	}
	for name, score := range s.Scores() {
		if score != 0 {
			t.Errorf("%s Score = %d, want 0", name, score)
		}
	}
	if len(s.Names()) != 3 {
		t.Error("players should still exist after reset")
	}
}
