package engine

import "testing"

func TestRegistry_DisconnectLeavesBeforeDrop(t *testing.T) {
	r := NewRegistry()
	id := r.Connect()
	r.SetRoom(id, "lobby")

	var sawRoom string
	var stillKnown bool
	room, ok := r.Disconnect(id, func(room string) {
		sawRoom = room
		_, stillKnown = r.RoomOf(id)
	})

	if !ok || room != "lobby" || sawRoom != "lobby" {
		t.Fatalf("Disconnect = (%q, %v), leave saw %q", room, ok, sawRoom)
	}
	if !stillKnown {
		t.Error("leave must run while the connection is still registered")
	}
	if _, ok := r.RoomOf(id); ok {
		t.Error("connection survived Disconnect")
	}
	if _, ok := r.Disconnect(id, nil); ok {
		t.Error("second Disconnect must report false")
	}
}

func TestRegistry_IDsAreUnique(t *testing.T) {
	r := NewRegistry()
	seen := map[string]bool{}
	for i := 0; i < 1000; i++ {
		id := r.Connect()
		if seen[id] {
			t.Fatalf("duplicate id %s", id)
		}
		seen[id] = true
	}
	if r.Len() != 1000 || len(r.IDs()) != 1000 {
		t.Errorf("Len = %d", r.Len())
	}
}

func TestRegistry_NoLeaveWithoutRoom(t *testing.T) {
	r := NewRegistry()
	id := r.Connect()
	called := false
	r.Disconnect(id, func(string) { called = true })
	if called {
		t.Error("leave called for a connection outside any room")
	}
}
