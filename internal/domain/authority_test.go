package domain

import "testing"

func TestIsAuthoritative(t *testing.T) {
	alice := ClientIdentity("alice")
	bob := ClientIdentity("bob")
	anonymous := ClientIdentity("")

	tests := []struct {
		name  string
		owner string
		who   Identity
		want  bool
	}{
		{"owner client", "alice", alice, true},
		{"other client", "alice", bob, false},
		{"server on client entity", "alice", ServerIdentity, false},
		{"server on server entity", OwnerServer, ServerIdentity, true},
		{"client on server entity", OwnerServer, alice, false},
		{"client on local entity", OwnerLocal, alice, true},
		{"server on local entity", OwnerLocal, ServerIdentity, false},
		{"client without id", "alice", anonymous, false},
		{"empty owner", "", alice, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := NewEntityState("u1", "prop", tt.owner)
			if got := IsAuthoritative(&e, tt.who); got != tt.want {
				t.Errorf("IsAuthoritative(owner=%q, %+v) = %v, want %v", tt.owner, tt.who, got, tt.want)
			}
		})
	}
}

// Для любой сетевой сущности ровно одна сторона из набора участников авторитетна.
func TestIsAuthoritative_SingleWriter(t *testing.T) {
	participants := []Identity{ServerIdentity, ClientIdentity("a"), ClientIdentity("b"), ClientIdentity("c")}

	for _, owner := range []string{OwnerServer, "a", "b", "c"} {
		e := NewEntityState("u", "prop", owner)
		writers := 0
		for _, who := range participants {
			if IsAuthoritative(&e, who) {
				writers++
			}
		}
		if writers != 1 {
			t.Errorf("owner %q: %d writers, want exactly 1", owner, writers)
		}
	}
}
