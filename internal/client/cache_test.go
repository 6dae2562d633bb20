package client

import (
	"testing"

	"roomsync/internal/catalog"
	"roomsync/internal/domain"
)

func TestCache_AddGetRemove(t *testing.T) {
	c := NewCache()
	def, _ := catalog.Default().Lookup(catalog.TypeProp)

	a := newReplica(domain.NewEntityState("a", catalog.TypeProp, "other"), def)
	if !c.Add(a) {
		t.Fatal("first Add failed")
	}
	if c.Add(newReplica(domain.NewEntityState("a", catalog.TypeProp, "x"), def)) {
		t.Error("Add overwrote existing replica")
	}
	if got, _ := c.Get("a"); got != a {
		t.Error("Get returned another replica")
	}

	if _, ok := c.Remove("a"); !ok {
		t.Fatal("Remove failed")
	}
	if !a.Destroyed() {
		t.Error("removed replica not marked destroyed")
	}
	if _, ok := c.Remove("a"); ok {
		t.Error("second Remove reported success")
	}
	if c.Len() != 0 {
		t.Errorf("Len = %d", c.Len())
	}
}

func TestCache_NetworkedSkipsLocal(t *testing.T) {
	c := NewCache()
	def, _ := catalog.Default().Lookup(catalog.TypeProp)
	c.Add(newReplica(domain.NewEntityState("b", catalog.TypeProp, "other"), def))
	c.Add(newReplica(domain.NewEntityState("a", catalog.TypeProp, domain.OwnerServer), def))
	c.Add(newReplica(domain.NewEntityState("l", catalog.TypeProp, domain.OwnerLocal), def))

	got := c.Networked()
	if len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Errorf("Networked = %v", got)
	}
	if ids := c.IDs(); len(ids) != 3 {
		t.Errorf("IDs = %v", ids)
	}
}
