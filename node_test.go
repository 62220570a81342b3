package analytics

import (
	"errors"
	"testing"
)

func TestNode_DictEnumerationOrderIsReverseOfInsertion(t *testing.T) {
	d := newDictNode("")
	for _, kv := range [][2]string{{"A", "1"}, {"B", "2"}, {"C", "3"}} {
		if err := d.addChild(newStringNode(kv[0], kv[1])); err != nil {
			t.Fatalf("addChild(%s) failed: %v", kv[0], err)
		}
	}

	want := []string{"C", "B", "A"}
	if len(d.children) != len(want) {
		t.Fatalf("expected %d children, got %d", len(want), len(d.children))
	}
	for i, k := range want {
		if d.children[i].key != k {
			t.Errorf("child %d: expected key %s, got %s", i, k, d.children[i].key)
		}
	}
}

func TestNode_ListEnumerationOrderIsReverseOfInsertion(t *testing.T) {
	l := newListNode("l")
	for _, v := range []string{"A", "B", "C"} {
		if err := l.addChild(newStringNode("", v)); err != nil {
			t.Fatalf("addChild(%s) failed: %v", v, err)
		}
	}

	want := []string{"C", "B", "A"}
	for i, v := range want {
		if l.children[i].strVal != v {
			t.Errorf("element %d: expected %s, got %s", i, v, l.children[i].strVal)
		}
	}
}

func TestNode_DictInsertReplacesSameKey(t *testing.T) {
	d := newDictNode("")
	d.addChild(newStringNode("k", "old"))
	d.addChild(newStringNode("other", "x"))
	d.addChild(newStringNode("k", "new"))

	n := 0
	for _, c := range d.children {
		if c.key == "k" {
			n++
		}
	}
	if n != 1 {
		t.Fatalf("expected exactly one child under key k, got %d", n)
	}

	got := d.findChild("k")
	if got == nil || got.strVal != "new" {
		t.Fatalf("findChild(k) = %+v, expected the replacement value", got)
	}
}

func TestNode_PutEntryReplacesSameKey(t *testing.T) {
	d := newDictNode("")
	d.putEntry(newStringNode("k", "old"))
	d.putEntry(newStringNode("other", "x"))
	d.putEntry(newStringNode("k", "new"))

	if len(d.children) != 2 {
		t.Fatalf("expected 2 children, got %d", len(d.children))
	}
	if got := d.findChild("k"); got == nil || got.strVal != "new" {
		t.Fatalf("findChild(k) = %+v, expected the replacement value", got)
	}
	// replacement prepends, like addChild
	if d.children[0].key != "k" {
		t.Errorf("expected the replacement at the head, got %s", d.children[0].key)
	}
}

func TestNode_FindChildAfterInsert(t *testing.T) {
	d := newDictNode("")
	d.addChild(newIntNode("n", 42))

	got := d.findChild("n")
	if got == nil || got.intVal != 42 {
		t.Fatalf("findChild(n) = %+v, expected the inserted value", got)
	}
	if d.findChild("missing") != nil {
		t.Error("findChild(missing) should return nil")
	}
}

func TestNode_AddChildToScalarFails(t *testing.T) {
	s := newStringNode("s", "scalar")
	if err := s.addChild(newIntNode("n", 1)); !errors.Is(err, ErrInvalidParameter) {
		t.Fatalf("expected ErrInvalidParameter, got %v", err)
	}
}

func TestNode_DictRejectsUnkeyedChild(t *testing.T) {
	d := newDictNode("")
	if err := d.addChild(newStringNode("", "v")); !errors.Is(err, ErrInvalidParameter) {
		t.Fatalf("expected ErrInvalidParameter, got %v", err)
	}
}

func TestNode_RemoveChildren(t *testing.T) {
	d := newDictNode("")
	d.addChild(newStringNode("a", "1"))
	d.addChild(newStringNode("b", "2"))
	d.addChild(newStringNode("c", "3"))

	d.removeChildren("b")
	if d.findChild("b") != nil {
		t.Error("expected key b to be removed")
	}
	if len(d.children) != 2 {
		t.Errorf("expected 2 remaining children, got %d", len(d.children))
	}

	d.removeAllChildren()
	if len(d.children) != 0 {
		t.Errorf("expected no remaining children, got %d", len(d.children))
	}
}
