package statekeep_test

import (
	"strings"
	"testing"

	. "github.com/comalice/statekeep"
)

func TestBuilderPrototypeShape(t *testing.T) {
	b := NewGraphBuilder(nil)
	b.Entity("component").
		Int("number", 23).
		List("objects", ItemScalar(Int(1)), ItemScalar(Text("x")), ItemRef("child")).
		Ref("child", "child")
	b.Entity("child").Ref("parent", "component")

	g, err := b.Build("component")
	if err != nil {
		t.Fatal(err)
	}
	a := g.Arena()
	comp, child := b.Handle("component"), b.Handle("child")
	if g.Root() != comp {
		t.Errorf("root = %s, want %s", g.Root(), comp)
	}
	if parent, _ := a.Ref(child, "parent"); parent != comp {
		t.Errorf("child.parent = %s, want %s", parent, comp)
	}
	objs, _ := a.Get(comp, "objects")
	items, _ := objs.List()
	if len(items) != 3 {
		t.Fatalf("objects = %s", objs)
	}
	if ref, _ := items[2].Ref(); ref != child {
		t.Errorf("objects[2] = %s, want ref to child", items[2])
	}
	if b.Name(child) != "child" {
		t.Errorf("Name(child) = %q", b.Name(child))
	}
}

func TestBuilderSharedFieldsAreInterned(t *testing.T) {
	in := NewInterner()
	b := NewGraphBuilder(in)
	b.Entity("car1").Shared("model", Texts("BMW", "M5", "red")...).Text("owner", "ada")
	b.Entity("car2").Shared("model", Texts("BMW", "M5", "red")...).Text("owner", "bob")
	if _, err := b.Build("car1"); err != nil {
		t.Fatal(err)
	}
	m1, _ := b.Arena().Get(b.Handle("car1"), "model")
	m2, _ := b.Arena().Get(b.Handle("car2"), "model")
	s1, _ := m1.Shared()
	s2, _ := m2.Shared()
	if s1 != s2 {
		t.Error("equal shared fields were not interned to one instance")
	}
	if in.Stats().Reused != 1 {
		t.Errorf("stats = %+v", in.Stats())
	}
}

func TestBuilderSetField(t *testing.T) {
	b := NewGraphBuilder(nil)
	b.Entity("e").Set("tags", Text("b"), Text("a"), Text("b"))
	g, err := b.Build("e")
	if err != nil {
		t.Fatal(err)
	}
	tags, _ := g.Field("tags")
	if tags.Len() != 2 || !tags.Contains(Text("a")) {
		t.Errorf("tags = %s", tags)
	}
}

func TestBuilderValidation(t *testing.T) {
	b := NewGraphBuilder(nil)
	b.Entity("a").Ref("next", "ghost")
	_, err := b.Build("a")
	if err == nil || !strings.Contains(err.Error(), `"ghost" referenced but never declared`) {
		t.Errorf("expected undeclared reference error, got %v", err)
	}

	b = NewGraphBuilder(nil)
	b.Entity("a")
	if _, err := b.Build("root"); err == nil {
		t.Error("expected error for undeclared root")
	}
}
