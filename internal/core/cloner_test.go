package core

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/comalice/statekeep/internal/primitives"
)

func ref(t *testing.T, a *primitives.Arena, h primitives.Handle, field string) primitives.Handle {
	t.Helper()
	r, ok := a.Ref(h, field)
	require.True(t, ok, "%s.%s is not a reference", h, field)
	return r
}

func scalar(t *testing.T, a *primitives.Arena, h primitives.Handle, field string) string {
	t.Helper()
	s, ok := a.Scalar(h, field)
	require.True(t, ok, "%s.%s is not a scalar", h, field)
	return s.String()
}

func TestCloner_DeepSelfCycle(t *testing.T) {
	a := primitives.NewArena()
	r := a.New()
	require.NoError(t, a.SetRef(r, "next", r))
	require.NoError(t, a.SetScalar(r, "name", primitives.Text("R")))

	c, err := NewCloner().Deep(context.Background(), a, r)
	require.NoError(t, err)

	assert.NotEqual(t, r, c)
	assert.Equal(t, c, ref(t, a, c, "next"), "clone must point at itself, not the original")
	assert.Equal(t, "R", scalar(t, a, c, "name"))
	assert.Equal(t, 2, a.Len())
}

func TestCloner_DeepPreservesSharedSubgraph(t *testing.T) {
	a := primitives.NewArena()
	root := a.New()
	s := a.New()
	require.NoError(t, a.SetScalar(s, "v", primitives.Int(1)))
	require.NoError(t, a.SetRef(root, "left", s))
	require.NoError(t, a.SetRef(root, "right", s))
	require.NoError(t, a.Append(root, "all", primitives.RefValue(s), primitives.RefValue(root)))

	c, err := NewCloner().Deep(context.Background(), a, root)
	require.NoError(t, err)

	left, right := ref(t, a, c, "left"), ref(t, a, c, "right")
	assert.Equal(t, left, right, "shared sub-entity must map to one clone")
	assert.NotEqual(t, s, left)

	all, _ := a.Get(c, "all")
	items, _ := all.List()
	require.Len(t, items, 2)
	h0, _ := items[0].Ref()
	h1, _ := items[1].Ref()
	assert.Equal(t, left, h0)
	assert.Equal(t, c, h1)
	assert.Equal(t, 4, a.Len())
}

func TestCloner_DeepIsolatesMutation(t *testing.T) {
	a := primitives.NewArena()
	root := a.New()
	sub := a.New()
	require.NoError(t, a.SetRef(root, "sub", sub))
	require.NoError(t, a.SetScalar(sub, "color", primitives.Text("red")))

	c, err := NewCloner().Deep(context.Background(), a, root)
	require.NoError(t, err)

	require.NoError(t, a.SetScalar(ref(t, a, c, "sub"), "color", primitives.Text("blue")))
	assert.Equal(t, "red", scalar(t, a, sub, "color"))

	require.NoError(t, a.SetScalar(sub, "color", primitives.Text("green")))
	assert.Equal(t, "blue", scalar(t, a, ref(t, a, c, "sub"), "color"))
}

func TestCloner_ShallowAliasesReferences(t *testing.T) {
	a := primitives.NewArena()
	root := a.New()
	sub := a.New()
	require.NoError(t, a.SetScalar(root, "n", primitives.Int(56)))
	require.NoError(t, a.SetRef(root, "sub", sub))
	require.NoError(t, a.Append(root, "objs", primitives.ScalarValue(primitives.Int(1))))
	require.NoError(t, a.SetScalar(sub, "color", primitives.Text("red")))

	c, err := NewCloner().Shallow(a, root)
	require.NoError(t, err)
	assert.Equal(t, sub, ref(t, a, c, "sub"))

	require.NoError(t, a.SetScalar(sub, "color", primitives.Text("blue")))
	assert.Equal(t, "blue", scalar(t, a, ref(t, a, c, "sub"), "color"), "referenced entity is shared")

	require.NoError(t, a.SetScalar(c, "n", primitives.Int(7)))
	require.NoError(t, a.Append(c, "objs", primitives.ScalarValue(primitives.Text("another object"))))
	assert.Equal(t, "56", scalar(t, a, root, "n"))
	objs, _ := a.Get(root, "objs")
	assert.Equal(t, 1, objs.Len(), "root's own containers are copied")

	_, err = NewCloner().Shallow(a, primitives.Nil)
	assert.ErrorIs(t, err, ErrInvalidHandle)
}

func chain(t *testing.T, a *primitives.Arena, n int) primitives.Handle {
	t.Helper()
	head := a.New()
	prev := head
	for i := 1; i < n; i++ {
		next := a.New()
		require.NoError(t, a.SetRef(prev, "next", next))
		prev = next
	}
	require.NoError(t, a.SetRef(prev, "next", head))
	return head
}

func TestCloner_ExhaustionIsAtomic(t *testing.T) {
	a := primitives.NewArena()
	head := chain(t, a, 10)
	before := a.Handles()
	metrics := newCountingMetrics()
	pub := &recordingPublisher{}

	_, err := NewCloner(WithMaxCloneEntities(4), WithMetrics(metrics), WithPublisher(pub)).Deep(context.Background(), a, head)
	require.ErrorIs(t, err, ErrCloneExhausted)
	assert.Equal(t, before, a.Handles(), "no partial clone may survive")
	assert.Equal(t, 1, metrics.failures)
	assert.Equal(t, []EventKind{EventCloneFailed}, pub.kinds())

	c, err := NewCloner(WithMaxCloneEntities(10)).Deep(context.Background(), a, head)
	require.NoError(t, err)
	assert.Equal(t, 20, a.Len())

	// Walk the cloned ring; it must close on the clone head.
	h := c
	for range 10 {
		h = ref(t, a, h, "next")
	}
	assert.Equal(t, c, h)
}

func TestCloner_DanglingReferenceFails(t *testing.T) {
	a := primitives.NewArena()
	root := a.New()
	gone := a.New()
	require.NoError(t, a.SetRef(root, "gone", gone))
	require.NoError(t, a.Free(gone))

	_, err := NewCloner().Deep(context.Background(), a, root)
	assert.ErrorIs(t, err, ErrInvalidHandle)
	assert.Equal(t, 1, a.Len())
}

func TestCloner_DeepIntoOverwritesSeededRoot(t *testing.T) {
	src := primitives.NewArena()
	sRoot := src.New()
	sChild := src.New()
	require.NoError(t, src.SetScalar(sRoot, "state", primitives.Text("A")))
	require.NoError(t, src.SetRef(sRoot, "child", sChild))
	require.NoError(t, src.SetRef(sChild, "parent", sRoot))

	dst := primitives.NewArena()
	live := dst.New()
	require.NoError(t, dst.SetScalar(live, "state", primitives.Text("B")))
	require.NoError(t, dst.SetScalar(live, "extra", primitives.Bool(true)))

	memo := NewMemo()
	memo.Register(sRoot, live)
	out, err := NewCloner().DeepInto(context.Background(), dst, src, sRoot, memo)
	require.NoError(t, err)

	assert.Equal(t, live, out)
	assert.Equal(t, "A", scalar(t, dst, live, "state"))
	assert.Equal(t, []string{"child", "state"}, dst.Fields(live))
	child := ref(t, dst, live, "child")
	assert.Equal(t, live, ref(t, dst, child, "parent"), "back-reference must land on the live root")
	assert.Equal(t, 2, memo.Len())
}

func TestCloner_DeepIntoFailureLeavesTargetAndMemo(t *testing.T) {
	src := primitives.NewArena()
	sRoot := chain(t, src, 5)

	dst := primitives.NewArena()
	live := dst.New()
	require.NoError(t, dst.SetScalar(live, "state", primitives.Text("B")))

	memo := NewMemo()
	memo.Register(sRoot, live)
	_, err := NewCloner(WithMaxCloneEntities(2)).DeepInto(context.Background(), dst, src, sRoot, memo)
	require.ErrorIs(t, err, ErrCloneExhausted)

	assert.Equal(t, "B", scalar(t, dst, live, "state"))
	assert.Equal(t, 1, dst.Len())
	assert.Equal(t, 1, memo.Len())
}

func TestCloner_CanonicalizesSharedState(t *testing.T) {
	in := NewInterner()
	canon, _ := in.Intern(texts("BMW", "X6", "black")...)
	stray := primitives.NewSharedState(texts("black", "X6", "BMW"))

	a := primitives.NewArena()
	car := a.New()
	require.NoError(t, a.Set(car, "model", primitives.SharedValue(stray)))
	require.NoError(t, a.Append(car, "fleet", primitives.SharedValue(stray)))

	c, err := NewCloner(WithInterner(in)).Deep(context.Background(), a, car)
	require.NoError(t, err)

	v, _ := a.Get(c, "model")
	got, ok := v.Shared()
	require.True(t, ok)
	assert.Same(t, canon, got)

	fleet, _ := a.Get(c, "fleet")
	items, _ := fleet.List()
	inList, _ := items[0].Shared()
	assert.Same(t, canon, inList)

	orig, _ := a.Get(car, "model")
	origShared, _ := orig.Shared()
	assert.Same(t, stray, origShared, "the original graph is untouched")
}

func TestDetachAndGraphClone(t *testing.T) {
	a := primitives.NewArena()
	root := chain(t, a, 3)
	require.NoError(t, a.SetScalar(root, "n", primitives.Int(1)))

	g, err := Detach(context.Background(), NewCloner(), a, root)
	require.NoError(t, err)
	assert.Equal(t, 3, g.Len())

	require.NoError(t, a.SetScalar(root, "n", primitives.Int(2)))
	n, _ := g.Field("n")
	assert.Equal(t, "1", n.String())

	cp, err := g.Clone()
	require.NoError(t, err)
	require.NoError(t, cp.Arena().SetScalar(cp.Root(), "n", primitives.Int(3)))
	n, _ = g.Field("n")
	assert.Equal(t, "1", n.String())
	assert.Contains(t, g.String(), "n: 1")
}
