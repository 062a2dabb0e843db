package canopy

import (
	"strings"
	"testing"
)

func expectPanic(t *testing.T, substr string, fn func()) {
	t.Helper()
	defer func() {
		t.Helper()
		r := recover()
		if r == nil {
			t.Fatalf("expected panic containing %q", substr)
		}
		if s, ok := r.(string); !ok || !strings.Contains(s, substr) {
			t.Fatalf("panic = %v, want message containing %q", r, substr)
		}
	}()
	fn()
}

func TestSceneAddSetsParent(t *testing.T) {
	s := NewScene("s")
	a := NewGameObject("a")
	s.Add(a)
	if a.Parent() != Container(s) {
		t.Error("parent not set to scene")
	}
	if s.NumChildren() != 1 || s.ChildAt(0) != Object(a) {
		t.Error("child not recorded")
	}
}

func TestSceneReparent(t *testing.T) {
	s1 := NewScene("s1")
	s2 := NewScene("s2")
	a := NewGameObject("a")
	s1.Add(a)
	s2.Add(a)
	if s1.NumChildren() != 0 {
		t.Error("old parent still holds the child")
	}
	if a.Parent() != Container(s2) {
		t.Error("parent not updated")
	}
}

func TestSceneAddAtInsertsInOrder(t *testing.T) {
	s := NewScene("s")
	a, b, c := NewGameObject("a"), NewGameObject("b"), NewGameObject("c")
	s.Add(a)
	s.Add(c)
	s.AddAt(b, 1)
	for i, want := range []*GameObject{a, b, c} {
		if s.ChildAt(i).Base() != want {
			t.Errorf("child %d = %s, want %s", i, s.ChildAt(i).Base().Name, want.Name)
		}
	}
	if s.IndexOf(c) != 2 || s.IndexOf(NewGameObject("x")) != -1 {
		t.Error("IndexOf")
	}
}

func TestSceneMisusePanics(t *testing.T) {
	s := NewScene("s")
	expectPanic(t, "nil child", func() { s.Add(nil) })
	expectPanic(t, "out of range", func() { s.AddAt(NewGameObject("x"), 5) })
	expectPanic(t, "not this scene", func() { s.Remove(NewGameObject("stray")) })

	inner := NewScene("inner")
	s.Add(inner)
	expectPanic(t, "cycle", func() { inner.Add(s) })
	expectPanic(t, "cycle", func() { s.Add(s) })
}

func TestSceneReAddMovesToEnd(t *testing.T) {
	s := NewScene("s")
	a, b := NewGameObject("a"), NewGameObject("b")
	s.Add(a)
	s.Add(b)
	s.Add(a)
	if s.NumChildren() != 2 || s.IndexOf(b) != 0 || s.IndexOf(a) != 1 {
		t.Fatalf("order = [%s], want b then a", childNames(s))
	}
	if a.Parent() != Container(s) {
		t.Error("re-added child lost its parent")
	}

	s.AddAt(a, 0)
	if s.IndexOf(a) != 0 || s.IndexOf(b) != 1 {
		t.Errorf("order = [%s], want a then b", childNames(s))
	}
}

func TestSceneAddAtOutOfRangeKeepsChild(t *testing.T) {
	s := NewScene("s")
	a, b := NewGameObject("a"), NewGameObject("b")
	s.Add(a)
	s.Add(b)
	// a is counted as removed, so 2 is past the end.
	expectPanic(t, "out of range", func() { s.AddAt(a, 2) })
	if a.Parent() != Container(s) || s.IndexOf(a) != 0 || s.NumChildren() != 2 {
		t.Errorf("failed AddAt moved the child: [%s]", childNames(s))
	}

	other := NewScene("other")
	expectPanic(t, "out of range", func() { other.AddAt(b, 1) })
	if b.Parent() != Container(s) || other.NumChildren() != 0 {
		t.Error("failed AddAt detached the child from its old parent")
	}
}

// panel is a user-defined container built by embedding a Scene.
type panel struct {
	*Scene
}

func TestSceneDisposeEmbeddedContainer(t *testing.T) {
	root := NewScene("root")
	pn := panel{NewScene("panel")}
	child := NewGameObject("child")
	pn.Add(child)
	root.Add(pn)

	pn.paintOrder()
	if n := countSortPasses(root); n != 1 {
		t.Errorf("sort passes = %d, want 1", n)
	}

	root.Dispose()
	if !pn.IsDisposed() || !child.IsDisposed() {
		t.Errorf("panel disposed = %v, child disposed = %v", pn.IsDisposed(), child.IsDisposed())
	}
	if pn.NumChildren() != 0 || child.Parent() != nil {
		t.Error("disposed panel still holds its child")
	}
}

func childNames(s *Scene) string {
	names := make([]string, s.NumChildren())
	for i, c := range s.Children() {
		names[i] = c.Base().Name
	}
	return strings.Join(names, " ")
}

func TestSceneRemoveClearsParent(t *testing.T) {
	s := NewScene("s")
	a := NewGameObject("a")
	s.Add(a)
	s.Remove(a)
	if a.Parent() != nil || s.NumChildren() != 0 {
		t.Error("Remove did not detach")
	}

	s.Add(a)
	a.RemoveFromParent()
	if a.Parent() != nil || s.NumChildren() != 0 {
		t.Error("RemoveFromParent did not detach")
	}
	a.RemoveFromParent() // no parent: no-op
}

func TestSceneRemoveAll(t *testing.T) {
	s := NewScene("s")
	a, b := NewGameObject("a"), NewGameObject("b")
	s.Add(a)
	s.Add(b)
	s.RemoveAll()
	if s.NumChildren() != 0 || a.Parent() != nil || b.Parent() != nil {
		t.Error("RemoveAll did not detach everything")
	}
	if a.IsDisposed() {
		t.Error("RemoveAll must not dispose")
	}
}

func TestScenePaintOrderByZIndex(t *testing.T) {
	s := NewScene("s")
	a := tagged("a", 0.1, 1, 1)
	b := tagged("b", 0.2, 1, 1)
	c := tagged("c", 0.3, 1, 1)
	d := tagged("d", 0.4, 1, 1)
	a.SetZIndex(2)
	b.SetZIndex(-1)
	c.SetZIndex(2)
	d.SetZIndex(0)
	for _, o := range []*GameObject{a, b, c, d} {
		s.Add(o)
	}

	rec := newRecordingSurface(10, 10)
	s.Draw(NewDrawContext(rec, IdentityAffine))
	want := []float64{0.2, 0.4, 0.1, 0.3} // b(-1) d(0) a(2) c(2): ties keep insertion order
	got := rec.fills()
	if len(got) != len(want) {
		t.Fatalf("fills = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("fills = %v, want %v", got, want)
		}
	}
}

func TestScenePaintOrderIdempotent(t *testing.T) {
	s := NewScene("s")
	for i, z := range []int{3, 1, 2, 1, 0} {
		o := NewGameObject("o")
		o.ZIndex = z
		o.UserData = i
		s.Add(o)
	}
	first := append([]Object(nil), s.paintOrder()...)
	s.MarkDirty()
	second := s.paintOrder()
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("paint order changed on rebuild at %d", i)
		}
	}
}

func TestSceneDirtyCoalesces(t *testing.T) {
	s := NewScene("s")
	objs := make([]*GameObject, 5)
	for i := range objs {
		objs[i] = NewGameObject("o")
		s.Add(objs[i])
	}
	s.paintOrder()
	before := s.sortPass

	for i, o := range objs {
		o.SetZIndex(len(objs) - i)
	}
	s.paintOrder()
	s.paintOrder()
	if got := s.sortPass - before; got != 1 {
		t.Errorf("rebuilds = %d, want 1", got)
	}
	if s.paintOrder()[0].Base() != objs[4] {
		t.Error("lowest ZIndex should paint first")
	}
}

func TestSceneUpdateOrderAndActive(t *testing.T) {
	s := NewScene("s")
	var order []string
	for _, name := range []string{"a", "b", "c"} {
		o := NewGameObject(name)
		o.OnUpdate = func(float64) { order = append(order, name) }
		s.Add(o)
	}
	s.ChildAt(0).Base().SetZIndex(10) // update order ignores ZIndex
	s.ChildAt(1).Base().Active = false

	s.Update(0.016)
	if strings.Join(order, ",") != "a,c" {
		t.Errorf("update order = %v, want [a c]", order)
	}
}

func TestSceneUpdateSnapshot(t *testing.T) {
	s := NewScene("s")
	late := NewGameObject("late")
	var lateRan bool
	late.OnUpdate = func(float64) { lateRan = true }

	adder := NewGameObject("adder")
	adder.OnUpdate = func(float64) {
		if late.Parent() == nil {
			s.Add(late)
		}
	}
	s.Add(adder)

	s.Update(0.016)
	if lateRan {
		t.Error("child added during update ran in the same pass")
	}
	s.Update(0.016)
	if !lateRan {
		t.Error("child added during update did not run next pass")
	}
}

func TestSceneDisposeRecursive(t *testing.T) {
	root := NewScene("root")
	mid := NewScene("mid")
	leaf := NewGameObject("leaf")
	root.Add(mid)
	mid.Add(leaf)

	mid.Dispose()
	if !mid.IsDisposed() || !leaf.IsDisposed() {
		t.Error("descendants not disposed")
	}
	if root.NumChildren() != 0 {
		t.Error("disposed scene still attached")
	}
	mid.Dispose() // second call is a no-op
}

func TestSceneDrawSkipsHiddenAndDisposed(t *testing.T) {
	s := NewScene("s")
	shown := tagged("shown", 0.1, 1, 1)
	hidden := tagged("hidden", 0.2, 1, 1)
	hidden.Visible = false
	s.Add(shown)
	s.Add(hidden)

	rec := newRecordingSurface(10, 10)
	s.Draw(NewDrawContext(rec, IdentityAffine))
	if got := rec.fills(); len(got) != 1 || got[0] != 0.1 {
		t.Errorf("fills = %v, want [0.1]", got)
	}
}

func TestSceneContentOffsetAppliesToDraw(t *testing.T) {
	s := NewScene("s")
	s.ContentOffset = Vec2{X: 5, Y: -5}
	o := tagged("o", 0.1, 1, 1)
	o.SetPosition(10, 10)
	s.Add(o)

	rec := newRecordingSurface(100, 100)
	s.Draw(NewDrawContext(rec, IdentityAffine))
	calls := rec.Calls()
	if len(calls) != 1 {
		t.Fatalf("calls = %d", len(calls))
	}
	assertMatrix(t, "child", calls[0].m, Affine{1, 0, 0, 1, 15, 5})
}

func TestSceneAlphaInherits(t *testing.T) {
	s := NewScene("s")
	inner := NewScene("inner")
	inner.Alpha = 0.5
	o := tagged("o", 0.1, 1, 1)
	o.Alpha = 0.5
	s.Add(inner)
	inner.Add(o)

	rec := newRecordingSurface(10, 10)
	s.Draw(NewDrawContext(rec, IdentityAffine))
	if calls := rec.Calls(); len(calls) != 1 || !approxEqual(calls[0].alpha, 0.25, epsilon) {
		t.Errorf("calls = %+v, want one call at alpha 0.25", calls)
	}
}

func TestSetZIndexMarksParentDirty(t *testing.T) {
	s := NewScene("s")
	o := NewGameObject("o")
	s.Add(o)
	s.paintOrder()
	if s.sortDirty {
		t.Fatal("dirty after rebuild")
	}
	o.SetZIndex(3)
	if !s.sortDirty {
		t.Error("SetZIndex did not mark the parent dirty")
	}
	s.paintOrder()
	o.SetZIndex(3)
	if s.sortDirty {
		t.Error("SetZIndex with the same value marked the parent dirty")
	}
}
