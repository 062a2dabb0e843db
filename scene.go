package canopy

// Scene is an ordered, owning container of child objects. Children are
// updated in insertion order and painted in ascending ZIndex order, ties
// broken by insertion order.
type Scene struct {
	GameObject

	// ContentOffset displaces every child inside the scene's local space
	// (e.g. the scroll position of a scrollable panel). Rendering and
	// hit-testing both apply it.
	ContentOffset Vec2

	children  []Object
	sorted    []Object // reused buffer for ZIndex-sorted paint order
	sortDirty bool
	sortPass  int // number of paint-order rebuilds, for debug stats

	// self is the outermost container value so that children point at a
	// Scene3D rather than its embedded Scene.
	self Container
}

// NewScene creates an empty scene. Scenes are interactive by default so
// that their descendants can be hit; disabling a scene's interaction
// disables the whole subtree.
func NewScene(name string) *Scene {
	s := &Scene{}
	initScene(s, name, s)
	return s
}

func initScene(s *Scene, name string, self Container) {
	objectDefaults(&s.GameObject, name)
	s.interactive = true
	s.self = self
}

// Children returns the child list in insertion order. The returned slice
// MUST NOT be mutated by the caller.
func (s *Scene) Children() []Object {
	return s.children
}

// NumChildren returns the number of children.
func (s *Scene) NumChildren() int {
	return len(s.children)
}

// ChildAt returns the child at the given index.
func (s *Scene) ChildAt(index int) Object {
	return s.children[index]
}

// Add appends child and makes this scene its parent.
// If child already has a parent, it is removed from that parent first;
// re-adding a child of this scene moves it to the end.
// Panics if child is nil or child is an ancestor of this scene (cycle).
func (s *Scene) Add(child Object) {
	n := len(s.children)
	if s.owns(child) {
		n--
	}
	s.AddAt(child, n)
}

// AddAt inserts child at the given index, counted after child has been
// removed from its current parent. Same reparenting and cycle-check behavior
// as Add. The index is validated before the tree is touched, so a panic
// leaves child where it was.
func (s *Scene) AddAt(child Object, index int) {
	if child == nil || child.Base() == nil {
		panic("canopy: cannot add nil child")
	}
	b := child.Base()
	if debugEnabled() {
		debugCheckDisposed(b, "Add (child)")
		debugCheckDisposed(&s.GameObject, "Add (parent)")
	}
	if isAncestor(b, &s.GameObject) {
		panic("canopy: adding child would create a cycle")
	}
	limit := len(s.children)
	if s.owns(child) {
		limit--
	}
	if index < 0 || index > limit {
		panic("canopy: child index out of range")
	}
	if b.parent != nil {
		b.parent.detach(b)
		b.parent = nil
	}
	b.parent = s.self
	s.children = append(s.children, nil)
	copy(s.children[index+1:], s.children[index:])
	s.children[index] = child
	s.MarkDirty()
	if debugEnabled() {
		debugCheckTreeDepth(b)
		debugCheckChildCount(s)
	}
}

// owns reports whether child is currently a child of this scene.
func (s *Scene) owns(child Object) bool {
	if child == nil || child.Base() == nil {
		return false
	}
	return child.Base().parent == s.self
}

// Remove detaches child from this scene and clears its parent.
// Panics if child is not a child of this scene.
func (s *Scene) Remove(child Object) {
	b := child.Base()
	if b.parent != s.self {
		panic("canopy: child's parent is not this scene")
	}
	s.detach(b)
	b.parent = nil
}

// RemoveAll detaches all children. Children are NOT disposed.
func (s *Scene) RemoveAll() {
	for i, c := range s.children {
		c.Base().parent = nil
		s.children[i] = nil
	}
	s.children = s.children[:0]
	s.MarkDirty()
}

// IndexOf returns the insertion index of child, or -1.
func (s *Scene) IndexOf(child Object) int {
	b := child.Base()
	for i, c := range s.children {
		if c.Base() == b {
			return i
		}
	}
	return -1
}

// MarkDirty requests a paint-order rebuild. Repeated calls before the next
// render or hit-test pass coalesce into a single rebuild.
func (s *Scene) MarkDirty() {
	s.sortDirty = true
}

// Update calls OnUpdate, then updates active children in insertion order.
func (s *Scene) Update(dt float64) {
	s.GameObject.Update(dt)
	updateChildren(s.children, dt)
}

// Draw draws the scene's own shape, then its visible children in paint order.
func (s *Scene) Draw(dc *DrawContext) {
	s.GameObject.Draw(dc)
	for _, child := range s.paintOrder() {
		drawChild(s.self, child, dc)
	}
}

// Dispose detaches the scene and recursively disposes all descendants.
func (s *Scene) Dispose() {
	if s.disposed {
		return
	}
	s.RemoveFromParent()
	s.disposeTree()
}

func (s *Scene) disposeTree() {
	for _, c := range s.children {
		if sub := sceneOf(asContainer(c)); sub != nil {
			sub.disposeTree()
			continue
		}
		c.Base().dispose()
	}
	s.children = nil
	s.sorted = nil
	s.dispose()
}

// scene returns s. Types embedding a Scene inherit it, which is how tree
// operations find the child list behind any Container.
func (s *Scene) scene() *Scene {
	return s
}

func (s *Scene) detach(b *GameObject) {
	for i, c := range s.children {
		if c.Base() == b {
			copy(s.children[i:], s.children[i+1:])
			s.children[len(s.children)-1] = nil
			s.children = s.children[:len(s.children)-1]
			s.MarkDirty()
			return
		}
	}
}

func (s *Scene) childPlacement(child *GameObject) (placement, bool) {
	pl := child.placement()
	pl.x += s.ContentOffset.X
	pl.y += s.ContentOffset.Y
	return pl, true
}

// paintOrder returns children sorted by ZIndex, rebuilding the cached order
// when dirty.
func (s *Scene) paintOrder() []Object {
	if s.sortDirty {
		s.rebuildSorted()
	}
	return s.sorted
}

// rebuildSorted rebuilds the ZIndex-sorted paint order.
// Insertion sort keeps ties in insertion order and is O(n) when the
// children are already sorted.
func (s *Scene) rebuildSorted() {
	nc := len(s.children)
	if cap(s.sorted) < nc {
		s.sorted = make([]Object, nc)
	}
	s.sorted = s.sorted[:nc]
	copy(s.sorted, s.children)
	for i := 1; i < nc; i++ {
		key := s.sorted[i]
		j := i - 1
		for j >= 0 && s.sorted[j].Base().ZIndex > key.Base().ZIndex {
			s.sorted[j+1] = s.sorted[j]
			j--
		}
		s.sorted[j+1] = key
	}
	s.sortDirty = false
	s.sortPass++
}

// updateChildren updates active children over a snapshot so that children
// added or removed during the pass do not disturb iteration.
func updateChildren(children []Object, dt float64) {
	if len(children) == 0 {
		return
	}
	snapshot := make([]Object, len(children))
	copy(snapshot, children)
	for _, c := range snapshot {
		b := c.Base()
		if !b.Active || b.disposed {
			continue
		}
		c.Update(dt)
	}
}

// drawChild composes child's placement onto dc and draws it.
func drawChild(parent Container, child Object, dc *DrawContext) {
	b := child.Base()
	if !b.Visible || b.disposed {
		return
	}
	pl, ok := parent.childPlacement(b)
	if !ok {
		return
	}
	m := pl.matrix()
	if dc.culled(child, m) {
		return
	}
	child.Draw(dc.child(m, b.Alpha, b.BlendMode))
}

func asContainer(o Object) Container {
	c, _ := o.(Container)
	return c
}

// walk visits o and its descendants depth-first in insertion order.
// Returning false from fn skips the node's subtree.
func walk(o Object, fn func(Object) bool) {
	if !fn(o) {
		return
	}
	if c := asContainer(o); c != nil {
		for _, child := range c.Children() {
			walk(child, fn)
		}
	}
}
