package canopy

// Object is anything that can live in the scene graph. Custom objects embed
// *GameObject (or GameObject) and override Update and Draw as needed.
type Object interface {
	// Base returns the embedded GameObject holding transform, flags and
	// hierarchy state.
	Base() *GameObject
	// Update advances simulation state by dt seconds.
	Update(dt float64)
	// Draw issues draw calls. dc already carries the object's world
	// transform and alpha.
	Draw(dc *DrawContext)
}

// Initializer is implemented by objects that need one-time setup when the
// Pipeline initializes.
type Initializer interface {
	Init() error
}

// Container is an Object that owns children. Scene and Scene3D are the
// implementations.
type Container interface {
	Object
	// Children returns the children in insertion (update) order.
	Children() []Object

	childPlacement(child *GameObject) (placement, bool)
	paintOrder() []Object
	detach(child *GameObject)
	scene() *Scene
}

// objectIDCounter is a plain counter; the scene graph is single-threaded.
var objectIDCounter uint32

func nextObjectID() uint32 {
	objectIDCounter++
	return objectIDCounter
}

// GameObject is the base scene graph element: a Transformable with an
// event emitter, interaction state and a non-owning parent reference.
type GameObject struct {
	Transformable
	Emitter

	// Identity
	ID   uint32
	Name string

	// Visibility & activity. Invisible objects are neither drawn nor
	// hit-tested; inactive objects are not updated.
	Visible bool
	Active  bool

	// Ordering. Change with SetZIndex so the parent re-sorts.
	ZIndex int

	// Appearance
	Alpha     float64
	BlendMode BlendMode
	Shape     Drawable

	// HitShape overrides the [0,Width]×[0,Height] hit rectangle.
	HitShape HitShape

	// Metadata
	UserData any
	EntityID uint32

	// OnUpdate is called from Update when set.
	OnUpdate func(dt float64)

	parent      Container
	interactive bool
	hovered     bool
	disposed    bool

	anchor       *AnchorConfig
	anchorSource Rect
}

// objectDefaults sets the common default field values shared by all constructors.
func objectDefaults(g *GameObject, name string) {
	g.ID = nextObjectID()
	g.Name = name
	g.ScaleX = 1
	g.ScaleY = 1
	g.Alpha = 1
	g.Visible = true
	g.Active = true
}

// NewGameObject creates a non-interactive object with unit scale.
func NewGameObject(name string) *GameObject {
	g := &GameObject{}
	objectDefaults(g, name)
	return g
}

// NewShapeObject creates an object drawing d, sized to d's bounds.
func NewShapeObject(name string, d Drawable) *GameObject {
	g := NewGameObject(name)
	g.SetShape(d)
	return g
}

// Base implements Object.
func (g *GameObject) Base() *GameObject {
	return g
}

// Update calls OnUpdate when set.
func (g *GameObject) Update(dt float64) {
	if g.OnUpdate != nil {
		g.OnUpdate(dt)
	}
}

// Draw renders Shape when set.
func (g *GameObject) Draw(dc *DrawContext) {
	if g.Shape != nil {
		g.Shape.Draw(dc)
	}
}

// SetShape sets the drawable and resizes the object to its bounds.
func (g *GameObject) SetShape(d Drawable) {
	g.Shape = d
	if d != nil {
		b := d.Bounds()
		g.SetSize(b.X+b.Width, b.Y+b.Height)
	}
}

// Parent returns the owning container, or nil for a root or detached object.
func (g *GameObject) Parent() Container {
	return g.parent
}

// Interactive reports whether the object takes part in hit-testing.
func (g *GameObject) Interactive() bool {
	return g.interactive
}

// SetInteractive toggles hit-testing. Disabling a hovered object fires
// EventMouseOut and clears the hover state.
func (g *GameObject) SetInteractive(on bool) {
	if g.interactive == on {
		return
	}
	g.interactive = on
	if !on && g.hovered {
		g.hovered = false
		g.Emit(EventMouseOut, Event{Target: g})
	}
}

// Hovered reports whether a pointer currently rests on this object. Only
// the Pipeline's input resolution changes it.
func (g *GameObject) Hovered() bool {
	return g.hovered
}

// SetZIndex sets ZIndex and marks the parent's paint order as dirty.
func (g *GameObject) SetZIndex(z int) {
	if g.ZIndex == z {
		return
	}
	g.ZIndex = z
	if s := sceneOf(g.parent); s != nil {
		s.MarkDirty()
	}
}

// RemoveFromParent detaches the object from its container.
// No-op if it has no parent.
func (g *GameObject) RemoveFromParent() {
	if g.parent == nil {
		return
	}
	g.parent.detach(g)
	g.parent = nil
}

// Dispose detaches the object, drops its handlers and marks it disposed.
// Followers (cameras, tweens) stop tracking disposed objects.
func (g *GameObject) Dispose() {
	if g.disposed {
		return
	}
	g.RemoveFromParent()
	g.dispose()
}

func (g *GameObject) dispose() {
	g.disposed = true
	g.ID = 0
	g.parent = nil
	g.hovered = false
	g.interactive = false
	g.Shape = nil
	g.HitShape = nil
	g.UserData = nil
	g.OnUpdate = nil
	g.anchor = nil
	g.RemoveAllHandlers()
}

// IsDisposed returns true if the object has been disposed.
func (g *GameObject) IsDisposed() bool {
	return g.disposed
}

// Depth returns the number of ancestors above g.
func (g *GameObject) Depth() int {
	depth := 0
	for p := g.parent; p != nil; p = p.Base().parent {
		depth++
	}
	return depth
}

// isAncestor reports whether candidate is g or an ancestor of g.
func isAncestor(candidate, g *GameObject) bool {
	for p := g; p != nil; {
		if p == candidate {
			return true
		}
		if p.parent == nil {
			return false
		}
		p = p.parent.Base()
	}
	return false
}

// sceneOf returns the Scene behind a container, if any.
func sceneOf(c Container) *Scene {
	if c == nil {
		return nil
	}
	return c.scene()
}
