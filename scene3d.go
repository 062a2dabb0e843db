package canopy

// Scene3D is a Scene whose children are positioned by projecting their
// (X, Y, Z) through a Camera3D. The projection is centered on the scene's own
// local origin, and each child's scale is multiplied by the depth scale.
//
// Children are painted far to near; ZIndex is ignored. Children at or behind
// the camera plane are neither drawn nor hit.
type Scene3D struct {
	Scene

	camera *Camera3D
	depths []float64
}

// NewScene3D creates a 3D scene driven by cam. It returns ErrNilCamera when
// cam is nil.
func NewScene3D(name string, cam *Camera3D) (*Scene3D, error) {
	if cam == nil {
		return nil, ErrNilCamera
	}
	s := &Scene3D{camera: cam}
	initScene(&s.Scene, name, s)
	return s, nil
}

// Camera returns the scene's camera.
func (s *Scene3D) Camera() *Camera3D {
	return s.camera
}

// Update advances the camera, then the scene and its children.
func (s *Scene3D) Update(dt float64) {
	s.camera.Update(dt)
	s.Scene.Update(dt)
}

// Draw draws the scene's own shape, then its children far to near.
func (s *Scene3D) Draw(dc *DrawContext) {
	s.GameObject.Draw(dc)
	for _, child := range s.paintOrder() {
		drawChild(s, child, dc)
	}
}

func (s *Scene3D) childPlacement(child *GameObject) (placement, bool) {
	proj := s.camera.Project(child.X, child.Y, child.Z)
	if !proj.Visible() {
		return placement{}, false
	}
	pl := child.placement()
	pl.x = proj.X + s.ContentOffset.X
	pl.y = proj.Y + s.ContentOffset.Y
	pl.scaleX *= proj.Scale
	pl.scaleY *= proj.Scale
	return pl, true
}

// paintOrder sorts children by projected depth, farthest first. The order
// depends on the camera, so it is rebuilt on every call; insertion sort is
// close to linear because the order changes little between frames.
func (s *Scene3D) paintOrder() []Object {
	nc := len(s.children)
	if cap(s.sorted) < nc {
		s.sorted = make([]Object, nc)
	}
	if cap(s.depths) < nc {
		s.depths = make([]float64, nc)
	}
	s.sorted = s.sorted[:nc]
	s.depths = s.depths[:nc]
	copy(s.sorted, s.children)
	for i, c := range s.sorted {
		b := c.Base()
		s.depths[i] = s.camera.Project(b.X, b.Y, b.Z).Depth
	}
	for i := 1; i < nc; i++ {
		key, kd := s.sorted[i], s.depths[i]
		j := i - 1
		for j >= 0 && s.depths[j] < kd {
			s.sorted[j+1] = s.sorted[j]
			s.depths[j+1] = s.depths[j]
			j--
		}
		s.sorted[j+1] = key
		s.depths[j+1] = kd
	}
	s.sortDirty = false
	s.sortPass++
	return s.sorted
}
